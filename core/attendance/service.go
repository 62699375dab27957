package attendance

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/Vasu3050/schoolsite/core"
)

var (
	// errors
	ErrNotFound        = errors.New("attendance record not found")
	ErrOutsideGeofence = errors.New("caller is outside the allowed school radius")
	ErrMarkerAbsent    = errors.New("marking teacher has no present record for today")
)

type (
	Repository interface {
		CreateRecord(ctx context.Context, r Record) (Record, error)
		// LatestBySubject returns the most recent record for a subject;
		// ErrNotFound when the subject was never marked.
		LatestBySubject(ctx context.Context, kind, subjectID string) (Record, error)
		// QueryByDay returns all records of a kind created within [start, end).
		QueryByDay(ctx context.Context, kind string, start, end time.Time) ([]Record, error)
		// QueryBySubjectAndDay restricts QueryByDay to one subject.
		QueryBySubjectAndDay(ctx context.Context, kind, subjectID string, start, end time.Time) ([]Record, error)
		// DeleteRecordByID removes one record and returns it; ErrNotFound
		// when absent.
		DeleteRecordByID(ctx context.Context, id string) (Record, error)
	}

	Service interface {
		// MarkStudent records a present mark for a student. When
		// requireMarkerPresence is set (teacher callers), the marker must
		// themselves hold a non-absent staff record for the current day.
		MarkStudent(ctx context.Context, markedBy, studentID string, requireMarkerPresence bool) (Record, error)
		// MarkStaff records a staff check-in, status present or leave,
		// subject to the geofence.
		MarkStaff(ctx context.Context, staffID, status string, loc Location) (Record, error)
		// MarkAbsent records an explicit absent mark (insert variant).
		MarkAbsent(ctx context.Context, markedBy, kind, subjectID string) (Record, error)
		// Unmark deletes a record by id (delete variant of absence).
		Unmark(ctx context.Context, id string) (Record, error)
		GetBySubject(ctx context.Context, kind, subjectID string) (Record, error)
		GetByDate(ctx context.Context, kind string, day time.Time) ([]Record, error)
	}

	service struct {
		repo Repository
		conf *core.Config
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, conf *core.Config) Service {
	return &service{repo: repo, conf: conf}
}

func (svc *service) MarkStudent(ctx context.Context, markedBy, studentID string, requireMarkerPresence bool) (Record, error) {
	if requireMarkerPresence {
		ok, err := svc.markerPresentToday(ctx, markedBy)
		if err != nil {
			return Record{}, errors.Wrap(err, "checking marker presence")
		}
		if !ok {
			return Record{}, ErrMarkerAbsent
		}
	}
	return svc.repo.CreateRecord(ctx, Record{
		SubjectID: studentID,
		Kind:      KindStudent,
		Status:    StatusPresent,
		MarkedBy:  markedBy,
		CreatedAt: time.Now().UTC(),
	})
}

func (svc *service) MarkStaff(ctx context.Context, staffID, status string, loc Location) (Record, error) {
	school := Location{Latitude: svc.conf.School.Latitude, Longitude: svc.conf.School.Longitude}
	if DistanceMeters(school, loc) > svc.conf.School.RadiusMeters {
		return Record{}, ErrOutsideGeofence
	}
	if status != StatusLeave {
		status = StatusPresent
	}
	return svc.repo.CreateRecord(ctx, Record{
		SubjectID: staffID,
		Kind:      KindStaff,
		Status:    status,
		MarkedBy:  staffID,
		CreatedAt: time.Now().UTC(),
	})
}

func (svc *service) MarkAbsent(ctx context.Context, markedBy, kind, subjectID string) (Record, error) {
	return svc.repo.CreateRecord(ctx, Record{
		SubjectID: subjectID,
		Kind:      kind,
		Status:    StatusAbsent,
		MarkedBy:  markedBy,
		CreatedAt: time.Now().UTC(),
	})
}

func (svc *service) Unmark(ctx context.Context, id string) (Record, error) {
	return svc.repo.DeleteRecordByID(ctx, id)
}

func (svc *service) GetBySubject(ctx context.Context, kind, subjectID string) (Record, error) {
	return svc.repo.LatestBySubject(ctx, kind, subjectID)
}

func (svc *service) GetByDate(ctx context.Context, kind string, day time.Time) ([]Record, error) {
	start, end := DayBounds(day)
	return svc.repo.QueryByDay(ctx, kind, start, end)
}

// markerPresentToday reports whether the marker has at least one
// non-absent staff record within the current day.
func (svc *service) markerPresentToday(ctx context.Context, markerID string) (bool, error) {
	start, end := DayBounds(time.Now())
	recs, err := svc.repo.QueryBySubjectAndDay(ctx, KindStaff, markerID, start, end)
	if err != nil {
		return false, err
	}
	for _, r := range recs {
		if r.Status != StatusAbsent {
			return true, nil
		}
	}
	return false, nil
}
