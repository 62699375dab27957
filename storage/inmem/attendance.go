package inmem

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Vasu3050/schoolsite/core/attendance"
)

type AttendanceRepository struct {
	mu      sync.RWMutex
	records map[string]attendance.Record
}

var _ attendance.Repository = (*AttendanceRepository)(nil)

func NewAttendanceRepository() *AttendanceRepository {
	return &AttendanceRepository{records: make(map[string]attendance.Record)}
}

func (repo *AttendanceRepository) CreateRecord(_ context.Context, r attendance.Record) (attendance.Record, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	r.ID = uuid.New().String()
	repo.records[r.ID] = r
	return r, nil
}

func (repo *AttendanceRepository) LatestBySubject(_ context.Context, kind, subjectID string) (attendance.Record, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	var latest attendance.Record
	found := false
	for _, r := range repo.records {
		if r.Kind != kind || r.SubjectID != subjectID {
			continue
		}
		if !found || r.CreatedAt.After(latest.CreatedAt) {
			latest = r
			found = true
		}
	}
	if !found {
		return attendance.Record{}, attendance.ErrNotFound
	}
	return latest, nil
}

func (repo *AttendanceRepository) QueryByDay(_ context.Context, kind string, start, end time.Time) ([]attendance.Record, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	return repo.collect(func(r attendance.Record) bool {
		return r.Kind == kind && inWindow(r.CreatedAt, start, end)
	}), nil
}

func (repo *AttendanceRepository) QueryBySubjectAndDay(_ context.Context, kind, subjectID string, start, end time.Time) ([]attendance.Record, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	return repo.collect(func(r attendance.Record) bool {
		return r.Kind == kind && r.SubjectID == subjectID && inWindow(r.CreatedAt, start, end)
	}), nil
}

func (repo *AttendanceRepository) DeleteRecordByID(_ context.Context, id string) (attendance.Record, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	r, ok := repo.records[id]
	if !ok {
		return attendance.Record{}, attendance.ErrNotFound
	}
	delete(repo.records, id)
	return r, nil
}

// collect assumes the lock is held.
func (repo *AttendanceRepository) collect(match func(attendance.Record) bool) []attendance.Record {
	recs := make([]attendance.Record, 0)
	for _, r := range repo.records {
		if match(r) {
			recs = append(recs, r)
		}
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].CreatedAt.Before(recs[j].CreatedAt) })
	return recs
}

func inWindow(t, start, end time.Time) bool {
	return !t.Before(start) && t.Before(end)
}
