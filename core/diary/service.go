package diary

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var (
	ErrNotFound = errors.New("diary entry not found")
)

type Repository interface {
	CreateEntry(ctx context.Context, e Entry) (Entry, error)
	GetEntryByID(ctx context.Context, id string) (Entry, error)
	// FilterEntries excludes entries whose expiry has passed even when the
	// store has not reaped them yet.
	FilterEntries(ctx context.Context, qf QueryFilter, now time.Time) ([]Entry, int, error)
	UpdateEntry(ctx context.Context, e Entry) error
	DeleteEntriesByID(ctx context.Context, ids ...string) (int, error)
}

type Service interface {
	Write(ctx context.Context, authorID, authorRole string, ne NewEntry) (Entry, error)
	GetByID(ctx context.Context, id string) (Entry, error)
	Filter(ctx context.Context, qf QueryFilter) ([]Entry, int, error)
	Edit(ctx context.Context, id string, ue UpdateEntry) (Entry, error)
	Delete(ctx context.Context, ids ...string) (int, error)
}

type service struct {
	repo Repository
}

var _ Service = (*service)(nil)

func NewService(repo Repository) *service {
	return &service{repo: repo}
}

func (s *service) Write(ctx context.Context, authorID, authorRole string, ne NewEntry) (Entry, error) {
	now := time.Now().UTC()
	expiry := now.Add(DefaultTTL)
	if ne.ExpiresAt != nil {
		expiry = ne.ExpiresAt.UTC()
	}
	e := Entry{
		Title:      ne.Title,
		Content:    ne.Content,
		Category:   ne.Category,
		Grade:      ne.Grade,
		Division:   ne.Division,
		StudentID:  ne.StudentID,
		AuthorID:   authorID,
		AuthorRole: authorRole,
		ExpiresAt:  expiry,
		CreatedAt:  now,
	}
	return s.repo.CreateEntry(ctx, e)
}

func (s *service) GetByID(ctx context.Context, id string) (Entry, error) {
	e, err := s.repo.GetEntryByID(ctx, id)
	if err != nil {
		return Entry{}, err
	}
	if e.Expired(time.Now().UTC()) {
		return Entry{}, ErrNotFound
	}
	return e, nil
}

func (s *service) Filter(ctx context.Context, qf QueryFilter) ([]Entry, int, error) {
	qf.Clean()
	return s.repo.FilterEntries(ctx, qf, time.Now().UTC())
}

func (s *service) Edit(ctx context.Context, id string, ue UpdateEntry) (Entry, error) {
	e, err := s.GetByID(ctx, id)
	if err != nil {
		return Entry{}, err
	}
	if ue.Title != "" {
		e.Title = ue.Title
	}
	if ue.Content != "" {
		e.Content = ue.Content
	}
	if ue.Category != "" {
		e.Category = ue.Category
	}
	if ue.Grade != "" {
		e.Grade = ue.Grade
	}
	if ue.Division != "" {
		e.Division = ue.Division
	}
	if ue.StudentID != "" {
		e.StudentID = ue.StudentID
	}
	if ue.ExpiresAt != nil {
		e.ExpiresAt = ue.ExpiresAt.UTC()
	}
	if err = s.repo.UpdateEntry(ctx, e); err != nil {
		return Entry{}, errors.Wrap(err, "updating diary entry")
	}
	return e, nil
}

func (s *service) Delete(ctx context.Context, ids ...string) (int, error) {
	return s.repo.DeleteEntriesByID(ctx, ids...)
}
