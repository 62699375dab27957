package inmem

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Vasu3050/schoolsite/core/diary"
)

type DiaryRepository struct {
	mu      sync.RWMutex
	entries map[string]diary.Entry
}

var _ diary.Repository = (*DiaryRepository)(nil)

func NewDiaryRepository() *DiaryRepository {
	return &DiaryRepository{entries: make(map[string]diary.Entry)}
}

func (repo *DiaryRepository) CreateEntry(_ context.Context, e diary.Entry) (diary.Entry, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	e.ID = uuid.New().String()
	repo.entries[e.ID] = e
	return e, nil
}

func (repo *DiaryRepository) GetEntryByID(_ context.Context, id string) (diary.Entry, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	e, ok := repo.entries[id]
	if !ok {
		return diary.Entry{}, diary.ErrNotFound
	}
	return e, nil
}

func (repo *DiaryRepository) FilterEntries(_ context.Context, qf diary.QueryFilter, now time.Time) ([]diary.Entry, int, error) {
	repo.mu.RLock()
	matches := make([]diary.Entry, 0)
	for _, e := range repo.entries {
		if e.Expired(now) {
			continue
		}
		if qf.StudentID != "" && e.StudentID != qf.StudentID {
			continue
		}
		if qf.Grade != "" && !strings.EqualFold(e.Grade, qf.Grade) {
			continue
		}
		if qf.Division != "" && !strings.EqualFold(e.Division, qf.Division) {
			continue
		}
		if qf.Category != "" && e.Category != qf.Category {
			continue
		}
		if qf.Author != "" && e.AuthorID != qf.Author {
			continue
		}
		matches = append(matches, e)
	}
	repo.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool { return matches[i].CreatedAt.After(matches[j].CreatedAt) })
	total := len(matches)
	lo, hi := pageBounds(total, qf.Offset(), qf.Limit)
	return matches[lo:hi], total, nil
}

func (repo *DiaryRepository) UpdateEntry(_ context.Context, e diary.Entry) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if _, ok := repo.entries[e.ID]; !ok {
		return diary.ErrNotFound
	}
	repo.entries[e.ID] = e
	return nil
}

func (repo *DiaryRepository) DeleteEntriesByID(_ context.Context, ids ...string) (int, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	n := 0
	for _, id := range ids {
		if _, ok := repo.entries[id]; ok {
			delete(repo.entries, id)
			n++
		}
	}
	return n, nil
}
