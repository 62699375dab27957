package inmem

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/Vasu3050/schoolsite/core/class"
)

type ClassRepository struct {
	mu      sync.RWMutex
	classes map[string]class.Class
}

var _ class.Repository = (*ClassRepository)(nil)

func NewClassRepository() *ClassRepository {
	return &ClassRepository{classes: make(map[string]class.Class)}
}

func (repo *ClassRepository) CreateClass(_ context.Context, c class.Class) (class.Class, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	for _, existing := range repo.classes {
		if sameIdentity(existing, c) {
			return class.Class{}, class.ErrExists
		}
	}
	c.ID = uuid.New().String()
	repo.classes[c.ID] = c
	return c, nil
}

func (repo *ClassRepository) GetClassByID(_ context.Context, id string) (class.Class, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	c, ok := repo.classes[id]
	if !ok {
		return class.Class{}, class.ErrNotFound
	}
	return c, nil
}

func (repo *ClassRepository) QueryAllClasses(_ context.Context) ([]class.Class, error) {
	repo.mu.RLock()
	classes := make([]class.Class, 0, len(repo.classes))
	for _, c := range repo.classes {
		classes = append(classes, c)
	}
	repo.mu.RUnlock()

	sort.Slice(classes, func(i, j int) bool { return classes[i].CreatedAt.After(classes[j].CreatedAt) })
	return classes, nil
}

func (repo *ClassRepository) ClassesByTeacher(_ context.Context, accountID string) ([]class.Class, error) {
	repo.mu.RLock()
	classes := make([]class.Class, 0)
	for _, c := range repo.classes {
		if c.HasClassTeacher(accountID) || c.TeachesSubject(accountID) {
			classes = append(classes, c)
		}
	}
	repo.mu.RUnlock()

	sort.Slice(classes, func(i, j int) bool { return classes[i].CreatedAt.After(classes[j].CreatedAt) })
	return classes, nil
}

func (repo *ClassRepository) UpdateClass(_ context.Context, c class.Class) (class.Class, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if _, ok := repo.classes[c.ID]; !ok {
		return class.Class{}, class.ErrNotFound
	}
	for _, existing := range repo.classes {
		if existing.ID != c.ID && sameIdentity(existing, c) {
			return class.Class{}, class.ErrExists
		}
	}
	repo.classes[c.ID] = c
	return c, nil
}

func (repo *ClassRepository) DeleteClassesByID(_ context.Context, ids ...string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	for _, id := range ids {
		delete(repo.classes, id)
	}
	return nil
}

func sameIdentity(a, b class.Class) bool {
	return strings.EqualFold(a.Grade, b.Grade) &&
		strings.EqualFold(a.Section, b.Section) &&
		a.AcademicYear == b.AcademicYear
}
