package inmem

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Vasu3050/schoolsite/core/student"
)

type StudentRepository struct {
	mu       sync.RWMutex
	students map[string]student.Student
}

var _ student.Repository = (*StudentRepository)(nil)

func NewStudentRepository() *StudentRepository {
	return &StudentRepository{students: make(map[string]student.Student)}
}

func (repo *StudentRepository) CreateStudent(_ context.Context, st student.Student) (student.Student, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	for _, s := range repo.students {
		if strings.EqualFold(s.Code, st.Code) {
			return student.Student{}, student.ErrCodeTaken
		}
	}
	st.ID = uuid.New().String()
	if st.GuardianIDs == nil {
		st.GuardianIDs = []string{}
	}
	repo.students[st.ID] = st
	return st, nil
}

func (repo *StudentRepository) GetStudentByID(_ context.Context, id string) (student.Student, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	st, ok := repo.students[id]
	if !ok {
		return student.Student{}, student.ErrNotFound
	}
	return st, nil
}

func (repo *StudentRepository) GetStudentByCode(_ context.Context, code string) (student.Student, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	for _, st := range repo.students {
		if strings.EqualFold(st.Code, code) {
			return st, nil
		}
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *StudentRepository) MaxCodeNumber(_ context.Context) (int, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	max := 0
	for _, st := range repo.students {
		if n, ok := student.ParseCode(st.Code); ok && n > max {
			max = n
		}
	}
	return max, nil
}

func (repo *StudentRepository) FilterStudents(_ context.Context, filter student.QueryFilter) ([]student.Student, int, error) {
	filter.Clean()

	repo.mu.RLock()
	matches := make([]student.Student, 0, len(repo.students))
	for _, st := range repo.students {
		if filter.Name != "" && !strings.Contains(strings.ToLower(st.Name), strings.ToLower(filter.Name)) {
			continue
		}
		if filter.Grade != "" && !strings.EqualFold(st.Grade, filter.Grade) {
			continue
		}
		if filter.Division != "" && !strings.EqualFold(st.Division, filter.Division) {
			continue
		}
		if filter.Code != "" && !strings.EqualFold(st.Code, filter.Code) {
			continue
		}
		matches = append(matches, st)
	}
	repo.mu.RUnlock()

	sortByCode(matches, filter.Sort == "desc")
	total := len(matches)
	lo, hi := pageBounds(total, filter.Offset(), filter.Limit)
	return matches[lo:hi], total, nil
}

func (repo *StudentRepository) FilterByClass(_ context.Context, grade, division string) ([]student.Student, error) {
	repo.mu.RLock()
	matches := make([]student.Student, 0)
	for _, st := range repo.students {
		if strings.EqualFold(st.Grade, grade) && strings.EqualFold(st.Division, division) {
			matches = append(matches, st)
		}
	}
	repo.mu.RUnlock()

	sortByCode(matches, false)
	return matches, nil
}

func (repo *StudentRepository) ChildrenOf(_ context.Context, accountID string, filter student.QueryFilter) ([]student.Student, int, error) {
	filter.Clean()

	repo.mu.RLock()
	matches := make([]student.Student, 0)
	for _, st := range repo.students {
		if st.HasGuardian(accountID) {
			matches = append(matches, st)
		}
	}
	repo.mu.RUnlock()

	sortByCode(matches, false)
	total := len(matches)
	lo, hi := pageBounds(total, filter.Offset(), filter.Limit)
	return matches[lo:hi], total, nil
}

func (repo *StudentRepository) UpdateStudent(_ context.Context, st student.Student) (student.Student, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if _, ok := repo.students[st.ID]; !ok {
		return student.Student{}, student.ErrNotFound
	}
	for _, s := range repo.students {
		if s.ID != st.ID && strings.EqualFold(s.Code, st.Code) {
			return student.Student{}, student.ErrCodeTaken
		}
	}
	repo.students[st.ID] = st
	return st, nil
}

func (repo *StudentRepository) DeleteStudentsByID(_ context.Context, ids ...string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	for _, id := range ids {
		delete(repo.students, id)
	}
	return nil
}

func (repo *StudentRepository) LinkGuardian(_ context.Context, studentCode, accountID string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	for id, st := range repo.students {
		if strings.EqualFold(st.Code, studentCode) {
			if !st.HasGuardian(accountID) {
				st.GuardianIDs = append(st.GuardianIDs, accountID)
				st.UpdatedAt = time.Now().UTC()
				repo.students[id] = st
			}
			return nil
		}
	}
	return student.ErrNotFound
}

func (repo *StudentRepository) UnlinkGuardian(_ context.Context, accountID string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	for id, st := range repo.students {
		if !st.HasGuardian(accountID) {
			continue
		}
		guardians := make([]string, 0, len(st.GuardianIDs))
		for _, gid := range st.GuardianIDs {
			if gid != accountID {
				guardians = append(guardians, gid)
			}
		}
		st.GuardianIDs = guardians
		st.UpdatedAt = time.Now().UTC()
		repo.students[id] = st
	}
	return nil
}

func sortByCode(sts []student.Student, desc bool) {
	sort.Slice(sts, func(i, j int) bool {
		ni, _ := student.ParseCode(sts[i].Code)
		nj, _ := student.ParseCode(sts[j].Code)
		if desc {
			return ni > nj
		}
		return ni < nj
	})
}
