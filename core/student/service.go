package student

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var (
	// errors
	ErrNotFound  = errors.New("student not found")
	ErrCodeTaken = errors.New("a student with this code already exists")
)

// codeRetries bounds the retry loop on sequential-code conflicts when
// concurrent creates race for the same number.
const codeRetries = 3

type (
	Repository interface {
		// CreateStudent persists a student; ErrCodeTaken when the display
		// code is already in use (the store enforces uniqueness).
		CreateStudent(ctx context.Context, st Student) (Student, error)
		GetStudentByID(ctx context.Context, id string) (Student, error)
		GetStudentByCode(ctx context.Context, code string) (Student, error)
		// MaxCodeNumber returns the highest numeric code suffix in use, 0 when none.
		MaxCodeNumber(ctx context.Context) (int, error)
		FilterStudents(ctx context.Context, filter QueryFilter) ([]Student, int, error)
		// FilterByClass matches grade and division case-insensitively.
		FilterByClass(ctx context.Context, grade, division string) ([]Student, error)
		// ChildrenOf pages through the students linked to the given guardian account.
		ChildrenOf(ctx context.Context, accountID string, filter QueryFilter) ([]Student, int, error)
		UpdateStudent(ctx context.Context, st Student) (Student, error)
		DeleteStudentsByID(ctx context.Context, ids ...string) error
		// LinkGuardian appends an account id to the guardian list of the
		// student with the given code; ErrNotFound when no student matches.
		LinkGuardian(ctx context.Context, studentCode, accountID string) error
		// UnlinkGuardian removes the account id from every student's guardian list.
		UnlinkGuardian(ctx context.Context, accountID string) error
	}

	Service interface {
		Add(ctx context.Context, ns NewStudent) (Student, error)
		GetByID(ctx context.Context, id string) (Student, error)
		GetByCode(ctx context.Context, code string) (Student, error)
		Filter(ctx context.Context, filter QueryFilter) ([]Student, int, error)
		FilterByClass(ctx context.Context, grade, division string) ([]Student, error)
		Children(ctx context.Context, accountID string, filter QueryFilter) ([]Student, int, error)
		Update(ctx context.Context, id string, us UpdateStudent) (Student, error)
		Delete(ctx context.Context, ids ...string) error
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// Add registers a student under the next sequential display code. The
// proposal comes from scanning the current maximum; the store's unique
// constraint is the arbiter, so a lost race shows up as ErrCodeTaken and
// the proposal is recomputed.
func (svc *service) Add(ctx context.Context, ns NewStudent) (Student, error) {
	var lastErr error
	for i := 0; i < codeRetries; i++ {
		max, err := svc.repo.MaxCodeNumber(ctx)
		if err != nil {
			return Student{}, errors.Wrap(err, "scanning max student code")
		}

		now := time.Now().UTC()
		st := Student{
			Code:      FormatCode(max + 1),
			Name:      ns.Name,
			DOB:       ns.DOB,
			Grade:     ns.Grade,
			Division:  ns.Division,
			CreatedAt: now,
			UpdatedAt: now,
		}
		created, err := svc.repo.CreateStudent(ctx, st)
		if err == nil {
			return created, nil
		}
		if errors.Cause(err) != ErrCodeTaken {
			return Student{}, err
		}
		lastErr = err
	}
	return Student{}, lastErr
}

func (svc *service) GetByID(ctx context.Context, id string) (Student, error) {
	return svc.repo.GetStudentByID(ctx, id)
}

func (svc *service) GetByCode(ctx context.Context, code string) (Student, error) {
	return svc.repo.GetStudentByCode(ctx, code)
}

func (svc *service) Filter(ctx context.Context, filter QueryFilter) ([]Student, int, error) {
	return svc.repo.FilterStudents(ctx, filter)
}

func (svc *service) FilterByClass(ctx context.Context, grade, division string) ([]Student, error) {
	return svc.repo.FilterByClass(ctx, grade, division)
}

func (svc *service) Children(ctx context.Context, accountID string, filter QueryFilter) ([]Student, int, error) {
	return svc.repo.ChildrenOf(ctx, accountID, filter)
}

func (svc *service) Update(ctx context.Context, id string, us UpdateStudent) (Student, error) {
	st, err := svc.repo.GetStudentByID(ctx, id)
	if err != nil {
		return Student{}, err
	}
	if us.Name != "" {
		st.Name = us.Name
	}
	if !us.DOB.IsZero() {
		st.DOB = us.DOB
	}
	if us.Grade != "" {
		st.Grade = us.Grade
	}
	if us.Division != "" {
		st.Division = us.Division
	}
	if us.Code != "" {
		st.Code = us.Code
	}
	st.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateStudent(ctx, st)
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteStudentsByID(ctx, ids...)
}
