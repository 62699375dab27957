package class

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/Vasu3050/schoolsite/core/account"
	"github.com/Vasu3050/schoolsite/core/student"
)

var (
	// errors
	ErrNotFound = errors.New("class not found")
	ErrExists   = errors.New("class already exists")
)

type (
	Repository interface {
		// CreateClass persists a class; ErrExists when grade+section+year
		// is already taken.
		CreateClass(ctx context.Context, c Class) (Class, error)
		GetClassByID(ctx context.Context, id string) (Class, error)
		// QueryAllClasses returns every class, newest first.
		QueryAllClasses(ctx context.Context) ([]Class, error)
		// ClassesByTeacher returns classes where the account is a class
		// teacher or a subject teacher.
		ClassesByTeacher(ctx context.Context, accountID string) ([]Class, error)
		UpdateClass(ctx context.Context, c Class) (Class, error)
		DeleteClassesByID(ctx context.Context, ids ...string) error
	}

	// Directory resolves account ids to accounts, for populating teacher
	// names on class reads.
	Directory interface {
		GetByIDs(ctx context.Context, ids ...string) ([]account.Account, error)
	}

	// Roster lists the students matching a class's grade/division.
	Roster interface {
		FilterByClass(ctx context.Context, grade, division string) ([]student.Student, error)
	}

	Service interface {
		Create(ctx context.Context, createdBy string, nc NewClass) (Class, error)
		GetByID(ctx context.Context, id string) (Info, error)
		QueryAll(ctx context.Context) ([]Info, error)
		MyClasses(ctx context.Context, teacherID string) ([]MyClass, error)
		Update(ctx context.Context, id string, uc UpdateClass) (Class, error)
		ToggleStatus(ctx context.Context, id string) (Class, error)
		Delete(ctx context.Context, ids ...string) error
	}

	service struct {
		repo     Repository
		accounts Directory
		roster   Roster
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, accounts Directory, roster Roster) Service {
	return &service{
		repo:     repo,
		accounts: accounts,
		roster:   roster,
	}
}

func (svc *service) Create(ctx context.Context, createdBy string, nc NewClass) (Class, error) {
	now := time.Now().UTC()
	c := Class{
		Grade:           nc.Grade,
		Section:         nc.Section,
		AcademicYear:    nc.AcademicYear,
		ClassTeacherIDs: nc.ClassTeachers,
		SubjectTeachers: nc.SubjectTeachers,
		Status:          StatusActive,
		CreatedBy:       createdBy,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	c.Code = c.DeriveCode()
	return svc.repo.CreateClass(ctx, c)
}

func (svc *service) GetByID(ctx context.Context, id string) (Info, error) {
	c, err := svc.repo.GetClassByID(ctx, id)
	if err != nil {
		return Info{}, err
	}
	dir, err := svc.directory(ctx, []Class{c})
	if err != nil {
		return Info{}, err
	}
	return populate(c, dir), nil
}

func (svc *service) QueryAll(ctx context.Context) ([]Info, error) {
	classes, err := svc.repo.QueryAllClasses(ctx)
	if err != nil {
		return nil, err
	}
	dir, err := svc.directory(ctx, classes)
	if err != nil {
		return nil, err
	}
	infos := make([]Info, 0, len(classes))
	for _, c := range classes {
		infos = append(infos, populate(c, dir))
	}
	return infos, nil
}

// MyClasses returns the caller's classes, each with the roster of
// students matching the class's grade/section and, per student, whether
// this teacher may mark attendance: true if they are a class teacher or
// teach any subject in that class.
func (svc *service) MyClasses(ctx context.Context, teacherID string) ([]MyClass, error) {
	classes, err := svc.repo.ClassesByTeacher(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	dir, err := svc.directory(ctx, classes)
	if err != nil {
		return nil, err
	}

	out := make([]MyClass, 0, len(classes))
	for _, c := range classes {
		students, err := svc.roster.FilterByClass(ctx, c.Grade, c.Section)
		if err != nil {
			return nil, errors.Wrap(err, "computing class roster")
		}
		canMark := c.HasClassTeacher(teacherID) || c.TeachesSubject(teacherID)

		roster := make([]RosterEntry, 0, len(students))
		for _, st := range students {
			roster = append(roster, RosterEntry{
				Student:     st,
				Permissions: MarkPermissions{CanMarkAttendance: canMark},
			})
		}
		out = append(out, MyClass{Info: populate(c, dir), Roster: roster})
	}
	return out, nil
}

func (svc *service) Update(ctx context.Context, id string, uc UpdateClass) (Class, error) {
	c, err := svc.repo.GetClassByID(ctx, id)
	if err != nil {
		return Class{}, err
	}
	if uc.Grade != "" {
		c.Grade = uc.Grade
	}
	if uc.Section != "" {
		c.Section = uc.Section
	}
	if uc.AcademicYear != "" {
		c.AcademicYear = uc.AcademicYear
	}
	if uc.ClassTeachers != nil {
		c.ClassTeacherIDs = uc.ClassTeachers
	}
	if uc.SubjectTeachers != nil {
		c.SubjectTeachers = uc.SubjectTeachers
	}
	c.Code = c.DeriveCode()
	c.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateClass(ctx, c)
}

func (svc *service) ToggleStatus(ctx context.Context, id string) (Class, error) {
	c, err := svc.repo.GetClassByID(ctx, id)
	if err != nil {
		return Class{}, err
	}
	if c.Status == StatusActive {
		c.Status = StatusArchived
	} else {
		c.Status = StatusActive
	}
	c.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateClass(ctx, c)
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteClassesByID(ctx, ids...)
}

// directory fetches every referenced teacher account once.
func (svc *service) directory(ctx context.Context, classes []Class) (map[string]account.Account, error) {
	seen := make(map[string]struct{})
	ids := make([]string, 0)
	for _, c := range classes {
		for _, id := range c.ClassTeacherIDs {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
		for _, st := range c.SubjectTeachers {
			if _, ok := seen[st.TeacherID]; !ok {
				seen[st.TeacherID] = struct{}{}
				ids = append(ids, st.TeacherID)
			}
		}
	}
	if len(ids) == 0 {
		return map[string]account.Account{}, nil
	}
	accs, err := svc.accounts.GetByIDs(ctx, ids...)
	if err != nil {
		return nil, errors.Wrap(err, "resolving teacher accounts")
	}
	dir := make(map[string]account.Account, len(accs))
	for _, acc := range accs {
		dir[acc.ID] = acc
	}
	return dir, nil
}
