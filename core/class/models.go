package class

import (
	"regexp"
	"strings"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/Vasu3050/schoolsite/core"
	"github.com/Vasu3050/schoolsite/core/account"
	"github.com/Vasu3050/schoolsite/core/student"
)

// Statuses
const (
	StatusActive   = "active"
	StatusArchived = "archived"
)

var academicYearRegex = regexp.MustCompile(`^\d{4}-\d{4}$`)

// SubjectTeacher assigns one teacher to one subject within a class.
type SubjectTeacher struct {
	Subject   string `json:"subject" validate:"required"`
	TeacherID string `json:"teacher" validate:"required"`
}

// Class identity is grade+section+academicYear; Code is derived from it.
// Students are not foreign-keyed to classes: rosters are computed by a
// case-insensitive grade/division text match, so colliding naming can
// make several classes match the same students.
type Class struct {
	ID              string           `json:"id"`
	Grade           string           `json:"grade"`
	Section         string           `json:"section"`
	AcademicYear    string           `json:"academicYear"`
	Code            string           `json:"classCode"`
	ClassTeacherIDs []string         `json:"classTeachers"`
	SubjectTeachers []SubjectTeacher `json:"subjectTeachers"`
	Status          string           `json:"status"`
	CreatedBy       string           `json:"createdBy"`
	CreatedAt       time.Time        `json:"created_at"` // UTC
	UpdatedAt       time.Time        `json:"updated_at"` // UTC
}

// DeriveCode computes the class code, e.g. "5thB-2025-2026".
func (c *Class) DeriveCode() string {
	return c.Grade + strings.ToUpper(c.Section) + "-" + c.AcademicYear
}

func (c *Class) HasClassTeacher(accountID string) bool {
	for _, id := range c.ClassTeacherIDs {
		if id == accountID {
			return true
		}
	}
	return false
}

func (c *Class) TeachesSubject(accountID string) bool {
	for _, st := range c.SubjectTeachers {
		if st.TeacherID == accountID {
			return true
		}
	}
	return false
}

// TeacherRef is the populated view of a linked teacher account.
type TeacherRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type SubjectTeacherInfo struct {
	Subject string     `json:"subject"`
	Teacher TeacherRef `json:"teacher"`
}

// Info is a Class with teacher references populated.
type Info struct {
	Class
	ClassTeachers   []TeacherRef         `json:"classTeachers"`
	SubjectTeachers []SubjectTeacherInfo `json:"subjectTeachers"`
}

// MarkPermissions tells a teacher what they may do for one student.
type MarkPermissions struct {
	CanMarkAttendance bool `json:"canMarkAttendance"`
}

type RosterEntry struct {
	Student     student.Student `json:"student"`
	Permissions MarkPermissions `json:"permissions"`
}

// MyClass is one class of a teacher with its computed roster.
type MyClass struct {
	Info
	Roster []RosterEntry `json:"students"`
}

// NewClass contains information needed to create a Class.
type NewClass struct {
	Grade           string           `json:"grade" validate:"required"`
	Section         string           `json:"section" validate:"required,alpha,max=2"`
	AcademicYear    string           `json:"academicYear" validate:"required,academicyear"`
	ClassTeachers   []string         `json:"classTeachers" validate:"required,min=1,dive,required"`
	SubjectTeachers []SubjectTeacher `json:"subjectTeachers" validate:"omitempty,dive"`
}

func (nc *NewClass) Validate(validate *validator.Validate) error {
	nc.Grade = core.CleanString(nc.Grade, true /* lower */)
	nc.Section = strings.ToUpper(core.CleanString(nc.Section))
	nc.AcademicYear = core.CleanString(nc.AcademicYear)

	if err := validate.Struct(nc); err != nil {
		return err
	}
	if err := checkUniqueSubjects(nc.SubjectTeachers); err != nil {
		return err
	}
	return nil
}

// UpdateClass defines what may be modified on a Class.
type UpdateClass struct {
	Grade           string           `json:"grade"`
	Section         string           `json:"section" validate:"omitempty,alpha,max=2"`
	AcademicYear    string           `json:"academicYear" validate:"omitempty,academicyear"`
	ClassTeachers   []string         `json:"classTeachers" validate:"omitempty,min=1,dive,required"`
	SubjectTeachers []SubjectTeacher `json:"subjectTeachers" validate:"omitempty,dive"`
}

func (uc *UpdateClass) Validate(validate *validator.Validate) error {
	uc.Grade = core.CleanString(uc.Grade, true /* lower */)
	uc.Section = strings.ToUpper(core.CleanString(uc.Section))
	uc.AcademicYear = core.CleanString(uc.AcademicYear)

	if err := validate.Struct(uc); err != nil {
		return err
	}
	if uc.SubjectTeachers != nil {
		if err := checkUniqueSubjects(uc.SubjectTeachers); err != nil {
			return err
		}
	}
	return nil
}

func checkUniqueSubjects(sts []SubjectTeacher) error {
	seen := make(map[string]struct{}, len(sts))
	for _, st := range sts {
		key := strings.ToLower(strings.TrimSpace(st.Subject))
		if _, dup := seen[key]; dup {
			return core.NewValidationError(nil, core.FieldError{
				Field: "subjectTeachers", Error: "duplicate subjects are not allowed in a class",
			})
		}
		seen[key] = struct{}{}
	}
	return nil
}

// populate resolves teacher ids to references via the account directory.
func populate(c Class, dir map[string]account.Account) Info {
	info := Info{
		Class:           c,
		ClassTeachers:   make([]TeacherRef, 0, len(c.ClassTeacherIDs)),
		SubjectTeachers: make([]SubjectTeacherInfo, 0, len(c.SubjectTeachers)),
	}
	for _, id := range c.ClassTeacherIDs {
		info.ClassTeachers = append(info.ClassTeachers, teacherRef(id, dir))
	}
	for _, st := range c.SubjectTeachers {
		info.SubjectTeachers = append(info.SubjectTeachers, SubjectTeacherInfo{
			Subject: st.Subject,
			Teacher: teacherRef(st.TeacherID, dir),
		})
	}
	return info
}

func teacherRef(id string, dir map[string]account.Account) TeacherRef {
	ref := TeacherRef{ID: id}
	if acc, ok := dir[id]; ok {
		ref.Name = acc.Name
		ref.Email = acc.Email
	}
	return ref
}

// Custom validation tags

var (
	academicYearTag  = "academicyear"
	academicYearText = "must be of the form YYYY-YYYY"
)

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(academicYearTag, func(fl validator.FieldLevel) bool {
		return academicYearRegex.MatchString(fl.Field().String())
	})
	core.RegisterCustomTranslation(validate, translator, academicYearTag, academicYearText)
}
