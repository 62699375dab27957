package student

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/Vasu3050/schoolsite/core"
)

var (
	Grades = []string{
		"playgroup", "nursery", "lkg", "ukg",
		"1st", "2nd", "3rd", "4th", "5th", "6th", "7th", "8th", "9th", "10th",
	}
	Divisions = []string{"a", "b", "c", "d", "e", "f", "g"}

	codeRegex = regexp.MustCompile(`^sid(\d+)$`)
)

type Student struct {
	ID          string    `json:"id"`
	Code        string    `json:"sid"`
	Name        string    `json:"name"`
	DOB         time.Time `json:"dob"`
	Grade       string    `json:"grade"`
	Division    string    `json:"division"`
	GuardianIDs []string  `json:"parent"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

// Age in whole years, derived from DOB.
func (s *Student) Age() int {
	if s.DOB.IsZero() {
		return 0
	}
	return int(time.Since(s.DOB).Hours() / 24 / 365.25)
}

func (s *Student) HasGuardian(accountID string) bool {
	for _, id := range s.GuardianIDs {
		if id == accountID {
			return true
		}
	}
	return false
}

// FormatCode renders a display code for the given sequence number,
// zero-padded to at least two digits ("sid01", "sid07", "sid123").
func FormatCode(n int) string {
	return fmt.Sprintf("sid%02d", n)
}

// ParseCode extracts the numeric suffix of a display code,
// case-insensitively. ok is false for anything not of the form sidNN.
func ParseCode(code string) (n int, ok bool) {
	m := codeRegex.FindStringSubmatch(core.CleanString(code, true /* lower */))
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	return n, err == nil
}

// NewStudent contains information needed to register a Student.
// The display code is assigned by the service, never provided.
type NewStudent struct {
	Name     string    `json:"name" validate:"required,min=3,max=100"`
	DOB      time.Time `json:"dob" validate:"required"`
	Grade    string    `json:"grade" validate:"required,grade"`
	Division string    `json:"division" validate:"required,division"`
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Grade = core.CleanString(ns.Grade, true /* lower */)
	ns.Division = core.CleanString(ns.Division, true /* lower */)

	if err := validate.Struct(ns); err != nil {
		return err
	}
	if ns.DOB.After(time.Now()) {
		return core.NewValidationError(nil, core.FieldError{Field: "dob", Error: "date of birth cannot be in the future"})
	}
	return nil
}

// UpdateStudent defines what may be modified on a Student. Which fields
// the caller is actually allowed to touch is decided by the API layer:
// parents may only set Name and DOB (for their own children), only admin
// may set Code.
type UpdateStudent struct {
	Name     string    `json:"name" validate:"omitempty,min=3,max=100"`
	DOB      time.Time `json:"dob"`
	Grade    string    `json:"grade" validate:"omitempty,grade"`
	Division string    `json:"division" validate:"omitempty,division"`
	Code     string    `json:"sid"`
}

func (us *UpdateStudent) IsEmpty() bool {
	return us.Name == "" && us.DOB.IsZero() && us.Grade == "" && us.Division == "" && us.Code == ""
}

func (us *UpdateStudent) Validate(validate *validator.Validate) error {
	us.Name = core.CleanString(us.Name)
	us.Grade = core.CleanString(us.Grade, true /* lower */)
	us.Division = core.CleanString(us.Division, true /* lower */)
	us.Code = core.CleanString(us.Code, true /* lower */)

	if err := validate.Struct(us); err != nil {
		return err
	}
	if !us.DOB.IsZero() && us.DOB.After(time.Now()) {
		return core.NewValidationError(nil, core.FieldError{Field: "dob", Error: "date of birth cannot be in the future"})
	}
	if us.Code != "" {
		if _, ok := ParseCode(us.Code); !ok {
			return core.NewValidationError(nil, core.FieldError{Field: "sid", Error: "invalid student code format"})
		}
	}
	return nil
}

// QueryFilter applies AND operation on available fields. Name matches
// case-insensitively as a substring; Code matches exactly, ignoring case.
type QueryFilter struct {
	core.PageQuery
	Name     string `query:"name"`
	Grade    string `query:"grade"`
	Division string `query:"division"`
	Code     string `query:"sid"`
	Sort     string `query:"sort"` // by code: "asc" (default) or "desc"
}

func (qf *QueryFilter) Clean() {
	qf.Name = core.CleanString(qf.Name)
	qf.Grade = core.CleanString(qf.Grade, true /* lower */)
	qf.Division = core.CleanString(qf.Division, true /* lower */)
	qf.Code = core.CleanString(qf.Code, true /* lower */)
	if qf.Sort = core.CleanString(qf.Sort, true /* lower */); qf.Sort != "desc" {
		qf.Sort = "asc"
	}
	qf.PageQuery.Clean(10)
}

// Custom validation tags

var (
	gradeTag     = "grade"
	gradeText    = "must be a valid grade (playgroup..10th)"
	divisionTag  = "division"
	divisionText = "must be a single division letter a-g"
)

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(gradeTag, func(fl validator.FieldLevel) bool {
		return contains(Grades, fl.Field().String())
	})
	core.RegisterCustomTranslation(validate, translator, gradeTag, gradeText)

	_ = validate.RegisterValidation(divisionTag, func(fl validator.FieldLevel) bool {
		return contains(Divisions, fl.Field().String())
	})
	core.RegisterCustomTranslation(validate, translator, divisionTag, divisionText)
}

func contains(vals []string, v string) bool {
	for _, val := range vals {
		if val == v {
			return true
		}
	}
	return false
}
