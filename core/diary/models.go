package diary

import (
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/Vasu3050/schoolsite/core"
)

// Categories
const (
	CategoryEvent     = "event"
	CategoryNotice    = "notice"
	CategoryHomework  = "homework"
	CategoryOther     = "other"
	CategoryComplaint = "complaint"
)

var Categories = []string{CategoryEvent, CategoryNotice, CategoryHomework, CategoryOther, CategoryComplaint}

// DefaultTTL is applied when no expiry is provided at write time.
const DefaultTTL = 7 * 24 * time.Hour

// Entry is one diary post. It targets at least one of grade, division or
// a single student, and is purged from the store once ExpiresAt passes.
type Entry struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Category   string    `json:"category"`
	Grade      string    `json:"grade,omitempty"`
	Division   string    `json:"division,omitempty"`
	StudentID  string    `json:"studentId,omitempty"`
	AuthorID   string    `json:"writtenBy"`
	AuthorRole string    `json:"writerRole"`
	ExpiresAt  time.Time `json:"expiresAt"`
	CreatedAt  time.Time `json:"created_at"` // UTC
}

func (e *Entry) Expired(now time.Time) bool {
	return now.After(e.ExpiresAt)
}

// NewEntry contains information needed to write a diary Entry.
type NewEntry struct {
	Title     string     `json:"title" validate:"required"`
	Content   string     `json:"content" validate:"required"`
	Category  string     `json:"category" validate:"omitempty,category"`
	Grade     string     `json:"grade" validate:"omitempty,grade"`
	Division  string     `json:"division" validate:"omitempty,division"`
	StudentID string     `json:"studentId"`
	ExpiresAt *time.Time `json:"expiresAt"`
}

func (ne *NewEntry) Validate(validate *validator.Validate) error {
	ne.Title = core.CleanString(ne.Title)
	ne.Content = core.CleanString(ne.Content)
	ne.Category = core.CleanString(ne.Category, true /* lower */)
	ne.Grade = core.CleanString(ne.Grade, true /* lower */)
	ne.Division = core.CleanString(ne.Division, true /* lower */)
	if ne.Category == "" {
		ne.Category = CategoryOther
	}

	if err := validate.Struct(ne); err != nil {
		return err
	}
	if ne.Grade == "" && ne.Division == "" && ne.StudentID == "" {
		return core.NewValidationError(nil, core.FieldError{
			Field: "grade", Error: "at least one of grade, division, or studentId must be provided",
		})
	}
	return nil
}

// UpdateEntry defines what may be modified on an Entry.
type UpdateEntry struct {
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	Category  string     `json:"category" validate:"omitempty,category"`
	Grade     string     `json:"grade" validate:"omitempty,grade"`
	Division  string     `json:"division" validate:"omitempty,division"`
	StudentID string     `json:"studentId"`
	ExpiresAt *time.Time `json:"expiresAt"`
}

func (ue *UpdateEntry) Validate(validate *validator.Validate) error {
	ue.Title = core.CleanString(ue.Title)
	ue.Content = core.CleanString(ue.Content)
	ue.Category = core.CleanString(ue.Category, true /* lower */)
	ue.Grade = core.CleanString(ue.Grade, true /* lower */)
	ue.Division = core.CleanString(ue.Division, true /* lower */)
	return validate.Struct(ue)
}

// QueryFilter applies AND operation on available fields.
type QueryFilter struct {
	core.PageQuery
	StudentID string `query:"studentId"`
	Grade     string `query:"grade"`
	Division  string `query:"division"`
	Category  string `query:"category"`
	Author    string `query:"writtenBy"`
}

func (qf *QueryFilter) Clean() {
	qf.Grade = core.CleanString(qf.Grade, true /* lower */)
	qf.Division = core.CleanString(qf.Division, true /* lower */)
	qf.Category = core.CleanString(qf.Category, true /* lower */)
	qf.PageQuery.Clean(5)
}

// Custom validation tags. Grade and division tags are registered by the
// student package; only category is added here.

var (
	categoryTag  = "category"
	categoryText = "must be one of: event, notice, homework, other, complaint"
)

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(categoryTag, func(fl validator.FieldLevel) bool {
		for _, c := range Categories {
			if c == fl.Field().String() {
				return true
			}
		}
		return false
	})
	core.RegisterCustomTranslation(validate, translator, categoryTag, categoryText)
}
