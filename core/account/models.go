package account

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/Vasu3050/schoolsite/core"
)

// Roles. An account may hold several at once.
const (
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
	RoleParent  = "parent"
)

// Statuses
const (
	StatusPending = "pending"
	StatusActive  = "active"
	StatusBlocked = "blocked"
)

var (
	AllRoles    = []string{RoleAdmin, RoleTeacher, RoleParent}
	AllStatuses = []string{StatusPending, StatusActive, StatusBlocked}
)

type Account struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	Roles        []string  `json:"roles"`
	Status       string    `json:"status"`
	PasswordHash []byte    `json:"-"`
	RefreshToken string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
}

func (a *Account) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	a.PasswordHash = hash
	return nil
}

func (a *Account) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(a.PasswordHash, []byte(pwd))
}

func (a *Account) HasRole(role string) bool {
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (a *Account) AddRole(role string) {
	if !a.HasRole(role) {
		a.Roles = append(a.Roles, role)
	}
}

func (a *Account) RemoveRole(role string) {
	roles := a.Roles[:0]
	for _, r := range a.Roles {
		if r != role {
			roles = append(roles, r)
		}
	}
	a.Roles = roles
}

func (a *Account) IsAdmin() bool   { return a.HasRole(RoleAdmin) }
func (a *Account) IsTeacher() bool { return a.HasRole(RoleTeacher) }
func (a *Account) IsParent() bool  { return a.HasRole(RoleParent) }
func (a *Account) IsActive() bool  { return a.Status == StatusActive }
func (a *Account) IsBlocked() bool { return a.Status == StatusBlocked }

// NewAdmin contains information needed to register an admin Account.
type NewAdmin struct {
	Name     string `json:"name" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"omitempty,min=7,max=15"`
	Password string `json:"password" validate:"required,min=8"`
}

func (na *NewAdmin) Validate(validate *validator.Validate) error {
	na.Name = core.CleanString(na.Name)
	na.Email = core.CleanString(na.Email, true /* lower */)
	na.Phone = core.CleanString(na.Phone)
	return validate.Struct(na)
}

// NewAccount contains information needed to register a teacher or parent
// Account. StudentCode is required when Role is "parent": the new account
// is linked into that student's guardian list.
type NewAccount struct {
	Name        string `json:"name" validate:"required,min=3,max=50"`
	Email       string `json:"email" validate:"required,email"`
	Phone       string `json:"phone" validate:"omitempty,min=7,max=15"`
	Password    string `json:"password" validate:"required,min=8"`
	Role        string `json:"role" validate:"required,userrole"`
	StudentCode string `json:"sid"` // checked at struct level when Role is parent
}

func (na *NewAccount) Validate(validate *validator.Validate) error {
	na.Name = core.CleanString(na.Name)
	na.Email = core.CleanString(na.Email, true /* lower */)
	na.Phone = core.CleanString(na.Phone)
	na.Role = core.CleanString(na.Role, true /* lower */)
	na.StudentCode = core.CleanString(na.StudentCode, true /* lower */)

	if err := validate.Struct(na); err != nil {
		return err
	}
	if na.Role == RoleAdmin {
		return core.NewValidationError(nil, core.FieldError{Field: "role", Error: "invalid role provided"})
	}
	return nil
}

// UpdateAccount defines what information may be provided to modify an
// existing Account. Roles and Status can only be changed by admin.
type UpdateAccount struct {
	Name     string   `json:"name" validate:"omitempty,min=3,max=50"`
	Email    string   `json:"email" validate:"omitempty,email"`
	Phone    string   `json:"phone" validate:"omitempty,min=7,max=15"`
	Password string   `json:"password" validate:"omitempty,min=8"`
	Roles    []string `json:"roles" validate:"omitempty,dive,userrole"`
	Status   string   `json:"status" validate:"omitempty,accountstatus"`
}

func (ua *UpdateAccount) Validate(orig Account, validate *validator.Validate) error {
	if name := core.CleanString(ua.Name); name != "" {
		ua.Name = name
	} else {
		ua.Name = orig.Name
	}
	if email := core.CleanString(ua.Email, true /* lower */); email != "" {
		ua.Email = email
	} else {
		ua.Email = orig.Email
	}
	ua.Phone = core.CleanString(ua.Phone)
	return validate.Struct(ua)
}

// QueryFilter applies AND operation on its fields. Search does a
// case-insensitive match on Name or Email.
type QueryFilter struct {
	core.PageQuery
	Search string `query:"search"`
	Role   string `query:"role"`
	Status string `query:"status"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Role = core.CleanString(qf.Role, true /* lower */)
	qf.Status = core.CleanString(qf.Status, true /* lower */)
	qf.PageQuery.Clean(10)
}

// Custom validation tags

var (
	userRoleTag      = "userrole"
	userRoleText     = "must be one of: admin, teacher, parent"
	accountStatusTag = "accountstatus"
	statusText       = "must be one of: active, pending, blocked"
	requiredSidTag   = "required_if_parent"
	requiredSidText  = "student code is required for the parent role"
)

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(userRoleTag, func(fl validator.FieldLevel) bool {
		return contains(AllRoles, fl.Field().String())
	})
	core.RegisterCustomTranslation(validate, translator, userRoleTag, userRoleText)

	_ = validate.RegisterValidation(accountStatusTag, func(fl validator.FieldLevel) bool {
		return contains(AllStatuses, fl.Field().String())
	})
	core.RegisterCustomTranslation(validate, translator, accountStatusTag, statusText)

	validate.RegisterStructValidation(func(sl validator.StructLevel) {
		na := sl.Current().Interface().(NewAccount)
		if na.Role == RoleParent && na.StudentCode == "" {
			sl.ReportError(na.StudentCode, "sid", "StudentCode", requiredSidTag, "")
		}
	}, NewAccount{})
	core.RegisterCustomTranslation(validate, translator, requiredSidTag, requiredSidText)
}

func contains(vals []string, v string) bool {
	for _, val := range vals {
		if val == v {
			return true
		}
	}
	return false
}
