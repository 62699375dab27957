package notice

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Vasu3050/schoolsite/core"
)

// DefaultTTL is applied when no expiry is provided at publish time.
const DefaultTTL = 3 * 24 * time.Hour

// Notice is a school-wide announcement with an optional media attachment,
// purged from the store once ExpiresAt passes.
type Notice struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Media       *Media    `json:"media,omitempty"`
	PostedBy    string    `json:"postedBy"`
	ExpiresAt   time.Time `json:"expiry"`
	CreatedAt   time.Time `json:"created_at"` // UTC
}

// Media references an attachment held in external storage.
type Media struct {
	URL       string `json:"url"`
	StorageID string `json:"-"`
	Type      string `json:"type"`
}

func (n *Notice) Expired(now time.Time) bool {
	return now.After(n.ExpiresAt)
}

// NewNotice contains information needed to publish a Notice.
type NewNotice struct {
	Title       string     `json:"title" validate:"required,min=3,max=100"`
	Description string     `json:"description" validate:"required,min=10,max=500"`
	ExpiresAt   *time.Time `json:"expiry"`
}

func (nn *NewNotice) Validate(validate *validator.Validate) error {
	nn.Title = core.CleanString(nn.Title)
	nn.Description = core.CleanString(nn.Description)
	return validate.Struct(nn)
}

// UpdateNotice defines what may be modified on a published Notice.
type UpdateNotice struct {
	Title       string     `json:"title" validate:"omitempty,min=3,max=100"`
	Description string     `json:"description" validate:"omitempty,min=10,max=500"`
	ExpiresAt   *time.Time `json:"expiry"`
}

func (un *UpdateNotice) Validate(validate *validator.Validate) error {
	un.Title = core.CleanString(un.Title)
	un.Description = core.CleanString(un.Description)
	return validate.Struct(un)
}
