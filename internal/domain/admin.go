package domain

import (
	"context"
	"time"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// AdminUser is the single account allowed to edit the portfolio.
// Password holds the bcrypt hash, never the plaintext.
type AdminUser struct {
	ID        *surrealmodels.RecordID       `json:"id,omitempty"`
	Username  string                        `json:"username"`
	Password  string                        `json:"password,omitempty"`
	CreatedAt *surrealmodels.CustomDateTime `json:"created_at,omitempty"`
}

// IDString returns the record id as text, or "" when unset.
func (u *AdminUser) IDString() string {
	if u == nil || u.ID == nil {
		return ""
	}
	return u.ID.String()
}

// NewCreatedAt returns a database timestamp for now.
func NewCreatedAt() *surrealmodels.CustomDateTime {
	return &surrealmodels.CustomDateTime{Time: time.Now().UTC()}
}

// AdminRepository defines the contract for admin credential storage.
type AdminRepository interface {
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, user *AdminUser) (*AdminUser, error)
	FindByUsername(ctx context.Context, username string) (*AdminUser, error)
}
