package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ServiceKey is an admin-issued credential for server-to-server callers
// (CMS sync, import jobs). The secret is shown once at creation; only its
// bcrypt hash is stored, located by the public prefix.
type ServiceKey struct {
	Model
	Name       string     `gorm:"size:100;not null" json:"name"`
	Prefix     string     `gorm:"size:16;uniqueIndex;not null" json:"prefix"`
	SecretHash string     `gorm:"size:128;not null" json:"-"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
}

// ServiceKeyService defines the business logic interface for service keys.
type ServiceKeyService interface {
	// Create issues a key and returns it with the full secret, which is
	// not recoverable afterwards.
	Create(ctx context.Context, name, actor string) (*ServiceKey, string, error)
	List(ctx context.Context) ([]ServiceKey, error)
	Revoke(ctx context.Context, id uuid.UUID, actor string) error
	// Verify resolves a presented secret to an acting principal.
	Verify(ctx context.Context, secret string) (*Principal, error)
}
