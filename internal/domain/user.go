package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// User roles.
const (
	RoleAdmin  = "admin"
	RoleUser   = "user"
	RoleViewer = "viewer"
)

// UserRoles lists the accepted user roles.
var UserRoles = []string{RoleAdmin, RoleUser, RoleViewer}

// User is an account provisioned from the external identity provider.
// Credentials never live here; UID is the provider's subject and the
// email is stored lower-cased.
type User struct {
	Model
	UID         string     `gorm:"size:128;uniqueIndex;not null" json:"uid"`
	Email       string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	DisplayName string     `gorm:"size:100" json:"display_name,omitempty"`
	PhotoURL    string     `gorm:"size:500" json:"photo_url,omitempty"`
	PhoneNumber string     `gorm:"size:20" json:"phone_number,omitempty"`
	Role        string     `gorm:"size:20;not null;default:user;index" json:"role"`
	IsActive    bool       `gorm:"not null;default:true;index" json:"is_active"`
	LastLogin   *time.Time `json:"last_login,omitempty"`
	LoginCount  int64      `gorm:"not null;default:0" json:"login_count"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// ValidUserRole reports whether r is a known role.
func ValidUserRole(r string) bool { return contains(UserRoles, r) }

// Principal is the authenticated caller attached to a request context.
// Service keys carry a zero UserID and a "key:<name>" UID.
type Principal struct {
	UserID uuid.UUID
	UID    string
	Email  string
	Role   string
}

// Actor returns the audit identity recorded in created_by/updated_by.
func (p *Principal) Actor() string {
	if p == nil {
		return ""
	}
	if p.UserID != uuid.Nil {
		return p.UserID.String()
	}
	return p.UID
}

// IsAdmin reports whether the principal holds the admin role.
func (p *Principal) IsAdmin() bool { return p != nil && p.Role == RoleAdmin }

// UserStats summarizes accounts for the admin dashboard.
type UserStats struct {
	Total        int64 `json:"total"`
	Active       int64 `json:"active"`
	Admins       int64 `json:"admins"`
	RecentLogins int64 `json:"recent_logins"`
}

// UserService defines the business logic interface for accounts.
type UserService interface {
	Login(ctx context.Context, idToken string) (*User, error)
	Create(ctx context.Context, u *User, actor string) (*User, error)
	Get(ctx context.Context, id uuid.UUID) (*User, error)
	GetByUID(ctx context.Context, uid string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, params ListParams, actor string) (*PageResult[User], error)
	UpdateProfile(ctx context.Context, id uuid.UUID, changes map[string]any, actor string) (*User, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role string, by *Principal) (*User, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool, by *Principal) (*User, error)
	ResolvePrincipal(ctx context.Context, uid string) (*Principal, error)
	Stats(ctx context.Context) (*UserStats, error)
}
