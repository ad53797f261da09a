package user

import "github.com/simp-lee/showroom/internal/domain"

// LoginRequest carries the provider ID token for the login exchange.
type LoginRequest struct {
	IDToken string `json:"id_token" binding:"required"`
}

// CreateUserRequest is the admin payload for provisioning an account
// ahead of its first login.
type CreateUserRequest struct {
	UID         string `json:"uid" binding:"required,max=128"`
	Email       string `json:"email" binding:"required,email,max=255"`
	DisplayName string `json:"display_name" binding:"omitempty,max=100"`
	PhotoURL    string `json:"photo_url" binding:"omitempty,max=500"`
	PhoneNumber string `json:"phone_number" binding:"omitempty,max=20"`
	Role        string `json:"role" binding:"omitempty,oneof=admin user viewer"`
	Notes       string `json:"notes"`
}

func (r *CreateUserRequest) toModel() *domain.User {
	return &domain.User{
		UID:         r.UID,
		Email:       r.Email,
		DisplayName: r.DisplayName,
		PhotoURL:    r.PhotoURL,
		PhoneNumber: r.PhoneNumber,
		Role:        r.Role,
		IsActive:    true,
		Model:       domain.Model{Notes: r.Notes},
	}
}

// UpdateProfileRequest is the self-serve partial-update payload. Pointer
// fields distinguish "absent" from "set to zero"; role and activation are
// not self-serve.
type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name" binding:"omitempty,max=100"`
	PhotoURL    *string `json:"photo_url" binding:"omitempty,max=500"`
	PhoneNumber *string `json:"phone_number" binding:"omitempty,max=20"`
	Notes       *string `json:"notes"`
}

// changes flattens the request into a column change set.
func (r *UpdateProfileRequest) changes() map[string]any {
	out := make(map[string]any)
	if r.DisplayName != nil {
		out["display_name"] = *r.DisplayName
	}
	if r.PhotoURL != nil {
		out["photo_url"] = *r.PhotoURL
	}
	if r.PhoneNumber != nil {
		out["phone_number"] = *r.PhoneNumber
	}
	if r.Notes != nil {
		out["notes"] = *r.Notes
	}
	return out
}

// UpdateRoleRequest assigns a role. Membership in the valid set is a
// service-level rule so the INVALID_ROLE reason surfaces.
type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// SetActiveRequest toggles account activation.
type SetActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}
