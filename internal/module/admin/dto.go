package admin

import "github.com/simp-lee/showroom/internal/domain"

// CreateKeyRequest is the payload for issuing a service key.
type CreateKeyRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

// CreatedKeyResponse pairs the stored key with its one-time secret. The
// secret appears here and nowhere else.
type CreatedKeyResponse struct {
	Key    *domain.ServiceKey `json:"key"`
	Secret string             `json:"secret"`
}
