package admin

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/simp-lee/showroom/internal/domain"
	"github.com/simp-lee/showroom/internal/repository"
)

// KeyRepository persists service keys. Soft delete is off: a revoked key
// must stop authenticating immediately, so revocation removes the row.
type KeyRepository struct {
	*repository.Repository[domain.ServiceKey]
}

// NewKeyRepository declares the query surface of the service key table.
func NewKeyRepository(db *gorm.DB) (*KeyRepository, error) {
	base, err := repository.New[domain.ServiceKey](db, repository.Config{
		SoftDelete: false,
		Filterable: []string{"name", "prefix", "created_at"},
		Sortable:   []string{"name", "created_at", "last_used_at"},
	})
	if err != nil {
		return nil, err
	}
	return &KeyRepository{Repository: base}, nil
}

// TouchLastUsed stamps the key's last use. Called on every successful
// verification, so failures only cost observability, not auth.
func (r *KeyRepository) TouchLastUsed(ctx context.Context, id uuid.UUID) error {
	err := r.DB().WithContext(ctx).Model(&domain.ServiceKey{}).
		Where("id = ?", id).
		Update("last_used_at", time.Now()).Error
	if err != nil {
		return domain.Internal("database error", err)
	}
	return nil
}
