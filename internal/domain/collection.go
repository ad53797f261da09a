package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Collection statuses.
const (
	CollectionStatusDraft    = "draft"
	CollectionStatusActive   = "active"
	CollectionStatusArchived = "archived"
)

// CollectionStatuses lists the accepted collection statuses.
var CollectionStatuses = []string{
	CollectionStatusDraft,
	CollectionStatusActive,
	CollectionStatusArchived,
}

// Collection year plausibility window: no collections before the platform
// existed, and at most two years of forward planning.
const CollectionMinYear = 2020

// Collection is a seasonal line of products presented in the showroom.
type Collection struct {
	Model
	Name             string         `gorm:"size:100;not null;index" json:"name"`
	Slug             string         `gorm:"size:120;uniqueIndex;not null" json:"slug"`
	Season           string         `gorm:"size:20;not null;index" json:"season"`
	Year             int            `gorm:"not null;index" json:"year"`
	Description      string         `gorm:"type:text" json:"description,omitempty"`
	ShortDescription string         `gorm:"size:500" json:"short_description,omitempty"`
	OrderStartDate   *time.Time     `gorm:"type:date" json:"order_start_date,omitempty"`
	OrderEndDate     *time.Time     `gorm:"type:date" json:"order_end_date,omitempty"`
	Status           string         `gorm:"size:20;not null;default:draft;index" json:"status"`
	IsPublished      bool           `gorm:"not null;default:false;index" json:"is_published"`
	Metadata         map[string]any `gorm:"serializer:json" json:"metadata,omitempty"`
	SEOTitle         string         `gorm:"size:200" json:"seo_title,omitempty"`
	SEODescription   string         `gorm:"size:500" json:"seo_description,omitempty"`

	Products []Product `gorm:"foreignKey:CollectionID;constraint:OnDelete:CASCADE" json:"products,omitempty"`
	Files    []File    `gorm:"foreignKey:CollectionID" json:"files,omitempty"`
}

// ValidCollectionStatus reports whether s is a known collection status.
func ValidCollectionStatus(s string) bool {
	for _, status := range CollectionStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// CollectionService defines the business logic interface for collections.
type CollectionService interface {
	Create(ctx context.Context, c *Collection, actor string) (*Collection, error)
	Get(ctx context.Context, id uuid.UUID, load []string) (*Collection, error)
	GetBySlug(ctx context.Context, slug string) (*Collection, error)
	List(ctx context.Context, params ListParams, actor string) (*PageResult[Collection], error)
	Update(ctx context.Context, id uuid.UUID, changes map[string]any, actor string) (*Collection, error)
	Delete(ctx context.Context, id uuid.UUID, hard bool, actor string) error
	Restore(ctx context.Context, id uuid.UUID, actor string) (*Collection, error)
	SetPublished(ctx context.Context, id uuid.UUID, publish bool, actor string) (*Collection, error)
	Search(ctx context.Context, query string, publishedOnly bool, skip, limit int) ([]Collection, error)
	Featured(ctx context.Context, limit int) ([]Collection, error)
}
