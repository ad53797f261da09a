package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Model is the common base struct for all persisted record types.
// It replaces gorm.Model to avoid the implicit soft delete behavior of
// DeletedAt: deletion state is the explicit IsDeleted/DeletedAt pair,
// and only the repository's Delete and Restore may change it.
// Invariant: IsDeleted is true exactly when DeletedAt is non-nil.
type Model struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	CreatedBy *string    `gorm:"size:128" json:"created_by,omitempty"`
	UpdatedBy *string    `gorm:"size:128" json:"updated_by,omitempty"`
	IsDeleted bool       `gorm:"not null;default:false;index" json:"is_deleted"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
	Notes     string     `gorm:"type:text" json:"notes,omitempty"`
}

// BeforeCreate assigns a UUID when the caller did not provide one.
func (m *Model) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// Record is implemented by every type embedding Model. The repository
// uses it to reach audit and soft-delete state without reflection.
type Record interface {
	GetID() uuid.UUID
	SetCreatedBy(actor string)
	SetUpdatedBy(actor string)
	MarkDeleted(at time.Time)
	ClearDeleted()
	Deleted() bool
}

// GetID returns the record's primary key.
func (m *Model) GetID() uuid.UUID { return m.ID }

// SetCreatedBy records the creating principal. Empty actors (system
// writes) leave the column NULL.
func (m *Model) SetCreatedBy(actor string) {
	if actor == "" {
		return
	}
	m.CreatedBy = &actor
}

// SetUpdatedBy records the updating principal. Empty actors leave the
// column untouched.
func (m *Model) SetUpdatedBy(actor string) {
	if actor == "" {
		return
	}
	m.UpdatedBy = &actor
}

// MarkDeleted flips the record into the soft-deleted state.
func (m *Model) MarkDeleted(at time.Time) {
	m.IsDeleted = true
	m.DeletedAt = &at
}

// ClearDeleted restores the record to the live state.
func (m *Model) ClearDeleted() {
	m.IsDeleted = false
	m.DeletedAt = nil
}

// Deleted reports whether the record is soft-deleted.
func (m *Model) Deleted() bool { return m.IsDeleted }
