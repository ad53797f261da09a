package domain

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
)

// File is an uploaded asset (lookbook, line sheet, campaign image) stored
// outside the database and tracked here with content hashes for
// deduplication.
type File struct {
	Model
	Filename         string         `gorm:"size:255;not null;index" json:"filename"`
	OriginalFilename string         `gorm:"size:255;not null" json:"original_filename"`
	ContentType      string         `gorm:"size:100;not null;index" json:"content_type"`
	Size             int64          `gorm:"not null" json:"size"`
	URL              string         `gorm:"size:500;not null" json:"url"`
	StoragePath      string         `gorm:"size:500;not null" json:"-"`
	HashMD5          string         `gorm:"column:hash_md5;size:32;not null;index" json:"hash_md5"`
	HashSHA256       string         `gorm:"column:hash_sha256;size:64;not null" json:"hash_sha256"`
	Description      string         `gorm:"size:500" json:"description,omitempty"`
	Tags             []string       `gorm:"serializer:json" json:"tags,omitempty"`
	ExtraData        map[string]any `gorm:"serializer:json" json:"extra_data,omitempty"`
	DownloadCount    int64          `gorm:"not null;default:0" json:"download_count"`
	LastAccessed     *time.Time     `json:"last_accessed,omitempty"`
	CollectionID     *uuid.UUID     `gorm:"type:uuid;index" json:"collection_id,omitempty"`
	ProductID        *uuid.UUID     `gorm:"type:uuid;index" json:"product_id,omitempty"`
}

// FileUpload is the intake payload for an upload.
type FileUpload struct {
	Filename     string
	ContentType  string // detected from the filename when empty
	Content      []byte
	Description  string
	Tags         []string
	CollectionID *uuid.UUID
	ProductID    *uuid.UUID
}

// UploadResult is the outcome of an upload. Duplicate is set when the
// content matched an existing record, which is returned instead of a new
// one.
type UploadResult struct {
	File      *File    `json:"file"`
	Duplicate bool     `json:"duplicate"`
	Warnings  []string `json:"warnings,omitempty"`
}

// FileService defines the business logic interface for uploaded files.
type FileService interface {
	Upload(ctx context.Context, up *FileUpload, actor string) (*UploadResult, error)
	Get(ctx context.Context, id uuid.UUID) (*File, error)
	List(ctx context.Context, params ListParams, actor string) (*PageResult[File], error)
	Download(ctx context.Context, id uuid.UUID) (*File, io.ReadCloser, error)
	Delete(ctx context.Context, id uuid.UUID, hard bool, actor string) error
	Restore(ctx context.Context, id uuid.UUID, actor string) (*File, error)
	Search(ctx context.Context, query string, skip, limit int) ([]File, error)
}
