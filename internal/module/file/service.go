package file

import (
	"bytes"
	"context"
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"path"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/simp-lee/showroom/internal/domain"
	"github.com/simp-lee/showroom/internal/pkg"
	"github.com/simp-lee/showroom/internal/repository"
	"github.com/simp-lee/showroom/internal/service"
	"github.com/simp-lee/showroom/internal/storage"
)

// Stored names are prefixed with the upload instant so directory listings
// sort chronologically.
const storedNameLayout = "20060102_150405"

// storeAttempts bounds the rename loop when two uploads of the same name
// land in the same second.
const storeAttempts = 5

// allowedImageTypes is the accepted subset of image content types.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// executableSignatures are magic prefixes of Windows PE, ELF and Java
// class binaries, all rejected on upload.
var executableSignatures = [][]byte{
	{0x4D, 0x5A},
	{0x7F, 0x45, 0x4C, 0x46},
	{0xCA, 0xFE, 0xBA, 0xBE},
}

// Service implements domain.FileService. Blobs live behind the storage
// seam; the database holds metadata and content hashes only.
type Service struct {
	base     *service.Service[domain.File]
	repo     *Repository
	store    storage.Store
	maxBytes int64
	baseURL  string
}

var _ domain.FileService = (*Service)(nil)

// NewService wires the file rules over the given blob store. maxBytes caps
// the accepted upload size and baseURL prefixes the public URL of each
// stored file.
func NewService(repo *Repository, store storage.Store, maxBytes int64, baseURL string) *Service {
	s := &Service{
		repo:     repo,
		store:    store,
		maxBytes: maxBytes,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}
	s.base = service.New(repo.Repository, "file", service.Hooks[domain.File]{})
	return s
}

// Upload validates, deduplicates and stores an uploaded file. When the
// content hash matches an existing live record that record is returned
// with Duplicate set instead of storing a second copy.
func (s *Service) Upload(ctx context.Context, up *domain.FileUpload, actor string) (*domain.UploadResult, error) {
	if up == nil || strings.TrimSpace(up.Filename) == "" {
		return nil, domain.BadRequest("FILE_REQUIRED", "no file provided")
	}
	original := filepath.Base(strings.TrimSpace(up.Filename))

	contentType, err := s.validateUpload(original, up)
	if err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, up); err != nil {
		return nil, err
	}

	md5Sum := md5.Sum(up.Content)
	sha256Sum := sha256.Sum256(up.Content)
	md5Hex := hex.EncodeToString(md5Sum[:])

	existing, err := s.repo.GetByMD5(ctx, md5Hex)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &domain.UploadResult{
			File:      existing,
			Duplicate: true,
			Warnings:  []string{"identical content already stored, returning the existing file"},
		}, nil
	}

	storedName, storagePath, size, err := s.persistBlob(ctx, original, up.Content)
	if err != nil {
		return nil, err
	}

	f := &domain.File{
		Filename:         storedName,
		OriginalFilename: original,
		ContentType:      contentType,
		Size:             size,
		URL:              s.baseURL + "/" + storagePath,
		StoragePath:      storagePath,
		HashMD5:          md5Hex,
		HashSHA256:       hex.EncodeToString(sha256Sum[:]),
		Description:      strings.TrimSpace(up.Description),
		Tags:             normalizeTags(up.Tags),
		ExtraData:        extraData(size, contentType),
		CollectionID:     up.CollectionID,
		ProductID:        up.ProductID,
	}

	created, err := s.base.Create(ctx, f, actor)
	if err != nil {
		// The record never landed, so the blob is unreferenced garbage.
		_ = s.store.Delete(ctx, storagePath)
		return nil, err
	}
	return &domain.UploadResult{File: created}, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.File, error) {
	return s.base.Get(ctx, id, nil)
}

func (s *Service) List(ctx context.Context, params domain.ListParams, actor string) (*domain.PageResult[domain.File], error) {
	return s.base.List(ctx, params, actor)
}

// Download opens the stored blob for streaming and counts the access.
func (s *Service) Download(ctx context.Context, id uuid.UUID) (*domain.File, io.ReadCloser, error) {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if f == nil {
		return nil, nil, s.base.NotFound(id.String())
	}

	rc, err := s.store.Open(ctx, f.StoragePath)
	if err != nil {
		return nil, nil, domain.External("STORAGE_ERROR", "stored file content is unavailable", err).
			With("file_id", id.String())
	}

	if err := s.repo.IncrementDownload(ctx, id); err != nil {
		rc.Close()
		return nil, nil, err
	}
	return f, rc, nil
}

// Delete removes the record, and on hard deletion the stored blob as well.
// A blob removal failure after the record is gone only leaves an orphan
// behind, so it does not fail the operation.
func (s *Service) Delete(ctx context.Context, id uuid.UUID, hard bool, actor string) error {
	if !hard {
		return s.base.Delete(ctx, id, false, actor)
	}

	f, err := s.repo.GetByID(ctx, id, repository.IncludeDeleted())
	if err != nil {
		return err
	}
	if f == nil {
		return s.base.NotFound(id.String())
	}
	if err := s.base.Delete(ctx, id, true, actor); err != nil {
		return err
	}
	_ = s.store.Delete(ctx, f.StoragePath)
	return nil
}

func (s *Service) Restore(ctx context.Context, id uuid.UUID, actor string) (*domain.File, error) {
	return s.base.Restore(ctx, id, actor)
}

// Search matches stored name, original name or description.
func (s *Service) Search(ctx context.Context, query string, skip, limit int) ([]domain.File, error) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < 2 {
		return nil, domain.Validation("INVALID_SEARCH_QUERY", "search query must be at least 2 characters")
	}
	if skip < 0 {
		skip = 0
	}
	limit = pkg.ClampLimit(limit, pkg.DefaultLimit)
	return s.repo.Search(ctx, query, skip, limit)
}

// Stats feeds the admin dashboard.
func (s *Service) Stats(ctx context.Context) (*domain.FileStats, error) {
	return s.repo.Stats(ctx)
}

// validateUpload checks size, extension, image type and content signature,
// returning the resolved content type.
func (s *Service) validateUpload(original string, up *domain.FileUpload) (string, error) {
	if int64(len(up.Content)) > s.maxBytes {
		return "", domain.Validation("FILE_TOO_LARGE",
			fmt.Sprintf("file exceeds the upload limit of %d bytes", s.maxBytes)).
			With("size", len(up.Content))
	}

	ext := strings.ToLower(path.Ext(original))
	if ext == "" {
		return "", domain.Validation("NO_FILE_EXTENSION", "filename must carry an extension").
			With("filename", original)
	}

	contentType := strings.TrimSpace(up.ContentType)
	if contentType == "" {
		contentType = mime.TypeByExtension(ext)
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	// mime.TypeByExtension may append parameters ("text/plain; charset=utf-8").
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = strings.TrimSpace(contentType[:i])
	}

	if strings.HasPrefix(contentType, "image/") && !allowedImageTypes[contentType] {
		return "", domain.Validation("INVALID_IMAGE_TYPE", "image type is not allowed").
			With("content_type", contentType)
	}

	for _, sig := range executableSignatures {
		if bytes.HasPrefix(up.Content, sig) {
			return "", domain.Validation("EXECUTABLE_FILE_DETECTED", "executable files are not allowed")
		}
	}
	return contentType, nil
}

// checkReferences verifies that any attached collection or product exists
// and is live.
func (s *Service) checkReferences(ctx context.Context, up *domain.FileUpload) error {
	if up.CollectionID != nil {
		exists, err := s.repo.CollectionExists(ctx, *up.CollectionID)
		if err != nil {
			return err
		}
		if !exists {
			return domain.Validation("COLLECTION_NOT_FOUND", "collection does not exist").
				With("collection_id", up.CollectionID.String())
		}
	}
	if up.ProductID != nil {
		exists, err := s.repo.ProductExists(ctx, *up.ProductID)
		if err != nil {
			return err
		}
		if !exists {
			return domain.Validation("PRODUCT_NOT_FOUND", "product does not exist").
				With("product_id", up.ProductID.String())
		}
	}
	return nil
}

// persistBlob writes the content under a timestamp-prefixed name,
// disambiguating same-second name collisions with a numeric infix.
func (s *Service) persistBlob(ctx context.Context, original string, content []byte) (string, string, int64, error) {
	stamp := time.Now().UTC().Format(storedNameLayout)
	name := stamp + "_" + original
	for attempt := 1; ; attempt++ {
		storagePath, size, err := s.store.Save(ctx, name, bytes.NewReader(content))
		if err == nil {
			return name, storagePath, size, nil
		}
		if !errors.Is(err, fs.ErrExist) || attempt >= storeAttempts {
			return "", "", 0, domain.External("STORAGE_ERROR", "failed to store file content", err)
		}
		name = fmt.Sprintf("%s_%d_%s", stamp, attempt, original)
	}
}

// normalizeTags trims, drops empties and deduplicates while preserving
// order.
func normalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(tags))
	var out []string
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}

// extraData derives lightweight metadata stored alongside the record.
func extraData(size int64, contentType string) map[string]any {
	meta := map[string]any{"content_length": size}
	if strings.HasPrefix(contentType, "image/") {
		meta["kind"] = "image"
		meta["format"] = strings.ToUpper(strings.TrimPrefix(contentType, "image/"))
	}
	return meta
}
