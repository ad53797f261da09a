package storage

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DiskStore stores blobs on the local filesystem under a single root
// directory, sharded by upload date (root/2006/01/02/name) so no directory
// accumulates an unbounded number of entries.
type DiskStore struct {
	root string
}

// NewDiskStore creates the root directory if needed and returns a store
// rooted there.
func NewDiskStore(root string) (*DiskStore, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, fmt.Errorf("storage root is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root %s: %w", root, err)
	}
	return &DiskStore{root: root}, nil
}

// Save writes r to a date-sharded path via a temp file and rename, so a
// crash mid-write never leaves a half-written blob at the final path.
func (s *DiskStore) Save(ctx context.Context, name string, r io.Reader) (string, int64, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}
	name = filepath.Base(strings.TrimSpace(name))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "", 0, fmt.Errorf("invalid blob name %q", name)
	}

	shard := time.Now().UTC().Format("2006/01/02")
	dir := filepath.Join(s.root, filepath.FromSlash(shard))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", 0, fmt.Errorf("create shard dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return "", 0, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		tmp.Close()
		os.Remove(tmpPath)
	}()

	size, err := io.Copy(tmp, r)
	if err != nil {
		return "", 0, fmt.Errorf("write blob: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return "", 0, fmt.Errorf("sync blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", 0, fmt.Errorf("close blob: %w", err)
	}

	final := filepath.Join(dir, name)
	if _, err := os.Lstat(final); err == nil {
		return "", 0, fmt.Errorf("blob %s: %w", name, fs.ErrExist)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return "", 0, fmt.Errorf("chmod blob: %w", err)
	}
	if err := os.Rename(tmpPath, final); err != nil {
		return "", 0, fmt.Errorf("finalize blob: %w", err)
	}

	return shard + "/" + name, size, nil
}

func (s *DiskStore) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	abs, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(abs)
	if err != nil {
		return nil, fmt.Errorf("open blob %s: %w", path, err)
	}
	return f, nil
}

func (s *DiskStore) Delete(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	abs, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete blob %s: %w", path, err)
	}
	return nil
}

// resolve maps a storage-relative path onto the root, rejecting anything
// that would escape it.
func (s *DiskStore) resolve(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", fmt.Errorf("blob path is required")
	}
	rel := filepath.Clean(filepath.FromSlash(path))
	if filepath.IsAbs(rel) || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid blob path %q", path)
	}
	return filepath.Join(s.root, rel), nil
}
