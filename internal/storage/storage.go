// Package storage abstracts blob storage behind a small interface so the
// file service never touches the filesystem directly. The only shipped
// implementation writes to local disk; an object-store implementation can
// be swapped in without touching callers.
package storage

import (
	"context"
	"io"
)

// Store saves, serves and removes uploaded blobs.
//
// Paths returned by Save and accepted by Open/Delete are storage-relative,
// slash-separated and opaque to callers: they go into the database verbatim
// and come back verbatim.
type Store interface {
	// Save streams r into the store under the given base name and returns
	// the relative path of the stored blob and the number of bytes written.
	// Callers are responsible for supplying unique names.
	Save(ctx context.Context, name string, r io.Reader) (path string, size int64, err error)

	// Open returns a reader for a previously saved blob. A missing blob
	// yields an error satisfying errors.Is(err, fs.ErrNotExist).
	Open(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes a blob. Deleting a path that no longer exists is not
	// an error.
	Delete(ctx context.Context, path string) error
}
