// Package content stores raw file bytes on the local filesystem.
//
// Every blob lives directly under a single root directory and is addressed
// by a freshly generated UUID, so names carry no information about the
// record that owns them. Thumbnail variants sit next to the original with a
// width suffix.
package content

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Store writes and reads blobs under a root directory.
type Store struct {
	root string
}

// New creates a content store rooted at dir. Call EnsureRoot before first
// use.
func New(dir string) *Store {
	return &Store{root: dir}
}

// Root returns the configured root directory.
func (s *Store) Root() string {
	return s.root
}

// EnsureRoot creates the root directory if it does not exist.
func (s *Store) EnsureRoot() error {
	return os.MkdirAll(s.root, 0o755)
}

// NewPath returns a fresh blob address under the root. Nothing is created
// on disk until Write.
func (s *Store) NewPath() string {
	return filepath.Join(s.root, uuid.NewString())
}

// Write persists data at the given address, creating the root if a previous
// EnsureRoot was bypassed.
func (s *Store) Write(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Read loads the blob at the given address.
func (s *Store) Read(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

// Exists reports whether a blob is present at the given address.
func (s *Store) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// VariantPath returns the address of a resized variant of the blob at path.
func VariantPath(path string, width int) string {
	return fmt.Sprintf("%s_%d", path, width)
}
