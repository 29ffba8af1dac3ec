package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore keeps uploads in a flat directory on disk and serves them from
// /uploads/<filename>.
type LocalStore struct {
	dir string
}

// NewLocalStore creates the upload directory if needed and returns a store
// rooted there.
func NewLocalStore(dir string) (*LocalStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("upload directory cannot be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

// Dir returns the directory backing the store, for static file serving.
func (s *LocalStore) Dir() string {
	return s.dir
}

// Save stores raw image bytes under the given filename
func (s *LocalStore) Save(_ context.Context, filename string, data []byte) error {
	clean, err := sanitizeFilename(filename)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(s.dir, clean), data, 0o644); err != nil {
		return fmt.Errorf("failed to write upload: %w", err)
	}
	return nil
}

// Remove deletes a stored image; removing a missing file is not an error
func (s *LocalStore) Remove(_ context.Context, filename string) error {
	clean, err := sanitizeFilename(filename)
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.dir, clean)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove upload: %w", err)
	}
	return nil
}

// URL returns the public URL path for a stored filename
func (s *LocalStore) URL(filename string) string {
	return "/uploads/" + filename
}

// sanitizeFilename rejects anything that could escape the upload directory.
func sanitizeFilename(filename string) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("filename cannot be empty")
	}
	clean := filepath.Base(filename)
	if clean != filename || strings.Contains(filename, "..") {
		return "", fmt.Errorf("invalid filename: %q", filename)
	}
	return clean, nil
}
