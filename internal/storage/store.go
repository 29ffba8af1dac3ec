package storage

import "context"

// ImageStore persists uploaded clothing images under generated filenames.
// Filenames are unique by construction, so concurrent writers never collide
// on a single logical resource.
type ImageStore interface {
	// Save stores raw image bytes under the given filename
	Save(ctx context.Context, filename string, data []byte) error

	// Remove deletes a stored image; removing a missing file is not an error
	Remove(ctx context.Context, filename string) error

	// URL returns the public URL path for a stored filename
	URL(filename string) string
}
