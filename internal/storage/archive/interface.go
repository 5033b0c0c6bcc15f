// internal/storage/archive/interface.go
package archive

import "context"

// Storage defines the interface for cold/archive storage backends.
// Read returns core.ErrRecordNotFound for a missing path.
type Storage interface {
	Write(ctx context.Context, path string, data []byte) error
	Read(ctx context.Context, path string) ([]byte, error)

	// List returns all paths under prefix, relative to the storage root.
	List(ctx context.Context, prefix string) ([]string, error)

	Delete(ctx context.Context, path string) error
	Exists(ctx context.Context, path string) (bool, error)
}
