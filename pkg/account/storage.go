package account

import "context"

// FileStore persists uploaded file contents under a generated name
// (e.g., local disk, object storage).
type FileStore interface {
	Save(ctx context.Context, name string, data []byte) error
}
