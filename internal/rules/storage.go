package rules

import "context"

// Storage is the port to wherever rule documents live. Implementations return
// sentinel.ErrNotFound (wrapped) when no document exists at the path.
type Storage interface {
	ReadRaw(ctx context.Context, path string) ([]byte, error)
}

// ManagedStorage extends Storage with the write and list operations the rule
// management endpoints need. Read-only deployments can wire a plain Storage.
type ManagedStorage interface {
	Storage
	WriteRaw(ctx context.Context, path string, raw []byte) error
	List(ctx context.Context) ([]string, error)
}
