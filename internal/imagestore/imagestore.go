// Package imagestore persists the still-capture image behind each
// enrolled record, spec.md §6's "<app-docs>/iris_images/<uuid>.png"
// directory layout, with a filesystem implementation and an alternate
// MinIO-backed one sharing the same interface.
package imagestore

import "context"

// Store saves and retrieves PNG-encoded still captures keyed by the
// subject's id. The key has no extension; each implementation owns its
// own layout convention (iris_images/<id>.png locally, the same path as
// an object key in MinIO).
type Store interface {
	Put(ctx context.Context, id string, png []byte) (path string, err error)
	Get(ctx context.Context, id string) ([]byte, error)
	Delete(ctx context.Context, id string) error
}
