// Package repository implements C8, the subject record store: the port
// interface spec.md §6 names, an in-memory implementation for tests and
// quick-start deployments, and a Postgres implementation matching the
// persisted v1/v2 schema. Template vectors cross this boundary flattened
// (model.Template.Flatten / model.TemplateFromFlat) since the storage
// layer treats them as opaque equal-length float vectors, not bit planes.
package repository

import (
	"context"
	"errors"

	"github.com/irislab/irisgo/internal/model"
)

// ErrNotFound is returned by GetByID when no record matches.
var ErrNotFound = errors.New("repository: record not found")

// Repository is the durable subject store spec.md §6 names: insert,
// getById, listAll, search, listWithTemplates, update, delete.
type Repository interface {
	Insert(ctx context.Context, record *model.SubjectRecord) error
	GetByID(ctx context.Context, id string) (*model.SubjectRecord, error)
	ListAll(ctx context.Context) ([]*model.SubjectRecord, error)
	Search(ctx context.Context, query string) ([]*model.SubjectRecord, error)
	ListWithTemplates(ctx context.Context) ([]*model.SubjectRecord, error)
	Update(ctx context.Context, record *model.SubjectRecord) error
	Delete(ctx context.Context, id string) error
}
