package repository

import (
	"context"

	"github.com/irislab/irisgo/internal/model"
)

// ControllerAdapter narrows a Repository to the two context-free methods
// internal/capture.SubjectSource needs, so cmd/irisd can wire either
// backing implementation into the controller without that package
// depending on context-taking signatures it never uses for anything but
// a single session-scoped call.
type ControllerAdapter struct {
	Repo Repository
}

func (a ControllerAdapter) ListWithTemplates() ([]*model.SubjectRecord, error) {
	return a.Repo.ListWithTemplates(context.Background())
}

func (a ControllerAdapter) Insert(record *model.SubjectRecord) error {
	return a.Repo.Insert(context.Background(), record)
}
