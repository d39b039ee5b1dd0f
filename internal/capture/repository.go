package capture

import "github.com/irislab/irisgo/internal/model"

// SubjectSource is the subset of the repository adapter (C8) the
// controller needs for verification: enumerate enrolled templates and
// persist newly enrolled ones. Defined at point of use, per Go convention,
// so internal/capture does not import internal/repository; the concrete
// adapter is wired in by cmd/irisd.
type SubjectSource interface {
	ListWithTemplates() ([]*model.SubjectRecord, error)
	Insert(record *model.SubjectRecord) error
}
