package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/irislab/irisgo/internal/model"
)

// Memory is a mutex-guarded map-backed Repository, grounded on
// resoltico-y's ImageRepository: a single RWMutex protecting a map plus
// defensive copies on every read so callers can't mutate internal state
// through a returned pointer.
type Memory struct {
	mu      sync.RWMutex
	records map[string]*model.SubjectRecord
}

// NewMemory returns an empty in-memory repository.
func NewMemory() *Memory {
	return &Memory{records: make(map[string]*model.SubjectRecord)}
}

func cloneRecord(r *model.SubjectRecord) *model.SubjectRecord {
	if r == nil {
		return nil
	}
	out := *r
	out.Templates = append([]*model.Template(nil), r.Templates...)
	return &out
}

func (m *Memory) Insert(_ context.Context, record *model.SubjectRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	record.CreatedAt = now
	record.UpdatedAt = now
	m.records[record.ID] = cloneRecord(record)
	return nil
}

func (m *Memory) GetByID(_ context.Context, id string) (*model.SubjectRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneRecord(rec), nil
}

func (m *Memory) ListAll(_ context.Context) ([]*model.SubjectRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*model.SubjectRecord, 0, len(m.records))
	for _, rec := range m.records {
		out = append(out, cloneRecord(rec))
	}
	return out, nil
}

// Search matches query as a case-insensitive substring of first name,
// last name, or email; spec.md leaves the query semantics unspecified
// beyond the method's existence.
func (m *Memory) Search(_ context.Context, query string) ([]*model.SubjectRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	q := strings.ToLower(query)
	var out []*model.SubjectRecord
	for _, rec := range m.records {
		if strings.Contains(strings.ToLower(rec.FirstName), q) ||
			strings.Contains(strings.ToLower(rec.LastName), q) ||
			strings.Contains(strings.ToLower(rec.Email), q) {
			out = append(out, cloneRecord(rec))
		}
	}
	return out, nil
}

func (m *Memory) ListWithTemplates(ctx context.Context) ([]*model.SubjectRecord, error) {
	all, err := m.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, rec := range all {
		if len(rec.Templates) > 0 {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *Memory) Update(_ context.Context, record *model.SubjectRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[record.ID]; !ok {
		return ErrNotFound
	}
	record.UpdatedAt = time.Now()
	m.records[record.ID] = cloneRecord(record)
	return nil
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[id]; !ok {
		return ErrNotFound
	}
	delete(m.records, id)
	return nil
}
