package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/irislab/irisgo/internal/model"
)

// Postgres is the durable Repository implementation, grounded on
// iluha78-FD's storage.PostgresStore: a pgxpool.Pool, one method per
// query, QueryRow/Scan for singletons, rows.Next loops for lists.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres connects a pool against dsn and verifies it with a ping.
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("repository: connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("repository: ping postgres: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

func (p *Postgres) Close() {
	p.pool.Close()
}

const subjectColumns = `id, first_name, last_name, age, email, phone, notes, iris_image_path, iris_templates, iris_template, created_at, updated_at`

// scanRecord decodes one row, applying spec.md §6's legacy migration: a
// non-null v1 iris_template (comma-separated doubles) becomes a singleton
// iris_templates entry when the v2 column is empty.
func scanRecord(row pgx.Row) (*model.SubjectRecord, error) {
	var rec model.SubjectRecord
	var templatesJSON []byte
	var legacyTemplate *string

	err := row.Scan(&rec.ID, &rec.FirstName, &rec.LastName, &rec.Age, &rec.Email, &rec.Phone,
		&rec.Notes, &rec.IrisImagePath, &templatesJSON, &legacyTemplate, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}

	var vectors [][]float64
	if len(templatesJSON) > 0 {
		if err := json.Unmarshal(templatesJSON, &vectors); err != nil {
			return nil, fmt.Errorf("repository: decode iris_templates: %w", err)
		}
	}
	if len(vectors) == 0 && legacyTemplate != nil && *legacyTemplate != "" {
		v, err := parseLegacyTemplate(*legacyTemplate)
		if err != nil {
			return nil, fmt.Errorf("repository: decode legacy iris_template: %w", err)
		}
		vectors = [][]float64{v}
	}

	rec.Templates = make([]*model.Template, 0, len(vectors))
	for _, v := range vectors {
		tmpl, err := model.TemplateFromFlat(v)
		if err != nil {
			return nil, err
		}
		rec.Templates = append(rec.Templates, tmpl)
	}
	return &rec, nil
}

func parseLegacyTemplate(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func templatesToJSON(templates []*model.Template) ([]byte, error) {
	vectors := make([][]float64, len(templates))
	for i, t := range templates {
		vectors[i] = t.Flatten()
	}
	return json.Marshal(vectors)
}

// Insert always writes the v2 iris_templates column; iris_template (v1)
// is left null on new rows.
func (p *Postgres) Insert(ctx context.Context, record *model.SubjectRecord) error {
	templatesJSON, err := templatesToJSON(record.Templates)
	if err != nil {
		return err
	}

	err = p.pool.QueryRow(ctx,
		`INSERT INTO subjects (id, first_name, last_name, age, email, phone, notes, iris_image_path, iris_templates)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING created_at, updated_at`,
		record.ID, record.FirstName, record.LastName, record.Age, record.Email, record.Phone,
		record.Notes, record.IrisImagePath, templatesJSON,
	).Scan(&record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		return fmt.Errorf("repository: insert subject: %w", err)
	}
	return nil
}

func (p *Postgres) GetByID(ctx context.Context, id string) (*model.SubjectRecord, error) {
	row := p.pool.QueryRow(ctx, `SELECT `+subjectColumns+` FROM subjects WHERE id = $1`, id)
	rec, err := scanRecord(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: get subject: %w", err)
	}
	return rec, nil
}

func (p *Postgres) ListAll(ctx context.Context) ([]*model.SubjectRecord, error) {
	rows, err := p.pool.Query(ctx, `SELECT `+subjectColumns+` FROM subjects ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("repository: list subjects: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func (p *Postgres) Search(ctx context.Context, query string) ([]*model.SubjectRecord, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT `+subjectColumns+` FROM subjects
		 WHERE first_name ILIKE $1 OR last_name ILIKE $1 OR email ILIKE $1
		 ORDER BY created_at DESC`,
		"%"+query+"%")
	if err != nil {
		return nil, fmt.Errorf("repository: search subjects: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func (p *Postgres) ListWithTemplates(ctx context.Context) ([]*model.SubjectRecord, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT `+subjectColumns+` FROM subjects
		 WHERE (iris_templates IS NOT NULL AND iris_templates::text != '[]')
		    OR iris_template IS NOT NULL
		 ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("repository: list subjects with templates: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func scanRecords(rows pgx.Rows) ([]*model.SubjectRecord, error) {
	var out []*model.SubjectRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: scan subject: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Update rewrites every column, including templates, always in v2 form;
// a v1-only record updated this way migrates permanently on write.
func (p *Postgres) Update(ctx context.Context, record *model.SubjectRecord) error {
	templatesJSON, err := templatesToJSON(record.Templates)
	if err != nil {
		return err
	}

	now := time.Now()
	tag, err := p.pool.Exec(ctx,
		`UPDATE subjects SET first_name = $1, last_name = $2, age = $3, email = $4, phone = $5,
		   notes = $6, iris_image_path = $7, iris_templates = $8, updated_at = $9
		 WHERE id = $10`,
		record.FirstName, record.LastName, record.Age, record.Email, record.Phone,
		record.Notes, record.IrisImagePath, templatesJSON, now, record.ID)
	if err != nil {
		return fmt.Errorf("repository: update subject: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	record.UpdatedAt = now
	return nil
}

func (p *Postgres) Delete(ctx context.Context, id string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM subjects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("repository: delete subject: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
