package repository

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/irislab/irisgo/internal/model"
)

func TestMemoryInsertAndGetByID(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory()

	rec := &model.SubjectRecord{ID: "s1", FirstName: "Ada"}
	if err := repo.Insert(ctx, rec); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	got, err := repo.GetByID(ctx, "s1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.FirstName != "Ada" {
		t.Fatalf("FirstName = %q, want Ada", got.FirstName)
	}
	if got.CreatedAt.IsZero() {
		t.Fatalf("CreatedAt not stamped")
	}
}

func TestMemoryGetByIDNotFound(t *testing.T) {
	repo := NewMemory()
	if _, err := repo.GetByID(context.Background(), "missing"); err != ErrNotFound {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestMemoryListWithTemplatesFiltersEmpty(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory()

	_ = repo.Insert(ctx, &model.SubjectRecord{ID: "no-templates"})
	_ = repo.Insert(ctx, &model.SubjectRecord{ID: "has-templates", Templates: []*model.Template{model.NewTemplate()}})

	withTemplates, err := repo.ListWithTemplates(ctx)
	if err != nil {
		t.Fatalf("ListWithTemplates: %v", err)
	}
	if len(withTemplates) != 1 || withTemplates[0].ID != "has-templates" {
		t.Fatalf("ListWithTemplates = %+v, want only has-templates", withTemplates)
	}
}

func TestMemorySearchMatchesCaseInsensitiveSubstring(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory()
	_ = repo.Insert(ctx, &model.SubjectRecord{ID: "s1", FirstName: "Grace", LastName: "Hopper"})
	_ = repo.Insert(ctx, &model.SubjectRecord{ID: "s2", FirstName: "Ada", LastName: "Lovelace"})

	got, err := repo.Search(ctx, "hopp")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 || got[0].ID != "s1" {
		t.Fatalf("Search = %+v, want only s1", got)
	}
}

func TestMemoryUpdateNotFound(t *testing.T) {
	repo := NewMemory()
	err := repo.Update(context.Background(), &model.SubjectRecord{ID: "missing"})
	if err != ErrNotFound {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestMemoryDeleteRemovesRecord(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory()
	_ = repo.Insert(ctx, &model.SubjectRecord{ID: "s1"})

	if err := repo.Delete(ctx, "s1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.GetByID(ctx, "s1"); err != ErrNotFound {
		t.Fatalf("record still present after delete")
	}
}

func TestMemoryInsertClonesSoCallerMutationDoesNotLeak(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory()

	rec := &model.SubjectRecord{ID: "s1", Templates: []*model.Template{model.NewTemplate()}}
	_ = repo.Insert(ctx, rec)

	rec.Templates[0] = nil
	got, _ := repo.GetByID(ctx, "s1")
	if got.Templates[0] == nil {
		t.Fatalf("mutating caller's slice affected stored record")
	}
}

func TestMemoryGetByIDReturnsStableSnapshot(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory()

	rec := &model.SubjectRecord{
		ID:        "s1",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Templates: []*model.Template{model.NewTemplate()},
	}
	_ = repo.Insert(ctx, rec)

	first, _ := repo.GetByID(ctx, "s1")
	second, _ := repo.GetByID(ctx, "s1")

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("two GetByID snapshots diverged (-first +second):\n%s", diff)
	}
}
