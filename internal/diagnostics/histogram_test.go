package diagnostics

import (
	"path/filepath"
	"testing"

	"github.com/irislab/irisgo/internal/model"
)

func fullyValidTemplate(bit float64) *model.Template {
	tmpl := model.NewTemplate()
	for i := range tmpl.Code {
		tmpl.Code[i] = bit
		tmpl.Mask[i] = 1
	}
	return tmpl
}

func TestPairwiseDistancesSplitsGenuineAndImpostor(t *testing.T) {
	subjects := []Subject{
		{ID: "a", Templates: []*model.Template{fullyValidTemplate(0), fullyValidTemplate(0)}},
		{ID: "b", Templates: []*model.Template{fullyValidTemplate(1)}},
	}

	sets := PairwiseDistances(subjects)

	if len(sets.Genuine) != 1 {
		t.Fatalf("genuine pairs = %d, want 1", len(sets.Genuine))
	}
	if sets.Genuine[0] != 0 {
		t.Fatalf("genuine distance = %v, want 0 (identical templates)", sets.Genuine[0])
	}
	if len(sets.Impostor) != 2 {
		t.Fatalf("impostor pairs = %d, want 2", len(sets.Impostor))
	}
	for _, d := range sets.Impostor {
		if d != 1 {
			t.Fatalf("impostor distance = %v, want 1 (fully opposite templates)", d)
		}
	}
}

func TestDistanceHistogramRejectsEmptyInput(t *testing.T) {
	if err := DistanceHistogram(nil, "t", filepath.Join(t.TempDir(), "out.png")); err == nil {
		t.Fatalf("expected error for empty distances")
	}
}
