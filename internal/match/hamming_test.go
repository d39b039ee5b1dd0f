package match

import (
	"testing"

	"github.com/irislab/irisgo/internal/model"
)

func fullyValidTemplate(codeFn func(f, r, c, bit int) float64) *model.Template {
	t := model.NewTemplate()
	for f := 0; f < model.NumFilters; f++ {
		for r := 0; r < model.GridRows; r++ {
			for c := 0; c < model.GridCols; c++ {
				for bit := 0; bit < model.PhaseBits; bit++ {
					i := model.Index(f, r, c, bit)
					t.Code[i] = codeFn(f, r, c, bit)
					t.Mask[i] = 1
				}
			}
		}
	}
	return t
}

func TestDistanceSelfIsZero(t *testing.T) {
	tmpl := fullyValidTemplate(func(f, r, c, bit int) float64 {
		return float64((f + r + c + bit) % 2)
	})
	d := Distance(tmpl, tmpl)
	if d != 0 {
		t.Errorf("Distance(tmpl, tmpl) = %v, want 0", d)
	}
}

func TestDistanceIsSymmetric(t *testing.T) {
	a := fullyValidTemplate(func(f, r, c, bit int) float64 { return float64((f + r) % 2) })
	b := fullyValidTemplate(func(f, r, c, bit int) float64 { return float64((c + bit) % 2) })

	if Distance(a, b) != Distance(b, a) {
		t.Errorf("Distance not symmetric: %v vs %v", Distance(a, b), Distance(b, a))
	}
}

func TestDistanceRejectsLengthMismatch(t *testing.T) {
	a := model.NewTemplate()
	b := &model.Template{Code: make([]float64, 10), Mask: make([]float64, 10)}

	if d := Distance(a, b); d != rejectedDistance {
		t.Errorf("Distance = %v, want %v on length mismatch", d, rejectedDistance)
	}
}

func TestDistanceRejectsInsufficientMutualValidBits(t *testing.T) {
	a := model.NewTemplate() // all-zero mask: nothing valid
	b := model.NewTemplate()
	a.Code[0] = 1

	if d := Distance(a, b); d != rejectedDistance {
		t.Errorf("Distance = %v, want %v with no valid bits", d, rejectedDistance)
	}
}

func TestDistanceToleratesRotation(t *testing.T) {
	// b is a is rotated by 2 angular columns; min-over-shifts should find
	// a shift that recovers a perfect match.
	a := fullyValidTemplate(func(f, r, c, bit int) float64 { return float64((c + bit) % 2) })
	b := fullyValidTemplate(func(f, r, c, bit int) float64 {
		shifted := ((c-2)%model.GridCols + model.GridCols) % model.GridCols
		return float64((shifted + bit) % 2)
	})

	if d := Distance(a, b); d != 0 {
		t.Errorf("Distance = %v, want 0 after compensating for rotation", d)
	}
}

func TestClassifyZones(t *testing.T) {
	tests := []struct {
		distance float64
		want     Zone
	}{
		{0.0, ZoneConfirmed},
		{0.27, ZoneConfirmed},
		{0.28, ZoneSuggested},
		{0.35, ZoneSuggested},
		{0.36, ZoneNone},
	}
	for _, tt := range tests {
		if got := Classify(tt.distance, DefaultThresholds); got != tt.want {
			t.Errorf("Classify(%v) = %v, want %v", tt.distance, got, tt.want)
		}
	}
}
