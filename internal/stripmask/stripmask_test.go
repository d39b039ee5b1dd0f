package stripmask

import (
	"context"
	"testing"

	"github.com/irislab/irisgo/internal/model"
)

func TestComputeMarksLowContrastCellsInvalid(t *testing.T) {
	cropped := &Cropped{Rows: CroppedRows, Cols: CroppedCols, Pix: make([]uint8, CroppedRows*CroppedCols)}
	// Leave everything at 0 (mean 0 < 25): every cell should be invalid.
	mask := Compute(cropped)
	if mask.ValidFraction() != 0 {
		t.Fatalf("ValidFraction = %v, want 0 for an all-zero strip", mask.ValidFraction())
	}
}

func TestComputeMarksHighContrastCellsValid(t *testing.T) {
	cropped := &Cropped{Rows: CroppedRows, Cols: CroppedCols, Pix: make([]uint8, CroppedRows*CroppedCols)}
	for i := range cropped.Pix {
		if i%2 == 0 {
			cropped.Pix[i] = 60
		} else {
			cropped.Pix[i] = 140
		}
	}
	mask := Compute(cropped)
	if mask.ValidFraction() != 1 {
		t.Fatalf("ValidFraction = %v, want 1 for a high-contrast mid-range strip", mask.ValidFraction())
	}
}

func TestPrepareProducesCanonicalCroppedSize(t *testing.T) {
	strip := model.NewNormalizedStrip()
	for i := range strip.Pix {
		strip.Pix[i] = uint8(i % 256)
	}

	cropped, err := Prepare(context.Background(), strip)
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if cropped.Rows != CroppedRows || cropped.Cols != CroppedCols {
		t.Errorf("size = %dx%d, want %dx%d", cropped.Cols, cropped.Rows, CroppedCols, CroppedRows)
	}
}
