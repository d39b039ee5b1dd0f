package normalize

import (
	"testing"

	"github.com/irislab/irisgo/internal/model"
)

func TestUnwrapProducesCanonicalSize(t *testing.T) {
	img := model.NewGrayImage(640, 480)
	seg := model.Segmentation{
		Pupil: model.Circle{CenterX: 320, CenterY: 240, Radius: 30},
		Iris:  model.Circle{CenterX: 320, CenterY: 240, Radius: 80},
	}

	strip, err := Unwrap(img, seg)
	if err != nil {
		t.Fatalf("Unwrap: %v", err)
	}
	if strip.Rows != model.StripRows || strip.Cols != model.StripCols {
		t.Fatalf("strip size = %dx%d, want %dx%d", strip.Cols, strip.Rows, model.StripCols, model.StripRows)
	}
}

func TestUnwrapOutOfBoundsSamplesAreZero(t *testing.T) {
	img := model.NewGrayImage(10, 10)
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	// Circle centered far outside the image so every sample is out of bounds.
	seg := model.Segmentation{
		Pupil: model.Circle{CenterX: -1000, CenterY: -1000, Radius: 10},
		Iris:  model.Circle{CenterX: -1000, CenterY: -1000, Radius: 20},
	}

	strip, err := Unwrap(img, seg)
	if err != nil {
		t.Fatalf("Unwrap: %v", err)
	}
	for row := 0; row < strip.Rows; row++ {
		for col := 0; col < strip.Cols; col++ {
			if strip.At(row, col) != 0 {
				t.Fatalf("At(%d,%d) = %d, want 0", row, col, strip.At(row, col))
			}
		}
	}
}

func TestUnwrapConcentricCirclesSampleRadially(t *testing.T) {
	img := model.NewGrayImage(640, 480)
	// Paint a ring so row 0 (pupil boundary) differs from row 63 (iris boundary).
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			dx, dy := float64(x-320), float64(y-240)
			dist := dx*dx + dy*dy
			if dist < 40*40 {
				img.Set(y, x, 50)
			} else {
				img.Set(y, x, 200)
			}
		}
	}
	seg := model.Segmentation{
		Pupil: model.Circle{CenterX: 320, CenterY: 240, Radius: 30},
		Iris:  model.Circle{CenterX: 320, CenterY: 240, Radius: 80},
	}

	strip, err := Unwrap(img, seg)
	if err != nil {
		t.Fatalf("Unwrap: %v", err)
	}
	// Row 0 sits on the pupil boundary (radius 30, inside the dark disk);
	// the last row sits on the iris boundary (radius 80, outside it).
	if strip.At(0, 0) != 50 {
		t.Errorf("strip[0][0] = %d, want 50 (inside pupil ring)", strip.At(0, 0))
	}
	if strip.At(model.StripRows-1, 0) != 200 {
		t.Errorf("strip[%d][0] = %d, want 200 (outside pupil ring)", model.StripRows-1, strip.At(model.StripRows-1, 0))
	}
}
