// Package normalize implements the normalizer (C3): the Daugman rubber-sheet
// unwrap of the iris annulus into a fixed 256x64 polar strip. Nearest-
// neighbour sampling follows the same out-of-bounds-is-zero convention used
// throughout resoltico-y's pixel-neighbourhood code.
package normalize

import (
	"fmt"
	"math"

	"github.com/irislab/irisgo/internal/model"
)

// Unwrap samples the annulus between seg.Pupil and seg.Iris into a
// model.NormalizedStrip per spec.md §4.3. The pupil and iris circles may be
// non-concentric; each angular ray interpolates independently between the
// two boundary points.
func Unwrap(img *model.GrayImage, seg model.Segmentation) (*model.NormalizedStrip, error) {
	if img == nil {
		return nil, fmt.Errorf("normalize: nil image")
	}

	strip := model.NewNormalizedStrip()

	for col := 0; col < model.StripCols; col++ {
		theta := 2 * math.Pi * float64(col) / float64(model.StripCols)
		cos, sin := math.Cos(theta), math.Sin(theta)

		pupilX := seg.Pupil.CenterX + seg.Pupil.Radius*cos
		pupilY := seg.Pupil.CenterY + seg.Pupil.Radius*sin
		irisX := seg.Iris.CenterX + seg.Iris.Radius*cos
		irisY := seg.Iris.CenterY + seg.Iris.Radius*sin

		for row := 0; row < model.StripRows; row++ {
			ratio := float64(row) / float64(model.StripRows)

			x := (1-ratio)*pupilX + ratio*irisX
			y := (1-ratio)*pupilY + ratio*irisY

			px := int(math.Round(x))
			py := int(math.Round(y))

			var v uint8
			if px >= 0 && px < img.Width && py >= 0 && py < img.Height {
				v = img.At(py, px)
			}
			strip.Set(row, col, v)
		}
	}

	return strip, nil
}
