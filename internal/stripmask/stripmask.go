// Package stripmask computes the cropped, CLAHE-equalized iris strip and
// its per-cell noise mask shared by the quality scorer (C4, occlusion
// sub-score) and the encoder (C5, which additionally applies dead-zone
// masking on top of this). Factored out so neither C4 nor C5 has to depend
// on the other to agree on what "valid cell" means.
package stripmask

import (
	"context"
	"fmt"
	"math"

	"github.com/irislab/irisgo/internal/imaging"
	"github.com/irislab/irisgo/internal/model"
	"github.com/irislab/irisgo/internal/opencv/convert"
)

// Cropped is the 256 (angular) x 48 (radial) strip left after CLAHE
// equalization and removal of the top/bottom 8-row eyelid zone, spec.md
// §4.5 steps 1-2.
const (
	CroppedRows = 48
	CroppedCols = model.StripCols

	cellRowStep = CroppedRows / model.GridRows // 6
	cellColStep = CroppedCols / model.GridCols // 8

	noiseStddevMin = 12.0
	noiseMeanMin   = 25.0
	noiseMeanMax   = 240.0
)

type Cropped struct {
	Rows int
	Cols int
	Pix  []uint8
}

func (c *Cropped) At(row, col int) uint8 {
	if c == nil || row < 0 || row >= c.Rows || col < 0 || col >= c.Cols {
		return 0
	}
	return c.Pix[row*c.Cols+col]
}

// Prepare runs CLAHE on the full 64-row strip and crops the top/bottom 8
// rows (eyelid zone), yielding the 256x48 strip both C4 and C5 operate on.
func Prepare(ctx context.Context, strip *model.NormalizedStrip) (*Cropped, error) {
	if strip == nil {
		return nil, fmt.Errorf("stripmask: nil strip")
	}

	img := model.NewGrayImage(strip.Cols, strip.Rows)
	copy(img.Pix, strip.Pix)

	mat, err := convert.ToGrayMat(img)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	equalized, err := imaging.ApplyCLAHE(ctx, mat, imaging.DefaultClipLimit, imaging.DefaultTileSize)
	if err != nil {
		return nil, err
	}
	defer equalized.Close()

	equalizedImg, err := convert.FromGrayMat(equalized)
	if err != nil {
		return nil, err
	}

	const eyelidRows = 8
	cropped := &Cropped{Rows: CroppedRows, Cols: CroppedCols, Pix: make([]uint8, CroppedRows*CroppedCols)}
	for row := 0; row < CroppedRows; row++ {
		srcRow := row + eyelidRows
		for col := 0; col < CroppedCols; col++ {
			cropped.Pix[row*CroppedCols+col] = equalizedImg.At(srcRow, col)
		}
	}
	return cropped, nil
}

// Mask is an 8x32 grid (radial rows x angular cols) of per-cell validity.
type Mask struct {
	Valid [model.GridRows][model.GridCols]bool
}

// ValidFraction is the fraction of the grid's 256 cells marked valid.
func (m Mask) ValidFraction() float64 {
	count := 0
	for r := 0; r < model.GridRows; r++ {
		for c := 0; c < model.GridCols; c++ {
			if m.Valid[r][c] {
				count++
			}
		}
	}
	return float64(count) / float64(model.GridRows*model.GridCols)
}

// Compute derives the noise mask of spec.md §4.5: a 6x8-pixel cell is
// invalid if its pixel std-dev < 12 or its mean is outside [25, 240].
func Compute(cropped *Cropped) Mask {
	var mask Mask
	for gr := 0; gr < model.GridRows; gr++ {
		for gc := 0; gc < model.GridCols; gc++ {
			mean, stddev := cellStats(cropped, gr*cellRowStep, gc*cellColStep, cellRowStep, cellColStep)
			mask.Valid[gr][gc] = stddev >= noiseStddevMin && mean >= noiseMeanMin && mean <= noiseMeanMax
		}
	}
	return mask
}

func cellStats(cropped *Cropped, row0, col0, rows, cols int) (mean, stddev float64) {
	n := 0
	sum := 0.0
	for r := row0; r < row0+rows; r++ {
		for c := col0; c < col0+cols; c++ {
			sum += float64(cropped.At(r, c))
			n++
		}
	}
	if n == 0 {
		return 0, 0
	}
	mean = sum / float64(n)

	variance := 0.0
	for r := row0; r < row0+rows; r++ {
		for c := col0; c < col0+cols; c++ {
			d := float64(cropped.At(r, c)) - mean
			variance += d * d
		}
	}
	variance /= float64(n)
	return mean, math.Sqrt(variance)
}
