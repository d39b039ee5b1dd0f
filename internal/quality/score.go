// Package quality implements the quality scorer (C4): five [0,100]
// sub-scores and their weighted composite, grounded on the combined-metric
// shape of resoltico-y's coordinator-level PSNR/SSIM scoring plus
// gonum.org/v1/gonum/stat for the sharpness variance computation.
package quality

import (
	"context"
	"fmt"
	"math"

	"github.com/irislab/irisgo/internal/model"
	"github.com/irislab/irisgo/internal/opencv/safe"
	"github.com/irislab/irisgo/internal/stripmask"

	"gonum.org/v1/gonum/stat"

	"gocv.io/x/gocv"
)

const (
	sharpnessMax = 200.0

	specularThreshold = 230
	specularBudget    = 0.15
	specularDivisor   = 0.14

	resolutionMinRadius = 40.0
	resolutionMaxRadius = 100.0
)

// Score computes spec.md §4.4's five sub-scores and composite for one
// scored frame. img is the preprocessed (640-wide, CLAHE'd) grayscale frame
// the segmentation was computed on; strip is its C3 normalized output.
// sharpnessMin is the Laplacian-variance floor of the sharpness sub-score's
// linear map (config.Quality.SharpnessMinFull), the full-resolution
// counterpart of live-preview's blur gate.
func Score(ctx context.Context, img *model.GrayImage, seg model.Segmentation, strip *model.NormalizedStrip, sharpnessMin float64) (model.QualityScore, error) {
	var q model.QualityScore

	sharpness, err := sharpnessScore(img, seg, sharpnessMin)
	if err != nil {
		return q, err
	}
	q.Sharpness = sharpness

	occlusion, err := occlusionScore(ctx, strip)
	if err != nil {
		return q, err
	}
	q.Occlusion = occlusion

	q.Specular = specularScore(img, seg)
	q.Centering = centeringScore(img, seg)
	q.Resolution = resolutionScore(seg)
	q.Compose()

	return q, nil
}

// irisROI returns the pixel-space bounding box of the iris circle, clipped
// to the image bounds.
func irisROI(img *model.GrayImage, seg model.Segmentation) (x0, y0, x1, y1 int) {
	r := seg.Iris.Radius
	x0 = int(math.Floor(seg.Iris.CenterX - r))
	y0 = int(math.Floor(seg.Iris.CenterY - r))
	x1 = int(math.Ceil(seg.Iris.CenterX + r))
	y1 = int(math.Ceil(seg.Iris.CenterY + r))
	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	if x1 > img.Width {
		x1 = img.Width
	}
	if y1 > img.Height {
		y1 = img.Height
	}
	return x0, y0, x1, y1
}

func sharpnessScore(img *model.GrayImage, seg model.Segmentation, sharpnessMin float64) (float64, error) {
	x0, y0, x1, y1 := irisROI(img, seg)
	if x1 <= x0 || y1 <= y0 {
		return 0, fmt.Errorf("quality: empty iris ROI")
	}

	mat, err := safe.NewMat(y1-y0, x1-x0, gocv.MatTypeCV8UC1)
	if err != nil {
		return 0, err
	}
	defer mat.Close()

	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			_ = mat.SetUCharAt(y-y0, x-x0, img.At(y, x))
		}
	}

	lap := gocv.NewMat()
	defer lap.Close()
	src := mat.GetMat()
	gocv.Laplacian(src, &lap, gocv.MatTypeCV64F, 1, 1, 0, gocv.BorderDefault)

	values := make([]float64, 0, (y1-y0)*(x1-x0))
	rows, cols := lap.Rows(), lap.Cols()
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			values = append(values, lap.GetDoubleAt(r, c))
		}
	}
	_, variance := stat.MeanVariance(values, nil)

	return linearMap(variance, sharpnessMin, sharpnessMax), nil
}

func occlusionScore(ctx context.Context, strip *model.NormalizedStrip) (float64, error) {
	cropped, err := stripmask.Prepare(ctx, strip)
	if err != nil {
		return 0, err
	}
	mask := stripmask.Compute(cropped)
	return model.Clamp01To100(mask.ValidFraction() * 100), nil
}

func specularScore(img *model.GrayImage, seg model.Segmentation) float64 {
	x0, y0, x1, y1 := irisROI(img, seg)
	total := 0
	bright := 0
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			total++
			if img.At(y, x) > specularThreshold {
				bright++
			}
		}
	}
	if total == 0 {
		return 0
	}
	b := float64(bright) / float64(total)
	return model.Clamp01To100((specularBudget - b) / specularDivisor * 100)
}

func centeringScore(img *model.GrayImage, seg model.Segmentation) float64 {
	cx, cy := float64(img.Width)/2, float64(img.Height)/2
	dx := seg.Iris.CenterX - cx
	dy := seg.Iris.CenterY - cy
	dist := math.Sqrt(dx*dx + dy*dy)
	return model.Clamp01To100((1 - dist/(0.3*float64(img.Width))) * 100)
}

func resolutionScore(seg model.Segmentation) float64 {
	return linearMap(seg.Iris.Radius, resolutionMinRadius, resolutionMaxRadius)
}

func linearMap(v, lo, hi float64) float64 {
	if hi == lo {
		return 0
	}
	return model.Clamp01To100((v - lo) / (hi - lo) * 100)
}
