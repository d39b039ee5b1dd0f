// Package segmentation implements the segmenter (C2): median-blur
// conditioning followed by two independent circular-Hough passes to locate
// the pupil and iris boundaries, grounded on the Hough-voting approach in
// danderson-iris's location package but using gocv's built-in
// HoughCirclesWithParams rather than a hand-rolled voting matrix.
package segmentation

import (
	"fmt"
	"math"

	"github.com/irislab/irisgo/internal/model"
	"github.com/irislab/irisgo/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// ErrSegmentationFailed is returned when geometry validation fails, or
// either Hough pass finds no candidates.
var ErrSegmentationFailed = fmt.Errorf("segmentation: failed")

// HoughParams are the tunables for one circular-Hough pass.
type HoughParams struct {
	DP         float64
	MinDist    float64
	CannyUpper float64
	AccThresh  float64
	MinRadius  int
	MaxRadius  int
}

// Full-resolution pass parameters, spec.md §4.2.
var (
	PupilParamsFull = HoughParams{DP: 1.5, MinDist: 50, CannyUpper: 100, AccThresh: 40, MinRadius: 10, MaxRadius: 80}
	IrisParamsFull  = HoughParams{DP: 1.5, MinDist: 100, CannyUpper: 80, AccThresh: 35, MinRadius: 60, MaxRadius: 200}
)

// Quick-detect preview pass parameters, spec.md §4.2.
var (
	PupilParamsPreview = HoughParams{DP: 1.5, MinDist: 25, CannyUpper: 100, AccThresh: 40, MinRadius: 5, MaxRadius: 40}
	IrisParamsPreview  = HoughParams{DP: 1.5, MinDist: 50, CannyUpper: 80, AccThresh: 35, MinRadius: 30, MaxRadius: 100}
)

const minIrisRadiusFull = 40

// Segment runs the full pipeline on a preprocessed (already 640-wide,
// CLAHE-equalized) grayscale image.
func Segment(img *model.GrayImage) (model.Segmentation, error) {
	mat, err := toMat(img)
	if err != nil {
		return model.Segmentation{}, err
	}
	defer mat.Close()

	blurred, err := medianBlur(mat, 7)
	if err != nil {
		return model.Segmentation{}, err
	}
	defer blurred.Close()

	center := imageCenter(img.Width, img.Height)

	pupil, ok := closestCircle(blurred, PupilParamsFull, center)
	if !ok {
		return model.Segmentation{}, fmt.Errorf("%w: no pupil candidates", ErrSegmentationFailed)
	}
	iris, ok := closestCircle(blurred, IrisParamsFull, center)
	if !ok {
		return model.Segmentation{}, fmt.Errorf("%w: no iris candidates", ErrSegmentationFailed)
	}

	if iris.Radius < minIrisRadiusFull {
		return model.Segmentation{}, fmt.Errorf("%w: iris radius %.1f below minimum %d", ErrSegmentationFailed, iris.Radius, minIrisRadiusFull)
	}

	seg := model.Segmentation{Pupil: pupil, Iris: iris}
	if err := seg.Validate(minIrisRadiusFull); err != nil {
		return model.Segmentation{}, fmt.Errorf("%w: %v", ErrSegmentationFailed, err)
	}
	return seg, nil
}

func imageCenter(width, height int) (float64, float64) {
	return float64(width) / 2, float64(height) / 2
}

// closestCircle runs one Hough pass and returns the candidate whose center
// is closest (squared Euclidean) to cx, cy.
func closestCircle(mat *safe.Mat, params HoughParams, center [2]float64) (model.Circle, bool) {
	src := mat.GetMat()

	circles := gocv.NewMat()
	defer circles.Close()

	gocv.HoughCirclesWithParams(
		src,
		&circles,
		gocv.HoughGradient,
		params.DP,
		params.MinDist,
		params.CannyUpper,
		params.AccThresh,
		params.MinRadius,
		params.MaxRadius,
	)

	rows := circles.Rows()
	if rows == 0 || circles.Cols() == 0 {
		return model.Circle{}, false
	}

	best := model.Circle{}
	bestDist := math.MaxFloat64
	found := false

	// HoughCirclesWithParams returns a 1xN CV_32FC3 Mat of (x, y, r) triples.
	for col := 0; col < circles.Cols(); col++ {
		v := circles.GetVecfAt(0, col)
		if len(v) < 3 {
			continue
		}
		x, y, r := float64(v[0]), float64(v[1]), float64(v[2])
		dx, dy := x-center[0], y-center[1]
		d := dx*dx + dy*dy
		if !found || d < bestDist {
			best = model.Circle{CenterX: x, CenterY: y, Radius: r}
			bestDist = d
			found = true
		}
	}
	return best, found
}

func medianBlur(mat *safe.Mat, ksize int) (*safe.Mat, error) {
	if err := safe.ValidateMatForOperation(mat, "medianBlur"); err != nil {
		return nil, err
	}
	dst, err := safe.NewMat(mat.Rows(), mat.Cols(), mat.Type())
	if err != nil {
		return nil, err
	}
	src := mat.GetMat()
	dstMat := dst.GetMat()
	gocv.MedianBlur(src, &dstMat, ksize)
	return dst, nil
}

func toMat(img *model.GrayImage) (*safe.Mat, error) {
	mat, err := safe.NewMat(img.Height, img.Width, gocv.MatTypeCV8UC1)
	if err != nil {
		return nil, err
	}
	for row := 0; row < img.Height; row++ {
		base := row * img.Width
		for col := 0; col < img.Width; col++ {
			_ = mat.SetUCharAt(row, col, img.Pix[base+col])
		}
	}
	return mat, nil
}
