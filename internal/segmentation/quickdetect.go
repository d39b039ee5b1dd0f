package segmentation

import (
	"fmt"
	"image"
	"math"

	"github.com/irislab/irisgo/internal/model"
	"github.com/irislab/irisgo/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// PreviewWidth is the width quick-detect resizes its input to, spec.md §4.2.
const PreviewWidth = 320

const (
	previewMinIrisRadius = 30
	tooFarRadius         = 40
	tooCloseRadius       = 90
	centeringFraction    = 0.30
)

// QuickResult is quick-detect's verdict for one live-preview frame.
type QuickResult struct {
	Status DetectionStatusSet
	Seg    model.Segmentation
}

// DetectionStatusSet is an alias kept local so callers don't need to import
// model just to name a status; it is identical to model.DetectionStatus.
type DetectionStatusSet = model.DetectionStatus

// QuickDetect runs the lightweight pupil/iris search used during live
// preview and classifies the frame into one of spec.md §4.2's six states.
// sharpnessMin is the Laplacian-variance floor below which a frame is
// rejected as too blurry (config.Quality.SharpnessMinPreview).
func QuickDetect(img *model.GrayImage, sharpnessMin float64) (QuickResult, error) {
	preview, err := resizeToWidth(img, PreviewWidth)
	if err != nil {
		return QuickResult{}, err
	}

	mat, err := toMat(preview)
	if err != nil {
		return QuickResult{}, err
	}
	defer mat.Close()

	blurred, err := medianBlur(mat, 7)
	if err != nil {
		return QuickResult{}, err
	}
	defer blurred.Close()

	center := imageCenter(preview.Width, preview.Height)

	pupil, havePupil := closestCircle(blurred, PupilParamsPreview, center)
	iris, haveIris := closestCircle(blurred, IrisParamsPreview, center)

	if !havePupil || !haveIris {
		return QuickResult{Status: model.StatusNotFound}, nil
	}

	seg := model.Segmentation{Pupil: pupil, Iris: iris}

	if iris.Radius < tooFarRadius {
		return QuickResult{Status: model.StatusTooFar, Seg: seg}, nil
	}
	if iris.Radius > tooCloseRadius {
		return QuickResult{Status: model.StatusTooClose, Seg: seg}, nil
	}

	dx := math.Abs(iris.CenterX - center[0])
	dy := math.Abs(iris.CenterY - center[1])
	if dx > centeringFraction*float64(preview.Width) || dy > centeringFraction*float64(preview.Width) {
		return QuickResult{Status: model.StatusNotCentered, Seg: seg}, nil
	}

	sharpness, err := laplacianVariance(blurred)
	if err != nil {
		return QuickResult{}, err
	}
	if sharpness < sharpnessMin {
		return QuickResult{Status: model.StatusTooBlurry, Seg: seg}, nil
	}

	if err := seg.Validate(previewMinIrisRadius); err != nil {
		return QuickResult{Status: model.StatusNotFound, Seg: seg}, nil
	}

	return QuickResult{Status: model.StatusReady, Seg: seg}, nil
}

func resizeToWidth(img *model.GrayImage, width int) (*model.GrayImage, error) {
	if img.Width == width {
		return img, nil
	}
	mat, err := toMat(img)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	scale := float64(width) / float64(img.Width)
	height := int(float64(img.Height)*scale + 0.5)

	dst, err := safe.NewMat(height, width, mat.Type())
	if err != nil {
		return nil, err
	}
	defer dst.Close()

	src := mat.GetMat()
	dstMat := dst.GetMat()
	gocv.Resize(src, &dstMat, image.Point{X: width, Y: height}, 0, 0, gocv.InterpolationLinear)

	out := model.NewGrayImage(width, height)
	for row := 0; row < height; row++ {
		base := row * width
		for col := 0; col < width; col++ {
			v, err := dst.GetUCharAt(row, col)
			if err != nil {
				return nil, err
			}
			out.Pix[base+col] = v
		}
	}
	return out, nil
}

func laplacianVariance(mat *safe.Mat) (float64, error) {
	lap := gocv.NewMat()
	defer lap.Close()

	src := mat.GetMat()
	gocv.Laplacian(src, &lap, gocv.MatTypeCV64F, 1, 1, 0, gocv.BorderDefault)

	mean := gocv.NewMat()
	defer mean.Close()
	stddev := gocv.NewMat()
	defer stddev.Close()
	gocv.MeanStdDev(lap, &mean, &stddev)

	if stddev.Rows() == 0 || stddev.Cols() == 0 {
		return 0, fmt.Errorf("segmentation: empty stddev result")
	}
	sd := stddev.GetDoubleAt(0, 0)
	return sd * sd, nil
}
