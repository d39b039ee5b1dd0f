package imaging

import (
	"context"
	"fmt"
	"image"

	"github.com/irislab/irisgo/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// CanonicalWidth is the width spec.md §4.1 calibrates all downstream radii
// and thresholds against.
const CanonicalWidth = 640

// resizeStep scales an image so its width equals targetWidth, preserving
// aspect ratio. The applied scale factor is written into params under
// resizeScaleKey so callers downstream of a Chain can retrieve it.
type resizeStep struct {
	targetWidth int
}

const resizeScaleKey = "_resize_scale"

func NewResizeStep(targetWidth int) Step {
	return &resizeStep{targetWidth: targetWidth}
}

func (s *resizeStep) Name() string { return "resize" }

func (s *resizeStep) Apply(ctx context.Context, input *safe.Mat, params map[string]interface{}) (*safe.Mat, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if err := safe.ValidateMatForOperation(input, "resize"); err != nil {
		return nil, err
	}

	cols := input.Cols()
	if cols <= 0 {
		return nil, fmt.Errorf("resize: source has zero width")
	}

	scale := float64(s.targetWidth) / float64(cols)
	targetHeight := int(float64(input.Rows())*scale + 0.5)

	dst, err := safe.NewMat(targetHeight, s.targetWidth, input.Type())
	if err != nil {
		return nil, fmt.Errorf("resize: allocate destination: %w", err)
	}

	srcMat := input.GetMat()
	dstMat := dst.GetMat()
	gocv.Resize(srcMat, &dstMat, image.Point{X: s.targetWidth, Y: targetHeight}, 0, 0, gocv.InterpolationLinear)

	if params != nil {
		params[resizeScaleKey] = scale
	}

	return dst, nil
}
