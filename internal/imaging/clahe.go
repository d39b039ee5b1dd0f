package imaging

import (
	"context"
	"fmt"
	"image"

	"github.com/irislab/irisgo/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// DefaultClipLimit and DefaultTileSize are spec.md §4.1's CLAHE parameters,
// shared by the C1 preprocessor and the C5 encoder's strip re-equalization.
const (
	DefaultClipLimit = 2.0
	DefaultTileSize  = 8
)

// claheStep applies contrast-limited adaptive histogram equalization.
type claheStep struct {
	clipLimit float64
	tileSize  int
}

func NewCLAHEStep(clipLimit float64, tileSize int) Step {
	return &claheStep{clipLimit: clipLimit, tileSize: tileSize}
}

func (s *claheStep) Name() string { return "clahe" }

func (s *claheStep) Apply(ctx context.Context, input *safe.Mat, params map[string]interface{}) (*safe.Mat, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if err := safe.ValidateMatForOperation(input, "clahe"); err != nil {
		return nil, err
	}

	dst, err := safe.NewMat(input.Rows(), input.Cols(), input.Type())
	if err != nil {
		return nil, fmt.Errorf("clahe: allocate destination: %w", err)
	}

	clahe := gocv.NewCLAHEWithParams(s.clipLimit, image.Point{X: s.tileSize, Y: s.tileSize})
	defer clahe.Close()

	srcMat := input.GetMat()
	dstMat := dst.GetMat()
	clahe.Apply(srcMat, &dstMat)

	return dst, nil
}

// ApplyCLAHE runs CLAHE on a single Mat without a chain, for callers (C5)
// that only need this one step.
func ApplyCLAHE(ctx context.Context, input *safe.Mat, clipLimit float64, tileSize int) (*safe.Mat, error) {
	return NewCLAHEStep(clipLimit, tileSize).Apply(ctx, input, nil)
}
