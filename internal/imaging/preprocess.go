package imaging

import (
	"context"
	"fmt"

	"github.com/irislab/irisgo/internal/model"
	"github.com/irislab/irisgo/internal/opencv/convert"
	"github.com/irislab/irisgo/internal/opencv/memory"
	"github.com/irislab/irisgo/internal/opencv/safe"
)

// Preprocessor is C1: resize to CanonicalWidth, then CLAHE-equalize.
type Preprocessor struct {
	chain     *Chain
	clipLimit float64
	tileSize  int
	mem       *memory.Manager
}

func NewPreprocessor() *Preprocessor {
	return &Preprocessor{
		chain: NewChain(
			NewResizeStep(CanonicalWidth),
			NewCLAHEStep(DefaultClipLimit, DefaultTileSize),
		),
		clipLimit: DefaultClipLimit,
		tileSize:  DefaultTileSize,
	}
}

// NewPreprocessorWithMemory is NewPreprocessor with its input Mat allocated
// through mgr, so a capture daemon running continuously for hours gets
// leak accounting on every frame it preprocesses.
func NewPreprocessorWithMemory(mgr *memory.Manager) *Preprocessor {
	p := NewPreprocessor()
	p.mem = mgr
	return p
}

// Result bundles the preprocessed image with the scale factor spec.md §4.1
// requires C1 to report, so C2's downstream radii reasoning (expressed in
// canonical-width pixels) can be mapped back to the original frame if ever
// needed by a caller outside the pipeline.
type Result struct {
	Image *model.GrayImage
	Scale float64
}

// Process resizes the input to CanonicalWidth and CLAHE-equalizes it.
func (p *Preprocessor) Process(ctx context.Context, input *model.GrayImage) (Result, error) {
	if input == nil {
		return Result{}, fmt.Errorf("imaging: nil input")
	}

	var srcMat *safe.Mat
	var err error
	if p.mem != nil {
		srcMat, err = convert.ToGrayMatTracked(input, p.mem, "preprocess_input")
	} else {
		srcMat, err = convert.ToGrayMat(input)
	}
	if err != nil {
		return Result{}, fmt.Errorf("imaging: %w", err)
	}
	if p.mem != nil {
		defer p.mem.ReleaseMat(srcMat, "preprocess_input")
	} else {
		defer srcMat.Close()
	}

	params := make(map[string]interface{})
	var out *safe.Mat
	out, err = p.chain.Execute(ctx, srcMat, params)
	if err != nil {
		return Result{}, err
	}
	defer out.Close()

	scale, _ := params[resizeScaleKey].(float64)

	outImg, err := convert.FromGrayMat(out)
	if err != nil {
		return Result{}, err
	}

	return Result{Image: outImg, Scale: scale}, nil
}
