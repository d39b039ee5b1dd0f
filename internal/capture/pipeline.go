package capture

import (
	"context"
	"fmt"
	"time"

	"github.com/irislab/irisgo/internal/encode"
	"github.com/irislab/irisgo/internal/imaging"
	"github.com/irislab/irisgo/internal/metrics"
	"github.com/irislab/irisgo/internal/model"
	"github.com/irislab/irisgo/internal/normalize"
	"github.com/irislab/irisgo/internal/quality"
	"github.com/irislab/irisgo/internal/segmentation"
)

func observe(stage string, start time.Time) {
	metrics.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// scoreFrame runs the full C1->C2->C3->C4 pipeline on one raw camera frame,
// producing a ScoredFrame. Soft failures (SegmentationFailed) are returned
// as plain errors for the caller to absorb per spec.md §7's propagation
// policy; nothing here panics or crosses the frame boundary any other way.
func scoreFrame(ctx context.Context, pre *imaging.Preprocessor, raw *model.GrayImage, sharpnessMin float64) (*model.ScoredFrame, error) {
	start := time.Now()
	result, err := pre.Process(ctx, raw)
	observe("preprocess", start)
	if err != nil {
		metrics.FramesAnalyzed.WithLabelValues("preprocess_failed").Inc()
		return nil, fmt.Errorf("capture: preprocess: %w", err)
	}

	start = time.Now()
	seg, err := segmentation.Segment(result.Image)
	observe("segment", start)
	if err != nil {
		metrics.FramesAnalyzed.WithLabelValues("segmentation_failed").Inc()
		return nil, err
	}

	start = time.Now()
	strip, err := normalize.Unwrap(result.Image, seg)
	observe("normalize", start)
	if err != nil {
		metrics.FramesAnalyzed.WithLabelValues("normalize_failed").Inc()
		return nil, fmt.Errorf("capture: normalize: %w", err)
	}

	start = time.Now()
	q, err := quality.Score(ctx, result.Image, seg, strip, sharpnessMin)
	observe("quality", start)
	if err != nil {
		metrics.FramesAnalyzed.WithLabelValues("quality_failed").Inc()
		return nil, fmt.Errorf("capture: quality: %w", err)
	}

	metrics.FramesAnalyzed.WithLabelValues("scored").Inc()
	frame := &model.ScoredFrame{
		Image:   result.Image,
		Seg:     seg,
		Quality: q,
	}
	frame.SetStrip(strip)
	return frame, nil
}

// encodeFrame runs C5 on a scored frame's strip.
func encodeFrame(ctx context.Context, frame *model.ScoredFrame) (*model.Template, error) {
	start := time.Now()
	tmpl, err := encode.Encode(ctx, frame.Strip())
	observe("encode", start)
	return tmpl, err
}
