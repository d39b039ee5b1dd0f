package segmentation

import (
	"errors"
	"testing"

	"github.com/irislab/irisgo/internal/model"
)

func TestSegmentRejectsBlankImage(t *testing.T) {
	img := model.NewGrayImage(640, 480) // all-zero, no edges, no circles

	_, err := Segment(img)
	if err == nil {
		t.Fatal("expected error segmenting a blank image")
	}
	if !errors.Is(err, ErrSegmentationFailed) {
		t.Errorf("error = %v, want wrapping ErrSegmentationFailed", err)
	}
}

func TestQuickDetectBlankImageIsNotFound(t *testing.T) {
	img := model.NewGrayImage(640, 480)

	result, err := QuickDetect(img, 30)
	if err != nil {
		t.Fatalf("QuickDetect: %v", err)
	}
	if result.Status != model.StatusNotFound {
		t.Errorf("status = %v, want %v", result.Status, model.StatusNotFound)
	}
}

func TestImageCenter(t *testing.T) {
	cx, cy := imageCenter(640, 480)
	if cx != 320 || cy != 240 {
		t.Errorf("center = (%v, %v), want (320, 240)", cx, cy)
	}
}
