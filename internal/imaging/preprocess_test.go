package imaging

import (
	"context"
	"testing"

	"github.com/irislab/irisgo/internal/model"
)

func TestPreprocessorResizesToCanonicalWidth(t *testing.T) {
	tests := []struct {
		name       string
		width      int
		height     int
		wantHeight int
	}{
		{name: "already canonical", width: 640, height: 480, wantHeight: 480},
		{name: "double width", width: 1280, height: 960, wantHeight: 480},
		{name: "odd aspect", width: 800, height: 600, wantHeight: 480},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := model.NewGrayImage(tt.width, tt.height)
			for i := range img.Pix {
				img.Pix[i] = uint8(i % 256)
			}

			p := NewPreprocessor()
			result, err := p.Process(context.Background(), img)
			if err != nil {
				t.Fatalf("Process: %v", err)
			}
			if result.Image.Width != CanonicalWidth {
				t.Errorf("width = %d, want %d", result.Image.Width, CanonicalWidth)
			}
			if result.Image.Height != tt.wantHeight {
				t.Errorf("height = %d, want %d", result.Image.Height, tt.wantHeight)
			}
			wantScale := float64(CanonicalWidth) / float64(tt.width)
			if result.Scale != wantScale {
				t.Errorf("scale = %v, want %v", result.Scale, wantScale)
			}
		})
	}
}

func TestPreprocessorRejectsNilInput(t *testing.T) {
	p := NewPreprocessor()
	if _, err := p.Process(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil input")
	}
}
