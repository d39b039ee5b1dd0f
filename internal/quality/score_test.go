package quality

import (
	"testing"

	"github.com/irislab/irisgo/internal/model"
)

func TestCenteringScorePerfectCenterIsMax(t *testing.T) {
	img := model.NewGrayImage(640, 480)
	seg := model.Segmentation{Iris: model.Circle{CenterX: 320, CenterY: 240, Radius: 80}}

	got := centeringScore(img, seg)
	if got != 100 {
		t.Errorf("centeringScore = %v, want 100 for a dead-center iris", got)
	}
}

func TestCenteringScoreClampsAtZero(t *testing.T) {
	img := model.NewGrayImage(640, 480)
	seg := model.Segmentation{Iris: model.Circle{CenterX: 0, CenterY: 0, Radius: 80}}

	got := centeringScore(img, seg)
	if got != 0 {
		t.Errorf("centeringScore = %v, want 0 (clamped)", got)
	}
}

func TestResolutionScoreLinearMapping(t *testing.T) {
	tests := []struct {
		radius float64
		want   float64
	}{
		{radius: 40, want: 0},
		{radius: 100, want: 100},
		{radius: 70, want: 50},
		{radius: 10, want: 0},
		{radius: 200, want: 100},
	}
	for _, tt := range tests {
		seg := model.Segmentation{Iris: model.Circle{Radius: tt.radius}}
		got := resolutionScore(seg)
		if got != tt.want {
			t.Errorf("resolutionScore(r=%v) = %v, want %v", tt.radius, got, tt.want)
		}
	}
}

func TestSpecularScoreNoGlare(t *testing.T) {
	img := model.NewGrayImage(100, 100)
	for i := range img.Pix {
		img.Pix[i] = 100
	}
	seg := model.Segmentation{Iris: model.Circle{CenterX: 50, CenterY: 50, Radius: 40}}

	got := specularScore(img, seg)
	if got != 100 {
		t.Errorf("specularScore = %v, want 100 with no bright pixels", got)
	}
}
