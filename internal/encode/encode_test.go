package encode

import (
	"context"
	"errors"
	"testing"

	"github.com/irislab/irisgo/internal/model"
)

func TestEncodeUniformStripIsTooNoisy(t *testing.T) {
	strip := model.NewNormalizedStrip()
	for i := range strip.Pix {
		strip.Pix[i] = 128 // flat field: every noise-mask cell has stddev 0
	}

	_, err := Encode(context.Background(), strip)
	if !errors.Is(err, ErrTooNoisy) {
		t.Fatalf("err = %v, want ErrTooNoisy for a flat-field strip", err)
	}
}

func TestEncodeTexturedStripProducesValidTemplate(t *testing.T) {
	strip := model.NewNormalizedStrip()
	for row := 0; row < strip.Rows; row++ {
		for col := 0; col < strip.Cols; col++ {
			v := uint8(128 + 60*((row+col)%2*2-1))
			strip.Set(row, col, v)
		}
	}

	tmpl, err := Encode(context.Background(), strip)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(tmpl.Code) != model.CodeLen {
		t.Errorf("len(Code) = %d, want %d", len(tmpl.Code), model.CodeLen)
	}
	if len(tmpl.Mask) != model.MaskLen {
		t.Errorf("len(Mask) = %d, want %d", len(tmpl.Mask), model.MaskLen)
	}
	for _, v := range tmpl.Code {
		if v != 0 && v != 1 {
			t.Fatalf("code bit = %v, want 0 or 1", v)
		}
	}
}

func TestBuildFilterBankHasEightFilters(t *testing.T) {
	bank := buildFilterBank()
	if len(bank) != 8 {
		t.Fatalf("len(bank) = %d, want 8", len(bank))
	}
}
