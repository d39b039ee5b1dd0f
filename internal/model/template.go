package model

import "fmt"

// Template bit-layout constants from spec.md §3 / §4.5: 8 filters x 8
// radial-grid rows x 32 angular-grid columns x 2 phase bits (real, imag).
const (
	NumFilters  = 8
	GridRows    = 8
	GridCols    = 32
	PhaseBits   = 2
	CodeLen     = NumFilters * GridRows * GridCols * PhaseBits // 4096
	MaskLen     = CodeLen
	TemplateLen = CodeLen + MaskLen // 8192
	BitsPerFilter = GridRows * GridCols * PhaseBits // 512
)

// Template is an IrisCode: a fixed-length code/mask pair, each CodeLen
// bits long, stored as 0.0/1.0 floats per spec.md §3.
type Template struct {
	Code []float64 // len CodeLen
	Mask []float64 // len MaskLen
}

// NewTemplate allocates a zeroed template (all bits 0, fully masked out).
func NewTemplate() *Template {
	return &Template{
		Code: make([]float64, CodeLen),
		Mask: make([]float64, MaskLen),
	}
}

// Index returns the flat bit index for (filter, row, col, phaseBit), valid
// within both Code and Mask.
func Index(filter, row, col, phaseBit int) int {
	return filter*BitsPerFilter + row*(GridCols*PhaseBits) + col*PhaseBits + phaseBit
}

// Flatten concatenates code then mask into the persisted 8192-length vector.
func (t *Template) Flatten() []float64 {
	out := make([]float64, TemplateLen)
	copy(out, t.Code)
	copy(out[CodeLen:], t.Mask)
	return out
}

// TemplateFromFlat splits a persisted 8192-length vector back into a Template.
func TemplateFromFlat(v []float64) (*Template, error) {
	if len(v) != TemplateLen {
		return nil, fmt.Errorf("template: expected length %d, got %d", TemplateLen, len(v))
	}
	t := &Template{
		Code: make([]float64, CodeLen),
		Mask: make([]float64, MaskLen),
	}
	copy(t.Code, v[:CodeLen])
	copy(t.Mask, v[CodeLen:])
	return t, nil
}

// MaskValidFraction returns the fraction of mask bits that are 1.0 (valid).
func (t *Template) MaskValidFraction() float64 {
	if len(t.Mask) == 0 {
		return 0
	}
	valid := 0
	for _, m := range t.Mask {
		if m != 0 {
			valid++
		}
	}
	return float64(valid) / float64(len(t.Mask))
}
