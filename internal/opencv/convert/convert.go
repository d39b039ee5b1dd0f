// Package convert bridges the pure-Go model.GrayImage contract used at
// pipeline stage boundaries and the gocv.Mat values the stages actually
// compute with internally.
package convert

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/irislab/irisgo/internal/model"
	"github.com/irislab/irisgo/internal/opencv/memory"
	"github.com/irislab/irisgo/internal/opencv/safe"

	"gocv.io/x/gocv"

	_ "github.com/deepteams/webp" // registers "webp" with image.Decode
)

// ToGrayMat copies a model.GrayImage into a freshly-allocated CV_8UC1 Mat.
func ToGrayMat(img *model.GrayImage) (*safe.Mat, error) {
	if img == nil {
		return nil, fmt.Errorf("convert: nil image")
	}
	mat, err := safe.NewMat(img.Height, img.Width, gocv.MatTypeCV8UC1)
	if err != nil {
		return nil, err
	}
	for row := 0; row < img.Height; row++ {
		base := row * img.Width
		for col := 0; col < img.Width; col++ {
			_ = mat.SetUCharAt(row, col, img.Pix[base+col])
		}
	}
	return mat, nil
}

// ToGrayMatTracked behaves like ToGrayMat but allocates the Mat through a
// memory.Manager, so a long-running capture session gets leak accounting
// on the per-frame input Mat instead of an untracked allocation.
func ToGrayMatTracked(img *model.GrayImage, mgr *memory.Manager, tag string) (*safe.Mat, error) {
	if img == nil {
		return nil, fmt.Errorf("convert: nil image")
	}
	mat, err := mgr.GetMat(img.Height, img.Width, gocv.MatTypeCV8UC1, tag)
	if err != nil {
		return nil, err
	}
	for row := 0; row < img.Height; row++ {
		base := row * img.Width
		for col := 0; col < img.Width; col++ {
			_ = mat.SetUCharAt(row, col, img.Pix[base+col])
		}
	}
	return mat, nil
}

// FromGrayMat copies a CV_8UC1 Mat into a model.GrayImage.
func FromGrayMat(mat *safe.Mat) (*model.GrayImage, error) {
	if mat == nil || !mat.IsValid() {
		return nil, fmt.Errorf("convert: invalid mat")
	}
	if mat.Channels() != 1 {
		return nil, fmt.Errorf("convert: expected 1 channel, got %d", mat.Channels())
	}
	rows, cols := mat.Rows(), mat.Cols()
	out := model.NewGrayImage(cols, rows)
	for row := 0; row < rows; row++ {
		base := row * cols
		for col := 0; col < cols; col++ {
			v, err := mat.GetUCharAt(row, col)
			if err != nil {
				return nil, err
			}
			out.Pix[base+col] = v
		}
	}
	return out, nil
}

// DecodeToGray decodes raw still-image bytes (JPEG/PNG/WebP) to a grayscale
// model.GrayImage, satisfying the "decode to grayscale matrix" external
// interface of spec.md §6. BGR sources are converted with gocv.CvtColor.
func DecodeToGray(data []byte) (*model.GrayImage, error) {
	mat := gocv.IMDecode(data, gocv.IMReadColor)
	if !mat.Empty() {
		defer mat.Close()

		gray := gocv.NewMat()
		defer gray.Close()

		if mat.Channels() == 1 {
			mat.CopyTo(&gray)
		} else {
			gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray)
		}

		safeGray, err := safe.NewMatFromMat(gray)
		if err != nil {
			return nil, err
		}
		defer safeGray.Close()

		return FromGrayMat(safeGray)
	}
	mat.Close()

	// gocv's built-in codecs don't cover WebP; fall back to the stdlib
	// image.Decode path, which github.com/deepteams/webp registers itself
	// with on import.
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("convert: failed to decode image: %w", err)
	}
	return grayImageFromImage(img), nil
}

// EncodePNG renders a model.GrayImage as PNG bytes, the still-capture
// format spec.md §6's directory layout names.
func EncodePNG(img *model.GrayImage) ([]byte, error) {
	if img == nil {
		return nil, fmt.Errorf("convert: nil image")
	}
	gray := image.NewGray(image.Rect(0, 0, img.Width, img.Height))
	for row := 0; row < img.Height; row++ {
		base := row * img.Width
		copy(gray.Pix[row*gray.Stride:row*gray.Stride+img.Width], img.Pix[base:base+img.Width])
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, gray); err != nil {
		return nil, fmt.Errorf("convert: failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func grayImageFromImage(img image.Image) *model.GrayImage {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	out := model.NewGrayImage(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			gray := uint8((299*r + 587*g + 114*b) / 1000 >> 8)
			out.Set(y, x, gray)
		}
	}
	return out
}
