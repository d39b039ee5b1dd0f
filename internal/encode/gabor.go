package encode

import "math"

// kernelRows/kernelCols are spec.md §4.5's narrow-radial, wide-angular Gabor
// kernel size: 5 rows (radial) x 15 columns (angular).
const (
	kernelRows = 5
	kernelCols = 15
	rowHalf    = kernelRows / 2 // 2
	colHalf    = kernelCols / 2 // 7

	gaborGamma = 0.5
)

var orientations = [4]float64{0, math.Pi / 4, math.Pi / 2, 3 * math.Pi / 4}
var wavelengths = [2]float64{6, 12}

// kernel holds the real (psi=0) and imaginary (psi=pi/2) responses of one
// asymmetric Gabor filter, a kernelRows x kernelCols grid each.
type kernel struct {
	real [kernelRows][kernelCols]float64
	imag [kernelRows][kernelCols]float64
}

// buildFilterBank synthesizes the 8 filters of spec.md §4.5: the cross
// product of 4 orientations and 2 wavelengths, each producing a real/imag
// kernel pair with sigma = wavelength/2 and aspect ratio gamma = 0.5.
func buildFilterBank() [numFilters]kernel {
	var bank [numFilters]kernel
	f := 0
	for _, theta := range orientations {
		for _, wavelength := range wavelengths {
			bank[f] = buildKernel(theta, wavelength)
			f++
		}
	}
	return bank
}

func buildKernel(theta, wavelength float64) kernel {
	sigma := wavelength / 2
	var k kernel
	for ky := -rowHalf; ky <= rowHalf; ky++ {
		for kx := -colHalf; kx <= colHalf; kx++ {
			x := float64(kx)
			y := float64(ky)
			xr := x*math.Cos(theta) + y*math.Sin(theta)
			yr := -x*math.Sin(theta) + y*math.Cos(theta)
			envelope := math.Exp(-(xr*xr + gaborGamma*gaborGamma*yr*yr) / (2 * sigma * sigma))
			phase := 2 * math.Pi * xr / wavelength

			// psi=0 for the real kernel, psi=pi/2 for the imaginary one:
			// cos(phase+pi/2) = -sin(phase).
			k.real[ky+rowHalf][kx+colHalf] = envelope * math.Cos(phase)
			k.imag[ky+rowHalf][kx+colHalf] = -envelope * math.Sin(phase)
		}
	}
	return k
}
