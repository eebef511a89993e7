package raster

import "math"

// Pixel is a single RGB sample. The zero value is black.
type Pixel struct {
	R, G, B uint8
}

// Gray returns a pixel with all three channels set to v.
func Gray(v uint8) Pixel {
	return Pixel{R: v, G: v, B: v}
}

// Equal reports whether all channels match.
func (p Pixel) Equal(o Pixel) bool {
	return p == o
}

// IsGray reports whether the three channels hold the same value.
func (p Pixel) IsGray() bool {
	return p.R == p.G && p.G == p.B
}

// Luminance reduces p to a single 8-bit value using Rec. 601 weights.
func (p Pixel) Luminance() uint8 {
	lum := 0.299*float64(p.R) + 0.587*float64(p.G) + 0.114*float64(p.B)
	return ClampUint8(math.Round(lum))
}

// ClampUint8 saturates v into [0,255]. NaN maps to 0.
func ClampUint8(v float64) uint8 {
	if !(v > 0) {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
