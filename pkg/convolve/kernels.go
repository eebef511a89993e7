package convolve

import "github.com/Fepozopo/kernelimg/pkg/raster"

// OutputMode selects the channel mode of a convolution result.
type OutputMode int

const (
	// SameAsInput keeps the input image's mode.
	SameAsInput OutputMode = iota
	// GrayOutput reduces the input to luminance before convolving and
	// marks the result grayscale.
	GrayOutput
)

// Kernel is an odd NxN weight matrix stored row-major, applied centred on
// each output pixel. The weighted sum is divided by Divisor.
type Kernel struct {
	Size    int
	Weights []float64
	Divisor float64
	Output  OutputMode
}

// Radius is the border width the kernel needs on each side.
func (k Kernel) Radius() int {
	return (k.Size - 1) / 2
}

// Pointwise reports whether the kernel reads only the centre pixel.
func (k Kernel) Pointwise() bool {
	return k.Size == 1
}

func (k Kernel) mode(in raster.Mode) raster.Mode {
	if k.Output == GrayOutput {
		return raster.Grayscale
	}
	return in
}

// binomial5 is the outer product of [1 4 6 4 1] with itself.
var binomial5 = []float64{
	1, 4, 6, 4, 1,
	4, 16, 24, 16, 4,
	6, 24, 36, 24, 6,
	4, 16, 24, 16, 4,
	1, 4, 6, 4, 1,
}

func unsharp5() []float64 {
	w := make([]float64, len(binomial5))
	copy(w, binomial5)
	// 2*identity - gaussian, scaled by -256
	w[12] = 36 - 2*256
	return w
}

var kernels = map[Operation]Kernel{
	Identity: {
		Size: 3,
		Weights: []float64{
			0, 0, 0,
			0, 1, 0,
			0, 0, 0,
		},
		Divisor: 1,
	},
	Sharpen: {
		Size: 3,
		Weights: []float64{
			0, -1, 0,
			-1, 5, -1,
			0, -1, 0,
		},
		Divisor: 1,
	},
	RidgeDetection1: {
		Size: 3,
		Weights: []float64{
			0, -1, 0,
			-1, 4, -1,
			0, -1, 0,
		},
		Divisor: 1,
		Output:  GrayOutput,
	},
	RidgeDetection2: {
		Size: 3,
		Weights: []float64{
			-1, -1, -1,
			-1, 8, -1,
			-1, -1, -1,
		},
		Divisor: 1,
		Output:  GrayOutput,
	},
	BoxBlur: {
		Size: 3,
		Weights: []float64{
			1, 1, 1,
			1, 1, 1,
			1, 1, 1,
		},
		Divisor: 9,
	},
	ToGrayscale: {
		Size:    1,
		Weights: []float64{1},
		Divisor: 1,
		Output:  GrayOutput,
	},
	GaussianBlur3x3: {
		Size: 3,
		Weights: []float64{
			1, 2, 1,
			2, 4, 2,
			1, 2, 1,
		},
		Divisor: 16,
	},
	GaussianBlur5x5: {
		Size:    5,
		Weights: binomial5,
		Divisor: 256,
	},
	UnsharpMasking5x5: {
		Size:    5,
		Weights: unsharp5(),
		Divisor: -256,
	},
}

// Lookup returns a copy of the kernel for op.
func Lookup(op Operation) (Kernel, bool) {
	k, ok := kernels[op]
	if !ok {
		return Kernel{}, false
	}
	w := make([]float64, len(k.Weights))
	copy(w, k.Weights)
	k.Weights = w
	return k, true
}
