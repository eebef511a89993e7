// Package convolve applies fixed per-operation kernels to raster images.
//
// Every Operation maps to one immutable Kernel. A Processor is configured with
// the kernel size it serves and produces a new image per call; inputs are
// never modified.
package convolve

import (
	"fmt"
	"strings"
)

// Operation names a filter. The set is closed.
type Operation int

const (
	Identity Operation = iota
	Sharpen
	RidgeDetection1
	RidgeDetection2
	BoxBlur
	ToGrayscale
	GaussianBlur3x3
	GaussianBlur5x5
	UnsharpMasking5x5
)

// Spec describes an operation for help text and pickers.
type Spec struct {
	Operation   Operation
	Name        string
	Description string
	KernelSize  int
}

// catalog lists the operations in declaration order.
var catalog = []Spec{
	{Identity, "identity", "Copy the image unchanged (3x3 identity kernel).", 3},
	{Sharpen, "sharpen", "Sharpen edges with a 3x3 cross kernel.", 3},
	{RidgeDetection1, "ridgeDetection1", "Detect ridges with the 4-neighbour Laplacian; grayscale output.", 3},
	{RidgeDetection2, "ridgeDetection2", "Detect ridges with the 8-neighbour Laplacian; grayscale output.", 3},
	{BoxBlur, "boxBlur", "Average each pixel with its 3x3 neighbourhood.", 3},
	{ToGrayscale, "toGrayscale", "Convert to grayscale using Rec. 601 luminance.", 1},
	{GaussianBlur3x3, "gaussianBlur3x3", "Blur with a 3x3 Gaussian approximation.", 3},
	{GaussianBlur5x5, "gaussianBlur5x5", "Blur with a 5x5 Gaussian approximation.", 5},
	{UnsharpMasking5x5, "unsharpMasking5x5", "Sharpen by unsharp masking with a 5x5 Gaussian.", 5},
}

// Operations returns the operation catalog in declaration order.
func Operations() []Spec {
	out := make([]Spec, len(catalog))
	copy(out, catalog)
	return out
}

func (op Operation) String() string {
	if op >= 0 && int(op) < len(catalog) {
		return catalog[op].Name
	}
	return fmt.Sprintf("Operation(%d)", int(op))
}

// ParseOperation resolves a case-insensitive operation name.
func ParseOperation(name string) (Operation, error) {
	n := strings.TrimSpace(name)
	for _, s := range catalog {
		if strings.EqualFold(s.Name, n) {
			return s.Operation, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownOperation, name)
}

// KernelSize returns the kernel size op requires, or 0 for unknown operations.
func (op Operation) KernelSize() int {
	k, ok := kernels[op]
	if !ok {
		return 0
	}
	return k.Size
}
