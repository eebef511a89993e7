package convolve

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/Fepozopo/kernelimg/pkg/logger"
	"github.com/Fepozopo/kernelimg/pkg/raster"
)

var (
	ErrUnknownOperation   = errors.New("unknown operation")
	ErrKernelSizeMismatch = errors.New("kernel size mismatch")
	ErrNilImage           = errors.New("source image is nil")
)

// Processor convolves images with kernels of one configured size.
// It holds no per-call state and may be shared between goroutines.
type Processor struct {
	size    int
	workers int
	log     *logrus.Entry
}

// Option configures a Processor.
type Option func(*Processor)

// WithWorkers splits output rows across n goroutines. Values below 1 mean 1.
func WithWorkers(n int) Option {
	return func(p *Processor) {
		if n < 1 {
			n = 1
		}
		p.workers = n
	}
}

// WithLogger replaces the default log entry.
func WithLogger(entry *logrus.Entry) Option {
	return func(p *Processor) {
		if entry != nil {
			p.log = entry
		}
	}
}

// New returns a Processor for NxN kernels. Requesting an operation whose
// kernel has a different size is a caller error reported by Convolution.
func New(size int, opts ...Option) *Processor {
	p := &Processor{
		size:    size,
		workers: 1,
		log:     logger.WithField("component", "convolve"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Processor) Size() int    { return p.size }
func (p *Processor) Workers() int { return p.workers }

// Apply convolves img with a Processor sized for op.
func Apply(op Operation, img *raster.Image, opts ...Option) (*raster.Image, error) {
	return New(op.KernelSize(), opts...).Convolution(op, img)
}

// Convolution returns a new image holding img filtered by op's kernel.
//
// The source is padded by edge replication so border pixels see a full
// neighbourhood, and every channel sum is divided by the kernel divisor,
// rounded and clamped to [0,255]. Grayscale-producing operations reduce the
// source to luminance first. img is not modified.
func (p *Processor) Convolution(op Operation, img *raster.Image) (*raster.Image, error) {
	if img == nil {
		return nil, ErrNilImage
	}
	k, ok := kernels[op]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnknownOperation, op)
	}
	if !k.Pointwise() && k.Size != p.size {
		return nil, fmt.Errorf("%w: %s needs %dx%d, processor is %dx%d",
			ErrKernelSizeMismatch, op, k.Size, k.Size, p.size, p.size)
	}

	start := time.Now()
	src := img
	if k.Output == GrayOutput {
		src = luminance(img)
	}
	out := img.CloneShape()
	out.SetMode(k.mode(img.Mode()))
	if img.Empty() {
		return out, nil
	}

	padded := src.Pad(k.Radius())
	p.run(out.Height(), func(r int) {
		convolveRow(k, padded, out, r)
	})

	p.log.WithFields(logrus.Fields{
		"operation": op.String(),
		"width":     out.Width(),
		"height":    out.Height(),
		"mode":      out.Mode().String(),
		"workers":   p.workers,
		"elapsed":   time.Since(start).String(),
	}).Debug("convolution complete")
	return out, nil
}

// run calls fn for every row in [0,rows), partitioned into contiguous
// blocks when more than one worker is configured. Rows write disjoint
// slices of the output and read only the padded source.
func (p *Processor) run(rows int, fn func(r int)) {
	if p.workers <= 1 || rows < 2 {
		for r := 0; r < rows; r++ {
			fn(r)
		}
		return
	}
	block := (rows + p.workers - 1) / p.workers
	var g errgroup.Group
	for lo := 0; lo < rows; lo += block {
		hi := min(lo+block, rows)
		lo, hi := lo, hi
		g.Go(func() error {
			for r := lo; r < hi; r++ {
				fn(r)
			}
			return nil
		})
	}
	_ = g.Wait()
}

// convolveRow computes output row r from the padded source. The window for
// output (r,c) starts at padded (r,c) because the padding is exactly the
// kernel radius.
func convolveRow(k Kernel, padded, out *raster.Image, r int) {
	n := k.Size
	for c := 0; c < out.Width(); c++ {
		var sr, sg, sb float64
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				w := k.Weights[i*n+j]
				if w == 0 {
					continue
				}
				px := padded.At(r+i, c+j)
				sr += w * float64(px.R)
				sg += w * float64(px.G)
				sb += w * float64(px.B)
			}
		}
		out.Set(r, c, raster.Pixel{
			R: channel(sr, k.Divisor),
			G: channel(sg, k.Divisor),
			B: channel(sb, k.Divisor),
		})
	}
}

func channel(sum, divisor float64) uint8 {
	return raster.ClampUint8(math.Round(sum / divisor))
}

// luminance returns a grayscale copy of img.
func luminance(img *raster.Image) *raster.Image {
	out := img.CloneShape()
	out.SetMode(raster.Grayscale)
	for r := 0; r < img.Height(); r++ {
		for c := 0; c < img.Width(); c++ {
			out.Set(r, c, raster.Gray(img.At(r, c).Luminance()))
		}
	}
	return out
}
