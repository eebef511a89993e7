package convolve

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Fepozopo/kernelimg/pkg/raster"
)

// sample mirrors the 2x4 fixture used by the raster tests.
func sample() *raster.Image {
	img := raster.New(2, 4, raster.Color)
	rows := [][]raster.Pixel{
		{{R: 255}, {G: 255}},
		{{G: 255}, {B: 255}},
		{{B: 255}, {R: 255, G: 255}},
		{raster.Gray(255), raster.Gray(0)},
	}
	for r, row := range rows {
		for c, p := range row {
			img.Set(r, c, p)
		}
	}
	return img
}

func grayGrid(vals [][]uint8, mode raster.Mode) *raster.Image {
	img := raster.New(len(vals[0]), len(vals), mode)
	for r, row := range vals {
		for c, v := range row {
			img.Set(r, c, raster.Gray(v))
		}
	}
	return img
}

func randomImage(w, h int, seed int64) *raster.Image {
	rng := rand.New(rand.NewSource(seed))
	img := raster.New(w, h, raster.Color)
	for r := 0; r < h; r++ {
		for c := 0; c < w; c++ {
			img.Set(r, c, raster.Pixel{R: uint8(rng.Intn(256)), G: uint8(rng.Intn(256)), B: uint8(rng.Intn(256))})
		}
	}
	return img
}

func values(img *raster.Image) [][]uint8 {
	out := make([][]uint8, img.Height())
	for r := range out {
		out[r] = make([]uint8, img.Width())
		for c := range out[r] {
			p := img.At(r, c)
			if !p.IsGray() {
				return nil
			}
			out[r][c] = p.R
		}
	}
	return out
}

func mustConvolve(t *testing.T, p *Processor, op Operation, img *raster.Image) *raster.Image {
	t.Helper()
	out, err := p.Convolution(op, img)
	if err != nil {
		t.Fatalf("Convolution(%s) failed: %v", op, err)
	}
	return out
}

func TestIdentity(t *testing.T) {
	for _, img := range []*raster.Image{sample(), randomImage(17, 9, 1), randomImage(1, 1, 2)} {
		out := mustConvolve(t, New(3), Identity, img)
		if !out.Equal(img) {
			t.Fatalf("identity changed a %s image", img)
		}
		if out.Mode() != img.Mode() {
			t.Fatalf("identity changed mode to %s", out.Mode())
		}
		if out == img {
			t.Fatalf("identity returned its input instead of a new image")
		}
	}
}

func TestSharpenClamps(t *testing.T) {
	img := grayGrid([][]uint8{
		{200, 200, 200},
		{200, 100, 200},
		{200, 200, 200},
	}, raster.Color)
	out := mustConvolve(t, New(3), Sharpen, img)
	want := [][]uint8{
		{200, 255, 200},
		{255, 0, 255},
		{200, 255, 200},
	}
	if diff := cmp.Diff(want, values(out)); diff != "" {
		t.Fatalf("sharpen mismatch (-want +got):\n%s", diff)
	}
	if out.Mode() != raster.Color {
		t.Fatalf("sharpen mode = %s; want color", out.Mode())
	}
}

func TestSharpenSinglePixelExtremes(t *testing.T) {
	img := raster.New(1, 1, raster.Color)
	img.Set(0, 0, raster.Pixel{R: 255, G: 0, B: 254})
	out := mustConvolve(t, New(3), Sharpen, img)
	if got := out.At(0, 0); got != (raster.Pixel{R: 255, G: 0, B: 254}) {
		t.Fatalf("sharpen of 1x1 = %v", got)
	}

	impulse := grayGrid([][]uint8{{0, 0, 0}, {0, 255, 0}, {0, 0, 0}}, raster.Color)
	out = mustConvolve(t, New(3), Sharpen, impulse)
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			want := raster.Gray(0)
			if r == 1 && c == 1 {
				want = raster.Gray(255)
			}
			if got := out.At(r, c); got != want {
				t.Fatalf("sharpen impulse (%d,%d) = %v; want %v", r, c, got, want)
			}
		}
	}
}

func TestToGrayscale(t *testing.T) {
	want := [][]uint8{
		{76, 150},
		{150, 29},
		{29, 226},
		{255, 0},
	}
	for _, size := range []int{1, 3, 5} {
		out := mustConvolve(t, New(size), ToGrayscale, sample())
		if out.Mode() != raster.Grayscale {
			t.Fatalf("toGrayscale mode = %s; want grayscale", out.Mode())
		}
		if diff := cmp.Diff(want, values(out)); diff != "" {
			t.Fatalf("toGrayscale with size %d (-want +got):\n%s", size, diff)
		}
	}
}

func TestToGrayscaleInvariant(t *testing.T) {
	out := mustConvolve(t, New(3), ToGrayscale, randomImage(31, 12, 7))
	if !out.IsGray() {
		t.Fatalf("toGrayscale produced a pixel with unequal channels")
	}
}

func TestRidgeDetection1(t *testing.T) {
	red := raster.Pixel{R: 255}
	img := raster.New(3, 3, raster.Color)
	for r := 0; r < 3; r++ {
		img.Set(r, 1, red)
	}
	out := mustConvolve(t, New(3), RidgeDetection1, img)
	if out.Mode() != raster.Grayscale {
		t.Fatalf("ridgeDetection1 mode = %s; want grayscale", out.Mode())
	}
	// red reduces to 76; the column sees 4*76 - 76 - 76
	want := [][]uint8{
		{0, 152, 0},
		{0, 152, 0},
		{0, 152, 0},
	}
	if diff := cmp.Diff(want, values(out)); diff != "" {
		t.Fatalf("ridgeDetection1 mismatch (-want +got):\n%s", diff)
	}
}

func TestRidgeDetection2(t *testing.T) {
	img := grayGrid([][]uint8{{0, 0, 0}, {0, 100, 0}, {0, 0, 0}}, raster.Grayscale)
	out := mustConvolve(t, New(3), RidgeDetection2, img)
	want := [][]uint8{{0, 0, 0}, {0, 255, 0}, {0, 0, 0}}
	if diff := cmp.Diff(want, values(out)); diff != "" {
		t.Fatalf("ridgeDetection2 mismatch (-want +got):\n%s", diff)
	}

	flat := mustConvolve(t, New(3), RidgeDetection2, grayGrid([][]uint8{{9, 9}, {9, 9}}, raster.Color))
	if diff := cmp.Diff([][]uint8{{0, 0}, {0, 0}}, values(flat)); diff != "" {
		t.Fatalf("ridgeDetection2 on flat image (-want +got):\n%s", diff)
	}
}

func TestBoxBlur(t *testing.T) {
	img := grayGrid([][]uint8{{0, 0, 0}, {0, 90, 0}, {0, 0, 0}}, raster.Grayscale)
	out := mustConvolve(t, New(3), BoxBlur, img)
	want := [][]uint8{{10, 10, 10}, {10, 10, 10}, {10, 10, 10}}
	if diff := cmp.Diff(want, values(out)); diff != "" {
		t.Fatalf("boxBlur mismatch (-want +got):\n%s", diff)
	}
	if out.Mode() != raster.Grayscale {
		t.Fatalf("boxBlur on grayscale input produced %s", out.Mode())
	}
}

func TestGaussianBlur3x3(t *testing.T) {
	img := grayGrid([][]uint8{{0, 0, 0}, {0, 16, 0}, {0, 0, 0}}, raster.Color)
	out := mustConvolve(t, New(3), GaussianBlur3x3, img)
	want := [][]uint8{{1, 2, 1}, {2, 4, 2}, {1, 2, 1}}
	if diff := cmp.Diff(want, values(out)); diff != "" {
		t.Fatalf("gaussianBlur3x3 mismatch (-want +got):\n%s", diff)
	}
}

func TestFiveByFiveKernels(t *testing.T) {
	flat := grayGrid([][]uint8{{77, 77, 77}, {77, 77, 77}}, raster.Color)
	for _, op := range []Operation{GaussianBlur5x5, UnsharpMasking5x5} {
		out := mustConvolve(t, New(5), op, flat)
		if !out.Equal(flat) {
			t.Fatalf("%s changed a flat image", op)
		}
	}

	vals := make([][]uint8, 5)
	for r := range vals {
		vals[r] = make([]uint8, 5)
	}
	vals[2][2] = 255
	out := mustConvolve(t, New(5), GaussianBlur5x5, grayGrid(vals, raster.Color))
	if got := out.At(2, 2); got != raster.Gray(36) {
		t.Fatalf("gaussianBlur5x5 centre = %v; want 36", got)
	}
	if got := out.At(0, 0); got != raster.Gray(1) {
		t.Fatalf("gaussianBlur5x5 corner = %v; want 1", got)
	}
}

func TestUnsharpMaskingSharpensStep(t *testing.T) {
	img := grayGrid([][]uint8{
		{50, 50, 50, 200, 200, 200},
		{50, 50, 50, 200, 200, 200},
	}, raster.Color)
	out := mustConvolve(t, New(5), UnsharpMasking5x5, img)
	if out.At(0, 2).R >= 50 {
		t.Fatalf("dark side of the step should get darker, got %v", out.At(0, 2))
	}
	if out.At(0, 3).R <= 200 {
		t.Fatalf("bright side of the step should get brighter, got %v", out.At(0, 3))
	}
}

func TestKernelSizeMismatch(t *testing.T) {
	img := sample()
	if _, err := New(3).Convolution(GaussianBlur5x5, img); !errors.Is(err, ErrKernelSizeMismatch) {
		t.Fatalf("expected ErrKernelSizeMismatch, got %v", err)
	}
	if _, err := New(5).Convolution(Sharpen, img); !errors.Is(err, ErrKernelSizeMismatch) {
		t.Fatalf("expected ErrKernelSizeMismatch, got %v", err)
	}
}

func TestInvalidArguments(t *testing.T) {
	if _, err := New(3).Convolution(Operation(99), sample()); !errors.Is(err, ErrUnknownOperation) {
		t.Fatalf("expected ErrUnknownOperation, got %v", err)
	}
	if _, err := New(3).Convolution(Sharpen, nil); !errors.Is(err, ErrNilImage) {
		t.Fatalf("expected ErrNilImage, got %v", err)
	}
}

func TestEmptyImage(t *testing.T) {
	out := mustConvolve(t, New(3), RidgeDetection1, raster.New(0, 0, raster.Color))
	if !out.Empty() || out.Mode() != raster.Grayscale {
		t.Fatalf("empty input produced %s", out)
	}
}

func TestInputNotMutated(t *testing.T) {
	for _, s := range Operations() {
		img := randomImage(6, 5, 3)
		before := img.CloneFull()
		if _, err := Apply(s.Operation, img); err != nil {
			t.Fatalf("Apply(%s): %v", s.Name, err)
		}
		if !img.Equal(before) || img.Width() != 6 || img.Mode() != raster.Color {
			t.Fatalf("%s mutated its input", s.Name)
		}
	}
}

func TestWorkersProduceIdenticalOutput(t *testing.T) {
	img := randomImage(37, 23, 42)
	for _, s := range Operations() {
		size := s.KernelSize
		serial := mustConvolve(t, New(size), s.Operation, img)
		for _, n := range []int{2, 4, 64} {
			parallel := mustConvolve(t, New(size, WithWorkers(n)), s.Operation, img)
			if !parallel.Equal(serial) {
				t.Fatalf("%s with %d workers differs from serial result", s.Name, n)
			}
		}
	}
}

func TestWithWorkersFloor(t *testing.T) {
	if w := New(3, WithWorkers(0)).Workers(); w != 1 {
		t.Fatalf("Workers() = %d; want 1", w)
	}
}
