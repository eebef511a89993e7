// Package raster holds the in-memory pixel-map model: an owned grid of RGB
// pixels with bounds-checked accessors, edge-replicating padding, and the
// netpbm reader and writer.
//
// Grayscale images use the same three-channel storage as color images, with
// the value replicated across R, G and B. The Mode only records how the grid
// was populated and how it is serialized.
package raster

import "fmt"

// Mode is the channel layout of an Image.
type Mode int

const (
	// Color images carry independent R, G and B channels (PPM).
	Color Mode = iota
	// Grayscale images carry one value replicated across channels (PGM).
	Grayscale
)

func (m Mode) String() string {
	switch m {
	case Color:
		return "color"
	case Grayscale:
		return "grayscale"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Channels returns the number of channels a file of this mode stores.
func (m Mode) Channels() int {
	if m == Grayscale {
		return 1
	}
	return 3
}

// Image is a width x height grid of pixels indexed [row][col] from the top-left.
type Image struct {
	width  int
	height int
	mode   Mode
	plain  bool
	pixels [][]Pixel
}

// New returns a black image of the given size. Negative sizes are treated as 0.
func New(width, height int, mode Mode) *Image {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Image{
		width:  width,
		height: height,
		mode:   mode,
		pixels: allocGrid(width, height),
	}
}

func allocGrid(width, height int) [][]Pixel {
	// one backing array keeps rows contiguous
	backing := make([]Pixel, width*height)
	grid := make([][]Pixel, height)
	for r := range grid {
		grid[r] = backing[r*width : (r+1)*width : (r+1)*width]
	}
	return grid
}

func (img *Image) Width() int  { return img.width }
func (img *Image) Height() int { return img.height }
func (img *Image) Mode() Mode  { return img.mode }

// SetMode changes how the image is serialized. Pixel data is left untouched.
func (img *Image) SetMode(m Mode) { img.mode = m }

// Plain reports whether the image is written with the ASCII netpbm encoding.
func (img *Image) Plain() bool { return img.plain }

// SetPlain selects the ASCII (true) or binary (false) netpbm encoding.
func (img *Image) SetPlain(plain bool) { img.plain = plain }

// Empty reports whether the image has no pixels.
func (img *Image) Empty() bool {
	return img.width == 0 || img.height == 0
}

func (img *Image) inBounds(row, col int) bool {
	return row >= 0 && row < img.height && col >= 0 && col < img.width
}

// Pixel returns the pixel at (row, col).
func (img *Image) Pixel(row, col int) (Pixel, error) {
	if !img.inBounds(row, col) {
		return Pixel{}, outOfRange()
	}
	return img.pixels[row][col], nil
}

// SetPixel replaces the pixel at (row, col).
func (img *Image) SetPixel(row, col int, p Pixel) error {
	if !img.inBounds(row, col) {
		return domain(MsgSetPixel)
	}
	img.pixels[row][col] = p
	return nil
}

// SetPixelValue sets all three channels at (row, col) to v.
func (img *Image) SetPixelValue(row, col int, v uint8) error {
	if !img.inBounds(row, col) {
		return domain(MsgSetPixelValue)
	}
	img.pixels[row][col] = Gray(v)
	return nil
}

// SetRedPixel sets only the red channel at (row, col). Out of bounds it
// returns "Wrong index. Cannot set the red pixel."
func (img *Image) SetRedPixel(row, col int, v uint8) error {
	if !img.inBounds(row, col) {
		return domain(MsgSetRedPixel)
	}
	img.pixels[row][col].R = v
	return nil
}

// SetGreenPixel sets only the green channel at (row, col). Out of bounds it
// returns "Wrong index. Cannot set the green pixel."
func (img *Image) SetGreenPixel(row, col int, v uint8) error {
	if !img.inBounds(row, col) {
		return domain(MsgSetGreenPixel)
	}
	img.pixels[row][col].G = v
	return nil
}

// SetBluePixel sets only the blue channel at (row, col). Out of bounds it
// returns "Wrong index. Cannot set the blue pixel."
func (img *Image) SetBluePixel(row, col int, v uint8) error {
	if !img.inBounds(row, col) {
		return domain(MsgSetBluePixel)
	}
	img.pixels[row][col].B = v
	return nil
}

// At is the unchecked read used by filters. Outside the grid it returns the
// zero Pixel, like image.Image.At.
func (img *Image) At(row, col int) Pixel {
	if !img.inBounds(row, col) {
		return Pixel{}
	}
	return img.pixels[row][col]
}

// Set is the unchecked write used by filters. Outside the grid it does nothing.
func (img *Image) Set(row, col int, p Pixel) {
	if img.inBounds(row, col) {
		img.pixels[row][col] = p
	}
}

// CloneShape returns an image with the same size, mode and encoding and a
// zeroed grid, ready to be filled.
func (img *Image) CloneShape() *Image {
	out := New(img.width, img.height, img.mode)
	out.plain = img.plain
	return out
}

// CloneFull returns an independent deep copy.
func (img *Image) CloneFull() *Image {
	out := img.CloneShape()
	for r := range img.pixels {
		copy(out.pixels[r], img.pixels[r])
	}
	return out
}

// Equal reports whether both images have the same size and pixels.
// Mode and encoding are ignored.
func (img *Image) Equal(o *Image) bool {
	if img == nil || o == nil {
		return img == o
	}
	if img.width != o.width || img.height != o.height {
		return false
	}
	for r := 0; r < img.height; r++ {
		for c := 0; c < img.width; c++ {
			if img.pixels[r][c] != o.pixels[r][c] {
				return false
			}
		}
	}
	return true
}

// IsGray reports whether every pixel has equal channels.
func (img *Image) IsGray() bool {
	for _, row := range img.pixels {
		for _, p := range row {
			if !p.IsGray() {
				return false
			}
		}
	}
	return true
}

// replace swaps in the contents of src. Used by Read so a failed decode
// never leaves the receiver half-populated.
func (img *Image) replace(src *Image) {
	img.width = src.width
	img.height = src.height
	img.pixels = src.pixels
	img.plain = src.plain
}

func (img *Image) String() string {
	return fmt.Sprintf("%dx%d %s", img.width, img.height, img.mode)
}
