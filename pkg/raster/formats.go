package raster

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Format names accepted by Encode, matching file extensions without the dot.
const (
	FormatPPM  = "ppm"
	FormatPGM  = "pgm"
	FormatPNM  = "pnm"
	FormatPNG  = "png"
	FormatJPEG = "jpeg"
	FormatGIF  = "gif"
	FormatBMP  = "bmp"
	FormatTIFF = "tiff"
	FormatWebP = "webp"
)

// FormatFromPath returns the normalized format name for a file extension.
// Paths without an extension map to FormatPNM.
func FormatFromPath(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	switch ext {
	case "":
		return FormatPNM
	case "jpg":
		return FormatJPEG
	case "tif":
		return FormatTIFF
	}
	return ext
}

// ToNRGBA converts the image to an opaque *image.NRGBA.
func (img *Image) ToNRGBA() *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, img.width, img.height))
	for r, row := range img.pixels {
		for c, p := range row {
			i := out.PixOffset(c, r)
			out.Pix[i+0] = p.R
			out.Pix[i+1] = p.G
			out.Pix[i+2] = p.B
			out.Pix[i+3] = 255
		}
	}
	return out
}

// ToImage returns an *image.Gray for grayscale images and an *image.NRGBA
// otherwise.
func (img *Image) ToImage() image.Image {
	if img.mode != Grayscale {
		return img.ToNRGBA()
	}
	return img.toGray()
}

// toGray reduces every pixel to one sample, whatever the mode.
func (img *Image) toGray() *image.Gray {
	out := image.NewGray(image.Rect(0, 0, img.width, img.height))
	for r, row := range img.pixels {
		for c, p := range row {
			out.Pix[out.PixOffset(c, r)] = grayValue(p)
		}
	}
	return out
}

// FromImage copies any image.Image into a new Image. Alpha is dropped.
// Grayscale mode reduces each pixel to its luminance.
func FromImage(src image.Image, mode Mode) *Image {
	b := src.Bounds()
	img := New(b.Dx(), b.Dy(), mode)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.pixels[y-b.Min.Y]
		for x := b.Min.X; x < b.Max.X; x++ {
			var p Pixel
			switch s := src.(type) {
			case *image.NRGBA:
				i := s.PixOffset(x, y)
				p = Pixel{R: s.Pix[i+0], G: s.Pix[i+1], B: s.Pix[i+2]}
			case *image.Gray:
				p = Gray(s.Pix[s.PixOffset(x, y)])
			default:
				c := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
				p = Pixel{R: c.R, G: c.G, B: c.B}
			}
			if mode == Grayscale {
				p = Gray(grayValue(p))
			}
			row[x-b.Min.X] = p
		}
	}
	return img
}

// Encode writes the image in the named format (see FormatFromPath).
// ppm forces color, pgm forces grayscale, pnm follows the image mode.
func (img *Image) Encode(w io.Writer, format string) error {
	switch format {
	case FormatPPM:
		return encodeNetpbm(w, img, Color, img.plain)
	case FormatPGM:
		return encodeNetpbm(w, img, Grayscale, img.plain)
	case FormatPNM:
		return encodeNetpbm(w, img, img.mode, img.plain)
	case FormatPNG:
		return png.Encode(w, img.ToImage())
	case FormatJPEG:
		return jpeg.Encode(w, img.ToImage(), &jpeg.Options{Quality: 92})
	case FormatGIF:
		return gif.Encode(w, img.ToImage(), nil)
	case FormatBMP:
		return bmp.Encode(w, img.ToImage())
	case FormatTIFF:
		return tiff.Encode(w, img.ToImage(), &tiff.Options{Compression: tiff.Deflate})
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}
