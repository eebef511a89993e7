package raster

import "fmt"

// CreateImage returns an empty image whose mode matches the file format named
// by path's extension: grayscale for .pgm, color for the other supported
// formats. It performs no I/O; call Read on the result to populate it.
func CreateImage(path string) (*Image, error) {
	switch format := FormatFromPath(path); format {
	case FormatPGM:
		return New(0, 0, Grayscale), nil
	case FormatPPM, FormatPNM, FormatPNG, FormatJPEG, FormatGIF, FormatBMP, FormatTIFF, FormatWebP:
		return New(0, 0, Color), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, path)
	}
}

// Load is CreateImage followed by Read.
func Load(path string) (*Image, error) {
	img, err := CreateImage(path)
	if err != nil {
		return nil, err
	}
	if err := img.Read(path); err != nil {
		return nil, err
	}
	return img, nil
}
