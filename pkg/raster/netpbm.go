package raster

import (
	"bytes"
	"fmt"
	"image"
	"io"

	"github.com/spakin/netpbm"
)

// maxPixels bounds each dimension and the pixel count a header can request.
const maxPixels = 1 << 28

// isNetpbm reports whether data starts with a supported netpbm magic number
// (P2, P3, P5 or P6).
func isNetpbm(data []byte) bool {
	if len(data) < 2 || data[0] != 'P' {
		return false
	}
	switch data[1] {
	case '2', '3', '5', '6':
		return true
	}
	return false
}

// checkDimensions rejects headers whose grid could not reasonably be allocated.
func checkDimensions(width, height int) error {
	if width < 0 || height < 0 || width > maxPixels || height > maxPixels ||
		(width > 0 && height > maxPixels/width) {
		return fmt.Errorf("image %dx%d too large", width, height)
	}
	return nil
}

// decodeNetpbm parses a P2, P3, P5 or P6 file into an Image of the given
// mode. Samples are rescaled to 0..255 when the header declares a smaller
// maxval; the plain (ASCII) flag follows the magic number.
func decodeNetpbm(data []byte, mode Mode) (*Image, error) {
	cfg, err := netpbm.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("netpbm: %w", err)
	}
	if err := checkDimensions(cfg.Width, cfg.Height); err != nil {
		return nil, fmt.Errorf("netpbm: %w", err)
	}

	target := netpbm.PPM
	if data[1] == '2' || data[1] == '5' {
		target = netpbm.PGM
	}
	src, err := netpbm.Decode(bytes.NewReader(data), &netpbm.DecodeOptions{Target: target, Exact: true})
	if err != nil {
		return nil, fmt.Errorf("netpbm: %w", err)
	}
	if mv := src.MaxValue(); mv < 1 || mv > 255 {
		return nil, fmt.Errorf("netpbm: maxval %d out of range 1..255", mv)
	}

	img := FromImage(src, mode)
	img.plain = data[1] == '2' || data[1] == '3'
	return img, nil
}

// grayValue is the single sample written for p in a PGM file.
func grayValue(p Pixel) uint8 {
	if p.IsGray() {
		return p.R
	}
	return p.Luminance()
}

// encodeNetpbm writes img as PPM or PGM with maxval 255, raw unless plain.
func encodeNetpbm(w io.Writer, img *Image, mode Mode, plain bool) error {
	opts := &netpbm.EncodeOptions{Format: netpbm.PPM, MaxValue: 255, Plain: plain}
	var src image.Image = img.ToNRGBA()
	if mode == Grayscale {
		opts.Format = netpbm.PGM
		src = img.toGray()
	}
	return netpbm.Encode(w, src, opts)
}
