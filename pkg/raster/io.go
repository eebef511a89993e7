package raster

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
)

// Read replaces the image contents with the file at path. Netpbm files go
// through the netpbm codec; anything else goes through image.Decode. The image keeps
// its mode: color data read into a grayscale image is reduced to luminance.
// On failure the image is left unchanged.
func (img *Image) Read(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return runtimeErr(MsgOpeningFile, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return runtimeErr(MsgReadingFile, err)
	}
	decoded, err := Decode(data, img.mode)
	if err != nil {
		return runtimeErr(MsgReadingFile, err)
	}
	img.replace(decoded)
	return nil
}

// Decode parses an encoded image held in memory into an Image of the given mode.
func Decode(data []byte, mode Mode) (*Image, error) {
	if isNetpbm(data) {
		return decodeNetpbm(data, mode)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if err := checkDimensions(cfg.Width, cfg.Height); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return FromImage(src, mode), nil
}

// Save writes the image to path in the format implied by its extension.
// The data goes to a temporary file in the same directory which is renamed
// over path once complete, so a failed save leaves nothing behind.
func (img *Image) Save(path string) error {
	format := FormatFromPath(path)
	if format == FormatWebP {
		return runtimeErr(MsgSavingFile, fmt.Errorf("%w: webp is decode-only", ErrUnsupportedFormat))
	}
	if !canEncode(format) {
		return runtimeErr(MsgSavingFile, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format))
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return runtimeErr(MsgSavingFile, err)
	}
	tmpName := tmp.Name()
	fail := func(err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return runtimeErr(MsgSavingFile, err)
	}

	if err := img.Encode(tmp, format); err != nil {
		return fail(err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return runtimeErr(MsgSavingFile, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return runtimeErr(MsgSavingFile, err)
	}
	return nil
}

func canEncode(format string) bool {
	switch format {
	case FormatPPM, FormatPGM, FormatPNM, FormatPNG, FormatJPEG, FormatGIF, FormatBMP, FormatTIFF:
		return true
	}
	return false
}
