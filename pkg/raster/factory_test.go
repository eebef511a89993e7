package raster

import (
	"errors"
	"testing"
)

func TestCreateImageSelectsMode(t *testing.T) {
	cases := []struct {
		path string
		mode Mode
	}{
		{"sample_images/test.ppm", Color},
		{"sample_images/unit_testing/grayscale.pgm", Grayscale},
		{"OUT.PGM", Grayscale},
		{"a.pnm", Color},
		{"photo.JPG", Color},
		{"scan.tif", Color},
		{"noext", Color},
	}
	for _, c := range cases {
		img, err := CreateImage(c.path)
		if err != nil {
			t.Fatalf("CreateImage(%q) unexpected error: %v", c.path, err)
		}
		if img.Mode() != c.mode {
			t.Errorf("CreateImage(%q).Mode() = %s; want %s", c.path, img.Mode(), c.mode)
		}
		if !img.Empty() {
			t.Errorf("CreateImage(%q) returned a populated image", c.path)
		}
	}
}

func TestCreateImageUnsupported(t *testing.T) {
	if _, err := CreateImage("notes.txt"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestFormatFromPath(t *testing.T) {
	cases := map[string]string{
		"a.ppm":    FormatPPM,
		"b.JPEG":   FormatJPEG,
		"c.jpg":    FormatJPEG,
		"d.tif":    FormatTIFF,
		"dir/e":    FormatPNM,
		"f.tar.gz": "gz",
	}
	for in, want := range cases {
		if got := FormatFromPath(in); got != want {
			t.Errorf("FormatFromPath(%q) = %q; want %q", in, got, want)
		}
	}
}
