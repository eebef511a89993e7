package cli

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/Fepozopo/kernelimg/pkg/raster"
)

// promptLine prints prompt to out and reads one full line from in, trimmed.
// A final line without a newline is returned; io.EOF is only reported when
// nothing was read.
func promptLine(in *bufio.Reader, out io.Writer, prompt string) (string, error) {
	fmt.Fprint(out, prompt)
	line, err := in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// ImageInfo returns a one-line summary of img, with the format taken from path.
func ImageInfo(path string, img *raster.Image) string {
	format := "unknown"
	if path != "" {
		format = strings.ToUpper(raster.FormatFromPath(path))
	}
	name := filepath.Base(path)
	if path == "" {
		name = "(unsaved)"
	}
	return fmt.Sprintf("%s: Format: %s, Mode: %s, Width: %d, Height: %d",
		name, format, img.Mode(), img.Width(), img.Height())
}
