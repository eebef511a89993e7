package cli

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"math"
	"os"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Fepozopo/kernelimg/pkg/logger"
	"github.com/Fepozopo/kernelimg/pkg/raster"
)

// Terminal preview for the kitty graphics protocol and the iTerm2 inline
// image protocol (OSC 1337), with chafa as a character-cell fallback.
//
// The backend comes from PREVIEW_BACKEND ("kitty", "inline" or "none").
// When unset it is detected from the environment.

const (
	backendKitty  = "kitty"
	backendInline = "inline"
	backendChafa  = "chafa"
	backendNone   = "none"
)

// Previewer renders images into a terminal.
type Previewer struct {
	out     io.Writer
	backend string
	log     *logrus.Entry
}

// NewPreviewer resolves backend (empty means autodetect) and writes escape
// sequences to out.
func NewPreviewer(out io.Writer, backend string) *Previewer {
	p := &Previewer{
		out:     out,
		backend: resolveBackend(strings.ToLower(strings.TrimSpace(backend))),
		log:     logger.WithField("component", "preview"),
	}
	p.log.WithField("backend", p.backend).Debug("preview backend selected")
	return p
}

// Backend reports the resolved backend name.
func (p *Previewer) Backend() string { return p.backend }

// Supported reports whether Show will attempt to render anything.
func (p *Previewer) Supported() bool { return p.backend != backendNone }

func resolveBackend(pref string) string {
	switch pref {
	case backendKitty, backendInline, backendNone:
		return pref
	}
	switch {
	case isKitty():
		return backendKitty
	case isInlineImageCapable():
		return backendInline
	case hasChafa():
		return backendChafa
	}
	return backendNone
}

func isKitty() bool {
	if os.Getenv("KITTY_WINDOW_ID") != "" {
		return true
	}
	// ghostty speaks the kitty protocol too
	term := strings.ToLower(os.Getenv("TERM"))
	return strings.Contains(term, "kitty") || strings.Contains(term, "ghostty")
}

func isInlineImageCapable() bool {
	switch os.Getenv("TERM_PROGRAM") {
	case "iTerm.app", "WezTerm", "Warp", "Hyper", "vscode", "Tabby", "Bobcat":
		return true
	}
	if os.Getenv("ITERM_SESSION_ID") != "" {
		return true
	}
	term := strings.ToLower(os.Getenv("TERM"))
	return strings.Contains(term, "wezterm") || strings.Contains(term, "tabby")
}

func hasChafa() bool {
	_, err := exec.LookPath("chafa")
	return err == nil
}

// Show encodes img as PNG and renders it with the resolved backend.
func (p *Previewer) Show(img *raster.Image) error {
	if img == nil || img.Empty() {
		return fmt.Errorf("nothing to preview")
	}
	if p.backend == backendNone {
		return nil
	}
	var buf bytes.Buffer
	if err := img.Encode(&buf, raster.FormatPNG); err != nil {
		return fmt.Errorf("png encode failed: %w", err)
	}
	size := computePreviewSize(img.Width(), img.Height())
	p.log.WithFields(logrus.Fields{
		"bytes": buf.Len(),
		"cols":  size.Cols,
		"rows":  size.Rows,
	}).Debug("sending preview")

	var err error
	switch p.backend {
	case backendKitty:
		err = writeKitty(p.out, buf.Bytes(), size)
	case backendInline:
		err = writeInline(p.out, buf.Bytes(), size)
	case backendChafa:
		err = runChafa(p.out, buf.Bytes(), size)
	}
	if err != nil {
		return fmt.Errorf("%s preview failed: %w", p.backend, err)
	}
	for i := 0; i < postImageNewlines(size.Rows); i++ {
		fmt.Fprintln(p.out)
	}
	return nil
}

// PreviewSize is a placement in terminal cells plus its approximate pixel size.
type PreviewSize struct {
	Cols        int
	Rows        int
	PixelWidth  int
	PixelHeight int
}

// computePreviewSize fits a width x height image into at most 80x40 cells,
// preserving aspect ratio and never scaling up.
func computePreviewSize(width, height int) PreviewSize {
	const (
		charW   = 8
		charH   = 16
		minCols = 6
		minRows = 3
		maxCols = 80
		maxRows = 40
	)
	w, h := max(width, 1), max(height, 1)
	scale := math.Min(1.0, math.Min(float64(maxCols*charW)/float64(w), float64(maxRows*charH)/float64(h)))

	cols := int(math.Round(float64(w) * scale / charW))
	rows := int(math.Round(float64(h) * scale / charH))
	cols = min(max(cols, minCols), maxCols)
	rows = min(max(rows, minRows), maxRows)

	return PreviewSize{
		Cols:        cols,
		Rows:        rows,
		PixelWidth:  cols * charW,
		PixelHeight: rows * charH,
	}
}

func postImageNewlines(rows int) int {
	switch {
	case rows <= 2:
		return 1
	case rows <= 6:
		return 2
	case rows <= 20:
		return 3
	}
	return 4
}

// writeKitty transmits PNG data in base64 chunks of at most 4096 bytes.
// Only the first chunk carries control keys; m=1 marks more to come.
func writeKitty(w io.Writer, data []byte, size PreviewSize) error {
	const chunkSize = 4096
	enc := base64.StdEncoding.EncodeToString(data)
	for pos := 0; pos < len(enc); pos += chunkSize {
		end := min(pos+chunkSize, len(enc))
		more := "0"
		if end < len(enc) {
			more = "1"
		}
		var seq string
		if pos == 0 {
			seq = fmt.Sprintf("\x1b_Ga=T,f=100,t=d,q=2,c=%d,r=%d,m=%s;%s\x1b\\", size.Cols, size.Rows, more, enc[pos:end])
		} else {
			seq = "\x1b_Gm=" + more + ";" + enc[pos:end] + "\x1b\\"
		}
		if _, err := io.WriteString(w, seq); err != nil {
			return err
		}
	}
	return nil
}

func writeInline(w io.Writer, data []byte, size PreviewSize) error {
	meta := fmt.Sprintf("size=%d;width=%dpx;height=%dpx", len(data), size.PixelWidth, size.PixelHeight)
	seq := "\x1b]1337;File=name=preview.png;inline=1;" + meta + ":" + base64.StdEncoding.EncodeToString(data) + "\a"
	_, err := io.WriteString(w, seq)
	return err
}

func runChafa(w io.Writer, data []byte, size PreviewSize) error {
	cmd := exec.Command("chafa", "--fill=block", "--symbols=block", "-s", fmt.Sprintf("%dx%d", size.Cols, size.Rows), "-")
	cmd.Stdin = bytes.NewReader(data)
	cmd.Stdout = w
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// clearKittyImages deletes kitty images left behind by fzf previews.
// Other terminals ignore the sequence.
func clearKittyImages(w io.Writer) {
	fmt.Fprint(w, "\x1b_Ga=d\x1b\\")
}
