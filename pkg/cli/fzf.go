package cli

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/Fepozopo/kernelimg/pkg/convolve"
)

// fzfAvailable reports whether the fzf binary is on PATH.
func fzfAvailable() bool {
	_, err := exec.LookPath("fzf")
	return err == nil
}

// SelectOperationWithFzf displays the operation catalog in fzf and returns the
// selected operation.
func SelectOperationWithFzf(specs []convolve.Spec) (convolve.Operation, error) {
	var b strings.Builder
	for _, s := range specs {
		fmt.Fprintf(&b, "%s: %s\n", s.Name, s.Description)
	}

	cmd := exec.Command("fzf", "--prompt=Filter> ")
	cmd.Stdin = strings.NewReader(b.String())
	cmd.Stderr = os.Stderr
	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("error running fzf: %w", err)
	}

	name, _, _ := strings.Cut(strings.TrimSpace(out.String()), ":")
	if strings.TrimSpace(name) == "" {
		return 0, fmt.Errorf("no operation selected")
	}
	return convolve.ParseOperation(name)
}

// SelectFileWithFzf lists images under startDir in fzf, previewing the
// highlighted file when the terminal can show images. It needs bash, find
// and fzf on PATH.
func SelectFileWithFzf(startDir string) (string, error) {
	var previewCmd string
	switch {
	case isKitty():
		previewCmd = "printf \"\\x1b_Ga=d\\x1b\\\\\"; kitty +kitten icat --silent {} 2>/dev/null || chafa -s 80x40 {} 2>/dev/null"
	case isInlineImageCapable():
		previewCmd = "imgcat {} 2>/dev/null || chafa -s 80x40 {} 2>/dev/null"
	default:
		previewCmd = "chafa --fill=block --symbols=block -s 80x40 {} 2>/dev/null || head -c 64 {}"
	}

	var patterns []string
	for _, ext := range []string{"ppm", "pgm", "pnm", "png", "jpg", "jpeg", "gif", "bmp", "tif", "tiff", "webp"} {
		patterns = append(patterns, "-iname '*."+ext+"'")
	}
	cmdStr := fmt.Sprintf(
		"find %s -type f \\( %s \\) | fzf --height 100%% --border --prompt='Files> ' --ansi --preview=%q --preview-window='right:60%%'",
		strconv.Quote(startDir),
		strings.Join(patterns, " -o "),
		previewCmd,
	)
	cmd := exec.Command("bash", "-c", cmdStr)
	cmd.Stderr = os.Stderr
	var out bytes.Buffer
	cmd.Stdout = &out

	err := cmd.Run()
	clearKittyImages(os.Stdout)
	if err != nil {
		return "", fmt.Errorf("error running fzf for files: %w", err)
	}

	selection := strings.TrimSpace(out.String())
	if selection == "" {
		return "", fmt.Errorf("no file selected")
	}
	return selection, nil
}
