package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Fepozopo/kernelimg/pkg/config"
	"github.com/Fepozopo/kernelimg/pkg/convolve"
	"github.com/Fepozopo/kernelimg/pkg/logger"
	"github.com/Fepozopo/kernelimg/pkg/raster"
)

func usage(out io.Writer) {
	fmt.Fprintln(out, "Commands available:")
	fmt.Fprintln(out, "  /  - select and apply a filter")
	fmt.Fprintln(out, "  o  - open another image")
	fmt.Fprintln(out, "  s  - save current image")
	fmt.Fprintln(out, "  p  - preview current image")
	fmt.Fprintln(out, "  i  - show image info")
	fmt.Fprintln(out, "  u  - check for updates")
	fmt.Fprintln(out, "  h  - show this help message")
	fmt.Fprintln(out, "  q  - quit")
}

// session is the state of one interactive run.
type session struct {
	cfg     *config.Config
	in      *bufio.Reader
	out     io.Writer
	preview *Previewer
	useFzf  bool
	log     *logrus.Entry

	cur  *raster.Image
	path string
}

// RunREPL runs the interactive editor reading commands from in until 'q' or
// end of input. When path is non-empty it is opened first.
func RunREPL(cfg *config.Config, path string, in io.Reader, out io.Writer) error {
	s := &session{
		cfg:     cfg,
		in:      bufio.NewReader(in),
		out:     out,
		preview: NewPreviewer(out, cfg.PreviewBackend),
		useFzf:  isInteractive(in) && fzfAvailable(),
		log:     logger.WithField("component", "repl"),
	}
	if path != "" {
		if err := s.open(path); err != nil {
			return err
		}
	}

	fmt.Fprintln(out, "Kernel Image Editor")
	usage(out)

	for {
		line, err := promptLine(s.in, out, "> ")
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		if line == "" {
			continue
		}

		switch line[0] {
		case '/':
			s.applyFilter()
		case 'o':
			s.openPrompt()
		case 's':
			s.save()
		case 'p':
			if s.requireImage() {
				s.showPreview()
			}
		case 'i':
			if s.requireImage() {
				fmt.Fprintln(out, ImageInfo(s.path, s.cur))
			}
		case 'u':
			if err := CheckForUpdates(cfg.UpdateRepo, s.in, out); err != nil {
				fmt.Fprintf(out, "update check error: %v\n", err)
			}
		case 'h':
			usage(out)
		case 'q':
			fmt.Fprintln(out, "Exiting...")
			return nil
		default:
			fmt.Fprintf(out, "unknown command %q, press h for help\n", line)
		}
	}
}

// isInteractive reports whether r is a terminal, which is when fzf can take over.
func isInteractive(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	fi, err := f.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice != 0
}

func (s *session) requireImage() bool {
	if s.cur == nil {
		fmt.Fprintln(s.out, "No image loaded. Press 'o' to open an image first, or provide an image path as the first argument.")
		return false
	}
	return true
}

func (s *session) showPreview() {
	if !s.preview.Supported() {
		return
	}
	if err := s.preview.Show(s.cur); err != nil {
		s.log.WithError(err).Debug("preview failed")
	}
}

func (s *session) open(path string) error {
	img, err := raster.Load(path)
	if err != nil {
		return fmt.Errorf("failed to read image %s: %w", path, err)
	}
	s.cur = img
	s.path = path
	s.log.WithFields(logrus.Fields{"path": path, "image": img.String()}).Debug("opened image")
	fmt.Fprintf(s.out, "Opened %s\n", path)
	s.showPreview()
	fmt.Fprintln(s.out, ImageInfo(s.path, s.cur))
	return nil
}

func (s *session) openPrompt() {
	var path string
	if s.useFzf {
		if sel, err := SelectFileWithFzf("."); err == nil {
			path = sel
		}
	}
	if path == "" {
		p, err := promptLine(s.in, s.out, "Enter path to image to open (leave empty to cancel): ")
		if err != nil || p == "" {
			fmt.Fprintln(s.out, "open cancelled")
			return
		}
		path = p
	}
	if err := s.open(path); err != nil {
		fmt.Fprintln(s.out, err)
	}
}

func (s *session) save() {
	if !s.requireImage() {
		return
	}
	path, err := promptLine(s.in, s.out, "Enter output filename: ")
	if err != nil || path == "" {
		fmt.Fprintln(s.out, "no filename provided")
		return
	}
	if err := s.cur.Save(path); err != nil {
		fmt.Fprintf(s.out, "failed to write image: %v\n", err)
		return
	}
	s.path = path
	fmt.Fprintf(s.out, "Saved to %s\n", path)
}

func (s *session) applyFilter() {
	if !s.requireImage() {
		return
	}
	op, ok := s.selectOperation()
	if !ok {
		return
	}
	next, err := convolve.Apply(op, s.cur, convolve.WithWorkers(s.cfg.Workers))
	if err != nil {
		fmt.Fprintf(s.out, "apply filter error: %v\n", err)
		return
	}
	s.cur = next
	fmt.Fprintf(s.out, "Applied %s\n", op)
	s.showPreview()
	fmt.Fprintln(s.out, ImageInfo(s.path, s.cur))
}

// selectOperation asks for a filter through fzf, falling back to a numbered
// list that accepts an index, a full name or an unambiguous prefix.
func (s *session) selectOperation() (convolve.Operation, bool) {
	specs := convolve.Operations()
	if s.useFzf {
		if op, err := SelectOperationWithFzf(specs); err == nil {
			return op, true
		}
	}

	fmt.Fprintln(s.out, "Filter selection:")
	for i, sp := range specs {
		fmt.Fprintf(s.out, "  %d) %s - %s\n", i+1, sp.Name, sp.Description)
	}
	selection, err := promptLine(s.in, s.out, "Enter number or filter name (leave empty to cancel): ")
	if err != nil || selection == "" {
		fmt.Fprintln(s.out, "selection cancelled")
		return 0, false
	}
	if idx, perr := strconv.Atoi(selection); perr == nil {
		if idx < 1 || idx > len(specs) {
			fmt.Fprintln(s.out, "invalid selection")
			return 0, false
		}
		return specs[idx-1].Operation, true
	}
	if op, err := convolve.ParseOperation(selection); err == nil {
		return op, true
	}

	var matches []convolve.Spec
	for _, sp := range specs {
		if strings.HasPrefix(strings.ToLower(sp.Name), strings.ToLower(selection)) {
			matches = append(matches, sp)
		}
	}
	switch len(matches) {
	case 0:
		fmt.Fprintf(s.out, "unknown filter: %s\n", selection)
		return 0, false
	case 1:
		return matches[0].Operation, true
	}
	fmt.Fprintln(s.out, "ambiguous selection, candidates:")
	for _, m := range matches {
		fmt.Fprintln(s.out, "  "+m.Name)
	}
	return 0, false
}
