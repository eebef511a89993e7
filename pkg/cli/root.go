package cli

import (
	"bufio"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Fepozopo/kernelimg/pkg/config"
	"github.com/Fepozopo/kernelimg/pkg/convolve"
	"github.com/Fepozopo/kernelimg/pkg/logger"
	"github.com/Fepozopo/kernelimg/pkg/raster"
)

// Execute loads configuration, configures logging and runs the command line.
// It returns the process exit code.
func Execute(args []string) int {
	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Error("invalid configuration")
		return 2
	}
	if err := logger.Configure(cfg.LogLevel, cfg.LogFormat); err != nil {
		logger.WithError(err).Error("invalid logging configuration")
		return 2
	}

	root := NewRootCmd(cfg)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		logger.WithError(err).Error("command failed")
		return 1
	}
	return 0
}

// NewRootCmd builds the kernelimg command tree around cfg.
func NewRootCmd(cfg *config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:           "kernelimg",
		Short:         "Apply convolution filters to netpbm and common raster images",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newApplyCmd(cfg),
		newListCmd(),
		newInfoCmd(),
		newREPLCmd(cfg),
		newUpdateCmd(cfg),
		newVersionCmd(),
	)
	return root
}

func newApplyCmd(cfg *config.Config) *cobra.Command {
	var size, workers int
	cmd := &cobra.Command{
		Use:   "apply <operation> <input> <output>",
		Short: "Filter input with an operation and write the result to output",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			op, err := convolve.ParseOperation(args[0])
			if err != nil {
				return err
			}
			if size == 0 {
				size = op.KernelSize()
			}
			if !cmd.Flags().Changed("workers") {
				workers = cfg.Workers
			}
			return applyFile(cmd.OutOrStdout(), op, args[1], args[2], size, workers)
		},
	}
	cmd.Flags().IntVar(&size, "size", 0, "kernel size of the processor (default: the operation's own size)")
	cmd.Flags().IntVar(&workers, "workers", 0, "row workers (default: KERNELIMG_WORKERS)")
	return cmd
}

func applyFile(out io.Writer, op convolve.Operation, input, output string, size, workers int) error {
	img, err := raster.Load(input)
	if err != nil {
		return fmt.Errorf("load %s: %w", input, err)
	}
	res, err := convolve.New(size, convolve.WithWorkers(workers)).Convolution(op, img)
	if err != nil {
		return err
	}
	if err := res.Save(output); err != nil {
		return fmt.Errorf("save %s: %w", output, err)
	}
	logger.WithFields(logrus.Fields{
		"operation": op.String(),
		"input":     input,
		"output":    output,
	}).Info("filter applied")
	fmt.Fprintf(out, "Applied %s: %s -> %s\n", op, input, output)
	return nil
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the available operations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tSIZE\tDESCRIPTION")
			for _, s := range convolve.Operations() {
				fmt.Fprintf(tw, "%s\t%dx%d\t%s\n", s.Name, s.KernelSize, s.KernelSize, s.Description)
			}
			return tw.Flush()
		},
	}
}

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <path>",
		Short: "Print format, mode and dimensions of an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := raster.Load(args[0])
			if err != nil {
				return fmt.Errorf("load %s: %w", args[0], err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), ImageInfo(args[0], img))
			return nil
		},
	}
}

func newREPLCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "repl [path]",
		Short: "Edit an image interactively",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			return RunREPL(cfg, path, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

func newUpdateCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Check GitHub for a newer release and install it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return CheckForUpdates(cfg.UpdateRepo, bufio.NewReader(cmd.InOrStdin()), cmd.OutOrStdout())
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "kernelimg %s\n", Version)
		},
	}
}
