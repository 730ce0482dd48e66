package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ironsheep/docscan/internal/detection"
	"github.com/ironsheep/docscan/internal/ocr"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		// No configuration needed.
		PersistentPreRun: func(cmd *cobra.Command, args []string) {},
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "docscan %s\n", Version)
			fmt.Fprintf(out, "  Build time: %s\n", BuildTime)
			fmt.Fprintf(out, "  Git commit: %s\n", GitCommit)
			fmt.Fprintf(out, "  Backends:   %v\n", detection.Backends())
			fmt.Fprintf(out, "  Tesseract:  %s\n", ocr.Version())
		},
	}
}
