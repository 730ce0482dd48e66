package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ironsheep/docscan/internal/config"
	"github.com/ironsheep/docscan/internal/ocr"
	"github.com/ironsheep/docscan/internal/server"
)

// app carries what every subcommand needs once the root has run.
type app struct {
	cfg      *config.Config
	log      *logrus.Logger
	logLevel string
}

func newRootCmd() *cobra.Command {
	a := &app{log: logrus.New()}

	root := &cobra.Command{
		Use:           "docscan",
		Short:         "Document scanner: detect page boundaries and flatten them",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			if a.logLevel != "" {
				if cfg.LogLevel, err = logrus.ParseLevel(a.logLevel); err != nil {
					return err
				}
			}
			cfg.ConfigureLogger(a.log)
			a.log.SetOutput(cmd.ErrOrStderr())
			a.cfg = cfg
			return nil
		},
	}
	root.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error (default from DOCSCAN_LOG_LEVEL)")

	root.AddCommand(
		newServeCmd(a),
		newMCPCmd(a),
		newDetectCmd(a),
		newWarpCmd(a),
		newVersionCmd(),
	)
	return root
}

// service builds the request adapter shared by the serve and mcp commands.
func (a *app) service(allowPaths bool) *server.Service {
	return server.NewService(server.Options{
		Backend: a.cfg.Backend,
		OCR: ocr.Options{
			Language:       a.cfg.OCRLanguage,
			TessdataPrefix: a.cfg.TessdataPrefix,
		},
		AllowPaths: allowPaths,
	}, a.log)
}
