package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/ironsheep/docscan/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.cfg.Addr
			}
			handler := server.NewHTTPHandler(a.service(false), server.HTTPOptions{
				Timeout:      a.cfg.RequestTimeout,
				MaxBodyBytes: a.cfg.MaxBodyBytes,
				Version:      Version,
			})
			srv := &http.Server{
				Addr:              addr,
				Handler:           handler,
				ReadHeaderTimeout: 10 * time.Second,
			}

			errc := make(chan error, 1)
			go func() { errc <- srv.ListenAndServe() }()
			a.log.WithField("addr", addr).Info("listening")

			select {
			case err := <-errc:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-cmd.Context().Done():
				a.log.Info("shutting down")
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return srv.Shutdown(ctx)
			}
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from DOCSCAN_ADDR or :8000)")
	return cmd
}

func newMCPCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Run the MCP server over stdin/stdout",
		Long: "Run the MCP server over stdin/stdout. Configure it in your MCP client; " +
			"logs go to stderr because stdout carries the protocol.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.log.WithField("version", Version).Debug("MCP server starting")
			srv := server.New(a.service(true), a.log, Version)
			return srv.Serve(cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}
