// Command docscan finds and flattens photographed document pages.
//
// Usage:
//
//	docscan serve              HTTP API (POST /process, GET /health)
//	docscan mcp                MCP server over stdin/stdout
//	docscan detect FILE...     candidate pages as JSON lines
//	docscan warp FILE --points x,y,x,y,x,y,x,y
//	docscan version
//
// Settings come from DOCSCAN_* environment variables; see internal/config.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Create a context that listens for Ctrl+C (SIGINT) or Kill (SIGTERM)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
