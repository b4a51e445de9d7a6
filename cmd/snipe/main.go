// Command snipe is the process entrypoint: it owns nothing but bootstrap
// and the stdio transport lifecycle. Every actual operation lives behind
// the six MCP tools internal/mcpserver registers against internal/engine.
// HTTP transport and a general CLI surface are explicit non-goals.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/snipe-dev/snipe/internal/debug"
	"github.com/snipe-dev/snipe/internal/engine"
	"github.com/snipe-dev/snipe/internal/mcpserver"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "snipe: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	eng := engine.New()
	srv := mcpserver.New(eng)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Run(ctx)
	}()

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		debug.LogMCP("received signal %v, shutting down", sig)
		cancel()
		select {
		case <-errChan:
		case <-time.After(2 * time.Second):
		}
		return nil
	}
}
