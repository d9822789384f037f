package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	// Register source implementations.
	_ "github.com/crimson-sun/spfeed/internal/source/file"
	_ "github.com/crimson-sun/spfeed/internal/source/stdin"
)

func main() {
	// Set up graceful shutdown.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Fprintf(os.Stderr, "\nreceived %v, shutting down...\n", sig)
		cancel()
	}()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "spfeed: %v\n", err)
		os.Exit(1)
	}
}
