// Package main is the production entry point for the TuneStream client.
//
// TuneStream browses a remote music catalog (artists, albums, songs) and
// streams songs from it, either in a desktop window or from the terminal.
//
// Build:
//
//	go build -o build/tunestream ./cmd
//
// Run:
//
//	./build/tunestream                       # desktop player
//	./build/tunestream songs --album <id>    # list an album
//	./build/tunestream play --artist <id>    # play from the terminal
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/tejashwikalptaru/tunestream/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
