package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"backoffice/pkg/app"
)

// main is the installable binary: go install backoffice/cmd/backoffice.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := app.Run(ctx, os.Args[1:], app.Streams{})
	stop()
	if err != nil {
		// cobra has already printed the error.
		os.Exit(1)
	}
}
