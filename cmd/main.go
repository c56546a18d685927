package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/desertthunder/tdx/internal/shared"
	"github.com/mattn/go-isatty"
)

func main() {
	logger := shared.NewLogger(nil)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	interactive := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())

	runner := NewRunner(RunnerOpts{Logger: logger, Interactive: interactive})
	if err := runner.command().Run(ctx, os.Args); err != nil {
		stop()
		logger.Fatalf("application error: %v", err)
	}
}
