package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/RyanBlaney/fftscope/cmd/fftscope/app"
	"github.com/RyanBlaney/fftscope/logging"
)

func main() {
	config, err := app.NewConfigFromCLI()
	if err != nil {
		logging.Error(err, "Invalid arguments")
		os.Exit(2)
	}
	if config.Verbose {
		logging.SetLevel(logging.DebugLevel)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err = app.Run(ctx, config, os.Stdin, os.Stdout); err != nil {
		logging.Error(err, "fftscope failed")

		cancel()
		os.Exit(1)
	}
}
