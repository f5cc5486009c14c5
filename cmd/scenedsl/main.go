package main

import (
	"context"
	stderrors "errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/matzehuels/scenedsl/internal/cli"
	"github.com/matzehuels/scenedsl/pkg/errors"
)

// Exit statuses, so scripts can tell a bad scene from a failed model call.
const (
	exitFailure     = 1
	exitUsage       = 2
	exitScene       = 3
	exitGenerator   = 4
	exitInterrupted = 130
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx)
	cancel()
	if err == nil {
		return
	}
	if code := exitCode(err); code != exitInterrupted {
		cli.PrintError(err)
		os.Exit(code)
	}
	os.Exit(exitInterrupted)
}

func exitCode(err error) int {
	code := errors.GetCode(err)
	switch {
	case stderrors.Is(err, context.Canceled):
		return exitInterrupted
	case code.Scene():
		return exitScene
	case errors.Is(err, errors.ErrCodeInvalidInput, errors.ErrCodeInvalidConfig):
		return exitUsage
	case errors.Is(err, errors.ErrCodeGenerationFailed, errors.ErrCodeRateLimited):
		return exitGenerator
	}
	return exitFailure
}

func run(ctx context.Context) error {
	c := cli.New(os.Stderr, cli.LogInfo)
	root := c.RootCommand()

	verbose := root.PersistentFlags().BoolP("verbose", "v", false, "debug logging with conversion and cache events")

	// --verbose overrides the level from the config file.
	loadConfig := root.PersistentPreRunE
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(cmd, args); err != nil {
			return err
		}
		if *verbose {
			c.EnableDebug()
		}
		return nil
	}

	return root.ExecuteContext(ctx)
}
