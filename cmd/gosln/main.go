// cmd/gosln/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/willibrandon/gosln/cmd/gosln/cli"
	"github.com/willibrandon/gosln/cmd/gosln/commands"
)

// Version information (set via ldflags during build)
var (
	version = "0.0.0-dev"
	commit  = "unknown"
	date    = "unknown"
	builtBy = "unknown"
)

func main() {
	// Set version info
	cli.Version = version
	cli.Commit = commit
	cli.Date = date
	cli.BuiltBy = builtBy

	// Setup version after variables are set
	cli.SetupVersion()

	// Register commands
	cli.AddCommand(commands.NewVersionCommand(cli.Console))
	cli.AddCommand(commands.NewCompletionCommand())
	cli.AddCommand(commands.NewConvertCommand(cli.Console))
	cli.AddCommand(commands.NewMatrixCommand(cli.Console))
	cli.AddCommand(commands.NewRulesCommand(cli.Console))
	cli.AddCommand(commands.NewTypesCommand(cli.Console))
	cli.AddCommand(commands.NewDetectCommand(cli.Console))

	// Cancel on the first signal so pending traces still flush
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		stop()
	}()

	// Execute CLI
	err := cli.ExecuteContext(ctx)
	if ctx.Err() != nil {
		os.Exit(130) // 128 + SIGINT
	}
	if err != nil {
		// Print error to stderr since SilenceErrors is true in rootCmd
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
