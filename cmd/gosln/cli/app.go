// cmd/gosln/cli/app.go
package cli

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/willibrandon/gosln/cmd/gosln/config"
	"github.com/willibrandon/gosln/cmd/gosln/output"
	"github.com/willibrandon/gosln/observability"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

var rootCmd = &cobra.Command{
	Use:   "gosln",
	Short: "Visual Studio solution file tool",
	Long: `gosln reads, converts and inspects Visual Studio solution files
(.sln, .slnx and .slnf).

Converting a .sln to .slnx distills the per-project configuration lines into
configuration rules; converting back expands the rules again.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupRun,
	Run: func(cmd *cobra.Command, args []string) {
		// Show help when no command is provided
		_ = cmd.Help()
	},
}

// Console is the global console for CLI commands
var Console *output.Console

// tracerProvider is set when --trace enabled tracing for this run.
var tracerProvider *sdktrace.TracerProvider

// dumpMetrics is set by --metrics.
var dumpMetrics bool

// Execute runs the root command
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with ctx and flushes traces afterwards.
func ExecuteContext(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if tracerProvider != nil {
		// ctx may already be cancelled by a signal; spans still need flushing
		if shutdownErr := observability.ShutdownTracing(context.Background(), tracerProvider); shutdownErr != nil {
			Console.Warning("failed to flush traces: %v", shutdownErr)
		}
		tracerProvider = nil
	}
	if dumpMetrics {
		if metricsErr := observability.WriteMetrics(Console.Err()); metricsErr != nil {
			Console.Warning("failed to write metrics: %v", metricsErr)
		}
		dumpMetrics = false
	}
	return err
}

func init() {
	// Initialize console
	Console = output.DefaultConsole()

	// Add common flags that will be used by subcommands
	rootCmd.PersistentFlags().StringP("configfile", "", "", "gosln.yaml configuration file to use")
	rootCmd.PersistentFlags().StringP("verbosity", "", "normal", "Display verbosity (quiet, normal, detailed, diagnostic)")
	rootCmd.PersistentFlags().BoolP("trace", "", false, "Export OpenTelemetry traces for this run")
	rootCmd.PersistentFlags().BoolP("metrics", "", false, "Print Prometheus metrics to stderr after the command")
}

// setupRun applies --verbosity, falling back to the configured verbosity
// when the flag is not given, and starts tracing for --trace.
func setupRun(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	dumpMetrics, _ = flags.GetBool("metrics")

	verbosityFlag, _ := flags.GetString("verbosity")
	verbosity, err := output.ParseVerbosity(verbosityFlag)
	if err != nil {
		return err
	}

	trace, _ := flags.GetBool("trace")
	if flags.Changed("verbosity") && !trace {
		Console.SetVerbosity(verbosity)
		return nil
	}

	configFile, _ := flags.GetString("configfile")
	cfg, _, err := config.LoadOrDefault(configFile, "")
	if err != nil {
		return err
	}

	if !flags.Changed("verbosity") {
		if verbosity, err = output.ParseVerbosity(cfg.Verbosity); err != nil {
			return err
		}
	}
	Console.SetVerbosity(verbosity)

	if trace {
		tc := cfg.TracerConfig(Version)
		tc.Writer = Console.Err()
		tp, err := observability.SetupTracing(cmd.Context(), tc)
		if err != nil {
			return err
		}
		tracerProvider = tp
	}
	return nil
}

// SetupVersion configures version information after variables are set
func SetupVersion() {
	rootCmd.SetVersionTemplate(GetFullVersion() + "\n")
	rootCmd.Version = GetVersion()
}

// AddCommand adds a command to the root command
func AddCommand(cmd *cobra.Command) {
	rootCmd.AddCommand(cmd)
}

// SetArgs overrides the arguments Execute parses.
func SetArgs(args []string) {
	rootCmd.SetArgs(args)
}
