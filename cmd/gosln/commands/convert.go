package commands

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/willibrandon/gosln/cmd/gosln/output"
	"github.com/willibrandon/gosln/solution"
)

type convertOptions struct {
	configFile string
	format     string
}

// NewConvertCommand creates the convert command
func NewConvertCommand(console *output.Console) *cobra.Command {
	opts := &convertOptions{}

	cmd := &cobra.Command{
		Use:   "convert <input> <output>",
		Short: "Convert a solution between .sln and .slnx",
		Long: `Convert a solution file to another format.

Converting a .sln to .slnx distills the per-project configuration lines into
configuration rules. Converting a .slnx to .sln expands the rules into one
line per solution configuration. A .slnf filter can be used as input; the
output then contains only the filtered projects.

Examples:
  gosln convert App.sln App.slnx
  gosln convert App.slnx App.sln
  gosln convert App.slnf build/App.slnx --format json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, console, args[0], args[1], opts)
		},
	}

	cmd.Flags().StringVar(&opts.configFile, "configfile", "", "The gosln.yaml file to use. Defaults to the one next to the input solution.")
	cmd.Flags().StringVar(&opts.format, "format", formatConsole, "Output format: console or json")

	return cmd
}

func runConvert(cmd *cobra.Command, console *output.Console, in, out string, opts *convertOptions) error {
	if err := validateFormat(opts.format); err != nil {
		return err
	}
	if err := solution.ValidateSolutionFile(in); err != nil {
		return err
	}

	start := time.Now()
	_, _, options, err := loadOptions(console, opts.configFile, in)
	if err != nil {
		return err
	}

	sol, err := solution.Convert(cmd.Context(), in, out, options...)
	if err != nil {
		return err
	}

	rules := 0
	for _, p := range sol.Projects {
		rules += len(p.ConfigurationRules)
	}

	if opts.format == formatJSON {
		return output.WriteJSON(console.Out(), &output.ConvertOutput{
			SchemaVersion: output.CurrentSchemaVersion,
			Input:         sol.FilePath,
			Output:        out,
			Projects:      len(sol.Projects),
			Rules:         rules,
			ElapsedMs:     output.MeasureElapsed(start),
		})
	}

	console.Detail("%d projects, %d configuration rules", len(sol.Projects), rules)
	console.Success("Converted %s to %s", in, out)
	return nil
}
