package commands

import (
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/willibrandon/gosln/cmd/gosln/output"
	"github.com/willibrandon/gosln/solution"
)

type detectOptions struct {
	format string
}

// NewDetectCommand creates the detect command
func NewDetectCommand(console *output.Console) *cobra.Command {
	opts := &detectOptions{}

	cmd := &cobra.Command{
		Use:   "detect [directory]",
		Short: "Find the solution file in a directory",
		Long: `Search a directory tree for solution files and report the one other gosln
commands would use.

Only the solutions closest to the directory are considered, and a .slnx
takes precedence over a .sln with the same name. bin, obj, node_modules and
hidden directories are skipped.

Examples:
  gosln detect
  gosln detect src --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetect(console, argOrEmpty(args), opts)
		},
	}

	cmd.Flags().StringVar(&opts.format, "format", formatConsole, "Output format: console or json")

	return cmd
}

func runDetect(console *output.Console, dir string, opts *detectOptions) error {
	if err := validateFormat(opts.format); err != nil {
		return err
	}

	detector := solution.NewDetector(dir)
	found, err := detector.DetectSolution()
	if err != nil {
		return err
	}

	absDir, err := filepath.Abs(detector.SearchDir)
	if err != nil {
		absDir = detector.SearchDir
	}
	result := output.NewDetectOutput(absDir)
	result.Found = found.Found
	result.Ambiguous = found.Ambiguous
	result.Solution = found.SolutionPath
	result.Format = found.Format
	result.Candidates = append(result.Candidates, found.FoundFiles...)

	if opts.format == formatJSON {
		return output.WriteJSON(console.Out(), result)
	}

	switch {
	case !result.Found:
		console.Warning("No solution file found in %s", absDir)
	case result.Ambiguous:
		console.Warning("Multiple solution files found in %s:", absDir)
		for _, f := range result.Candidates {
			console.Info("  %s", f)
		}
	default:
		console.Println(result.Solution)
		console.Detail("format: %s", result.Format)
		for _, f := range result.Candidates {
			if f != result.Solution {
				console.Detail("ignored: %s", f)
			}
		}
	}
	return nil
}
