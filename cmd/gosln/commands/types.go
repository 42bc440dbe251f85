package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/willibrandon/gosln/cmd/gosln/config"
	"github.com/willibrandon/gosln/cmd/gosln/output"
	"github.com/willibrandon/gosln/solution"
)

// Where a project type definition comes from.
const (
	sourceBuiltIn  = "built-in"
	sourceSolution = "solution"
	sourceConfig   = "config"
)

// NewTypesCommand creates the types command
func NewTypesCommand(console *output.Console) *cobra.Command {
	opts := &solutionOptions{}

	cmd := &cobra.Command{
		Use:   "types [solution]",
		Short: "List project types",
		Long: `List the project types a solution resolves projects against: the types
from gosln.yaml, the types the solution declares, then the built-in types.

Without a solution argument the solution in the current directory is used;
when there is none, only built-in and configured types are listed.

Examples:
  gosln types
  gosln types App.slnx --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTypes(cmd, console, argOrEmpty(args), opts)
		},
	}

	cmd.Flags().StringVar(&opts.configFile, "configfile", "", "The gosln.yaml file to use. Defaults to the one next to the solution.")
	cmd.Flags().StringVar(&opts.format, "format", formatConsole, "Output format: console or json")

	return cmd
}

func runTypes(cmd *cobra.Command, console *output.Console, arg string, opts *solutionOptions) error {
	if err := validateFormat(opts.format); err != nil {
		return err
	}

	var (
		table      *solution.ProjectTypeTable
		configured []solution.ProjectType
		solPath    string
	)

	if arg == "" && !solutionInCurrentDirectory() {
		cfg, _, err := config.LoadOrDefault(opts.configFile, "")
		if err != nil {
			return err
		}
		if configured, err = cfg.SolutionProjectTypes(); err != nil {
			return err
		}
		table = solution.NewProjectTypeTable(configured, newLogger(console, cfg))
	} else {
		loaded, err := loadSolution(cmd.Context(), console, opts.configFile, arg)
		if err != nil {
			return err
		}
		if configured, err = loaded.cfg.SolutionProjectTypes(); err != nil {
			return err
		}
		table = loaded.table()
		solPath = loaded.sol.FilePath
	}

	result := output.NewTypesOutput(solPath)
	if pt, ok := table.DefaultType(); ok {
		result.Types = append(result.Types, typeOutput(table, pt, sourceOf(pt, configured)))
	}
	for _, pt := range table.ProjectTypes() {
		result.Types = append(result.Types, typeOutput(table, pt, sourceOf(pt, configured)))
	}
	builtIn := solution.BuiltInProjectTypes()
	for _, pt := range builtIn.ProjectTypes() {
		result.Types = append(result.Types, typeOutput(builtIn, pt, sourceBuiltIn))
	}

	if opts.format == formatJSON {
		return output.WriteJSON(console.Out(), result)
	}

	w := tabwriter.NewWriter(console.Out(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "NAME\tEXTENSION\tTYPE ID\tBASED ON\tBUILDABLE\tSOURCE")
	for _, t := range result.Types {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			typeName(t), dashIfEmpty(t.Extension), dashIfEmpty(t.TypeID), dashIfEmpty(t.BasedOn), console.Flag(t.Buildable), t.Source)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if console.GetVerbosity() >= output.VerbosityDetailed {
		for _, t := range result.Types {
			if len(t.Rules) == 0 {
				continue
			}
			console.Println()
			console.Header("%s rules", typeName(t))
			for _, r := range t.Rules {
				console.Detail("  %s(%s)=%s", r.Dimension, r.Solution, r.Project)
			}
		}
	}
	return nil
}

func solutionInCurrentDirectory() bool {
	result, err := solution.NewDetector(".").DetectSolution()
	return err == nil && result.Found
}

func typeOutput(table *solution.ProjectTypeTable, pt *solution.ProjectType, source string) output.ProjectType {
	t := output.ProjectType{
		Name:      pt.Name,
		Extension: pt.Extension,
		BasedOn:   pt.BasedOn,
		Buildable: table.IsBuildable(pt),
		Source:    source,
		Rules:     ruleOutputs(pt.ConfigurationRules),
	}
	if pt.ProjectTypeID != uuid.Nil {
		t.TypeID = solution.FormatGUID(pt.ProjectTypeID)
	}
	return t
}

// sourceOf reports whether a solution table entry came from gosln.yaml.
func sourceOf(pt *solution.ProjectType, configured []solution.ProjectType) string {
	for i := range configured {
		c := &configured[i]
		if c.ProjectTypeID == pt.ProjectTypeID && c.Name == pt.Name && c.Extension == pt.Extension {
			return sourceConfig
		}
	}
	return sourceSolution
}

func typeName(t output.ProjectType) string {
	switch {
	case t.Name != "":
		return t.Name
	case t.Extension != "":
		return t.Extension
	case t.TypeID != "":
		return t.TypeID
	default:
		return "(default)"
	}
}

func dashIfEmpty(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
