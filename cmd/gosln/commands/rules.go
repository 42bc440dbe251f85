package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/willibrandon/gosln/cmd/gosln/output"
	"github.com/willibrandon/gosln/solution"
)

type rulesOptions struct {
	solutionOptions
	effective bool
}

// NewRulesCommand creates the rules command
func NewRulesCommand(console *output.Console) *cobra.Command {
	opts := &rulesOptions{}

	cmd := &cobra.Command{
		Use:   "rules [solution]",
		Short: "Show project configuration rules",
		Long: `Show the configuration rules of each project.

For a .sln the rules are distilled from the project configuration lines, so
this shows what converting to .slnx would write. With --effective the rules
inherited from the project type (and its BasedOn chain) are listed first.

Examples:
  gosln rules
  gosln rules App.sln --project App
  gosln rules App.slnx --effective --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRules(cmd, console, argOrEmpty(args), opts)
		},
	}

	cmd.Flags().StringVar(&opts.configFile, "configfile", "", "The gosln.yaml file to use. Defaults to the one next to the solution.")
	cmd.Flags().StringVar(&opts.format, "format", formatConsole, "Output format: console or json")
	cmd.Flags().StringVar(&opts.project, "project", "", "Only show the project with this name")
	cmd.Flags().BoolVar(&opts.effective, "effective", false, "Include rules inherited from the project type")

	return cmd
}

func runRules(cmd *cobra.Command, console *output.Console, arg string, opts *rulesOptions) error {
	if err := validateFormat(opts.format); err != nil {
		return err
	}

	start := time.Now()
	loaded, err := loadSolution(cmd.Context(), console, opts.configFile, arg)
	if err != nil {
		return err
	}
	projects, err := loaded.selectedProjects(opts.project)
	if err != nil {
		return err
	}

	table := loaded.table()
	result := output.NewRulesOutput(loaded.sol.FilePath, start)
	for _, project := range projects {
		rules := project.ConfigurationRules
		if opts.effective {
			rules = table.GetProjectConfigurationRules(project, false).Rules()
		}
		result.Projects = append(result.Projects, output.ProjectInfo{
			Name:  project.Name,
			Path:  project.Path,
			ID:    solution.FormatGUID(project.ID),
			Type:  typeLabel(table, project),
			Rules: ruleOutputs(rules),
		})
	}
	result.ElapsedMs = output.MeasureElapsed(start)

	if opts.format == formatJSON {
		return output.WriteJSON(console.Out(), result)
	}

	if len(result.Projects) == 0 {
		console.Info("No projects in %s.", loaded.sol.FilePath)
		return nil
	}

	for i, p := range result.Projects {
		if i > 0 {
			console.Println()
		}
		console.Header("%s (%s)", p.Name, p.Path)
		console.Detail("  id: %s", p.ID)
		if p.Type != "" {
			console.Detail("  type: %s", p.Type)
		}
		if len(p.Rules) == 0 {
			console.Info("  no rules")
			continue
		}

		w := tabwriter.NewWriter(console.Out(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "  DIMENSION\tSOLUTION\tPROJECT")
		for _, r := range p.Rules {
			fmt.Fprintf(w, "  %s\t%s\t%s\n", r.Dimension, r.Solution, r.Project)
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}
	return nil
}
