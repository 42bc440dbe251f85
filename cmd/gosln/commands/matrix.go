package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/willibrandon/gosln/cmd/gosln/output"
	"github.com/willibrandon/gosln/solution"
)

// NewMatrixCommand creates the matrix command
func NewMatrixCommand(console *output.Console) *cobra.Command {
	opts := &solutionOptions{}

	cmd := &cobra.Command{
		Use:   "matrix [solution]",
		Short: "Show the project configuration matrix",
		Long: `Show, for every solution configuration, the project configuration each
project maps to and whether it is built and deployed.

The matrix is expanded from the project's configuration rules. Without a
solution argument the solution in the current directory is used.

Examples:
  gosln matrix
  gosln matrix App.slnx --project Core
  gosln matrix App.sln --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatrix(cmd, console, argOrEmpty(args), opts)
		},
	}

	cmd.Flags().StringVar(&opts.configFile, "configfile", "", "The gosln.yaml file to use. Defaults to the one next to the solution.")
	cmd.Flags().StringVar(&opts.format, "format", formatConsole, "Output format: console or json")
	cmd.Flags().StringVar(&opts.project, "project", "", "Only show the project with this name")

	return cmd
}

func runMatrix(cmd *cobra.Command, console *output.Console, arg string, opts *solutionOptions) error {
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

	cm := solution.NewSolutionConfigurationMap(loaded.sol, nil, loaded.logger)
	annotations := cm.CreateMatrixAnnotation()

	result := output.NewMatrixOutput(loaded.sol.FilePath, start)
	for _, project := range projects {
		mappings, supported := cm.GetProjectConfigMap(project)
		pm := output.ProjectMatrix{
			Name:      project.Name,
			Path:      project.Path,
			Supported: supported,
			Cells:     make([]output.MatrixCell, 0, len(annotations)),
		}
		for _, a := range annotations {
			cell := mappings.At(a.Index)
			pm.Cells = append(pm.Cells, output.MatrixCell{
				Solution:  a.FullConfiguration,
				BuildType: cell.BuildType,
				Platform:  cell.Platform,
				Build:     cell.Build,
				Deploy:    cell.Deploy,
			})
		}
		result.Projects = append(result.Projects, pm)
	}
	result.ElapsedMs = output.MeasureElapsed(start)

	if opts.format == formatJSON {
		return output.WriteJSON(console.Out(), result)
	}

	if len(result.Projects) == 0 {
		console.Info("No projects in %s.", loaded.sol.FilePath)
		return nil
	}

	for i, pm := range result.Projects {
		if i > 0 {
			console.Println()
		}
		console.Header("%s (%s)", pm.Name, pm.Path)
		if !pm.Supported {
			console.Info("  not built by solution configurations")
			continue
		}

		w := tabwriter.NewWriter(console.Out(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "  SOLUTION\tPROJECT\tBUILD\tDEPLOY")
		for _, c := range pm.Cells {
			fmt.Fprintf(w, "  %s\t%s|%s\t%s\t%s\n", c.Solution, c.BuildType, c.Platform, console.Flag(c.Build), console.Flag(c.Deploy))
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}
	return nil
}
