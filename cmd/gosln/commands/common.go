package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/willibrandon/gosln/cmd/gosln/config"
	"github.com/willibrandon/gosln/cmd/gosln/output"
	"github.com/willibrandon/gosln/observability"
	"github.com/willibrandon/gosln/solution"
)

// Output formats accepted by --format.
const (
	formatConsole = "console"
	formatJSON    = "json"
)

// solutionOptions holds the flags shared by commands that read a solution.
type solutionOptions struct {
	configFile string
	format     string
	project    string
}

func validateFormat(format string) error {
	switch format {
	case formatConsole, formatJSON:
		return nil
	default:
		return fmt.Errorf("invalid format %q (valid: console, json)", format)
	}
}

// resolveSolutionPath returns the solution named by arg. An empty arg or a
// directory is searched with the detector.
func resolveSolutionPath(arg string) (string, error) {
	dir := arg
	if arg != "" {
		info, err := os.Stat(arg)
		if err != nil || !info.IsDir() {
			if err := solution.ValidateSolutionFile(arg); err != nil {
				return "", err
			}
			return filepath.Abs(arg)
		}
	}

	result, err := solution.NewDetector(dir).DetectSolution()
	if err != nil {
		return "", err
	}
	switch {
	case !result.Found:
		if dir == "" {
			dir = "."
		}
		return "", fmt.Errorf("no solution file found in %s", dir)
	case result.Ambiguous:
		return "", fmt.Errorf("multiple solution files found, specify one: %s", strings.Join(result.FoundFiles, ", "))
	}
	return result.SolutionPath, nil
}

// newLogger returns a logger writing to stderr. The level follows console
// verbosity unless gosln.yaml sets logLevel.
func newLogger(console *output.Console, cfg *config.Config) observability.Logger {
	if cfg != nil && cfg.LogLevel != "" {
		if level, err := observability.ParseLogLevel(cfg.LogLevel); err == nil {
			return observability.NewLogger(console.Err(), level)
		}
	}

	var level observability.LogLevel
	switch console.GetVerbosity() {
	case output.VerbosityQuiet:
		level = observability.ErrorLevel
	case output.VerbosityNormal:
		level = observability.WarnLevel
	case output.VerbosityDetailed:
		level = observability.InfoLevel
	default:
		level = observability.VerboseLevel
	}
	return observability.NewLogger(console.Err(), level)
}

// loadedSolution is a solution together with the settings it was read with.
type loadedSolution struct {
	sol     *solution.Solution
	cfg     *config.Config
	logger  observability.Logger
	options []solution.Option
}

// table returns the effective project type table: configured types ahead of
// the solution's own.
func (l *loadedSolution) table() *solution.ProjectTypeTable {
	return l.sol.ProjectTypeTable(l.logger)
}

// selectedProjects returns every project, or the one --project names.
func (l *loadedSolution) selectedProjects(name string) ([]*solution.Project, error) {
	if name == "" {
		return l.sol.Projects, nil
	}
	project, ok := l.sol.GetProjectByName(name)
	if !ok {
		return nil, fmt.Errorf("project %q not found in %s", name, filepath.Base(l.sol.FilePath))
	}
	return []*solution.Project{project}, nil
}

// loadOptions reads gosln.yaml (from configFile, or next to the solution)
// and turns it into parser options.
func loadOptions(console *output.Console, configFile, solutionPath string) (*config.Config, observability.Logger, []solution.Option, error) {
	cfg, usedPath, err := config.LoadOrDefault(configFile, filepath.Dir(solutionPath))
	if err != nil {
		return nil, nil, nil, err
	}
	if usedPath != "" {
		console.Debug("Using configuration %s", usedPath)
	}

	types, err := cfg.SolutionProjectTypes()
	if err != nil {
		return nil, nil, nil, err
	}

	logger := newLogger(console, cfg)
	options := []solution.Option{solution.WithLogger(logger)}
	if len(types) > 0 {
		options = append(options, solution.WithProjectTypes(types...))
	}
	return cfg, logger, options, nil
}

// loadSolution resolves, configures and parses the solution named by arg.
func loadSolution(ctx context.Context, console *output.Console, configFile, arg string) (*loadedSolution, error) {
	path, err := resolveSolutionPath(arg)
	if err != nil {
		return nil, err
	}

	cfg, logger, options, err := loadOptions(console, configFile, path)
	if err != nil {
		return nil, err
	}

	console.Debug("Loading %s", path)
	sol, err := solution.LoadSolution(ctx, path, options...)
	if err != nil {
		return nil, err
	}
	return &loadedSolution{sol: sol, cfg: cfg, logger: logger, options: options}, nil
}

// typeLabel names a project's type for display.
func typeLabel(table *solution.ProjectTypeTable, project *solution.Project) string {
	if pt, _, ok := table.ResolveProjectType(project); ok {
		return pt.DisplayName()
	}
	return project.Type
}

func ruleOutputs(rules []solution.ConfigurationRule) []output.Rule {
	result := make([]output.Rule, 0, len(rules))
	for _, r := range rules {
		result = append(result, output.Rule{
			Dimension: r.Dimension.String(),
			Solution:  r.SolutionConfiguration(),
			Project:   r.ProjectValue,
		})
	}
	return result
}

func argOrEmpty(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
