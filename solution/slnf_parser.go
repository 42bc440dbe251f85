package solution

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// SlnfParser parses JSON-based .slnf solution filter files
type SlnfParser struct {
	opts options
}

// NewSlnfParser creates a new .slnf file parser. Options are passed on to the
// parser of the parent solution.
func NewSlnfParser(opts ...Option) *SlnfParser {
	return &SlnfParser{opts: newOptions(opts)}
}

// CanParse checks if this parser supports the given file
func (p *SlnfParser) CanParse(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".slnf"
}

// slnfDocument represents the JSON structure of a .slnf file
type slnfDocument struct {
	Solution slnfSolution `json:"solution"`
}

// slnfSolution contains the solution reference and filtered projects
type slnfSolution struct {
	Path     string   `json:"path"`
	Projects []string `json:"projects"`
}

// ReadFilter reads the filter document without loading the parent solution.
// The returned solution path is absolute.
func (p *SlnfParser) ReadFilter(path string) (*SolutionFilter, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, &ParseError{
			FilePath: absPath,
			Message:  fmt.Sprintf("cannot open file: %v", err),
		}
	}

	var doc slnfDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{
			FilePath: absPath,
			Message:  fmt.Sprintf("failed to parse JSON: %v", err),
		}
	}
	if doc.Solution.Path == "" {
		return nil, &ParseError{
			FilePath: absPath,
			Message:  "missing solution path in filter file",
		}
	}

	solutionPath := ConvertToSystemPath(NormalizePath(doc.Solution.Path))
	if !filepath.IsAbs(solutionPath) {
		solutionPath = filepath.Join(filepath.Dir(absPath), solutionPath)
	}

	filter := &SolutionFilter{
		SolutionPath: filepath.Clean(solutionPath),
		Projects:     make([]string, 0, len(doc.Solution.Projects)),
	}
	for _, projPath := range doc.Solution.Projects {
		filter.Projects = append(filter.Projects, NormalizePath(projPath))
	}
	return filter, nil
}

// Parse reads a .slnf file and returns its parent solution restricted to the
// listed projects. Folders, configurations, project types and properties of
// the parent are kept; dependencies on filtered-out projects are dropped.
func (p *SlnfParser) Parse(path string) (*Solution, error) {
	if !p.CanParse(path) {
		return nil, &ParseError{
			FilePath: path,
			Message:  "not a .slnf file",
		}
	}

	filter, err := p.ReadFilter(path)
	if err != nil {
		return nil, err
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	if _, err := os.Stat(filter.SolutionPath); err != nil {
		if os.IsNotExist(err) {
			return nil, &ParseError{
				FilePath: absPath,
				Message:  fmt.Sprintf("parent solution file not found: %s", filter.SolutionPath),
			}
		}
		return nil, &ParseError{
			FilePath: absPath,
			Message:  fmt.Sprintf("cannot access parent solution: %v", err),
		}
	}

	var parentParser Parser
	switch GetSolutionFormat(filter.SolutionPath) {
	case FormatSln:
		parentParser = &SlnParser{opts: p.opts}
	case FormatSlnx:
		parentParser = &SlnxParser{opts: p.opts}
	default:
		return nil, &ParseError{
			FilePath: absPath,
			Message:  fmt.Sprintf("unsupported parent solution format: %s", filepath.Ext(filter.SolutionPath)),
		}
	}

	parentSolution, err := parentParser.Parse(filter.SolutionPath)
	if err != nil {
		return nil, &ParseError{
			FilePath: absPath,
			Message:  fmt.Sprintf("failed to parse parent solution: %v", err),
		}
	}

	// Filter paths are relative to the parent solution, like project paths.
	included := make(map[string]bool, len(filter.Projects))
	for _, projPath := range filter.Projects {
		included[strings.ToLower(projPath)] = true
	}

	filtered := parentSolution.Clone()
	filtered.FilePath = absPath
	all := filtered.Projects
	filtered.Projects = make([]*Project, 0, len(filter.Projects))
	kept := make(map[uuid.UUID]bool, len(filter.Projects))
	for _, project := range all {
		if included[strings.ToLower(project.Path)] {
			filtered.Projects = append(filtered.Projects, project)
			kept[project.ID] = true
		}
	}

	for _, project := range filtered.Projects {
		deps := project.Dependencies[:0]
		for _, dep := range project.Dependencies {
			if kept[dep] {
				deps = append(deps, dep)
			}
		}
		project.Dependencies = deps
	}

	return filtered, nil
}
