package solution

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/willibrandon/gosln/observability"
)

var (
	formatVersionRegex = regexp.MustCompile(`^Microsoft Visual Studio Solution File, Format Version (\S+)`)
	vsVersionRegex     = regexp.MustCompile(`^VisualStudioVersion\s*=\s*(\S+)`)
	minVSVersionRegex  = regexp.MustCompile(`^MinimumVisualStudioVersion\s*=\s*(\S+)`)

	// Project("{TypeGUID}") = "Name", "Path", "{GUID}"
	projectRegex = regexp.MustCompile(
		`(?i)^Project\("\{([A-F0-9-]+)\}"\)\s*=\s*"([^"]*)",\s*"([^"]*)",\s*"\{([A-F0-9-]+)\}"`,
	)

	// GlobalSection(Name) = preSolution / ProjectSection(Name) = postProject
	sectionRegex = regexp.MustCompile(`^(Global|Project)Section\(([^)]+)\)`)

	// {GUID} = {GUID}
	guidPairRegex = regexp.MustCompile(`(?i)^\{([A-F0-9-]+)\}\s*=\s*\{([A-F0-9-]+)\}`)
)

// SlnParser parses text-based .sln files
type SlnParser struct {
	opts options
}

// NewSlnParser creates a new .sln file parser
func NewSlnParser(opts ...Option) *SlnParser {
	return &SlnParser{opts: newOptions(opts)}
}

// CanParse checks if this parser supports the given file
func (p *SlnParser) CanParse(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".sln"
}

// Parse reads and parses a .sln file
func (p *SlnParser) Parse(path string) (*Solution, error) {
	if !p.CanParse(path) {
		return nil, &ParseError{
			FilePath: path,
			Message:  "not a .sln file",
		}
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, &ParseError{
			FilePath: path,
			Message:  fmt.Sprintf("cannot open file: %v", err),
		}
	}
	defer func() { _ = file.Close() }()

	return p.ParseReader(file, path)
}

// configLine is one ProjectConfigurationPlatforms entry, kept until every
// project and solution configuration is known.
type configLine struct {
	name  string
	value string
}

// slnReadState tracks where the reader is inside the file.
type slnReadState struct {
	sol            *Solution
	currentProject *Project
	currentFolder  *SolutionFolder
	section        string
	inGlobal       bool
	configLines    []configLine
	nested         [][2]uuid.UUID
}

// ParseReader parses .sln content. path is recorded as the solution location
// and used in errors.
func (p *SlnParser) ParseReader(r io.Reader, path string) (*Solution, error) {
	sol := NewSolution(path)
	sol.ProjectTypes = append(sol.ProjectTypes, p.opts.projectTypes...)
	logger := p.opts.logger.ForContext("Solution", sol.FilePath)

	st := &slnReadState{sol: sol}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNum := 0
	sawEndGlobal := false

	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		trimmedLine := strings.TrimSpace(line)
		if lineNum == 1 {
			trimmedLine = strings.TrimPrefix(trimmedLine, "\ufeff")
		}

		// Skip empty lines and comments
		if trimmedLine == "" || strings.HasPrefix(trimmedLine, "#") {
			continue
		}

		if st.section != "" {
			if trimmedLine == "EndGlobalSection" || trimmedLine == "EndProjectSection" {
				st.section = ""
				continue
			}
			st.sectionLine(trimmedLine)
			continue
		}

		if matches := sectionRegex.FindStringSubmatch(trimmedLine); matches != nil {
			if (matches[1] == "Global") != st.inGlobal {
				return nil, &ParseError{
					FilePath: sol.FilePath,
					Line:     lineNum,
					Message:  fmt.Sprintf("%sSection outside of its block", matches[1]),
				}
			}
			st.section = matches[1] + ":" + strings.TrimSpace(matches[2])
			continue
		}

		if matches := formatVersionRegex.FindStringSubmatch(trimmedLine); matches != nil {
			sol.FormatVersion = matches[1]
			continue
		}
		if matches := vsVersionRegex.FindStringSubmatch(trimmedLine); matches != nil {
			sol.VisualStudioVersion = matches[1]
			continue
		}
		if matches := minVSVersionRegex.FindStringSubmatch(trimmedLine); matches != nil {
			sol.MinimumVisualStudioVersion = matches[1]
			continue
		}

		if matches := projectRegex.FindStringSubmatch(trimmedLine); matches != nil {
			if st.currentProject != nil || st.currentFolder != nil {
				return nil, &ParseError{
					FilePath: sol.FilePath,
					Line:     lineNum,
					Message:  "nested Project: missing EndProject",
				}
			}
			st.beginProject(matches[1], matches[2], matches[3], matches[4])
			continue
		}

		switch trimmedLine {
		case "EndProject":
			st.endProject()
		case "Global":
			st.inGlobal = true
		case "EndGlobal":
			st.inGlobal = false
			sawEndGlobal = true
		default:
			logger.Verbose("Skipping unrecognized line {Line}: {Text}", lineNum, trimmedLine)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, &ParseError{
			FilePath: sol.FilePath,
			Message:  fmt.Sprintf("error reading file: %v", err),
		}
	}

	// Check if we have an unclosed project
	if st.currentProject != nil || st.currentFolder != nil {
		return nil, &ParseError{
			FilePath: sol.FilePath,
			Line:     lineNum,
			Message:  "unexpected end of file: missing EndProject",
		}
	}
	if st.inGlobal || st.section != "" {
		return nil, &ParseError{
			FilePath: sol.FilePath,
			Line:     lineNum,
			Message:  "unexpected end of file: missing EndGlobal",
		}
	}
	if sol.FormatVersion == "" {
		return nil, &ParseError{
			FilePath: sol.FilePath,
			Line:     1,
			Message:  "missing solution file header",
		}
	}

	st.resolveNesting()
	if sawEndGlobal {
		p.distill(st, logger)
	}

	return sol, nil
}

func (st *slnReadState) beginProject(typeGUID, name, projectPath, id string) {
	typeID, _ := ParseGUID(typeGUID)
	projectID, _ := ParseGUID(id)

	if typeID == ProjectTypeIDSolutionFolder {
		st.currentFolder = &SolutionFolder{
			Name:  name,
			ID:    projectID,
			Items: []string{},
		}
		return
	}

	st.currentProject = &Project{
		Name:   name,
		Path:   NormalizePath(projectPath),
		ID:     projectID,
		TypeID: typeID,
	}
}

func (st *slnReadState) endProject() {
	if st.currentProject != nil {
		st.sol.Projects = append(st.sol.Projects, st.currentProject)
		st.currentProject = nil
	} else if st.currentFolder != nil {
		st.sol.SolutionFolders = append(st.sol.SolutionFolders, st.currentFolder)
		st.currentFolder = nil
	}
}

func (st *slnReadState) sectionLine(line string) {
	name, value, _ := strings.Cut(line, "=")
	name = strings.TrimSpace(name)
	value = strings.TrimSpace(value)

	switch st.section {
	case "Project:SolutionItems":
		if st.currentFolder != nil && name != "" {
			st.currentFolder.Items = append(st.currentFolder.Items, NormalizePath(name))
		}
	case "Project:ProjectDependencies":
		if st.currentProject == nil {
			return
		}
		if id, ok := ParseGUID(name); ok {
			st.currentProject.Dependencies = append(st.currentProject.Dependencies, id)
		}
	case "Global:SolutionConfigurationPlatforms":
		st.sol.AddSolutionConfiguration(name)
	case "Global:ProjectConfigurationPlatforms":
		st.configLines = append(st.configLines, configLine{name: name, value: value})
	case "Global:NestedProjects":
		if matches := guidPairRegex.FindStringSubmatch(line); matches != nil {
			child, _ := ParseGUID(matches[1])
			parent, _ := ParseGUID(matches[2])
			st.nested = append(st.nested, [2]uuid.UUID{child, parent})
		}
	case "Global:SolutionProperties":
		st.sol.SetProperty(PropertySetSolution, name, value)
	case "Global:ExtensibilityGlobals":
		st.sol.SetProperty(PropertySetExtensibility, name, value)
	}
}

// resolveNesting applies NestedProjects once all projects and folders are known.
func (st *slnReadState) resolveNesting() {
	for _, pair := range st.nested {
		child, parent := pair[0], pair[1]
		if project, ok := st.sol.GetProjectByID(child); ok {
			project.ParentFolderID = parent
			continue
		}
		if folder, ok := st.sol.GetFolderByID(child); ok {
			folder.ParentFolderID = parent
		}
	}
}

// distill turns the collected configuration lines into project rules.
func (p *SlnParser) distill(st *slnReadState, logger observability.Logger) {
	cm := NewSolutionConfigurationMap(st.sol, nil, logger)
	for _, line := range st.configLines {
		cm.ParseProjectConfigLine(line.name, line.value)
	}
	distilled := cm.DistillProjectConfigurationsContext(p.opts.ctx)
	logger.Debug("Read {ProjectCount} projects, distilled configurations of {DistilledCount}", len(st.sol.Projects), distilled)
}
