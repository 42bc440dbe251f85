package solution

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/willibrandon/gosln/observability"
)

// SlnxParser parses XML-based .slnx files
type SlnxParser struct {
	opts options
}

// NewSlnxParser creates a new .slnx file parser
func NewSlnxParser(opts ...Option) *SlnxParser {
	return &SlnxParser{opts: newOptions(opts)}
}

// CanParse checks if this parser supports the given file
func (p *SlnxParser) CanParse(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".slnx"
}

// slnxDocument represents the root element of a .slnx file
type slnxDocument struct {
	XMLName        xml.Name            `xml:"Solution"`
	Description    string              `xml:"Description,attr,omitempty"`
	Configurations *slnxConfigurations `xml:"Configurations,omitempty"`
	Folders        []slnxFolder        `xml:"Folder"`
	Projects       []slnxProject       `xml:"Project"`
	Properties     []slnxProperties    `xml:"Properties"`
}

// slnxConfigurations declares solution build types, platforms and project types
type slnxConfigurations struct {
	BuildTypes   []slnxNamed       `xml:"BuildType"`
	Platforms    []slnxNamed       `xml:"Platform"`
	ProjectTypes []slnxProjectType `xml:"ProjectType"`
}

type slnxNamed struct {
	Name string `xml:"Name,attr"`
}

// slnxProjectType is a solution-local project type definition
type slnxProjectType struct {
	TypeID      string     `xml:"TypeId,attr,omitempty"`
	Name        string     `xml:"Name,attr,omitempty"`
	Extension   string     `xml:"Extension,attr,omitempty"`
	BasedOn     string     `xml:"BasedOn,attr,omitempty"`
	IsBuildable string     `xml:"IsBuildable,attr,omitempty"`
	Rules       []slnxRule `xml:",any"`
}

// slnxFolder represents a folder element. Name is normally a full path
// ("/src/lib/"); nested Folder elements are accepted too.
type slnxFolder struct {
	Name     string        `xml:"Name,attr"`
	Files    []slnxFile    `xml:"File"`
	Projects []slnxProject `xml:"Project"`
	Folders  []slnxFolder  `xml:"Folder"`
}

// slnxProject represents a project reference
type slnxProject struct {
	Path         string           `xml:"Path,attr"`
	Type         string           `xml:"Type,attr,omitempty"`
	ID           string           `xml:"Id,attr,omitempty"`
	DisplayName  string           `xml:"DisplayName,attr,omitempty"`
	Dependencies []slnxDependency `xml:"BuildDependency"`
	Rules        []slnxRule       `xml:",any"`
}

type slnxDependency struct {
	Project string `xml:"Project,attr"`
}

// slnxRule is one configuration rule element: BuildType, Platform, Build or
// Deploy. Element order is rule priority.
type slnxRule struct {
	XMLName  xml.Name
	Solution string  `xml:"Solution,attr,omitempty"`
	Project  *string `xml:"Project,attr"`
}

// slnxFile represents a file reference in a solution folder
type slnxFile struct {
	Path string `xml:"Path,attr"`
}

// slnxProperties represents a named property group
type slnxProperties struct {
	Name       string         `xml:"Name,attr,omitempty"`
	Properties []slnxProperty `xml:"Property"`
}

// slnxProperty represents a single property
type slnxProperty struct {
	Name  string `xml:"Name,attr"`
	Value string `xml:"Value,attr"`
}

// Parse reads and parses a .slnx file
func (p *SlnxParser) Parse(path string) (*Solution, error) {
	if !p.CanParse(path) {
		return nil, &ParseError{
			FilePath: path,
			Message:  "not a .slnx file",
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

// ParseReader parses .slnx content. path is recorded as the solution location.
func (p *SlnxParser) ParseReader(r io.Reader, path string) (*Solution, error) {
	sol := NewSolution(path)
	sol.FormatVersion = DefaultFormatVersion
	logger := p.opts.logger.ForContext("Solution", sol.FilePath)

	decoder := xml.NewDecoder(r)
	var doc slnxDocument
	if err := decoder.Decode(&doc); err != nil {
		var syntaxErr *xml.SyntaxError
		if errors.As(err, &syntaxErr) {
			return nil, &ParseError{
				FilePath: sol.FilePath,
				Line:     syntaxErr.Line,
				Message:  fmt.Sprintf("XML syntax error: %v", syntaxErr.Msg),
			}
		}
		return nil, &ParseError{
			FilePath: sol.FilePath,
			Message:  fmt.Sprintf("failed to parse XML: %v", err),
		}
	}

	sol.Description = doc.Description
	sol.ProjectTypes = append(sol.ProjectTypes, p.opts.projectTypes...)

	if doc.Configurations != nil {
		for _, bt := range doc.Configurations.BuildTypes {
			sol.AddBuildType(strings.TrimSpace(bt.Name))
		}
		for _, pl := range doc.Configurations.Platforms {
			sol.AddPlatform(strings.TrimSpace(pl.Name))
		}
		for _, pt := range doc.Configurations.ProjectTypes {
			sol.ProjectTypes = append(sol.ProjectTypes, p.convertProjectType(pt, logger))
		}
	}

	// Without declarations a solution has the usual Debug/Release by Any CPU.
	if len(sol.BuildTypes) == 0 {
		sol.BuildTypes = append(sol.BuildTypes, DefaultBuildTypes...)
	}
	if len(sol.Platforms) == 0 {
		sol.Platforms = append(sol.Platforms, DefaultPlatforms...)
	}

	dependencies := make(map[*Project][]string)
	for _, proj := range doc.Projects {
		project := p.convertProject(sol, proj, nil, logger)
		dependencies[project] = dependencyPaths(proj)
	}
	for _, folder := range doc.Folders {
		p.processFolder(sol, folder, "/", dependencies, logger)
	}

	// BuildDependency names projects by path, so resolve once all are known.
	for _, project := range sol.Projects {
		for _, depPath := range dependencies[project] {
			dep, ok := sol.GetProjectByPath(depPath)
			if !ok {
				logger.Warn("Build dependency {Dependency} of {Project} is not in the solution", depPath, project.Name)
				continue
			}
			project.Dependencies = append(project.Dependencies, dep.ID)
		}
	}

	for _, props := range doc.Properties {
		for _, prop := range props.Properties {
			sol.SetProperty(props.Name, prop.Name, prop.Value)
			switch prop.Name {
			case "VisualStudioVersion":
				sol.VisualStudioVersion = prop.Value
			case "MinimumVisualStudioVersion":
				sol.MinimumVisualStudioVersion = prop.Value
			}
		}
	}

	return sol, nil
}

// processFolder adds a folder, its items and its projects. parentPath is the
// enclosing folder path for nested Folder elements.
func (p *SlnxParser) processFolder(sol *Solution, folder slnxFolder, parentPath string, dependencies map[*Project][]string, logger observability.Logger) {
	folderPath := folder.Name
	if !strings.HasPrefix(folderPath, "/") {
		folderPath = parentPath + folderPath
	}
	folderPath = "/" + strings.Trim(NormalizePath(folderPath), "/") + "/"

	solutionFolder := sol.EnsureFolder(folderPath)
	if solutionFolder == nil {
		logger.Warn("Ignoring folder with empty name")
		return
	}

	for _, file := range folder.Files {
		solutionFolder.Items = append(solutionFolder.Items, NormalizePath(file.Path))
	}
	for _, proj := range folder.Projects {
		project := p.convertProject(sol, proj, solutionFolder, logger)
		dependencies[project] = dependencyPaths(proj)
	}
	for _, nested := range folder.Folders {
		p.processFolder(sol, nested, folderPath, dependencies, logger)
	}
}

// convertProject adds a project to the solution
func (p *SlnxParser) convertProject(sol *Solution, proj slnxProject, folder *SolutionFolder, logger observability.Logger) *Project {
	project := &Project{
		Name: proj.DisplayName,
		Path: proj.Path,
		Type: strings.TrimSpace(proj.Type),
	}
	if id, ok := ParseGUID(proj.ID); ok {
		project.ID = id
	} else if proj.ID != "" {
		logger.Warn("Ignoring invalid project id {Id} on {Path}", proj.ID, proj.Path)
	}
	if typeID, ok := ParseGUID(project.Type); ok {
		project.TypeID = typeID
	}
	if folder != nil {
		project.ParentFolderID = folder.ID
	}
	project.ConfigurationRules = convertRules(proj.Rules, logger)

	return sol.AddProject(project)
}

func (p *SlnxParser) convertProjectType(pt slnxProjectType, logger observability.Logger) ProjectType {
	projectType := ProjectType{
		Name:               strings.TrimSpace(pt.Name),
		Extension:          NormalizeExtension(pt.Extension),
		BasedOn:            strings.TrimSpace(pt.BasedOn),
		ConfigurationRules: convertRules(pt.Rules, logger),
	}
	if id, ok := ParseGUID(pt.TypeID); ok {
		projectType.ProjectTypeID = id
	}
	if buildable, ok := ParseBoolValue(pt.IsBuildable); ok {
		projectType.NotBuildable = !buildable
	}
	return projectType
}

// convertRules turns rule elements into rules, preserving order. A Build or
// Deploy element without a Project attribute means True.
func convertRules(elements []slnxRule, logger observability.Logger) []ConfigurationRule {
	var rules []ConfigurationRule
	for _, el := range elements {
		dim, ok := ParseBuildDimension(el.XMLName.Local)
		if !ok {
			logger.Warn("Ignoring unknown element {Element}", el.XMLName.Local)
			continue
		}

		buildType, platform := ParseSolutionConfigurationPattern(el.Solution)
		var value string
		switch {
		case el.Project != nil:
			value = strings.TrimSpace(*el.Project)
		case dim == DimensionBuild || dim == DimensionDeploy:
			value = TrueValue
		}

		if dim == DimensionBuild || dim == DimensionDeploy {
			b, ok := ParseBoolValue(value)
			if !ok {
				logger.Warn("Ignoring {Dimension} rule with non-boolean value {Value}", dim.String(), value)
				continue
			}
			value = BoolValue(b)
		} else if value == "" {
			logger.Warn("Ignoring {Dimension} rule without a project value", dim.String())
			continue
		}

		rules = append(rules, NewConfigurationRule(dim, buildType, platform, value))
	}
	return rules
}

func dependencyPaths(proj slnxProject) []string {
	paths := make([]string, 0, len(proj.Dependencies))
	for _, dep := range proj.Dependencies {
		if dep.Project != "" {
			paths = append(paths, dep.Project)
		}
	}
	return paths
}
