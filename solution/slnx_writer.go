package solution

import (
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// SlnxWriter writes XML-based .slnx files
type SlnxWriter struct {
	opts options
}

// NewSlnxWriter creates a new .slnx file writer
func NewSlnxWriter(opts ...Option) *SlnxWriter {
	return &SlnxWriter{opts: newOptions(opts)}
}

// CanWrite checks if this writer produces the given file
func (w *SlnxWriter) CanWrite(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".slnx"
}

// Write renders the solution. Projects keep their own rules; nothing is
// expanded into a matrix.
func (w *SlnxWriter) Write(sol *Solution, out io.Writer) error {
	logger := w.opts.logger.ForContext("Solution", sol.FilePath)
	table := sol.ProjectTypeTable(logger)

	doc := slnxDocument{
		Description: sol.Description,
		Configurations: &slnxConfigurations{
			BuildTypes: make([]slnxNamed, 0, len(sol.BuildTypes)),
			Platforms:  make([]slnxNamed, 0, len(sol.Platforms)),
		},
	}
	for _, bt := range sol.BuildTypes {
		doc.Configurations.BuildTypes = append(doc.Configurations.BuildTypes, slnxNamed{Name: bt})
	}
	for _, pl := range sol.Platforms {
		doc.Configurations.Platforms = append(doc.Configurations.Platforms, slnxNamed{Name: pl})
	}
	for _, pt := range sol.ProjectTypes {
		doc.Configurations.ProjectTypes = append(doc.Configurations.ProjectTypes, projectTypeElement(pt))
	}

	folders := make(map[uuid.UUID]int, len(sol.SolutionFolders))
	for _, folder := range sol.SolutionFolders {
		element := slnxFolder{Name: sol.FolderPath(folder)}
		for _, item := range folder.Items {
			element.Files = append(element.Files, slnxFile{Path: NormalizePath(item)})
		}
		folders[folder.ID] = len(doc.Folders)
		doc.Folders = append(doc.Folders, element)
	}

	for _, project := range sol.Projects {
		element := w.projectElement(sol, table, project)
		if i, ok := folders[project.ParentFolderID]; ok && project.ParentFolderID != uuid.Nil {
			doc.Folders[i].Projects = append(doc.Folders[i].Projects, element)
			continue
		}
		doc.Projects = append(doc.Projects, element)
	}

	for _, ps := range sol.Properties {
		element := slnxProperties{Name: ps.Name}
		for _, p := range ps.Properties {
			element.Properties = append(element.Properties, slnxProperty{Name: p.Name, Value: p.Value})
		}
		doc.Properties = append(doc.Properties, element)
	}

	encoder := xml.NewEncoder(out)
	encoder.Indent("", "  ")
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode solution: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("failed to encode solution: %w", err)
	}
	if _, err := io.WriteString(out, "\n"); err != nil {
		return fmt.Errorf("failed to write solution: %w", err)
	}
	return nil
}

// projectElement omits every attribute a reader would derive on its own:
// Type when the extension implies it, Id when it equals the path-derived
// id, DisplayName when it equals the file name.
func (w *SlnxWriter) projectElement(sol *Solution, table *ProjectTypeTable, project *Project) slnxProject {
	element := slnxProject{Path: NormalizePath(project.Path)}

	pt, implied, ok := table.ResolveProjectType(project)
	switch {
	case ok && implied:
	case ok && pt.Name != "":
		element.Type = pt.Name
	case project.Type != "":
		element.Type = project.Type
	case project.TypeID != uuid.Nil:
		element.Type = FormatGUID(project.TypeID)
	}

	if project.ID != uuid.Nil && project.ID != DefaultProjectID(project.Path) {
		element.ID = FormatGUID(project.ID)
	}
	base := path.Base(element.Path)
	if project.Name != "" && project.Name != strings.TrimSuffix(base, path.Ext(base)) {
		element.DisplayName = project.Name
	}

	for _, depID := range project.Dependencies {
		dep, ok := sol.GetProjectByID(depID)
		if !ok {
			continue
		}
		element.Dependencies = append(element.Dependencies, slnxDependency{Project: NormalizePath(dep.Path)})
	}

	element.Rules = ruleElements(project.ConfigurationRules)
	return element
}

func projectTypeElement(pt ProjectType) slnxProjectType {
	element := slnxProjectType{
		Name:      pt.Name,
		Extension: pt.Extension,
		BasedOn:   pt.BasedOn,
		Rules:     ruleElements(pt.ConfigurationRules),
	}
	if pt.ProjectTypeID != uuid.Nil {
		element.TypeID = FormatGUID(pt.ProjectTypeID)
	}
	if pt.NotBuildable {
		element.IsBuildable = "false"
	}
	return element
}

// ruleElements renders rules in priority order. Build and Deploy rules that
// resolve to True carry no Project attribute.
func ruleElements(rules []ConfigurationRule) []slnxRule {
	if len(rules) == 0 {
		return nil
	}
	elements := make([]slnxRule, 0, len(rules))
	for _, rule := range rules {
		element := slnxRule{XMLName: xml.Name{Local: rule.Dimension.String()}}
		if !rule.IsWildcard() {
			element.Solution = rule.SolutionConfiguration()
		}

		value := rule.ProjectValue
		if rule.Dimension == DimensionBuild || rule.Dimension == DimensionDeploy {
			if b, ok := ParseBoolValue(value); ok && b {
				elements = append(elements, element)
				continue
			}
		}
		element.Project = &value
		elements = append(elements, element)
	}
	return elements
}
