// Package solution models Visual Studio solution files (.sln, .slnx, .slnf)
// and reconciles per-project configuration matrices with the declarative
// configuration rules the XML format stores.
package solution

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/willibrandon/gosln/observability"
)

// Solution represents a parsed solution file (.sln, .slnx, or .slnf)
type Solution struct {
	// FilePath is the absolute path to the solution file
	FilePath string

	// SolutionDir is the directory containing the solution file
	SolutionDir string

	// FormatVersion is the solution file format version (e.g., "12.00" for VS 2013+)
	FormatVersion string

	// VisualStudioVersion is the Visual Studio version that created the file
	VisualStudioVersion string

	// MinimumVisualStudioVersion is the minimum VS version required
	MinimumVisualStudioVersion string

	// Description is the free-form description stored by .slnx files
	Description string

	// BuildTypes lists the solution build types (Debug, Release, ...) in declaration order
	BuildTypes []string

	// Platforms lists the solution platforms (Any CPU, x64, ...) in declaration order
	Platforms []string

	// ProjectTypes holds the solution-local project type definitions
	ProjectTypes []ProjectType

	// Projects contains all projects in the solution (excludes solution folders)
	Projects []*Project

	// SolutionFolders contains virtual folders for organizing projects
	SolutionFolders []*SolutionFolder

	// Properties holds named property groups (SolutionProperties,
	// ExtensibilityGlobals, or any <Properties> element of a .slnx file)
	Properties []PropertySet
}

// Solution configurations assumed by .slnx files that declare none.
var (
	DefaultBuildTypes = []string{"Debug", "Release"}
	DefaultPlatforms  = []string{PlatformAnyCPU}
)

// Property set names shared by both formats.
const (
	PropertySetSolution      = "SolutionProperties"
	PropertySetExtensibility = "ExtensibilityGlobals"
)

// PropertySet is a named, ordered group of name/value properties.
type PropertySet struct {
	Name       string
	Properties []Property
}

// Property is a single solution property.
type Property struct {
	Name  string
	Value string
}

// Project represents a project reference in a solution
type Project struct {
	// Name is the display name of the project
	Name string

	// Path is the file system path to the project file, normalized to forward slashes
	Path string

	// ID is the unique identifier for this project instance
	ID uuid.UUID

	// TypeID identifies the project type (C#, VB.NET, F#, etc.)
	TypeID uuid.UUID

	// Type is the project type alias or id as written in a .slnx file ("C#", "VC", ...)
	Type string

	// ParentFolderID is the ID of the containing solution folder (if any)
	ParentFolderID uuid.UUID

	// Dependencies lists the ids of projects that must build first
	Dependencies []uuid.UUID

	// ConfigurationRules are the project's own configuration rules, applied
	// on top of its project type's rules
	ConfigurationRules []ConfigurationRule
}

// SolutionFolder represents a virtual folder in the solution
type SolutionFolder struct {
	// Name is the display name of the folder
	Name string

	// ID is the unique identifier for this folder
	ID uuid.UUID

	// ParentFolderID is the ID of the parent folder (for nested folders)
	ParentFolderID uuid.UUID

	// Items contains file references in SolutionItems folders
	Items []string
}

// SolutionFilter represents a .slnf filter file
type SolutionFilter struct {
	// SolutionPath is the path to the parent .sln file
	SolutionPath string

	// Projects lists the project paths to include
	Projects []string
}

// ParseError represents an error during solution file parsing
type ParseError struct {
	// FilePath is the path to the file being parsed
	FilePath string

	// Line is the line number where the error occurred
	Line int

	// Column is the column number where the error occurred
	Column int

	// Message describes what went wrong
	Message string
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.Line > 0 && e.Column > 0 {
		return fmt.Sprintf("%s:%d:%d: %s", e.FilePath, e.Line, e.Column, e.Message)
	}
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.FilePath, e.Line, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.FilePath, e.Message)
}

// NewSolution creates an empty solution rooted at path.
func NewSolution(path string) *Solution {
	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}
	return &Solution{
		FilePath:        absPath,
		SolutionDir:     filepath.Dir(absPath),
		Projects:        []*Project{},
		SolutionFolders: []*SolutionFolder{},
	}
}

// AddBuildType declares a solution build type. Duplicates are ignored.
func (s *Solution) AddBuildType(buildType string) {
	if buildType == "" {
		return
	}
	for _, existing := range s.BuildTypes {
		if existing == buildType {
			return
		}
	}
	s.BuildTypes = append(s.BuildTypes, buildType)
}

// AddPlatform declares a solution platform. Platforms that canonicalize to an
// existing one ("AnyCPU" vs "Any CPU") are ignored.
func (s *Solution) AddPlatform(platform string) {
	if platform == "" {
		return
	}
	for _, existing := range s.Platforms {
		if PlatformsEqual(existing, platform) {
			return
		}
	}
	s.Platforms = append(s.Platforms, platform)
}

// AddSolutionConfiguration declares both halves of a "BuildType|Platform" string.
func (s *Solution) AddSolutionConfiguration(fullConfiguration string) bool {
	buildType, platform, ok := SplitFullConfiguration(fullConfiguration)
	if !ok {
		return false
	}
	s.AddBuildType(buildType)
	s.AddPlatform(platform)
	return true
}

// SetProperty sets a property, creating the set on first use.
func (s *Solution) SetProperty(set, name, value string) {
	if name == "" {
		return
	}
	ps := s.propertySet(set)
	if ps == nil {
		s.Properties = append(s.Properties, PropertySet{Name: set})
		ps = &s.Properties[len(s.Properties)-1]
	}
	for i := range ps.Properties {
		if strings.EqualFold(ps.Properties[i].Name, name) {
			ps.Properties[i].Value = value
			return
		}
	}
	ps.Properties = append(ps.Properties, Property{Name: name, Value: value})
}

// GetProperty looks up a property by set and name.
func (s *Solution) GetProperty(set, name string) (string, bool) {
	ps := s.propertySet(set)
	if ps == nil {
		return "", false
	}
	for _, p := range ps.Properties {
		if strings.EqualFold(p.Name, name) {
			return p.Value, true
		}
	}
	return "", false
}

func (s *Solution) propertySet(set string) *PropertySet {
	for i := range s.Properties {
		if strings.EqualFold(s.Properties[i].Name, set) {
			return &s.Properties[i]
		}
	}
	return nil
}

// SplitFullConfiguration splits "BuildType|Platform". Both halves must be non-empty.
func SplitFullConfiguration(fullConfiguration string) (buildType, platform string, ok bool) {
	buildType, platform, found := strings.Cut(fullConfiguration, "|")
	buildType = strings.TrimSpace(buildType)
	platform = strings.TrimSpace(platform)
	if !found || buildType == "" || platform == "" {
		return "", "", false
	}
	return buildType, platform, true
}

// ProjectTypeTable builds the solution-scoped project type table.
func (s *Solution) ProjectTypeTable(logger observability.Logger) *ProjectTypeTable {
	return NewProjectTypeTable(s.ProjectTypes, logger)
}

// ProjectConfigurations expands the project's rules over the solution's
// build types and platforms.
func (s *Solution) ProjectConfigurations(project *Project, logger observability.Logger) *SolutionToProjectMappings {
	mappings, _ := NewSolutionConfigurationMap(s, nil, logger).GetProjectConfigMap(project)
	return mappings
}

// AddProject appends a project, deriving its id from the path when unset.
func (s *Solution) AddProject(project *Project) *Project {
	project.Path = NormalizePath(project.Path)
	if project.ID == uuid.Nil {
		project.ID = DefaultProjectID(project.Path)
	}
	if project.Name == "" {
		project.Name = strings.TrimSuffix(path.Base(project.Path), path.Ext(project.Path))
	}
	s.Projects = append(s.Projects, project)
	return project
}

// GetProjectByID finds a project by its id
func (s *Solution) GetProjectByID(id uuid.UUID) (*Project, bool) {
	for _, project := range s.Projects {
		if project.ID == id {
			return project, true
		}
	}
	return nil, false
}

// GetFolderByID finds a solution folder by its id
func (s *Solution) GetFolderByID(id uuid.UUID) (*SolutionFolder, bool) {
	for _, folder := range s.SolutionFolders {
		if folder.ID == id {
			return folder, true
		}
	}
	return nil, false
}

// FolderPath returns the folder's path in the "/parent/child/" form used by .slnx files.
func (s *Solution) FolderPath(folder *SolutionFolder) string {
	segments := []string{folder.Name}
	seen := map[uuid.UUID]bool{folder.ID: true}
	for parentID := folder.ParentFolderID; parentID != uuid.Nil && !seen[parentID]; {
		parent, ok := s.GetFolderByID(parentID)
		if !ok {
			break
		}
		seen[parentID] = true
		segments = append([]string{parent.Name}, segments...)
		parentID = parent.ParentFolderID
	}
	return "/" + strings.Join(segments, "/") + "/"
}

// EnsureFolder returns the folder at folderPath ("/src/lib/"), creating it and
// any missing ancestors.
func (s *Solution) EnsureFolder(folderPath string) *SolutionFolder {
	var parent *SolutionFolder
	current := "/"
	for _, name := range strings.Split(strings.Trim(folderPath, "/"), "/") {
		if name == "" {
			continue
		}
		current += name + "/"
		folder := s.findFolder(parent, name)
		if folder == nil {
			folder = &SolutionFolder{
				Name:  name,
				ID:    DefaultFolderID(current),
				Items: []string{},
			}
			if parent != nil {
				folder.ParentFolderID = parent.ID
			}
			s.SolutionFolders = append(s.SolutionFolders, folder)
		}
		parent = folder
	}
	return parent
}

func (s *Solution) findFolder(parent *SolutionFolder, name string) *SolutionFolder {
	parentID := uuid.Nil
	if parent != nil {
		parentID = parent.ID
	}
	for _, folder := range s.SolutionFolders {
		if folder.ParentFolderID == parentID && strings.EqualFold(folder.Name, name) {
			return folder
		}
	}
	return nil
}

// IsNETProject returns true if this is a .NET project type
func (p *Project) IsNETProject() bool {
	switch p.TypeID {
	case ProjectTypeIDCSharp, ProjectTypeIDCSharpSDK,
		ProjectTypeIDVisualBasic, ProjectTypeIDVisualBasicSDK,
		ProjectTypeIDFSharp, ProjectTypeIDFSharpSDK:
		return true
	}
	return p.IsProjectFile()
}

// IsProjectFile returns true if the path looks like a .NET project file
func (p *Project) IsProjectFile() bool {
	ext := p.Extension()
	return ext == ".csproj" || ext == ".vbproj" || ext == ".fsproj"
}

// Extension returns the lower-case extension of the project file.
func (p *Project) Extension() string {
	return strings.ToLower(path.Ext(NormalizePath(p.Path)))
}

// GetAbsolutePath returns the absolute path to the project file
func (p *Project) GetAbsolutePath(solutionDir string) string {
	systemPath := ConvertToSystemPath(p.Path)
	if filepath.IsAbs(systemPath) {
		return systemPath
	}
	return filepath.Join(solutionDir, systemPath)
}

// GetProjects returns the absolute paths of all .NET projects in the solution
func (s *Solution) GetProjects() []string {
	paths := make([]string, 0, len(s.Projects))
	for _, project := range s.Projects {
		if project.IsNETProject() {
			paths = append(paths, project.GetAbsolutePath(s.SolutionDir))
		}
	}
	return paths
}

// GetProjectByName finds a project by its name
func (s *Solution) GetProjectByName(name string) (*Project, bool) {
	for _, project := range s.Projects {
		if strings.EqualFold(project.Name, name) {
			return project, true
		}
	}
	return nil, false
}

// GetProjectByPath finds a project by its path
func (s *Solution) GetProjectByPath(projectPath string) (*Project, bool) {
	searchPath := filepath.Clean(ConvertToSystemPath(projectPath))
	if !filepath.IsAbs(searchPath) {
		searchPath = filepath.Join(s.SolutionDir, searchPath)
	}

	for _, project := range s.Projects {
		if filepath.Clean(project.GetAbsolutePath(s.SolutionDir)) == searchPath {
			return project, true
		}
	}
	return nil, false
}

// Clone returns a deep copy of the solution.
func (s *Solution) Clone() *Solution {
	clone := *s
	clone.BuildTypes = append([]string(nil), s.BuildTypes...)
	clone.Platforms = append([]string(nil), s.Platforms...)
	clone.ProjectTypes = make([]ProjectType, len(s.ProjectTypes))
	for i, pt := range s.ProjectTypes {
		pt.ConfigurationRules = append([]ConfigurationRule(nil), pt.ConfigurationRules...)
		clone.ProjectTypes[i] = pt
	}
	clone.Projects = make([]*Project, len(s.Projects))
	for i, p := range s.Projects {
		project := *p
		project.Dependencies = append([]uuid.UUID(nil), p.Dependencies...)
		project.ConfigurationRules = append([]ConfigurationRule(nil), p.ConfigurationRules...)
		clone.Projects[i] = &project
	}
	clone.SolutionFolders = make([]*SolutionFolder, len(s.SolutionFolders))
	for i, f := range s.SolutionFolders {
		folder := *f
		folder.Items = append([]string(nil), f.Items...)
		clone.SolutionFolders[i] = &folder
	}
	clone.Properties = make([]PropertySet, len(s.Properties))
	for i, ps := range s.Properties {
		ps.Properties = append([]Property(nil), ps.Properties...)
		clone.Properties[i] = ps
	}
	return &clone
}

// Relocate returns a copy of the solution stored at path, with relative
// project and item paths rebased onto the new solution directory.
func (s *Solution) Relocate(path string) *Solution {
	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}
	clone := s.Clone()
	clone.FilePath = absPath
	clone.SolutionDir = filepath.Dir(absPath)

	for _, project := range clone.Projects {
		project.Path = Rebase(s.SolutionDir, clone.SolutionDir, project.Path)
	}
	for _, folder := range clone.SolutionFolders {
		for i, item := range folder.Items {
			folder.Items[i] = Rebase(s.SolutionDir, clone.SolutionDir, item)
		}
	}
	return clone
}
