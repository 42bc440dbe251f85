package solution

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Defaults written when a solution does not carry its own header values.
const (
	DefaultFormatVersion              = "12.00"
	DefaultVisualStudioVersion        = "17.0.31903.59"
	DefaultMinimumVisualStudioVersion = "10.0.40219.1"
)

// SlnWriter writes text-based .sln files
type SlnWriter struct {
	opts options
}

// NewSlnWriter creates a new .sln file writer
func NewSlnWriter(opts ...Option) *SlnWriter {
	return &SlnWriter{opts: newOptions(opts)}
}

// CanWrite checks if this writer produces the given file
func (w *SlnWriter) CanWrite(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".sln"
}

// slnFile prints tab-indented CRLF lines.
type slnFile struct {
	w      *bufio.Writer
	indent int
}

func (f *slnFile) println(format string, args ...any) {
	for i := 0; i < f.indent; i++ {
		_ = f.w.WriteByte('\t')
	}
	_, _ = fmt.Fprintf(f.w, format, args...)
	_, _ = f.w.WriteString("\r\n")
}

func (f *slnFile) scope(begin, end string, body func()) {
	f.println("%s", begin)
	f.indent++
	body()
	f.indent--
	f.println("%s", end)
}

// Write renders the solution. Configuration lines are expanded from every
// project's rules across the full build type by platform matrix.
func (w *SlnWriter) Write(sol *Solution, out io.Writer) error {
	logger := w.opts.logger.ForContext("Solution", sol.FilePath)
	table := sol.ProjectTypeTable(logger)
	cm := NewSolutionConfigurationMap(sol, table, logger)

	buf := bufio.NewWriter(out)
	f := &slnFile{w: buf}
	_, _ = buf.WriteString("\ufeff\r\n")

	w.writeHeader(f, sol)
	for _, project := range sol.Projects {
		w.writeProject(f, table, project)
	}
	for _, folder := range sol.SolutionFolders {
		w.writeFolder(f, folder)
	}

	f.scope("Global", "EndGlobal", func() {
		f.scope("GlobalSection(SolutionConfigurationPlatforms) = preSolution", "EndGlobalSection", func() {
			for _, annotation := range cm.CreateMatrixAnnotation() {
				f.println("%s = %s", annotation.FullConfiguration, annotation.FullConfiguration)
			}
		})

		w.writeProjectConfigurations(f, cm)

		f.scope("GlobalSection(SolutionProperties) = preSolution", "EndGlobalSection", func() {
			if _, ok := sol.GetProperty(PropertySetSolution, "HideSolutionNode"); !ok {
				f.println("HideSolutionNode = FALSE")
			}
			w.writeProperties(f, sol, PropertySetSolution)
		})

		w.writeNesting(f, sol)

		if sol.propertySet(PropertySetExtensibility) != nil {
			f.scope("GlobalSection(ExtensibilityGlobals) = postSolution", "EndGlobalSection", func() {
				w.writeProperties(f, sol, PropertySetExtensibility)
			})
		}
	})

	if err := buf.Flush(); err != nil {
		return fmt.Errorf("failed to write solution: %w", err)
	}
	return nil
}

func (w *SlnWriter) writeHeader(f *slnFile, sol *Solution) {
	formatVersion := sol.FormatVersion
	if formatVersion == "" {
		formatVersion = DefaultFormatVersion
	}
	vsVersion := sol.VisualStudioVersion
	if vsVersion == "" {
		vsVersion = DefaultVisualStudioVersion
	}
	minVersion := sol.MinimumVisualStudioVersion
	if minVersion == "" {
		minVersion = DefaultMinimumVisualStudioVersion
	}

	f.println("Microsoft Visual Studio Solution File, Format Version %s", formatVersion)
	major, _, _ := strings.Cut(vsVersion, ".")
	f.println("# Visual Studio Version %s", major)
	f.println("VisualStudioVersion = %s", vsVersion)
	f.println("MinimumVisualStudioVersion = %s", minVersion)
}

func (w *SlnWriter) writeProject(f *slnFile, table *ProjectTypeTable, project *Project) {
	typeID := project.TypeID
	if typeID == uuid.Nil {
		if pt, _, ok := table.ResolveProjectType(project); ok {
			typeID, _ = table.LegacyTypeID(pt)
		}
	}

	f.println(`Project("%s") = "%s", "%s", "%s"`,
		FormatGUID(typeID), project.Name, ToLegacyPath(project.Path), FormatGUID(project.ID))
	if len(project.Dependencies) > 0 {
		f.indent++
		f.scope("ProjectSection(ProjectDependencies) = postProject", "EndProjectSection", func() {
			for _, dep := range project.Dependencies {
				f.println("%s = %s", FormatGUID(dep), FormatGUID(dep))
			}
		})
		f.indent--
	}
	f.println("EndProject")
}

func (w *SlnWriter) writeFolder(f *slnFile, folder *SolutionFolder) {
	f.println(`Project("%s") = "%s", "%s", "%s"`,
		FormatGUID(ProjectTypeIDSolutionFolder), folder.Name, folder.Name, FormatGUID(folder.ID))
	if len(folder.Items) > 0 {
		f.indent++
		f.scope("ProjectSection(SolutionItems) = preProject", "EndProjectSection", func() {
			for _, item := range folder.Items {
				legacy := ToLegacyPath(item)
				f.println("%s = %s", legacy, legacy)
			}
		})
		f.indent--
	}
	f.println("EndProject")
}

func (w *SlnWriter) writeProjectConfigurations(f *slnFile, cm *SolutionConfigurationMap) {
	annotations := cm.CreateMatrixAnnotation()
	if len(annotations) == 0 || len(cm.solution.Projects) == 0 {
		return
	}

	f.scope("GlobalSection(ProjectConfigurationPlatforms) = postSolution", "EndGlobalSection", func() {
		for _, project := range cm.solution.Projects {
			mappings, supportsConfigurations := cm.GetProjectConfigMap(project)
			if !supportsConfigurations {
				continue
			}
			id := FormatGUID(project.ID)
			for _, annotation := range annotations {
				cell := mappings.At(annotation.Index)
				projectConfiguration := cell.FullConfiguration()
				f.println("%s.%s%s = %s", id, annotation.FullConfiguration, activeCfgSuffix, projectConfiguration)
				if cell.Build {
					f.println("%s.%s%s = %s", id, annotation.FullConfiguration, buildSuffix, projectConfiguration)
				}
				if cell.Deploy {
					f.println("%s.%s%s = %s", id, annotation.FullConfiguration, deploySuffix, projectConfiguration)
				}
			}
		}
	})
}

func (w *SlnWriter) writeProperties(f *slnFile, sol *Solution, set string) {
	ps := sol.propertySet(set)
	if ps == nil {
		return
	}
	for _, p := range ps.Properties {
		f.println("%s = %s", p.Name, p.Value)
	}
}

func (w *SlnWriter) writeNesting(f *slnFile, sol *Solution) {
	var pairs [][2]uuid.UUID
	for _, project := range sol.Projects {
		if project.ParentFolderID != uuid.Nil {
			pairs = append(pairs, [2]uuid.UUID{project.ID, project.ParentFolderID})
		}
	}
	for _, folder := range sol.SolutionFolders {
		if folder.ParentFolderID != uuid.Nil {
			pairs = append(pairs, [2]uuid.UUID{folder.ID, folder.ParentFolderID})
		}
	}
	if len(pairs) == 0 {
		return
	}

	f.scope("GlobalSection(NestedProjects) = preSolution", "EndGlobalSection", func() {
		for _, pair := range pairs {
			f.println("%s = %s", FormatGUID(pair[0]), FormatGUID(pair[1]))
		}
	})
}
