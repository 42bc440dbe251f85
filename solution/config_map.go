package solution

import (
	"context"
	"strings"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/willibrandon/gosln/observability"
)

// splitCacheSize bounds the number of distinct "BuildType|Platform" strings
// remembered by a configuration map.
const splitCacheSize = 4096

// Legacy configuration line suffixes.
const (
	activeCfgSuffix = ".ActiveCfg"
	buildSuffix     = ".Build.0"
	deploySuffix    = ".Deploy.0"
)

type splitConfiguration struct {
	buildType string
	platform  string
	ok        bool
}

// MatrixAnnotation names one matrix cell for the legacy writer.
type MatrixAnnotation struct {
	// FullConfiguration is the solution configuration, "BuildType|Platform"
	FullConfiguration string

	// Index is the cell position
	Index SolutionConfigIndex
}

// SolutionConfigurationMap owns the mapping between solution build type and
// platform names and dense matrix indices for one solution, and collects the
// configuration matrices observed while reading a legacy solution file.
//
// The shape is fixed at construction; a map is not safe for concurrent use.
type SolutionConfigurationMap struct {
	solution       *Solution
	table          *ProjectTypeTable
	logger         observability.Logger
	buildTypes     []string
	platforms      []string
	buildTypeIndex map[string]int
	platformIndex  map[string]int
	splitCache     *lru.Cache[string, splitConfiguration]
	projectsByID   map[uuid.UUID]*Project
	observed       map[uuid.UUID]*SolutionToProjectMappings
}

// NewSolutionConfigurationMap indexes the solution's build types and
// platforms. A nil table uses the solution's own project types.
func NewSolutionConfigurationMap(sol *Solution, table *ProjectTypeTable, logger observability.Logger) *SolutionConfigurationMap {
	if logger == nil {
		logger = observability.NewNullLogger()
	}
	if table == nil {
		table = sol.ProjectTypeTable(logger)
	}

	// lru.New only fails for a non-positive size.
	cache, _ := lru.New[string, splitConfiguration](splitCacheSize)

	cm := &SolutionConfigurationMap{
		solution:       sol,
		table:          table,
		logger:         logger,
		buildTypeIndex: make(map[string]int, len(sol.BuildTypes)),
		platformIndex:  make(map[string]int, len(sol.Platforms)),
		splitCache:     cache,
		projectsByID:   make(map[uuid.UUID]*Project, len(sol.Projects)),
		observed:       make(map[uuid.UUID]*SolutionToProjectMappings),
	}

	for _, buildType := range sol.BuildTypes {
		if _, exists := cm.buildTypeIndex[buildType]; exists {
			continue
		}
		cm.buildTypeIndex[buildType] = len(cm.buildTypes)
		cm.buildTypes = append(cm.buildTypes, buildType)
	}
	for _, platform := range sol.Platforms {
		key := platformKey(platform)
		if _, exists := cm.platformIndex[key]; exists {
			continue
		}
		cm.platformIndex[key] = len(cm.platforms)
		cm.platforms = append(cm.platforms, platform)
	}
	for _, project := range sol.Projects {
		cm.projectsByID[project.ID] = project
	}

	return cm
}

// ProjectTypes returns the table used to resolve project rules.
func (cm *SolutionConfigurationMap) ProjectTypes() *ProjectTypeTable {
	return cm.table
}

// BuildTypesCount returns the number of solution build types.
func (cm *SolutionConfigurationMap) BuildTypesCount() int {
	return len(cm.buildTypes)
}

// PlatformsCount returns the number of solution platforms.
func (cm *SolutionConfigurationMap) PlatformsCount() int {
	return len(cm.platforms)
}

// MatrixSize returns the number of cells in every project matrix.
func (cm *SolutionConfigurationMap) MatrixSize() int {
	return len(cm.buildTypes) * len(cm.platforms)
}

// BuildTypes returns the indexed build type names.
func (cm *SolutionConfigurationMap) BuildTypes() []string {
	return append([]string(nil), cm.buildTypes...)
}

// Platforms returns the indexed platform names.
func (cm *SolutionConfigurationMap) Platforms() []string {
	return append([]string(nil), cm.platforms...)
}

// BuildTypeIndex looks up a build type. Build types are not canonicalized.
func (cm *SolutionConfigurationMap) BuildTypeIndex(buildType string) (int, bool) {
	i, ok := cm.buildTypeIndex[buildType]
	return i, ok
}

// PlatformIndex looks up a platform after canonicalization.
func (cm *SolutionConfigurationMap) PlatformIndex(platform string) (int, bool) {
	i, ok := cm.platformIndex[platformKey(platform)]
	return i, ok
}

// IndexOf returns the matrix position of a solution configuration. Both
// halves must be known.
func (cm *SolutionConfigurationMap) IndexOf(buildType, platform string) (SolutionConfigIndex, bool) {
	bt, ok := cm.BuildTypeIndex(buildType)
	if !ok {
		return 0, false
	}
	pl, ok := cm.PlatformIndex(platform)
	if !ok {
		return 0, false
	}
	return cm.index(bt, pl), true
}

// Configuration returns the solution build type and platform at index.
func (cm *SolutionConfigurationMap) Configuration(index SolutionConfigIndex) (buildType, platform string) {
	if index < 0 || int(index) >= cm.MatrixSize() {
		panic("solution: configuration index out of range")
	}
	n := len(cm.platforms)
	return cm.buildTypes[int(index)/n], cm.platforms[int(index)%n]
}

func (cm *SolutionConfigurationMap) index(bt, pl int) SolutionConfigIndex {
	return SolutionConfigIndex(bt*len(cm.platforms) + pl)
}

// TrySplitFullConfigurationCached splits "BuildType|Platform", remembering
// the result keyed by the original string. Legacy files repeat the same few
// configuration strings on every configuration line.
func (cm *SolutionConfigurationMap) TrySplitFullConfigurationCached(fullConfiguration string) (buildType, platform string, ok bool) {
	if cached, hit := cm.splitCache.Get(fullConfiguration); hit {
		observability.ConfigSplitCacheTotal.WithLabelValues("hit").Inc()
		return cached.buildType, cached.platform, cached.ok
	}
	observability.ConfigSplitCacheTotal.WithLabelValues("miss").Inc()

	buildType, platform, ok = SplitFullConfiguration(fullConfiguration)
	cm.splitCache.Add(fullConfiguration, splitConfiguration{buildType: buildType, platform: platform, ok: ok})
	return buildType, platform, ok
}

// CreateMatrixAnnotation lists every cell with its solution configuration
// name, build types first then platforms.
func (cm *SolutionConfigurationMap) CreateMatrixAnnotation() []MatrixAnnotation {
	annotations := make([]MatrixAnnotation, 0, cm.MatrixSize())
	for bt, buildType := range cm.buildTypes {
		for pl, platform := range cm.platforms {
			annotations = append(annotations, MatrixAnnotation{
				FullConfiguration: buildType + "|" + platform,
				Index:             cm.index(bt, pl),
			})
		}
	}
	return annotations
}

// ExpectedMappings builds the matrix the project's type and solution
// defaults produce, without the project's own rules.
func (cm *SolutionConfigurationMap) ExpectedMappings(project *Project) *SolutionToProjectMappings {
	return newSolutionToProjectMappings(cm, cm.table.GetProjectConfigurationRules(project, true), false)
}

// GetProjectConfigMap expands the project's full rule chain into a matrix.
// supportsConfigurations is false for project types that never appear in
// configuration sections.
func (cm *SolutionConfigurationMap) GetProjectConfigMap(project *Project) (mappings *SolutionToProjectMappings, supportsConfigurations bool) {
	supportsConfigurations = true
	if pt, _, ok := cm.table.ResolveProjectType(project); ok {
		supportsConfigurations = cm.table.IsBuildable(pt)
	}
	mappings = newSolutionToProjectMappings(cm, cm.table.GetProjectConfigurationRules(project, false), false)
	return mappings, supportsConfigurations
}

// ParseProjectConfigLine applies one legacy configuration line,
// "{ProjectId}.BuildType|Platform.ActiveCfg = BuildType|Platform" (or
// ".Build.0" / ".Deploy.0"), to the project's observed matrix. Lines naming
// unknown projects or configurations are ignored; it reports whether the
// line was applied.
func (cm *SolutionConfigurationMap) ParseProjectConfigLine(name, value string) bool {
	applied := cm.parseProjectConfigLine(strings.TrimSpace(name), strings.TrimSpace(value))
	if applied {
		observability.ConfigLinesTotal.WithLabelValues("applied").Inc()
	} else {
		observability.ConfigLinesTotal.WithLabelValues("ignored").Inc()
		cm.logger.Verbose("Ignoring configuration line {Name} = {Value}", name, value)
	}
	return applied
}

func (cm *SolutionConfigurationMap) parseProjectConfigLine(name, value string) bool {
	idPart, rest, found := strings.Cut(name, ".")
	if !found {
		return false
	}
	id, ok := ParseGUID(idPart)
	if !ok {
		return false
	}
	project, ok := cm.projectsByID[id]
	if !ok {
		return false
	}

	var solutionConfiguration, suffix string
	switch {
	case strings.HasSuffix(rest, activeCfgSuffix):
		suffix = activeCfgSuffix
	case strings.HasSuffix(rest, buildSuffix):
		suffix = buildSuffix
	case strings.HasSuffix(rest, deploySuffix):
		suffix = deploySuffix
	default:
		return false
	}
	solutionConfiguration = strings.TrimSuffix(rest, suffix)

	buildType, platform, ok := cm.TrySplitFullConfigurationCached(solutionConfiguration)
	if !ok {
		return false
	}
	index, ok := cm.IndexOf(buildType, platform)
	if !ok {
		return false
	}

	matrix := cm.observedMappings(project)
	cell := matrix.At(index)
	switch suffix {
	case activeCfgSuffix:
		projectBuildType, projectPlatform, ok := cm.TrySplitFullConfigurationCached(value)
		if !ok {
			return false
		}
		cell.BuildType = projectBuildType
		cell.Platform = projectPlatform
	case buildSuffix:
		cell.Build = true
	case deploySuffix:
		cell.Deploy = true
	}
	matrix.Set(index, cell)
	return true
}

// observedMappings returns the project's observed matrix, seeding it with
// the default project configurations and Build/Deploy cleared.
func (cm *SolutionConfigurationMap) observedMappings(project *Project) *SolutionToProjectMappings {
	if matrix, ok := cm.observed[project.ID]; ok {
		return matrix
	}
	matrix := newSolutionToProjectMappings(cm, cm.table.GetProjectConfigurationRules(project, true), true)
	cm.observed[project.ID] = matrix
	return matrix
}

// ObservedMappings returns the matrix collected from legacy lines for the project.
func (cm *SolutionConfigurationMap) ObservedMappings(project *Project) (*SolutionToProjectMappings, bool) {
	matrix, ok := cm.observed[project.ID]
	return matrix, ok
}

// DistillProjectConfigurations replaces the configuration rules of every
// project that received legacy configuration lines with the smallest rule
// set that reproduces what was observed. Projects without lines keep their
// rules. It returns the number of projects distilled.
func (cm *SolutionConfigurationMap) DistillProjectConfigurations() int {
	return cm.DistillProjectConfigurationsContext(context.Background())
}

// DistillProjectConfigurationsContext is DistillProjectConfigurations with
// one "solution.distill" span per project, parented on ctx.
func (cm *SolutionConfigurationMap) DistillProjectConfigurationsContext(ctx context.Context) int {
	distilled := 0
	for _, project := range cm.solution.Projects {
		observed, ok := cm.observed[project.ID]
		if !ok {
			continue
		}
		project.ConfigurationRules = DistillContext(ctx, project.Name, cm.ExpectedMappings(project), observed)
		distilled++
		if len(project.ConfigurationRules) > 0 {
			cm.logger.Debug("Distilled {RuleCount} configuration rules for {Project}", len(project.ConfigurationRules), project.Name)
		}
	}
	return distilled
}
