package solution

import "fmt"

// ProjectConfigMapping is the project configuration one solution
// configuration maps to: one cell of a project's configuration matrix.
type ProjectConfigMapping struct {
	BuildType string
	Platform  string
	Build     bool
	Deploy    bool
}

// IsSame compares two cells. Platforms compare canonically, build types ordinally.
func (m ProjectConfigMapping) IsSame(other ProjectConfigMapping) bool {
	return m.BuildType == other.BuildType &&
		PlatformsEqual(m.Platform, other.Platform) &&
		m.Build == other.Build &&
		m.Deploy == other.Deploy
}

// FullConfiguration renders "BuildType|Platform".
func (m ProjectConfigMapping) FullConfiguration() string {
	return m.BuildType + "|" + m.Platform
}

// Value returns the cell's value for a dimension as a rule project value.
func (m ProjectConfigMapping) Value(dimension BuildDimension) string {
	switch dimension {
	case DimensionBuildType:
		return m.BuildType
	case DimensionPlatform:
		return m.Platform
	case DimensionBuild:
		return BoolValue(m.Build)
	case DimensionDeploy:
		return BoolValue(m.Deploy)
	default:
		panic(fmt.Sprintf("solution: unknown build dimension %d", int(dimension)))
	}
}

// dimensionValuesEqual compares two project values of a dimension.
func dimensionValuesEqual(dimension BuildDimension, a, b string) bool {
	switch dimension {
	case DimensionPlatform:
		return PlatformsEqual(a, b)
	case DimensionBuild, DimensionDeploy:
		x, okA := ParseBoolValue(a)
		y, okB := ParseBoolValue(b)
		return okA && okB && x == y
	default:
		return a == b
	}
}

// SolutionConfigIndex is a flat position in a configuration matrix:
// buildTypeIndex*PlatformsCount + platformIndex. It is only meaningful for
// the SolutionConfigurationMap that produced it.
type SolutionConfigIndex int

// Scope selects either every build type (or platform) or a single one.
type Scope struct {
	index    int
	specific bool
}

// AllScope selects every build type or platform.
func AllScope() Scope {
	return Scope{}
}

// ScopeAt selects the build type or platform at index.
func ScopeAt(index int) Scope {
	return Scope{index: index, specific: true}
}

// IsAll reports whether the scope covers everything.
func (s Scope) IsAll() bool {
	return !s.specific
}

// Index returns the selected index for a specific scope.
func (s Scope) Index() (int, bool) {
	return s.index, s.specific
}

// rangeOf returns the half-open index range the scope covers out of count.
func (s Scope) rangeOf(count int) (int, int) {
	if !s.specific {
		return 0, count
	}
	if s.index < 0 || s.index >= count {
		panic(fmt.Sprintf("solution: scope index %d out of range [0,%d)", s.index, count))
	}
	return s.index, s.index + 1
}

// ScopedRules is a rule set applied to a sub-range of a matrix.
type ScopedRules struct {
	BuildType Scope
	Platform  Scope
	Rules     []ConfigurationRule
}

// SolutionToProjectMappings is the configuration matrix of one project: one
// ProjectConfigMapping per solution configuration.
type SolutionToProjectMappings struct {
	configMap *SolutionConfigurationMap
	cells     []ProjectConfigMapping
}

// newSolutionToProjectMappings evaluates rules for every cell. When a
// dimension has no matching rule the cell takes the solution build type and
// platform, Build=true and Deploy=false. forceExclude clears Build and
// Deploy everywhere, giving a blank matrix for legacy lines to fill in.
func newSolutionToProjectMappings(configMap *SolutionConfigurationMap, rules ConfigurationRuleFollower, forceExclude bool) *SolutionToProjectMappings {
	m := &SolutionToProjectMappings{
		configMap: configMap,
		cells:     make([]ProjectConfigMapping, configMap.MatrixSize()),
	}

	for bt, buildType := range configMap.buildTypes {
		for pl, platform := range configMap.platforms {
			cell := ProjectConfigMapping{BuildType: buildType, Platform: platform, Build: true}
			if v, ok := rules.GetProjectBuildType(buildType, platform); ok {
				cell.BuildType = v
			}
			if v, ok := rules.GetProjectPlatform(buildType, platform); ok {
				cell.Platform = v
			}
			if v, ok := rules.GetIsBuildable(buildType, platform); ok {
				cell.Build = v
			}
			if v, ok := rules.GetIsDeployable(buildType, platform); ok {
				cell.Deploy = v
			}
			if forceExclude {
				cell.Build = false
				cell.Deploy = false
			}
			m.cells[configMap.index(bt, pl)] = cell
		}
	}

	return m
}

// ConfigurationMap returns the map the matrix is indexed by.
func (m *SolutionToProjectMappings) ConfigurationMap() *SolutionConfigurationMap {
	return m.configMap
}

// Len returns the number of cells.
func (m *SolutionToProjectMappings) Len() int {
	return len(m.cells)
}

// At returns a cell. An out-of-range index panics.
func (m *SolutionToProjectMappings) At(index SolutionConfigIndex) ProjectConfigMapping {
	m.checkIndex(index)
	return m.cells[index]
}

// Set replaces a cell. An out-of-range index panics.
func (m *SolutionToProjectMappings) Set(index SolutionConfigIndex, cell ProjectConfigMapping) {
	m.checkIndex(index)
	m.cells[index] = cell
}

func (m *SolutionToProjectMappings) checkIndex(index SolutionConfigIndex) {
	if index < 0 || int(index) >= len(m.cells) {
		panic(fmt.Sprintf("solution: configuration index %d out of range [0,%d)", index, len(m.cells)))
	}
}

// Clone returns an independent copy.
func (m *SolutionToProjectMappings) Clone() *SolutionToProjectMappings {
	return &SolutionToProjectMappings{
		configMap: m.configMap,
		cells:     append([]ProjectConfigMapping(nil), m.cells...),
	}
}

// Equal reports whether both matrices have the same shape and every cell IsSame.
func (m *SolutionToProjectMappings) Equal(other *SolutionToProjectMappings) bool {
	if len(m.cells) != len(other.cells) {
		return false
	}
	for i := range m.cells {
		if !m.cells[i].IsSame(other.cells[i]) {
			return false
		}
	}
	return true
}

// ApplyRules re-evaluates every dimension of every cell in the scope against
// the rule set. A dimension no rule matches keeps the cell's current value.
func (m *SolutionToProjectMappings) ApplyRules(scoped ScopedRules) {
	rules := NewConfigurationRuleFollower(scoped.Rules)
	btStart, btEnd := scoped.BuildType.rangeOf(m.configMap.BuildTypesCount())
	plStart, plEnd := scoped.Platform.rangeOf(m.configMap.PlatformsCount())

	for bt := btStart; bt < btEnd; bt++ {
		buildType := m.configMap.buildTypes[bt]
		for pl := plStart; pl < plEnd; pl++ {
			platform := m.configMap.platforms[pl]
			cell := &m.cells[m.configMap.index(bt, pl)]
			if v, ok := rules.GetProjectBuildType(buildType, platform); ok {
				cell.BuildType = v
			}
			if v, ok := rules.GetProjectPlatform(buildType, platform); ok {
				cell.Platform = v
			}
			if v, ok := rules.GetIsBuildable(buildType, platform); ok {
				cell.Build = v
			}
			if v, ok := rules.GetIsDeployable(buildType, platform); ok {
				cell.Deploy = v
			}
		}
	}
}
