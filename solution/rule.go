package solution

import (
	"fmt"
	"strings"
)

// BuildDimension identifies which part of a project configuration a rule governs.
type BuildDimension int

const (
	// DimensionBuildType maps a solution configuration to a project build type (e.g. Debug).
	DimensionBuildType BuildDimension = iota
	// DimensionPlatform maps a solution configuration to a project platform (e.g. x64).
	DimensionPlatform
	// DimensionBuild decides whether the project is built.
	DimensionBuild
	// DimensionDeploy decides whether the project is deployed.
	DimensionDeploy
)

// buildDimensions lists every dimension in distillation order.
var buildDimensions = [...]BuildDimension{
	DimensionBuildType,
	DimensionPlatform,
	DimensionBuild,
	DimensionDeploy,
}

// String returns the element name used for the dimension in .slnx files.
func (d BuildDimension) String() string {
	switch d {
	case DimensionBuildType:
		return "BuildType"
	case DimensionPlatform:
		return "Platform"
	case DimensionBuild:
		return "Build"
	case DimensionDeploy:
		return "Deploy"
	default:
		return fmt.Sprintf("BuildDimension(%d)", int(d))
	}
}

// ParseBuildDimension converts an element name back into a BuildDimension.
func ParseBuildDimension(name string) (BuildDimension, bool) {
	for _, d := range buildDimensions {
		if strings.EqualFold(d.String(), name) {
			return d, true
		}
	}
	return 0, false
}

// Literal project values for the Build and Deploy dimensions.
const (
	TrueValue  = "True"
	FalseValue = "False"
)

// BoolValue renders a Build/Deploy flag as a rule project value.
func BoolValue(b bool) string {
	if b {
		return TrueValue
	}
	return FalseValue
}

// ParseBoolValue reads a Build/Deploy project value. Matching is case-insensitive.
func ParseBoolValue(s string) (bool, bool) {
	switch {
	case strings.EqualFold(s, TrueValue):
		return true, true
	case strings.EqualFold(s, FalseValue):
		return false, true
	default:
		return false, false
	}
}

// ConfigurationRule maps a (possibly wildcarded) solution configuration to a
// project value for one dimension. An empty SolutionBuildType or
// SolutionPlatform matches every build type or platform.
type ConfigurationRule struct {
	Dimension         BuildDimension
	SolutionBuildType string
	SolutionPlatform  string
	ProjectValue      string
}

// NewConfigurationRule creates a rule.
func NewConfigurationRule(dimension BuildDimension, solutionBuildType, solutionPlatform, projectValue string) ConfigurationRule {
	return ConfigurationRule{
		Dimension:         dimension,
		SolutionBuildType: solutionBuildType,
		SolutionPlatform:  solutionPlatform,
		ProjectValue:      projectValue,
	}
}

// Matches reports whether the rule applies to the solution configuration.
// Build types compare ordinally; platforms compare canonically.
func (r ConfigurationRule) Matches(solutionBuildType, solutionPlatform string) bool {
	if r.SolutionBuildType != "" && r.SolutionBuildType != solutionBuildType {
		return false
	}
	if r.SolutionPlatform != "" && !PlatformsEqual(r.SolutionPlatform, solutionPlatform) {
		return false
	}
	return true
}

// IsWildcard reports whether the rule applies to every solution configuration.
func (r ConfigurationRule) IsWildcard() bool {
	return r.SolutionBuildType == "" && r.SolutionPlatform == ""
}

// SolutionConfiguration renders the solution side of the rule in the
// "BuildType|Platform" form, using "*" for wildcards.
func (r ConfigurationRule) SolutionConfiguration() string {
	return wildcardOrValue(r.SolutionBuildType) + "|" + wildcardOrValue(r.SolutionPlatform)
}

// String returns a readable form, e.g. "Platform(Release|x64)=AnyCPU".
func (r ConfigurationRule) String() string {
	return fmt.Sprintf("%s(%s)=%s", r.Dimension, r.SolutionConfiguration(), r.ProjectValue)
}

// ParseSolutionConfigurationPattern splits a rule's solution pattern
// ("Debug|*", "*|x64", "Release", "") into build type and platform, mapping
// "*" and missing halves to the wildcard.
func ParseSolutionConfigurationPattern(pattern string) (buildType, platform string) {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return "", ""
	}
	bt, pl, found := strings.Cut(pattern, "|")
	buildType = valueOrWildcard(strings.TrimSpace(bt))
	if found {
		platform = valueOrWildcard(strings.TrimSpace(pl))
	}
	return buildType, platform
}

func wildcardOrValue(s string) string {
	if s == "" {
		return "*"
	}
	return s
}

func valueOrWildcard(s string) string {
	if s == "*" {
		return ""
	}
	return s
}
