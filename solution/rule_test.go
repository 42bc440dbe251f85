package solution

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigurationRuleFollower_PositionIsPriority(t *testing.T) {
	follower := NewConfigurationRuleFollower([]ConfigurationRule{
		NewConfigurationRule(DimensionBuildType, "", "", "Release"),
		NewConfigurationRule(DimensionBuildType, "Debug", "", "Debug"),
	})

	got, ok := follower.GetProjectBuildType("Debug", "x64")
	assert.True(t, ok)
	assert.Equal(t, "Debug", got)

	got, ok = follower.GetProjectBuildType("Release", "x64")
	assert.True(t, ok)
	assert.Equal(t, "Release", got)
}

func TestConfigurationRuleFollower_LaterListsWin(t *testing.T) {
	typeRules := []ConfigurationRule{NewConfigurationRule(DimensionPlatform, "", "", "x86")}
	projectRules := []ConfigurationRule{NewConfigurationRule(DimensionPlatform, "", "x64", "x64")}
	follower := NewConfigurationRuleFollower(typeRules, projectRules)

	got, _ := follower.GetProjectPlatform("Debug", "x64")
	assert.Equal(t, "x64", got)
	got, _ = follower.GetProjectPlatform("Debug", "ARM64")
	assert.Equal(t, "x86", got)

	_, ok := follower.GetProjectBuildType("Debug", "x64")
	assert.False(t, ok)
	assert.Len(t, follower.Rules(), 2)
}

func TestConfigurationRuleFollower_BoolLookupSkipsGarbage(t *testing.T) {
	follower := NewConfigurationRuleFollower([]ConfigurationRule{
		NewConfigurationRule(DimensionBuild, "", "", "false"),
		NewConfigurationRule(DimensionBuild, "", "", "maybe"),
	})

	build, ok := follower.GetIsBuildable("Debug", "Any CPU")
	assert.True(t, ok)
	assert.False(t, build)

	_, ok = follower.GetIsDeployable("Debug", "Any CPU")
	assert.False(t, ok)
}

func TestConfigurationRule_Matches(t *testing.T) {
	tests := []struct {
		name     string
		rule     ConfigurationRule
		bt, pl   string
		expected bool
	}{
		{"wildcard", NewConfigurationRule(DimensionBuild, "", "", TrueValue), "Debug", "x64", true},
		{"build type", NewConfigurationRule(DimensionBuild, "Debug", "", TrueValue), "Debug", "x64", true},
		{"build type is ordinal", NewConfigurationRule(DimensionBuild, "debug", "", TrueValue), "Debug", "x64", false},
		{"platform", NewConfigurationRule(DimensionBuild, "", "x64", TrueValue), "Release", "x64", true},
		{"platform is canonical", NewConfigurationRule(DimensionBuild, "", "AnyCPU", TrueValue), "Release", "Any CPU", true},
		{"platform mismatch", NewConfigurationRule(DimensionBuild, "", "x86", TrueValue), "Release", "x64", false},
		{"exact", NewConfigurationRule(DimensionBuild, "Release", "x64", TrueValue), "Release", "x64", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.rule.Matches(tt.bt, tt.pl))
		})
	}
}

func TestParseSolutionConfigurationPattern(t *testing.T) {
	tests := []struct {
		pattern  string
		buildTyp string
		platform string
	}{
		{"", "", ""},
		{"*|*", "", ""},
		{"Debug|*", "Debug", ""},
		{"*|x64", "", "x64"},
		{"Release", "Release", ""},
		{" Release | Any CPU ", "Release", "Any CPU"},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			bt, pl := ParseSolutionConfigurationPattern(tt.pattern)
			assert.Equal(t, tt.buildTyp, bt)
			assert.Equal(t, tt.platform, pl)
		})
	}
}

func TestConfigurationRule_String(t *testing.T) {
	rule := NewConfigurationRule(DimensionPlatform, "Release", "x64", "AnyCPU")
	assert.Equal(t, "Platform(Release|x64)=AnyCPU", rule.String())
	assert.Equal(t, "*|*", NewConfigurationRule(DimensionBuild, "", "", FalseValue).SolutionConfiguration())
	assert.True(t, NewConfigurationRule(DimensionBuild, "", "", FalseValue).IsWildcard())
}

func TestParseBuildDimension(t *testing.T) {
	for _, d := range buildDimensions {
		parsed, ok := ParseBuildDimension(d.String())
		assert.True(t, ok)
		assert.Equal(t, d, parsed)
	}

	parsed, ok := ParseBuildDimension("deploy")
	assert.True(t, ok)
	assert.Equal(t, DimensionDeploy, parsed)

	_, ok = ParseBuildDimension("Folder")
	assert.False(t, ok)
}

func TestParseBoolValue(t *testing.T) {
	b, ok := ParseBoolValue("TRUE")
	assert.True(t, ok)
	assert.True(t, b)

	b, ok = ParseBoolValue("false")
	assert.True(t, ok)
	assert.False(t, b)

	_, ok = ParseBoolValue("yes")
	assert.False(t, ok)

	assert.Equal(t, "True", BoolValue(true))
	assert.Equal(t, "False", BoolValue(false))
}

func TestPlatformsEqual(t *testing.T) {
	assert.True(t, PlatformsEqual("Any CPU", "AnyCPU"))
	assert.True(t, PlatformsEqual("any cpu", "ANYCPU"))
	assert.True(t, PlatformsEqual("x64", "X64"))
	assert.False(t, PlatformsEqual("x64", "x86"))

	assert.Equal(t, "AnyCPU", CanonicalPlatform("Any CPU"))
	assert.Equal(t, "ARM64", CanonicalPlatform("ARM64"))
}
