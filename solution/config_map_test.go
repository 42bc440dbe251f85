package solution

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/willibrandon/gosln/observability"
)

func TestSolutionConfigurationMap_Indexing(t *testing.T) {
	sol := newMatrixSolution(t, []string{"Debug", "Release"}, []string{"Any CPU", "x64"})
	cm := NewSolutionConfigurationMap(sol, nil, nil)

	assert.Equal(t, 2, cm.BuildTypesCount())
	assert.Equal(t, 2, cm.PlatformsCount())
	assert.Equal(t, 4, cm.MatrixSize())

	index, ok := cm.IndexOf("Release", "x64")
	require.True(t, ok)
	assert.Equal(t, SolutionConfigIndex(3), index)

	index, ok = cm.IndexOf("Debug", "AnyCPU")
	require.True(t, ok, "platforms are looked up canonically")
	assert.Equal(t, SolutionConfigIndex(0), index)

	_, ok = cm.IndexOf("debug", "x64")
	assert.False(t, ok, "build types are ordinal")
	_, ok = cm.IndexOf("Debug", "ARM64")
	assert.False(t, ok)

	bt, pl := cm.Configuration(2)
	assert.Equal(t, "Release", bt)
	assert.Equal(t, "Any CPU", pl)
	assert.Panics(t, func() { cm.Configuration(4) })
	assert.Panics(t, func() { cm.Configuration(-1) })
}

func TestSolution_AddPlatformCanonicalDuplicates(t *testing.T) {
	sol := newMatrixSolution(t, []string{"Debug", "Debug"}, []string{"Any CPU", "AnyCPU", "x64"})
	assert.Equal(t, []string{"Debug"}, sol.BuildTypes)
	assert.Equal(t, []string{"Any CPU", "x64"}, sol.Platforms)

	assert.True(t, sol.AddSolutionConfiguration("Release|x86"))
	assert.False(t, sol.AddSolutionConfiguration("Release"))
	assert.False(t, sol.AddSolutionConfiguration("|x86"))
	assert.Equal(t, []string{"Debug", "Release"}, sol.BuildTypes)
	assert.Equal(t, []string{"Any CPU", "x64", "x86"}, sol.Platforms)
}

func TestSolutionConfigurationMap_CreateMatrixAnnotation(t *testing.T) {
	sol := newMatrixSolution(t, []string{"Debug", "Release"}, []string{"Any CPU", "x64"})
	cm := NewSolutionConfigurationMap(sol, nil, nil)

	annotations := cm.CreateMatrixAnnotation()
	require.Len(t, annotations, 4)
	names := make([]string, len(annotations))
	for i, a := range annotations {
		names[i] = a.FullConfiguration
		assert.Equal(t, SolutionConfigIndex(i), a.Index)
	}
	assert.Equal(t, []string{"Debug|Any CPU", "Debug|x64", "Release|Any CPU", "Release|x64"}, names)
}

func TestSolutionConfigurationMap_SplitCache(t *testing.T) {
	sol := newMatrixSolution(t, []string{"Debug"}, []string{"Any CPU"})
	cm := NewSolutionConfigurationMap(sol, nil, nil)

	hitsBefore, err := observability.GetCounterValue(observability.ConfigSplitCacheTotal, "hit")
	require.NoError(t, err)

	bt, pl, ok := cm.TrySplitFullConfigurationCached("Debug|Any CPU")
	require.True(t, ok)
	assert.Equal(t, "Debug", bt)
	assert.Equal(t, "Any CPU", pl)

	bt, pl, ok = cm.TrySplitFullConfigurationCached("Debug|Any CPU")
	require.True(t, ok)
	assert.Equal(t, "Debug", bt)
	assert.Equal(t, "Any CPU", pl)

	_, _, ok = cm.TrySplitFullConfigurationCached("NoPipe")
	assert.False(t, ok)
	_, _, ok = cm.TrySplitFullConfigurationCached("NoPipe")
	assert.False(t, ok, "failed splits are cached too")

	hitsAfter, err := observability.GetCounterValue(observability.ConfigSplitCacheTotal, "hit")
	require.NoError(t, err)
	assert.Equal(t, float64(2), hitsAfter-hitsBefore)
}

func TestSolutionConfigurationMap_ParseProjectConfigLine(t *testing.T) {
	sol := newMatrixSolution(t, []string{"Debug", "Release"}, []string{"Any CPU", "x64"})
	project := sol.AddProject(&Project{Path: "src/App/App.csproj", TypeID: ProjectTypeIDCSharp})
	cm := NewSolutionConfigurationMap(sol, nil, nil)
	id := FormatGUID(project.ID)

	ignored := []struct {
		name, value string
	}{
		{"not-a-guid.Debug|x64.ActiveCfg", "Debug|x64"},
		{"{99999999-9999-9999-9999-999999999999}.Debug|x64.ActiveCfg", "Debug|x64"},
		{id + ".Debug|x64.Unknown", "Debug|x64"},
		{id + ".Debug.ActiveCfg", "Debug|x64"},
		{id + ".Staging|x64.ActiveCfg", "Debug|x64"},
		{id + ".Debug|ARM.ActiveCfg", "Debug|x64"},
		{id + ".Debug|x64.ActiveCfg", "Debug"},
		{id, "Debug|x64"},
	}
	for _, line := range ignored {
		assert.False(t, cm.ParseProjectConfigLine(line.name, line.value), line.name)
	}

	assert.True(t, cm.ParseProjectConfigLine(id+".Release|x64.ActiveCfg", "Release|AnyCPU"))
	assert.True(t, cm.ParseProjectConfigLine(id+".Release|x64.Deploy.0", "Release|AnyCPU"))

	observed, ok := cm.ObservedMappings(project)
	require.True(t, ok)

	index, _ := cm.IndexOf("Release", "x64")
	assert.Equal(t, ProjectConfigMapping{BuildType: "Release", Platform: "AnyCPU", Deploy: true}, observed.At(index))

	index, _ = cm.IndexOf("Debug", "x64")
	assert.Equal(t, ProjectConfigMapping{BuildType: "Debug", Platform: "x64"}, observed.At(index),
		"cells without lines keep defaults with Build cleared")
}

func TestSolutionConfigurationMap_DistillKeepsProjectsWithoutLines(t *testing.T) {
	sol := newMatrixSolution(t, []string{"Debug"}, []string{"Any CPU"})
	keep := []ConfigurationRule{NewConfigurationRule(DimensionDeploy, "", "", TrueValue)}
	untouched := sol.AddProject(&Project{Path: "a/A.csproj", ConfigurationRules: keep})
	distilled := sol.AddProject(&Project{Path: "b/B.csproj", ConfigurationRules: keep})

	cm := NewSolutionConfigurationMap(sol, nil, nil)
	require.True(t, cm.ParseProjectConfigLine(FormatGUID(distilled.ID)+".Debug|Any CPU.ActiveCfg", "Debug|Any CPU"))

	assert.Equal(t, 1, cm.DistillProjectConfigurations())
	assert.Equal(t, keep, untouched.ConfigurationRules)
	assert.Equal(t, []ConfigurationRule{
		NewConfigurationRule(DimensionBuild, "", "", FalseValue),
	}, distilled.ConfigurationRules)
}

func TestSolutionConfigurationMap_GetProjectConfigMap(t *testing.T) {
	sol := newMatrixSolution(t, []string{"Debug"}, []string{"Any CPU", "x86"})
	native := sol.AddProject(&Project{Path: "native/Native.vcxproj"})
	shared := sol.AddProject(&Project{Path: "shared/Shared.shproj"})
	cm := NewSolutionConfigurationMap(sol, nil, nil)

	mappings, supported := cm.GetProjectConfigMap(native)
	assert.True(t, supported)
	assert.Equal(t, "x64", mappings.At(0).Platform)
	assert.Equal(t, "Win32", mappings.At(1).Platform)
	assert.True(t, mappings.At(0).Build)
	assert.False(t, mappings.At(0).Deploy)

	mappings, supported = cm.GetProjectConfigMap(shared)
	assert.False(t, supported)
	assert.False(t, mappings.At(0).Build)

	assert.True(t, sol.ProjectConfigurations(native, nil).Equal(cm.ExpectedMappings(native)))
}
