package solution

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const appSlnx = `<Solution Description="Sample">
  <Configurations>
    <BuildType Name="Debug" />
    <BuildType Name="Release" />
    <Platform Name="Any CPU" />
    <Platform Name="x64" />
    <ProjectType TypeId="{11111111-2222-3333-4444-555555555555}" Name="Tool" Extension=".toolproj" BasedOn="C#">
      <Deploy />
    </ProjectType>
  </Configurations>
  <Folder Name="/src/">
    <File Path="src/README.md" />
    <Project Path="src/App/App.csproj">
      <BuildDependency Project="src/Core/Core.csproj" />
      <Platform Solution="Release|x64" Project="AnyCPU" />
      <Build Solution="Debug|*" Project="false" />
    </Project>
  </Folder>
  <Folder Name="/src/lib/">
    <Project Path="src/Core/Core.csproj" Id="{33333333-3333-3333-3333-333333333333}" />
  </Folder>
  <Project Path="tools/Native.vcxproj" DisplayName="NativeTool" />
  <Project Path="tools/Gen.toolproj" />
  <Properties Name="Visual Studio">
    <Property Name="OpenWith" Value="17" />
  </Properties>
</Solution>
`

func parseSlnx(t *testing.T, content string) *Solution {
	t.Helper()
	sol, err := NewSlnxParser().ParseReader(strings.NewReader(content), filepath.Join(t.TempDir(), "App.slnx"))
	require.NoError(t, err)
	return sol
}

func TestSlnxParser_Parse(t *testing.T) {
	sol := parseSlnx(t, appSlnx)

	assert.Equal(t, "Sample", sol.Description)
	assert.Equal(t, []string{"Debug", "Release"}, sol.BuildTypes)
	assert.Equal(t, []string{"Any CPU", "x64"}, sol.Platforms)

	require.Len(t, sol.ProjectTypes, 1)
	tool := sol.ProjectTypes[0]
	assert.Equal(t, "Tool", tool.Name)
	assert.Equal(t, ".toolproj", tool.Extension)
	assert.Equal(t, "C#", tool.BasedOn)
	assert.Equal(t, []ConfigurationRule{NewConfigurationRule(DimensionDeploy, "", "", TrueValue)}, tool.ConfigurationRules)

	require.Len(t, sol.Projects, 4)
	native, gen, app, core := sol.Projects[0], sol.Projects[1], sol.Projects[2], sol.Projects[3]

	assert.Equal(t, "NativeTool", native.Name)
	assert.Equal(t, uuid.Nil, native.ParentFolderID)
	assert.Equal(t, DefaultProjectID("tools/Native.vcxproj"), native.ID)
	assert.Equal(t, "Gen", gen.Name)

	assert.Equal(t, "App", app.Name)
	assert.Equal(t, []ConfigurationRule{
		NewConfigurationRule(DimensionPlatform, "Release", "x64", "AnyCPU"),
		NewConfigurationRule(DimensionBuild, "Debug", "", FalseValue),
	}, app.ConfigurationRules)
	assert.Equal(t, []uuid.UUID{core.ID}, app.Dependencies)
	assert.Equal(t, uuid.MustParse("33333333-3333-3333-3333-333333333333"), core.ID)

	require.Len(t, sol.SolutionFolders, 2)
	src, lib := sol.SolutionFolders[0], sol.SolutionFolders[1]
	assert.Equal(t, "/src/", sol.FolderPath(src))
	assert.Equal(t, "/src/lib/", sol.FolderPath(lib))
	assert.Equal(t, src.ID, lib.ParentFolderID)
	assert.Equal(t, src.ID, app.ParentFolderID)
	assert.Equal(t, lib.ID, core.ParentFolderID)
	assert.Equal(t, []string{"src/README.md"}, src.Items)

	value, ok := sol.GetProperty("Visual Studio", "OpenWith")
	assert.True(t, ok)
	assert.Equal(t, "17", value)
}

func TestSlnxParser_Matrices(t *testing.T) {
	sol := parseSlnx(t, appSlnx)
	native, gen, app := sol.Projects[0], sol.Projects[1], sol.Projects[2]

	m := sol.ProjectConfigurations(app, nil)
	assert.Equal(t, ProjectConfigMapping{BuildType: "Debug", Platform: "Any CPU"}, m.At(0))
	assert.Equal(t, ProjectConfigMapping{BuildType: "Release", Platform: "AnyCPU", Build: true}, m.At(3))

	m = sol.ProjectConfigurations(native, nil)
	assert.Equal(t, "x64", m.At(0).Platform)

	m = sol.ProjectConfigurations(gen, nil)
	assert.Equal(t, ProjectConfigMapping{BuildType: "Debug", Platform: "Any CPU", Build: true, Deploy: true}, m.At(0))
}

func TestSlnxParser_Defaults(t *testing.T) {
	sol := parseSlnx(t, `<Solution><Project Path="a/A.csproj" /></Solution>`)

	assert.Equal(t, DefaultBuildTypes, sol.BuildTypes)
	assert.Equal(t, DefaultPlatforms, sol.Platforms)
	assert.Equal(t, DefaultFormatVersion, sol.FormatVersion)
}

func TestSlnxParser_InvalidRules(t *testing.T) {
	logger := newRecordingLogger()
	content := `<Solution>
  <Project Path="a/A.csproj" Id="not-a-guid">
    <Platform Solution="*|x64" />
    <Build Project="sometimes" />
    <Folder Solution="*|*" Project="x" />
    <Deploy Solution="Release|*" />
    <BuildDependency Project="missing/Missing.csproj" />
  </Project>
</Solution>`

	sol, err := NewSlnxParser(WithLogger(logger)).ParseReader(strings.NewReader(content), "A.slnx")
	require.NoError(t, err)
	require.Len(t, sol.Projects, 1)

	assert.Equal(t, []ConfigurationRule{
		NewConfigurationRule(DimensionDeploy, "Release", "", TrueValue),
	}, sol.Projects[0].ConfigurationRules)
	assert.Equal(t, DefaultProjectID("a/A.csproj"), sol.Projects[0].ID)
	assert.Empty(t, sol.Projects[0].Dependencies)
	assert.Len(t, logger.warnings, 5)
}

func TestSlnxParser_NestedFolders(t *testing.T) {
	sol := parseSlnx(t, `<Solution>
  <Folder Name="tests">
    <Folder Name="unit">
      <Project Path="tests/unit/Unit.csproj" />
    </Folder>
  </Folder>
</Solution>`)

	require.Len(t, sol.SolutionFolders, 2)
	assert.Equal(t, "/tests/unit/", sol.FolderPath(sol.SolutionFolders[1]))
	assert.Equal(t, sol.SolutionFolders[1].ID, sol.Projects[0].ParentFolderID)
}

func TestSlnxParser_Errors(t *testing.T) {
	_, err := NewSlnxParser().ParseReader(strings.NewReader("<Solution>\n<Project>\n</Solution>"), "Bad.slnx")
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Contains(t, parseErr.Message, "XML syntax error")
	assert.Equal(t, 3, parseErr.Line)

	_, err = NewSlnxParser().Parse("App.sln")
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "not a .slnx file", parseErr.Message)
}

func TestSlnxWriter_Write(t *testing.T) {
	sol := parseSlnx(t, appSlnx)

	var buf bytes.Buffer
	require.NoError(t, NewSlnxWriter().Write(sol, &buf))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, `<Solution Description="Sample">`))
	assert.Contains(t, out, `<Folder Name="/src/">`)
	assert.Contains(t, out, `<Folder Name="/src/lib/">`)
	assert.Contains(t, out, `<File Path="src/README.md"></File>`)
	assert.Contains(t, out, `<Project Path="src/App/App.csproj">`)
	assert.Contains(t, out, `<BuildDependency Project="src/Core/Core.csproj"></BuildDependency>`)
	assert.Contains(t, out, `<Platform Solution="Release|x64" Project="AnyCPU"></Platform>`)
	assert.Contains(t, out, `<Build Solution="Debug|*" Project="False"></Build>`)
	assert.Contains(t, out, `<Project Path="src/Core/Core.csproj" Id="{33333333-3333-3333-3333-333333333333}"></Project>`)
	assert.Contains(t, out, `<Project Path="tools/Native.vcxproj" DisplayName="NativeTool"></Project>`)
	assert.Contains(t, out, `<ProjectType TypeId="{11111111-2222-3333-4444-555555555555}" Name="Tool" Extension=".toolproj" BasedOn="C#">`)
	assert.Contains(t, out, `<Deploy></Deploy>`)
	assert.Contains(t, out, `<Property Name="OpenWith" Value="17"></Property>`)
	assert.NotContains(t, out, `Type=`)
}

func TestSlnxWriter_TypeAttribute(t *testing.T) {
	sol := newMatrixSolution(t, []string{"Debug"}, []string{"Any CPU"})
	sol.AddProject(&Project{Path: "a/A.csproj", TypeID: ProjectTypeIDCSharpSDK})
	sol.AddProject(&Project{Path: "b/B.proj", TypeID: uuid.MustParse("AAAAAAAA-BBBB-CCCC-DDDD-EEEEEEEEEEEE")})
	sol.AddProject(&Project{Path: "c/C.csproj", Type: "VC"})

	var buf bytes.Buffer
	require.NoError(t, NewSlnxWriter().Write(sol, &buf))
	out := buf.String()

	assert.Contains(t, out, `<Project Path="a/A.csproj" Type="Common C#"></Project>`)
	assert.Contains(t, out, `<Project Path="b/B.proj" Type="{AAAAAAAA-BBBB-CCCC-DDDD-EEEEEEEEEEEE}"></Project>`)
	assert.Contains(t, out, `<Project Path="c/C.csproj" Type="VC"></Project>`)
}

func TestSlnx_RoundTrip(t *testing.T) {
	original := parseSlnx(t, appSlnx)

	var buf bytes.Buffer
	require.NoError(t, NewSlnxWriter().Write(original, &buf))
	reread, err := NewSlnxParser().ParseReader(&buf, original.FilePath)
	require.NoError(t, err)

	assert.Equal(t, original.Description, reread.Description)
	assert.Equal(t, original.BuildTypes, reread.BuildTypes)
	assert.Equal(t, original.Platforms, reread.Platforms)
	assert.Equal(t, original.ProjectTypes, reread.ProjectTypes)
	assert.Equal(t, original.Properties, reread.Properties)
	require.Len(t, reread.Projects, len(original.Projects))

	for _, project := range original.Projects {
		other, ok := reread.GetProjectByID(project.ID)
		require.True(t, ok, project.Path)
		assert.Equal(t, project.Name, other.Name)
		assert.Equal(t, project.ConfigurationRules, other.ConfigurationRules)
		assert.Equal(t, project.Dependencies, other.Dependencies)
		assert.Equal(t, project.ParentFolderID, other.ParentFolderID)
	}
}

func TestConvert_SlnToSlnxAndBack(t *testing.T) {
	original := parseSln(t, appSln)

	var slnx bytes.Buffer
	require.NoError(t, NewSlnxWriter().Write(original, &slnx))
	assert.Contains(t, slnx.String(), `<Platform Solution="Release|x64" Project="AnyCPU"></Platform>`)
	assert.NotContains(t, slnx.String(), "ActiveCfg")

	viaSlnx, err := NewSlnxParser().ParseReader(&slnx, filepath.Join(original.SolutionDir, "App.slnx"))
	require.NoError(t, err)
	require.Len(t, viaSlnx.Projects, 1)
	assert.Equal(t, original.Projects[0].ID, viaSlnx.Projects[0].ID)
	assert.True(t, original.ProjectConfigurations(original.Projects[0], nil).
		Equal(viaSlnx.ProjectConfigurations(viaSlnx.Projects[0], nil)))

	var sln bytes.Buffer
	require.NoError(t, NewSlnWriter().Write(viaSlnx, &sln))
	back, err := NewSlnParser().ParseReader(&sln, original.FilePath)
	require.NoError(t, err)
	assert.Equal(t, original.Projects[0].ConfigurationRules, back.Projects[0].ConfigurationRules)
}

func TestSlnxParser_ParseFile(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "App.slnx")
	require.NoError(t, os.WriteFile(path, []byte(appSlnx), 0644))

	sol, err := ParseSolution(path)
	require.NoError(t, err)
	assert.Equal(t, path, sol.FilePath)
	assert.Len(t, sol.Projects, 4)
}
