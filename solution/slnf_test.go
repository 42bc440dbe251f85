package solution

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const depsSln = `Microsoft Visual Studio Solution File, Format Version 12.00
Project("{9A19103F-16F7-4668-BE54-9A1E7A4F7556}") = "Core", "Core\Core.csproj", "{11111111-1111-1111-1111-111111111111}"
EndProject
Project("{9A19103F-16F7-4668-BE54-9A1E7A4F7556}") = "App", "App\App.csproj", "{22222222-2222-2222-2222-222222222222}"
	ProjectSection(ProjectDependencies) = postProject
		{11111111-1111-1111-1111-111111111111} = {11111111-1111-1111-1111-111111111111}
	EndProjectSection
EndProject
Global
	GlobalSection(SolutionConfigurationPlatforms) = preSolution
		Debug|Any CPU = Debug|Any CPU
	EndGlobalSection
EndGlobal
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestSlnfParser_Parse(t *testing.T) {
	tempDir := t.TempDir()
	slnPath := filepath.Join(tempDir, "Deps.sln")
	writeFile(t, slnPath, depsSln)

	tests := []struct {
		name     string
		projects string
		want     []string
		deps     int
	}{
		{"app only", `["App\\App.csproj"]`, []string{"App"}, 0},
		{"both", `["core/core.csproj", "App/App.csproj"]`, []string{"Core", "App"}, 1},
		{"none", `[]`, []string{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slnfPath := filepath.Join(tempDir, "filters", "Filter.slnf")
			writeFile(t, slnfPath, `{"solution": {"path": "..\\Deps.sln", "projects": `+tt.projects+`}}`)

			sol, err := ParseSolution(slnfPath)
			require.NoError(t, err)
			assert.Equal(t, slnfPath, sol.FilePath)
			assert.Equal(t, tempDir, sol.SolutionDir, "project paths stay relative to the parent")
			assert.Equal(t, []string{"Debug"}, sol.BuildTypes)

			names := make([]string, 0, len(sol.Projects))
			for _, project := range sol.Projects {
				names = append(names, project.Name)
			}
			assert.Equal(t, tt.want, names)

			if app, ok := sol.GetProjectByName("App"); ok {
				assert.Len(t, app.Dependencies, tt.deps)
			}
		})
	}
}

func TestSlnfParser_SlnxParent(t *testing.T) {
	tempDir := t.TempDir()
	writeFile(t, filepath.Join(tempDir, "App.slnx"), appSlnx)
	slnfPath := filepath.Join(tempDir, "App.slnf")
	writeFile(t, slnfPath, `{"solution": {"path": "App.slnx", "projects": ["src/App/App.csproj"]}}`)

	sol, err := NewSlnfParser().Parse(slnfPath)
	require.NoError(t, err)
	require.Len(t, sol.Projects, 1)
	assert.Equal(t, "App", sol.Projects[0].Name)
	assert.Empty(t, sol.Projects[0].Dependencies)
	assert.Len(t, sol.Projects[0].ConfigurationRules, 2)
	assert.Len(t, sol.SolutionFolders, 2)
	assert.Len(t, sol.ProjectTypes, 1)
}

func TestSlnfParser_DoesNotModifyParent(t *testing.T) {
	tempDir := t.TempDir()
	writeFile(t, filepath.Join(tempDir, "Deps.sln"), depsSln)
	slnfPath := filepath.Join(tempDir, "Deps.slnf")
	writeFile(t, slnfPath, `{"solution": {"path": "Deps.sln", "projects": ["App\\App.csproj"]}}`)

	filtered, err := ParseSolution(slnfPath)
	require.NoError(t, err)
	parent, err := ParseSolution(filepath.Join(tempDir, "Deps.sln"))
	require.NoError(t, err)

	assert.Empty(t, filtered.Projects[0].Dependencies)
	app, ok := parent.GetProjectByID(uuid.MustParse("22222222-2222-2222-2222-222222222222"))
	require.True(t, ok)
	assert.Len(t, app.Dependencies, 1)
}

func TestSlnfParser_ReadFilter(t *testing.T) {
	tempDir := t.TempDir()
	slnfPath := filepath.Join(tempDir, "App.slnf")
	writeFile(t, slnfPath, `{"solution": {"path": "sub\\App.sln", "projects": ["src\\App\\App.csproj"]}}`)

	filter, err := NewSlnfParser().ReadFilter(slnfPath)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tempDir, "sub", "App.sln"), filter.SolutionPath)
	assert.Equal(t, []string{"src/App/App.csproj"}, filter.Projects)
}

func TestSlnfParser_Errors(t *testing.T) {
	tempDir := t.TempDir()

	tests := []struct {
		name    string
		content string
		message string
	}{
		{"invalid json", `{"solution":`, "failed to parse JSON"},
		{"missing path", `{"solution": {"projects": []}}`, "missing solution path"},
		{"missing parent", `{"solution": {"path": "Missing.sln"}}`, "parent solution file not found"},
		{"unsupported parent", `{"solution": {"path": "App.slnf"}}`, "unsupported parent solution format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slnfPath := filepath.Join(tempDir, "App.slnf")
			writeFile(t, slnfPath, tt.content)

			_, err := NewSlnfParser().Parse(slnfPath)
			var parseErr *ParseError
			require.ErrorAs(t, err, &parseErr)
			assert.Contains(t, parseErr.Message, tt.message)
		})
	}

	_, err := NewSlnfParser().Parse(filepath.Join(tempDir, "App.sln"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a .slnf file")
}
