package solution

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/willibrandon/gosln/observability"
)

// recordingLogger keeps warning and error templates so tests can assert on them.
type recordingLogger struct {
	observability.Logger
	errors   []string
	warnings []string
}

func newRecordingLogger() *recordingLogger {
	return &recordingLogger{Logger: observability.NewNullLogger()}
}

func (l *recordingLogger) Error(messageTemplate string, args ...any) {
	l.errors = append(l.errors, messageTemplate)
}

func (l *recordingLogger) Warn(messageTemplate string, args ...any) {
	l.warnings = append(l.warnings, messageTemplate)
}

func (l *recordingLogger) ForContext(key string, value any) observability.Logger {
	return l
}

// appSln is a legacy solution with one C# project whose Release|x64
// configuration builds the AnyCPU project platform.
const appSln = `Microsoft Visual Studio Solution File, Format Version 12.00
# Visual Studio Version 17
VisualStudioVersion = 17.0.31903.59
MinimumVisualStudioVersion = 10.0.40219.1
Project("{FAE04EC0-301F-11D3-BF4B-00C04F79EFBC}") = "App", "src\App\App.csproj", "{11111111-1111-1111-1111-111111111111}"
EndProject
Project("{2150E333-8FDC-42A3-9474-1A3956D46DE8}") = "src", "src", "{22222222-2222-2222-2222-222222222222}"
ProjectSection(SolutionItems) = preProject
src\README.md = src\README.md
EndProjectSection
EndProject
Global
GlobalSection(SolutionConfigurationPlatforms) = preSolution
Debug|Any CPU = Debug|Any CPU
Debug|x64 = Debug|x64
Release|Any CPU = Release|Any CPU
Release|x64 = Release|x64
EndGlobalSection
GlobalSection(ProjectConfigurationPlatforms) = postSolution
{11111111-1111-1111-1111-111111111111}.Debug|Any CPU.ActiveCfg = Debug|Any CPU
{11111111-1111-1111-1111-111111111111}.Debug|Any CPU.Build.0 = Debug|Any CPU
{11111111-1111-1111-1111-111111111111}.Debug|x64.ActiveCfg = Debug|x64
{11111111-1111-1111-1111-111111111111}.Debug|x64.Build.0 = Debug|x64
{11111111-1111-1111-1111-111111111111}.Release|Any CPU.ActiveCfg = Release|Any CPU
{11111111-1111-1111-1111-111111111111}.Release|Any CPU.Build.0 = Release|Any CPU
{11111111-1111-1111-1111-111111111111}.Release|x64.ActiveCfg = Release|AnyCPU
{11111111-1111-1111-1111-111111111111}.Release|x64.Build.0 = Release|AnyCPU
EndGlobalSection
GlobalSection(SolutionProperties) = preSolution
HideSolutionNode = FALSE
EndGlobalSection
GlobalSection(NestedProjects) = preSolution
{11111111-1111-1111-1111-111111111111} = {22222222-2222-2222-2222-222222222222}
EndGlobalSection
EndGlobal
`

// newMatrixSolution returns an empty solution with the given configurations,
// rooted in a temporary directory.
func newMatrixSolution(t *testing.T, buildTypes, platforms []string) *Solution {
	t.Helper()
	sol := NewSolution(filepath.Join(t.TempDir(), "Test.sln"))
	for _, bt := range buildTypes {
		sol.AddBuildType(bt)
	}
	for _, pl := range platforms {
		sol.AddPlatform(pl)
	}
	return sol
}

func parseSln(t *testing.T, content string) *Solution {
	t.Helper()
	sol, err := NewSlnParser().ParseReader(strings.NewReader(content), filepath.Join(t.TempDir(), "App.sln"))
	require.NoError(t, err)
	return sol
}
