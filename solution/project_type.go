package solution

import (
	"strings"

	"github.com/google/uuid"
)

// ProjectType describes a kind of project: how it is recognized (type id,
// alias name, file extension) and the configuration rules every project of
// that kind starts with. BasedOn names another type whose rules apply first.
//
// A ProjectType with no id, name or extension is the table's default type;
// its rules apply to every project in the solution.
type ProjectType struct {
	ProjectTypeID      uuid.UUID
	Name               string
	Extension          string
	BasedOn            string
	ConfigurationRules []ConfigurationRule

	// NotBuildable marks types that never appear in configuration sections
	// (shared items, solution folders).
	NotBuildable bool
}

// IsDefault reports whether the type is the solution-wide default type.
func (pt *ProjectType) IsDefault() bool {
	return pt.ProjectTypeID == uuid.Nil && pt.Name == "" && pt.Extension == ""
}

// DisplayName returns the alias if set, else the extension, else the type id.
func (pt *ProjectType) DisplayName() string {
	switch {
	case pt.Name != "":
		return pt.Name
	case pt.Extension != "":
		return pt.Extension
	case pt.ProjectTypeID != uuid.Nil:
		return FormatGUID(pt.ProjectTypeID)
	default:
		return "(default)"
	}
}

// NormalizeExtension lower-cases an extension and makes sure it has a leading dot.
func NormalizeExtension(ext string) string {
	ext = strings.TrimSpace(ext)
	if ext == "" {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return strings.ToLower(ext)
}

// Well-known project type ids.
var (
	ProjectTypeIDCSharp         = uuid.MustParse("FAE04EC0-301F-11D3-BF4B-00C04F79EFBC")
	ProjectTypeIDCSharpSDK      = uuid.MustParse("9A19103F-16F7-4668-BE54-9A1E7A4F7556")
	ProjectTypeIDVisualBasic    = uuid.MustParse("F184B08F-C81C-45F6-A57F-5ABD9991F28F")
	ProjectTypeIDVisualBasicSDK = uuid.MustParse("778DAE3C-4631-46EA-AA77-85C1314464D9")
	ProjectTypeIDFSharp         = uuid.MustParse("F2A71F9B-5D33-465A-A702-920D77279786")
	ProjectTypeIDFSharpSDK      = uuid.MustParse("6EC3EE1D-3C4E-46DD-8F32-0CC8E7565705")
	ProjectTypeIDVisualC        = uuid.MustParse("8BC9CEB8-8B4A-11D0-8D11-00A0C91BC942")
	ProjectTypeIDShared         = uuid.MustParse("D954291E-2A0B-460D-934E-DC6B0785DB48")
	ProjectTypeIDWebSite        = uuid.MustParse("E24C65DC-7377-472B-9ABA-BC803B73C61A")
	ProjectTypeIDExe            = uuid.MustParse("911E67C6-3D85-4FCE-B560-20A9C3E3FF48")
	ProjectTypeIDSolutionFolder = uuid.MustParse("2150E333-8FDC-42A3-9474-1A3956D46DE8")
)

// Rule sets shared by the built-in types.
var (
	baseRules = []ConfigurationRule{
		NewConfigurationRule(DimensionBuild, "", "", TrueValue),
		NewConfigurationRule(DimensionDeploy, "", "", FalseValue),
	}

	clrRules = []ConfigurationRule{
		NewConfigurationRule(DimensionPlatform, "", PlatformAnyCPU, PlatformAnyCPU),
	}

	vcRules = []ConfigurationRule{
		NewConfigurationRule(DimensionPlatform, "", PlatformAnyCPU, "x64"),
		NewConfigurationRule(DimensionPlatform, "", "x86", "Win32"),
	}

	noBuildRules = []ConfigurationRule{
		NewConfigurationRule(DimensionBuild, "", "", FalseValue),
	}
)

func builtInTypeDefinitions() []ProjectType {
	return []ProjectType{
		{ConfigurationRules: baseRules},
		{ProjectTypeID: ProjectTypeIDCSharp, Name: "C#", Extension: ".csproj", ConfigurationRules: clrRules},
		{ProjectTypeID: ProjectTypeIDCSharpSDK, Name: "Common C#", ConfigurationRules: clrRules},
		{ProjectTypeID: ProjectTypeIDVisualBasic, Name: "VB", Extension: ".vbproj", ConfigurationRules: clrRules},
		{ProjectTypeID: ProjectTypeIDVisualBasicSDK, Name: "Common VB", ConfigurationRules: clrRules},
		{ProjectTypeID: ProjectTypeIDFSharp, Name: "F#", Extension: ".fsproj", ConfigurationRules: clrRules},
		{ProjectTypeID: ProjectTypeIDFSharpSDK, Name: "Common F#", ConfigurationRules: clrRules},
		{ProjectTypeID: ProjectTypeIDWebSite, Name: "Website", ConfigurationRules: clrRules},
		{ProjectTypeID: ProjectTypeIDVisualC, Name: "VC", Extension: ".vcxproj", ConfigurationRules: vcRules},
		{Name: "VC Shared", Extension: ".vcxitems", BasedOn: "VC", ConfigurationRules: noBuildRules, NotBuildable: true},
		{ProjectTypeID: ProjectTypeIDShared, Name: "Shared", Extension: ".shproj", ConfigurationRules: noBuildRules, NotBuildable: true},
		{ProjectTypeID: ProjectTypeIDExe, Name: "Exe", Extension: ".exe"},
		{ProjectTypeID: ProjectTypeIDSolutionFolder, Name: "Folder", ConfigurationRules: noBuildRules, NotBuildable: true},
	}
}
