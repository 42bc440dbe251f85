package solution

import (
	"path/filepath"
	"strings"
)

// PathResolver resolves project paths stored in a solution against the
// directory holding the solution file.
type PathResolver struct {
	// SolutionDir is the directory containing the solution file
	SolutionDir string
}

// NewPathResolver creates a new path resolver
func NewPathResolver(solutionDir string) *PathResolver {
	return &PathResolver{
		SolutionDir: solutionDir,
	}
}

// NormalizePath converts Windows-style separators to forward slashes and
// collapses duplicate separators. A leading UNC "//" is preserved.
func NormalizePath(path string) string {
	if path == "" {
		return ""
	}

	isUNC := strings.HasPrefix(path, `\\`) || strings.HasPrefix(path, "//")
	normalized := strings.ReplaceAll(path, `\`, "/")

	prefix := ""
	if isUNC {
		prefix = "//"
		normalized = strings.TrimLeft(normalized, "/")
	}
	for strings.Contains(normalized, "//") {
		normalized = strings.ReplaceAll(normalized, "//", "/")
	}

	return prefix + normalized
}

// ToLegacyPath renders a normalized path with the backslash separators .sln
// files use.
func ToLegacyPath(path string) string {
	return strings.ReplaceAll(NormalizePath(path), "/", `\`)
}

// ConvertToSystemPath converts a path to the current OS format
func ConvertToSystemPath(path string) string {
	return filepath.FromSlash(NormalizePath(path))
}

// ResolvePath resolves a project path relative to the solution directory
func (r *PathResolver) ResolvePath(projectPath string) string {
	return ResolveProjectPath(r.SolutionDir, projectPath)
}

// RelativePath returns path relative to the solution directory in
// normalized form. Paths that cannot be made relative are returned
// normalized but otherwise unchanged.
func (r *PathResolver) RelativePath(path string) string {
	abs := r.ResolvePath(path)
	rel, err := filepath.Rel(r.SolutionDir, abs)
	if err != nil {
		return NormalizePath(path)
	}
	return NormalizePath(filepath.ToSlash(rel))
}

// Rebase re-expresses a project path stored relative to one solution
// directory relative to another one, as needed when a solution is saved to
// a different directory than it was read from.
func Rebase(fromDir, toDir, projectPath string) string {
	if filepath.IsAbs(ConvertToSystemPath(projectPath)) || filepath.Clean(fromDir) == filepath.Clean(toDir) {
		return NormalizePath(projectPath)
	}
	return NewPathResolver(toDir).RelativePath(ResolveProjectPath(fromDir, projectPath))
}

// ResolveProjectPath resolves a project path from a solution file
func ResolveProjectPath(solutionDir, projectPath string) string {
	if projectPath == "" {
		return ""
	}

	systemPath := ConvertToSystemPath(projectPath)
	if filepath.IsAbs(systemPath) {
		return filepath.Clean(systemPath)
	}

	return filepath.Clean(filepath.Join(solutionDir, systemPath))
}
