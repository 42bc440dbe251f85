package solution

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Detector helps detect and identify solution files
type Detector struct {
	// SearchDir is the directory to search for solution files
	SearchDir string
}

// NewDetector creates a new solution file detector
func NewDetector(searchDir string) *Detector {
	if searchDir == "" {
		searchDir = "."
	}
	return &Detector{SearchDir: searchDir}
}

// IsSolutionFile checks if a file path has a solution file extension
func IsSolutionFile(path string) bool {
	if path == "" {
		return false
	}
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".sln" || ext == ".slnx" || ext == ".slnf"
}

// IsProjectFile checks if a file path has the extension of a built-in
// project type (.csproj, .vcxproj, .shproj, ...).
func IsProjectFile(path string) bool {
	if path == "" {
		return false
	}
	ext := NormalizeExtension(filepath.Ext(path))
	if ext == "" {
		return false
	}
	_, _, ok := BuiltInProjectTypes().TryGetProjectType(uuid.Nil, "", ext)
	return ok
}

// Solution file formats, as returned by GetSolutionFormat.
const (
	FormatSln  = "sln"
	FormatSlnx = "slnx"
	FormatSlnf = "slnf"
)

// GetSolutionFormat returns the solution format based on file extension
func GetSolutionFormat(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".sln":
		return FormatSln
	case ".slnx":
		return FormatSlnx
	case ".slnf":
		return FormatSlnf
	default:
		return ""
	}
}

// DetectionResult contains the result of solution file detection
type DetectionResult struct {
	// Found indicates if any solution file was found
	Found bool

	// Ambiguous indicates if multiple solution files were found
	Ambiguous bool

	// SolutionPath is the path to the found solution file
	SolutionPath string

	// FoundFiles lists all solution files found
	FoundFiles []string

	// Format is the detected solution format
	Format string
}

// DetectSolution searches for solution files in the configured directory.
// When several are found, the ones closest to the search directory are
// considered, and a .slnx shadows a .sln of the same name next to it (the
// usual state after a migration). Anything else is reported as ambiguous.
func (d *Detector) DetectSolution() (*DetectionResult, error) {
	result := &DetectionResult{
		FoundFiles: []string{},
	}

	err := filepath.WalkDir(d.SearchDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			// Skip directories we can't read
			if errors.Is(err, fs.ErrPermission) {
				return nil
			}
			return err
		}

		if entry.IsDir() {
			// Don't recurse into hidden directories or build directories
			name := entry.Name()
			if path != d.SearchDir && (strings.HasPrefix(name, ".") || name == "node_modules" || name == "bin" || name == "obj") {
				return filepath.SkipDir
			}
			return nil
		}

		if IsSolutionFile(path) {
			absPath, err := filepath.Abs(path)
			if err != nil {
				absPath = path
			}
			result.FoundFiles = append(result.FoundFiles, absPath)
		}

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("error searching for solution files: %w", err)
	}
	sort.Strings(result.FoundFiles)

	candidates := preferredSolutions(result.FoundFiles)
	switch len(candidates) {
	case 0:
		result.Found = false
	case 1:
		result.Found = true
		result.SolutionPath = candidates[0]
		result.Format = GetSolutionFormat(result.SolutionPath)
	default:
		result.Found = true
		result.Ambiguous = true
	}
	return result, nil
}

// preferredSolutions narrows found files to the shallowest directory and
// drops a .sln that has a sibling .slnx with the same base name.
func preferredSolutions(found []string) []string {
	if len(found) == 0 {
		return nil
	}

	depth := func(p string) int { return strings.Count(filepath.ToSlash(p), "/") }
	shallowest := depth(found[0])
	for _, f := range found[1:] {
		shallowest = min(shallowest, depth(f))
	}

	present := make(map[string]bool, len(found))
	for _, f := range found {
		present[strings.ToLower(f)] = true
	}

	var candidates []string
	for _, f := range found {
		if depth(f) != shallowest {
			continue
		}
		if GetSolutionFormat(f) == FormatSln && present[strings.ToLower(f)+"x"] {
			continue
		}
		candidates = append(candidates, f)
	}
	return candidates
}

// ValidateSolutionFile checks if a solution file exists and is readable
func ValidateSolutionFile(path string) error {
	if !IsSolutionFile(path) {
		return fmt.Errorf("not a solution file (must have .sln, .slnx, or .slnf extension): %s", path)
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("solution file not found: %s", path)
		}
		return fmt.Errorf("cannot access solution file: %w", err)
	}

	if info.IsDir() {
		return fmt.Errorf("path is a directory, not a solution file: %s", path)
	}

	// Try to open the file to ensure it's readable
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("cannot read solution file: %w", err)
	}
	_ = file.Close()

	return nil
}
