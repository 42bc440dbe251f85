package config

import (
	"os"
	"path/filepath"
)

// DefaultConfigLocations returns the gosln.yaml locations to search in
// precedence order: the given directory (usually the solution's), the
// current directory, then the user config directory.
func DefaultConfigLocations(dir string) []string {
	var locations []string

	if dir != "" {
		if abs, err := filepath.Abs(dir); err == nil {
			locations = append(locations, filepath.Join(abs, FileName))
		}
	}

	if cwd, err := os.Getwd(); err == nil {
		locations = appendUnique(locations, filepath.Join(cwd, FileName))
	}

	if userDir, err := os.UserConfigDir(); err == nil {
		locations = appendUnique(locations, filepath.Join(userDir, "gosln", FileName))
	}

	return locations
}

func appendUnique(locations []string, loc string) []string {
	for _, existing := range locations {
		if existing == loc {
			return locations
		}
	}
	return append(locations, loc)
}

// FindConfigFile finds the first existing gosln.yaml file
func FindConfigFile(dir string) string {
	for _, loc := range DefaultConfigLocations(dir) {
		if info, err := os.Stat(loc); err == nil && !info.IsDir() {
			return loc
		}
	}
	return ""
}

// NewDefaultConfig creates a new config with default values
func NewDefaultConfig() *Config {
	return &Config{
		Verbosity: "normal",
		Tracing: Tracing{
			Exporter:     "stdout",
			SamplingRate: 1.0,
		},
	}
}
