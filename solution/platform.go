package solution

import "strings"

// Platform spellings used by solutions and .NET projects.
const (
	PlatformAnyCPU      = "Any CPU"
	PlatformAnyCPUShort = "AnyCPU"
)

// CanonicalPlatform returns the comparison form of a platform name.
// "Any CPU" and "AnyCPU" both canonicalize to "AnyCPU".
func CanonicalPlatform(platform string) string {
	if strings.EqualFold(platform, PlatformAnyCPU) {
		return PlatformAnyCPUShort
	}
	return platform
}

// PlatformsEqual compares two platform names case-insensitively after
// canonicalization.
func PlatformsEqual(a, b string) bool {
	return strings.EqualFold(CanonicalPlatform(a), CanonicalPlatform(b))
}

// platformKey is the index key for a platform name.
func platformKey(platform string) string {
	return strings.ToLower(CanonicalPlatform(platform))
}
