package solution

import (
	"strings"

	"github.com/google/uuid"
)

// idNamespace seeds the name-based ids of .slnx entries that carry no Id attribute.
var idNamespace = uuid.MustParse("2D1E8C5A-6A5F-4C2B-9E2B-4B2F5E0C7A11")

// FormatGUID renders an id the way solution files spell it: upper case, in braces.
func FormatGUID(id uuid.UUID) string {
	return "{" + strings.ToUpper(id.String()) + "}"
}

// ParseGUID parses an id with or without braces.
func ParseGUID(s string) (uuid.UUID, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// DefaultProjectID derives a stable project id from the project path.
func DefaultProjectID(projectPath string) uuid.UUID {
	return uuid.NewSHA1(idNamespace, []byte("project:"+strings.ToLower(NormalizePath(projectPath))))
}

// DefaultFolderID derives a stable folder id from the folder path ("/src/lib/").
func DefaultFolderID(folderPath string) uuid.UUID {
	return uuid.NewSHA1(idNamespace, []byte("folder:"+strings.ToLower(folderPath)))
}
