package output

import (
	"encoding/json"
	"io"
	"time"
)

// JSON output types matching the schema contract

// ConvertOutput represents the JSON output for the convert command
type ConvertOutput struct {
	SchemaVersion string `json:"schemaVersion"`
	Input         string `json:"input"`
	Output        string `json:"output"`
	Projects      int    `json:"projects"`
	Rules         int    `json:"rules"`
	ElapsedMs     int64  `json:"elapsedMs"`
}

// RulesOutput represents the JSON output for the rules command
type RulesOutput struct {
	SchemaVersion string        `json:"schemaVersion"`
	Solution      string        `json:"solution"`
	Projects      []ProjectInfo `json:"projects"`
	ElapsedMs     int64         `json:"elapsedMs"`
}

// ProjectInfo is a project and its configuration rules in JSON output
type ProjectInfo struct {
	Name  string `json:"name"`
	Path  string `json:"path"`
	ID    string `json:"id"`
	Type  string `json:"type,omitempty"`
	Rules []Rule `json:"rules"`
}

// Rule represents a configuration rule in JSON output
type Rule struct {
	Dimension string `json:"dimension"`
	Solution  string `json:"solution"`
	Project   string `json:"project"`
}

// MatrixOutput represents the JSON output for the matrix command
type MatrixOutput struct {
	SchemaVersion string          `json:"schemaVersion"`
	Solution      string          `json:"solution"`
	Projects      []ProjectMatrix `json:"projects"`
	ElapsedMs     int64           `json:"elapsedMs"`
}

// ProjectMatrix is one project's expanded configuration matrix
type ProjectMatrix struct {
	Name      string       `json:"name"`
	Path      string       `json:"path"`
	Supported bool         `json:"supported"`
	Cells     []MatrixCell `json:"cells"`
}

// MatrixCell maps one solution configuration to a project configuration
type MatrixCell struct {
	Solution  string `json:"solution"`
	BuildType string `json:"buildType"`
	Platform  string `json:"platform"`
	Build     bool   `json:"build"`
	Deploy    bool   `json:"deploy"`
}

// TypesOutput represents the JSON output for the types command
type TypesOutput struct {
	SchemaVersion string        `json:"schemaVersion"`
	Solution      string        `json:"solution,omitempty"`
	Types         []ProjectType `json:"types"`
}

// ProjectType represents a project type in JSON output
type ProjectType struct {
	Name      string `json:"name,omitempty"`
	TypeID    string `json:"typeId,omitempty"`
	Extension string `json:"extension,omitempty"`
	BasedOn   string `json:"basedOn,omitempty"`
	Buildable bool   `json:"buildable"`
	Source    string `json:"source"` // "built-in", "solution" or "config"
	Rules     []Rule `json:"rules"`
}

// DetectOutput represents the JSON output for the detect command
type DetectOutput struct {
	SchemaVersion string   `json:"schemaVersion"`
	Directory     string   `json:"directory"`
	Found         bool     `json:"found"`
	Ambiguous     bool     `json:"ambiguous"`
	Solution      string   `json:"solution,omitempty"`
	Format        string   `json:"format,omitempty"`
	Candidates    []string `json:"candidates"`
}

// WriteJSON writes a JSON object to the specified writer (typically stdout)
// When --format json is used, ALL JSON goes to stdout and ALL messages go to stderr
func WriteJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// MeasureElapsed returns elapsed time in milliseconds since start
func MeasureElapsed(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}

// CurrentSchemaVersion is the schema version for all JSON outputs
const CurrentSchemaVersion = "1.0.0"

// NewRulesOutput creates a new RulesOutput with schema version
func NewRulesOutput(solution string, start time.Time) *RulesOutput {
	return &RulesOutput{
		SchemaVersion: CurrentSchemaVersion,
		Solution:      solution,
		Projects:      []ProjectInfo{},
		ElapsedMs:     MeasureElapsed(start),
	}
}

// NewMatrixOutput creates a new MatrixOutput with schema version
func NewMatrixOutput(solution string, start time.Time) *MatrixOutput {
	return &MatrixOutput{
		SchemaVersion: CurrentSchemaVersion,
		Solution:      solution,
		Projects:      []ProjectMatrix{},
		ElapsedMs:     MeasureElapsed(start),
	}
}

// NewTypesOutput creates a new TypesOutput with schema version
func NewTypesOutput(solution string) *TypesOutput {
	return &TypesOutput{
		SchemaVersion: CurrentSchemaVersion,
		Solution:      solution,
		Types:         []ProjectType{},
	}
}

// NewDetectOutput creates a new DetectOutput with schema version
func NewDetectOutput(directory string) *DetectOutput {
	return &DetectOutput{
		SchemaVersion: CurrentSchemaVersion,
		Directory:     directory,
		Candidates:    []string{},
	}
}
