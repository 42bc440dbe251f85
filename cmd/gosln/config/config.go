// Package config loads gosln.yaml, the optional settings file of the gosln
// command line tool.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/willibrandon/gosln/observability"
	"github.com/willibrandon/gosln/solution"
	"gopkg.in/yaml.v3"
)

// FileName is the name gosln looks for next to a solution or in the
// working directory.
const FileName = "gosln.yaml"

// MaxFileSize bounds the size of a settings file.
const MaxFileSize = 1024 * 1024

// Config is the root of a gosln.yaml file
type Config struct {
	// Verbosity is the default console verbosity (quiet, normal, detailed, diagnostic)
	Verbosity string `yaml:"verbosity" validate:"omitempty,oneof=quiet normal detailed diagnostic"`

	// LogLevel overrides the diagnostic log level derived from verbosity
	LogLevel string `yaml:"logLevel" validate:"omitempty,loglevel"`

	// Tracing configures the OpenTelemetry exporter used with --trace
	Tracing Tracing `yaml:"tracing"`

	// ProjectTypes are added ahead of the project types a solution declares
	ProjectTypes []ProjectType `yaml:"projectTypes" validate:"dive"`
}

// Tracing holds exporter settings
type Tracing struct {
	Exporter     string  `yaml:"exporter" validate:"omitempty,oneof=stdout otlp none"`
	Endpoint     string  `yaml:"endpoint" validate:"required_if=Exporter otlp"`
	SamplingRate float64 `yaml:"samplingRate" validate:"gte=0,lte=1"`
	Environment  string  `yaml:"environment"`
}

// ProjectType is a project type definition as written in gosln.yaml. An
// entry without name, id and extension is the default type, whose rules
// apply to every project.
type ProjectType struct {
	Name      string `yaml:"name"`
	TypeID    string `yaml:"typeId" validate:"omitempty,guid"`
	Extension string `yaml:"extension"`
	BasedOn   string `yaml:"basedOn"`
	Buildable *bool  `yaml:"buildable"`
	Rules     []Rule `yaml:"rules" validate:"dive"`
}

// Rule is a configuration rule as written in gosln.yaml. Solution is a
// "BuildType|Platform" pattern where "*" or an empty half matches anything.
type Rule struct {
	Dimension string `yaml:"dimension" validate:"required,dimension"`
	Solution  string `yaml:"solution"`
	Project   string `yaml:"project"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("guid", validateGUID)
	_ = validate.RegisterValidation("dimension", validateDimension)
	_ = validate.RegisterValidation("loglevel", validateLogLevel)
}

// validateGUID accepts ids with or without braces.
func validateGUID(fl validator.FieldLevel) bool {
	_, ok := solution.ParseGUID(fl.Field().String())
	return ok
}

func validateDimension(fl validator.FieldLevel) bool {
	_, ok := solution.ParseBuildDimension(fl.Field().String())
	return ok
}

func validateLogLevel(fl validator.FieldLevel) bool {
	_, err := observability.ParseLogLevel(fl.Field().String())
	return err == nil
}

// Parse decodes and validates gosln.yaml content.
func Parse(data []byte) (*Config, error) {
	if len(data) > MaxFileSize {
		return nil, fmt.Errorf("configuration exceeds %d bytes", MaxFileSize)
	}

	cfg := NewDefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads the configuration at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault loads path when given, otherwise the first gosln.yaml found
// by FindConfigFile starting at dir. It returns the path that was used, or
// "" when defaults apply.
func LoadOrDefault(path, dir string) (*Config, string, error) {
	if path == "" {
		path = FindConfigFile(dir)
	}
	if path == "" {
		return NewDefaultConfig(), "", nil
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// Validate checks field constraints and that every project type converts.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if _, err := c.SolutionProjectTypes(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// SolutionProjectTypes converts the configured project types.
func (c *Config) SolutionProjectTypes() ([]solution.ProjectType, error) {
	types := make([]solution.ProjectType, 0, len(c.ProjectTypes))
	for i, pt := range c.ProjectTypes {
		converted, err := pt.toSolution()
		if err != nil {
			return nil, fmt.Errorf("projectTypes[%d]: %w", i, err)
		}
		types = append(types, converted)
	}
	return types, nil
}

func (pt ProjectType) toSolution() (solution.ProjectType, error) {
	result := solution.ProjectType{
		Name:      strings.TrimSpace(pt.Name),
		Extension: solution.NormalizeExtension(pt.Extension),
		BasedOn:   strings.TrimSpace(pt.BasedOn),
	}
	if id, ok := solution.ParseGUID(pt.TypeID); ok {
		result.ProjectTypeID = id
	}
	if pt.Buildable != nil {
		result.NotBuildable = !*pt.Buildable
	}
	for i, r := range pt.Rules {
		rule, err := r.toSolution()
		if err != nil {
			return solution.ProjectType{}, fmt.Errorf("rules[%d]: %w", i, err)
		}
		result.ConfigurationRules = append(result.ConfigurationRules, rule)
	}
	return result, nil
}

func (r Rule) toSolution() (solution.ConfigurationRule, error) {
	dim, ok := solution.ParseBuildDimension(r.Dimension)
	if !ok {
		return solution.ConfigurationRule{}, fmt.Errorf("unknown dimension %q", r.Dimension)
	}
	buildType, platform := solution.ParseSolutionConfigurationPattern(r.Solution)

	value := strings.TrimSpace(r.Project)
	switch dim {
	case solution.DimensionBuild, solution.DimensionDeploy:
		if value == "" {
			value = solution.TrueValue
		}
		b, ok := solution.ParseBoolValue(value)
		if !ok {
			return solution.ConfigurationRule{}, fmt.Errorf("%s rule needs true or false, got %q", dim, r.Project)
		}
		value = solution.BoolValue(b)
	default:
		if value == "" {
			return solution.ConfigurationRule{}, fmt.Errorf("%s rule needs a project value", dim)
		}
	}
	return solution.NewConfigurationRule(dim, buildType, platform, value), nil
}

// TracerConfig returns the tracer settings for the given CLI version.
func (c *Config) TracerConfig(version string) observability.TracerConfig {
	tc := observability.DefaultTracerConfig()
	tc.ServiceVersion = version
	if c.Tracing.Exporter != "" {
		tc.ExporterType = c.Tracing.Exporter
	}
	if c.Tracing.Endpoint != "" {
		tc.OTLPEndpoint = c.Tracing.Endpoint
	}
	if c.Tracing.Environment != "" {
		tc.Environment = c.Tracing.Environment
	}
	tc.SamplingRate = c.Tracing.SamplingRate
	return tc
}
