package solution

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/willibrandon/gosln/observability"
)

// Parser defines the interface for parsing solution files
type Parser interface {
	// Parse reads and parses a solution file
	Parse(path string) (*Solution, error)

	// CanParse checks if this parser supports the given file
	CanParse(path string) bool
}

// Option configures parsers and writers.
type Option func(*options)

type options struct {
	ctx          context.Context
	logger       observability.Logger
	projectTypes []ProjectType
}

func newOptions(opts []Option) options {
	o := options{ctx: context.Background(), logger: observability.NewNullLogger()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLogger sets the logger used for table construction errors and ignored lines.
func WithLogger(logger observability.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithProjectTypes adds project type definitions ahead of the ones declared
// in the file. For legacy files, which cannot declare project types, these
// are the only solution-local types.
func WithProjectTypes(types ...ProjectType) Option {
	return func(o *options) {
		o.projectTypes = append(o.projectTypes, types...)
	}
}

// withContext parents the spans a parser starts on ctx.
func withContext(ctx context.Context) Option {
	return func(o *options) {
		if ctx != nil {
			o.ctx = ctx
		}
	}
}

// GetParser returns the appropriate parser for a solution file
func GetParser(path string, opts ...Option) (Parser, error) {
	if path == "" {
		return nil, fmt.Errorf("path cannot be empty")
	}

	switch format := GetSolutionFormat(path); format {
	case FormatSln:
		return NewSlnParser(opts...), nil
	case FormatSlnx:
		return NewSlnxParser(opts...), nil
	case FormatSlnf:
		return NewSlnfParser(opts...), nil
	default:
		return nil, fmt.Errorf("unsupported solution format: %s (supported: .sln, .slnx, .slnf)", strings.ToLower(filepath.Ext(path)))
	}
}

// ParseSolution is a convenience function that automatically selects the right parser
func ParseSolution(path string, opts ...Option) (*Solution, error) {
	parser, err := GetParser(path, opts...)
	if err != nil {
		return nil, err
	}

	return parser.Parse(path)
}

// LoadSolution parses a solution inside a "solution.load" span and records
// the load duration.
func LoadSolution(ctx context.Context, path string, opts ...Option) (sol *Solution, err error) {
	format := GetSolutionFormat(path)
	ctx, span := observability.StartSolutionLoadSpan(ctx, path, format)
	defer func() { observability.EndSpanWithError(span, err) }()
	defer observability.ObserveOperation(observability.OperationLoad, format, time.Now())

	sol, err = ParseSolution(path, append(opts, withContext(ctx))...)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(observability.AttrProjectCount.Int(len(sol.Projects)))
	return sol, nil
}
