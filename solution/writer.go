package solution

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/willibrandon/gosln/observability"
)

// Writer defines the interface for writing solution files
type Writer interface {
	// Write renders the solution to out
	Write(sol *Solution, out io.Writer) error

	// CanWrite checks if this writer produces the given file
	CanWrite(path string) bool
}

// GetWriter returns the appropriate writer for a solution file. Filters
// (.slnf) cannot be written.
func GetWriter(path string, opts ...Option) (Writer, error) {
	if path == "" {
		return nil, fmt.Errorf("path cannot be empty")
	}

	switch format := GetSolutionFormat(path); format {
	case FormatSln:
		return NewSlnWriter(opts...), nil
	case FormatSlnx:
		return NewSlnxWriter(opts...), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s (supported: .sln, .slnx)", filepath.Ext(path))
	}
}

// SaveSolution writes the solution to path in the format its extension
// names. When path is in another directory than the solution, project and
// item paths are rebased first; sol itself is not modified.
func SaveSolution(ctx context.Context, sol *Solution, path string, opts ...Option) (err error) {
	format := GetSolutionFormat(path)
	_, span := observability.StartSolutionSaveSpan(ctx, path, format, len(sol.Projects))
	defer func() { observability.EndSpanWithError(span, err) }()
	defer observability.ObserveOperation(observability.OperationSave, format, time.Now())

	writer, err := GetWriter(path, opts...)
	if err != nil {
		return err
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	if filepath.Dir(absPath) != sol.SolutionDir {
		sol = sol.Relocate(absPath)
	}

	var buf bytes.Buffer
	if err := writer.Write(sol, &buf); err != nil {
		return err
	}
	if err := os.WriteFile(absPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", absPath, err)
	}
	return nil
}

// Convert loads the solution at in and saves it at out. Converting .sln to
// .slnx distills configuration lines into rules; the reverse expands them.
func Convert(ctx context.Context, in, out string, opts ...Option) (*Solution, error) {
	if _, err := GetWriter(out, opts...); err != nil {
		return nil, err
	}

	sol, err := LoadSolution(ctx, in, opts...)
	if err != nil {
		return nil, err
	}
	if err := SaveSolution(ctx, sol, out, opts...); err != nil {
		return nil, err
	}
	return sol, nil
}
