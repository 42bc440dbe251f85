package observability

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/willibrandon/mtlog"
	"github.com/willibrandon/mtlog/core"
	"github.com/willibrandon/mtlog/sinks"
)

// Logger is the structured logger used by the solution package and the
// gosln command. Messages are mtlog templates such as
// "Project {Project} has {RuleCount} rules".
type Logger interface {
	// Verbose logs detailed diagnostic information
	Verbose(messageTemplate string, args ...any)
	VerboseContext(ctx context.Context, messageTemplate string, args ...any)

	// Debug logs debugging information
	Debug(messageTemplate string, args ...any)
	DebugContext(ctx context.Context, messageTemplate string, args ...any)

	// Info logs informational messages
	Info(messageTemplate string, args ...any)
	InfoContext(ctx context.Context, messageTemplate string, args ...any)

	// Warn logs warning messages
	Warn(messageTemplate string, args ...any)
	WarnContext(ctx context.Context, messageTemplate string, args ...any)

	// Error logs error messages
	Error(messageTemplate string, args ...any)
	ErrorContext(ctx context.Context, messageTemplate string, args ...any)

	// Fatal logs fatal error messages
	Fatal(messageTemplate string, args ...any)
	FatalContext(ctx context.Context, messageTemplate string, args ...any)

	// ForContext creates a child logger with additional context
	ForContext(key string, value any) Logger

	// WithProperty adds a property to the logger
	WithProperty(key string, value any) Logger
}

// mtlogAdapter wraps mtlog logger to implement the Logger interface
type mtlogAdapter struct {
	logger core.Logger
}

// NewLogger creates a logger writing rendered templates to output.
func NewLogger(output io.Writer, level LogLevel) Logger {
	return &mtlogAdapter{
		logger: mtlog.New(
			mtlog.WithSink(sinks.NewConsoleSinkWithWriter(output)),
			mtlog.WithTimestamp(),
			level.minimum(),
		),
	}
}

// NewDefaultLogger creates a logger on stderr at Warn level. Stdout is
// reserved for command output.
func NewDefaultLogger() Logger {
	return NewLogger(os.Stderr, WarnLevel)
}

func (l LogLevel) minimum() mtlog.Option {
	switch l {
	case VerboseLevel:
		return mtlog.Verbose()
	case DebugLevel:
		return mtlog.Debug()
	case WarnLevel:
		return mtlog.Warning()
	case ErrorLevel:
		return mtlog.Error()
	case FatalLevel:
		return mtlog.WithMinimumLevel(core.FatalLevel)
	default:
		return mtlog.Information()
	}
}

// Verbose implements Logger.Verbose
func (a *mtlogAdapter) Verbose(messageTemplate string, args ...any) {
	a.logger.Verbose(messageTemplate, args...)
}

// VerboseContext implements Logger.VerboseContext
func (a *mtlogAdapter) VerboseContext(ctx context.Context, messageTemplate string, args ...any) {
	a.logger.VerboseContext(ctx, messageTemplate, args...)
}

// Debug implements Logger.Debug
func (a *mtlogAdapter) Debug(messageTemplate string, args ...any) {
	a.logger.Debug(messageTemplate, args...)
}

// DebugContext implements Logger.DebugContext
func (a *mtlogAdapter) DebugContext(ctx context.Context, messageTemplate string, args ...any) {
	a.logger.DebugContext(ctx, messageTemplate, args...)
}

// Info implements Logger.Info
func (a *mtlogAdapter) Info(messageTemplate string, args ...any) {
	a.logger.Info(messageTemplate, args...)
}

// InfoContext implements Logger.InfoContext
func (a *mtlogAdapter) InfoContext(ctx context.Context, messageTemplate string, args ...any) {
	a.logger.InfoContext(ctx, messageTemplate, args...)
}

// Warn implements Logger.Warn
func (a *mtlogAdapter) Warn(messageTemplate string, args ...any) {
	a.logger.Warn(messageTemplate, args...)
}

// WarnContext implements Logger.WarnContext
func (a *mtlogAdapter) WarnContext(ctx context.Context, messageTemplate string, args ...any) {
	a.logger.WarnContext(ctx, messageTemplate, args...)
}

// Error implements Logger.Error
func (a *mtlogAdapter) Error(messageTemplate string, args ...any) {
	a.logger.Error(messageTemplate, args...)
}

// ErrorContext implements Logger.ErrorContext
func (a *mtlogAdapter) ErrorContext(ctx context.Context, messageTemplate string, args ...any) {
	a.logger.ErrorContext(ctx, messageTemplate, args...)
}

// Fatal implements Logger.Fatal
func (a *mtlogAdapter) Fatal(messageTemplate string, args ...any) {
	a.logger.Fatal(messageTemplate, args...)
}

// FatalContext implements Logger.FatalContext
func (a *mtlogAdapter) FatalContext(ctx context.Context, messageTemplate string, args ...any) {
	a.logger.FatalContext(ctx, messageTemplate, args...)
}

// ForContext implements Logger.ForContext
func (a *mtlogAdapter) ForContext(key string, value any) Logger {
	return &mtlogAdapter{
		logger: a.logger.ForContext(key, value),
	}
}

// WithProperty implements Logger.WithProperty (alias for ForContext)
func (a *mtlogAdapter) WithProperty(key string, value any) Logger {
	return a.ForContext(key, value)
}

// LogLevel represents log verbosity level
type LogLevel int

const (
	// VerboseLevel is the most detailed logging level.
	VerboseLevel LogLevel = iota
	// DebugLevel is for debug messages.
	DebugLevel
	// InfoLevel is for informational messages.
	InfoLevel
	// WarnLevel is for warning messages.
	WarnLevel
	// ErrorLevel is for error messages.
	ErrorLevel
	// FatalLevel is for fatal error messages.
	FatalLevel
)

// String returns the lower-case level name.
func (l LogLevel) String() string {
	switch l {
	case VerboseLevel:
		return "verbose"
	case DebugLevel:
		return "debug"
	case InfoLevel:
		return "info"
	case WarnLevel:
		return "warn"
	case ErrorLevel:
		return "error"
	case FatalLevel:
		return "fatal"
	default:
		return fmt.Sprintf("LogLevel(%d)", int(l))
	}
}

// ParseLogLevel parses a level name as written in gosln.yaml. "warning" and
// "information" are accepted as aliases.
func ParseLogLevel(name string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "verbose", "trace":
		return VerboseLevel, nil
	case "debug":
		return DebugLevel, nil
	case "info", "information", "":
		return InfoLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	case "fatal":
		return FatalLevel, nil
	default:
		return InfoLevel, fmt.Errorf("unknown log level %q", name)
	}
}

// NullLogger is a logger that discards all output
type nullLogger struct{}

// NewNullLogger creates a logger that discards all output
func NewNullLogger() Logger {
	return &nullLogger{}
}

func (n *nullLogger) Verbose(messageTemplate string, args ...any)                             {}
func (n *nullLogger) VerboseContext(ctx context.Context, messageTemplate string, args ...any) {}
func (n *nullLogger) Debug(messageTemplate string, args ...any)                               {}
func (n *nullLogger) DebugContext(ctx context.Context, messageTemplate string, args ...any)   {}
func (n *nullLogger) Info(messageTemplate string, args ...any)                                {}
func (n *nullLogger) InfoContext(ctx context.Context, messageTemplate string, args ...any)    {}
func (n *nullLogger) Warn(messageTemplate string, args ...any)                                {}
func (n *nullLogger) WarnContext(ctx context.Context, messageTemplate string, args ...any)    {}
func (n *nullLogger) Error(messageTemplate string, args ...any)                               {}
func (n *nullLogger) ErrorContext(ctx context.Context, messageTemplate string, args ...any)   {}
func (n *nullLogger) Fatal(messageTemplate string, args ...any)                               {}
func (n *nullLogger) FatalContext(ctx context.Context, messageTemplate string, args ...any)   {}
func (n *nullLogger) ForContext(key string, value any) Logger                                 { return n }
func (n *nullLogger) WithProperty(key string, value any) Logger                               { return n }
