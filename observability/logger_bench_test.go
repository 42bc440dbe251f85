package observability

import (
	"context"
	"io"
	"testing"
)

func BenchmarkLogger_Info(b *testing.B) {
	logger := NewLogger(io.Discard, InfoLevel)

	b.ReportAllocs()

	for b.Loop() {
		logger.Info("Loaded solution")
	}
}

func BenchmarkLogger_InfoWithArgs(b *testing.B) {
	logger := NewLogger(io.Discard, InfoLevel)

	b.ReportAllocs()

	for b.Loop() {
		logger.Info("Project {Project} has {RuleCount} rules", "App", 3)
	}
}

func BenchmarkLogger_WarnContext(b *testing.B) {
	logger := NewLogger(io.Discard, InfoLevel)
	ctx := context.Background()

	b.ReportAllocs()

	for b.Loop() {
		logger.WarnContext(ctx, "Unknown project type {TypeID}", "{00000000-0000-0000-0000-000000000000}")
	}
}

// Distillation logs at verbose level per cell; with the default level those
// calls must stay cheap.
func BenchmarkLogger_VerboseFiltered(b *testing.B) {
	logger := NewLogger(io.Discard, WarnLevel)

	b.ReportAllocs()

	for b.Loop() {
		logger.Verbose("Cell {Solution} maps to {Project}", "Release|x64", "Release|AnyCPU")
	}
}

func BenchmarkLogger_ForContext(b *testing.B) {
	logger := NewLogger(io.Discard, InfoLevel)

	b.ReportAllocs()

	for b.Loop() {
		logger.ForContext("Solution", "App.sln").Info("Parsed {Count} projects", 12)
	}
}

func BenchmarkNullLogger(b *testing.B) {
	logger := NewNullLogger()

	b.ReportAllocs()

	for b.Loop() {
		logger.Info("Project {Project} has {RuleCount} rules", "App", 3)
	}
}
