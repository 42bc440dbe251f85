package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// TracerName is the tracer name for gosln operations
	TracerName = "github.com/willibrandon/gosln"
)

// Common attribute keys
const (
	AttrSolutionPath   = attribute.Key("sln.path")
	AttrSolutionFormat = attribute.Key("sln.format")
	AttrOperation      = attribute.Key("sln.operation")
	AttrProjectCount   = attribute.Key("sln.project.count")
	AttrProjectName    = attribute.Key("sln.project.name")
	AttrRuleCount      = attribute.Key("sln.rule.count")
	AttrRuleDimension  = attribute.Key("sln.rule.dimension")
	AttrRuleSolution   = attribute.Key("sln.rule.solution")
	AttrRuleProject    = attribute.Key("sln.rule.project")
	AttrRuleScope      = attribute.Key("sln.rule.scope")
)

// Solution operation names, used for span names and metric labels.
const (
	OperationLoad    = "load"
	OperationSave    = "save"
	OperationDistill = "distill"
)

// StartSolutionLoadSpan starts a span for reading a solution file
func StartSolutionLoadSpan(ctx context.Context, path, format string) (context.Context, trace.Span) {
	return StartSpan(ctx, TracerName, "solution.load",
		trace.WithAttributes(
			AttrSolutionPath.String(path),
			AttrSolutionFormat.String(format),
			AttrOperation.String(OperationLoad),
		),
	)
}

// StartSolutionSaveSpan starts a span for writing a solution file
func StartSolutionSaveSpan(ctx context.Context, path, format string, projectCount int) (context.Context, trace.Span) {
	return StartSpan(ctx, TracerName, "solution.save",
		trace.WithAttributes(
			AttrSolutionPath.String(path),
			AttrSolutionFormat.String(format),
			AttrProjectCount.Int(projectCount),
			AttrOperation.String(OperationSave),
		),
	)
}

// StartDistillSpan starts a span for distilling one project's configuration matrix
func StartDistillSpan(ctx context.Context, projectName string) (context.Context, trace.Span) {
	return StartSpan(ctx, TracerName, "solution.distill",
		trace.WithAttributes(
			AttrProjectName.String(projectName),
			AttrOperation.String(OperationDistill),
		),
	)
}

// RecordRuleCount records the number of rules produced on the current span
func RecordRuleCount(ctx context.Context, count int) {
	SetAttributes(ctx, AttrRuleCount.Int(count))
}

// RecordDistilledRule adds a "rule" event for one emitted rule to the current span
func RecordDistilledRule(ctx context.Context, scope, dimension, solution, project string) {
	AddEvent(ctx, "rule",
		AttrRuleScope.String(scope),
		AttrRuleDimension.String(dimension),
		AttrRuleSolution.String(solution),
		AttrRuleProject.String(project),
	)
}

// ObserveOperation records the duration of a solution operation started at start.
func ObserveOperation(operation, format string, start time.Time) {
	SolutionOperationDuration.WithLabelValues(operation, format).Observe(time.Since(start).Seconds())
}

// EndSpanWithError ends a span with an error status
func EndSpanWithError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
