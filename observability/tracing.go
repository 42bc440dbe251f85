package observability

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Exporter types accepted in TracerConfig.ExporterType.
const (
	ExporterStdout = "stdout"
	ExporterOTLP   = "otlp"
	ExporterNone   = "none"
)

// TracerConfig holds OpenTelemetry tracer configuration
type TracerConfig struct {
	// ServiceName is the name of the service
	ServiceName string

	// ServiceVersion is the version of the service
	ServiceVersion string

	// Environment is the deployment environment (production, staging, etc.)
	Environment string

	// ExporterType is the type of exporter (otlp, stdout, none)
	ExporterType string

	// OTLPEndpoint is the OTLP collector endpoint (e.g., localhost:4317)
	OTLPEndpoint string

	// SamplingRate is the trace sampling rate (0.0 to 1.0)
	SamplingRate float64

	// Writer receives the stdout exporter's spans. Nil means os.Stderr so
	// that spans never mix with command output.
	Writer io.Writer
}

// DefaultTracerConfig returns default tracer configuration
func DefaultTracerConfig() TracerConfig {
	return TracerConfig{
		ServiceName:    "gosln",
		ServiceVersion: "0.1.0",
		Environment:    "development",
		ExporterType:   ExporterStdout,
		SamplingRate:   1.0,
	}
}

// SetupTracing initializes OpenTelemetry tracing and registers the provider
// globally. The "none" exporter installs a provider that samples nothing.
func SetupTracing(ctx context.Context, config TracerConfig) (*sdktrace.TracerProvider, error) {
	if config.SamplingRate < 0 || config.SamplingRate > 1 {
		return nil, fmt.Errorf("sampling rate %v out of range [0, 1]", config.SamplingRate)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(config.ServiceName),
			semconv.ServiceVersion(config.ServiceVersion),
			semconv.DeploymentEnvironment(config.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	opts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}

	switch config.ExporterType {
	case ExporterOTLP:
		if config.OTLPEndpoint == "" {
			return nil, fmt.Errorf("OTLP exporter needs an endpoint")
		}
		exporter, err := createOTLPExporter(ctx, config.OTLPEndpoint)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
		opts = append(opts, sdktrace.WithBatcher(exporter), sdktrace.WithSampler(ratioSampler(config.SamplingRate)))
	case ExporterStdout:
		w := config.Writer
		if w == nil {
			w = os.Stderr
		}
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("failed to create stdout exporter: %w", err)
		}
		// Commands are short-lived; export each span as it ends.
		opts = append(opts, sdktrace.WithSyncer(exporter), sdktrace.WithSampler(ratioSampler(config.SamplingRate)))
	case ExporterNone:
		opts = append(opts, sdktrace.WithSampler(sdktrace.NeverSample()))
	default:
		return nil, fmt.Errorf("unsupported exporter type: %s", config.ExporterType)
	}

	tp := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return tp, nil
}

func ratioSampler(rate float64) sdktrace.Sampler {
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(rate))
}

// createOTLPExporter creates an OTLP gRPC exporter
func createOTLPExporter(ctx context.Context, endpoint string) (*otlptrace.Exporter, error) {
	conn, err := grpc.NewClient(endpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC connection: %w", err)
	}

	return otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
}

// ShutdownTracing flushes pending spans and stops the provider, waiting at
// most five seconds.
func ShutdownTracing(ctx context.Context, tp *sdktrace.TracerProvider) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := tp.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown tracer provider: %w", err)
	}
	return nil
}

// Tracer returns a named tracer
func Tracer(name string) trace.Tracer {
	return otel.Tracer(name)
}

// StartSpan starts a new span with the given name and options
func StartSpan(ctx context.Context, tracerName string, spanName string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return Tracer(tracerName).Start(ctx, spanName, opts...)
}

// AddEvent adds an event to the current span
func AddEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	trace.SpanFromContext(ctx).AddEvent(name, trace.WithAttributes(attrs...))
}

// SetAttributes sets attributes on the current span
func SetAttributes(ctx context.Context, attrs ...attribute.KeyValue) {
	trace.SpanFromContext(ctx).SetAttributes(attrs...)
}
