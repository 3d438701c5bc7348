// Package observability wires OpenTelemetry tracing for sahayi.
//
// Traces are exported over OTLP HTTP to a local collector agent. The agent
// handles authentication, buffering and forwarding, so the application only
// needs an endpoint. When no endpoint is configured, tracing is disabled and
// all span operations are no-ops — the pipeline still records degradation
// events on spans, they just go nowhere.
package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/malayalamlabs/sahayi/internal/log"
)

// Config configures trace export.
type Config struct {
	// Endpoint is the OTLP HTTP collector address, e.g. "localhost:4318".
	// Empty disables tracing.
	Endpoint string

	// ServiceName identifies this process in traces. Default "sahayi".
	ServiceName string

	// Environment tags spans with a deployment environment.
	Environment string
}

// Setup installs the global tracer provider. The returned shutdown function
// flushes pending spans; it is safe to call even when tracing is disabled.
func Setup(ctx context.Context, cfg Config, logger log.Logger) func(context.Context) {
	if logger == nil {
		logger = log.NewNop()
	}
	if cfg.Endpoint == "" {
		logger.Debug("tracing disabled, no collector endpoint configured")
		return func(context.Context) {}
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "sahayi"
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(cfg.Endpoint),
		otlptracehttp.WithInsecure(), // local agent, no TLS
	)
	if err != nil {
		logger.Warn("creating trace exporter, tracing disabled", "error", err)
		return func(context.Context) {}
	}

	attrs := []attribute.KeyValue{
		attribute.String("service.name", cfg.ServiceName),
	}
	if cfg.Environment != "" {
		attrs = append(attrs, attribute.String("deployment.environment", cfg.Environment))
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewSchemaless(attrs...)),
	)
	otel.SetTracerProvider(tp)

	logger.Debug("tracing enabled",
		"endpoint", cfg.Endpoint,
		"service", cfg.ServiceName,
		"environment", cfg.Environment,
	)

	return func(shutdownCtx context.Context) {
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Warn("shutting down tracer provider", "error", err)
		}
	}
}
