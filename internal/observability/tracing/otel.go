package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"google.golang.org/grpc/credentials"

	"github.com/medeiros-dev/notification-dispatch/configs"
	"github.com/medeiros-dev/notification-dispatch/pkg/logger"
)

var (
	// Tracer delegates to the global provider, so spans are no-ops until InitTracer runs.
	Tracer trace.Tracer = otel.Tracer(configs.DefaultOtelServiceName)

	noopShutdown = func(ctx context.Context) error { return nil }

	newExporterFunc = func(ctx context.Context, cfg *configs.Config) (tracesdk.SpanExporter, error) {
		if cfg.OtelInsecure {
			return otlptracegrpc.New(ctx,
				otlptracegrpc.WithEndpoint(cfg.OtelEndpoint),
				otlptracegrpc.WithInsecure(),
			)
		}
		creds := credentials.NewClientTLSFromCert(nil, "")
		return otlptracegrpc.New(ctx,
			otlptracegrpc.WithEndpoint(cfg.OtelEndpoint),
			otlptracegrpc.WithTLSCredentials(creds),
		)
	}
)

// InitTracer installs an OTLP tracer provider when an exporter endpoint is
// configured. Without one it leaves the no-op provider in place.
func InitTracer(cfg *configs.Config) (func(context.Context) error, error) {
	if cfg.OtelEndpoint == "" {
		logger.L().Info("OTLP endpoint not configured, tracing disabled")
		return noopShutdown, nil
	}

	ctx := context.Background()

	exporter, err := newExporterFunc(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.OtelServiceName),
		),
	)
	if err != nil {
		_ = exporter.Shutdown(ctx)
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	tp := tracesdk.NewTracerProvider(
		tracesdk.WithBatcher(exporter),
		tracesdk.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	Tracer = otel.Tracer(cfg.OtelServiceName)

	logger.L().Info("Tracer initialized",
		zap.String("endpoint", cfg.OtelEndpoint),
		zap.String("serviceName", cfg.OtelServiceName),
		zap.Bool("insecure", cfg.OtelInsecure),
	)
	return tp.Shutdown, nil
}
