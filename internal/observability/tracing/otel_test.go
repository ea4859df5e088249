package tracing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/medeiros-dev/notification-dispatch/configs"
)

type mockExporter struct {
	shutdownErr error
	spans       []sdktrace.ReadOnlySpan
	shutdowns   int
}

func (m *mockExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	m.spans = append(m.spans, spans...)
	return nil
}

func (m *mockExporter) Shutdown(ctx context.Context) error {
	m.shutdowns++
	return m.shutdownErr
}

var _ sdktrace.SpanExporter = (*mockExporter)(nil)

func resetGlobals(t *testing.T) {
	originalTracer := Tracer
	originalExporterFunc := newExporterFunc
	t.Cleanup(func() {
		otel.SetTracerProvider(noop.NewTracerProvider())
		Tracer = originalTracer
		newExporterFunc = originalExporterFunc
	})
}

func TestInitTracer_Disabled(t *testing.T) {
	resetGlobals(t)
	called := false
	newExporterFunc = func(ctx context.Context, cfg *configs.Config) (sdktrace.SpanExporter, error) {
		called = true
		return &mockExporter{}, nil
	}

	shutdown, err := InitTracer(configs.Load(nil))
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.False(t, called)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInitTracer_Success(t *testing.T) {
	tests := []struct {
		name     string
		insecure bool
	}{
		{name: "insecure", insecure: true},
		{name: "secure", insecure: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resetGlobals(t)
			exp := &mockExporter{}
			newExporterFunc = func(ctx context.Context, cfg *configs.Config) (sdktrace.SpanExporter, error) {
				assert.Equal(t, tc.insecure, cfg.OtelInsecure)
				return exp, nil
			}

			cfg := configs.Load(map[string]any{
				configs.KeyOtelEndpoint:    "collector:4317",
				configs.KeyOtelServiceName: "dispatch-test",
				configs.KeyOtelInsecure:    tc.insecure,
			})

			shutdown, err := InitTracer(cfg)
			require.NoError(t, err)
			require.NotNil(t, shutdown)

			_, span := Tracer.Start(context.Background(), "test-span-"+tc.name)
			assert.True(t, span.SpanContext().IsValid())
			span.End()

			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			require.NoError(t, shutdown(ctx))

			assert.Len(t, exp.spans, 1)
			assert.Equal(t, 1, exp.shutdowns)
		})
	}
}

func TestInitTracer_ExporterError(t *testing.T) {
	resetGlobals(t)
	newExporterFunc = func(ctx context.Context, cfg *configs.Config) (sdktrace.SpanExporter, error) {
		return nil, errors.New("dial failed")
	}

	shutdown, err := InitTracer(configs.Load(map[string]any{configs.KeyOtelEndpoint: "collector:4317"}))
	assert.Nil(t, shutdown)
	assert.ErrorContains(t, err, "failed to create OTLP exporter")
}
