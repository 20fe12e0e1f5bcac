package observability

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitWithoutEndpointUsesNoopProviders(t *testing.T) {
	providers, err := Init(DefaultConfig())
	require.NoError(t, err)

	require.NotNil(t, providers.Tracer)
	require.NotNil(t, providers.Meter)
	require.NotNil(t, providers.Logger)
	require.NotNil(t, providers.Shutdown)

	_, span := providers.Tracer.Start(context.Background(), "noop")
	require.False(t, span.SpanContext().IsValid(), "no-op tracer must not record")
	span.End()

	require.NoError(t, providers.Shutdown(context.Background()))
}

func TestTracingHandlerAttachesServiceName(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	inner := slog.NewJSONHandler(&buf, nil)
	logger := slog.New(NewTracingHandler(inner, "bundle-analyzer"))

	logger.Info("hello")

	require.Contains(t, buf.String(), `"service":"bundle-analyzer"`)
	require.NotContains(t, buf.String(), attrTraceID, "no span context, no trace id")
}

func TestNewPipelineMetrics(t *testing.T) {
	providers, err := Init(DefaultConfig())
	require.NoError(t, err)

	metrics, err := NewPipelineMetrics(providers.Meter)
	require.NoError(t, err)

	ctx := context.Background()

	metrics.RecordAnalysis(ctx, "chart_data", "ok", 0)
	metrics.RecordAnalysis(ctx, "chart_data", statusError, 0)

	done := metrics.TrackSubscriber(ctx)
	done()
}

func TestPrometheusHandlerServesScrape(t *testing.T) {
	t.Parallel()

	handler, meter, err := PrometheusHandler()
	require.NoError(t, err)
	require.NotNil(t, meter)

	counter, err := meter.Int64Counter("bundle_analyzer.test.total")
	require.NoError(t, err)

	counter.Add(context.Background(), 1)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "bundle_analyzer_test_total")
}
