package infrastructure

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"salesreport/internal/config"
)

func TestInitializeTelemetry_TracingDisabled(t *testing.T) {
	var spans bytes.Buffer
	tel, err := InitializeTelemetry(config.TelemetryConfig{ServiceName: "test"}, "1.0.0", &spans, nil)
	require.NoError(t, err)

	assert.Nil(t, tel.TracerProvider)
	require.NotNil(t, tel.Tracer)
	require.NotNil(t, tel.MeterProvider)
	require.NotNil(t, tel.Meter)

	_, span := tel.Tracer.Start(context.Background(), "noop")
	span.End()

	require.NoError(t, tel.Shutdown(context.Background()))
	assert.Zero(t, spans.Len(), "noop tracer writes nothing")
}

func TestInitializeTelemetry_TracingToWriter(t *testing.T) {
	var spans bytes.Buffer
	tel, err := InitializeTelemetry(config.TelemetryConfig{ServiceName: "test", Tracing: true}, "1.0.0", &spans, nil)
	require.NoError(t, err)
	require.NotNil(t, tel.TracerProvider)

	_, span := tel.Tracer.Start(context.Background(), "pipeline.load")
	span.End()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, tel.Shutdown(ctx))

	assert.Contains(t, spans.String(), `"Name": "pipeline.load"`)
}

func TestInitializeTelemetry_TraceFile(t *testing.T) {
	traceFile := filepath.Join(t.TempDir(), "traces", "run.json")
	tel, err := InitializeTelemetry(config.TelemetryConfig{
		ServiceName: "test",
		Tracing:     true,
		TraceFile:   traceFile,
	}, "1.0.0", nil, nil)
	require.NoError(t, err)

	_, span := tel.Tracer.Start(context.Background(), "pipeline.clean")
	span.End()
	require.NoError(t, tel.Shutdown(context.Background()))

	content, err := os.ReadFile(traceFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), "pipeline.clean")
}

func TestPipelineMetrics_WriteMetrics(t *testing.T) {
	metricsFile := filepath.Join(t.TempDir(), "metrics", "salesreport.prom")
	tel, err := InitializeTelemetry(config.TelemetryConfig{
		ServiceName: "test",
		MetricsFile: metricsFile,
	}, "1.0.0", nil, nil)
	require.NoError(t, err)
	defer tel.Shutdown(context.Background())

	pm, err := CreatePipelineMetrics(tel.Meter)
	require.NoError(t, err)

	ctx := context.Background()
	pm.RowsLoaded.Add(ctx, 12)
	pm.RowsRemoved.Add(ctx, 2, metric.WithAttributes(attribute.String("stage", "duplicates")))
	pm.ReportsGenerated.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", "by_category")))
	pm.StageDuration.Record(ctx, 0.25, metric.WithAttributes(attribute.String("stage", "load")))

	require.NoError(t, tel.WriteMetrics())

	content, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	text := string(content)

	assert.Contains(t, text, "salesreport_rows_loaded_total")
	assert.Contains(t, text, `stage="duplicates"`)
	assert.Contains(t, text, `kind="by_category"`)
	assert.Contains(t, text, "salesreport_stage_duration_seconds")
}

func TestWriteMetrics_NoFile(t *testing.T) {
	tel, err := InitializeTelemetry(config.TelemetryConfig{ServiceName: "test"}, "1.0.0", nil, nil)
	require.NoError(t, err)
	defer tel.Shutdown(context.Background())

	assert.NoError(t, tel.WriteMetrics())

	var nilTel *Telemetry
	assert.NoError(t, nilTel.WriteMetrics())
	assert.NoError(t, nilTel.Shutdown(context.Background()))
}
