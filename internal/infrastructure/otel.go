package infrastructure

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"salesreport/internal/config"
)

// MeterName is the instrumentation scope for tracers and meters
const MeterName = "salesreport"

// Telemetry holds the tracing and metrics providers of a single run.
// Metrics are gathered into a private Prometheus registry and written once
// as a textfile when the run ends, the way batch jobs report to node_exporter.
type Telemetry struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	Registry       *prometheus.Registry

	metricsFile string
	traceOutput io.Closer
	logger      *slog.Logger
}

// InitializeTelemetry sets up tracing (when enabled) and metrics for a run.
// traceOutput receives spans when no trace file is configured.
func InitializeTelemetry(cfg config.TelemetryConfig, version string, traceOutput io.Writer, logger *slog.Logger) (*Telemetry, error) {
	if logger == nil {
		logger = slog.Default()
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(version),
		attribute.String("service.instance.id", NewRunID()),
	)

	t := &Telemetry{
		Tracer:      tracenoop.NewTracerProvider().Tracer(MeterName),
		metricsFile: cfg.MetricsFile,
		logger:      logger,
	}

	if cfg.Tracing {
		if err := t.initializeTracing(cfg, res, version, traceOutput); err != nil {
			return nil, fmt.Errorf("failed to initialize tracing: %w", err)
		}
	}

	if err := t.initializeMetrics(res, version); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	logger.Debug("telemetry initialized",
		slog.Bool("tracing_enabled", cfg.Tracing),
		slog.String("metrics_file", cfg.MetricsFile))

	return t, nil
}

// initializeTracing wires a synchronous stdout exporter; a short batch run
// must not lose spans to an unflushed batcher.
func (t *Telemetry) initializeTracing(cfg config.TelemetryConfig, res *resource.Resource, version string, out io.Writer) error {
	if cfg.TraceFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.TraceFile), 0755); err != nil {
			return fmt.Errorf("failed to create trace directory: %w", err)
		}
		file, err := os.Create(cfg.TraceFile)
		if err != nil {
			return fmt.Errorf("failed to create trace file: %w", err)
		}
		t.traceOutput = file
		out = file
	}
	if out == nil {
		out = os.Stderr
	}

	exporter, err := stdouttrace.New(
		stdouttrace.WithWriter(out),
		stdouttrace.WithPrettyPrint(),
	)
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	t.TracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithResource(res),
	)
	t.Tracer = t.TracerProvider.Tracer(MeterName, trace.WithInstrumentationVersion(version))
	return nil
}

func (t *Telemetry) initializeMetrics(res *resource.Resource, version string) error {
	t.Registry = prometheus.NewRegistry()

	exporter, err := otelprom.New(otelprom.WithRegisterer(t.Registry))
	if err != nil {
		return fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	t.MeterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)
	t.Meter = t.MeterProvider.Meter(MeterName, metric.WithInstrumentationVersion(version))
	return nil
}

// WriteMetrics writes the gathered metrics to the configured textfile.
// It is a no-op when no metrics file is configured.
func (t *Telemetry) WriteMetrics() error {
	if t == nil || t.metricsFile == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(t.metricsFile), 0755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(t.metricsFile, t.Registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	t.logger.Debug("metrics written", slog.String("path", t.metricsFile))
	return nil
}

// Shutdown flushes and releases all providers
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t == nil {
		return nil
	}

	var errs []error
	if t.TracerProvider != nil {
		errs = append(errs, t.TracerProvider.Shutdown(ctx))
	}
	if t.MeterProvider != nil {
		errs = append(errs, t.MeterProvider.Shutdown(ctx))
	}
	if t.traceOutput != nil {
		errs = append(errs, t.traceOutput.Close())
		t.traceOutput = nil
	}
	return stderrors.Join(errs...)
}

// PipelineMetrics holds the counters recorded by a report run
type PipelineMetrics struct {
	RowsLoaded       metric.Int64Counter
	RowsRemoved      metric.Int64Counter
	ReportsGenerated metric.Int64Counter
	StageDuration    metric.Float64Histogram
}

// CreatePipelineMetrics creates the pipeline instruments on meter
func CreatePipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	rowsLoaded, err := meter.Int64Counter(
		"salesreport_rows_loaded",
		metric.WithDescription("Rows read from the sales source"),
	)
	if err != nil {
		return nil, err
	}

	rowsRemoved, err := meter.Int64Counter(
		"salesreport_rows_removed",
		metric.WithDescription("Rows removed while cleaning, by reason"),
	)
	if err != nil {
		return nil, err
	}

	reportsGenerated, err := meter.Int64Counter(
		"salesreport_reports_generated",
		metric.WithDescription("Reports generated, by kind"),
	)
	if err != nil {
		return nil, err
	}

	stageDuration, err := meter.Float64Histogram(
		"salesreport_stage_duration",
		metric.WithDescription("Pipeline stage duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &PipelineMetrics{
		RowsLoaded:       rowsLoaded,
		RowsRemoved:      rowsRemoved,
		ReportsGenerated: reportsGenerated,
		StageDuration:    stageDuration,
	}, nil
}
