package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"salesreport/internal/config"
	"salesreport/internal/dataprocessing"
	apperrors "salesreport/internal/errors"
	"salesreport/internal/infrastructure"
	"salesreport/pkg/contracts/domain"
)

// SourceLoader reads a sales source into a raw table
type SourceLoader interface {
	Load(ctx context.Context, path string) (*domain.RawTable, error)
	LoadSample(ctx context.Context) (*domain.RawTable, error)
}

// RunResult carries everything one pipeline run produced
type RunResult struct {
	Source string
	// LoadErr is the load failure when the source could not be read
	LoadErr error
	Stats   dataprocessing.CleanStats
	// Table is the cleaned table with Total_Sales filled; nil when absent
	Table *domain.SalesTable

	Overall    domain.SummaryReport
	ByCategory domain.GroupReport
	ByCustomer domain.GroupReport

	Diagnostics []domain.Diagnostic
}

// Reports returns the three table-wide reports in print order
func (r *RunResult) Reports() []domain.Tabular {
	return []domain.Tabular{r.Overall, r.ByCategory, r.ByCustomer}
}

// SourceNotFound reports whether the run failed because the input did not exist
func (r *RunResult) SourceNotFound() bool {
	return apperrors.IsNotFound(r.LoadErr)
}

// ReportServiceOptions holds optional collaborators of a ReportService
type ReportServiceOptions struct {
	Logger  *slog.Logger
	Tracer  trace.Tracer
	Metrics *infrastructure.PipelineMetrics
}

// ReportService runs the load, clean and aggregate stages for one source
type ReportService struct {
	loader     SourceLoader
	cleaner    *dataprocessing.Cleaner
	aggregator *dataprocessing.Aggregator
	tracer     trace.Tracer
	metrics    *infrastructure.PipelineMetrics
	logger     *slog.Logger
}

// NewReportService creates a report service. Money is formatted according to
// cfg; missing options fall back to the default logger and a noop tracer.
func NewReportService(loader SourceLoader, cfg config.ReportConfig, opts ReportServiceOptions) (*ReportService, error) {
	if loader == nil {
		return nil, fmt.Errorf("report service requires a loader")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = tracenoop.NewTracerProvider().Tracer(infrastructure.MeterName)
	}

	currency, err := dataprocessing.NewCurrencyFormatter(cfg.CurrencySymbol, cfg.Locale)
	if err != nil {
		return nil, apperrors.NewConfigError("invalid report formatting", err)
	}

	return &ReportService{
		loader:     loader,
		cleaner:    dataprocessing.NewCleaner(logger),
		aggregator: dataprocessing.NewAggregator(logger, currency),
		tracer:     tracer,
		metrics:    opts.Metrics,
		logger:     infrastructure.WithComponent(logger, "report_service"),
	}, nil
}

// NewLoader builds a loader from the input configuration
func NewLoader(cfg config.InputConfig, logger *slog.Logger) (*dataprocessing.Loader, error) {
	comma, err := cfg.Comma()
	if err != nil {
		return nil, apperrors.NewConfigError("invalid input delimiter", err)
	}
	return dataprocessing.NewLoader(logger, dataprocessing.LoaderConfig{Comma: comma, Sheet: cfg.Sheet}), nil
}

// Run loads path (the embedded sample when path is empty), cleans it and
// builds the overall, category and customer reports. A source that cannot be
// loaded is not an error: the result holds empty reports, LoadErr and
// diagnostics. Only a done context is returned as an error.
func (s *ReportService) Run(ctx context.Context, path string) (*RunResult, error) {
	ctx, span := s.tracer.Start(ctx, "salesreport.run",
		trace.WithAttributes(attribute.String("source", sourceName(path))))
	defer span.End()

	result := &RunResult{Source: sourceName(path)}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := s.load(ctx, path)
	if err != nil {
		result.LoadErr = err
		result.Diagnostics = append(result.Diagnostics, loadDiagnostic(result.Source, err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "load failed")
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cleaned := s.clean(ctx, raw)
	result.Stats = cleaned.Stats
	result.Diagnostics = append(result.Diagnostics, cleaned.Diagnostics...)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.aggregate(ctx, cleaned.Table, result)

	s.logger.InfoContext(ctx, "report run finished",
		slog.String("source", result.Source),
		slog.Bool("source_loaded", result.LoadErr == nil),
		slog.Int("rows", result.Table.Len()),
		slog.Int("diagnostics", len(result.Diagnostics)))

	return result, nil
}

// Customer builds the single-customer report over a cleaned table
func (s *ReportService) Customer(ctx context.Context, table *domain.SalesTable, customerID int64) domain.SummaryReport {
	ctx, span := s.tracer.Start(ctx, "salesreport.customer",
		trace.WithAttributes(attribute.Int64("customer_id", customerID)))
	defer span.End()

	start := time.Now()
	report := s.aggregator.CustomerSummary(ctx, table, customerID)
	s.recordStage(ctx, "customer", start)
	s.recordReport(ctx, report.Kind)
	return report
}

func (s *ReportService) load(ctx context.Context, path string) (*domain.RawTable, error) {
	ctx, span := s.tracer.Start(ctx, "salesreport.load")
	defer span.End()
	start := time.Now()
	defer s.recordStage(ctx, "load", start)

	var (
		raw *domain.RawTable
		err error
	)
	if path == "" {
		raw, err = s.loader.LoadSample(ctx)
	} else {
		raw, err = s.loader.Load(ctx, path)
	}
	if err != nil {
		s.logger.WarnContext(ctx, "sales source unavailable",
			slog.String("source", sourceName(path)),
			slog.String("error", err.Error()))
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("rows", raw.Len()))
	if s.metrics != nil {
		s.metrics.RowsLoaded.Add(ctx, int64(raw.Len()))
	}
	return raw, nil
}

func (s *ReportService) clean(ctx context.Context, raw *domain.RawTable) dataprocessing.CleanResult {
	ctx, span := s.tracer.Start(ctx, "salesreport.clean")
	defer span.End()
	start := time.Now()
	defer s.recordStage(ctx, "clean", start)

	result := s.cleaner.Clean(ctx, raw)

	span.SetAttributes(
		attribute.Int("input", result.Stats.Input),
		attribute.Int("output", result.Stats.Output))
	if s.metrics != nil {
		for reason, n := range map[string]int{
			"duplicates": result.Stats.DuplicatesRemoved,
			"missing":    result.Stats.MissingRemoved,
			"invalid":    result.Stats.InvalidRemoved,
		} {
			s.metrics.RowsRemoved.Add(ctx, int64(n), metric.WithAttributes(attribute.String("stage", reason)))
		}
	}
	return result
}

func (s *ReportService) aggregate(ctx context.Context, table *domain.SalesTable, result *RunResult) {
	ctx, span := s.tracer.Start(ctx, "salesreport.aggregate")
	defer span.End()
	start := time.Now()
	defer s.recordStage(ctx, "aggregate", start)

	// Total_Sales is computed once and kept on the table for later reports
	result.Table = dataprocessing.WithTotals(table)

	result.Overall = s.aggregator.OverallSummary(ctx, result.Table)
	result.ByCategory = s.aggregator.ByCategory(ctx, result.Table)
	result.ByCustomer = s.aggregator.ByCustomer(ctx, result.Table)

	// the three reports share the same empty-table note
	if len(result.Overall.Diagnostics) > 0 {
		result.Diagnostics = append(result.Diagnostics, result.Overall.Diagnostics...)
	}

	for _, kind := range []domain.ReportKind{result.Overall.Kind, result.ByCategory.Kind, result.ByCustomer.Kind} {
		s.recordReport(ctx, kind)
	}
}

func (s *ReportService) recordStage(ctx context.Context, stage string, start time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.StageDuration.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(attribute.String("stage", stage)))
}

func (s *ReportService) recordReport(ctx context.Context, kind domain.ReportKind) {
	if s.metrics == nil {
		return
	}
	s.metrics.ReportsGenerated.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", string(kind))))
}

func loadDiagnostic(source string, err error) domain.Diagnostic {
	if apperrors.IsNotFound(err) {
		return domain.Errorf(domain.StageLoad, "source not found: %s", source)
	}
	return domain.Errorf(domain.StageLoad, "could not read %s: %s", source, apperrors.Message(err))
}

func sourceName(path string) string {
	if path == "" {
		return dataprocessing.SampleSource
	}
	return path
}

// ParseCustomerID parses an interactive customer id. Invalid input yields an
// ErrTypeValidation error whose message is fit for display.
func ParseCustomerID(input string) (int64, error) {
	trimmed := strings.TrimSpace(input)
	id, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		return 0, apperrors.NewAppValidationError(
			fmt.Sprintf("invalid customer id %q: must be an integer", trimmed))
	}
	return id, nil
}
