package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"salesreport/internal/config"
	apperrors "salesreport/internal/errors"
	"salesreport/internal/exporter"
	"salesreport/internal/infrastructure"
	"salesreport/internal/services"
	"salesreport/internal/validation"
	"salesreport/pkg/contracts"
	"salesreport/pkg/contracts/domain"
)

// Exit codes
const (
	exitOK             = 0
	exitUsage          = 1
	exitSourceNotFound = 2
)

// options holds the parsed command line
type options struct {
	input      string
	configPath string
	customer   string
	prompt     bool
	exportDir  string
	version    bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("salesreport", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.input, "in", "", "sales file to report on (.csv, .tsv or .xlsx); empty uses the built-in sample")
	fs.StringVar(&opts.configPath, "config", "", "YAML config file (defaults to salesreport.yaml or configs/salesreport.yaml when present)")
	fs.StringVar(&opts.customer, "customer", "", "customer id to summarize without prompting")
	fs.BoolVar(&opts.prompt, "prompt", true, "ask for a customer id after printing the reports")
	fs.StringVar(&opts.exportDir, "export", "", "directory to write report files to (formats from config)")
	fs.BoolVar(&opts.version, "version", false, "print version and exit")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if opts.input == "" && fs.NArg() > 0 {
		opts.input = fs.Arg(0)
	}
	return opts, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(exitOK)
		}
		os.Exit(exitUsage)
	}
	if opts.version {
		fmt.Println(contracts.GetFullVersionString())
		os.Exit(exitOK)
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		slog.Warn("Failed to load config, using defaults", "error", err)
		cfg = config.Default()
	}

	logger := slog.Default()
	runLogger, err := infrastructure.NewRunLogger(cfg.Logging, os.Stderr)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
	} else {
		logger = runLogger.Logger
		slog.SetDefault(logger)
	}

	code := run(context.Background(), cfg, opts, logger, os.Stdin, os.Stdout, os.Stderr)
	runLogger.Close()
	os.Exit(code)
}

// run executes one report run and returns the process exit code. Reports and
// notes go to stdout; user errors to stderr.
func run(ctx context.Context, cfg *config.Config, opts options, logger *slog.Logger, stdin io.Reader, stdout, stderr io.Writer) int {
	ctx = infrastructure.EnsureRunID(ctx)

	logger.InfoContext(ctx, "starting sales report",
		slog.String("version", contracts.Version),
		slog.String("input", opts.input),
		slog.String("export_dir", opts.exportDir))

	tel, err := infrastructure.InitializeTelemetry(cfg.Telemetry, contracts.Version, stderr, logger)
	if err != nil {
		logger.WarnContext(ctx, "telemetry disabled", slog.String("error", err.Error()))
	}
	defer shutdownTelemetry(ctx, tel, logger)

	svcOpts := services.ReportServiceOptions{Logger: logger}
	if tel != nil {
		svcOpts.Tracer = tel.Tracer
		if metrics, err := infrastructure.CreatePipelineMetrics(tel.Meter); err == nil {
			svcOpts.Metrics = metrics
		} else {
			logger.WarnContext(ctx, "pipeline metrics disabled", slog.String("error", err.Error()))
		}
	}

	loader, err := services.NewLoader(cfg.Input, logger)
	if err != nil {
		fmt.Fprintln(stderr, "error:", apperrors.Message(err))
		return exitUsage
	}
	svc, err := services.NewReportService(loader, cfg.Report, svcOpts)
	if err != nil {
		fmt.Fprintln(stderr, "error:", apperrors.Message(err))
		return exitUsage
	}

	result, err := svc.Run(ctx, opts.input)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return exitUsage
	}

	printNotes(stdout, result.Diagnostics)
	renderer := exporter.NewTextRenderer()
	if err := renderer.RenderAll(stdout, result.Reports()...); err != nil {
		logger.ErrorContext(ctx, "failed to print reports", slog.String("error", err.Error()))
	}

	reports := result.Reports()
	if customer, ok := customerLookup(ctx, svc, result.Table, opts, stdin, stdout, stderr); ok {
		printNotes(stdout, customer.Diagnostics)
		if err := renderer.Render(stdout, customer); err != nil {
			logger.ErrorContext(ctx, "failed to print customer report", slog.String("error", err.Error()))
		}
		reports = append(reports, customer)
	}

	exportReports(ctx, cfg.Export, opts.exportDir, reports, logger, stdout, stderr)

	if result.SourceNotFound() {
		return exitSourceNotFound
	}
	return exitOK
}

// customerLookup resolves the customer id from -customer or the prompt and
// builds that customer's report. ok is false when no lookup happened.
func customerLookup(
	ctx context.Context,
	svc *services.ReportService,
	table *domain.SalesTable,
	opts options,
	stdin io.Reader,
	stdout, stderr io.Writer,
) (domain.SummaryReport, bool) {
	input := opts.customer
	if input == "" {
		if !opts.prompt {
			return domain.SummaryReport{}, false
		}
		fmt.Fprint(stdout, "Enter a customer ID (blank to skip): ")
		line, err := bufio.NewReader(stdin).ReadString('\n')
		fmt.Fprintln(stdout)
		if err != nil && !errors.Is(err, io.EOF) {
			fmt.Fprintln(stderr, "error: failed to read customer id:", err)
			return domain.SummaryReport{}, false
		}
		input = strings.TrimSpace(line)
		if input == "" {
			return domain.SummaryReport{}, false
		}
	}

	id, err := services.ParseCustomerID(input)
	if err != nil {
		fmt.Fprintln(stderr, "error:", apperrors.Message(err))
		return domain.SummaryReport{}, false
	}
	return svc.Customer(ctx, table, id), true
}

func exportReports(
	ctx context.Context,
	cfg config.ExportConfig,
	dir string,
	reports []domain.Tabular,
	logger *slog.Logger,
	stdout, stderr io.Writer,
) {
	if dir == "" {
		dir = cfg.Dir
	}
	if dir == "" {
		return
	}
	if err := validation.NewFileValidator(logger).ValidateOutputDirectory(dir); err != nil {
		fmt.Fprintln(stderr, "error: export failed:", apperrors.Message(err))
		return
	}
	paths, err := exporter.NewExporter(cfg, dir, logger).Export(reports...)
	for _, p := range paths {
		fmt.Fprintln(stdout, "wrote", p)
	}
	if err != nil {
		logger.ErrorContext(ctx, "export failed", slog.String("error", err.Error()))
		fmt.Fprintln(stderr, "error: export failed:", err)
	}
}

func printNotes(w io.Writer, diagnostics []domain.Diagnostic) {
	for _, d := range diagnostics {
		fmt.Fprintln(w, "note:", d.String())
	}
	if len(diagnostics) > 0 {
		fmt.Fprintln(w)
	}
}

func shutdownTelemetry(ctx context.Context, tel *infrastructure.Telemetry, logger *slog.Logger) {
	if tel == nil {
		return
	}
	if err := tel.WriteMetrics(); err != nil {
		logger.WarnContext(ctx, "failed to write metrics", slog.String("error", err.Error()))
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := tel.Shutdown(ctx); err != nil {
		logger.WarnContext(ctx, "telemetry shutdown failed", slog.String("error", err.Error()))
	}
}
