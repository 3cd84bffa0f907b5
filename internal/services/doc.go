// Package services composes the pipeline stages into a single report run.
//
// ReportService loads one source, cleans it, attaches Total_Sales and builds
// the overall, category and customer reports. It records a span per stage
// and pipeline counters when telemetry is configured, and gathers every
// stage's diagnostics into the RunResult so the caller decides what to show.
//
//	loader, _ := services.NewLoader(cfg.Input, logger)
//	svc, err := services.NewReportService(loader, cfg.Report, services.ReportServiceOptions{
//	    Logger:  logger,
//	    Tracer:  tel.Tracer,
//	    Metrics: metrics,
//	})
//	result, err := svc.Run(ctx, "sales.csv")
//	customer := svc.Customer(ctx, result.Table, 102)
package services
