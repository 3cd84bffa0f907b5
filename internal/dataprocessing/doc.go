// Package dataprocessing implements the sales reporting pipeline stages:
// loading, cleaning and aggregation.
//
// # Stages
//
// Data flows one way through three stages, each returning a new value and
// never mutating its input:
//
//	Loader     source file -> *domain.RawTable (literal text cells)
//	Cleaner    *domain.RawTable -> CleanResult (typed *domain.SalesTable)
//	Aggregator *domain.SalesTable -> report views
//
// An absent table (nil) is a valid input to every stage after loading: the
// cleaner returns an absent table and the aggregator returns empty reports,
// each with a diagnostic explaining why.
//
// # Usage
//
//	loader := dataprocessing.NewLoader(logger, dataprocessing.LoaderConfig{})
//	raw, err := loader.Load(ctx, "sales.csv")
//	if err != nil {
//	    // raw is nil; reports below come back empty
//	}
//	cleaned := dataprocessing.NewCleaner(logger).Clean(ctx, raw)
//	agg := dataprocessing.NewAggregator(logger, dataprocessing.DefaultCurrencyFormatter())
//	summary := agg.OverallSummary(ctx, cleaned.Table)
//
// # Diagnostics
//
// Stages do not print. Row counts removed while cleaning and empty-result
// notes are returned as domain.Diagnostic values for the caller to display.
package dataprocessing
