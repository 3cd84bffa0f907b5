package dataprocessing

import (
	"context"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"salesreport/pkg/contracts/domain"
)

// missingMarkers are cell values read as missing, matching the markers
// spreadsheet and dataframe exports write for empty cells.
var missingMarkers = map[string]struct{}{
	"NA": {}, "N/A": {}, "n/a": {}, "#N/A": {}, "#N/A N/A": {}, "#NA": {}, "<NA>": {},
	"NaN": {}, "nan": {}, "-NaN": {}, "-nan": {},
	"null": {}, "NULL": {}, "None": {},
	"1.#IND": {}, "1.#QNAN": {}, "-1.#IND": {}, "-1.#QNAN": {},
}

// dateLayouts are tried in order; the canonical layout comes first so clean
// tables re-parse to the same dates.
var dateLayouts = []string{
	domain.DateLayout,
	"2006/01/02",
	"1/2/2006",
	"01-02-2006",
	"Jan 2, 2006",
	"2 Jan 2006",
	"20060102",
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// CleanStats counts rows removed by each cleaning step
type CleanStats struct {
	Input             int `json:"input"`
	DuplicatesRemoved int `json:"duplicates_removed"`
	MissingRemoved    int `json:"missing_removed"`
	InvalidRemoved    int `json:"invalid_removed"`
	Output            int `json:"output"`
}

// Removed returns the total number of rows dropped
func (s CleanStats) Removed() int {
	return s.DuplicatesRemoved + s.MissingRemoved + s.InvalidRemoved
}

// CleanResult is the cleaned table together with what cleaning observed.
// Table is nil when the input was absent.
type CleanResult struct {
	Table       *domain.SalesTable
	Stats       CleanStats
	Diagnostics []domain.Diagnostic
}

// Cleaner turns raw tables into typed tables that hold no duplicates, no
// missing values and no values that failed coercion.
type Cleaner struct {
	logger *slog.Logger
}

// NewCleaner creates a cleaner.
func NewCleaner(logger *slog.Logger) *Cleaner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cleaner{logger: logger.With("component", "cleaner")}
}

// Clean removes exact duplicates, then rows with a missing value, then rows
// whose Date, Price, Quantity or Customer_ID do not coerce. Rows whose typed
// values coincide after coercion are also counted as duplicates. The input table is
// not modified and surviving rows keep their order.
func (c *Cleaner) Clean(ctx context.Context, raw *domain.RawTable) CleanResult {
	if raw == nil {
		return CleanResult{
			Diagnostics: []domain.Diagnostic{
				domain.Warnf(domain.StageClean, "no data available to clean"),
			},
		}
	}

	stats := CleanStats{Input: raw.Len()}

	canonical := make([]domain.RawRecord, len(raw.Records))
	for i, r := range raw.Records {
		canonical[i] = canonicalize(r)
	}

	unique := dropDuplicates(canonical)
	stats.DuplicatesRemoved = len(canonical) - len(unique)

	complete := dropMissing(unique)
	stats.MissingRemoved = len(unique) - len(complete)

	typed := make([]domain.SalesRecord, 0, len(complete))
	for _, r := range complete {
		rec, ok := coerce(r)
		if !ok {
			continue
		}
		typed = append(typed, rec)
	}
	stats.InvalidRemoved = len(complete) - len(typed)

	// "3.50" and "3.5" are distinct text but the same price
	records := dropTypedDuplicates(typed)
	stats.DuplicatesRemoved += len(typed) - len(records)
	stats.Output = len(records)

	diagnostics := []domain.Diagnostic{
		countDiagnostic("removed %d duplicate rows", stats.DuplicatesRemoved),
		countDiagnostic("removed %d rows with missing values", stats.MissingRemoved),
		countDiagnostic("removed %d rows that failed type conversion", stats.InvalidRemoved),
	}

	c.logger.InfoContext(ctx, "sales table cleaned",
		slog.String("source", raw.Source),
		slog.Int("input", stats.Input),
		slog.Int("duplicates_removed", stats.DuplicatesRemoved),
		slog.Int("missing_removed", stats.MissingRemoved),
		slog.Int("invalid_removed", stats.InvalidRemoved),
		slog.Int("output", stats.Output))

	return CleanResult{
		Table:       &domain.SalesTable{Source: raw.Source, Records: records},
		Stats:       stats,
		Diagnostics: diagnostics,
	}
}

func countDiagnostic(format string, n int) domain.Diagnostic {
	d := domain.Infof(domain.StageClean, format, n)
	d.Count = n
	return d
}

// canonicalize trims every cell and blanks missing markers
func canonicalize(r domain.RawRecord) domain.RawRecord {
	clean := func(s string) string {
		s = strings.TrimSpace(s)
		if _, ok := missingMarkers[s]; ok {
			return ""
		}
		return s
	}
	return domain.RawRecord{
		Date:       clean(r.Date),
		Product:    clean(r.Product),
		Category:   clean(r.Category),
		Price:      clean(r.Price),
		Quantity:   clean(r.Quantity),
		CustomerID: clean(r.CustomerID),
	}
}

// dropDuplicates keeps the first occurrence of every distinct row
func dropDuplicates(records []domain.RawRecord) []domain.RawRecord {
	seen := make(map[domain.RawRecord]struct{}, len(records))
	out := make([]domain.RawRecord, 0, len(records))
	for _, r := range records {
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}

func dropTypedDuplicates(records []domain.SalesRecord) []domain.SalesRecord {
	seen := make(map[domain.RawRecord]struct{}, len(records))
	out := make([]domain.SalesRecord, 0, len(records))
	for _, r := range records {
		key := r.Raw()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}

func dropMissing(records []domain.RawRecord) []domain.RawRecord {
	out := make([]domain.RawRecord, 0, len(records))
	for _, r := range records {
		if hasMissing(r) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func hasMissing(r domain.RawRecord) bool {
	for _, f := range r.Fields() {
		if f == "" {
			return true
		}
	}
	return false
}

// coerce converts a complete raw row; ok is false when any typed column fails.
func coerce(r domain.RawRecord) (domain.SalesRecord, bool) {
	date, ok := ParseDate(r.Date)
	if !ok {
		return domain.SalesRecord{}, false
	}
	price, ok := ParsePrice(r.Price)
	if !ok {
		return domain.SalesRecord{}, false
	}
	quantity, ok := ParseInteger(r.Quantity)
	if !ok {
		return domain.SalesRecord{}, false
	}
	customerID, ok := ParseInteger(r.CustomerID)
	if !ok {
		return domain.SalesRecord{}, false
	}

	return domain.SalesRecord{
		Date:       date,
		Product:    r.Product,
		Category:   r.Category,
		Price:      price,
		Quantity:   quantity,
		CustomerID: customerID,
	}, true
}

// ParseDate parses a sale date, truncated to the calendar day.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// Exponent bounds for coerced numbers. Larger exponents are rejected before
// any arithmetic rescales the coefficient to 10^exp.
const (
	maxPriceExponent   = 28
	maxIntegerExponent = 18
)

// ParsePrice parses a decimal price. Currency symbols and grouping are not
// accepted; the value must be a plain decimal number whose exponent lies
// within ±28.
func ParsePrice(s string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, false
	}
	if exp := d.Exponent(); exp > maxPriceExponent || exp < -maxPriceExponent {
		return decimal.Zero, false
	}
	return d, true
}

// ParseInteger parses a whole number, accepting integral decimals like "5.0".
func ParseInteger(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	if exp := d.Exponent(); exp > maxIntegerExponent || exp < -maxIntegerExponent {
		return 0, false
	}
	if !d.IsInteger() {
		return 0, false
	}
	if d.GreaterThan(decimal.NewFromInt(math.MaxInt64)) || d.LessThan(decimal.NewFromInt(math.MinInt64)) {
		return 0, false
	}
	return d.IntPart(), true
}
