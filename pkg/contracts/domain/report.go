package domain

import (
	"github.com/shopspring/decimal"
)

// ReportKind identifies one of the generated report views
type ReportKind string

const (
	ReportKindOverall    ReportKind = "overall_summary"
	ReportKindByCategory ReportKind = "by_category"
	ReportKindByCustomer ReportKind = "by_customer"
	ReportKindCustomer   ReportKind = "customer_summary"
)

// Metric names used by summary reports
const (
	MetricTotalRevenue       = "Total Revenue"
	MetricAverageTransaction = "Average Transaction Value"
	MetricMostPopularProduct = "Most Popular Product"
	MetricTotalTransactions  = "Total Transactions"
	MetricTotalProducts      = "Total Products"
)

// Tabular is implemented by every report so it can be rendered or exported
// without knowing its concrete shape.
type Tabular interface {
	ReportTitle() string
	Header() []string
	Rows() [][]string
	Empty() bool
}

// Metric is a single named, display-formatted value
type Metric struct {
	Name  string `json:"metric"`
	Value string `json:"value"`
}

// SummaryReport is an ordered list of metrics plus the typed values behind them.
// It backs both the overall summary and the single-customer report.
type SummaryReport struct {
	Kind    ReportKind `json:"kind"`
	Title   string     `json:"title"`
	Metrics []Metric   `json:"metrics"`

	TotalRevenue       decimal.Decimal `json:"total_revenue"`
	AverageTransaction decimal.Decimal `json:"average_transaction"`
	MostPopularProduct string          `json:"most_popular_product,omitempty"`
	TotalTransactions  int             `json:"total_transactions"`
	TotalProducts      decimal.Decimal `json:"total_products"`

	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}

// ReportTitle implements Tabular
func (r SummaryReport) ReportTitle() string { return r.Title }

// Header implements Tabular
func (r SummaryReport) Header() []string { return []string{"Metric", "Value"} }

// Rows implements Tabular
func (r SummaryReport) Rows() [][]string {
	rows := make([][]string, 0, len(r.Metrics))
	for _, m := range r.Metrics {
		rows = append(rows, []string{m.Name, m.Value})
	}
	return rows
}

// Empty reports whether the summary has no metrics
func (r SummaryReport) Empty() bool { return len(r.Metrics) == 0 }

// Metric looks up a metric value by name.
func (r SummaryReport) Metric(name string) (string, bool) {
	for _, m := range r.Metrics {
		if m.Name == name {
			return m.Value, true
		}
	}
	return "", false
}

// GroupTotal is the revenue summed over one group key
type GroupTotal struct {
	Key     string          `json:"key"`
	Revenue decimal.Decimal `json:"revenue"`
	Display string          `json:"display"`
}

// GroupReport lists revenue per distinct key, highest revenue first
type GroupReport struct {
	Kind      ReportKind   `json:"kind"`
	Title     string       `json:"title"`
	KeyColumn string       `json:"key_column"`
	Groups    []GroupTotal `json:"groups"`

	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}

// ReportTitle implements Tabular
func (r GroupReport) ReportTitle() string { return r.Title }

// Header implements Tabular
func (r GroupReport) Header() []string { return []string{r.KeyColumn, MetricTotalRevenue} }

// Rows implements Tabular
func (r GroupReport) Rows() [][]string {
	rows := make([][]string, 0, len(r.Groups))
	for _, g := range r.Groups {
		rows = append(rows, []string{g.Key, g.Display})
	}
	return rows
}

// Empty reports whether the report has no groups
func (r GroupReport) Empty() bool { return len(r.Groups) == 0 }

// Total sums revenue over all groups.
func (r GroupReport) Total() decimal.Decimal {
	total := decimal.Zero
	for _, g := range r.Groups {
		total = total.Add(g.Revenue)
	}
	return total
}
