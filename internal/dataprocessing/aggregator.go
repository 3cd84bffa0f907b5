package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"salesreport/pkg/contracts/domain"
)

// Report titles
const (
	TitleOverall    = "Overall Sales Summary"
	TitleByCategory = "Sales by Category"
	TitleByCustomer = "Sales by Customer"
)

// CustomerTitle returns the title of the single-customer report.
func CustomerTitle(id int64) string {
	return fmt.Sprintf("Customer %d Summary", id)
}

// Aggregator produces read-only report views over a cleaned sales table.
// Every report computes Total_Sales itself when the table lacks it, so
// reports can be requested in any order.
type Aggregator struct {
	logger   *slog.Logger
	currency *CurrencyFormatter
}

// NewAggregator creates an aggregator that formats money with currency.
func NewAggregator(logger *slog.Logger, currency *CurrencyFormatter) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	if currency == nil {
		currency = DefaultCurrencyFormatter()
	}
	return &Aggregator{
		logger:   logger.With("component", "aggregator"),
		currency: currency,
	}
}

// WithTotals returns a snapshot of table whose records carry
// TotalSales = Price × Quantity. Tables that already have totals are
// returned as is; a nil table stays nil.
func WithTotals(table *domain.SalesTable) *domain.SalesTable {
	if table == nil || table.HasTotals {
		return table
	}
	records := make([]domain.SalesRecord, len(table.Records))
	for i, r := range table.Records {
		r.TotalSales = r.Price.Mul(decimal.NewFromInt(r.Quantity))
		records[i] = r
	}
	return &domain.SalesTable{Source: table.Source, Records: records, HasTotals: true}
}

func noData(stage domain.Stage) []domain.Diagnostic {
	return []domain.Diagnostic{domain.Warnf(stage, "no data available")}
}

// OverallSummary reports total revenue, average transaction value, the most
// popular product by quantity and the transaction count.
func (a *Aggregator) OverallSummary(ctx context.Context, table *domain.SalesTable) domain.SummaryReport {
	report := domain.SummaryReport{Kind: domain.ReportKindOverall, Title: TitleOverall}
	if table.IsEmpty() {
		report.Diagnostics = noData(domain.StageAggregate)
		return report
	}

	table = WithTotals(table)

	revenue := decimal.Zero
	quantities := make(map[string]decimal.Decimal)
	for _, r := range table.Records {
		revenue = revenue.Add(r.TotalSales)
		quantities[r.Product] = quantities[r.Product].Add(decimal.NewFromInt(r.Quantity))
	}

	count := table.Len()
	report.TotalRevenue = revenue
	report.AverageTransaction = revenue.Div(decimal.NewFromInt(int64(count)))
	report.MostPopularProduct = mostPopular(quantities)
	report.TotalTransactions = count
	report.Metrics = []domain.Metric{
		{Name: domain.MetricTotalRevenue, Value: a.currency.Format(report.TotalRevenue)},
		{Name: domain.MetricAverageTransaction, Value: a.currency.Format(report.AverageTransaction)},
		{Name: domain.MetricMostPopularProduct, Value: report.MostPopularProduct},
		{Name: domain.MetricTotalTransactions, Value: strconv.Itoa(count)},
	}

	a.logger.DebugContext(ctx, "overall summary computed",
		slog.String("total_revenue", revenue.StringFixed(2)),
		slog.Int("transactions", count))

	return report
}

// mostPopular returns the product with the largest quantity, preferring the
// lexicographically smallest name among ties. Quantities are summed in
// decimal so large counts cannot wrap.
func mostPopular(quantities map[string]decimal.Decimal) string {
	best := ""
	var bestQty decimal.Decimal
	found := false
	for product, qty := range quantities {
		c := qty.Cmp(bestQty)
		if !found || c > 0 || (c == 0 && product < best) {
			best, bestQty, found = product, qty, true
		}
	}
	return best
}

// ByCategory sums revenue per category, highest first.
func (a *Aggregator) ByCategory(ctx context.Context, table *domain.SalesTable) domain.GroupReport {
	return a.groupReport(ctx, table, domain.ReportKindByCategory, TitleByCategory, domain.ColumnCategory,
		func(r domain.SalesRecord) groupKey { return groupKey{text: r.Category} })
}

// ByCustomer sums revenue per customer, highest first.
func (a *Aggregator) ByCustomer(ctx context.Context, table *domain.SalesTable) domain.GroupReport {
	return a.groupReport(ctx, table, domain.ReportKindByCustomer, TitleByCustomer, domain.ColumnCustomerID,
		func(r domain.SalesRecord) groupKey {
			return groupKey{text: strconv.FormatInt(r.CustomerID, 10), num: r.CustomerID, numeric: true}
		})
}

// groupKey orders numerically when numeric is set, otherwise by text
type groupKey struct {
	text    string
	num     int64
	numeric bool
}

func (k groupKey) less(other groupKey) bool {
	if k.numeric && other.numeric {
		return k.num < other.num
	}
	return k.text < other.text
}

func (a *Aggregator) groupReport(
	ctx context.Context,
	table *domain.SalesTable,
	kind domain.ReportKind,
	title, keyColumn string,
	keyOf func(domain.SalesRecord) groupKey,
) domain.GroupReport {
	report := domain.GroupReport{Kind: kind, Title: title, KeyColumn: keyColumn}
	if table.IsEmpty() {
		report.Diagnostics = noData(domain.StageAggregate)
		return report
	}

	table = WithTotals(table)

	type group struct {
		key     groupKey
		revenue decimal.Decimal
	}
	groups := make(map[groupKey]*group)
	for _, r := range table.Records {
		key := keyOf(r)
		g, ok := groups[key]
		if !ok {
			g = &group{key: key, revenue: decimal.Zero}
			groups[key] = g
		}
		g.revenue = g.revenue.Add(r.TotalSales)
	}

	sorted := make([]*group, 0, len(groups))
	for _, g := range groups {
		sorted = append(sorted, g)
	}
	sort.Slice(sorted, func(i, j int) bool {
		if c := sorted[i].revenue.Cmp(sorted[j].revenue); c != 0 {
			return c > 0
		}
		return sorted[i].key.less(sorted[j].key)
	})

	report.Groups = make([]domain.GroupTotal, len(sorted))
	for i, g := range sorted {
		report.Groups[i] = domain.GroupTotal{
			Key:     g.key.text,
			Revenue: g.revenue,
			Display: a.currency.Format(g.revenue),
		}
	}

	a.logger.DebugContext(ctx, "group report computed",
		slog.String("kind", string(kind)),
		slog.Int("groups", len(report.Groups)))

	return report
}

// CustomerSummary reports revenue, transaction count and products bought for
// one customer. An unknown customer yields an empty report with a diagnostic.
func (a *Aggregator) CustomerSummary(ctx context.Context, table *domain.SalesTable, customerID int64) domain.SummaryReport {
	report := domain.SummaryReport{Kind: domain.ReportKindCustomer, Title: CustomerTitle(customerID)}
	if table.IsEmpty() {
		report.Diagnostics = noData(domain.StageAggregate)
		return report
	}

	table = WithTotals(table)

	revenue := decimal.Zero
	var count int
	products := decimal.Zero
	for _, r := range table.Records {
		if r.CustomerID != customerID {
			continue
		}
		revenue = revenue.Add(r.TotalSales)
		products = products.Add(decimal.NewFromInt(r.Quantity))
		count++
	}

	if count == 0 {
		report.Diagnostics = []domain.Diagnostic{
			domain.Warnf(domain.StageAggregate, "no data for customer %d", customerID),
		}
		return report
	}

	report.TotalRevenue = revenue
	report.AverageTransaction = revenue.Div(decimal.NewFromInt(int64(count)))
	report.TotalTransactions = count
	report.TotalProducts = products
	report.Metrics = []domain.Metric{
		{Name: domain.MetricTotalRevenue, Value: a.currency.Format(revenue)},
		{Name: domain.MetricTotalTransactions, Value: strconv.Itoa(count)},
		{Name: domain.MetricTotalProducts, Value: products.String()},
	}

	a.logger.DebugContext(ctx, "customer summary computed",
		slog.Int64("customer_id", customerID),
		slog.Int("transactions", count))

	return report
}
