package dataprocessing

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesreport/pkg/contracts/domain"
)

func raw(date, product, category, price, quantity, customer string) domain.RawRecord {
	return domain.RawRecord{
		Date:       date,
		Product:    product,
		Category:   category,
		Price:      price,
		Quantity:   quantity,
		CustomerID: customer,
	}
}

func rawTable(records ...domain.RawRecord) *domain.RawTable {
	return &domain.RawTable{Source: "test", Records: records}
}

func TestCleaner_Clean_Absent(t *testing.T) {
	result := NewCleaner(testLogger()).Clean(context.Background(), nil)

	assert.Nil(t, result.Table)
	assert.Equal(t, CleanStats{}, result.Stats)
	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, domain.SeverityWarning, result.Diagnostics[0].Severity)
}

func TestCleaner_Clean_Sample(t *testing.T) {
	ctx := context.Background()
	sample, err := NewLoader(testLogger(), LoaderConfig{}).LoadSample(ctx)
	require.NoError(t, err)

	result := NewCleaner(testLogger()).Clean(ctx, sample)
	require.NotNil(t, result.Table)

	assert.Equal(t, CleanStats{
		Input:             9,
		DuplicatesRemoved: 1,
		MissingRemoved:    1,
		InvalidRemoved:    1,
		Output:            6,
	}, result.Stats)
	assert.Equal(t, 3, result.Stats.Removed())

	require.Len(t, result.Diagnostics, 3)
	assert.Equal(t, 1, result.Diagnostics[0].Count)
	assert.Contains(t, result.Diagnostics[0].Message, "duplicate")
	assert.Contains(t, result.Diagnostics[1].Message, "missing")
	assert.Contains(t, result.Diagnostics[2].Message, "type conversion")

	for _, r := range result.Table.Records {
		assert.NotEqual(t, "Pen", r.Product, "row with missing price is dropped")
		assert.NotEqual(t, "Monitor", r.Product, "row with non-numeric price is dropped")
	}
}

func TestCleaner_Clean_Deduplication(t *testing.T) {
	row := raw("2023-01-01", "Laptop", "Electronics", "1200", "1", "101")
	other := raw("2023-01-02", "Mouse", "Electronics", "25", "5", "102")

	for _, k := range []int{1, 2, 5} {
		records := []domain.RawRecord{other}
		for i := 0; i < k; i++ {
			records = append(records, row)
		}

		result := NewCleaner(testLogger()).Clean(context.Background(), rawTable(records...))
		require.Equal(t, 2, result.Table.Len())
		assert.Equal(t, k-1, result.Stats.DuplicatesRemoved)
		assert.Equal(t, "Mouse", result.Table.Records[0].Product, "order is preserved")
		assert.Equal(t, "Laptop", result.Table.Records[1].Product)
	}
}

func TestCleaner_Clean_DuplicatesAfterCoercion(t *testing.T) {
	result := NewCleaner(testLogger()).Clean(context.Background(), rawTable(
		raw("2023-01-05", "Notebook", "Stationery", "3.50", "10", "105"),
		raw("2023-01-05", "Notebook", "Stationery", "3.5", "10.0", "105"),
	))

	assert.Equal(t, 1, result.Table.Len())
	assert.Equal(t, 1, result.Stats.DuplicatesRemoved)
}

func TestCleaner_Clean_MissingValues(t *testing.T) {
	result := NewCleaner(testLogger()).Clean(context.Background(), rawTable(
		raw("2023-01-01", "Laptop", "Electronics", "1200", "1", "101"),
		raw("", "Laptop", "Electronics", "1200", "1", "102"),
		raw("2023-01-01", "  ", "Electronics", "1200", "1", "103"),
		raw("2023-01-01", "Laptop", "NA", "1200", "1", "104"),
		raw("2023-01-01", "Laptop", "Electronics", "NaN", "1", "105"),
		raw("2023-01-01", "Laptop", "Electronics", "1200", "null", "106"),
		raw("2023-01-01", "Laptop", "Electronics", "1200", "1", "#N/A"),
	))

	assert.Equal(t, 1, result.Table.Len())
	assert.Equal(t, 6, result.Stats.MissingRemoved)
	assert.Zero(t, result.Stats.InvalidRemoved)
}

func TestCleaner_Clean_Coercion(t *testing.T) {
	result := NewCleaner(testLogger()).Clean(context.Background(), rawTable(
		raw("2023-01-01", "Laptop", "Electronics", "1200", "1", "101"),
		raw("2023-13-45", "Laptop", "Electronics", "1200", "1", "102"),
		raw("2023-01-01", "Laptop", "Electronics", "abc", "1", "103"),
		raw("2023-01-01", "Laptop", "Electronics", "1200", "1.5", "104"),
		raw("2023-01-01", "Laptop", "Electronics", "1200", "1", "C-105"),
		raw(" 1/4/2023 ", " Mouse ", "Electronics", " 25.00 ", "5.0", "106"),
	))

	require.Equal(t, 2, result.Table.Len())
	assert.Equal(t, 4, result.Stats.InvalidRemoved)
	assert.False(t, result.Table.HasTotals)

	mouse := result.Table.Records[1]
	assert.Equal(t, time.Date(2023, 1, 4, 0, 0, 0, 0, time.UTC), mouse.Date)
	assert.Equal(t, "Mouse", mouse.Product)
	assert.True(t, mouse.Price.Equal(decimal.NewFromInt(25)))
	assert.Equal(t, int64(5), mouse.Quantity)
	assert.Equal(t, int64(106), mouse.CustomerID)

	for _, r := range result.Table.Records {
		assert.False(t, r.Date.IsZero())
		assert.Positive(t, r.Quantity)
	}
}

func TestCleaner_Clean_HugeExponents(t *testing.T) {
	result := NewCleaner(testLogger()).Clean(context.Background(), rawTable(
		raw("2023-01-01", "Laptop", "Electronics", "1e30000000", "1", "101"),
		raw("2023-01-01", "Mouse", "Electronics", "25", "1e30000000", "102"),
		raw("2023-01-01", "Desk", "Furniture", "150", "2", "1e2000000000"),
		raw("2023-01-01", "Pen", "Stationery", "1.5", "3", "103"),
	))

	require.Equal(t, 1, result.Table.Len())
	assert.Equal(t, 3, result.Stats.InvalidRemoved)
	assert.Equal(t, "Pen", result.Table.Records[0].Product)
}

func TestCleaner_Clean_Idempotent(t *testing.T) {
	ctx := context.Background()
	cleaner := NewCleaner(testLogger())

	first := cleaner.Clean(ctx, rawTable(
		raw("2023-01-01", "Laptop", "Electronics", "1200.00", "1", "101"),
		raw("2023-01-01", "Laptop", "Electronics", "1200.00", "1", "101"),
		raw("2023-01-02T09:30:00Z", "Mouse", "Electronics", "25", "5", "102"),
		raw("2023-01-03", "Pen", "Stationery", "", "5", "103"),
		raw("2023-01-04", "Notebook", "Stationery", "3.50", "10", "105"),
	))
	second := cleaner.Clean(ctx, first.Table.Raw())

	assert.Equal(t, first.Table.Raw().Records, second.Table.Raw().Records)
	assert.Zero(t, second.Stats.Removed())
	assert.Equal(t, second.Stats.Input, second.Stats.Output)
}

func TestCleaner_Clean_DoesNotMutateInput(t *testing.T) {
	input := rawTable(
		raw(" 2023-01-01 ", "Laptop", "Electronics", "1200", "1", "101"),
		raw(" 2023-01-01 ", "Laptop", "Electronics", "1200", "1", "101"),
	)
	before := append([]domain.RawRecord(nil), input.Records...)

	NewCleaner(testLogger()).Clean(context.Background(), input)

	assert.Equal(t, before, input.Records)
}

func TestCleaner_Clean_MonotonicShrink(t *testing.T) {
	tables := []*domain.RawTable{
		rawTable(),
		rawTable(raw("2023-01-01", "Laptop", "Electronics", "1200", "1", "101")),
		rawTable(
			raw("x", "y", "z", "1", "1", "1"),
			raw("2023-01-01", "Laptop", "Electronics", "1200", "1", "101"),
			raw("2023-01-01", "Laptop", "Electronics", "1200", "1", "101"),
		),
	}

	for _, table := range tables {
		result := NewCleaner(testLogger()).Clean(context.Background(), table)
		assert.LessOrEqual(t, result.Table.Len(), table.Len())
		assert.Equal(t, table.Len(), result.Stats.Output+result.Stats.Removed())
	}
}

func TestParseDate(t *testing.T) {
	want := time.Date(2023, 1, 4, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		input string
		ok    bool
	}{
		{"2023-01-04", true},
		{"2023/01/04", true},
		{"1/4/2023", true},
		{"01-04-2023", true},
		{"Jan 4, 2023", true},
		{"4 Jan 2023", true},
		{"20230104", true},
		{"2023-01-04T23:59:59Z", true},
		{"2023-01-04 08:00:00", true},
		{"2023-02-30", false},
		{"yesterday", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseDate(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, want, got)
			}
		})
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"1200", "1200", true},
		{"3.50", "3.5", true},
		{"-12.25", "-12.25", true},
		{" 0.99 ", "0.99", true},
		{"abc", "", false},
		{"$12", "", false},
		{"1,200", "", false},
		{"", "", false},
		{"1e28", "10000000000000000000000000000", true},
		{"1e29", "", false},
		{"1e-29", "", false},
		{"1e30000000", "", false},
		{"-1e2000000000", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParsePrice(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got.String())
			}
		})
	}
}

func TestParseInteger(t *testing.T) {
	tests := []struct {
		input string
		want  int64
		ok    bool
	}{
		{"5", 5, true},
		{"5.0", 5, true},
		{"-3", -3, true},
		{"1e2", 100, true},
		{"1.5", 0, false},
		{"five", 0, false},
		{"99999999999999999999", 0, false},
		{"", 0, false},
		{"1e18", 1000000000000000000, true},
		{"1e19", 0, false},
		{"1e30000000", 0, false},
		{"1e-30000000", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseInteger(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
