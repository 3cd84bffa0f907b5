package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSalesRecord_Raw(t *testing.T) {
	rec := SalesRecord{
		Date:       time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC),
		Product:    "Notebook",
		Category:   "Stationery",
		Price:      decimal.RequireFromString("3.50"),
		Quantity:   10,
		CustomerID: 105,
	}

	assert.Equal(t, RawRecord{
		Date:       "2023-01-05",
		Product:    "Notebook",
		Category:   "Stationery",
		Price:      "3.5",
		Quantity:   "10",
		CustomerID: "105",
	}, rec.Raw())
}

func TestRawRecord_Fields(t *testing.T) {
	r := RawRecord{Date: "d", Product: "p", Category: "c", Price: "1", Quantity: "2", CustomerID: "3"}
	assert.Equal(t, []string{"d", "p", "c", "1", "2", "3"}, r.Fields())
	assert.Len(t, SalesColumns(), len(r.Fields()))
}

func TestTables_NilSafe(t *testing.T) {
	var raw *RawTable
	var sales *SalesTable

	assert.Zero(t, raw.Len())
	assert.Zero(t, sales.Len())
	assert.True(t, sales.IsEmpty())
	assert.Nil(t, sales.Raw())
	assert.True(t, (&SalesTable{}).IsEmpty())
}

func TestSalesTable_Raw(t *testing.T) {
	table := &SalesTable{
		Source: "sales.csv",
		Records: []SalesRecord{
			{Date: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), Product: "Laptop", Category: "Electronics", Price: decimal.NewFromInt(1200), Quantity: 1, CustomerID: 101},
			{Date: time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC), Product: "Mouse", Category: "Electronics", Price: decimal.NewFromInt(25), Quantity: 5, CustomerID: 102},
		},
	}

	raw := table.Raw()
	require.Equal(t, 2, raw.Len())
	assert.Equal(t, "sales.csv", raw.Source)
	assert.Equal(t, "Laptop", raw.Records[0].Product)
	assert.Equal(t, "102", raw.Records[1].CustomerID)
}
