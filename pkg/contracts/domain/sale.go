package domain

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Column names of the sales schema, in their canonical order
const (
	ColumnDate       = "Date"
	ColumnProduct    = "Product"
	ColumnCategory   = "Category"
	ColumnPrice      = "Price"
	ColumnQuantity   = "Quantity"
	ColumnCustomerID = "Customer_ID"

	// ColumnTotalSales is the derived Price × Quantity column
	ColumnTotalSales = "Total_Sales"
)

// DateLayout is the canonical rendering of a sale date
const DateLayout = "2006-01-02"

// SalesColumns returns the input schema columns in canonical order.
func SalesColumns() []string {
	return []string{
		ColumnDate,
		ColumnProduct,
		ColumnCategory,
		ColumnPrice,
		ColumnQuantity,
		ColumnCustomerID,
	}
}

// RawRecord is one sales row exactly as read from the source, before coercion
type RawRecord struct {
	Date       string `json:"date" csv:"Date"`
	Product    string `json:"product" csv:"Product"`
	Category   string `json:"category" csv:"Category"`
	Price      string `json:"price" csv:"Price"`
	Quantity   string `json:"quantity" csv:"Quantity"`
	CustomerID string `json:"customer_id" csv:"Customer_ID"`
}

// Fields returns the record cells in canonical column order.
func (r RawRecord) Fields() []string {
	return []string{r.Date, r.Product, r.Category, r.Price, r.Quantity, r.CustomerID}
}

// RawTable is the loaded, not yet cleaned, sales table
type RawTable struct {
	Source  string
	Records []RawRecord
}

// Len returns the number of rows, treating a nil table as empty.
func (t *RawTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Records)
}

// SalesRecord is a cleaned, fully typed sales transaction
type SalesRecord struct {
	Date       time.Time       `json:"date"`
	Product    string          `json:"product"`
	Category   string          `json:"category"`
	Price      decimal.Decimal `json:"price"`
	Quantity   int64           `json:"quantity"`
	CustomerID int64           `json:"customer_id"`

	// TotalSales is Price × Quantity, filled in by the aggregator
	TotalSales decimal.Decimal `json:"total_sales"`
}

// Raw renders the record back into its canonical raw form.
func (r SalesRecord) Raw() RawRecord {
	return RawRecord{
		Date:       r.Date.Format(DateLayout),
		Product:    r.Product,
		Category:   r.Category,
		Price:      r.Price.String(),
		Quantity:   strconv.FormatInt(r.Quantity, 10),
		CustomerID: strconv.FormatInt(r.CustomerID, 10),
	}
}

// SalesTable is an immutable snapshot of cleaned sales records.
// Stages that change it return a new table.
type SalesTable struct {
	Source    string
	Records   []SalesRecord
	HasTotals bool
}

// Len returns the number of rows, treating a nil table as empty.
func (t *SalesTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Records)
}

// IsEmpty reports whether the table is absent or has no rows.
func (t *SalesTable) IsEmpty() bool {
	return t.Len() == 0
}

// Raw renders every record back into raw form, preserving order.
func (t *SalesTable) Raw() *RawTable {
	if t == nil {
		return nil
	}
	records := make([]RawRecord, len(t.Records))
	for i, r := range t.Records {
		records[i] = r.Raw()
	}
	return &RawTable{Source: t.Source, Records: records}
}
