package exporter

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"salesreport/internal/config"
	"salesreport/pkg/contracts/domain"
)

func TestXLSXWriter_WriteReports(t *testing.T) {
	dir := t.TempDir()
	empty := domain.SummaryReport{Title: "Customer 999 Summary"}

	path, err := NewXLSXWriter(dir, nil).WriteReports(summaryReport(), categoryReport(), empty)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, WorkbookName), path)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Overall Sales Summary", "Sales by Category", "Customer 999 Summary"}, f.GetSheetList())

	rows, err := f.GetRows("Sales by Category")
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Category", "Total Revenue"},
		{"Electronics", "$2,525.00"},
		{"Furniture", "$390.00"},
	}, rows)

	rows, err = f.GetRows("Customer 999 Summary")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Metric", "Value"}}, rows)
}

func TestXLSXWriter_DuplicateTitles(t *testing.T) {
	path, err := NewXLSXWriter(t.TempDir(), nil).WriteReports(categoryReport(), categoryReport())
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Sales by Category", "Sales by Category (2)"}, f.GetSheetList())
}

func TestXLSXWriter_NoReports(t *testing.T) {
	_, err := NewXLSXWriter(t.TempDir(), nil).WriteReports()
	assert.Error(t, err)
}

func TestExporter_Export(t *testing.T) {
	tests := []struct {
		name    string
		formats []string
		want    []string
	}{
		{
			name:    "csv only",
			formats: []string{"csv"},
			want:    []string{"overall_sales_summary.csv", "sales_by_category.csv"},
		},
		{
			name:    "xlsx only",
			formats: []string{"xlsx"},
			want:    []string{WorkbookName},
		},
		{
			name:    "both",
			formats: []string{"csv", "xlsx"},
			want:    []string{"overall_sales_summary.csv", "sales_by_category.csv", WorkbookName},
		},
		{
			name: "none",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			e := NewExporter(config.ExportConfig{Formats: tt.formats, BOM: true}, dir, nil)

			paths, err := e.Export(summaryReport(), categoryReport())
			require.NoError(t, err)

			var want []string
			for _, name := range tt.want {
				want = append(want, filepath.Join(dir, name))
			}
			assert.Equal(t, want, paths)
			for _, p := range paths {
				assert.FileExists(t, p)
			}
		})
	}
}

func TestExporter_FallsBackToConfigDir(t *testing.T) {
	dir := t.TempDir()
	e := NewExporter(config.ExportConfig{Dir: dir, Formats: []string{"csv"}}, "", nil)

	paths, err := e.Export(categoryReport())
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "sales_by_category.csv")}, paths)
}
