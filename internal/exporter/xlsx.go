package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"salesreport/pkg/contracts/domain"
)

// WorkbookName is the file name of the combined XLSX export
const WorkbookName = "sales_reports.xlsx"

// XLSXWriter writes reports into a single workbook, one sheet per report
type XLSXWriter struct {
	dir    string
	logger *slog.Logger
}

// NewXLSXWriter creates a workbook writer rooted at dir
func NewXLSXWriter(dir string, logger *slog.Logger) *XLSXWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &XLSXWriter{dir: dir, logger: logger}
}

// WriteReports saves reports to WorkbookName and returns the path written.
// Sheets are named after report titles; empty reports get a header-only sheet.
func (w *XLSXWriter) WriteReports(reports ...domain.Tabular) (string, error) {
	if len(reports) == 0 {
		return "", fmt.Errorf("no reports to export")
	}

	path := filepath.Join(w.dir, WorkbookName)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return "", fmt.Errorf("failed to create header style: %w", err)
	}

	defaultSheet := f.GetSheetName(0)
	used := make(map[string]int, len(reports))
	for i, report := range reports {
		name := uniqueSheetName(sheetName(report.ReportTitle()), used)
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, name); err != nil {
				return "", fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return "", fmt.Errorf("failed to create sheet %s: %w", name, err)
		}

		if err := writeSheet(f, name, report, headerStyle); err != nil {
			return "", fmt.Errorf("failed to write sheet %s: %w", name, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save workbook: %w", err)
	}

	w.logger.Info("workbook written",
		slog.String("path", path),
		slog.Int("sheets", len(reports)))

	return path, nil
}

func writeSheet(f *excelize.File, sheet string, report domain.Tabular, headerStyle int) error {
	rows := append([][]string{report.Header()}, report.Rows()...)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}

	lastCol, err := excelize.ColumnNumberToName(len(report.Header()))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", headerStyle); err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", lastCol, 24)
}

// uniqueSheetName suffixes repeated names, since sheet names must be distinct
func uniqueSheetName(name string, used map[string]int) string {
	n := used[name]
	used[name] = n + 1
	if n == 0 {
		return name
	}
	suffix := fmt.Sprintf(" (%d)", n+1)
	if runes := []rune(name); len(runes)+len(suffix) > maxSheetName {
		name = string(runes[:maxSheetName-len(suffix)])
	}
	return name + suffix
}
