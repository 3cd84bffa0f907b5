package exporter

import (
	"fmt"
	"log/slog"

	"salesreport/internal/config"
	"salesreport/pkg/contracts/domain"
)

// Exporter writes reports in every format enabled by the export configuration
type Exporter struct {
	cfg  config.ExportConfig
	csv  *CSVWriter
	xlsx *XLSXWriter
}

// NewExporter creates an exporter writing into dir. An empty dir falls back
// to cfg.Dir.
func NewExporter(cfg config.ExportConfig, dir string, logger *slog.Logger) *Exporter {
	if dir == "" {
		dir = cfg.Dir
	}
	cfg.Dir = dir
	return &Exporter{
		cfg:  cfg,
		csv:  NewCSVWriter(dir, logger),
		xlsx: NewXLSXWriter(dir, logger),
	}
}

// Export writes the reports and returns the paths of the files written.
// CSV produces one file per report; XLSX a single workbook.
func (e *Exporter) Export(reports ...domain.Tabular) ([]string, error) {
	var paths []string

	if e.cfg.HasFormat("csv") {
		for _, report := range reports {
			path, err := e.csv.WriteReport(report, e.cfg.BOM)
			if err != nil {
				return paths, err
			}
			paths = append(paths, path)
		}
	}

	if e.cfg.HasFormat("xlsx") && len(reports) > 0 {
		path, err := e.xlsx.WriteReports(reports...)
		if err != nil {
			return paths, fmt.Errorf("export workbook: %w", err)
		}
		paths = append(paths, path)
	}

	return paths, nil
}
