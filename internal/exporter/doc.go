// Package exporter renders sales reports for people and spreadsheets.
//
// TextRenderer prints any domain.Tabular report as an aligned plain-text
// table. CSVWriter writes one CSV file per report, optionally prefixed with a
// UTF-8 BOM so Excel detects the encoding. XLSXWriter collects reports into a
// single workbook with one sheet per report. Exporter picks writers according
// to config.ExportConfig.
//
//	r := exporter.NewTextRenderer()
//	r.RenderAll(os.Stdout, overall, byCategory, byCustomer)
//
//	e := exporter.NewExporter(cfg.Export, "out", logger)
//	paths, err := e.Export(overall, byCategory, byCustomer)
package exporter
