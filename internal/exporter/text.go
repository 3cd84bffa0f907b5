package exporter

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"salesreport/pkg/contracts/domain"
)

// EmptyPlaceholder is printed in place of rows for an empty report
const EmptyPlaceholder = "(no rows)"

// TextRenderer prints reports as aligned plain-text tables without row indices
type TextRenderer struct {
	// Padding is the number of spaces between columns
	Padding int
}

// NewTextRenderer creates a renderer with two spaces between columns
func NewTextRenderer() *TextRenderer {
	return &TextRenderer{Padding: 2}
}

// Render writes the report title, the header row and every data row.
// An empty report prints only its title and EmptyPlaceholder.
func (r *TextRenderer) Render(w io.Writer, report domain.Tabular) error {
	if _, err := fmt.Fprintln(w, report.ReportTitle()); err != nil {
		return err
	}
	if report.Empty() {
		_, err := fmt.Fprintln(w, EmptyPlaceholder)
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, r.Padding, ' ', 0)
	if _, err := fmt.Fprintln(tw, strings.Join(report.Header(), "\t")); err != nil {
		return err
	}
	for _, row := range report.Rows() {
		if _, err := fmt.Fprintln(tw, strings.Join(row, "\t")); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// RenderAll writes each report followed by a blank line.
func (r *TextRenderer) RenderAll(w io.Writer, reports ...domain.Tabular) error {
	for _, report := range reports {
		if err := r.Render(w, report); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}
