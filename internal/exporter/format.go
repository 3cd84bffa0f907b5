package exporter

import (
	"strings"
	"unicode"
)

// maxSheetName is the longest worksheet name Excel accepts
const maxSheetName = 31

// fileName turns a report title into a file name: "Sales by Category" with
// ext ".csv" becomes "sales_by_category.csv".
func fileName(title, ext string) string {
	var b strings.Builder
	underscore := false
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			underscore = false
			continue
		}
		if !underscore && b.Len() > 0 {
			b.WriteByte('_')
			underscore = true
		}
	}
	name := strings.TrimSuffix(b.String(), "_")
	if name == "" {
		name = "report"
	}
	return name + ext
}

// sheetName strips characters Excel forbids in worksheet names and truncates
// to the allowed length.
func sheetName(title string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return -1
		}
		return r
	}, strings.TrimSpace(title))

	name = strings.Trim(name, "'")
	if runes := []rune(name); len(runes) > maxSheetName {
		name = strings.TrimSpace(string(runes[:maxSheetName]))
	}
	if name == "" {
		name = "Report"
	}
	return name
}
