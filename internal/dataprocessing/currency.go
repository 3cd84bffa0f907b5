package dataprocessing

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// maxPrinterDigits is the longest integer part handed to the printer as int64
const maxPrinterDigits = 18

// CurrencyFormatter renders money with thousands grouping and two decimals,
// e.g. $1,234.56. Grouping, digits and decimal marks follow the configured locale.
type CurrencyFormatter struct {
	symbol  string
	printer *message.Printer

	// locale symbols, taken from the printer once
	digits  [10]string
	group   string
	decimal string
}

// NewCurrencyFormatter creates a formatter for the given symbol and BCP 47 locale.
func NewCurrencyFormatter(symbol, locale string) (*CurrencyFormatter, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("invalid locale %q: %w", locale, err)
	}
	return newCurrencyFormatter(symbol, tag), nil
}

// DefaultCurrencyFormatter formats US dollars in English.
func DefaultCurrencyFormatter() *CurrencyFormatter {
	return newCurrencyFormatter("$", language.AmericanEnglish)
}

func newCurrencyFormatter(symbol string, tag language.Tag) *CurrencyFormatter {
	p := message.NewPrinter(tag)
	f := &CurrencyFormatter{symbol: symbol, printer: p, group: ",", decimal: "."}
	for i := range f.digits {
		f.digits[i] = p.Sprintf("%d", i)
	}
	if r := []rune(p.Sprintf("%d", 1000)); len(r) >= 4 {
		f.group = string(r[1 : len(r)-3])
	}
	if r := []rune(p.Sprintf("%.1f", 0.5)); len(r) >= 3 {
		f.decimal = string(r[1 : len(r)-1])
	}
	return f
}

// Format renders d rounded half away from zero to cents. Negative amounts put
// the sign before the symbol: -$12.00. The value is never converted to
// float64, so every cent is kept whatever the magnitude.
func (f *CurrencyFormatter) Format(d decimal.Decimal) string {
	rounded := d.Round(2)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Neg()
	}

	whole, frac, _ := strings.Cut(rounded.StringFixed(2), ".")
	return sign + f.symbol + f.formatWhole(whole) + f.decimal + f.localDigits(frac)
}

// formatWhole groups the integer digits. Values that fit in int64 go through
// the printer so locale grouping patterns apply; longer ones are grouped in
// threes with the locale separator.
func (f *CurrencyFormatter) formatWhole(whole string) string {
	if len(whole) <= maxPrinterDigits {
		if n, err := strconv.ParseInt(whole, 10, 64); err == nil {
			return f.printer.Sprintf("%d", n)
		}
	}

	var b strings.Builder
	for i, c := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteString(f.group)
		}
		b.WriteString(f.digits[c-'0'])
	}
	return b.String()
}

func (f *CurrencyFormatter) localDigits(s string) string {
	var b strings.Builder
	for _, c := range s {
		b.WriteString(f.digits[c-'0'])
	}
	return b.String()
}
