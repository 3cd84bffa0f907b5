package dataprocessing

import (
	"bufio"
	"bytes"
	"context"
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "salesreport/internal/errors"
	"salesreport/internal/validation"
	"salesreport/pkg/contracts/domain"
)

// SampleSource names the embedded demo table
const SampleSource = "sample_sales.csv"

//go:embed sample_sales.csv
var sampleSales []byte

// utf8BOM is stripped from the start of delimited sources
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// LoaderConfig holds options for reading sales sources.
type LoaderConfig struct {
	// Comma is the field delimiter for delimited text; zero means ','
	Comma rune
	// Sheet selects the worksheet of .xlsx sources; empty means the first sheet
	Sheet string
}

// Loader reads sales sources into raw tables. It performs no coercion:
// every cell is kept as the literal text found in the source.
type Loader struct {
	logger    *slog.Logger
	validator *validation.FileValidator
	comma     rune
	sheet     string
}

// NewLoader creates a loader with the given configuration.
func NewLoader(logger *slog.Logger, cfg LoaderConfig) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Comma == 0 {
		cfg.Comma = ','
	}
	logger = logger.With("component", "loader")
	return &Loader{
		logger:    logger,
		validator: validation.NewFileValidator(logger),
		comma:     cfg.Comma,
		sheet:     cfg.Sheet,
	}
}

// Load reads the sales table at path. Files ending in .xlsx are read as
// workbooks, .tsv as tab separated text and anything else with the configured
// delimiter. A missing path yields an ErrTypeNotFound error, a bad header or
// ragged rows ErrTypeParsing, and other read failures ErrTypeStorage.
func (l *Loader) Load(ctx context.Context, path string) (*domain.RawTable, error) {
	l.logger.DebugContext(ctx, "loading sales source", slog.String("path", path))

	if err := l.validator.ValidateSourceFile(path); err != nil {
		return nil, err
	}

	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return l.loadWorkbook(ctx, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to open sales source", err).WithContext("path", path)
	}
	defer f.Close()

	comma := l.comma
	if strings.EqualFold(filepath.Ext(path), ".tsv") {
		comma = '\t'
	}
	return l.readDelimited(ctx, path, f, comma)
}

// LoadReader reads delimited text from r, using name as the table source.
func (l *Loader) LoadReader(ctx context.Context, name string, r io.Reader) (*domain.RawTable, error) {
	return l.readDelimited(ctx, name, r, l.comma)
}

// LoadSample returns the embedded demonstration table.
func (l *Loader) LoadSample(ctx context.Context) (*domain.RawTable, error) {
	return l.readDelimited(ctx, SampleSource, bytes.NewReader(sampleSales), ',')
}

func (l *Loader) readDelimited(ctx context.Context, name string, r io.Reader, comma rune) (*domain.RawTable, error) {
	br := bufio.NewReader(r)
	if prefix, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(prefix, utf8BOM) {
		br.Discard(len(utf8BOM))
	}

	reader := csv.NewReader(br)
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			return nil, apperrors.NewParsingError("malformed sales source", err).WithContext("source", name)
		}
		return nil, apperrors.NewStorageError("failed to read sales source", err).WithContext("source", name)
	}

	return l.buildTable(ctx, name, rows)
}

func (l *Loader) loadWorkbook(ctx context.Context, path string) (*domain.RawTable, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewParsingError("failed to open workbook", err).WithContext("path", path)
	}
	defer f.Close()

	sheet := l.sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, apperrors.NewParsingError("workbook has no sheets", nil).WithContext("path", path)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, apperrors.NewParsingError("failed to read worksheet", err).
			WithContext("path", path).
			WithContext("sheet", sheet)
	}

	// excelize drops trailing empty rows but not empty rows in the middle
	nonEmpty := rows[:0]
	for _, row := range rows {
		if !isBlankRow(row) {
			nonEmpty = append(nonEmpty, row)
		}
	}

	return l.buildTable(ctx, path, nonEmpty)
}

// buildTable maps rows onto the sales schema using the header row.
// Short rows are padded with empty cells; long rows are malformed.
func (l *Loader) buildTable(ctx context.Context, name string, rows [][]string) (*domain.RawTable, error) {
	if len(rows) == 0 {
		return nil, apperrors.NewParsingError("sales source has no header row", nil).WithContext("source", name)
	}

	header := rows[0]
	index, err := headerIndex(header)
	if err != nil {
		return nil, apperrors.NewParsingError("invalid sales header", err).WithContext("source", name)
	}

	records := make([]domain.RawRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if len(row) > len(header) {
			return nil, apperrors.NewParsingError(
				fmt.Sprintf("row %d has %d fields, header has %d", i+2, len(row), len(header)), nil).
				WithContext("source", name)
		}
		cell := func(column string) string {
			if pos := index[column]; pos < len(row) {
				return row[pos]
			}
			return ""
		}
		records = append(records, domain.RawRecord{
			Date:       cell(domain.ColumnDate),
			Product:    cell(domain.ColumnProduct),
			Category:   cell(domain.ColumnCategory),
			Price:      cell(domain.ColumnPrice),
			Quantity:   cell(domain.ColumnQuantity),
			CustomerID: cell(domain.ColumnCustomerID),
		})
	}

	l.logger.InfoContext(ctx, "sales source loaded",
		slog.String("source", name),
		slog.Int("rows", len(records)))

	return &domain.RawTable{Source: name, Records: records}, nil
}

// headerIndex finds the position of every schema column, matching names
// case-insensitively after trimming. Extra columns are ignored.
func headerIndex(header []string) (map[string]int, error) {
	positions := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		if _, dup := positions[key]; !dup {
			positions[key] = i
		}
	}

	index := make(map[string]int, len(domain.SalesColumns()))
	var missing []string
	for _, column := range domain.SalesColumns() {
		pos, ok := positions[strings.ToLower(column)]
		if !ok {
			missing = append(missing, column)
			continue
		}
		index[column] = pos
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing columns: %s", strings.Join(missing, ", "))
	}
	return index, nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
