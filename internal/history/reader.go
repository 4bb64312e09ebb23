// Package history reads labeled transaction history from CSV exports for bulk
// training.
package history

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/Veraticus/saffron/internal/common"
	"github.com/Veraticus/saffron/internal/model"
	"github.com/shopspring/decimal"
)

// Column names recognized in the header row.
const (
	ColumnDate        = "date"
	ColumnMerchant    = "merchant"
	ColumnDescription = "description"
	ColumnAmount      = "amount"
	ColumnCategory    = "category"
)

var requiredColumns = []string{ColumnDate, ColumnAmount, ColumnCategory}

// DefaultDateLayouts are tried in order when parsing the date column.
var DefaultDateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
}

// Result is the outcome of reading one history file.
type Result struct {
	Samples []model.LabeledObservation
	Skipped int
}

// Reader parses labeled history. Rows that cannot be parsed are skipped and
// counted rather than failing the whole file.
type Reader struct {
	layouts []string
	comma   rune
}

// Option configures a Reader.
type Option func(*Reader)

// WithComma sets the field delimiter.
func WithComma(comma rune) Option {
	return func(r *Reader) {
		r.comma = comma
	}
}

// WithDateLayouts replaces the accepted date layouts.
func WithDateLayouts(layouts ...string) Option {
	return func(r *Reader) {
		r.layouts = layouts
	}
}

// NewReader creates a reader for comma separated files with the default
// date layouts.
func NewReader(opts ...Option) *Reader {
	r := &Reader{
		layouts: DefaultDateLayouts,
		comma:   ',',
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ReadFile reads the history file at path.
func (r *Reader) ReadFile(path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("failed to open history file: %w", err)
	}
	defer f.Close()

	return r.Read(f)
}

// Read parses a CSV document whose first row names its columns. The date,
// amount and category columns are required; merchant and description are
// optional but at least one of them must be present.
func (r *Reader) Read(in io.Reader) (Result, error) {
	cr := csv.NewReader(in)
	cr.Comma = r.comma
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return Result{}, nil
	}
	if err != nil {
		return Result{}, fmt.Errorf("failed to read history header: %w", err)
	}

	columns, err := indexColumns(header)
	if err != nil {
		return Result{}, err
	}

	var result Result
	line := 1
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			slog.Warn("Skipping unreadable history row", "line", line, "error", err)
			result.Skipped++
			continue
		}

		sample, err := r.parseRecord(record, columns)
		if err != nil {
			slog.Warn("Skipping invalid history row", "line", line, "error", err)
			result.Skipped++
			continue
		}
		result.Samples = append(result.Samples, sample)
	}

	slog.Debug("Read labeled history",
		"samples", len(result.Samples),
		"skipped", result.Skipped)

	return result, nil
}

func indexColumns(header []string) (map[string]int, error) {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, dup := columns[key]; !dup {
			columns[key] = i
		}
	}

	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			return nil, fmt.Errorf("%w: history file is missing the %q column", common.ErrInvalidInput, name)
		}
	}
	_, hasMerchant := columns[ColumnMerchant]
	_, hasDescription := columns[ColumnDescription]
	if !hasMerchant && !hasDescription {
		return nil, fmt.Errorf("%w: history file needs a merchant or description column", common.ErrInvalidInput)
	}
	return columns, nil
}

func (r *Reader) parseRecord(record []string, columns map[string]int) (model.LabeledObservation, error) {
	field := func(name string) string {
		i, ok := columns[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	date, err := parseDate(field(ColumnDate), r.layouts)
	if err != nil {
		return model.LabeledObservation{}, err
	}

	amount, err := ParseAmount(field(ColumnAmount))
	if err != nil {
		return model.LabeledObservation{}, err
	}

	category, err := model.ParseCategory(field(ColumnCategory))
	if err != nil {
		return model.LabeledObservation{}, err
	}

	obs := model.Observation{
		Date:        date,
		Amount:      amount,
		Merchant:    field(ColumnMerchant),
		Description: field(ColumnDescription),
	}
	if obs.Merchant == "" && obs.Description == "" {
		return model.LabeledObservation{}, fmt.Errorf("%w: row has neither merchant nor description", common.ErrInvalidInput)
	}

	return model.LabeledObservation{Observation: obs, Category: category}, nil
}

// ParseDate parses value with DefaultDateLayouts.
func ParseDate(value string) (time.Time, error) {
	return parseDate(value, DefaultDateLayouts)
}

func parseDate(value string, layouts []string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: missing date", common.ErrInvalidInput)
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unrecognized date %q", common.ErrInvalidInput, value)
}

// ParseAmount parses a money value, ignoring currency symbols, thousands
// separators and sign, and returns its magnitude.
func ParseAmount(value string) (decimal.Decimal, error) {
	cleaned := strings.NewReplacer("$", "", ",", "", " ", "").Replace(strings.TrimSpace(value))
	if strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")") {
		cleaned = cleaned[1 : len(cleaned)-1]
	}
	if cleaned == "" {
		return decimal.Decimal{}, fmt.Errorf("%w: missing amount", common.ErrInvalidInput)
	}

	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: invalid amount %q", common.ErrInvalidInput, value)
	}
	return amount.Abs(), nil
}
