package transaction

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the accepted date format, e.g. "15 Mar 2024"
const DateLayout = "2 Jan 2006"

var (
	ErrDateFormat    = errors.New("invalid date format")
	ErrNegativePrice = errors.New("negative price")
)

// DateFormatError reports a date field that does not match DateLayout
type DateFormatError struct {
	Index int
	Field string
	Value string
	Err   error
}

func (e *DateFormatError) Error() string {
	return fmt.Sprintf("record %d: %s %q: expected format like %q", e.Index, e.Field, e.Value, "15 Mar 2024")
}

func (e *DateFormatError) Unwrap() []error {
	return []error{ErrDateFormat, e.Err}
}

// LoadOptions holds the defaults applied to absent fields
type LoadOptions struct {
	DefaultName     string
	DefaultCurrency Currency
}

// DefaultLoadOptions returns the loader defaults used when nothing is configured
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{
		DefaultName:     "No Name",
		DefaultCurrency: USD,
	}
}

type rawRecord struct {
	Name     *string          `json:"name"`
	Price    *decimal.Decimal `json:"price"`
	Currency *string          `json:"currency"`
	ListedOn *string          `json:"listed_on"`
	ActedOn  *string          `json:"acted_on"`
}

// LoadFile reads and parses the JSON file at path
func LoadFile(path string, opts LoadOptions) (Records, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer f.Close()

	return Load(f, opts)
}

// Load parses a JSON array of records from r. Any invalid date fails the whole load.
func Load(r io.Reader, opts LoadOptions) (Records, error) {
	var raws []rawRecord
	if err := json.NewDecoder(r).Decode(&raws); err != nil {
		return nil, fmt.Errorf("failed to decode records: %w", err)
	}

	records := make(Records, 0, len(raws))
	for i, raw := range raws {
		rec, err := raw.toRecord(i, opts)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func (raw rawRecord) toRecord(index int, opts LoadOptions) (Record, error) {
	rec := Record{
		Name:     opts.DefaultName,
		Price:    decimal.Zero,
		Currency: opts.DefaultCurrency,
	}

	if raw.Name != nil && strings.TrimSpace(*raw.Name) != "" {
		rec.Name = *raw.Name
	}
	if raw.Price != nil {
		if raw.Price.IsNegative() {
			return Record{}, fmt.Errorf("record %d: %w: %s", index, ErrNegativePrice, raw.Price)
		}
		rec.Price = *raw.Price
	}
	if raw.Currency != nil && strings.TrimSpace(*raw.Currency) != "" {
		rec.Currency = Currency(strings.ToUpper(strings.TrimSpace(*raw.Currency)))
	}

	var err error
	if rec.ListedOn, err = parseDate(index, "listed_on", raw.ListedOn); err != nil {
		return Record{}, err
	}
	if rec.ActedOn, err = parseDate(index, "acted_on", raw.ActedOn); err != nil {
		return Record{}, err
	}
	return rec, nil
}

func parseDate(index int, field string, value *string) (time.Time, error) {
	if value == nil {
		return time.Time{}, &DateFormatError{Index: index, Field: field, Err: errors.New("missing")}
	}
	t, err := time.Parse(DateLayout, strings.TrimSpace(*value))
	if err != nil {
		return time.Time{}, &DateFormatError{Index: index, Field: field, Value: *value, Err: err}
	}
	return t, nil
}
