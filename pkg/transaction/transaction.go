package transaction

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Currency is the code a record was priced in. It is stored, never converted.
type Currency string

const (
	USD Currency = "USD"
	EUR Currency = "EUR"
)

// Known reports whether c is one of the supported currency codes
func (c Currency) Known() bool {
	switch c {
	case USD, EUR:
		return true
	}
	return false
}

// Record represents a single marketplace transaction
type Record struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Currency Currency        `json:"currency"`
	ListedOn time.Time       `json:"listed_on"`
	ActedOn  time.Time       `json:"acted_on"`
}

func (r Record) String() string {
	return fmt.Sprintf("Record(name=%s, price=%s, currency=%s, listed_on=%s, acted_on=%s)",
		r.Name, r.Price.StringFixed(2), r.Currency,
		r.ListedOn.Format(time.DateOnly), r.ActedOn.Format(time.DateOnly))
}

// Records holds a loaded collection of records
type Records []Record

// ByName returns all records with the given item name, in load order
func (rs Records) ByName(name string) Records {
	var filtered Records
	for _, r := range rs {
		if r.Name == name {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// Currencies returns the distinct currency codes in first-seen order
func (rs Records) Currencies() []Currency {
	seen := make(map[Currency]bool)
	var out []Currency
	for _, r := range rs {
		if !seen[r.Currency] {
			seen[r.Currency] = true
			out = append(out, r.Currency)
		}
	}
	return out
}
