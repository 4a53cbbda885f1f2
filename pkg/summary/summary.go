// Package summary aggregates marketplace records into overall, per-name and
// per-month totals. Every function here is pure and total over its input.
package summary

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/example/market-stats/pkg/transaction"
)

// Bucket is a running total price and the number of contributions to it
type Bucket struct {
	Total decimal.Decimal
	Count int
}

func (b Bucket) add(price decimal.Decimal) Bucket {
	return Bucket{Total: b.Total.Add(price), Count: b.Count + 1}
}

// NameTotal is one entry of the per-name summary
type NameTotal struct {
	Name string
	Bucket
}

// MonthTotal is one entry of the per-month summary
type MonthTotal struct {
	Month Month
	Bucket
}

// Summary bundles every aggregate computed for one record set
type Summary struct {
	Records int
	Total   decimal.Decimal
	ByName  []NameTotal
	ByMonth []MonthTotal
}

// Summarize computes all aggregates for records
func Summarize(records []transaction.Record) Summary {
	return Summary{
		Records: len(records),
		Total:   TotalPrice(records),
		ByName:  ByName(records),
		ByMonth: ByMonth(records),
	}
}

// Span returns the first and last month with accruals. ok is false when there are none.
func (s Summary) Span() (first, last Month, ok bool) {
	if len(s.ByMonth) == 0 {
		return Month{}, Month{}, false
	}
	return s.ByMonth[0].Month, s.ByMonth[len(s.ByMonth)-1].Month, true
}

// TotalPrice sums every record's price. An empty input yields zero.
func TotalPrice(records []transaction.Record) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		total = total.Add(r.Price)
	}
	return total
}

// ByName groups records by item name, sorted by total price descending.
// Names with equal totals keep the order in which they were first seen.
func ByName(records []transaction.Record) []NameTotal {
	index := make(map[string]int)
	totals := []NameTotal{}
	for _, r := range records {
		i, ok := index[r.Name]
		if !ok {
			i = len(totals)
			index[r.Name] = i
			totals = append(totals, NameTotal{Name: r.Name, Bucket: Bucket{Total: decimal.Zero}})
		}
		totals[i].Bucket = totals[i].add(r.Price)
	}

	sort.SliceStable(totals, func(a, b int) bool {
		return totals[a].Total.GreaterThan(totals[b].Total)
	})
	return totals
}

// ByMonth accrues each record's full price into every month from its listing
// month through its acted-on month inclusive, sorted chronologically. A record
// acted on before it was listed contributes nothing.
func ByMonth(records []transaction.Record) []MonthTotal {
	buckets := make(map[int]Bucket)
	for _, r := range records {
		start := MonthOf(r.ListedOn).Index()
		end := MonthOf(r.ActedOn).Index()
		for i := start; i <= end; i++ {
			buckets[i] = buckets[i].add(r.Price)
		}
	}

	indices := make([]int, 0, len(buckets))
	for i := range buckets {
		indices = append(indices, i)
	}
	sort.Ints(indices)

	totals := make([]MonthTotal, 0, len(indices))
	for _, i := range indices {
		totals = append(totals, MonthTotal{Month: MonthFromIndex(i), Bucket: buckets[i]})
	}
	return totals
}

// ReversedSpans returns the records whose acted-on month precedes their listing month
func ReversedSpans(records []transaction.Record) []transaction.Record {
	var out []transaction.Record
	for _, r := range records {
		if MonthOf(r.ActedOn).Before(MonthOf(r.ListedOn)) {
			out = append(out, r)
		}
	}
	return out
}
