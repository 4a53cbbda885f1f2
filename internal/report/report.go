package report

import (
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"github.com/example/market-stats/pkg/summary"
)

var rule = strings.Repeat("-", 45)

// Reporter prints summaries as fixed-width text tables
type Reporter struct {
	out      io.Writer
	currency string
}

// New returns a Reporter writing to out, labelling amounts with currency
func New(out io.Writer, currency string) *Reporter {
	return &Reporter{out: out, currency: currency}
}

// FormatAmount renders an amount with two decimals and thousands separators.
// Digits come from the decimal itself, so large amounts print exactly.
func FormatAmount(d decimal.Decimal) string {
	whole, frac, _ := strings.Cut(d.Abs().StringFixed(2), ".")
	n, _ := new(big.Int).SetString(whole, 10)
	s := humanize.BigComma(n) + "." + frac
	if d.Round(2).IsNegative() {
		s = "-" + s
	}
	return s
}

// Print writes the banner, the totals table and the monthly table
func (r *Reporter) Print(s summary.Summary) {
	fmt.Fprintf(r.out, "%s TOTAL %s\n", strings.Repeat("-", 19), strings.Repeat("-", 19))
	r.PrintTotals(s.Total, s.ByName)
	r.PrintMonths(s.ByMonth)
}

// PrintTotals writes the overall total and the per-item table
func (r *Reporter) PrintTotals(total decimal.Decimal, byName []summary.NameTotal) {
	fmt.Fprintln(r.out, rule)
	fmt.Fprintf(r.out, "%-15s | %10s %s\n", "TOTAL PRICE", FormatAmount(total), r.currency)
	fmt.Fprintf(r.out, "%s\n\n", rule)

	fmt.Fprintf(r.out, "%-25s | %14s | %5s\n", "ITEM NAME", "PRICE", "COUNT")
	fmt.Fprintln(r.out, rule)
	for _, nt := range byName {
		fmt.Fprintf(r.out, "%-25s | %10s %s | %5s\n", nt.Name, FormatAmount(nt.Total), r.currency, humanize.Comma(int64(nt.Count)))
	}
	fmt.Fprintln(r.out, rule)
}

// PrintMonths writes the per-month table in the given order
func (r *Reporter) PrintMonths(byMonth []summary.MonthTotal) {
	fmt.Fprintf(r.out, "%-10s | %14s | %5s\n", "MONTH", "PRICE", "COUNT")
	fmt.Fprintln(r.out, rule)
	for _, mt := range byMonth {
		fmt.Fprintf(r.out, "%-10s | %10s %s | %5s\n", mt.Month, FormatAmount(mt.Total), r.currency, humanize.Comma(int64(mt.Count)))
	}
	fmt.Fprintln(r.out, rule)
}
