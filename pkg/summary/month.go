package summary

import (
	"fmt"
	"time"
)

const monthLabelLayout = "2006-Jan"

// Month identifies one calendar month
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the month containing t
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// MonthFromIndex is the inverse of Month.Index
func MonthFromIndex(i int) Month {
	year := i / 12
	m := i % 12
	if m < 0 {
		year--
		m += 12
	}
	return Month{Year: year, Month: time.Month(m + 1)}
}

// Index returns year*12 + (month-1); consecutive months have consecutive indices.
func (m Month) Index() int {
	return m.Year*12 + int(m.Month) - 1
}

// Before reports whether m is an earlier month than o
func (m Month) Before(o Month) bool {
	return m.Index() < o.Index()
}

// String renders the display label, e.g. "2024-Jan"
func (m Month) String() string {
	return fmt.Sprintf("%04d-%s", m.Year, m.Month.String()[:3])
}

// ParseMonth parses a label produced by Month.String
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse(monthLabelLayout, s)
	if err != nil {
		return Month{}, fmt.Errorf("failed to parse month %q: %w", s, err)
	}
	return MonthOf(t), nil
}
