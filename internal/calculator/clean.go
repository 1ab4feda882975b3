package calculator

import (
	"fmt"
	"portfolioanalysis/internal/domain"
	"sort"
	"strings"
	"time"
)

var dateLayouts = []string{
	time.DateOnly,
	"2006/01/02",
	"01/02/2006",
	time.RFC3339,
	time.DateTime,
	"2006-01-02T15:04:05",
}

// ParseDate accepts the handful of layouts we see in uploads and
// truncates to a UTC calendar date
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: could not parse %q, expected YYYY-MM-DD", domain.ErrInvalidDateFormat, s)
}

// Clean validates raw tabular data and turns it into a PriceTable.
// It parses and sorts the dates, rejects duplicate dates or symbols,
// and drops every row with a missing value.
func Clean(raw domain.RawTable) (*domain.PriceTable, error) {
	if len(raw.Dates) == 0 || len(raw.Symbols) == 0 {
		return nil, fmt.Errorf("%w: table has no rows or no columns", domain.ErrEmptyData)
	}
	if len(raw.Values) != len(raw.Dates) {
		return nil, fmt.Errorf("got %d value rows for %d dates", len(raw.Values), len(raw.Dates))
	}
	seen := map[string]bool{}
	for _, s := range raw.Symbols {
		key := strings.ToUpper(strings.TrimSpace(s))
		if seen[key] {
			return nil, fmt.Errorf("%w: %s appears in more than one column", domain.ErrDuplicateSymbol, key)
		}
		seen[key] = true
	}

	table := &domain.PriceTable{
		Dates:   make([]time.Time, len(raw.Dates)),
		Symbols: raw.Symbols,
		Closes:  make([][]float64, len(raw.Dates)),
	}
	for i, d := range raw.Dates {
		date, err := ParseDate(d)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		if len(raw.Values[i]) != len(raw.Symbols) {
			return nil, fmt.Errorf("row %d has %d values for %d symbols", i+1, len(raw.Values[i]), len(raw.Symbols))
		}
		table.Dates[i] = date
		table.Closes[i] = raw.Values[i]
	}

	return CleanPrices(table)
}

// CleanPrices applies the same checks as Clean to an already typed
// table, such as one assembled from provider results
func CleanPrices(prices *domain.PriceTable) (*domain.PriceTable, error) {
	if prices == nil || prices.Len() == 0 || len(prices.Symbols) == 0 || prices.AllMissing() {
		return nil, fmt.Errorf("%w: table is empty or only contains missing values", domain.ErrEmptyData)
	}

	idx := make([]int, prices.Len())
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return prices.Dates[idx[a]].Before(prices.Dates[idx[b]])
	})

	out := &domain.PriceTable{
		Dates:   []time.Time{},
		Symbols: prices.Symbols,
		Closes:  [][]float64{},
	}
	for n, i := range idx {
		if n > 0 && prices.Dates[i].Equal(prices.Dates[idx[n-1]]) {
			return nil, fmt.Errorf("%w: duplicate date %s", domain.ErrInvalidDateFormat, prices.Dates[i].Format(time.DateOnly))
		}
		if hasMissing(prices.Closes[i]) {
			continue
		}
		out.Dates = append(out.Dates, prices.Dates[i])
		out.Closes = append(out.Closes, prices.Closes[i])
	}

	if out.Len() == 0 {
		return nil, fmt.Errorf("%w: no rows left after dropping missing values", domain.ErrEmptyData)
	}

	return out, nil
}

func hasMissing(row []float64) bool {
	for _, v := range row {
		if domain.IsMissing(v) {
			return true
		}
	}
	return false
}
