package calculator

import (
	"math"
	"portfolioanalysis/internal/domain"
	"portfolioanalysis/internal/util"
	"time"

	"github.com/google/go-cmp/cmp"
)

var floatComparer = cmp.Comparer(func(i, j float64) bool {
	if math.IsNaN(i) || math.IsNaN(j) {
		return math.IsNaN(i) && math.IsNaN(j)
	}
	return math.Abs(i-j) < 1e-9
})

func tradingDates(n int) []time.Time {
	out := []time.Time{}
	d := util.NewDate(2024, 1, 2)
	for len(out) < n {
		if d.Weekday() != time.Saturday && d.Weekday() != time.Sunday {
			out = append(out, d)
		}
		d = d.AddDate(0, 0, 1)
	}
	return out
}

func newPriceTable(symbols []string, columns ...[]float64) *domain.PriceTable {
	n := len(columns[0])
	t := &domain.PriceTable{
		Dates:   tradingDates(n),
		Symbols: symbols,
		Closes:  make([][]float64, n),
	}
	for i := 0; i < n; i++ {
		t.Closes[i] = make([]float64, len(columns))
		for j, col := range columns {
			t.Closes[i][j] = col[i]
		}
	}
	return t
}

func aaplMsft() *domain.PriceTable {
	return newPriceTable(
		[]string{"AAPL", "MSFT"},
		[]float64{100, 101, 99, 102},
		[]float64{50, 50.5, 49.5, 51},
	)
}
