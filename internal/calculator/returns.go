package calculator

import (
	"fmt"
	"portfolioanalysis/internal/domain"
	"time"
)

// ComputeReturns converts closes into row-over-row percent changes.
// The first row is always dropped, as is any row that ends up with a
// missing value.
func ComputeReturns(prices *domain.PriceTable) (*domain.ReturnsTable, error) {
	if prices == nil || prices.Len() == 0 || prices.AllMissing() {
		return nil, fmt.Errorf("%w: no prices to compute returns from", domain.ErrEmptyData)
	}
	for i := 1; i < prices.Len(); i++ {
		if !prices.Dates[i].After(prices.Dates[i-1]) {
			return nil, fmt.Errorf(
				"%w: dates must be strictly increasing, got %s after %s",
				domain.ErrInvalidDateFormat,
				prices.Dates[i].Format(time.DateOnly),
				prices.Dates[i-1].Format(time.DateOnly),
			)
		}
	}

	out := &domain.ReturnsTable{
		Dates:   []time.Time{},
		Symbols: prices.Symbols,
		Returns: [][]float64{},
	}
	for i := 1; i < prices.Len(); i++ {
		row := make([]float64, len(prices.Symbols))
		for j := range prices.Symbols {
			prev := prices.Closes[i-1][j]
			row[j] = (prices.Closes[i][j] - prev) / prev
		}
		if hasMissing(row) {
			continue
		}
		out.Dates = append(out.Dates, prices.Dates[i])
		out.Returns = append(out.Returns, row)
	}

	if out.Len() == 0 {
		return nil, fmt.Errorf("%w: no returns left after dropping missing values", domain.ErrEmptyData)
	}

	return out, nil
}

// CumulativeReturns compounds the returns table, giving the total
// return up to and including each date
func CumulativeReturns(returns *domain.ReturnsTable) *domain.ReturnsTable {
	out := &domain.ReturnsTable{
		Dates:   returns.Dates,
		Symbols: returns.Symbols,
		Returns: make([][]float64, returns.Len()),
	}
	growth := make([]float64, len(returns.Symbols))
	for j := range growth {
		growth[j] = 1
	}
	for i, row := range returns.Returns {
		out.Returns[i] = make([]float64, len(row))
		for j, r := range row {
			growth[j] *= 1 + r
			out.Returns[i][j] = growth[j] - 1
		}
	}
	return out
}
