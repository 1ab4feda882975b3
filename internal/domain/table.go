package domain

import (
	"math"
	"time"
)

// RawTable is tabular price data before validation, e.g. straight out
// of an uploaded csv. Missing cells are NaN.
type RawTable struct {
	Dates   []string
	Symbols []string
	Values  [][]float64
}

// PriceTable holds daily closes, one row per date and one column
// per symbol. Closes[i][j] is the close of Symbols[j] on Dates[i].
type PriceTable struct {
	Dates   []time.Time
	Symbols []string
	Closes  [][]float64
}

// ReturnsTable has the same shape as PriceTable, but each cell is the
// percent change from the previous row, as a decimal
type ReturnsTable struct {
	Dates   []time.Time
	Symbols []string
	Returns [][]float64
}

func (t PriceTable) Len() int {
	return len(t.Dates)
}

// AllMissing is true when there are no cells with a usable value
func (t PriceTable) AllMissing() bool {
	for _, row := range t.Closes {
		for _, v := range row {
			if !IsMissing(v) {
				return false
			}
		}
	}
	return true
}

// Tail returns the last n rows
func (t PriceTable) Tail(n int) PriceTable {
	if n >= len(t.Dates) {
		return t
	}
	start := len(t.Dates) - n
	return PriceTable{
		Dates:   t.Dates[start:],
		Symbols: t.Symbols,
		Closes:  t.Closes[start:],
	}
}

func (t ReturnsTable) Len() int {
	return len(t.Dates)
}

// Column copies out the returns series of the j-th symbol
func (t ReturnsTable) Column(j int) []float64 {
	out := make([]float64, len(t.Returns))
	for i, row := range t.Returns {
		out[i] = row[j]
	}
	return out
}

func IsMissing(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}
