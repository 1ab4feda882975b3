package repository

import (
	"math"
	"portfolioanalysis/internal/domain"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestLoadPriceCsv(t *testing.T) {
	nanComparer := cmp.Comparer(func(i, j float64) bool {
		if math.IsNaN(i) || math.IsNaN(j) {
			return math.IsNaN(i) && math.IsNaN(j)
		}
		return i == j
	})

	t.Run("wide format", func(t *testing.T) {
		table, err := LoadPriceCsv(strings.NewReader(
			"Date,aapl, MSFT\n" +
				"2023-01-03,125.07,239.58\n" +
				"2023-01-04,126.36,\n" +
				"2023-01-05,125.02,222.31\n",
		))
		require.NoError(t, err)
		require.Equal(
			t,
			"",
			cmp.Diff(
				&domain.RawTable{
					Dates:   []string{"2023-01-03", "2023-01-04", "2023-01-05"},
					Symbols: []string{"AAPL", "MSFT"},
					Values: [][]float64{
						{125.07, 239.58},
						{126.36, math.NaN()},
						{125.02, 222.31},
					},
				},
				table,
				nanComparer,
			),
		)
	})

	t.Run("long format", func(t *testing.T) {
		table, err := LoadPriceCsv(strings.NewReader(
			"Date,Symbol,Price\n" +
				"2020-01-02,AAPL,300.35\n" +
				"2020-01-02,MSFT,160.62\n" +
				"2020-01-03,AAPL,297.43\n",
		))
		require.NoError(t, err)
		require.Equal(
			t,
			"",
			cmp.Diff(
				&domain.RawTable{
					Dates:   []string{"2020-01-02", "2020-01-03"},
					Symbols: []string{"AAPL", "MSFT"},
					Values: [][]float64{
						{300.35, 160.62},
						{297.43, math.NaN()},
					},
				},
				table,
				nanComparer,
			),
		)
	})

	t.Run("byte order mark", func(t *testing.T) {
		table, err := LoadPriceCsv(strings.NewReader("\ufeffdate,AAPL\n2023-01-03,1\n"))
		require.NoError(t, err)
		require.Equal(t, []string{"AAPL"}, table.Symbols)
		require.Equal(t, []string{"2023-01-03"}, table.Dates)
	})

	t.Run("empty file", func(t *testing.T) {
		_, err := LoadPriceCsv(strings.NewReader("  \n"))
		require.ErrorIs(t, err, domain.ErrEmptyData)
	})

	t.Run("only a date column", func(t *testing.T) {
		_, err := LoadPriceCsv(strings.NewReader("date\n2023-01-03\n"))
		require.ErrorIs(t, err, domain.ErrEmptyData)
	})
}
