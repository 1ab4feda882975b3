package cmd

import (
	"context"
	"portfolioanalysis/internal/util"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func Test_offlinePriceRepositoryHandler(t *testing.T) {
	repo := NewOfflinePriceRepositoryForTests()
	ctx := context.Background()

	t.Run("skips weekends", func(t *testing.T) {
		prices, err := repo.GetHistory(ctx, "AAPL", util.NewDate(2024, 1, 1), util.NewDate(2024, 1, 14))
		require.NoError(t, err)
		require.Len(t, prices, 10)
		for _, p := range prices {
			require.NotEqual(t, time.Saturday, p.Date.Weekday())
			require.NotEqual(t, time.Sunday, p.Date.Weekday())
			require.True(t, p.AdjClose.IsPositive())
		}
	})

	t.Run("stable across ranges", func(t *testing.T) {
		wide, err := repo.GetHistory(ctx, "MSFT", util.NewDate(2024, 1, 1), util.NewDate(2024, 1, 31))
		require.NoError(t, err)
		narrow, err := repo.GetHistory(ctx, "msft", util.NewDate(2024, 1, 10), util.NewDate(2024, 1, 12))
		require.NoError(t, err)
		require.Len(t, narrow, 3)
		require.Equal(t, util.NewDate(2024, 1, 10), narrow[0].Date)
		for _, p := range wide {
			if p.Date.Equal(narrow[0].Date) {
				require.True(t, p.AdjClose.Equal(narrow[0].AdjClose))
			}
		}
	})

	t.Run("different symbols differ", func(t *testing.T) {
		a, err := repo.GetHistory(ctx, "AAPL", util.NewDate(2024, 1, 2), util.NewDate(2024, 1, 2))
		require.NoError(t, err)
		b, err := repo.GetHistory(ctx, "TSLA", util.NewDate(2024, 1, 2), util.NewDate(2024, 1, 2))
		require.NoError(t, err)
		require.False(t, a[0].AdjClose.Equal(b[0].AdjClose))
	})
}
