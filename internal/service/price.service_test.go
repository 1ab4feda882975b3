package service

import (
	"context"
	"fmt"
	"math"
	"portfolioanalysis/internal/domain"
	"portfolioanalysis/internal/repository"
	mock_repository "portfolioanalysis/internal/repository/mocks"
	"portfolioanalysis/internal/util"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestNormalizeSymbols(t *testing.T) {
	require.Equal(
		t,
		"",
		cmp.Diff(
			[]string{"AAPL", "MSFT", "GOOGL"},
			NormalizeSymbols([]string{" aapl", "MSFT", "", "Aapl", "googl "}),
		),
	)
}

func Test_priceServiceHandler_GetPriceTable(t *testing.T) {
	start := util.NewDate(2024, 1, 1)
	end := util.NewDate(2024, 1, 31)

	t.Run("joins closes on date", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		historyRepository := mock_repository.NewMockPriceHistoryRepository(ctrl)
		handler := NewPriceService(historyRepository, nil)

		historyRepository.EXPECT().
			GetHistory(gomock.Any(), "AAPL", start, end).
			Return(bars("AAPL", 100, 101, 99, 102), nil)
		historyRepository.EXPECT().
			GetHistory(gomock.Any(), "MSFT", start, end).
			Return(bars("MSFT", 50, 50.5, 49.5, 51), nil)

		table, err := handler.GetPriceTable(testContext(), []string{"aapl", "msft"}, start, end)
		require.NoError(t, err)
		require.Equal(
			t,
			"",
			cmp.Diff(
				&domain.PriceTable{
					Dates: []time.Time{
						util.NewDate(2024, 1, 2),
						util.NewDate(2024, 1, 3),
						util.NewDate(2024, 1, 4),
						util.NewDate(2024, 1, 5),
					},
					Symbols: []string{"AAPL", "MSFT"},
					Closes: [][]float64{
						{100, 50},
						{101, 50.5},
						{99, 49.5},
						{102, 51},
					},
				},
				table,
			),
		)
	})

	t.Run("drops dates a symbol is missing", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		historyRepository := mock_repository.NewMockPriceHistoryRepository(ctrl)
		handler := NewPriceService(historyRepository, nil)

		msft := bars("MSFT", 50, 50.5, 49.5, 51)
		msft = append(msft[:1], msft[2:]...)
		historyRepository.EXPECT().
			GetHistory(gomock.Any(), "AAPL", start, end).
			Return(bars("AAPL", 100, 101, 99, 102), nil)
		historyRepository.EXPECT().
			GetHistory(gomock.Any(), "MSFT", start, end).
			Return(msft, nil)

		table, err := handler.GetPriceTable(testContext(), []string{"AAPL", "MSFT"}, start, end)
		require.NoError(t, err)
		require.Equal(t, 3, table.Len())
		require.Equal(t, util.NewDate(2024, 1, 4), table.Dates[1])
		for _, row := range table.Closes {
			for _, v := range row {
				require.False(t, math.IsNaN(v))
			}
		}
	})

	t.Run("unknown ticker", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		historyRepository := mock_repository.NewMockPriceHistoryRepository(ctrl)
		handler := NewPriceService(historyRepository, nil)

		historyRepository.EXPECT().
			GetHistory(gomock.Any(), "AAPL", start, end).
			Return(bars("AAPL", 100, 101), nil).
			AnyTimes()
		historyRepository.EXPECT().
			GetHistory(gomock.Any(), "NOPE", start, end).
			Return([]domain.AssetPrice{}, nil)

		_, err := handler.GetPriceTable(testContext(), []string{"AAPL", "NOPE"}, start, end)
		require.ErrorIs(t, err, domain.ErrEmptyData)
		require.ErrorContains(t, err, "no data found for ticker NOPE")
	})

	t.Run("provider failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		historyRepository := mock_repository.NewMockPriceHistoryRepository(ctrl)
		handler := NewPriceService(historyRepository, nil)

		historyRepository.EXPECT().
			GetHistory(gomock.Any(), "AAPL", start, end).
			Return(nil, fmt.Errorf("%w: yahoo returned 500", domain.ErrProvider))

		_, err := handler.GetPriceTable(testContext(), []string{"AAPL"}, start, end)
		require.ErrorIs(t, err, domain.ErrProvider)
	})

	t.Run("no tickers", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		handler := NewPriceService(mock_repository.NewMockPriceHistoryRepository(ctrl), nil)

		_, err := handler.GetPriceTable(testContext(), []string{" ", ""}, start, end)
		require.ErrorIs(t, err, domain.ErrEmptyData)
	})
}

func Test_priceServiceHandler_GetHistory(t *testing.T) {
	start := util.NewDate(2024, 1, 2)
	end := util.NewDate(2024, 1, 5)

	t.Run("end before start", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		handler := NewPriceService(mock_repository.NewMockPriceHistoryRepository(ctrl), nil)

		_, err := handler.GetHistory(testContext(), "AAPL", end, start)
		require.ErrorIs(t, err, domain.ErrInvalidDateFormat)
	})

	t.Run("second request is served from the cache", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		historyRepository := mock_repository.NewMockPriceHistoryRepository(ctrl)

		db, err := repository.NewSqliteDb(":memory:")
		require.NoError(t, err)
		defer db.Close()
		handler := NewPriceService(historyRepository, repository.NewAdjustedPriceRepository(db))

		historyRepository.EXPECT().
			GetHistory(gomock.Any(), "AAPL", start, end).
			Return(bars("AAPL", 100, 101, 99, 102), nil).
			Times(1)

		first, err := handler.GetHistory(testContext(), "AAPL", start, end)
		require.NoError(t, err)
		require.Len(t, first, 4)

		second, err := handler.GetHistory(testContext(), "aapl", start, end)
		require.NoError(t, err)
		require.Len(t, second, 4)
		require.Equal(t, first[3].Date, second[3].Date)
		require.True(t, first[3].AdjClose.Equal(second[3].AdjClose))
	})

	t.Run("partial cache goes to the provider", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		historyRepository := mock_repository.NewMockPriceHistoryRepository(ctrl)

		db, err := repository.NewSqliteDb(":memory:")
		require.NoError(t, err)
		defer db.Close()
		adjPriceRepository := repository.NewAdjustedPriceRepository(db)
		require.NoError(t, adjPriceRepository.Add(testContext(), bars("AAPL", 100, 101)))
		handler := NewPriceService(historyRepository, adjPriceRepository)

		wideEnd := util.NewDate(2024, 1, 31)
		historyRepository.EXPECT().
			GetHistory(gomock.Any(), "AAPL", start, wideEnd).
			Return(bars("AAPL", 100, 101, 99, 102), nil)

		prices, err := handler.GetHistory(testContext(), "AAPL", start, wideEnd)
		require.NoError(t, err)
		require.Len(t, prices, 4)
	})

	t.Run("cache with a hole goes to the provider", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		historyRepository := mock_repository.NewMockPriceHistoryRepository(ctrl)

		db, err := repository.NewSqliteDb(":memory:")
		require.NoError(t, err)
		defer db.Close()
		adjPriceRepository := repository.NewAdjustedPriceRepository(db)
		require.NoError(t, adjPriceRepository.Add(testContext(), barsFrom("AAPL", util.NewDate(2024, 1, 2), 100, 101, 102, 103, 104)))
		require.NoError(t, adjPriceRepository.Add(testContext(), barsFrom("AAPL", util.NewDate(2024, 3, 1), 110, 111, 112, 113, 114)))
		handler := NewPriceService(historyRepository, adjPriceRepository)

		marchEnd := util.NewDate(2024, 3, 7)
		closes := []float64{}
		for i := 0; i < 48; i++ {
			closes = append(closes, 100+float64(i))
		}
		historyRepository.EXPECT().
			GetHistory(gomock.Any(), "AAPL", start, marchEnd).
			Return(barsFrom("AAPL", start, closes...), nil).
			Times(1)

		prices, err := handler.GetHistory(testContext(), "AAPL", start, marchEnd)
		require.NoError(t, err)
		require.Len(t, prices, 48)
		for i := 1; i < len(prices); i++ {
			require.LessOrEqual(t, prices[i].Date.Sub(prices[i-1].Date), cacheCoverageSlack)
		}

		// the refetched range is now cached without the hole
		prices, err = handler.GetHistory(testContext(), "AAPL", start, marchEnd)
		require.NoError(t, err)
		require.Len(t, prices, 48)
	})

	t.Run("cancelled caller does not fail a shared fetch", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		historyRepository := mock_repository.NewMockPriceHistoryRepository(ctrl)
		handler := NewPriceService(historyRepository, nil)

		started := make(chan struct{})
		release := make(chan struct{})
		var once sync.Once
		historyRepository.EXPECT().
			GetHistory(gomock.Any(), "AAPL", start, end).
			DoAndReturn(func(ctx context.Context, symbol string, start, end time.Time) ([]domain.AssetPrice, error) {
				once.Do(func() { close(started) })
				select {
				case <-release:
					return bars("AAPL", 100, 101, 99, 102), nil
				case <-ctx.Done():
					return nil, ctx.Err()
				}
			}).
			AnyTimes()

		ctxA, cancelA := context.WithCancel(testContext())
		errA := make(chan error, 1)
		go func() {
			_, err := handler.GetHistory(ctxA, "AAPL", start, end)
			errA <- err
		}()
		<-started

		type result struct {
			prices []domain.AssetPrice
			err    error
		}
		resultB := make(chan result, 1)
		go func() {
			prices, err := handler.GetHistory(testContext(), "AAPL", start, end)
			resultB <- result{prices: prices, err: err}
		}()
		time.Sleep(20 * time.Millisecond)

		cancelA()
		require.ErrorIs(t, <-errA, context.Canceled)

		close(release)
		b := <-resultB
		require.NoError(t, b.err)
		require.Len(t, b.prices, 4)
	})
}

func Test_coversRange(t *testing.T) {
	type testCase struct {
		name     string
		prices   []domain.AssetPrice
		start    time.Time
		end      time.Time
		expected bool
	}
	// 2024-01-12 is a Friday and 2024-01-15 a market holiday
	holidayWeekend := append(
		barsFrom("AAPL", util.NewDate(2024, 1, 10), 1, 2, 3),
		barsFrom("AAPL", util.NewDate(2024, 1, 16), 4, 5)...,
	)
	for _, tc := range []testCase{
		{
			name:     "empty",
			start:    util.NewDate(2024, 1, 2),
			end:      util.NewDate(2024, 1, 5),
			expected: false,
		},
		{
			name:     "long weekend is not a hole",
			prices:   holidayWeekend,
			start:    util.NewDate(2024, 1, 10),
			end:      util.NewDate(2024, 1, 17),
			expected: true,
		},
		{
			name: "separate windows leave a hole",
			prices: append(
				barsFrom("AAPL", util.NewDate(2024, 1, 2), 1, 2, 3),
				barsFrom("AAPL", util.NewDate(2024, 1, 22), 4, 5)...,
			),
			start:    util.NewDate(2024, 1, 2),
			end:      util.NewDate(2024, 1, 23),
			expected: false,
		},
		{
			name:     "ends too early",
			prices:   bars("AAPL", 1, 2, 3),
			start:    util.NewDate(2024, 1, 2),
			end:      util.NewDate(2024, 1, 31),
			expected: false,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, coversRange(tc.prices, tc.start, tc.end))
		})
	}
}
