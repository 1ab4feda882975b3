package repository

import (
	"context"
	"errors"
	"portfolioanalysis/internal/util"
	interestrate "portfolioanalysis/pkg/interest_rate"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeYieldCurveClient struct {
	curves map[string]map[int]float64
	calls  []string
	err    error
}

func (f *fakeYieldCurveClient) GetYieldCurve(ctx context.Context, date time.Time) (*interestrate.InterestRateMap, error) {
	f.calls = append(f.calls, date.Format(time.DateOnly))
	if f.err != nil {
		return nil, f.err
	}
	rates := f.curves[date.Format(time.DateOnly)]
	if rates == nil {
		rates = map[int]float64{}
	}
	return &interestrate.InterestRateMap{Rates: rates}, nil
}

func Test_interestRateRepositoryHandler_GetRiskFreeRate(t *testing.T) {
	ctx := context.Background()

	t.Run("walks back over the weekend and caches", func(t *testing.T) {
		client := &fakeYieldCurveClient{
			curves: map[string]map[int]float64{
				"2024-01-05": {12: 0.048, 24: 0.043},
			},
		}
		repo := NewInterestRateRepository(client)

		sunday := util.NewDate(2024, 1, 7)
		rate, err := repo.GetRiskFreeRate(ctx, sunday, 12)
		require.NoError(t, err)
		require.Equal(t, 0.048, rate)
		require.Equal(t, []string{"2024-01-07", "2024-01-06", "2024-01-05"}, client.calls)

		rate, err = repo.GetRiskFreeRate(ctx, sunday, 24)
		require.NoError(t, err)
		require.Equal(t, 0.043, rate)
		require.Len(t, client.calls, 3)
	})

	t.Run("nothing published", func(t *testing.T) {
		repo := NewInterestRateRepository(&fakeYieldCurveClient{})
		_, err := repo.GetRiskFreeRate(ctx, util.NewDate(2024, 1, 7), 12)
		require.Error(t, err)
	})

	t.Run("client error", func(t *testing.T) {
		repo := NewInterestRateRepository(&fakeYieldCurveClient{err: errors.New("timeout")})
		_, err := repo.GetRiskFreeRate(ctx, util.NewDate(2024, 1, 7), 12)
		require.Error(t, err)
	})
}
