package repository

import (
	"context"
	"fmt"
	"portfolioanalysis/internal/util"
	interestrate "portfolioanalysis/pkg/interest_rate"
	"sync"
	"time"
)

// how far back to look for a published curve when the date is a
// weekend or holiday
const maxYieldCurveLookback = 5

type InterestRateRepository interface {
	// GetRiskFreeRate returns the treasury yield for the maturity on
	// or shortly before the date, as a decimal
	GetRiskFreeRate(ctx context.Context, date time.Time, monthsOut int) (float64, error)
}

type yieldCurveClient interface {
	GetYieldCurve(ctx context.Context, date time.Time) (*interestrate.InterestRateMap, error)
}

func NewInterestRateRepository(client yieldCurveClient) InterestRateRepository {
	return &interestRateRepositoryHandler{
		Client:    client,
		Cache:     map[string]*interestrate.InterestRateMap{},
		ReadMutex: &sync.RWMutex{},
	}
}

type interestRateRepositoryHandler struct {
	Client    yieldCurveClient
	Cache     map[string]*interestrate.InterestRateMap
	ReadMutex *sync.RWMutex
}

func (h *interestRateRepositoryHandler) getFromCache(date time.Time) *interestrate.InterestRateMap {
	h.ReadMutex.RLock()
	defer h.ReadMutex.RUnlock()
	return h.Cache[date.Format(time.DateOnly)]
}

func (h *interestRateRepositoryHandler) addToCache(date time.Time, m *interestrate.InterestRateMap) {
	h.ReadMutex.Lock()
	defer h.ReadMutex.Unlock()
	h.Cache[date.Format(time.DateOnly)] = m
}

func (h *interestRateRepositoryHandler) GetRiskFreeRate(ctx context.Context, date time.Time, monthsOut int) (float64, error) {
	date = util.TruncateToDate(date)
	for i := 0; i < maxYieldCurveLookback; i++ {
		d := date.AddDate(0, 0, -i)
		curve := h.getFromCache(d)
		if curve == nil {
			var err error
			curve, err = h.Client.GetYieldCurve(ctx, d)
			if err != nil {
				return 0, fmt.Errorf("failed to get yield curve for %s: %w", d.Format(time.DateOnly), err)
			}
			h.addToCache(d, curve)
		}
		if len(curve.Rates) > 0 {
			return curve.GetRate(monthsOut)
		}
	}
	return 0, fmt.Errorf("no yield curve published in the %d days before %s", maxYieldCurveLookback, date.Format(time.DateOnly))
}
