package service

import (
	"context"
	"portfolioanalysis/internal/domain"
	"portfolioanalysis/internal/logger"
	"portfolioanalysis/internal/util"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func testContext() context.Context {
	return logger.WithLogger(context.Background(), zap.NewNop().Sugar())
}

// bars builds one bar per close, starting on 2024-01-02 and skipping
// weekends
func bars(symbol string, closes ...float64) []domain.AssetPrice {
	return barsFrom(symbol, util.NewDate(2024, 1, 2), closes...)
}

func barsFrom(symbol string, d time.Time, closes ...float64) []domain.AssetPrice {
	out := []domain.AssetPrice{}
	for _, c := range closes {
		for d.Weekday() == 0 || d.Weekday() == 6 {
			d = d.AddDate(0, 0, 1)
		}
		p := decimal.NewFromFloat(c)
		out = append(out, domain.AssetPrice{
			Symbol:   symbol,
			Date:     d,
			Open:     p,
			High:     p,
			Low:      p,
			Close:    p,
			AdjClose: p,
			Volume:   1000,
		})
		d = d.AddDate(0, 0, 1)
	}
	return out
}
