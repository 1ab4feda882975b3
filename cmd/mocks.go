package cmd

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand"
	"portfolioanalysis/internal/domain"
	"portfolioanalysis/internal/repository"
	"portfolioanalysis/internal/util"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// UseOfflinePrices swaps the market data provider for generated prices,
// for demos and local runs without network access
var UseOfflinePrices = false

// NewOfflinePriceRepositoryForTests generates a deterministic random
// walk per symbol. The same symbol always gets the same prices on the
// same day, regardless of the requested range.
func NewOfflinePriceRepositoryForTests() repository.PriceHistoryRepository {
	return offlinePriceRepositoryHandler{
		epoch: util.NewDate(2015, 1, 2),
	}
}

type offlinePriceRepositoryHandler struct {
	epoch time.Time
}

func symbolSeed(symbol string) int64 {
	h := fnv.New64a()
	h.Write([]byte(strings.ToUpper(symbol)))
	return int64(h.Sum64() >> 1)
}

func (h offlinePriceRepositoryHandler) GetHistory(ctx context.Context, symbol string, start, end time.Time) ([]domain.AssetPrice, error) {
	seed := symbolSeed(symbol)
	rng := rand.New(rand.NewSource(seed))
	price := 20 + float64(seed%400)
	drift := 0.0002 + float64(seed%7)*0.0001
	vol := 0.01 + float64(seed%5)*0.003

	start = util.TruncateToDate(start)
	end = util.TruncateToDate(end)
	out := []domain.AssetPrice{}
	for d := h.epoch; !d.After(end); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		price *= 1 + drift + vol*rng.NormFloat64()
		price = math.Max(price, 1)
		if d.Before(start) {
			continue
		}
		p := decimal.NewFromFloat(price).Round(2)
		out = append(out, domain.AssetPrice{
			Symbol:   symbol,
			Date:     d,
			Open:     p,
			High:     p,
			Low:      p,
			Close:    p,
			AdjClose: p,
			Volume:   1_000_000,
		})
	}
	return out, nil
}
