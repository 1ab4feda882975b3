package repository

import (
	"context"
	"fmt"
	"portfolioanalysis/internal/domain"
	"portfolioanalysis/internal/logger"
	"portfolioanalysis/internal/util"
	"sort"
	"time"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
)

type fetchFunc func(symbol string, start, end time.Time) ([]domain.AssetPrice, error)

type YahooPriceRepositoryOptions struct {
	// Attempts is the total number of tries, including the first
	Attempts int
	Backoff  time.Duration
}

func NewYahooPriceRepository(opts YahooPriceRepositoryOptions) PriceHistoryRepository {
	if opts.Attempts <= 0 {
		opts.Attempts = 1
	}
	return yahooPriceRepositoryHandler{
		attempts: opts.Attempts,
		backoff:  opts.Backoff,
		fetch:    fetchChart,
	}
}

type yahooPriceRepositoryHandler struct {
	attempts int
	backoff  time.Duration
	fetch    fetchFunc
}

func fetchChart(symbol string, start, end time.Time) ([]domain.AssetPrice, error) {
	// chart end is exclusive
	exclusiveEnd := end.AddDate(0, 0, 1)
	params := &chart.Params{
		Start:    datetime.New(&start),
		End:      datetime.New(&exclusiveEnd),
		Symbol:   symbol,
		Interval: datetime.OneDay,
	}
	iter := chart.Get(params)

	out := []domain.AssetPrice{}
	for iter.Next() {
		bar := iter.Bar()
		out = append(out, domain.AssetPrice{
			Symbol:   symbol,
			Date:     util.TruncateToDate(time.Unix(int64(bar.Timestamp), 0)),
			Open:     bar.Open,
			High:     bar.High,
			Low:      bar.Low,
			Close:    bar.Close,
			AdjClose: bar.AdjClose,
			Volume:   int64(bar.Volume),
		})
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}

	return out, nil
}

// GetHistory retries failed fetches with a fixed backoff
func (h yahooPriceRepositoryHandler) GetHistory(ctx context.Context, symbol string, start, end time.Time) ([]domain.AssetPrice, error) {
	log := logger.FromContext(ctx)

	var lastErr error
	for attempt := 1; attempt <= h.attempts; attempt++ {
		prices, err := h.fetch(symbol, start, end)
		if err == nil {
			sort.Slice(prices, func(i, j int) bool {
				return prices[i].Date.Before(prices[j].Date)
			})
			return dedupeByDate(prices), nil
		}
		lastErr = err
		log.Warnw("failed to fetch price history", "symbol", symbol, "attempt", attempt, "error", err)

		if attempt == h.attempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: fetching %s: %w", domain.ErrProvider, symbol, ctx.Err())
		case <-time.After(h.backoff):
		}
	}

	return nil, fmt.Errorf("%w: failed to get prices for %s after %d attempts: %w", domain.ErrProvider, symbol, h.attempts, lastErr)
}

// yahoo sometimes sends the live bar twice during market hours
func dedupeByDate(prices []domain.AssetPrice) []domain.AssetPrice {
	out := []domain.AssetPrice{}
	for _, p := range prices {
		if len(out) > 0 && out[len(out)-1].Date.Equal(p.Date) {
			out[len(out)-1] = p
			continue
		}
		out = append(out, p)
	}
	return out
}
