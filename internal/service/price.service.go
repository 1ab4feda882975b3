package service

import (
	"context"
	"fmt"
	"math"
	"portfolioanalysis/internal/calculator"
	"portfolioanalysis/internal/domain"
	"portfolioanalysis/internal/logger"
	"portfolioanalysis/internal/repository"
	"portfolioanalysis/internal/util"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// cached bars may start or end a few days inside the requested range,
// or skip a few days between bars, because of weekends and market holidays
const cacheCoverageSlack = 4 * 24 * time.Hour

// how many symbols are fetched from the provider at once
const maxConcurrentFetches = 4

type PriceService interface {
	GetHistory(ctx context.Context, symbol string, start, end time.Time) ([]domain.AssetPrice, error)
	// GetPriceTable fetches every symbol and joins the closes on date.
	// Dates where any symbol has no bar are dropped.
	GetPriceTable(ctx context.Context, symbols []string, start, end time.Time) (*domain.PriceTable, error)
}

type priceServiceHandler struct {
	PriceHistoryRepository repository.PriceHistoryRepository
	// optional, nil disables the local cache
	AdjPriceRepository repository.AdjustedPriceRepository

	group *singleflight.Group
}

func NewPriceService(priceHistoryRepository repository.PriceHistoryRepository, adjPriceRepository repository.AdjustedPriceRepository) PriceService {
	return priceServiceHandler{
		PriceHistoryRepository: priceHistoryRepository,
		AdjPriceRepository:     adjPriceRepository,
		group:                  &singleflight.Group{},
	}
}

// NormalizeSymbols upper-cases and trims symbols, dropping blanks and
// repeats while keeping the order they were given in
func NormalizeSymbols(symbols []string) []string {
	out := []string{}
	seen := map[string]bool{}
	for _, s := range symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func (h priceServiceHandler) GetHistory(ctx context.Context, symbol string, start, end time.Time) ([]domain.AssetPrice, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("%w: ticker is required", domain.ErrEmptyData)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end %s is before start %s", domain.ErrInvalidDateFormat, end.Format(time.DateOnly), start.Format(time.DateOnly))
	}

	// the flight outlives any one caller, so it keeps the logger and
	// profile of the first caller but not its cancellation
	key := fmt.Sprintf("%s|%s|%s", symbol, start.Format(time.DateOnly), end.Format(time.DateOnly))
	flightCtx := context.WithoutCancel(ctx)
	ch := h.group.DoChan(key, func() (interface{}, error) {
		return h.loadHistory(flightCtx, symbol, start, end)
	})

	var result singleflight.Result
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("failed to get price history for %s: %w", symbol, ctx.Err())
	case result = <-ch:
	}
	if result.Err != nil {
		return nil, result.Err
	}

	prices := result.Val.([]domain.AssetPrice)
	if len(prices) == 0 {
		return nil, fmt.Errorf("%w: no data found for ticker %s", domain.ErrEmptyData, symbol)
	}

	// callers sharing a flight get the same backing array
	out := make([]domain.AssetPrice, len(prices))
	copy(out, prices)
	return out, nil
}

func (h priceServiceHandler) loadHistory(ctx context.Context, symbol string, start, end time.Time) ([]domain.AssetPrice, error) {
	log := logger.FromContext(ctx)

	if h.AdjPriceRepository != nil {
		cached, err := h.AdjPriceRepository.List(ctx, symbol, start, end)
		if err != nil {
			log.Warnf("failed to read cached prices for %s: %v", symbol, err)
		} else if coversRange(cached, start, end) {
			log.Debugf("using %d cached prices for %s", len(cached), symbol)
			return cached, nil
		}
	}

	prices, err := h.PriceHistoryRepository.GetHistory(ctx, symbol, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to get price history for %s: %w", symbol, err)
	}

	if h.AdjPriceRepository != nil && len(prices) > 0 {
		if err := h.AdjPriceRepository.Add(ctx, prices); err != nil {
			log.Warnf("failed to cache prices for %s: %v", symbol, err)
		}
	}

	return prices, nil
}

// coversRange reports whether cached bars span start..end with no hole
// wider than a long weekend, so separately cached windows are not
// stitched together
func coversRange(prices []domain.AssetPrice, start, end time.Time) bool {
	if len(prices) == 0 {
		return false
	}
	first := prices[0].Date
	last := prices[len(prices)-1].Date
	if first.After(start.Add(cacheCoverageSlack)) || last.Before(end.Add(-cacheCoverageSlack)) {
		return false
	}
	for i := 1; i < len(prices); i++ {
		if prices[i].Date.Sub(prices[i-1].Date) > cacheCoverageSlack {
			return false
		}
	}
	return true
}

func (h priceServiceHandler) GetPriceTable(ctx context.Context, symbols []string, start, end time.Time) (*domain.PriceTable, error) {
	symbols = NormalizeSymbols(symbols)
	if len(symbols) == 0 {
		return nil, fmt.Errorf("%w: at least one ticker is required", domain.ErrEmptyData)
	}

	defer domain.ProfileFromContext(ctx).StartSpan("fetch prices")()

	histories := make([][]domain.AssetPrice, len(symbols))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)
	for i, symbol := range symbols {
		i, symbol := i, symbol
		g.Go(func() error {
			prices, err := h.GetHistory(gctx, symbol, start, end)
			if err != nil {
				return err
			}
			histories[i] = prices
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return calculator.CleanPrices(joinHistories(symbols, histories))
}

// joinHistories outer joins the closes of each symbol on date. A date
// missing for a symbol gets NaN.
func joinHistories(symbols []string, histories [][]domain.AssetPrice) *domain.PriceTable {
	rowByDate := map[string][]float64{}
	dates := []time.Time{}
	for j, prices := range histories {
		for _, p := range prices {
			date := util.TruncateToDate(p.Date)
			key := date.Format(time.DateOnly)
			row, ok := rowByDate[key]
			if !ok {
				row = make([]float64, len(symbols))
				for k := range row {
					row[k] = math.NaN()
				}
				rowByDate[key] = row
				dates = append(dates, date)
			}
			row[j] = p.ClosingPrice()
		}
	}

	sort.Slice(dates, func(i, j int) bool {
		return dates[i].Before(dates[j])
	})
	closes := make([][]float64, len(dates))
	for i, d := range dates {
		closes[i] = rowByDate[d.Format(time.DateOnly)]
	}

	return &domain.PriceTable{
		Dates:   dates,
		Symbols: symbols,
		Closes:  closes,
	}
}
