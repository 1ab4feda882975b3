package repository

import (
	"context"
	"portfolioanalysis/internal/domain"
	"time"
)

// PriceHistoryRepository returns daily bars for a symbol between start
// and end, inclusive, sorted by date. An unknown symbol or a range
// with no trading days returns an empty slice, not an error.
type PriceHistoryRepository interface {
	GetHistory(ctx context.Context, symbol string, start, end time.Time) ([]domain.AssetPrice, error)
}
