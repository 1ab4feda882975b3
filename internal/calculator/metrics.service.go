package calculator

import (
	"fmt"
	"math"
	"portfolioanalysis/internal/domain"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

const DefaultTradingDays = 252

// volatility at or below this is treated as zero when computing sharpe
const zeroVolatilityEpsilon = 1e-12

// ReturnsStats holds the annualized mean vector and covariance matrix
// of a returns table, which is all that's needed to score any weight
// vector over the same symbols
type ReturnsStats struct {
	Symbols     []string
	AnnualMean  []float64
	AnnualCov   *mat.SymDense
	TradingDays int
}

// AssetMetrics are the standalone annualized stats of one symbol
type AssetMetrics struct {
	Symbol           string
	AnnualReturn     float64
	AnnualVolatility float64
}

func tradingDaysOrDefault(tradingDays int) int {
	if tradingDays <= 0 {
		return DefaultTradingDays
	}
	return tradingDays
}

// NewReturnsStats annualizes the sample mean and covariance of the
// returns. Sample covariance needs at least two rows.
func NewReturnsStats(returns *domain.ReturnsTable, tradingDays int) (*ReturnsStats, error) {
	if returns == nil || returns.Len() == 0 || len(returns.Symbols) == 0 {
		return nil, fmt.Errorf("%w: returns table is empty", domain.ErrEmptyData)
	}
	if returns.Len() < 2 {
		return nil, fmt.Errorf("%w: need at least 2 returns to compute covariance, got %d", domain.ErrEmptyData, returns.Len())
	}
	tradingDays = tradingDaysOrDefault(tradingDays)
	n := len(returns.Symbols)

	means := make([]float64, n)
	for j := range returns.Symbols {
		m, err := stats.Mean(returns.Column(j))
		if err != nil {
			return nil, fmt.Errorf("failed to compute mean return for %s: %w", returns.Symbols[j], err)
		}
		means[j] = m * float64(tradingDays)
	}

	data := make([]float64, 0, returns.Len()*n)
	for _, row := range returns.Returns {
		data = append(data, row...)
	}
	observations := mat.NewDense(returns.Len(), n, data)

	var cov mat.SymDense
	stat.CovarianceMatrix(&cov, observations, nil)
	cov.ScaleSym(float64(tradingDays), &cov)

	return &ReturnsStats{
		Symbols:     returns.Symbols,
		AnnualMean:  means,
		AnnualCov:   &cov,
		TradingDays: tradingDays,
	}, nil
}

// Point computes the annualized return and volatility of the weights,
// which must be ordered like s.Symbols
func (s ReturnsStats) Point(weights []float64) (float64, float64) {
	w := mat.NewVecDense(len(weights), weights)
	portfolioReturn := mat.Dot(mat.NewVecDense(len(s.AnnualMean), s.AnnualMean), w)
	// rounding can push a zero variance slightly negative
	variance := math.Max(0, mat.Inner(w, s.AnnualCov, w))
	return portfolioReturn, math.Sqrt(variance)
}

// Sharpe is the excess return per unit of volatility. It fails
// rather than return Inf/NaN when volatility is zero.
func Sharpe(portfolioReturn, portfolioVolatility, riskFreeRate float64) (float64, error) {
	if portfolioVolatility <= zeroVolatilityEpsilon || math.IsNaN(portfolioVolatility) {
		return 0, domain.ErrZeroVolatility
	}
	return (portfolioReturn - riskFreeRate) / portfolioVolatility, nil
}

// ComputeStats scores a weight vector against a returns table. All
// values are decimals, including riskFreeRate.
func ComputeStats(returns *domain.ReturnsTable, weights domain.WeightVector, riskFreeRate float64, tradingDays int) (*domain.PortfolioStats, error) {
	if returns == nil || returns.Len() == 0 {
		return nil, fmt.Errorf("%w: returns table is empty", domain.ErrEmptyData)
	}
	if err := weights.Validate(returns.Symbols); err != nil {
		return nil, err
	}

	s, err := NewReturnsStats(returns, tradingDays)
	if err != nil {
		return nil, err
	}

	w := weights.Slice(returns.Symbols)
	portfolioReturn, portfolioVolatility := s.Point(w)
	sharpe, err := Sharpe(portfolioReturn, portfolioVolatility, riskFreeRate)
	if err != nil {
		return nil, fmt.Errorf("failed to compute sharpe ratio: %w", err)
	}

	return &domain.PortfolioStats{
		Symbols:     returns.Symbols,
		Weights:     w,
		Return:      portfolioReturn,
		Volatility:  portfolioVolatility,
		SharpeRatio: sharpe,
	}, nil
}

// AssetStats computes the annualized mean return and volatility of
// each symbol on its own
func AssetStats(returns *domain.ReturnsTable, tradingDays int) ([]AssetMetrics, error) {
	if returns == nil || returns.Len() == 0 {
		return nil, fmt.Errorf("%w: returns table is empty", domain.ErrEmptyData)
	}
	tradingDays = tradingDaysOrDefault(tradingDays)

	out := make([]AssetMetrics, len(returns.Symbols))
	for j, symbol := range returns.Symbols {
		col := returns.Column(j)
		m, err := stats.Mean(col)
		if err != nil {
			return nil, fmt.Errorf("failed to compute mean return for %s: %w", symbol, err)
		}
		// a single observation has no sample stdev, leave it NaN and let
		// callers decide
		stdev := math.NaN()
		if len(col) > 1 {
			stdev, err = stats.StandardDeviationSample(col)
			if err != nil {
				return nil, fmt.Errorf("failed to compute stdev for %s: %w", symbol, err)
			}
		}
		out[j] = AssetMetrics{
			Symbol:           symbol,
			AnnualReturn:     m * float64(tradingDays),
			AnnualVolatility: stdev * math.Sqrt(float64(tradingDays)),
		}
	}

	return out, nil
}
