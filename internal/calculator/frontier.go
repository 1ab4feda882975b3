package calculator

import (
	"fmt"
	"math"
	"math/rand"
	"portfolioanalysis/internal/domain"
	"strings"
	"time"
)

type FrontierMode string

const (
	MonteCarloMode    FrontierMode = "montecarlo"
	InterpolationMode FrontierMode = "interpolation"

	DefaultMonteCarloCount    = 10000
	DefaultInterpolationCount = 10
)

// fallback bounds for interpolation when no asset has a finite stat
var (
	fallbackReturnRange     = [2]float64{0, 0.1}
	fallbackVolatilityRange = [2]float64{0, 0.2}
)

func ParseFrontierMode(s string) (FrontierMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "montecarlo", "monte_carlo", "monte-carlo":
		return MonteCarloMode, nil
	case "interpolation", "linear":
		return InterpolationMode, nil
	}
	return "", fmt.Errorf("unknown frontier mode %q", s)
}

type FrontierOptions struct {
	// Count defaults per mode when <= 0
	Count       int
	TradingDays int
	// Rand drives weight draws. Nil seeds from the clock, so pass a
	// seeded source when results need to be reproducible.
	Rand *rand.Rand
}

type FrontierSampler interface {
	Sample(returns *domain.ReturnsTable, opts FrontierOptions) (domain.FrontierSet, error)
}

func NewFrontierSampler(mode FrontierMode) (FrontierSampler, error) {
	switch mode {
	case MonteCarloMode:
		return MonteCarloSampler{}, nil
	case InterpolationMode:
		return InterpolationSampler{}, nil
	}
	return nil, fmt.Errorf("unknown frontier mode %q", mode)
}

// MonteCarloSampler scores uniformly random long-only portfolios
type MonteCarloSampler struct{}

// FrontierIter lazily draws random portfolios, in the style of a
// chart bar iterator. It is finite and can't be restarted; build a
// new one with the same seed to replay.
type FrontierIter struct {
	stats     *ReturnsStats
	rng       *rand.Rand
	remaining int
	current   domain.FrontierPoint
}

func (it *FrontierIter) Next() bool {
	if it.remaining <= 0 {
		return false
	}
	it.remaining--
	w := domain.RandomWeightSlice(len(it.stats.Symbols), it.rng)
	ret, vol := it.stats.Point(w)
	it.current = domain.FrontierPoint{
		Return:     ret,
		Volatility: vol,
		Weights:    w,
	}
	return true
}

func (it *FrontierIter) Point() domain.FrontierPoint {
	return it.current
}

func (MonteCarloSampler) Iter(returns *domain.ReturnsTable, opts FrontierOptions) (*FrontierIter, error) {
	if returns == nil || returns.Len() == 0 {
		return nil, fmt.Errorf("%w: returns table is empty", domain.ErrEmptyData)
	}
	s, err := NewReturnsStats(returns, opts.TradingDays)
	if err != nil {
		return nil, err
	}
	count := opts.Count
	if count <= 0 {
		count = DefaultMonteCarloCount
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &FrontierIter{
		stats:     s,
		rng:       rng,
		remaining: count,
	}, nil
}

func (m MonteCarloSampler) Sample(returns *domain.ReturnsTable, opts FrontierOptions) (domain.FrontierSet, error) {
	iter, err := m.Iter(returns, opts)
	if err != nil {
		return nil, err
	}
	return Collect(iter), nil
}

func Collect(iter *FrontierIter) domain.FrontierSet {
	out := domain.FrontierSet{}
	for iter.Next() {
		out = append(out, iter.Point())
	}
	return out
}

// MaxSharpe picks the sampled portfolio with the best sharpe ratio.
// Points with zero volatility are skipped.
func MaxSharpe(set domain.FrontierSet, riskFreeRate float64) (*domain.FrontierPoint, float64, error) {
	var best *domain.FrontierPoint
	bestSharpe := math.Inf(-1)
	for i := range set {
		sharpe, err := Sharpe(set[i].Return, set[i].Volatility, riskFreeRate)
		if err != nil {
			continue
		}
		if sharpe > bestSharpe {
			bestSharpe = sharpe
			best = &set[i]
		}
	}
	if best == nil {
		return nil, 0, fmt.Errorf("no sampled portfolio has a defined sharpe ratio: %w", domain.ErrZeroVolatility)
	}
	return best, bestSharpe, nil
}

// InterpolationSampler does not compute an efficient frontier. It
// draws a straight line from the lowest to the highest per-asset
// (return, volatility) and is only meant as a visual placeholder.
type InterpolationSampler struct{}

func (InterpolationSampler) Sample(returns *domain.ReturnsTable, opts FrontierOptions) (domain.FrontierSet, error) {
	assets, err := AssetStats(returns, opts.TradingDays)
	if err != nil {
		return nil, err
	}
	count := opts.Count
	if count <= 0 {
		count = DefaultInterpolationCount
	}

	rets := make([]float64, len(assets))
	vols := make([]float64, len(assets))
	for i, a := range assets {
		rets[i] = a.AnnualReturn
		vols[i] = a.AnnualVolatility
	}
	minRet, maxRet := finiteRange(rets, fallbackReturnRange)
	minVol, maxVol := finiteRange(vols, fallbackVolatilityRange)

	out := make(domain.FrontierSet, count)
	for i := 0; i < count; i++ {
		t := 0.0
		if count > 1 {
			t = float64(i) / float64(count-1)
		}
		out[i] = domain.FrontierPoint{
			Return:     lerp(minRet, maxRet, t),
			Volatility: lerp(minVol, maxVol, t),
		}
	}
	return out, nil
}

// lerp is clamped so rounding never steps past hi
func lerp(lo, hi, t float64) float64 {
	return math.Min(hi, lo+t*(hi-lo))
}

func finiteRange(values []float64, fallback [2]float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if domain.IsMissing(v) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if math.IsInf(lo, 1) {
		return fallback[0], fallback[1]
	}
	return lo, hi
}
