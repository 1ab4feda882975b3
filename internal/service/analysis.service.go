package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"portfolioanalysis/internal/calculator"
	"portfolioanalysis/internal/domain"
	"portfolioanalysis/internal/logger"
	"portfolioanalysis/internal/repository"
	"portfolioanalysis/internal/util"
	"time"
)

// treasury maturity used as the risk free rate
const riskFreeMaturityMonths = 12

// rows of price data shown on the dashboard
const dashboardTailRows = 5

type AnalysisService interface {
	Optimize(ctx context.Context, input OptimizeInput) (*domain.PortfolioStats, error)
	Frontier(ctx context.Context, input FrontierInput) (*FrontierResult, error)
	Report(ctx context.Context, input ReportInput) (*DashboardReport, error)
}

type OptimizeInput struct {
	Symbols []string
	// Weights are drawn at random when nil
	Weights      []float64
	RiskFreeRate *float64
	Start        time.Time
	End          time.Time
	Seed         *int64
}

type FrontierInput struct {
	Symbols []string
	Mode    calculator.FrontierMode
	// Count defaults from config when <= 0
	Count int
	Seed  *int64
	Start time.Time
	End   time.Time
}

type FrontierResult struct {
	Mode    calculator.FrontierMode
	Symbols []string
	Points  domain.FrontierSet
}

// ReportInput either carries prices directly (uploaded or sample csv)
// or the symbols and range to fetch them for
type ReportInput struct {
	Prices       *domain.PriceTable
	Symbols      []string
	Start        time.Time
	End          time.Time
	RiskFreeRate *float64
	Seed         *int64
}

type DashboardReport struct {
	Tail         domain.PriceTable
	RiskFreeRate float64
	Assets       []calculator.AssetMetrics
	// AnnualReturn is the mean of the per-asset annualized returns
	AnnualReturn float64
	// SharpeRatio of the equal weighted portfolio, nil when it has no
	// volatility
	SharpeRatio    *float64
	Cumulative     *domain.ReturnsTable
	Frontier       domain.FrontierSet
	OptimalWeights domain.WeightVector
	OptimalSharpe  *float64
}

type analysisServiceHandler struct {
	PriceService PriceService
	// optional, only used when Config.UseTreasuryRate is set
	InterestRateRepository repository.InterestRateRepository
	Config                 util.AnalysisConfig
	Now                    func() time.Time
}

func NewAnalysisService(priceService PriceService, interestRateRepository repository.InterestRateRepository, config util.AnalysisConfig) AnalysisService {
	return analysisServiceHandler{
		PriceService:           priceService,
		InterestRateRepository: interestRateRepository,
		Config:                 config,
		Now:                    time.Now,
	}
}

func newRand(seed *int64) *rand.Rand {
	if seed != nil {
		return rand.New(rand.NewSource(*seed))
	}
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// riskFreeRate uses the requested rate, then the treasury yield if
// enabled, then the configured default
func (h analysisServiceHandler) riskFreeRate(ctx context.Context, requested *float64) float64 {
	if requested != nil {
		return *requested
	}
	if h.Config.UseTreasuryRate && h.InterestRateRepository != nil {
		rate, err := h.InterestRateRepository.GetRiskFreeRate(ctx, h.Now(), riskFreeMaturityMonths)
		if err == nil {
			return rate
		}
		logger.FromContext(ctx).Warnf("failed to get treasury rate, using default %f: %v", h.Config.RiskFreeRate, err)
	}
	return h.Config.RiskFreeRate
}

func (h analysisServiceHandler) getReturns(ctx context.Context, symbols []string, start, end time.Time) (*domain.ReturnsTable, error) {
	prices, err := h.PriceService.GetPriceTable(ctx, symbols, start, end)
	if err != nil {
		return nil, err
	}
	return calculator.ComputeReturns(prices)
}

func (h analysisServiceHandler) Optimize(ctx context.Context, input OptimizeInput) (*domain.PortfolioStats, error) {
	symbols := NormalizeSymbols(input.Symbols)
	var weights domain.WeightVector
	if input.Weights != nil {
		// check before fetching anything
		w, err := domain.NewWeightVector(symbols, input.Weights)
		if err != nil {
			return nil, err
		}
		if err := w.Validate(symbols); err != nil {
			return nil, err
		}
		weights = w
	}

	returns, err := h.getReturns(ctx, symbols, input.Start, input.End)
	if err != nil {
		return nil, err
	}
	if weights == nil {
		weights = domain.RandomWeights(returns.Symbols, newRand(input.Seed))
	}

	rf := h.riskFreeRate(ctx, input.RiskFreeRate)
	return calculator.ComputeStats(returns, weights, rf, h.Config.TradingDays)
}

func (h analysisServiceHandler) Frontier(ctx context.Context, input FrontierInput) (*FrontierResult, error) {
	mode := input.Mode
	if mode == "" {
		mode = calculator.MonteCarloMode
	}
	sampler, err := calculator.NewFrontierSampler(mode)
	if err != nil {
		return nil, err
	}

	returns, err := h.getReturns(ctx, input.Symbols, input.Start, input.End)
	if err != nil {
		return nil, err
	}

	endSpan := domain.ProfileFromContext(ctx).StartSpan("sample frontier")
	points, err := sampler.Sample(returns, calculator.FrontierOptions{
		Count:       h.frontierCount(mode, input.Count),
		TradingDays: h.Config.TradingDays,
		Rand:        newRand(input.Seed),
	})
	endSpan()
	if err != nil {
		return nil, fmt.Errorf("failed to sample %s frontier: %w", mode, err)
	}

	return &FrontierResult{
		Mode:    mode,
		Symbols: returns.Symbols,
		Points:  points,
	}, nil
}

func (h analysisServiceHandler) frontierCount(mode calculator.FrontierMode, requested int) int {
	if requested > 0 {
		return requested
	}
	if mode == calculator.InterpolationMode {
		return h.Config.InterpolationCount
	}
	return h.Config.MonteCarloCount
}

func (h analysisServiceHandler) Report(ctx context.Context, input ReportInput) (*DashboardReport, error) {
	prices := input.Prices
	if prices == nil {
		var err error
		prices, err = h.PriceService.GetPriceTable(ctx, input.Symbols, input.Start, input.End)
		if err != nil {
			return nil, err
		}
	}

	returns, err := calculator.ComputeReturns(prices)
	if err != nil {
		return nil, err
	}
	assets, err := calculator.AssetStats(returns, h.Config.TradingDays)
	if err != nil {
		return nil, err
	}
	annualReturn := 0.0
	for _, a := range assets {
		annualReturn += a.AnnualReturn
	}
	annualReturn /= float64(len(assets))

	rf := h.riskFreeRate(ctx, input.RiskFreeRate)
	report := &DashboardReport{
		Tail:         prices.Tail(dashboardTailRows),
		RiskFreeRate: rf,
		Assets:       assets,
		AnnualReturn: annualReturn,
		Cumulative:   calculator.CumulativeReturns(returns),
	}

	equal, err := calculator.ComputeStats(returns, domain.EqualWeights(returns.Symbols), rf, h.Config.TradingDays)
	if err == nil {
		report.SharpeRatio = util.FloatPointer(equal.SharpeRatio)
	} else if !errors.Is(err, domain.ErrZeroVolatility) {
		return nil, err
	}

	endSpan := domain.ProfileFromContext(ctx).StartSpan("sample frontier")
	frontier, err := calculator.MonteCarloSampler{}.Sample(returns, calculator.FrontierOptions{
		Count:       h.Config.MonteCarloCount,
		TradingDays: h.Config.TradingDays,
		Rand:        newRand(input.Seed),
	})
	endSpan()
	if err != nil {
		return nil, fmt.Errorf("failed to sample frontier: %w", err)
	}
	report.Frontier = frontier

	best, bestSharpe, err := calculator.MaxSharpe(frontier, rf)
	if err == nil {
		report.OptimalWeights, err = domain.NewWeightVector(returns.Symbols, best.Weights)
		if err != nil {
			return nil, err
		}
		report.OptimalSharpe = util.FloatPointer(bestSharpe)
	} else if !errors.Is(err, domain.ErrZeroVolatility) {
		return nil, err
	}

	return report, nil
}
