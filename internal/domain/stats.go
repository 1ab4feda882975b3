package domain

// PortfolioStats is computed fresh per request. Return and Volatility
// are annualized decimals (0.05 is 5%).
type PortfolioStats struct {
	Symbols     []string
	Weights     []float64
	Return      float64
	Volatility  float64
	SharpeRatio float64
}

// FrontierPoint is one (return, volatility) pair on the risk/return
// chart. Weights is nil for points that don't correspond to an
// actual portfolio.
type FrontierPoint struct {
	Return     float64
	Volatility float64
	Weights    []float64
}

type FrontierSet []FrontierPoint
