package api

import (
	"fmt"
	"portfolioanalysis/internal/calculator"
	"portfolioanalysis/internal/service"

	"github.com/gin-gonic/gin"
)

// upper bound on monte carlo draws per request
const maxFrontierCount = 100000

type optimizeRequest struct {
	Tickers []string `json:"tickers"`
	// random weights are drawn when omitted
	Weights      []float64 `json:"weights"`
	RiskFreeRate *float64  `json:"riskFreeRate"`
	Start        string    `json:"start"`
	End          string    `json:"end"`
	Days         int       `json:"days"`
	Seed         *int64    `json:"seed"`
}

type optimizeResponse struct {
	Tickers     []string  `json:"tickers"`
	Weights     []float64 `json:"weights"`
	Return      float64   `json:"return"`
	Volatility  float64   `json:"volatility"`
	SharpeRatio float64   `json:"sharpe_ratio"`
}

func (m ApiHandler) optimizePortfolio(c *gin.Context) {
	var requestBody optimizeRequest
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		returnErrorJsonCode(fmt.Errorf("failed to read request body: %w", err), c, 400)
		return
	}
	tickers := service.NormalizeSymbols(requestBody.Tickers)
	if len(tickers) == 0 {
		returnErrorJsonCode(fmt.Errorf("tickers are required"), c, 400)
		return
	}

	start, end, err := m.requestWindow(requestBody.Start, requestBody.End, requestBody.Days)
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	result, err := m.AnalysisService.Optimize(c.Request.Context(), service.OptimizeInput{
		Symbols:      tickers,
		Weights:      requestBody.Weights,
		RiskFreeRate: requestBody.RiskFreeRate,
		Start:        start,
		End:          end,
		Seed:         requestBody.Seed,
	})
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	c.JSON(200, optimizeResponse{
		Tickers:     result.Symbols,
		Weights:     result.Weights,
		Return:      result.Return,
		Volatility:  result.Volatility,
		SharpeRatio: result.SharpeRatio,
	})
}

type frontierRequest struct {
	Tickers []string `json:"tickers"`
	Mode    string   `json:"mode"`
	Count   int      `json:"count"`
	Seed    *int64   `json:"seed"`
	Start   string   `json:"start"`
	End     string   `json:"end"`
	Days    int      `json:"days"`
}

type frontierPoint struct {
	Return     float64   `json:"return"`
	Volatility float64   `json:"volatility"`
	Weights    []float64 `json:"weights,omitempty"`
}

type frontierResponse struct {
	Mode    string          `json:"mode"`
	Tickers []string        `json:"tickers"`
	Points  []frontierPoint `json:"points"`
}

// frontier runs the shared part of the frontier and plot routes
func (m ApiHandler) frontier(c *gin.Context, in frontierRequest) (*service.FrontierResult, bool) {
	tickers := service.NormalizeSymbols(in.Tickers)
	if len(tickers) == 0 {
		returnErrorJsonCode(fmt.Errorf("tickers are required"), c, 400)
		return nil, false
	}
	mode, err := calculator.ParseFrontierMode(in.Mode)
	if err != nil {
		returnErrorJsonCode(err, c, 400)
		return nil, false
	}
	if in.Count < 0 || in.Count > maxFrontierCount {
		returnErrorJsonCode(fmt.Errorf("count must be between 0 and %d, got %d", maxFrontierCount, in.Count), c, 400)
		return nil, false
	}

	start, end, err := m.requestWindow(in.Start, in.End, in.Days)
	if err != nil {
		returnErrorJson(err, c)
		return nil, false
	}

	result, err := m.AnalysisService.Frontier(c.Request.Context(), service.FrontierInput{
		Symbols: tickers,
		Mode:    mode,
		Count:   in.Count,
		Seed:    in.Seed,
		Start:   start,
		End:     end,
	})
	if err != nil {
		returnErrorJson(err, c)
		return nil, false
	}
	return result, true
}

func (m ApiHandler) portfolioFrontier(c *gin.Context) {
	var requestBody frontierRequest
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		returnErrorJsonCode(fmt.Errorf("failed to read request body: %w", err), c, 400)
		return
	}

	result, ok := m.frontier(c, requestBody)
	if !ok {
		return
	}

	out := frontierResponse{
		Mode:    string(result.Mode),
		Tickers: result.Symbols,
		Points:  make([]frontierPoint, len(result.Points)),
	}
	for i, p := range result.Points {
		out.Points[i] = frontierPoint{
			Return:     p.Return,
			Volatility: p.Volatility,
			Weights:    p.Weights,
		}
	}

	c.JSON(200, out)
}
