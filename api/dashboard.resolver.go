package api

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"portfolioanalysis/internal/calculator"
	"portfolioanalysis/internal/chart"
	"portfolioanalysis/internal/domain"
	"portfolioanalysis/internal/logger"
	"portfolioanalysis/internal/repository"
	"portfolioanalysis/internal/service"
	"portfolioanalysis/internal/util"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

//go:embed assets/sample_data.csv
var sampleData []byte

// risk free rate bounds on the form, in percent
const maxFormRiskFreeRate = 10.0

var templateFuncs = template.FuncMap{
	"percent": func(v float64) string {
		return fmt.Sprintf("%.2f%%", v*100)
	},
	"price": func(v float64) string {
		return strconv.FormatFloat(v, 'f', 2, 64)
	},
}

type dashboardForm struct {
	Tickers      string
	Start        string
	End          string
	RiskFreeRate string
}

func defaultDashboardForm() dashboardForm {
	return dashboardForm{
		Tickers:      "AAPL,MSFT,GOOGL",
		Start:        "2023-01-01",
		End:          "2025-05-01",
		RiskFreeRate: "2",
	}
}

type dashboardRow struct {
	Date   string
	Closes []float64
}

type dashboardWeight struct {
	Symbol string
	Weight float64
}

type dashboardReportView struct {
	Source         string
	Symbols        []string
	Rows           []dashboardRow
	AnnualReturn   float64
	SharpeRatio    string
	OptimalSharpe  string
	RiskFreeRate   float64
	Cumulative     template.HTML
	Frontier       template.HTML
	OptimalWeights []dashboardWeight
}

type dashboardView struct {
	Form   dashboardForm
	Error  string
	Report *dashboardReportView
}

func (m ApiHandler) dashboard(c *gin.Context) {
	c.HTML(200, "index.html", dashboardView{
		Form: defaultDashboardForm(),
	})
}

func renderDashboardError(c *gin.Context, form dashboardForm, err error, code int) {
	logger.FromContext(c.Request.Context()).Infof("dashboard request failed: %v", err)
	c.HTML(code, "index.html", dashboardView{
		Form:  form,
		Error: err.Error(),
	})
}

func (m ApiHandler) analyzeDashboard(c *gin.Context) {
	form := dashboardForm{
		Tickers:      c.PostForm("tickers"),
		Start:        c.PostForm("start"),
		End:          c.PostForm("end"),
		RiskFreeRate: c.PostForm("riskFreeRate"),
	}

	riskFreeRate, err := parseFormRiskFreeRate(form.RiskFreeRate)
	if err != nil {
		renderDashboardError(c, form, err, 400)
		return
	}

	input := service.ReportInput{
		RiskFreeRate: riskFreeRate,
	}
	source := ""

	file, err := c.FormFile("file")
	switch {
	case err == nil:
		f, err := file.Open()
		if err != nil {
			renderDashboardError(c, form, fmt.Errorf("failed to open upload: %w", err), 400)
			return
		}
		defer f.Close()
		input.Prices, err = pricesFromCsv(f)
		if err != nil {
			renderDashboardError(c, form, err, errorStatusCode(err))
			return
		}
		source = file.Filename
	case errors.Is(err, http.ErrMissingFile):
		input.Symbols = strings.Split(form.Tickers, ",")
		input.Start, err = time.Parse(time.DateOnly, form.Start)
		if err != nil {
			renderDashboardError(c, form, fmt.Errorf("%w: start %q", domain.ErrInvalidDateFormat, form.Start), 400)
			return
		}
		input.End, err = time.Parse(time.DateOnly, form.End)
		if err != nil {
			renderDashboardError(c, form, fmt.Errorf("%w: end %q", domain.ErrInvalidDateFormat, form.End), 400)
			return
		}
		source = "market data"
	default:
		renderDashboardError(c, form, fmt.Errorf("failed to read form: %w", err), 400)
		return
	}

	m.renderReport(c, form, source, input)
}

func (m ApiHandler) sampleDashboard(c *gin.Context) {
	form := defaultDashboardForm()
	prices, err := pricesFromCsv(bytes.NewReader(sampleData))
	if err != nil {
		renderDashboardError(c, form, err, 500)
		return
	}
	m.renderReport(c, form, "sample data", service.ReportInput{
		Prices: prices,
	})
}

// parseFormRiskFreeRate reads a percent. Blank means the service
// default.
func parseFormRiskFreeRate(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	pct, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("risk free rate must be a number, got %q", s)
	}
	if pct < 0 || pct > maxFormRiskFreeRate {
		return nil, fmt.Errorf("risk free rate must be between 0 and %.0f%%, got %s", maxFormRiskFreeRate, s)
	}
	return util.FloatPointer(pct / 100), nil
}

func pricesFromCsv(r io.Reader) (*domain.PriceTable, error) {
	raw, err := repository.LoadPriceCsv(r)
	if err != nil {
		return nil, err
	}
	return calculator.Clean(*raw)
}

func (m ApiHandler) renderReport(c *gin.Context, form dashboardForm, source string, input service.ReportInput) {
	report, err := m.AnalysisService.Report(c.Request.Context(), input)
	if err != nil {
		renderDashboardError(c, form, err, errorStatusCode(err))
		return
	}

	view, err := newDashboardReportView(source, report)
	if err != nil {
		renderDashboardError(c, form, err, 500)
		return
	}

	c.HTML(200, "index.html", dashboardView{
		Form:   form,
		Report: view,
	})
}

func newDashboardReportView(source string, report *service.DashboardReport) (*dashboardReportView, error) {
	view := &dashboardReportView{
		Source:        source,
		Symbols:       report.Tail.Symbols,
		AnnualReturn:  report.AnnualReturn,
		RiskFreeRate:  report.RiskFreeRate,
		SharpeRatio:   formatRatio(report.SharpeRatio),
		OptimalSharpe: formatRatio(report.OptimalSharpe),
	}
	for i, d := range report.Tail.Dates {
		view.Rows = append(view.Rows, dashboardRow{
			Date:   d.Format(time.DateOnly),
			Closes: report.Tail.Closes[i],
		})
	}
	for _, s := range report.Tail.Symbols {
		if w, ok := report.OptimalWeights[s]; ok {
			view.OptimalWeights = append(view.OptimalWeights, dashboardWeight{Symbol: s, Weight: w})
		}
	}

	cumulative, err := chart.RenderCumulativeReturns(report.Cumulative)
	if err != nil {
		return nil, err
	}
	view.Cumulative = template.HTML(cumulative)

	frontier, err := chart.RenderFrontier(report.Frontier, "Efficient Frontier • "+strings.Join(report.Tail.Symbols, ", "))
	if err != nil {
		return nil, err
	}
	view.Frontier = frontierFragment(frontier)

	return view, nil
}

func formatRatio(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}
