package chart

import (
	"errors"
	"fmt"
	"math"
	"portfolioanalysis/internal/domain"
	"sort"
	"strings"
	"time"

	"github.com/vicanso/go-charts/v2"
)

// monte carlo sets are drawn as the envelope of this many volatility
// buckets; smaller sets are drawn point by point
const frontierBuckets = 24

const (
	chartWidth  = 900
	chartHeight = 500
)

var ErrNothingToPlot = errors.New("nothing to plot")

// RenderFrontier draws the frontier as an svg with volatility on the
// x axis and return on the y axis, both in percent
func RenderFrontier(points domain.FrontierSet, title string) ([]byte, error) {
	if len(points) == 0 {
		return nil, ErrNothingToPlot
	}

	sorted := make(domain.FrontierSet, 0, len(points))
	for _, p := range points {
		if domain.IsMissing(p.Return) || domain.IsMissing(p.Volatility) {
			continue
		}
		sorted = append(sorted, p)
	}
	if len(sorted) == 0 {
		return nil, ErrNothingToPlot
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Volatility < sorted[j].Volatility
	})

	var (
		labels []string
		series [][]float64
		names  []string
	)
	if len(sorted) <= frontierBuckets {
		line := make([]float64, len(sorted))
		for i, p := range sorted {
			labels = append(labels, percentLabel(p.Volatility))
			line[i] = p.Return * 100
		}
		series = [][]float64{line}
		names = []string{"Frontier"}
	} else {
		upper, lower := []float64{}, []float64{}
		for _, b := range bucketByVolatility(sorted, frontierBuckets) {
			labels = append(labels, percentLabel(b.volatility))
			upper = append(upper, b.maxReturn*100)
			lower = append(lower, b.minReturn*100)
		}
		series = [][]float64{upper, lower}
		names = []string{"Best return", "Worst return"}
	}

	return render(title+"\nannualized volatility (%) vs return (%)", labels, series, names)
}

// RenderCumulativeReturns draws one line per symbol, in percent
func RenderCumulativeReturns(cumulative *domain.ReturnsTable) ([]byte, error) {
	if cumulative == nil || cumulative.Len() == 0 {
		return nil, ErrNothingToPlot
	}

	labels := make([]string, cumulative.Len())
	for i, d := range cumulative.Dates {
		labels[i] = d.Format(time.DateOnly)
	}
	series := make([][]float64, len(cumulative.Symbols))
	for j := range cumulative.Symbols {
		col := cumulative.Column(j)
		for i := range col {
			col[i] *= 100
		}
		series[j] = col
	}

	return render("Cumulative Returns (%)", labels, series, cumulative.Symbols)
}

type volatilityBucket struct {
	volatility float64
	minReturn  float64
	maxReturn  float64
}

// bucketByVolatility expects points sorted by volatility. Empty
// buckets are left out.
func bucketByVolatility(points domain.FrontierSet, n int) []volatilityBucket {
	lo := points[0].Volatility
	hi := points[len(points)-1].Volatility
	width := (hi - lo) / float64(n)

	buckets := []volatilityBucket{}
	current := -1
	for _, p := range points {
		idx := 0
		if width > 0 {
			idx = int(math.Min(float64(n-1), math.Floor((p.Volatility-lo)/width)))
		}
		if idx != current || len(buckets) == 0 {
			buckets = append(buckets, volatilityBucket{
				volatility: lo + (float64(idx)+0.5)*width,
				minReturn:  p.Return,
				maxReturn:  p.Return,
			})
			current = idx
			continue
		}
		b := &buckets[len(buckets)-1]
		b.minReturn = math.Min(b.minReturn, p.Return)
		b.maxReturn = math.Max(b.maxReturn, p.Return)
	}
	return buckets
}

func percentLabel(v float64) string {
	return fmt.Sprintf("%.1f", v*100)
}

func yRange(series [][]float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range series {
		for _, v := range s {
			if domain.IsMissing(v) {
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if math.IsInf(lo, 1) {
		return 0, 1
	}
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = math.Max(math.Abs(hi)*0.05, 1)
	}
	return lo - pad, hi + pad
}

func render(title string, labels []string, series [][]float64, names []string) ([]byte, error) {
	yMin, yMax := yRange(series)
	split := 10
	if len(labels) < split {
		split = len(labels)
	}

	painter, err := charts.LineRender(
		series,
		charts.SVGTypeOption(),
		charts.TitleTextOptionFunc(title),
		charts.XAxisOptionFunc(charts.XAxisOption{
			Data:        labels,
			SplitNumber: split,
			BoundaryGap: charts.FalseFlag(),
		}),
		charts.YAxisOptionFunc(charts.YAxisOption{
			Min:         &yMin,
			Max:         &yMax,
			DivideCount: 5,
		}),
		charts.LegendOptionFunc(charts.LegendOption{
			Data: names,
			Left: charts.PositionRight,
		}),
		charts.ThemeOptionFunc(charts.ThemeLight),
		charts.WidthOptionFunc(chartWidth),
		charts.HeightOptionFunc(chartHeight),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render %s chart: %w", strings.SplitN(title, "\n", 2)[0], err)
	}

	buf, err := painter.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to generate chart bytes: %w", err)
	}
	return buf, nil
}
