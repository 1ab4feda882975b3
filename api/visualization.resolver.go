package api

import (
	"fmt"
	"html/template"
	"portfolioanalysis/internal/chart"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

func (m ApiHandler) plotEfficientFrontier(c *gin.Context) {
	in := frontierRequest{
		Tickers: strings.Split(c.Query("tickers"), ","),
		Mode:    c.Query("mode"),
		Start:   c.Query("start"),
		End:     c.Query("end"),
	}
	for name, dst := range map[string]*int{"count": &in.Count, "days": &in.Days} {
		if s := c.Query(name); s != "" {
			v, err := strconv.Atoi(s)
			if err != nil {
				returnErrorJsonCode(fmt.Errorf("%s must be an integer, got %q", name, s), c, 400)
				return
			}
			*dst = v
		}
	}
	if s := c.Query("seed"); s != "" {
		seed, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			returnErrorJsonCode(fmt.Errorf("seed must be an integer, got %q", s), c, 400)
			return
		}
		in.Seed = &seed
	}

	result, ok := m.frontier(c, in)
	if !ok {
		return
	}

	svg, err := chart.RenderFrontier(result.Points, "Efficient Frontier • "+strings.Join(result.Symbols, ", "))
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	c.Data(200, "text/html; charset=utf-8", []byte(frontierFragment(svg)))
}

func frontierFragment(svg []byte) template.HTML {
	return template.HTML(`<div class="efficient-frontier">` + string(svg) + `</div>`)
}
