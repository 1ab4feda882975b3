package api

import (
	"fmt"
	"portfolioanalysis/internal/domain"
	"portfolioanalysis/internal/util"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

func (m ApiHandler) listAssets(c *gin.Context) {
	c.JSON(200, m.Config.Provider.Assets)
}

// requestWindow resolves the start/end/days trio shared by most routes
func (m ApiHandler) requestWindow(start, end string, days int) (time.Time, time.Time, error) {
	if days <= 0 {
		days = m.Config.Analysis.HistoryDays
	}
	return util.HistoryWindow(start, end, days, time.Now())
}

func (m ApiHandler) getAssetHistory(c *gin.Context) {
	ticker := strings.TrimSpace(c.Param("ticker"))

	days := 0
	if s := c.Query("days"); s != "" {
		var err error
		days, err = strconv.Atoi(s)
		if err != nil || days <= 0 {
			returnErrorJsonCode(fmt.Errorf("days must be a positive integer, got %q", s), c, 400)
			return
		}
	}

	start, end, err := m.requestWindow(c.Query("start"), c.Query("end"), days)
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	prices, err := m.PriceService.GetHistory(c.Request.Context(), ticker, start, end)
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	out := make([]domain.PriceRecord, len(prices))
	for i, p := range prices {
		out[i] = domain.NewPriceRecord(p)
	}

	c.JSON(200, out)
}
