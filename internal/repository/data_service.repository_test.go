package repository

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"portfolioanalysis/internal/domain"
	"portfolioanalysis/internal/util"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func Test_dataServiceRepositoryHandler_GetHistory(t *testing.T) {
	start := util.NewDate(2024, 1, 2)
	end := util.NewDate(2024, 1, 3)

	t.Run("decodes records", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/assets/AAPL/history", r.URL.Path)
			require.Equal(t, "2024-01-02", r.URL.Query().Get("start"))
			require.Equal(t, "2024-01-03", r.URL.Query().Get("end"))
			json.NewEncoder(w).Encode([]domain.PriceRecord{
				{Date: "2024-01-02", Open: 99, High: 101, Low: 98, Close: 100, AdjClose: 99.5, Volume: 1000},
				{Date: "2024-01-03", Open: 100, High: 102, Low: 99, Close: 101, AdjClose: 100.5, Volume: 2000},
			})
		}))
		defer server.Close()

		repo := NewDataServiceRepository(server.Client(), server.URL+"/")
		prices, err := repo.GetHistory(context.Background(), "AAPL", start, end)
		require.NoError(t, err)

		require.Equal(
			t,
			"",
			cmp.Diff(
				[]domain.AssetPrice{
					{
						Symbol:   "AAPL",
						Date:     start,
						Open:     decimal.NewFromInt(99),
						High:     decimal.NewFromInt(101),
						Low:      decimal.NewFromInt(98),
						Close:    decimal.NewFromInt(100),
						AdjClose: decimal.NewFromFloat(99.5),
						Volume:   1000,
					},
					{
						Symbol:   "AAPL",
						Date:     end,
						Open:     decimal.NewFromInt(100),
						High:     decimal.NewFromInt(102),
						Low:      decimal.NewFromInt(99),
						Close:    decimal.NewFromInt(101),
						AdjClose: decimal.NewFromFloat(100.5),
						Volume:   2000,
					},
				},
				prices,
				cmp.Comparer(func(d1, d2 decimal.Decimal) bool {
					return d1.Equal(d2)
				}),
			),
		)
	})

	t.Run("not found is empty", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":"no data found for ticker NOPE"}`))
		}))
		defer server.Close()

		prices, err := NewDataServiceRepository(server.Client(), server.URL).GetHistory(context.Background(), "NOPE", start, end)
		require.NoError(t, err)
		require.Empty(t, prices)
	})

	t.Run("server error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		_, err := NewDataServiceRepository(server.Client(), server.URL).GetHistory(context.Background(), "AAPL", start, end)
		require.ErrorIs(t, err, domain.ErrProvider)
	})

	t.Run("unreachable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := server.URL
		server.Close()

		_, err := NewDataServiceRepository(http.DefaultClient, url).GetHistory(context.Background(), "AAPL", start, end)
		require.ErrorIs(t, err, domain.ErrProvider)
	})
}
