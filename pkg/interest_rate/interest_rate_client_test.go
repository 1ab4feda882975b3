package interestrate

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestGetYieldCurve(t *testing.T) {
	t.Run("random date", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/api/v1/yield_curve_snapshot", r.URL.Path)
			require.Equal(t, "2020-01-02", r.URL.Query().Get("date"))
			w.Write([]byte(`[{
				"date": "2020-01-02",
				"yield_1m": 1.48, "yield_2m": 1.51, "yield_3m": 1.55, "yield_4m": null,
				"yield_6m": 1.6, "yield_1y": 1.59, "yield_2y": 1.58, "yield_3y": 1.62,
				"yield_5y": 1.69, "yield_7y": 1.83, "yield_10y": 1.92, "yield_20y": 2.25,
				"yield_30y": 2.39
			}]`))
		}))
		defer server.Close()

		response, err := Client{HttpClient: server.Client(), BaseURL: server.URL}.GetYieldCurve(
			context.Background(),
			time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC),
		)
		require.NoError(t, err)

		expected := map[int]float64{
			120: 0.0192,
			1:   0.0148,
			12:  0.0159,
			240: 0.0225,
			2:   0.0151,
			24:  0.0158,
			360: 0.0239,
			3:   0.0155,
			36:  0.0162,
			60:  0.0169,
			6:   0.016,
			84:  0.0183,
		}

		require.Equal(
			t,
			"",
			cmp.Diff(
				&InterestRateMap{
					Rates: expected,
				},
				response,
				cmp.Comparer(func(i, j float64) bool {
					return math.Abs(i-j) < 0.0001
				}),
			),
		)
	})

	t.Run("bad status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		_, err := Client{HttpClient: server.Client(), BaseURL: server.URL}.GetYieldCurve(context.Background(), time.Now())
		require.Error(t, err)
	})
}

func TestInterestRateMap_GetRate(t *testing.T) {
	m := InterestRateMap{Rates: map[int]float64{1: 0.01, 12: 0.03, 24: 0.04}}

	for name, tc := range map[string]struct {
		months   int
		expected float64
	}{
		"exact":   {months: 12, expected: 0.03},
		"between": {months: 18, expected: 0.035},
		"below":   {months: 0, expected: 0.01},
		"above":   {months: 360, expected: 0.04},
	} {
		t.Run(name, func(t *testing.T) {
			rate, err := m.GetRate(tc.months)
			require.NoError(t, err)
			require.InDelta(t, tc.expected, rate, 1e-12)
		})
	}

	t.Run("empty curve", func(t *testing.T) {
		_, err := InterestRateMap{}.GetRate(12)
		require.Error(t, err)
	})
}
