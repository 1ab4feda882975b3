package interestrate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"
)

func interestRateMonthsFromApi(in string) (int, error) {
	cleanedStr := strings.Replace(in, "yield_", "", 1)
	if cleanedStr == "" {
		return 0, fmt.Errorf("empty yield key %q", in)
	}
	unit := string(cleanedStr[len(cleanedStr)-1])
	cleanedStr = cleanedStr[:len(cleanedStr)-1]
	months, err := strconv.Atoi(cleanedStr)
	if err != nil {
		return 0, err
	}

	if unit == "y" {
		months *= 12
	}

	return months, nil
}

// InterestRateMap is a yield curve keyed by maturity in months. Rates
// are decimals.
type InterestRateMap struct {
	Rates map[int]float64
}

// GetRate returns the rate for the maturity, averaging the two
// neighbours when it falls between points and clamping to the ends
func (im InterestRateMap) GetRate(monthsOut int) (float64, error) {
	if len(im.Rates) == 0 {
		return 0, fmt.Errorf("yield curve is empty")
	}
	v, ok := im.Rates[monthsOut]
	if ok {
		return v, nil
	}

	keys := []int{}
	for k := range im.Rates {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	if monthsOut < keys[0] {
		return im.Rates[keys[0]], nil
	}
	if monthsOut > keys[len(keys)-1] {
		return im.Rates[keys[len(keys)-1]], nil
	}

	for i := 0; i < len(keys)-1; i++ {
		key1 := keys[i]
		key2 := keys[i+1]
		if monthsOut > key1 && monthsOut < key2 {
			return (im.Rates[key1] + im.Rates[key2]) / 2, nil
		}
	}
	return 0, fmt.Errorf("unable to compute rate for %d months", monthsOut)
}

var yieldKeys = []string{
	"yield_1m",
	"yield_2m",
	"yield_3m",
	"yield_4m",
	"yield_6m",
	"yield_1y",
	"yield_2y",
	"yield_3y",
	"yield_5y",
	"yield_7y",
	"yield_10y",
	"yield_20y",
	"yield_30y",
}

type Client struct {
	HttpClient *http.Client
	BaseURL    string
}

// GetYieldCurve fetches the treasury yield curve snapshot for the date.
// Non-trading days come back empty.
func (c Client) GetYieldCurve(ctx context.Context, date time.Time) (*InterestRateMap, error) {
	tStr := date.Format(time.DateOnly)
	url := fmt.Sprintf("%s/api/v1/yield_curve_snapshot?date=%s&offset=0", strings.TrimRight(c.BaseURL, "/"), tStr)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	response, err := c.HttpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	responseBytes, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("received status code %d and failed to read body: %w", response.StatusCode, err)
	}

	if response.StatusCode != 200 {
		return nil, fmt.Errorf("failed with status code %d: %s", response.StatusCode, string(responseBytes))
	}

	responseBody := []map[string]interface{}{}

	err = json.Unmarshal(responseBytes, &responseBody)
	if err != nil {
		return nil, err
	}

	out := map[int]float64{}

	for _, response := range responseBody {
		for _, field := range yieldKeys {
			v, ok := response[field]
			if !ok || v == nil {
				continue
			}
			rate, ok := v.(float64)
			if !ok {
				continue
			}
			months, err := interestRateMonthsFromApi(field)
			if err != nil {
				return nil, err
			}
			out[months] = rate / 100
		}
	}

	return &InterestRateMap{
		Rates: out,
	}, nil
}
