package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"portfolioanalysis/internal/domain"
	"strings"
	"time"
)

// NewDataServiceRepository reads price history from a remote data
// service's /assets/:ticker/history route
func NewDataServiceRepository(httpClient *http.Client, baseURL string) PriceHistoryRepository {
	return dataServiceRepositoryHandler{
		HttpClient: httpClient,
		BaseURL:    strings.TrimRight(baseURL, "/"),
	}
}

type dataServiceRepositoryHandler struct {
	HttpClient *http.Client
	BaseURL    string
}

func (h dataServiceRepositoryHandler) GetHistory(ctx context.Context, symbol string, start, end time.Time) ([]domain.AssetPrice, error) {
	q := url.Values{}
	q.Set("start", start.Format(time.DateOnly))
	q.Set("end", end.Format(time.DateOnly))
	u := fmt.Sprintf("%s/assets/%s/history?%s", h.BaseURL, url.PathEscape(symbol), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	response, err := h.HttpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get history for %s: %w", domain.ErrProvider, symbol, err)
	}
	defer response.Body.Close()

	responseBytes, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: received status code %d and failed to read body: %w", domain.ErrProvider, response.StatusCode, err)
	}

	if response.StatusCode == http.StatusNotFound {
		return []domain.AssetPrice{}, nil
	}
	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: data service failed with status code %d: %s", domain.ErrProvider, response.StatusCode, string(responseBytes))
	}

	records := []domain.PriceRecord{}
	if err := json.Unmarshal(responseBytes, &records); err != nil {
		return nil, fmt.Errorf("%w: failed to decode history for %s: %w", domain.ErrProvider, symbol, err)
	}

	out := make([]domain.AssetPrice, 0, len(records))
	for _, r := range records {
		p, err := r.ToAssetPrice(symbol)
		if err != nil {
			return nil, fmt.Errorf("%w: bad record for %s: %w", domain.ErrProvider, symbol, err)
		}
		out = append(out, p)
	}

	return out, nil
}
