package currency

import (
	"context"
	"fmt"
	"net/url"

	"github.com/nordicgem/diamond-indexer/internal/adapter"
)

// RateProvider fetches the current exchange rate for a currency pair from an
// external source
type RateProvider interface {
	// FetchRate returns the multiplier converting one unit of from into to
	FetchRate(ctx context.Context, from, to string) (float64, error)
}

// latestResponse represents the Open Exchange Rates /latest.json payload
type latestResponse struct {
	Base  string             `json:"base"`
	Rates map[string]float64 `json:"rates"`
}

// OpenExchangeRatesProvider fetches rates from openexchangerates.org
type OpenExchangeRatesProvider struct {
	httpClient adapter.HTTPClient
	baseURL    string
	appID      string
}

// NewOpenExchangeRatesProvider creates a provider against the given API base
// URL (e.g. https://openexchangerates.org/api)
func NewOpenExchangeRatesProvider(httpClient adapter.HTTPClient, baseURL, appID string) *OpenExchangeRatesProvider {
	return &OpenExchangeRatesProvider{
		httpClient: httpClient,
		baseURL:    baseURL,
		appID:      appID,
	}
}

// FetchRate returns the multiplier converting one unit of from into to
func (p *OpenExchangeRatesProvider) FetchRate(ctx context.Context, from, to string) (float64, error) {
	endpoint := fmt.Sprintf("%s/latest.json?app_id=%s&base=%s&symbols=%s",
		p.baseURL, url.QueryEscape(p.appID), url.QueryEscape(from), url.QueryEscape(to))

	var resp latestResponse
	if err := p.httpClient.GetAndUnmarshal(ctx, endpoint, &resp); err != nil {
		return 0, fmt.Errorf("failed to fetch exchange rate: %w", err)
	}

	rate, ok := resp.Rates[to]
	if !ok {
		return 0, fmt.Errorf("rate response missing symbol %s", to)
	}
	if rate <= 0 {
		return 0, fmt.Errorf("rate response carries non-positive rate %f for %s", rate, to)
	}

	return rate, nil
}
