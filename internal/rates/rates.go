// Package rates converts USD-denominated balances into JPY.
package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

const (
	defaultEndpoint = "https://open.er-api.com/v6/latest/USD"
	cacheTTL        = time.Hour
)

// Provider yields the current USD→JPY rate.
type Provider interface {
	USDJPY(ctx context.Context) (decimal.Decimal, error)
}

// Fixed returns a provider that always reports rate. Used by sources
// configured with a static conversion rate.
func Fixed(rate decimal.Decimal) Provider {
	return fixed{rate: rate}
}

type fixed struct{ rate decimal.Decimal }

func (f fixed) USDJPY(ctx context.Context) (decimal.Decimal, error) {
	return f.rate, nil
}

// HTTPProvider fetches the rate from a public endpoint and caches it, so
// one sync run hits the rate API at most once.
type HTTPProvider struct {
	Endpoint string
	Client   *http.Client

	mu        sync.Mutex
	cached    decimal.Decimal
	fetchedAt time.Time
}

func NewHTTPProvider() *HTTPProvider {
	return &HTTPProvider{Endpoint: defaultEndpoint, Client: http.DefaultClient}
}

type ratesResponse struct {
	Result string                     `json:"result"`
	Rates  map[string]decimal.Decimal `json:"rates"`
}

func (p *HTTPProvider) USDJPY(ctx context.Context) (decimal.Decimal, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.fetchedAt.IsZero() && time.Since(p.fetchedAt) < cacheTTL {
		return p.cached, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.Endpoint, nil)
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "build rates request")
	}
	resp, err := p.Client.Do(req)
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "fetch usd/jpy rate")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("rates endpoint returned %s", resp.Status)
	}

	var body ratesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return decimal.Zero, errors.Wrap(err, "decode rates response")
	}

	rate, ok := body.Rates["JPY"]
	if !ok || rate.IsZero() {
		return decimal.Zero, errors.New("rates response has no JPY rate")
	}

	p.cached = rate
	p.fetchedAt = time.Now()
	return rate, nil
}
