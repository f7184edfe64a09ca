// Package polymarket reports the value of a Polymarket account: USDC
// cash held on Polygon plus the marked-to-market value of open
// positions, normalized into JPY.
package polymarket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/zansync/zansync/internal/domain"
	"github.com/zansync/zansync/internal/rates"
	"github.com/zansync/zansync/internal/sources"
)

const (
	// USDC on Polygon; Polymarket collateral is denominated in it.
	usdcTokenAddress = "0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174"
	usdcDecimals     = 6

	polygonChainID = 137

	defaultEtherscanURL = "https://api.etherscan.io/v2/api"
	defaultDataAPIURL   = "https://data-api.polymarket.com"
)

type Config struct {
	// Address is the Polygon wallet backing the Polymarket account.
	Address string
	// EtherscanAPIKey authorizes the multichain token-balance lookup.
	EtherscanAPIKey string
}

type Source struct {
	cfg    Config
	rates  rates.Provider
	client *http.Client

	etherscanURL string
	dataAPIURL   string
}

// New builds a source for the configured wallet, falling back to the
// POLYGON_ADDRESS / POLYSCAN_API_KEY environment variables.
func New(cfg Config, r rates.Provider) (*Source, error) {
	if cfg.Address == "" {
		cfg.Address = os.Getenv("POLYGON_ADDRESS")
	}
	if cfg.EtherscanAPIKey == "" {
		cfg.EtherscanAPIKey = os.Getenv("POLYSCAN_API_KEY")
	}
	if !common.IsHexAddress(cfg.Address) {
		return nil, errors.Errorf("invalid polygon address %q", cfg.Address)
	}
	return &Source{
		cfg:          cfg,
		rates:        r,
		client:       http.DefaultClient,
		etherscanURL: defaultEtherscanURL,
		dataAPIURL:   defaultDataAPIURL,
	}, nil
}

func (s *Source) Name() string { return "polymarket" }

func (s *Source) Fetch(ctx context.Context) (decimal.Decimal, error) {
	assets, err := s.FetchAll(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return sources.SumAssets(assets), nil
}

func (s *Source) FetchAll(ctx context.Context) ([]domain.Asset, error) {
	usdjpy, err := s.rates.USDJPY(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "usd/jpy rate")
	}

	cash, err := s.fetchCash(ctx)
	if err != nil {
		return nil, err
	}
	position, err := s.fetchPositionValue(ctx)
	if err != nil {
		return nil, err
	}

	return []domain.Asset{
		{Name: "Cash", Value: cash.Mul(usdjpy)},
		{Name: "Position", Value: position.Mul(usdjpy)},
	}, nil
}

type etherscanResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Result  string `json:"result"`
}

// fetchCash reads the wallet's raw USDC balance through the etherscan v2
// multichain API and scales it by the token's six decimals.
func (s *Source) fetchCash(ctx context.Context) (decimal.Decimal, error) {
	q := url.Values{}
	q.Set("chainid", fmt.Sprint(polygonChainID))
	q.Set("module", "account")
	q.Set("action", "tokenbalance")
	q.Set("contractaddress", usdcTokenAddress)
	q.Set("address", s.cfg.Address)
	q.Set("tag", "latest")
	q.Set("apikey", s.cfg.EtherscanAPIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.etherscanURL+"?"+q.Encode(), nil)
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "build etherscan request")
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "fetch usdc balance")
	}
	defer resp.Body.Close()

	var body etherscanResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return decimal.Zero, errors.Wrap(err, "decode etherscan response")
	}
	if body.Status != "1" || body.Result == "" {
		return decimal.Zero, errors.Errorf("etherscan balance lookup failed: %s", body.Message)
	}

	raw, err := decimal.NewFromString(body.Result)
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "parse usdc balance")
	}
	return raw.Shift(-usdcDecimals), nil
}

type positionValue struct {
	User  string          `json:"user"`
	Value decimal.Decimal `json:"value"`
}

// fetchPositionValue reads the aggregate USD value of open positions
// from Polymarket's data API.
func (s *Source) fetchPositionValue(ctx context.Context) (decimal.Decimal, error) {
	u := fmt.Sprintf("%s/value?user=%s", s.dataAPIURL, url.QueryEscape(s.cfg.Address))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "build position request")
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "fetch position value")
	}
	defer resp.Body.Close()

	var body []positionValue
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return decimal.Zero, errors.Wrap(err, "decode position response")
	}
	if len(body) == 0 {
		return decimal.Zero, errors.New("polymarket returned no position value")
	}
	return body[0].Value, nil
}
