// Package bybit reports UNIFIED wallet balances from a Bybit account,
// normalized into JPY.
package bybit

import (
	"context"
	"os"
	"strings"

	"github.com/hirokisan/bybit/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/zansync/zansync/internal/domain"
	"github.com/zansync/zansync/internal/rates"
	"github.com/zansync/zansync/internal/sources"
)

type Source struct {
	client *bybit.Client
	rates  rates.Provider
}

// New builds a source from API credentials, falling back to the
// BYBIT_API_KEY / BYBIT_API_SECRET environment variables.
func New(apiKey, apiSecret string, r rates.Provider) *Source {
	if apiKey == "" {
		apiKey = os.Getenv("BYBIT_API_KEY")
	}
	if apiSecret == "" {
		apiSecret = os.Getenv("BYBIT_API_SECRET")
	}
	client := bybit.NewClient().WithAuth(apiKey, apiSecret)
	return &Source{client: client, rates: r}
}

func (s *Source) Name() string { return "bybit" }

func (s *Source) Fetch(ctx context.Context) (decimal.Decimal, error) {
	assets, err := s.FetchAll(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return sources.SumAssets(assets), nil
}

func (s *Source) FetchAll(ctx context.Context) ([]domain.Asset, error) {
	res, err := s.client.V5().Account().GetWalletBalance(bybit.AccountTypeV5("UNIFIED"), nil)
	if err != nil {
		return nil, errors.Wrap(err, "get bybit wallet balance")
	}
	if len(res.Result.List) == 0 {
		return nil, nil
	}

	usdjpy, err := s.rates.USDJPY(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "usd/jpy rate")
	}

	var holdings []holding
	for _, coin := range res.Result.List[0].Coin {
		holdings = append(holdings, holding{
			coin:    string(coin.Coin),
			balance: coin.WalletBalance,
		})
	}

	return normalize(holdings, s.priceUSD, usdjpy)
}

type holding struct {
	coin    string
	balance string
}

// priceUSD fetches the coin's spot last price against USDT.
func (s *Source) priceUSD(coin string) (decimal.Decimal, error) {
	symbol := bybit.SymbolV5(coin + "USDT")
	res, err := s.client.V5().Market().GetTickers(bybit.V5GetTickersParam{
		Category: "spot",
		Symbol:   &symbol,
	})
	if err != nil {
		return decimal.Zero, err
	}
	if len(res.Result.Spot.List) == 0 {
		return decimal.Zero, errors.Errorf("bybit returned no price for %s", coin)
	}
	return decimal.NewFromString(res.Result.Spot.List[0].LastPrice)
}

// normalize converts wallet holdings into JPY assets. USD-pegged coins
// count at face value; everything else is priced through priceUSD. A coin
// with no spot market is skipped rather than failing the whole fetch.
func normalize(holdings []holding, priceUSD func(string) (decimal.Decimal, error), usdjpy decimal.Decimal) ([]domain.Asset, error) {
	var assets []domain.Asset
	for _, h := range holdings {
		balance, err := decimal.NewFromString(h.balance)
		if err != nil || balance.IsZero() {
			continue
		}

		var usd decimal.Decimal
		if strings.Contains(h.coin, "USD") {
			usd = balance
		} else {
			price, err := priceUSD(h.coin)
			if err != nil {
				continue
			}
			usd = balance.Mul(price)
		}

		assets = append(assets, domain.Asset{Name: h.coin, Value: usd.Mul(usdjpy)})
	}
	return assets, nil
}
