// Package binance reports spot wallet balances from a Binance account,
// normalized into JPY.
package binance

import (
	"context"
	"os"
	"strings"

	"github.com/adshao/go-binance/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/zansync/zansync/internal/domain"
	"github.com/zansync/zansync/internal/rates"
	"github.com/zansync/zansync/internal/sources"
)

type Source struct {
	client *binance.Client
	rates  rates.Provider
}

// New builds a source from API credentials, falling back to the
// BINANCE_API_KEY / BINANCE_SECRET_KEY environment variables.
func New(apiKey, secretKey string, r rates.Provider) *Source {
	if apiKey == "" {
		apiKey = os.Getenv("BINANCE_API_KEY")
	}
	if secretKey == "" {
		secretKey = os.Getenv("BINANCE_SECRET_KEY")
	}
	return &Source{client: binance.NewClient(apiKey, secretKey), rates: r}
}

func (s *Source) Name() string { return "binance" }

func (s *Source) Fetch(ctx context.Context) (decimal.Decimal, error) {
	assets, err := s.FetchAll(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return sources.SumAssets(assets), nil
}

func (s *Source) FetchAll(ctx context.Context) ([]domain.Asset, error) {
	account, err := s.client.NewGetAccountService().Do(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "get binance account")
	}
	prices, err := s.client.NewListPricesService().Do(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list binance prices")
	}

	priceIndex := make(map[string]decimal.Decimal, len(prices))
	for _, p := range prices {
		if d, err := decimal.NewFromString(p.Price); err == nil {
			priceIndex[p.Symbol] = d
		}
	}

	usdjpy, err := s.rates.USDJPY(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "usd/jpy rate")
	}

	return normalize(account.Balances, priceIndex, usdjpy), nil
}

// normalize converts raw balances into JPY assets: zero balances and the
// untradeable ETHW airdrop are skipped, Earn balances lose their LD
// prefix, USD-pegged coins count at face value and everything else is
// priced through its USDT (or BUSD) market.
func normalize(balances []binance.Balance, prices map[string]decimal.Decimal, usdjpy decimal.Decimal) []domain.Asset {
	var assets []domain.Asset
	for _, b := range balances {
		free, err := decimal.NewFromString(b.Free)
		if err != nil || free.IsZero() {
			continue
		}
		if b.Asset == "ETHW" {
			continue
		}
		coin := strings.TrimPrefix(b.Asset, "LD")

		var usd decimal.Decimal
		if strings.Contains(coin, "USD") {
			usd = free
		} else {
			price, ok := prices[coin+"USDT"]
			if !ok {
				price, ok = prices[coin+"BUSD"]
			}
			if !ok {
				continue
			}
			usd = free.Mul(price)
		}

		assets = append(assets, domain.Asset{Name: coin, Value: usd.Mul(usdjpy)})
	}
	return assets
}
