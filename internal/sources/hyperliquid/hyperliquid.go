// Package hyperliquid reports spot balances from a Hyperliquid account,
// normalized into JPY. The account address is derived from the signing
// key, the same way the exchange SDK expects it.
package hyperliquid

import (
	"context"
	"crypto/ecdsa"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	hyperliquid "github.com/sonirico/go-hyperliquid"

	"github.com/zansync/zansync/internal/domain"
	"github.com/zansync/zansync/internal/rates"
	"github.com/zansync/zansync/internal/sources"
)

const defaultBaseURL = "https://api.hyperliquid.xyz"

type Source struct {
	info        *hyperliquid.Info
	accountAddr string
	rates       rates.Provider
}

// New builds a source from a hex-encoded private key, falling back to
// the HYPERLIQUID_PRIVATE_KEY environment variable.
func New(privateKeyHex, baseURL string, r rates.Provider) (*Source, error) {
	if privateKeyHex == "" {
		privateKeyHex = os.Getenv("HYPERLIQUID_PRIVATE_KEY")
	}
	key := strings.TrimPrefix(strings.TrimPrefix(privateKeyHex, "0x"), "0X")

	privateKey, err := crypto.HexToECDSA(key)
	if err != nil {
		return nil, errors.Wrap(err, "parse hyperliquid private key")
	}
	pubECDSA, ok := privateKey.Public().(*ecdsa.PublicKey)
	if !ok {
		return nil, errors.New("error casting public key to ECDSA")
	}
	accountAddr := crypto.PubkeyToAddress(*pubECDSA).Hex()

	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	ex := hyperliquid.NewExchange(context.Background(), privateKey, baseURL, nil, "", accountAddr, nil)

	return &Source{info: ex.Info(), accountAddr: accountAddr, rates: r}, nil
}

func (s *Source) Name() string { return "hyperliquid" }

func (s *Source) Fetch(ctx context.Context) (decimal.Decimal, error) {
	assets, err := s.FetchAll(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return sources.SumAssets(assets), nil
}

func (s *Source) FetchAll(ctx context.Context) ([]domain.Asset, error) {
	st, err := s.info.SpotUserState(ctx, s.accountAddr)
	if err != nil {
		return nil, errors.Wrap(err, "get hyperliquid spot state")
	}
	mids, err := s.info.AllMids(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "get hyperliquid mids")
	}

	usdjpy, err := s.rates.USDJPY(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "usd/jpy rate")
	}

	var holdings []holding
	for _, b := range st.Balances {
		holdings = append(holdings, holding{coin: b.Coin, total: b.Total})
	}
	return normalize(holdings, mids, usdjpy), nil
}

type holding struct {
	coin  string
	total string
}

// normalize converts spot holdings into JPY assets. USDC counts at face
// value; other coins are priced at their mid. Coins without a mid are
// skipped rather than failing the fetch.
func normalize(holdings []holding, mids map[string]string, usdjpy decimal.Decimal) []domain.Asset {
	var assets []domain.Asset
	for _, h := range holdings {
		total, err := decimal.NewFromString(h.total)
		if err != nil || total.IsZero() {
			continue
		}

		var usd decimal.Decimal
		if strings.Contains(h.coin, "USD") {
			usd = total
		} else {
			mid, ok := mids[h.coin]
			if !ok {
				continue
			}
			price, err := decimal.NewFromString(mid)
			if err != nil {
				continue
			}
			usd = total.Mul(price)
		}

		assets = append(assets, domain.Asset{Name: h.coin, Value: usd.Mul(usdjpy)})
	}
	return assets
}
