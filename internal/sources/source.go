// Package sources defines the balance-source contract: every provider
// normalizes its account group into JPY-denominated assets for the sync
// engine to write.
package sources

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/zansync/zansync/internal/domain"
)

// ErrUnsupported is returned by FetchAll when a provider can only report
// an aggregate value, not named sub-balances.
var ErrUnsupported = errors.New("operation not supported by this source")

// Source produces balances for one logical account group. Fetch returns
// the aggregate value in JPY; FetchAll returns named sub-balances,
// already currency-converted, with fractional values (rounding is the
// writer's concern). Errors propagate; retry and skip policy belongs to
// the caller.
type Source interface {
	Name() string
	Fetch(ctx context.Context) (decimal.Decimal, error)
	FetchAll(ctx context.Context) ([]domain.Asset, error)
}

// SumAssets folds a normalized asset list into an aggregate value.
func SumAssets(assets []domain.Asset) decimal.Decimal {
	total := decimal.Zero
	for _, a := range assets {
		total = total.Add(a.Value)
	}
	return total
}
