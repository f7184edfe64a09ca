package bybit

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	holdings := []holding{
		{coin: "BTC", balance: "0.1"},
		{coin: "USDT", balance: "500"},
		{coin: "ETH", balance: "0"},       // zero, skipped
		{coin: "WEIRD", balance: "1"},     // no market, skipped
		{coin: "SOL", balance: "garbage"}, // unparseable, skipped
	}
	priceUSD := func(coin string) (decimal.Decimal, error) {
		if coin == "BTC" {
			return decimal.NewFromInt(60000), nil
		}
		return decimal.Zero, errors.New("no market")
	}

	assets, err := normalize(holdings, priceUSD, decimal.NewFromInt(150))
	require.NoError(t, err)
	require.Len(t, assets, 2)

	require.Equal(t, "BTC", assets[0].Name)
	require.True(t, assets[0].Value.Equal(decimal.NewFromInt(900000)), "0.1 * 60000 * 150, got %s", assets[0].Value)

	require.Equal(t, "USDT", assets[1].Name)
	require.True(t, assets[1].Value.Equal(decimal.NewFromInt(75000)))
}
