package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func resolverFixture(rows []string) (*CashAccount, *fakePage) {
	page := newFakePage()
	page.rows = rows
	acc := newCashAccount(testConfig(), zap.NewNop(), failingLauncher)
	return acc, page
}

func TestResolveRowExisting(t *testing.T) {
	// the rendered row text is a superset of the asset name
	acc, page := resolverFixture([]string{"現金", "Bitcoin (BTC) 0.5 5,000,000円"})

	h, err := acc.resolveRow(context.Background(), page, "BTC")
	require.NoError(t, err)
	require.True(t, h.exists)
	require.Equal(t, rowActionControl("BTC").Query, h.action.Query)
}

func TestResolveRowMissing(t *testing.T) {
	acc, page := resolverFixture(nil)

	h, err := acc.resolveRow(context.Background(), page, "BTC")
	require.NoError(t, err)
	require.False(t, h.exists)
	require.Equal(t, selAddManual.Query, h.action.Query)
}

func TestResolveRowMatchIsCaseSensitive(t *testing.T) {
	acc, page := resolverFixture([]string{"btc holdings"})

	h, err := acc.resolveRow(context.Background(), page, "BTC")
	require.NoError(t, err)
	require.False(t, h.exists)
}

// Substring matching is permissive on purpose: source data may decorate
// names, so "PayPay" resolves to the first row containing it even when a
// more specific "PayPay Points" row exists. Known ambiguity, not a bug to
// fix here.
func TestResolveRowSubstringAmbiguity(t *testing.T) {
	acc, page := resolverFixture([]string{"PayPay Points 3,000", "PayPay 10,000"})

	h, err := acc.resolveRow(context.Background(), page, "PayPay")
	require.NoError(t, err)
	require.True(t, h.exists)
	require.Equal(t, rowActionControl("PayPay").Query, h.action.Query)
}

func TestResolveRowWaitsForDetailPage(t *testing.T) {
	acc, page := resolverFixture(nil)
	page.missing[selAddManual.Query] = true

	_, err := acc.resolveRow(context.Background(), page, "BTC")
	require.Error(t, err)
	require.True(t, isElementTimeout(err))
}

func TestOpenAccountByName(t *testing.T) {
	acc, page := resolverFixture(nil)

	require.NoError(t, acc.openAccount(context.Background(), page, "Binance"))
	require.Equal(t, 1, page.countOp("navigate", accountsURL))
	require.Equal(t, 1, page.countOp("click", manualAccountLink("Binance").Query))
}

func TestOpenAccountByURL(t *testing.T) {
	acc, page := resolverFixture(nil)
	url := "https://moneyforward.com/accounts/show_manual/abc123"

	require.NoError(t, acc.openAccount(context.Background(), page, url))
	require.Equal(t, 1, page.countOp("navigate", url))
	require.Equal(t, 0, page.countOp("navigate", accountsURL))
}

func TestOpenAccountNotFound(t *testing.T) {
	acc, page := resolverFixture(nil)
	page.missing[manualAccountLink("Nope").Query] = true

	err := acc.openAccount(context.Background(), page, "Nope")

	var nfErr *AccountNotFoundError
	require.ErrorAs(t, err, &nfErr)
	require.Equal(t, "Nope", nfErr.Account)
}
