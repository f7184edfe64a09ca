package snapshots

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/zansync/zansync/internal/domain"
)

func TestSaveAndReadBack(t *testing.T) {
	store, err := NewWALStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	first := domain.NewBalanceSnapshot("binance", "100", []domain.Asset{
		{Name: "BTC", Value: decimal.NewFromInt(100)},
	})
	second := domain.NewBalanceSnapshot("paypay", "42", nil)

	require.NoError(t, store.Save(first))
	require.NoError(t, store.Save(second))

	records, err := store.SnapshotsAfter(0)
	require.NoError(t, err)
	require.Len(t, records, 2)

	require.Equal(t, "binance", records[0].Snapshot.Source)
	require.Equal(t, "100", records[0].Snapshot.Total)
	require.Len(t, records[0].Snapshot.Assets, 1)
	require.Equal(t, "BTC", records[0].Snapshot.Assets[0].Name)
	require.Equal(t, "paypay", records[1].Snapshot.Source)
	require.Greater(t, records[1].Index, records[0].Index)
}

func TestSaveKeepsCostBasis(t *testing.T) {
	store, err := NewWALStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	bought := decimal.NewFromInt(95)
	snap := domain.NewBalanceSnapshot("binance", "100", []domain.Asset{
		{Name: "ETH", Value: decimal.NewFromInt(100), Bought: &bought},
	})
	require.NoError(t, store.Save(snap))

	records, err := store.SnapshotsAfter(0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "95", records[0].Snapshot.Assets[0].Bought)
}

func TestSnapshotsAfterSkipsOlderEntries(t *testing.T) {
	store, err := NewWALStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Save(domain.NewBalanceSnapshot("binance", "1", nil)))
	cut := store.CurrentIndex()
	require.NoError(t, store.Save(domain.NewBalanceSnapshot("bybit", "2", nil)))

	records, err := store.SnapshotsAfter(cut)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "bybit", records[0].Snapshot.Source)
}

func TestSnapshotsAfterReturnsNothingWhenUpToDate(t *testing.T) {
	store, err := NewWALStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Save(domain.NewBalanceSnapshot("binance", "1", nil)))

	records, err := store.SnapshotsAfter(store.CurrentIndex())
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestSaveRequiresSource(t *testing.T) {
	store, err := NewWALStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	err = store.Save(domain.BalanceSnapshot{Total: "1"})
	require.Error(t, err)
}
