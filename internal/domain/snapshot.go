package domain

import "time"

// AssetSnapshot is the serialized form of an Asset. String fields avoid
// precision issues when records are rendered by external tooling.
type AssetSnapshot struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Bought string `json:"bought,omitempty"`
}

// BalanceSnapshot records one source's fetched balances at a point in time.
type BalanceSnapshot struct {
	Timestamp time.Time       `json:"ts"`
	Source    string          `json:"source"`
	Total     string          `json:"total,omitempty"`
	Assets    []AssetSnapshot `json:"assets,omitempty"`
}

// SnapshotRecord bundles a snapshot with the log index it originated from.
type SnapshotRecord struct {
	Index    uint64
	Snapshot BalanceSnapshot
}

// NewBalanceSnapshot builds a snapshot from normalized assets.
func NewBalanceSnapshot(source string, total string, assets []Asset) BalanceSnapshot {
	s := BalanceSnapshot{
		Timestamp: time.Now().UTC(),
		Source:    source,
		Total:     total,
	}
	for _, a := range assets {
		as := AssetSnapshot{Name: a.Name, Value: a.Value.String()}
		if a.Bought != nil {
			as.Bought = a.Bought.String()
		}
		s.Assets = append(s.Assets, as)
	}
	return s
}
