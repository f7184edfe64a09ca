package domain

import "github.com/shopspring/decimal"

// Asset is a normalized balance entry produced by a source: a display name,
// the current value in JPY and, optionally, the value at acquisition time.
// Values stay fractional until they hit the ledger, which accepts whole yen
// only, so rounding happens at write time and nowhere else.
type Asset struct {
	Name   string
	Value  decimal.Decimal
	Bought *decimal.Decimal
}

// WholeYen renders d the way the ledger's numeric fields expect it:
// rounded to an integer, no separators, no currency symbol.
func WholeYen(d decimal.Decimal) string {
	return d.Round(0).String()
}
