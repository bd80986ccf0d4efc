package lotbook

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"
)

// LotKey identifies a position: at most one position exists per key.
type LotKey struct {
	SecurityID string
	Lot        LotClass
}

func (k LotKey) String() string { return k.SecurityID + "/" + k.Lot.String() }

// Position is one row of the position table.
type Position struct {
	SecurityID   string
	SecurityName string
	Market       Market
	Lot          LotClass
	Quantity     int64
	AverageCost  decimal.Decimal // per unit, rounded to 2 places
}

// Key returns the position key.
func (p Position) Key() LotKey { return LotKey{SecurityID: p.SecurityID, Lot: p.Lot} }

// TotalCost is AverageCost × Quantity rounded to the unit.
func (p Position) TotalCost() decimal.Decimal {
	return p.AverageCost.Mul(decimal.NewFromInt(p.Quantity)).Round(0)
}

// Currency returns the currency the position is priced in.
func (p Position) Currency() string { return p.Market.Currency() }

// comparePositions orders by security then lot class.
func comparePositions(a, b Position) int {
	return cmp.Or(
		cmp.Compare(a.SecurityID, b.SecurityID),
		cmp.Compare(a.Lot, b.Lot),
	)
}

// SortPositions sorts a position table in place by security id.
func SortPositions(positions []Position) {
	slices.SortStableFunc(positions, comparePositions)
}
