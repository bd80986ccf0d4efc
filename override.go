package lotbook

import (
	"github.com/shopspring/decimal"
)

// ManualOverride is a trader correction that supersedes the computed position
// of its key.
type ManualOverride struct {
	SecurityID   string
	Lot          LotClass
	SecurityName string  // used when the override inserts a new position
	Market       *Market // nil means Domestic for inserted positions
	Quantity     decimal.Decimal
	AverageCost  decimal.Decimal
}

// Key returns the key of the position the override applies to.
func (o ManualOverride) Key() LotKey { return LotKey{SecurityID: o.SecurityID, Lot: o.Lot} }

// Deletes reports whether the override removes its position.
func (o ManualOverride) Deletes() bool { return !o.Quantity.IsPositive() }

// position builds the position an override describes.
func (o ManualOverride) position() Position {
	name := o.SecurityName
	if name == "" {
		name = o.SecurityID
	}
	market := Domestic
	if o.Market != nil {
		market = *o.Market
	}
	return Position{
		SecurityID:   o.SecurityID,
		SecurityName: name,
		Market:       market,
		Lot:          o.Lot,
		Quantity:     o.Quantity.Round(0).IntPart(),
		AverageCost:  o.AverageCost.Round(2),
	}
}

// Merge applies overrides on top of computed positions.
//
// An override replaces the quantity and average cost of the position with the
// same key, deletes it when its quantity is not positive, or inserts a new
// position when no computed one exists. Overrides are applied in order, so the
// last override of a key wins. positions is not modified; the result is
// sorted by security id.
func Merge(positions []Position, overrides []ManualOverride) []Position {
	merged := make([]Position, len(positions))
	copy(merged, positions)

	index := func(k LotKey) int {
		for i, p := range merged {
			if p.Key() == k {
				return i
			}
		}
		return -1
	}

	for _, o := range overrides {
		if o.SecurityID == "" {
			continue
		}
		i := index(o.Key())
		q := o.Quantity.Round(0).IntPart()
		switch {
		case i >= 0 && (o.Deletes() || q <= 0):
			merged = append(merged[:i], merged[i+1:]...)
		case i >= 0:
			merged[i].Quantity = q
			merged[i].AverageCost = o.AverageCost.Round(2)
		case !o.Deletes() && q > 0:
			merged = append(merged, o.position())
		}
	}
	SortPositions(merged)
	return merged
}
