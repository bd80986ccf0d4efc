package renderer

import (
	"cmp"
	"slices"

	"github.com/etnz/lotbook"
	"github.com/shopspring/decimal"
)

// PositionTable is the position table ready for rendering. Amounts are
// already formatted in the currency of their market.
type PositionTable struct {
	Rows   []PositionRow   `json:"rows"`
	Totals []CurrencyTotal `json:"totals"`
}

// PositionRow is one position of the table.
type PositionRow struct {
	Security    string `json:"security"`
	Name        string `json:"name"`
	Market      string `json:"market"`
	Lot         string `json:"lot"`
	Quantity    int64  `json:"quantity"`
	AverageCost string `json:"averageCost"`
	TotalCost   string `json:"totalCost"`
	Notes       int    `json:"notes"`
}

// CurrencyTotal is the cost basis of every position priced in one currency.
type CurrencyTotal struct {
	Currency  string `json:"currency"`
	Positions int    `json:"positions"`
	TotalCost string `json:"totalCost"`
}

// NewPositionTable builds the rendering struct of positions. notes may be nil.
func NewPositionTable(positions []lotbook.Position, notes *lotbook.Annotations) *PositionTable {
	t := &PositionTable{Rows: make([]PositionRow, 0, len(positions)), Totals: make([]CurrencyTotal, 0)}
	totals := make(map[string]decimal.Decimal)
	counts := make(map[string]int)
	for _, p := range positions {
		row := newPositionRow(p)
		if notes != nil {
			row.Notes = notes.Count(p.Key())
		}
		t.Rows = append(t.Rows, row)
		cur := p.Currency()
		totals[cur] = totals[cur].Add(p.TotalCost())
		counts[cur]++
	}
	for cur, total := range totals {
		t.Totals = append(t.Totals, CurrencyTotal{Currency: cur, Positions: counts[cur], TotalCost: formatMoney(total, cur)})
	}
	slices.SortFunc(t.Totals, func(a, b CurrencyTotal) int { return cmp.Compare(a.Currency, b.Currency) })
	return t
}

func newPositionRow(p lotbook.Position) PositionRow {
	cur := p.Currency()
	return PositionRow{
		Security:    cell(p.SecurityID),
		Name:        cell(p.SecurityName),
		Market:      p.Market.String(),
		Lot:         p.Lot.String(),
		Quantity:    p.Quantity,
		AverageCost: formatPrice(p.AverageCost, cur),
		TotalCost:   formatMoney(p.TotalCost(), cur),
	}
}
