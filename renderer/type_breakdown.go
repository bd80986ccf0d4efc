package renderer

import (
	"github.com/etnz/lotbook"
)

// Breakdown is the inspection view of one security.
type Breakdown struct {
	Security string            `json:"security"`
	Records  []BreakdownRecord `json:"records"`
	Sums     []BreakdownSum    `json:"sums"`
	Rows     []PositionRow     `json:"rows"`
}

// BreakdownRecord is one trade record, as imported.
type BreakdownRecord struct {
	Date     string `json:"date"`
	Account  string `json:"account"`
	Action   string `json:"action"`
	Quantity string `json:"quantity"`
	Price    string `json:"price"`
}

// BreakdownSum is the total quantity of one (account type, action) pair.
type BreakdownSum struct {
	Account  string `json:"account"`
	Action   string `json:"action"`
	Count    int    `json:"count"`
	Quantity string `json:"quantity"`
}

// NewBreakdown builds the rendering struct of a security breakdown.
func NewBreakdown(b lotbook.Breakdown) *Breakdown {
	r := &Breakdown{
		Security: cell(b.SecurityID),
		Records:  make([]BreakdownRecord, 0, len(b.Records)),
		Sums:     make([]BreakdownSum, 0, len(b.Lines)),
		Rows:     make([]PositionRow, 0, len(b.Positions)),
	}
	for _, rec := range b.Records {
		action := rec.Action.String()
		if rec.Action == lotbook.UnknownAction && rec.RawAction != "" {
			action = cell(rec.RawAction)
		}
		r.Records = append(r.Records, BreakdownRecord{
			Date:     rec.TradeDate.String(),
			Account:  rec.AccountType.String(),
			Action:   action,
			Quantity: rec.Quantity.String(),
			Price:    formatPrice(rec.Price, rec.Market.Currency()),
		})
	}
	for _, l := range b.Lines {
		r.Sums = append(r.Sums, BreakdownSum{
			Account:  l.AccountType.String(),
			Action:   l.Action.String(),
			Count:    l.Count,
			Quantity: l.Quantity.String(),
		})
	}
	for _, p := range b.Positions {
		r.Rows = append(r.Rows, newPositionRow(p))
	}
	return r
}
