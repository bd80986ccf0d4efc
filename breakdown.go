package lotbook

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"
)

// BreakdownLine is the total quantity of one (account type, action) pair.
type BreakdownLine struct {
	AccountType AccountType
	Action      Action
	Count       int
	Quantity    decimal.Decimal
}

// Breakdown is the raw material of one security, used to inspect why a
// position looks the way it does.
type Breakdown struct {
	SecurityID string
	Records    []TradeRecord   // chronological
	Lines      []BreakdownLine // sorted by account type then action
	Positions  []Position      // computed positions of the security
}

// Breakdown collects the records of security id and their quantity sums.
func (s *Summarizer) Breakdown(records []TradeRecord, id string) Breakdown {
	b := Breakdown{SecurityID: id}
	for _, r := range records {
		if r.SecurityID == id {
			b.Records = append(b.Records, r)
		}
	}
	slices.SortStableFunc(b.Records, func(a, b TradeRecord) int { return a.TradeDate.Compare(b.TradeDate) })

	type pair struct {
		t AccountType
		a Action
	}
	sums := make(map[pair]*BreakdownLine)
	for _, r := range b.Records {
		k := pair{r.AccountType, r.Action}
		l, ok := sums[k]
		if !ok {
			l = &BreakdownLine{AccountType: r.AccountType, Action: r.Action}
			sums[k] = l
		}
		l.Count++
		l.Quantity = l.Quantity.Add(r.Quantity)
	}
	for _, l := range sums {
		b.Lines = append(b.Lines, *l)
	}
	slices.SortFunc(b.Lines, func(x, y BreakdownLine) int {
		return cmp.Or(cmp.Compare(x.AccountType, y.AccountType), cmp.Compare(x.Action, y.Action))
	})
	b.Positions = s.Summarize(b.Records)
	return b
}
