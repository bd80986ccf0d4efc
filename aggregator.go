package lotbook

import (
	"iter"
	"slices"

	"github.com/etnz/lotbook/date"
	"github.com/shopspring/decimal"
)

// KeninMode tells the aggregator which way a KENIN settlement moves a lot.
type KeninMode int

const (
	// KeninBuy makes settlements flow into the lot, like a buy (cash lot).
	KeninBuy KeninMode = iota
	// KeninSell makes settlements drain the lot, like a sell (margin lot).
	KeninSell
)

// LotSpec describes the vocabulary of one lot class.
type LotSpec struct {
	Buys   []Action // actions that add to the lot at their price
	Sell   Action   // action that removes from the lot
	Kenin  KeninMode
	Policy KeninPolicy
}

// cashSpec returns the cash lot vocabulary of a market.
func cashSpec(m Market, p KeninPolicy) LotSpec {
	buys := []Action{CashBuy, DepositIn}
	if m == Foreign {
		buys = []Action{CashBuy}
	}
	return LotSpec{Buys: buys, Sell: CashSell, Kenin: KeninBuy, Policy: p}
}

// marginSpec returns the margin lot vocabulary.
func marginSpec(p KeninPolicy) LotSpec {
	return LotSpec{Buys: []Action{MarginOpenBuy}, Sell: MarginCloseSell, Kenin: KeninSell, Policy: p}
}

// LotState is the running state of a moving-average walk.
type LotState struct {
	Quantity    decimal.Decimal
	AverageCost decimal.Decimal
	// Opened is the day the lot last went from flat to held.
	Opened date.Date
	// Realized accumulates (sell price − average cost) × quantity sold over
	// the whole walk. It survives flattening.
	Realized decimal.Decimal
}

// TotalCost returns the unrounded cost basis of the lot.
func (s LotState) TotalCost() decimal.Decimal { return s.AverageCost.Mul(s.Quantity) }

// add blends q units at price p into the running average.
func (s LotState) add(on date.Date, q, p decimal.Decimal) LotState {
	if !s.Quantity.IsPositive() && q.IsPositive() {
		s.Opened = on
	}
	total := s.TotalCost().Add(p.Mul(q))
	s.Quantity = s.Quantity.Add(q)
	if s.Quantity.IsPositive() {
		s.AverageCost = total.Div(s.Quantity)
	} else {
		s.AverageCost = decimal.Zero
	}
	return s
}

// remove takes q units out. A lot that reaches zero (or less) forgets its cost.
func (s LotState) remove(q decimal.Decimal) LotState {
	s.Quantity = s.Quantity.Sub(q)
	if !s.Quantity.IsPositive() {
		return LotState{Quantity: decimal.Zero, AverageCost: decimal.Zero, Realized: s.Realized}
	}
	return s
}

// ClosedTrade is the realized part of one sell or close record: the units it
// took out of a held lot, priced in at the lot's average cost.
type ClosedTrade struct {
	SecurityID   string
	SecurityName string
	Market       Market
	Lot          LotClass
	EntryDate    date.Date // day the lot was opened
	ExitDate     date.Date
	Quantity     decimal.Decimal // capped to the units held
	AverageIn    decimal.Decimal
	PriceOut     decimal.Decimal
}

// Key returns the key of the position the trade closed.
func (t ClosedTrade) Key() LotKey { return LotKey{SecurityID: t.SecurityID, Lot: t.Lot} }

// ProfitLoss is (PriceOut − AverageIn) × Quantity.
func (t ClosedTrade) ProfitLoss() decimal.Decimal {
	return t.PriceOut.Sub(t.AverageIn).Mul(t.Quantity)
}

// ProfitLossPercent is the price move in percent of AverageIn, 0 when the lot
// had no cost.
func (t ClosedTrade) ProfitLossPercent() decimal.Decimal {
	if !t.AverageIn.IsPositive() {
		return decimal.Zero
	}
	return t.PriceOut.Sub(t.AverageIn).Div(t.AverageIn).Mul(D(100))
}

// HoldingDays is the number of days between entry and exit.
func (t ClosedTrade) HoldingDays() int { return t.ExitDate.Sub(t.EntryDate) }

// apply applies one record to the state, and returns the trade it closed if any.
func (s LotState) apply(r TradeRecord, spec LotSpec) (LotState, *ClosedTrade) {
	// The account tag wins over the nominal action: a KENIN row is a
	// settlement whatever action the broker printed next to it, so it is
	// checked before the buy set. A KENIN row tagged CASH_SELL must still feed
	// the cash lot, at the carried average when unpriced.
	settlement := spec.Policy.IsSettlement(r)
	switch {
	case settlement && spec.Kenin == KeninBuy:
		// A zero settlement price carries the existing cost basis forward.
		price := r.Price
		if !price.IsPositive() {
			price = s.AverageCost
		}
		return s.add(r.TradeDate, r.Quantity, price), nil
	case settlement && spec.Kenin == KeninSell:
		// the units move to the cash lot, nothing is realized.
		return s.remove(r.Quantity), nil
	case slices.Contains(spec.Buys, r.Action):
		return s.add(r.TradeDate, r.Quantity, r.Price), nil
	case r.Action == spec.Sell:
		q := decimal.Min(r.Quantity, s.Quantity)
		if !q.IsPositive() {
			return s.remove(r.Quantity), nil
		}
		t := &ClosedTrade{
			EntryDate: s.Opened,
			ExitDate:  r.TradeDate,
			Quantity:  q,
			AverageIn: s.AverageCost,
			PriceOut:  r.Price,
		}
		s.Realized = s.Realized.Add(t.ProfitLoss())
		return s.remove(r.Quantity), t
	}
	return s, nil
}

// step applies one record to the state.
func (s LotState) step(r TradeRecord, spec LotSpec) LotState {
	s, _ = s.apply(r, spec)
	return s
}

// Walk returns an iterator over the lot state after each record of stream.
// The stream must already be in chronological order.
func Walk(stream []TradeRecord, spec LotSpec) iter.Seq2[int, LotState] {
	return func(yield func(int, LotState) bool) {
		var s LotState
		for i, r := range stream {
			s = s.step(r, spec)
			if !yield(i, s) {
				return
			}
		}
	}
}

// Aggregate walks a chronologically sorted lot sub-stream with the moving
// average method and returns the final state.
//
// Only the average cost is authoritative: positions take their quantity from
// plain arithmetic over the records, and the state's quantity is there to
// check both agree.
func Aggregate(stream []TradeRecord, spec LotSpec) LotState {
	var last LotState
	for _, s := range Walk(stream, spec) {
		last = s
	}
	return last
}

// lotWalk is the outcome of a full walk over one lot sub-stream.
type lotWalk struct {
	state  LotState
	closed []ClosedTrade
}

// walkLot walks stream like Aggregate, collecting the closed trades.
func walkLot(stream []TradeRecord, spec LotSpec) lotWalk {
	var w lotWalk
	for _, r := range stream {
		var t *ClosedTrade
		w.state, t = w.state.apply(r, spec)
		if t != nil {
			w.closed = append(w.closed, *t)
		}
	}
	return w
}

// Closed returns the trades closed by the sells of a chronologically sorted
// lot sub-stream. Their identity fields are left empty.
func Closed(stream []TradeRecord, spec LotSpec) []ClosedTrade {
	return walkLot(stream, spec).closed
}
