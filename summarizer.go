package lotbook

import (
	"iter"
	"maps"
	"slices"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// column labels that show up as data when a header row leaks into a re-import.
var (
	headerSecurityIDs = []string{"銘柄コード", "ティッカー", "コード", "ticker_code", "security_id", "security"}
	headerActions     = []string{"売買区分", "trade_action", "action"}
)

// Summarizer reconstructs the position table from a trade record stream.
//
// It holds configuration only, every call to Summarize recomputes the table
// from scratch.
type Summarizer struct {
	policy KeninPolicy
	log    zerolog.Logger
	memo   *Memo
}

// SummarizerOption configures a Summarizer.
type SummarizerOption func(*Summarizer)

// WithPolicy sets the KENIN classification policy.
func WithPolicy(p KeninPolicy) SummarizerOption {
	return func(s *Summarizer) { s.policy = p }
}

// WithLogger sets the diagnostics logger.
func WithLogger(log zerolog.Logger) SummarizerOption {
	return func(s *Summarizer) { s.log = log.With().Str("component", "summarizer").Logger() }
}

// WithMemo memoizes lot averages across calls.
func WithMemo(m *Memo) SummarizerOption {
	return func(s *Summarizer) { s.memo = m }
}

// NewSummarizer returns a Summarizer using the default KENIN policy and no logging.
func NewSummarizer(opts ...SummarizerOption) *Summarizer {
	s := &Summarizer{policy: DefaultKeninPolicy(), log: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Summarize computes positions with the default configuration.
func Summarize(records []TradeRecord) []Position {
	return NewSummarizer().Summarize(records)
}

// Policy returns the KENIN policy in use.
func (s *Summarizer) Policy() KeninPolicy { return s.policy }

// Summarize returns the position table derived from records, sorted by
// security id. records is not modified and may be in any order; records of
// the same day keep their relative order.
func (s *Summarizer) Summarize(records []TradeRecord) []Position {
	var positions []Position
	for id, group := range s.securities(records) {
		positions = append(positions, s.summarizeSecurity(id, group)...)
	}
	SortPositions(positions)
	return positions
}

// ClosedTrades returns every trade closed by a sell or a margin close in
// records, sorted by exit date. Like Summarize, it recomputes from scratch.
func (s *Summarizer) ClosedTrades(records []TradeRecord) []ClosedTrade {
	var closed []ClosedTrade
	for id, group := range s.securities(records) {
		name, market := identity(id, group)
		ls := s.split(market, group)
		lots := []struct {
			lot    LotClass
			stream []TradeRecord
			spec   LotSpec
		}{
			{CashLot, ls.cash, cashSpec(market, s.policy)},
			{MarginLot, ls.margin, marginSpec(s.policy)},
		}
		for _, l := range lots {
			key := LotKey{SecurityID: id, Lot: l.lot}
			for _, t := range s.closed(key, l.stream, l.spec) {
				t.SecurityID, t.SecurityName, t.Market, t.Lot = id, name, market, l.lot
				closed = append(closed, t)
			}
		}
	}
	slices.SortStableFunc(closed, func(a, b ClosedTrade) int { return a.ExitDate.Compare(b.ExitDate) })
	return closed
}

// securities drops noise, sorts records by trade date (stable) and yields
// them grouped by security id, in id order.
func (s *Summarizer) securities(records []TradeRecord) iter.Seq2[string, []TradeRecord] {
	clean := make([]TradeRecord, 0, len(records))
	for _, r := range records {
		if s.isNoise(r) {
			continue
		}
		clean = append(clean, r)
	}
	slices.SortStableFunc(clean, func(a, b TradeRecord) int { return a.TradeDate.Compare(b.TradeDate) })

	groups := make(map[string][]TradeRecord)
	for _, r := range clean {
		groups[r.SecurityID] = append(groups[r.SecurityID], r)
	}
	return func(yield func(string, []TradeRecord) bool) {
		for _, id := range slices.Sorted(maps.Keys(groups)) {
			if !yield(id, groups[id]) {
				return
			}
		}
	}
}

// isNoise reports records that must not reach aggregation.
func (s *Summarizer) isNoise(r TradeRecord) bool {
	id := strings.TrimSpace(r.SecurityID)
	switch {
	case id == "":
		s.log.Debug().Str("date", r.TradeDate.String()).Msg("dropping record without security id")
		return true
	case slices.Contains(headerSecurityIDs, id), slices.Contains(headerActions, strings.TrimSpace(r.RawAction)):
		s.log.Debug().Str("security", id).Str("action", r.RawAction).Msg("dropping header row")
		return true
	}
	return false
}

// identity resolves the name and market of a security from the first record
// carrying a name.
func identity(id string, records []TradeRecord) (string, Market) {
	for _, r := range records {
		if strings.TrimSpace(r.SecurityName) != "" {
			return r.SecurityName, r.Market
		}
	}
	return id, Domestic
}

// lotStreams holds the arithmetic quantities of a security and the sub-streams
// fed to the aggregator.
type lotStreams struct {
	cashQty, marginQty decimal.Decimal
	cash, margin       []TradeRecord
}

// split partitions the (sorted) records of one security into its cash and
// margin lots.
func (s *Summarizer) split(market Market, records []TradeRecord) lotStreams {
	var kenin, buy, sell, deposit, opened, closed decimal.Decimal
	var ls lotStreams
	for _, r := range records {
		if s.policy.IsSettlement(r) {
			if market != Domestic {
				// there is no margin lot to settle from, so a foreign KENIN row
				// counts on neither side, not even as its nominal action.
				s.log.Debug().Str("security", r.SecurityID).Str("date", r.TradeDate.String()).Msg("ignoring kenin settlement outside domestic market")
				continue
			}
			kenin = kenin.Add(r.Quantity)
			ls.cash = append(ls.cash, r)
			ls.margin = append(ls.margin, r)
			continue
		}
		switch r.Action {
		case CashBuy, CashSell:
			if market == Domestic && r.AccountType != CashAccount {
				continue
			}
			if r.Action == CashBuy {
				buy = buy.Add(r.Quantity)
			} else {
				sell = sell.Add(r.Quantity)
			}
			ls.cash = append(ls.cash, r)
		case DepositIn:
			if market != Domestic {
				continue
			}
			deposit = deposit.Add(r.Quantity)
			ls.cash = append(ls.cash, r)
		case MarginOpenBuy:
			opened = opened.Add(r.Quantity)
			ls.margin = append(ls.margin, r)
		case MarginCloseSell:
			closed = closed.Add(r.Quantity)
			ls.margin = append(ls.margin, r)
		}
	}
	ls.cashQty = buy.Add(deposit).Add(kenin).Sub(sell)
	ls.marginQty = opened.Sub(closed).Sub(kenin)
	return ls
}

func (s *Summarizer) summarizeSecurity(id string, records []TradeRecord) []Position {
	name, market := identity(id, records)
	ls := s.split(market, records)

	var positions []Position
	emit := func(lot LotClass, qty decimal.Decimal, stream []TradeRecord, spec LotSpec) {
		if !qty.IsPositive() {
			return
		}
		state := s.aggregate(LotKey{SecurityID: id, Lot: lot}, stream, spec)
		if !state.Quantity.Equal(qty) {
			s.log.Warn().
				Str("security", id).
				Stringer("lot", lot).
				Str("quantity", qty.String()).
				Str("running", state.Quantity.String()).
				Msg("lot quantity disagrees with its replay, the stream probably oversells")
		}
		q := qty.Round(0).IntPart()
		if q <= 0 {
			return
		}
		positions = append(positions, Position{
			SecurityID:   id,
			SecurityName: name,
			Market:       market,
			Lot:          lot,
			Quantity:     q,
			AverageCost:  state.AverageCost.Round(2),
		})
	}
	emit(CashLot, ls.cashQty, ls.cash, cashSpec(market, s.policy))
	emit(MarginLot, ls.marginQty, ls.margin, marginSpec(s.policy))
	return positions
}

func (s *Summarizer) aggregate(key LotKey, stream []TradeRecord, spec LotSpec) LotState {
	if s.memo != nil {
		return s.memo.Aggregate(key, stream, spec)
	}
	return Aggregate(stream, spec)
}

func (s *Summarizer) closed(key LotKey, stream []TradeRecord, spec LotSpec) []ClosedTrade {
	if s.memo != nil {
		return s.memo.Closed(key, stream, spec)
	}
	return Closed(stream, spec)
}
