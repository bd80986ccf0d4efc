package lotbook

import (
	"cmp"
	"slices"

	"github.com/etnz/lotbook/date"
	"github.com/shopspring/decimal"
)

// Performance summarizes closed trades priced in one currency.
type Performance struct {
	Currency string
	Trades   int
	Wins     int // trades with a positive P&L
	Losses   int // trades with a negative P&L
	Total    decimal.Decimal
	// MaxProfit and MaxLoss are the best and worst single trade P&L.
	MaxProfit   decimal.Decimal
	MaxLoss     decimal.Decimal
	AverageWin  decimal.Decimal
	AverageLoss decimal.Decimal // absolute value
	HoldingDays decimal.Decimal // average
}

// WinRate returns the winning trades in percent of all trades.
func (p Performance) WinRate() decimal.Decimal {
	if p.Trades == 0 {
		return decimal.Zero
	}
	return D(p.Wins).Div(D(p.Trades)).Mul(D(100))
}

// Average returns the mean P&L per trade.
func (p Performance) Average() decimal.Decimal {
	if p.Trades == 0 {
		return decimal.Zero
	}
	return p.Total.Div(D(p.Trades))
}

// ProfitFactor is the average win over the average loss. It is 0 when there
// is no losing trade.
func (p Performance) ProfitFactor() decimal.Decimal {
	if !p.AverageLoss.IsPositive() {
		return decimal.Zero
	}
	return p.AverageWin.Div(p.AverageLoss)
}

// Analyze computes the performance of trades, one entry per currency sorted
// by currency code. P&L of different currencies are never added together.
func Analyze(trades []ClosedTrade) []Performance {
	byCurrency := make(map[string][]ClosedTrade)
	for _, t := range trades {
		cur := t.Market.Currency()
		byCurrency[cur] = append(byCurrency[cur], t)
	}
	var perfs []Performance
	for cur, ts := range byCurrency {
		perfs = append(perfs, performance(cur, ts))
	}
	slices.SortFunc(perfs, func(a, b Performance) int { return cmp.Compare(a.Currency, b.Currency) })
	return perfs
}

func performance(currency string, trades []ClosedTrade) Performance {
	p := Performance{Currency: currency, Trades: len(trades)}
	var wins, losses, days decimal.Decimal
	for i, t := range trades {
		pl := t.ProfitLoss()
		p.Total = p.Total.Add(pl)
		if i == 0 || pl.GreaterThan(p.MaxProfit) {
			p.MaxProfit = pl
		}
		if i == 0 || pl.LessThan(p.MaxLoss) {
			p.MaxLoss = pl
		}
		switch pl.Sign() {
		case 1:
			p.Wins++
			wins = wins.Add(pl)
		case -1:
			p.Losses++
			losses = losses.Add(pl.Abs())
		}
		days = days.Add(D(t.HoldingDays()))
	}
	if p.Wins > 0 {
		p.AverageWin = wins.Div(D(p.Wins))
	}
	if p.Losses > 0 {
		p.AverageLoss = losses.Div(D(p.Losses))
	}
	if p.Trades > 0 {
		p.HoldingDays = days.Div(D(p.Trades))
	}
	return p
}

// GroupStats is the performance of the closed trades sharing a label.
type GroupStats struct {
	Label    string
	Currency string
	Trades   int
	Wins     int
	Total    decimal.Decimal
	// AveragePercent is the mean of the trades' P&L percent.
	AveragePercent decimal.Decimal
}

// WinRate returns the winning trades in percent of the group.
func (g GroupStats) WinRate() decimal.Decimal {
	if g.Trades == 0 {
		return decimal.Zero
	}
	return D(g.Wins).Div(D(g.Trades)).Mul(D(100))
}

// Average returns the mean P&L per trade of the group.
func (g GroupStats) Average() decimal.Decimal {
	if g.Trades == 0 {
		return decimal.Zero
	}
	return g.Total.Div(D(g.Trades))
}

// GroupBy aggregates trades per label and currency. Trades labeled "" are
// skipped. Groups are sorted by total P&L, best first.
func GroupBy(trades []ClosedTrade, label func(ClosedTrade) string) []GroupStats {
	type key struct{ label, currency string }
	index := make(map[key]int)
	var groups []GroupStats
	var percents []decimal.Decimal
	for _, t := range trades {
		k := key{label(t), t.Market.Currency()}
		if k.label == "" {
			continue
		}
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, GroupStats{Label: k.label, Currency: k.currency})
			percents = append(percents, decimal.Zero)
		}
		g := &groups[i]
		g.Trades++
		if t.ProfitLoss().IsPositive() {
			g.Wins++
		}
		g.Total = g.Total.Add(t.ProfitLoss())
		percents[i] = percents[i].Add(t.ProfitLossPercent())
	}
	for i := range groups {
		groups[i].AveragePercent = percents[i].Div(D(groups[i].Trades))
	}
	slices.SortStableFunc(groups, func(a, b GroupStats) int {
		return cmp.Or(b.Total.Cmp(a.Total), cmp.Compare(a.Label, b.Label))
	})
	return groups
}

// BySecurity aggregates trades per security id.
func BySecurity(trades []ClosedTrade) []GroupStats {
	return GroupBy(trades, func(t ClosedTrade) string { return t.SecurityID })
}

// ByNote aggregates trades per value of the note key of their position, for
// instance the entry reason. Trades whose position has no such note are
// skipped.
func ByNote(trades []ClosedTrade, notes *Annotations, key string) []GroupStats {
	return GroupBy(trades, func(t ClosedTrade) string { return notes.Get(t.Key())[key] })
}

// ExitedWithin returns the trades whose exit date is within r, in their
// original order.
func ExitedWithin(trades []ClosedTrade, r date.Range) []ClosedTrade {
	if r.IsZero() {
		return trades
	}
	var in []ClosedTrade
	for _, t := range trades {
		if r.Contains(t.ExitDate) {
			in = append(in, t)
		}
	}
	return in
}
