package renderer

import (
	"github.com/etnz/lotbook"
	"github.com/etnz/lotbook/date"
	"github.com/shopspring/decimal"
)

// Analysis is the closed trade performance report.
type Analysis struct {
	Window        string               `json:"window,omitempty"`
	OpenPositions int                  `json:"openPositions"`
	Summaries     []PerformanceSummary `json:"summaries"`
	Securities    []GroupRow           `json:"securities"`
	NoteKey       string               `json:"noteKey,omitempty"`
	Notes         []GroupRow           `json:"notes,omitempty"`
	Trades        []TradeRow           `json:"trades"`
}

// PerformanceSummary is the performance of the trades of one currency.
type PerformanceSummary struct {
	Currency     string `json:"currency"`
	Trades       int    `json:"trades"`
	Wins         int    `json:"wins"`
	Losses       int    `json:"losses"`
	WinRate      string `json:"winRate"`
	Total        string `json:"total"`
	Average      string `json:"average"`
	MaxProfit    string `json:"maxProfit"`
	MaxLoss      string `json:"maxLoss"`
	ProfitFactor string `json:"profitFactor"`
	HoldingDays  string `json:"holdingDays"`
}

// GroupRow is the performance of the trades sharing a label.
type GroupRow struct {
	Label          string `json:"label"`
	Currency       string `json:"currency"`
	Trades         int    `json:"trades"`
	WinRate        string `json:"winRate"`
	Total          string `json:"total"`
	Average        string `json:"average"`
	AveragePercent string `json:"averagePercent"`
}

// TradeRow is one closed trade of the history.
type TradeRow struct {
	ExitDate          string `json:"exitDate"`
	EntryDate         string `json:"entryDate"`
	Security          string `json:"security"`
	Name              string `json:"name"`
	Lot               string `json:"lot"`
	Quantity          string `json:"quantity"`
	AverageIn         string `json:"averageIn"`
	PriceOut          string `json:"priceOut"`
	ProfitLoss        string `json:"profitLoss"`
	ProfitLossPercent string `json:"profitLossPercent"`
	HoldingDays       int    `json:"holdingDays"`
	Cumulative        string `json:"cumulative"` // running P&L in the trade's currency
}

// NewAnalysis builds the rendering struct of closed trades, sorted by exit
// date. When noteKey is set, trades are also grouped by that note of their
// position.
func NewAnalysis(trades []lotbook.ClosedTrade, notes *lotbook.Annotations, noteKey string, window date.Range, open int) *Analysis {
	a := &Analysis{
		OpenPositions: open,
		Summaries:     make([]PerformanceSummary, 0),
		Securities:    newGroupRows(lotbook.BySecurity(trades)),
		Trades:        make([]TradeRow, 0, len(trades)),
	}
	if !window.IsZero() {
		a.Window = window.String()
	}
	for _, p := range lotbook.Analyze(trades) {
		a.Summaries = append(a.Summaries, PerformanceSummary{
			Currency:     p.Currency,
			Trades:       p.Trades,
			Wins:         p.Wins,
			Losses:       p.Losses,
			WinRate:      percent(p.WinRate(), 1),
			Total:        formatMoney(p.Total, p.Currency),
			Average:      formatMoney(p.Average(), p.Currency),
			MaxProfit:    formatMoney(p.MaxProfit, p.Currency),
			MaxLoss:      formatMoney(p.MaxLoss, p.Currency),
			ProfitFactor: p.ProfitFactor().StringFixed(2),
			HoldingDays:  p.HoldingDays.StringFixed(1),
		})
	}
	if noteKey != "" && notes != nil {
		a.NoteKey = cell(noteKey)
		a.Notes = newGroupRows(lotbook.ByNote(trades, notes, noteKey))
	}

	cumulative := make(map[string]decimal.Decimal)
	for _, t := range trades {
		cur := t.Market.Currency()
		cumulative[cur] = cumulative[cur].Add(t.ProfitLoss())
		a.Trades = append(a.Trades, TradeRow{
			ExitDate:          t.ExitDate.String(),
			EntryDate:         t.EntryDate.String(),
			Security:          cell(t.SecurityID),
			Name:              cell(t.SecurityName),
			Lot:               t.Lot.String(),
			Quantity:          t.Quantity.String(),
			AverageIn:         formatPrice(t.AverageIn, cur),
			PriceOut:          formatPrice(t.PriceOut, cur),
			ProfitLoss:        formatMoney(t.ProfitLoss(), cur),
			ProfitLossPercent: percent(t.ProfitLossPercent(), 2),
			HoldingDays:       t.HoldingDays(),
			Cumulative:        formatMoney(cumulative[cur], cur),
		})
	}
	return a
}

func newGroupRows(groups []lotbook.GroupStats) []GroupRow {
	rows := make([]GroupRow, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, GroupRow{
			Label:          cell(g.Label),
			Currency:       g.Currency,
			Trades:         g.Trades,
			WinRate:        percent(g.WinRate(), 1),
			Total:          formatMoney(g.Total, g.Currency),
			Average:        formatMoney(g.Average(), g.Currency),
			AveragePercent: percent(g.AveragePercent, 2),
		})
	}
	return rows
}

// percent formats v as a percentage with the given number of decimals.
func percent(v decimal.Decimal, places int32) string {
	return v.StringFixed(places) + "%"
}
