package lotbook

import (
	"errors"

	"github.com/shopspring/decimal"
)

// RiskSettings are the trader's money management parameters.
type RiskSettings struct {
	TotalCapital decimal.Decimal
	RiskPercent  decimal.Decimal // percent of TotalCapital accepted as loss per trade, e.g. 0.2
}

// DefaultRiskSettings are 1,000,000 of capital and 0.2% risk per trade.
func DefaultRiskSettings() RiskSettings {
	return RiskSettings{TotalCapital: D(1_000_000), RiskPercent: D(0.2)}
}

// RiskAmount is the maximum loss accepted on a single trade.
func (r RiskSettings) RiskAmount() decimal.Decimal {
	return r.TotalCapital.Mul(r.RiskPercent).Div(D(100))
}

// ErrStopAboveEntry is returned when the stop loss does not sit below the entry price.
var ErrStopAboveEntry = errors.New("stop loss price must be below the entry price")

// Sizing is the outcome of a position size computation.
type Sizing struct {
	Entry        decimal.Decimal
	Stop         decimal.Decimal
	RiskAmount   decimal.Decimal
	LossPerShare decimal.Decimal
	Shares       int64
	Investment   decimal.Decimal // Entry × Shares
	LossPercent  decimal.Decimal // stop distance in percent of entry
	CapitalRatio decimal.Decimal // Investment in percent of TotalCapital
}

// Size returns how many shares can be bought at entry so that hitting stop
// loses at most the risk amount.
func (r RiskSettings) Size(entry, stop decimal.Decimal) (Sizing, error) {
	if !entry.IsPositive() || !stop.IsPositive() {
		return Sizing{}, errors.New("entry and stop loss prices must be positive")
	}
	if !stop.LessThan(entry) {
		return Sizing{}, ErrStopAboveEntry
	}
	s := Sizing{
		Entry:        entry,
		Stop:         stop,
		RiskAmount:   r.RiskAmount(),
		LossPerShare: entry.Sub(stop),
	}
	s.Shares = s.RiskAmount.Div(s.LossPerShare).Floor().IntPart()
	s.Investment = entry.Mul(decimal.NewFromInt(s.Shares))
	s.LossPercent = s.LossPerShare.Div(entry).Mul(D(100))
	if r.TotalCapital.IsPositive() {
		s.CapitalRatio = s.Investment.Div(r.TotalCapital).Mul(D(100))
	}
	return s, nil
}
