package lotbook

import (
	"github.com/etnz/lotbook/date"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// rec is a helper for tests to create a domestic trade record.
func rec(on, id string, account AccountType, action Action, q, p float64) TradeRecord {
	return TradeRecord{
		TradeDate:    date.MustParse(on),
		SecurityID:   id,
		SecurityName: "name-" + id,
		Market:       Domestic,
		AccountType:  account,
		Action:       action,
		RawAction:    action.String(),
		Quantity:     decimal.NewFromFloat(q),
		Price:        decimal.NewFromFloat(p),
	}
}

// foreign is a helper for tests to create a foreign trade record.
func foreign(on, id string, account AccountType, action Action, q, p float64) TradeRecord {
	r := rec(on, id, account, action, q, p)
	r.Market = Foreign
	return r
}

// buy, sell, open, close and kenin are shortcuts for the common domestic actions.
func buy(on, id string, q, p float64) TradeRecord  { return rec(on, id, CashAccount, CashBuy, q, p) }
func sell(on, id string, q, p float64) TradeRecord { return rec(on, id, CashAccount, CashSell, q, p) }
func open(on, id string, q, p float64) TradeRecord {
	return rec(on, id, MarginAccount, MarginOpenBuy, q, p)
}
func closeMargin(on, id string, q, p float64) TradeRecord {
	return rec(on, id, MarginAccount, MarginCloseSell, q, p)
}
func kenin(on, id string, q, p float64) TradeRecord { return rec(on, id, Kenin, CashBuy, q, p) }

// dec parses a decimal literal, for expectations.
func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// equalDec asserts two decimals are numerically equal.
func equalDec(t assert.TestingT, want string, got decimal.Decimal, msgAndArgs ...any) bool {
	if h, ok := t.(interface{ Helper() }); ok {
		h.Helper()
	}
	return assert.Truef(t, got.Equal(dec(want)), "got %s, want %s %v", got, want, msgAndArgs)
}
