package renderer

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// currency returns a never nil currency for a code.
func currency(code string) money.Currency {
	// to get a never nil currency I need to call the Money constructor
	return *money.New(0, code).Currency()
}

// formatMoney formats an amount with the currency's own number of digits.
func formatMoney(v decimal.Decimal, code string) string {
	cur := currency(code)
	return cur.Formatter().Format(v.Shift(int32(cur.Fraction)).Round(0).IntPart())
}

// formatPrice formats a per-unit price with two decimals, whatever the currency.
// Moving averages of yen prices are rarely whole.
func formatPrice(v decimal.Decimal, code string) string {
	const fraction = 2
	cur := currency(code)
	f := money.NewFormatter(fraction, cur.Decimal, cur.Thousand, cur.Grapheme, cur.Template)
	return f.Format(v.Shift(fraction).Round(0).IntPart())
}

// cell makes s safe to use in a markdown table cell.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.Join(strings.Fields(s), " ")
}
