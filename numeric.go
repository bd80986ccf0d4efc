package lotbook

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// D is a convenient factory for decimal.Decimal.
func D[T float64 | int | int64 | decimal.Decimal](value T) decimal.Decimal {
	switch v := any(value).(type) {
	case decimal.Decimal:
		return v
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int64:
		return decimal.NewFromInt(v)
	default:
		panic("unsupported type")
	}
}

// Coerce reads a locale formatted number ("1,234.5", " 12 ") leniently.
// Blank, "-", "nan" and anything unparsable are 0. Negative values are clamped
// to 0 since quantities and prices are never negative.
func Coerce(s string) decimal.Decimal {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	switch strings.ToLower(s) {
	case "", "-", "nan", "none", "null":
		return decimal.Zero
	}
	v, err := decimal.NewFromString(s)
	if err != nil || v.IsNegative() {
		return decimal.Zero
	}
	return v
}

// lenientDecimal decodes a JSON number or a string through Coerce.
type lenientDecimal decimal.Decimal

func (l *lenientDecimal) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		// not a string, read the raw token: number, null, bool...
		s = string(b)
	}
	*l = lenientDecimal(Coerce(s))
	return nil
}

func (l lenientDecimal) Decimal() decimal.Decimal { return decimal.Decimal(l) }
