package lotbook

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/etnz/lotbook/date"
	"github.com/shopspring/decimal"
)

// Market determines which action vocabulary and lot-class rules apply to a security.
type Market int

const (
	// Domestic securities trade in cash and margin accounts and know KENIN settlements.
	Domestic Market = iota
	// Foreign securities only trade in cash.
	Foreign
)

func (m Market) String() string {
	switch m {
	case Domestic:
		return "DOMESTIC"
	case Foreign:
		return "FOREIGN"
	default:
		return "UNKNOWN"
	}
}

// Currency returns the ISO code prices are quoted in for this market.
func (m Market) Currency() string {
	if m == Foreign {
		return "USD"
	}
	return "JPY"
}

// ParseMarket parses a market code or broker label.
func ParseMarket(s string) (Market, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DOMESTIC", "JP", "日本株":
		return Domestic, nil
	case "FOREIGN", "US", "米国株":
		return Foreign, nil
	default:
		return Domestic, fmt.Errorf("unknown market %q", s)
	}
}

func (m Market) MarshalJSON() ([]byte, error) { return json.Marshal(m.String()) }

// UnmarshalJSON reads a market, an empty value is Domestic.
func (m *Market) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*m = Domestic
		return nil
	}
	v, err := ParseMarket(s)
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Action is the transaction action of a trade record.
type Action int

const (
	// UnknownAction is any label the normalizer could not map. Such records never count.
	UnknownAction Action = iota
	CashBuy
	CashSell
	MarginOpenBuy
	MarginCloseSell
	DepositIn
)

var actionCodes = map[Action]string{
	UnknownAction:   "UNKNOWN",
	CashBuy:         "CASH_BUY",
	CashSell:        "CASH_SELL",
	MarginOpenBuy:   "MARGIN_OPEN_BUY",
	MarginCloseSell: "MARGIN_CLOSE_SELL",
	DepositIn:       "DEPOSIT_IN",
}

var actionLabels = map[string]Action{
	"CASH_BUY":          CashBuy,
	"買付":                CashBuy,
	"CASH_SELL":         CashSell,
	"売付":                CashSell,
	"MARGIN_OPEN_BUY":   MarginOpenBuy,
	"買建":                MarginOpenBuy,
	"MARGIN_CLOSE_SELL": MarginCloseSell,
	"売埋":                MarginCloseSell,
	"DEPOSIT_IN":        DepositIn,
	"入庫":                DepositIn,
}

func (a Action) String() string {
	if s, ok := actionCodes[a]; ok {
		return s
	}
	return actionCodes[UnknownAction]
}

// IsMargin reports whether a is a margin open or close action.
func (a Action) IsMargin() bool { return a == MarginOpenBuy || a == MarginCloseSell }

// ParseAction parses an action code or broker label. Unknown labels return
// UnknownAction and an error.
func ParseAction(s string) (Action, error) {
	if a, ok := actionLabels[strings.ToUpper(strings.TrimSpace(s))]; ok {
		return a, nil
	}
	return UnknownAction, fmt.Errorf("unknown action %q", s)
}

func (a Action) MarshalJSON() ([]byte, error) { return json.Marshal(a.String()) }

// UnmarshalJSON never fails on unknown labels, they decode as UnknownAction.
func (a *Action) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*a, _ = ParseAction(s)
	return nil
}

// AccountType is the origin tag of a trade record.
type AccountType int

const (
	// OtherAccount is any origin that is neither cash, margin nor KENIN.
	OtherAccount AccountType = iota
	CashAccount
	MarginAccount
	// Kenin is a physical delivery settlement converting a margin position into cash.
	Kenin
)

func (t AccountType) String() string {
	switch t {
	case CashAccount:
		return "CASH"
	case MarginAccount:
		return "MARGIN"
	case Kenin:
		return "KENIN"
	default:
		return "OTHER"
	}
}

// ParseAccountType parses an account type code or broker label. It never
// fails: unknown labels are OtherAccount.
func ParseAccountType(s string) AccountType {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CASH", "現物":
		return CashAccount
	case "MARGIN", "信用", "信用買", "信用新規", "信用返済":
		return MarginAccount
	case "KENIN", "現引":
		return Kenin
	default:
		return OtherAccount
	}
}

func (t AccountType) MarshalJSON() ([]byte, error) { return json.Marshal(t.String()) }

func (t *AccountType) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*t = ParseAccountType(s)
	return nil
}

// LotClass is an independent cost-basis bucket of a security.
type LotClass int

const (
	// CashLot is the ordinary, physically held lot.
	CashLot LotClass = iota
	// MarginLot is the leveraged, borrowed lot.
	MarginLot
)

func (l LotClass) String() string {
	if l == MarginLot {
		return "MARGIN"
	}
	return "CASH"
}

// ParseLotClass parses a lot class code or broker label.
func ParseLotClass(s string) (LotClass, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CASH", "現物", "":
		return CashLot, nil
	case "MARGIN", "信用買", "信用":
		return MarginLot, nil
	default:
		return CashLot, fmt.Errorf("unknown lot class %q", s)
	}
}

func (l LotClass) MarshalJSON() ([]byte, error) { return json.Marshal(l.String()) }

func (l *LotClass) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := ParseLotClass(s)
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// TradeRecord is one row of the normalized execution log.
//
// Records are values: the engine reads them and never writes them back.
type TradeRecord struct {
	TradeDate    date.Date
	SecurityID   string
	SecurityName string
	Market       Market
	AccountType  AccountType
	Action       Action
	// RawAction is the label the action was decoded from, kept to detect
	// header rows leaking into the data.
	RawAction string
	Quantity  decimal.Decimal
	Price     decimal.Decimal
}

// Within returns the records traded within r, in their original order.
func Within(records []TradeRecord, r date.Range) []TradeRecord {
	if r.IsZero() {
		return records
	}
	var in []TradeRecord
	for _, rec := range records {
		if r.Contains(rec.TradeDate) {
			in = append(in, rec)
		}
	}
	return in
}
