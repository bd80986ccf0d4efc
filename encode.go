package lotbook

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/etnz/lotbook/date"
	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// recordLine is the JSONL shape of a TradeRecord. Numbers may be JSON numbers
// or locale formatted strings.
type recordLine struct {
	Date     date.Date      `json:"date"`
	Security string         `json:"security"`
	Name     string         `json:"name"`
	Market   Market         `json:"market"`
	Account  AccountType    `json:"account"`
	Action   string         `json:"action"`
	Quantity lenientDecimal `json:"quantity"`
	Price    lenientDecimal `json:"price"`
}

// normalizeSecurityID trims an id and undoes spreadsheet float formatting ("7203.0").
func normalizeSecurityID(id string) string {
	id = strings.TrimSpace(id)
	if whole, frac, ok := strings.Cut(id, "."); ok && whole != "" && strings.Trim(frac, "0") == "" {
		if _, err := decimal.NewFromString(whole); err == nil {
			return whole
		}
	}
	return id
}

// MarshalJSON writes the record with a stable field order.
func (r TradeRecord) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("date", r.TradeDate)
	w.Append("security", r.SecurityID)
	w.Optional("name", r.SecurityName)
	w.Append("market", r.Market)
	w.Append("account", r.AccountType)
	action := r.Action.String()
	if r.Action == UnknownAction && r.RawAction != "" {
		action = r.RawAction
	}
	w.Append("action", action)
	w.Append("quantity", r.Quantity)
	w.Append("price", r.Price)
	return w.MarshalJSON()
}

// UnmarshalJSON reads a record leniently: numbers are coerced and unknown
// actions are kept as UnknownAction.
func (r *TradeRecord) UnmarshalJSON(b []byte) error {
	var l recordLine
	if err := json.Unmarshal(b, &l); err != nil {
		return err
	}
	action, _ := ParseAction(l.Action)
	*r = TradeRecord{
		TradeDate:    l.Date,
		SecurityID:   normalizeSecurityID(l.Security),
		SecurityName: strings.TrimSpace(l.Name),
		Market:       l.Market,
		AccountType:  l.Account,
		Action:       action,
		RawAction:    strings.TrimSpace(l.Action),
		Quantity:     l.Quantity.Decimal(),
		Price:        l.Price.Decimal(),
	}
	return nil
}

// decodeLines calls fn for every non empty line of r, decorating errors with
// the line number.
func decodeLines(r io.Reader, fn func(line []byte) error) error {
	scanner := bufio.NewScanner(r)
	n := 0
	for scanner.Scan() {
		n++
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue // Skip empty lines
		}
		if err := fn(line); err != nil {
			return fmt.Errorf("line %d: %w", n, err)
		}
	}
	return scanner.Err()
}

// DecodeRecords decodes a JSONL stream of trade records, keeping file order.
func DecodeRecords(r io.Reader) ([]TradeRecord, error) {
	var records []TradeRecord
	err := decodeLines(r, func(line []byte) error {
		var rec TradeRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return fmt.Errorf("could not decode trade record %q: %w", string(line), err)
		}
		records = append(records, rec)
		return nil
	})
	return records, err
}

// EncodeRecords writes records as JSONL.
func EncodeRecords(w io.Writer, records []TradeRecord) error {
	return encodeLines(w, records)
}

func encodeLines[T any](w io.Writer, values []T) error {
	for _, v := range values {
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%s\n", b); err != nil {
			return err
		}
	}
	return nil
}

type overrideLine struct {
	Security    string         `json:"security"`
	Lot         LotClass       `json:"lot"`
	Name        string         `json:"name"`
	Market      string         `json:"market"`
	Quantity    lenientDecimal `json:"quantity"`
	AverageCost lenientDecimal `json:"averageCost"`
}

// MarshalJSON writes the override with a stable field order.
func (o ManualOverride) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("security", o.SecurityID)
	w.Append("lot", o.Lot)
	w.Optional("name", o.SecurityName)
	if o.Market != nil {
		w.Append("market", *o.Market)
	}
	w.Append("quantity", o.Quantity)
	w.Append("averageCost", o.AverageCost)
	return w.MarshalJSON()
}

// UnmarshalJSON reads an override. Malformed numbers are 0, which deletes the
// position; an unknown market falls back to the default.
func (o *ManualOverride) UnmarshalJSON(b []byte) error {
	var l overrideLine
	if err := json.Unmarshal(b, &l); err != nil {
		return err
	}
	*o = ManualOverride{
		SecurityID:   normalizeSecurityID(l.Security),
		Lot:          l.Lot,
		SecurityName: strings.TrimSpace(l.Name),
		Quantity:     l.Quantity.Decimal(),
		AverageCost:  l.AverageCost.Decimal(),
	}
	if m, err := ParseMarket(l.Market); err == nil {
		o.Market = &m
	}
	return nil
}

// DecodeOverrides decodes a JSONL stream of manual overrides.
func DecodeOverrides(r io.Reader) ([]ManualOverride, error) {
	var overrides []ManualOverride
	err := decodeLines(r, func(line []byte) error {
		var o ManualOverride
		if err := json.Unmarshal(line, &o); err != nil {
			return fmt.Errorf("could not decode override %q: %w", string(line), err)
		}
		overrides = append(overrides, o)
		return nil
	})
	return overrides, err
}

// EncodeOverrides writes overrides as JSONL.
func EncodeOverrides(w io.Writer, overrides []ManualOverride) error {
	return encodeLines(w, overrides)
}

// UpsertOverride replaces the override of the same key, or appends o.
func UpsertOverride(overrides []ManualOverride, o ManualOverride) []ManualOverride {
	for i := range overrides {
		if overrides[i].Key() == o.Key() {
			overrides[i] = o
			return overrides
		}
	}
	return append(overrides, o)
}

// RemoveOverride drops every override of key k, giving the position back to
// the computed table.
func RemoveOverride(overrides []ManualOverride, k LotKey) []ManualOverride {
	return slices.DeleteFunc(overrides, func(o ManualOverride) bool { return o.Key() == k })
}

// MarshalJSON writes the position with a stable field order.
func (p Position) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("security", p.SecurityID)
	w.Append("name", p.SecurityName)
	w.Append("market", p.Market)
	w.Append("lot", p.Lot)
	w.Append("quantity", p.Quantity)
	w.Append("averageCost", p.AverageCost)
	w.Append("totalCost", p.TotalCost())
	return w.MarshalJSON()
}

// EncodePositions writes a position table as JSONL.
func EncodePositions(w io.Writer, positions []Position) error {
	return encodeLines(w, positions)
}

type annotationLine struct {
	Security string   `json:"security"`
	Lot      LotClass `json:"lot"`
	Key      string   `json:"key"`
	Value    string   `json:"value"`
}

// DecodeAnnotations decodes a JSONL stream of notes. Later lines win.
func DecodeAnnotations(r io.Reader) (*Annotations, error) {
	a := NewAnnotations()
	err := decodeLines(r, func(line []byte) error {
		var l annotationLine
		if err := json.Unmarshal(line, &l); err != nil {
			return fmt.Errorf("could not decode annotation %q: %w", string(line), err)
		}
		a.Set(LotKey{SecurityID: normalizeSecurityID(l.Security), Lot: l.Lot}, l.Key, l.Value)
		return nil
	})
	return a, err
}

// EncodeAnnotations writes every note as JSONL.
func EncodeAnnotations(w io.Writer, a *Annotations) error {
	lines := make([]annotationLine, 0)
	for _, n := range a.All() {
		lines = append(lines, annotationLine{Security: n.SecurityID, Lot: n.Lot, Key: n.Key, Value: n.Value})
	}
	return encodeLines(w, lines)
}
