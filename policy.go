package lotbook

import (
	"fmt"
	"slices"
	"strings"
)

// KeninPolicy decides which KENIN tagged records are treated as margin-to-cash
// settlements.
//
// Broker exports have tagged some settlements as ordinary margin actions over
// time, so the set of nominal actions that disqualify a KENIN row is
// configurable rather than fixed.
type KeninPolicy struct {
	// Exclude lists the nominal actions for which a KENIN tagged record is
	// treated as an ordinary record of that action instead of a settlement.
	Exclude []Action
}

// DefaultKeninPolicy excludes margin open and close actions.
func DefaultKeninPolicy() KeninPolicy {
	return KeninPolicy{Exclude: []Action{MarginOpenBuy, MarginCloseSell}}
}

// IsSettlement reports whether r is a KENIN settlement under this policy.
func (p KeninPolicy) IsSettlement(r TradeRecord) bool {
	return r.AccountType == Kenin && !slices.Contains(p.Exclude, r.Action)
}

// String returns the comma separated list of excluded actions.
func (p KeninPolicy) String() string {
	names := make([]string, len(p.Exclude))
	for i, a := range p.Exclude {
		names[i] = a.String()
	}
	return strings.Join(names, ",")
}

// ParseKeninPolicy parses a comma separated list of action codes or labels.
// The empty string is a policy with no exclusion.
func ParseKeninPolicy(s string) (KeninPolicy, error) {
	var p KeninPolicy
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		a, err := ParseAction(f)
		if err != nil {
			return KeninPolicy{}, fmt.Errorf("invalid kenin policy: %w", err)
		}
		if !slices.Contains(p.Exclude, a) {
			p.Exclude = append(p.Exclude, a)
		}
	}
	return p, nil
}
