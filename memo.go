package lotbook

import (
	"encoding/hex"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/zeebo/blake3"
)

// Memo caches lot walks keyed by the content of the lot sub-stream, so that
// computing positions and closed trades of the same log walks each lot once.
//
// A changed trade log produces a different hash, so stale entries are never
// read, they only wait for expiration. Memo is safe for concurrent use.
type Memo struct {
	c *cache.Cache
}

// NewMemo returns a Memo whose entries expire after ttl. A zero ttl never expires.
func NewMemo(ttl time.Duration) *Memo {
	cleanup := 10 * time.Minute
	if ttl <= 0 {
		ttl, cleanup = cache.NoExpiration, 0
	}
	return &Memo{c: cache.New(ttl, cleanup)}
}

// Aggregate returns the cached result of Aggregate(stream, spec) for key, computing it on a miss.
func (m *Memo) Aggregate(key LotKey, stream []TradeRecord, spec LotSpec) LotState {
	return m.walk(key, stream, spec).state
}

// Closed returns the cached result of Closed(stream, spec) for key. The
// returned slice is shared and must not be modified.
func (m *Memo) Closed(key LotKey, stream []TradeRecord, spec LotSpec) []ClosedTrade {
	return m.walk(key, stream, spec).closed
}

func (m *Memo) walk(key LotKey, stream []TradeRecord, spec LotSpec) lotWalk {
	k := memoKey(key, stream, spec)
	if v, ok := m.c.Get(k); ok {
		return v.(lotWalk)
	}
	w := walkLot(stream, spec)
	m.c.SetDefault(k, w)
	return w
}

// Len returns the number of cached lots, expired or not.
func (m *Memo) Len() int { return m.c.ItemCount() }

// Flush drops every entry.
func (m *Memo) Flush() { m.c.Flush() }

// memoKey hashes everything the aggregate depends on.
func memoKey(key LotKey, stream []TradeRecord, spec LotSpec) string {
	h := blake3.New()
	h.Write([]byte(key.String()))
	h.Write([]byte{0, byte(spec.Kenin), byte(spec.Sell)})
	for _, a := range spec.Buys {
		h.Write([]byte{byte(a)})
	}
	h.Write([]byte(spec.Policy.String()))
	for _, r := range stream {
		h.Write([]byte{0})
		h.Write([]byte(r.TradeDate.String()))
		h.Write([]byte{byte(r.AccountType), byte(r.Action)})
		h.Write([]byte(r.Quantity.String()))
		h.Write([]byte{'@'})
		h.Write([]byte(r.Price.String()))
	}
	return hex.EncodeToString(h.Sum(nil))
}
