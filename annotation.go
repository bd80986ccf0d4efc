package lotbook

import (
	"maps"
	"slices"
)

// Annotation is one opaque key/value note attached to a position.
type Annotation struct {
	SecurityID string
	Lot        LotClass
	Key        string
	Value      string
}

// Annotations is a side-store of notes keyed by position. The engine never
// interprets keys or values.
type Annotations struct {
	notes map[LotKey]map[string]string
}

// NewAnnotations returns an empty store.
func NewAnnotations() *Annotations {
	return &Annotations{notes: make(map[LotKey]map[string]string)}
}

// Set upserts a note. An empty value removes the key.
func (a *Annotations) Set(k LotKey, key, value string) {
	if value == "" {
		delete(a.notes[k], key)
		if len(a.notes[k]) == 0 {
			delete(a.notes, k)
		}
		return
	}
	if a.notes[k] == nil {
		a.notes[k] = make(map[string]string)
	}
	a.notes[k][key] = value
}

// Get returns the notes of a position. The map must not be modified.
func (a *Annotations) Get(k LotKey) map[string]string { return a.notes[k] }

// Count returns the number of notes of a position.
func (a *Annotations) Count(k LotKey) int { return len(a.notes[k]) }

// All returns every note sorted by position then key.
func (a *Annotations) All() []Annotation {
	var all []Annotation
	for k, notes := range a.notes {
		for _, key := range slices.Sorted(maps.Keys(notes)) {
			all = append(all, Annotation{SecurityID: k.SecurityID, Lot: k.Lot, Key: key, Value: notes[key]})
		}
	}
	slices.SortStableFunc(all, func(x, y Annotation) int {
		return comparePositions(Position{SecurityID: x.SecurityID, Lot: x.Lot}, Position{SecurityID: y.SecurityID, Lot: y.Lot})
	})
	return all
}
