package date

// Range represents a range of dates, boundaries included. A zero boundary is
// open: Range{} contains every date.
type Range struct{ From, To Date }

// Until returns the range of every date up to d included.
func Until(d Date) Range { return Range{To: d} }

// IsZero reports whether the range is open on both ends.
func (r Range) IsZero() bool { return r.From.IsZero() && r.To.IsZero() }

// Contains return true date is included in the range (boundaries included)
func (r Range) Contains(date Date) bool {
	return (r.From.IsZero() || !date.Before(r.From)) && (r.To.IsZero() || !date.After(r.To))
}

// String formats the range as "from..to", leaving open boundaries empty.
func (r Range) String() string { return r.From.String() + ".." + r.To.String() }
