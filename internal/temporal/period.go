// Package temporal implements the append-only bi-temporal versioning
// protocol shared by every versioned entity table: half-open time periods,
// structured content fingerprints, and the generic append-with-change-
// detection chain.
package temporal

import "time"

// Period is a half-open interval [Start, End). A zero End means the period
// is open-ended ("..infinity").
type Period struct {
	Start time.Time
	End   time.Time
}

// OpenFrom returns an open-ended period starting at t.
func OpenFrom(t time.Time) Period {
	return Period{Start: t}
}

// Open reports whether the period has no upper bound.
func (p Period) Open() bool {
	return p.End.IsZero()
}

// ClosedAt returns a copy of the period with its upper bound set to t. The
// lower bound is untouched.
func (p Period) ClosedAt(t time.Time) Period {
	return Period{Start: p.Start, End: t}
}

// Contains reports whether t falls inside the period.
func (p Period) Contains(t time.Time) bool {
	if t.Before(p.Start) {
		return false
	}
	return p.Open() || t.Before(p.End)
}
