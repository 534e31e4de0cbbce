package agg

import "time"

const (
	secondsPerHour = 60 * 60
	secondsPerDay  = secondsPerHour * 24
	secondsPerYear = secondsPerDay * 365
)

// Extent tracks the earliest and latest of an ordered stream of
// timestamps, grounded on
// original_source/src/moonblade/agg/aggregators/dates.rs's
// ZonedExtent (time.Time stands in for jiff::Zoned).
type Extent struct {
	has   bool
	first time.Time
	last  time.Time
}

// NewExtent constructs an empty Extent.
func NewExtent() *Extent {
	return &Extent{}
}

// Add records one observation.
func (e *Extent) Add(value time.Time) {
	if !e.has {
		e.first = value
		e.last = value
		e.has = true
		return
	}
	if value.Before(e.first) {
		e.first = value
	}
	if value.After(e.last) {
		e.last = value
	}
}

// Earliest returns the earliest value seen.
func (e *Extent) Earliest() (time.Time, bool) {
	return e.first, e.has
}

// Latest returns the latest value seen.
func (e *Extent) Latest() (time.Time, bool) {
	return e.last, e.has
}

// DiffSeconds returns the span between earliest and latest in seconds.
func (e *Extent) DiffSeconds() (int64, bool) {
	if !e.has {
		return 0, false
	}
	return int64(e.last.Sub(e.first).Seconds()), true
}

// DiffHours returns the span rounded up to whole hours.
func (e *Extent) DiffHours() (int64, bool) {
	return e.diffCeil(secondsPerHour)
}

// DiffDays returns the span rounded up to whole days.
func (e *Extent) DiffDays() (int64, bool) {
	return e.diffCeil(secondsPerDay)
}

// DiffYears returns the span rounded up to whole 365-day years.
func (e *Extent) DiffYears() (int64, bool) {
	return e.diffCeil(secondsPerYear)
}

func (e *Extent) diffCeil(unitSeconds int64) (int64, bool) {
	seconds, ok := e.DiffSeconds()
	if !ok {
		return 0, false
	}
	return ceilDiv(seconds, unitSeconds), true
}

func ceilDiv(a, b int64) int64 {
	if a%b == 0 {
		return a / b
	}
	return a/b + 1
}

// Merge folds other's extent into e.
func (e *Extent) Merge(other *Extent) {
	if !other.has {
		return
	}
	if !e.has {
		*e = *other
		return
	}
	if other.first.Before(e.first) {
		e.first = other.first
	}
	if other.last.After(e.last) {
		e.last = other.last
	}
}

// Clear resets e to empty.
func (e *Extent) Clear() {
	*e = Extent{}
}
