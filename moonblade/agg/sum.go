package agg

import "github.com/tabbyio/tabby/moonblade"

// Sum is a running dynamic-number total, grounded on xan/agg.rs's Sum
// (simplified: no Kahan-Babushka compensation, matching the original's
// own TODO-left-unimplemented state).
type Sum struct {
	current moonblade.Number
}

// NewSum constructs a Sum starting at integer zero.
func NewSum() *Sum {
	return &Sum{current: moonblade.IntNumber(0)}
}

// Add folds value into the running total. Integer stays Integer until a
// Float operand is added.
func (s *Sum) Add(value moonblade.Number) {
	s.current = s.current.Add(value)
}

// Total returns the current running total.
func (s *Sum) Total() moonblade.Number { return s.current }

// Merge folds other's total into s.
func (s *Sum) Merge(other *Sum) {
	s.current = s.current.Add(other.current)
}

// Clear resets s to integer zero.
func (s *Sum) Clear() {
	s.current = moonblade.IntNumber(0)
}
