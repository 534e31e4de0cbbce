// Package agg implements the aggregation engine: single-value
// aggregators, the group-by program, a windowed variant, and a
// shard/merge helper for parallel reduction.
package agg

import "fmt"

// Count tracks truthy and falsey occurrences, grounded on
// original_source/src/moonblade/agg/aggregators/count.rs.
type Count struct {
	truthy int64
	falsey int64
}

// NewCount constructs an empty Count.
func NewCount() *Count {
	return &Count{}
}

// Add records one observation.
func (c *Count) Add(truthy bool) {
	if truthy {
		c.truthy++
	} else {
		c.falsey++
	}
}

// AddTruthy records one truthy observation directly.
func (c *Count) AddTruthy() { c.truthy++ }

// AddFalsey records one falsey observation directly.
func (c *Count) AddFalsey() { c.falsey++ }

// Truthy returns the truthy count.
func (c *Count) Truthy() int64 { return c.truthy }

// Falsey returns the falsey count.
func (c *Count) Falsey() int64 { return c.falsey }

// Total returns truthy + falsey.
func (c *Count) Total() int64 { return c.truthy + c.falsey }

// Ratio returns truthy / total, or NaN when total is zero (mirrors the
// Rust original's unguarded float division).
func (c *Count) Ratio() float64 {
	return float64(c.truthy) / float64(c.Total())
}

// Percentage formats Ratio as a "NN%" string, truncating like the
// original's `as usize` cast.
func (c *Count) Percentage() string {
	return fmt.Sprintf("%d%%", int64(c.Ratio()*100))
}

// Merge folds other into c additively.
func (c *Count) Merge(other *Count) {
	c.truthy += other.truthy
	c.falsey += other.falsey
}

// Clear resets c to empty.
func (c *Count) Clear() {
	c.truthy = 0
	c.falsey = 0
}
