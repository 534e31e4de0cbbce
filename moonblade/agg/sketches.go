package agg

import "github.com/tabbyio/tabby/containers"

// ApproxCardinality wraps containers.HyperLogLog, grounded on
// original_source/src/moonblade/agg/aggregators/approx_cardinality.rs.
type ApproxCardinality struct {
	sketch    *containers.HyperLogLog
	finalized bool
	count     uint64
}

// NewApproxCardinality constructs an empty ApproxCardinality.
func NewApproxCardinality() *ApproxCardinality {
	return &ApproxCardinality{sketch: containers.NewHyperLogLog()}
}

// Add records one observation.
func (a *ApproxCardinality) Add(s string) {
	a.sketch.Add(s)
	a.finalized = false
}

// Finalize fixes the estimate, truncating to an integer.
func (a *ApproxCardinality) Finalize() {
	a.count = a.sketch.Estimate()
	a.finalized = true
}

// Get returns the finalized estimate. It panics if Finalize was never
// called, matching the original's `.expect("not finalized!")`.
func (a *ApproxCardinality) Get() uint64 {
	if !a.finalized {
		panic("approx cardinality: not finalized")
	}
	return a.count
}

// Merge folds other's sketch into a's.
func (a *ApproxCardinality) Merge(other *ApproxCardinality) {
	a.sketch.Merge(other.sketch)
	a.finalized = false
}

// Clear resets a to empty.
func (a *ApproxCardinality) Clear() {
	a.sketch = containers.NewHyperLogLog()
	a.finalized = false
	a.count = 0
}

// ApproxQuantiles wraps containers.TDigest, grounded on
// original_source/src/moonblade/agg/aggregators/approx_quantile.rs. The
// digest already buffers internally (containers.TDigestBufferSize), so
// add/finalize here simply forward to it; Finalize flushes any pending
// buffer.
type ApproxQuantiles struct {
	digest *containers.TDigest
}

// NewApproxQuantiles constructs an empty ApproxQuantiles using the
// digest size and buffer size specified in spec.md §4.4.
func NewApproxQuantiles() *ApproxQuantiles {
	return &ApproxQuantiles{digest: containers.NewTDigest(containers.TDigestSize)}
}

// Add buffers one observation, auto-flushing once the pending buffer
// fills.
func (a *ApproxQuantiles) Add(value float64) {
	a.digest.Add(value)
}

// Finalize flushes any pending buffer into the digest.
func (a *ApproxQuantiles) Finalize() {
	a.digest.Flush()
}

// Get returns the estimated q-th quantile (q in [0, 1]).
func (a *ApproxQuantiles) Get(q float64) float64 {
	return a.digest.EstimateQuantile(q)
}

// Merge folds other's digest into a's.
func (a *ApproxQuantiles) Merge(other *ApproxQuantiles) {
	a.digest.Merge(other.digest)
}

// Clear resets a to empty.
func (a *ApproxQuantiles) Clear() {
	a.digest = containers.NewTDigest(containers.TDigestSize)
}
