package containers

import "sort"

const (
	// TDigestSize is the default centroid budget, matching DIGEST_SIZE in
	// approx_quantile.rs.
	TDigestSize = 100
	// TDigestBufferSize is the pending-value buffer capacity before a flush
	// is forced, matching BUFFER_SIZE in approx_quantile.rs.
	TDigestBufferSize = 512
)

// centroid is a weighted mean, the unit of compression in a t-digest.
type centroid struct {
	mean   float64
	weight float64
}

// TDigest is an approximate quantile sketch: a bounded set of weighted
// centroids that approximate the distribution of added values, with finer
// resolution near the tails (q near 0 or 1) than near the median. Ported in
// spirit from moonblade/agg/aggregators/approx_quantile.rs (buffer values,
// flush into the digest when the buffer fills or on finalize).
type TDigest struct {
	compression int
	centroids   []centroid
	buffer      []float64
	totalWeight float64
}

// NewTDigest constructs an empty digest with the given centroid budget.
func NewTDigest(compression int) *TDigest {
	return &TDigest{compression: compression, buffer: make([]float64, 0, TDigestBufferSize)}
}

// Add buffers a value, flushing automatically once the buffer reaches
// TDigestBufferSize.
func (d *TDigest) Add(value float64) {
	d.buffer = append(d.buffer, value)
	if len(d.buffer) >= TDigestBufferSize {
		d.Flush()
	}
}

// Flush merges any buffered values into the digest's centroids.
func (d *TDigest) Flush() {
	if len(d.buffer) == 0 {
		return
	}

	points := make([]centroid, 0, len(d.centroids)+len(d.buffer))
	points = append(points, d.centroids...)
	for _, v := range d.buffer {
		points = append(points, centroid{mean: v, weight: 1})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].mean < points[j].mean })

	total := d.totalWeight
	for _, v := range d.buffer {
		_ = v
		total++
	}

	merged := make([]centroid, 0, d.compression)
	var cumulative float64
	for _, p := range points {
		if len(merged) == 0 {
			merged = append(merged, p)
			cumulative += p.weight
			continue
		}

		last := &merged[len(merged)-1]
		q := cumulative / total
		// Scale function bounding cluster size: clusters near the tails
		// (q close to 0 or 1) are kept smaller for better accuracy there.
		limit := 4 * total * q * (1 - q) / float64(d.compression)
		if limit < 1 {
			limit = 1
		}

		if last.weight+p.weight <= limit {
			newWeight := last.weight + p.weight
			last.mean = (last.mean*last.weight + p.mean*p.weight) / newWeight
			last.weight = newWeight
		} else {
			merged = append(merged, p)
		}
		cumulative += p.weight
	}

	d.centroids = merged
	d.totalWeight = total
	d.buffer = d.buffer[:0]
}

// Merge folds other into d: flushes both pending buffers, then re-clusters
// the union of both centroid sets, matching the original's
// merge_digests([self, other]).
func (d *TDigest) Merge(other *TDigest) {
	d.Flush()
	other.Flush()

	points := make([]centroid, 0, len(d.centroids)+len(other.centroids))
	points = append(points, d.centroids...)
	points = append(points, other.centroids...)
	sort.Slice(points, func(i, j int) bool { return points[i].mean < points[j].mean })

	total := d.totalWeight + other.totalWeight
	merged := make([]centroid, 0, d.compression)
	var cumulative float64
	for _, p := range points {
		if len(merged) == 0 {
			merged = append(merged, p)
			cumulative += p.weight
			continue
		}
		last := &merged[len(merged)-1]
		q := cumulative / total
		limit := 4 * total * q * (1 - q) / float64(d.compression)
		if limit < 1 {
			limit = 1
		}
		if last.weight+p.weight <= limit {
			newWeight := last.weight + p.weight
			last.mean = (last.mean*last.weight + p.mean*p.weight) / newWeight
			last.weight = newWeight
		} else {
			merged = append(merged, p)
		}
		cumulative += p.weight
	}

	d.centroids = merged
	d.totalWeight = total
}

// EstimateQuantile returns the approximate value at quantile q (0 <= q <= 1),
// finalizing any pending buffer first.
func (d *TDigest) EstimateQuantile(q float64) float64 {
	d.Flush()
	if len(d.centroids) == 0 {
		return 0
	}
	if len(d.centroids) == 1 {
		return d.centroids[0].mean
	}

	target := q * d.totalWeight
	var cumulative float64
	for i, c := range d.centroids {
		nextCumulative := cumulative + c.weight
		if target <= nextCumulative || i == len(d.centroids)-1 {
			if i == 0 {
				return c.mean
			}
			prev := d.centroids[i-1]
			// Linear interpolation between the two centroid means, weighted
			// by how far into this centroid's weight span the target falls.
			span := nextCumulative - cumulative
			if span == 0 {
				return c.mean
			}
			frac := (target - cumulative) / span
			return prev.mean + frac*(c.mean-prev.mean)
		}
		cumulative = nextCumulative
	}
	return d.centroids[len(d.centroids)-1].mean
}
