package agg

import "math"

// Welford is Welford's online mean/variance algorithm, ported from
// original_source/src/moonblade/agg/aggregators/welford.rs.
type Welford struct {
	count int64
	mean  float64
	m2    float64
}

// NewWelford constructs an empty Welford.
func NewWelford() *Welford {
	return &Welford{}
}

// Add records one observation.
func (w *Welford) Add(value float64) {
	w.count++
	delta := value - w.mean
	w.mean += delta / float64(w.count)
	delta2 := value - w.mean
	w.m2 += delta * delta2
}

// Mean returns the running mean, or (0, false) if nothing was added.
func (w *Welford) Mean() (float64, bool) {
	if w.count == 0 {
		return 0, false
	}
	return w.mean, true
}

// Variance returns the population variance (divisor n).
func (w *Welford) Variance() (float64, bool) {
	if w.count < 1 {
		return 0, false
	}
	return w.m2 / float64(w.count), true
}

// SampleVariance returns the sample variance (divisor n-1).
func (w *Welford) SampleVariance() (float64, bool) {
	if w.count < 2 {
		return 0, false
	}
	return w.m2 / float64(w.count-1), true
}

// Stdev returns the population standard deviation.
func (w *Welford) Stdev() (float64, bool) {
	v, ok := w.Variance()
	if !ok {
		return 0, false
	}
	return math.Sqrt(v), true
}

// SampleStdev returns the sample standard deviation.
func (w *Welford) SampleStdev() (float64, bool) {
	v, ok := w.SampleVariance()
	if !ok {
		return 0, false
	}
	return math.Sqrt(v), true
}

// Count returns the number of observations seen.
func (w *Welford) Count() int64 { return w.count }

// Merge combines other into w via Chan's parallel variance formula.
func (w *Welford) Merge(other *Welford) {
	if other.count == 0 {
		return
	}
	if w.count == 0 {
		*w = *other
		return
	}

	count1 := float64(w.count)
	count2 := float64(other.count)
	total := count1 + count2

	meanDiffSquared := (w.mean - other.mean) * (w.mean - other.mean)
	newMean := ((count1 * w.mean) + (count2 * other.mean)) / total

	w.m2 = w.m2 + other.m2 + (count1*count2*meanDiffSquared)/total
	w.mean = newMean
	w.count += other.count
}

// Clear resets w to empty.
func (w *Welford) Clear() {
	w.count = 0
	w.mean = 0
	w.m2 = 0
}

// CovarianceWelford extends Welford with a second stream and a
// cross-product accumulator, ported from the same source file's
// CovarianceWelford.
type CovarianceWelford struct {
	count  int64
	meanX  float64
	meanY  float64
	m2X    float64
	m2Y    float64
	c      float64
}

// NewCovarianceWelford constructs an empty CovarianceWelford.
func NewCovarianceWelford() *CovarianceWelford {
	return &CovarianceWelford{}
}

// Add records one (x, y) observation pair.
func (w *CovarianceWelford) Add(x, y float64) {
	w.count++

	deltaX := x - w.meanX
	deltaY := y - w.meanY

	w.meanX += deltaX / float64(w.count)
	w.meanY += deltaY / float64(w.count)

	delta2X := x - w.meanX
	delta2Y := y - w.meanY

	w.m2X += deltaX * delta2X
	w.m2Y += deltaY * delta2Y

	w.c += deltaX * (y - w.meanY)
}

// Covariance returns the population covariance.
func (w *CovarianceWelford) Covariance() (float64, bool) {
	if w.count < 1 {
		return 0, false
	}
	return w.c / float64(w.count), true
}

// SampleCovariance returns the sample covariance.
func (w *CovarianceWelford) SampleCovariance() (float64, bool) {
	if w.count < 2 {
		return 0, false
	}
	return w.c / float64(w.count-1), true
}

// Correlation returns Pearson's r, with an exact-1.0 shortcut when both
// streams are identical by accumulated state.
func (w *CovarianceWelford) Correlation() (float64, bool) {
	if w.count < 1 {
		return 0, false
	}
	if w.m2X == w.m2Y && w.meanX == w.meanY && w.m2X == w.c {
		return 1.0, true
	}

	count := float64(w.count)
	stdevX := math.Sqrt(w.m2X / count)
	stdevY := math.Sqrt(w.m2Y / count)
	covariance := w.c / count

	return covariance / (stdevX * stdevY), true
}

// Count returns the number of observation pairs seen.
func (w *CovarianceWelford) Count() int64 { return w.count }

// Merge combines other into w, grounded on the Stack Overflow formula
// cited in the original's NOTE comment for merging covariance states.
func (w *CovarianceWelford) Merge(other *CovarianceWelford) {
	if other.count == 0 {
		return
	}
	if w.count == 0 {
		*w = *other
		return
	}

	count1 := float64(w.count)
	count2 := float64(other.count)
	total := count1 + count2

	meanDiffSquaredX := (w.meanX - other.meanX) * (w.meanX - other.meanX)
	newMeanX := ((count1 * w.meanX) + (count2 * other.meanX)) / total
	w.m2X = w.m2X + other.m2X + (count1*count2*meanDiffSquaredX)/total

	meanDiffSquaredY := (w.meanY - other.meanY) * (w.meanY - other.meanY)
	newMeanY := ((count1 * w.meanY) + (count2 * other.meanY)) / total
	w.m2Y = w.m2Y + other.m2Y + (count1*count2*meanDiffSquaredY)/total

	w.c = w.c +
		count1*(w.meanX-newMeanX)*(w.meanY-newMeanY) +
		other.c +
		count2*(other.meanX-newMeanX)*(other.meanY-newMeanY)

	w.meanX = newMeanX
	w.meanY = newMeanY
	w.count += other.count
}

// Clear resets w to empty.
func (w *CovarianceWelford) Clear() {
	*w = CovarianceWelford{}
}
