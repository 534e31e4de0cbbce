package agg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func almostEqual(t *testing.T, want, got float64) {
	t.Helper()
	assert.InDelta(t, want, got, 1e-9)
}

// TestCovarianceCorrectness mirrors the Rust original's
// test_covariance_correctness, including its exact expected constants.
func TestCovarianceCorrectness(t *testing.T) {
	numbers := []float64{1, 2, 3, 4, 5}

	welford := NewWelford()
	covarianceWelford := NewCovarianceWelford()

	for _, n := range numbers {
		welford.Add(n)
		covarianceWelford.Add(n, n)
	}

	require.Equal(t, welford.Count(), covarianceWelford.Count())
	wMean, _ := welford.Mean()
	almostEqual(t, wMean, covarianceWelford.meanX)
	almostEqual(t, wMean, covarianceWelford.meanY)
	wVar, _ := welford.Variance()
	almostEqual(t, welford.m2, covarianceWelford.m2X)
	almostEqual(t, welford.m2, covarianceWelford.m2Y)
	_ = wVar

	xs := []float64{1, 4, 5, 7, 9}
	ys := []float64{0, 6, 7, 9, 3}

	cov := NewCovarianceWelford()
	for i := range xs {
		cov.Add(xs[i], ys[i])
	}

	c, ok := cov.Covariance()
	require.True(t, ok)
	almostEqual(t, 3.8, c)

	sc, ok := cov.SampleCovariance()
	require.True(t, ok)
	almostEqual(t, 4.75, sc)

	corr, ok := cov.Correlation()
	require.True(t, ok)
	almostEqual(t, 0.442939783914149, corr)

	cov.Clear()
	for _, x := range xs {
		cov.Add(x, x)
	}

	c, _ = cov.Covariance()
	almostEqual(t, 7.359999999999999, c)
	sc, _ = cov.SampleCovariance()
	almostEqual(t, 9.2, sc)
	corr, _ = cov.Correlation()
	almostEqual(t, 1.0, corr)

	welfordLeft := NewWelford()
	welfordRight := NewWelford()
	covarianceLeft := NewCovarianceWelford()
	covarianceRight := NewCovarianceWelford()

	for i := 0; i < 2; i++ {
		welfordLeft.Add(xs[i])
		covarianceLeft.Add(xs[i], ys[i])
	}
	for i := 2; i < len(xs); i++ {
		welfordRight.Add(xs[i])
		covarianceRight.Add(xs[i], ys[i])
	}

	welfordLeft.Merge(welfordRight)
	covarianceLeft.Merge(covarianceRight)

	welfordWhole := NewWelford()
	covarianceWhole := NewCovarianceWelford()
	for i := range xs {
		welfordWhole.Add(xs[i])
		covarianceWhole.Add(xs[i], ys[i])
	}

	require.Equal(t, welfordWhole.Count(), welfordLeft.Count())
	wholeMean, _ := welfordWhole.Mean()
	leftMean, _ := welfordLeft.Mean()
	almostEqual(t, wholeMean, leftMean)
	almostEqual(t, welfordWhole.m2, welfordLeft.m2)

	require.Equal(t, covarianceWhole.Count(), covarianceLeft.Count())
}

func TestWelfordSampleVsPopulation(t *testing.T) {
	w := NewWelford()
	for _, v := range []float64{2, 4, 4, 4, 5, 5, 7, 9} {
		w.Add(v)
	}
	mean, _ := w.Mean()
	almostEqual(t, 5, mean)
	variance, _ := w.Variance()
	almostEqual(t, 4, variance)
	stdev, _ := w.Stdev()
	almostEqual(t, 2, stdev)
	sampleVar, _ := w.SampleVariance()
	almostEqual(t, 32.0/7.0, sampleVar)
}

func TestWelfordEmptyReadsAreUnset(t *testing.T) {
	w := NewWelford()
	_, ok := w.Mean()
	require.False(t, ok)
	_, ok = w.Variance()
	require.False(t, ok)
	_, ok = w.SampleVariance()
	require.False(t, ok)
}

func TestWelfordMergeWithEmptyIsNoOp(t *testing.T) {
	w := NewWelford()
	w.Add(1)
	w.Add(2)
	empty := NewWelford()
	w.Merge(empty)
	mean, _ := w.Mean()
	almostEqual(t, 1.5, mean)
}

func TestCovarianceIdenticalSinglePointIsOne(t *testing.T) {
	cov := NewCovarianceWelford()
	cov.Add(5, 5)
	corr, ok := cov.Correlation()
	require.True(t, ok)
	// identical single-point streams hit the exact-1.0 shortcut, not NaN.
	almostEqual(t, 1.0, corr)
}
