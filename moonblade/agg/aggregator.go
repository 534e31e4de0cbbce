package agg

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/tabbyio/tabby/moonblade"
	"github.com/tabbyio/tabby/xanerr"
)

// Kind names the underlying state family backing an Aggregator,
// matching spec.md §9's "tagged-union dispatch via a Kind enum switch
// in agg.Aggregator" resolution of the Open Question over a trait
// object per aggregator.
type Kind int

const (
	KindCount Kind = iota
	KindSum
	// KindMean composes Sum and Count into one state, matching spec.md
	// §3's "mean = sum+count" compound-aggregator description (ported
	// from xan/agg.rs's Aggregator, which backs both "sum" and "mean"
	// with the same Sum field).
	KindMean
	KindWelford
	KindCovarianceWelford
	KindApproxCardinality
	KindApproxQuantiles
	KindFrequencies
	KindAllAny
	KindTypes
	KindExtent
	KindValues
)

// AggregatorError wraps a xanerr.KindAggregator failure with the
// method name that triggered it (unknown method, read before any Add,
// wrong arity of read argument), per spec.md §7's AggregatorError
// family. Unwrap recovers the underlying *xanerr.Error so xanerr.Is
// still classifies it correctly once pkg/errors adds context on top.
type AggregatorError struct {
	Method string
	Err    error
}

func (e *AggregatorError) Error() string {
	return errors.Errorf("aggregator %q: %s", e.Method, e.Err).Error()
}

func (e *AggregatorError) Unwrap() error { return e.Err }

func newAggregatorError(method, format string, args ...interface{}) *AggregatorError {
	return &AggregatorError{Method: method, Err: xanerr.AggregatorError(format, args...)}
}

// Aggregator is a single mutable state machine backing one or more
// named read queries, per spec.md §3's "Compound aggregators ...
// expose multiple read queries against one state." Exactly one of the
// state pointers below is non-nil, selected by Kind.
type Aggregator struct {
	Kind Kind

	count       *Count
	sum         *Sum
	meanCount   int64
	welford     *Welford
	covariance  *CovarianceWelford
	cardinality *ApproxCardinality
	quantiles   *ApproxQuantiles
	frequencies *Frequencies
	allAny      *AllAny
	types       *Types
	extent      *Extent
	values      *Values
}

// MethodKind maps a read-query method name to the state family that
// backs it. Unknown methods return an error so the group/window
// program can reject an aggregation spec at concretisation time rather
// than at first record.
func MethodKind(method string) (Kind, error) {
	switch method {
	case "count", "count_truthy", "count_falsey", "ratio", "percentage":
		return KindCount, nil
	case "sum":
		return KindSum, nil
	case "mean":
		return KindMean, nil
	case "variance", "stdev", "sample_variance", "sample_stdev":
		return KindWelford, nil
	case "covariance", "sample_covariance", "correlation":
		return KindCovarianceWelford, nil
	case "cardinality":
		return KindApproxCardinality, nil
	case "quantile", "median":
		return KindApproxQuantiles, nil
	case "mode", "modes", "most_common", "frequencies_cardinality", "frequencies_join":
		return KindFrequencies, nil
	case "all", "any":
		return KindAllAny, nil
	case "most_likely_type", "sorted_types":
		return KindTypes, nil
	case "earliest", "latest", "diff_seconds", "diff_hours", "diff_days", "diff_years":
		return KindExtent, nil
	case "values", "values_join":
		return KindValues, nil
	default:
		return 0, newAggregatorError(method, "unknown aggregation method")
	}
}

// NewAggregator allocates the state for kind.
func NewAggregator(kind Kind) *Aggregator {
	a := &Aggregator{Kind: kind}
	switch kind {
	case KindCount:
		a.count = NewCount()
	case KindSum:
		a.sum = NewSum()
	case KindMean:
		a.sum = NewSum()
	case KindWelford:
		a.welford = NewWelford()
	case KindCovarianceWelford:
		a.covariance = NewCovarianceWelford()
	case KindApproxCardinality:
		a.cardinality = NewApproxCardinality()
	case KindApproxQuantiles:
		a.quantiles = NewApproxQuantiles()
	case KindFrequencies:
		a.frequencies = NewFrequencies()
	case KindAllAny:
		a.allAny = NewAllAny()
	case KindTypes:
		a.types = NewTypes()
	case KindExtent:
		a.extent = NewExtent()
	case KindValues:
		a.values = NewValues()
	}
	return a
}

// Add folds one evaluated value into the aggregator's state. For
// KindCovarianceWelford, use AddPair instead.
func (a *Aggregator) Add(value moonblade.Value) error {
	switch a.Kind {
	case KindCount:
		a.count.Add(value.Truthy())
	case KindSum:
		n, err := value.ToNumber()
		if err != nil {
			return err
		}
		a.sum.Add(n)
	case KindMean:
		n, err := value.ToNumber()
		if err != nil {
			return err
		}
		a.sum.Add(n)
		a.meanCount++
	case KindWelford:
		n, err := value.ToNumber()
		if err != nil {
			return err
		}
		a.welford.Add(n.Float())
	case KindApproxCardinality:
		a.cardinality.Add(string(value.AsBytes()))
	case KindApproxQuantiles:
		n, err := value.ToNumber()
		if err != nil {
			return err
		}
		a.quantiles.Add(n.Float())
	case KindFrequencies:
		a.frequencies.Add(string(value.AsBytes()))
	case KindAllAny:
		a.allAny.Add(value.Truthy())
	case KindTypes:
		a.types.set(classifyType(value))
	case KindExtent:
		t, ok := parseExtentTime(value)
		if ok {
			a.extent.Add(t)
		}
	case KindValues:
		a.values.Add(string(value.AsBytes()))
	case KindCovarianceWelford:
		return xanerr.AggregatorError("covariance aggregator requires two values: use AddPair")
	}
	return nil
}

// AddPair folds one (x, y) observation into a KindCovarianceWelford
// aggregator.
func (a *Aggregator) AddPair(x, y moonblade.Value) error {
	if a.Kind != KindCovarianceWelford {
		return xanerr.AggregatorError("AddPair is only valid for a covariance aggregator")
	}
	xn, err := x.ToNumber()
	if err != nil {
		return err
	}
	yn, err := y.ToNumber()
	if err != nil {
		return err
	}
	a.covariance.Add(xn.Float(), yn.Float())
	return nil
}

// Merge folds other's state into a. Both must share the same Kind.
func (a *Aggregator) Merge(other *Aggregator) error {
	if a.Kind != other.Kind {
		return xanerr.AggregatorError("cannot merge aggregators of different kinds")
	}
	switch a.Kind {
	case KindCount:
		a.count.Merge(other.count)
	case KindSum, KindMean:
		a.sum.Merge(other.sum)
		a.meanCount += other.meanCount
	case KindWelford:
		a.welford.Merge(other.welford)
	case KindCovarianceWelford:
		a.covariance.Merge(other.covariance)
	case KindApproxCardinality:
		a.cardinality.Merge(other.cardinality)
	case KindApproxQuantiles:
		a.quantiles.Merge(other.quantiles)
	case KindFrequencies:
		a.frequencies.Merge(other.frequencies)
	case KindAllAny:
		a.allAny.Merge(other.allAny)
	case KindTypes:
		a.types.Merge(other.types)
	case KindExtent:
		a.extent.Merge(other.extent)
	case KindValues:
		a.values.Merge(other.values)
	}
	return nil
}

// Finalize fixes any state that needs an explicit flush before Read
// can be called (ApproxCardinality, ApproxQuantiles).
func (a *Aggregator) Finalize() {
	switch a.Kind {
	case KindApproxCardinality:
		a.cardinality.Finalize()
	case KindApproxQuantiles:
		a.quantiles.Finalize()
	}
}

// Read answers one named query against the aggregator's state. arg is
// used by parameterized queries (quantile's q).
func (a *Aggregator) Read(method string, arg float64) (moonblade.Value, error) {
	switch method {
	case "count":
		return moonblade.FromInt(a.count.Total()), nil
	case "count_truthy":
		return moonblade.FromInt(a.count.Truthy()), nil
	case "count_falsey":
		return moonblade.FromInt(a.count.Falsey()), nil
	case "ratio":
		return moonblade.FromFloat(a.count.Ratio()), nil
	case "percentage":
		return moonblade.FromString(a.count.Percentage()), nil
	case "sum":
		return a.sum.Total().Value(), nil
	case "mean":
		if a.meanCount == 0 {
			return moonblade.Null(), nil
		}
		return moonblade.FromFloat(a.sum.Total().Float() / float64(a.meanCount)), nil
	case "variance":
		return floatOrNull(a.welford.Variance())
	case "sample_variance":
		return floatOrNull(a.welford.SampleVariance())
	case "stdev":
		return floatOrNull(a.welford.Stdev())
	case "sample_stdev":
		return floatOrNull(a.welford.SampleStdev())
	case "covariance":
		return floatOrNull(a.covariance.Covariance())
	case "sample_covariance":
		return floatOrNull(a.covariance.SampleCovariance())
	case "correlation":
		return floatOrNull(a.covariance.Correlation())
	case "cardinality":
		return moonblade.FromInt(int64(a.cardinality.Get())), nil
	case "quantile":
		return moonblade.FromFloat(a.quantiles.Get(arg)), nil
	case "median":
		return moonblade.FromFloat(a.quantiles.Get(0.5)), nil
	case "mode":
		m, ok := a.frequencies.Mode()
		if !ok {
			return moonblade.Null(), nil
		}
		return moonblade.FromString(m), nil
	case "modes":
		modes := a.frequencies.Modes()
		out := make([]moonblade.Value, len(modes))
		for i, m := range modes {
			out[i] = moonblade.FromString(m)
		}
		return moonblade.FromList(out), nil
	case "most_common":
		items := a.frequencies.MostCommon(int(arg))
		out := make([]moonblade.Value, len(items))
		for i, it := range items {
			out[i] = moonblade.FromString(it.Value)
		}
		return moonblade.FromList(out), nil
	case "frequencies_cardinality":
		return moonblade.FromInt(int64(a.frequencies.Cardinality())), nil
	case "frequencies_join":
		return moonblade.FromString(a.frequencies.Join(",")), nil
	case "all":
		return moonblade.FromBool(a.allAny.All()), nil
	case "any":
		return moonblade.FromBool(a.allAny.Any()), nil
	case "most_likely_type":
		t, ok := a.types.MostLikelyType()
		if !ok {
			return moonblade.Null(), nil
		}
		return moonblade.FromString(t), nil
	case "sorted_types":
		types := a.types.SortedTypes()
		out := make([]moonblade.Value, len(types))
		for i, t := range types {
			out[i] = moonblade.FromString(t)
		}
		return moonblade.FromList(out), nil
	case "earliest":
		return timeOrNull(a.extent.Earliest())
	case "latest":
		return timeOrNull(a.extent.Latest())
	case "diff_seconds":
		return intOrNull(a.extent.DiffSeconds())
	case "diff_hours":
		return intOrNull(a.extent.DiffHours())
	case "diff_days":
		return intOrNull(a.extent.DiffDays())
	case "diff_years":
		return intOrNull(a.extent.DiffYears())
	case "values":
		all := a.values.All()
		out := make([]moonblade.Value, len(all))
		for i, v := range all {
			out[i] = moonblade.FromString(v)
		}
		return moonblade.FromList(out), nil
	case "values_join":
		return moonblade.FromString(a.values.Join(",")), nil
	default:
		return moonblade.Value{}, newAggregatorError(method, "unknown aggregation method")
	}
}

func floatOrNull(v float64, ok bool) (moonblade.Value, error) {
	if !ok {
		return moonblade.Null(), nil
	}
	return moonblade.FromFloat(v), nil
}

func intOrNull(v int64, ok bool) (moonblade.Value, error) {
	if !ok {
		return moonblade.Null(), nil
	}
	return moonblade.FromInt(v), nil
}

func timeOrNull(t time.Time, ok bool) (moonblade.Value, error) {
	if !ok {
		return moonblade.Null(), nil
	}
	return moonblade.FromString(t.Format(time.RFC3339)), nil
}

// classifyType buckets a raw cell value into one of the Types labels,
// grounded on the empty/int/float/url/date/string ordering implied by
// types.rs's most_likely_type priority.
func classifyType(v moonblade.Value) uint8 {
	b := v.AsBytes()
	if len(b) == 0 {
		return typeEmpty
	}
	s := string(b)
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		return typeInt
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return typeFloat
	}
	if looksLikeURL(s) {
		return typeURL
	}
	if _, ok := parseKnownDateLayout(s); ok {
		return typeDate
	}
	return typeString
}

func looksLikeURL(s string) bool {
	if !strings.Contains(s, "://") {
		return false
	}
	u, err := url.Parse(s)
	return err == nil && u.Scheme != "" && u.Host != ""
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006/01/02",
}

func parseKnownDateLayout(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseExtentTime(v moonblade.Value) (time.Time, bool) {
	return parseKnownDateLayout(string(v.AsBytes()))
}
