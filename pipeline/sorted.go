package pipeline

import (
	"github.com/tabbyio/tabby/moonblade"
	"github.com/tabbyio/tabby/moonblade/agg"
	"github.com/tabbyio/tabby/record"
)

// SortedAggregator performs the sorted-streaming variant of groupby
// aggregation described in spec.md §4.5: when the input is already
// sorted by the group key, at most one group needs to be held in
// memory at a time, flushed the moment the key changes instead of
// accumulating a full group table the way agg.Program does. Rather
// than re-deriving agg.Program's slot-planning and aggregator
// dedup logic, this builds a fresh single-group agg.Program per run
// of the key, the same "one Program per chunk, then combine" shape
// agg/shard.go already uses for parallel sharding, generalized here
// to a chunk of size "one streak of equal keys" instead of "one
// static row-range partition."
type SortedAggregator struct {
	header   *record.Header
	groupKey []*moonblade.ConcreteExpr
	specs    []agg.Spec

	current    *agg.Program
	currentKey string
	hasCurrent bool
}

// NewSortedAggregator builds a SortedAggregator from the same
// arguments agg.NewProgram takes.
func NewSortedAggregator(header *record.Header, groupKey []*moonblade.ConcreteExpr, specs []agg.Spec) *SortedAggregator {
	return &SortedAggregator{header: header, groupKey: groupKey, specs: specs}
}

func (s *SortedAggregator) keyString(ctx *moonblade.EvalContext) (string, error) {
	if len(s.groupKey) == 0 {
		return "", nil
	}
	var key string
	for i, expr := range s.groupKey {
		v, err := expr.Eval(ctx)
		if err != nil {
			return "", err
		}
		if i > 0 {
			key += "\x1f"
		}
		key += v.Serialize()
	}
	return key, nil
}

// Process feeds one record, assumed to arrive in group-key order. If
// the record's key differs from the currently open group's, the open
// group is finalized and its readout row returned before the new
// group starts; otherwise the returned slice is empty. Callers
// driving a Runner-style loop append whatever this returns to the
// output as soon as it's available, rather than waiting for Finish.
func (s *SortedAggregator) Process(ctx *moonblade.EvalContext) ([]agg.Row, error) {
	key, err := s.keyString(ctx)
	if err != nil {
		return nil, err
	}

	var flushed []agg.Row
	if s.hasCurrent && key != s.currentKey {
		rows, err := s.current.Readout()
		if err != nil {
			return nil, err
		}
		flushed = rows
		s.hasCurrent = false
		s.current = nil
	}

	if !s.hasCurrent {
		prog, err := agg.NewProgram(s.header, s.groupKey, s.specs)
		if err != nil {
			return nil, err
		}
		s.current = prog
		s.currentKey = key
		s.hasCurrent = true
	}

	if err := s.current.Process(ctx); err != nil {
		return nil, err
	}
	return flushed, nil
}

// Finish flushes the last open group, if any. Call once after the
// last Process, whether or not the input had a trailing key change.
func (s *SortedAggregator) Finish() ([]agg.Row, error) {
	if !s.hasCurrent {
		return nil, nil
	}
	rows, err := s.current.Readout()
	s.hasCurrent = false
	s.current = nil
	return rows, err
}
