package agg

// AllAny tracks a running conjunction and disjunction, grounded on
// original_source/src/moonblade/agg/aggregators/all_any.rs.
type AllAny struct {
	all bool
	any bool
}

// NewAllAny constructs an AllAny with the identity values for AND/OR:
// all starts true, any starts false.
func NewAllAny() *AllAny {
	return &AllAny{all: true, any: false}
}

// Add folds in one observation.
func (a *AllAny) Add(value bool) {
	a.all = a.all && value
	a.any = a.any || value
}

// All returns whether every observation so far was true.
func (a *AllAny) All() bool { return a.all }

// Any returns whether at least one observation so far was true.
func (a *AllAny) Any() bool { return a.any }

// Merge folds other into a.
func (a *AllAny) Merge(other *AllAny) {
	a.all = a.all && other.all
	a.any = a.any || other.any
}

// Clear resets a to its identity state.
func (a *AllAny) Clear() {
	a.all = true
	a.any = false
}
