package agg

import (
	"github.com/pkg/errors"

	"github.com/tabbyio/tabby/containers"
	"github.com/tabbyio/tabby/moonblade"
	"github.com/tabbyio/tabby/record"
)

// Spec names one output column: evaluate Expr, feed it to Method's
// aggregator family, read it back out under Name.
type Spec struct {
	Name   string
	Expr   *moonblade.ConcreteExpr
	Method string
	Arg    float64 // e.g. the q in quantile(0.9)
}

// group holds the live aggregator instances for one group key. Specs
// sharing a (Method-family, Expr) pair share one Aggregator instance,
// per spec.md §9's "deduplicates aggregator instances per
// (kind-family, expression) pair" resolution — implemented by keying
// on the Spec's index within a de-duplicated plan built once in
// NewProgram, not re-derived per group.
type group struct {
	keyValues   []moonblade.Value
	aggregators []*Aggregator
}

// plannedSlot maps a Spec index to the shared-aggregator slot backing
// it. For KindCovarianceWelford, expr must evaluate to a 2-element
// list `[x, y]` (e.g. via moonblade's `[a, b]` list literal), since
// correlation/covariance need two operands per record.
type plannedSlot struct {
	kind     Kind
	expr     *moonblade.ConcreteExpr
	sharedBy []int // Spec indices reading this slot
}

// Program is the group-by aggregation engine described in spec.md
// §4.4: N aggregation specs, a group table keyed by the group-key
// expression's evaluated bytes, one aggregator tuple per group.
type Program struct {
	specs     []Spec
	groupKey  []*moonblade.ConcreteExpr
	slots     []plannedSlot
	specSlot  []int // Specs[i] reads from slots[specSlot[i]]
	groups    *containers.ClusteredInsertMap[string, *group]
	header    *record.Header
}

// NewProgram builds a Program from aggregation specs and optional
// group-key expressions (nil/empty groupKey means one global group,
// matching a plain `agg` with no `groupby`).
func NewProgram(header *record.Header, groupKey []*moonblade.ConcreteExpr, specs []Spec) (*Program, error) {
	p := &Program{
		specs:    specs,
		groupKey: groupKey,
		header:   header,
		groups:   containers.NewClusteredInsertMap[string, *group](),
	}

	// Deduplicate aggregator instances per (kind, expression pointer)
	// pair: two specs naming "variance" and "stdev" of the same
	// expression share one Welford slot; two specs naming "stdev" of different expressions
	// do not.
	type slotKey struct {
		kind Kind
		expr *moonblade.ConcreteExpr
	}
	index := make(map[slotKey]int)
	p.specSlot = make([]int, len(specs))

	for i, spec := range specs {
		kind, err := MethodKind(spec.Method)
		if err != nil {
			return nil, errors.Wrapf(err, "aggregation spec %q", spec.Name)
		}
		key := slotKey{kind: kind, expr: spec.Expr}
		if idx, ok := index[key]; ok {
			p.specSlot[i] = idx
			p.slots[idx].sharedBy = append(p.slots[idx].sharedBy, i)
			continue
		}
		idx := len(p.slots)
		p.slots = append(p.slots, plannedSlot{kind: kind, expr: spec.Expr, sharedBy: []int{i}})
		index[key] = idx
		p.specSlot[i] = idx
	}

	return p, nil
}

func (p *Program) newGroup(keyValues []moonblade.Value) *group {
	g := &group{keyValues: keyValues, aggregators: make([]*Aggregator, len(p.slots))}
	for i, slot := range p.slots {
		g.aggregators[i] = NewAggregator(slot.kind)
	}
	return g
}

// Process feeds one record into the program, evaluating the group key
// and every planned slot's expression, then folding the result into
// the group's aggregator state.
func (p *Program) Process(ctx *moonblade.EvalContext) error {
	keyValues, keyStr, err := p.evalGroupKey(ctx)
	if err != nil {
		return err
	}

	var addErr error
	p.groups.InsertOrUpdateWith(
		keyStr,
		func() *group { return p.newGroup(keyValues) },
		func(g **group) {
			addErr = p.addToGroup(*g, ctx)
		},
	)
	return addErr
}

func (p *Program) evalGroupKey(ctx *moonblade.EvalContext) ([]moonblade.Value, string, error) {
	if len(p.groupKey) == 0 {
		return nil, "", nil
	}
	values := make([]moonblade.Value, len(p.groupKey))
	var keyStr string
	for i, expr := range p.groupKey {
		v, err := expr.Eval(ctx)
		if err != nil {
			return nil, "", err
		}
		values[i] = v
		if i > 0 {
			keyStr += "\x1f"
		}
		keyStr += v.Serialize()
	}
	return values, keyStr, nil
}

func (p *Program) addToGroup(g *group, ctx *moonblade.EvalContext) error {
	for i, slot := range p.slots {
		a := g.aggregators[i]
		if a.Kind == KindCovarianceWelford {
			// Covariance slots are only reachable through specs that
			// supply both operands; the planner requires the spec's
			// Expr to already be a pair-producing expression evaluated
			// via moonblade's list literal `[x, y]`.
			v, err := slot.expr.Eval(ctx)
			if err != nil {
				return err
			}
			if v.Kind != moonblade.KindList || len(v.List) != 2 {
				return errors.Errorf("correlation/covariance aggregation expression must evaluate to a 2-element list [x, y]")
			}
			if err := a.AddPair(v.List[0], v.List[1]); err != nil {
				return err
			}
			continue
		}
		v, err := slot.expr.Eval(ctx)
		if err != nil {
			return err
		}
		if err := a.Add(v); err != nil {
			return err
		}
	}
	return nil
}

// Merge folds other's group table into p, adding groups that p hasn't
// seen and merging aggregator states for groups both programs saw.
// Both programs must have been built from the same specs (same slot
// plan), as produced by running the same NewProgram call per shard in
// shard.go.
func (p *Program) Merge(other *Program) error {
	var mergeErr error
	other.groups.ForEach(func(key string, og *group) {
		if mergeErr != nil {
			return
		}
		p.groups.InsertOrUpdateWith(
			key,
			func() *group {
				ng := p.newGroup(og.keyValues)
				for i, a := range og.aggregators {
					if err := ng.aggregators[i].Merge(a); err != nil {
						mergeErr = err
					}
				}
				return ng
			},
			func(gp **group) {
				g := *gp
				for i, a := range og.aggregators {
					if err := g.aggregators[i].Merge(a); err != nil {
						mergeErr = err
						return
					}
				}
			},
		)
	})
	return mergeErr
}

// Row is one readout row: the group key fields followed by every
// spec's readout, in Specs order.
type Row struct {
	GroupKey []moonblade.Value
	Values   []moonblade.Value
}

// Readout finalizes every aggregator and emits one Row per group, in
// the group table's current iteration order (last-touched-wins, per
// spec.md §4.4).
func (p *Program) Readout() ([]Row, error) {
	var rows []Row
	var readoutErr error
	p.groups.ForEach(func(key string, g *group) {
		if readoutErr != nil {
			return
		}
		for _, a := range g.aggregators {
			a.Finalize()
		}
		row := Row{GroupKey: g.keyValues, Values: make([]moonblade.Value, len(p.specs))}
		for i, spec := range p.specs {
			slotIdx := p.specSlot[i]
			v, err := g.aggregators[slotIdx].Read(spec.Method, spec.Arg)
			if err != nil {
				readoutErr = err
				return
			}
			row.Values[i] = v
		}
		rows = append(rows, row)
	})
	if readoutErr != nil {
		return nil, readoutErr
	}
	return rows, nil
}
