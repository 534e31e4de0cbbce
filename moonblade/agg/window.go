package agg

import (
	"container/ring"

	"github.com/pkg/errors"

	"github.com/tabbyio/tabby/moonblade"
	"github.com/tabbyio/tabby/record"
)

// reversible is implemented by aggregator kinds whose Add can be
// undone without recomputing the whole window, per spec.md §4.4:
// "applies add/remove updates to those aggregators that support
// reversible updates." Sum and Count are reversible (subtraction
// exactly undoes addition); Welford/CovarianceWelford/HLL/t-digest/
// Frequencies/Types/Extent are not, since their state isn't a simple
// running total.
func (k Kind) reversible() bool {
	switch k {
	case KindSum, KindMean, KindCount, KindValues:
		return true
	default:
		return false
	}
}

// Remove undoes one earlier Add(value) call. It is only valid for
// reversible Kinds (see Kind.reversible); calling it on any other kind
// returns an error.
func (a *Aggregator) Remove(value moonblade.Value) error {
	switch a.Kind {
	case KindCount:
		if value.Truthy() {
			a.count.truthy--
		} else {
			a.count.falsey--
		}
	case KindSum:
		n, err := value.ToNumber()
		if err != nil {
			return err
		}
		a.sum.current = a.sum.current.Sub(n)
	case KindMean:
		n, err := value.ToNumber()
		if err != nil {
			return err
		}
		a.sum.current = a.sum.current.Sub(n)
		a.meanCount--
	case KindAllAny:
		return errors.New("AllAny has no exact inverse for a single removed value; the window recomputes it instead")
	case KindValues:
		for i, v := range a.values.values {
			if v == string(value.AsBytes()) {
				a.values.values = append(a.values.values[:i], a.values.values[i+1:]...)
				break
			}
		}
	default:
		return errors.Errorf("aggregator kind %d does not support reversible removal", a.Kind)
	}
	return nil
}

// Window is a fixed-size sliding-window aggregation program over a
// single implicit group (windowed aggregation runs per spec.md §4.4
// against "ordered streams", which here means one running group, not
// a groupby-crossed-with-window combination).
type Window struct {
	size    int
	program *Program
	pending *ring.Ring
	filled  int
	header  *record.Header
	specs   []Spec

	allReversible bool
}

// NewWindow builds a Window of the given fixed size over specs, all
// evaluated against one running group.
func NewWindow(size int, header *record.Header, specs []Spec) (*Window, error) {
	if size < 1 {
		return nil, errors.New("window size must be at least 1")
	}
	p, err := NewProgram(header, nil, specs)
	if err != nil {
		return nil, err
	}
	allReversible := true
	for _, slot := range p.slots {
		if !slot.kind.reversible() {
			allReversible = false
			break
		}
	}
	return &Window{
		size:          size,
		program:       p,
		pending:       ring.New(size),
		header:        header,
		specs:         specs,
		allReversible: allReversible,
	}, nil
}

// Push adds row to the window, evicting the oldest row once the
// window is full. It returns the current readout for the window after
// the update.
func (w *Window) Push(row record.Row) ([]Row, error) {
	var evicted *record.Row
	if w.filled == w.size {
		if r, ok := w.pending.Value.(record.Row); ok {
			evicted = &r
		}
	} else {
		w.filled++
	}

	w.pending.Value = row
	w.pending = w.pending.Next()

	if !w.allReversible {
		if err := w.recompute(); err != nil {
			return nil, err
		}
		return w.program.Readout()
	}

	ctx := &moonblade.EvalContext{Header: w.header, Row: row}
	if err := w.program.Process(ctx); err != nil {
		return nil, err
	}
	if evicted != nil {
		if err := w.remove(*evicted); err != nil {
			return nil, err
		}
	}
	return w.program.Readout()
}

// remove folds evicted's earlier contribution back out of the
// program's single global group, one slot at a time.
func (w *Window) remove(row record.Row) error {
	g, ok := w.program.groups.Get("")
	if !ok {
		return nil
	}
	ctx := &moonblade.EvalContext{Header: w.header, Row: row}
	for i, slot := range w.program.slots {
		v, err := slot.expr.Eval(ctx)
		if err != nil {
			return err
		}
		if err := g.aggregators[i].Remove(v); err != nil {
			return err
		}
	}
	return nil
}

// recompute discards all aggregator state and replays every row
// currently held in the ring, used whenever the plan includes a
// non-reversible aggregator.
func (w *Window) recompute() error {
	rows := make([]record.Row, 0, w.filled)
	w.pending.Do(func(v interface{}) {
		if r, ok := v.(record.Row); ok {
			rows = append(rows, r)
		}
	})

	fresh, err := NewProgram(w.header, nil, w.specs)
	if err != nil {
		return err
	}
	for _, row := range rows {
		ctx := &moonblade.EvalContext{Header: w.header, Row: row}
		if err := fresh.Process(ctx); err != nil {
			return err
		}
	}
	w.program = fresh
	return nil
}
