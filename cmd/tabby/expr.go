package main

import (
	"strings"

	"github.com/tabbyio/tabby/moonblade"
	"github.com/tabbyio/tabby/moonblade/agg"
	"github.com/tabbyio/tabby/record"
	"github.com/tabbyio/tabby/selection"
	"github.com/tabbyio/tabby/xanerr"
)

// concretiseExpr parses and concretises one expression-language string
// against header, the operation spec.md §6 calls out as shared by
// map/transform/filter/agg/groupby/top/sort/partition.
func concretiseExpr(src string, header *record.Header) (*moonblade.ConcreteExpr, error) {
	ast, err := moonblade.Parse(src)
	if err != nil {
		return nil, xanerr.ParseError("parsing expression %q: %s", src, err)
	}
	expr, err := moonblade.Concretise(ast, header)
	if err != nil {
		return nil, xanerr.ConcretizationError("concretising expression %q: %s", src, err)
	}
	return expr, nil
}

// resolveColumns parses a selector string (§4.2 grammar) against
// header and returns the matching indices.
func resolveColumns(selector string, header *record.Header) ([]int, error) {
	sel, err := selection.Parse(selector)
	if err != nil {
		return nil, xanerr.ParseError("parsing selector %q: %s", selector, err)
	}
	indices, err := sel.Resolve(header)
	if err != nil {
		return nil, xanerr.ConcretizationError("resolving selector %q: %s", selector, err)
	}
	return indices, nil
}

// parseGroupKey concretises a comma-separated list of column names
// into the group-key expression slice agg.NewProgram/SortedAggregator
// expect.
func parseGroupKey(spec string, header *record.Header) ([]*moonblade.ConcreteExpr, error) {
	if spec == "" {
		return nil, nil
	}
	names := strings.Split(spec, ",")
	exprs := make([]*moonblade.ConcreteExpr, len(names))
	for i, name := range names {
		expr, err := concretiseExpr(strings.TrimSpace(name), header)
		if err != nil {
			return nil, err
		}
		exprs[i] = expr
	}
	return exprs, nil
}

// parseAggSpec parses one aggregation spec such as `sum(amount)` or
// `sum(amount) as total`. It reuses moonblade's own grammar rather than
// inventing a second parser: the top level is either a bare call or a
// moonblade NamedNode (`expr as name`), and the call's first argument
// is the value expression, concretised against header; method is the
// call's function name, which is looked up directly against
// agg.MethodKind rather than moonblade's scalar function table (the
// two names never collide, since no aggregator name is registered in
// moonblade.Functions).
func parseAggSpec(specStr string, header *record.Header) (agg.Spec, error) {
	name, call, err := parseNamedCall(specStr)
	if err != nil {
		return agg.Spec{}, err
	}

	if _, err := agg.MethodKind(call.Function); err != nil {
		return agg.Spec{}, xanerr.ParseError("aggregation spec %q: %s", specStr, err)
	}

	expr, err := moonblade.Concretise(call.Args[0], header)
	if err != nil {
		return agg.Spec{}, xanerr.ConcretizationError("aggregation spec %q: %s", specStr, err)
	}

	var arg float64
	if len(call.Args) > 1 {
		if lit, ok := call.Args[1].(moonblade.LiteralNode); ok {
			if n, err := lit.Value.ToNumber(); err == nil {
				arg = n.Float()
			}
		}
	}

	if name == "" {
		name = call.Function
	}
	return agg.Spec{Name: name, Expr: expr, Method: call.Function, Arg: arg}, nil
}

// parseNamedCall parses specStr as a moonblade expression, unwraps an
// optional top-level `as name` alias, and requires the remaining node
// to be a call with at least one argument.
func parseNamedCall(specStr string) (string, moonblade.CallNode, error) {
	node, err := moonblade.Parse(specStr)
	if err != nil {
		return "", moonblade.CallNode{}, xanerr.ParseError("parsing spec %q: %s", specStr, err)
	}

	name := ""
	inner := node
	if named, ok := node.(moonblade.NamedNode); ok {
		name = named.Name
		inner = named.Inner
	}

	call, ok := inner.(moonblade.CallNode)
	if !ok || len(call.Args) == 0 {
		return "", moonblade.CallNode{}, xanerr.ParseError("spec %q must be a call such as sum(amount)", specStr)
	}
	return name, call, nil
}
