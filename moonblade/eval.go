package moonblade

import (
	"github.com/pkg/errors"

	"github.com/tabbyio/tabby/record"
)

// EvalContext is the immutable-per-compile, mutable-per-call evaluation
// context described in spec.md §4.3: header index and function table are
// fixed at compile time; Row and RecordIndex change on every call.
type EvalContext struct {
	Header      *record.Header
	Row         record.Row
	RecordIndex int64
	Bindings    map[string]Value
}

// EvaluationError wraps a failure with the expression site that raised
// it, matching spec.md's SpecifiedEvaluationError(expr_site, kind).
type EvaluationError struct {
	Site string
	Err  error
}

func (e *EvaluationError) Error() string {
	return errors.Errorf("evaluating %s: %s", e.Site, e.Err).Error()
}

func (e *EvaluationError) Unwrap() error { return e.Err }

// Eval evaluates a concretised expression against ctx.
func (c *ConcreteExpr) Eval(ctx *EvalContext) (Value, error) {
	return evalNode(c.Root, ctx)
}

func evalNode(n Node, ctx *EvalContext) (Value, error) {
	switch node := n.(type) {
	case LiteralNode:
		return node.Value, nil

	case NamedNode:
		return evalNode(node.Inner, ctx)

	case VariableNode:
		if v, ok := ctx.Bindings[node.Name]; ok {
			return v, nil
		}
		return Value{}, &EvaluationError{Site: node.Name, Err: errors.Errorf("unbound variable %q", node.Name)}

	case ColumnNode:
		return evalColumn(node, ctx)

	case UnaryOpNode:
		return evalUnary(node, ctx)

	case BinaryOpNode:
		return evalBinary(node, ctx)

	case IfNode:
		cond, err := evalNode(node.Cond, ctx)
		if err != nil {
			return Value{}, err
		}
		if cond.Truthy() {
			return evalNode(node.Then, ctx)
		}
		if node.Else != nil {
			return evalNode(node.Else, ctx)
		}
		return Null(), nil

	case LambdaNode:
		// A lambda evaluated outside of a higher-order call position has
		// no argument to bind; this only happens if a lambda is used as
		// a bare expression, which is a no-op returning null.
		return Null(), nil

	case CallNode:
		return evalCall(node, ctx)

	default:
		return Value{}, errors.New("unrecognized AST node during evaluation")
	}
}

func evalColumn(node ColumnNode, ctx *EvalContext) (Value, error) {
	if node.RefKind == AllMatching {
		out := make([]Value, 0, len(node.ResolvedIndices))
		for _, idx := range node.ResolvedIndices {
			b, ok := ctx.Row.Field(idx)
			if !ok {
				return Value{}, &EvaluationError{Site: "cols()", Err: errors.Errorf("column index %d out of bounds for record width %d", idx, ctx.Row.Len())}
			}
			out = append(out, FromBytes(b))
		}
		return FromList(out), nil
	}
	b, ok := ctx.Row.Field(node.ResolvedIndex)
	if !ok {
		return Value{}, &EvaluationError{Site: "column", Err: errors.Errorf("column index %d out of bounds for record width %d", node.ResolvedIndex, ctx.Row.Len())}
	}
	return FromBytes(b), nil
}

func evalUnary(node UnaryOpNode, ctx *EvalContext) (Value, error) {
	v, err := evalNode(node.Operand, ctx)
	if err != nil {
		return Value{}, err
	}
	switch node.Op {
	case "-":
		n, err := v.ToNumber()
		if err != nil {
			return Value{}, &EvaluationError{Site: "-", Err: err}
		}
		return n.Neg().Value(), nil
	case "!":
		return FromBool(!v.Truthy()), nil
	default:
		return Value{}, errors.Errorf("unknown unary operator %q", node.Op)
	}
}

func evalBinary(node BinaryOpNode, ctx *EvalContext) (Value, error) {
	// Short-circuit boolean operators evaluate the right side lazily.
	if node.Op == "&&" {
		left, err := evalNode(node.Left, ctx)
		if err != nil {
			return Value{}, err
		}
		if !left.Truthy() {
			return FromBool(false), nil
		}
		right, err := evalNode(node.Right, ctx)
		if err != nil {
			return Value{}, err
		}
		return FromBool(right.Truthy()), nil
	}
	if node.Op == "||" {
		left, err := evalNode(node.Left, ctx)
		if err != nil {
			return Value{}, err
		}
		if left.Truthy() {
			return FromBool(true), nil
		}
		right, err := evalNode(node.Right, ctx)
		if err != nil {
			return Value{}, err
		}
		return FromBool(right.Truthy()), nil
	}

	left, err := evalNode(node.Left, ctx)
	if err != nil {
		return Value{}, err
	}
	right, err := evalNode(node.Right, ctx)
	if err != nil {
		return Value{}, err
	}

	switch node.Op {
	case "==":
		return FromBool(left.Equal(right)), nil
	case "!=":
		return FromBool(!left.Equal(right)), nil
	case "<", "<=", ">", ">=":
		return evalComparison(node.Op, left, right)
	case "+":
		if left.Kind == KindString || left.Kind == KindBytes || right.Kind == KindString || right.Kind == KindBytes {
			if !left.IsNumeric() && !right.IsNumeric() {
				return FromString(string(left.AsBytes()) + string(right.AsBytes())), nil
			}
		}
		return evalArith(node.Op, left, right)
	case "-", "*", "/", "//", "%":
		return evalArith(node.Op, left, right)
	default:
		return Value{}, errors.Errorf("unknown binary operator %q", node.Op)
	}
}

func evalComparison(op string, left, right Value) (Value, error) {
	if left.IsNumeric() && right.IsNumeric() {
		a, _ := left.ToNumber()
		b, _ := right.ToNumber()
		if a.IsNaN() || b.IsNaN() {
			// Strict IEEE-754 semantics: any ordering comparison
			// involving NaN is false, even "NaN <= NaN".
			return FromBool(false), nil
		}
		return FromBool(compareResult(op, a.Cmp(b))), nil
	}
	cmp := compareBytes(left.AsBytes(), right.AsBytes())
	return FromBool(compareResult(op, cmp)), nil
}

func compareBytes(a, b []byte) int {
	switch {
	case string(a) < string(b):
		return -1
	case string(a) > string(b):
		return 1
	default:
		return 0
	}
}

func compareResult(op string, cmp int) bool {
	switch op {
	case "<":
		return cmp < 0
	case "<=":
		return cmp <= 0
	case ">":
		return cmp > 0
	case ">=":
		return cmp >= 0
	default:
		return false
	}
}

func evalArith(op string, left, right Value) (Value, error) {
	a, err := left.ToNumber()
	if err != nil {
		return Value{}, &EvaluationError{Site: op, Err: err}
	}
	b, err := right.ToNumber()
	if err != nil {
		return Value{}, &EvaluationError{Site: op, Err: err}
	}
	var result Number
	switch op {
	case "+":
		result = a.Add(b)
	case "-":
		result = a.Sub(b)
	case "*":
		result = a.Mul(b)
	case "/":
		result, err = a.Div(b)
	case "//":
		result, err = a.IDiv(b)
	case "%":
		result, err = a.Mod(b)
	}
	if err != nil {
		return Value{}, &EvaluationError{Site: op, Err: err}
	}
	return result.Value(), nil
}

func evalCall(node CallNode, ctx *EvalContext) (Value, error) {
	// Higher-order functions that need the unevaluated lambda body
	// (map/filter over a list) are special-cased here; every
	// other call evaluates its arguments eagerly.
	switch node.Function {
	case "map", "filter":
		return evalHigherOrder(node, ctx)
	}

	args := make([]Value, len(node.Args))
	for i, a := range node.Args {
		v, err := evalNode(a, ctx)
		if err != nil {
			return Value{}, err
		}
		args[i] = v
	}

	spec, ok := Functions[node.Function]
	if !ok {
		return Value{}, &EvaluationError{Site: node.Function, Err: errors.Errorf("unknown function %q", node.Function)}
	}
	v, err := spec.Eval(ctx, args)
	if err != nil {
		return Value{}, &EvaluationError{Site: node.Function, Err: err}
	}
	return v, nil
}

func evalHigherOrder(node CallNode, ctx *EvalContext) (Value, error) {
	if len(node.Args) != 2 {
		return Value{}, &EvaluationError{Site: node.Function, Err: errors.Errorf("%s expects exactly 2 arguments", node.Function)}
	}
	listVal, err := evalNode(node.Args[0], ctx)
	if err != nil {
		return Value{}, err
	}
	lambda, ok := node.Args[1].(LambdaNode)
	if !ok {
		return Value{}, &EvaluationError{Site: node.Function, Err: errors.Errorf("%s's second argument must be a lambda", node.Function)}
	}
	if listVal.Kind != KindList {
		return Value{}, &EvaluationError{Site: node.Function, Err: errors.Errorf("%s's first argument must be a list", node.Function)}
	}

	childBindings := make(map[string]Value, len(ctx.Bindings)+1)
	for k, v := range ctx.Bindings {
		childBindings[k] = v
	}
	childCtx := &EvalContext{Header: ctx.Header, Row: ctx.Row, RecordIndex: ctx.RecordIndex, Bindings: childBindings}

	switch node.Function {
	case "map":
		out := make([]Value, len(listVal.List))
		for i, item := range listVal.List {
			childBindings[paramName(lambda, 0)] = item
			v, err := evalNode(lambda.Body, childCtx)
			if err != nil {
				return Value{}, err
			}
			out[i] = v
		}
		return FromList(out), nil
	case "filter":
		var out []Value
		for _, item := range listVal.List {
			childBindings[paramName(lambda, 0)] = item
			v, err := evalNode(lambda.Body, childCtx)
			if err != nil {
				return Value{}, err
			}
			if v.Truthy() {
				out = append(out, item)
			}
		}
		return FromList(out), nil
	default:
		return Value{}, errors.Errorf("unknown higher-order function %q", node.Function)
	}
}

func paramName(lambda LambdaNode, i int) string {
	if i < len(lambda.Params) {
		return lambda.Params[i]
	}
	return "_"
}
