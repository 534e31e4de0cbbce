package moonblade

import (
	"math"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// FuncSpec describes one builtin function's arity bounds and evaluator.
// MaxArgs of -1 means unbounded (variadic).
type FuncSpec struct {
	MinArgs int
	MaxArgs int
	Eval    func(ctx *EvalContext, args []Value) (Value, error)
}

func arityOK(spec FuncSpec, n int) bool {
	if n < spec.MinArgs {
		return false
	}
	if spec.MaxArgs >= 0 && n > spec.MaxArgs {
		return false
	}
	return true
}

// defaultCollator backs the locale-aware string comparator requested by
// `cmp_locale`/`sort_locale`-style calls, grounded on the teacher's own
// use of golang.org/x/text for text processing (the teacher imports
// golang.org/x/text/unicode/norm for grapheme handling); collate is the
// same module's answer to locale-aware ordering, reused here for
// spec.md §4.3's "explicit locale-aware comparator".
var defaultCollator = collate.New(language.Und)

// Functions is the read-only, process-global function table, matching
// spec.md §5's "shared resources: the function table is read-only after
// startup."
var Functions = map[string]FuncSpec{
	"__list": {MinArgs: 0, MaxArgs: -1, Eval: func(ctx *EvalContext, args []Value) (Value, error) {
		return FromList(append([]Value(nil), args...)), nil
	}},

	"add": {MinArgs: 2, MaxArgs: -1, Eval: numericFold(func(a, b Number) (Number, error) { return a.Add(b), nil })},
	"sub": {MinArgs: 2, MaxArgs: 2, Eval: numericBinary(func(a, b Number) (Number, error) { return a.Sub(b), nil })},
	"mul": {MinArgs: 2, MaxArgs: -1, Eval: numericFold(func(a, b Number) (Number, error) { return a.Mul(b), nil })},
	"div": {MinArgs: 2, MaxArgs: 2, Eval: numericBinary(func(a, b Number) (Number, error) { return a.Div(b) })},
	"idiv": {MinArgs: 2, MaxArgs: 2, Eval: numericBinary(func(a, b Number) (Number, error) { return a.IDiv(b) })},
	"mod": {MinArgs: 2, MaxArgs: 2, Eval: numericBinary(func(a, b Number) (Number, error) { return a.Mod(b) })},
	"neg": {MinArgs: 1, MaxArgs: 1, Eval: func(ctx *EvalContext, args []Value) (Value, error) {
		n, err := args[0].ToNumber()
		if err != nil {
			return Value{}, err
		}
		return n.Neg().Value(), nil
	}},
	"abs": {MinArgs: 1, MaxArgs: 1, Eval: func(ctx *EvalContext, args []Value) (Value, error) {
		n, err := args[0].ToNumber()
		if err != nil {
			return Value{}, err
		}
		return n.Abs().Value(), nil
	}},
	"sqrt": {MinArgs: 1, MaxArgs: 1, Eval: floatUnary(math.Sqrt)},
	"ln":   {MinArgs: 1, MaxArgs: 1, Eval: floatUnary(math.Log)},
	"exp":  {MinArgs: 1, MaxArgs: 1, Eval: floatUnary(math.Exp)},
	"trim": {MinArgs: 1, MaxArgs: 1, Eval: stringUnary(strings.TrimSpace)},
	"upper": {MinArgs: 1, MaxArgs: 1, Eval: stringUnary(strings.ToUpper)},
	"lower": {MinArgs: 1, MaxArgs: 1, Eval: stringUnary(strings.ToLower)},
	"len": {MinArgs: 1, MaxArgs: 1, Eval: func(ctx *EvalContext, args []Value) (Value, error) {
		switch args[0].Kind {
		case KindList:
			return FromInt(int64(len(args[0].List))), nil
		case KindMap:
			return FromInt(int64(len(args[0].Map))), nil
		default:
			return FromInt(int64(len(args[0].AsBytes()))), nil
		}
	}},
	"concat": {MinArgs: 1, MaxArgs: -1, Eval: func(ctx *EvalContext, args []Value) (Value, error) {
		var sb strings.Builder
		for _, a := range args {
			sb.Write(a.AsBytes())
		}
		return FromString(sb.String()), nil
	}},
	"contains": {MinArgs: 2, MaxArgs: 2, Eval: func(ctx *EvalContext, args []Value) (Value, error) {
		return FromBool(strings.Contains(string(args[0].AsBytes()), string(args[1].AsBytes()))), nil
	}},
	"split": {MinArgs: 2, MaxArgs: 2, Eval: func(ctx *EvalContext, args []Value) (Value, error) {
		parts := strings.Split(string(args[0].AsBytes()), string(args[1].AsBytes()))
		out := make([]Value, len(parts))
		for i, p := range parts {
			out[i] = FromString(p)
		}
		return FromList(out), nil
	}},
	"cmp_locale": {MinArgs: 2, MaxArgs: 2, Eval: func(ctx *EvalContext, args []Value) (Value, error) {
		return FromInt(int64(defaultCollator.CompareString(string(args[0].AsBytes()), string(args[1].AsBytes())))), nil
	}},
	"coalesce": {MinArgs: 1, MaxArgs: -1, Eval: func(ctx *EvalContext, args []Value) (Value, error) {
		for _, a := range args {
			if a.Truthy() {
				return a, nil
			}
		}
		return args[len(args)-1], nil
	}},
	"not": {MinArgs: 1, MaxArgs: 1, Eval: func(ctx *EvalContext, args []Value) (Value, error) {
		return FromBool(!args[0].Truthy()), nil
	}},

	// map/filter are arity-checked here but dispatched specially in
	// evalCall, which needs the lambda body unevaluated; Eval is never
	// reached for them.
	"map":    {MinArgs: 2, MaxArgs: 2, Eval: notCallableDirectly},
	"filter": {MinArgs: 2, MaxArgs: 2, Eval: notCallableDirectly},
}

func notCallableDirectly(ctx *EvalContext, args []Value) (Value, error) {
	return Value{}, errors.New("internal error: higher-order function dispatched through the generic path")
}

func numericBinary(f func(a, b Number) (Number, error)) func(*EvalContext, []Value) (Value, error) {
	return func(ctx *EvalContext, args []Value) (Value, error) {
		a, err := args[0].ToNumber()
		if err != nil {
			return Value{}, err
		}
		b, err := args[1].ToNumber()
		if err != nil {
			return Value{}, err
		}
		res, err := f(a, b)
		if err != nil {
			return Value{}, err
		}
		return res.Value(), nil
	}
}

func numericFold(f func(a, b Number) (Number, error)) func(*EvalContext, []Value) (Value, error) {
	return func(ctx *EvalContext, args []Value) (Value, error) {
		acc, err := args[0].ToNumber()
		if err != nil {
			return Value{}, err
		}
		for _, v := range args[1:] {
			n, err := v.ToNumber()
			if err != nil {
				return Value{}, err
			}
			acc, err = f(acc, n)
			if err != nil {
				return Value{}, err
			}
		}
		return acc.Value(), nil
	}
}

func floatUnary(f func(float64) float64) func(*EvalContext, []Value) (Value, error) {
	return func(ctx *EvalContext, args []Value) (Value, error) {
		n, err := args[0].ToNumber()
		if err != nil {
			return Value{}, err
		}
		return FromFloat(f(n.Float())), nil
	}
}

func stringUnary(f func(string) string) func(*EvalContext, []Value) (Value, error) {
	return func(ctx *EvalContext, args []Value) (Value, error) {
		return FromString(f(string(args[0].AsBytes()))), nil
	}
}

// ErrUnknownFunction is returned by Concretise for a call to a name
// neither bound by Functions nor matching a lambda parameter in scope.
var ErrUnknownFunction = errors.New("unknown function")

// ApplyAliases registers each alias name in Functions as a synonym for
// its target's existing FuncSpec, letting a user config bind extra
// names (e.g. "plus" for "add") onto the read-only function table, per spec.md §9's "function aliases" config concern. An
// alias whose target isn't already a known function is rejected rather
// than silently ignored.
func ApplyAliases(aliases map[string]string) error {
	for alias, target := range aliases {
		spec, ok := Functions[target]
		if !ok {
			return errors.Errorf("cannot alias %q to unknown function %q", alias, target)
		}
		Functions[alias] = spec
	}
	return nil
}
