package moonblade

import (
	"math"

	"github.com/pkg/errors"
)

// ErrDivideByZero is returned by Div/IDiv/Mod when the divisor is zero,
// surfaced by the evaluator as a MathError.
var ErrDivideByZero = errors.New("division by zero")

// Number is the numeric sub-variant of Value: Integer(i64) | Float(f64),
// ported in spirit from
// _examples/original_source/src/moonblade/types/dynamic_number.rs.
// Integer+Integer stays Integer; any Float operand promotes the result
// to Float.
type Number struct {
	isFloat bool
	i       int64
	f       float64
}

func IntNumber(i int64) Number   { return Number{i: i} }
func FloatNumber(f float64) Number { return Number{isFloat: true, f: f} }

// IsFloat reports whether the number is carrying a float value.
func (n Number) IsFloat() bool { return n.isFloat }

// Int truncates the number to an int64.
func (n Number) Int() int64 {
	if n.isFloat {
		return int64(n.f)
	}
	return n.i
}

// Float widens the number to a float64.
func (n Number) Float() float64 {
	if n.isFloat {
		return n.f
	}
	return float64(n.i)
}

// Value converts the number back into a Value.
func (n Number) Value() Value {
	if n.isFloat {
		return FromFloat(n.f)
	}
	return FromInt(n.i)
}

func (n Number) Add(o Number) Number {
	if n.isFloat || o.isFloat {
		return FloatNumber(n.Float() + o.Float())
	}
	return IntNumber(n.i + o.i)
}

func (n Number) Sub(o Number) Number {
	if n.isFloat || o.isFloat {
		return FloatNumber(n.Float() - o.Float())
	}
	return IntNumber(n.i - o.i)
}

func (n Number) Mul(o Number) Number {
	if n.isFloat || o.isFloat {
		return FloatNumber(n.Float() * o.Float())
	}
	return IntNumber(n.i * o.i)
}

// Div always produces a Float, matching the original's "/" operator.
func (n Number) Div(o Number) (Number, error) {
	if o.Float() == 0 {
		return Number{}, ErrDivideByZero
	}
	return FloatNumber(n.Float() / o.Float()), nil
}

// IDiv is Euclidean integer division: the quotient q for which
// n - q*o is non-negative, so IDiv and Mod always satisfy
// n == q*o + Mod(n, o) (Go's native "/" truncates toward zero, so
// its quotient is adjusted whenever the remainder comes out negative).
func (n Number) IDiv(o Number) (Number, error) {
	if n.isFloat || o.isFloat {
		b := o.Float()
		if b == 0 {
			return Number{}, ErrDivideByZero
		}
		return IntNumber(int64(euclidDivFloat(n.Float(), b))), nil
	}
	if o.i == 0 {
		return Number{}, ErrDivideByZero
	}
	return IntNumber(euclidDivInt(n.i, o.i)), nil
}

// Mod is the Euclidean modulo: the result always shares the divisor's
// sign convention of being non-negative when the divisor is positive,
// matching the original's div_euclid/rem_euclid pairing.
func (n Number) Mod(o Number) (Number, error) {
	if n.isFloat || o.isFloat {
		b := o.Float()
		if b == 0 {
			return Number{}, ErrDivideByZero
		}
		return FloatNumber(euclidModFloat(n.Float(), b)), nil
	}
	if o.i == 0 {
		return Number{}, ErrDivideByZero
	}
	return IntNumber(euclidModInt(n.i, o.i)), nil
}

func (n Number) Neg() Number {
	if n.isFloat {
		return FloatNumber(-n.f)
	}
	return IntNumber(-n.i)
}

func (n Number) Abs() Number {
	if n.isFloat {
		return FloatNumber(math.Abs(n.f))
	}
	if n.i < 0 {
		return IntNumber(-n.i)
	}
	return n
}

// Cmp returns -1, 0, or 1 comparing n to o under IEEE-754 rules: any NaN
// operand makes every comparison false, so Cmp returns 0 for it, which
// the caller must tell apart from equality via IsNaN.
func (n Number) Cmp(o Number) int {
	a, b := n.Float(), o.Float()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// IsNaN reports whether the number is a NaN float.
func (n Number) IsNaN() bool {
	return n.isFloat && math.IsNaN(n.f)
}

func euclidDivInt(a, b int64) int64 {
	q := a / b
	if r := a % b; r < 0 {
		if b > 0 {
			q--
		} else {
			q++
		}
	}
	return q
}

func euclidModInt(a, b int64) int64 {
	r := a % b
	if r < 0 {
		if b < 0 {
			r -= b
		} else {
			r += b
		}
	}
	return r
}

func euclidDivFloat(a, b float64) float64 {
	q := math.Trunc(a / b)
	if r := a - q*b; r < 0 {
		if b > 0 {
			q -= 1
		} else {
			q += 1
		}
	}
	return q
}

func euclidModFloat(a, b float64) float64 {
	r := math.Mod(a, b)
	if r < 0 {
		if b < 0 {
			r -= b
		} else {
			r += b
		}
	}
	return r
}
