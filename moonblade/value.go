// Package moonblade implements the expression language: lexing, Pratt
// parsing, concretisation against a header schema, and tree-walking
// evaluation producing a dynamic value.
package moonblade

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

// Kind tags a Value's active variant, in the tagged-union idiom the
// teacher uses for its own bytecode (input/vm/compiler.go's op + args).
type Kind uint8

const (
	KindNull Kind = iota
	KindBytes
	KindString
	KindInteger
	KindFloat
	KindBool
	KindTime
	KindList
	KindMap
)

// Value is the dynamic value every expression evaluates to: a tagged
// union of null, bytes, string, integer, float, boolean, time, list, and
// string-keyed map, per spec.md §3.
type Value struct {
	Kind  Kind
	Bytes []byte
	Str   string
	Int   int64
	Float float64
	Bool  bool
	Time  time.Time
	List  []Value
	Map   map[string]Value
}

func Null() Value                { return Value{Kind: KindNull} }
func FromBytes(b []byte) Value   { return Value{Kind: KindBytes, Bytes: b} }
func FromString(s string) Value  { return Value{Kind: KindString, Str: s} }
func FromInt(i int64) Value      { return Value{Kind: KindInteger, Int: i} }
func FromFloat(f float64) Value  { return Value{Kind: KindFloat, Float: f} }
func FromBool(b bool) Value      { return Value{Kind: KindBool, Bool: b} }
func FromTime(t time.Time) Value { return Value{Kind: KindTime, Time: t} }
func FromList(l []Value) Value   { return Value{Kind: KindList, List: l} }
func FromMap(m map[string]Value) Value { return Value{Kind: KindMap, Map: m} }

// IsNumeric reports whether the value is Integer or Float.
func (v Value) IsNumeric() bool {
	return v.Kind == KindInteger || v.Kind == KindFloat
}

// AsBytes returns the value's raw byte content for Bytes/String kinds.
func (v Value) AsBytes() []byte {
	switch v.Kind {
	case KindBytes:
		return v.Bytes
	case KindString:
		return []byte(v.Str)
	default:
		return []byte(v.Serialize())
	}
}

// Truthy implements spec.md §4.3's boolean coercion: empty bytes, empty
// string, zero, empty list/map are false; everything else is true.
func (v Value) Truthy() bool {
	switch v.Kind {
	case KindNull:
		return false
	case KindBytes:
		return len(v.Bytes) > 0
	case KindString:
		return len(v.Str) > 0
	case KindInteger:
		return v.Int != 0
	case KindFloat:
		return v.Float != 0
	case KindBool:
		return v.Bool
	case KindList:
		return len(v.List) > 0
	case KindMap:
		return len(v.Map) > 0
	default:
		return true
	}
}

// ToNumber coerces the value to a Number, parsing bytes/strings as
// integer first, then float, per spec.md §4.3's numeric coercion rule.
func (v Value) ToNumber() (Number, error) {
	switch v.Kind {
	case KindInteger:
		return Number{isFloat: false, i: v.Int}, nil
	case KindFloat:
		return Number{isFloat: true, f: v.Float}, nil
	case KindBool:
		if v.Bool {
			return Number{i: 1}, nil
		}
		return Number{i: 0}, nil
	case KindBytes:
		return parseNumber(string(v.Bytes))
	case KindString:
		return parseNumber(v.Str)
	default:
		return Number{}, errors.Errorf("cannot coerce %s to a number", v.Kind)
	}
}

func parseNumber(s string) (Number, error) {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Number{isFloat: false, i: i}, nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return Number{isFloat: true, f: f}, nil
	}
	return Number{}, errors.Errorf("cannot parse %q as a number", s)
}

// Serialize renders the value back to bytes for an output cell, per
// spec.md §4.3: integers without a decimal point, floats via the
// shortest round-trip representation, lists/maps as JSON.
func (v Value) Serialize() string {
	switch v.Kind {
	case KindNull:
		return ""
	case KindBytes:
		return string(v.Bytes)
	case KindString:
		return v.Str
	case KindInteger:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindTime:
		return v.Time.Format(time.RFC3339)
	case KindList:
		b, _ := json.Marshal(serializableList(v.List))
		return string(b)
	case KindMap:
		b, _ := json.Marshal(serializableMap(v.Map))
		return string(b)
	default:
		return ""
	}
}

func serializableList(vs []Value) []interface{} {
	out := make([]interface{}, len(vs))
	for i, v := range vs {
		out[i] = v.jsonValue()
	}
	return out
}

func serializableMap(m map[string]Value) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v.jsonValue()
	}
	return out
}

func (v Value) jsonValue() interface{} {
	switch v.Kind {
	case KindNull:
		return nil
	case KindInteger:
		return v.Int
	case KindFloat:
		return v.Float
	case KindBool:
		return v.Bool
	case KindList:
		return serializableList(v.List)
	case KindMap:
		return serializableMap(v.Map)
	default:
		return v.Serialize()
	}
}

// Equal implements value-level equality across numeric types (1 == 1.0),
// with NaN-equality normalized to true (NaN == NaN), resolving spec.md
// §9's open question: equality treats NaN as reflexively equal to itself
// (consistent with the rest of the toolkit using DynamicValue as a hash
// and group key, where NaN must compare equal to itself or every
// NaN-valued group key would silently fragment); ordering operators keep
// strict IEEE-754 semantics (NaN compares false against everything,
// including itself) since ordering is a separate, intentionally stricter
// concern from equality.
func (v Value) Equal(other Value) bool {
	if v.IsNumeric() && other.IsNumeric() {
		a, _ := v.ToNumber()
		b, _ := other.ToNumber()
		if a.isFloat && math.IsNaN(a.f) && b.isFloat && math.IsNaN(b.f) {
			return true
		}
		return a.Float() == b.Float()
	}
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case KindNull:
		return true
	case KindBytes:
		return string(v.Bytes) == string(other.Bytes)
	case KindString:
		return v.Str == other.Str
	case KindBool:
		return v.Bool == other.Bool
	case KindTime:
		return v.Time.Equal(other.Time)
	case KindList:
		if len(v.List) != len(other.List) {
			return false
		}
		for i := range v.List {
			if !v.List[i].Equal(other.List[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(v.Map) != len(other.Map) {
			return false
		}
		for k, a := range v.Map {
			b, ok := other.Map[k]
			if !ok || !a.Equal(b) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBytes:
		return "bytes"
	case KindString:
		return "string"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindTime:
		return "time"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}
