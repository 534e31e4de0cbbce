// Package xanerr defines the error taxonomy shared across tabby's
// packages: a fixed set of sentinel kinds that every I/O, parsing,
// concretisation, evaluation, aggregation, resource, and shutdown
// failure is reported as. Call sites wrap these with
// github.com/pkg/errors (errors.Wrap/Wrapf) to add context as the
// error propagates; errors.Cause can always recover the underlying
// xanerr value to inspect its Kind.
package xanerr

import "fmt"

// Kind distinguishes the taxonomy's error families.
type Kind int

const (
	// KindIO covers read/write failures against files, stdin/stdout,
	// or partition output handles.
	KindIO Kind = iota
	// KindParse covers malformed expressions, unknown selectors, and
	// unknown record formats.
	KindParse
	// KindConcretization covers expressions that reference an unknown
	// column or are called with the wrong arity.
	KindConcretization
	// KindEvaluation covers runtime type mismatches, division by
	// zero, missing variables, and lambda arity mismatches.
	KindEvaluation
	// KindAggregator covers merging incompatible aggregator kinds and
	// reading out an aggregator before it has been finalized.
	KindAggregator
	// KindResource covers exhaustion of a bounded resource, e.g. the
	// file-handle cache in partition mode.
	KindResource
	// KindUserAbort marks a clean shutdown requested by the user
	// (SIGINT), not a failure.
	KindUserAbort
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io error"
	case KindParse:
		return "parse error"
	case KindConcretization:
		return "concretization error"
	case KindEvaluation:
		return "evaluation error"
	case KindAggregator:
		return "aggregator error"
	case KindResource:
		return "resource error"
	case KindUserAbort:
		return "user abort"
	default:
		return "unknown error"
	}
}

// Error is the concrete type behind every xanerr sentinel. RowIndex is
// -1 when the failure isn't tied to a specific input row (e.g. a
// parse error encountered before any record is read). Expr holds the
// offending expression fragment when known, matching spec.md §7's
// requirement that user-visible failures "include the originating row
// index when known, the expression fragment, and the sub-error kind"
// without dumping internal state.
type Error struct {
	Kind     Kind
	Message  string
	RowIndex int64
	Expr     string
}

func (e *Error) Error() string {
	s := e.Kind.String() + ": " + e.Message
	if e.Expr != "" {
		s += fmt.Sprintf(" (in %q)", e.Expr)
	}
	if e.RowIndex >= 0 {
		s += fmt.Sprintf(" [row %d]", e.RowIndex)
	}
	return s
}

// newf builds an *Error with RowIndex defaulted to "unknown".
func newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), RowIndex: -1}
}

// IoError reports a read/write failure.
func IoError(format string, args ...interface{}) *Error {
	return newf(KindIO, format, args...)
}

// ParseError reports a malformed expression, unknown selector, or
// unknown record format.
func ParseError(format string, args ...interface{}) *Error {
	return newf(KindParse, format, args...)
}

// ConcretizationError reports an expression referencing an unknown
// column or called with the wrong arity.
func ConcretizationError(format string, args ...interface{}) *Error {
	return newf(KindConcretization, format, args...)
}

// EvaluationError reports a runtime type mismatch, division by zero,
// missing variable, or lambda arity mismatch. WithRow/WithExpr attach
// the originating row and expression fragment when the caller has
// them.
func EvaluationError(format string, args ...interface{}) *Error {
	return newf(KindEvaluation, format, args...)
}

// AggregatorError reports a merge between incompatible aggregator
// kinds, or a readout attempted before finalisation.
func AggregatorError(format string, args ...interface{}) *Error {
	return newf(KindAggregator, format, args...)
}

// ResourceError reports exhaustion of a bounded resource, such as the
// open-file-handle cache in partition mode.
func ResourceError(format string, args ...interface{}) *Error {
	return newf(KindResource, format, args...)
}

// UserAbort marks a clean shutdown requested by the user. It is not a
// failure: callers should treat it as a signal to stop, not to report.
func UserAbort() *Error {
	return &Error{Kind: KindUserAbort, Message: "interrupted by user", RowIndex: -1}
}

// WithRow returns a copy of e with RowIndex set, for chaining onto one
// of the constructors above: xanerr.EvaluationError("...").WithRow(i).
func (e *Error) WithRow(index int64) *Error {
	cp := *e
	cp.RowIndex = index
	return &cp
}

// WithExpr returns a copy of e with Expr set to the offending
// expression fragment.
func (e *Error) WithExpr(expr string) *Error {
	cp := *e
	cp.Expr = expr
	return &cp
}

// Is reports whether err is, or wraps, an *Error of kind k. It walks
// errors.Cause-style chains by repeatedly unwrapping, so callers that
// received an error wrapped with pkg/errors can still classify it.
func Is(err error, k Kind) bool {
	for err != nil {
		if xe, ok := err.(*Error); ok {
			return xe.Kind == k
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// Fatal reports whether a failure of kind k must terminate the
// pipeline before any records are emitted, per spec.md §7's
// propagation policy: io, parse, concretization, aggregator, and
// resource failures are always fatal; evaluation failures are governed by a
// per-command error policy instead (see pipeline.ErrorPolicy).
func Fatal(k Kind) bool {
	switch k {
	case KindIO, KindParse, KindConcretization, KindAggregator, KindResource:
		return true
	default:
		return false
	}
}
