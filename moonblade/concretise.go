package moonblade

import (
	"github.com/pkg/errors"

	"github.com/tabbyio/tabby/record"
)

// ConcreteExpr is an AST that has been walked against a specific header:
// every ColumnNode carries resolved indices, and every function call has
// been arity-checked.
type ConcreteExpr struct {
	Root   Node
	Header *record.Header
}

// ConcretiseError reports a name/arity failure discovered while binding
// an AST to a header, per spec.md §4.3: UnknownColumn, UnknownFunction,
// ArityMismatch, ParseError.
type ConcretiseError struct {
	Kind string
	Msg  string
}

func (e *ConcretiseError) Error() string {
	return errors.Errorf("%s: %s", e.Kind, e.Msg).Error()
}

// Concretise walks expr resolving every column reference against header
// and checking call arity, returning a ConcreteExpr ready for repeated
// evaluation against records matching that header.
func Concretise(expr Node, header *record.Header) (*ConcreteExpr, error) {
	resolved, err := concretiseNode(expr, header, nil)
	if err != nil {
		return nil, err
	}
	return &ConcreteExpr{Root: resolved, Header: header}, nil
}

// concretiseNode walks expr, threading lambdaParams (names bound by an
// enclosing lambda, which must NOT be reinterpreted as column refs).
func concretiseNode(n Node, header *record.Header, lambdaParams map[string]bool) (Node, error) {
	switch node := n.(type) {
	case LiteralNode:
		return node, nil

	case VariableNode:
		if lambdaParams[node.Name] {
			return node, nil
		}
		if idx, ok := header.IndexOf(node.Name); ok {
			return ColumnNode{RefKind: ByName, Name: node.Name, Resolved: true, ResolvedIndex: idx}, nil
		}
		return node, nil

	case ColumnNode:
		return concretiseColumn(node, header)

	case NamedNode:
		inner, err := concretiseNode(node.Inner, header, lambdaParams)
		if err != nil {
			return nil, err
		}
		return NamedNode{Inner: inner, Name: node.Name}, nil

	case UnaryOpNode:
		operand, err := concretiseNode(node.Operand, header, lambdaParams)
		if err != nil {
			return nil, err
		}
		return UnaryOpNode{Op: node.Op, Operand: operand}, nil

	case BinaryOpNode:
		left, err := concretiseNode(node.Left, header, lambdaParams)
		if err != nil {
			return nil, err
		}
		right, err := concretiseNode(node.Right, header, lambdaParams)
		if err != nil {
			return nil, err
		}
		return BinaryOpNode{Op: node.Op, Left: left, Right: right}, nil

	case IfNode:
		cond, err := concretiseNode(node.Cond, header, lambdaParams)
		if err != nil {
			return nil, err
		}
		then, err := concretiseNode(node.Then, header, lambdaParams)
		if err != nil {
			return nil, err
		}
		var elseNode Node
		if node.Else != nil {
			elseNode, err = concretiseNode(node.Else, header, lambdaParams)
			if err != nil {
				return nil, err
			}
		}
		return IfNode{Cond: cond, Then: then, Else: elseNode}, nil

	case LambdaNode:
		inner := cloneParamSet(lambdaParams)
		for _, p := range node.Params {
			inner[p] = true
		}
		body, err := concretiseNode(node.Body, header, inner)
		if err != nil {
			return nil, err
		}
		return LambdaNode{Params: node.Params, Body: body}, nil

	case CallNode:
		return concretiseCall(node, header, lambdaParams)

	default:
		return nil, &ConcretiseError{Kind: "ParseError", Msg: "unrecognized AST node"}
	}
}

func cloneParamSet(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}

func concretiseColumn(node ColumnNode, header *record.Header) (Node, error) {
	switch node.RefKind {
	case ByName:
		if node.HasOccurrence {
			idx, ok := header.Occurrence(node.Name, node.Occurrence)
			if !ok {
				return nil, &ConcretiseError{Kind: "UnknownColumn", Msg: errors.Errorf("%q at occurrence %d", node.Name, node.Occurrence).Error()}
			}
			node.Resolved = true
			node.ResolvedIndex = idx
			return node, nil
		}
		idx, ok := header.IndexOf(node.Name)
		if !ok {
			return nil, &ConcretiseError{Kind: "UnknownColumn", Msg: node.Name}
		}
		node.Resolved = true
		node.ResolvedIndex = idx
		return node, nil

	case ByIndex:
		idx := node.Index
		if idx < 0 {
			idx = header.Len() + idx
		}
		if idx < 0 || idx >= header.Len() {
			return nil, &ConcretiseError{Kind: "UnknownColumn", Msg: errors.Errorf("index %d out of bounds", node.Index).Error()}
		}
		node.Resolved = true
		node.ResolvedIndex = idx
		return node, nil

	case AllMatching:
		var indices []int
		for i, name := range header.Names() {
			if globMatchMoonblade(node.Glob, name) {
				indices = append(indices, i)
			}
		}
		if len(indices) == 0 {
			return nil, &ConcretiseError{Kind: "UnknownColumn", Msg: errors.Errorf("glob %q matched no columns", node.Glob).Error()}
		}
		node.Resolved = true
		node.ResolvedIndices = indices
		return node, nil

	default:
		return nil, &ConcretiseError{Kind: "ParseError", Msg: "unrecognized column reference kind"}
	}
}

// globMatchMoonblade mirrors selection.globMatch; duplicated rather than
// imported to avoid a moonblade→selection package dependency for a
// short backtracking matcher.
func globMatchMoonblade(pattern, name string) bool {
	i, j := 0, 0
	bti, btj := 0, 0
	for i < len(pattern) || j < len(name) {
		if i < len(pattern) {
			p := pattern[i]
			if p == '*' {
				bti = i
				btj = j + 1
				i++
				continue
			}
			if j < len(name) && p == name[j] {
				i++
				j++
				continue
			}
		}
		if 0 < btj && btj <= len(name) {
			i = bti
			j = btj
			continue
		}
		return false
	}
	return true
}

func concretiseCall(node CallNode, header *record.Header, lambdaParams map[string]bool) (Node, error) {
	switch node.Function {
	case "col":
		return concretiseColBuiltin(node)
	case "cols":
		return concretiseColsBuiltin(node)
	}

	args := make([]Node, len(node.Args))
	for i, a := range node.Args {
		resolved, err := concretiseNode(a, header, lambdaParams)
		if err != nil {
			return nil, err
		}
		args[i] = resolved
	}

	if lambdaParams[node.Function] {
		return CallNode{Function: node.Function, Args: args}, nil
	}

	spec, ok := Functions[node.Function]
	if !ok {
		return nil, &ConcretiseError{Kind: "UnknownFunction", Msg: node.Function}
	}
	if !arityOK(spec, len(args)) {
		return nil, &ConcretiseError{Kind: "ArityMismatch", Msg: errors.Errorf("%s expects between %d and %d args, got %d", node.Function, spec.MinArgs, spec.MaxArgs, len(args)).Error()}
	}
	return CallNode{Function: node.Function, Args: args}, nil
}

func concretiseColBuiltin(node CallNode) (Node, error) {
	if len(node.Args) < 1 || len(node.Args) > 2 {
		return nil, &ConcretiseError{Kind: "ArityMismatch", Msg: "col() expects 1 or 2 arguments"}
	}
	lit, ok := node.Args[0].(LiteralNode)
	if !ok {
		return nil, &ConcretiseError{Kind: "ParseError", Msg: "col() first argument must be a literal name or index"}
	}
	col := ColumnNode{}
	switch lit.Value.Kind {
	case KindInteger:
		col.RefKind = ByIndex
		col.Index = int(lit.Value.Int)
	case KindString:
		col.RefKind = ByName
		col.Name = lit.Value.Str
	default:
		return nil, &ConcretiseError{Kind: "ParseError", Msg: "col() first argument must be a string or integer literal"}
	}
	if len(node.Args) == 2 {
		occLit, ok := node.Args[1].(LiteralNode)
		if !ok || occLit.Value.Kind != KindInteger {
			return nil, &ConcretiseError{Kind: "ParseError", Msg: "col() occurrence argument must be an integer literal"}
		}
		col.HasOccurrence = true
		col.Occurrence = int(occLit.Value.Int)
	}
	return col, nil
}

func concretiseColsBuiltin(node CallNode) (Node, error) {
	if len(node.Args) != 1 {
		return nil, &ConcretiseError{Kind: "ArityMismatch", Msg: "cols() expects exactly 1 argument"}
	}
	lit, ok := node.Args[0].(LiteralNode)
	if !ok || lit.Value.Kind != KindString {
		return nil, &ConcretiseError{Kind: "ParseError", Msg: "cols() argument must be a string literal glob"}
	}
	return ColumnNode{RefKind: AllMatching, Glob: lit.Value.Str}, nil
}
