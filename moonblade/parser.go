package moonblade

import (
	"strconv"

	"github.com/pkg/errors"
)

// Parser is a Pratt-style recursive-descent parser over a flat token
// slice, grounded on the precedence-climbing shape used throughout the
// teacher's own combinator-based parsers (syntax/parser/combinators.go)
// generalized from character combinators to a token-level grammar, since
// expressions need operator precedence rather than regular-language
// composition.
type Parser struct {
	tokens []Token
	pos    int
}

// Parse lexes and parses a single expression, optionally terminated by
// an `as name` suffix.
func Parse(src string) (Node, error) {
	tokens, err := NewLexer(src).Tokenize()
	if err != nil {
		return nil, errors.Wrap(err, "lex expression")
	}
	p := &Parser{tokens: tokens}
	node, err := p.parseNamed()
	if err != nil {
		return nil, errors.Wrap(err, "parse expression")
	}
	if p.cur().Kind != TokEOF {
		return nil, errors.Errorf("unexpected trailing input %q at offset %d", p.cur().Text, p.cur().Offset)
	}
	return node, nil
}

func (p *Parser) cur() Token {
	if p.pos >= len(p.tokens) {
		return Token{Kind: TokEOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) advance() Token {
	tok := p.cur()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *Parser) expect(kind TokenKind, what string) (Token, error) {
	if p.cur().Kind != kind {
		return Token{}, errors.Errorf("expected %s at offset %d, got %q", what, p.cur().Offset, p.cur().Text)
	}
	return p.advance(), nil
}

func (p *Parser) parseNamed() (Node, error) {
	expr, err := p.parsePipeline()
	if err != nil {
		return nil, err
	}
	if p.cur().Kind == TokAs {
		p.advance()
		nameTok, err := p.expect(TokIdent, "name after 'as'")
		if err != nil {
			return nil, err
		}
		return NamedNode{Inner: expr, Name: nameTok.Text}, nil
	}
	return expr, nil
}

// parsePipeline handles `a | f(_)` and `a | f`, the lowest-precedence
// binary form: the right-hand side is either a bare function name
// (sugar for a single-argument call) or a call whose arguments may
// reference `_` as the piped-in value.
func (p *Parser) parsePipeline() (Node, error) {
	left, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	for p.cur().Kind == TokOperator && p.cur().Text == "|" {
		p.advance()
		rhs, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		left = substitutePipelineArg(rhs, left)
	}
	return left, nil
}

func substitutePipelineArg(rhs Node, piped Node) Node {
	switch n := rhs.(type) {
	case VariableNode:
		return CallNode{Function: n.Name, Args: []Node{piped}}
	case CallNode:
		if !containsUnderscore(n.Args) {
			return CallNode{Function: n.Function, Args: append([]Node{piped}, n.Args...)}
		}
		return CallNode{Function: n.Function, Args: substituteUnderscore(n.Args, piped)}
	default:
		return rhs
	}
}

func containsUnderscore(args []Node) bool {
	for _, a := range args {
		if v, ok := a.(VariableNode); ok && v.Name == "_" {
			return true
		}
	}
	return false
}

func substituteUnderscore(args []Node, piped Node) []Node {
	out := make([]Node, len(args))
	for i, a := range args {
		if v, ok := a.(VariableNode); ok && v.Name == "_" {
			out[i] = piped
		} else {
			out[i] = a
		}
	}
	return out
}

type binaryLevel struct {
	ops  []string
	next func(*Parser) (Node, error)
}

func (p *Parser) parseOr() (Node, error)  { return p.parseBinary([]string{"||"}, (*Parser).parseAnd) }
func (p *Parser) parseAnd() (Node, error) { return p.parseBinary([]string{"&&"}, (*Parser).parseEquality) }
func (p *Parser) parseEquality() (Node, error) {
	return p.parseBinary([]string{"==", "!="}, (*Parser).parseRelational)
}
func (p *Parser) parseRelational() (Node, error) {
	return p.parseBinary([]string{"<", "<=", ">", ">="}, (*Parser).parseAdditive)
}
func (p *Parser) parseAdditive() (Node, error) {
	return p.parseBinary([]string{"+", "-"}, (*Parser).parseMultiplicative)
}
func (p *Parser) parseMultiplicative() (Node, error) {
	return p.parseBinary([]string{"*", "/", "//", "%"}, (*Parser).parsePower)
}
func (p *Parser) parsePower() (Node, error) {
	return p.parseBinaryRightAssoc("^", (*Parser).parseUnary)
}

func (p *Parser) parseBinary(ops []string, next func(*Parser) (Node, error)) (Node, error) {
	left, err := next(p)
	if err != nil {
		return nil, err
	}
	for p.cur().Kind == TokOperator && matchesAny(p.cur().Text, ops) {
		op := p.advance().Text
		right, err := next(p)
		if err != nil {
			return nil, err
		}
		left = BinaryOpNode{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseBinaryRightAssoc(op string, next func(*Parser) (Node, error)) (Node, error) {
	left, err := next(p)
	if err != nil {
		return nil, err
	}
	if p.cur().Kind == TokOperator && p.cur().Text == op {
		p.advance()
		right, err := p.parseBinaryRightAssoc(op, next)
		if err != nil {
			return nil, err
		}
		return BinaryOpNode{Op: op, Left: left, Right: right}, nil
	}
	return left, nil
}

func matchesAny(s string, ops []string) bool {
	for _, o := range ops {
		if s == o {
			return true
		}
	}
	return false
}

func (p *Parser) parseUnary() (Node, error) {
	if p.cur().Kind == TokOperator && (p.cur().Text == "-" || p.cur().Text == "!") {
		op := p.advance().Text
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return UnaryOpNode{Op: op, Operand: operand}, nil
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (Node, error) {
	tok := p.cur()
	switch tok.Kind {
	case TokNumber:
		p.advance()
		return parseNumberLiteral(tok.Text)
	case TokString:
		p.advance()
		return LiteralNode{Value: FromString(tok.Text)}, nil
	case TokLParen:
		p.advance()
		expr, err := p.parsePipeline()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokRParen, "')'"); err != nil {
			return nil, err
		}
		return expr, nil
	case TokLBracket:
		return p.parseList()
	case TokUnderscore:
		p.advance()
		return VariableNode{Name: "_"}, nil
	case TokIdent:
		return p.parseIdentLed()
	}
	return nil, errors.Errorf("unexpected token %q at offset %d", tok.Text, tok.Offset)
}

func parseNumberLiteral(text string) (Node, error) {
	if i, err := strconv.ParseInt(text, 10, 64); err == nil {
		return LiteralNode{Value: FromInt(i)}, nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, errors.Errorf("invalid numeric literal %q", text)
	}
	return LiteralNode{Value: FromFloat(f)}, nil
}

func (p *Parser) parseList() (Node, error) {
	p.advance() // consume '['
	var items []Node
	for p.cur().Kind != TokRBracket {
		item, err := p.parsePipeline()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		if p.cur().Kind == TokComma {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(TokRBracket, "']'"); err != nil {
		return nil, err
	}
	return CallNode{Function: "__list", Args: items}, nil
}

// parseIdentLed handles every construct that begins with a bare
// identifier: a function call, a lambda (single param, "x => ..."), an
// `if` special form, or a plain variable/column reference with optional
// "[occurrence]" suffix.
func (p *Parser) parseIdentLed() (Node, error) {
	name := p.advance().Text

	if p.cur().Kind == TokArrow {
		p.advance()
		body, err := p.parsePipeline()
		if err != nil {
			return nil, err
		}
		return LambdaNode{Params: []string{name}, Body: body}, nil
	}

	if name == "if" && p.cur().Kind == TokLParen {
		return p.parseIf()
	}

	if p.cur().Kind == TokLParen {
		return p.parseCallArgs(name)
	}

	if p.cur().Kind == TokLBracket {
		p.advance()
		occTok, err := p.expect(TokNumber, "occurrence index")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokRBracket, "']'"); err != nil {
			return nil, err
		}
		n, err := strconv.Atoi(occTok.Text)
		if err != nil {
			return nil, errors.Errorf("non-integer occurrence index %q", occTok.Text)
		}
		return ColumnNode{RefKind: ByName, Name: name, HasOccurrence: true, Occurrence: n}, nil
	}

	return VariableNode{Name: name}, nil
}

func (p *Parser) parseIf() (Node, error) {
	p.advance() // '('
	cond, err := p.parsePipeline()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokComma, "','"); err != nil {
		return nil, err
	}
	then, err := p.parsePipeline()
	if err != nil {
		return nil, err
	}
	var elseNode Node
	if p.cur().Kind == TokComma {
		p.advance()
		elseNode, err = p.parsePipeline()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(TokRParen, "')'"); err != nil {
		return nil, err
	}
	return IfNode{Cond: cond, Then: then, Else: elseNode}, nil
}

func (p *Parser) parseCallArgs(name string) (Node, error) {
	p.advance() // '('
	var args []Node
	for p.cur().Kind != TokRParen {
		arg, err := p.parsePipeline()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.cur().Kind == TokComma {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(TokRParen, "')'"); err != nil {
		return nil, err
	}
	return CallNode{Function: name, Args: args}, nil
}
