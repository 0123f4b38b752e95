// Package parser turns a token stream from internal/lexer into a query
// tree (internal/query). It is a hand-written recursive-descent parser
// rather than a generated LALR table. Path steps ('.', '..' and '[...]')
// bind tighter than the path-combining operators, which rank, loosest to
// tightest, '|' < '&' < WHERE < WHERENOT; so `a.b | c.d` is the union of
// `a.b` and `c.d`, never a child step into `b | c`. Inside filters, '||'
// binds loosest, then '&&', then unary '!' (right-associative), which
// applies to a whole comparison: `!@.a == 1` negates `@.a == 1`.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/h2non/jsonpath-ng/internal/lexer"
	"github.com/h2non/jsonpath-ng/internal/query"
)

// Error reports a syntax error: an unexpected token, a malformed
// selector, or a pre-parse whitespace violation.
type Error struct {
	Line, Column int
	Msg          string
}

func (e *Error) Error() string {
	return fmt.Sprintf("jsonpath parse error at %d:%d: %s", e.Line, e.Column, e.Msg)
}

// Parser consumes a pre-scanned token slice. Tokenizing eagerly (rather
// than streaming from the lexer) keeps lookahead trivial; JSONPath query
// text is short enough that this costs nothing in practice.
type Parser struct {
	toks []lexer.Token
	pos  int
}

// Parse compiles query text into a query tree. Per RFC 9535, leading or
// trailing whitespace anywhere in the input is a syntax error, not just
// ignored filler.
func Parse(input string) (query.Node, error) {
	if input != strings.TrimSpace(input) {
		return nil, &Error{1, 1, "jsonpath expressions must not have leading or trailing whitespace"}
	}

	l := lexer.New(input)
	var toks []lexer.Token
	for {
		tok, err := l.Next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.Kind == lexer.EOF {
			break
		}
	}

	p := &Parser{toks: toks}
	node, err := p.parsePathExpr(0)
	if err != nil {
		return nil, err
	}
	if p.peek().Kind != lexer.EOF {
		t := p.peek()
		return nil, &Error{t.Line, t.Column, "unexpected trailing token " + t.Kind.String()}
	}
	return node, nil
}

func (p *Parser) peek() lexer.Token {
	return p.toks[p.pos]
}

func (p *Parser) peekAt(offset int) lexer.Token {
	i := p.pos + offset
	if i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[i]
}

func (p *Parser) advance() lexer.Token {
	tok := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return tok
}

func (p *Parser) expect(k lexer.Kind) (lexer.Token, error) {
	tok := p.peek()
	if tok.Kind != k {
		return tok, &Error{tok.Line, tok.Column, "expected " + k.String() + ", found " + tok.Kind.String()}
	}
	return p.advance(), nil
}

// outerPrec ranks the path-combining infix operators whose right-hand
// operand is itself a full path expression: '|', '&', WHERE, WHERENOT,
// lowest to highest, matching jsonpath-ng's precedence table. '.' and
// '..' bind tighter than all four and are handled inside absorbChain,
// which always runs to completion before this loop inspects a token.
var outerPrec = map[lexer.Kind]int{
	lexer.PIPE:     1,
	lexer.AMP:      2,
	lexer.WHERE:    3,
	lexer.WHERENOT: 4,
}

// parsePathExpr implements precedence climbing over the path-combining
// operators.
func (p *Parser) parsePathExpr(minPrec int) (query.Node, error) {
	left, err := p.parseChainExpr()
	if err != nil {
		return nil, err
	}

	for {
		tok := p.peek()
		prec, ok := outerPrec[tok.Kind]
		if !ok || prec < minPrec {
			return left, nil
		}
		p.advance()
		right, err := p.parsePathExpr(prec + 1)
		if err != nil {
			return nil, err
		}
		switch tok.Kind {
		case lexer.PIPE:
			left = query.Union{Items: []query.Node{left, right}}
		case lexer.AMP:
			left = query.Intersect{Left: left, Right: right}
		case lexer.WHERE:
			left = query.Where{Left: left, Right: right}
		case lexer.WHERENOT:
			left = query.WhereNot{Left: left, Right: right}
		}
	}
}

// parseChainExpr parses a single atom and then absorbs every immediately
// following '.', '..' and '[...]' extension. Because Child/Descendants
// composition is associative under find() semantics, flattening these
// left to right onto a running node produces the same result as any
// other valid grouping, so no extra lookahead is needed here.
func (p *Parser) parseChainExpr() (query.Node, error) {
	atom, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	return p.absorbChain(atom)
}

func (p *Parser) absorbChain(node query.Node) (query.Node, error) {
	for {
		switch p.peek().Kind {
		case lexer.LBRACKET:
			sel, err := p.parseBracket()
			if err != nil {
				return nil, err
			}
			node = query.Child{Left: node, Right: sel}
		case lexer.DOT:
			p.advance()
			member, err := p.parseMember()
			if err != nil {
				return nil, err
			}
			node = query.Child{Left: node, Right: member}
		case lexer.DOUBLEDOT:
			p.advance()
			member, err := p.parseMember()
			if err != nil {
				return nil, err
			}
			node = query.Descendants{Left: node, Right: member}
		default:
			return node, nil
		}
	}
}

// parseMember parses the ID-or-'*' that follows '.' or '..'.
func (p *Parser) parseMember() (query.Node, error) {
	tok := p.peek()
	switch tok.Kind {
	case lexer.ID:
		p.advance()
		return query.Fields{Names: []string{tok.Value}}, nil
	case lexer.STAR:
		p.advance()
		return query.Wildcard{}, nil
	default:
		return nil, &Error{tok.Line, tok.Column, "expected a field name or '*' after '.', found " + tok.Kind.String()}
	}
}

// parseAtom parses the start of a path expression: a root, the current
// node, a named operator, a bare field, or a parenthesized/bracketed
// sub-expression.
func (p *Parser) parseAtom() (query.Node, error) {
	tok := p.peek()
	switch tok.Kind {
	case lexer.DOLLAR:
		p.advance()
		return query.Root{}, nil
	case lexer.CURRENT:
		p.advance()
		return query.CurrentNode{}, nil
	case lexer.NAMEDOP:
		p.advance()
		switch tok.Value {
		case "this":
			return query.This{}, nil
		case "parent":
			return query.Parent{}, nil
		default:
			return nil, &Error{tok.Line, tok.Column, "unknown named operator `" + tok.Value + "`"}
		}
	case lexer.ID:
		p.advance()
		return query.Fields{Names: []string{tok.Value}}, nil
	case lexer.STAR:
		p.advance()
		return query.Wildcard{}, nil
	case lexer.LPAREN:
		p.advance()
		inner, err := p.parsePathExpr(0)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RPAREN); err != nil {
			return nil, err
		}
		return inner, nil
	case lexer.LBRACKET:
		return p.parseBracket()
	default:
		return nil, &Error{tok.Line, tok.Column, "unexpected token " + tok.Kind.String()}
	}
}

// parseBracket parses a full `[...]` group, returning the Node it stands
// for: Filter, Index, Fields, Wildcard, Slice, or a left-folded Union of
// several such selectors.
func (p *Parser) parseBracket() (query.Node, error) {
	if _, err := p.expect(lexer.LBRACKET); err != nil {
		return nil, err
	}

	if p.peek().Kind == lexer.QMARK {
		p.advance()
		expr, err := p.parseFilterExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RBRACKET); err != nil {
			return nil, err
		}
		return query.Filter{Expr: expr}, nil
	}

	first, err := p.parseUnionElement()
	if err != nil {
		return nil, err
	}

	if p.peek().Kind != lexer.COMMA {
		if _, err := p.expect(lexer.RBRACKET); err != nil {
			return nil, err
		}
		return first, nil
	}

	result := first
	for p.peek().Kind == lexer.COMMA {
		p.advance()
		next, err := p.parseUnionElement()
		if err != nil {
			return nil, err
		}
		result = query.Union{Items: []query.Node{result, next}}
	}
	if _, err := p.expect(lexer.RBRACKET); err != nil {
		return nil, err
	}
	return result, nil
}

// parseUnionElement parses one comma-separated entry inside a bracket: a
// name, a quoted string, an index, a wildcard, a slice, or a nested
// filter.
func (p *Parser) parseUnionElement() (query.Node, error) {
	tok := p.peek()
	switch tok.Kind {
	case lexer.QMARK:
		p.advance()
		expr, err := p.parseFilterExpr()
		if err != nil {
			return nil, err
		}
		return query.Filter{Expr: expr}, nil
	case lexer.STAR:
		p.advance()
		return query.Wildcard{}, nil
	case lexer.ID:
		p.advance()
		return query.Fields{Names: []string{tok.Value}}, nil
	case lexer.STRING:
		p.advance()
		return query.Fields{Names: []string{tok.Value}}, nil
	case lexer.COLON:
		return p.parseSlice(nil)
	case lexer.NUMBER:
		p.advance()
		if p.peek().Kind == lexer.COLON {
			start := tok
			return p.parseSlice(&start)
		}
		idx, literal := numberTokenToIndex(tok)
		return query.Index{Value: idx, Literal: literal}, nil
	default:
		return nil, &Error{tok.Line, tok.Column, "unexpected token " + tok.Kind.String() + " in bracket selector"}
	}
}

// parseSlice parses `maybe_int ':' maybe_int (':' maybe_int)?`. start, if
// non-nil, is the NUMBER token already consumed before the first ':'.
func (p *Parser) parseSlice(start *lexer.Token) (query.Node, error) {
	startPtr := maybeIntPtr(start)

	if _, err := p.expect(lexer.COLON); err != nil {
		return nil, err
	}

	var endPtr *int
	if p.peek().Kind == lexer.NUMBER {
		tok := p.advance()
		endPtr = maybeIntPtr(&tok)
	}

	var stepPtr *int
	if p.peek().Kind == lexer.COLON {
		p.advance()
		if p.peek().Kind == lexer.NUMBER {
			tok := p.advance()
			stepPtr = maybeIntPtr(&tok)
		}
	}

	return query.Slice{Start: startPtr, End: endPtr, Step: stepPtr}, nil
}

func maybeIntPtr(tok *lexer.Token) *int {
	if tok == nil {
		return nil
	}
	v, _ := strconv.Atoi(tok.NumberText)
	return &v
}

// numberTokenToIndex converts a NUMBER token into an Index value. It is
// deliberately lenient: a non-integer literal still produces a best-effort
// int so parsing never fails here, but the original literal text is kept
// so internal/validate can reject it precisely (non-integer, -0,
// out-of-range).
func numberTokenToIndex(tok lexer.Token) (int, string) {
	if v, err := strconv.Atoi(tok.NumberText); err == nil {
		return v, tok.NumberText
	}
	f, _ := strconv.ParseFloat(tok.NumberText, 64)
	return int(f), tok.NumberText
}

// ---- filter sub-grammar ----

// parseFilterExpr parses `or`.
func (p *Parser) parseFilterExpr() (query.FilterExpr, error) {
	return p.parseOr()
}

func (p *Parser) parseOr() (query.FilterExpr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek().Kind == lexer.OR {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = query.LogicalOr{Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseAnd() (query.FilterExpr, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.peek().Kind == lexer.AND {
		p.advance()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = query.LogicalAnd{Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseNot() (query.FilterExpr, error) {
	if p.peek().Kind == lexer.BANG {
		p.advance()
		expr, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return query.LogicalNot{Expr: expr}, nil
	}
	return p.parseComparison()
}

var compareOps = map[lexer.Kind]query.CompareOp{
	lexer.EQ: query.OpEq,
	lexer.NE: query.OpNe,
	lexer.LT: query.OpLt,
	lexer.LE: query.OpLe,
	lexer.GT: query.OpGt,
	lexer.GE: query.OpGe,
}

func (p *Parser) parseComparison() (query.FilterExpr, error) {
	left, err := p.parseFilterTerm()
	if err != nil {
		return nil, err
	}
	if op, ok := compareOps[p.peek().Kind]; ok {
		p.advance()
		right, err := p.parseFilterTerm()
		if err != nil {
			return nil, err
		}
		return query.Comparison{Op: op, Left: left, Right: right}, nil
	}
	return left, nil
}

func (p *Parser) parseFilterTerm() (query.FilterExpr, error) {
	tok := p.peek()
	switch tok.Kind {
	case lexer.LPAREN:
		p.advance()
		expr, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RPAREN); err != nil {
			return nil, err
		}
		return expr, nil
	case lexer.CURRENT:
		p.advance()
		node, err := p.absorbChain(query.CurrentNode{})
		if err != nil {
			return nil, err
		}
		return node.(query.FilterExpr), nil
	case lexer.DOLLAR:
		p.advance()
		node, err := p.absorbChain(query.Root{})
		if err != nil {
			return nil, err
		}
		return node.(query.FilterExpr), nil
	case lexer.NUMBER:
		p.advance()
		f, _ := strconv.ParseFloat(tok.NumberText, 64)
		return query.Literal{Value: f}, nil
	case lexer.STRING:
		p.advance()
		return query.Literal{Value: tok.Value}, nil
	case lexer.TRUE:
		p.advance()
		return query.Literal{Value: true}, nil
	case lexer.FALSE:
		p.advance()
		return query.Literal{Value: false}, nil
	case lexer.NULL:
		p.advance()
		return query.Literal{Value: nil}, nil
	case lexer.ID:
		p.advance()
		if p.peek().Kind == lexer.LPAREN {
			return p.parseFunctionCall(tok.Value)
		}
		return query.Fields{Names: []string{tok.Value}}, nil
	default:
		return nil, &Error{tok.Line, tok.Column, "unexpected token " + tok.Kind.String() + " in filter expression"}
	}
}

func (p *Parser) parseFunctionCall(name string) (query.FilterExpr, error) {
	if _, err := p.expect(lexer.LPAREN); err != nil {
		return nil, err
	}
	var args []query.FilterExpr
	if p.peek().Kind != lexer.RPAREN {
		first, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		args = append(args, first)
		for p.peek().Kind == lexer.COMMA {
			p.advance()
			next, err := p.parseOr()
			if err != nil {
				return nil, err
			}
			args = append(args, next)
		}
	}
	if _, err := p.expect(lexer.RPAREN); err != nil {
		return nil, err
	}
	return query.FunctionCall{Name: name, Args: args}, nil
}
