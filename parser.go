package xlcalc

import (
	"strconv"
	"strings"
)

// Parse turns formula text into an AST. A leading '=' is accepted and
// skipped. Cell and range references are validated against the grid
// extent here; function names are not resolved until evaluation.
//
// On failure the returned error is a *ParseError carrying the byte
// position and reason, and no partial result is produced.
func Parse(text string) (Expr, error) {
	body := strings.TrimPrefix(strings.TrimSpace(text), "=")
	toks, lexErr := newLexer(body).tokenize()
	if lexErr != nil {
		return nil, lexErr
	}

	p := &parser{toks: toks}
	if p.peek().typ == tokEOF {
		return nil, syntaxErr(0, "empty formula")
	}
	expr, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.typ != tokEOF {
		return nil, syntaxErr(tok.pos, "unexpected %q after expression", tok.val)
	}
	return expr, nil
}

// parser is a recursive-descent parser over the token stream. Each
// parse level corresponds to one precedence tier, lowest first.
type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() token {
	return p.toks[p.pos]
}

func (p *parser) advance() token {
	tok := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return tok
}

// parseComparison handles = <> < <= > >= (lowest precedence).
func (p *parser) parseComparison() (Expr, error) {
	left, err := p.parseConcat()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		if tok.typ != tokOp {
			return left, nil
		}
		var op BinOp
		switch tok.val {
		case "=":
			op = OpEq
		case "<>":
			op = OpNe
		case "<":
			op = OpLt
		case "<=":
			op = OpLe
		case ">":
			op = OpGt
		case ">=":
			op = OpGe
		default:
			return left, nil
		}
		p.advance()
		right, err := p.parseConcat()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: op, Left: left, Right: right}
	}
}

// parseConcat handles the & text concatenation operator.
func (p *parser) parseConcat() (Expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for p.peek().typ == tokOp && p.peek().val == "&" {
		p.advance()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: OpConcat, Left: left, Right: right}
	}
	return left, nil
}

// parseAdditive handles binary + and -.
func (p *parser) parseAdditive() (Expr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		if tok.typ != tokOp || (tok.val != "+" && tok.val != "-") {
			return left, nil
		}
		p.advance()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		op := OpAdd
		if tok.val == "-" {
			op = OpSub
		}
		left = &BinaryExpr{Op: op, Left: left, Right: right}
	}
}

// parseMultiplicative handles * and /.
func (p *parser) parseMultiplicative() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		if tok.typ != tokOp || (tok.val != "*" && tok.val != "/") {
			return left, nil
		}
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		op := OpMul
		if tok.val == "/" {
			op = OpDiv
		}
		left = &BinaryExpr{Op: op, Left: left, Right: right}
	}
}

// parseUnary handles prefix - and +. Unary binds tighter than * / but
// looser than ^, so -2^2 parses as -(2^2).
func (p *parser) parseUnary() (Expr, error) {
	tok := p.peek()
	if tok.typ == tokOp && (tok.val == "-" || tok.val == "+") {
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Negate: tok.val == "-", Operand: operand}, nil
	}
	return p.parsePower()
}

// parsePower handles ^, right-associative: 2^3^2 is 2^(3^2).
func (p *parser) parsePower() (Expr, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if p.peek().typ == tokOp && p.peek().val == "^" {
		p.advance()
		right, err := p.parsePower()
		if err != nil {
			return nil, err
		}
		return &BinaryExpr{Op: OpPow, Left: left, Right: right}, nil
	}
	return left, nil
}

// parsePrimary handles literals, references, function calls, and
// parenthesized expressions.
func (p *parser) parsePrimary() (Expr, error) {
	tok := p.peek()
	switch tok.typ {
	case tokNumber:
		p.advance()
		n, err := strconv.ParseFloat(tok.val, 64)
		if err != nil {
			return nil, syntaxErr(tok.pos, "invalid number %q", tok.val)
		}
		return &NumberLit{Value: n}, nil

	case tokString:
		p.advance()
		return &StringLit{Value: tok.val}, nil

	case tokIdent:
		return p.parseIdent()

	case tokLParen:
		p.advance()
		inner, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		if p.peek().typ != tokRParen {
			return nil, syntaxErr(p.peek().pos, "expected ')'")
		}
		p.advance()
		return inner, nil

	case tokEOF:
		return nil, syntaxErr(tok.pos, "unexpected end of formula")
	}
	return nil, syntaxErr(tok.pos, "unexpected %q", tok.val)
}

// parseIdent resolves an identifier token into a function call, a
// boolean literal, a cell reference, or a range reference.
func (p *parser) parseIdent() (Expr, error) {
	tok := p.advance()

	if p.peek().typ == tokLParen {
		return p.parseCall(tok)
	}

	switch strings.ToUpper(tok.val) {
	case "TRUE":
		return &BoolLit{Value: true}, nil
	case "FALSE":
		return &BoolLit{Value: false}, nil
	}

	first, err := refFromIdent(tok)
	if err != nil {
		return nil, err
	}

	if p.peek().typ == tokColon {
		p.advance()
		end := p.peek()
		if end.typ != tokIdent {
			return nil, syntaxErr(end.pos, "expected cell reference after ':'")
		}
		p.advance()
		last, err := refFromIdent(end)
		if err != nil {
			return nil, err
		}
		return &RangeExpr{Range: Range(first, last)}, nil
	}
	return &RefExpr{Ref: first}, nil
}

func (p *parser) parseCall(name token) (Expr, error) {
	p.advance() // consume '('
	call := &CallExpr{Name: strings.ToUpper(name.val)}

	if p.peek().typ == tokRParen {
		p.advance()
		return call, nil
	}
	for {
		arg, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		call.Args = append(call.Args, arg)

		switch p.peek().typ {
		case tokComma:
			p.advance()
		case tokRParen:
			p.advance()
			return call, nil
		default:
			return nil, syntaxErr(p.peek().pos, "expected ',' or ')' in call to %s", call.Name)
		}
	}
}

// refFromIdent interprets an identifier as an A1 reference, reporting
// OutOfRange for well-formed references beyond the grid.
func refFromIdent(tok token) (CellRef, error) {
	letters := 0
	for letters < len(tok.val) && isRefLetter(tok.val[letters]) {
		letters++
	}
	digits := tok.val[letters:]
	if letters == 0 || digits == "" || !allDigits(digits) {
		return CellRef{}, syntaxErr(tok.pos, "unknown identifier %q", tok.val)
	}

	col, err := NameToCol(tok.val[:letters])
	if err != nil {
		return CellRef{}, rangeErr(tok.pos, "column out of range in %q", tok.val)
	}
	row, convErr := strconv.Atoi(digits)
	if convErr != nil || row < 1 || row > MaxRows {
		return CellRef{}, rangeErr(tok.pos, "row out of range in %q", tok.val)
	}
	return CellRef{Col: col, Row: row - 1}, nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
