package xlcalc

import (
	"strings"
)

// tokenType discriminates lexer output.
type tokenType uint8

const (
	tokEOF tokenType = iota
	tokNumber
	tokString
	tokIdent // function name, TRUE/FALSE, or cell reference
	tokOp    // + - * / ^ & = <> < <= > >=
	tokComma
	tokColon
	tokLParen
	tokRParen
)

// token is a lexed unit with its byte offset in the formula body.
type token struct {
	typ tokenType
	val string
	pos int
}

// lexer splits formula text (without the leading '=') into tokens.
// It is deliberately small: identifier tokens stay undifferentiated
// and the parser decides whether one is a cell reference, a boolean,
// or a function name based on what follows.
type lexer struct {
	src string
	pos int
}

func newLexer(src string) *lexer {
	return &lexer{src: src}
}

func (l *lexer) tokenize() ([]token, *ParseError) {
	var toks []token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.typ == tokEOF {
			return toks, nil
		}
	}
}

func (l *lexer) next() (token, *ParseError) {
	for l.pos < len(l.src) && isSpace(l.src[l.pos]) {
		l.pos++
	}
	if l.pos >= len(l.src) {
		return token{typ: tokEOF, pos: l.pos}, nil
	}

	start := l.pos
	c := l.src[l.pos]

	switch {
	case c >= '0' && c <= '9' || c == '.':
		return l.lexNumber()
	case c == '"':
		return l.lexString()
	case isRefLetter(c) || c == '_':
		for l.pos < len(l.src) && (isRefLetter(l.src[l.pos]) || l.src[l.pos] == '_' ||
			l.src[l.pos] >= '0' && l.src[l.pos] <= '9') {
			l.pos++
		}
		return token{typ: tokIdent, val: l.src[start:l.pos], pos: start}, nil
	}

	l.pos++
	switch c {
	case '+', '-', '*', '/', '^', '&', '=':
		return token{typ: tokOp, val: string(c), pos: start}, nil
	case '<':
		if l.pos < len(l.src) && (l.src[l.pos] == '=' || l.src[l.pos] == '>') {
			l.pos++
			return token{typ: tokOp, val: l.src[start:l.pos], pos: start}, nil
		}
		return token{typ: tokOp, val: "<", pos: start}, nil
	case '>':
		if l.pos < len(l.src) && l.src[l.pos] == '=' {
			l.pos++
			return token{typ: tokOp, val: ">=", pos: start}, nil
		}
		return token{typ: tokOp, val: ">", pos: start}, nil
	case ',':
		return token{typ: tokComma, val: ",", pos: start}, nil
	case ':':
		return token{typ: tokColon, val: ":", pos: start}, nil
	case '(':
		return token{typ: tokLParen, val: "(", pos: start}, nil
	case ')':
		return token{typ: tokRParen, val: ")", pos: start}, nil
	}
	return token{}, syntaxErr(start, "unexpected character %q", string(c))
}

func (l *lexer) lexNumber() (token, *ParseError) {
	start := l.pos
	sawDigit := false
	for l.pos < len(l.src) && l.src[l.pos] >= '0' && l.src[l.pos] <= '9' {
		l.pos++
		sawDigit = true
	}
	if l.pos < len(l.src) && l.src[l.pos] == '.' {
		l.pos++
		for l.pos < len(l.src) && l.src[l.pos] >= '0' && l.src[l.pos] <= '9' {
			l.pos++
			sawDigit = true
		}
	}
	if !sawDigit {
		return token{}, syntaxErr(start, "malformed number")
	}
	// optional exponent
	if l.pos < len(l.src) && (l.src[l.pos] == 'e' || l.src[l.pos] == 'E') {
		mark := l.pos
		l.pos++
		if l.pos < len(l.src) && (l.src[l.pos] == '+' || l.src[l.pos] == '-') {
			l.pos++
		}
		expDigits := false
		for l.pos < len(l.src) && l.src[l.pos] >= '0' && l.src[l.pos] <= '9' {
			l.pos++
			expDigits = true
		}
		if !expDigits {
			// not an exponent after all; "1E" starts a cell-ref-ish
			// identifier which the parser will reject in context
			l.pos = mark
		}
	}
	return token{typ: tokNumber, val: l.src[start:l.pos], pos: start}, nil
}

func (l *lexer) lexString() (token, *ParseError) {
	start := l.pos
	l.pos++ // opening quote
	var sb strings.Builder
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == '"' {
			// doubled quote is an escaped quote
			if l.pos+1 < len(l.src) && l.src[l.pos+1] == '"' {
				sb.WriteByte('"')
				l.pos += 2
				continue
			}
			l.pos++
			return token{typ: tokString, val: sb.String(), pos: start}, nil
		}
		sb.WriteByte(c)
		l.pos++
	}
	return token{}, syntaxErr(start, "unterminated string literal")
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
