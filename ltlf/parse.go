// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package ltlf

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

var (
	// ErrSyntax is returned, wrapped, for malformed formula text.
	ErrSyntax = errors.New("ltlf: syntax error")
	// ErrOperator is returned, wrapped, for an operator a transformation
	// does not know.
	ErrOperator = errors.New("ltlf: unknown operator")
)

type tokKind int

const (
	tEOF tokKind = iota
	tIdent
	tTrue
	tFalse
	tNot
	tAnd
	tOr
	tImplies
	tEquiv
	tNext
	tStrongNext
	tGlobally
	tEventually
	tUntil
	tRelease
	tWeakUntil
	tLParen
	tRParen
)

type token struct {
	kind tokKind
	text string
	pos  int
}

var keywords = map[string]tokKind{
	"true":  tTrue,
	"tt":    tTrue,
	"false": tFalse,
	"ff":    tFalse,
	"X":     tNext,
	"N":     tNext,
	"G":     tGlobally,
	"F":     tEventually,
	"U":     tUntil,
	"R":     tRelease,
	"W":     tWeakUntil}

// IsKeyword returns whether nm is reserved by the formula syntax and so
// cannot name a proposition.
func IsKeyword(nm string) bool {
	_, ok := keywords[nm]
	return ok
}

func isIdentStart(r byte) bool {
	return r == '_' || unicode.IsLetter(rune(r))
}

func isIdentPart(r byte) bool {
	return isIdentStart(r) || (r >= '0' && r <= '9')
}

func lex(s string) ([]token, error) {
	var res []token
	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			i++
			continue
		case isIdentStart(c):
			j := i + 1
			for j < len(s) && isIdentPart(s[j]) {
				j++
			}
			w := s[i:j]
			k, ok := keywords[w]
			if !ok {
				res = append(res, token{kind: tIdent, text: w, pos: i})
				i = j
				continue
			}
			if w == "X" && strings.HasPrefix(s[j:], "[!]") {
				res = append(res, token{kind: tStrongNext, text: "X[!]", pos: i})
				i = j + 3
				continue
			}
			res = append(res, token{kind: k, text: w, pos: i})
			i = j
			continue
		}
		var k tokKind
		n := 1
		switch {
		case c == '(':
			k = tLParen
		case c == ')':
			k = tRParen
		case c == '!' || c == '~':
			k = tNot
		case strings.HasPrefix(s[i:], "&&"):
			k, n = tAnd, 2
		case c == '&':
			k = tAnd
		case strings.HasPrefix(s[i:], "||"):
			k, n = tOr, 2
		case c == '|':
			k = tOr
		case strings.HasPrefix(s[i:], "->"):
			k, n = tImplies, 2
		case strings.HasPrefix(s[i:], "=>"):
			k, n = tImplies, 2
		case strings.HasPrefix(s[i:], "<->"):
			k, n = tEquiv, 3
		case strings.HasPrefix(s[i:], "<=>"):
			k, n = tEquiv, 3
		default:
			return nil, fmt.Errorf("%w: unexpected %q at %d", ErrSyntax, c, i)
		}
		res = append(res, token{kind: k, text: s[i : i+n], pos: i})
		i += n
	}
	res = append(res, token{kind: tEOF, pos: len(s)})
	return res, nil
}

type parser struct {
	toks []token
	i    int
}

func (p *parser) peek() token {
	return p.toks[p.i]
}

func (p *parser) next() token {
	t := p.toks[p.i]
	if t.kind != tEOF {
		p.i++
	}
	return t
}

func (p *parser) errorf(t token, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s at %d", ErrSyntax, fmt.Sprintf(format, args...), t.pos)
}

// Parse parses s into a formula.
func Parse(s string) (*Formula, error) {
	toks, err := lex(s)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	if p.peek().kind == tEOF {
		return nil, p.errorf(p.peek(), "empty formula")
	}
	f, err := p.equiv()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tEOF {
		return nil, p.errorf(t, "unexpected %q", t.text)
	}
	return f, nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) *Formula {
	f, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return f
}

func (p *parser) equiv() (*Formula, error) {
	l, err := p.implies()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tEquiv {
		p.next()
		r, err := p.implies()
		if err != nil {
			return nil, err
		}
		l = Equiv(l, r)
	}
	return l, nil
}

func (p *parser) implies() (*Formula, error) {
	l, err := p.or()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tImplies {
		return l, nil
	}
	p.next()
	r, err := p.implies()
	if err != nil {
		return nil, err
	}
	return Implies(l, r), nil
}

func (p *parser) or() (*Formula, error) {
	l, err := p.and()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tOr {
		p.next()
		r, err := p.and()
		if err != nil {
			return nil, err
		}
		l = Or(l, r)
	}
	return l, nil
}

func (p *parser) and() (*Formula, error) {
	l, err := p.binTemporal()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tAnd {
		p.next()
		r, err := p.binTemporal()
		if err != nil {
			return nil, err
		}
		l = And(l, r)
	}
	return l, nil
}

func (p *parser) binTemporal() (*Formula, error) {
	l, err := p.unary()
	if err != nil {
		return nil, err
	}
	k := p.peek().kind
	if k != tUntil && k != tRelease && k != tWeakUntil {
		return l, nil
	}
	p.next()
	r, err := p.binTemporal()
	if err != nil {
		return nil, err
	}
	switch k {
	case tUntil:
		return U(l, r), nil
	case tRelease:
		return R(l, r), nil
	}
	return W(l, r), nil
}

func (p *parser) unary() (*Formula, error) {
	t := p.next()
	switch t.kind {
	case tNot, tNext, tStrongNext, tGlobally, tEventually:
		a, err := p.unary()
		if err != nil {
			return nil, err
		}
		switch t.kind {
		case tNot:
			return Not(a), nil
		case tNext:
			return X(a), nil
		case tStrongNext:
			return StrongX(a), nil
		case tGlobally:
			return G(a), nil
		}
		return F(a), nil
	case tLParen:
		f, err := p.equiv()
		if err != nil {
			return nil, err
		}
		if c := p.next(); c.kind != tRParen {
			return nil, p.errorf(c, "expected ')'")
		}
		return f, nil
	case tIdent:
		return Atom(t.text), nil
	case tTrue:
		return ttF, nil
	case tFalse:
		return ffF, nil
	case tEOF:
		return nil, p.errorf(t, "unexpected end of formula")
	}
	return nil, p.errorf(t, "unexpected %q", t.text)
}
