// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package ltlf

import (
	"sort"
	"strings"
)

// Op is the operator at the root of a formula.
type Op int

const (
	OpFalse Op = iota
	OpTrue
	OpAtom
	OpNot
	OpAnd
	OpOr
	OpImplies
	OpEquiv
	OpNext       // weak next, X
	OpStrongNext // strong next, X[!]
	OpGlobally
	OpEventually
	OpUntil
	OpRelease
	OpWeakUntil
	numOps
)

var opNames = [...]string{
	OpFalse:      "false",
	OpTrue:       "true",
	OpAtom:       "atom",
	OpNot:        "!",
	OpAnd:        "&",
	OpOr:         "|",
	OpImplies:    "->",
	OpEquiv:      "<->",
	OpNext:       "X",
	OpStrongNext: "X[!]",
	OpGlobally:   "G",
	OpEventually: "F",
	OpUntil:      "U",
	OpRelease:    "R",
	OpWeakUntil:  "W"}

func (o Op) String() string {
	if o < 0 || o >= numOps {
		return "?"
	}
	return opNames[o]
}

func (o Op) valid() bool {
	return o >= 0 && o < numOps
}

// Formula is an immutable LTLf formula.  Subformulas may be shared
// between formulas.
type Formula struct {
	op   Op
	name string
	kids []*Formula
	key  string
}

var (
	ttF = &Formula{op: OpTrue, key: "true"}
	ffF = &Formula{op: OpFalse, key: "false"}
)

// True returns the constant true.
func True() *Formula { return ttF }

// False returns the constant false.
func False() *Formula { return ffF }

// Const returns True() if v, False() otherwise.
func Const(v bool) *Formula {
	if v {
		return ttF
	}
	return ffF
}

// Atom returns the atomic proposition nm.
func Atom(nm string) *Formula {
	return &Formula{op: OpAtom, name: nm, key: nm}
}

// Op returns the root operator of f.
func (f *Formula) Op() Op { return f.op }

// Name returns the name of an atom, "" for other formulas.
func (f *Formula) Name() string { return f.name }

// Len returns the number of operands of f.
func (f *Formula) Len() int { return len(f.kids) }

// Kid returns the i'th operand of f.
func (f *Formula) Kid(i int) *Formula { return f.kids[i] }

// String returns f in the syntax accepted by Parse.
func (f *Formula) String() string { return f.key }

// Equal returns whether f and g are syntactically equal.
func (f *Formula) Equal(g *Formula) bool { return f.key == g.key }

// IsTrue returns whether f is the constant true.
func (f *Formula) IsTrue() bool { return f.op == OpTrue }

// IsFalse returns whether f is the constant false.
func (f *Formula) IsFalse() bool { return f.op == OpFalse }

// IsConst returns whether f is true or false.
func (f *Formula) IsConst() bool { return f.op == OpTrue || f.op == OpFalse }

// IsLiteral returns whether f is an atom or a negated atom.
func (f *Formula) IsLiteral() bool {
	return f.op == OpAtom || (f.op == OpNot && f.kids[0].op == OpAtom)
}

// Not returns the negation of f.
func Not(f *Formula) *Formula {
	switch f.op {
	case OpTrue:
		return ffF
	case OpFalse:
		return ttF
	case OpNot:
		return f.kids[0]
	}
	return mk(OpNot, f)
}

// And returns the conjunction of fs.
func And(fs ...*Formula) *Formula {
	return nary(OpAnd, fs)
}

// Or returns the disjunction of fs.
func Or(fs ...*Formula) *Formula {
	return nary(OpOr, fs)
}

// nary flattens, removes duplicates and neutral constants and sorts.
func nary(op Op, fs []*Formula) *Formula {
	unit, zero := ttF, ffF
	if op == OpOr {
		unit, zero = ffF, ttF
	}
	seen := make(map[string]bool, len(fs))
	kids := make([]*Formula, 0, len(fs))
	var add func(f *Formula) bool
	add = func(f *Formula) bool {
		switch {
		case f.op == zero.op:
			return false
		case f.op == unit.op:
			return true
		case f.op == op:
			for _, k := range f.kids {
				if !add(k) {
					return false
				}
			}
			return true
		}
		if !seen[f.key] {
			seen[f.key] = true
			kids = append(kids, f)
		}
		return true
	}
	for _, f := range fs {
		if !add(f) {
			return zero
		}
	}
	switch len(kids) {
	case 0:
		return unit
	case 1:
		return kids[0]
	}
	sort.Slice(kids, func(i, j int) bool { return kids[i].key < kids[j].key })
	return mk(op, kids...)
}

// Implies returns a -> b.
func Implies(a, b *Formula) *Formula {
	return mk(OpImplies, a, b)
}

// Equiv returns a <-> b.
func Equiv(a, b *Formula) *Formula {
	return mk(OpEquiv, a, b)
}

// X returns the weak next of f.
func X(f *Formula) *Formula {
	return mk(OpNext, f)
}

// StrongX returns the strong next of f.
func StrongX(f *Formula) *Formula {
	return mk(OpStrongNext, f)
}

// G returns globally f.
func G(f *Formula) *Formula {
	if f.IsConst() {
		return f
	}
	return mk(OpGlobally, f)
}

// F returns eventually f.
func F(f *Formula) *Formula {
	if f.IsConst() {
		return f
	}
	return mk(OpEventually, f)
}

// U returns a until b.
func U(a, b *Formula) *Formula {
	if b.IsConst() {
		return b
	}
	if a.IsFalse() {
		return b
	}
	return mk(OpUntil, a, b)
}

// R returns a release b.
func R(a, b *Formula) *Formula {
	if b.IsConst() {
		return b
	}
	if a.IsTrue() {
		return b
	}
	return mk(OpRelease, a, b)
}

// W returns a weak until b.
func W(a, b *Formula) *Formula {
	if b.IsTrue() {
		return b
	}
	return mk(OpWeakUntil, a, b)
}

func mk(op Op, kids ...*Formula) *Formula {
	f := &Formula{op: op, kids: kids}
	f.key = render(f)
	return f
}

const (
	precEquiv = iota + 1
	precImplies
	precOr
	precAnd
	precTemporal
	precUnary
	precAtom
)

func prec(f *Formula) int {
	switch f.op {
	case OpEquiv:
		return precEquiv
	case OpImplies:
		return precImplies
	case OpOr:
		return precOr
	case OpAnd:
		return precAnd
	case OpUntil, OpRelease, OpWeakUntil:
		return precTemporal
	case OpNot, OpNext, OpStrongNext, OpGlobally, OpEventually:
		return precUnary
	}
	return precAtom
}

func wrap(sb *strings.Builder, f *Formula, paren bool) {
	if paren {
		sb.WriteByte('(')
	}
	sb.WriteString(f.key)
	if paren {
		sb.WriteByte(')')
	}
}

func render(f *Formula) string {
	var sb strings.Builder
	switch f.op {
	case OpNot:
		sb.WriteByte('!')
		wrap(&sb, f.kids[0], prec(f.kids[0]) < precUnary)
	case OpNext, OpStrongNext, OpGlobally, OpEventually:
		sb.WriteString(f.op.String())
		wrap(&sb, f.kids[0], true)
	case OpAnd, OpOr:
		sep := " & "
		if f.op == OpOr {
			sep = " | "
		}
		for i, k := range f.kids {
			if i > 0 {
				sb.WriteString(sep)
			}
			wrap(&sb, k, prec(k) <= precAnd)
		}
	case OpImplies, OpEquiv, OpUntil, OpRelease, OpWeakUntil:
		p := prec(f)
		wrap(&sb, f.kids[0], prec(f.kids[0]) <= p)
		sb.WriteByte(' ')
		sb.WriteString(f.op.String())
		sb.WriteByte(' ')
		wrap(&sb, f.kids[1], prec(f.kids[1]) < p || (p == precTemporal && prec(f.kids[1]) == p))
	}
	return sb.String()
}

// Props returns the sorted names of the atoms of f.
func Props(f *Formula) []string {
	seen := make(map[string]bool)
	var rec func(g *Formula)
	rec = func(g *Formula) {
		if g.op == OpAtom {
			seen[g.name] = true
			return
		}
		for _, k := range g.kids {
			rec(k)
		}
	}
	rec(f)
	res := make([]string, 0, len(seen))
	for nm := range seen {
		res = append(res, nm)
	}
	sort.Strings(res)
	return res
}

// Substitute replaces every atom of f named in sub by its image.
func Substitute(f *Formula, sub map[string]*Formula) *Formula {
	switch f.op {
	case OpTrue, OpFalse:
		return f
	case OpAtom:
		if g, ok := sub[f.name]; ok {
			return g
		}
		return f
	}
	kids := make([]*Formula, len(f.kids))
	for i, k := range f.kids {
		kids[i] = Substitute(k, sub)
	}
	return rebuild(f.op, kids)
}

// rebuild constructs a formula with root op and operands kids through
// the simplifying constructors.
func rebuild(op Op, kids []*Formula) *Formula {
	switch op {
	case OpNot:
		return Not(kids[0])
	case OpAnd:
		return And(kids...)
	case OpOr:
		return Or(kids...)
	case OpImplies:
		return Implies(kids[0], kids[1])
	case OpEquiv:
		return Equiv(kids[0], kids[1])
	case OpNext:
		return X(kids[0])
	case OpStrongNext:
		return StrongX(kids[0])
	case OpGlobally:
		return G(kids[0])
	case OpEventually:
		return F(kids[0])
	case OpUntil:
		return U(kids[0], kids[1])
	case OpRelease:
		return R(kids[0], kids[1])
	case OpWeakUntil:
		return W(kids[0], kids[1])
	}
	panic("ltlf: rebuild of " + op.String())
}
