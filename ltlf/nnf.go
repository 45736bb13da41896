// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package ltlf

import "fmt"

// NNF returns the negation normal form of f: negations occur only
// directly above atoms, and -> and <-> are expanded.
//
// Weak until is rewritten as a W b = b R (a | b).  NNF returns an
// error wrapping ErrOperator on an operator it does not know.
func NNF(f *Formula) (*Formula, error) {
	switch f.op {
	case OpTrue, OpFalse, OpAtom:
		return f, nil
	case OpNot:
		return pushNot(f.kids[0])
	case OpImplies:
		return NNF(Or(Not(f.kids[0]), f.kids[1]))
	case OpEquiv:
		a, b := f.kids[0], f.kids[1]
		return NNF(And(Or(Not(a), b), Or(Not(b), a)))
	case OpWeakUntil:
		a, b := f.kids[0], f.kids[1]
		return NNF(R(b, Or(a, b)))
	}
	if !f.op.valid() {
		return nil, fmt.Errorf("%w: %d", ErrOperator, f.op)
	}
	kids := make([]*Formula, len(f.kids))
	for i, k := range f.kids {
		g, err := NNF(k)
		if err != nil {
			return nil, err
		}
		kids[i] = g
	}
	return rebuild(f.op, kids), nil
}

// pushNot returns the negation normal form of the negation of f.
func pushNot(f *Formula) (*Formula, error) {
	switch f.op {
	case OpTrue:
		return ffF, nil
	case OpFalse:
		return ttF, nil
	case OpAtom:
		return Not(f), nil
	case OpNot:
		return NNF(f.kids[0])
	case OpImplies:
		// !(a -> b) = a & !b
		return NNF(And(f.kids[0], Not(f.kids[1])))
	case OpEquiv:
		a, b := f.kids[0], f.kids[1]
		return NNF(Or(And(a, Not(b)), And(b, Not(a))))
	case OpWeakUntil:
		a, b := f.kids[0], f.kids[1]
		return NNF(U(Not(b), And(Not(a), Not(b))))
	}
	if !f.op.valid() {
		return nil, fmt.Errorf("%w: %d", ErrOperator, f.op)
	}
	kids := make([]*Formula, len(f.kids))
	for i, k := range f.kids {
		g, err := pushNot(k)
		if err != nil {
			return nil, err
		}
		kids[i] = g
	}
	switch f.op {
	case OpAnd:
		return Or(kids...), nil
	case OpOr:
		return And(kids...), nil
	case OpNext:
		return StrongX(kids[0]), nil
	case OpStrongNext:
		return X(kids[0]), nil
	case OpGlobally:
		return F(kids[0]), nil
	case OpEventually:
		return G(kids[0]), nil
	case OpUntil:
		return R(kids[0], kids[1]), nil
	case OpRelease:
		return U(kids[0], kids[1]), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrOperator, f.op)
}

// IsNNF returns whether negations in f occur only above atoms and f
// has no ->, <-> or W.
func IsNNF(f *Formula) bool {
	switch f.op {
	case OpNot:
		return f.kids[0].op == OpAtom
	case OpImplies, OpEquiv, OpWeakUntil:
		return false
	}
	for _, k := range f.kids {
		if !IsNNF(k) {
			return false
		}
	}
	return true
}
