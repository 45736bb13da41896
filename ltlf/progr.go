// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package ltlf

import (
	"errors"
	"fmt"
)

// ErrInterp is returned, wrapped, when an interpretation has no value
// for an atom of the progressed formula.
var ErrInterp = errors.New("ltlf: atom without value")

// Interp gives the truth values of atoms at one step of a trace.
type Interp map[string]bool

// Progression is the result of progressing a formula through one step.
type Progression struct {
	// Obligation is what remains to be satisfied by the rest of the
	// trace when the trace continues.
	Obligation *Formula
	// HoldsOnLast tells whether the trace may end here.
	HoldsOnLast bool
}

// ProgrLast returns the value of f on the empty remainder of a trace,
// that is when the last step has been consumed.  The result is always
// True() or False().
func ProgrLast(f *Formula) (*Formula, error) {
	switch f.op {
	case OpTrue, OpFalse:
		return f, nil
	case OpAtom:
		return ffF, nil
	case OpNot:
		if f.kids[0].op == OpAtom {
			return ffF, nil
		}
		g, err := pushNot(f.kids[0])
		if err != nil {
			return nil, err
		}
		return ProgrLast(g)
	case OpNext, OpGlobally, OpRelease, OpWeakUntil:
		return ttF, nil
	case OpStrongNext, OpEventually, OpUntil:
		return ffF, nil
	case OpAnd, OpOr:
		kids := make([]*Formula, len(f.kids))
		for i, k := range f.kids {
			g, err := ProgrLast(k)
			if err != nil {
				return nil, err
			}
			kids[i] = g
		}
		return rebuild(f.op, kids), nil
	case OpImplies:
		return ProgrLast(Or(Not(f.kids[0]), f.kids[1]))
	case OpEquiv:
		a, b := f.kids[0], f.kids[1]
		return ProgrLast(And(Or(Not(a), b), Or(Not(b), a)))
	}
	return nil, fmt.Errorf("%w: %d", ErrOperator, f.op)
}

// ProgrNotLast progresses f through a step with atom values m, when the
// step is not the last one.
func ProgrNotLast(f *Formula, m Interp) (*Formula, error) {
	switch f.op {
	case OpTrue, OpFalse:
		return f, nil
	case OpAtom:
		v, ok := m[f.name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrInterp, f.name)
		}
		return Const(v), nil
	case OpNot:
		a, err := ProgrNotLast(f.kids[0], m)
		if err != nil {
			return nil, err
		}
		return Not(a), nil
	case OpNext, OpStrongNext:
		return f.kids[0], nil
	case OpAnd, OpOr:
		kids := make([]*Formula, len(f.kids))
		for i, k := range f.kids {
			g, err := ProgrNotLast(k, m)
			if err != nil {
				return nil, err
			}
			kids[i] = g
		}
		return rebuild(f.op, kids), nil
	case OpImplies:
		return ProgrNotLast(Or(Not(f.kids[0]), f.kids[1]), m)
	case OpEquiv:
		a, b := f.kids[0], f.kids[1]
		return ProgrNotLast(And(Implies(a, b), Implies(b, a)), m)
	case OpGlobally:
		a, err := ProgrNotLast(f.kids[0], m)
		if err != nil {
			return nil, err
		}
		return And(a, f), nil
	case OpEventually:
		a, err := ProgrNotLast(f.kids[0], m)
		if err != nil {
			return nil, err
		}
		return Or(a, f), nil
	case OpUntil, OpRelease, OpWeakUntil:
		a, err := ProgrNotLast(f.kids[0], m)
		if err != nil {
			return nil, err
		}
		b, err := ProgrNotLast(f.kids[1], m)
		if err != nil {
			return nil, err
		}
		if f.op == OpRelease {
			return And(b, Or(a, f)), nil
		}
		return Or(b, And(a, f)), nil
	}
	return nil, fmt.Errorf("%w: %d", ErrOperator, f.op)
}

// Progr progresses f through a step with atom values m.
func Progr(f *Formula, m Interp) (Progression, error) {
	g, err := ProgrNotLast(f, m)
	if err != nil {
		return Progression{}, err
	}
	last, err := ProgrLast(g)
	if err != nil {
		return Progression{}, err
	}
	return Progression{Obligation: g, HoldsOnLast: last.IsTrue()}, nil
}

// Start returns the progression of f before any step.
func Start(f *Formula) (Progression, error) {
	last, err := ProgrLast(f)
	if err != nil {
		return Progression{}, err
	}
	return Progression{Obligation: f, HoldsOnLast: last.IsTrue()}, nil
}
