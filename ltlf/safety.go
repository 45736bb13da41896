// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package ltlf

// IsSafety returns whether the negation normal form f lies in the
// syntactic safety fragment: only literals, constants, &, |, X, G, R
// and W.
func IsSafety(f *Formula) bool {
	switch f.op {
	case OpTrue, OpFalse, OpAtom:
		return true
	case OpNot:
		return f.kids[0].op == OpAtom
	case OpAnd, OpOr, OpNext, OpGlobally, OpRelease, OpWeakUntil:
		for _, k := range f.kids {
			if !IsSafety(k) {
				return false
			}
		}
		return true
	}
	return false
}

// Decompose returns the negation normal form of the negation of each
// top-level conjunct of f.
func Decompose(f *Formula) ([]*Formula, error) {
	cs := []*Formula{f}
	if f.op == OpAnd {
		cs = f.kids
	}
	res := make([]*Formula, len(cs))
	for i, c := range cs {
		g, err := pushNot(c)
		if err != nil {
			return nil, err
		}
		res[i] = g
	}
	return res, nil
}
