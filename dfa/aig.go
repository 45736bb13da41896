// Copyright 2018 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package dfa

import (
	"io"

	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/logic/aiger"
	"github.com/go-air/gini/z"

	"github.com/go-air/rims/bdd"
)

// ToAiger returns a sequential circuit for a.  Each state variable of a
// becomes a latch initialised from the initial state of a, every other
// variable in the support of the next state or final functions becomes
// an input, and the single output is the final state predicate.
func ToAiger(a *T) (*aiger.T, error) {
	m := a.mgr
	sys := logic.NewS()
	latch := make(map[int]z.Lit)
	vs := a.StateVars()
	for i, v := range vs {
		init := sys.F
		if a.initial[i] {
			init = sys.T
		}
		latch[v] = sys.Latch(init)
	}
	var inNames []string
	in := func(v int) z.Lit {
		if l, ok := latch[v]; ok {
			return l
		}
		inNames = append(inNames, m.Label(v))
		return sys.Lit()
	}
	roots := make([]bdd.Node, 0, len(a.trans)+1)
	roots = append(roots, a.trans...)
	roots = append(roots, a.final)
	outs := m.Circuit(&sys.C, in, roots...)
	for i, v := range vs {
		sys.SetNext(latch[v], outs[i])
	}
	res := aiger.MakeFor(sys, outs[len(vs)])
	for i, nm := range inNames {
		if err := res.NameInput(i, nm); err != nil {
			return nil, err
		}
	}
	for i, v := range vs {
		if err := res.NameLatch(i, m.Label(v)); err != nil {
			return nil, err
		}
	}
	if err := res.NameOutput(0, "final"); err != nil {
		return nil, err
	}
	return res, nil
}

// WriteAiger writes a to w in aiger format, binary if bin is set and
// ascii otherwise.
func WriteAiger(w io.Writer, a *T, bin bool) error {
	g, err := ToAiger(a)
	if err != nil {
		return err
	}
	if bin {
		return g.WriteBinary(w)
	}
	return g.WriteAscii(w)
}
