// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package domain

import (
	"fmt"

	"github.com/go-air/gini"
	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"

	"github.com/go-air/rims/bdd"
)

// CheckInvariants checks that the invariants of c are satisfiable, hold
// in the initial state and leave the agent a legal step from it.  The
// step is searched by a SAT solver over the action and reaction bits,
// with the initial state passed as assumptions.
func (c *Compiled) CheckInvariants() error {
	m := c.mgr
	inv := c.invariants
	if m.IsFalse(inv) {
		return fmt.Errorf("%w: invariants are unsatisfiable", ErrInvariants)
	}
	init := c.InitialState()
	vals := make([]bool, m.NumVars())
	for i, v := range c.fluents {
		vals[v] = init[i]
	}
	if !m.Eval(inv, vals) {
		return fmt.Errorf("%w: initial state %v", ErrInvariants, c.prob.Init)
	}

	trans := c.auto.Trans()
	sub := make(map[int]bdd.Node, len(c.fluents))
	for i, v := range c.fluents {
		sub[v] = trans[i]
	}
	step := m.And(c.legal,
		m.Not(trans[len(trans)-2]),
		m.Not(trans[len(trans)-1]),
		m.Compose(inv, sub))

	switch {
	case m.IsTrue(step):
		return nil
	case m.IsFalse(step):
		return fmt.Errorf("%w: no legal step keeps the invariants", ErrInvariants)
	}

	circ := logic.NewC()
	ins := make(map[int]z.Lit)
	root := m.Circuit(circ, func(v int) z.Lit {
		l := circ.Lit()
		ins[v] = l
		return l
	}, step)[0]
	g := gini.New()
	circ.ToCnfFrom(g, root)
	g.Add(root)
	g.Add(0)
	for _, v := range c.auto.StateVars() {
		l, ok := ins[v]
		if !ok {
			continue
		}
		if !vals[v] {
			l = l.Not()
		}
		g.Assume(l)
	}
	if g.Solve() != 1 {
		return fmt.Errorf("%w: no legal step from the initial state keeps the invariants", ErrInvariants)
	}
	return nil
}
