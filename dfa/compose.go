// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package dfa

import (
	"fmt"

	"github.com/go-air/rims/bdd"
)

// Product returns the synchronous product of as.  The state blocks and
// the next state functions are concatenated and the product is final
// when every component is final.
func Product(as ...*T) (*T, error) {
	if len(as) == 0 {
		return nil, fmt.Errorf("%w: empty product", ErrCompose)
	}
	m := as[0].mgr
	ids := make([]bdd.AutomatonID, len(as))
	var initial []bool
	var trans []bdd.Node
	final := m.True()
	for i, a := range as {
		if a.mgr != m {
			return nil, fmt.Errorf("%w: automaton %d has another manager", ErrCompose, i)
		}
		ids[i] = a.id
		initial = append(initial, a.initial...)
		trans = append(trans, a.trans...)
		final = m.And(final, a.final)
	}
	return New(m, m.ProductStateVars(ids...), initial, trans, final)
}

// DomainCompose composes the domain automaton as[0] with the goal
// automata as[1:].  The domain transitions are kept, the goal
// transitions are recomposed through the domain's next state functions
// so that goals read the successor domain state.  The composition is
// final when the agent made no error and either the environment did or
// every goal is final.
//
// The last two state variables of the domain must be the agent error
// and the environment error flags, in that order.
func DomainCompose(as ...*T) (*T, error) {
	if len(as) == 0 {
		return nil, fmt.Errorf("%w: empty domain composition", ErrCompose)
	}
	d := as[0]
	m := d.mgr
	if len(d.trans) < 2 {
		return nil, fmt.Errorf("%w: first automaton has no error flags", ErrCompose)
	}
	sub := m.ComposeVector(d.id, d.trans)
	ids := make([]bdd.AutomatonID, len(as))
	initial := append([]bool(nil), d.initial...)
	trans := append([]bdd.Node(nil), d.trans...)
	goals := m.True()
	ids[0] = d.id
	for i, a := range as[1:] {
		if a.mgr != m {
			return nil, fmt.Errorf("%w: automaton %d has another manager", ErrCompose, i+1)
		}
		ids[i+1] = a.id
		initial = append(initial, a.initial...)
		for _, t := range a.trans {
			trans = append(trans, m.Compose(t, sub))
		}
		goals = m.And(goals, a.final)
	}
	ag, env := d.ErrorVars()
	final := m.And(m.NVar(ag), m.Or(m.Var(env), goals))
	return New(m, m.ProductStateVars(ids...), initial, trans, final)
}

// ErrorVars returns the agent and environment error variables of a
// domain automaton, the last two state variables of its block.
func (a *T) ErrorVars() (ag, env int) {
	vs := a.StateVars()
	return vs[len(vs)-2], vs[len(vs)-1]
}

// RecomposeThrough returns the next state functions of a, recomposed
// through the next state functions of the domain automaton d.
func (a *T) RecomposeThrough(d *T) []bdd.Node {
	m := a.mgr
	sub := m.ComposeVector(d.id, d.trans)
	res := make([]bdd.Node, len(a.trans))
	for i, t := range a.trans {
		res[i] = m.Compose(t, sub)
	}
	return res
}
