// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package dfa

import (
	"errors"
	"fmt"

	"github.com/go-air/rims/bdd"
)

var (
	// ErrExplicit indicates a malformed explicit automaton.
	ErrExplicit = errors.New("dfa: malformed explicit automaton")
	// ErrWidth indicates a state vector whose length does not match the
	// state block of an automaton.
	ErrWidth = errors.New("dfa: state width mismatch")
	// ErrCompose indicates an invalid list of automata to compose.
	ErrCompose = errors.New("dfa: invalid composition")
)

// T is a symbolic automaton: a block of state variables, the initial
// valuation of the block, one next state function per state variable,
// and the predicate of final states.
//
// Apart from SetInitial, a T is not modified after creation.
type T struct {
	mgr     *bdd.Mgr
	id      bdd.AutomatonID
	initial []bool
	trans   []bdd.Node
	final   bdd.Node
}

// New creates a T over block id of m.
func New(m *bdd.Mgr, id bdd.AutomatonID, initial []bool, trans []bdd.Node, final bdd.Node) (*T, error) {
	w := len(m.StateVars(id))
	if len(initial) != w || len(trans) != w {
		return nil, fmt.Errorf("%w: block A%d has %d variables, got %d initial and %d transitions",
			ErrWidth, id, w, len(initial), len(trans))
	}
	return &T{
		mgr:     m,
		id:      id,
		initial: append([]bool(nil), initial...),
		trans:   append([]bdd.Node(nil), trans...),
		final:   final}, nil
}

func mustNew(m *bdd.Mgr, id bdd.AutomatonID, initial []bool, trans []bdd.Node, final bdd.Node) *T {
	a, err := New(m, id, initial, trans, final)
	if err != nil {
		panic(err)
	}
	return a
}

// Mgr returns the manager of a.
func (a *T) Mgr() *bdd.Mgr { return a.mgr }

// ID returns the state block of a.
func (a *T) ID() bdd.AutomatonID { return a.id }

// NumBits returns the number of state variables of a.
func (a *T) NumBits() int { return len(a.trans) }

// StateVars returns the state variables of a.
func (a *T) StateVars() []int { return a.mgr.StateVars(a.id) }

// Initial returns a copy of the initial state of a.
func (a *T) Initial() []bool { return append([]bool(nil), a.initial...) }

// Trans returns a copy of the next state functions of a.
func (a *T) Trans() []bdd.Node { return append([]bdd.Node(nil), a.trans...) }

// Next returns the next state function of the i'th state bit.
func (a *T) Next(i int) bdd.Node { return a.trans[i] }

// Final returns the final state predicate of a.
func (a *T) Final() bdd.Node { return a.final }

// SetInitial replaces the initial state of a.
func (a *T) SetInitial(bits []bool) error {
	if len(bits) != len(a.trans) {
		return fmt.Errorf("%w: A%d has %d bits, got %d", ErrWidth, a.id, len(a.trans), len(bits))
	}
	copy(a.initial, bits)
	return nil
}

// InitialCube returns the cube of the initial state over the state
// variables of a.
func (a *T) InitialCube() bdd.Node {
	return a.mgr.StateCube(a.id, a.initial)
}

// StateBits returns the number of bits needed to encode n states.
func StateBits(n int) int {
	b := 0
	for max := n - 1; max > 0; max >>= 1 {
		b++
	}
	return b
}

// StateToBinary encodes s on nbits bits, least significant bit first.
func StateToBinary(s, nbits int) []bool {
	res := make([]bool, nbits)
	for i := 0; i < nbits && s != 0; i++ {
		res[i] = s&1 == 1
		s >>= 1
	}
	return res
}

// StateToBDD returns the cube of the encoding of s over the state
// variables of a.
func (a *T) StateToBDD(s int) bdd.Node {
	return a.mgr.StateCube(a.id, StateToBinary(s, len(a.trans)))
}

// StateSetToBDD returns the disjunction of the cubes of ss.
func (a *T) StateSetToBDD(ss []int) bdd.Node {
	return stateSetToBDD(a.mgr, a.id, ss)
}

func stateSetToBDD(m *bdd.Mgr, id bdd.AutomatonID, ss []int) bdd.Node {
	w := len(m.StateVars(id))
	acc := m.False()
	for _, s := range ss {
		acc = m.Or(acc, m.StateCube(id, StateToBinary(s, w)))
	}
	return acc
}

// FromExplicit returns the symbolic form of e, allocating
// StateBits(e.NumStates()) fresh state variables.
func FromExplicit(e *Explicit) (*T, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	m := e.Mgr
	w := StateBits(e.NumStates())
	id := m.NewStateVars(w)
	trans := make([]bdd.Node, w)
	for i := range trans {
		trans[i] = m.False()
	}
	for s, es := range e.Edges {
		cube := m.StateCube(id, StateToBinary(s, w))
		for i := range trans {
			acc := m.False()
			for _, d := range es {
				if (d.To>>uint(i))&1 == 1 {
					acc = m.Or(acc, d.Guard)
				}
			}
			trans[i] = m.Or(trans[i], m.And(cube, acc))
		}
	}
	final := stateSetToBDD(m, id, e.Finals)
	return New(m, id, StateToBinary(e.Initial, w), trans, final)
}

// FromPredicates returns an automaton whose i'th state bit holds the
// value preds[i] had at the previous step.  All bits start false and
// all states are final.
func FromPredicates(m *bdd.Mgr, preds []bdd.Node) *T {
	id := m.NewStateVars(len(preds))
	return mustNew(m, id, make([]bool, len(preds)), preds, m.True())
}

// Negation returns an automaton accepting the complement of a, over a
// fresh block of state variables of the same width.
func Negation(a *T) *T {
	m := a.mgr
	id := m.NewStateVars(len(a.trans))
	fresh := m.StateVars(id)
	sub := make(map[int]bdd.Node, len(fresh))
	for i, v := range a.StateVars() {
		sub[v] = m.Var(fresh[i])
	}
	trans := make([]bdd.Node, len(a.trans))
	for i, t := range a.trans {
		trans[i] = m.Compose(t, sub)
	}
	final := m.Not(m.Compose(a.final, sub))
	return mustNew(m, id, a.initial, trans, final)
}

// Restriction returns an automaton sharing the state variables of a in
// which the states of invalid have no successors and are not final.
func (a *T) Restriction(invalid bdd.Node) *T {
	m := a.mgr
	id := m.CopyStateVars(a.id)
	valid := m.Not(invalid)
	trans := make([]bdd.Node, len(a.trans))
	for i, t := range a.trans {
		trans[i] = m.And(t, valid)
	}
	return mustNew(m, id, a.initial, trans, m.And(a.final, valid))
}

// Eval returns the successor of the state cur of a under the valuation
// vals.  cur overrides the values of the state variables of a in vals.
func (a *T) Eval(vals []bool, cur []bool) []bool {
	step := append([]bool(nil), vals...)
	for i, v := range a.StateVars() {
		for v >= len(step) {
			step = append(step, false)
		}
		step[v] = cur[i]
	}
	res := make([]bool, len(a.trans))
	for i, t := range a.trans {
		res[i] = a.mgr.Eval(t, step)
	}
	return res
}
