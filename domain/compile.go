// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package domain

import (
	"fmt"
	"sort"

	"github.com/go-air/rims/bdd"
	"github.com/go-air/rims/dfa"
	"github.com/go-air/rims/ltlf"
)

// Compiled is a domain compiled into a symbolic automaton over a
// variable pool.
//
// The state block of the automaton holds the fluents in declaration
// order followed by the agent and environment error flags.  The agent
// chooses an action by setting the action bits to its index, least
// significant bit first, and the environment answers by setting the
// reaction bits to the index of an effect.
type Compiled struct {
	dom  *Domain
	prob *Problem
	mgr  *bdd.Mgr
	auto *dfa.T

	fluents   []int
	fluentIdx map[string]int
	actionIdx map[string]int
	actBits   []int
	rctBits   []int
	agErr     int
	envErr    int

	actions    []bdd.Node
	invariants bdd.Node
	legal      bdd.Node
}

// Compile validates d and p and compiles d into a fresh block of m.  m
// should not hold other domains.
func Compile(m *bdd.Mgr, d *Domain, p *Problem) (*Compiled, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if err := p.Validate(d); err != nil {
		return nil, err
	}
	c := &Compiled{
		dom:       d,
		prob:      p,
		mgr:       m,
		fluentIdx: make(map[string]int, len(d.Fluents)),
		actionIdx: make(map[string]int, len(d.Actions))}
	names := append(append([]string(nil), d.Fluents...), agErrName, envErrName)
	id := m.NewNamedStateVars(names...)
	vs := m.StateVars(id)
	c.fluents = vs[:len(d.Fluents)]
	c.agErr, c.envErr = vs[len(vs)-2], vs[len(vs)-1]
	for i, f := range d.Fluents {
		c.fluentIdx[f] = i
	}

	maxEff := 0
	for i, a := range d.Actions {
		c.actionIdx[a.Name] = i
		if len(a.Effects) > maxEff {
			maxEff = len(a.Effects)
		}
	}
	c.actBits = m.NewNamed(bitNames("act", bitWidth(len(d.Actions)))...)
	c.rctBits = m.NewNamed(bitNames("rct", bitWidth(maxEff))...)
	m.AddOutputs(c.actBits...)
	m.AddInputs(c.rctBits...)

	c.actions = make([]bdd.Node, len(d.Actions))
	for i := range d.Actions {
		c.actions[i] = c.ActionCube(i)
	}
	c.invariants = m.True()
	for _, s := range d.Invariants {
		n, err := c.propString(s)
		if err != nil {
			return nil, err
		}
		c.invariants = m.And(c.invariants, n)
	}
	trans, err := c.transitions()
	if err != nil {
		return nil, err
	}
	c.auto, err = dfa.New(m, id, c.InitialState(), trans, m.True())
	if err != nil {
		return nil, err
	}
	return c, nil
}

func bitWidth(n int) int {
	if w := dfa.StateBits(n); w > 0 {
		return w
	}
	return 1
}

func bitNames(pfx string, n int) []string {
	res := make([]string, n)
	for i := range res {
		res[i] = fmt.Sprintf("%s_%d", pfx, i)
	}
	return res
}

func (c *Compiled) transitions() ([]bdd.Node, error) {
	m := c.mgr
	d := c.dom
	ag, env := m.Var(c.agErr), m.Var(c.envErr)

	legal := m.False()
	envOK := m.False()
	pres := make([]bdd.Node, len(d.Actions))
	for i, a := range d.Actions {
		pre := m.True()
		if a.Pre != "" {
			n, err := c.propString(a.Pre)
			if err != nil {
				return nil, err
			}
			pre = n
		}
		pres[i] = pre
		legal = m.Or(legal, m.And(c.actions[i], pre))
		rs := m.False()
		for j := range a.Effects {
			rs = m.Or(rs, c.ReactionCube(j))
		}
		envOK = m.Or(envOK, m.And(c.actions[i], rs))
	}
	c.legal = legal

	ok := m.And(m.Not(ag), m.Not(env), legal, envOK)
	res := make([]bdd.Node, 0, len(c.fluents)+2)
	for k, v := range c.fluents {
		f := d.Fluents[k]
		cur := m.Var(v)
		eff := m.False()
		for i, a := range d.Actions {
			for j, e := range a.Effects {
				val := cur
				switch {
				case contains(e.Add, f):
					val = m.True()
				case contains(e.Del, f):
					val = m.False()
				}
				eff = m.Or(eff, m.And(c.actions[i], c.ReactionCube(j), val))
			}
		}
		res = append(res, m.Ite(ok, eff, cur))
	}
	res = append(res,
		m.Or(ag, m.And(m.Not(env), m.Not(legal))),
		m.Or(env, m.And(m.Not(ag), legal, m.Not(envOK))))
	return res, nil
}

func contains(ss []string, s string) bool {
	for _, t := range ss {
		if t == s {
			return true
		}
	}
	return false
}

// Automaton returns the domain automaton.
func (c *Compiled) Automaton() *dfa.T { return c.auto }

// Mgr returns the variable pool of c.
func (c *Compiled) Mgr() *bdd.Mgr { return c.mgr }

// Domain returns the source description of c.
func (c *Compiled) Domain() *Domain { return c.dom }

// Problem returns the problem c was compiled for.
func (c *Compiled) Problem() *Problem { return c.prob }

// Fluents returns the fluent names in declaration order.
func (c *Compiled) Fluents() []string { return append([]string(nil), c.dom.Fluents...) }

// FluentVars returns the fluent variables in declaration order.
func (c *Compiled) FluentVars() []int { return append([]int(nil), c.fluents...) }

// NumActions returns the number of actions.
func (c *Compiled) NumActions() int { return len(c.dom.Actions) }

// ActionName returns the name of action i.
func (c *Compiled) ActionName(i int) string { return c.dom.Actions[i].Name }

// Actions returns the action names by index.
func (c *Compiled) Actions() []string {
	res := make([]string, len(c.dom.Actions))
	for i, a := range c.dom.Actions {
		res[i] = a.Name
	}
	return res
}

// ActionID returns the index of the action named nm.
func (c *Compiled) ActionID(nm string) (int, bool) {
	i, ok := c.actionIdx[nm]
	return i, ok
}

// NumEffects returns the number of outcomes of action i.
func (c *Compiled) NumEffects(i int) int { return len(c.dom.Actions[i].Effects) }

// ActionBits returns the agent controlled variables.
func (c *Compiled) ActionBits() []int { return append([]int(nil), c.actBits...) }

// ReactionBits returns the environment controlled variables.
func (c *Compiled) ReactionBits() []int { return append([]int(nil), c.rctBits...) }

// AgErr returns the agent error variable.
func (c *Compiled) AgErr() int { return c.agErr }

// EnvErr returns the environment error variable.
func (c *Compiled) EnvErr() int { return c.envErr }

// Invariants returns the conjunction of the domain invariants.
func (c *Compiled) Invariants() bdd.Node { return c.invariants }

// AgentErrorNext returns the next state function of the agent error
// flag.
func (c *Compiled) AgentErrorNext() bdd.Node {
	return c.auto.Next(c.auto.NumBits() - 2)
}

// ActionValues returns the values of the action bits encoding i.
func (c *Compiled) ActionValues(i int) []bool {
	return dfa.StateToBinary(i, len(c.actBits))
}

// ReactionValues returns the values of the reaction bits encoding j.
func (c *Compiled) ReactionValues(j int) []bool {
	return dfa.StateToBinary(j, len(c.rctBits))
}

// ActionCube returns the cube of the action bits encoding i.
func (c *Compiled) ActionCube(i int) bdd.Node {
	return c.mgr.Cube(c.actBits, c.ActionValues(i))
}

// ReactionCube returns the cube of the reaction bits encoding j.
func (c *Compiled) ReactionCube(j int) bdd.Node {
	return c.mgr.Cube(c.rctBits, c.ReactionValues(j))
}

// ActionFormula returns the formula over action bits encoding i, e.g.
// "act_0 & !act_1".
func (c *Compiled) ActionFormula(i int) *ltlf.Formula {
	vals := c.ActionValues(i)
	lits := make([]*ltlf.Formula, len(vals))
	for k, v := range vals {
		a := ltlf.Atom(c.mgr.Label(c.actBits[k]))
		if !v {
			a = ltlf.Not(a)
		}
		lits[k] = a
	}
	return ltlf.And(lits...)
}

// InitialState returns the initial valuation of the state block.
func (c *Compiled) InitialState() []bool {
	res := make([]bool, len(c.fluents)+2)
	for _, f := range c.prob.Init {
		res[c.fluentIdx[f]] = true
	}
	return res
}

// TrueFluents returns the names of the fluents true in vals, a
// valuation indexed by variable, in declaration order.
func (c *Compiled) TrueFluents(vals []bool) []string {
	var res []string
	for i, v := range c.fluents {
		if v < len(vals) && vals[v] {
			res = append(res, c.dom.Fluents[i])
		}
	}
	return res
}

// Interp returns the interpretation of the fluents and action bits in
// vals.
func (c *Compiled) Interp(vals []bool) ltlf.Interp {
	res := make(ltlf.Interp, len(c.fluents)+len(c.actBits))
	for i, v := range c.fluents {
		res[c.dom.Fluents[i]] = vals[v]
	}
	for _, v := range c.actBits {
		res[c.mgr.Label(v)] = vals[v]
	}
	return res
}

// Rewrite replaces action names in f by their bit formulas.  Every other
// atom must be a fluent or an action bit, otherwise Rewrite returns an
// error wrapping ErrVocabulary.
func (c *Compiled) Rewrite(f *ltlf.Formula) (*ltlf.Formula, error) {
	sub := make(map[string]*ltlf.Formula)
	bits := make(map[string]bool, len(c.actBits))
	for _, v := range c.actBits {
		bits[c.mgr.Label(v)] = true
	}
	var unknown []string
	for _, p := range ltlf.Props(f) {
		if i, ok := c.actionIdx[p]; ok {
			sub[p] = c.ActionFormula(i)
			continue
		}
		if _, ok := c.fluentIdx[p]; ok || bits[p] {
			continue
		}
		unknown = append(unknown, p)
	}
	if len(unknown) != 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("%w: %v in %s", ErrVocabulary, unknown, f)
	}
	if len(sub) == 0 {
		return f, nil
	}
	return ltlf.Substitute(f, sub), nil
}

// ParseGoal parses and rewrites s.
func (c *Compiled) ParseGoal(s string) (*ltlf.Formula, error) {
	f, err := ltlf.Parse(s)
	if err != nil {
		return nil, err
	}
	return c.Rewrite(f)
}

func (c *Compiled) propString(s string) (bdd.Node, error) {
	f, err := ltlf.Parse(s)
	if err != nil {
		return c.mgr.False(), err
	}
	return c.Prop(f)
}

// Prop returns the Boolean function of the propositional formula f over
// fluents and action bits.
func (c *Compiled) Prop(f *ltlf.Formula) (bdd.Node, error) {
	m := c.mgr
	switch f.Op() {
	case ltlf.OpTrue:
		return m.True(), nil
	case ltlf.OpFalse:
		return m.False(), nil
	case ltlf.OpAtom:
		if i, ok := c.actionIdx[f.Name()]; ok {
			return c.actions[i], nil
		}
		if i, ok := c.fluentIdx[f.Name()]; ok {
			return m.Var(c.fluents[i]), nil
		}
		for _, v := range c.actBits {
			if m.Label(v) == f.Name() {
				return m.Var(v), nil
			}
		}
		return m.False(), fmt.Errorf("%w: %q", ErrVocabulary, f.Name())
	}
	kids := make([]bdd.Node, f.Len())
	for i := range kids {
		n, err := c.Prop(f.Kid(i))
		if err != nil {
			return m.False(), err
		}
		kids[i] = n
	}
	switch f.Op() {
	case ltlf.OpNot:
		return m.Not(kids[0]), nil
	case ltlf.OpAnd:
		return m.And(kids...), nil
	case ltlf.OpOr:
		return m.Or(kids...), nil
	case ltlf.OpImplies:
		return m.Implies(kids[0], kids[1]), nil
	case ltlf.OpEquiv:
		return m.Equiv(kids[0], kids[1]), nil
	}
	return m.False(), fmt.Errorf("%w: %s is temporal", ErrDomain, f)
}
