// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package intent

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/go-air/rims/bdd"
	"github.com/go-air/rims/dfa"
	"github.com/go-air/rims/game"
	"github.com/go-air/rims/ltlf"
)

// ReactionSource gives the environment's answer to an executed action.
type ReactionSource interface {
	Reaction(ctx context.Context, action int) (int, error)
}

// ReactionFunc adapts a function to a ReactionSource.
type ReactionFunc func(ctx context.Context, action int) (int, error)

// Reaction calls f.
func (f ReactionFunc) Reaction(ctx context.Context, action int) (int, error) {
	return f(ctx, action)
}

// Step describes an executed action.
type Step struct {
	Action   int
	Reaction int
	// State lists the fluents true after the step.
	State []string
}

// Status describes whether the current state is final.
type Status struct {
	Final      bool
	AgentError bool
	EnvError   bool
}

func (m *Manager) checkAction(id int) error {
	if id < 0 || id >= m.dom.NumActions() {
		return fmt.Errorf("%w: %d not in 0..%d", ErrAction, id, m.dom.NumActions()-1)
	}
	return nil
}

// withAction returns the valuation with the action bits set to id.
func (m *Manager) withAction(id int) []bool {
	m.syncVals()
	vals := append([]bool(nil), m.vals...)
	bits := m.dom.ActionValues(id)
	for k, v := range m.dom.ActionBits() {
		vals[v] = bits[k]
	}
	return vals
}

// DoAction executes action id, which must be winning, reading the
// environment's answer from src.  Every automaton and formula is moved
// to the successor state.
func (m *Manager) DoAction(ctx context.Context, id int, src ReactionSource) (Step, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkAction(id); err != nil {
		return Step{}, err
	}
	vals := m.withAction(id)
	if !m.mgr.Eval(m.snap.maxSet.Deferring, vals) {
		return Step{}, fmt.Errorf("%w: %s", ErrNotWinning, m.dom.ActionName(id))
	}
	rct, err := src.Reaction(ctx, id)
	if err != nil {
		return Step{}, err
	}
	rbits := m.dom.ReactionBits()
	if rct < 0 || rct >= 1<<uint(len(rbits)) {
		return Step{}, fmt.Errorf("%w: %d", ErrReaction, rct)
	}
	for k, v := range rbits {
		vals[v] = m.dom.ReactionValues(rct)[k]
	}

	d := m.dom.Automaton()
	type update struct {
		a    *dfa.T
		bits []bool
	}
	ups := []update{{d, eval(m.mgr, d.Trans(), vals)}}
	for _, i := range m.snap.intentions {
		ups = append(ups, update{i.auto, eval(m.mgr, i.next, vals)})
	}
	for _, u := range ups {
		for k, v := range u.a.StateVars() {
			vals[v] = u.bits[k]
		}
	}
	interp := m.dom.Interp(vals)
	progs := make([]ltlf.Progression, len(m.snap.intentions))
	for k, i := range m.snap.intentions {
		pr, err := ltlf.Progr(i.Progress.Obligation, interp)
		if err != nil {
			return Step{}, err
		}
		progs[k] = pr
	}
	for _, u := range ups {
		if err := u.a.SetInitial(u.bits); err != nil {
			return Step{}, err
		}
	}
	for k, i := range m.snap.intentions {
		i.Progress = progs[k]
	}
	m.vals = vals
	m.version++
	if m.obs != nil {
		m.obs.ObserveAction()
	}
	st := Step{Action: id, Reaction: rct, State: m.dom.TrueFluents(vals)}
	m.log.Info("action executed",
		zap.String("action", m.dom.ActionName(id)),
		zap.Int("reaction", rct),
		zap.Strings("state", st.State))
	return st, nil
}

func eval(m *bdd.Mgr, fns []bdd.Node, vals []bool) []bool {
	res := make([]bool, len(fns))
	for i, f := range fns {
		res[i] = m.Eval(f, vals)
	}
	return res
}

// IsWinning tells whether action id keeps every intention realizable.
func (m *Manager) IsWinning(id int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkAction(id); err != nil {
		return false, err
	}
	return m.mgr.Eval(m.snap.maxSet.Deferring, m.withAction(id)), nil
}

// IsCertainlyProgressing tells whether action id makes progress towards
// every intention.
func (m *Manager) IsCertainlyProgressing(id int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkAction(id); err != nil {
		return false, err
	}
	return m.mgr.Eval(m.snap.maxSet.Nondeferring, m.withAction(id)), nil
}

func (m *Manager) actionsIn(n bdd.Node) []int {
	var res []int
	for id := 0; id < m.dom.NumActions(); id++ {
		if m.mgr.Eval(n, m.withAction(id)) {
			res = append(res, id)
		}
	}
	return res
}

// WinningActions returns the ids of the winning actions.
func (m *Manager) WinningActions() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.actionsIn(m.snap.maxSet.Deferring)
}

// ProgressingActions returns the ids of the certainly progressing
// actions.
func (m *Manager) ProgressingActions() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.actionsIn(m.snap.maxSet.Nondeferring)
}

// IsFinal tells whether every intention is satisfied in the current
// state, and whether an error flag is set.
func (m *Manager) IsFinal() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.syncVals()
	vals := append([]bool(nil), m.vals...)
	for _, v := range m.dom.ActionBits() {
		vals[v] = true
	}
	for _, v := range m.dom.ReactionBits() {
		vals[v] = true
	}
	fin := m.mgr.True()
	for _, i := range m.snap.intentions {
		fin = m.mgr.And(fin, i.auto.Final())
	}
	return Status{
		Final:      m.mgr.Eval(fin, vals),
		AgentError: vals[m.dom.AgErr()],
		EnvError:   vals[m.dom.EnvErr()]}
}

// DomainState returns the fluents true in the current state.
func (m *Manager) DomainState() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dom.TrueFluents(m.vals)
}

// Len returns the number of intentions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.snap.intentions)
}

// Intentions returns the progressed intentions by priority.
func (m *Manager) Intentions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	res := make([]string, len(m.snap.intentions))
	for k, i := range m.snap.intentions {
		res[k] = i.String()
	}
	return res
}

// Intention returns a copy of intention k, counted from 1.
func (m *Manager) Intention(k int) (*Intention, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if k < 1 || k > len(m.snap.intentions) {
		return nil, fmt.Errorf("%w: %d not in 1..%d", ErrID, k, len(m.snap.intentions))
	}
	i := *m.snap.intentions[k-1]
	return &i, nil
}

// Actions returns the action names by id.
func (m *Manager) Actions() []string { return m.dom.Actions() }

// MaxSet returns the current strategy.
func (m *Manager) MaxSet() game.MaxSet {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap.maxSet
}

// AdoptionTimes returns the time spent on each goal given to New.
func (m *Manager) AdoptionTimes() []time.Duration {
	return append([]time.Duration(nil), m.adoption...)
}

// Arena returns the composition of the domain with every intention.
func (m *Manager) Arena() (*dfa.T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return dfa.DomainCompose(append([]*dfa.T{m.dom.Automaton()}, autos(m.snap.intentions)...)...)
}
