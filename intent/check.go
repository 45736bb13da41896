// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package intent

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/go-air/rims/dfa"
	"github.com/go-air/rims/game"
	"github.com/go-air/rims/ltlf"
)

// Check is the outcome of a realizability check of a candidate goal at
// a priority.
type Check struct {
	Candidate *Intention
	Priority  int
	// Realizable tells whether the candidate is realizable alone.
	Realizable bool
	// Compatible lists, in increasing order, the ids of the intentions
	// which are jointly realizable with the candidate.
	Compatible []int
	// MaxSet realizes the candidate and the compatible intentions.
	MaxSet game.MaxSet

	version uint64
}

// Weak tells whether the candidate can be adopted without dropping any
// intention.
func (c *Check) Weak(n int) bool {
	return c.Realizable && len(c.Compatible) == n
}

// Strong tells whether the candidate can be adopted, possibly dropping
// intentions of lower priority.
func (c *Check) Strong() bool {
	return c.Realizable && len(c.Compatible) >= c.Priority-1
}

func (c *Check) compatible(id int) bool {
	k := sort.SearchInts(c.Compatible, id)
	return k < len(c.Compatible) && c.Compatible[k] == id
}

// lift translates a goal into an intention whose automaton has read the
// current domain state.
func (m *Manager) lift(text string) (*Intention, error) {
	g, err := m.dom.ParseGoal(text)
	if err != nil {
		return nil, err
	}
	e, err := dfa.FromFormula(m.mgr, g)
	if err != nil {
		return nil, err
	}
	a, err := dfa.FromExplicit(e)
	if err != nil {
		return nil, err
	}
	m.syncVals()
	first := append([]bool(nil), m.vals...)
	for _, v := range m.dom.ActionBits() {
		first[v] = true
	}
	for _, v := range m.dom.ReactionBits() {
		first[v] = true
	}
	bits := a.Eval(first, a.Initial())
	if err := a.SetInitial(bits); err != nil {
		return nil, err
	}
	for i, v := range a.StateVars() {
		m.vals[v] = bits[i]
	}
	pr, err := ltlf.Progr(g, m.dom.Interp(first))
	if err != nil {
		return nil, err
	}
	return &Intention{
		Text:     text,
		Goal:     g,
		Progress: pr,
		auto:     a,
		next:     a.RecomposeThrough(m.dom.Automaton())}, nil
}

// IsRealizable checks whether text can be adopted at priority, between
// 1 and Len()+1.
func (m *Manager) IsRealizable(ctx context.Context, text string, priority int) (*Check, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.check(ctx, text, priority)
}

func (m *Manager) check(ctx context.Context, text string, priority int) (*Check, error) {
	is := m.snap.intentions
	n := len(is)
	if priority < 1 || priority > n+1 {
		return nil, fmt.Errorf("%w: %d not in 1..%d", ErrPriority, priority, n+1)
	}
	cand, err := m.lift(text)
	if err != nil {
		return nil, err
	}
	c := &Check{Candidate: cand, Priority: priority, version: m.version, MaxSet: game.Zero(m.mgr)}

	r, s, err := m.solve(ctx, []*dfa.T{cand.auto}, m.space(nil))
	if err != nil {
		return nil, err
	}
	if !r.Realizable {
		cand.strategy = m.mgr.False()
		m.log.Debug("candidate unrealizable", zap.String("goal", text))
		return c, nil
	}
	c.Realizable = true
	alone := s.MaxSet(r)
	cand.strategy = m.mgr.And(alone.Deferring, m.noErr())
	c.MaxSet = alone.Restrict(m.mgr, m.noErr())

	if priority > 1 {
		ms, ok, err := m.joint(ctx, is[:priority-1], cand)
		if err != nil {
			return nil, err
		}
		if !ok {
			c.MaxSet = game.Zero(m.mgr)
			m.log.Debug("candidate conflicts with higher priorities",
				zap.String("goal", text), zap.Int("priority", priority))
			return c, nil
		}
		c.MaxSet = ms
		for id := 1; id < priority; id++ {
			c.Compatible = append(c.Compatible, id)
		}
	}

	for id := priority; id <= n; id++ {
		with := make([]*Intention, 0, len(c.Compatible)+1)
		for _, k := range c.Compatible {
			with = append(with, is[k-1])
		}
		with = append(with, is[id-1])
		ms, ok, err := m.joint(ctx, with, cand)
		if err != nil {
			return nil, err
		}
		if ok {
			c.Compatible = append(c.Compatible, id)
			c.MaxSet = ms
		}
	}
	m.log.Debug("candidate checked",
		zap.String("goal", text),
		zap.Int("priority", priority),
		zap.Ints("compatible", c.Compatible))
	return c, nil
}

// joint solves the game of the intentions is together with the
// candidate.
func (m *Manager) joint(ctx context.Context, is []*Intention, cand *Intention) (game.MaxSet, bool, error) {
	r, s, err := m.solve(ctx, autos(is, cand.auto), m.space(is, cand.strategy))
	if err != nil || !r.Realizable {
		return game.MaxSet{}, false, err
	}
	return s.MaxSet(r).Restrict(m.mgr, m.noErr()), true, nil
}

// WeakAdopt adopts text at priority if it is jointly realizable with
// every intention.  It returns whether text was adopted.
func (m *Manager) WeakAdopt(ctx context.Context, text string, priority int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.adopt(ctx, text, priority, false, "weak")
}

// StrongAdopt adopts text at priority if it is jointly realizable with
// every intention of higher priority, dropping the intentions of lower
// priority conflicting with it.  It returns whether text was adopted.
func (m *Manager) StrongAdopt(ctx context.Context, text string, priority int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.adopt(ctx, text, priority, true, "strong")
}

// Adopt commits a check made by IsRealizable, strongly or weakly.  It
// fails with ErrStale if the intentions changed since the check.
func (m *Manager) Adopt(c *Check, strong bool) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.version != m.version {
		return false, ErrStale
	}
	kind := "weak"
	if strong {
		kind = "strong"
	}
	return m.commit(c, strong, kind), nil
}

func (m *Manager) adopt(ctx context.Context, text string, priority int, strong bool, kind string) (bool, error) {
	c, err := m.check(ctx, text, priority)
	if err != nil {
		return false, err
	}
	return m.commit(c, strong, kind), nil
}

func (m *Manager) commit(c *Check, strong bool, kind string) bool {
	is := m.snap.intentions
	ok := c.Weak(len(is))
	if strong {
		ok = c.Strong()
	}
	if m.obs != nil {
		m.obs.ObserveAdoption(kind, ok)
	}
	if !ok {
		m.log.Info("goal not adopted",
			zap.String("kind", kind),
			zap.String("goal", c.Candidate.Text),
			zap.Int("priority", c.Priority),
			zap.Ints("compatible", c.Compatible))
		return false
	}
	p := c.Priority
	nis := make([]*Intention, 0, len(is)+1)
	nis = append(nis, is[:p-1]...)
	nis = append(nis, c.Candidate)
	nis = append(nis, is[p-1:]...)
	var dropped []int
	if strong {
		for i := len(nis); i > p; i-- {
			if !c.compatible(i - 1) {
				nis = append(nis[:i-1], nis[i:]...)
				dropped = append(dropped, i-1)
			}
		}
	}
	m.snap = snapshot{intentions: nis, maxSet: c.MaxSet}
	m.version++
	m.log.Info("goal adopted",
		zap.String("kind", kind),
		zap.String("goal", c.Candidate.Text),
		zap.Int("priority", p),
		zap.Ints("dropped", dropped))
	return true
}

// Drop removes the intentions with the given ids and recomputes the
// strategy of the remaining ones.
func (m *Manager) Drop(ctx context.Context, ids ...int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	is := m.snap.intentions
	seen := make(map[int]bool, len(ids))
	var ds []int
	for _, id := range ids {
		if id < 1 || id > len(is) {
			return fmt.Errorf("%w: %d not in 1..%d", ErrID, id, len(is))
		}
		if !seen[id] {
			seen[id] = true
			ds = append(ds, id)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(ds)))
	nis := append([]*Intention(nil), is...)
	for _, id := range ds {
		nis = append(nis[:id-1], nis[id:]...)
	}
	ms, err := m.solveSet(ctx, nis, nil)
	if err != nil {
		return err
	}
	m.snap = snapshot{intentions: nis, maxSet: ms}
	m.version++
	if m.obs != nil {
		m.obs.ObserveDrop(len(ds))
	}
	m.log.Info("intentions dropped", zap.Ints("ids", ds), zap.Int("remaining", len(nis)))
	return nil
}
