// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package game

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/go-air/rims/bdd"
	"github.com/go-air/rims/dfa"
	"github.com/go-air/rims/ltlf"
)

// arena builds the composition of a one-fluent domain with the goal F f.
// If blockable, the environment can prevent f from becoming true.
func arena(t *testing.T, blockable bool) (*bdd.Mgr, *dfa.T) {
	t.Helper()
	m, err := bdd.New(bdd.NodeSize(1000), bdd.CacheSize(100))
	require.NoError(t, err)
	id := m.NewNamedStateVars("f", "ag_err", "env_err")
	vs := m.StateVars(id)
	act := m.NewNamed("act_0")[0]
	rct := m.NewNamed("rct_0")[0]
	m.AddOutputs(act)
	m.AddInputs(rct)
	move := m.Var(act)
	if blockable {
		move = m.And(move, m.Var(rct))
	}
	d, err := dfa.New(m, id, []bool{false, false, false},
		[]bdd.Node{m.Or(m.Var(vs[0]), move), m.Var(vs[1]), m.Var(vs[2])}, m.True())
	require.NoError(t, err)
	e, err := dfa.FromFormula(m, ltlf.MustParse("F f"))
	require.NoError(t, err)
	g, err := dfa.FromExplicit(e)
	require.NoError(t, err)
	a, err := dfa.DomainCompose(d, g)
	require.NoError(t, err)
	return m, a
}

type recorder struct {
	iters []int
	ws    []bdd.Node
}

func (r *recorder) ObserveIteration(i int, w bdd.Node) {
	r.ws = append(r.ws, w)
}

func (r *recorder) ObserveSynthesis(iterations int, d time.Duration, realizable bool) {
	r.iters = append(r.iters, iterations)
}

func TestRealizable(t *testing.T) {
	m, a := arena(t, false)
	obs := &recorder{}
	s, err := New(a, Agent, Agent, a.Final(), m.True(),
		WithLogger(zaptest.NewLogger(t)), WithObserver(obs))
	require.NoError(t, err)
	r, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, r.Realizable)
	assert.Equal(t, 2, r.Iterations)
	assert.Equal(t, []int{2}, obs.iters)

	ag, _ := m.Named("ag_err")
	assert.True(t, m.Equal(r.WinningStates, m.NVar(ag)))
	assert.True(t, m.IsTrue(m.Implies(r.WinningMoves, r.WinningStates)))

	ms := s.MaxSet(r)
	assert.True(t, m.IsTrue(m.Implies(ms.Nondeferring, ms.Deferring)))
	act, _ := m.Named("act_0")
	// from the initial state, setting the action bit makes progress
	vals := make([]bool, m.NumVars())
	vals[act] = true
	assert.True(t, m.Eval(ms.Nondeferring, vals))
	assert.True(t, m.Eval(ms.Deferring, vals))
	vals[act] = false
	assert.False(t, m.Eval(ms.Nondeferring, vals))
	assert.True(t, m.Eval(ms.Deferring, vals))
}

func TestUnrealizable(t *testing.T) {
	m, a := arena(t, true)
	s, err := New(a, Agent, Agent, a.Final(), m.True())
	require.NoError(t, err)
	r, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.False(t, r.Realizable)
	ms := s.MaxSet(r)
	assert.True(t, m.IsTrue(m.Implies(ms.Nondeferring, ms.Deferring)))
}

func TestMonotone(t *testing.T) {
	for _, blockable := range []bool{false, true} {
		m, a := arena(t, blockable)
		obs := &recorder{}
		s, err := New(a, Agent, Agent, a.Final(), m.True(), WithObserver(obs))
		require.NoError(t, err)
		r, err := s.Run(context.Background())
		require.NoError(t, err)
		require.Len(t, obs.ws, r.Iterations)
		assert.LessOrEqual(t, r.Iterations, 1<<len(a.StateVars()))
		w := a.Final()
		for i, nw := range obs.ws {
			assert.True(t, m.IsTrue(m.Implies(w, nw)), "iteration %d", i+1)
			w = nw
		}
		assert.True(t, m.Equal(w, r.WinningStates))
	}
}

func TestBudget(t *testing.T) {
	m, a := arena(t, false)
	s, err := New(a, Agent, Agent, a.Final(), m.True(), WithBudget(1))
	require.NoError(t, err)
	r, err := s.Run(context.Background())
	assert.ErrorIs(t, err, ErrBudget)
	assert.Equal(t, 1, r.Iterations)
}

func TestCancel(t *testing.T) {
	m, a := arena(t, false)
	s, err := New(a, Agent, Agent, a.Final(), m.True())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPlayers(t *testing.T) {
	m, a := arena(t, false)
	for _, c := range [][2]Player{{Environment, Agent}, {Agent, Environment}, {Environment, Environment}} {
		_, err := New(a, c[0], c[1], a.Final(), m.True())
		assert.ErrorIs(t, err, ErrPlayers)
	}
}

func TestMaxSetRestrict(t *testing.T) {
	m, _ := arena(t, false)
	z := Zero(m)
	assert.True(t, m.IsFalse(z.Deferring))
	assert.True(t, m.IsFalse(z.Nondeferring))
	act, _ := m.Named("act_0")
	ms := MaxSet{Deferring: m.True(), Nondeferring: m.Var(act)}.Restrict(m, m.NVar(act))
	assert.True(t, m.Equal(ms.Deferring, m.NVar(act)))
	assert.True(t, m.IsFalse(ms.Nondeferring))
}
