// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package intent

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/go-air/rims/bdd"
	"github.com/go-air/rims/domain"
)

const trap = `
name: trap
fluents: [start, trapped, goal, ghost]
actions:
  - name: advance
    pre: start
    effects:
      - {add: [goal], del: [start]}
  - name: fall
    pre: start
    effects:
      - {add: [trapped], del: [start]}
  - name: wait
    effects:
      - {}
`

const hazard = `
name: hazard
fluents: [safe, danger]
actions:
  - name: stay
    effects:
      - {}
  - name: leap
    effects:
      - {add: [danger], del: [safe]}
`

const rooms = `
name: rooms
fluents: [loc_a, loc_b]
actions:
  - name: go_a
    effects:
      - {add: [loc_a], del: [loc_b]}
  - name: go_b
    effects:
      - {add: [loc_b], del: [loc_a]}
invariants:
  - "!(loc_a & loc_b)"
`

const switches = `
name: switches
fluents: [a, b, c]
actions:
  - name: set_a
    effects:
      - {add: [a]}
  - name: set_b
    effects:
      - {add: [b]}
  - name: set_c
    effects:
      - {add: [c]}
`

func compile(t *testing.T, src string, init ...string) *domain.Compiled {
	t.Helper()
	d, err := domain.ReadDomain(strings.NewReader(src))
	require.NoError(t, err)
	m, err := bdd.New(bdd.NodeSize(1<<12), bdd.CacheSize(1<<10))
	require.NoError(t, err)
	c, err := domain.Compile(m, d, &domain.Problem{Name: "p", Domain: d.Name, Init: init})
	require.NoError(t, err)
	return c
}

type counter struct {
	adopted, rejected, drops, actions, games int
}

func (c *counter) ObserveSynthesis(int, time.Duration, bool) { c.games++ }

func (c *counter) ObserveAdoption(kind string, ok bool) {
	if ok {
		c.adopted++
	} else {
		c.rejected++
	}
}

func (c *counter) ObserveDrop(n int) { c.drops += n }
func (c *counter) ObserveAction()    { c.actions++ }

func manager(t *testing.T, c *domain.Compiled, goals ...string) (*Manager, *counter) {
	t.Helper()
	obs := &counter{}
	m, err := New(context.Background(), c, goals,
		WithLogger(zaptest.NewLogger(t)), WithObserver(obs))
	require.NoError(t, err)
	return m, obs
}

func nondeferringImpliesDeferring(t *testing.T, m *Manager) {
	t.Helper()
	ms := m.MaxSet()
	assert.True(t, m.mgr.IsTrue(m.mgr.Implies(ms.Nondeferring, ms.Deferring)))
}

func TestInitialAdoption(t *testing.T) {
	m, obs := manager(t, compile(t, hazard, "safe"), "G safe", "F danger", "F safe")
	assert.Equal(t, 2, m.Len())
	assert.Len(t, m.AdoptionTimes(), 3)
	assert.Equal(t, 2, obs.adopted)
	assert.Equal(t, 1, obs.rejected)
	first, err := m.Intention(1)
	require.NoError(t, err)
	assert.Equal(t, "G safe", first.Text)
	second, err := m.Intention(2)
	require.NoError(t, err)
	assert.Equal(t, "F safe", second.Text)
	nondeferringImpliesDeferring(t, m)
}

func TestMalformedGoal(t *testing.T) {
	c := compile(t, hazard, "safe")
	_, err := New(context.Background(), c, []string{"F nowhere"})
	assert.ErrorIs(t, err, ErrVocabulary)
	_, err = New(context.Background(), c, []string{"F (safe"})
	assert.Error(t, err)
}

func TestCompatible(t *testing.T) {
	m, _ := manager(t, compile(t, rooms, "loc_a"), "F loc_b", "G(!(loc_a & loc_b))")
	require.Equal(t, 2, m.Len())
	c, err := m.IsRealizable(context.Background(), "G(!(loc_a & loc_b))", 1)
	require.NoError(t, err)
	assert.True(t, c.Realizable)
	assert.Equal(t, []int{1, 2}, c.Compatible)
	assert.True(t, c.Weak(2))
	assert.True(t, c.Strong())
}

func TestUnreachable(t *testing.T) {
	m, _ := manager(t, compile(t, trap, "start"))
	c, err := m.IsRealizable(context.Background(), "F ghost", 1)
	require.NoError(t, err)
	assert.False(t, c.Realizable)
	assert.Empty(t, c.Compatible)
	assert.True(t, m.mgr.IsFalse(c.MaxSet.Deferring))
	assert.True(t, m.mgr.IsFalse(c.MaxSet.Nondeferring))
	ok, err := m.StrongAdopt(context.Background(), "F ghost", 1)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, m.Len())
}

func TestPriority(t *testing.T) {
	m, _ := manager(t, compile(t, trap, "start"))
	for _, p := range []int{0, 2} {
		_, err := m.IsRealizable(context.Background(), "F goal", p)
		assert.ErrorIs(t, err, ErrPriority)
	}
}

func TestWeakAdopt(t *testing.T) {
	ctx := context.Background()
	m, _ := manager(t, compile(t, hazard, "safe"), "G safe")
	ok, err := m.WeakAdopt(ctx, "F danger", 2)
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = m.WeakAdopt(ctx, "F danger", 1)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, m.Len())

	ok, err = m.WeakAdopt(ctx, "G !danger", 1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, m.Len())
	first, err := m.Intention(1)
	require.NoError(t, err)
	assert.Equal(t, "G !danger", first.Text)
	nondeferringImpliesDeferring(t, m)
}

func TestStrongAdopt(t *testing.T) {
	ctx := context.Background()
	m, _ := manager(t, compile(t, hazard, "safe"), "G safe")
	ok, err := m.StrongAdopt(ctx, "F danger", 2)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, m.Len())

	ok, err = m.StrongAdopt(ctx, "F danger", 1)
	require.NoError(t, err)
	assert.True(t, ok)
	require.Equal(t, 1, m.Len())
	first, err := m.Intention(1)
	require.NoError(t, err)
	assert.Equal(t, "F danger", first.Text)
	nondeferringImpliesDeferring(t, m)
}

func TestStrongAdoptKeepsCompatible(t *testing.T) {
	ctx := context.Background()
	m, _ := manager(t, compile(t, rooms, "loc_a"), "F loc_b")
	ok, err := m.StrongAdopt(ctx, "G(!(loc_a & loc_b))", 1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, m.Len())
}

func TestStrongAdoptScansPastConflict(t *testing.T) {
	ctx := context.Background()
	m, _ := manager(t, compile(t, switches), "F a", "G !b", "F c")
	require.Equal(t, 3, m.Len())

	c, err := m.IsRealizable(ctx, "F b", 2)
	require.NoError(t, err)
	assert.True(t, c.Realizable)
	assert.Equal(t, []int{1, 3}, c.Compatible)
	assert.False(t, c.Weak(3))
	assert.True(t, c.Strong())

	ok, err := m.WeakAdopt(ctx, "F b", 2)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, []string{"F(a)", "G(!b)", "F(c)"}, m.Intentions())

	ok, err = m.StrongAdopt(ctx, "F b", 2)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"F(a)", "F(b)", "F(c)"}, m.Intentions())
	assert.False(t, m.mgr.IsFalse(m.MaxSet().Deferring))
	nondeferringImpliesDeferring(t, m)
}

func TestStale(t *testing.T) {
	ctx := context.Background()
	m, _ := manager(t, compile(t, trap, "start"))
	c, err := m.IsRealizable(ctx, "F goal", 1)
	require.NoError(t, err)
	ok, err := m.WeakAdopt(ctx, "G !trapped", 1)
	require.NoError(t, err)
	assert.True(t, ok)
	_, err = m.Adopt(c, false)
	assert.ErrorIs(t, err, ErrStale)

	c, err = m.IsRealizable(ctx, "F goal", 2)
	require.NoError(t, err)
	ok, err = m.Adopt(c, false)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, m.Len())
}

func TestDoAction(t *testing.T) {
	ctx := context.Background()
	m, obs := manager(t, compile(t, trap, "start"), "F goal")
	assert.Equal(t, []int{0, 2}, m.WinningActions())
	assert.Equal(t, []int{0}, m.ProgressingActions())
	nondeferringImpliesDeferring(t, m)

	_, err := m.IsWinning(9)
	assert.ErrorIs(t, err, ErrAction)
	ok, err := m.IsCertainlyProgressing(2)
	require.NoError(t, err)
	assert.False(t, ok)

	noop := ReactionFunc(func(context.Context, int) (int, error) { return 0, nil })
	_, err = m.DoAction(ctx, 1, noop)
	assert.ErrorIs(t, err, ErrNotWinning)
	assert.Equal(t, []string{"start"}, m.DomainState())

	_, err = m.DoAction(ctx, 2, ReactionFunc(func(context.Context, int) (int, error) { return 5, nil }))
	assert.ErrorIs(t, err, ErrReaction)

	st, err := m.DoAction(ctx, 2, noop)
	require.NoError(t, err)
	assert.Equal(t, []string{"start"}, st.State)
	assert.Equal(t, []string{"F(goal)"}, m.Intentions())
	assert.False(t, m.IsFinal().Final)

	before, err := m.Intention(1)
	require.NoError(t, err)
	st, err = m.DoAction(ctx, 0, noop)
	require.NoError(t, err)
	assert.Equal(t, []string{"goal"}, st.State)
	assert.Equal(t, "F(goal)", before.String())
	after, err := m.Intention(1)
	require.NoError(t, err)
	assert.Equal(t, "true", after.String())
	assert.Equal(t, []string{"goal"}, m.DomainState())
	assert.Equal(t, []string{"true"}, m.Intentions())
	s := m.IsFinal()
	assert.True(t, s.Final)
	assert.False(t, s.AgentError)
	assert.False(t, s.EnvError)
	assert.Equal(t, 2, obs.actions)
}

func TestDrop(t *testing.T) {
	ctx := context.Background()
	m, obs := manager(t, compile(t, trap, "start"), "F goal", "G !trapped")
	require.Equal(t, 2, m.Len())
	assert.ErrorIs(t, m.Drop(ctx, 3), ErrID)
	assert.Equal(t, 2, m.Len())
	require.NoError(t, m.Drop(ctx, 1, 1))
	assert.Equal(t, []string{"G(!trapped)"}, m.Intentions())
	require.NoError(t, m.Drop(ctx, 1))
	assert.Equal(t, 0, m.Len())
	assert.Equal(t, []int{0, 1, 2}, m.WinningActions())
	assert.Equal(t, 2, obs.drops)
	_, err := m.Intention(1)
	assert.ErrorIs(t, err, ErrID)
}

func TestArena(t *testing.T) {
	m, _ := manager(t, compile(t, trap, "start"), "F goal")
	a, err := m.Arena()
	require.NoError(t, err)
	assert.Equal(t, m.dom.Automaton().NumBits()+1, a.NumBits())
}
