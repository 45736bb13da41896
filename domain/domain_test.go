// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-air/rims/bdd"
	"github.com/go-air/rims/ltlf"
)

func corridor(t *testing.T, problem string) *Compiled {
	t.Helper()
	d, err := LoadDomain("testdata/corridor.yaml")
	require.NoError(t, err)
	p, err := LoadProblem("testdata/" + problem)
	require.NoError(t, err)
	m, err := bdd.New(bdd.NodeSize(1000), bdd.CacheSize(100))
	require.NoError(t, err)
	c, err := Compile(m, d, p)
	require.NoError(t, err)
	return c
}

func TestLoad(t *testing.T) {
	d, err := LoadDomain("testdata/corridor.yaml")
	require.NoError(t, err)
	assert.Equal(t, "corridor", d.Name)
	assert.Equal(t, []string{"at_a", "at_b", "goal"}, d.Fluents)
	require.Len(t, d.Actions, 3)
	assert.Len(t, d.Actions[0].Effects, 2)
	assert.Empty(t, d.Actions[0].Effects[1].Add)
	assert.NoError(t, d.Validate())

	_, err = ReadDomain(strings.NewReader("name: x\nfluent: [a]\n"))
	assert.ErrorIs(t, err, ErrDomain)
}

func TestValidate(t *testing.T) {
	ok := []Effect{{Add: []string{"a"}}}
	for _, tc := range []struct {
		name string
		d    Domain
	}{
		{"duplicate", Domain{Fluents: []string{"a", "a"}, Actions: []Action{{Name: "x", Effects: ok}}}},
		{"keyword", Domain{Fluents: []string{"a", "G"}, Actions: []Action{{Name: "x", Effects: ok}}}},
		{"reserved", Domain{Fluents: []string{"a", "act_0"}, Actions: []Action{{Name: "x", Effects: ok}}}},
		{"error flag", Domain{Fluents: []string{"a", "ag_err"}, Actions: []Action{{Name: "x", Effects: ok}}}},
		{"no actions", Domain{Fluents: []string{"a"}}},
		{"no effects", Domain{Fluents: []string{"a"}, Actions: []Action{{Name: "x"}}}},
		{"undeclared", Domain{Fluents: []string{"a"}, Actions: []Action{{Name: "x",
			Effects: []Effect{{Del: []string{"b"}}}}}}},
		{"action clash", Domain{Fluents: []string{"a"}, Actions: []Action{{Name: "a", Effects: ok}}}},
		{"temporal pre", Domain{Fluents: []string{"a"}, Actions: []Action{{Name: "x", Pre: "F a", Effects: ok}}}},
		{"invariant", Domain{Fluents: []string{"a"}, Actions: []Action{{Name: "x", Effects: ok}},
			Invariants: []string{"a & b"}}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, tc.d.Validate(), ErrDomain)
		})
	}

	d := Domain{Name: "d", Fluents: []string{"a"}, Actions: []Action{{Name: "x", Effects: ok}}}
	assert.ErrorIs(t, (&Problem{Domain: "e"}).Validate(&d), ErrDomain)
	assert.ErrorIs(t, (&Problem{Domain: "d", Init: []string{"b"}}).Validate(&d), ErrDomain)
	assert.NoError(t, (&Problem{Domain: "d", Init: []string{"a"}}).Validate(&d))
}

func TestLayout(t *testing.T) {
	c := corridor(t, "corridor_p1.yaml")
	m := c.Mgr()
	a := c.Automaton()
	assert.Equal(t, 5, a.NumBits())
	assert.Len(t, c.ActionBits(), 2)
	assert.Len(t, c.ReactionBits(), 1)
	assert.Equal(t, c.ActionBits(), m.Outputs())
	assert.Equal(t, c.ReactionBits(), m.Inputs())
	ag, env := a.ErrorVars()
	assert.Equal(t, c.AgErr(), ag)
	assert.Equal(t, c.EnvErr(), env)
	assert.Equal(t, []bool{true, false, false, false, false}, c.InitialState())
	assert.True(t, m.IsTrue(a.Final()))
	i, ok := c.ActionID("grab")
	assert.True(t, ok)
	assert.Equal(t, 2, i)
	assert.Equal(t, []string{"move_ab", "move_ba", "grab"}, c.Actions())
}

// step returns the successor of state under action i and reaction j.
func step(c *Compiled, state []bool, i, j int) []bool {
	vals := make([]bool, c.Mgr().NumVars())
	for k, v := range c.ActionBits() {
		vals[v] = c.ActionValues(i)[k]
	}
	for k, v := range c.ReactionBits() {
		vals[v] = c.ReactionValues(j)[k]
	}
	return c.Automaton().Eval(vals, state)
}

func TestTransitions(t *testing.T) {
	c := corridor(t, "corridor_p1.yaml")
	init := c.InitialState()
	atB := []bool{false, true, false, false, false}
	for _, tc := range []struct {
		name  string
		state []bool
		act   int
		rct   int
		want  []bool
	}{
		{"effect", init, 0, 0, atB},
		{"noop effect", init, 0, 1, init},
		{"precondition", init, 1, 0, []bool{true, false, false, true, false}},
		{"undefined action", init, 3, 0, []bool{true, false, false, true, false}},
		{"undefined reaction", atB, 2, 1, []bool{false, true, false, false, true}},
		{"grab", atB, 2, 0, []bool{false, true, true, false, false}},
		{"agent error absorbs", []bool{true, false, false, true, false}, 0, 0, []bool{true, false, false, true, false}},
		{"env error absorbs", []bool{false, true, false, false, true}, 2, 0, []bool{false, true, false, false, true}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, step(c, tc.state, tc.act, tc.rct))
		})
	}
}

func TestRewrite(t *testing.T) {
	c := corridor(t, "corridor_p1.yaml")
	f, err := c.ParseGoal("F(move_ab & X at_b)")
	require.NoError(t, err)
	assert.Equal(t, []string{"act_0", "act_1", "at_b"}, ltlf.Props(f))

	g, err := c.ParseGoal("G !(at_a & at_b)")
	require.NoError(t, err)
	assert.True(t, g.Equal(ltlf.MustParse("G !(at_a & at_b)")))

	_, err = c.ParseGoal("F elsewhere")
	assert.ErrorIs(t, err, ErrVocabulary)
	_, err = c.ParseGoal("F (at_a")
	assert.ErrorIs(t, err, ltlf.ErrSyntax)

	n, err := c.Prop(c.ActionFormula(2))
	require.NoError(t, err)
	assert.True(t, c.Mgr().Equal(n, c.ActionCube(2)))
}

func TestInterp(t *testing.T) {
	c := corridor(t, "corridor_p1.yaml")
	vals := make([]bool, c.Mgr().NumVars())
	vals[c.FluentVars()[1]] = true
	vals[c.ActionBits()[1]] = true
	assert.Equal(t, ltlf.Interp{"at_a": false, "at_b": true, "goal": false, "act_0": false, "act_1": true},
		c.Interp(vals))
	assert.Equal(t, []string{"at_b"}, c.TrueFluents(vals))
}

func TestCheckInvariants(t *testing.T) {
	assert.NoError(t, corridor(t, "corridor_p1.yaml").CheckInvariants())
	assert.ErrorIs(t, corridor(t, "corridor_bad.yaml").CheckInvariants(), ErrInvariants)

	d := &Domain{Name: "d", Fluents: []string{"a"},
		Actions:    []Action{{Name: "x", Effects: []Effect{{}}}},
		Invariants: []string{"a", "!a"}}
	m, err := bdd.New(bdd.NodeSize(1000), bdd.CacheSize(100))
	require.NoError(t, err)
	c, err := Compile(m, d, &Problem{Domain: "d"})
	require.NoError(t, err)
	assert.ErrorIs(t, c.CheckInvariants(), ErrInvariants)

	for _, tc := range []struct {
		name string
		d    *Domain
		init []string
		ok   bool
	}{
		{"step leaves invariants", &Domain{Name: "d", Fluents: []string{"a", "b"},
			Actions:    []Action{{Name: "x", Effects: []Effect{{Add: []string{"a"}}}}},
			Invariants: []string{"!a"}}, nil, false},
		{"blocked at start", &Domain{Name: "d", Fluents: []string{"a", "b"},
			Actions: []Action{{Name: "x", Pre: "a & b", Effects: []Effect{{}}}}}, []string{"b"}, false},
		{"one escape", &Domain{Name: "d", Fluents: []string{"a", "b"},
			Actions: []Action{
				{Name: "x", Effects: []Effect{{Add: []string{"a"}}}},
				{Name: "y", Pre: "b", Effects: []Effect{{Add: []string{"b"}}, {Del: []string{"b"}}}}},
			Invariants: []string{"!a"}}, []string{"b"}, true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			m, err := bdd.New(bdd.NodeSize(1000), bdd.CacheSize(100))
			require.NoError(t, err)
			c, err := Compile(m, tc.d, &Problem{Domain: "d", Init: tc.init})
			require.NoError(t, err)
			if tc.ok {
				assert.NoError(t, c.CheckInvariants())
				return
			}
			assert.ErrorIs(t, c.CheckInvariants(), ErrInvariants)
		})
	}
}
