// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package ltlf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrint(t *testing.T) {
	cases := []struct {
		in, out string
	}{
		{"a", "a"},
		{"true", "true"},
		{"tt & ff", "false"},
		{"G(a -> F b)", "G(a -> F(b))"},
		{"a U b & c", "a U b & c"},
		{"!(a & b)", "!(a & b)"},
		{"!!a", "a"},
		{"a -> b -> c", "a -> b -> c"},
		{"(a -> b) -> c", "(a -> b) -> c"},
		{"a U b U c", "a U (b U c)"},
		{"(a U b) U c", "(a U b) U c"},
		{"GFa", "GFa"},
		{"G F a", "G(F(a))"},
		{"X[!] a || N b", "X(b) | X[!](a)"},
		{"b & a & b", "a & b"},
		{"a | (b & c)", "a | (b & c)"},
		{"a <=> b", "a <-> b"},
		{"a && (b || c)", "a & (b | c)"},
		{"G true", "true"},
		{"a W false", "a W false"},
		{"false U b", "b"},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			f, err := Parse(c.in)
			require.NoError(t, err)
			assert.Equal(t, c.out, f.String())
			g, err := Parse(f.String())
			require.NoError(t, err)
			assert.True(t, f.Equal(g), "%s reparsed as %s", f, g)
		})
	}
}

func TestParseErrors(t *testing.T) {
	for _, in := range []string{"", "a &", "(a", "a $ b", "a)", "U a", "G"} {
		_, err := Parse(in)
		assert.ErrorIs(t, err, ErrSyntax, "%q", in)
	}
}

func TestNNF(t *testing.T) {
	cases := []struct {
		in, out string
	}{
		{"!(a U b)", "!a R !b"},
		{"!(a R b)", "!a U !b"},
		{"!G a", "F(!a)"},
		{"!F a", "G(!a)"},
		{"!X a", "X[!](!a)"},
		{"!X[!] a", "X(!a)"},
		{"!(a -> b)", "!b & a"},
		{"a -> b", "!a | b"},
		{"a W b", "b R (a | b)"},
		{"!(a W b)", "!b U (!a & !b)"},
		{"!(a & !b)", "!a | b"},
		{"!true", "false"},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			f := MustParse(c.in)
			g, err := NNF(f)
			require.NoError(t, err)
			assert.Equal(t, c.out, g.String())
		})
	}
}

var props = []string{
	"G(a -> F b)",
	"!(a U (b & X !c))",
	"(a <-> b) W !(G c)",
	"F(G a) & !(X[!] b -> c R a)",
	"!(!a <-> X(b | !c))",
	"a",
	"!a",
	"false",
}

func TestNNFIdempotent(t *testing.T) {
	for _, s := range props {
		f, err := NNF(MustParse(s))
		require.NoError(t, err)
		assert.True(t, IsNNF(f), "%s", f)
		g, err := NNF(f)
		require.NoError(t, err)
		assert.True(t, f.Equal(g), "%s vs %s", f, g)
	}
}

func TestNNFUnknownOperator(t *testing.T) {
	bad := &Formula{op: numOps, key: "?"}
	_, err := NNF(bad)
	assert.ErrorIs(t, err, ErrOperator)
	_, err = ProgrLast(bad)
	assert.ErrorIs(t, err, ErrOperator)
}

func TestProgrLastConstant(t *testing.T) {
	for _, s := range props {
		f := MustParse(s)
		g, err := ProgrLast(f)
		require.NoError(t, err)
		assert.True(t, g.IsConst(), "%s: %s", s, g)
	}
	cases := map[string]bool{
		"a":         false,
		"!a":        false,
		"X a":       true,
		"X[!] a":    false,
		"G a":       true,
		"F a":       false,
		"a U b":     false,
		"a R b":     true,
		"a W b":     true,
		"G a & F b": false,
		"G a | F b": true,
		"F a -> b":  true,
		"!(G a)":    false,
	}
	for s, exp := range cases {
		g, err := ProgrLast(MustParse(s))
		require.NoError(t, err)
		assert.Equal(t, exp, g.IsTrue(), s)
	}
}

func TestProgrNotLast(t *testing.T) {
	m := Interp{"a": true, "b": false, "c": true}
	cases := []struct {
		in, out string
	}{
		{"a", "true"},
		{"!b", "true"},
		{"X b", "b"},
		{"X[!] b", "b"},
		{"G a", "G(a)"},
		{"G b", "false"},
		{"F b", "F(b)"},
		{"F a", "true"},
		{"b U c", "true"},
		{"a U b", "a U b"},
		{"a R b", "false"},
		{"b R a", "b R a"},
		{"a W b", "a W b"},
		{"b W b", "false"},
		{"a -> b", "false"},
		{"a <-> c", "true"},
		{"a <-> b", "false"},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			g, err := ProgrNotLast(MustParse(c.in), m)
			require.NoError(t, err)
			assert.Equal(t, c.out, g.String())
		})
	}
	_, err := ProgrNotLast(MustParse("a & d"), m)
	assert.ErrorIs(t, err, ErrInterp)
}

func TestProgressEventually(t *testing.T) {
	phi := MustParse("G a")
	f := F(phi)
	p, err := Progr(f, Interp{"a": true})
	require.NoError(t, err)
	assert.True(t, p.Obligation.Equal(Or(phi, F(phi))), "%s", p.Obligation)
	assert.True(t, p.HoldsOnLast)

	p, err = Progr(f, Interp{"a": false})
	require.NoError(t, err)
	assert.True(t, p.Obligation.Equal(f))
	assert.False(t, p.HoldsOnLast)
}

func TestStart(t *testing.T) {
	p, err := Start(MustParse("G a"))
	require.NoError(t, err)
	assert.True(t, p.HoldsOnLast)
	p, err = Start(MustParse("F a"))
	require.NoError(t, err)
	assert.False(t, p.HoldsOnLast)
}

func TestPropsSubstitute(t *testing.T) {
	f := MustParse("G(b -> F(a & mv)) & c")
	assert.Equal(t, []string{"a", "b", "c", "mv"}, Props(f))
	g := Substitute(f, map[string]*Formula{
		"mv": And(Atom("act_0"), Not(Atom("act_1"))),
		"c":  True()})
	assert.Equal(t, "G(b -> F(!act_1 & a & act_0))", g.String())
	assert.Equal(t, []string{"a", "act_0", "act_1", "b"}, Props(g))
}

func TestSafetyDecompose(t *testing.T) {
	cases := map[string]bool{
		"G(a -> X b)":  true,
		"a R b":        true,
		"a W (b & !c)": true,
		"F a":          false,
		"G(a -> F b)":  false,
		"X[!] a":       false,
		"a U b":        false,
	}
	for s, exp := range cases {
		f, err := NNF(MustParse(s))
		require.NoError(t, err)
		assert.Equal(t, exp, IsSafety(f), s)
	}

	ds, err := Decompose(MustParse("G a & F b"))
	require.NoError(t, err)
	require.Len(t, ds, 2)
	assert.Equal(t, "G(!b)", ds[0].String())
	assert.Equal(t, "F(!a)", ds[1].String())
}

func TestKeyword(t *testing.T) {
	for _, k := range []string{"X", "G", "F", "U", "R", "W", "N", "true", "tt", "false", "ff"} {
		assert.True(t, IsKeyword(k), k)
	}
	assert.False(t, IsKeyword("at_a"))
}
