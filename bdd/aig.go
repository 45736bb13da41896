// Copyright 2018 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package bdd

import (
	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"
)

// Circuit lowers ns into the and-inverter graph c, one multiplexer per
// decision node.  in is called once for each variable occurring in ns and
// must return the literal of c standing for the variable.
//
// The result contains one literal per element of ns.
func (m *Mgr) Circuit(c *logic.C, in func(v int) z.Lit, ns ...Node) []z.Lit {
	g := m.graph(ns...)
	vars := make(map[int]z.Lit)
	memo := make(map[int]z.Lit, len(g))
	var rec func(id int) z.Lit
	rec = func(id int) z.Lit {
		switch id {
		case 0:
			return c.F
		case 1:
			return c.T
		}
		if r, ok := memo[id]; ok {
			return r
		}
		v := g[id]
		sel, ok := vars[v.level]
		if !ok {
			sel = in(v.level)
			vars[v.level] = sel
		}
		r := c.Choice(sel, rec(v.high), rec(v.low))
		memo[id] = r
		return r
	}
	res := make([]z.Lit, len(ns))
	for i, n := range ns {
		res[i] = rec(*n)
	}
	return res
}
