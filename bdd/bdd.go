// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package bdd

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/dalzilio/rudd"
)

// Node is a handle to a Boolean function.
type Node = rudd.Node

// Mgr is a Boolean function engine together with its variable pool.
type Mgr struct {
	set   *rudd.BDD
	nvars int // variables handed out, set.Varnum() may be larger

	names   map[string]int
	labels  map[int]string
	inputs  []int
	outputs []int
	blocks  [][]int
}

type options struct {
	nodeSize  int
	cacheSize int
}

// Option configures a Mgr.
type Option func(*options)

// NodeSize sets the initial size of the node table.
func NodeSize(n int) Option {
	return func(o *options) { o.nodeSize = n }
}

// CacheSize sets the size of the operation caches.
func CacheSize(n int) Option {
	return func(o *options) { o.cacheSize = n }
}

// New creates a new Mgr with an empty variable pool.
func New(opts ...Option) (*Mgr, error) {
	o := options{nodeSize: 1 << 14, cacheSize: 1 << 12}
	for _, f := range opts {
		f(&o)
	}
	set, err := rudd.New(1, rudd.Nodesize(o.nodeSize), rudd.Cachesize(o.cacheSize))
	if err != nil {
		return nil, fmt.Errorf("bdd: creating engine: %w", err)
	}
	return &Mgr{
		set:    set,
		names:  make(map[string]int),
		labels: make(map[int]string)}, nil
}

// grow hands out k fresh variables.
//
// grow panics if the engine cannot be extended.
func (m *Mgr) grow(k int) []int {
	vs := make([]int, k)
	for i := range vs {
		vs[i] = m.nvars + i
	}
	if m.nvars+k > m.set.Varnum() {
		if err := m.set.SetVarnum(m.nvars + k); err != nil {
			panic(fmt.Sprintf("bdd: cannot grow to %d variables: %s", m.nvars+k, err))
		}
	}
	m.nvars += k
	return vs
}

// NumVars returns the number of variables in the pool.
func (m *Mgr) NumVars() int {
	return m.nvars
}

// True returns the constant true function.
func (m *Mgr) True() Node {
	return m.set.True()
}

// False returns the constant false function.
func (m *Mgr) False() Node {
	return m.set.False()
}

// Const returns the constant function v.
func (m *Mgr) Const(v bool) Node {
	return m.set.From(v)
}

// Var returns the function which is true iff variable v is true.
func (m *Mgr) Var(v int) Node {
	return m.set.Ithvar(v)
}

// NVar returns the function which is true iff variable v is false.
func (m *Mgr) NVar(v int) Node {
	return m.set.NIthvar(v)
}

// Lit returns Var(v) if pos, NVar(v) otherwise.
func (m *Mgr) Lit(v int, pos bool) Node {
	if pos {
		return m.set.Ithvar(v)
	}
	return m.set.NIthvar(v)
}

// Not returns the complement of n.
func (m *Mgr) Not(n Node) Node {
	return m.set.Not(n)
}

// And returns the conjunction of ns, true if ns is empty.
func (m *Mgr) And(ns ...Node) Node {
	if len(ns) == 0 {
		return m.set.True()
	}
	acc := ns[0]
	for _, n := range ns[1:] {
		acc = m.set.Apply(acc, n, rudd.OPand)
	}
	return acc
}

// Or returns the disjunction of ns, false if ns is empty.
func (m *Mgr) Or(ns ...Node) Node {
	if len(ns) == 0 {
		return m.set.False()
	}
	acc := ns[0]
	for _, n := range ns[1:] {
		acc = m.set.Apply(acc, n, rudd.OPor)
	}
	return acc
}

// Implies returns a -> b.
func (m *Mgr) Implies(a, b Node) Node {
	return m.set.Imp(a, b)
}

// Equiv returns a <-> b.
func (m *Mgr) Equiv(a, b Node) Node {
	return m.set.Equiv(a, b)
}

// Ite returns "if f then g else h".
func (m *Mgr) Ite(f, g, h Node) Node {
	return m.set.Ite(f, g, h)
}

// Equal returns whether a and b denote the same function.
func (m *Mgr) Equal(a, b Node) bool {
	return m.set.Equal(a, b)
}

// IsTrue returns whether n is the constant true.
func (m *Mgr) IsTrue(n Node) bool {
	return m.set.Equal(n, m.set.True())
}

// IsFalse returns whether n is the constant false.
func (m *Mgr) IsFalse(n Node) bool {
	return m.set.Equal(n, m.set.False())
}

// Exists existentially quantifies the variables vs in n.
func (m *Mgr) Exists(n Node, vs []int) Node {
	if len(vs) == 0 {
		return n
	}
	return m.set.Exist(n, m.set.Makeset(vs))
}

// Forall universally quantifies the variables vs in n.
func (m *Mgr) Forall(n Node, vs []int) Node {
	if len(vs) == 0 {
		return n
	}
	return m.set.Not(m.set.Exist(m.set.Not(n), m.set.Makeset(vs)))
}

// Cube returns the conjunction of the literals vs[i] = vals[i].
func (m *Mgr) Cube(vs []int, vals []bool) Node {
	acc := m.set.True()
	for i, v := range vs {
		acc = m.set.Apply(acc, m.Lit(v, vals[i]), rudd.OPand)
	}
	return acc
}

// Count returns the number of assignments to vs satisfying n, where n
// is assumed to depend only on vs.
func (m *Mgr) Count(n Node, vs []int) *big.Int {
	c := m.set.Satcount(n)
	free := m.set.Varnum() - len(vs)
	if free > 0 {
		c.Rsh(c, uint(free))
	}
	return c
}

// Stats returns engine statistics.
func (m *Mgr) Stats() string {
	return m.set.Stats()
}

type vertex struct {
	level, low, high int
}

// graph collects the vertices reachable from ns, indexed by node id.
func (m *Mgr) graph(ns ...Node) map[int]vertex {
	g := make(map[int]vertex)
	if len(ns) == 0 {
		return g
	}
	_ = m.set.Allnodes(func(id, level, low, high int) error {
		g[id] = vertex{level: level, low: low, high: high}
		return nil
	}, ns...)
	return g
}

// Support returns the sorted variables n depends on.
func (m *Mgr) Support(ns ...Node) []int {
	seen := make(map[int]bool)
	for id, v := range m.graph(ns...) {
		if id > 1 {
			seen[v.level] = true
		}
	}
	res := make([]int, 0, len(seen))
	for v := range seen {
		res = append(res, v)
	}
	sort.Ints(res)
	return res
}

// Eval evaluates n under vals, where vals[v] is the value of variable v.
// Variables beyond len(vals) are false.
func (m *Mgr) Eval(n Node, vals []bool) bool {
	g := m.graph(n)
	id := *n
	for id > 1 {
		v := g[id]
		if v.level < len(vals) && vals[v.level] {
			id = v.high
		} else {
			id = v.low
		}
	}
	return id == 1
}

// Compose simultaneously substitutes sub[v] for every variable v of n
// which has an entry in sub.
func (m *Mgr) Compose(n Node, sub map[int]Node) Node {
	g := m.graph(n)
	memo := make(map[int]Node, len(g))
	var rec func(id int) Node
	rec = func(id int) Node {
		switch id {
		case 0:
			return m.set.False()
		case 1:
			return m.set.True()
		}
		if r, ok := memo[id]; ok {
			return r
		}
		v := g[id]
		hi, lo := rec(v.high), rec(v.low)
		c, ok := sub[v.level]
		if !ok {
			c = m.set.Ithvar(v.level)
		}
		r := m.set.Ite(c, hi, lo)
		memo[id] = r
		return r
	}
	return rec(*n)
}

// AllSat calls f with each satisfying cube of n over vs. Entries of
// the slice passed to f are 0, 1, or -1 for don't care, one per element
// of vs.
func (m *Mgr) AllSat(n Node, vs []int, f func([]int) error) error {
	cube := make([]int, len(vs))
	return m.set.Allsat(func(all []int) error {
		for i, v := range vs {
			cube[i] = all[v]
		}
		return f(cube)
	}, n)
}
