// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package dfa

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-air/rims/bdd"
	"github.com/go-air/rims/ltlf"
)

var (
	// ErrUnknownProp indicates a formula atom which does not name a
	// variable of the manager.
	ErrUnknownProp = errors.New("dfa: unknown proposition")
	// ErrTooManyProps indicates a residual depending on too many
	// propositions to enumerate its letters.
	ErrTooManyProps = errors.New("dfa: too many propositions in one state")
)

// MaxStateProps bounds the number of propositions a single residual
// state of FromFormula may depend on.
const MaxStateProps = 20

// item is an obligation on the remainder of a trace: either a formula
// to hold on a non-empty remainder, or the end of the trace.
type item struct {
	f   *ltlf.Formula // nil for end
	key string
}

var endItem = item{key: "$"}

func formulaItem(f *ltlf.Formula) item {
	return item{f: f, key: f.String()}
}

// cube is a sorted conjunction of items, dnf a sorted disjunction of
// cubes none of which contains another.
type cube []item
type dnf []cube

func (c cube) key() string {
	ks := make([]string, len(c))
	for i, it := range c {
		ks[i] = it.key
	}
	return strings.Join(ks, " ; ")
}

func (d dnf) key() string {
	ks := make([]string, len(d))
	for i, c := range d {
		ks[i] = "{" + c.key() + "}"
	}
	return strings.Join(ks, " + ")
}

var (
	dnfTop    = dnf{cube{}}
	dnfBottom = dnf{}
)

// mkCube normalizes its, returning false if the conjunction is
// unsatisfiable.
func mkCube(its []item) (cube, bool) {
	seen := make(map[string]bool, len(its))
	res := make(cube, 0, len(its))
	end, frm := false, false
	for _, it := range its {
		if it.f != nil {
			if it.f.IsFalse() {
				return nil, false
			}
			if it.f.IsTrue() {
				continue
			}
		}
		if seen[it.key] {
			continue
		}
		seen[it.key] = true
		if it.f == nil {
			end = true
		} else {
			frm = true
		}
		res = append(res, it)
	}
	if end && frm {
		return nil, false
	}
	sort.Slice(res, func(i, j int) bool { return res[i].key < res[j].key })
	return res, true
}

func subset(a, b cube) bool {
	if len(a) > len(b) {
		return false
	}
	j := 0
	for _, it := range a {
		for j < len(b) && b[j].key < it.key {
			j++
		}
		if j == len(b) || b[j].key != it.key {
			return false
		}
		j++
	}
	return true
}

// mkDNF removes duplicate and absorbed cubes and sorts.
func mkDNF(cs []cube) dnf {
	sort.Slice(cs, func(i, j int) bool {
		if len(cs[i]) != len(cs[j]) {
			return len(cs[i]) < len(cs[j])
		}
		return cs[i].key() < cs[j].key()
	})
	res := make(dnf, 0, len(cs))
outer:
	for _, c := range cs {
		for _, d := range res {
			if subset(d, c) {
				continue outer
			}
		}
		res = append(res, c)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].key() < res[j].key() })
	return res
}

func union(a, b dnf) dnf {
	cs := make([]cube, 0, len(a)+len(b))
	cs = append(cs, a...)
	cs = append(cs, b...)
	return mkDNF(cs)
}

func product(a, b dnf) dnf {
	cs := make([]cube, 0, len(a)*len(b))
	for _, x := range a {
		for _, y := range b {
			its := make([]item, 0, len(x)+len(y))
			its = append(its, x...)
			its = append(its, y...)
			if c, ok := mkCube(its); ok {
				cs = append(cs, c)
			}
		}
	}
	return mkDNF(cs)
}

func single(its ...item) dnf {
	c, ok := mkCube(its)
	if !ok {
		return dnfBottom
	}
	return dnf{c}
}

// accepting returns whether d holds on the empty remainder.
func (d dnf) accepting() bool {
	for _, c := range d {
		if len(c) == 0 || (len(c) == 1 && c[0].f == nil) {
			return true
		}
	}
	return false
}

func (d dnf) props() []string {
	seen := make(map[string]bool)
	for _, c := range d {
		for _, it := range c {
			if it.f == nil {
				continue
			}
			for _, p := range ltlf.Props(it.f) {
				seen[p] = true
			}
		}
	}
	res := make([]string, 0, len(seen))
	for p := range seen {
		res = append(res, p)
	}
	sort.Strings(res)
	return res
}

// delta returns the obligations on the remainder after reading letter
// from a position where f must hold.  f is in negation normal form.
func delta(f *ltlf.Formula, letter map[string]bool) (dnf, error) {
	switch f.Op() {
	case ltlf.OpTrue:
		return dnfTop, nil
	case ltlf.OpFalse:
		return dnfBottom, nil
	case ltlf.OpAtom:
		if letter[f.Name()] {
			return dnfTop, nil
		}
		return dnfBottom, nil
	case ltlf.OpNot:
		if f.Kid(0).Op() != ltlf.OpAtom {
			return nil, fmt.Errorf("%w: negation of %s", ltlf.ErrOperator, f.Kid(0))
		}
		if letter[f.Kid(0).Name()] {
			return dnfBottom, nil
		}
		return dnfTop, nil
	case ltlf.OpAnd, ltlf.OpOr:
		acc := dnfTop
		if f.Op() == ltlf.OpOr {
			acc = dnfBottom
		}
		for i := 0; i < f.Len(); i++ {
			d, err := delta(f.Kid(i), letter)
			if err != nil {
				return nil, err
			}
			if f.Op() == ltlf.OpAnd {
				acc = product(acc, d)
			} else {
				acc = union(acc, d)
			}
		}
		return acc, nil
	case ltlf.OpNext:
		return union(single(formulaItem(f.Kid(0))), single(endItem)), nil
	case ltlf.OpStrongNext:
		return single(formulaItem(f.Kid(0))), nil
	case ltlf.OpGlobally:
		a, err := delta(f.Kid(0), letter)
		if err != nil {
			return nil, err
		}
		return product(a, union(single(formulaItem(f)), single(endItem))), nil
	case ltlf.OpEventually:
		a, err := delta(f.Kid(0), letter)
		if err != nil {
			return nil, err
		}
		return union(a, single(formulaItem(f))), nil
	case ltlf.OpUntil, ltlf.OpRelease:
		a, err := delta(f.Kid(0), letter)
		if err != nil {
			return nil, err
		}
		b, err := delta(f.Kid(1), letter)
		if err != nil {
			return nil, err
		}
		if f.Op() == ltlf.OpUntil {
			return union(b, product(a, single(formulaItem(f)))), nil
		}
		rest := union(a, union(single(formulaItem(f)), single(endItem)))
		return product(b, rest), nil
	}
	return nil, fmt.Errorf("%w: %s in residual construction", ltlf.ErrOperator, f.Op())
}

func (d dnf) step(letter map[string]bool) (dnf, error) {
	acc := dnfBottom
	for _, c := range d {
		cd := dnfTop
		for _, it := range c {
			if it.f == nil {
				cd = dnfBottom
				break
			}
			x, err := delta(it.f, letter)
			if err != nil {
				return nil, err
			}
			cd = product(cd, x)
			if len(cd) == 0 {
				break
			}
		}
		acc = union(acc, cd)
	}
	return acc, nil
}

// FromFormula translates f into an explicit automaton accepting the
// finite non-empty traces satisfying f.  The atoms of f must name
// variables of m, which carry the edge guards.
//
// States are residuals of f.  State 0 is the initial state.
func FromFormula(m *bdd.Mgr, f *ltlf.Formula) (*Explicit, error) {
	vars := make(map[string]int)
	for _, p := range ltlf.Props(f) {
		v, ok := m.Named(p)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownProp, p)
		}
		vars[p] = v
	}
	g, err := ltlf.NNF(f)
	if err != nil {
		return nil, err
	}
	init := single(formulaItem(g))
	states := []dnf{init}
	index := map[string]int{init.key(): 0}
	res := &Explicit{Mgr: m, Initial: 0}
	for s := 0; s < len(states); s++ {
		cur := states[s]
		if cur.accepting() {
			res.Finals = append(res.Finals, s)
		}
		ps := cur.props()
		if len(ps) > MaxStateProps {
			return nil, fmt.Errorf("%w: %d", ErrTooManyProps, len(ps))
		}
		guards := make(map[int]bdd.Node)
		var order []int
		letter := make(map[string]bool, len(ps))
		vs := make([]int, len(ps))
		for i, p := range ps {
			vs[i] = vars[p]
		}
		vals := make([]bool, len(ps))
		for bits := 0; bits < 1<<uint(len(ps)); bits++ {
			for i, p := range ps {
				vals[i] = (bits>>uint(i))&1 == 1
				letter[p] = vals[i]
			}
			nxt, err := cur.step(letter)
			if err != nil {
				return nil, err
			}
			k := nxt.key()
			t, ok := index[k]
			if !ok {
				t = len(states)
				index[k] = t
				states = append(states, nxt)
			}
			c := m.Cube(vs, vals)
			if gd, ok := guards[t]; ok {
				guards[t] = m.Or(gd, c)
			} else {
				guards[t] = c
				order = append(order, t)
			}
		}
		es := make([]Edge, len(order))
		for i, t := range order {
			es[i] = Edge{Guard: guards[t], To: t}
		}
		res.Edges = append(res.Edges, es)
	}
	return res, nil
}
