// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package dfa

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-air/rims/bdd"
)

// Edge is a guarded transition of an explicit automaton.
type Edge struct {
	Guard bdd.Node
	To    int
}

// Explicit is an automaton whose states are the integers
// 0..len(Edges)-1.  Edge guards are functions over named variables of
// Mgr.
type Explicit struct {
	Mgr     *bdd.Mgr
	Initial int
	Finals  []int
	Edges   [][]Edge
}

// NumStates returns the number of states of e.
func (e *Explicit) NumStates() int {
	return len(e.Edges)
}

// IsFinal returns whether s is a final state of e.
func (e *Explicit) IsFinal(s int) bool {
	for _, f := range e.Finals {
		if f == s {
			return true
		}
	}
	return false
}

// Validate checks that e has at least one state and that all state
// references are in range.
func (e *Explicit) Validate() error {
	n := len(e.Edges)
	if n == 0 {
		return fmt.Errorf("%w: no states", ErrExplicit)
	}
	if e.Initial < 0 || e.Initial >= n {
		return fmt.Errorf("%w: initial state %d out of range", ErrExplicit, e.Initial)
	}
	for _, f := range e.Finals {
		if f < 0 || f >= n {
			return fmt.Errorf("%w: final state %d out of range", ErrExplicit, f)
		}
	}
	for s, es := range e.Edges {
		for _, d := range es {
			if d.To < 0 || d.To >= n {
				return fmt.Errorf("%w: edge %d -> %d out of range", ErrExplicit, s, d.To)
			}
		}
	}
	return nil
}

// Step returns the successor of s under the valuation vals, or -1 if
// no edge of s is enabled.
func (e *Explicit) Step(s int, vals []bool) int {
	for _, d := range e.Edges[s] {
		if e.Mgr.Eval(d.Guard, vals) {
			return d.To
		}
	}
	return -1
}

func (e *Explicit) String() string {
	var sb strings.Builder
	fs := append([]int(nil), e.Finals...)
	sort.Ints(fs)
	fmt.Fprintf(&sb, "states: %d initial: %d finals: %v\n", len(e.Edges), e.Initial, fs)
	for s, es := range e.Edges {
		for _, d := range es {
			fmt.Fprintf(&sb, "%d -> %d %v\n", s, d.To, e.Mgr.Support(d.Guard))
		}
	}
	return sb.String()
}
