// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package bdd

import (
	"fmt"
	"strings"
)

// AutomatonID identifies a block of state variables in a Mgr.
type AutomatonID int

// NewNamed returns the variables for names, creating those which do not
// exist yet.
func (m *Mgr) NewNamed(names ...string) []int {
	res := make([]int, len(names))
	for i, nm := range names {
		if v, ok := m.names[nm]; ok {
			res[i] = v
			continue
		}
		v := m.grow(1)[0]
		m.names[nm] = v
		m.labels[v] = nm
		res[i] = v
	}
	return res
}

// Named returns the variable with name nm.
func (m *Mgr) Named(nm string) (int, bool) {
	v, ok := m.names[nm]
	return v, ok
}

// Label returns a printable name for variable v.
func (m *Mgr) Label(v int) string {
	if nm, ok := m.labels[v]; ok {
		return nm
	}
	for id, blk := range m.blocks {
		for i, w := range blk {
			if w == v {
				return fmt.Sprintf("A%d:Z%d", id, i)
			}
		}
	}
	return fmt.Sprintf("v%d", v)
}

// AddInputs marks vs as environment controlled.
func (m *Mgr) AddInputs(vs ...int) {
	m.inputs = append(m.inputs, vs...)
}

// AddOutputs marks vs as agent controlled.
func (m *Mgr) AddOutputs(vs ...int) {
	m.outputs = append(m.outputs, vs...)
}

// Inputs returns the environment controlled variables.
func (m *Mgr) Inputs() []int {
	return append([]int(nil), m.inputs...)
}

// Outputs returns the agent controlled variables.
func (m *Mgr) Outputs() []int {
	return append([]int(nil), m.outputs...)
}

// NewStateVars allocates a block of n fresh state variables.
func (m *Mgr) NewStateVars(n int) AutomatonID {
	id := AutomatonID(len(m.blocks))
	m.blocks = append(m.blocks, m.grow(n))
	return id
}

// NewNamedStateVars allocates a block of named state variables.
func (m *Mgr) NewNamedStateVars(names ...string) AutomatonID {
	id := AutomatonID(len(m.blocks))
	m.blocks = append(m.blocks, m.NewNamed(names...))
	return id
}

// CopyStateVars allocates a new id sharing the variables of id.
func (m *Mgr) CopyStateVars(id AutomatonID) AutomatonID {
	res := AutomatonID(len(m.blocks))
	m.blocks = append(m.blocks, append([]int(nil), m.blocks[id]...))
	return res
}

// ProductStateVars allocates a new id whose block is the concatenation
// of the blocks of ids.
func (m *Mgr) ProductStateVars(ids ...AutomatonID) AutomatonID {
	var blk []int
	for _, id := range ids {
		blk = append(blk, m.blocks[id]...)
	}
	res := AutomatonID(len(m.blocks))
	m.blocks = append(m.blocks, blk)
	return res
}

// NumAutomata returns the number of allocated ids.
func (m *Mgr) NumAutomata() int {
	return len(m.blocks)
}

// StateVars returns the variables of block id.
func (m *Mgr) StateVars(id AutomatonID) []int {
	return append([]int(nil), m.blocks[id]...)
}

// StateCube returns the cube of block id with values bits.
func (m *Mgr) StateCube(id AutomatonID, bits []bool) Node {
	return m.Cube(m.blocks[id], bits)
}

// ComposeVector returns the substitution which maps the i'th variable of
// block id to fns[i].  Variables not in the block are left unchanged.
func (m *Mgr) ComposeVector(id AutomatonID, fns []Node) map[int]Node {
	blk := m.blocks[id]
	sub := make(map[int]Node, len(blk))
	for i, v := range blk {
		sub[v] = fns[i]
	}
	return sub
}

// String gives a summary of the pool.
func (m *Mgr) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "variables: %d automata: %d\n", m.nvars, len(m.blocks))
	fmt.Fprintf(&sb, "inputs:")
	for _, v := range m.inputs {
		fmt.Fprintf(&sb, " %s", m.Label(v))
	}
	fmt.Fprintf(&sb, "\noutputs:")
	for _, v := range m.outputs {
		fmt.Fprintf(&sb, " %s", m.Label(v))
	}
	sb.WriteString("\n")
	for id, blk := range m.blocks {
		fmt.Fprintf(&sb, "A%d: %v\n", id, blk)
	}
	return sb.String()
}
