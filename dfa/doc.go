// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package dfa provides explicit and symbolic deterministic finite
// automata over the variables of a bdd.Mgr.
//
// An explicit automaton (Explicit) enumerates its states and labels its
// edges with guards.  A symbolic automaton (T) encodes its state as a
// block of state variables, least significant bit first, with one next
// state function per bit.  FromFormula translates LTLf formulas to
// explicit automata, FromExplicit lifts them, and Product and
// DomainCompose build game arenas.
package dfa
