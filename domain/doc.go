// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package domain reads fully observable nondeterministic planning domains
// and compiles them into symbolic automata.
//
// A domain lists fluents, actions with a precondition and a set of
// alternative effects, and invariants.  The agent picks an action, the
// environment picks one of its effects.  Choosing an undefined action or
// one whose precondition fails sets the agent error flag, answering with
// an undefined effect sets the environment error flag; both flags are
// absorbing.
//
// Goals over a compiled domain may mention fluents, action names and the
// action bits act_0, act_1, ...  Rewrite replaces action names by the
// conjunction of action bit literals encoding them.
package domain
