// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package intent manages a priority ordered portfolio of LTLf goals,
// called intentions, over a nondeterministic domain.
//
// A Manager keeps the intentions together with the maximally permissive
// strategy realizing all of them from the current state.  Goals may be
// checked for realizability at a priority and adopted weakly, keeping
// every intention, or strongly, dropping the intentions of lower
// priority which conflict with the new goal.  Executing an action moves
// every automaton and progresses every intention.
package intent
