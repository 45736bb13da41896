// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package bdd provides canonical Boolean functions over a single,
// append-only pool of variables.
//
// A Mgr owns both the decision diagram engine and the variable pool. The
// pool is partitioned into named variables (fluents, action bits), input
// variables (environment reactions), output variables (agent actions) and
// state variable blocks, one block per automaton. Blocks are identified by
// an AutomatonID and are never resized once allocated.
//
// Nodes are opaque handles owned by the engine; two nodes denote the same
// function iff Equal returns true.
package bdd
