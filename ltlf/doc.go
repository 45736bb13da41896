// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package ltlf provides linear temporal logic formulas over finite traces.
//
// Formulas are immutable trees built with the constructors of this
// package, which perform light simplification: constants are absorbed,
// nested conjunctions and disjunctions are flattened, duplicate operands
// are removed and operands are ordered canonically.  Two formulas are
// equal iff they print the same.
//
// The package gives negation normal form and one step progression, the
// latter in two flavours: ProgrNotLast for a step followed by more of the
// trace, and ProgrLast for the end of a trace.
package ltlf
