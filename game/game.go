// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package game solves reachability games over symbolic automata and
// abstracts maximally permissive strategies from their solutions.
package game

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/go-air/rims/bdd"
	"github.com/go-air/rims/dfa"
)

// Player is a participant of a game.
type Player int

const (
	Agent Player = iota
	Environment
)

func (p Player) String() string {
	switch p {
	case Agent:
		return "agent"
	case Environment:
		return "environment"
	}
	return fmt.Sprintf("player(%d)", int(p))
}

var (
	// ErrPlayers is returned by New for a configuration of starting and
	// protagonist players which is not supported.
	ErrPlayers = errors.New("game: unsupported players")
	// ErrBudget is returned by Run when the fixpoint did not converge
	// within the iteration budget.  Realizability is then unknown.
	ErrBudget = errors.New("game: iteration budget exhausted")
)

// Result is the solution of a game.
type Result struct {
	Realizable bool
	// WinningStates holds over the states from which the protagonist
	// can force the goal.
	WinningStates bdd.Node
	// WinningMoves holds over states and protagonist moves making
	// progress towards the goal.
	WinningMoves bdd.Node
	Iterations   int
}

// MaxSet is a maximally permissive strategy.  Nondeferring moves make
// progress towards the goal, Deferring moves also include those staying
// in the winning region without progress.  Nondeferring implies
// Deferring.
type MaxSet struct {
	Deferring    bdd.Node
	Nondeferring bdd.Node
}

// Zero returns the MaxSet allowing nothing.
func Zero(m *bdd.Mgr) MaxSet {
	return MaxSet{Deferring: m.False(), Nondeferring: m.False()}
}

// Restrict conjoins both strategies of s with n.
func (s MaxSet) Restrict(m *bdd.Mgr, n bdd.Node) MaxSet {
	return MaxSet{
		Deferring:    m.And(s.Deferring, n),
		Nondeferring: m.And(s.Nondeferring, n)}
}

// Observer is notified of each solved game.
type Observer interface {
	ObserveSynthesis(iterations int, d time.Duration, realizable bool)
}

// IterationObserver is an Observer also notified of the winning states
// after each fixpoint iteration.
type IterationObserver interface {
	Observer
	ObserveIteration(i int, w bdd.Node)
}

// Option configures a Synth.
type Option func(*Synth)

// WithBudget bounds the number of fixpoint iterations, 0 for no bound.
func WithBudget(n int) Option {
	return func(s *Synth) { s.budget = n }
}

// WithLogger sets the logger of a Synth.
func WithLogger(l *zap.Logger) Option {
	return func(s *Synth) { s.log = l }
}

// WithObserver sets an observer of solved games.
func WithObserver(o Observer) Option {
	return func(s *Synth) { s.obs = o }
}

// Synth is a reachability game over an arena in which the agent moves
// first, choosing the output variables, and the environment answers
// with the input variables.
type Synth struct {
	arena   *dfa.T
	mgr     *bdd.Mgr
	goal    bdd.Node
	space   bdd.Node
	sub     map[int]bdd.Node
	inputs  []int
	outputs []int

	budget int
	log    *zap.Logger
	obs    Observer
}

// New creates the game of reaching goal in arena while staying in
// space.  Only the agent as both starting and protagonist player is
// supported.
func New(arena *dfa.T, start, protagonist Player, goal, space bdd.Node, opts ...Option) (*Synth, error) {
	if start != Agent || protagonist != Agent {
		return nil, fmt.Errorf("%w: %s starting, %s protagonist", ErrPlayers, start, protagonist)
	}
	m := arena.Mgr()
	s := &Synth{
		arena:   arena,
		mgr:     m,
		goal:    goal,
		space:   space,
		sub:     m.ComposeVector(arena.ID(), arena.Trans()),
		inputs:  m.Inputs(),
		outputs: m.Outputs(),
		log:     zap.NewNop()}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Preimage returns the states and agent moves from which every
// environment answer leads into w.
func (s *Synth) Preimage(w bdd.Node) bdd.Node {
	return s.mgr.Forall(s.mgr.Compose(w, s.sub), s.inputs)
}

// ProjectStates abstracts the agent moves of ms.
func (s *Synth) ProjectStates(ms bdd.Node) bdd.Node {
	return s.mgr.Exists(ms, s.outputs)
}

// Run solves the game.  It returns an error wrapping ErrBudget if the
// iteration budget is exhausted, and the context error if ctx is done
// before the fixpoint is reached.
func (s *Synth) Run(ctx context.Context) (Result, error) {
	m := s.mgr
	start := time.Now()
	w := m.And(s.space, s.goal)
	moves := w
	iters := 0
	for {
		if err := ctx.Err(); err != nil {
			return Result{}, fmt.Errorf("game: after %d iterations: %w", iters, err)
		}
		if s.budget > 0 && iters >= s.budget {
			return Result{Iterations: iters}, fmt.Errorf("%w: %d iterations", ErrBudget, iters)
		}
		iters++
		pre := s.Preimage(w)
		nmoves := m.Or(moves, m.And(s.space, m.Not(w), pre))
		nw := s.ProjectStates(nmoves)
		if it, ok := s.obs.(IterationObserver); ok {
			it.ObserveIteration(iters, nw)
		}
		if m.Equal(nw, w) {
			r := Result{
				Realizable:    s.includesInitial(nw),
				WinningStates: nw,
				WinningMoves:  nmoves,
				Iterations:    iters}
			d := time.Since(start)
			s.log.Debug("game solved",
				zap.Bool("realizable", r.Realizable),
				zap.Int("iterations", iters),
				zap.Duration("elapsed", d))
			if s.obs != nil {
				s.obs.ObserveSynthesis(iters, d, r.Realizable)
			}
			return r, nil
		}
		moves, w = nmoves, nw
	}
}

func (s *Synth) includesInitial(w bdd.Node) bool {
	vals := make([]bool, s.mgr.NumVars())
	init := s.arena.Initial()
	for i, v := range s.arena.StateVars() {
		vals[v] = init[i]
	}
	return s.mgr.Eval(w, vals)
}

// MaxSet abstracts the maximally permissive strategy of r.
func (s *Synth) MaxSet(r Result) MaxSet {
	m := s.mgr
	return MaxSet{
		Nondeferring: r.WinningMoves,
		Deferring:    m.Or(r.WinningMoves, m.And(r.WinningStates, s.Preimage(r.WinningStates)))}
}
