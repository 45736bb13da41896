// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package intent

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/go-air/rims/bdd"
	"github.com/go-air/rims/dfa"
	"github.com/go-air/rims/domain"
	"github.com/go-air/rims/game"
	"github.com/go-air/rims/ltlf"
)

var (
	// ErrVocabulary indicates a goal mentioning an unknown proposition.
	ErrVocabulary = domain.ErrVocabulary
	// ErrPriority indicates a priority outside 1..n+1.
	ErrPriority = errors.New("intent: priority out of range")
	// ErrID indicates an intention id outside 1..n.
	ErrID = errors.New("intent: no such intention")
	// ErrAction indicates an action id outside the domain.
	ErrAction = errors.New("intent: no such action")
	// ErrReaction indicates a reaction id not encodable on the
	// reaction bits.
	ErrReaction = errors.New("intent: no such reaction")
	// ErrNotWinning indicates an action outside the current strategy.
	ErrNotWinning = errors.New("intent: action is not winning")
	// ErrStale indicates a check made before the last change of the
	// intentions.
	ErrStale = errors.New("intent: stale realizability check")
)

// Observer is notified of the activity of a Manager.
type Observer interface {
	game.Observer
	ObserveAdoption(kind string, adopted bool)
	ObserveDrop(n int)
	ObserveAction()
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger of a Manager.
func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// WithObserver sets the observer of a Manager.
func WithObserver(o Observer) Option {
	return func(m *Manager) { m.obs = o }
}

// WithBudget bounds the fixpoint iterations of every game, 0 for no
// bound.
func WithBudget(n int) Option {
	return func(m *Manager) { m.budget = n }
}

// Intention is an adopted goal.
type Intention struct {
	// Text is the goal as given.
	Text string
	// Goal is Text with action names rewritten to action bits.
	Goal *ltlf.Formula
	// Progress is the goal progressed through the executed steps.
	Progress ltlf.Progression

	auto     *dfa.T
	next     []bdd.Node // auto.Trans() recomposed through the domain
	strategy bdd.Node
}

// Automaton returns the automaton of the intention.
func (i *Intention) Automaton() *dfa.T { return i.auto }

// Strategy returns the deferring strategy of the intention alone,
// without agent errors.
func (i *Intention) Strategy() bdd.Node { return i.strategy }

func (i *Intention) String() string { return i.Progress.Obligation.String() }

type snapshot struct {
	intentions []*Intention
	maxSet     game.MaxSet
}

// Manager keeps a priority ordered list of intentions over a domain and
// the maximally permissive strategy realizing all of them.
//
// Intentions are numbered from 1, 1 being the highest priority.
//
// A Manager is safe for concurrent use.
type Manager struct {
	mu      sync.Mutex
	dom     *domain.Compiled
	mgr     *bdd.Mgr
	log     *zap.Logger
	obs     Observer
	budget  int
	version uint64

	vals     []bool // run-time valuation, indexed by variable
	snap     snapshot
	adoption []time.Duration
}

// New creates a Manager over dom and adopts goals in order.  A goal is
// adopted iff it is realizable alone and together with the goals
// adopted before it.  Unrealizable goals are skipped.  Malformed goals
// are fatal.
func New(ctx context.Context, dom *domain.Compiled, goals []string, opts ...Option) (*Manager, error) {
	m := &Manager{
		dom: dom,
		mgr: dom.Mgr(),
		log: zap.NewNop()}
	for _, o := range opts {
		o(m)
	}
	m.syncVals()
	d := dom.Automaton()
	for i, v := range d.StateVars() {
		m.vals[v] = d.Initial()[i]
	}
	ms, err := m.solveSet(ctx, nil, nil)
	if err != nil {
		return nil, err
	}
	m.snap.maxSet = ms
	for i, g := range goals {
		start := time.Now()
		ok, err := m.adopt(ctx, g, len(m.snap.intentions)+1, false, "init")
		if err != nil {
			return nil, fmt.Errorf("intent: goal %d %q: %w", i+1, g, err)
		}
		d := time.Since(start)
		m.adoption = append(m.adoption, d)
		m.log.Info("initial goal",
			zap.Int("line", i+1),
			zap.String("goal", g),
			zap.Bool("adopted", ok),
			zap.Duration("elapsed", d))
	}
	return m, nil
}

// syncVals extends the valuation to every variable of the pool.
func (m *Manager) syncVals() {
	for len(m.vals) < m.mgr.NumVars() {
		m.vals = append(m.vals, false)
	}
}

func (m *Manager) noErr() bdd.Node {
	return m.mgr.Not(m.dom.AgentErrorNext())
}

// solve plays the game of the domain composed with autos in space.
func (m *Manager) solve(ctx context.Context, autos []*dfa.T, space bdd.Node) (game.Result, *game.Synth, error) {
	as := append([]*dfa.T{m.dom.Automaton()}, autos...)
	arena, err := dfa.DomainCompose(as...)
	if err != nil {
		return game.Result{}, nil, err
	}
	opts := []game.Option{game.WithBudget(m.budget), game.WithLogger(m.log)}
	if m.obs != nil {
		opts = append(opts, game.WithObserver(m.obs))
	}
	s, err := game.New(arena, game.Agent, game.Agent, arena.Final(), space, opts...)
	if err != nil {
		return game.Result{}, nil, err
	}
	r, err := s.Run(ctx)
	return r, s, err
}

// space returns the invariants restricted to the strategies of is and
// the extra strategies.
func (m *Manager) space(is []*Intention, extra ...bdd.Node) bdd.Node {
	acc := m.dom.Invariants()
	for _, i := range is {
		acc = m.mgr.And(acc, i.strategy)
	}
	return m.mgr.And(append([]bdd.Node{acc}, extra...)...)
}

func autos(is []*Intention, extra ...*dfa.T) []*dfa.T {
	res := make([]*dfa.T, 0, len(is)+len(extra))
	for _, i := range is {
		res = append(res, i.auto)
	}
	return append(res, extra...)
}

// solveSet returns the MaxSet of the intentions is, the zero MaxSet
// if they are not jointly realizable.
func (m *Manager) solveSet(ctx context.Context, is []*Intention, cand *Intention) (game.MaxSet, error) {
	as := autos(is)
	space := m.space(is)
	if cand != nil {
		as = append(as, cand.auto)
		space = m.mgr.And(space, cand.strategy)
	}
	r, s, err := m.solve(ctx, as, space)
	if err != nil {
		return game.MaxSet{}, err
	}
	if !r.Realizable {
		return game.Zero(m.mgr), nil
	}
	return s.MaxSet(r).Restrict(m.mgr, m.noErr()), nil
}
