// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package bench

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/go-air/rims/dfa"
	"github.com/go-air/rims/game"
	"github.com/go-air/rims/internal/xio"
)

// ErrNoGoal indicates an empty goal file.
var ErrNoGoal = errors.New("bench: no goal")

// OneShot is the outcome of the maximally permissive synthesis of a
// single goal.
type OneShot struct {
	Goal   string
	Arena  *dfa.T
	Result game.Result
	MaxSet game.MaxSet
	Record SynthRecord
}

// Synthesize solves the first goal of inst's goal file over its domain
// restricted to the invariants.
func Synthesize(ctx context.Context, inst Instance, opts Options) (*OneShot, error) {
	start := time.Now()
	goals, err := xio.ReadFileLines(inst.Goals)
	if err != nil {
		return nil, err
	}
	if len(goals) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoGoal, inst.Goals)
	}
	c, err := Load(inst, opts)
	if err != nil {
		return nil, err
	}
	compiled := time.Now()

	f, err := c.ParseGoal(goals[0])
	if err != nil {
		return nil, err
	}
	e, err := dfa.FromFormula(c.Mgr(), f)
	if err != nil {
		return nil, err
	}
	g, err := dfa.FromExplicit(e)
	if err != nil {
		return nil, err
	}
	arena, err := dfa.DomainCompose(c.Automaton(), g)
	if err != nil {
		return nil, err
	}
	translated := time.Now()

	gopts := []game.Option{game.WithBudget(opts.Budget), game.WithLogger(opts.log())}
	if opts.Observer != nil {
		gopts = append(gopts, game.WithObserver(opts.Observer))
	}
	s, err := game.New(arena, game.Agent, game.Agent, arena.Final(), c.Invariants(), gopts...)
	if err != nil {
		return nil, err
	}
	r, err := s.Run(ctx)
	if err != nil {
		return nil, err
	}
	ms := s.MaxSet(r)
	if !r.Realizable {
		ms = game.Zero(c.Mgr())
	}
	done := time.Now()
	res := &OneShot{
		Goal:   goals[0],
		Arena:  arena,
		Result: r,
		MaxSet: ms.Restrict(c.Mgr(), c.Mgr().Not(c.AgentErrorNext())),
		Record: SynthRecord{
			Domain:    inst.Domain,
			Problem:   inst.Problem,
			Goal:      goals[0],
			Compile:   compiled.Sub(start),
			Translate: translated.Sub(compiled),
			Synthesis: done.Sub(translated),
			Total:     done.Sub(start)}}
	opts.log().Info("synthesis done",
		zap.String("goal", goals[0]),
		zap.Bool("realizable", r.Realizable),
		zap.Int("iterations", r.Iterations),
		zap.Duration("elapsed", res.Record.Total))
	return res, nil
}
