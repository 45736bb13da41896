// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package bench

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/go-air/rims/bdd"
	"github.com/go-air/rims/domain"
	"github.com/go-air/rims/intent"
	"github.com/go-air/rims/internal/xio"
)

// Options configures the solving of an instance.
type Options struct {
	Budget    int
	NodeSize  int
	CacheSize int
	Log       *zap.Logger
	Observer  intent.Observer
}

func (o Options) mgr() (*bdd.Mgr, error) {
	var opts []bdd.Option
	if o.NodeSize > 0 {
		opts = append(opts, bdd.NodeSize(o.NodeSize))
	}
	if o.CacheSize > 0 {
		opts = append(opts, bdd.CacheSize(o.CacheSize))
	}
	return bdd.New(opts...)
}

func (o Options) log() *zap.Logger {
	if o.Log == nil {
		return zap.NewNop()
	}
	return o.Log
}

// Run is a run of the intention manager over a suite.
type Run struct {
	ID          uuid.UUID
	Suite       *Suite
	Start       time.Time
	Timeout     time.Duration // whole run, 0 for none
	InstTimeout time.Duration // per instance, 0 for none
	Jobs        int
	Opts        Options
}

// NewRun creates a run of s with a fresh id.
func NewRun(s *Suite, jobs int, opts Options) *Run {
	if jobs < 1 {
		jobs = 1
	}
	return &Run{ID: uuid.New(), Suite: s, Jobs: jobs, Opts: opts}
}

// InstRun is the outcome of one instance of a run.
type InstRun struct {
	Run      *Run
	Inst     int
	Start    time.Time
	Dur      time.Duration
	Adoption []time.Duration
	Adopted  int
	Error    string
}

// Record returns the result row of ir.  Paths are recorded as given.
func (ir *InstRun) Record() IntentionRecord {
	inst := ir.Run.Suite.Instances[ir.Inst]
	return IntentionRecord{
		Domain:     inst.Domain,
		Problem:    inst.Problem,
		Intentions: inst.Goals,
		Adoption:   ir.Adoption,
		Total:      ir.Dur}
}

// dur returns the time instance runs may take from now on.
func (r *Run) dur() time.Duration {
	d := r.InstTimeout
	if r.Timeout > 0 {
		left := time.Until(r.Start.Add(r.Timeout))
		if d == 0 || left < d {
			d = left
		}
	}
	return d
}

// Do runs every instance, at most Jobs at a time, each with its own
// variable pool.  Instance failures are recorded in the InstRun, Do
// only fails if ctx is done.
func (r *Run) Do(ctx context.Context) ([]*InstRun, error) {
	r.Start = time.Now()
	log := r.Opts.log().With(zap.String("run", r.ID.String()), zap.String("suite", r.Suite.Name))
	res := make([]*InstRun, len(r.Suite.Instances))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.Jobs)
	for i := range r.Suite.Instances {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			ir := &InstRun{Run: r, Inst: i, Start: time.Now()}
			ictx, cancel := gctx, context.CancelFunc(func() {})
			if d := r.dur(); d != 0 {
				ictx, cancel = context.WithTimeout(gctx, d)
			}
			defer cancel()
			out, err := Intentions(ictx, r.Suite.Instances[i], r.Opts)
			ir.Dur = time.Since(ir.Start)
			if err != nil {
				ir.Error = err.Error()
				log.Warn("instance failed", zap.Int("inst", i), zap.Error(err))
			} else {
				ir.Adoption = out.AdoptionTimes()
				ir.Adopted = out.Len()
				log.Info("instance done",
					zap.Int("inst", i),
					zap.Int("adopted", ir.Adopted),
					zap.Duration("elapsed", ir.Dur))
			}
			res[i] = ir
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return res, err
	}
	return res, ctx.Err()
}

// Load compiles the domain and problem of inst.
func Load(inst Instance, opts Options) (*domain.Compiled, error) {
	d, err := domain.LoadDomain(inst.Domain)
	if err != nil {
		return nil, err
	}
	p, err := domain.LoadProblem(inst.Problem)
	if err != nil {
		return nil, err
	}
	m, err := opts.mgr()
	if err != nil {
		return nil, err
	}
	c, err := domain.Compile(m, d, p)
	if err != nil {
		return nil, err
	}
	if err := c.CheckInvariants(); err != nil {
		return nil, err
	}
	return c, nil
}

// Intentions initializes an intention manager on inst.
func Intentions(ctx context.Context, inst Instance, opts Options) (*intent.Manager, error) {
	c, err := Load(inst, opts)
	if err != nil {
		return nil, err
	}
	goals, err := xio.ReadFileLines(inst.Goals)
	if err != nil {
		return nil, err
	}
	mopts := []intent.Option{intent.WithBudget(opts.Budget), intent.WithLogger(opts.log())}
	if opts.Observer != nil {
		mopts = append(mopts, intent.WithObserver(opts.Observer))
	}
	return intent.New(ctx, c, goals, mopts...)
}
