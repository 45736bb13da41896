// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package cmdutil holds the flags and setup shared by the commands.
package cmdutil

import (
	"context"
	"net/http"
	_ "net/http/pprof" // served on --pprof
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/go-air/rims/bench"
	"github.com/go-air/rims/intent"
	"github.com/go-air/rims/internal/config"
	"github.com/go-air/rims/internal/logx"
	"github.com/go-air/rims/internal/metrics"
)

// Env is the environment of a running command.
type Env struct {
	Config  config.Config
	Log     *zap.Logger
	Metrics *metrics.Metrics

	srv *http.Server
}

// Flags holds the values of the shared flags.
type Flags struct {
	configPath string
	pprofAddr  string
	cfg        config.Config
}

// Register adds the shared flags to the persistent flags of cmd.
func Register(cmd *cobra.Command) *Flags {
	f := &Flags{cfg: config.Default()}
	fs := cmd.PersistentFlags()
	fs.StringVar(&f.configPath, "config", "", "YAML configuration file")
	fs.StringVar(&f.pprofAddr, "pprof", "", "address to serve http profile (eg :6060)")
	fs.StringVar(&f.cfg.LogLevel, "log-level", f.cfg.LogLevel, "log level (debug, info, warn, error)")
	fs.BoolVar(&f.cfg.Dev, "dev", f.cfg.Dev, "development (console) logging")
	fs.StringVar(&f.cfg.Color, "color", f.cfg.Color, "colored output (auto, always, never)")
	fs.IntVar(&f.cfg.Budget, "budget", f.cfg.Budget, "fixpoint iteration budget per game, 0 for none")
	fs.StringVar(&f.cfg.MetricsAddr, "metrics-addr", f.cfg.MetricsAddr, "address to serve prometheus metrics (eg :9090)")
	fs.IntVar(&f.cfg.NodeSize, "bdd-nodes", f.cfg.NodeSize, "initial BDD node table size")
	fs.IntVar(&f.cfg.CacheSize, "bdd-cache", f.cfg.CacheSize, "BDD operation cache size")
	return f
}

// Config returns the configuration file values overridden by the flags
// set on cmd.
func (f *Flags) Config(cmd *cobra.Command) (config.Config, error) {
	if f.configPath == "" {
		return f.cfg, f.cfg.Validate()
	}
	c, err := config.Load(f.configPath)
	if err != nil {
		return c, err
	}
	fs := cmd.Flags()
	set := func(name string, apply func()) {
		if fs.Changed(name) {
			apply()
		}
	}
	set("log-level", func() { c.LogLevel = f.cfg.LogLevel })
	set("dev", func() { c.Dev = f.cfg.Dev })
	set("color", func() { c.Color = f.cfg.Color })
	set("budget", func() { c.Budget = f.cfg.Budget })
	set("metrics-addr", func() { c.MetricsAddr = f.cfg.MetricsAddr })
	set("bdd-nodes", func() { c.NodeSize = f.cfg.NodeSize })
	set("bdd-cache", func() { c.CacheSize = f.cfg.CacheSize })
	set("jobs", func() { c.Jobs = f.cfg.Jobs })
	return c, c.Validate()
}

// JobsVar binds the jobs flag of cmd to the configuration.
func (f *Flags) JobsVar(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.cfg.Jobs, "jobs", f.cfg.Jobs, "number of instances run concurrently")
}

// Setup builds the environment of cmd.
func (f *Flags) Setup(cmd *cobra.Command) (*Env, error) {
	c, err := f.Config(cmd)
	if err != nil {
		return nil, err
	}
	log, err := logx.New(c.LogLevel, c.Dev)
	if err != nil {
		return nil, err
	}
	env := &Env{Config: c, Log: log}
	if f.pprofAddr != "" {
		go func() {
			log.Info("pprof", zap.Error(http.ListenAndServe(f.pprofAddr, nil)))
		}()
	}
	if c.MetricsAddr != "" {
		env.Metrics = metrics.New()
		env.srv = env.Metrics.Serve(c.MetricsAddr, log)
	}
	return env, nil
}

// Close stops the metrics server and flushes the log.
func (e *Env) Close() {
	if e == nil {
		return
	}
	if e.srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = e.srv.Shutdown(ctx)
	}
	_ = e.Log.Sync()
}

// Color tells whether output to f should be colored.
func (e *Env) Color(f *os.File) bool {
	switch e.Config.Color {
	case "always":
		return true
	case "never":
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Observer returns the metrics observer, nil if metrics are not served.
func (e *Env) Observer() intent.Observer {
	if e.Metrics == nil {
		return nil
	}
	return e.Metrics
}

// BenchOptions returns the instance options given by the configuration.
func (e *Env) BenchOptions() bench.Options {
	return bench.Options{
		Budget:    e.Config.Budget,
		NodeSize:  e.Config.NodeSize,
		CacheSize: e.Config.CacheSize,
		Log:       e.Log,
		Observer:  e.Observer()}
}
