// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package metrics exports prometheus metrics of synthesis and intention
// management.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Metrics holds the collectors of a process on their own registry.  A
// nil *Metrics discards observations.
type Metrics struct {
	reg *prometheus.Registry

	games      *prometheus.CounterVec
	iterations prometheus.Histogram
	synthesis  prometheus.Histogram
	adoptions  *prometheus.CounterVec
	drops      prometheus.Counter
	actions    prometheus.Counter
}

// New creates the collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		reg: reg,
		games: f.NewCounterVec(prometheus.CounterOpts{
			Name: "rims_games_total",
			Help: "Total reachability games solved by outcome",
		}, []string{"realizable"}),
		iterations: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "rims_fixpoint_iterations",
			Help:    "Fixpoint iterations per solved game",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
		synthesis: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "rims_synthesis_duration_seconds",
			Help:    "Duration of solving a reachability game",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
		adoptions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "rims_adoptions_total",
			Help: "Total adoption attempts by kind and outcome",
		}, []string{"kind", "adopted"}),
		drops: f.NewCounter(prometheus.CounterOpts{
			Name: "rims_dropped_intentions_total",
			Help: "Total intentions dropped",
		}),
		actions: f.NewCounter(prometheus.CounterOpts{
			Name: "rims_actions_total",
			Help: "Total executed actions",
		}),
	}
}

// ObserveSynthesis records a solved game.
func (m *Metrics) ObserveSynthesis(iterations int, d time.Duration, realizable bool) {
	if m == nil {
		return
	}
	m.games.WithLabelValues(strconv.FormatBool(realizable)).Inc()
	m.iterations.Observe(float64(iterations))
	m.synthesis.Observe(d.Seconds())
}

// ObserveAdoption records an adoption attempt.
func (m *Metrics) ObserveAdoption(kind string, adopted bool) {
	if m == nil {
		return
	}
	m.adoptions.WithLabelValues(kind, strconv.FormatBool(adopted)).Inc()
}

// ObserveDrop records n dropped intentions.
func (m *Metrics) ObserveDrop(n int) {
	if m == nil {
		return
	}
	m.drops.Add(float64(n))
}

// ObserveAction records an executed action.
func (m *Metrics) ObserveAction() {
	if m == nil {
		return
	}
	m.actions.Inc()
}

// Handler serves the registry of m.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

// Serve serves m at addr/metrics in the background.
func (m *Metrics) Serve(addr string, log *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("metrics server", zap.String("addr", addr), zap.Error(err))
		}
	}()
	log.Info("serving metrics", zap.String("addr", addr))
	return srv
}
