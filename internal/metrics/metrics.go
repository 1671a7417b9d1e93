// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package metrics provides Prometheus instrumentation for formula
// evaluation, implementing formula.EvaluatorMetrics directly against
// prometheus/client_golang. Tracing lives separately in internal/tracing;
// the two are not bridged through OpenTelemetry's metrics API.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records Prometheus metrics for a formula.Evaluator. A Collector
// is safe for concurrent use, matching the Evaluator it instruments.
type Collector struct {
	registry *prometheus.Registry

	cacheHitsTotal   *prometheus.CounterVec
	cacheMissesTotal *prometheus.CounterVec
	compiledTotal    *prometheus.CounterVec
	runsTotal        *prometheus.CounterVec
	runDuration      *prometheus.HistogramVec
}

// NewCollector creates a Collector registered against its own registry, so
// multiple Evaluators (e.g. one per test case) don't collide on metric
// names in the default global registry.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		cacheHitsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "formulae_cache_hits_total",
			Help: "Total number of fragment cache hits during dependency resolution.",
		}, []string{"identifier"}),
		cacheMissesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "formulae_cache_misses_total",
			Help: "Total number of fragment cache misses during dependency resolution.",
		}, []string{"identifier"}),
		compiledTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "formulae_compiled_total",
			Help: "Total number of times an identifier's composite expression was compiled.",
		}, []string{"identifier"}),
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "formulae_runs_total",
			Help: "Total number of Evaluator.Run calls, by identifier and outcome.",
		}, []string{"identifier", "outcome"}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "formulae_run_duration_seconds",
			Help:    "Evaluator.Run wall-clock duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"identifier"}),
	}

	registry.MustRegister(
		c.cacheHitsTotal,
		c.cacheMissesTotal,
		c.compiledTotal,
		c.runsTotal,
		c.runDuration,
	)

	return c
}

// CacheHit implements formula.EvaluatorMetrics.
func (c *Collector) CacheHit(identifier string) {
	c.cacheHitsTotal.WithLabelValues(identifier).Inc()
}

// CacheMiss implements formula.EvaluatorMetrics.
func (c *Collector) CacheMiss(identifier string) {
	c.cacheMissesTotal.WithLabelValues(identifier).Inc()
}

// Compiled implements formula.EvaluatorMetrics.
func (c *Collector) Compiled(identifier string) {
	c.compiledTotal.WithLabelValues(identifier).Inc()
}

// Run implements formula.EvaluatorMetrics.
func (c *Collector) Run(identifier string, ok bool) {
	outcome := "success"
	if !ok {
		outcome = "error"
	}
	c.runsTotal.WithLabelValues(identifier, outcome).Inc()
}

// ObserveRunDuration records how long a single Evaluator.Run call took.
// Callers time the call themselves (the EvaluatorMetrics interface has no
// duration hook) and report it here. Neither the CLI nor the MCP server
// calls it, and internal/log's EvaluationMiddleware does not either.
func (c *Collector) ObserveRunDuration(identifier string, d time.Duration) {
	c.runDuration.WithLabelValues(identifier).Observe(d.Seconds())
}

// Handler returns an HTTP handler exposing this Collector's metrics in the
// Prometheus exposition format, for hosts that run a metrics endpoint
// alongside the CLI or MCP server.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
