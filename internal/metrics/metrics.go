// Package metrics exposes Prometheus collectors for pipeline runs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "datacleaner"

// Stage labels for run metrics.
const (
	StageParse       = "parse"
	StageConsolidate = "consolidate"
	StageClean       = "clean"
	StageExport      = "export"
)

// Recorder is implemented by Collector and by Nop.
type Recorder interface {
	ObserveStage(stage string, d time.Duration)
	AddRows(stage string, n int)
	AddRuleApplications(rule string, n int)
	IncRun(outcome string)
	SetProjects(n int)
	SetActiveRuns(n int)
}

// Collector owns a private registry so tests and multiple servers in one
// process do not collide on the global one.
type Collector struct {
	registry *prometheus.Registry

	stageDuration    *prometheus.HistogramVec
	rowsTotal        *prometheus.CounterVec
	ruleApplications *prometheus.CounterVec
	runsTotal        *prometheus.CounterVec
	projects         prometheus.Gauge
	activeRuns       prometheus.Gauge
}

// New creates a Collector with Go runtime and process collectors registered.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),

		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of pipeline stages.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"stage"}),

		rowsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_total",
			Help:      "Rows handled per pipeline stage.",
		}, []string{"stage"}),

		ruleApplications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rule_applications_total",
			Help:      "Rule applications by rule kind.",
		}, []string{"rule"}),

		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Process runs by outcome.",
		}, []string{"outcome"}),

		projects: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "projects",
			Help:      "Projects currently held in memory.",
		}),

		activeRuns: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_runs",
			Help:      "Process runs currently holding a slot.",
		}),
	}

	c.registry.MustRegister(
		c.stageDuration,
		c.rowsTotal,
		c.ruleApplications,
		c.runsTotal,
		c.projects,
		c.activeRuns,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return c
}

// Registry returns the collector's registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) ObserveStage(stage string, d time.Duration) {
	c.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (c *Collector) AddRows(stage string, n int) {
	c.rowsTotal.WithLabelValues(stage).Add(float64(n))
}

func (c *Collector) AddRuleApplications(rule string, n int) {
	c.ruleApplications.WithLabelValues(rule).Add(float64(n))
}

func (c *Collector) IncRun(outcome string) {
	c.runsTotal.WithLabelValues(outcome).Inc()
}

func (c *Collector) SetProjects(n int) {
	c.projects.Set(float64(n))
}

func (c *Collector) SetActiveRuns(n int) {
	c.activeRuns.Set(float64(n))
}

// Nop discards everything.
type Nop struct{}

func (Nop) ObserveStage(string, time.Duration) {}
func (Nop) AddRows(string, int)                {}
func (Nop) AddRuleApplications(string, int)    {}
func (Nop) IncRun(string)                      {}
func (Nop) SetProjects(int)                    {}
func (Nop) SetActiveRuns(int)                  {}
