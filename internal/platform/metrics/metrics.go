// Package metrics exposes Prometheus counters for the triage, bed and
// schedule engines. A nil *Recorder is valid and records nothing.
package metrics

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	TriageInferred = "inferred"
	TriageMissing  = "missing"
	TriageFailed   = "failed"

	BedAssigned    = "assigned"
	BedUnreachable = "unreachable"
	BedNone        = "none"

	ScheduleFeasible   = "feasible"
	ScheduleInfeasible = "infeasible"
)

type Recorder struct {
	registry *prometheus.Registry
	triage   *prometheus.CounterVec
	beds     *prometheus.CounterVec
	schedule *prometheus.CounterVec
	pipeline prometheus.Histogram
}

// NewRecorder registers the hospital collectors plus the Go runtime
// collectors on a private registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		triage: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hospital",
			Name:      "triage_scores_total",
			Help:      "Severity scores computed, by outcome.",
		}, []string{"outcome"}),
		beds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hospital",
			Name:      "bed_allocations_total",
			Help:      "Bed allocation records produced, by outcome.",
		}, []string{"outcome"}),
		schedule: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hospital",
			Name:      "schedule_runs_total",
			Help:      "Schedule solver runs, by outcome.",
		}, []string{"outcome"}),
		pipeline: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "hospital",
			Name:      "pipeline_duration_seconds",
			Help:      "Wall time of a full score/allocate/schedule run.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
	}
	r.registry.MustRegister(
		r.triage, r.beds, r.schedule, r.pipeline,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

func (r *Recorder) TriageScored(outcome string) {
	if r == nil {
		return
	}
	r.triage.WithLabelValues(outcome).Inc()
}

func (r *Recorder) BedAllocated(outcome string) {
	if r == nil {
		return
	}
	r.beds.WithLabelValues(outcome).Inc()
}

func (r *Recorder) ScheduleSolved(outcome string) {
	if r == nil {
		return
	}
	r.schedule.WithLabelValues(outcome).Inc()
}

func (r *Recorder) PipelineObserved(d time.Duration) {
	if r == nil {
		return
	}
	r.pipeline.Observe(d.Seconds())
}

// Registry returns the underlying registry, nil for a nil recorder.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{}))
}
