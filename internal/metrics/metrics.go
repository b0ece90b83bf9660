// Package metrics exposes Prometheus counters for sweeps, notifications and
// lifecycle transitions. A nil *Recorder is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Recorder struct {
	registry *prometheus.Registry

	sweeps        prometheus.Counter
	sweepDuration prometheus.Histogram
	stepsFired    *prometheus.CounterVec
	sweepErrors   prometheus.Counter
	notifications *prometheus.CounterVec
	transitions   *prometheus.CounterVec
	autoAssigned  *prometheus.CounterVec
}

// New registers docket's collectors on a private registry, plus the Go and
// process collectors.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		sweeps: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "docket_sweeps_total",
			Help: "Escalation sweeps executed.",
		}),
		sweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "docket_sweep_duration_seconds",
			Help:    "Wall time of one escalation sweep.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
		stepsFired: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "docket_escalation_steps_fired_total",
			Help: "Escalation steps fired, by action.",
		}, []string{"action"}),
		sweepErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "docket_sweep_errors_total",
			Help: "Per-assignment failures collected during sweeps.",
		}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "docket_notifications_total",
			Help: "Notifier calls, by audience and result.",
		}, []string{"audience", "result"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "docket_transitions_total",
			Help: "Assignment lifecycle transitions, by event and target status.",
		}, []string{"event", "to"}),
		autoAssigned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "docket_auto_assignments_total",
			Help: "Assignments created by auto-assign rules, by trigger.",
		}, []string{"trigger"}),
	}
	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.sweeps, r.sweepDuration, r.stepsFired, r.sweepErrors,
		r.notifications, r.transitions, r.autoAssigned,
	)
	return r
}

// Registry is exposed for tests that gather metric values directly.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func (r *Recorder) ObserveSweep(d time.Duration, errs int) {
	if r == nil {
		return
	}
	r.sweeps.Inc()
	r.sweepDuration.Observe(d.Seconds())
	r.sweepErrors.Add(float64(errs))
}

func (r *Recorder) StepFired(action string) {
	if r == nil {
		return
	}
	r.stepsFired.WithLabelValues(action).Inc()
}

func (r *Recorder) Notification(audience string, ok bool) {
	if r == nil {
		return
	}
	result := "success"
	if !ok {
		result = "failure"
	}
	r.notifications.WithLabelValues(audience, result).Inc()
}

func (r *Recorder) Transition(event, to string) {
	if r == nil {
		return
	}
	r.transitions.WithLabelValues(event, to).Inc()
}

func (r *Recorder) AutoAssigned(trigger string) {
	if r == nil {
		return
	}
	r.autoAssigned.WithLabelValues(trigger).Inc()
}
