package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"

	"radiantwavetech.com/radiantwave-updater/internal/domain/overlay"
	"radiantwavetech.com/radiantwave-updater/internal/domain/run"
	"radiantwavetech.com/radiantwave-updater/internal/logger"
)

const (
	namespace = "radiantwave"
	subsystem = "updater"
)

// Recorder holds the gauges of one run on a private registry.
type Recorder struct {
	registry *prometheus.Registry
	clock    clockwork.Clock
	started  time.Time

	lastRun    prometheus.Gauge
	duration   prometheus.Gauge
	outcome    *prometheus.GaugeVec
	steps      *prometheus.GaugeVec
	membership *prometheus.GaugeVec
}

// NewRecorder creates a Recorder and starts timing the run.
func NewRecorder(clock clockwork.Clock) *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		clock:    clock,
		started:  clock.Now(),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last maintenance run finished.",
		}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "last_run_duration_seconds",
			Help:      "Duration of the last maintenance run in seconds.",
		}),
		outcome: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "last_run_outcome",
			Help:      "Outcome of the last maintenance run, 1 for the produced outcome.",
		}, []string{"outcome"}),
		steps: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "step_success",
			Help:      "Whether each executed step of the last run succeeded.",
		}, []string{"step"}),
		membership: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "overlay_membership",
			Help:      "Overlay membership observed by the last run, 1 for the current state.",
		}, []string{"state"}),
	}

	r.registry.MustRegister(r.lastRun, r.duration, r.outcome, r.steps, r.membership)

	return r
}

// Registry exposes the private registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Step records whether an executed step succeeded.
func (r *Recorder) Step(step string, ok bool) {
	value := 0.0
	if ok {
		value = 1
	}

	r.steps.WithLabelValues(step).Set(value)
}

// Membership marks state as the current overlay membership.
func (r *Recorder) Membership(state overlay.Membership) {
	for _, candidate := range overlay.Memberships() {
		value := 0.0
		if candidate == state {
			value = 1
		}

		r.membership.WithLabelValues(string(candidate)).Set(value)
	}
}

// Finish records the outcome and returns the run duration.
func (r *Recorder) Finish(outcome run.Outcome) time.Duration {
	now := r.clock.Now()
	elapsed := now.Sub(r.started)

	for _, candidate := range run.Outcomes() {
		value := 0.0
		if candidate == outcome {
			value = 1
		}

		r.outcome.WithLabelValues(string(candidate)).Set(value)
	}

	r.lastRun.Set(float64(now.UnixNano()) / float64(time.Second))
	r.duration.Set(elapsed.Seconds())

	return elapsed
}

// WriteTextfile writes the registry to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}

	return nil
}

// Flush writes the textfile when path is set. Failures are logged only.
func (r *Recorder) Flush(ctx context.Context, path string) {
	if path == "" {
		return
	}

	if err := r.WriteTextfile(path); err != nil {
		logger.WarnKV(ctx, "Metrics not written", "path", path, "error", err)
		return
	}

	logger.DebugKV(ctx, "Metrics written", "path", path)
}
