package metrics

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"

	"radiantwavetech.com/radiantwave-updater/internal/domain/overlay"
	"radiantwavetech.com/radiantwave-updater/internal/domain/run"
)

func gauge(t *testing.T, r *Recorder, name string, labels map[string]string) float64 {
	t.Helper()

	families, err := r.Registry().Gather()
	require.NoError(t, err)

	for _, family := range families {
		if family.GetName() != name {
			continue
		}

		for _, metric := range family.GetMetric() {
			if matches(metric, labels) {
				return metric.GetGauge().GetValue()
			}
		}
	}

	require.Failf(t, "metric not found", "%s %v", name, labels)

	return 0
}

func matches(metric *dto.Metric, labels map[string]string) bool {
	if len(metric.GetLabel()) != len(labels) {
		return false
	}

	for _, pair := range metric.GetLabel() {
		if labels[pair.GetName()] != pair.GetValue() {
			return false
		}
	}

	return true
}

func TestRecorder_Finish(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, time.March, 2, 4, 0, 0, 0, time.UTC)
	clock := clockwork.NewFakeClockAt(start)
	r := NewRecorder(clock)

	r.Step("refresh", true)
	r.Step("install", false)
	r.Membership(overlay.CorrectIdentity)

	clock.Advance(90 * time.Second)

	require.Equal(t, 90*time.Second, r.Finish(run.Failure))

	require.InDelta(t, 90, gauge(t, r, "radiantwave_updater_last_run_duration_seconds", nil), 0.001)
	require.InDelta(t, float64(start.Add(90*time.Second).Unix()),
		gauge(t, r, "radiantwave_updater_last_run_timestamp_seconds", nil), 0.001)

	require.InDelta(t, 1, gauge(t, r, "radiantwave_updater_last_run_outcome", map[string]string{"outcome": "failure"}), 0)
	require.InDelta(t, 0, gauge(t, r, "radiantwave_updater_last_run_outcome", map[string]string{"outcome": "success"}), 0)
	require.InDelta(t, 0,
		gauge(t, r, "radiantwave_updater_last_run_outcome", map[string]string{"outcome": "success-noop"}), 0)

	require.InDelta(t, 1, gauge(t, r, "radiantwave_updater_step_success", map[string]string{"step": "refresh"}), 0)
	require.InDelta(t, 0, gauge(t, r, "radiantwave_updater_step_success", map[string]string{"step": "install"}), 0)

	require.InDelta(t, 1,
		gauge(t, r, "radiantwave_updater_overlay_membership", map[string]string{"state": "correct_identity"}), 0)
	require.InDelta(t, 0,
		gauge(t, r, "radiantwave_updater_overlay_membership", map[string]string{"state": "logged_out"}), 0)
}

func TestRecorder_Flush(t *testing.T) {
	t.Parallel()

	r := NewRecorder(clockwork.NewFakeClock())
	r.Finish(run.SuccessNoop)

	path := filepath.Join(t.TempDir(), "radiantwave_updater.prom")
	r.Flush(context.Background(), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `radiantwave_updater_last_run_outcome{outcome="success-noop"} 1`)
	require.Contains(t, string(data), "# TYPE radiantwave_updater_last_run_duration_seconds gauge")

	// No path, no file; a bad path is only logged.
	r.Flush(context.Background(), "")
	r.Flush(context.Background(), filepath.Join(t.TempDir(), "missing", "dir", "x.prom"))
	require.Error(t, r.WriteTextfile(filepath.Join(t.TempDir(), "missing", "dir", "x.prom")))
}
