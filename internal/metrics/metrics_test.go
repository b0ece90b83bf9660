package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, r *Recorder) string {
	t.Helper()
	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestRecorder_Counts(t *testing.T) {
	r := New()
	r.ObserveSweep(20*time.Millisecond, 2)
	r.StepFired("remind")
	r.StepFired("remind")
	r.StepFired("mark_refused")
	r.Notification("manager", false)
	r.Transition("submit", "pending_verification")
	r.AutoAssigned("hire")

	body := scrape(t, r)
	assert.Contains(t, body, "docket_sweeps_total 1")
	assert.Contains(t, body, "docket_sweep_errors_total 2")
	assert.Contains(t, body, `docket_escalation_steps_fired_total{action="remind"} 2`)
	assert.Contains(t, body, `docket_escalation_steps_fired_total{action="mark_refused"} 1`)
	assert.Contains(t, body, `docket_notifications_total{audience="manager",result="failure"} 1`)
	assert.Contains(t, body, `docket_transitions_total{event="submit",to="pending_verification"} 1`)
	assert.Contains(t, body, `docket_auto_assignments_total{trigger="hire"} 1`)
	assert.Contains(t, body, "go_goroutines")
}

func TestRecorder_NilIsNoop(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.ObserveSweep(time.Second, 1)
		r.StepFired("remind")
		r.Notification("recipient", true)
		r.Transition("send", "awaiting_action")
		r.AutoAssigned("hire")
	})
	assert.Nil(t, r.Registry())

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 404, rec.Code)
}

func TestRecorder_SeparateRegistries(t *testing.T) {
	a, b := New(), New()
	a.StepFired("notify_hr")
	assert.NotContains(t, scrape(t, b), `action="notify_hr"`)
}
