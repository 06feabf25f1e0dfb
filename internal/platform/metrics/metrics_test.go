package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	t.Parallel()
	m := New()

	m.SessionOpened()
	m.SessionOpened()
	m.SessionFinished("completed")
	m.SessionFinished("expired")
	m.SessionFinished("expired")
	m.Attempt(true)
	m.Attempt(false)
	m.Attempt(true)
	m.CareAction("feed")
	m.PetDied()
	m.PetRevived()
	m.ReminderSent()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.sessionsOpened))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sessionsFinished.WithLabelValues("completed")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.sessionsFinished.WithLabelValues("expired")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.attempts.WithLabelValues("true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.attempts.WithLabelValues("false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.careActions.WithLabelValues("feed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.petDeaths))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.petRevivals))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.remindersSent))
}

func TestNilMetricsIsNoop(t *testing.T) {
	t.Parallel()
	var m *Metrics

	assert.NotPanics(t, func() {
		m.SessionOpened()
		m.SessionFinished("completed")
		m.Attempt(true)
		m.CareAction("feed")
		m.ObserveOracle(time.Millisecond)
		m.PetDied()
		m.PetRevived()
		m.ReminderSent()
		m.ObserveTick(time.Second)
		m.ObserveHTTP(http.MethodGet, "/health", http.StatusOK, time.Millisecond)
	})
	assert.Nil(t, m.Registry())

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerExposesCollectors(t *testing.T) {
	t.Parallel()
	m := New()
	m.ObserveHTTP(http.MethodPost, "/api/sessions", http.StatusCreated, 20*time.Millisecond)
	m.ObserveTick(time.Second)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `petdeck_http_requests_total{code="201",method="POST",route="/api/sessions"} 1`)
	assert.Contains(t, string(body), "petdeck_planner_tick_duration_seconds_count 1")
	assert.Contains(t, string(body), "go_goroutines")
}
