// Package metrics exposes engine counters in the Prometheus format. Every
// method is safe to call on a nil *Metrics, which records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "petdeck"

// Metrics holds the registered collectors.
type Metrics struct {
	registry *prometheus.Registry

	sessionsOpened   prometheus.Counter
	sessionsFinished *prometheus.CounterVec
	attempts         *prometheus.CounterVec
	careActions      *prometheus.CounterVec
	oracleDuration   prometheus.Histogram
	petDeaths        prometheus.Counter
	petRevivals      prometheus.Counter
	remindersSent    prometheus.Counter
	tickDuration     prometheus.Histogram
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
}

// New creates a registry with the engine collectors plus the Go runtime and
// process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		sessionsOpened: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_opened_total",
			Help:      "Sessions moved to active.",
		}),
		sessionsFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_finished_total",
			Help:      "Sessions that reached a terminal status.",
		}, []string{"status"}),
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "attempts_total",
			Help:      "Graded attempts by verdict.",
		}, []string{"correct"}),
		careActions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "care_actions_total",
			Help:      "Care actions applied to pets.",
		}, []string{"kind"}),
		oracleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "oracle_duration_seconds",
			Help:      "Time spent scoring one attempt, retries included.",
			Buckets:   prometheus.DefBuckets,
		}),
		petDeaths: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pet_deaths_total",
			Help:      "Pets that died after the mercy window.",
		}),
		petRevivals: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pet_revivals_total",
			Help:      "Revival tokens redeemed.",
		}),
		remindersSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminders_total",
			Help:      "Reminders handed to the notifier.",
		}),
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "planner_tick_duration_seconds",
			Help:      "Duration of one planner tick over every user.",
			Buckets:   prometheus.DefBuckets,
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"method", "route", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.sessionsOpened,
		m.sessionsFinished,
		m.attempts,
		m.careActions,
		m.oracleDuration,
		m.petDeaths,
		m.petRevivals,
		m.remindersSent,
		m.tickDuration,
		m.httpRequests,
		m.httpDuration,
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// SessionOpened counts a session becoming active.
func (m *Metrics) SessionOpened() {
	if m == nil {
		return
	}
	m.sessionsOpened.Inc()
}

// SessionFinished counts a session reaching status.
func (m *Metrics) SessionFinished(status string) {
	if m == nil {
		return
	}
	m.sessionsFinished.WithLabelValues(status).Inc()
}

// Attempt counts a graded attempt.
func (m *Metrics) Attempt(correct bool) {
	if m == nil {
		return
	}
	m.attempts.WithLabelValues(strconv.FormatBool(correct)).Inc()
}

// CareAction counts a care action.
func (m *Metrics) CareAction(kind string) {
	if m == nil {
		return
	}
	m.careActions.WithLabelValues(kind).Inc()
}

// ObserveOracle records one scoring call.
func (m *Metrics) ObserveOracle(d time.Duration) {
	if m == nil {
		return
	}
	m.oracleDuration.Observe(d.Seconds())
}

// PetDied counts a death.
func (m *Metrics) PetDied() {
	if m == nil {
		return
	}
	m.petDeaths.Inc()
}

// PetRevived counts a redeemed token.
func (m *Metrics) PetRevived() {
	if m == nil {
		return
	}
	m.petRevivals.Inc()
}

// ReminderSent counts a reminder.
func (m *Metrics) ReminderSent() {
	if m == nil {
		return
	}
	m.remindersSent.Inc()
}

// ObserveTick records one planner tick.
func (m *Metrics) ObserveTick(d time.Duration) {
	if m == nil {
		return
	}
	m.tickDuration.Observe(d.Seconds())
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(method, route string, code int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
