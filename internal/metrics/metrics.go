// Package metrics exposes prometheus collectors for exam sessions.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "proctor"

// Metrics groups every collector the service updates. A nil *Metrics is
// valid and records nothing, so tests can leave it out.
type Metrics struct {
	SessionsStarted    *prometheus.CounterVec
	SessionsGraded     *prometheus.CounterVec
	SessionsExpired    *prometheus.CounterVec
	SessionsSuperseded prometheus.Counter
	ActiveSessions     prometheus.Gauge
	ScorePercent       *prometheus.HistogramVec
	PersistFailures    prometheus.Counter
	AchievementsEarned *prometheus.CounterVec
}

// New creates the collectors and registers them with reg. A nil reg skips
// registration.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SessionsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_started_total",
			Help:      "Exam sessions started, by test.",
		}, []string{"test_id"}),
		SessionsGraded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_graded_total",
			Help:      "Exam sessions submitted and graded, by test.",
		}, []string{"test_id"}),
		SessionsExpired: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_expired_total",
			Help:      "Exam sessions closed by the time limit, by test.",
		}, []string{"test_id"}),
		SessionsSuperseded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_superseded_total",
			Help:      "In-progress sessions discarded because the user started another test.",
		}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Sessions currently in progress.",
		}),
		ScorePercent: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "score_percent",
			Help:      "Graded score percentage, by test.",
			Buckets:   []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		}, []string{"test_id"}),
		PersistFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_persist_failures_total",
			Help:      "Graded attempts that could not be written to the history store.",
		}),
		AchievementsEarned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "achievements_earned_total",
			Help:      "Achievements awarded, by achievement.",
		}, []string{"achievement"}),
	}

	if reg != nil {
		reg.MustRegister(
			m.SessionsStarted,
			m.SessionsGraded,
			m.SessionsExpired,
			m.SessionsSuperseded,
			m.ActiveSessions,
			m.ScorePercent,
			m.PersistFailures,
			m.AchievementsEarned,
		)
	}
	return m
}

func (m *Metrics) Started(testID string) {
	if m == nil {
		return
	}
	m.SessionsStarted.WithLabelValues(testID).Inc()
	m.ActiveSessions.Inc()
}

func (m *Metrics) Graded(testID string, percentage float64) {
	if m == nil {
		return
	}
	m.SessionsGraded.WithLabelValues(testID).Inc()
	m.ScorePercent.WithLabelValues(testID).Observe(percentage)
	m.ActiveSessions.Dec()
}

func (m *Metrics) Expired(testID string) {
	if m == nil {
		return
	}
	m.SessionsExpired.WithLabelValues(testID).Inc()
	m.ActiveSessions.Dec()
}

func (m *Metrics) Superseded() {
	if m == nil {
		return
	}
	m.SessionsSuperseded.Inc()
	m.ActiveSessions.Dec()
}

func (m *Metrics) PersistFailed() {
	if m == nil {
		return
	}
	m.PersistFailures.Inc()
}

func (m *Metrics) Awarded(achievement string) {
	if m == nil {
		return
	}
	m.AchievementsEarned.WithLabelValues(achievement).Inc()
}
