package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Manager struct {
	// counters
	CounterRequests           *prometheus.CounterVec
	CounterHandleRequestPanic prometheus.Counter
	CounterSessionsStarted    prometheus.Counter
	CounterSessionsCompleted  prometheus.Counter
	CounterSetsLogged         *prometheus.CounterVec
	CounterPlansGenerated     *prometheus.CounterVec
	CounterGenerationFallback *prometheus.CounterVec
	CounterPersistenceErrors  *prometheus.CounterVec

	// gauges
	GaugeRequests       prometheus.Gauge
	GaugeActiveSessions prometheus.Gauge

	// histograms
	HistRequestDuration prometheus.Histogram
}

func NewTestManager() *Manager {
	return NewManager("fittrack", "test_server", prometheus.NewRegistry())
}

func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager("fittrack", "test_server", reg), reg
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	counterOpts := func(name, help string) prometheus.CounterOpts {
		return prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      name,
			Help:      help,
		}
	}

	return &Manager{
		CounterRequests: factory.NewCounterVec(
			counterOpts("request", "The total number of incoming requests"),
			[]string{"method", "status"},
		),
		CounterHandleRequestPanic: factory.NewCounter(
			counterOpts("handle_request_panic", "The total number of serve request panics"),
		),
		CounterSessionsStarted: factory.NewCounter(
			counterOpts("sessions_started", "The total number of started workout sessions"),
		),
		CounterSessionsCompleted: factory.NewCounter(
			counterOpts("sessions_completed", "The total number of completed workout sessions"),
		),
		CounterSetsLogged: factory.NewCounterVec(
			counterOpts("sets_logged", "The total number of logged sets"),
			[]string{"kind"},
		),
		CounterPlansGenerated: factory.NewCounterVec(
			counterOpts("plans_generated", "The total number of generated workout plans"),
			[]string{"strategy"},
		),
		CounterGenerationFallback: factory.NewCounterVec(
			counterOpts("generation_fallback", "Times the external generator degraded to the mock"),
			[]string{"operation"},
		),
		CounterPersistenceErrors: factory.NewCounterVec(
			counterOpts("session_persistence_errors", "Best-effort session writes that failed"),
			[]string{"operation"},
		),
		GaugeRequests: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "current_requests",
			Help:      "Current number of requests served",
		}),
		GaugeActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "active_sessions",
			Help:      "Number of live in-memory session trackers",
		}),
		HistRequestDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			Name:      "request_duration_seconds",
			Help:      "Total duration of requests in seconds",
		}),
	}
}
