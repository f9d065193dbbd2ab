package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	// Auth
	RegistrationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_registrations_total",
			Help: "Registration attempts by outcome",
		},
		[]string{"result"}, // ok|duplicate|invalid|error
	)
	LoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_logins_total",
			Help: "Login attempts by outcome",
		},
		[]string{"result"}, // ok|invalid_credentials|error
	)
	LevelUpsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "user_level_ups_total",
			Help: "Total level-ups granted",
		},
	)

	// Audit worker queue
	WorkerQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "worker_queue_depth",
			Help: "Current worker queue depth",
		},
	)

	initOnce sync.Once
)

var Handler = promhttp.Handler

// Init registers the collectors with the default registry. Safe to call twice.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestsTotal)
		prometheus.MustRegister(RegistrationsTotal)
		prometheus.MustRegister(LoginsTotal)
		prometheus.MustRegister(LevelUpsTotal)
		prometheus.MustRegister(WorkerQueueDepth)
	})
}
