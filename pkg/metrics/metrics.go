package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records login attempts by user type and result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "startin_auth_attempts_total",
			Help: "Total number of login attempts",
		},
		[]string{"user_type", "result"},
	)

	// SignupCodes counts verification codes issued and their outcome when checked
	// (issued|verified|expired|mismatch).
	SignupCodes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "startin_signup_codes_total",
			Help: "Total number of signup verification code events",
		},
		[]string{"event"},
	)

	// PasskeyChecks counts company passkey verifications by result (match|miss).
	PasskeyChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "startin_passkey_checks_total",
			Help: "Total number of company passkey verifications",
		},
		[]string{"result"},
	)

	// ImportRows counts bulk import rows by entity and outcome (added|updated|failed).
	ImportRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "startin_import_rows_total",
			Help: "Total number of rows processed by bulk imports",
		},
		[]string{"entity", "outcome"},
	)

	// Applications counts submitted job applications by outcome (created|duplicate).
	Applications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "startin_applications_total",
			Help: "Total number of job application submissions",
		},
		[]string{"outcome"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "startin_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
