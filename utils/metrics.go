package utils

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DBOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_operation_duration_seconds",
			Help:    "Duration of database operations",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation", "collection"},
	)

	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "errors_total",
			Help: "Total number of errors by type",
		},
		[]string{"type", "reason"}, // database, auth, dispatch, watchdog
	)

	AlertsDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alerts_dispatched_total",
			Help: "Alerts dispatched by trigger reason and overall status",
		},
		[]string{"reason", "status"},
	)

	DeliveryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alert_delivery_attempts_total",
			Help: "Per-contact delivery attempts by channel and outcome",
		},
		[]string{"channel", "status"}, // sms/email, sent/failed
	)

	PendingTimers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "watchdog_pending_timers",
			Help: "Sessions with a scheduled expiry timer",
		},
	)

	SessionExpirations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watchdog_expirations_total",
			Help: "Expire runs by outcome",
		},
		[]string{"outcome"}, // alerted, skipped, failed
	)

	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"status", "type"}, // success/failure, login/register
	)

	Registrations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "user_registrations_total",
			Help: "Total number of user registrations",
		},
	)
)

// TrackDBOperation tracks database operation duration
func TrackDBOperation(operation, collection string) *prometheus.Timer {
	return prometheus.NewTimer(DBOperationDuration.WithLabelValues(operation, collection))
}

// TrackError increments the error counter
func TrackError(errorType, reason string) {
	ErrorsTotal.WithLabelValues(errorType, reason).Inc()
}

func TrackDispatch(reason, status string) {
	AlertsDispatched.WithLabelValues(reason, status).Inc()
}

func TrackDelivery(channel, status string) {
	DeliveryAttempts.WithLabelValues(channel, status).Inc()
}

func TrackExpiration(outcome string) {
	SessionExpirations.WithLabelValues(outcome).Inc()
}

func SetPendingTimers(n int) {
	PendingTimers.Set(float64(n))
}

func TrackAuthAttempt(status, authType string) {
	AuthAttempts.WithLabelValues(status, authType).Inc()
}

func TrackRegistration() {
	Registrations.Inc()
}
