package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the deadline sweep and push delivery.
type Metrics struct {
	SweepDuration prometheus.Histogram

	// Sweep runs by result: "completed", "no_schemes", "store_unavailable"
	SweepRuns *prometheus.CounterVec

	NotificationsSent prometheus.Counter
	UsersFailed       prometheus.Counter

	// Per-token delivery attempts by driver and outcome: "delivered" or "failed"
	Deliveries *prometheus.CounterVec
}

// New creates and registers the notification metrics.
func New() *Metrics {
	return &Metrics{
		SweepDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "sarkar_deadline_sweep_duration_seconds",
			Help:    "Duration of one deadline notification sweep",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
		SweepRuns: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sarkar_deadline_sweep_runs_total",
			Help: "Deadline sweep runs by result",
		}, []string{"result"}),
		NotificationsSent: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sarkar_deadline_notifications_sent_total",
			Help: "Consolidated deadline notifications delivered to at least one device",
		}),
		UsersFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sarkar_deadline_sweep_users_failed_total",
			Help: "Users whose sweep task ended with an error",
		}),
		Deliveries: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sarkar_push_deliveries_total",
			Help: "Push deliveries per device token",
		}, []string{"driver", "outcome"}),
	}
}

func (m *Metrics) ObserveSweep(result string, d time.Duration) {
	if m != nil {
		m.SweepRuns.WithLabelValues(result).Inc()
		m.SweepDuration.Observe(d.Seconds())
	}
}

func (m *Metrics) IncrementNotified() {
	if m != nil {
		m.NotificationsSent.Inc()
	}
}

func (m *Metrics) IncrementUserFailed() {
	if m != nil {
		m.UsersFailed.Inc()
	}
}

func (m *Metrics) AddDeliveries(driver string, delivered, failed int) {
	if m != nil {
		m.Deliveries.WithLabelValues(driver, "delivered").Add(float64(delivered))
		m.Deliveries.WithLabelValues(driver, "failed").Add(float64(failed))
	}
}
