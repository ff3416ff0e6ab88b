package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for catalog partitioning and ingestion.
type Metrics struct {
	PartitionLatency prometheus.Histogram

	// Partitioned schemes by side: "eligible" or "rejected"
	PartitionedSchemes *prometheus.CounterVec

	SchemesIngested prometheus.Counter
}

// New creates and registers the scheme metrics.
func New() *Metrics {
	return &Metrics{
		PartitionLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "sarkar_scheme_partition_duration_seconds",
			Help:    "Duration of partitioning the active catalog for one profile",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		PartitionedSchemes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sarkar_scheme_partitioned_total",
			Help: "Schemes placed on each side of a partition",
		}, []string{"side"}),
		SchemesIngested: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sarkar_scheme_ingested_total",
			Help: "Schemes written by catalog ingestion",
		}),
	}
}

func (m *Metrics) ObservePartition(d time.Duration, eligible, rejected int) {
	if m != nil {
		m.PartitionLatency.Observe(d.Seconds())
		m.PartitionedSchemes.WithLabelValues("eligible").Add(float64(eligible))
		m.PartitionedSchemes.WithLabelValues("rejected").Add(float64(rejected))
	}
}

func (m *Metrics) AddIngested(n int) {
	if m != nil {
		m.SchemesIngested.Add(float64(n))
	}
}
