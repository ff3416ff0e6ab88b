package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts evaluation outcomes.
type Metrics struct {
	// Outcomes by reason; "eligible" for passing evaluations
	Outcomes *prometheus.CounterVec

	InvalidProfiles prometheus.Counter
}

// New creates and registers the eligibility metrics.
func New() *Metrics {
	return &Metrics{
		Outcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sarkar_eligibility_outcomes_total",
			Help: "Eligibility evaluations by outcome reason",
		}, []string{"reason"}),
		InvalidProfiles: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sarkar_eligibility_invalid_profiles_total",
			Help: "Evaluations refused because the date of birth was invalid",
		}),
	}
}

func (m *Metrics) IncrementOutcome(reason string) {
	if m != nil {
		m.Outcomes.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) IncrementInvalidProfile() {
	if m != nil {
		m.InvalidProfiles.Inc()
	}
}
