package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds profile module counters.
type Metrics struct {
	ProfilesSaved  prometheus.Counter
	MembersAdded   prometheus.Counter
	MembersRemoved prometheus.Counter

	// Device token registrations by outcome: added, exists, evicted
	TokenRegistrations *prometheus.CounterVec
}

// New creates and registers the profile metrics.
func New() *Metrics {
	return &Metrics{
		ProfilesSaved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sarkar_profile_saved_total",
			Help: "Primary profiles saved",
		}),
		MembersAdded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sarkar_profile_family_members_added_total",
			Help: "Family members added",
		}),
		MembersRemoved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sarkar_profile_family_members_removed_total",
			Help: "Family members removed",
		}),
		TokenRegistrations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sarkar_profile_device_token_registrations_total",
			Help: "Device token registrations by outcome",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) IncrementProfilesSaved() {
	if m != nil {
		m.ProfilesSaved.Inc()
	}
}

func (m *Metrics) IncrementMembersAdded() {
	if m != nil {
		m.MembersAdded.Inc()
	}
}

func (m *Metrics) IncrementMembersRemoved() {
	if m != nil {
		m.MembersRemoved.Inc()
	}
}

func (m *Metrics) IncrementTokenRegistration(outcome string) {
	if m != nil {
		m.TokenRegistrations.WithLabelValues(outcome).Inc()
	}
}
