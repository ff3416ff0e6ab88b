// Package eligibility decides whether a profile qualifies for a scheme and,
// when it does not, which single rule failed first.
package eligibility

import (
	"time"

	"sarkar/internal/eligibility/metrics"
	profilemodels "sarkar/internal/profile/models"
	schememodels "sarkar/internal/scheme/models"
)

// Evaluate runs the ordered checks and returns the first failure. The only
// error is ErrInvalidDateOfBirth; callers are expected to validate dates of
// birth before evaluating. Pure: no I/O, no clock.
func Evaluate(profile profilemodels.Profile, scheme schememodels.Scheme, now time.Time) (Result, error) {
	age, err := Age(profile.DateOfBirth, now)
	if err != nil {
		return Result{}, err
	}
	s := subject{profile: profile, scheme: scheme, age: age}
	for _, c := range checks {
		if !c.passes(s) {
			return rejected(c.reason), nil
		}
	}
	return eligible(), nil
}

// Engine is Evaluate with an injected clock and outcome metrics.
type Engine struct {
	clock   func() time.Time
	metrics *metrics.Metrics
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the clock used when callers don't supply a time.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		e.clock = clock
	}
}

// WithMetrics records one outcome sample per evaluation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{clock: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Now returns the engine clock's current time.
func (e *Engine) Now() time.Time {
	return e.clock()
}

// Evaluate evaluates at the given instant and records the outcome.
func (e *Engine) Evaluate(profile profilemodels.Profile, scheme schememodels.Scheme, now time.Time) (Result, error) {
	result, err := Evaluate(profile, scheme, now)
	if err != nil {
		e.metrics.IncrementInvalidProfile()
		return result, err
	}
	e.metrics.IncrementOutcome(result.ReasonLabel())
	return result, nil
}
