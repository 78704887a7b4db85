// Package metrics provides Prometheus metrics for loan reviews.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// OutcomeOK labels a review that produced a result.
const OutcomeOK = "OK"

type Metrics struct {
	ReviewsTotal       *prometheus.CounterVec   // Reviews by outcome code (OK or an error code)
	RiskLatencySeconds *prometheus.HistogramVec // Risk scorer call duration by outcome
}

// New registers the loan review metrics with reg. A nil reg leaves them
// unregistered.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ReviewsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "loanreview_reviews_total",
			Help: "Total number of loan reviews by outcome code",
		}, []string{"code"}),

		RiskLatencySeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "loanreview_risk_latency_seconds",
			Help:    "Duration of risk scoring calls by outcome",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"outcome"}),
	}
}

// IncReview counts one finished review.
func (m *Metrics) IncReview(code string) {
	m.ReviewsTotal.WithLabelValues(code).Inc()
}

// ObserveRiskLatency records one risk scorer call.
func (m *Metrics) ObserveRiskLatency(outcome string, durationSeconds float64) {
	m.RiskLatencySeconds.WithLabelValues(outcome).Observe(durationSeconds)
}
