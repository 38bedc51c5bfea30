// SPDX-License-Identifier: Apache-2.0
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Work-Fort/Intake/pkg/form"
	"github.com/Work-Fort/Intake/pkg/wizard"
)

// Outcome label values
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Metrics holds the submission collectors
type Metrics struct {
	Registry    *prometheus.Registry
	Submissions *prometheus.CounterVec
	Duration    *prometheus.HistogramVec
}

// New creates and registers the collectors on a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		Submissions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "intake_submissions_total",
			Help: "Wizard submissions by flow and outcome",
		}, []string{"flow", "outcome"}),
		Duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "intake_submission_duration_seconds",
			Help:    "Latency of submission gateway calls",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"flow"}),
	}
}

// Observe records one gateway call
func (m *Metrics) Observe(flow string, elapsed time.Duration, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	m.Submissions.WithLabelValues(flow, outcome).Inc()
	m.Duration.WithLabelValues(flow).Observe(elapsed.Seconds())
}

// Instrument wraps a gateway so every call is counted and timed
func Instrument(m *Metrics, flow string, next wizard.Gateway) wizard.Gateway {
	if m == nil {
		return next
	}
	return wizard.GatewayFunc(func(ctx context.Context, s form.Snapshot) (wizard.Receipt, error) {
		start := time.Now()
		receipt, err := next.Submit(ctx, s)
		m.Observe(flow, time.Since(start), err)
		return receipt, err
	})
}
