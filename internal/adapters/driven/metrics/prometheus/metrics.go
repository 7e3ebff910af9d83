// Package prometheus records pipeline run metrics with the Prometheus client.
//
// A run is a batch job, so metrics are not scraped from a server. They are
// collected in a private registry and written once per run in the text
// exposition format, for the node exporter textfile collector.
package prometheus

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/knowbeforeyouvote/kbyv/internal/core/domain"
	"github.com/knowbeforeyouvote/kbyv/internal/core/ports/driven"
)

var _ driven.Metrics = (*Metrics)(nil)

// Metrics provides observability for pipeline runs.
type Metrics struct {
	registry *prometheus.Registry

	// Stage durations by stage name
	StageLatency *prometheus.HistogramVec

	// Oracle calls by outcome
	OracleCalls *prometheus.CounterVec

	// Faults by kind
	Faults *prometheus.CounterVec

	// Candidates per confidence tier in the last run
	TierCandidates *prometheus.GaugeVec
}

// New creates a Metrics instance with all run metrics registered in its
// own registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		StageLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kbyv_stage_duration_seconds",
			Help:    "Duration of pipeline stages",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60, 300, 900},
		}, []string{"stage"}),

		OracleCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kbyv_oracle_calls_total",
			Help: "Disambiguation oracle calls by outcome",
		}, []string{"outcome"}), // outcome: "confirm", "reject", "uncertain", "cache_hit", "fault"

		Faults: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kbyv_faults_total",
			Help: "Faults recorded during runs by kind",
		}, []string{"kind"}),

		TierCandidates: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "kbyv_candidates",
			Help: "Candidates per confidence tier in the last run",
		}, []string{"tier"}),
	}
}

// Registry returns the registry holding the run metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveStage records the duration of one pipeline stage.
func (m *Metrics) ObserveStage(stage domain.RunStage, d time.Duration) {
	if m != nil {
		m.StageLatency.WithLabelValues(string(stage)).Observe(d.Seconds())
	}
}

// IncOracleCall records an oracle call outcome.
func (m *Metrics) IncOracleCall(outcome string) {
	if m != nil {
		m.OracleCalls.WithLabelValues(outcome).Inc()
	}
}

// IncFault records a fault by kind.
func (m *Metrics) IncFault(kind domain.FaultKind) {
	if m != nil {
		m.Faults.WithLabelValues(string(kind)).Inc()
	}
}

// SetTierCount records how many candidates ended in a tier.
func (m *Metrics) SetTierCount(tier domain.ConfidenceTier, n int) {
	if m != nil {
		m.TierCandidates.WithLabelValues(string(tier)).Set(float64(n))
	}
}

// WriteTextfile writes the current metrics to path atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
