// Package metrics exposes Prometheus counters for runs and cases.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"uirunner/internal/domain"
)

// Run outcomes
const (
	OutcomePassed = "passed"
	OutcomeFailed = "failed"
	OutcomeFatal  = "fatal"
)

// Metrics records run and case outcomes
type Metrics struct {
	runs      *prometheus.CounterVec
	cases     *prometheus.CounterVec
	duration  prometheus.Histogram
	generated prometheus.Counter
}

// New registers the collectors with reg
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "uirunner",
			Name:      "runs_total",
			Help:      "Runs by outcome: passed, failed (some case failed) or fatal (launch or navigation error).",
		}, []string{"outcome"}),
		cases: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "uirunner",
			Name:      "cases_total",
			Help:      "Executed test cases by status.",
		}, []string{"status"}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "uirunner",
			Name:      "run_duration_seconds",
			Help:      "Wall time of a run, including fatal ones.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}),
		generated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "uirunner",
			Name:      "generated_cases_total",
			Help:      "Test cases produced by the generator.",
		}),
	}
}

// ObserveRun records a finished run. err is the run-fatal error, if any.
func (m *Metrics) ObserveRun(results []domain.TestResult, err error, d time.Duration) {
	if m == nil {
		return
	}
	m.duration.Observe(d.Seconds())
	if err != nil {
		m.runs.WithLabelValues(OutcomeFatal).Inc()
		return
	}

	outcome := OutcomePassed
	for _, r := range results {
		m.cases.WithLabelValues(string(r.Status)).Inc()
		if !r.Passed() {
			outcome = OutcomeFailed
		}
	}
	m.runs.WithLabelValues(outcome).Inc()
}

// ObserveGenerated records n generated cases
func (m *Metrics) ObserveGenerated(n int) {
	if m == nil {
		return
	}
	m.generated.Add(float64(n))
}
