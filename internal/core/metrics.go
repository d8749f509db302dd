package core

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/JonMunkholm/datacleaner/internal/clean"
)

// Metrics holds the Prometheus collectors for cleaning runs.
type Metrics struct {
	Runs          *prometheus.CounterVec
	RowsIn        prometheus.Counter
	RowsOut       prometheus.Counter
	RunDuration   prometheus.Histogram
	StageDuration *prometheus.HistogramVec
	ActiveRuns    prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "datacleaner",
			Name:      "runs_total",
			Help:      "Cleaning runs by outcome and error code.",
		}, []string{"status", "code"}),
		RowsIn: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "datacleaner",
			Name:      "rows_in_total",
			Help:      "Rows received by cleaning runs.",
		}),
		RowsOut: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "datacleaner",
			Name:      "rows_out_total",
			Help:      "Rows produced by successful cleaning runs.",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "datacleaner",
			Name:      "run_duration_seconds",
			Help:      "Wall time of cleaning runs.",
			Buckets:   prometheus.DefBuckets,
		}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "datacleaner",
			Name:      "stage_duration_seconds",
			Help:      "Wall time of individual stages.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"stage"}),
		ActiveRuns: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "datacleaner",
			Name:      "active_runs",
			Help:      "Cleaning runs currently executing.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Runs, m.RowsIn, m.RowsOut, m.RunDuration, m.StageDuration, m.ActiveRuns)
	}
	return m
}

func (m *Metrics) observe(report *clean.RunReport, code string, err error) {
	if report != nil {
		m.RowsIn.Add(float64(report.RowsIn))
		for _, s := range report.Steps {
			m.StageDuration.WithLabelValues(s.Stage).Observe(s.Duration.Seconds())
		}
	}
	if err != nil {
		m.Runs.WithLabelValues("failed", code).Inc()
		return
	}
	m.Runs.WithLabelValues("succeeded", "").Inc()
	if report != nil {
		m.RowsOut.Add(float64(report.RowsOut))
		m.RunDuration.Observe(report.Duration.Seconds())
	}
}
