package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ReportMetrics records sales report builds.
type ReportMetrics struct {
	duration *prometheus.HistogramVec
	rows     *prometheus.HistogramVec
	failure  *prometheus.CounterVec
}

func NewReportMetrics(reg prometheus.Registerer) *ReportMetrics {
	if reg == nil {
		return &ReportMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "report_build_duration_seconds",
		Help:    "Duration of sales report builds in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"type"})
	rows := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "report_source_orders",
		Help:    "Orders scanned per sales report build.",
		Buckets: prometheus.ExponentialBuckets(1, 4, 8),
	}, []string{"type"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "report_build_failure",
		Help: "Failed sales report builds.",
	}, []string{"type"})
	reg.MustRegister(duration, rows, failure)
	return &ReportMetrics{duration: duration, rows: rows, failure: failure}
}

// ObserveBuild records duration and scanned order count for a report type.
func (r *ReportMetrics) ObserveBuild(reportType string, elapsed time.Duration, orders int) {
	if r == nil || r.duration == nil {
		return
	}
	label := normalizeLabel(reportType)
	r.duration.WithLabelValues(label).Observe(elapsed.Seconds())
	r.rows.WithLabelValues(label).Observe(float64(orders))
}

func (r *ReportMetrics) IncFailure(reportType string) {
	if r == nil || r.failure == nil {
		return
	}
	r.failure.WithLabelValues(normalizeLabel(reportType)).Inc()
}
