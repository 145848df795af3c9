package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry bundles the collectors exported on /metrics.
type Registry struct {
	reg      *prometheus.Registry
	HTTP     *HTTPMetrics
	Reports  *ReportMetrics
	Commerce *CommerceMetrics
}

// NewRegistry registers process, Go runtime and application collectors.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &Registry{
		reg:      reg,
		HTTP:     NewHTTPMetrics(reg),
		Reports:  NewReportMetrics(reg),
		Commerce: NewCommerceMetrics(reg),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// Gatherer exposes the registry to tests.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
