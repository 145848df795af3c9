package metrics

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
)

func TestRegistryExportsApplicationMetrics(t *testing.T) {
	r := NewRegistry()
	r.HTTP.Observe(http.MethodGet, "/api/medicines", 200, 20*time.Millisecond)
	r.Reports.ObserveBuild("overview", 250*time.Millisecond, 12)
	r.Reports.IncFailure("sellers")
	r.Commerce.OrderCreated()
	r.Commerce.PaymentConfirmed("conflict")
	r.Commerce.CouponRedeemed("")

	mfs, err := r.Gatherer().Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "http_requests_total", "route", "/api/medicines"); err != nil || got != 1 {
		t.Fatalf("expected one request, got %f (%v)", got, err)
	}
	if got, err := fetchHistogramSum(mfs, "report_build_duration_seconds", "type", "overview"); err != nil || got <= 0 {
		t.Fatalf("expected report duration, got %f (%v)", got, err)
	}
	if got, err := fetchCounterValue(mfs, "report_build_failure", "type", "sellers"); err != nil || got != 1 {
		t.Fatalf("expected report failure, got %f (%v)", got, err)
	}
	if got, err := fetchCounterValue(mfs, "payments_confirmed_total", "result", "conflict"); err != nil || got != 1 {
		t.Fatalf("expected payment outcome, got %f (%v)", got, err)
	}
	if got, err := fetchCounterValue(mfs, "coupon_redemptions_total", "result", "unknown"); err != nil || got != 1 {
		t.Fatalf("expected empty label to normalize, got %f (%v)", got, err)
	}

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "orders_created_total 1") {
		t.Fatalf("expected exposition to include orders counter")
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var h *HTTPMetrics
	h.Observe("GET", "/", 200, time.Second)
	var r *ReportMetrics
	r.ObserveBuild("x", time.Second, 1)
	var c *CommerceMetrics
	c.OrderCreated()
	NewCommerceMetrics(nil).PaymentConfirmed("ok")
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
