package admin

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internaladmin "github.com/angelmondragon/pharmacy-backend/internal/admin"
	"github.com/angelmondragon/pharmacy-backend/internal/orders"
	"github.com/angelmondragon/pharmacy-backend/internal/reports"
	"github.com/angelmondragon/pharmacy-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pharmacy-backend/pkg/errors"
)

type stubAdminService struct {
	internaladmin.Service
	recentLimit int
	decided     uuid.UUID
	rejectErr   error
}

func (s *stubAdminService) RecentUsers(ctx context.Context, limit int) ([]internaladmin.RecentUser, error) {
	s.recentLimit = limit
	return []internaladmin.RecentUser{}, nil
}

func (s *stubAdminService) AcceptPayment(ctx context.Context, orderID uuid.UUID) (*internaladmin.Decision, error) {
	s.decided = orderID
	return &internaladmin.Decision{Message: "Payment accepted", Order: orders.OrderDTO{ID: orderID}}, nil
}

func (s *stubAdminService) RejectPayment(ctx context.Context, orderID uuid.UUID) (*internaladmin.Decision, error) {
	if s.rejectErr != nil {
		return nil, s.rejectErr
	}
	s.decided = orderID
	return &internaladmin.Decision{Message: "Payment rejected", Order: orders.OrderDTO{ID: orderID}}, nil
}

type stubEngine struct {
	rng        reports.Range
	reportType enums.ReportType
	report     *reports.Report
}

func (e *stubEngine) Build(ctx context.Context, rng reports.Range, reportType enums.ReportType) (*reports.Report, error) {
	e.rng = rng
	e.reportType = reportType
	if e.report != nil {
		return e.report, nil
	}
	return &reports.Report{Type: reportType}, nil
}

func withParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestRecentUsersDefaultLimit(t *testing.T) {
	svc := &stubAdminService{}
	resp := httptest.NewRecorder()
	RecentUsers(svc, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/admin/recent-users", nil))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, internaladmin.DefaultRecentUsers, svc.recentLimit)
}

func TestAcceptPaymentByOrderIDParam(t *testing.T) {
	orderID := uuid.New()
	svc := &stubAdminService{}
	req := withParam(httptest.NewRequest(http.MethodPatch, "/api/admin/accept-payment/"+orderID.String(), nil), "orderId", orderID.String())

	resp := httptest.NewRecorder()
	AcceptPayment(svc, nil).ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, orderID, svc.decided)
	assert.Contains(t, resp.Body.String(), "Payment accepted")
}

func TestRejectPaymentByIDParam(t *testing.T) {
	orderID := uuid.New()
	svc := &stubAdminService{}
	req := withParam(httptest.NewRequest(http.MethodPatch, "/api/admin/payments/"+orderID.String()+"/reject", nil), "id", orderID.String())

	resp := httptest.NewRecorder()
	RejectPayment(svc, nil).ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, orderID, svc.decided)
}

func TestRejectPaymentUnknownOrder(t *testing.T) {
	orderID := uuid.New()
	svc := &stubAdminService{rejectErr: pkgerrors.New(pkgerrors.CodeNotFound, "Order not found")}
	req := withParam(httptest.NewRequest(http.MethodPatch, "/api/admin/payments/"+orderID.String()+"/reject", nil), "id", orderID.String())

	resp := httptest.NewRecorder()
	RejectPayment(svc, nil).ServeHTTP(resp, req)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestSalesReportRequiresDates(t *testing.T) {
	resp := httptest.NewRecorder()
	SalesReport(&stubEngine{}, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/admin/reports/sales?start=2026-01-01", nil))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestSalesReportInvalidRange(t *testing.T) {
	resp := httptest.NewRecorder()
	SalesReport(&stubEngine{}, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/admin/reports/sales?start=2026-02-01&end=2026-01-01", nil))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestSalesReportDefaultsToOverview(t *testing.T) {
	engine := &stubEngine{}
	resp := httptest.NewRecorder()
	SalesReport(engine, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/admin/reports/sales?start=2026-01-01&end=2026-01-31", nil))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, enums.ReportTypeOverview, engine.reportType)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), engine.rng.Start)
	assert.Equal(t, 31, engine.rng.End.Day())
}

func TestExportReportFromClientData(t *testing.T) {
	restore := timeNowUTC
	timeNowUTC = func() time.Time { return time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC) }
	defer func() { timeNowUTC = restore }()

	engine := &stubEngine{}
	body := `{"reportData":{"sellers":[{"id":"s1","name":"Acme","totalSales":100,"totalOrders":2,"commission":10}]}}`
	req := httptest.NewRequest(http.MethodPost, "/api/admin/reports/export?format=csv&type=sellers", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp := httptest.NewRecorder()
	ExportReport(engine, nil).ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, `attachment; filename="sales-report-sellers-2026-03-04.csv"`, resp.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(resp.Body.String(), "Report Data\n"))
	assert.Contains(t, resp.Body.String(), "Acme,100,2")
	assert.Empty(t, engine.reportType, "engine should not run when reportData is supplied")
}

func TestExportReportBuildsFromDateRange(t *testing.T) {
	engine := &stubEngine{report: &reports.Report{Type: enums.ReportTypeOverview, Overview: &reports.Overview{TotalSales: 50, TotalOrders: 1}}}
	body := `{"dateRange":{"start":"2026-01-01","end":"2026-01-31"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/admin/reports/export?format=pdf", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp := httptest.NewRecorder()
	ExportReport(engine, nil).ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, enums.ReportTypeOverview, engine.reportType)
	assert.Equal(t, "PDF Report for overview - This is a placeholder PDF content", resp.Body.String())
}

func TestExportReportUnsupportedFormat(t *testing.T) {
	body := `{"dateRange":{"start":"2026-01-01","end":"2026-01-31"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/admin/reports/export?format=xlsx", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp := httptest.NewRecorder()
	ExportReport(&stubEngine{}, nil).ServeHTTP(resp, req)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), "Unsupported format")
}

func TestExportReportNeedsDataOrRange(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/admin/reports/export", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")

	resp := httptest.NewRecorder()
	ExportReport(&stubEngine{}, nil).ServeHTTP(resp, req)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}
