package reports

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/pharmacy-backend/pkg/db/models"
	"github.com/angelmondragon/pharmacy-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pharmacy-backend/pkg/errors"
	"github.com/angelmondragon/pharmacy-backend/pkg/metrics"
)

type stubSource struct {
	ordersFn func(ctx context.Context, rng Range, detailed bool) ([]models.Order, error)
}

func (s stubSource) OrdersInRange(ctx context.Context, rng Range, detailed bool) ([]models.Order, error) {
	return s.ordersFn(ctx, rng, detailed)
}

var (
	alice  = &models.User{ID: uuid.New(), Name: "Alice", Email: "alice@x.com"}
	bob    = &models.User{ID: uuid.New(), Name: "Bob", Email: "bob@x.com"}
	seller = &models.User{ID: uuid.New(), Name: "Pharma Co", Email: "sales@pharma.co", Role: enums.UserRoleSeller}
	pain   = &models.Category{ID: uuid.New(), Name: "Pain Relief"}
	advil  = &models.Medicine{ID: uuid.New(), Name: "Advil", Price: decimal.NewFromInt(12), CategoryID: pain.ID, Category: pain, SellerID: seller.ID, Seller: seller}
	tylen  = &models.Medicine{ID: uuid.New(), Name: "Tylenol", Price: decimal.NewFromInt(9), CategoryID: pain.ID, Category: pain, SellerID: seller.ID, Seller: seller}
	day    = time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
)

func order(user *models.User, status enums.PaymentStatus, total int64, at time.Time, items ...models.OrderItem) models.Order {
	return models.Order{
		ID:            uuid.New(),
		UserID:        user.ID,
		User:          user,
		PaymentStatus: status,
		TotalAmount:   decimal.NewFromInt(total),
		CreatedAt:     at,
		Items:         items,
	}
}

func line(m *models.Medicine, qty int, price int64) models.OrderItem {
	return models.OrderItem{MedicineID: m.ID, Medicine: m, Quantity: qty, Price: decimal.NewFromInt(price)}
}

func TestBuildOverviewTotalsPaidSales(t *testing.T) {
	rng, err := ParseRange("2025-01-01", "2025-01-31")
	require.NoError(t, err)
	current := []models.Order{
		order(alice, enums.PaymentStatusPaid, 100, day),
		order(bob, enums.PaymentStatusPaid, 200, day),
	}
	got := BuildOverview(rng, current, nil)

	assert.Equal(t, 300.0, got.TotalSales)
	assert.Equal(t, 2, got.TotalOrders)
	assert.Equal(t, 2, got.PaidOrders)
	assert.Equal(t, 2, got.TotalCustomers)
	assert.Equal(t, 150.0, got.AverageOrderValue)
	assert.Equal(t, "2025-01-01 to 2025-01-31", got.Period)
	assert.Equal(t, Growth{}, got.Growth)
}

func TestBuildOverviewGrowthAndUnpaidOrders(t *testing.T) {
	rng, err := ParseRange("2025-01-01", "2025-01-31")
	require.NoError(t, err)
	current := []models.Order{
		order(alice, enums.PaymentStatusPaid, 150, day),
		order(alice, enums.PaymentStatusPending, 80, day),
		order(bob, enums.PaymentStatusFailed, 20, day),
	}
	previous := []models.Order{
		order(alice, enums.PaymentStatusPaid, 100, day.AddDate(0, -1, 0)),
	}
	got := BuildOverview(rng, current, previous)

	assert.Equal(t, 150.0, got.TotalSales)
	assert.Equal(t, 3, got.TotalOrders)
	assert.Equal(t, 1, got.PaidOrders)
	assert.Equal(t, 50.0, got.AverageOrderValue)
	assert.Equal(t, 50.0, got.Growth.Sales)
	assert.Equal(t, 200.0, got.Growth.Orders)
	assert.Equal(t, 100.0, got.Growth.Customers)
}

func TestTopMedicinesRanksPaidRevenue(t *testing.T) {
	rows := []models.Order{
		order(alice, enums.PaymentStatusPaid, 0, day, line(advil, 2, 10), line(tylen, 1, 9)),
		order(bob, enums.PaymentStatusPaid, 0, day, line(tylen, 3, 9)),
		order(bob, enums.PaymentStatusPending, 0, day, line(advil, 50, 10)),
	}
	got := TopMedicines(rows, 20)
	require.Len(t, got, 2)

	assert.Equal(t, "Tylenol", got[0].Name)
	assert.Equal(t, 4, got[0].QuantitySold)
	assert.Equal(t, 36.0, got[0].Revenue)
	assert.Equal(t, "Pain Relief", got[0].Category)
	assert.Equal(t, "Pharma Co", got[0].Seller)

	assert.Equal(t, "Advil", got[1].Name)
	assert.Equal(t, 20.0, got[1].Revenue)
	assert.Equal(t, 12.0, got[1].AvgPrice, "avgPrice is the current unit price")

	assert.Len(t, TopMedicines(rows, 1), 1)
}

func TestSellerPerformanceCommission(t *testing.T) {
	orphan := &models.Medicine{ID: uuid.New(), Name: "Orphan", Price: decimal.NewFromInt(5), SellerID: uuid.New()}
	first := order(alice, enums.PaymentStatusPaid, 0, day, line(advil, 2, 10), line(tylen, 1, 9))
	rows := []models.Order{
		first,
		order(bob, enums.PaymentStatusPaid, 0, day, line(tylen, 1, 9)),
		order(bob, enums.PaymentStatusPaid, 0, day, line(orphan, 1, 5)),
	}
	got := SellerPerformance(rows)
	require.Len(t, got, 2)

	top := got[0]
	assert.Equal(t, "Pharma Co", top.Name)
	assert.Equal(t, "sales@pharma.co", top.Email)
	assert.Equal(t, 38.0, top.TotalSales)
	assert.Equal(t, 2, top.TotalOrders)
	assert.Equal(t, 4, top.TotalMedicines)
	assert.Equal(t, 19.0, top.AverageOrderValue)
	assert.Equal(t, 3.8, top.Commission)

	assert.Equal(t, unknownSeller, got[1].Name)
}

func TestCustomerAnalyticsCountsAllOrders(t *testing.T) {
	later := day.Add(48 * time.Hour)
	rows := []models.Order{
		order(alice, enums.PaymentStatusPaid, 40, day),
		order(alice, enums.PaymentStatusPending, 60, later),
		order(bob, enums.PaymentStatusPaid, 90, day),
	}
	got := CustomerAnalytics(rows)
	require.Len(t, got, 2)

	assert.Equal(t, "Bob", got[0].Name)
	assert.Equal(t, 90.0, got[0].TotalSpent)

	a := got[1]
	assert.Equal(t, 2, a.TotalOrders)
	assert.Equal(t, 40.0, a.TotalSpent)
	assert.Equal(t, 20.0, a.AverageOrderValue)
	require.NotNil(t, a.LastOrderDate)
	assert.True(t, later.Equal(*a.LastOrderDate))
}

func TestEngineBuildDispatchesAndObserves(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewReportMetrics(reg)
	var calls []Range
	engine, err := NewEngine(stubSource{ordersFn: func(_ context.Context, rng Range, _ bool) ([]models.Order, error) {
		calls = append(calls, rng)
		return []models.Order{order(alice, enums.PaymentStatusPaid, 100, day)}, nil
	}}, m, 0)
	require.NoError(t, err)

	rng, err := ParseRange("2025-01-10", "2025-01-19")
	require.NoError(t, err)
	report, err := engine.Build(context.Background(), rng, enums.ReportTypeOverview)
	require.NoError(t, err)
	require.NotNil(t, report.Overview)
	require.Len(t, calls, 2)
	assert.True(t, calls[1].End.Equal(rng.Start))
	assert.True(t, calls[1].Start.Equal(rng.Start.Add(-rng.End.Sub(rng.Start))))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), histogramCount(families, "report_build_duration_seconds"))

	empty, err := engine.Build(context.Background(), rng, enums.ReportType("weekly"))
	require.NoError(t, err)
	raw, err := json.Marshal(empty)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(raw))
}

func TestEngineBuildFailure(t *testing.T) {
	engine, err := NewEngine(stubSource{ordersFn: func(context.Context, Range, bool) ([]models.Order, error) {
		return nil, errors.New("db down")
	}}, nil, 0)
	require.NoError(t, err)
	_, err = engine.Build(context.Background(), Range{Start: day, End: day}, enums.ReportTypeSellers)
	assert.Equal(t, pkgerrors.CodeInternal, pkgerrors.CodeOf(err))
}

func TestReportJSONShape(t *testing.T) {
	raw, err := json.Marshal(Report{Type: enums.ReportTypeMedicines})
	require.NoError(t, err)
	assert.JSONEq(t, `{"medicines":[]}`, string(raw))
}

func histogramCount(families []*dto.MetricFamily, name string) uint64 {
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		var n uint64
		for _, m := range f.GetMetric() {
			n += m.GetHistogram().GetSampleCount()
		}
		return n
	}
	return 0
}
