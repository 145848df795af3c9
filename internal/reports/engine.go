// Package reports aggregates orders into sales reports and renders exports.
package reports

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/pharmacy-backend/pkg/db/models"
	"github.com/angelmondragon/pharmacy-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pharmacy-backend/pkg/errors"
	"github.com/angelmondragon/pharmacy-backend/pkg/metrics"
	"github.com/angelmondragon/pharmacy-backend/pkg/money"
)

const (
	DefaultTopMedicines = 20
	unknownSeller       = "Unknown Seller"
	unknownLabel        = "Unknown"
)

// CommissionRate is the flat platform share of seller sales.
var CommissionRate = decimal.New(10, -2)

type orderSource interface {
	OrdersInRange(ctx context.Context, rng Range, detailed bool) ([]models.Order, error)
}

type Engine struct {
	orders       orderSource
	metrics      *metrics.ReportMetrics
	topMedicines int
}

func NewEngine(orders orderSource, m *metrics.ReportMetrics, topMedicines int) (*Engine, error) {
	if orders == nil {
		return nil, fmt.Errorf("order source required")
	}
	if topMedicines <= 0 {
		topMedicines = DefaultTopMedicines
	}
	return &Engine{orders: orders, metrics: m, topMedicines: topMedicines}, nil
}

// Build loads the orders in rng and aggregates them for the report type.
func (e *Engine) Build(ctx context.Context, rng Range, reportType enums.ReportType) (*Report, error) {
	started := time.Now()
	report := &Report{Type: reportType}
	if !reportType.IsValid() {
		return report, nil
	}
	rows, err := e.orders.OrdersInRange(ctx, rng, reportType != enums.ReportTypeOverview)
	if err != nil {
		e.metrics.IncFailure(reportType.String())
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "Failed to generate sales report")
	}

	switch reportType {
	case enums.ReportTypeOverview:
		previous, err := e.orders.OrdersInRange(ctx, rng.Previous(), false)
		if err != nil {
			e.metrics.IncFailure(reportType.String())
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "Failed to generate sales report")
		}
		overview := BuildOverview(rng, rows, previous)
		report.Overview = &overview
	case enums.ReportTypeMedicines:
		report.Medicines = TopMedicines(rows, e.topMedicines)
	case enums.ReportTypeSellers:
		report.Sellers = SellerPerformance(rows)
	case enums.ReportTypeCustomers:
		report.Customers = CustomerAnalytics(rows)
	}
	e.metrics.ObserveBuild(reportType.String(), time.Since(started), len(rows))
	return report, nil
}

type totals struct {
	sales     decimal.Decimal
	orders    int
	paid      int
	customers int
}

func summarize(rows []models.Order) totals {
	t := totals{orders: len(rows)}
	buyers := map[uuid.UUID]struct{}{}
	for _, o := range rows {
		buyers[o.UserID] = struct{}{}
		if o.PaymentStatus == enums.PaymentStatusPaid {
			t.sales = t.sales.Add(o.TotalAmount)
			t.paid++
		}
	}
	t.customers = len(buyers)
	return t
}

// BuildOverview totals the window and compares it with the previous one.
func BuildOverview(rng Range, current, previous []models.Order) Overview {
	cur, prev := summarize(current), summarize(previous)
	return Overview{
		Period:            rng.Period(),
		TotalSales:        money.Float(money.Round2(cur.sales)),
		TotalOrders:       cur.orders,
		PaidOrders:        cur.paid,
		TotalCustomers:    cur.customers,
		AverageOrderValue: money.Float(money.Round2(money.SafeDiv(cur.sales, decimal.NewFromInt(int64(cur.orders))))),
		Growth: Growth{
			Sales:     money.Float(money.Growth(cur.sales, prev.sales)),
			Orders:    money.Float(money.Growth(decimal.NewFromInt(int64(cur.orders)), decimal.NewFromInt(int64(prev.orders)))),
			Customers: money.Float(money.Growth(decimal.NewFromInt(int64(cur.customers)), decimal.NewFromInt(int64(prev.customers)))),
		},
	}
}

type medicineAcc struct {
	row     MedicineRow
	revenue decimal.Decimal
}

// TopMedicines ranks medicines in paid orders by revenue.
func TopMedicines(rows []models.Order, limit int) []MedicineRow {
	acc := map[uuid.UUID]*medicineAcc{}
	order := []uuid.UUID{}
	for _, o := range rows {
		if o.PaymentStatus != enums.PaymentStatusPaid {
			continue
		}
		for _, item := range o.Items {
			m := item.Medicine
			if m == nil {
				continue
			}
			a, ok := acc[m.ID]
			if !ok {
				a = &medicineAcc{row: MedicineRow{
					ID:       m.ID.String(),
					Name:     m.Name,
					Category: unknownLabel,
					Seller:   unknownLabel,
					AvgPrice: money.Float(m.Price),
				}}
				if m.Category != nil {
					a.row.Category = m.Category.Name
				}
				if m.Seller != nil {
					a.row.Seller = m.Seller.Name
				}
				acc[m.ID] = a
				order = append(order, m.ID)
			}
			a.row.QuantitySold += item.Quantity
			a.revenue = a.revenue.Add(item.LineTotal())
		}
	}

	out := make([]*medicineAcc, 0, len(order))
	for _, id := range order {
		out = append(out, acc[id])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].revenue.GreaterThan(out[j].revenue) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	result := make([]MedicineRow, 0, len(out))
	for _, a := range out {
		a.row.Revenue = money.Float(money.Round2(a.revenue))
		result = append(result, a.row)
	}
	return result
}

type sellerAcc struct {
	row    SellerRow
	sales  decimal.Decimal
	orders map[uuid.UUID]struct{}
}

// SellerPerformance attributes paid line items to the medicine's seller.
func SellerPerformance(rows []models.Order) []SellerRow {
	acc := map[uuid.UUID]*sellerAcc{}
	order := []uuid.UUID{}
	for _, o := range rows {
		if o.PaymentStatus != enums.PaymentStatusPaid {
			continue
		}
		for _, item := range o.Items {
			m := item.Medicine
			if m == nil || m.SellerID == uuid.Nil {
				continue
			}
			a, ok := acc[m.SellerID]
			if !ok {
				a = &sellerAcc{row: SellerRow{ID: m.SellerID.String(), Name: unknownSeller}, orders: map[uuid.UUID]struct{}{}}
				if m.Seller != nil {
					if m.Seller.Name != "" {
						a.row.Name = m.Seller.Name
					}
					a.row.Email = m.Seller.Email
				}
				acc[m.SellerID] = a
				order = append(order, m.SellerID)
			}
			a.sales = a.sales.Add(item.LineTotal())
			a.row.TotalMedicines += item.Quantity
			a.orders[o.ID] = struct{}{}
		}
	}

	out := make([]*sellerAcc, 0, len(order))
	for _, id := range order {
		a := acc[id]
		a.row.TotalOrders = len(a.orders)
		a.row.TotalSales = money.Float(money.Round2(a.sales))
		a.row.AverageOrderValue = money.Float(money.Round2(money.SafeDiv(a.sales, decimal.NewFromInt(int64(a.row.TotalOrders)))))
		a.row.Commission = money.Float(money.Round2(a.sales.Mul(CommissionRate)))
		out = append(out, a)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].sales.GreaterThan(out[j].sales) })
	result := make([]SellerRow, 0, len(out))
	for _, a := range out {
		result = append(result, a.row)
	}
	return result
}

type customerAcc struct {
	row   CustomerRow
	spent decimal.Decimal
	last  time.Time
}

// CustomerAnalytics counts every order per buyer and sums only paid ones.
func CustomerAnalytics(rows []models.Order) []CustomerRow {
	acc := map[uuid.UUID]*customerAcc{}
	order := []uuid.UUID{}
	for _, o := range rows {
		if o.User == nil {
			continue
		}
		a, ok := acc[o.UserID]
		if !ok {
			a = &customerAcc{row: CustomerRow{ID: o.UserID.String(), Name: o.User.Name, Email: o.User.Email}}
			acc[o.UserID] = a
			order = append(order, o.UserID)
		}
		a.row.TotalOrders++
		if o.PaymentStatus == enums.PaymentStatusPaid {
			a.spent = a.spent.Add(o.TotalAmount)
		}
		if o.CreatedAt.After(a.last) {
			a.last = o.CreatedAt
		}
	}

	out := make([]*customerAcc, 0, len(order))
	for _, id := range order {
		a := acc[id]
		a.row.TotalSpent = money.Float(money.Round2(a.spent))
		a.row.AverageOrderValue = money.Float(money.Round2(money.SafeDiv(a.spent, decimal.NewFromInt(int64(a.row.TotalOrders)))))
		if !a.last.IsZero() {
			last := a.last.UTC()
			a.row.LastOrderDate = &last
		}
		out = append(out, a)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].spent.GreaterThan(out[j].spent) })
	result := make([]CustomerRow, 0, len(out))
	for _, a := range out {
		result = append(result, a.row)
	}
	return result
}
