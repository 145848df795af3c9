package admin

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/pharmacy-backend/internal/medicines"
	"github.com/angelmondragon/pharmacy-backend/internal/orders"
	"github.com/angelmondragon/pharmacy-backend/internal/payments"
	"github.com/angelmondragon/pharmacy-backend/internal/users"
	"github.com/angelmondragon/pharmacy-backend/pkg/db/dbtest"
	"github.com/angelmondragon/pharmacy-backend/pkg/db/models"
	"github.com/angelmondragon/pharmacy-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pharmacy-backend/pkg/errors"
	"github.com/angelmondragon/pharmacy-backend/pkg/pagination"
)

type fixture struct {
	svc    Service
	conn   *gorm.DB
	buyer  models.User
	seller models.User
	med    models.Medicine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	client := dbtest.Client(t)
	conn := client.DB()
	f := &fixture{conn: conn}

	f.buyer = models.User{Name: "Buyer", Email: "buyer@x.com", Role: enums.UserRoleUser}
	f.seller = models.User{Name: "Seller", Email: "seller@x.com", Role: enums.UserRoleSeller}
	admin := models.User{Name: "Admin", Email: "admin@x.com", Role: enums.UserRoleAdmin}
	for _, u := range []*models.User{&f.buyer, &f.seller, &admin} {
		require.NoError(t, conn.Create(u).Error)
	}
	cat := models.Category{Name: "Pain", Description: "d", Image: "i"}
	require.NoError(t, conn.Create(&cat).Error)
	f.med = models.Medicine{Name: "Ibuprofen", CategoryID: cat.ID, SellerID: f.seller.ID, Price: decimal.NewFromInt(5), InStock: true, StockQuantity: 50}
	require.NoError(t, conn.Create(&f.med).Error)

	orderSvc, err := orders.NewService(client, orders.NewRepository(conn), nil, nil, nil)
	require.NoError(t, err)
	svc, err := NewService(ServiceParams{
		Repo:      NewRepository(conn),
		Users:     users.NewRepository(conn),
		Medicines: medicines.NewRepository(conn),
		Payments:  payments.NewRepository(conn),
		Orders:    orderSvc,
	})
	require.NoError(t, err)
	f.svc = svc
	return f
}

func (f *fixture) order(t *testing.T, total int64, status enums.PaymentStatus) models.Order {
	t.Helper()
	o := models.Order{
		UserID:          f.buyer.ID,
		Subtotal:        decimal.NewFromInt(total),
		TotalAmount:     decimal.NewFromInt(total),
		PaymentStatus:   status,
		ShippingAddress: dbtest.Address(),
		Items:           []models.OrderItem{{MedicineID: f.med.ID, Quantity: int(total / 5), Price: decimal.NewFromInt(5)}},
	}
	require.NoError(t, f.conn.Create(&o).Error)
	return o
}

func TestOverviewCountsAndTotals(t *testing.T) {
	f := newFixture(t)
	f.order(t, 20, enums.PaymentStatusPaid)
	f.order(t, 10, enums.PaymentStatusPaid)
	f.order(t, 15, enums.PaymentStatusPending)
	f.order(t, 5, enums.PaymentStatusFailed)

	out, err := f.svc.Overview(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), out.TotalUsers)
	assert.Equal(t, int64(1), out.TotalSellers)
	assert.Equal(t, int64(1), out.TotalMedicines)
	assert.Equal(t, int64(4), out.TotalOrders)
	assert.Equal(t, 30.0, out.TotalRevenue)
	assert.Equal(t, 30.0, out.PaidTotal)
	assert.Equal(t, 15.0, out.PendingTotal)
}

func TestOverviewWithNoOrders(t *testing.T) {
	f := newFixture(t)

	out, err := f.svc.Overview(context.Background())
	require.NoError(t, err)
	assert.Zero(t, out.TotalOrders)
	assert.Zero(t, out.TotalRevenue)
	assert.Zero(t, out.PendingTotal)
}

func TestPendingPaymentsListsOnlyPending(t *testing.T) {
	f := newFixture(t)
	f.order(t, 20, enums.PaymentStatusPaid)
	pending := f.order(t, 15, enums.PaymentStatusPending)

	out, err := f.svc.PendingPayments(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, pending.ID, out[0].ID)
	assert.Equal(t, 15.0, out[0].Amount)
	assert.Equal(t, "Buyer", out[0].Customer)
	assert.Equal(t, "buyer@x.com", out[0].Email)
}

func TestRecentUsersRespectsLimit(t *testing.T) {
	f := newFixture(t)

	out, err := f.svc.RecentUsers(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, out, 2)
}

func TestPaymentsUsesRecordedCardDetails(t *testing.T) {
	f := newFixture(t)
	paid := f.order(t, 20, enums.PaymentStatusPaid)
	f.order(t, 10, enums.PaymentStatusPending)
	method, last4 := "card", "4242"
	require.NoError(t, f.conn.Create(&models.Payment{
		OrderID:         paid.ID,
		Amount:          decimal.NewFromInt(20),
		Currency:        enums.CurrencyUSD,
		Status:          enums.PaymentRecordStatusSucceeded,
		PaymentIntentID: "pi_123",
		PaymentMethod:   &method,
		CardLast4:       &last4,
		SellerID:        f.seller.ID,
	}).Error)

	out, err := f.svc.Payments(context.Background(), pagination.Params{})
	require.NoError(t, err)
	require.Len(t, out.Payments, 2)
	assert.Equal(t, int64(2), out.Pagination.Total)

	var view PaymentView
	for _, p := range out.Payments {
		if p.ID == paid.ID {
			view = p
		}
	}
	assert.Equal(t, payments.DisplayOrderID(paid.ID), view.OrderID)
	assert.Equal(t, "card", view.PaymentMethod)
	assert.Equal(t, "4242", view.PaymentDetails.CardLast4)
	assert.Equal(t, "pi_123", view.PaymentDetails.TransactionID)
	require.Len(t, view.Medicines, 1)
	assert.Equal(t, "Ibuprofen", view.Medicines[0].Name)
	assert.NotNil(t, view.AcceptedAt)
	assert.Nil(t, view.RejectedAt)
}

func TestBuildPaymentViewDefaults(t *testing.T) {
	failedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	o := models.Order{PaymentStatus: enums.PaymentStatusFailed, FailedAt: &failedAt, TotalAmount: decimal.RequireFromString("9.99")}

	view := BuildPaymentView(o, nil)
	assert.Equal(t, unknownCustomer, view.CustomerName)
	assert.Equal(t, defaultPaymentMethod, view.PaymentMethod)
	assert.Equal(t, 9.99, view.Amount)
	assert.Equal(t, &failedAt, view.RejectedAt)
	assert.Empty(t, view.Medicines)
}

func TestAcceptAndRejectPayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.order(t, 10, enums.PaymentStatusPending)

	accepted, err := f.svc.AcceptPayment(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "Payment accepted", accepted.Message)
	assert.Equal(t, enums.PaymentStatusPaid, accepted.Order.PaymentStatus)

	rejected, err := f.svc.RejectPayment(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentStatusFailed, rejected.Order.PaymentStatus)
}

func TestAcceptPaymentUnknownOrder(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.AcceptPayment(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
}

func TestStatsCountsByRole(t *testing.T) {
	f := newFixture(t)

	out, err := f.svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Stats{Products: 1, Customers: 1, Support: 1}, *out)
}
