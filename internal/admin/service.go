// Package admin serves the dashboard summaries and payment review actions.
package admin

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/pharmacy-backend/internal/orders"
	"github.com/angelmondragon/pharmacy-backend/internal/payments"
	"github.com/angelmondragon/pharmacy-backend/pkg/db/models"
	"github.com/angelmondragon/pharmacy-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pharmacy-backend/pkg/errors"
	"github.com/angelmondragon/pharmacy-backend/pkg/money"
	"github.com/angelmondragon/pharmacy-backend/pkg/pagination"
)

const (
	DefaultRecentUsers     = 5
	DefaultPendingPayments = 10
	DefaultPaymentsLimit   = 50
	defaultPaymentMethod   = "Credit Card"
	unknownCustomer        = "Unknown Customer"
	unknownMedicine        = "Unknown Medicine"
)

type repository interface {
	CountOrders(ctx context.Context) (int64, error)
	SumByPaymentStatus(ctx context.Context, status enums.PaymentStatus) (decimal.Decimal, error)
	PendingOrders(ctx context.Context, limit int) ([]models.Order, error)
	Orders(ctx context.Context, params pagination.Params) ([]models.Order, int64, error)
}

type userCounter interface {
	Count(ctx context.Context, role *enums.UserRole) (int64, error)
	Recent(ctx context.Context, limit int) ([]models.User, error)
}

type medicineCounter interface {
	Count(ctx context.Context) (int64, error)
}

type paymentLookup interface {
	LatestByOrder(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID]models.Payment, error)
}

type paymentStatusSetter interface {
	SetPaymentStatus(ctx context.Context, id uuid.UUID, status string) (*orders.OrderDTO, error)
}

type Service interface {
	Overview(ctx context.Context) (*Overview, error)
	RecentUsers(ctx context.Context, limit int) ([]RecentUser, error)
	PendingPayments(ctx context.Context, limit int) ([]PendingPayment, error)
	Payments(ctx context.Context, params pagination.Params) (*PaymentViewList, error)
	AcceptPayment(ctx context.Context, orderID uuid.UUID) (*Decision, error)
	RejectPayment(ctx context.Context, orderID uuid.UUID) (*Decision, error)
	Stats(ctx context.Context) (*Stats, error)
}

type ServiceParams struct {
	Repo      repository
	Users     userCounter
	Medicines medicineCounter
	Payments  paymentLookup
	Orders    paymentStatusSetter
}

type service struct {
	repo      repository
	users     userCounter
	medicines medicineCounter
	payments  paymentLookup
	orders    paymentStatusSetter
}

func NewService(p ServiceParams) (Service, error) {
	switch {
	case p.Repo == nil:
		return nil, fmt.Errorf("admin repository required")
	case p.Users == nil:
		return nil, fmt.Errorf("users repository required")
	case p.Medicines == nil:
		return nil, fmt.Errorf("medicines repository required")
	case p.Payments == nil:
		return nil, fmt.Errorf("payments repository required")
	case p.Orders == nil:
		return nil, fmt.Errorf("orders service required")
	}
	return &service{repo: p.Repo, users: p.Users, medicines: p.Medicines, payments: p.Payments, orders: p.Orders}, nil
}

func (s *service) Overview(ctx context.Context) (*Overview, error) {
	seller := enums.UserRoleSeller
	var out Overview
	var err error
	if out.TotalUsers, err = s.users.Count(ctx, nil); err != nil {
		return nil, internal(err, "count users")
	}
	if out.TotalSellers, err = s.users.Count(ctx, &seller); err != nil {
		return nil, internal(err, "count sellers")
	}
	if out.TotalMedicines, err = s.medicines.Count(ctx); err != nil {
		return nil, internal(err, "count medicines")
	}
	if out.TotalOrders, err = s.repo.CountOrders(ctx); err != nil {
		return nil, internal(err, "count orders")
	}
	paid, err := s.repo.SumByPaymentStatus(ctx, enums.PaymentStatusPaid)
	if err != nil {
		return nil, internal(err, "sum paid orders")
	}
	pending, err := s.repo.SumByPaymentStatus(ctx, enums.PaymentStatusPending)
	if err != nil {
		return nil, internal(err, "sum pending orders")
	}
	out.TotalRevenue = money.Float(money.Round2(paid))
	out.PaidTotal = out.TotalRevenue
	out.PendingTotal = money.Float(money.Round2(pending))
	return &out, nil
}

func (s *service) RecentUsers(ctx context.Context, limit int) ([]RecentUser, error) {
	if limit <= 0 {
		limit = DefaultRecentUsers
	}
	rows, err := s.users.Recent(ctx, limit)
	if err != nil {
		return nil, internal(err, "list recent users")
	}
	out := make([]RecentUser, 0, len(rows))
	for _, u := range rows {
		out = append(out, RecentUser{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role, IsActive: u.IsActive, CreatedAt: u.CreatedAt})
	}
	return out, nil
}

func (s *service) PendingPayments(ctx context.Context, limit int) ([]PendingPayment, error) {
	if limit <= 0 {
		limit = DefaultPendingPayments
	}
	rows, err := s.repo.PendingOrders(ctx, limit)
	if err != nil {
		return nil, internal(err, "list pending payments")
	}
	out := make([]PendingPayment, 0, len(rows))
	for _, o := range rows {
		p := PendingPayment{ID: o.ID, Amount: money.Float(o.TotalAmount), Customer: "Unknown", Date: o.CreatedAt}
		if o.User != nil {
			p.Customer = displayName(*o.User)
			p.Email = o.User.Email
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *service) Payments(ctx context.Context, params pagination.Params) (*PaymentViewList, error) {
	params = params.Normalize(DefaultPaymentsLimit)
	rows, total, err := s.repo.Orders(ctx, params)
	if err != nil {
		return nil, internal(err, "list payments")
	}
	ids := make([]uuid.UUID, 0, len(rows))
	for _, o := range rows {
		ids = append(ids, o.ID)
	}
	recorded, err := s.payments.LatestByOrder(ctx, ids)
	if err != nil {
		return nil, internal(err, "load recorded payments")
	}
	out := &PaymentViewList{Payments: make([]PaymentView, 0, len(rows)), Pagination: params.Result(total)}
	for _, o := range rows {
		var p *models.Payment
		if rec, ok := recorded[o.ID]; ok {
			p = &rec
		}
		out.Payments = append(out.Payments, BuildPaymentView(o, p))
	}
	return out, nil
}

// BuildPaymentView presents an order as a reviewable payment. Card details come
// from the recorded gateway payment when one exists.
func BuildPaymentView(o models.Order, recorded *models.Payment) PaymentView {
	v := PaymentView{
		ID:            o.ID,
		OrderID:       payments.DisplayOrderID(o.ID),
		CustomerName:  unknownCustomer,
		Amount:        money.Float(o.TotalAmount),
		PaymentMethod: defaultPaymentMethod,
		Status:        o.PaymentStatus,
		CreatedAt:     o.CreatedAt,
		Medicines:     make([]PaymentMedicine, 0, len(o.Items)),
		PaymentDetails: PaymentDetails{
			TransactionID: payments.DisplayTransactionID(o.ID),
		},
	}
	if o.User != nil {
		v.CustomerName = displayName(*o.User)
		v.CustomerEmail = o.User.Email
	}
	switch o.PaymentStatus {
	case enums.PaymentStatusPaid:
		v.AcceptedAt = firstTime(o.PaidAt, o.UpdatedAt)
	case enums.PaymentStatusFailed:
		v.RejectedAt = firstTime(o.FailedAt, o.UpdatedAt)
	}
	for _, item := range o.Items {
		name := unknownMedicine
		if item.Medicine != nil {
			name = item.Medicine.Name
		}
		v.Medicines = append(v.Medicines, PaymentMedicine{Name: name, Quantity: item.Quantity, Price: money.Float(item.Price)})
	}
	if recorded != nil {
		if recorded.PaymentMethod != nil {
			v.PaymentMethod = *recorded.PaymentMethod
		}
		if recorded.CardLast4 != nil {
			v.PaymentDetails.CardLast4 = *recorded.CardLast4
		}
		v.PaymentDetails.TransactionID = recorded.PaymentIntentID
	}
	return v
}

func (s *service) AcceptPayment(ctx context.Context, orderID uuid.UUID) (*Decision, error) {
	order, err := s.orders.SetPaymentStatus(ctx, orderID, enums.PaymentStatusPaid.String())
	if err != nil {
		return nil, err
	}
	return &Decision{Message: "Payment accepted", Order: *order}, nil
}

func (s *service) RejectPayment(ctx context.Context, orderID uuid.UUID) (*Decision, error) {
	order, err := s.orders.SetPaymentStatus(ctx, orderID, enums.PaymentStatusFailed.String())
	if err != nil {
		return nil, err
	}
	return &Decision{Message: "Payment rejected", Order: *order}, nil
}

// Stats counts catalog items, customers and admins for the storefront.
func (s *service) Stats(ctx context.Context) (*Stats, error) {
	customer, admin := enums.UserRoleUser, enums.UserRoleAdmin
	var out Stats
	var err error
	if out.Products, err = s.medicines.Count(ctx); err != nil {
		return nil, internal(err, "count medicines")
	}
	if out.Customers, err = s.users.Count(ctx, &customer); err != nil {
		return nil, internal(err, "count customers")
	}
	if out.Support, err = s.users.Count(ctx, &admin); err != nil {
		return nil, internal(err, "count admins")
	}
	return &out, nil
}

func displayName(u models.User) string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

func firstTime(preferred *time.Time, fallback time.Time) *time.Time {
	if preferred != nil {
		return preferred
	}
	return &fallback
}

func internal(err error, msg string) error {
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, msg)
}
