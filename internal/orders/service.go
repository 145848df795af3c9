package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/pharmacy-backend/internal/coupons"
	"github.com/angelmondragon/pharmacy-backend/internal/events"
	"github.com/angelmondragon/pharmacy-backend/internal/medicines"
	"github.com/angelmondragon/pharmacy-backend/pkg/db"
	"github.com/angelmondragon/pharmacy-backend/pkg/db/models"
	"github.com/angelmondragon/pharmacy-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pharmacy-backend/pkg/errors"
	"github.com/angelmondragon/pharmacy-backend/pkg/logger"
	"github.com/angelmondragon/pharmacy-backend/pkg/metrics"
	"github.com/angelmondragon/pharmacy-backend/pkg/money"
	"github.com/angelmondragon/pharmacy-backend/pkg/pagination"
	"github.com/angelmondragon/pharmacy-backend/pkg/types"
)

const DefaultListLimit = 10

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Order, int64, error)
	List(ctx context.Context, f ListFilter) ([]models.Order, int64, error)
	SetPaymentStatus(ctx context.Context, id uuid.UUID, status enums.PaymentStatus, paymentID *string, at time.Time) (bool, error)
}

// Service captures and tracks customer orders.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, input CreateInput) (*OrderDTO, error)
	Get(ctx context.Context, actor types.Actor, id uuid.UUID) (*OrderDTO, error)
	ListMine(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderList, error)
	ListAll(ctx context.Context, f ListFilter) (*OrderList, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*OrderDTO, error)
	SetPaymentStatus(ctx context.Context, id uuid.UUID, status string) (*OrderDTO, error)
}

type service struct {
	tx        txRunner
	repo      repository
	publisher events.Publisher
	metrics   *metrics.CommerceMetrics
	logg      *logger.Logger
	now       func() time.Time
}

func NewService(tx txRunner, repo repository, publisher events.Publisher, m *metrics.CommerceMetrics, logg *logger.Logger) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if publisher == nil {
		publisher = events.Nop{}
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{tx: tx, repo: repo, publisher: publisher, metrics: m, logg: logg, now: time.Now}, nil
}

type line struct {
	medicineID uuid.UUID
	quantity   int
	claimed    *decimal.Decimal
}

func parseLines(items []ItemInput) ([]line, error) {
	if len(items) == 0 {
		return nil, ErrMissingFields
	}
	out := make([]line, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(item.MedicineID) == "" || item.Quantity == 0 {
			return nil, ErrMissingFields
		}
		id, err := uuid.Parse(item.MedicineID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "Invalid medicine id")
		}
		if item.Quantity < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "Quantity must be positive")
		}
		l := line{medicineID: id, quantity: item.Quantity}
		if item.Price != nil {
			p := money.FromFloat(*item.Price)
			l.claimed = &p
		}
		out = append(out, l)
	}
	return out, nil
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, input CreateInput) (*OrderDTO, error) {
	lines, err := parseLines(input.Items)
	if err != nil {
		return nil, err
	}
	if err := input.ShippingAddress.Validate(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "Shipping address is incomplete")
	}

	now := s.now()
	order := &models.Order{
		UserID:          userID,
		Status:          enums.OrderStatusPending,
		PaymentStatus:   enums.PaymentStatusPending,
		ShippingAddress: input.ShippingAddress,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		stock := medicines.NewRepository(tx)
		ids := make([]uuid.UUID, 0, len(lines))
		for _, l := range lines {
			ids = append(ids, l.medicineID)
		}
		catalog, err := stock.FindByIDs(ctx, ids)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load medicines")
		}

		couponItems := make([]coupons.LineItem, 0, len(lines))
		subtotal := decimal.Zero
		var seller uuid.UUID
		for i, l := range lines {
			m, ok := catalog[l.medicineID]
			if !ok {
				return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("Medicine %s not found", l.medicineID))
			}
			if !m.InStock || m.StockQuantity < l.quantity {
				return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("Insufficient stock for %s", m.Name))
			}
			price := m.EffectivePrice(now)
			if l.claimed != nil && !money.ApproxEqual(*l.claimed, price) {
				return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("Price for %s has changed", m.Name))
			}
			if i == 0 {
				seller = m.SellerID
			} else if m.SellerID != seller {
				return ErrMultipleSellers
			}
			amount := price.Mul(decimal.NewFromInt(int64(l.quantity)))
			subtotal = subtotal.Add(amount)
			order.Items = append(order.Items, models.OrderItem{MedicineID: m.ID, Quantity: l.quantity, Price: price})
			couponItems = append(couponItems, coupons.LineItem{MedicineID: m.ID, CategoryID: m.CategoryID, Amount: amount})
		}
		order.Subtotal = money.Round2(subtotal)

		if input.Coupon != nil && strings.TrimSpace(input.Coupon.Code) != "" {
			quote, err := coupons.Redeem(ctx, coupons.NewRepository(tx), input.Coupon.Code, order.Subtotal, couponItems, now)
			if err != nil {
				s.metrics.CouponRedeemed("rejected")
				return err
			}
			s.metrics.CouponRedeemed("redeemed")
			code := quote.Coupon.Code
			order.CouponCode = &code
			order.DiscountAmount = quote.Discount
		}
		order.TotalAmount = money.Round2(order.Subtotal.Sub(order.DiscountAmount))
		if input.TotalAmount != nil && !money.ApproxEqual(money.FromFloat(*input.TotalAmount), order.TotalAmount) {
			return ErrTotalMismatch
		}

		for _, l := range lines {
			ok, err := stock.DecrementStock(ctx, l.medicineID, l.quantity)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reserve stock")
			}
			if !ok {
				return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("Insufficient stock for %s", catalog[l.medicineID].Name))
			}
		}
		if err := NewRepository(tx).Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.OrderCreated()
	s.publish(ctx, events.Event{
		Type:        events.TypeOrderCreated,
		AggregateID: order.ID,
		Payload: map[string]any{
			"orderId":     order.ID,
			"userId":      order.UserID,
			"totalAmount": order.TotalAmount.StringFixed(2),
			"itemCount":   len(order.Items),
		},
	})

	created, err := s.repo.FindByID(ctx, order.ID)
	if err != nil {
		return nil, db.MapError(err, ErrOrderNotFound.Message(), "")
	}
	dto := FromModel(*created)
	return &dto, nil
}

func (s *service) Get(ctx context.Context, actor types.Actor, id uuid.UUID) (*OrderDTO, error) {
	order, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanView(actor, *order) {
		return nil, ErrOrderForbidden
	}
	dto := FromModel(*order)
	return &dto, nil
}

// CanView allows the buyer, the seller of any item and admins.
func CanView(actor types.Actor, order models.Order) bool {
	if actor.IsAdmin() || order.UserID == actor.UserID {
		return true
	}
	for _, item := range order.Items {
		if item.Medicine != nil && item.Medicine.SellerID == actor.UserID {
			return true
		}
	}
	return false
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderList, error) {
	params = params.Normalize(DefaultListLimit)
	rows, total, err := s.repo.ListByUser(ctx, userID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	return &OrderList{Orders: fromModels(rows), Pagination: params.Result(total)}, nil
}

func (s *service) ListAll(ctx context.Context, f ListFilter) (*OrderList, error) {
	f.Pagination = f.Pagination.Normalize(DefaultListLimit)
	rows, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	return &OrderList{Orders: fromModels(rows), Pagination: f.Pagination.Result(total)}, nil
}

func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*OrderDTO, error) {
	next, err := enums.ParseOrderStatus(strings.ToLower(strings.TrimSpace(status)))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "Invalid order status")
	}
	order, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanTransitionTo(next) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("Cannot change order status from %s to %s", order.Status, next))
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ok, err := NewRepository(tx).UpdateStatus(ctx, id, order.Status, next)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update order status")
		}
		if !ok {
			return ErrStatusConflict
		}
		if next == enums.OrderStatusCancelled {
			return release(ctx, tx, order)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.Event{
		Type:        events.TypeOrderStatusChanged,
		AggregateID: id,
		Payload:     map[string]any{"orderId": id, "from": order.Status, "to": next},
	})
	return s.reload(ctx, id)
}

// release returns the stock reserved by a cancelled order and the coupon use
// it redeemed.
func release(ctx context.Context, tx *gorm.DB, order *models.Order) error {
	stock := medicines.NewRepository(tx)
	for _, item := range order.Items {
		if _, err := stock.Restock(ctx, item.MedicineID, item.Quantity); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "restock medicine")
		}
	}
	if order.CouponCode != nil && *order.CouponCode != "" {
		if _, err := coupons.NewRepository(tx).ReleaseUsage(ctx, *order.CouponCode); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "release coupon usage")
		}
	}
	return nil
}

// SetPaymentStatus is the admin override for the payment outcome.
func (s *service) SetPaymentStatus(ctx context.Context, id uuid.UUID, status string) (*OrderDTO, error) {
	next, err := enums.ParsePaymentStatus(strings.ToLower(strings.TrimSpace(status)))
	if err != nil || !next.IsSettled() {
		return nil, ErrInvalidPayStatus
	}
	ok, err := s.repo.SetPaymentStatus(ctx, id, next, nil, s.now())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update payment status")
	}
	if !ok {
		return nil, ErrOrderNotFound
	}
	return s.reload(ctx, id)
}

func (s *service) find(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, ErrOrderNotFound
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	return order, nil
}

func (s *service) reload(ctx context.Context, id uuid.UUID) (*OrderDTO, error) {
	order, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := FromModel(*order)
	return &dto, nil
}

func (s *service) publish(ctx context.Context, event events.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logg.Error(s.logg.WithField(ctx, "event_type", string(event.Type)), "orders.publish_failed", err)
	}
}
