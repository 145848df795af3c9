package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	stripesdk "github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/angelmondragon/pharmacy-backend/internal/events"
	"github.com/angelmondragon/pharmacy-backend/internal/notifications"
	"github.com/angelmondragon/pharmacy-backend/internal/orders"
	"github.com/angelmondragon/pharmacy-backend/pkg/db"
	"github.com/angelmondragon/pharmacy-backend/pkg/db/models"
	"github.com/angelmondragon/pharmacy-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pharmacy-backend/pkg/errors"
	"github.com/angelmondragon/pharmacy-backend/pkg/logger"
	"github.com/angelmondragon/pharmacy-backend/pkg/metrics"
	"github.com/angelmondragon/pharmacy-backend/pkg/money"
	"github.com/angelmondragon/pharmacy-backend/pkg/pagination"
	pkgstripe "github.com/angelmondragon/pharmacy-backend/pkg/stripe"
	"github.com/angelmondragon/pharmacy-backend/pkg/types"
)

const (
	DefaultListLimit = 20
	metadataOrderID  = "order_id"
	metadataUserID   = "user_id"
)

var (
	ErrPaymentNotSuccessful = pkgerrors.New(pkgerrors.CodeValidation, "Payment not successful")
	ErrIntentOrderMismatch  = pkgerrors.New(pkgerrors.CodeValidation, "Payment intent does not belong to this order")
	ErrAmountMismatch       = pkgerrors.New(pkgerrors.CodeValidation, "Payment amount does not match order total")
	ErrAlreadyPaid          = pkgerrors.New(pkgerrors.CodeValidation, "Order is already paid")
	ErrPaymentRecorded      = pkgerrors.New(pkgerrors.CodeConflict, "Payment already recorded")
)

// Gateway is the payment provider boundary. *pkgstripe.PaymentIntents implements it.
type Gateway interface {
	CreatePaymentIntent(ctx context.Context, req pkgstripe.IntentRequest) (*pkgstripe.Intent, error)
	RetrievePaymentIntent(ctx context.Context, id string) (*pkgstripe.Intent, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type repository interface {
	FindByIntentID(ctx context.Context, intentID string) (*models.Payment, error)
	List(ctx context.Context, sellerID *uuid.UUID, params pagination.Params) ([]models.Payment, int64, error)
}

type orderReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	SetPaymentStatus(ctx context.Context, id uuid.UUID, status enums.PaymentStatus, paymentID *string, at time.Time) (bool, error)
}

type Service interface {
	CreateIntent(ctx context.Context, actor types.Actor, input IntentInput) (*IntentResult, error)
	Confirm(ctx context.Context, actor types.Actor, input ConfirmInput) (*PaymentDTO, error)
	ListAll(ctx context.Context, params pagination.Params) (*PaymentList, error)
	ListBySeller(ctx context.Context, actor types.Actor, sellerID uuid.UUID, params pagination.Params) (*PaymentList, error)
	HandleEvent(ctx context.Context, event *stripesdk.Event) error
}

type ServiceParams struct {
	Gateway   Gateway
	Tx        txRunner
	Repo      repository
	Orders    orderReader
	Publisher events.Publisher
	Receipts  notifications.ReceiptSender
	Metrics   *metrics.CommerceMetrics
	Logger    *logger.Logger
}

type service struct {
	gateway   Gateway
	tx        txRunner
	repo      repository
	orders    orderReader
	publisher events.Publisher
	receipts  notifications.ReceiptSender
	metrics   *metrics.CommerceMetrics
	logg      *logger.Logger
	now       func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Gateway == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("payments repository required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	s := &service{
		gateway:   params.Gateway,
		tx:        params.Tx,
		repo:      params.Repo,
		orders:    params.Orders,
		publisher: params.Publisher,
		receipts:  params.Receipts,
		metrics:   params.Metrics,
		logg:      params.Logger,
		now:       time.Now,
	}
	if s.publisher == nil {
		s.publisher = events.Nop{}
	}
	if s.receipts == nil {
		s.receipts = notifications.NopReceiptSender{}
	}
	if s.logg == nil {
		s.logg = logger.Nop()
	}
	return s, nil
}

func (s *service) CreateIntent(ctx context.Context, actor types.Actor, input IntentInput) (*IntentResult, error) {
	order, err := s.loadOrder(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	if !actor.CanManage(order.UserID) {
		return nil, orders.ErrOrderForbidden
	}
	if order.PaymentStatus == enums.PaymentStatusPaid {
		return nil, ErrAlreadyPaid
	}
	if order.Status == enums.OrderStatusCancelled {
		return nil, orders.ErrOrderCancelled
	}
	currency := ""
	if strings.TrimSpace(input.Currency) != "" {
		c, err := enums.ParseCurrency(input.Currency)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "Unsupported currency")
		}
		currency = c.String()
	}

	req := pkgstripe.IntentRequest{
		AmountCents: money.ToCents(order.TotalAmount),
		Currency:    currency,
		Description: fmt.Sprintf("Order %s", DisplayOrderID(order.ID)),
		Metadata: map[string]string{
			metadataOrderID: order.ID.String(),
			metadataUserID:  order.UserID.String(),
		},
	}
	if order.User != nil {
		req.ReceiptEmail = order.User.Email
	}
	intent, err := s.gateway.CreatePaymentIntent(ctx, req)
	if err != nil {
		return nil, err
	}
	return &IntentResult{
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.ID,
		Amount:          money.Float(money.FromCents(intent.AmountCents)),
		Currency:        intent.Currency,
	}, nil
}

func (s *service) Confirm(ctx context.Context, actor types.Actor, input ConfirmInput) (*PaymentDTO, error) {
	order, err := s.loadOrder(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	if !actor.CanManage(order.UserID) {
		return nil, orders.ErrOrderForbidden
	}
	intent, err := s.gateway.RetrievePaymentIntent(ctx, input.PaymentIntentID)
	if err != nil {
		s.metrics.PaymentConfirmed("gateway_error")
		return nil, err
	}
	return s.record(ctx, order, intent)
}

// record stores a succeeded intent against order and marks the order paid.
// The insert runs first so a replayed intent fails on the unique index before
// the order is touched.
func (s *service) record(ctx context.Context, order *models.Order, intent *pkgstripe.Intent) (*PaymentDTO, error) {
	if intent.Status != pkgstripe.IntentStatusSucceeded {
		s.metrics.PaymentConfirmed("not_succeeded")
		return nil, ErrPaymentNotSuccessful
	}
	if owner, ok := intent.Metadata[metadataOrderID]; ok && owner != order.ID.String() {
		return nil, ErrIntentOrderMismatch
	}
	if order.Status == enums.OrderStatusCancelled {
		s.metrics.PaymentConfirmed("cancelled_order")
		return nil, orders.ErrOrderCancelled
	}
	if intent.AmountCents != money.ToCents(order.TotalAmount) {
		return nil, ErrAmountMismatch
	}
	seller, err := SellerOf(*order)
	if err != nil {
		return nil, err
	}
	currency, err := enums.ParseCurrency(intent.Currency)
	if err != nil {
		currency = enums.CurrencyUSD
	}

	now := s.now()
	payment := &models.Payment{
		OrderID:         order.ID,
		Amount:          money.FromCents(intent.AmountCents),
		Currency:        currency,
		Status:          enums.PaymentRecordStatusSucceeded,
		PaymentIntentID: intent.ID,
		PaymentMethod:   optional(intent.PaymentMethod),
		CardBrand:       optional(intent.CardBrand),
		CardLast4:       optional(intent.CardLast4),
		SellerID:        seller,
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := NewRepository(tx).Create(ctx, payment); err != nil {
			if db.IsUniqueViolation(err, "") {
				return ErrPaymentRecorded
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record payment")
		}
		ok, err := orders.NewRepository(tx).MarkPaid(ctx, order.ID, intent.ID, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark order paid")
		}
		if !ok {
			return orders.ErrOrderCancelled
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrPaymentRecorded) {
			s.metrics.PaymentConfirmed("duplicate")
		} else {
			s.metrics.PaymentConfirmed("failed")
		}
		return nil, err
	}
	s.metrics.PaymentConfirmed("succeeded")

	s.publish(ctx, events.Event{
		Type:        events.TypePaymentConfirmed,
		AggregateID: order.ID,
		Payload: map[string]any{
			"orderId":         order.ID,
			"paymentId":       payment.ID,
			"paymentIntentId": intent.ID,
			"amount":          payment.Amount.StringFixed(2),
			"currency":        payment.Currency,
			"sellerId":        seller,
		},
	})
	if err := s.receipts.SendPaymentReceipt(ctx, BuildReceipt(*order, *payment, now)); err != nil {
		s.logg.Error(s.logg.WithField(ctx, "order_id", order.ID.String()), "payments.receipt_failed", err)
	}

	dto := FromModel(*payment)
	return &dto, nil
}

func (s *service) ListAll(ctx context.Context, params pagination.Params) (*PaymentList, error) {
	return s.list(ctx, nil, params)
}

func (s *service) ListBySeller(ctx context.Context, actor types.Actor, sellerID uuid.UUID, params pagination.Params) (*PaymentList, error) {
	if !actor.CanManage(sellerID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "Not authorized to view these payments")
	}
	return s.list(ctx, &sellerID, params)
}

func (s *service) list(ctx context.Context, sellerID *uuid.UUID, params pagination.Params) (*PaymentList, error) {
	params = params.Normalize(DefaultListLimit)
	rows, total, err := s.repo.List(ctx, sellerID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list payments")
	}
	return &PaymentList{Payments: fromModels(rows), Pagination: params.Result(total)}, nil
}

func (s *service) loadOrder(ctx context.Context, rawID string) (*models.Order, error) {
	id, err := uuid.Parse(strings.TrimSpace(rawID))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "Invalid order id")
	}
	return s.findOrder(ctx, id)
}

func (s *service) findOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, orders.ErrOrderNotFound
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	return order, nil
}

func (s *service) publish(ctx context.Context, event events.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logg.Error(s.logg.WithField(ctx, "event_type", string(event.Type)), "payments.publish_failed", err)
	}
}

// SellerOf attributes an order to the seller of its first item.
func SellerOf(order models.Order) (uuid.UUID, error) {
	if len(order.Items) == 0 || order.Items[0].Medicine == nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "Order has no items")
	}
	return order.Items[0].Medicine.SellerID, nil
}

// DisplayOrderID renders the short customer-facing order reference.
func DisplayOrderID(id uuid.UUID) string {
	return "ORD-" + shortID(id)
}

// DisplayTransactionID renders the short reference shown next to card details.
func DisplayTransactionID(id uuid.UUID) string {
	return "TXN-" + shortID(id)
}

func shortID(id uuid.UUID) string {
	hex := strings.ReplaceAll(id.String(), "-", "")
	return strings.ToUpper(hex[len(hex)-8:])
}

// BuildReceipt assembles the receipt for a recorded payment.
func BuildReceipt(order models.Order, payment models.Payment, paidAt time.Time) notifications.Receipt {
	r := notifications.Receipt{
		OrderID:       DisplayOrderID(order.ID),
		TransactionID: payment.PaymentIntentID,
		Amount:        payment.Amount.StringFixed(2),
		Currency:      payment.Currency.String(),
		PaidAt:        paidAt,
	}
	if order.User != nil {
		r.CustomerName = order.User.Name
		r.CustomerEmail = order.User.Email
	}
	if payment.CardBrand != nil {
		r.CardBrand = *payment.CardBrand
	}
	if payment.CardLast4 != nil {
		r.CardLast4 = *payment.CardLast4
	}
	for _, item := range order.Items {
		name := item.MedicineID.String()
		if item.Medicine != nil {
			name = item.Medicine.Name
		}
		r.Lines = append(r.Lines, notifications.ReceiptLine{
			Name:     name,
			Quantity: item.Quantity,
			Amount:   item.LineTotal().StringFixed(2),
		})
	}
	return r
}

func optional(v string) *string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return &v
}
