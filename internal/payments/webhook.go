package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	stripesdk "github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/angelmondragon/pharmacy-backend/internal/events"
	"github.com/angelmondragon/pharmacy-backend/internal/orders"
	"github.com/angelmondragon/pharmacy-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pharmacy-backend/pkg/errors"
	"github.com/angelmondragon/pharmacy-backend/pkg/redis"
	pkgstripe "github.com/angelmondragon/pharmacy-backend/pkg/stripe"
)

const webhookProvider = "stripe"

// HandleEvent applies a verified Stripe event. Replays of an already recorded
// payment are a no-op; unrelated event types are ignored.
func (s *service) HandleEvent(ctx context.Context, event *stripesdk.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}
	switch event.Type {
	case stripesdk.EventTypePaymentIntentSucceeded:
		return s.intentSucceeded(ctx, event)
	case stripesdk.EventTypePaymentIntentPaymentFailed:
		return s.intentFailed(ctx, event)
	default:
		return nil
	}
}

func (s *service) intentSucceeded(ctx context.Context, event *stripesdk.Event) error {
	intent, orderID, err := s.intentFromEvent(ctx, event)
	if err != nil || intent == nil {
		return err
	}
	recorded, err := s.intentRecorded(ctx, intent.ID)
	if err != nil || recorded {
		return err
	}
	// Webhook payloads omit expanded charges; reload for card details.
	full, err := s.gateway.RetrievePaymentIntent(ctx, intent.ID)
	if err != nil {
		return err
	}
	order, err := s.findOrder(ctx, orderID)
	if err != nil {
		return err
	}
	_, err = s.record(ctx, order, full)
	switch {
	case err == nil, errors.Is(err, ErrPaymentRecorded):
		return nil
	case errors.Is(err, orders.ErrOrderCancelled):
		// Acknowledged so Stripe stops retrying; the charge needs a manual refund.
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"order_id":          orderID.String(),
			"payment_intent_id": intent.ID,
		}), "payments.webhook.cancelled_order_charged")
		return nil
	default:
		return err
	}
}

func (s *service) intentRecorded(ctx context.Context, intentID string) (bool, error) {
	_, err := s.repo.FindByIntentID(ctx, intentID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return false, nil
	default:
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup payment by intent")
	}
}

func (s *service) intentFailed(ctx context.Context, event *stripesdk.Event) error {
	intent, orderID, err := s.intentFromEvent(ctx, event)
	if err != nil || intent == nil {
		return err
	}
	order, err := s.findOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if order.PaymentStatus == enums.PaymentStatusPaid {
		return nil
	}
	if _, err := s.orders.SetPaymentStatus(ctx, orderID, enums.PaymentStatusFailed, nil, s.now()); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark order payment failed")
	}
	s.metrics.PaymentConfirmed("declined")
	s.publish(ctx, events.Event{
		Type:        events.TypePaymentFailed,
		AggregateID: orderID,
		Payload:     map[string]any{"orderId": orderID, "paymentIntentId": intent.ID},
	})
	return nil
}

// intentFromEvent returns a nil intent for events that carry no order
// reference; those belong to payments created outside this service.
func (s *service) intentFromEvent(ctx context.Context, event *stripesdk.Event) (*pkgstripe.Intent, uuid.UUID, error) {
	intent, err := pkgstripe.PaymentIntentFromEvent(*event)
	if err != nil {
		return nil, uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode payment intent event")
	}
	raw, ok := intent.Metadata[metadataOrderID]
	if !ok {
		s.logg.Warn(s.logg.WithField(ctx, "payment_intent_id", intent.ID), "payments.webhook_without_order")
		return nil, uuid.Nil, nil
	}
	orderID, err := uuid.Parse(raw)
	if err != nil {
		return nil, uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id in intent metadata")
	}
	return intent, orderID, nil
}

// EventGuard claims webhook event ids in Redis so provider retries are
// processed once.
type EventGuard struct {
	store redis.EventDeduper
	ttl   time.Duration
}

func NewEventGuard(store redis.EventDeduper, ttl time.Duration) (*EventGuard, error) {
	if store == nil {
		return nil, errors.New("event store is required")
	}
	if ttl <= 0 {
		return nil, errors.New("ttl must be positive")
	}
	return &EventGuard{store: store, ttl: ttl}, nil
}

// CheckAndMark reports whether eventID was already claimed, claiming it otherwise.
func (g *EventGuard) CheckAndMark(ctx context.Context, eventID string) (bool, error) {
	if eventID == "" {
		return false, errors.New("event id is required")
	}
	claimed, err := g.store.ClaimOnce(ctx, g.store.WebhookEventKey(webhookProvider, eventID), g.ttl)
	if err != nil {
		return false, fmt.Errorf("claim webhook event: %w", err)
	}
	return !claimed, nil
}

// Release forgets eventID so a failed delivery can be retried.
func (g *EventGuard) Release(ctx context.Context, eventID string) error {
	if eventID == "" {
		return errors.New("event id is required")
	}
	return g.store.Del(ctx, g.store.WebhookEventKey(webhookProvider, eventID))
}
