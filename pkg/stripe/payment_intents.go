package stripe

import (
	"context"
	"errors"
	"strings"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/paymentintent"

	pkgerrors "github.com/angelmondragon/pharmacy-backend/pkg/errors"
)

// IntentStatusSucceeded is the only status that allows a payment to be recorded.
const IntentStatusSucceeded = string(stripe.PaymentIntentStatusSucceeded)

// IntentRequest describes a new payment intent in minor units.
type IntentRequest struct {
	AmountCents  int64
	Currency     string
	ReceiptEmail string
	Description  string
	Metadata     map[string]string
}

// Intent is the gateway-neutral view of a Stripe PaymentIntent.
type Intent struct {
	ID            string
	ClientSecret  string
	Status        string
	AmountCents   int64
	Currency      string
	PaymentMethod string
	CardBrand     string
	CardLast4     string
	Metadata      map[string]string
}

// PaymentIntents creates and retrieves payment intents through the Stripe API.
type PaymentIntents struct {
	client *Client
}

// NewPaymentIntents binds the gateway to an initialized client.
func NewPaymentIntents(client *Client) *PaymentIntents {
	if client == nil {
		return nil
	}
	return &PaymentIntents{client: client}
}

// CreatePaymentIntent opens a charge attempt with automatic payment methods.
func (p *PaymentIntents) CreatePaymentIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	if req.AmountCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment amount must be positive")
	}
	currency := strings.ToLower(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = p.client.DefaultCurrency()
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.AmountCents),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	if req.ReceiptEmail != "" {
		params.ReceiptEmail = stripe.String(req.ReceiptEmail)
	}
	if req.Description != "" {
		params.Description = stripe.String(req.Description)
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	params.Context = ctx

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, translateError(err, "create payment intent")
	}
	return IntentFromStripe(pi), nil
}

// RetrievePaymentIntent loads an intent with its latest charge expanded so card
// details are available.
func (p *PaymentIntents) RetrievePaymentIntent(ctx context.Context, id string) (*Intent, error) {
	if strings.TrimSpace(id) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment intent id is required")
	}
	params := &stripe.PaymentIntentParams{}
	params.AddExpand("latest_charge")
	params.AddExpand("payment_method")
	params.Context = ctx

	pi, err := paymentintent.Get(id, params)
	if err != nil {
		return nil, translateError(err, "retrieve payment intent")
	}
	return IntentFromStripe(pi), nil
}

// IntentFromStripe flattens a PaymentIntent, preferring charge card details
// over the payment method when both are expanded.
func IntentFromStripe(pi *stripe.PaymentIntent) *Intent {
	if pi == nil {
		return nil
	}
	out := &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
		AmountCents:  pi.Amount,
		Currency:     string(pi.Currency),
		Metadata:     pi.Metadata,
	}
	if pm := pi.PaymentMethod; pm != nil {
		out.PaymentMethod = string(pm.Type)
		if pm.Card != nil {
			out.CardBrand = string(pm.Card.Brand)
			out.CardLast4 = pm.Card.Last4
		}
	}
	if ch := pi.LatestCharge; ch != nil && ch.PaymentMethodDetails != nil {
		details := ch.PaymentMethodDetails
		if details.Type != "" {
			out.PaymentMethod = string(details.Type)
		}
		if details.Card != nil {
			out.CardBrand = string(details.Card.Brand)
			out.CardLast4 = details.Card.Last4
		}
	}
	if out.PaymentMethod == "" {
		out.PaymentMethod = "card"
	}
	return out
}

func translateError(err error, op string) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		switch {
		case stripeErr.Code == stripe.ErrorCodeResourceMissing:
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "payment intent not found")
		case stripeErr.Type == stripe.ErrorTypeCard || stripeErr.Type == stripe.ErrorTypeInvalidRequest:
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, stripeErr.Msg)
		}
	}
	return pkgerrors.Wrap(pkgerrors.CodeUpstream, err, op+" failed")
}
