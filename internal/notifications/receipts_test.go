package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/pharmacy-backend/pkg/mailer"
)

type stubMailer struct {
	sendFn func(ctx context.Context, msg mailer.Message) error
}

func (s stubMailer) Send(ctx context.Context, msg mailer.Message) error {
	return s.sendFn(ctx, msg)
}

func sampleReceipt() Receipt {
	return Receipt{
		CustomerName:  "Jane <Doe>",
		CustomerEmail: "jane@example.com",
		OrderID:       "ORD-1234ABCD",
		TransactionID: "pi_123",
		Amount:        "42.50",
		Currency:      "usd",
		CardBrand:     "visa",
		CardLast4:     "4242",
		PaidAt:        time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC),
		Lines:         []ReceiptLine{{Name: "Ibuprofen", Quantity: 2, Amount: "20.00"}},
	}
}

func TestRenderIncludesTotalsAndEscapesHTML(t *testing.T) {
	msg := Render(sampleReceipt())

	assert.Equal(t, "jane@example.com", msg.ToEmail)
	assert.Contains(t, msg.Subject, "ORD-1234ABCD")
	assert.Contains(t, msg.Text, "2 x Ibuprofen  20.00")
	assert.Contains(t, msg.Text, "Total charged: 42.50 USD")
	assert.Contains(t, msg.Text, "visa ending in 4242")
	assert.Contains(t, msg.HTML, "Jane &lt;Doe&gt;")
	assert.NotContains(t, msg.HTML, "<Doe>")
}

func TestMailReceiptSenderDelegates(t *testing.T) {
	var sent mailer.Message
	sender, err := NewMailReceiptSender(stubMailer{sendFn: func(_ context.Context, msg mailer.Message) error {
		sent = msg
		return nil
	}})
	require.NoError(t, err)

	require.NoError(t, sender.SendPaymentReceipt(context.Background(), sampleReceipt()))
	assert.Equal(t, "jane@example.com", sent.ToEmail)

	missing := sampleReceipt()
	missing.CustomerEmail = ""
	assert.Error(t, sender.SendPaymentReceipt(context.Background(), missing))
}

func TestNewMailReceiptSenderRequiresMailer(t *testing.T) {
	_, err := NewMailReceiptSender(nil)
	assert.Error(t, err)
}
