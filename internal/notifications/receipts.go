// Package notifications sends customer-facing messages about orders.
package notifications

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/angelmondragon/pharmacy-backend/pkg/mailer"
)

// ReceiptLine is one purchased medicine on a receipt.
type ReceiptLine struct {
	Name     string
	Quantity int
	Amount   string
}

// Receipt describes a confirmed payment.
type Receipt struct {
	CustomerName  string
	CustomerEmail string
	OrderID       string
	TransactionID string
	Amount        string
	Currency      string
	CardBrand     string
	CardLast4     string
	PaidAt        time.Time
	Lines         []ReceiptLine
}

type ReceiptSender interface {
	SendPaymentReceipt(ctx context.Context, r Receipt) error
}

// MailReceiptSender renders receipts and hands them to a mailer.
type MailReceiptSender struct {
	mailer mailer.Mailer
}

func NewMailReceiptSender(m mailer.Mailer) (*MailReceiptSender, error) {
	if m == nil {
		return nil, fmt.Errorf("mailer required")
	}
	return &MailReceiptSender{mailer: m}, nil
}

func (s *MailReceiptSender) SendPaymentReceipt(ctx context.Context, r Receipt) error {
	if strings.TrimSpace(r.CustomerEmail) == "" {
		return fmt.Errorf("receipt for order %s has no recipient", r.OrderID)
	}
	return s.mailer.Send(ctx, Render(r))
}

// Render builds the plain text and HTML bodies for a receipt.
func Render(r Receipt) mailer.Message {
	var text, body strings.Builder
	fmt.Fprintf(&text, "Hi %s,\n\nThanks for your order %s.\n\n", displayName(r), r.OrderID)
	fmt.Fprintf(&body, "<p>Hi %s,</p><p>Thanks for your order <strong>%s</strong>.</p><ul>",
		html.EscapeString(displayName(r)), html.EscapeString(r.OrderID))
	for _, l := range r.Lines {
		fmt.Fprintf(&text, "  %d x %s  %s\n", l.Quantity, l.Name, l.Amount)
		fmt.Fprintf(&body, "<li>%d &times; %s: %s</li>", l.Quantity, html.EscapeString(l.Name), html.EscapeString(l.Amount))
	}
	body.WriteString("</ul>")

	total := fmt.Sprintf("%s %s", r.Amount, strings.ToUpper(r.Currency))
	fmt.Fprintf(&text, "\nTotal charged: %s\n", total)
	fmt.Fprintf(&body, "<p>Total charged: <strong>%s</strong></p>", html.EscapeString(total))
	if r.CardLast4 != "" {
		fmt.Fprintf(&text, "Card: %s ending in %s\n", r.CardBrand, r.CardLast4)
		fmt.Fprintf(&body, "<p>Card: %s ending in %s</p>", html.EscapeString(r.CardBrand), html.EscapeString(r.CardLast4))
	}
	fmt.Fprintf(&text, "Transaction: %s\nDate: %s\n", r.TransactionID, r.PaidAt.UTC().Format(time.RFC1123))
	fmt.Fprintf(&body, "<p>Transaction: %s<br>Date: %s</p>", html.EscapeString(r.TransactionID), r.PaidAt.UTC().Format(time.RFC1123))

	return mailer.Message{
		ToEmail: r.CustomerEmail,
		ToName:  r.CustomerName,
		Subject: fmt.Sprintf("Your payment receipt for order %s", r.OrderID),
		Text:    text.String(),
		HTML:    body.String(),
	}
}

func displayName(r Receipt) string {
	if strings.TrimSpace(r.CustomerName) != "" {
		return r.CustomerName
	}
	return "there"
}

// NopReceiptSender is used when no mail provider is configured.
type NopReceiptSender struct{}

func (NopReceiptSender) SendPaymentReceipt(context.Context, Receipt) error { return nil }
