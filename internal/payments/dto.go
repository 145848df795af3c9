package payments

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/pharmacy-backend/pkg/db/models"
	"github.com/angelmondragon/pharmacy-backend/pkg/enums"
	"github.com/angelmondragon/pharmacy-backend/pkg/money"
	"github.com/angelmondragon/pharmacy-backend/pkg/pagination"
)

type IntentInput struct {
	OrderID  string `json:"orderId" validate:"required,uuid"`
	Currency string `json:"currency,omitempty" validate:"omitempty,len=3"`
}

type IntentResult struct {
	ClientSecret    string  `json:"clientSecret"`
	PaymentIntentID string  `json:"paymentIntentId"`
	Amount          float64 `json:"amount"`
	Currency        string  `json:"currency"`
}

type ConfirmInput struct {
	PaymentIntentID string `json:"paymentIntentId" validate:"required"`
	OrderID         string `json:"orderId" validate:"required,uuid"`
}

type PaymentDTO struct {
	ID              uuid.UUID                 `json:"id"`
	OrderID         uuid.UUID                 `json:"orderId"`
	Amount          float64                   `json:"amount"`
	Currency        enums.Currency            `json:"currency"`
	Status          enums.PaymentRecordStatus `json:"status"`
	PaymentIntentID string                    `json:"paymentIntentId"`
	PaymentMethod   *string                   `json:"paymentMethod,omitempty"`
	CardBrand       *string                   `json:"cardBrand,omitempty"`
	CardLast4       *string                   `json:"cardLast4,omitempty"`
	SellerID        uuid.UUID                 `json:"sellerId"`
	CreatedAt       time.Time                 `json:"createdAt"`
}

type PaymentList struct {
	Payments   []PaymentDTO    `json:"payments"`
	Pagination pagination.Page `json:"pagination"`
}

func FromModel(p models.Payment) PaymentDTO {
	return PaymentDTO{
		ID:              p.ID,
		OrderID:         p.OrderID,
		Amount:          money.Float(p.Amount),
		Currency:        p.Currency,
		Status:          p.Status,
		PaymentIntentID: p.PaymentIntentID,
		PaymentMethod:   p.PaymentMethod,
		CardBrand:       p.CardBrand,
		CardLast4:       p.CardLast4,
		SellerID:        p.SellerID,
		CreatedAt:       p.CreatedAt,
	}
}

func fromModels(rows []models.Payment) []PaymentDTO {
	out := make([]PaymentDTO, 0, len(rows))
	for _, p := range rows {
		out = append(out, FromModel(p))
	}
	return out
}
