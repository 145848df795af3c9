package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/pharmacy-backend/pkg/enums"
)

// Payment records one confirmed gateway charge. PaymentIntentID is the
// idempotency boundary.
type Payment struct {
	ID              uuid.UUID                 `gorm:"column:id;type:uuid;primaryKey"`
	OrderID         uuid.UUID                 `gorm:"column:order_id;type:uuid;not null;index"`
	Amount          decimal.Decimal           `gorm:"column:amount;type:numeric(12,2);not null"`
	Currency        enums.Currency            `gorm:"column:currency;type:varchar(3);not null;default:'usd'"`
	Status          enums.PaymentRecordStatus `gorm:"column:status;type:varchar(16);not null;default:'pending'"`
	PaymentIntentID string                    `gorm:"column:payment_intent_id;not null;uniqueIndex:payments_payment_intent_id_key"`
	PaymentMethod   *string                   `gorm:"column:payment_method"`
	CardBrand       *string                   `gorm:"column:card_brand"`
	CardLast4       *string                   `gorm:"column:card_last4"`
	SellerID        uuid.UUID                 `gorm:"column:seller_id;type:uuid;not null;index"`
	CreatedAt       time.Time                 `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt       time.Time                 `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Payment) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}
