package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/pharmacy-backend/pkg/enums"
	"github.com/angelmondragon/pharmacy-backend/pkg/types"
)

type Order struct {
	ID              uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	UserID          uuid.UUID             `gorm:"column:user_id;type:uuid;not null;index"`
	User            *User                 `gorm:"foreignKey:UserID"`
	Items           []OrderItem           `gorm:"foreignKey:OrderID"`
	Subtotal        decimal.Decimal       `gorm:"column:subtotal;type:numeric(12,2);not null;default:0"`
	DiscountAmount  decimal.Decimal       `gorm:"column:discount_amount;type:numeric(12,2);not null;default:0"`
	TotalAmount     decimal.Decimal       `gorm:"column:total_amount;type:numeric(12,2);not null"`
	CouponCode      *string               `gorm:"column:coupon_code"`
	Status          enums.OrderStatus     `gorm:"column:status;type:varchar(16);not null;default:'pending'"`
	PaymentStatus   enums.PaymentStatus   `gorm:"column:payment_status;type:varchar(16);not null;default:'pending'"`
	PaymentID       *string               `gorm:"column:payment_id"`
	ShippingAddress types.ShippingAddress `gorm:"column:shipping_address;type:text;not null"`
	PaidAt          *time.Time            `gorm:"column:paid_at"`
	FailedAt        *time.Time            `gorm:"column:failed_at"`
	CreatedAt       time.Time             `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt       time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	ensureID(&o.ID)
	return nil
}

// ComputedTotal sums price × quantity over the line items.
func (o Order) ComputedTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.LineTotal())
	}
	return total
}

type OrderItem struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	OrderID    uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	MedicineID uuid.UUID       `gorm:"column:medicine_id;type:uuid;not null;index"`
	Medicine   *Medicine       `gorm:"foreignKey:MedicineID"`
	Quantity   int             `gorm:"column:quantity;not null"`
	Price      decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (i *OrderItem) BeforeCreate(*gorm.DB) error {
	ensureID(&i.ID)
	return nil
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
