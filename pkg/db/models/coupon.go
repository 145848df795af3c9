package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/pharmacy-backend/pkg/enums"
)

type Coupon struct {
	ID                    uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	Code                  string              `gorm:"column:code;not null;uniqueIndex:coupons_code_key"`
	DiscountType          enums.DiscountType  `gorm:"column:discount_type;type:varchar(16);not null;default:'percentage'"`
	DiscountValue         decimal.Decimal     `gorm:"column:discount_value;type:numeric(12,2);not null"`
	MinimumOrderAmount    decimal.Decimal     `gorm:"column:minimum_order_amount;type:numeric(12,2);not null;default:0"`
	MaximumDiscountAmount decimal.NullDecimal `gorm:"column:maximum_discount_amount;type:numeric(12,2)"`
	UsageLimit            *int                `gorm:"column:usage_limit"`
	UsedCount             int                 `gorm:"column:used_count;not null;default:0"`
	StartDate             time.Time           `gorm:"column:start_date;not null;index:idx_coupons_window,priority:1"`
	EndDate               time.Time           `gorm:"column:end_date;not null;index:idx_coupons_window,priority:2"`
	IsActive              bool                `gorm:"column:is_active;not null;default:true;index"`
	ApplicableCategories  []string            `gorm:"column:applicable_categories;type:jsonb;serializer:json"`
	ApplicableMedicines   []string            `gorm:"column:applicable_medicines;type:jsonb;serializer:json"`
	CreatedBy             uuid.UUID           `gorm:"column:created_by;type:uuid;not null"`
	CreatedAt             time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *Coupon) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	return nil
}

// Restricted reports whether the coupon only applies to specific items.
func (c Coupon) Restricted() bool {
	return len(c.ApplicableCategories) > 0 || len(c.ApplicableMedicines) > 0
}
