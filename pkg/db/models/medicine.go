package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Medicine is a catalog item owned by exactly one seller.
type Medicine struct {
	ID                 uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Name               string          `gorm:"column:name;not null"`
	GenericName        string          `gorm:"column:generic_name;not null"`
	Description        string          `gorm:"column:description;not null"`
	Image              string          `gorm:"column:image;not null"`
	CategoryID         uuid.UUID       `gorm:"column:category_id;type:uuid;not null;index"`
	Category           *Category       `gorm:"foreignKey:CategoryID"`
	Company            string          `gorm:"column:company;not null"`
	MassUnit           string          `gorm:"column:mass_unit;not null"`
	Price              decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	DiscountPercentage decimal.Decimal `gorm:"column:discount_percentage;type:numeric(5,2);not null;default:0"`
	DiscountStartDate  *time.Time      `gorm:"column:discount_start_date"`
	DiscountEndDate    *time.Time      `gorm:"column:discount_end_date"`
	SellerID           uuid.UUID       `gorm:"column:seller_id;type:uuid;not null;index"`
	Seller             *User           `gorm:"foreignKey:SellerID"`
	InStock            bool            `gorm:"column:in_stock;not null;default:true"`
	StockQuantity      int             `gorm:"column:stock_quantity;not null;default:0"`
	IsAdvertised       bool            `gorm:"column:is_advertised;not null;default:false"`
	CreatedAt          time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (m *Medicine) BeforeCreate(*gorm.DB) error {
	ensureID(&m.ID)
	return nil
}

// DiscountActive reports whether the discount applies at now. Missing window
// bounds are open.
func (m Medicine) DiscountActive(now time.Time) bool {
	if !m.DiscountPercentage.IsPositive() {
		return false
	}
	if m.DiscountStartDate != nil && now.Before(*m.DiscountStartDate) {
		return false
	}
	if m.DiscountEndDate != nil && now.After(*m.DiscountEndDate) {
		return false
	}
	return true
}

// EffectivePrice is the unit price after any active discount, rounded to cents.
func (m Medicine) EffectivePrice(now time.Time) decimal.Decimal {
	if !m.DiscountActive(now) {
		return m.Price.Round(2)
	}
	factor := decimal.NewFromInt(100).Sub(m.DiscountPercentage).Div(decimal.NewFromInt(100))
	return m.Price.Mul(factor).Round(2)
}
