package coupons

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/pharmacy-backend/pkg/db/models"
	"github.com/angelmondragon/pharmacy-backend/pkg/enums"
	"github.com/angelmondragon/pharmacy-backend/pkg/money"
	"github.com/angelmondragon/pharmacy-backend/pkg/pagination"
)

type CouponDTO struct {
	ID                    uuid.UUID          `json:"id"`
	Code                  string             `json:"code"`
	DiscountType          enums.DiscountType `json:"discountType"`
	DiscountValue         float64            `json:"discountValue"`
	MinimumOrderAmount    float64            `json:"minimumOrderAmount"`
	MaximumDiscountAmount *float64           `json:"maximumDiscountAmount"`
	UsageLimit            *int               `json:"usageLimit"`
	UsedCount             int                `json:"usedCount"`
	StartDate             time.Time          `json:"startDate"`
	EndDate               time.Time          `json:"endDate"`
	IsActive              bool               `json:"isActive"`
	ApplicableCategories  []string           `json:"applicableCategories"`
	ApplicableMedicines   []string           `json:"applicableMedicines"`
	CreatedBy             uuid.UUID          `json:"createdBy"`
	CreatedAt             time.Time          `json:"createdAt"`
	UpdatedAt             time.Time          `json:"updatedAt"`
}

func FromModel(c models.Coupon) CouponDTO {
	dto := CouponDTO{
		ID:                   c.ID,
		Code:                 c.Code,
		DiscountType:         c.DiscountType,
		DiscountValue:        money.Float(c.DiscountValue),
		MinimumOrderAmount:   money.Float(c.MinimumOrderAmount),
		UsageLimit:           c.UsageLimit,
		UsedCount:            c.UsedCount,
		StartDate:            c.StartDate,
		EndDate:              c.EndDate,
		IsActive:             c.IsActive,
		ApplicableCategories: nonNil(c.ApplicableCategories),
		ApplicableMedicines:  nonNil(c.ApplicableMedicines),
		CreatedBy:            c.CreatedBy,
		CreatedAt:            c.CreatedAt,
		UpdatedAt:            c.UpdatedAt,
	}
	if c.MaximumDiscountAmount.Valid {
		v := money.Float(c.MaximumDiscountAmount.Decimal)
		dto.MaximumDiscountAmount = &v
	}
	return dto
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

type CouponList struct {
	Coupons    []CouponDTO     `json:"coupons"`
	Pagination pagination.Page `json:"pagination"`
}

type CreateInput struct {
	Code                  string     `json:"code" validate:"omitempty,alphanum,max=32"`
	DiscountType          string     `json:"discountType" validate:"omitempty,oneof=percentage fixed"`
	DiscountValue         float64    `json:"discountValue" validate:"gte=0"`
	MinimumOrderAmount    float64    `json:"minimumOrderAmount" validate:"gte=0"`
	MaximumDiscountAmount *float64   `json:"maximumDiscountAmount" validate:"omitempty,gte=0"`
	UsageLimit            *int       `json:"usageLimit" validate:"omitempty,gte=1"`
	StartDate             *time.Time `json:"startDate" validate:"required"`
	EndDate               *time.Time `json:"endDate" validate:"required"`
	IsActive              *bool      `json:"isActive"`
	ApplicableCategories  []string   `json:"applicableCategories" validate:"omitempty,dive,uuid"`
	ApplicableMedicines   []string   `json:"applicableMedicines" validate:"omitempty,dive,uuid"`
}

type UpdateInput struct {
	Code                  *string    `json:"code"`
	DiscountType          *string    `json:"discountType" validate:"omitempty,oneof=percentage fixed"`
	DiscountValue         *float64   `json:"discountValue" validate:"omitempty,gte=0"`
	MinimumOrderAmount    *float64   `json:"minimumOrderAmount" validate:"omitempty,gte=0"`
	MaximumDiscountAmount *float64   `json:"maximumDiscountAmount" validate:"omitempty,gte=0"`
	UsageLimit            *int       `json:"usageLimit" validate:"omitempty,gte=1"`
	StartDate             *time.Time `json:"startDate"`
	EndDate               *time.Time `json:"endDate"`
	IsActive              *bool      `json:"isActive"`
	ApplicableCategories  []string   `json:"applicableCategories" validate:"omitempty,dive,uuid"`
	ApplicableMedicines   []string   `json:"applicableMedicines" validate:"omitempty,dive,uuid"`

	// Clear flags remove an optional cap; they cannot be combined with a new value.
	ClearMaximumDiscountAmount bool `json:"clearMaximumDiscountAmount"`
	ClearUsageLimit            bool `json:"clearUsageLimit"`
}

// ItemInput is an optional order line sent with validate/apply so restricted
// coupons can be priced against matching items only.
type ItemInput struct {
	MedicineID string  `json:"medicineId" validate:"required,uuid"`
	Quantity   int     `json:"quantity" validate:"required,gte=1"`
	Price      float64 `json:"price" validate:"gte=0"`
}

type ValidateInput struct {
	Code        string      `json:"code" validate:"required"`
	OrderAmount float64     `json:"orderAmount" validate:"gte=0"`
	Items       []ItemInput `json:"items" validate:"omitempty,dive"`
}

type ValidateResult struct {
	Coupon         CouponDTO `json:"coupon"`
	DiscountAmount float64   `json:"discountAmount"`
}
