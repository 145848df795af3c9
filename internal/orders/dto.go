package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/pharmacy-backend/pkg/db/models"
	"github.com/angelmondragon/pharmacy-backend/pkg/enums"
	"github.com/angelmondragon/pharmacy-backend/pkg/money"
	"github.com/angelmondragon/pharmacy-backend/pkg/pagination"
	"github.com/angelmondragon/pharmacy-backend/pkg/types"
)

type ItemInput struct {
	MedicineID string   `json:"medicineId"`
	Quantity   int      `json:"quantity"`
	Price      *float64 `json:"price,omitempty"`
	Name       string   `json:"name,omitempty"`
}

type CouponInput struct {
	Code string `json:"code"`
}

// CreateInput is the checkout payload. Prices and the total are checked
// against the catalog before anything is written.
type CreateInput struct {
	Items           []ItemInput           `json:"items"`
	ShippingAddress types.ShippingAddress `json:"shippingAddress"`
	TotalAmount     *float64              `json:"totalAmount,omitempty"`
	Coupon          *CouponInput          `json:"coupon,omitempty"`
}

type StatusInput struct {
	Status string `json:"status" validate:"required"`
}

type PaymentStatusInput struct {
	PaymentStatus string `json:"paymentStatus" validate:"required"`
}

type ListFilter struct {
	Pagination    pagination.Params
	Status        *enums.OrderStatus
	PaymentStatus *enums.PaymentStatus
}

type UserRef struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

type MedicineRef struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Image    string    `json:"image"`
	Price    float64   `json:"price"`
	SellerID uuid.UUID `json:"sellerId"`
}

type ItemDTO struct {
	ID         uuid.UUID    `json:"id"`
	MedicineID uuid.UUID    `json:"medicineId"`
	Medicine   *MedicineRef `json:"medicine,omitempty"`
	Quantity   int          `json:"quantity"`
	Price      float64      `json:"price"`
}

type OrderDTO struct {
	ID              uuid.UUID             `json:"id"`
	User            *UserRef              `json:"user,omitempty"`
	UserID          uuid.UUID             `json:"userId"`
	Items           []ItemDTO             `json:"items"`
	Subtotal        float64               `json:"subtotal"`
	DiscountAmount  float64               `json:"discountAmount"`
	TotalAmount     float64               `json:"totalAmount"`
	CouponCode      *string               `json:"couponCode,omitempty"`
	Status          enums.OrderStatus     `json:"status"`
	PaymentStatus   enums.PaymentStatus   `json:"paymentStatus"`
	PaymentID       *string               `json:"paymentId,omitempty"`
	ShippingAddress types.ShippingAddress `json:"shippingAddress"`
	PaidAt          *time.Time            `json:"paidAt,omitempty"`
	FailedAt        *time.Time            `json:"failedAt,omitempty"`
	CreatedAt       time.Time             `json:"createdAt"`
	UpdatedAt       time.Time             `json:"updatedAt"`
}

type OrderList struct {
	Orders     []OrderDTO      `json:"orders"`
	Pagination pagination.Page `json:"pagination"`
}

func FromModel(o models.Order) OrderDTO {
	dto := OrderDTO{
		ID:              o.ID,
		UserID:          o.UserID,
		Items:           make([]ItemDTO, 0, len(o.Items)),
		Subtotal:        money.Float(o.Subtotal),
		DiscountAmount:  money.Float(o.DiscountAmount),
		TotalAmount:     money.Float(o.TotalAmount),
		CouponCode:      o.CouponCode,
		Status:          o.Status,
		PaymentStatus:   o.PaymentStatus,
		PaymentID:       o.PaymentID,
		ShippingAddress: o.ShippingAddress,
		PaidAt:          o.PaidAt,
		FailedAt:        o.FailedAt,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
	if o.User != nil {
		dto.User = &UserRef{ID: o.User.ID, Name: o.User.Name, Email: o.User.Email}
	}
	for _, item := range o.Items {
		out := ItemDTO{
			ID:         item.ID,
			MedicineID: item.MedicineID,
			Quantity:   item.Quantity,
			Price:      money.Float(item.Price),
		}
		if m := item.Medicine; m != nil {
			out.Medicine = &MedicineRef{ID: m.ID, Name: m.Name, Image: m.Image, Price: money.Float(m.Price), SellerID: m.SellerID}
		}
		dto.Items = append(dto.Items, out)
	}
	return dto
}

func fromModels(rows []models.Order) []OrderDTO {
	out := make([]OrderDTO, 0, len(rows))
	for _, o := range rows {
		out = append(out, FromModel(o))
	}
	return out
}
