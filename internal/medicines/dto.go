package medicines

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/pharmacy-backend/pkg/db/models"
	"github.com/angelmondragon/pharmacy-backend/pkg/money"
	"github.com/angelmondragon/pharmacy-backend/pkg/pagination"
)

type CategoryRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type SellerRef struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// MedicineDTO is the catalog view of a medicine. FinalPrice reflects the
// discount active at render time.
type MedicineDTO struct {
	ID                 uuid.UUID   `json:"id"`
	Name               string      `json:"name"`
	GenericName        string      `json:"genericName"`
	Description        string      `json:"description"`
	Image              string      `json:"image"`
	Category           CategoryRef `json:"category"`
	Company            string      `json:"company"`
	MassUnit           string      `json:"massUnit"`
	Price              float64     `json:"price"`
	DiscountPercentage float64     `json:"discountPercentage"`
	DiscountStartDate  *time.Time  `json:"discountStartDate,omitempty"`
	DiscountEndDate    *time.Time  `json:"discountEndDate,omitempty"`
	DiscountActive     bool        `json:"discountActive"`
	FinalPrice         float64     `json:"finalPrice"`
	Seller             SellerRef   `json:"seller"`
	InStock            bool        `json:"inStock"`
	StockQuantity      int         `json:"stockQuantity"`
	IsAdvertised       bool        `json:"isAdvertised"`
	CreatedAt          time.Time   `json:"createdAt"`
	UpdatedAt          time.Time   `json:"updatedAt"`
}

func FromModel(m models.Medicine, now time.Time) MedicineDTO {
	dto := MedicineDTO{
		ID:                 m.ID,
		Name:               m.Name,
		GenericName:        m.GenericName,
		Description:        m.Description,
		Image:              m.Image,
		Category:           CategoryRef{ID: m.CategoryID},
		Company:            m.Company,
		MassUnit:           m.MassUnit,
		Price:              money.Float(m.Price),
		DiscountPercentage: money.Float(m.DiscountPercentage),
		DiscountStartDate:  m.DiscountStartDate,
		DiscountEndDate:    m.DiscountEndDate,
		DiscountActive:     m.DiscountActive(now),
		FinalPrice:         money.Float(m.EffectivePrice(now)),
		Seller:             SellerRef{ID: m.SellerID},
		InStock:            m.InStock,
		StockQuantity:      m.StockQuantity,
		IsAdvertised:       m.IsAdvertised,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
	if m.Category != nil {
		dto.Category.Name = m.Category.Name
	}
	if m.Seller != nil {
		dto.Seller.Name = m.Seller.Name
		dto.Seller.Email = m.Seller.Email
	}
	return dto
}

type MedicineList struct {
	Medicines  []MedicineDTO   `json:"medicines"`
	Pagination pagination.Page `json:"pagination"`
}

// ListFilter narrows and orders the catalog listing.
type ListFilter struct {
	Pagination pagination.Params
	SortBy     string
	SortOrder  string
	InStock    *bool
	CategoryID *uuid.UUID
	SellerID   *uuid.UUID
	Search     string
}

type CreateInput struct {
	Name               string     `json:"name" validate:"required,max=200"`
	GenericName        string     `json:"genericName" validate:"required,max=200"`
	Description        string     `json:"description" validate:"required,max=5000"`
	Image              string     `json:"image" validate:"required"`
	Category           string     `json:"category" validate:"required,uuid"`
	Company            string     `json:"company" validate:"required,max=200"`
	MassUnit           string     `json:"massUnit" validate:"required,max=50"`
	Price              float64    `json:"price" validate:"gte=0"`
	DiscountPercentage float64    `json:"discountPercentage" validate:"gte=0,lte=100"`
	DiscountStartDate  *time.Time `json:"discountStartDate"`
	DiscountEndDate    *time.Time `json:"discountEndDate"`
	InStock            *bool      `json:"inStock"`
	StockQuantity      int        `json:"stockQuantity" validate:"gte=0"`
	IsAdvertised       bool       `json:"isAdvertised"`
	Seller             string     `json:"seller" validate:"omitempty,uuid"`
}

type UpdateInput struct {
	Name               *string    `json:"name" validate:"omitempty,min=1,max=200"`
	GenericName        *string    `json:"genericName" validate:"omitempty,min=1,max=200"`
	Description        *string    `json:"description" validate:"omitempty,max=5000"`
	Image              *string    `json:"image"`
	Category           *string    `json:"category" validate:"omitempty,uuid"`
	Company            *string    `json:"company" validate:"omitempty,max=200"`
	MassUnit           *string    `json:"massUnit" validate:"omitempty,max=50"`
	Price              *float64   `json:"price" validate:"omitempty,gte=0"`
	DiscountPercentage *float64   `json:"discountPercentage" validate:"omitempty,gte=0,lte=100"`
	DiscountStartDate  *time.Time `json:"discountStartDate"`
	DiscountEndDate    *time.Time `json:"discountEndDate"`
	InStock            *bool      `json:"inStock"`
	StockQuantity      *int       `json:"stockQuantity" validate:"omitempty,gte=0"`
	IsAdvertised       *bool      `json:"isAdvertised"`
	Seller             *string    `json:"seller"`
}
