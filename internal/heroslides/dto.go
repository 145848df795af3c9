package heroslides

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/pharmacy-backend/pkg/db/models"
	"github.com/angelmondragon/pharmacy-backend/pkg/money"
)

type FeaturedMedicine struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Image string    `json:"image"`
	Price float64   `json:"price"`
}

type SlideDTO struct {
	ID               uuid.UUID         `json:"id"`
	Title            string            `json:"title"`
	Subtitle         string            `json:"subtitle"`
	Description      string            `json:"description"`
	Image            string            `json:"image"`
	ButtonText       string            `json:"buttonText"`
	ButtonLink       string            `json:"buttonLink"`
	Active           bool              `json:"active"`
	BackgroundColor  string            `json:"backgroundColor"`
	LightBackground  string            `json:"lightBackground"`
	TextColor        string            `json:"textColor"`
	LightTextColor   string            `json:"lightTextColor"`
	FeaturedMedicine *FeaturedMedicine `json:"featuredMedicine,omitempty"`
	Order            int               `json:"order"`
	StartDate        *time.Time        `json:"startDate,omitempty"`
	EndDate          *time.Time        `json:"endDate,omitempty"`
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`
}

func FromModel(h models.HeroSlide) SlideDTO {
	dto := SlideDTO{
		ID:              h.ID,
		Title:           h.Title,
		Subtitle:        h.Subtitle,
		Description:     h.Description,
		Image:           h.Image,
		ButtonText:      h.ButtonText,
		ButtonLink:      h.ButtonLink,
		Active:          h.Active,
		BackgroundColor: h.BackgroundColor,
		LightBackground: h.LightBackground,
		TextColor:       h.TextColor,
		LightTextColor:  h.LightTextColor,
		Order:           h.Order,
		StartDate:       h.StartDate,
		EndDate:         h.EndDate,
		CreatedAt:       h.CreatedAt,
		UpdatedAt:       h.UpdatedAt,
	}
	if h.FeaturedMedicine != nil {
		dto.FeaturedMedicine = &FeaturedMedicine{
			ID:    h.FeaturedMedicine.ID,
			Name:  h.FeaturedMedicine.Name,
			Image: h.FeaturedMedicine.Image,
			Price: money.Float(h.FeaturedMedicine.Price),
		}
	} else if h.FeaturedMedicineID != nil {
		dto.FeaturedMedicine = &FeaturedMedicine{ID: *h.FeaturedMedicineID}
	}
	return dto
}

type CreateInput struct {
	Title            string     `json:"title" validate:"required,max=200"`
	Subtitle         string     `json:"subtitle" validate:"required,max=200"`
	Description      string     `json:"description" validate:"required,max=1000"`
	Image            string     `json:"image" validate:"required"`
	ButtonText       string     `json:"buttonText" validate:"required,max=60"`
	ButtonLink       string     `json:"buttonLink"`
	Active           *bool      `json:"active"`
	BackgroundColor  string     `json:"backgroundColor"`
	LightBackground  string     `json:"lightBackground"`
	TextColor        string     `json:"textColor"`
	LightTextColor   string     `json:"lightTextColor"`
	FeaturedMedicine string     `json:"featuredMedicine" validate:"omitempty,uuid"`
	Order            int        `json:"order"`
	StartDate        *time.Time `json:"startDate"`
	EndDate          *time.Time `json:"endDate"`
}

type UpdateInput struct {
	Title            *string    `json:"title" validate:"omitempty,min=1,max=200"`
	Subtitle         *string    `json:"subtitle" validate:"omitempty,max=200"`
	Description      *string    `json:"description" validate:"omitempty,max=1000"`
	Image            *string    `json:"image"`
	ButtonText       *string    `json:"buttonText" validate:"omitempty,max=60"`
	ButtonLink       *string    `json:"buttonLink"`
	Active           *bool      `json:"active"`
	BackgroundColor  *string    `json:"backgroundColor"`
	LightBackground  *string    `json:"lightBackground"`
	TextColor        *string    `json:"textColor"`
	LightTextColor   *string    `json:"lightTextColor"`
	FeaturedMedicine *string    `json:"featuredMedicine" validate:"omitempty,uuid"`
	Order            *int       `json:"order"`
	StartDate        *time.Time `json:"startDate"`
	EndDate          *time.Time `json:"endDate"`
}
