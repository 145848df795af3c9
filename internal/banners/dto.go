package banners

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/pharmacy-backend/pkg/db/models"
)

type CreateInput struct {
	Title       string     `json:"title" validate:"required,max=200"`
	Description string     `json:"description" validate:"max=1000"`
	Image       string     `json:"image" validate:"required"`
	Link        string     `json:"link"`
	Active      *bool      `json:"active"`
	Order       int        `json:"order"`
	StartDate   *time.Time `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
}

type UpdateInput struct {
	Title       *string    `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=1000"`
	Image       *string    `json:"image"`
	Link        *string    `json:"link"`
	Active      *bool      `json:"active"`
	Order       *int       `json:"order"`
	StartDate   *time.Time `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
}

type BannerDTO struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Image       string     `json:"image"`
	Link        string     `json:"link"`
	Active      bool       `json:"active"`
	Order       int        `json:"order"`
	StartDate   *time.Time `json:"startDate,omitempty"`
	EndDate     *time.Time `json:"endDate,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func FromModel(b models.Banner) BannerDTO {
	return BannerDTO{
		ID:          b.ID,
		Title:       b.Title,
		Description: b.Description,
		Image:       b.Image,
		Link:        b.Link,
		Active:      b.Active,
		Order:       b.Order,
		StartDate:   b.StartDate,
		EndDate:     b.EndDate,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

func fromModels(rows []models.Banner) []BannerDTO {
	out := make([]BannerDTO, 0, len(rows))
	for _, b := range rows {
		out = append(out, FromModel(b))
	}
	return out
}
