package categories

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/pharmacy-backend/pkg/db/models"
)

// CategoryDTO is a category together with how many medicines reference it.
type CategoryDTO struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Image         string    `json:"image"`
	Icon          string    `json:"icon"`
	Color         string    `json:"color"`
	IsActive      bool      `json:"isActive"`
	MedicineCount int64     `json:"medicineCount"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func FromModel(c models.Category, count int64) CategoryDTO {
	return CategoryDTO{
		ID:            c.ID,
		Name:          c.Name,
		Description:   c.Description,
		Image:         c.Image,
		Icon:          c.Icon,
		Color:         c.Color,
		IsActive:      c.IsActive,
		MedicineCount: count,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

type CreateInput struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"required,max=1000"`
	Image       string `json:"image" validate:"required"`
	Icon        string `json:"icon" validate:"omitempty,max=50"`
	Color       string `json:"color" validate:"omitempty,max=50"`
	IsActive    *bool  `json:"isActive"`
}

type UpdateInput struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	Image       *string `json:"image"`
	Icon        *string `json:"icon" validate:"omitempty,max=50"`
	Color       *string `json:"color" validate:"omitempty,max=50"`
	IsActive    *bool   `json:"isActive"`
}

func (in UpdateInput) updates() map[string]any {
	out := map[string]any{}
	if in.Name != nil {
		out["name"] = *in.Name
	}
	if in.Description != nil {
		out["description"] = *in.Description
	}
	if in.Image != nil {
		out["image"] = *in.Image
	}
	if in.Icon != nil {
		out["icon"] = *in.Icon
	}
	if in.Color != nil {
		out["color"] = *in.Color
	}
	if in.IsActive != nil {
		out["is_active"] = *in.IsActive
	}
	return out
}
