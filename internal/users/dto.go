package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/pharmacy-backend/pkg/db/models"
	"github.com/angelmondragon/pharmacy-backend/pkg/enums"
	"github.com/angelmondragon/pharmacy-backend/pkg/pagination"
)

// UserDTO is the public representation of a user.
type UserDTO struct {
	ID             uuid.UUID      `json:"id"`
	Name           string         `json:"name"`
	Username       string         `json:"username"`
	Email          string         `json:"email"`
	Role           enums.UserRole `json:"role"`
	ProfilePicture string         `json:"profilePicture"`
	Phone          string         `json:"phone"`
	Address        string         `json:"address"`
	IsActive       bool           `json:"isActive"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// FromModel maps a persisted user to its DTO.
func FromModel(u *models.User) UserDTO {
	if u == nil {
		return UserDTO{}
	}
	return UserDTO{
		ID:             u.ID,
		Name:           u.Name,
		Username:       u.Username,
		Email:          u.Email,
		Role:           u.Role,
		ProfilePicture: u.ProfilePicture,
		Phone:          u.Phone,
		Address:        u.Address,
		IsActive:       u.IsActive,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

// UserList is a page of users.
type UserList struct {
	Users      []UserDTO       `json:"users"`
	Pagination pagination.Page `json:"pagination"`
}

// UpdateProfileInput patches the caller's own profile. Nil fields are left alone.
type UpdateProfileInput struct {
	Name           *string `json:"name" validate:"omitempty,min=1,max=120"`
	Username       *string `json:"username" validate:"omitempty,min=1,max=60"`
	Phone          *string `json:"phone" validate:"omitempty,max=32"`
	Address        *string `json:"address" validate:"omitempty,max=500"`
	ProfilePicture *string `json:"profilePicture" validate:"omitempty,url"`
}

func (in UpdateProfileInput) updates() map[string]any {
	out := map[string]any{}
	set := func(col string, v *string) {
		if v != nil {
			out[col] = *v
		}
	}
	set("name", in.Name)
	set("username", in.Username)
	set("phone", in.Phone)
	set("address", in.Address)
	set("profile_picture", in.ProfilePicture)
	return out
}
