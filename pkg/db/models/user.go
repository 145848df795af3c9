package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/pharmacy-backend/pkg/enums"
)

// User is the local projection of an externally verified identity.
type User struct {
	ID             uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	Name           string         `gorm:"column:name;not null;default:''"`
	Username       string         `gorm:"column:username;not null;default:''"`
	Email          string         `gorm:"column:email;not null;uniqueIndex:users_email_key"`
	Role           enums.UserRole `gorm:"column:role;type:varchar(16);not null;default:'user'"`
	ProfilePicture string         `gorm:"column:profile_picture;not null;default:''"`
	Phone          string         `gorm:"column:phone;not null;default:''"`
	Address        string         `gorm:"column:address;not null;default:''"`
	IsActive       bool           `gorm:"column:is_active;not null;default:true"`
	CreatedAt      time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	ensureID(&u.ID)
	return nil
}
