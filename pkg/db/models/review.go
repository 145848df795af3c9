package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Review is unique per (user, medicine); general reviews carry no medicine.
type Review struct {
	ID                 uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	UserID             uuid.UUID  `gorm:"column:user_id;type:uuid;not null;uniqueIndex:reviews_user_medicine_key,priority:1"`
	User               *User      `gorm:"foreignKey:UserID"`
	MedicineID         *uuid.UUID `gorm:"column:medicine_id;type:uuid;uniqueIndex:reviews_user_medicine_key,priority:2"`
	Medicine           *Medicine  `gorm:"foreignKey:MedicineID"`
	Rating             int        `gorm:"column:rating;not null"`
	Comment            string     `gorm:"column:comment;not null"`
	IsVerifiedPurchase bool       `gorm:"column:is_verified_purchase;not null;default:false"`
	CreatedAt          time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (r *Review) BeforeCreate(*gorm.DB) error {
	ensureID(&r.ID)
	return nil
}
