package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Banner struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	Title       string     `gorm:"column:title;not null"`
	Description string     `gorm:"column:description;not null;default:''"`
	Image       string     `gorm:"column:image;not null"`
	Link        string     `gorm:"column:link;not null;default:'#'"`
	Active      bool       `gorm:"column:active;not null;default:true"`
	Order       int        `gorm:"column:display_order;not null;default:0"`
	StartDate   *time.Time `gorm:"column:start_date"`
	EndDate     *time.Time `gorm:"column:end_date"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (b *Banner) BeforeCreate(*gorm.DB) error {
	ensureID(&b.ID)
	return nil
}

// Live reports whether the banner is active and inside its optional window.
func (b Banner) Live(now time.Time) bool {
	return b.Active && withinWindow(now, b.StartDate, b.EndDate)
}

type HeroSlide struct {
	ID                 uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	Title              string     `gorm:"column:title;not null"`
	Subtitle           string     `gorm:"column:subtitle;not null"`
	Description        string     `gorm:"column:description;not null"`
	Image              string     `gorm:"column:image;not null"`
	ButtonText         string     `gorm:"column:button_text;not null"`
	ButtonLink         string     `gorm:"column:button_link;not null;default:'#'"`
	Active             bool       `gorm:"column:active;not null;default:true"`
	BackgroundColor    string     `gorm:"column:background_color;not null;default:'from-cyan-500 to-blue-500'"`
	LightBackground    string     `gorm:"column:light_background;not null;default:'from-cyan-50 to-blue-50'"`
	TextColor          string     `gorm:"column:text_color;not null;default:'text-white'"`
	LightTextColor     string     `gorm:"column:light_text_color;not null;default:'text-gray-900'"`
	FeaturedMedicineID *uuid.UUID `gorm:"column:featured_medicine_id;type:uuid"`
	FeaturedMedicine   *Medicine  `gorm:"foreignKey:FeaturedMedicineID"`
	Order              int        `gorm:"column:display_order;not null;default:0"`
	StartDate          *time.Time `gorm:"column:start_date"`
	EndDate            *time.Time `gorm:"column:end_date"`
	CreatedAt          time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (HeroSlide) TableName() string { return "hero_slides" }

func (h *HeroSlide) BeforeCreate(*gorm.DB) error {
	ensureID(&h.ID)
	return nil
}

func (h HeroSlide) Live(now time.Time) bool {
	return h.Active && withinWindow(now, h.StartDate, h.EndDate)
}

func withinWindow(now time.Time, start, end *time.Time) bool {
	if start != nil && now.Before(*start) {
		return false
	}
	if end != nil && now.After(*end) {
		return false
	}
	return true
}
