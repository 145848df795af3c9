// Package seed loads catalog and content fixtures from YAML.
package seed

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Fixture is the document shape of a seed file.
type Fixture struct {
	Users      []User      `yaml:"users"`
	Categories []Category  `yaml:"categories"`
	Medicines  []Medicine  `yaml:"medicines"`
	Banners    []Banner    `yaml:"banners"`
	HeroSlides []HeroSlide `yaml:"heroSlides"`
	Coupons    []Coupon    `yaml:"coupons"`
}

type User struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
	Role  string `yaml:"role"`
}

type Category struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Image       string `yaml:"image"`
	Icon        string `yaml:"icon"`
	Color       string `yaml:"color"`
}

// Medicine references its category by name and its seller by email.
type Medicine struct {
	Name               string     `yaml:"name"`
	GenericName        string     `yaml:"genericName"`
	Description        string     `yaml:"description"`
	Image              string     `yaml:"image"`
	Category           string     `yaml:"category"`
	Seller             string     `yaml:"seller"`
	Company            string     `yaml:"company"`
	MassUnit           string     `yaml:"massUnit"`
	Price              float64    `yaml:"price"`
	DiscountPercentage float64    `yaml:"discountPercentage"`
	DiscountStartDate  *time.Time `yaml:"discountStartDate"`
	DiscountEndDate    *time.Time `yaml:"discountEndDate"`
	StockQuantity      int        `yaml:"stockQuantity"`
	IsAdvertised       bool       `yaml:"isAdvertised"`
}

type Banner struct {
	Title       string     `yaml:"title"`
	Description string     `yaml:"description"`
	Image       string     `yaml:"image"`
	Link        string     `yaml:"link"`
	Order       int        `yaml:"order"`
	StartDate   *time.Time `yaml:"startDate"`
	EndDate     *time.Time `yaml:"endDate"`
}

type HeroSlide struct {
	Title       string `yaml:"title"`
	Subtitle    string `yaml:"subtitle"`
	Description string `yaml:"description"`
	Image       string `yaml:"image"`
	ButtonText  string `yaml:"buttonText"`
	ButtonLink  string `yaml:"buttonLink"`
	Order       int    `yaml:"order"`
	// FeaturedMedicine is a medicine name.
	FeaturedMedicine string `yaml:"featuredMedicine"`
}

type Coupon struct {
	Code                  string    `yaml:"code"`
	DiscountType          string    `yaml:"discountType"`
	DiscountValue         float64   `yaml:"discountValue"`
	MinimumOrderAmount    float64   `yaml:"minimumOrderAmount"`
	MaximumDiscountAmount *float64  `yaml:"maximumDiscountAmount"`
	UsageLimit            *int      `yaml:"usageLimit"`
	StartDate             time.Time `yaml:"startDate"`
	EndDate               time.Time `yaml:"endDate"`
	CreatedBy             string    `yaml:"createdBy"`
}

// Parse decodes a seed document. Unknown keys are rejected.
func Parse(data []byte) (*Fixture, error) {
	var f Fixture
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parsing seed YAML: %w", err)
	}
	return &f, nil
}

// ReadFile parses the seed document at path.
func ReadFile(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}
	return Parse(data)
}
