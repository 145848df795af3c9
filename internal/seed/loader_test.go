package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/pharmacy-backend/pkg/db/dbtest"
	"github.com/angelmondragon/pharmacy-backend/pkg/db/models"
	"github.com/angelmondragon/pharmacy-backend/pkg/enums"
)

const sample = `
users:
  - name: Admin
    email: Admin@Example.com
    role: admin
  - email: seller@example.com
    role: seller
categories:
  - name: Pain Relief
    description: Analgesics
    image: pain.png
medicines:
  - name: Ibuprofen 200mg
    genericName: Ibuprofen
    description: Tablets
    image: ibu.png
    category: pain relief
    seller: seller@example.com
    company: Acme
    massUnit: mg
    price: 4.99
    discountPercentage: 10
    stockQuantity: 100
banners:
  - title: Spring Sale
    image: sale.png
heroSlides:
  - title: Feel Better
    subtitle: Fast
    description: Relief
    image: hero.png
    buttonText: Shop
    featuredMedicine: Ibuprofen 200mg
coupons:
  - code: welcome10
    discountType: percentage
    discountValue: 10
    maximumDiscountAmount: 25
    usageLimit: 100
    startDate: 2026-01-01T00:00:00Z
    endDate: 2026-12-31T23:59:59Z
    createdBy: admin@example.com
`

func TestLoadCreatesThenSkips(t *testing.T) {
	client := dbtest.Client(t)
	loader, err := NewLoader(client, nil)
	require.NoError(t, err)
	fixture, err := Parse([]byte(sample))
	require.NoError(t, err)
	ctx := context.Background()

	first, err := loader.Load(ctx, fixture)
	require.NoError(t, err)
	assert.Equal(t, Summary{Users: 2, Categories: 1, Medicines: 1, Banners: 1, HeroSlides: 1, Coupons: 1}, first)

	second, err := loader.Load(ctx, fixture)
	require.NoError(t, err)
	assert.Equal(t, Summary{}, second)

	var seller models.User
	require.NoError(t, client.DB().Where("email = ?", "seller@example.com").First(&seller).Error)
	assert.Equal(t, "seller", seller.Name)
	assert.Equal(t, enums.UserRoleSeller, seller.Role)

	var med models.Medicine
	require.NoError(t, client.DB().First(&med).Error)
	assert.Equal(t, seller.ID, med.SellerID)
	assert.True(t, med.InStock)
	assert.Equal(t, "4.99", med.Price.StringFixed(2))

	var coupon models.Coupon
	require.NoError(t, client.DB().First(&coupon).Error)
	assert.Equal(t, "WELCOME10", coupon.Code)
	assert.True(t, coupon.MaximumDiscountAmount.Valid)

	var slide models.HeroSlide
	require.NoError(t, client.DB().First(&slide).Error)
	require.NotNil(t, slide.FeaturedMedicineID)
	assert.Equal(t, med.ID, *slide.FeaturedMedicineID)
}

func TestLoadRollsBackOnUnknownReference(t *testing.T) {
	client := dbtest.Client(t)
	loader, err := NewLoader(client, nil)
	require.NoError(t, err)
	fixture := &Fixture{
		Users:     []User{{Email: "a@example.com"}},
		Medicines: []Medicine{{Name: "Ghost", Category: "missing", Seller: "a@example.com"}},
	}

	_, err = loader.Load(context.Background(), fixture)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown category")

	var n int64
	require.NoError(t, client.DB().Model(&models.User{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte("products: []\n"))
	require.Error(t, err)
}
