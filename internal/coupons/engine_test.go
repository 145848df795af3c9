package coupons

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/pharmacy-backend/pkg/db/models"
	"github.com/angelmondragon/pharmacy-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pharmacy-backend/pkg/errors"
)

var (
	windowStart = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	windowEnd   = time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	inWindow    = time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func intPtr(v int) *int { return &v }

func save20() models.Coupon {
	return models.Coupon{
		ID:                    uuid.New(),
		Code:                  "SAVE20",
		DiscountType:          enums.DiscountTypePercentage,
		DiscountValue:         dec("20"),
		MinimumOrderAmount:    dec("50"),
		MaximumDiscountAmount: decimal.NewNullDecimal(dec("25")),
		StartDate:             windowStart,
		EndDate:               windowEnd,
		IsActive:              true,
	}
}

func TestGenerateCode(t *testing.T) {
	code := GenerateCode(nil)
	require.Len(t, code, 8)
	for _, r := range code {
		assert.Contains(t, codeAlphabet, string(r))
	}

	assert.Equal(t, "AAAAAAAA", GenerateCode(func(int) int { return 0 }))
	assert.Equal(t, "99999999", GenerateCode(func(n int) int { return n - 1 }))
}

func TestDiscountPercentageIsCapped(t *testing.T) {
	c := save20()
	assert.True(t, dec("25").Equal(Discount(c, dec("200"))))
	assert.True(t, dec("20").Equal(Discount(c, dec("100"))))

	c.MaximumDiscountAmount = decimal.NullDecimal{}
	assert.True(t, dec("40").Equal(Discount(c, dec("200"))))
}

func TestDiscountRoundsToCents(t *testing.T) {
	c := save20()
	c.MaximumDiscountAmount = decimal.NullDecimal{}
	c.DiscountValue = dec("15")
	assert.Equal(t, "5.00", Discount(c, dec("33.33")).StringFixed(2))
	assert.Equal(t, "1.85", Discount(c, dec("12.33")).StringFixed(2))
}

func TestDiscountFixedIsClampedToBase(t *testing.T) {
	c := save20()
	c.DiscountType = enums.DiscountTypeFixed
	c.DiscountValue = dec("30")
	assert.True(t, dec("30").Equal(Discount(c, dec("100"))))
	assert.True(t, dec("12.5").Equal(Discount(c, dec("12.50"))))
	assert.True(t, Discount(c, decimal.Zero).IsZero())
}

func TestCheckUsable(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*models.Coupon)
		amount string
		now    time.Time
		want   error
	}{
		{name: "valid", amount: "200", now: inWindow},
		{name: "minimum inclusive", amount: "50", now: inWindow},
		{name: "window start inclusive", amount: "60", now: windowStart},
		{name: "window end inclusive", amount: "60", now: windowEnd},
		{name: "before window", amount: "60", now: windowStart.Add(-time.Second), want: ErrCouponNotFound},
		{name: "after window", amount: "60", now: windowEnd.Add(time.Second), want: ErrCouponNotFound},
		{name: "inactive", amount: "60", now: inWindow, mutate: func(c *models.Coupon) { c.IsActive = false }, want: ErrCouponNotFound},
		{name: "below minimum", amount: "49.99", now: inWindow, want: ErrMinimumOrderNotMet},
		{
			name: "usage exhausted", amount: "60", now: inWindow, want: ErrUsageLimitExceeded,
			mutate: func(c *models.Coupon) { c.UsageLimit = intPtr(1); c.UsedCount = 1 },
		},
		{
			name: "usage exhausted outside window still not found", amount: "60", now: windowEnd.AddDate(0, 1, 0), want: ErrCouponNotFound,
			mutate: func(c *models.Coupon) { c.UsageLimit = intPtr(1); c.UsedCount = 1 },
		},
		{
			name: "usage remaining", amount: "60", now: inWindow,
			mutate: func(c *models.Coupon) { c.UsageLimit = intPtr(2); c.UsedCount = 1 },
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := save20()
			if tc.mutate != nil {
				tc.mutate(&c)
			}
			err := CheckUsable(c, dec(tc.amount), tc.now)
			if tc.want == nil {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
		})
	}
}

func TestMinimumOrderMessageNamesAmount(t *testing.T) {
	err := CheckUsable(save20(), dec("10"), inWindow)
	require.Error(t, err)
	assert.Equal(t, "Minimum order amount is $50.00", pkgerrors.As(err).Message())
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func TestEvaluateSave20Scenario(t *testing.T) {
	quote, err := Evaluate(save20(), dec("200"), nil, inWindow)
	require.NoError(t, err)
	assert.Equal(t, "25.00", quote.Discount.StringFixed(2))
}

func TestDiscountBaseForRestrictedCoupons(t *testing.T) {
	catA, catB := uuid.New(), uuid.New()
	medX := uuid.New()
	c := save20()
	c.MaximumDiscountAmount = decimal.NullDecimal{}
	c.ApplicableCategories = []string{catA.String()}
	c.ApplicableMedicines = []string{medX.String()}

	items := []LineItem{
		{MedicineID: uuid.New(), CategoryID: catA, Amount: dec("40")},
		{MedicineID: medX, CategoryID: catB, Amount: dec("10")},
		{MedicineID: uuid.New(), CategoryID: catB, Amount: dec("100")},
	}
	base, err := DiscountBase(c, dec("150"), items)
	require.NoError(t, err)
	assert.Equal(t, "50", base.String())

	_, err = DiscountBase(c, dec("100"), items[2:])
	assert.ErrorIs(t, err, ErrCouponNotApplicable)

	base, err = DiscountBase(c, dec("100"), nil)
	require.NoError(t, err)
	assert.Equal(t, "100", base.String())
}

type stubStore struct {
	findFn      func(ctx context.Context, code string) (*models.Coupon, error)
	incrementFn func(ctx context.Context, id uuid.UUID) (bool, error)
}

func (s stubStore) FindByCode(ctx context.Context, code string) (*models.Coupon, error) {
	return s.findFn(ctx, code)
}

func (s stubStore) IncrementUsage(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.incrementFn(ctx, id)
}

func TestRedeemNormalizesCodeAndIncrements(t *testing.T) {
	c := save20()
	var lookedUp string
	incremented := false
	store := stubStore{
		findFn: func(_ context.Context, code string) (*models.Coupon, error) {
			lookedUp = code
			return &c, nil
		},
		incrementFn: func(_ context.Context, id uuid.UUID) (bool, error) {
			incremented = id == c.ID
			return true, nil
		},
	}

	quote, err := Redeem(context.Background(), store, " save20 ", dec("100"), nil, inWindow)
	require.NoError(t, err)
	assert.Equal(t, "SAVE20", lookedUp)
	assert.True(t, incremented)
	assert.Equal(t, 1, quote.Coupon.UsedCount)
}

func TestRedeemLosesRaceOnLimit(t *testing.T) {
	c := save20()
	store := stubStore{
		findFn:      func(context.Context, string) (*models.Coupon, error) { return &c, nil },
		incrementFn: func(context.Context, uuid.UUID) (bool, error) { return false, nil },
	}
	_, err := Redeem(context.Background(), store, "SAVE20", dec("100"), nil, inWindow)
	assert.ErrorIs(t, err, ErrUsageLimitExceeded)
}

func TestRedeemUnknownCode(t *testing.T) {
	store := stubStore{
		findFn: func(context.Context, string) (*models.Coupon, error) { return nil, gorm.ErrRecordNotFound },
	}
	_, err := Redeem(context.Background(), store, "NOPE", dec("100"), nil, inWindow)
	assert.ErrorIs(t, err, ErrCouponNotFound)

	_, err = Redeem(context.Background(), store, "  ", dec("100"), nil, inWindow)
	assert.ErrorIs(t, err, ErrCodeRequired)
}
