package coupons

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/pharmacy-backend/pkg/db"
	"github.com/angelmondragon/pharmacy-backend/pkg/db/models"
	"github.com/angelmondragon/pharmacy-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pharmacy-backend/pkg/errors"
	"github.com/angelmondragon/pharmacy-backend/pkg/money"
)

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 8

	// MaxCodeAttempts bounds generated-code collisions on create.
	MaxCodeAttempts = 5
)

// GenerateCode draws an 8 character code from A-Z0-9. intn must return a
// value in [0, n); nil uses math/rand/v2.
func GenerateCode(intn func(n int) int) string {
	if intn == nil {
		intn = rand.IntN
	}
	var b strings.Builder
	b.Grow(codeLength)
	for i := 0; i < codeLength; i++ {
		b.WriteByte(codeAlphabet[intn(len(codeAlphabet))])
	}
	return b.String()
}

// NormalizeCode trims and upper-cases a user supplied code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// LineItem is the part of an order a restricted coupon is matched against.
type LineItem struct {
	MedicineID uuid.UUID
	CategoryID uuid.UUID
	Amount     decimal.Decimal
}

// Quote is a validated coupon and the discount it grants.
type Quote struct {
	Coupon   models.Coupon
	Base     decimal.Decimal
	Discount decimal.Decimal
}

// CheckUsable applies the redemption rules in order: active and inside the
// inclusive window, below the usage limit, at or above the minimum order.
func CheckUsable(c models.Coupon, orderAmount decimal.Decimal, now time.Time) error {
	if !c.IsActive || now.Before(c.StartDate) || now.After(c.EndDate) {
		return ErrCouponNotFound
	}
	if c.UsageLimit != nil && c.UsedCount >= *c.UsageLimit {
		return ErrUsageLimitExceeded
	}
	if orderAmount.LessThan(c.MinimumOrderAmount) {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, ErrMinimumOrderNotMet,
			fmt.Sprintf("Minimum order amount is $%s", c.MinimumOrderAmount.StringFixed(2)))
	}
	return nil
}

// Discount prices the coupon against base. Percentage discounts honour the
// optional cap; fixed discounts never exceed base.
func Discount(c models.Coupon, base decimal.Decimal) decimal.Decimal {
	if !base.IsPositive() {
		return decimal.Zero
	}
	var amount decimal.Decimal
	switch c.DiscountType {
	case enums.DiscountTypeFixed:
		amount = decimal.Min(c.DiscountValue, base)
	default:
		amount = money.Percent(base, c.DiscountValue)
		if c.MaximumDiscountAmount.Valid && amount.GreaterThan(c.MaximumDiscountAmount.Decimal) {
			amount = c.MaximumDiscountAmount.Decimal
		}
	}
	return money.Round2(amount)
}

// DiscountBase returns the amount a coupon discounts. Unrestricted coupons,
// or calls without items, use the whole order amount.
func DiscountBase(c models.Coupon, orderAmount decimal.Decimal, items []LineItem) (decimal.Decimal, error) {
	if !c.Restricted() || len(items) == 0 {
		return orderAmount, nil
	}
	categories := toSet(c.ApplicableCategories)
	medicines := toSet(c.ApplicableMedicines)

	base := decimal.Zero
	matched := false
	for _, item := range items {
		_, byMedicine := medicines[item.MedicineID.String()]
		_, byCategory := categories[item.CategoryID.String()]
		if byMedicine || byCategory {
			matched = true
			base = base.Add(item.Amount)
		}
	}
	if !matched {
		return decimal.Zero, ErrCouponNotApplicable
	}
	return base, nil
}

// Evaluate runs every rule for one coupon and prices it.
func Evaluate(c models.Coupon, orderAmount decimal.Decimal, items []LineItem, now time.Time) (*Quote, error) {
	if err := CheckUsable(c, orderAmount, now); err != nil {
		return nil, err
	}
	base, err := DiscountBase(c, orderAmount, items)
	if err != nil {
		return nil, err
	}
	return &Quote{Coupon: c, Base: base, Discount: Discount(c, base)}, nil
}

// Store is the persistence needed to redeem a coupon. Repository satisfies it
// and can be bound to a transaction with WithTx.
type Store interface {
	FindByCode(ctx context.Context, code string) (*models.Coupon, error)
	IncrementUsage(ctx context.Context, id uuid.UUID) (bool, error)
}

// Redeem validates code and consumes one use. The increment is conditional on
// the usage limit, so concurrent redemptions cannot overshoot it.
func Redeem(ctx context.Context, store Store, code string, orderAmount decimal.Decimal, items []LineItem, now time.Time) (*Quote, error) {
	quote, err := lookupAndEvaluate(ctx, store, code, orderAmount, items, now)
	if err != nil {
		return nil, err
	}
	ok, err := store.IncrementUsage(ctx, quote.Coupon.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "redeem coupon")
	}
	if !ok {
		return nil, ErrUsageLimitExceeded
	}
	quote.Coupon.UsedCount++
	return quote, nil
}

func lookupAndEvaluate(ctx context.Context, store Store, code string, orderAmount decimal.Decimal, items []LineItem, now time.Time) (*Quote, error) {
	code = NormalizeCode(code)
	if code == "" {
		return nil, ErrCodeRequired
	}
	c, err := store.FindByCode(ctx, code)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, ErrCouponNotFound
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup coupon")
	}
	return Evaluate(*c, orderAmount, items, now)
}

func toSet(values []string) map[string]struct{} {
	out := make(map[string]struct{}, len(values))
	for _, v := range values {
		out[strings.ToLower(strings.TrimSpace(v))] = struct{}{}
	}
	return out
}
