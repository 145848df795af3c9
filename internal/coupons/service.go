package coupons

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/pharmacy-backend/pkg/db"
	"github.com/angelmondragon/pharmacy-backend/pkg/db/models"
	"github.com/angelmondragon/pharmacy-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pharmacy-backend/pkg/errors"
	"github.com/angelmondragon/pharmacy-backend/pkg/money"
	"github.com/angelmondragon/pharmacy-backend/pkg/pagination"
)

const (
	msgNotFound  = "Coupon not found"
	msgDuplicate = "Coupon code already exists"
)

type repository interface {
	Store
	Create(ctx context.Context, c *models.Coupon) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Coupon, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	List(ctx context.Context, params pagination.Params) ([]models.Coupon, int64, error)
	Update(ctx context.Context, c *models.Coupon, columns []string) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

type medicineLookup interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Medicine, error)
}

type Service interface {
	Create(ctx context.Context, creatorID uuid.UUID, input CreateInput) (*CouponDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*CouponDTO, error)
	List(ctx context.Context, params pagination.Params) (*CouponList, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*CouponDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Validate(ctx context.Context, input ValidateInput) (*ValidateResult, error)
	Apply(ctx context.Context, input ValidateInput) (*ValidateResult, error)
}

type service struct {
	repo      repository
	medicines medicineLookup
	now       func() time.Time
	intn      func(n int) int
}

func NewService(repo repository, medicines medicineLookup) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("coupons repository required")
	}
	if medicines == nil {
		return nil, fmt.Errorf("medicine lookup required")
	}
	return &service{repo: repo, medicines: medicines, now: time.Now}, nil
}

func (s *service) Create(ctx context.Context, creatorID uuid.UUID, input CreateInput) (*CouponDTO, error) {
	if input.StartDate == nil || input.EndDate == nil || !input.StartDate.Before(*input.EndDate) {
		return nil, ErrInvalidDateRange
	}
	discountType := enums.DiscountTypePercentage
	if input.DiscountType != "" {
		parsed, err := enums.ParseDiscountType(input.DiscountType)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "Invalid discount type")
		}
		discountType = parsed
	}

	c := &models.Coupon{
		DiscountType:         discountType,
		DiscountValue:        money.FromFloat(input.DiscountValue),
		MinimumOrderAmount:   money.FromFloat(input.MinimumOrderAmount),
		UsageLimit:           input.UsageLimit,
		UsedCount:            0,
		StartDate:            input.StartDate.UTC(),
		EndDate:              input.EndDate.UTC(),
		IsActive:             input.IsActive == nil || *input.IsActive,
		ApplicableCategories: input.ApplicableCategories,
		ApplicableMedicines:  input.ApplicableMedicines,
		CreatedBy:            creatorID,
	}
	if input.MaximumDiscountAmount != nil {
		c.MaximumDiscountAmount = decimal.NewNullDecimal(money.FromFloat(*input.MaximumDiscountAmount))
	}

	if code := NormalizeCode(input.Code); code != "" {
		c.Code = code
		if err := s.repo.Create(ctx, c); err != nil {
			return nil, db.MapError(err, "", msgDuplicate)
		}
		dto := FromModel(*c)
		return &dto, nil
	}

	for attempt := 0; attempt < MaxCodeAttempts; attempt++ {
		candidate := GenerateCode(s.intn)
		taken, err := s.repo.ExistsByCode(ctx, candidate)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check coupon code")
		}
		if taken {
			continue
		}
		c.ID = uuid.Nil
		c.Code = candidate
		err = s.repo.Create(ctx, c)
		if err == nil {
			dto := FromModel(*c)
			return &dto, nil
		}
		if !db.IsUniqueViolation(err, "") {
			return nil, db.MapError(err, "", msgDuplicate)
		}
	}
	return nil, ErrCodeGenerationExhausted
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*CouponDTO, error) {
	c, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := FromModel(*c)
	return &dto, nil
}

func (s *service) find(ctx context.Context, id uuid.UUID) (*models.Coupon, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, db.MapError(err, msgNotFound, "")
	}
	return c, nil
}

func (s *service) List(ctx context.Context, params pagination.Params) (*CouponList, error) {
	params = params.Normalize(pagination.DefaultLimit)
	rows, total, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list coupons")
	}
	out := &CouponList{Coupons: make([]CouponDTO, 0, len(rows)), Pagination: params.Result(total)}
	for _, c := range rows {
		out.Coupons = append(out.Coupons, FromModel(c))
	}
	return out, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*CouponDTO, error) {
	c, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Code != nil && NormalizeCode(*input.Code) != c.Code {
		return nil, ErrCodeImmutable
	}

	columns := []string{}
	if input.StartDate != nil || input.EndDate != nil {
		if input.StartDate != nil {
			c.StartDate = input.StartDate.UTC()
			columns = append(columns, "start_date")
		}
		if input.EndDate != nil {
			c.EndDate = input.EndDate.UTC()
			columns = append(columns, "end_date")
		}
		if !c.StartDate.Before(c.EndDate) {
			return nil, ErrInvalidDateRange
		}
	}
	if input.DiscountType != nil {
		parsed, err := enums.ParseDiscountType(*input.DiscountType)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "Invalid discount type")
		}
		c.DiscountType = parsed
		columns = append(columns, "discount_type")
	}
	if input.DiscountValue != nil {
		c.DiscountValue = money.FromFloat(*input.DiscountValue)
		columns = append(columns, "discount_value")
	}
	if input.MinimumOrderAmount != nil {
		c.MinimumOrderAmount = money.FromFloat(*input.MinimumOrderAmount)
		columns = append(columns, "minimum_order_amount")
	}
	if (input.ClearMaximumDiscountAmount && input.MaximumDiscountAmount != nil) ||
		(input.ClearUsageLimit && input.UsageLimit != nil) {
		return nil, ErrConflictingClear
	}
	switch {
	case input.ClearMaximumDiscountAmount:
		c.MaximumDiscountAmount = decimal.NullDecimal{}
		columns = append(columns, "maximum_discount_amount")
	case input.MaximumDiscountAmount != nil:
		c.MaximumDiscountAmount = decimal.NewNullDecimal(money.FromFloat(*input.MaximumDiscountAmount))
		columns = append(columns, "maximum_discount_amount")
	}
	switch {
	case input.ClearUsageLimit:
		c.UsageLimit = nil
		columns = append(columns, "usage_limit")
	case input.UsageLimit != nil:
		c.UsageLimit = input.UsageLimit
		columns = append(columns, "usage_limit")
	}
	if input.IsActive != nil {
		c.IsActive = *input.IsActive
		columns = append(columns, "is_active")
	}
	if input.ApplicableCategories != nil {
		c.ApplicableCategories = input.ApplicableCategories
		columns = append(columns, "applicable_categories")
	}
	if input.ApplicableMedicines != nil {
		c.ApplicableMedicines = input.ApplicableMedicines
		columns = append(columns, "applicable_medicines")
	}

	if len(columns) > 0 {
		columns = append(columns, "updated_at")
		if err := s.repo.Update(ctx, c, columns); err != nil {
			return nil, db.MapError(err, msgNotFound, "")
		}
	}
	return s.Get(ctx, id)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return db.MapError(err, msgNotFound, "")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, msgNotFound)
	}
	return nil
}

func (s *service) Validate(ctx context.Context, input ValidateInput) (*ValidateResult, error) {
	items, err := s.lineItems(ctx, input.Items)
	if err != nil {
		return nil, err
	}
	quote, err := lookupAndEvaluate(ctx, s.repo, input.Code, orderAmount(input.OrderAmount), items, s.now())
	if err != nil {
		return nil, err
	}
	return resultFor(quote), nil
}

func (s *service) Apply(ctx context.Context, input ValidateInput) (*ValidateResult, error) {
	items, err := s.lineItems(ctx, input.Items)
	if err != nil {
		return nil, err
	}
	quote, err := Redeem(ctx, s.repo, input.Code, orderAmount(input.OrderAmount), items, s.now())
	if err != nil {
		return nil, err
	}
	return resultFor(quote), nil
}

// orderAmount keeps every submitted digit so an amount just under the minimum
// is not rounded up to it.
func orderAmount(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

// lineItems resolves categories for the submitted lines. A zero price falls
// back to the medicine's current effective price.
func (s *service) lineItems(ctx context.Context, in []ItemInput) ([]LineItem, error) {
	if len(in) == 0 {
		return nil, nil
	}
	ids := make([]uuid.UUID, 0, len(in))
	for _, item := range in {
		id, err := uuid.Parse(item.MedicineID)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "Invalid medicine id")
		}
		ids = append(ids, id)
	}
	found, err := s.medicines.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup medicines")
	}
	now := s.now()
	out := make([]LineItem, 0, len(in))
	for i, item := range in {
		m, ok := found[ids[i]]
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Medicine not found")
		}
		price := money.FromFloat(item.Price)
		if price.IsZero() {
			price = m.EffectivePrice(now)
		}
		out = append(out, LineItem{
			MedicineID: m.ID,
			CategoryID: m.CategoryID,
			Amount:     price.Mul(decimal.NewFromInt(int64(item.Quantity))),
		})
	}
	return out, nil
}

func resultFor(q *Quote) *ValidateResult {
	return &ValidateResult{Coupon: FromModel(q.Coupon), DiscountAmount: money.Float(q.Discount)}
}
