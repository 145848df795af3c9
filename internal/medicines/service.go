package medicines

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/pharmacy-backend/pkg/db"
	"github.com/angelmondragon/pharmacy-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/pharmacy-backend/pkg/errors"
	"github.com/angelmondragon/pharmacy-backend/pkg/money"
	"github.com/angelmondragon/pharmacy-backend/pkg/pagination"
	"github.com/angelmondragon/pharmacy-backend/pkg/types"
)

const (
	DefaultListLimit       = 12
	DefaultDiscountedLimit = 12

	msgNotFound = "Medicine not found"
)

type repository interface {
	Create(ctx context.Context, m *models.Medicine) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Medicine, error)
	List(ctx context.Context, f ListFilter) ([]models.Medicine, int64, error)
	DiscountCandidates(ctx context.Context) ([]models.Medicine, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

type categoryChecker interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

type Service interface {
	List(ctx context.Context, f ListFilter) (*MedicineList, error)
	Discounted(ctx context.Context, limit int) ([]MedicineDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*MedicineDTO, error)
	Create(ctx context.Context, actor types.Actor, input CreateInput) (*MedicineDTO, error)
	Update(ctx context.Context, actor types.Actor, id uuid.UUID, input UpdateInput) (*MedicineDTO, error)
	Delete(ctx context.Context, actor types.Actor, id uuid.UUID) error
}

type service struct {
	repo       repository
	categories categoryChecker
	now        func() time.Time
}

func NewService(repo repository, categories categoryChecker) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("medicines repository required")
	}
	if categories == nil {
		return nil, fmt.Errorf("category checker required")
	}
	return &service{repo: repo, categories: categories, now: time.Now}, nil
}

func (s *service) List(ctx context.Context, f ListFilter) (*MedicineList, error) {
	f.Pagination = f.Pagination.Normalize(DefaultListLimit)
	rows, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list medicines")
	}
	now := s.now()
	out := &MedicineList{
		Medicines:  make([]MedicineDTO, 0, len(rows)),
		Pagination: f.Pagination.Result(total),
	}
	for _, m := range rows {
		out.Medicines = append(out.Medicines, FromModel(m, now))
	}
	return out, nil
}

func (s *service) Discounted(ctx context.Context, limit int) ([]MedicineDTO, error) {
	if limit <= 0 {
		limit = DefaultDiscountedLimit
	}
	if limit > pagination.MaxLimit {
		limit = pagination.MaxLimit
	}
	rows, err := s.repo.DiscountCandidates(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list discounted medicines")
	}
	now := s.now()
	out := make([]MedicineDTO, 0, limit)
	for _, m := range rows {
		if len(out) == limit {
			break
		}
		if m.DiscountActive(now) {
			out = append(out, FromModel(m, now))
		}
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*MedicineDTO, error) {
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, db.MapError(err, msgNotFound, "")
	}
	dto := FromModel(*m, s.now())
	return &dto, nil
}

func (s *service) Create(ctx context.Context, actor types.Actor, input CreateInput) (*MedicineDTO, error) {
	if !actor.Role.CanSell() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "Only sellers and admins can add medicines")
	}
	categoryID, err := uuid.Parse(input.Category)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Invalid category")
	}
	if err := s.ensureCategory(ctx, categoryID); err != nil {
		return nil, err
	}
	if err := validateWindow(input.DiscountStartDate, input.DiscountEndDate); err != nil {
		return nil, err
	}

	sellerID := actor.UserID
	if input.Seller != "" && actor.IsAdmin() {
		if sellerID, err = uuid.Parse(input.Seller); err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "Invalid seller")
		}
	}

	m := &models.Medicine{
		Name:               input.Name,
		GenericName:        input.GenericName,
		Description:        input.Description,
		Image:              input.Image,
		CategoryID:         categoryID,
		Company:            input.Company,
		MassUnit:           input.MassUnit,
		Price:              money.FromFloat(input.Price),
		DiscountPercentage: money.FromFloat(input.DiscountPercentage),
		DiscountStartDate:  input.DiscountStartDate,
		DiscountEndDate:    input.DiscountEndDate,
		SellerID:           sellerID,
		InStock:            input.InStock == nil || *input.InStock,
		StockQuantity:      input.StockQuantity,
		IsAdvertised:       input.IsAdvertised,
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, db.MapError(err, "", "Medicine already exists")
	}
	return s.Get(ctx, m.ID)
}

func (s *service) Update(ctx context.Context, actor types.Actor, id uuid.UUID, input UpdateInput) (*MedicineDTO, error) {
	current, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if input.Seller != nil && *input.Seller != current.SellerID.String() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Seller cannot be changed")
	}

	updates := map[string]any{}
	setString := func(col string, v *string) {
		if v != nil {
			updates[col] = *v
		}
	}
	setString("name", input.Name)
	setString("generic_name", input.GenericName)
	setString("description", input.Description)
	setString("image", input.Image)
	setString("company", input.Company)
	setString("mass_unit", input.MassUnit)

	if input.Category != nil {
		categoryID, err := uuid.Parse(*input.Category)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "Invalid category")
		}
		if err := s.ensureCategory(ctx, categoryID); err != nil {
			return nil, err
		}
		updates["category_id"] = categoryID
	}
	if input.Price != nil {
		updates["price"] = money.FromFloat(*input.Price)
	}
	if input.DiscountPercentage != nil {
		updates["discount_percentage"] = money.FromFloat(*input.DiscountPercentage)
	}

	start, end := current.DiscountStartDate, current.DiscountEndDate
	if input.DiscountStartDate != nil {
		start = input.DiscountStartDate
		updates["discount_start_date"] = *start
	}
	if input.DiscountEndDate != nil {
		end = input.DiscountEndDate
		updates["discount_end_date"] = *end
	}
	if err := validateWindow(start, end); err != nil {
		return nil, err
	}

	if input.InStock != nil {
		updates["in_stock"] = *input.InStock
	}
	if input.StockQuantity != nil {
		updates["stock_quantity"] = *input.StockQuantity
	}
	if input.IsAdvertised != nil {
		updates["is_advertised"] = *input.IsAdvertised
	}

	if len(updates) > 0 {
		if err := s.repo.Update(ctx, id, updates); err != nil {
			return nil, db.MapError(err, msgNotFound, "")
		}
	}
	return s.Get(ctx, id)
}

func (s *service) Delete(ctx context.Context, actor types.Actor, id uuid.UUID) error {
	if _, err := s.owned(ctx, actor, id); err != nil {
		return err
	}
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return db.MapError(err, msgNotFound, "")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, msgNotFound)
	}
	return nil
}

func (s *service) owned(ctx context.Context, actor types.Actor, id uuid.UUID) (*models.Medicine, error) {
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, db.MapError(err, msgNotFound, "")
	}
	if !actor.CanManage(m.SellerID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "You can only modify your own medicines")
	}
	return m, nil
}

func (s *service) ensureCategory(ctx context.Context, id uuid.UUID) error {
	ok, err := s.categories.Exists(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup category")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeValidation, "Category not found")
	}
	return nil
}

func validateWindow(start, end *time.Time) error {
	if start != nil && end != nil && start.After(*end) {
		return pkgerrors.New(pkgerrors.CodeValidation, "Discount start date must be before end date")
	}
	return nil
}
