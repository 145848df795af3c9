package categories

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/pharmacy-backend/pkg/db"
	"github.com/angelmondragon/pharmacy-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/pharmacy-backend/pkg/errors"
)

const (
	defaultIcon  = "Pill"
	defaultColor = "cyan"

	msgNotAvailable = "Category not available"
	msgDuplicate    = "Category with this name already exists"
)

type repository interface {
	Create(ctx context.Context, c *models.Category) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	FindByName(ctx context.Context, name string) (*models.Category, error)
	ListActive(ctx context.Context) ([]models.Category, error)
	MedicineCounts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]int64, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

type Service interface {
	List(ctx context.Context) ([]CategoryDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*CategoryDTO, error)
	GetByName(ctx context.Context, name string) (*CategoryDTO, error)
	Create(ctx context.Context, input CreateInput) (*CategoryDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*CategoryDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo repository
}

func NewService(repo repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("categories repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context) ([]CategoryDTO, error) {
	rows, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list categories")
	}
	ids := make([]uuid.UUID, 0, len(rows))
	for _, c := range rows {
		ids = append(ids, c.ID)
	}
	counts, err := s.repo.MedicineCounts(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count medicines")
	}
	out := make([]CategoryDTO, 0, len(rows))
	for _, c := range rows {
		out = append(out, FromModel(c, counts[c.ID]))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*CategoryDTO, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, db.MapError(err, msgNotAvailable, "")
	}
	if !c.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, msgNotAvailable)
	}
	return s.withCount(ctx, *c)
}

func (s *service) GetByName(ctx context.Context, name string) (*CategoryDTO, error) {
	c, err := s.repo.FindByName(ctx, name)
	if err != nil {
		return nil, db.MapError(err, "Category not found", "")
	}
	return s.withCount(ctx, *c)
}

func (s *service) Create(ctx context.Context, input CreateInput) (*CategoryDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Category name is required")
	}
	c := &models.Category{
		Name:        name,
		Description: input.Description,
		Image:       input.Image,
		Icon:        orDefault(input.Icon, defaultIcon),
		Color:       orDefault(input.Color, defaultColor),
		IsActive:    input.IsActive == nil || *input.IsActive,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, db.MapError(err, "", msgDuplicate)
	}
	dto := FromModel(*c, 0)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*CategoryDTO, error) {
	updates := input.updates()
	if len(updates) > 0 {
		ok, err := s.repo.Update(ctx, id, updates)
		if err != nil {
			return nil, db.MapError(err, "", msgDuplicate)
		}
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Category not found")
		}
	}
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, db.MapError(err, "Category not found", "")
	}
	return s.withCount(ctx, *c)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return db.MapError(err, "", "")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "Category not found")
	}
	return nil
}

func (s *service) withCount(ctx context.Context, c models.Category) (*CategoryDTO, error) {
	counts, err := s.repo.MedicineCounts(ctx, []uuid.UUID{c.ID})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count medicines")
	}
	dto := FromModel(c, counts[c.ID])
	return &dto, nil
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
