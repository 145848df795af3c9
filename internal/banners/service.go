package banners

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/pharmacy-backend/pkg/db"
	"github.com/angelmondragon/pharmacy-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/pharmacy-backend/pkg/errors"
)

const (
	defaultLink = "#"
	msgNotFound = "Banner not found"
)

type repository interface {
	List(ctx context.Context, active *bool) ([]models.Banner, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Banner, error)
	Create(ctx context.Context, b *models.Banner) error
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

type Service interface {
	// List returns every banner matching the optional active flag.
	List(ctx context.Context, active *bool) ([]BannerDTO, error)
	// Live returns active banners whose window contains now.
	Live(ctx context.Context) ([]BannerDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*BannerDTO, error)
	Create(ctx context.Context, input CreateInput) (*BannerDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*BannerDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ToggleStatus(ctx context.Context, id uuid.UUID) (*BannerDTO, error)
	UpdatePriority(ctx context.Context, id uuid.UUID, order int) (*BannerDTO, error)
}

type service struct {
	repo repository
	now  func() time.Time
}

func NewService(repo repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("banners repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) List(ctx context.Context, active *bool) ([]BannerDTO, error) {
	rows, err := s.repo.List(ctx, active)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list banners")
	}
	return fromModels(rows), nil
}

func (s *service) Live(ctx context.Context) ([]BannerDTO, error) {
	active := true
	rows, err := s.repo.List(ctx, &active)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list banners")
	}
	now := s.now()
	out := rows[:0]
	for _, b := range rows {
		if b.Live(now) {
			out = append(out, b)
		}
	}
	return fromModels(out), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*BannerDTO, error) {
	b, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := FromModel(*b)
	return &dto, nil
}

func (s *service) find(ctx context.Context, id uuid.UUID) (*models.Banner, error) {
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, db.MapError(err, msgNotFound, "")
	}
	return b, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*BannerDTO, error) {
	if err := validateWindow(input.StartDate, input.EndDate); err != nil {
		return nil, err
	}
	link := input.Link
	if link == "" {
		link = defaultLink
	}
	b := &models.Banner{
		Title:       input.Title,
		Description: input.Description,
		Image:       input.Image,
		Link:        link,
		Active:      input.Active == nil || *input.Active,
		Order:       input.Order,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, db.MapError(err, "", "")
	}
	dto := FromModel(*b)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*BannerDTO, error) {
	current, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	start, end := current.StartDate, current.EndDate
	updates := map[string]any{}
	if input.Title != nil {
		updates["title"] = *input.Title
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Image != nil {
		updates["image"] = *input.Image
	}
	if input.Link != nil {
		updates["link"] = *input.Link
	}
	if input.Active != nil {
		updates["active"] = *input.Active
	}
	if input.Order != nil {
		updates["display_order"] = *input.Order
	}
	if input.StartDate != nil {
		start = input.StartDate
		updates["start_date"] = *start
	}
	if input.EndDate != nil {
		end = input.EndDate
		updates["end_date"] = *end
	}
	if err := validateWindow(start, end); err != nil {
		return nil, err
	}
	return s.apply(ctx, id, updates)
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

func (s *service) ToggleStatus(ctx context.Context, id uuid.UUID) (*BannerDTO, error) {
	current, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, id, map[string]any{"active": !current.Active})
}

func (s *service) UpdatePriority(ctx context.Context, id uuid.UUID, order int) (*BannerDTO, error) {
	if order < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Order must be a non-negative number")
	}
	return s.apply(ctx, id, map[string]any{"display_order": order})
}

func (s *service) apply(ctx context.Context, id uuid.UUID, updates map[string]any) (*BannerDTO, error) {
	if len(updates) > 0 {
		ok, err := s.repo.Update(ctx, id, updates)
		if err != nil {
			return nil, db.MapError(err, msgNotFound, "")
		}
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, msgNotFound)
		}
	}
	return s.Get(ctx, id)
}

func validateWindow(start, end *time.Time) error {
	if start != nil && end != nil && !start.Before(*end) {
		return pkgerrors.New(pkgerrors.CodeValidation, "End date must be after start date")
	}
	return nil
}
