package heroslides

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
	defaultButtonLink      = "#"
	defaultBackground      = "from-cyan-500 to-blue-500"
	defaultLightBackground = "from-cyan-50 to-blue-50"
	defaultTextColor       = "text-white"
	defaultLightTextColor  = "text-gray-900"

	msgNotFound = "Hero slide not found"
)

type repository interface {
	List(ctx context.Context, active *bool) ([]models.HeroSlide, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.HeroSlide, error)
	Create(ctx context.Context, h *models.HeroSlide) error
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

type medicineChecker interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

type Service interface {
	List(ctx context.Context, active *bool) ([]SlideDTO, error)
	Live(ctx context.Context) ([]SlideDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*SlideDTO, error)
	Create(ctx context.Context, input CreateInput) (*SlideDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*SlideDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ToggleStatus(ctx context.Context, id uuid.UUID) (*SlideDTO, error)
}

type service struct {
	repo      repository
	medicines medicineChecker
	now       func() time.Time
}

func NewService(repo repository, medicines medicineChecker) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("hero slides repository required")
	}
	if medicines == nil {
		return nil, fmt.Errorf("medicine checker required")
	}
	return &service{repo: repo, medicines: medicines, now: time.Now}, nil
}

func (s *service) List(ctx context.Context, active *bool) ([]SlideDTO, error) {
	rows, err := s.repo.List(ctx, active)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list hero slides")
	}
	out := make([]SlideDTO, 0, len(rows))
	for _, h := range rows {
		out = append(out, FromModel(h))
	}
	return out, nil
}

func (s *service) Live(ctx context.Context) ([]SlideDTO, error) {
	active := true
	rows, err := s.repo.List(ctx, &active)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list hero slides")
	}
	now := s.now()
	out := make([]SlideDTO, 0, len(rows))
	for _, h := range rows {
		if h.Live(now) {
			out = append(out, FromModel(h))
		}
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*SlideDTO, error) {
	h, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := FromModel(*h)
	return &dto, nil
}

func (s *service) find(ctx context.Context, id uuid.UUID) (*models.HeroSlide, error) {
	h, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, db.MapError(err, msgNotFound, "")
	}
	return h, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*SlideDTO, error) {
	if err := validateWindow(input.StartDate, input.EndDate); err != nil {
		return nil, err
	}
	featured, err := s.featured(ctx, input.FeaturedMedicine)
	if err != nil {
		return nil, err
	}
	h := &models.HeroSlide{
		Title:              input.Title,
		Subtitle:           input.Subtitle,
		Description:        input.Description,
		Image:              input.Image,
		ButtonText:         input.ButtonText,
		ButtonLink:         orDefault(input.ButtonLink, defaultButtonLink),
		Active:             input.Active == nil || *input.Active,
		BackgroundColor:    orDefault(input.BackgroundColor, defaultBackground),
		LightBackground:    orDefault(input.LightBackground, defaultLightBackground),
		TextColor:          orDefault(input.TextColor, defaultTextColor),
		LightTextColor:     orDefault(input.LightTextColor, defaultLightTextColor),
		FeaturedMedicineID: featured,
		Order:              input.Order,
		StartDate:          input.StartDate,
		EndDate:            input.EndDate,
	}
	if err := s.repo.Create(ctx, h); err != nil {
		return nil, db.MapError(err, "", "")
	}
	return s.Get(ctx, h.ID)
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*SlideDTO, error) {
	current, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	updates := map[string]any{}
	strs := map[string]*string{
		"title":            input.Title,
		"subtitle":         input.Subtitle,
		"description":      input.Description,
		"image":            input.Image,
		"button_text":      input.ButtonText,
		"button_link":      input.ButtonLink,
		"background_color": input.BackgroundColor,
		"light_background": input.LightBackground,
		"text_color":       input.TextColor,
		"light_text_color": input.LightTextColor,
	}
	for col, v := range strs {
		if v != nil {
			updates[col] = *v
		}
	}
	if input.Active != nil {
		updates["active"] = *input.Active
	}
	if input.Order != nil {
		updates["display_order"] = *input.Order
	}
	if input.FeaturedMedicine != nil {
		featured, err := s.featured(ctx, *input.FeaturedMedicine)
		if err != nil {
			return nil, err
		}
		updates["featured_medicine_id"] = featured
	}

	start, end := current.StartDate, current.EndDate
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

func (s *service) ToggleStatus(ctx context.Context, id uuid.UUID) (*SlideDTO, error) {
	current, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, id, map[string]any{"active": !current.Active})
}

func (s *service) apply(ctx context.Context, id uuid.UUID, updates map[string]any) (*SlideDTO, error) {
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

// featured resolves an optional medicine reference. An empty string clears it.
func (s *service) featured(ctx context.Context, raw string) (*uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Invalid featured medicine")
	}
	ok, err := s.medicines.Exists(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup medicine")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Featured medicine not found")
	}
	return &id, nil
}

func validateWindow(start, end *time.Time) error {
	if start != nil && end != nil && !start.Before(*end) {
		return pkgerrors.New(pkgerrors.CodeValidation, "End date must be after start date")
	}
	return nil
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
