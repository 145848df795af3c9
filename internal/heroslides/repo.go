package heroslides

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/pharmacy-backend/pkg/db/models"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) List(ctx context.Context, active *bool) ([]models.HeroSlide, error) {
	q := r.db.WithContext(ctx).Preload("FeaturedMedicine").
		Order("display_order ASC").Order("created_at DESC")
	if active != nil {
		q = q.Where("active = ?", *active)
	}
	var rows []models.HeroSlide
	return rows, q.Find(&rows).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.HeroSlide, error) {
	var h models.HeroSlide
	if err := r.db.WithContext(ctx).Preload("FeaturedMedicine").First(&h, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *Repository) Create(ctx context.Context, h *models.HeroSlide) error {
	return r.db.WithContext(ctx).Select("*").Omit("FeaturedMedicine").Create(h).Error
}

func (r *Repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.HeroSlide{}).Where("id = ?", id).Updates(updates)
	return res.RowsAffected > 0, res.Error
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&models.HeroSlide{}, "id = ?", id)
	return res.RowsAffected > 0, res.Error
}
