package reports

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/pharmacy-backend/pkg/db/models"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// OrdersInRange loads orders created inside r. detailed resolves buyers,
// items, medicines, categories and sellers.
func (r *Repository) OrdersInRange(ctx context.Context, rng Range, detailed bool) ([]models.Order, error) {
	q := r.db.WithContext(ctx).
		Where("created_at >= ? AND created_at <= ?", rng.Start, rng.End).
		Order("created_at ASC")
	if detailed {
		q = q.Preload("User").
			Preload("Items.Medicine.Category").
			Preload("Items.Medicine.Seller")
	}
	var rows []models.Order
	err := q.Find(&rows).Error
	return rows, err
}
