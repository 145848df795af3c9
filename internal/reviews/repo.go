package reviews

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/pharmacy-backend/pkg/db/models"
	"github.com/angelmondragon/pharmacy-backend/pkg/enums"
	"github.com/angelmondragon/pharmacy-backend/pkg/pagination"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, review *models.Review) error {
	return r.db.WithContext(ctx).Omit("User", "Medicine").Create(review).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	var review models.Review
	err := r.db.WithContext(ctx).Preload("User").Preload("Medicine").First(&review, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *Repository) ExistsForMedicine(ctx context.Context, userID, medicineID uuid.UUID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Review{}).
		Where("user_id = ? AND medicine_id = ?", userID, medicineID).
		Count(&n).Error
	return n > 0, err
}

// HasDeliveredOrder reports whether the user received an order, optionally one
// containing medicineID.
func (r *Repository) HasDeliveredOrder(ctx context.Context, userID uuid.UUID, medicineID *uuid.UUID) (bool, error) {
	q := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("orders.user_id = ? AND orders.status = ?", userID, enums.OrderStatusDelivered)
	if medicineID != nil {
		q = q.Joins("JOIN order_items ON order_items.order_id = orders.id").
			Where("order_items.medicine_id = ?", *medicineID)
	}
	var n int64
	err := q.Count(&n).Error
	return n > 0, err
}

func (r *Repository) Top(ctx context.Context, limit int) ([]models.Review, error) {
	var rows []models.Review
	err := r.db.WithContext(ctx).Preload("User").Preload("Medicine").
		Order("rating DESC").Order("created_at DESC").
		Limit(limit).Find(&rows).Error
	return rows, err
}

// Summary returns the review count and mean rating across every review.
func (r *Repository) Summary(ctx context.Context) (int64, float64, error) {
	var row struct {
		Total   int64
		Average *float64
	}
	err := r.db.WithContext(ctx).Model(&models.Review{}).
		Select("COUNT(*) AS total, AVG(rating) AS average").
		Scan(&row).Error
	if err != nil || row.Average == nil {
		return row.Total, 0, err
	}
	return row.Total, *row.Average, nil
}

func (r *Repository) ListForMedicine(ctx context.Context, medicineID uuid.UUID, params pagination.Params) ([]models.Review, int64, error) {
	var (
		rows  []models.Review
		total int64
	)
	base := r.db.WithContext(ctx).Model(&models.Review{}).Where("medicine_id = ?", medicineID)
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := r.db.WithContext(ctx).Preload("User").
		Where("medicine_id = ?", medicineID).
		Order("created_at DESC").
		Offset(params.Offset()).Limit(params.Limit).
		Find(&rows).Error
	return rows, total, err
}

// RatingsForMedicine returns every rating left for a medicine.
func (r *Repository) RatingsForMedicine(ctx context.Context, medicineID uuid.UUID) ([]int, error) {
	var ratings []int
	err := r.db.WithContext(ctx).Model(&models.Review{}).
		Where("medicine_id = ?", medicineID).
		Pluck("rating", &ratings).Error
	return ratings, err
}
