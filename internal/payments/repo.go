package payments

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/pharmacy-backend/pkg/db/models"
	"github.com/angelmondragon/pharmacy-backend/pkg/pagination"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Create inserts a payment. A second row for the same intent fails on the
// payments_payment_intent_id_key unique index.
func (r *Repository) Create(ctx context.Context, p *models.Payment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *Repository) FindByIntentID(ctx context.Context, intentID string) (*models.Payment, error) {
	var p models.Payment
	if err := r.db.WithContext(ctx).First(&p, "payment_intent_id = ?", intentID).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repository) List(ctx context.Context, sellerID *uuid.UUID, params pagination.Params) ([]models.Payment, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Payment{})
	if sellerID != nil {
		q = q.Where("seller_id = ?", *sellerID)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.Payment
	err := q.Order("created_at DESC").Limit(params.Limit).Offset(params.Offset()).Find(&rows).Error
	return rows, total, err
}

// LatestByOrder returns the most recent payment per order.
func (r *Repository) LatestByOrder(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID]models.Payment, error) {
	out := make(map[uuid.UUID]models.Payment, len(orderIDs))
	if len(orderIDs) == 0 {
		return out, nil
	}
	var rows []models.Payment
	if err := r.db.WithContext(ctx).Where("order_id IN ?", orderIDs).Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, p := range rows {
		out[p.OrderID] = p
	}
	return out, nil
}
