package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/pharmacy-backend/pkg/db/models"
	"github.com/angelmondragon/pharmacy-backend/pkg/enums"
	"github.com/angelmondragon/pharmacy-backend/pkg/pagination"
)

type Repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func (r *Repository) withRefs(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("User").Preload("Items.Medicine")
}

// Create inserts the order and its items.
func (r *Repository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Omit("User").Create(order).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.withRefs(ctx).First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Order, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Order{}).Where("user_id = ?", userID)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.Order
	err := r.withRefs(ctx).Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(params.Limit).Offset(params.Offset()).
		Find(&rows).Error
	return rows, total, err
}

func (r *Repository) List(ctx context.Context, f ListFilter) ([]models.Order, int64, error) {
	scope := func(q *gorm.DB) *gorm.DB {
		if f.Status != nil {
			q = q.Where("status = ?", *f.Status)
		}
		if f.PaymentStatus != nil {
			q = q.Where("payment_status = ?", *f.PaymentStatus)
		}
		return q
	}
	var total int64
	if err := scope(r.db.WithContext(ctx).Model(&models.Order{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.Order
	err := scope(r.withRefs(ctx)).
		Order("created_at DESC").
		Limit(f.Pagination.Limit).Offset(f.Pagination.Offset()).
		Find(&rows).Error
	return rows, total, err
}

// UpdateStatus moves the order only if it is still in from.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to enums.OrderStatus) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	return res.RowsAffected == 1, res.Error
}

// MarkPaid records a captured payment unless the order was cancelled.
func (r *Repository) MarkPaid(ctx context.Context, id uuid.UUID, paymentID string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status <> ?", id, enums.OrderStatusCancelled).
		Updates(map[string]any{
			"payment_status": enums.PaymentStatusPaid,
			"paid_at":        at,
			"payment_id":     paymentID,
		})
	return res.RowsAffected == 1, res.Error
}

// SetPaymentStatus records a payment outcome and stamps paid_at or failed_at.
// paymentID is stored when non-nil.
func (r *Repository) SetPaymentStatus(ctx context.Context, id uuid.UUID, status enums.PaymentStatus, paymentID *string, at time.Time) (bool, error) {
	updates := map[string]any{"payment_status": status}
	switch status {
	case enums.PaymentStatusPaid:
		updates["paid_at"] = at
	case enums.PaymentStatusFailed:
		updates["failed_at"] = at
	}
	if paymentID != nil {
		updates["payment_id"] = *paymentID
	}
	res := r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Updates(updates)
	return res.RowsAffected == 1, res.Error
}
