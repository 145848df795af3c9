package medicines

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/pharmacy-backend/pkg/db/models"
)

var sortColumns = map[string]string{
	"createdAt":          "created_at",
	"price":              "price",
	"name":               "name",
	"discountPercentage": "discount_percentage",
}

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

func (r *Repository) withRefs(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Category").Preload("Seller")
}

func (r *Repository) Create(ctx context.Context, m *models.Medicine) error {
	return r.db.WithContext(ctx).Select("*").Omit("Category", "Seller").Create(m).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Medicine, error) {
	var m models.Medicine
	if err := r.withRefs(ctx).First(&m, "medicines.id = ?", id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// FindByIDs loads medicines keyed by id; unknown ids are absent from the map.
func (r *Repository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Medicine, error) {
	out := make(map[uuid.UUID]models.Medicine, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.Medicine
	if err := r.withRefs(ctx).Where("medicines.id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, m := range rows {
		out[m.ID] = m
	}
	return out, nil
}

func (r *Repository) List(ctx context.Context, f ListFilter) ([]models.Medicine, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Medicine{})
	if f.InStock != nil {
		q = q.Where("in_stock = ?", *f.InStock)
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.SellerID != nil {
		q = q.Where("seller_id = ?", *f.SellerID)
	}
	if term := strings.ToLower(strings.TrimSpace(f.Search)); term != "" {
		like := "%" + term + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(generic_name) LIKE ? OR LOWER(company) LIKE ?", like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	col, ok := sortColumns[f.SortBy]
	if !ok {
		col = "created_at"
	}
	dir := "DESC"
	if strings.EqualFold(f.SortOrder, "asc") {
		dir = "ASC"
	}

	var rows []models.Medicine
	err := q.Preload("Category").Preload("Seller").
		Order(col + " " + dir).Order("id ASC").
		Offset(f.Pagination.Offset()).Limit(f.Pagination.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// DiscountCandidates returns in-stock medicines carrying a discount, highest
// first. The date window is checked by the caller.
func (r *Repository) DiscountCandidates(ctx context.Context) ([]models.Medicine, error) {
	var rows []models.Medicine
	err := r.withRefs(ctx).
		Where("discount_percentage > 0 AND in_stock = ?", true).
		Order("discount_percentage DESC").Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *Repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).Model(&models.Medicine{}).Where("id = ?", id).Updates(updates).Error
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&models.Medicine{}, "id = ?", id)
	return res.RowsAffected > 0, res.Error
}

// DecrementStock removes qty units when enough stock remains and reports
// whether the row was updated. A medicine drained to zero is marked out of stock.
func (r *Repository) DecrementStock(ctx context.Context, id uuid.UUID, qty int) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Medicine{}).
		Where("id = ? AND stock_quantity >= ?", id, qty).
		Updates(map[string]any{
			"stock_quantity": gorm.Expr("stock_quantity - ?", qty),
			"in_stock":       gorm.Expr("stock_quantity - ? > 0", qty),
		})
	return res.RowsAffected > 0, res.Error
}

// Restock returns qty units to a medicine and marks it in stock again.
func (r *Repository) Restock(ctx context.Context, id uuid.UUID, qty int) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Medicine{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"stock_quantity": gorm.Expr("stock_quantity + ?", qty),
			"in_stock":       true,
		})
	return res.RowsAffected > 0, res.Error
}

func (r *Repository) Count(ctx context.Context) (int64, error) {
	var n int64
	return n, r.db.WithContext(ctx).Model(&models.Medicine{}).Count(&n).Error
}

func (r *Repository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Medicine{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}
