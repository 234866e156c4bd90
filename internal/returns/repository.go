package returns

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tiendahub/tienda-backend/pkg/db/models"
)

// Repository handles return persistence and the sale lookups returns need.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to return operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Create inserts a return row.
func (r *Repository) Create(ctx context.Context, ret *models.Return) (*models.Return, error) {
	if ret.ID == uuid.Nil {
		ret.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(ret).Error; err != nil {
		return nil, err
	}
	return ret, nil
}

// FindSaleInStore loads the sale header only if it belongs to the store.
func (r *Repository) FindSaleInStore(ctx context.Context, saleID, storeID uuid.UUID) (*models.Sale, error) {
	var sale models.Sale
	if err := r.db.WithContext(ctx).
		First(&sale, "id = ? AND store_id = ?", saleID, storeID).Error; err != nil {
		return nil, err
	}
	return &sale, nil
}

// FindSaleLine loads the sale line for a product.
func (r *Repository) FindSaleLine(ctx context.Context, saleID, productID uuid.UUID) (*models.SaleLine, error) {
	var line models.SaleLine
	if err := r.db.WithContext(ctx).
		First(&line, "sale_id = ? AND product_id = ?", saleID, productID).Error; err != nil {
		return nil, err
	}
	return &line, nil
}

// SumReturnedQuantity totals the units already returned for the sale line.
func (r *Repository) SumReturnedQuantity(ctx context.Context, saleID, productID uuid.UUID) (int, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.Return{}).
		Where("sale_id = ? AND product_id = ?", saleID, productID).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return int(total), nil
}

// ListBySale lists the returns recorded against a sale, newest first.
func (r *Repository) ListBySale(ctx context.Context, saleID uuid.UUID) ([]models.Return, error) {
	var rows []models.Return
	err := r.db.WithContext(ctx).
		Where("sale_id = ?", saleID).
		Order("returned_at DESC").
		Find(&rows).
		Error
	return rows, err
}
