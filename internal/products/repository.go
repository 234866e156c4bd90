package product

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tiendahub/tienda-backend/pkg/db/models"
	"github.com/tiendahub/tienda-backend/pkg/enums"
)

// Repository wires together product persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
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

// CreateProduct inserts a new product row.
func (r *Repository) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// UpdateProduct updates an existing product row.
func (r *Repository) UpdateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// FindByID loads the product without associations.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByIDInStore loads the product only if it belongs to the store.
func (r *Repository) FindByIDInStore(ctx context.Context, id, storeID uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).
		First(&product, "id = ? AND store_id = ?", id, storeID).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// CodeExists reports whether the code is already taken within the store.
func (r *Repository) CodeExists(ctx context.Context, storeID uuid.UUID, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("store_id = ? AND code = ?", storeID, code).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindCategoryInStore loads a category only if it belongs to the store.
func (r *Repository) FindCategoryInStore(ctx context.Context, id, storeID uuid.UUID) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).
		First(&category, "id = ? AND store_id = ?", id, storeID).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// ListByStore lists the products owned by a store, newest first.
func (r *Repository) ListByStore(ctx context.Context, storeID uuid.UUID) ([]models.Product, error) {
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("store_id = ?", storeID).
		Order("created_at DESC").
		Find(&rows).
		Error
	return rows, err
}

// SearchByStore finds active products whose name or code contains the term,
// case-insensitively, ordered by name.
func (r *Repository) SearchByStore(ctx context.Context, storeID uuid.UUID, term string) ([]models.Product, error) {
	pattern := "%" + term + "%"
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("store_id = ? AND status = ?", storeID, enums.ProductStatusActive).
		Where("LOWER(name) LIKE LOWER(?) OR LOWER(code) LIKE LOWER(?)", pattern, pattern).
		Order("name ASC").
		Find(&rows).
		Error
	return rows, err
}

// ListLowStock lists active products whose stock has fallen to or below
// their configured minimum.
func (r *Repository) ListLowStock(ctx context.Context, storeID uuid.UUID) ([]models.Product, error) {
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Where("store_id = ? AND status = ? AND stock_actual <= stock_min", storeID, enums.ProductStatusActive).
		Order("stock_actual ASC").
		Find(&rows).
		Error
	return rows, err
}
