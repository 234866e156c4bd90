package sales

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tiendahub/tienda-backend/pkg/db/models"
	"github.com/tiendahub/tienda-backend/pkg/pagination"
)

// Repository handles sale persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to sale operations.
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

// Create inserts the sale header together with its lines.
func (r *Repository) Create(ctx context.Context, sale *models.Sale) (*models.Sale, error) {
	if sale.ID == uuid.Nil {
		sale.ID = uuid.New()
	}
	for i := range sale.Lines {
		if sale.Lines[i].ID == uuid.Nil {
			sale.Lines[i].ID = uuid.New()
		}
		sale.Lines[i].SaleID = sale.ID
	}
	if err := r.db.WithContext(ctx).Create(sale).Error; err != nil {
		return nil, err
	}
	return sale, nil
}

// FindByIDInStore loads the sale header only if it belongs to the store.
func (r *Repository) FindByIDInStore(ctx context.Context, id, storeID uuid.UUID) (*models.Sale, error) {
	var sale models.Sale
	if err := r.db.WithContext(ctx).
		First(&sale, "id = ? AND store_id = ?", id, storeID).Error; err != nil {
		return nil, err
	}
	return &sale, nil
}

// GetWithLines loads the sale with lines and their products.
func (r *Repository) GetWithLines(ctx context.Context, id, storeID uuid.UUID) (*models.Sale, error) {
	var sale models.Sale
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Preload("Lines.Product").
		First(&sale, "id = ? AND store_id = ?", id, storeID).Error; err != nil {
		return nil, err
	}
	return &sale, nil
}

// ListLines loads the lines of a sale without the header.
func (r *Repository) ListLines(ctx context.Context, saleID uuid.UUID) ([]models.SaleLine, error) {
	var lines []models.SaleLine
	if err := r.db.WithContext(ctx).
		Where("sale_id = ?", saleID).
		Find(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

// ListByStore lists sales for a store, newest first. A non-nil cursor
// resumes after the (sold_at, id) position of the previous page.
func (r *Repository) ListByStore(ctx context.Context, storeID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Sale, error) {
	q := r.db.WithContext(ctx).
		Preload("Lines").
		Where("store_id = ?", storeID).
		Order("sold_at DESC, id DESC")
	if cursor != nil {
		q = q.Where("(sold_at, id) < (?, ?)", cursor.Timestamp, cursor.ID)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []models.Sale
	err := q.Find(&rows).Error
	return rows, err
}

// Update saves the sale header.
func (r *Repository) Update(ctx context.Context, sale *models.Sale) error {
	return r.db.WithContext(ctx).
		Model(&models.Sale{}).
		Where("id = ?", sale.ID).
		Updates(map[string]any{
			"status":         sale.Status,
			"payment_method": sale.PaymentMethod,
			"notes":          sale.Notes,
			"updated_at":     time.Now().UTC(),
		}).Error
}
