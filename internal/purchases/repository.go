package purchases

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tiendahub/tienda-backend/pkg/db/models"
)

// Repository handles purchase persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to purchase operations.
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

// Create inserts the purchase header together with its lines.
func (r *Repository) Create(ctx context.Context, purchase *models.Purchase) (*models.Purchase, error) {
	if purchase.ID == uuid.Nil {
		purchase.ID = uuid.New()
	}
	for i := range purchase.Lines {
		if purchase.Lines[i].ID == uuid.Nil {
			purchase.Lines[i].ID = uuid.New()
		}
		purchase.Lines[i].PurchaseID = purchase.ID
	}
	if err := r.db.WithContext(ctx).Create(purchase).Error; err != nil {
		return nil, err
	}
	return purchase, nil
}

// FindByIDInStore loads the purchase header only if it belongs to the store.
func (r *Repository) FindByIDInStore(ctx context.Context, id, storeID uuid.UUID) (*models.Purchase, error) {
	var purchase models.Purchase
	if err := r.db.WithContext(ctx).
		First(&purchase, "id = ? AND store_id = ?", id, storeID).Error; err != nil {
		return nil, err
	}
	return &purchase, nil
}

// GetWithLines loads the purchase with lines, products, and supplier.
func (r *Repository) GetWithLines(ctx context.Context, id, storeID uuid.UUID) (*models.Purchase, error) {
	var purchase models.Purchase
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Preload("Lines.Product").
		Preload("Supplier").
		First(&purchase, "id = ? AND store_id = ?", id, storeID).Error; err != nil {
		return nil, err
	}
	return &purchase, nil
}

// ListLines loads the lines of a purchase without the header.
func (r *Repository) ListLines(ctx context.Context, purchaseID uuid.UUID) ([]models.PurchaseLine, error) {
	var lines []models.PurchaseLine
	if err := r.db.WithContext(ctx).
		Where("purchase_id = ?", purchaseID).
		Find(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

// ListByStore lists purchases for a store, newest first.
func (r *Repository) ListByStore(ctx context.Context, storeID uuid.UUID) ([]models.Purchase, error) {
	var rows []models.Purchase
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Preload("Supplier").
		Where("store_id = ?", storeID).
		Order("purchased_at DESC").
		Find(&rows).
		Error
	return rows, err
}

// ReplaceLines swaps the purchase's line set for the provided one.
func (r *Repository) ReplaceLines(ctx context.Context, purchaseID uuid.UUID, lines []models.PurchaseLine) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("purchase_id = ?", purchaseID).Delete(&models.PurchaseLine{}).Error; err != nil {
		return err
	}
	if len(lines) == 0 {
		return nil
	}
	for i := range lines {
		if lines[i].ID == uuid.Nil {
			lines[i].ID = uuid.New()
		}
		lines[i].PurchaseID = purchaseID
	}
	return tx.Create(&lines).Error
}

// Update saves the mutable purchase header fields.
func (r *Repository) Update(ctx context.Context, purchase *models.Purchase) error {
	return r.db.WithContext(ctx).
		Model(&models.Purchase{}).
		Where("id = ?", purchase.ID).
		Updates(map[string]any{
			"supplier_id":    purchase.SupplierID,
			"invoice_number": purchase.InvoiceNumber,
			"total":          purchase.Total,
			"notes":          purchase.Notes,
			"status":         purchase.Status,
			"can_edit":       purchase.CanEdit,
			"updated_at":     time.Now().UTC(),
		}).Error
}

// FindSupplierInStore loads a supplier only if it belongs to the store.
func (r *Repository) FindSupplierInStore(ctx context.Context, id, storeID uuid.UUID) (*models.Supplier, error) {
	var supplier models.Supplier
	if err := r.db.WithContext(ctx).
		First(&supplier, "id = ? AND store_id = ?", id, storeID).Error; err != nil {
		return nil, err
	}
	return &supplier, nil
}
