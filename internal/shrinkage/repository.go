package shrinkage

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tiendahub/tienda-backend/pkg/db/models"
)

// Repository handles shrinkage persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to shrinkage operations.
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

// Create inserts a shrinkage row.
func (r *Repository) Create(ctx context.Context, record *models.Shrinkage) (*models.Shrinkage, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

// ListByStore lists shrinkage records for a store, newest first.
func (r *Repository) ListByStore(ctx context.Context, storeID uuid.UUID) ([]models.Shrinkage, error) {
	var rows []models.Shrinkage
	err := r.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("recorded_at DESC").
		Find(&rows).
		Error
	return rows, err
}
