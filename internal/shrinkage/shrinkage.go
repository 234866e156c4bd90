package shrinkage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tiendahub/tienda-backend/internal/inventory"
	"github.com/tiendahub/tienda-backend/pkg/db/models"
	pkgerrors "github.com/tiendahub/tienda-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// CreateShrinkageInput captures a stock-loss record: breakage, spoilage,
// theft, expiry.
type CreateShrinkageInput struct {
	ProductID   uuid.UUID
	Quantity    int
	Reason      *string
	Description *string
}

// ShrinkageDTO is the API-facing projection of a shrinkage record.
type ShrinkageDTO struct {
	ID          uuid.UUID `json:"id"`
	StoreID     uuid.UUID `json:"store_id"`
	ProductID   uuid.UUID `json:"product_id"`
	UserID      uuid.UUID `json:"user_id"`
	Quantity    int       `json:"quantity"`
	Reason      *string   `json:"reason,omitempty"`
	Description *string   `json:"description,omitempty"`
	RecordedAt  time.Time `json:"recorded_at"`
}

func fromModel(record *models.Shrinkage) *ShrinkageDTO {
	if record == nil {
		return nil
	}
	return &ShrinkageDTO{
		ID:          record.ID,
		StoreID:     record.StoreID,
		ProductID:   record.ProductID,
		UserID:      record.UserID,
		Quantity:    record.Quantity,
		Reason:      record.Reason,
		Description: record.Description,
		RecordedAt:  record.RecordedAt,
	}
}

// Service exposes shrinkage operations.
type Service interface {
	Create(ctx context.Context, storeID, userID uuid.UUID, input CreateShrinkageInput) (*ShrinkageDTO, error)
	ListByStore(ctx context.Context, storeID uuid.UUID) ([]ShrinkageDTO, error)
}

type service struct {
	tx     txRunner
	repo   *Repository
	ledger *inventory.Ledger
}

// NewService builds the shrinkage service.
func NewService(tx txRunner, repo *Repository, ledger *inventory.Ledger) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("shrinkage repository required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("inventory ledger required")
	}
	return &service{tx: tx, repo: repo, ledger: ledger}, nil
}

func (s *service) Create(ctx context.Context, storeID, userID uuid.UUID, input CreateShrinkageInput) (*ShrinkageDTO, error) {
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	var created *models.Shrinkage
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		ledger := s.ledger.WithTx(tx)

		product, err := ledger.FindProduct(ctx, input.ProductID)
		if err != nil {
			return err
		}
		if product.StoreID != storeID {
			return pkgerrors.Newf(pkgerrors.CodeStateConflict, "product %q does not belong to this store", product.Name)
		}

		if err := ledger.Debit(ctx, input.ProductID, input.Quantity); err != nil {
			return err
		}

		record := &models.Shrinkage{
			StoreID:     storeID,
			ProductID:   input.ProductID,
			UserID:      userID,
			Quantity:    input.Quantity,
			Reason:      input.Reason,
			Description: input.Description,
			RecordedAt:  time.Now().UTC(),
		}
		if _, err := repo.Create(ctx, record); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create shrinkage record")
		}
		created = record
		return nil
	})
	if err != nil {
		return nil, err
	}

	return fromModel(created), nil
}

func (s *service) ListByStore(ctx context.Context, storeID uuid.UUID) ([]ShrinkageDTO, error) {
	rows, err := s.repo.ListByStore(ctx, storeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list shrinkage records")
	}
	out := make([]ShrinkageDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *fromModel(&rows[i]))
	}
	return out, nil
}
