package returns

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tiendahub/tienda-backend/internal/inventory"
	"github.com/tiendahub/tienda-backend/pkg/db/models"
	"github.com/tiendahub/tienda-backend/pkg/enums"
	pkgerrors "github.com/tiendahub/tienda-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// CreateReturnInput captures a merchandise return against a prior sale.
// Amount overrides the refund recorded for the return; when nil the
// refund defaults to the line's unit price times the returned quantity.
type CreateReturnInput struct {
	SaleID    uuid.UUID
	ProductID uuid.UUID
	Quantity  int
	Reason    *string
	Amount    *decimal.Decimal
}

// ReturnDTO is the API-facing projection of a return.
type ReturnDTO struct {
	ID         uuid.UUID        `json:"id"`
	SaleID     uuid.UUID        `json:"sale_id"`
	ProductID  uuid.UUID        `json:"product_id"`
	UserID     uuid.UUID        `json:"user_id"`
	Quantity   int              `json:"quantity"`
	Reason     *string          `json:"reason,omitempty"`
	AmountPaid *decimal.Decimal `json:"amount_paid,omitempty"`
	ReturnedAt time.Time        `json:"returned_at"`
}

func fromModel(ret *models.Return) *ReturnDTO {
	if ret == nil {
		return nil
	}
	return &ReturnDTO{
		ID:         ret.ID,
		SaleID:     ret.SaleID,
		ProductID:  ret.ProductID,
		UserID:     ret.UserID,
		Quantity:   ret.Quantity,
		Reason:     ret.Reason,
		AmountPaid: ret.AmountPaid,
		ReturnedAt: ret.ReturnedAt,
	}
}

// Service exposes return operations.
type Service interface {
	Create(ctx context.Context, storeID, userID uuid.UUID, input CreateReturnInput) (*ReturnDTO, error)
	ListBySale(ctx context.Context, storeID, saleID uuid.UUID) ([]ReturnDTO, error)
}

type service struct {
	tx     txRunner
	repo   *Repository
	ledger *inventory.Ledger
}

// NewService builds the returns service.
func NewService(tx txRunner, repo *Repository, ledger *inventory.Ledger) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("returns repository required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("inventory ledger required")
	}
	return &service{tx: tx, repo: repo, ledger: ledger}, nil
}

func (s *service) Create(ctx context.Context, storeID, userID uuid.UUID, input CreateReturnInput) (*ReturnDTO, error) {
	if input.SaleID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sale id required")
	}
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if input.Amount != nil && input.Amount.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "refund amount cannot be negative")
	}

	var created *models.Return
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		ledger := s.ledger.WithTx(tx)

		sale, err := repo.FindSaleInStore(ctx, input.SaleID, storeID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "sale not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sale")
		}
		if sale.Status == enums.DocumentStatusCancelled {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "cancelled sales cannot receive returns")
		}

		line, err := repo.FindSaleLine(ctx, input.SaleID, input.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "product was not part of this sale")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sale line")
		}

		alreadyReturned, err := repo.SumReturnedQuantity(ctx, input.SaleID, input.ProductID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum prior returns")
		}
		available := line.Quantity - alreadyReturned
		if input.Quantity > available {
			return pkgerrors.Newf(pkgerrors.CodeStateConflict,
				"return exceeds sold quantity: available %d, requested %d", available, input.Quantity)
		}

		if err := ledger.Credit(ctx, input.ProductID, input.Quantity); err != nil {
			return err
		}

		amount := line.UnitPrice.Mul(decimal.NewFromInt(int64(input.Quantity)))
		if input.Amount != nil {
			amount = *input.Amount
		}
		ret := &models.Return{
			SaleID:     input.SaleID,
			ProductID:  input.ProductID,
			UserID:     userID,
			Quantity:   input.Quantity,
			Reason:     input.Reason,
			AmountPaid: &amount,
			ReturnedAt: time.Now().UTC(),
		}
		if _, err := repo.Create(ctx, ret); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create return")
		}
		created = ret
		return nil
	})
	if err != nil {
		return nil, err
	}

	return fromModel(created), nil
}

func (s *service) ListBySale(ctx context.Context, storeID, saleID uuid.UUID) ([]ReturnDTO, error) {
	if _, err := s.repo.FindSaleInStore(ctx, saleID, storeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sale not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sale")
	}

	rows, err := s.repo.ListBySale(ctx, saleID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list returns")
	}
	out := make([]ReturnDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *fromModel(&rows[i]))
	}
	return out, nil
}
