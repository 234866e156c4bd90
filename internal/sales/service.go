package sales

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tiendahub/tienda-backend/internal/documents"
	"github.com/tiendahub/tienda-backend/internal/inventory"
	"github.com/tiendahub/tienda-backend/pkg/db/models"
	"github.com/tiendahub/tienda-backend/pkg/enums"
	pkgerrors "github.com/tiendahub/tienda-backend/pkg/errors"
	"github.com/tiendahub/tienda-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type storeChecker interface {
	ExistsActive(ctx context.Context, id uuid.UUID) (bool, error)
}

// Service exposes sale operations. Every stock mutation rides the same
// transaction as the document write.
type Service interface {
	Create(ctx context.Context, storeID, userID uuid.UUID, input CreateSaleInput) (*SaleDTO, error)
	Cancel(ctx context.Context, storeID, saleID, userID uuid.UUID, reason string) (*SaleDTO, error)
	UpdateMetadata(ctx context.Context, storeID, saleID, userID uuid.UUID, input UpdateSaleInput) (*SaleDTO, error)
	GetByID(ctx context.Context, storeID, saleID uuid.UUID) (*SaleDTO, error)
	ListByStore(ctx context.Context, storeID uuid.UUID, page pagination.Params) (*SaleListPage, error)
}

type service struct {
	tx     txRunner
	repo   *Repository
	ledger *inventory.Ledger
	stores storeChecker
}

// NewService builds the sales service.
func NewService(tx txRunner, repo *Repository, ledger *inventory.Ledger, storesRepo storeChecker) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("sales repository required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("inventory ledger required")
	}
	if storesRepo == nil {
		return nil, fmt.Errorf("store repository required")
	}
	return &service{tx: tx, repo: repo, ledger: ledger, stores: storesRepo}, nil
}

func (s *service) Create(ctx context.Context, storeID, userID uuid.UUID, input CreateSaleInput) (*SaleDTO, error) {
	if len(input.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sale requires at least one line")
	}
	requested := make([]documents.RequestedLine, 0, len(input.Lines))
	for _, line := range input.Lines {
		if line.ProductID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "line product id required")
		}
		if line.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "line quantity must be positive")
		}
		requested = append(requested, documents.RequestedLine{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		})
	}

	ok, err := s.stores.ExistsActive(ctx, storeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check store")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
	}

	aggregated := documents.AggregateLines(requested)

	var saleID uuid.UUID
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ledger := s.ledger.WithTx(tx)

		// Validate every line before touching stock so a failure on the
		// last line leaves no partial decrement behind.
		catalog := make(map[uuid.UUID]*models.Product, len(aggregated))
		for _, line := range aggregated {
			product, err := ledger.FindProduct(ctx, line.ProductID)
			if err != nil {
				return err
			}
			if err := ledger.CheckAvailable(ctx, product, storeID, line.Quantity); err != nil {
				return err
			}
			catalog[line.ProductID] = product
		}

		total := decimal.Zero
		saleLines := make([]models.SaleLine, 0, len(aggregated))
		for _, line := range aggregated {
			product := catalog[line.ProductID]
			subtotal := product.SalePrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
			saleLines = append(saleLines, models.SaleLine{
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				UnitPrice: product.SalePrice,
				Subtotal:  subtotal,
			})
			total = total.Add(subtotal)
		}

		for _, line := range aggregated {
			if err := ledger.Debit(ctx, line.ProductID, line.Quantity); err != nil {
				return err
			}
		}

		sale := &models.Sale{
			StoreID:       storeID,
			UserID:        userID,
			SoldAt:        time.Now().UTC(),
			Total:         total,
			PaymentMethod: input.PaymentMethod,
			Notes:         input.Notes,
			Status:        enums.DocumentStatusActive,
			Lines:         saleLines,
		}
		if _, err := s.repo.WithTx(tx).Create(ctx, sale); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create sale")
		}
		saleID = sale.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetByID(ctx, storeID, saleID)
}

func (s *service) Cancel(ctx context.Context, storeID, saleID, userID uuid.UUID, reason string) (*SaleDTO, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cancellation reason is required")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		ledger := s.ledger.WithTx(tx)

		sale, err := repo.FindByIDInStore(ctx, saleID, storeID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "sale not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sale")
		}
		if sale.Status == enums.DocumentStatusCancelled {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "sale is already cancelled")
		}

		lines, err := repo.ListLines(ctx, sale.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sale lines")
		}
		for _, line := range lines {
			if err := ledger.Credit(ctx, line.ProductID, line.Quantity); err != nil {
				return err
			}
		}

		audit := fmt.Sprintf("[CANCELLED] %s - by %s - %s",
			reason, userID, time.Now().UTC().Format(time.RFC3339))
		if sale.Notes != nil && strings.TrimSpace(*sale.Notes) != "" {
			audit = *sale.Notes + "\n" + audit
		}
		sale.Notes = &audit
		sale.Status = enums.DocumentStatusCancelled

		if err := repo.Update(ctx, sale); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel sale")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetByID(ctx, storeID, saleID)
}

// UpdateMetadata edits payment method and notes. The editing user is
// accepted for parity with Cancel but the sale keeps its original seller.
func (s *service) UpdateMetadata(ctx context.Context, storeID, saleID, _ uuid.UUID, input UpdateSaleInput) (*SaleDTO, error) {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		sale, err := repo.FindByIDInStore(ctx, saleID, storeID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "sale not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sale")
		}
		if sale.Status == enums.DocumentStatusCancelled {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "cancelled sales cannot be edited")
		}

		if input.PaymentMethod != nil {
			sale.PaymentMethod = input.PaymentMethod
		}
		if input.Notes != nil {
			sale.Notes = input.Notes
		}
		if sale.Status == enums.DocumentStatusActive {
			sale.Status = enums.DocumentStatusEdited
		}

		if err := repo.Update(ctx, sale); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update sale")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetByID(ctx, storeID, saleID)
}

func (s *service) GetByID(ctx context.Context, storeID, saleID uuid.UUID) (*SaleDTO, error) {
	sale, err := s.repo.GetWithLines(ctx, saleID, storeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sale not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sale")
	}
	return FromModel(sale), nil
}

func (s *service) ListByStore(ctx context.Context, storeID uuid.UUID, page pagination.Params) (*SaleListPage, error) {
	cursor, err := pagination.ParseCursor(page.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(page.Limit)
	rows, err := s.repo.ListByStore(ctx, storeID, cursor, pagination.LimitWithBuffer(page.Limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list sales")
	}

	result := &SaleListPage{Items: make([]SaleDTO, 0, len(rows))}
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		result.NextCursor = pagination.EncodeCursor(pagination.Cursor{Timestamp: last.SoldAt, ID: last.ID})
	}
	for i := range rows {
		result.Items = append(result.Items, *FromModel(&rows[i]))
	}
	return result, nil
}
