package purchases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tiendahub/tienda-backend/internal/documents"
	"github.com/tiendahub/tienda-backend/internal/inventory"
	"github.com/tiendahub/tienda-backend/pkg/config"
	"github.com/tiendahub/tienda-backend/pkg/db/models"
	"github.com/tiendahub/tienda-backend/pkg/enums"
	pkgerrors "github.com/tiendahub/tienda-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type storeChecker interface {
	ExistsActive(ctx context.Context, id uuid.UUID) (bool, error)
}

// Service exposes purchase operations. A purchase stays editable until its
// deadline passes; editing replaces the whole line set and moves stock only
// by the per-product difference between the old and new sets.
type Service interface {
	Create(ctx context.Context, storeID, userID uuid.UUID, input CreatePurchaseInput) (*PurchaseDTO, error)
	Update(ctx context.Context, storeID, purchaseID uuid.UUID, input UpdatePurchaseInput) (*PurchaseDTO, error)
	GetByID(ctx context.Context, storeID, purchaseID uuid.UUID) (*PurchaseDTO, error)
	ListByStore(ctx context.Context, storeID uuid.UUID) ([]PurchaseDTO, error)
}

type service struct {
	tx     txRunner
	repo   *Repository
	ledger *inventory.Ledger
	stores storeChecker
	cfg    config.DocumentsConfig
}

// NewService builds the purchases service.
func NewService(tx txRunner, repo *Repository, ledger *inventory.Ledger, storesRepo storeChecker, cfg config.DocumentsConfig) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("purchases repository required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("inventory ledger required")
	}
	if storesRepo == nil {
		return nil, fmt.Errorf("store repository required")
	}
	if cfg.PurchaseEditWindow <= 0 {
		cfg.PurchaseEditWindow = 24 * time.Hour
	}
	return &service{tx: tx, repo: repo, ledger: ledger, stores: storesRepo, cfg: cfg}, nil
}

func (s *service) Create(ctx context.Context, storeID, userID uuid.UUID, input CreatePurchaseInput) (*PurchaseDTO, error) {
	aggregated, err := s.validateLines(input.Lines)
	if err != nil {
		return nil, err
	}

	ok, err := s.stores.ExistsActive(ctx, storeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check store")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
	}

	var purchaseID uuid.UUID
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		ledger := s.ledger.WithTx(tx)

		if input.SupplierID != nil {
			if err := s.checkSupplier(ctx, repo, *input.SupplierID, storeID); err != nil {
				return err
			}
		}
		if err := s.checkOwnership(ctx, ledger, aggregated, storeID); err != nil {
			return err
		}

		total := decimal.Zero
		purchaseLines := make([]models.PurchaseLine, 0, len(aggregated))
		for _, line := range aggregated {
			subtotal := line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
			purchaseLines = append(purchaseLines, models.PurchaseLine{
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				UnitPrice: line.UnitPrice,
				Subtotal:  subtotal,
			})
			total = total.Add(subtotal)
		}

		for _, line := range aggregated {
			if err := ledger.Credit(ctx, line.ProductID, line.Quantity); err != nil {
				return err
			}
			if err := ledger.SetCostPrice(ctx, line.ProductID, line.UnitPrice); err != nil {
				return err
			}
		}

		deadline := time.Now().UTC().Add(s.cfg.PurchaseEditWindow)
		purchase := &models.Purchase{
			StoreID:       storeID,
			SupplierID:    input.SupplierID,
			UserID:        userID,
			InvoiceNumber: input.InvoiceNumber,
			PurchasedAt:   time.Now().UTC(),
			Total:         total,
			Notes:         input.Notes,
			Status:        enums.DocumentStatusActive,
			CanEdit:       true,
			EditDeadline:  &deadline,
			Lines:         purchaseLines,
		}
		if _, err := repo.Create(ctx, purchase); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create purchase")
		}
		purchaseID = purchase.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetByID(ctx, storeID, purchaseID)
}

// Update replaces the line set. Stock moves by the difference per product:
// resubmitting an identical set leaves every counter untouched. The edit
// deadline is never renewed.
func (s *service) Update(ctx context.Context, storeID, purchaseID uuid.UUID, input UpdatePurchaseInput) (*PurchaseDTO, error) {
	aggregated, err := s.validateLines(input.Lines)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		ledger := s.ledger.WithTx(tx)

		purchase, err := repo.FindByIDInStore(ctx, purchaseID, storeID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "purchase not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load purchase")
		}
		if err := s.ensureEditable(purchase); err != nil {
			return err
		}

		if input.SupplierID != nil {
			if err := s.checkSupplier(ctx, repo, *input.SupplierID, storeID); err != nil {
				return err
			}
		}
		if err := s.checkOwnership(ctx, ledger, aggregated, storeID); err != nil {
			return err
		}

		oldLines, err := repo.ListLines(ctx, purchase.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load purchase lines")
		}
		oldQty := make(map[uuid.UUID]int, len(oldLines))
		for _, line := range oldLines {
			oldQty[line.ProductID] += line.Quantity
		}

		total := decimal.Zero
		newLines := make([]models.PurchaseLine, 0, len(aggregated))
		for _, line := range aggregated {
			subtotal := line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
			newLines = append(newLines, models.PurchaseLine{
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				UnitPrice: line.UnitPrice,
				Subtotal:  subtotal,
			})
			total = total.Add(subtotal)
		}

		// Apply only the per-product delta between the old and the new set.
		for _, line := range aggregated {
			delta := line.Quantity - oldQty[line.ProductID]
			delete(oldQty, line.ProductID)
			switch {
			case delta > 0:
				if err := ledger.Credit(ctx, line.ProductID, delta); err != nil {
					return err
				}
			case delta < 0:
				if err := ledger.Debit(ctx, line.ProductID, -delta); err != nil {
					return err
				}
			}
			if err := ledger.SetCostPrice(ctx, line.ProductID, line.UnitPrice); err != nil {
				return err
			}
		}
		// Products dropped from the set give their full quantity back.
		for productID, qty := range oldQty {
			if err := ledger.Debit(ctx, productID, qty); err != nil {
				return err
			}
		}

		if err := repo.ReplaceLines(ctx, purchase.ID, newLines); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace purchase lines")
		}

		purchase.SupplierID = input.SupplierID
		purchase.InvoiceNumber = input.InvoiceNumber
		purchase.Notes = input.Notes
		purchase.Total = total
		purchase.Status = enums.DocumentStatusEdited
		if err := repo.Update(ctx, purchase); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update purchase")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetByID(ctx, storeID, purchaseID)
}

func (s *service) GetByID(ctx context.Context, storeID, purchaseID uuid.UUID) (*PurchaseDTO, error) {
	purchase, err := s.repo.GetWithLines(ctx, purchaseID, storeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "purchase not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load purchase")
	}
	return FromModel(purchase), nil
}

func (s *service) ListByStore(ctx context.Context, storeID uuid.UUID) ([]PurchaseDTO, error) {
	rows, err := s.repo.ListByStore(ctx, storeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list purchases")
	}
	out := make([]PurchaseDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) validateLines(lines []PurchaseLineInput) ([]documents.AggregatedLine, error) {
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "purchase requires at least one line")
	}
	requested := make([]documents.RequestedLine, 0, len(lines))
	for _, line := range lines {
		if line.ProductID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "line product id required")
		}
		if line.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "line quantity must be positive")
		}
		if line.UnitPrice.LessThanOrEqual(decimal.Zero) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "line unit price must be positive")
		}
		requested = append(requested, documents.RequestedLine{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		})
	}
	return documents.AggregateLines(requested), nil
}

func (s *service) checkSupplier(ctx context.Context, repo *Repository, supplierID, storeID uuid.UUID) error {
	supplier, err := repo.FindSupplierInStore(ctx, supplierID, storeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "supplier does not belong to this store")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load supplier")
	}
	if supplier.Status != enums.SupplierStatusActive {
		return pkgerrors.Newf(pkgerrors.CodeStateConflict, "supplier %q is inactive", supplier.Name)
	}
	return nil
}

func (s *service) checkOwnership(ctx context.Context, ledger *inventory.Ledger, lines []documents.AggregatedLine, storeID uuid.UUID) error {
	for _, line := range lines {
		product, err := ledger.FindProduct(ctx, line.ProductID)
		if err != nil {
			return err
		}
		if product.StoreID != storeID {
			return pkgerrors.Newf(pkgerrors.CodeStateConflict, "product %q does not belong to this store", product.Name)
		}
	}
	return nil
}

func (s *service) ensureEditable(purchase *models.Purchase) error {
	if purchase.Status == enums.DocumentStatusCancelled {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "cancelled purchases cannot be edited")
	}
	if !purchase.CanEdit {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "purchase can no longer be edited")
	}
	if purchase.EditDeadline == nil || time.Now().UTC().After(*purchase.EditDeadline) {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "purchase edit window has expired")
	}
	return nil
}
