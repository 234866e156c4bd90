package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tiendahub/tienda-backend/pkg/db/models"
	"github.com/tiendahub/tienda-backend/pkg/enums"
	pkgerrors "github.com/tiendahub/tienda-backend/pkg/errors"
)

// Strategy selects how stock decrements are protected against concurrent
// writers hitting the same product row.
type Strategy string

const (
	// StrategyGuarded issues a conditional UPDATE and treats zero affected
	// rows as insufficient stock. Two racing writers cannot both win.
	StrategyGuarded Strategy = "guarded"
	// StrategyUnguarded re-reads the row, checks in process, then writes.
	// It reproduces the unprotected read-then-write of naive ORM code and
	// exists for comparison and for engines without expression updates.
	StrategyUnguarded Strategy = "unguarded"
)

// Ledger owns every mutation of Product.StockActual. Documents never touch
// the counter directly; they debit and credit through here so the
// stock-never-negative invariant has a single enforcement point.
type Ledger struct {
	db       *gorm.DB
	strategy Strategy
}

// NewLedger builds a ledger bound to the provided DB handle.
func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db, strategy: StrategyGuarded}
}

// WithTx returns a ledger bound to the provided transaction.
func (l *Ledger) WithTx(tx *gorm.DB) *Ledger {
	if tx == nil {
		return l
	}
	return &Ledger{db: tx, strategy: l.strategy}
}

// WithStrategy overrides the concurrency strategy.
func (l *Ledger) WithStrategy(strategy Strategy) *Ledger {
	return &Ledger{db: l.db, strategy: strategy}
}

// FindProduct loads the product row or reports NotFound.
func (l *Ledger) FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := l.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "product %s not found", id)
		}
		return nil, err
	}
	return &product, nil
}

// CheckAvailable verifies the product can satisfy a debit of quantity for the
// given store: owned by the store, active, and sufficiently stocked.
func (l *Ledger) CheckAvailable(ctx context.Context, product *models.Product, storeID uuid.UUID, quantity int) error {
	if product == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	if product.StoreID != storeID {
		return pkgerrors.Newf(pkgerrors.CodeStateConflict, "product %q does not belong to this store", product.Name)
	}
	if product.Status != enums.ProductStatusActive {
		return pkgerrors.Newf(pkgerrors.CodeStateConflict, "product %q is inactive", product.Name)
	}
	if product.StockActual < quantity {
		return pkgerrors.Newf(pkgerrors.CodeStateConflict,
			"insufficient stock for %q: available %d, requested %d", product.Name, product.StockActual, quantity)
	}
	return nil
}

// Debit subtracts quantity from the product's stock. Under the guarded
// strategy the decrement and the availability check are one atomic statement;
// zero affected rows means the stock moved underneath us and the debit is
// refused without mutating anything.
func (l *Ledger) Debit(ctx context.Context, productID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "debit quantity must be positive")
	}

	if l.strategy == StrategyUnguarded {
		return l.debitUnguarded(ctx, productID, quantity)
	}

	res := l.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock_actual >= ?", productID, quantity).
		Updates(map[string]any{
			"stock_actual": gorm.Expr("stock_actual - ?", quantity),
			"updated_at":   time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return l.insufficientStock(ctx, productID, quantity)
	}
	return nil
}

// Credit adds quantity back to the product's stock.
func (l *Ledger) Credit(ctx context.Context, productID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "credit quantity must be positive")
	}

	res := l.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		Updates(map[string]any{
			"stock_actual": gorm.Expr("stock_actual + ?", quantity),
			"updated_at":   time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.Newf(pkgerrors.CodeNotFound, "product %s not found", productID)
	}
	return nil
}

// SetCostPrice records the latest price the store paid for the product.
func (l *Ledger) SetCostPrice(ctx context.Context, productID uuid.UUID, price decimal.Decimal) error {
	res := l.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		Updates(map[string]any{
			"cost_price": price,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.Newf(pkgerrors.CodeNotFound, "product %s not found", productID)
	}
	return nil
}

func (l *Ledger) debitUnguarded(ctx context.Context, productID uuid.UUID, quantity int) error {
	product, err := l.FindProduct(ctx, productID)
	if err != nil {
		return err
	}
	if product.StockActual < quantity {
		return pkgerrors.Newf(pkgerrors.CodeStateConflict,
			"insufficient stock for %q: available %d, requested %d", product.Name, product.StockActual, quantity)
	}
	return l.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		Updates(map[string]any{
			"stock_actual": gorm.Expr("stock_actual - ?", quantity),
			"updated_at":   time.Now().UTC(),
		}).Error
}

func (l *Ledger) insufficientStock(ctx context.Context, productID uuid.UUID, quantity int) error {
	product, err := l.FindProduct(ctx, productID)
	if err != nil {
		return err
	}
	return pkgerrors.Newf(pkgerrors.CodeStateConflict,
		"insufficient stock for %q: available %d, requested %d", product.Name, product.StockActual, quantity)
}
