package returns

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/tiendahub/tienda-backend/internal/inventory"
	"github.com/tiendahub/tienda-backend/pkg/db"
	"github.com/tiendahub/tienda-backend/pkg/db/models"
	"github.com/tiendahub/tienda-backend/pkg/enums"
	pkgerrors "github.com/tiendahub/tienda-backend/pkg/errors"
)

type fixture struct {
	gdb     *gorm.DB
	svc     Service
	storeID uuid.UUID
	userID  uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dsn := "file:returns_" + uuid.NewString() + "?mode=memory&cache=shared"
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(
		&models.Product{}, &models.Sale{}, &models.SaleLine{}, &models.Return{},
	))

	svc, err := NewService(db.NewFromConn(gdb), NewRepository(gdb), inventory.NewLedger(gdb))
	require.NoError(t, err)

	return &fixture{gdb: gdb, svc: svc, storeID: uuid.New(), userID: uuid.New()}
}

// seedSale creates a product with the given remaining stock and a sale that
// sold the given quantity of it.
func (f *fixture) seedSale(t *testing.T, soldQty, remainingStock int) (*models.Product, *models.Sale) {
	t.Helper()
	product := &models.Product{
		ID:          uuid.New(),
		StoreID:     f.storeID,
		Code:        "PROD-" + uuid.NewString()[:8],
		Name:        "Arroz 1kg",
		SalePrice:   decimal.NewFromInt(25),
		StockActual: remainingStock,
		Status:      enums.ProductStatusActive,
		Unit:        enums.ProductUnitUnit,
	}
	require.NoError(t, f.gdb.Create(product).Error)

	unitPrice := decimal.NewFromInt(25)
	subtotal := unitPrice.Mul(decimal.NewFromInt(int64(soldQty)))
	sale := &models.Sale{
		ID:      uuid.New(),
		StoreID: f.storeID,
		UserID:  f.userID,
		SoldAt:  time.Now().UTC(),
		Total:   subtotal,
		Status:  enums.DocumentStatusActive,
		Lines: []models.SaleLine{{
			ID:        uuid.New(),
			ProductID: product.ID,
			Quantity:  soldQty,
			UnitPrice: unitPrice,
			Subtotal:  subtotal,
		}},
	}
	require.NoError(t, f.gdb.Create(sale).Error)
	return product, sale
}

func (f *fixture) stockOf(t *testing.T, productID uuid.UUID) int {
	t.Helper()
	var product models.Product
	require.NoError(t, f.gdb.First(&product, "id = ?", productID).Error)
	return product.StockActual
}

func TestCreateRestocksAndComputesAmount(t *testing.T) {
	f := newFixture(t)
	product, sale := f.seedSale(t, 5, 10)

	ret, err := f.svc.Create(context.Background(), f.storeID, f.userID, CreateReturnInput{
		SaleID:    sale.ID,
		ProductID: product.ID,
		Quantity:  2,
	})
	require.NoError(t, err)
	require.Equal(t, 2, ret.Quantity)
	require.NotNil(t, ret.AmountPaid)
	require.True(t, ret.AmountPaid.Equal(decimal.NewFromInt(50)))
	require.Equal(t, 12, f.stockOf(t, product.ID))
}

func TestCreateHonoursCallerRefundAmount(t *testing.T) {
	f := newFixture(t)
	product, sale := f.seedSale(t, 5, 10)

	// A restocking fee was withheld from the computed 50.
	amount := decimal.NewFromInt(45)
	ret, err := f.svc.Create(context.Background(), f.storeID, f.userID, CreateReturnInput{
		SaleID:    sale.ID,
		ProductID: product.ID,
		Quantity:  2,
		Amount:    &amount,
	})
	require.NoError(t, err)
	require.NotNil(t, ret.AmountPaid)
	require.True(t, ret.AmountPaid.Equal(decimal.NewFromInt(45)))
	require.Equal(t, 12, f.stockOf(t, product.ID))
}

func TestCreateRejectsNegativeRefundAmount(t *testing.T) {
	f := newFixture(t)
	product, sale := f.seedSale(t, 5, 10)

	amount := decimal.NewFromInt(-1)
	_, err := f.svc.Create(context.Background(), f.storeID, f.userID, CreateReturnInput{
		SaleID:    sale.ID,
		ProductID: product.ID,
		Quantity:  1,
		Amount:    &amount,
	})
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, pkgerrors.CodeValidation, appErr.Code())
	require.Equal(t, 10, f.stockOf(t, product.ID))
}

func TestCreateRejectsOverReturn(t *testing.T) {
	f := newFixture(t)
	product, sale := f.seedSale(t, 5, 10)

	_, err := f.svc.Create(context.Background(), f.storeID, f.userID, CreateReturnInput{
		SaleID:    sale.ID,
		ProductID: product.ID,
		Quantity:  6,
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "available 5")
	require.Contains(t, err.Error(), "requested 6")
	require.Equal(t, 10, f.stockOf(t, product.ID))

	var count int64
	require.NoError(t, f.gdb.Model(&models.Return{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestCreateAccountsForPriorReturns(t *testing.T) {
	f := newFixture(t)
	product, sale := f.seedSale(t, 5, 10)

	_, err := f.svc.Create(context.Background(), f.storeID, f.userID, CreateReturnInput{
		SaleID:    sale.ID,
		ProductID: product.ID,
		Quantity:  3,
	})
	require.NoError(t, err)

	_, err = f.svc.Create(context.Background(), f.storeID, f.userID, CreateReturnInput{
		SaleID:    sale.ID,
		ProductID: product.ID,
		Quantity:  3,
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "available 2")

	// The second, partial-fitting return still works.
	_, err = f.svc.Create(context.Background(), f.storeID, f.userID, CreateReturnInput{
		SaleID:    sale.ID,
		ProductID: product.ID,
		Quantity:  2,
	})
	require.NoError(t, err)
	require.Equal(t, 15, f.stockOf(t, product.ID))
}

func TestCreateRejectsProductNotOnSale(t *testing.T) {
	f := newFixture(t)
	_, sale := f.seedSale(t, 5, 10)

	other := &models.Product{
		ID:          uuid.New(),
		StoreID:     f.storeID,
		Code:        "PROD-" + uuid.NewString()[:8],
		Name:        "Frijol 1kg",
		SalePrice:   decimal.NewFromInt(30),
		StockActual: 4,
		Status:      enums.ProductStatusActive,
		Unit:        enums.ProductUnitUnit,
	}
	require.NoError(t, f.gdb.Create(other).Error)

	_, err := f.svc.Create(context.Background(), f.storeID, f.userID, CreateReturnInput{
		SaleID:    sale.ID,
		ProductID: other.ID,
		Quantity:  1,
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "not part of this sale")
	require.Equal(t, 4, f.stockOf(t, other.ID))
}

func TestCreateRejectsCancelledSale(t *testing.T) {
	f := newFixture(t)
	product, sale := f.seedSale(t, 5, 10)
	require.NoError(t, f.gdb.Model(&models.Sale{}).
		Where("id = ?", sale.ID).
		Update("status", enums.DocumentStatusCancelled).Error)

	_, err := f.svc.Create(context.Background(), f.storeID, f.userID, CreateReturnInput{
		SaleID:    sale.ID,
		ProductID: product.ID,
		Quantity:  1,
	})
	require.Error(t, err)

	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, pkgerrors.CodeStateConflict, appErr.Code())
}

func TestCreateRejectsSaleFromAnotherStore(t *testing.T) {
	f := newFixture(t)
	product, sale := f.seedSale(t, 5, 10)

	_, err := f.svc.Create(context.Background(), uuid.New(), f.userID, CreateReturnInput{
		SaleID:    sale.ID,
		ProductID: product.ID,
		Quantity:  1,
	})
	require.Error(t, err)

	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, pkgerrors.CodeNotFound, appErr.Code())
}

func TestListBySale(t *testing.T) {
	f := newFixture(t)
	product, sale := f.seedSale(t, 5, 10)

	for i := 0; i < 2; i++ {
		_, err := f.svc.Create(context.Background(), f.storeID, f.userID, CreateReturnInput{
			SaleID:    sale.ID,
			ProductID: product.ID,
			Quantity:  1,
		})
		require.NoError(t, err)
	}

	rows, err := f.svc.ListBySale(context.Background(), f.storeID, sale.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
}
