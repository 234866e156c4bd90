package sales

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
	"github.com/tiendahub/tienda-backend/internal/stores"
	"github.com/tiendahub/tienda-backend/pkg/db"
	"github.com/tiendahub/tienda-backend/pkg/db/models"
	"github.com/tiendahub/tienda-backend/pkg/enums"
	pkgerrors "github.com/tiendahub/tienda-backend/pkg/errors"
	"github.com/tiendahub/tienda-backend/pkg/pagination"
)

type fixture struct {
	gdb     *gorm.DB
	svc     Service
	storeID uuid.UUID
	userID  uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dsn := "file:sales_" + uuid.NewString() + "?mode=memory&cache=shared"
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(
		&models.Store{}, &models.Product{}, &models.Sale{}, &models.SaleLine{},
	))

	storeID := uuid.New()
	require.NoError(t, gdb.Create(&models.Store{
		ID:      storeID,
		Name:    "Abarrotes La Central",
		OwnerID: uuid.New(),
		Status:  enums.StoreStatusActive,
	}).Error)

	svc, err := NewService(
		db.NewFromConn(gdb),
		NewRepository(gdb),
		inventory.NewLedger(gdb),
		stores.NewRepository(gdb),
	)
	require.NoError(t, err)

	return &fixture{gdb: gdb, svc: svc, storeID: storeID, userID: uuid.New()}
}

func (f *fixture) seedProduct(t *testing.T, name string, price decimal.Decimal, stock int) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:          uuid.New(),
		StoreID:     f.storeID,
		Code:        "PROD-" + uuid.NewString()[:8],
		Name:        name,
		SalePrice:   price,
		StockActual: stock,
		Status:      enums.ProductStatusActive,
		Unit:        enums.ProductUnitUnit,
	}
	require.NoError(t, f.gdb.Create(product).Error)
	return product
}

func (f *fixture) stockOf(t *testing.T, productID uuid.UUID) int {
	t.Helper()
	var product models.Product
	require.NoError(t, f.gdb.First(&product, "id = ?", productID).Error)
	return product.StockActual
}

func TestCreateMergesDuplicateLinesAndUsesCatalogPrice(t *testing.T) {
	f := newFixture(t)
	product := f.seedProduct(t, "Arroz 1kg", decimal.NewFromInt(25), 10)

	sale, err := f.svc.Create(context.Background(), f.storeID, f.userID, CreateSaleInput{
		Lines: []SaleLineInput{
			{ProductID: product.ID, Quantity: 3, UnitPrice: decimal.NewFromInt(1)},
			{ProductID: product.ID, Quantity: 4, UnitPrice: decimal.NewFromInt(999)},
		},
	})
	require.NoError(t, err)
	require.Len(t, sale.Lines, 1)
	require.Equal(t, 7, sale.Lines[0].Quantity)
	require.True(t, sale.Lines[0].UnitPrice.Equal(decimal.NewFromInt(25)))
	require.True(t, sale.Lines[0].Subtotal.Equal(decimal.NewFromInt(175)))
	require.True(t, sale.Total.Equal(decimal.NewFromInt(175)))
	require.Equal(t, enums.DocumentStatusActive, sale.Status)
	require.Equal(t, 3, f.stockOf(t, product.ID))
}

func TestCreateOversellFailsWithoutMutations(t *testing.T) {
	f := newFixture(t)
	product := f.seedProduct(t, "Arroz 1kg", decimal.NewFromInt(25), 10)

	_, err := f.svc.Create(context.Background(), f.storeID, f.userID, CreateSaleInput{
		Lines: []SaleLineInput{{ProductID: product.ID, Quantity: 11}},
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "available 10")
	require.Contains(t, err.Error(), "requested 11")

	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, pkgerrors.CodeStateConflict, appErr.Code())

	require.Equal(t, 10, f.stockOf(t, product.ID))
	var count int64
	require.NoError(t, f.gdb.Model(&models.Sale{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestCreateFailingLastLineLeavesAllStockUntouched(t *testing.T) {
	f := newFixture(t)
	rice := f.seedProduct(t, "Arroz 1kg", decimal.NewFromInt(25), 10)
	beans := f.seedProduct(t, "Frijol 1kg", decimal.NewFromInt(30), 1)

	_, err := f.svc.Create(context.Background(), f.storeID, f.userID, CreateSaleInput{
		Lines: []SaleLineInput{
			{ProductID: rice.ID, Quantity: 5},
			{ProductID: beans.ID, Quantity: 2},
		},
	})
	require.Error(t, err)
	require.Equal(t, 10, f.stockOf(t, rice.ID))
	require.Equal(t, 1, f.stockOf(t, beans.ID))
}

func TestCreateRejectsInactiveProduct(t *testing.T) {
	f := newFixture(t)
	product := f.seedProduct(t, "Arroz 1kg", decimal.NewFromInt(25), 10)
	require.NoError(t, f.gdb.Model(product).Update("status", enums.ProductStatusInactive).Error)

	_, err := f.svc.Create(context.Background(), f.storeID, f.userID, CreateSaleInput{
		Lines: []SaleLineInput{{ProductID: product.ID, Quantity: 1}},
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "inactive")
}

func TestCreateRejectsProductFromAnotherStore(t *testing.T) {
	f := newFixture(t)
	product := f.seedProduct(t, "Arroz 1kg", decimal.NewFromInt(25), 10)
	require.NoError(t, f.gdb.Model(product).Update("store_id", uuid.New()).Error)

	_, err := f.svc.Create(context.Background(), f.storeID, f.userID, CreateSaleInput{
		Lines: []SaleLineInput{{ProductID: product.ID, Quantity: 1}},
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "does not belong")
}

func TestCancelRestoresStockAndAppendsAudit(t *testing.T) {
	f := newFixture(t)
	product := f.seedProduct(t, "Arroz 1kg", decimal.NewFromInt(25), 10)

	sale, err := f.svc.Create(context.Background(), f.storeID, f.userID, CreateSaleInput{
		Lines: []SaleLineInput{{ProductID: product.ID, Quantity: 7}},
	})
	require.NoError(t, err)
	require.Equal(t, 3, f.stockOf(t, product.ID))

	cancelled, err := f.svc.Cancel(context.Background(), f.storeID, sale.ID, f.userID, "customer returned the ticket")
	require.NoError(t, err)
	require.Equal(t, enums.DocumentStatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.Notes)
	require.Contains(t, *cancelled.Notes, "[CANCELLED] customer returned the ticket")
	require.Equal(t, 10, f.stockOf(t, product.ID))
}

func TestCancelTwiceFails(t *testing.T) {
	f := newFixture(t)
	product := f.seedProduct(t, "Arroz 1kg", decimal.NewFromInt(25), 10)

	sale, err := f.svc.Create(context.Background(), f.storeID, f.userID, CreateSaleInput{
		Lines: []SaleLineInput{{ProductID: product.ID, Quantity: 2}},
	})
	require.NoError(t, err)

	_, err = f.svc.Cancel(context.Background(), f.storeID, sale.ID, f.userID, "first")
	require.NoError(t, err)

	_, err = f.svc.Cancel(context.Background(), f.storeID, sale.ID, f.userID, "second")
	require.Error(t, err)

	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, pkgerrors.CodeStateConflict, appErr.Code())

	// Stock is credited exactly once.
	require.Equal(t, 10, f.stockOf(t, product.ID))
}

// Cancellation credits every line in full and does not subtract quantities
// already returned, so the combined paths can leave stock above the
// pre-sale level.
func TestCancelAfterReturnCreditsFullQuantity(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.gdb.AutoMigrate(&models.Return{}))
	product := f.seedProduct(t, "Arroz 1kg", decimal.NewFromInt(25), 10)

	sale, err := f.svc.Create(context.Background(), f.storeID, f.userID, CreateSaleInput{
		Lines: []SaleLineInput{{ProductID: product.ID, Quantity: 5}},
	})
	require.NoError(t, err)
	require.Equal(t, 5, f.stockOf(t, product.ID))

	// Two units already went back on the shelf through a return.
	ret := &models.Return{
		ID:         uuid.New(),
		SaleID:     sale.ID,
		ProductID:  product.ID,
		UserID:     f.userID,
		Quantity:   2,
		ReturnedAt: time.Now().UTC(),
	}
	require.NoError(t, f.gdb.Create(ret).Error)
	require.NoError(t, f.gdb.Model(&models.Product{}).
		Where("id = ?", product.ID).
		Update("stock_actual", gorm.Expr("stock_actual + ?", 2)).Error)
	require.Equal(t, 7, f.stockOf(t, product.ID))

	_, err = f.svc.Cancel(context.Background(), f.storeID, sale.ID, f.userID, "defective batch")
	require.NoError(t, err)
	require.Equal(t, 12, f.stockOf(t, product.ID))
}

func TestUpdateMetadataMarksEditedAndKeepsStock(t *testing.T) {
	f := newFixture(t)
	product := f.seedProduct(t, "Arroz 1kg", decimal.NewFromInt(25), 10)

	sale, err := f.svc.Create(context.Background(), f.storeID, f.userID, CreateSaleInput{
		Lines: []SaleLineInput{{ProductID: product.ID, Quantity: 4}},
	})
	require.NoError(t, err)

	method := "card"
	updated, err := f.svc.UpdateMetadata(context.Background(), f.storeID, sale.ID, f.userID, UpdateSaleInput{
		PaymentMethod: &method,
	})
	require.NoError(t, err)
	require.Equal(t, enums.DocumentStatusEdited, updated.Status)
	require.NotNil(t, updated.PaymentMethod)
	require.Equal(t, "card", *updated.PaymentMethod)
	require.Equal(t, 6, f.stockOf(t, product.ID))
	require.True(t, updated.Total.Equal(sale.Total))
}

func TestUpdateMetadataRejectsCancelledSale(t *testing.T) {
	f := newFixture(t)
	product := f.seedProduct(t, "Arroz 1kg", decimal.NewFromInt(25), 10)

	sale, err := f.svc.Create(context.Background(), f.storeID, f.userID, CreateSaleInput{
		Lines: []SaleLineInput{{ProductID: product.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = f.svc.Cancel(context.Background(), f.storeID, sale.ID, f.userID, "wrong ticket")
	require.NoError(t, err)

	notes := "new notes"
	_, err = f.svc.UpdateMetadata(context.Background(), f.storeID, sale.ID, f.userID, UpdateSaleInput{Notes: &notes})
	require.Error(t, err)

	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, pkgerrors.CodeStateConflict, appErr.Code())
}

func TestListByStoreReturnsNewestFirst(t *testing.T) {
	f := newFixture(t)
	product := f.seedProduct(t, "Arroz 1kg", decimal.NewFromInt(25), 100)

	for i := 0; i < 3; i++ {
		_, err := f.svc.Create(context.Background(), f.storeID, f.userID, CreateSaleInput{
			Lines: []SaleLineInput{{ProductID: product.ID, Quantity: 1}},
		})
		require.NoError(t, err)
	}

	page, err := f.svc.ListByStore(context.Background(), f.storeID, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	require.Empty(t, page.NextCursor)
	for i := 1; i < len(page.Items); i++ {
		require.False(t, page.Items[i].SoldAt.After(page.Items[i-1].SoldAt))
	}
}

func TestListByStorePaginatesWithCursor(t *testing.T) {
	f := newFixture(t)
	product := f.seedProduct(t, "Arroz 1kg", decimal.NewFromInt(25), 100)

	for i := 0; i < 3; i++ {
		_, err := f.svc.Create(context.Background(), f.storeID, f.userID, CreateSaleInput{
			Lines: []SaleLineInput{{ProductID: product.ID, Quantity: 1}},
		})
		require.NoError(t, err)
	}

	first, err := f.svc.ListByStore(context.Background(), f.storeID, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first.Items, 2)
	require.NotEmpty(t, first.NextCursor)

	second, err := f.svc.ListByStore(context.Background(), f.storeID, pagination.Params{Limit: 2, Cursor: first.NextCursor})
	require.NoError(t, err)
	require.Len(t, second.Items, 1)
	require.Empty(t, second.NextCursor)

	seen := map[uuid.UUID]bool{}
	for _, dto := range append(first.Items, second.Items...) {
		require.False(t, seen[dto.ID], "sale %s appeared on two pages", dto.ID)
		seen[dto.ID] = true
	}
}

func TestListByStoreRejectsGarbageCursor(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.ListByStore(context.Background(), f.storeID, pagination.Params{Cursor: "not-a-cursor"})
	require.Error(t, err)

	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, pkgerrors.CodeValidation, appErr.Code())
}

func TestCreateUnknownStore(t *testing.T) {
	f := newFixture(t)
	product := f.seedProduct(t, "Arroz 1kg", decimal.NewFromInt(25), 10)

	_, err := f.svc.Create(context.Background(), uuid.New(), f.userID, CreateSaleInput{
		Lines: []SaleLineInput{{ProductID: product.ID, Quantity: 1}},
	})
	require.Error(t, err)

	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, pkgerrors.CodeNotFound, appErr.Code())
}
