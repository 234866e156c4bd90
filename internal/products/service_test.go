package product

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tiendahub/tienda-backend/pkg/db/models"
	"github.com/tiendahub/tienda-backend/pkg/enums"
	pkgerrors "github.com/tiendahub/tienda-backend/pkg/errors"
)

type stubProductRepo struct {
	products   map[uuid.UUID]*models.Product
	categories map[uuid.UUID]*models.Category
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{
		products:   map[uuid.UUID]*models.Product{},
		categories: map[uuid.UUID]*models.Category{},
	}
}

func (r *stubProductRepo) CreateProduct(_ context.Context, product *models.Product) (*models.Product, error) {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	cpy := *product
	r.products[product.ID] = &cpy
	return product, nil
}

func (r *stubProductRepo) UpdateProduct(_ context.Context, product *models.Product) (*models.Product, error) {
	cpy := *product
	r.products[product.ID] = &cpy
	return product, nil
}

func (r *stubProductRepo) FindByIDInStore(_ context.Context, id, storeID uuid.UUID) (*models.Product, error) {
	product, ok := r.products[id]
	if !ok || product.StoreID != storeID {
		return nil, gorm.ErrRecordNotFound
	}
	cpy := *product
	return &cpy, nil
}

func (r *stubProductRepo) CodeExists(_ context.Context, storeID uuid.UUID, code string) (bool, error) {
	for _, product := range r.products {
		if product.StoreID == storeID && product.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubProductRepo) FindCategoryInStore(_ context.Context, id, storeID uuid.UUID) (*models.Category, error) {
	category, ok := r.categories[id]
	if !ok || category.StoreID != storeID {
		return nil, gorm.ErrRecordNotFound
	}
	cpy := *category
	return &cpy, nil
}

func (r *stubProductRepo) ListByStore(_ context.Context, storeID uuid.UUID) ([]models.Product, error) {
	var out []models.Product
	for _, product := range r.products {
		if product.StoreID == storeID {
			out = append(out, *product)
		}
	}
	return out, nil
}

func (r *stubProductRepo) SearchByStore(_ context.Context, storeID uuid.UUID, term string) ([]models.Product, error) {
	term = strings.ToLower(term)
	var out []models.Product
	for _, product := range r.products {
		if product.StoreID != storeID || product.Status != enums.ProductStatusActive {
			continue
		}
		if strings.Contains(strings.ToLower(product.Name), term) ||
			strings.Contains(strings.ToLower(product.Code), term) {
			out = append(out, *product)
		}
	}
	return out, nil
}

func (r *stubProductRepo) ListLowStock(_ context.Context, storeID uuid.UUID) ([]models.Product, error) {
	var out []models.Product
	for _, product := range r.products {
		if product.StoreID == storeID &&
			product.Status == enums.ProductStatusActive &&
			product.StockActual <= product.StockMin {
			out = append(out, *product)
		}
	}
	return out, nil
}

func TestCreateGeneratesCode(t *testing.T) {
	svc, err := NewService(newStubProductRepo())
	require.NoError(t, err)

	dto, err := svc.Create(context.Background(), uuid.New(), CreateProductInput{
		Name:      "Arroz 1kg",
		SalePrice: decimal.NewFromInt(25),
	})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(dto.Code, "PROD-"))
	require.Len(t, dto.Code, len("PROD-")+8)
	require.Equal(t, enums.ProductStatusActive, dto.Status)
	require.Equal(t, enums.ProductUnitUnit, dto.Unit)
}

func TestCreateRejectsDuplicateCodeInStore(t *testing.T) {
	repo := newStubProductRepo()
	svc, err := NewService(repo)
	require.NoError(t, err)

	storeID := uuid.New()
	code := "PROD-ARROZ001"
	_, err = svc.Create(context.Background(), storeID, CreateProductInput{
		Name:      "Arroz 1kg",
		Code:      &code,
		SalePrice: decimal.NewFromInt(25),
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), storeID, CreateProductInput{
		Name:      "Arroz 2kg",
		Code:      &code,
		SalePrice: decimal.NewFromInt(45),
	})
	require.Error(t, err)

	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, pkgerrors.CodeConflict, appErr.Code())

	// Same code in a different store is fine.
	_, err = svc.Create(context.Background(), uuid.New(), CreateProductInput{
		Name:      "Arroz 1kg",
		Code:      &code,
		SalePrice: decimal.NewFromInt(25),
	})
	require.NoError(t, err)
}

func TestCreateRejectsForeignCategory(t *testing.T) {
	repo := newStubProductRepo()
	svc, err := NewService(repo)
	require.NoError(t, err)

	otherStore := uuid.New()
	category := &models.Category{ID: uuid.New(), StoreID: otherStore, Name: "Abarrotes"}
	repo.categories[category.ID] = category

	_, err = svc.Create(context.Background(), uuid.New(), CreateProductInput{
		Name:       "Arroz 1kg",
		CategoryID: &category.ID,
		SalePrice:  decimal.NewFromInt(25),
	})
	require.Error(t, err)

	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, pkgerrors.CodeStateConflict, appErr.Code())
}

func TestCreateValidation(t *testing.T) {
	svc, err := NewService(newStubProductRepo())
	require.NoError(t, err)

	cases := []struct {
		name  string
		input CreateProductInput
	}{
		{"empty name", CreateProductInput{Name: "  ", SalePrice: decimal.NewFromInt(1)}},
		{"zero price", CreateProductInput{Name: "Arroz", SalePrice: decimal.Zero}},
		{"negative stock", CreateProductInput{Name: "Arroz", SalePrice: decimal.NewFromInt(1), StockActual: -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), uuid.New(), tc.input)
			require.Error(t, err)

			appErr := pkgerrors.As(err)
			require.NotNil(t, appErr)
			require.Equal(t, pkgerrors.CodeValidation, appErr.Code())
		})
	}
}

func TestUpdateNeverTouchesStock(t *testing.T) {
	repo := newStubProductRepo()
	svc, err := NewService(repo)
	require.NoError(t, err)

	storeID := uuid.New()
	created, err := svc.Create(context.Background(), storeID, CreateProductInput{
		Name:        "Arroz 1kg",
		SalePrice:   decimal.NewFromInt(25),
		StockActual: 10,
	})
	require.NoError(t, err)

	price := decimal.NewFromInt(30)
	updated, err := svc.Update(context.Background(), storeID, created.ID, UpdateProductInput{SalePrice: &price})
	require.NoError(t, err)
	require.True(t, updated.SalePrice.Equal(price))
	require.Equal(t, 10, updated.StockActual)
}

func TestDeactivateIsNotRepeatable(t *testing.T) {
	repo := newStubProductRepo()
	svc, err := NewService(repo)
	require.NoError(t, err)

	storeID := uuid.New()
	created, err := svc.Create(context.Background(), storeID, CreateProductInput{
		Name:      "Arroz 1kg",
		SalePrice: decimal.NewFromInt(25),
	})
	require.NoError(t, err)

	require.NoError(t, svc.Deactivate(context.Background(), storeID, created.ID))

	err = svc.Deactivate(context.Background(), storeID, created.ID)
	require.Error(t, err)

	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, pkgerrors.CodeStateConflict, appErr.Code())
}

func TestGetByIDScopedToStore(t *testing.T) {
	repo := newStubProductRepo()
	svc, err := NewService(repo)
	require.NoError(t, err)

	storeID := uuid.New()
	created, err := svc.Create(context.Background(), storeID, CreateProductInput{
		Name:      "Arroz 1kg",
		SalePrice: decimal.NewFromInt(25),
	})
	require.NoError(t, err)

	_, err = svc.GetByID(context.Background(), uuid.New(), created.ID)
	require.Error(t, err)

	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, pkgerrors.CodeNotFound, appErr.Code())
}

func TestLowStockFlag(t *testing.T) {
	repo := newStubProductRepo()
	svc, err := NewService(repo)
	require.NoError(t, err)

	storeID := uuid.New()
	created, err := svc.Create(context.Background(), storeID, CreateProductInput{
		Name:        "Arroz 1kg",
		SalePrice:   decimal.NewFromInt(25),
		StockActual: 2,
		StockMin:    5,
	})
	require.NoError(t, err)
	require.True(t, created.LowStock)

	rows, err := svc.ListLowStock(context.Background(), storeID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, created.ID, rows[0].ID)
}

func TestSearchRequiresTerm(t *testing.T) {
	svc, err := NewService(newStubProductRepo())
	require.NoError(t, err)

	_, err = svc.Search(context.Background(), uuid.New(), "   ")
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, pkgerrors.CodeValidation, appErr.Code())
}

func TestSearchMatchesNameAndCode(t *testing.T) {
	repo := newStubProductRepo()
	svc, err := NewService(repo)
	require.NoError(t, err)

	storeID := uuid.New()
	arroz, err := svc.Create(context.Background(), storeID, CreateProductInput{
		Name:      "Arroz 1kg",
		SalePrice: decimal.NewFromInt(25),
	})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), storeID, CreateProductInput{
		Name:      "Frijol 1kg",
		SalePrice: decimal.NewFromInt(30),
	})
	require.NoError(t, err)

	rows, err := svc.Search(context.Background(), storeID, "ARROZ")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, arroz.ID, rows[0].ID)

	rows, err = svc.Search(context.Background(), storeID, arroz.Code)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, arroz.ID, rows[0].ID)
}
