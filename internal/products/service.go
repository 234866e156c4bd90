package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tiendahub/tienda-backend/pkg/db"
	"github.com/tiendahub/tienda-backend/pkg/db/models"
	"github.com/tiendahub/tienda-backend/pkg/enums"
	pkgerrors "github.com/tiendahub/tienda-backend/pkg/errors"
)

// codeGenAttempts bounds retries when a generated code collides within the store.
const codeGenAttempts = 5

type productRepository interface {
	CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error)
	UpdateProduct(ctx context.Context, product *models.Product) (*models.Product, error)
	FindByIDInStore(ctx context.Context, id, storeID uuid.UUID) (*models.Product, error)
	CodeExists(ctx context.Context, storeID uuid.UUID, code string) (bool, error)
	FindCategoryInStore(ctx context.Context, id, storeID uuid.UUID) (*models.Category, error)
	ListByStore(ctx context.Context, storeID uuid.UUID) ([]models.Product, error)
	SearchByStore(ctx context.Context, storeID uuid.UUID, term string) ([]models.Product, error)
	ListLowStock(ctx context.Context, storeID uuid.UUID) ([]models.Product, error)
}

// Service exposes product catalog operations. Stock movement is out of its
// reach; documents mutate stock through the inventory ledger.
type Service interface {
	Create(ctx context.Context, storeID uuid.UUID, input CreateProductInput) (*ProductDTO, error)
	Update(ctx context.Context, storeID, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	Deactivate(ctx context.Context, storeID, productID uuid.UUID) error
	GetByID(ctx context.Context, storeID, productID uuid.UUID) (*ProductDTO, error)
	ListByStore(ctx context.Context, storeID uuid.UUID) ([]ProductDTO, error)
	Search(ctx context.Context, storeID uuid.UUID, term string) ([]ProductDTO, error)
	ListLowStock(ctx context.Context, storeID uuid.UUID) ([]ProductDTO, error)
}

type service struct {
	repo productRepository
}

// NewService builds a product service with the provided repository.
func NewService(repo productRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, storeID uuid.UUID, input CreateProductInput) (*ProductDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if input.SalePrice.LessThanOrEqual(decimal.Zero) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sale price must be positive")
	}
	if input.StockActual < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "initial stock cannot be negative")
	}
	if input.StockMin < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "minimum stock cannot be negative")
	}

	unit := enums.ProductUnitUnit
	if input.Unit != nil {
		if !input.Unit.IsValid() {
			return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid unit %q", *input.Unit)
		}
		unit = *input.Unit
	}

	if input.CategoryID != nil {
		if _, err := s.repo.FindCategoryInStore(ctx, *input.CategoryID, storeID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "category does not belong to this store")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
		}
	}

	code, err := s.resolveCode(ctx, storeID, input.Code)
	if err != nil {
		return nil, err
	}

	product := &models.Product{
		ID:          uuid.New(),
		StoreID:     storeID,
		CategoryID:  input.CategoryID,
		Code:        code,
		Name:        name,
		Description: input.Description,
		SalePrice:   input.SalePrice,
		StockActual: input.StockActual,
		StockMin:    input.StockMin,
		Unit:        unit,
		Status:      enums.ProductStatusActive,
	}
	if _, err := s.repo.CreateProduct(ctx, product); err != nil {
		// CodeExists raced with a concurrent insert; the unique index has
		// the final word.
		if db.IsUniqueViolation(err, "idx_products_store_code") {
			return nil, pkgerrors.Newf(pkgerrors.CodeConflict, "product code %q already exists in this store", code)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return FromModel(product), nil
}

func (s *service) resolveCode(ctx context.Context, storeID uuid.UUID, raw *string) (string, error) {
	if raw != nil {
		code := strings.TrimSpace(*raw)
		if code == "" {
			return "", pkgerrors.New(pkgerrors.CodeValidation, "product code cannot be empty")
		}
		taken, err := s.repo.CodeExists(ctx, storeID, code)
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check product code")
		}
		if taken {
			return "", pkgerrors.Newf(pkgerrors.CodeConflict, "product code %q already exists in this store", code)
		}
		return code, nil
	}

	for attempt := 0; attempt < codeGenAttempts; attempt++ {
		code := generateCode()
		taken, err := s.repo.CodeExists(ctx, storeID, code)
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check product code")
		}
		if !taken {
			return code, nil
		}
	}
	return "", pkgerrors.New(pkgerrors.CodeInternal, "could not generate a unique product code")
}

func generateCode() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return "PROD-" + raw[:8]
}

func (s *service) Update(ctx context.Context, storeID, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	product, err := s.loadOwned(ctx, storeID, productID)
	if err != nil {
		return nil, err
	}

	if input.CategoryID != nil {
		if _, err := s.repo.FindCategoryInStore(ctx, *input.CategoryID, storeID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "category does not belong to this store")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
		}
		product.CategoryID = input.CategoryID
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name cannot be empty")
		}
		product.Name = name
	}
	if input.Description != nil {
		product.Description = input.Description
	}
	if input.SalePrice != nil {
		if input.SalePrice.LessThanOrEqual(decimal.Zero) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "sale price must be positive")
		}
		product.SalePrice = *input.SalePrice
	}
	if input.StockMin != nil {
		if *input.StockMin < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "minimum stock cannot be negative")
		}
		product.StockMin = *input.StockMin
	}
	if input.Unit != nil {
		if !input.Unit.IsValid() {
			return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid unit %q", *input.Unit)
		}
		product.Unit = *input.Unit
	}

	if _, err := s.repo.UpdateProduct(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	return FromModel(product), nil
}

func (s *service) Deactivate(ctx context.Context, storeID, productID uuid.UUID) error {
	product, err := s.loadOwned(ctx, storeID, productID)
	if err != nil {
		return err
	}
	if product.Status == enums.ProductStatusInactive {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "product is already inactive")
	}

	product.Status = enums.ProductStatusInactive
	if _, err := s.repo.UpdateProduct(ctx, product); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate product")
	}
	return nil
}

func (s *service) GetByID(ctx context.Context, storeID, productID uuid.UUID) (*ProductDTO, error) {
	product, err := s.loadOwned(ctx, storeID, productID)
	if err != nil {
		return nil, err
	}
	return FromModel(product), nil
}

func (s *service) ListByStore(ctx context.Context, storeID uuid.UUID) ([]ProductDTO, error) {
	rows, err := s.repo.ListByStore(ctx, storeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return toDTOs(rows), nil
}

func (s *service) Search(ctx context.Context, storeID uuid.UUID, term string) ([]ProductDTO, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "search term required")
	}
	rows, err := s.repo.SearchByStore(ctx, storeID, term)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "search products")
	}
	return toDTOs(rows), nil
}

func (s *service) ListLowStock(ctx context.Context, storeID uuid.UUID) ([]ProductDTO, error) {
	rows, err := s.repo.ListLowStock(ctx, storeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list low-stock products")
	}
	return toDTOs(rows), nil
}

func (s *service) loadOwned(ctx context.Context, storeID, productID uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByIDInStore(ctx, productID, storeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func toDTOs(rows []models.Product) []ProductDTO {
	out := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
