package product

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tiendahub/tienda-backend/pkg/db/models"
	"github.com/tiendahub/tienda-backend/pkg/enums"
)

// ProductDTO is the API-facing projection of a product.
type ProductDTO struct {
	ID          uuid.UUID           `json:"id"`
	StoreID     uuid.UUID           `json:"store_id"`
	CategoryID  *uuid.UUID          `json:"category_id,omitempty"`
	Code        string              `json:"code"`
	Name        string              `json:"name"`
	Description *string             `json:"description,omitempty"`
	SalePrice   decimal.Decimal     `json:"sale_price"`
	CostPrice   *decimal.Decimal    `json:"cost_price,omitempty"`
	StockActual int                 `json:"stock_actual"`
	StockMin    int                 `json:"stock_min"`
	Unit        enums.ProductUnit   `json:"unit"`
	Status      enums.ProductStatus `json:"status"`
	LowStock    bool                `json:"low_stock"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// FromModel maps a product row to its DTO.
func FromModel(product *models.Product) *ProductDTO {
	if product == nil {
		return nil
	}
	return &ProductDTO{
		ID:          product.ID,
		StoreID:     product.StoreID,
		CategoryID:  product.CategoryID,
		Code:        product.Code,
		Name:        product.Name,
		Description: product.Description,
		SalePrice:   product.SalePrice,
		CostPrice:   product.CostPrice,
		StockActual: product.StockActual,
		StockMin:    product.StockMin,
		Unit:        product.Unit,
		Status:      product.Status,
		LowStock:    product.StockActual <= product.StockMin,
		CreatedAt:   product.CreatedAt,
		UpdatedAt:   product.UpdatedAt,
	}
}

// CreateProductInput captures the fields accepted when registering a product.
type CreateProductInput struct {
	CategoryID  *uuid.UUID
	Code        *string
	Name        string
	Description *string
	SalePrice   decimal.Decimal
	StockActual int
	StockMin    int
	Unit        *enums.ProductUnit
}

// UpdateProductInput captures the allowed product fields for mutation. Nil
// fields are left untouched. Stock is never mutated here; only the inventory
// ledger moves stock.
type UpdateProductInput struct {
	CategoryID  *uuid.UUID
	Name        *string
	Description *string
	SalePrice   *decimal.Decimal
	StockMin    *int
	Unit        *enums.ProductUnit
}
