package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tiendahub/tienda-backend/pkg/enums"
)

// Product is the shared inventory row every document type mutates.
// StockActual must never rest below zero after a committed operation; the
// inventory ledger enforces that with a conditional decrement.
type Product struct {
	ID          uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	StoreID     uuid.UUID           `gorm:"column:store_id;type:uuid;not null;index"`
	CategoryID  *uuid.UUID          `gorm:"column:category_id;type:uuid"`
	Code        string              `gorm:"column:code;not null"`
	Name        string              `gorm:"column:name;not null"`
	Description *string             `gorm:"column:description"`
	SalePrice   decimal.Decimal     `gorm:"column:sale_price;type:numeric(12,2);not null"`
	CostPrice   *decimal.Decimal    `gorm:"column:cost_price;type:numeric(12,2)"`
	StockActual int                 `gorm:"column:stock_actual;not null;default:0"`
	StockMin    int                 `gorm:"column:stock_min;not null;default:0"`
	Unit        enums.ProductUnit   `gorm:"column:unit;type:product_unit;not null;default:'unit'"`
	Status      enums.ProductStatus `gorm:"column:status;type:product_status;not null;default:'active'"`
	Category    *Category           `gorm:"foreignKey:CategoryID"`
	CreatedAt   time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
