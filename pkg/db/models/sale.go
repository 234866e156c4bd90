package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tiendahub/tienda-backend/pkg/enums"
)

// Sale is a sales invoice header. Lines live and die with the header.
type Sale struct {
	ID            uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	StoreID       uuid.UUID            `gorm:"column:store_id;type:uuid;not null;index"`
	UserID        uuid.UUID            `gorm:"column:user_id;type:uuid;not null"`
	SoldAt        time.Time            `gorm:"column:sold_at;not null"`
	Total         decimal.Decimal      `gorm:"column:total;type:numeric(12,2);not null"`
	PaymentMethod *string              `gorm:"column:payment_method"`
	Notes         *string              `gorm:"column:notes"`
	Status        enums.DocumentStatus `gorm:"column:status;type:document_status;not null;default:'active'"`
	Lines         []SaleLine           `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
	User          *User                `gorm:"foreignKey:UserID"`
	Store         *Store               `gorm:"foreignKey:StoreID"`
	CreatedAt     time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

// SaleLine snapshots one aggregated product position on a sale.
// UnitPrice is the catalog price at sale time, never the caller's price.
type SaleLine struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	SaleID    uuid.UUID       `gorm:"column:sale_id;type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	Quantity  int             `gorm:"column:quantity;not null"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Subtotal  decimal.Decimal `gorm:"column:subtotal;type:numeric(12,2);not null"`
	Product   *Product        `gorm:"foreignKey:ProductID"`
}
