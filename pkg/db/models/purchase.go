package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tiendahub/tienda-backend/pkg/enums"
)

// Purchase is a supplier invoice header. Its line set may be fully replaced
// while CanEdit is set and the edit deadline has not passed.
type Purchase struct {
	ID            uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	StoreID       uuid.UUID            `gorm:"column:store_id;type:uuid;not null;index"`
	SupplierID    *uuid.UUID           `gorm:"column:supplier_id;type:uuid"`
	UserID        uuid.UUID            `gorm:"column:user_id;type:uuid;not null"`
	InvoiceNumber *string              `gorm:"column:invoice_number"`
	PurchasedAt   time.Time            `gorm:"column:purchased_at;not null"`
	Total         decimal.Decimal      `gorm:"column:total;type:numeric(12,2);not null"`
	Notes         *string              `gorm:"column:notes"`
	Status        enums.DocumentStatus `gorm:"column:status;type:document_status;not null;default:'active'"`
	CanEdit       bool                 `gorm:"column:can_edit;not null;default:true"`
	EditDeadline  *time.Time           `gorm:"column:edit_deadline"`
	Lines         []PurchaseLine       `gorm:"foreignKey:PurchaseID;constraint:OnDelete:CASCADE"`
	Supplier      *Supplier            `gorm:"foreignKey:SupplierID"`
	User          *User                `gorm:"foreignKey:UserID"`
	Store         *Store               `gorm:"foreignKey:StoreID"`
	CreatedAt     time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

// PurchaseLine records one product position at the price the store paid.
type PurchaseLine struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	PurchaseID uuid.UUID       `gorm:"column:purchase_id;type:uuid;not null;index"`
	ProductID  uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	Quantity   int             `gorm:"column:quantity;not null"`
	UnitPrice  decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Subtotal   decimal.Decimal `gorm:"column:subtotal;type:numeric(12,2);not null"`
	Product    *Product        `gorm:"foreignKey:ProductID"`
}
