package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/tiendahub/tienda-backend/pkg/enums"
)

// Supplier is a per-store vendor that purchases can reference.
type Supplier struct {
	ID        uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	StoreID   uuid.UUID            `gorm:"column:store_id;type:uuid;not null;index"`
	Name      string               `gorm:"column:name;not null"`
	TaxID     *string              `gorm:"column:tax_id"`
	Phone     *string              `gorm:"column:phone"`
	Email     *string              `gorm:"column:email"`
	Address   *string              `gorm:"column:address"`
	Status    enums.SupplierStatus `gorm:"column:status;type:supplier_status;not null;default:'active'"`
	CreatedAt time.Time            `gorm:"column:created_at;autoCreateTime"`
}
