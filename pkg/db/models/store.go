package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/tiendahub/tienda-backend/pkg/enums"
)

// Store represents the canonical tenant model. Every product, supplier, and
// transaction document belongs to exactly one store.
type Store struct {
	ID        uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	Name      string            `gorm:"column:name;not null"`
	Address   *string           `gorm:"column:address"`
	Phone     *string           `gorm:"column:phone"`
	Email     *string           `gorm:"column:email"`
	TaxID     *string           `gorm:"column:tax_id"`
	OwnerID   uuid.UUID         `gorm:"column:owner_id;type:uuid;not null"`
	Status    enums.StoreStatus `gorm:"column:status;type:store_status;not null;default:'active'"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
