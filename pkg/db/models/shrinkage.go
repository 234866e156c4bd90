package models

import (
	"time"

	"github.com/google/uuid"
)

// Shrinkage records involuntary stock loss not tied to a sale.
type Shrinkage struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	StoreID     uuid.UUID `gorm:"column:store_id;type:uuid;not null;index"`
	ProductID   uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	UserID      uuid.UUID `gorm:"column:user_id;type:uuid;not null"`
	Quantity    int       `gorm:"column:quantity;not null"`
	Reason      *string   `gorm:"column:reason"`
	Description *string   `gorm:"column:description"`
	RecordedAt  time.Time `gorm:"column:recorded_at;not null"`
	Product     *Product  `gorm:"foreignKey:ProductID"`
	User        *User     `gorm:"foreignKey:UserID"`
}
