package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Return records restocked merchandise from a prior sale. Cumulative returned
// quantity per (sale, product) never exceeds the quantity originally sold.
type Return struct {
	ID         uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	SaleID     uuid.UUID        `gorm:"column:sale_id;type:uuid;not null;index"`
	ProductID  uuid.UUID        `gorm:"column:product_id;type:uuid;not null"`
	UserID     uuid.UUID        `gorm:"column:user_id;type:uuid;not null"`
	Quantity   int              `gorm:"column:quantity;not null"`
	Reason     *string          `gorm:"column:reason"`
	AmountPaid *decimal.Decimal `gorm:"column:amount_paid;type:numeric(12,2)"`
	ReturnedAt time.Time        `gorm:"column:returned_at;not null"`
	Product    *Product         `gorm:"foreignKey:ProductID"`
	User       *User            `gorm:"foreignKey:UserID"`
}
