package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/tiendahub/tienda-backend/pkg/enums"
)

// User is an operator account. Authentication lives outside this service;
// the backend trusts the acting user id handed to it.
type User struct {
	ID           uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	FullName     string           `gorm:"column:full_name;not null"`
	Email        string           `gorm:"column:email;not null;uniqueIndex"`
	PasswordHash string           `gorm:"column:password_hash;not null"`
	Role         enums.UserRole   `gorm:"column:role;type:user_role;not null;default:'employee'"`
	Status       enums.UserStatus `gorm:"column:status;type:user_status;not null;default:'active'"`
	CreatedAt    time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
