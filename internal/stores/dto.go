package stores

import (
	"time"

	"github.com/google/uuid"

	"github.com/tiendahub/tienda-backend/pkg/db/models"
	"github.com/tiendahub/tienda-backend/pkg/enums"
)

// StoreDTO is the API-facing projection of a store.
type StoreDTO struct {
	ID        uuid.UUID         `json:"id"`
	Name      string            `json:"name"`
	Address   *string           `json:"address,omitempty"`
	Phone     *string           `json:"phone,omitempty"`
	Email     *string           `json:"email,omitempty"`
	TaxID     *string           `json:"tax_id,omitempty"`
	OwnerID   uuid.UUID         `json:"owner_id"`
	Status    enums.StoreStatus `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// FromModel maps a store row to its DTO.
func FromModel(store *models.Store) *StoreDTO {
	if store == nil {
		return nil
	}
	return &StoreDTO{
		ID:        store.ID,
		Name:      store.Name,
		Address:   store.Address,
		Phone:     store.Phone,
		Email:     store.Email,
		TaxID:     store.TaxID,
		OwnerID:   store.OwnerID,
		Status:    store.Status,
		CreatedAt: store.CreatedAt,
		UpdatedAt: store.UpdatedAt,
	}
}

// CreateStoreDTO captures the fields needed to register a store.
type CreateStoreDTO struct {
	Name    string
	Address *string
	Phone   *string
	Email   *string
	TaxID   *string
	OwnerID uuid.UUID
}

// ToModel builds the store row for persistence.
func (d CreateStoreDTO) ToModel() *models.Store {
	return &models.Store{
		ID:      uuid.New(),
		Name:    d.Name,
		Address: d.Address,
		Phone:   d.Phone,
		Email:   d.Email,
		TaxID:   d.TaxID,
		OwnerID: d.OwnerID,
		Status:  enums.StoreStatusActive,
	}
}

// UpdateStoreInput captures the allowed store fields for mutation. Nil fields
// are left untouched.
type UpdateStoreInput struct {
	Name    *string
	Address *string
	Phone   *string
	Email   *string
	TaxID   *string
}
