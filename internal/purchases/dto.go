package purchases

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tiendahub/tienda-backend/pkg/db/models"
	"github.com/tiendahub/tienda-backend/pkg/enums"
)

// PurchaseLineInput is one requested position on a purchase. The unit price
// is trusted here: it is what the store actually paid the supplier.
type PurchaseLineInput struct {
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// CreatePurchaseInput captures a purchase registration request.
type CreatePurchaseInput struct {
	SupplierID    *uuid.UUID
	InvoiceNumber *string
	Notes         *string
	Lines         []PurchaseLineInput
}

// UpdatePurchaseInput replaces the purchase's line set and metadata. The
// edit window and deadline are never renewed by an edit.
type UpdatePurchaseInput struct {
	SupplierID    *uuid.UUID
	InvoiceNumber *string
	Notes         *string
	Lines         []PurchaseLineInput
}

// PurchaseLineDTO is the API-facing projection of a purchase line.
type PurchaseLineDTO struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// PurchaseDTO is the API-facing projection of a purchase.
type PurchaseDTO struct {
	ID            uuid.UUID            `json:"id"`
	StoreID       uuid.UUID            `json:"store_id"`
	SupplierID    *uuid.UUID           `json:"supplier_id,omitempty"`
	UserID        uuid.UUID            `json:"user_id"`
	InvoiceNumber *string              `json:"invoice_number,omitempty"`
	PurchasedAt   time.Time            `json:"purchased_at"`
	Total         decimal.Decimal      `json:"total"`
	Notes         *string              `json:"notes,omitempty"`
	Status        enums.DocumentStatus `json:"status"`
	CanEdit       bool                 `json:"can_edit"`
	EditDeadline  *time.Time           `json:"edit_deadline,omitempty"`
	Lines         []PurchaseLineDTO    `json:"lines"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

// FromModel maps a purchase row and its lines to the DTO.
func FromModel(purchase *models.Purchase) *PurchaseDTO {
	if purchase == nil {
		return nil
	}
	lines := make([]PurchaseLineDTO, 0, len(purchase.Lines))
	for _, line := range purchase.Lines {
		dto := PurchaseLineDTO{
			ID:        line.ID,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			Subtotal:  line.Subtotal,
		}
		if line.Product != nil {
			dto.ProductName = line.Product.Name
		}
		lines = append(lines, dto)
	}
	return &PurchaseDTO{
		ID:            purchase.ID,
		StoreID:       purchase.StoreID,
		SupplierID:    purchase.SupplierID,
		UserID:        purchase.UserID,
		InvoiceNumber: purchase.InvoiceNumber,
		PurchasedAt:   purchase.PurchasedAt,
		Total:         purchase.Total,
		Notes:         purchase.Notes,
		Status:        purchase.Status,
		CanEdit:       purchase.CanEdit,
		EditDeadline:  purchase.EditDeadline,
		Lines:         lines,
		CreatedAt:     purchase.CreatedAt,
		UpdatedAt:     purchase.UpdatedAt,
	}
}
