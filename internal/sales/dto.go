package sales

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tiendahub/tienda-backend/pkg/db/models"
	"github.com/tiendahub/tienda-backend/pkg/enums"
)

// SaleLineInput is one requested position on a sale. The unit price is
// accepted for wire compatibility but ignored; the catalog price at sale
// time is authoritative.
type SaleLineInput struct {
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// CreateSaleInput captures a sale registration request.
type CreateSaleInput struct {
	Lines         []SaleLineInput
	PaymentMethod *string
	Notes         *string
}

// UpdateSaleInput captures the metadata fields a sale edit may touch.
// Lines and totals are immutable after registration.
type UpdateSaleInput struct {
	PaymentMethod *string
	Notes         *string
}

// SaleLineDTO is the API-facing projection of a sale line.
type SaleLineDTO struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// SaleDTO is the API-facing projection of a sale.
type SaleDTO struct {
	ID            uuid.UUID            `json:"id"`
	StoreID       uuid.UUID            `json:"store_id"`
	UserID        uuid.UUID            `json:"user_id"`
	SoldAt        time.Time            `json:"sold_at"`
	Total         decimal.Decimal      `json:"total"`
	PaymentMethod *string              `json:"payment_method,omitempty"`
	Notes         *string              `json:"notes,omitempty"`
	Status        enums.DocumentStatus `json:"status"`
	Lines         []SaleLineDTO        `json:"lines"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

// FromModel maps a sale row and its lines to the DTO.
func FromModel(sale *models.Sale) *SaleDTO {
	if sale == nil {
		return nil
	}
	lines := make([]SaleLineDTO, 0, len(sale.Lines))
	for _, line := range sale.Lines {
		dto := SaleLineDTO{
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
	return &SaleDTO{
		ID:            sale.ID,
		StoreID:       sale.StoreID,
		UserID:        sale.UserID,
		SoldAt:        sale.SoldAt,
		Total:         sale.Total,
		PaymentMethod: sale.PaymentMethod,
		Notes:         sale.Notes,
		Status:        sale.Status,
		Lines:         lines,
		CreatedAt:     sale.CreatedAt,
		UpdatedAt:     sale.UpdatedAt,
	}
}

// SaleListPage is one cursor page of sales. NextCursor is empty on the
// last page.
type SaleListPage struct {
	Items      []SaleDTO `json:"items"`
	NextCursor string    `json:"next_cursor,omitempty"`
}
