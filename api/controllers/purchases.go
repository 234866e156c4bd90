package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tiendahub/tienda-backend/api/responses"
	"github.com/tiendahub/tienda-backend/api/validators"
	"github.com/tiendahub/tienda-backend/internal/purchases"
	pkgerrors "github.com/tiendahub/tienda-backend/pkg/errors"
	"github.com/tiendahub/tienda-backend/pkg/logger"
)

type purchaseLineRequest struct {
	ProductID uuid.UUID       `json:"product_id" validate:"required"`
	Quantity  int             `json:"quantity" validate:"required,min=1"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type purchaseCreateRequest struct {
	SupplierID    *uuid.UUID            `json:"supplier_id,omitempty"`
	InvoiceNumber *string               `json:"invoice_number,omitempty"`
	Notes         *string               `json:"notes,omitempty"`
	Lines         []purchaseLineRequest `json:"lines" validate:"required,min=1,dive"`
}

func purchaseLines(reqs []purchaseLineRequest) []purchases.PurchaseLineInput {
	lines := make([]purchases.PurchaseLineInput, 0, len(reqs))
	for _, line := range reqs {
		lines = append(lines, purchases.PurchaseLineInput{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		})
	}
	return lines
}

func (r purchaseCreateRequest) toInput() purchases.CreatePurchaseInput {
	return purchases.CreatePurchaseInput{
		SupplierID:    r.SupplierID,
		InvoiceNumber: r.InvoiceNumber,
		Notes:         r.Notes,
		Lines:         purchaseLines(r.Lines),
	}
}

// PurchaseCreate registers a purchase, credits stock for every line and
// refreshes cost prices in one transaction.
func PurchaseCreate(svc purchases.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "purchases service unavailable"))
			return
		}

		storeID, err := storeIDFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		userID, err := userIDFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload purchaseCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		purchase, err := svc.Create(r.Context(), storeID, userID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, purchase)
	}
}

type purchaseUpdateRequest struct {
	SupplierID    *uuid.UUID            `json:"supplier_id,omitempty"`
	InvoiceNumber *string               `json:"invoice_number,omitempty"`
	Notes         *string               `json:"notes,omitempty"`
	Lines         []purchaseLineRequest `json:"lines" validate:"required,min=1,dive"`
}

func (r purchaseUpdateRequest) toInput() purchases.UpdatePurchaseInput {
	return purchases.UpdatePurchaseInput{
		SupplierID:    r.SupplierID,
		InvoiceNumber: r.InvoiceNumber,
		Notes:         r.Notes,
		Lines:         purchaseLines(r.Lines),
	}
}

// PurchaseUpdate replaces a purchase's line set within the edit window.
// Stock moves only by the per-product difference against the stored lines.
func PurchaseUpdate(svc purchases.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "purchases service unavailable"))
			return
		}

		storeID, err := storeIDFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		purchaseID, err := pathUUID(r, "purchaseId", "purchase id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload purchaseUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		purchase, err := svc.Update(r.Context(), storeID, purchaseID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, purchase)
	}
}

// PurchaseGet fetches a purchase with its lines, scoped to the active store.
func PurchaseGet(svc purchases.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "purchases service unavailable"))
			return
		}

		storeID, err := storeIDFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		purchaseID, err := pathUUID(r, "purchaseId", "purchase id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		purchase, err := svc.GetByID(r.Context(), storeID, purchaseID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, purchase)
	}
}

// PurchaseList returns the active store's purchases, newest first.
func PurchaseList(svc purchases.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "purchases service unavailable"))
			return
		}

		storeID, err := storeIDFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListByStore(r.Context(), storeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}
