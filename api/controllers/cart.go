package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/shoplane/storefront-backend/api/responses"
	"github.com/shoplane/storefront-backend/api/validators"
	cartsvc "github.com/shoplane/storefront-backend/internal/cart"
	"github.com/shoplane/storefront-backend/internal/storefront"
	pkgerrors "github.com/shoplane/storefront-backend/pkg/errors"
	"github.com/shoplane/storefront-backend/pkg/logger"
)

// CartGet returns the caller's cart.
func CartGet(registry *storefront.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := sessionFromRequest(registry, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, session.Cart.Snapshot())
	}
}

// CartAddItem adds a line to the caller's cart, merging quantities when the
// product is already present.
func CartAddItem(registry *storefront.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := sessionFromRequest(registry, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := session.Cart.Add(r.Context(), payload.toLineItem())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, cart)
	}
}

// CartUpdateItem sets the quantity for a line. Quantity zero removes it.
func CartUpdateItem(registry *storefront.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := sessionFromRequest(registry, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := productIDFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := session.Cart.SetQuantity(r.Context(), productID, payload.Qty)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cart)
	}
}

// CartRemoveItem drops a line from the caller's cart.
func CartRemoveItem(registry *storefront.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := sessionFromRequest(registry, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := productIDFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := session.Cart.Remove(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cart)
	}
}

// CartClear empties the caller's cart and drops any applied promo with it.
func CartClear(registry *storefront.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := sessionFromRequest(registry, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := session.Cart.Clear(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		session.ClearPromo()
		responses.WriteSuccess(w, cart)
	}
}

type addItemRequest struct {
	ProductID                uuid.UUID  `json:"product_id" validate:"required"`
	VariantID                *uuid.UUID `json:"variant_id,omitempty"`
	Name                     string     `json:"name" validate:"required"`
	UnitPriceCents           int64      `json:"unit_price_cents" validate:"gte=0"`
	DiscountedUnitPriceCents *int64     `json:"discounted_unit_price_cents,omitempty" validate:"omitempty,gte=0"`
	Qty                      int        `json:"qty" validate:"required,min=1"`
	Currency                 string     `json:"currency"`
}

func (p addItemRequest) toLineItem() cartsvc.LineItem {
	item := cartsvc.LineItem{
		ProductID:      p.ProductID,
		VariantID:      p.VariantID,
		Name:           p.Name,
		UnitPriceCents: p.UnitPriceCents,
		Qty:            p.Qty,
		Currency:       p.Currency,
	}
	if p.DiscountedUnitPriceCents != nil {
		item.DiscountedUnitPriceCents = *p.DiscountedUnitPriceCents
	}
	return item
}

type updateItemRequest struct {
	Qty int `json:"qty" validate:"gte=0"`
}

func productIDFromPath(r *http.Request) (uuid.UUID, error) {
	raw := pathParam(r, "productID")
	productID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id")
	}
	return productID, nil
}
