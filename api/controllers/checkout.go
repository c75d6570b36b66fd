package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/shoplane/storefront-backend/api/middleware"
	"github.com/shoplane/storefront-backend/api/responses"
	"github.com/shoplane/storefront-backend/internal/storefront"
	pkgerrors "github.com/shoplane/storefront-backend/pkg/errors"
	"github.com/shoplane/storefront-backend/pkg/logger"
	"github.com/shoplane/storefront-backend/pkg/upstream"
)

// OrderPlacer submits reconciled checkout payloads to the platform.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, req upstream.OrderRequest) (*upstream.Order, error)
}

// Checkout submits the caller's cart with its reconciled totals. The summary
// is the payload: whatever the customer last saw is what gets placed. On
// success the cart and promo state are cleared.
func Checkout(registry *storefront.Registry, placer OrderPlacer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := sessionFromRequest(registry, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart := session.Cart.Snapshot()
		if cart.IsEmpty() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty"))
			return
		}

		summary := session.Summary.Snapshot()
		if summary.Address == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "shipping address is required"))
			return
		}
		if summary.ShippingStale {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeConflict, "shipping fee is stale, retry in a moment"))
			return
		}

		items := make([]upstream.OrderItem, 0, len(cart.Items))
		for _, line := range cart.Items {
			items = append(items, upstream.OrderItem{
				ProductID:      line.ProductID,
				VariantID:      line.VariantID,
				Name:           line.Name,
				Qty:            line.Qty,
				UnitPriceCents: line.UnitPriceCents,
			})
		}

		order, err := placer.PlaceOrder(r.Context(), upstream.OrderRequest{
			CustomerID:    session.CustomerID,
			Items:         items,
			Address:       *summary.Address,
			PromoCode:     summary.PromoCode,
			SubtotalCents: summary.SubtotalCents,
			ShippingCents: summary.ShippingCents,
			TaxCents:      summary.TaxCents,
			DiscountCents: summary.DiscountCents,
			TotalCents:    summary.TotalCents,
			Currency:      summary.Currency,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if _, clearErr := session.Cart.Clear(r.Context()); clearErr != nil && logg != nil {
			logg.Warn(r.Context(), "clearing cart after checkout failed: "+clearErr.Error())
		}
		session.ClearPromo()

		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// OrdersList proxies the caller's order history.
func OrdersList(client *upstream.Client, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID := middleware.CustomerIDFromContext(r.Context())
		orders, err := client.ListOrders(r.Context(), customerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"orders": orders})
	}
}

// OrderGet proxies one order.
func OrderGet(client *upstream.Client, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := orderIDFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := client.GetOrder(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// OrderCancel asks the platform to cancel a placed order.
func OrderCancel(client *upstream.Client, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := orderIDFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := client.CancelOrder(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func orderIDFromPath(r *http.Request) (uuid.UUID, error) {
	orderID, err := uuid.Parse(pathParam(r, "orderID"))
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id")
	}
	return orderID, nil
}
