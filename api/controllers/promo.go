package controllers

import (
	"net/http"

	"github.com/shoplane/storefront-backend/api/responses"
	"github.com/shoplane/storefront-backend/api/validators"
	promosvc "github.com/shoplane/storefront-backend/internal/promo"
	"github.com/shoplane/storefront-backend/internal/storefront"
	"github.com/shoplane/storefront-backend/pkg/logger"
)

// PromoList returns the cached promo definitions the storefront can render.
func PromoList(catalog *promosvc.Catalog, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]any{"promos": catalog.Definitions()})
	}
}

// PromoApply validates a code against the caller's cart and applies it.
func PromoApply(registry *storefront.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := sessionFromRequest(registry, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload applyPromoRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		applied, err := session.ApplyPromo(r.Context(), payload.Code)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"applied": applied,
			"summary": session.Summary.Snapshot(),
		})
	}
}

// PromoClear removes the applied code and its discount.
func PromoClear(registry *storefront.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := sessionFromRequest(registry, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session.ClearPromo()
		responses.WriteSuccess(w, map[string]any{
			"applied": nil,
			"summary": session.Summary.Snapshot(),
		})
	}
}

type applyPromoRequest struct {
	Code string `json:"code" validate:"required,min=1,max=64"`
}
