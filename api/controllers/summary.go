package controllers

import (
	"net/http"

	"github.com/shoplane/storefront-backend/api/responses"
	"github.com/shoplane/storefront-backend/api/validators"
	"github.com/shoplane/storefront-backend/internal/storefront"
	"github.com/shoplane/storefront-backend/pkg/logger"
	"github.com/shoplane/storefront-backend/pkg/types"
)

// SummaryGet returns the caller's order summary.
func SummaryGet(registry *storefront.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := sessionFromRequest(registry, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, session.Summary.Snapshot())
	}
}

// SummarySetAddress records the shipping destination and starts a quote. The
// response carries the summary as it stands; the fee lands once the quote
// resolves.
func SummarySetAddress(registry *storefront.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := sessionFromRequest(registry, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload setAddressRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := session.Summary.SetShippingAddress(r.Context(), payload.Address); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusAccepted, session.Summary.Snapshot())
	}
}

type setAddressRequest struct {
	Address types.Address `json:"address" validate:"required"`
}
