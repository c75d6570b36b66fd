package controllers

import (
	"net/http"

	"github.com/shoplane/storefront-backend/api/middleware"
	"github.com/shoplane/storefront-backend/api/responses"
	"github.com/shoplane/storefront-backend/api/validators"
	"github.com/shoplane/storefront-backend/pkg/logger"
	"github.com/shoplane/storefront-backend/pkg/upstream"
)

// WalletBalance proxies the caller's stored-value balance.
func WalletBalance(client *upstream.Client, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID := middleware.CustomerIDFromContext(r.Context())
		balance, err := client.WalletBalance(r.Context(), customerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, balance)
	}
}

// WalletTransactions proxies the caller's wallet ledger.
func WalletTransactions(client *upstream.Client, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID := middleware.CustomerIDFromContext(r.Context())
		txns, err := client.WalletTransactions(r.Context(), customerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"transactions": txns})
	}
}

// PointsPreview reports the loyalty points an order total would earn.
func PointsPreview(client *upstream.Client, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload pointsPreviewRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		customerID := middleware.CustomerIDFromContext(r.Context())
		preview, err := client.PreviewPoints(r.Context(), customerID, payload.TotalCents)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, preview)
	}
}

// PointsRedeem converts loyalty points into wallet credit.
func PointsRedeem(client *upstream.Client, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload pointsRedeemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		customerID := middleware.CustomerIDFromContext(r.Context())
		redemption, err := client.RedeemPoints(r.Context(), customerID, payload.Points)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, redemption)
	}
}

type pointsPreviewRequest struct {
	TotalCents int64 `json:"total_cents" validate:"required,gte=0"`
}

type pointsRedeemRequest struct {
	Points int64 `json:"points" validate:"required,min=1"`
}
