package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/shoplane/storefront-backend/api/responses"
	"github.com/shoplane/storefront-backend/api/validators"
	pkgerrors "github.com/shoplane/storefront-backend/pkg/errors"
	"github.com/shoplane/storefront-backend/pkg/logger"
	"github.com/shoplane/storefront-backend/pkg/upstream"
)

// ProductsList proxies a catalog search to the platform.
func ProductsList(client *upstream.Client, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", 24, 1, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		offset, err := validators.ParseQueryInt(r, "offset", 0, 0, 10000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := upstream.ProductListParams{
			Query:  validators.SanitizeString(r.URL.Query().Get("q"), 120),
			Limit:  limit,
			Offset: offset,
		}
		if raw := r.URL.Query().Get("category_id"); raw != "" {
			categoryID, parseErr := uuid.Parse(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid category id"))
				return
			}
			params.CategoryID = &categoryID
		}

		products, err := client.ListProducts(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"products": products})
	}
}

// ProductGet proxies one product's detail view.
func ProductGet(client *upstream.Client, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := productIDFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := client.GetProduct(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// CategoriesList proxies the category tree roots.
func CategoriesList(client *upstream.Client, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categories, err := client.ListCategories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"categories": categories})
	}
}

// AssetConfigGet proxies the asset base URL the storefront resolves images
// against.
func AssetConfigGet(client *upstream.Client, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg, err := client.AssetConfig(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cfg)
	}
}
