package controllers

import (
	"net/http"

	"github.com/shoplane/storefront-backend/api/middleware"
	"github.com/shoplane/storefront-backend/internal/storefront"
	pkgerrors "github.com/shoplane/storefront-backend/pkg/errors"
)

// sessionFromRequest resolves the caller's storefront session from the
// identity the session middleware placed in the context.
func sessionFromRequest(registry *storefront.Registry, r *http.Request) (*storefront.Session, error) {
	if registry == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "storefront registry unavailable")
	}
	customerID := middleware.CustomerIDFromContext(r.Context())
	if customerID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session")
	}
	return registry.Session(r.Context(), customerID)
}
