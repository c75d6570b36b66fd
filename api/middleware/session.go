package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/shoplane/storefront-backend/api/responses"
	pkgauth "github.com/shoplane/storefront-backend/pkg/auth"
	"github.com/shoplane/storefront-backend/pkg/config"
	pkgerrors "github.com/shoplane/storefront-backend/pkg/errors"
	"github.com/shoplane/storefront-backend/pkg/logger"
)

// sessionTokenHeader carries a freshly minted guest token back to the client.
const sessionTokenHeader = "X-SL-Session"

// Session resolves the shopper behind a request. A valid bearer token wins;
// without one the shopper gets a guest identity, minted once and echoed in a
// response header so the client can present it on the next request. Every
// request downstream of this middleware has a customer id.
func Session(cfg config.SessionConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				raw = strings.TrimSpace(r.Header.Get(sessionTokenHeader))
			}

			if raw != "" {
				claims, err := pkgauth.ParseSessionToken(cfg, raw)
				if err != nil {
					responses.WriteError(r.Context(), logg, w, err)
					return
				}
				ctx := WithCustomerID(r.Context(), claims.CustomerID)
				ctx = withGuest(ctx, claims.Guest)
				if logg != nil {
					ctx = logg.WithCustomerID(ctx, claims.CustomerID)
				}
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			guestID := "guest-" + uuid.NewString()
			token, err := pkgauth.IssueSessionToken(cfg, guestID, true)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "minting guest session"))
				return
			}
			w.Header().Set(sessionTokenHeader, token)

			ctx := WithCustomerID(r.Context(), guestID)
			ctx = withGuest(ctx, true)
			if logg != nil {
				ctx = logg.WithCustomerID(ctx, guestID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAccount rejects guest sessions. Checkout and account surfaces sit
// behind it.
func RequireAccount(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if CustomerIDFromContext(r.Context()) == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}
			if IsGuestFromContext(r.Context()) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "sign in to continue"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(raw), "bearer ") {
		return strings.TrimSpace(raw[7:])
	}
	return ""
}
