package controllers

import (
	"net/http"

	"github.com/shoplane/storefront-backend/api/middleware"
	"github.com/shoplane/storefront-backend/api/responses"
	"github.com/shoplane/storefront-backend/api/validators"
	pkgauth "github.com/shoplane/storefront-backend/pkg/auth"
	"github.com/shoplane/storefront-backend/pkg/config"
	"github.com/shoplane/storefront-backend/pkg/logger"
	"github.com/shoplane/storefront-backend/pkg/upstream"
)

// AuthLogin exchanges credentials with the platform and mints a storefront
// session token for the authenticated customer.
func AuthLogin(client *upstream.Client, cfg config.SessionConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload credentialsRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		platformSession, err := client.Login(r.Context(), payload.toCredentials())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		token, err := pkgauth.IssueSessionToken(cfg, platformSession.CustomerID, false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, sessionResponse{
			Token:      token,
			CustomerID: platformSession.CustomerID,
		})
	}
}

// AuthSignup registers an account with the platform and signs the new
// customer in.
func AuthSignup(client *upstream.Client, cfg config.SessionConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload signupRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		platformSession, err := client.Signup(r.Context(), upstream.Credentials{
			Email:    payload.Email,
			Password: payload.Password,
			Name:     payload.Name,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		token, err := pkgauth.IssueSessionToken(cfg, platformSession.CustomerID, false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, sessionResponse{
			Token:      token,
			CustomerID: platformSession.CustomerID,
		})
	}
}

// AuthProfile proxies the caller's account record.
func AuthProfile(client *upstream.Client, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID := middleware.CustomerIDFromContext(r.Context())
		profile, err := client.Profile(r.Context(), customerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}

type credentialsRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

func (p credentialsRequest) toCredentials() upstream.Credentials {
	return upstream.Credentials{Email: p.Email, Password: p.Password}
}

type signupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required,min=1,max=120"`
}

type sessionResponse struct {
	Token      string `json:"token"`
	CustomerID string `json:"customer_id"`
}
