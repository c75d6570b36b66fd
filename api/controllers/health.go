package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/shoplane/storefront-backend/api/responses"
	"github.com/shoplane/storefront-backend/pkg/config"
	pkgerrors "github.com/shoplane/storefront-backend/pkg/errors"
	"github.com/shoplane/storefront-backend/pkg/logger"
)

const readyCheckTimeout = 5 * time.Second

// Pinger is a collaborator the readiness probe can check.
type Pinger interface {
	Ping(context.Context) error
}

// NamedPinger ties a probe result to a dependency name in the response.
type NamedPinger struct {
	Name   string
	Pinger Pinger
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Shoplane-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

func HealthReady(cfg *config.Config, logg *logger.Logger, deps ...NamedPinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Shoplane-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readyCheckTimeout)
		defer cancel()

		checks := map[string]string{}
		for _, dep := range deps {
			if dep.Pinger == nil {
				continue
			}
			if err := dep.Pinger.Ping(ctx); err != nil {
				checks[dep.Name] = "down"
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "dependency unavailable").WithDetails(map[string]any{"dependency": dep.Name}))
				return
			}
			checks[dep.Name] = "up"
		}

		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
