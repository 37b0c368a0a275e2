package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/multiverse/internal/httpserver/deps"
	"github.com/MrSnakeDoc/multiverse/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/multiverse/internal/httpserver/mw"
)

func init() { Register(registerInfra) }

func registerInfra(r chi.Router, d deps.Deps) {
	guarded := r.With(
		mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger),
		mw.EnforceHost(d.AllowedHosts, d.Logger),
	)
	guarded.Get("/healthz", handlers.Healthz(d))
	guarded.Get("/infra", handlers.Infra(d))
}
