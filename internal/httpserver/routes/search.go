package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/multiverse/internal/httpserver/deps"
	"github.com/MrSnakeDoc/multiverse/internal/httpserver/handlers"
)

func init() { Register(registerSearch) }

func registerSearch(r chi.Router, d deps.Deps) {
	r.Get("/api/search", handlers.GetSearch(d))

	w := r.With(mutationLimit(d))
	w.Put("/api/search", handlers.PutSearch(d))
	w.Delete("/api/search", handlers.ClearSearch(d))
}
