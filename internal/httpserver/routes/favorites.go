package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/multiverse/internal/httpserver/deps"
	"github.com/MrSnakeDoc/multiverse/internal/httpserver/handlers"
)

func init() { Register(registerFavorites) }

func registerFavorites(r chi.Router, d deps.Deps) {
	r.Get("/api/favorites", handlers.ListFavorites(d))

	w := r.With(mutationLimit(d))
	w.Delete("/api/favorites", handlers.ClearFavorites(d))
	w.Put("/api/favorites/{id}", handlers.PutFavorite(d))
	w.Delete("/api/favorites/{id}", handlers.DeleteFavorite(d))
	w.Post("/api/favorites/{id}/toggle", handlers.ToggleFavorite(d))
}
