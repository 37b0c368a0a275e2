package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/multiverse/internal/httpserver/deps"
	"github.com/MrSnakeDoc/multiverse/internal/httpserver/handlers"
)

func init() { Register(registerComments) }

func registerComments(r chi.Router, d deps.Deps) {
	r.Get("/api/characters/{id}/comments", handlers.ListComments(d))

	w := r.With(mutationLimit(d))
	w.Post("/api/characters/{id}/comments", handlers.PostComment(d))
	w.Patch("/api/characters/{id}/comments/{commentID}", handlers.PatchComment(d))
	w.Delete("/api/characters/{id}/comments/{commentID}", handlers.DeleteComment(d))
}
