package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/multiverse/internal/httpserver/deps"
	"github.com/MrSnakeDoc/multiverse/internal/httpserver/handlers"
)

func init() { Register(registerCatalog) }

func registerCatalog(r chi.Router, d deps.Deps) {
	r.Get("/api/characters", handlers.ListCharacters(d))
	r.Get("/api/characters/{id}", handlers.GetCharacter(d))
	r.Get("/api/episodes", handlers.ListEpisodes(d))
	r.Get("/api/locations", handlers.ListLocations(d))
}
