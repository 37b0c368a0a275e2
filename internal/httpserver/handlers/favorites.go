package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/multiverse/internal/domain"
	"github.com/MrSnakeDoc/multiverse/internal/favorites"
	"github.com/MrSnakeDoc/multiverse/internal/httpserver/deps"
	"github.com/MrSnakeDoc/multiverse/internal/logger"
)

type favoriteView struct {
	ID        string            `json:"id"`
	Character *domain.Character `json:"character,omitempty"`
}

type favoritesResponse struct {
	Mode       string             `json:"mode"`
	Count      int                `json:"count"`
	IDs        []string           `json:"ids"`
	Favorites  []favoriteView     `json:"favorites"`
	Characters []domain.Character `json:"characters,omitempty"`
}

type favoriteState struct {
	ID       string `json:"id"`
	Favorite bool   `json:"favorite"`
}

// ListFavorites returns the starred set in insertion order. With ?expand=true
// the full characters are resolved (from the stored records, or the API in
// ids mode).
func ListFavorites(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list := d.Favorites.List()
		resp := favoritesResponse{
			Mode:      string(d.Favorites.Mode()),
			Count:     len(list),
			IDs:       make([]string, 0, len(list)),
			Favorites: make([]favoriteView, 0, len(list)),
		}
		for _, f := range list {
			resp.IDs = append(resp.IDs, f.ID)
			resp.Favorites = append(resp.Favorites, favoriteView{ID: f.ID, Character: f.Character})
		}

		if !boolParam(r, "expand") || len(list) == 0 {
			writeJSON(w, http.StatusOK, resp)
			return
		}

		if d.Favorites.Mode() == favorites.ModeRecords {
			for _, f := range list {
				if f.Character != nil {
					resp.Characters = append(resp.Characters, *f.Character)
				}
			}
			writeJSON(w, http.StatusOK, resp)
			return
		}

		chars, err := d.Characters.CharactersByIDs(r.Context(), resp.IDs)
		resp.Characters = chars
		if err != nil {
			writeRemoteError(w, d, r, err, resp)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// PutFavorite stars a character. Idempotent.
func PutFavorite(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := characterID(w, r)
		if !ok {
			return
		}
		state := favoriteState{ID: id, Favorite: true}
		if !d.Favorites.IsFavorite(id) {
			if err := d.Favorites.Add(r.Context(), favoriteFor(r.Context(), d, id)); err != nil {
				writeStorageError(w, d, r, err, state)
				return
			}
		}
		writeJSON(w, http.StatusOK, state)
	}
}

// DeleteFavorite unstars a character. Idempotent.
func DeleteFavorite(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := characterID(w, r)
		if !ok {
			return
		}
		state := favoriteState{ID: id, Favorite: false}
		if err := d.Favorites.Remove(r.Context(), id); err != nil {
			writeStorageError(w, d, r, err, state)
			return
		}
		writeJSON(w, http.StatusOK, state)
	}
}

// ToggleFavorite flips the starred state and returns the new one.
func ToggleFavorite(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := characterID(w, r)
		if !ok {
			return
		}
		f := favorites.ByID(id)
		if !d.Favorites.IsFavorite(id) {
			f = favoriteFor(r.Context(), d, id)
		}
		starred, err := d.Favorites.Toggle(r.Context(), f)
		if err != nil {
			writeStorageError(w, d, r, err, favoriteState{ID: id, Favorite: starred})
			return
		}
		writeJSON(w, http.StatusOK, favoriteState{ID: id, Favorite: starred})
	}
}

// ClearFavorites empties the starred set.
func ClearFavorites(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Favorites.Clear(r.Context()); err != nil {
			writeStorageError(w, d, r, err, nil)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// favoriteFor builds the value to store for id. Records mode snapshots the
// character from the API and falls back to a bare record when that fails.
func favoriteFor(ctx context.Context, d deps.Deps, id string) favorites.Favorite {
	if d.Favorites.Mode() != favorites.ModeRecords || d.Characters == nil {
		return favorites.ByID(id)
	}
	c, err := d.Characters.Character(ctx, id)
	if err != nil {
		d.Logger.Warn("could not snapshot character, storing id only",
			logger.String("id", id),
			logger.Error(err))
		return favorites.ByID(id)
	}
	return favorites.ByRecord(c)
}

func characterID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing character id")
		return "", false
	}
	return id, true
}
