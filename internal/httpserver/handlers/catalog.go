package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/multiverse/internal/httpserver/deps"
)

// ListEpisodes proxies one page of the episode listing.
func ListEpisodes(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := pageParam(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		res, err := d.Characters.Episodes(r.Context(), page)
		if err != nil {
			writeRemoteError(w, d, r, err, res)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// ListLocations proxies one page of the location listing.
func ListLocations(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := pageParam(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		res, err := d.Characters.Locations(r.Context(), page)
		if err != nil {
			writeRemoteError(w, d, r, err, res)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}
