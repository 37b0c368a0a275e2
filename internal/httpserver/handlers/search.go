package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/multiverse/internal/httpserver/deps"
)

type searchBody struct {
	Term string `json:"term"`
}

// GetSearch returns the shared search state.
func GetSearch(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, d.Search.Snapshot())
	}
}

// PutSearch sets the term. It settles once input has been quiet for the
// debounce delay.
func PutSearch(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body searchBody
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		d.Search.SetTerm(body.Term)
		writeJSON(w, http.StatusOK, d.Search.Snapshot())
	}
}

// ClearSearch resets the term. The empty term settles after the debounce
// delay like any other edit.
func ClearSearch(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d.Search.Clear()
		writeJSON(w, http.StatusOK, d.Search.Snapshot())
	}
}
