package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/multiverse/internal/comments"
	"github.com/MrSnakeDoc/multiverse/internal/httpserver/deps"
)

type commentsResponse struct {
	CharacterID string             `json:"characterId"`
	Count       int                `json:"count"`
	Comments    []comments.Comment `json:"comments"`
}

type commentBody struct {
	Text string `json:"text"`
}

// ListComments returns a character's comments, newest first.
func ListComments(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := characterID(w, r)
		if !ok {
			return
		}
		list := d.Comments.CommentsFor(r.Context(), id)
		if list == nil {
			list = []comments.Comment{}
		}
		writeJSON(w, http.StatusOK, commentsResponse{CharacterID: id, Count: len(list), Comments: list})
	}
}

// PostComment adds a comment. Blank text is silently ignored (204).
func PostComment(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := characterID(w, r)
		if !ok {
			return
		}
		var body commentBody
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		th := d.Comments.Open(r.Context(), id)
		c, added := th.Add(r.Context(), body.Text)
		if !added {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		if err := th.Err(); err != nil {
			writeStorageError(w, d, r, err, c)
			return
		}
		writeJSON(w, http.StatusCreated, c)
	}
}

// PatchComment edits a comment's text.
func PatchComment(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := characterID(w, r)
		if !ok {
			return
		}
		var body commentBody
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if strings.TrimSpace(body.Text) == "" {
			writeError(w, http.StatusBadRequest, "text must not be blank")
			return
		}

		th := d.Comments.Open(r.Context(), id)
		c, edited := th.Edit(r.Context(), chi.URLParam(r, "commentID"), body.Text)
		if !edited {
			writeError(w, http.StatusNotFound, "comment not found")
			return
		}
		if err := th.Err(); err != nil {
			writeStorageError(w, d, r, err, c)
			return
		}
		writeJSON(w, http.StatusOK, c)
	}
}

// DeleteComment removes a comment. Unknown ids are a no-op.
func DeleteComment(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := characterID(w, r)
		if !ok {
			return
		}
		th := d.Comments.Open(r.Context(), id)
		th.Delete(r.Context(), chi.URLParam(r, "commentID"))
		if err := th.Err(); err != nil {
			writeStorageError(w, d, r, err, nil)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
