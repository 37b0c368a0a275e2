package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/multiverse/internal/comments"
	"github.com/MrSnakeDoc/multiverse/internal/domain"
	"github.com/MrSnakeDoc/multiverse/internal/httpserver/deps"
)

type characterView struct {
	domain.Character
	Favorite bool `json:"favorite"`
}

type characterListResponse struct {
	Info    domain.Info     `json:"info"`
	Filter  filterView      `json:"filter"`
	Results []characterView `json:"results"`
}

type filterView struct {
	Name    *string `json:"name,omitempty"`
	Status  *string `json:"status,omitempty"`
	Species *string `json:"species,omitempty"`
	Type    *string `json:"type,omitempty"`
	Gender  *string `json:"gender,omitempty"`
	Sort    string  `json:"sort,omitempty"`
	Starred string  `json:"starred"`
}

type characterDetailResponse struct {
	characterView
	Comments []comments.Comment `json:"comments"`
}

// ListCharacters proxies one page of the character listing. Without an
// explicit ?name= the settled search term is used. Sorting and the starred
// filter apply to the fetched page only.
func ListCharacters(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := pageParam(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		q := r.URL.Query()
		name := q.Get("name")
		if !q.Has("name") && d.Search != nil {
			name = d.Search.Settled()
		}
		filter := domain.CharacterFilter{
			Name:    domain.Opt(name),
			Status:  domain.Opt(q.Get("status")),
			Species: domain.Opt(q.Get("species")),
			Type:    domain.Opt(q.Get("type")),
			Gender:  domain.Opt(q.Get("gender")),
		}.Normalize()
		order := domain.ParseSortOrder(q.Get("sort"))
		starred := domain.ParseStarredFilter(q.Get("starred"))

		res, err := d.Characters.Characters(r.Context(), page, filter)

		chars := res.Results
		domain.SortByName(chars, order)
		chars = domain.FilterStarred(chars, starred, d.Favorites.IsFavorite)

		resp := characterListResponse{
			Info: res.Info,
			Filter: filterView{
				Name:    filter.Name,
				Status:  filter.Status,
				Species: filter.Species,
				Type:    filter.Type,
				Gender:  filter.Gender,
				Sort:    string(order),
				Starred: string(starred),
			},
			Results: make([]characterView, 0, len(chars)),
		}
		for _, c := range chars {
			resp.Results = append(resp.Results, characterView{Character: c, Favorite: d.Favorites.IsFavorite(c.ID)})
		}

		if err != nil {
			writeRemoteError(w, d, r, err, resp)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// GetCharacter returns one character with its favorite flag and comments.
func GetCharacter(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := characterID(w, r)
		if !ok {
			return
		}

		c, err := d.Characters.Character(r.Context(), id)
		if err != nil {
			writeRemoteError(w, d, r, err, nil)
			return
		}

		list := d.Comments.CommentsFor(r.Context(), id)
		if list == nil {
			list = []comments.Comment{}
		}
		writeJSON(w, http.StatusOK, characterDetailResponse{
			characterView: characterView{Character: c, Favorite: d.Favorites.IsFavorite(id)},
			Comments:      list,
		})
	}
}
