package handlers

import (
	"context"
	"net/http"

	"github.com/MrSnakeDoc/multiverse/internal/httpserver/deps"
)

type componentStatus struct {
	OK      bool   `json:"ok"`
	Backend string `json:"backend,omitempty"`
	Mode    string `json:"mode,omitempty"`
	Count   *int   `json:"count,omitempty"`
	Stats   any    `json:"stats,omitempty"`
	Impact  string `json:"impact,omitempty"`
	Error   string `json:"error,omitempty"`
}

type infraResponse struct {
	Mode       string                     `json:"mode"`
	Components map[string]componentStatus `json:"components"`
}

// Infra reports the state of every component the service depends on.
func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
		defer cancel()

		favCount := d.Favorites.Count()
		cacheStats := d.Cache.Stats()

		components := map[string]componentStatus{
			"storage": checkStorage(ctx, d),
			"favorites": {
				OK:    true,
				Mode:  string(d.Favorites.Mode()),
				Count: &favCount,
			},
			"graphql": checkGraphQL(ctx, d),
			"cache": {
				OK:    true,
				Mode:  cacheMode(d),
				Count: &cacheStats.Entries,
				Stats: cacheStats,
			},
			"search": {
				OK:   true,
				Mode: searchMode(d),
			},
		}

		writeJSON(w, http.StatusOK, infraResponse{
			Mode:       determineMode(components),
			Components: components,
		})
	}
}

// determineMode: storage down is critical, API down only degrades browsing.
func determineMode(components map[string]componentStatus) string {
	if s, ok := components["storage"]; ok && !s.OK {
		return "critical"
	}
	if g, ok := components["graphql"]; ok && !g.OK {
		return "degraded"
	}
	return "operational"
}

func checkStorage(ctx context.Context, d deps.Deps) componentStatus {
	if d.Storage == nil {
		return componentStatus{OK: false, Impact: "state-not-persisted", Error: "not initialized"}
	}
	if err := d.Storage.Ping(ctx); err != nil {
		return componentStatus{
			OK:      false,
			Backend: d.Storage.Name(),
			Impact:  "state-not-persisted",
			Error:   err.Error(),
		}
	}
	return componentStatus{OK: true, Backend: d.Storage.Name()}
}

func checkGraphQL(ctx context.Context, d deps.Deps) componentStatus {
	if d.Characters == nil {
		return componentStatus{OK: false, Impact: "browsing-disabled", Error: "client not initialized"}
	}
	if err := d.Characters.Ping(ctx); err != nil {
		return componentStatus{OK: false, Impact: "browsing-disabled", Error: err.Error()}
	}
	return componentStatus{OK: true}
}

func cacheMode(d deps.Deps) string {
	if d.Cache == nil {
		return "disabled"
	}
	return "ttl"
}

func searchMode(d deps.Deps) string {
	if d.Search == nil {
		return "disabled"
	}
	if d.Search.Snapshot().Pending {
		return "pending"
	}
	return "settled"
}
