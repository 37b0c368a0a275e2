package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/multiverse/internal/httpserver/deps"
	"github.com/MrSnakeDoc/multiverse/internal/logger"
)

const probeTimeout = 2 * time.Second

type readyzResponse struct {
	Ready   bool   `json:"ready"`
	Storage string `json:"storage"`
	Error   string `json:"error,omitempty"`
}

// Readyz reports ready when the storage backend answers a ping. The remote
// API is not part of readiness: favorites and comments work without it.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.Storage == nil {
			writeJSON(w, http.StatusServiceUnavailable, readyzResponse{Error: "storage not initialized"})
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
		defer cancel()

		if err := d.Storage.Ping(ctx); err != nil {
			d.Logger.Warn("readiness probe failed",
				logger.String("storage", d.Storage.Name()),
				logger.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, readyzResponse{
				Storage: d.Storage.Name(),
				Error:   err.Error(),
			})
			return
		}

		writeJSON(w, http.StatusOK, readyzResponse{Ready: true, Storage: d.Storage.Name()})
	}
}
