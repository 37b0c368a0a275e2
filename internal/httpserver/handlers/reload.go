package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/multiverse/internal/httpserver/deps"
	"github.com/MrSnakeDoc/multiverse/internal/logger"
)

type reloadResponse struct {
	Triggered bool   `json:"triggered"`
	Message   string `json:"message"`
}

// Reload asks the store reloader to re-read favorites from storage.
func Reload(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.ReloadTrigger == nil {
			writeError(w, http.StatusServiceUnavailable, "reload not configured")
			return
		}

		select {
		case d.ReloadTrigger <- struct{}{}:
			d.Logger.Info("manual favorites reload triggered via endpoint",
				logger.String("remote_ip", r.RemoteAddr))
			writeJSON(w, http.StatusAccepted, reloadResponse{Triggered: true, Message: "reload triggered"})
		default:
			d.Logger.Warn("favorites reload already in progress",
				logger.String("remote_ip", r.RemoteAddr))
			writeJSON(w, http.StatusTooManyRequests, reloadResponse{Message: "reload already in progress, please wait"})
		}
	}
}
