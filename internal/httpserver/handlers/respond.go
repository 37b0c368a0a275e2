package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/MrSnakeDoc/multiverse/internal/graphql"
	"github.com/MrSnakeDoc/multiverse/internal/httpserver/deps"
	"github.com/MrSnakeDoc/multiverse/internal/logger"
)

const maxBodyBytes = 64 << 10

type errorResponse struct {
	Error string `json:"error"`
	Data  any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeRemoteError maps a remote query failure. Not found is a 404; any other
// failure is a 502 that still carries the partial data, if any.
func writeRemoteError(w http.ResponseWriter, d deps.Deps, r *http.Request, err error, partial any) {
	if errors.Is(err, graphql.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	d.Logger.Warn("remote query failed",
		logger.String("path", r.URL.Path),
		logger.Error(err))
	writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error(), Data: partial})
}

// writeStorageError reports a mutation that was applied in memory but not
// persisted. The body carries the in-memory result so clients can retry.
func writeStorageError(w http.ResponseWriter, d deps.Deps, r *http.Request, err error, state any) {
	d.Logger.Error("mutation not persisted",
		logger.String("path", r.URL.Path),
		logger.Error(err))
	writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error(), Data: state})
}

// decodeBody reads a small JSON body into v. Unknown fields are rejected.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// pageParam reads ?page=, defaulting to 1. Non-numeric or < 1 is an error.
func pageParam(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("page"))
	if raw == "" {
		return 1, nil
	}
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 0, fmt.Errorf("invalid page %q", raw)
	}
	return page, nil
}

func boolParam(r *http.Request, name string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(name))
	return err == nil && v
}
