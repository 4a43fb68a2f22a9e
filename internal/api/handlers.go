package api

import (
	"encoding/json"
	"net/http"

	"github.com/freifunk/gluon-census/internal/census"
	"github.com/freifunk/gluon-census/internal/logger"
	"github.com/freifunk/gluon-census/internal/status"
	"github.com/freifunk/gluon-census/pkg/versions"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse is the body of GET /status
type StatusResponse struct {
	Status  *status.RunStatus `json:"status"`
	Summary *census.Summary   `json:"summary,omitempty"`
}

type handlers struct {
	src CensusSource
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// readiness succeeds once a census has been published
func (h *handlers) readiness(w http.ResponseWriter, _ *http.Request) {
	if h.src.Latest() == nil {
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "no census completed yet"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func versionHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, versions.GetVersionInfo())
}

func (h *handlers) status(w http.ResponseWriter, _ *http.Request) {
	resp := StatusResponse{Status: h.src.Status()}
	if snap := h.src.Latest(); snap != nil {
		summary := snap.Summary
		resp.Summary = &summary
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Errorf("Failed to encode JSON response: %v", err)
	}
}
