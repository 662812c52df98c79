// Package routes is the HTTP boundary: it decodes requests, hands
// submissions to the orchestrator and reads job state and artifacts back
// out. No conversion logic lives here.
package routes

import (
	"encoding/json"
	"net/http"

	"github.com/btangonan/gif-maker/history"
	"github.com/btangonan/gif-maker/job"
	"github.com/btangonan/gif-maker/logger"
	"github.com/btangonan/gif-maker/registry"
)

// Handler bundles the injected collaborators for all endpoints.
type Handler struct {
	reg            *registry.Store
	orch           *job.Orchestrator
	hist           *history.Store
	outputDir      string
	maxUploadBytes int64
}

func New(reg *registry.Store, orch *job.Orchestrator, hist *history.Store, outputDir string, maxUploadBytes int64) *Handler {
	return &Handler{
		reg:            reg,
		orch:           orch,
		hist:           hist,
		outputDir:      outputDir,
		maxUploadBytes: maxUploadBytes,
	}
}

// Register attaches all endpoints to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/", h.Index)
	mux.HandleFunc("/convert", h.Convert)
	mux.HandleFunc("/status/", h.Status)
	mux.HandleFunc("/output/", h.Output)
	mux.HandleFunc("/health", h.Health)
	mux.HandleFunc("/history", h.HistoryQuery)
	mux.HandleFunc("/history/list", h.HistoryList)
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Errorf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
