package routes

import (
	"net/http"

	"github.com/btangonan/gif-maker/logger"
)

// HistoryQuery returns the durable record of one finished conversion.
func (h *Handler) HistoryQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.hist == nil {
		http.Error(w, "History disabled", http.StatusNotFound)
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "Missing id parameter")
		return
	}

	rec, err := h.hist.Get(id)
	if err != nil {
		logger.Errorf("History lookup failed for %s: %v", id, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if rec == nil {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// HistoryList returns all records (for admin purposes).
func (h *Handler) HistoryList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.hist == nil {
		http.Error(w, "History disabled", http.StatusNotFound)
		return
	}

	records, err := h.hist.List()
	if err != nil {
		logger.Errorf("History list failed: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, records)
}
