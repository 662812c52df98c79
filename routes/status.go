package routes

import (
	"net/http"
	"strings"
)

// Status returns the job record for /status/{id}. An unknown id is a normal
// answer ({"status":"unknown"}), not an error: the client may simply be
// polling a job the registry already evicted.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/status/")
	job, _ := h.reg.Get(id)
	writeJSON(w, http.StatusOK, job)
}
