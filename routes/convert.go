package routes

import (
	"fmt"
	"io"
	"net/http"

	"github.com/btangonan/gif-maker/form"
	"github.com/btangonan/gif-maker/logger"
)

// Convert accepts a multipart submission and responds with the job id as
// soon as the job is registered. The conversion itself runs detached; the
// client collects the outcome by polling /status.
func (h *Handler) Convert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if r.ContentLength > h.maxUploadBytes {
		writeError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("File too large. Max upload is %d MB.", h.maxUploadBytes/(1024*1024)))
		return
	}

	// MaxBytesReader backstops requests that lie about (or omit) their
	// content length.
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxUploadBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("File too large. Max upload is %d MB.", h.maxUploadBytes/(1024*1024)))
		return
	}

	f, err := form.Parse(body, r.Header.Get("Content-Type"))
	if err != nil {
		logger.Warnf("Upload parse error from %s: %v", r.RemoteAddr, err)
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Upload parse error: %v", err))
		return
	}

	id := h.orch.Submit(f)
	writeJSON(w, http.StatusAccepted, map[string]string{"job_id": id})
}
