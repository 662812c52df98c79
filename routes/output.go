package routes

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/btangonan/gif-maker/logger"
)

// Output streams a finished GIF as a download. Only .gif names inside the
// output directory are served. Anything else, including artifacts the
// sweeper already reclaimed, is a plain 404.
func (h *Handler) Output(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/output/")
	if name != filepath.Base(name) || !strings.HasSuffix(name, ".gif") {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	file, err := os.Open(filepath.Join(h.outputDir, name))
	if err != nil {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil || info.IsDir() {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "image/gif")
	w.Header().Set("Content-Length", strconv.FormatInt(info.Size(), 10))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	if _, err := io.Copy(w, file); err != nil {
		logger.Debugf("Artifact download aborted for %s: %v", name, err)
	}
}
