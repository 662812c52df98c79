package encoder

import (
	"context"
	"os/exec"
	"strings"
	"time"
)

const probeTimeout = 30 * time.Second

// Probe reads width, height and readable frame count from the finished
// artifact for result reporting. Probing is best effort: any failure
// degrades to "?" placeholders instead of failing the job.
func Probe(ctx context.Context, path string) (width, height, frames string) {
	width, height, frames = "?", "?", "?"

	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "quiet",
		"-select_streams", "v:0",
		"-count_packets",
		"-show_entries", "stream=width,height,nb_read_packets",
		"-of", "csv=p=0",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		return
	}

	parts := strings.Split(strings.TrimSpace(string(out)), ",")
	if len(parts) >= 2 {
		width, height = parts[0], parts[1]
	}
	if len(parts) >= 3 && strings.TrimSpace(parts[2]) != "" {
		frames = strings.TrimSpace(parts[2])
	}
	return
}
