// Package job turns an accepted upload into a tracked conversion: it
// registers the job, spawns the detached work unit, and writes every state
// change back into the registry. The submitting request returns as soon as
// the job id exists; results are collected by polling, never through the
// original connection.
package job

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/btangonan/gif-maker/encoder"
	"github.com/btangonan/gif-maker/form"
	"github.com/btangonan/gif-maker/history"
	"github.com/btangonan/gif-maker/logger"
	"github.com/btangonan/gif-maker/publish"
	"github.com/btangonan/gif-maker/registry"
)

// Orchestrator owns the conversion lifecycle. The registry is the only
// state it shares with the rest of the process; history and publisher are
// optional side channels.
type Orchestrator struct {
	reg       *registry.Store
	hist      *history.Store
	publisher publish.Publisher
	outputDir string
}

func NewOrchestrator(reg *registry.Store, hist *history.Store, publisher publish.Publisher, outputDir string) *Orchestrator {
	return &Orchestrator{
		reg:       reg,
		hist:      hist,
		publisher: publisher,
		outputDir: outputDir,
	}
}

// Submit registers a queued job for the decoded upload and launches the
// detached conversion goroutine. The returned id is immediately pollable.
func (o *Orchestrator) Submit(f form.Form) string {
	id := uuid.NewString()[:8]
	o.reg.Create(id, registry.Job{Status: registry.StatusQueued, Step: "Queued…"})
	logger.Infof("Job %s queued", id)

	go o.run(id, f)
	return id
}

// run is the work unit. Nothing may escape it: every failure, including a
// panic, becomes the job's terminal error state.
func (o *Orchestrator) run(id string, f form.Form) {
	defer func() {
		if r := recover(); r != nil {
			o.fail(id, "", fmt.Sprintf("internal error: %v", r))
		}
	}()

	result, err := o.convert(id, f)
	if err != nil {
		o.fail(id, result.Encoder, err.Error())
		return
	}

	o.reg.Update(id, result)
	logger.Infof("Job %s done: %s (%s, %s frames)", id, result.Filename, result.Size, result.Frames)

	if o.hist != nil {
		if err := o.hist.Record(history.Record{
			JobID:    id,
			Status:   registry.StatusDone,
			Filename: result.Filename,
			Encoder:  result.Encoder,
		}); err != nil {
			logger.Errorf("Failed to record history for job %s: %v", id, err)
		}
	}

	o.publishArtifact(id, result.Filename)
}

// step overwrites the job's running state with a new progress description.
// Latest step wins; there is no history of earlier steps.
func (o *Orchestrator) step(id, step string) {
	o.reg.Update(id, registry.Job{Status: registry.StatusRunning, Step: step})
}

func (o *Orchestrator) fail(id, encoderName, msg string) {
	o.reg.Update(id, registry.Job{Status: registry.StatusError, Error: msg})
	logger.Errorf("Job %s failed: %s", id, msg)

	if o.hist != nil {
		if err := o.hist.Record(history.Record{
			JobID:   id,
			Status:  registry.StatusError,
			Encoder: encoderName,
			Error:   msg,
		}); err != nil {
			logger.Errorf("Failed to record history for job %s: %v", id, err)
		}
	}
}

// convert stages the upload, normalizes the options and drives the selected
// strategy. The temp input file is removed on every exit path; palette and
// frame scratch space are owned by the strategies themselves.
func (o *Orchestrator) convert(id string, f form.Form) (registry.Job, error) {
	o.step(id, "Saving uploaded video…")

	video, ok := f["video"]
	if !ok || !video.IsFile() {
		return registry.Job{}, fmt.Errorf("no video file received")
	}

	suffix := filepath.Ext(video.Filename)
	if suffix == "" {
		suffix = ".mp4"
	}
	in, err := os.CreateTemp("", "gifmaker-upload-*"+suffix)
	if err != nil {
		return registry.Job{}, fmt.Errorf("failed to stage upload: %w", err)
	}
	inputPath := in.Name()
	defer os.Remove(inputPath)

	if _, err := in.Write(video.Data); err != nil {
		in.Close()
		return registry.Job{}, fmt.Errorf("failed to stage upload: %w", err)
	}
	if err := in.Close(); err != nil {
		return registry.Job{}, fmt.Errorf("failed to stage upload: %w", err)
	}

	opts, encoderName, err := parseOptions(f)
	if err != nil {
		return registry.Job{}, err
	}
	opts.Progress = func(step string) { o.step(id, step) }

	enc, ok := encoder.Get(encoderName)
	if !ok {
		return registry.Job{Encoder: encoderName}, fmt.Errorf("encoder %s is not available", encoderName)
	}

	outputName := id + ".gif"
	outputPath := filepath.Join(o.outputDir, outputName)

	ctx := context.Background()
	if err := enc(ctx, inputPath, outputPath, opts); err != nil {
		return registry.Job{Encoder: encoderName}, err
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		return registry.Job{Encoder: encoderName}, fmt.Errorf("output artifact missing: %w", err)
	}

	width, height, frames := encoder.Probe(ctx, outputPath)

	return registry.Job{
		Status:   registry.StatusDone,
		URL:      "/output/" + outputName,
		Filename: outputName,
		Size:     formatSize(info.Size()),
		Width:    width,
		Height:   height,
		Frames:   frames,
		FPS:      opts.FPS,
		Encoder:  encoderName,
	}, nil
}

// parseOptions normalizes the form fields into encoder options. Numeric
// fields that are present but unparseable are hard failures; they indicate
// a malformed request, not something to paper over with a default.
func parseOptions(f form.Form) (encoder.Options, string, error) {
	var opts encoder.Options

	fps, err := strconv.Atoi(f.Value("fps", "15"))
	if err != nil || fps <= 0 {
		return opts, "", fmt.Errorf("invalid fps value %q", f.Value("fps", ""))
	}

	width := f.Value("width", "640")
	if width != "original" {
		if n, err := strconv.Atoi(width); err != nil || n <= 0 {
			return opts, "", fmt.Errorf("invalid width value %q", width)
		}
	}

	loop, err := strconv.Atoi(f.Value("loop", "0"))
	if err != nil || loop < 0 {
		return opts, "", fmt.Errorf("invalid loop value %q", f.Value("loop", ""))
	}

	opts = encoder.Options{
		FPS:   fps,
		Width: width,
		Start: strings.TrimSpace(f.Value("start", "")),
		End:   strings.TrimSpace(f.Value("end", "")),
		Loop:  loop,
	}
	return opts, f.Value("encoder", "ffmpeg-high"), nil
}

// publishArtifact mirrors the finished GIF to the configured remote backend.
// Best effort: a failed upload never changes the job outcome.
func (o *Orchestrator) publishArtifact(id, filename string) {
	if o.publisher == nil {
		return
	}

	file, err := os.Open(filepath.Join(o.outputDir, filename))
	if err != nil {
		logger.Errorf("Job %s: cannot open artifact for publishing: %v", id, err)
		return
	}
	defer file.Close()

	if err := o.publisher.Upload(context.Background(), filename, file); err != nil {
		logger.Errorf("Job %s: publish failed: %v", id, err)
	}
}

func formatSize(bytes int64) string {
	if bytes < 1024*1024 {
		return fmt.Sprintf("%.0f KB", float64(bytes)/1024)
	}
	return fmt.Sprintf("%.1f MB", float64(bytes)/1024/1024)
}
