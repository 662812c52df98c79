package encoder

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"

	"github.com/btangonan/gif-maker/logger"
)

// EncodeFunc is the function signature for any encoder strategy.
type EncodeFunc func(ctx context.Context, input, output string, opts Options) error

// Options carries the normalized conversion parameters. Width is either
// "original" or a positive pixel count as a string; Start/End are decimal
// seconds and empty when unset.
type Options struct {
	FPS   int
	Width string
	Start string
	End   string
	Loop  int

	// Progress, when set, receives human-readable step descriptions as the
	// strategy moves through its phases.
	Progress func(step string)
}

func (o Options) progress(step string) {
	if o.Progress != nil {
		o.Progress(step)
	}
}

// filter returns the fps-sampling and scaling filter chain shared by all
// strategies. Height is derived (-2 rounds to even, which GIF palettes and
// yuv pipelines both want).
func (o Options) filter() string {
	scale := "scale=iw:ih"
	if o.Width != "" && o.Width != "original" {
		scale = fmt.Sprintf("scale=%s:-2:flags=lanczos", o.Width)
	}
	return fmt.Sprintf("fps=%d,%s", o.FPS, scale)
}

// timeArgs returns the input trim arguments. With both ends set the span is
// passed as a duration relative to the start; an end before the start yields
// a negative duration the tool rejects, which is the deterministic failure
// the caller wants.
func (o Options) timeArgs() ([]string, error) {
	var args []string
	if o.Start != "" {
		if _, err := strconv.ParseFloat(o.Start, 64); err != nil {
			return nil, fmt.Errorf("invalid start time %q", o.Start)
		}
		args = append(args, "-ss", o.Start)
	}
	if o.End != "" {
		end, err := strconv.ParseFloat(o.End, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid end time %q", o.End)
		}
		if o.Start != "" {
			start, _ := strconv.ParseFloat(o.Start, 64)
			args = append(args, "-t", strconv.FormatFloat(end-start, 'f', -1, 64))
		} else {
			args = append(args, "-to", o.End)
		}
	}
	return args, nil
}

// Registry maps strategy name → encoder function
var Registry = map[string]EncodeFunc{}

// Register adds the strategy if the underlying command exists, logs status
func Register(name string, cmdName string, fn EncodeFunc) {
	if _, err := exec.LookPath(cmdName); err != nil {
		logger.Warnf("encoder [%s] skipped: command '%s' not found in PATH", name, cmdName)
		return
	}
	Registry[name] = fn
	logger.Debugf("encoder [%s] registered (command: %s)", name, cmdName)
}

// Get looks up a strategy by name
func Get(name string) (EncodeFunc, bool) {
	fn, ok := Registry[name]
	return fn, ok
}

// RegisterDefaults registers the three GIF strategies. All of them need
// ffmpeg on PATH; libvips additionally drives the vips library in-process.
func RegisterDefaults() {
	Register("ffmpeg-high", "ffmpeg", EncodeFFmpegHigh)
	Register("ffmpeg-med", "ffmpeg", EncodeFFmpegMed)
	Register("libvips", "ffmpeg", EncodeVips)
}
