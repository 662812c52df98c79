package encoder

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// Per-phase deadlines. Exceeding one is reported as a timeout, distinct from
// a non-zero exit.
const (
	extractTimeout = 180 * time.Second
	paletteTimeout = 120 * time.Second
	renderTimeout  = 300 * time.Second
)

// How much trailing stderr to keep in an error message.
const stderrTail = 800

// runFFmpeg executes one ffmpeg invocation with a phase-specific deadline.
// On failure the error carries the tail of the tool's diagnostics.
func runFFmpeg(ctx context.Context, timeout time.Duration, phase string, args []string) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return nil
	}
	if ctx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("%s timed out after %s", phase, timeout)
	}
	return fmt.Errorf("%s failed:\n%s", phase, tail(stderr.String(), stderrTail))
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) > n {
		return s[len(s)-n:]
	}
	return s
}

// EncodeFFmpegHigh renders via a two-pass pipeline: an adaptive palette is
// generated from the filtered video first, then the final GIF is composited
// against it with ordered dithering. Slower, noticeably better color.
func EncodeFFmpegHigh(ctx context.Context, input, output string, opts Options) error {
	timeArgs, err := opts.timeArgs()
	if err != nil {
		return err
	}
	vf := opts.filter()

	palette := strings.TrimSuffix(output, ".gif") + "_palette.png"
	defer os.Remove(palette)

	opts.progress("Generating color palette…")
	args := append([]string{"-y"}, timeArgs...)
	args = append(args,
		"-i", input,
		"-vf", vf+",palettegen=stats_mode=diff",
		palette,
	)
	if err := runFFmpeg(ctx, paletteTimeout, "Palette generation", args); err != nil {
		return err
	}

	opts.progress("Rendering GIF…")
	args = append([]string{"-y"}, timeArgs...)
	args = append(args,
		"-i", input,
		"-i", palette,
		"-lavfi", vf+" [x]; [x][1:v] paletteuse=dither=bayer:bayer_scale=5:diff_mode=rectangle",
		"-loop", strconv.Itoa(opts.Loop),
		output,
	)
	return runFFmpeg(ctx, renderTimeout, "GIF conversion", args)
}

// EncodeFFmpegMed renders in a single pass with ffmpeg's stock GIF palette.
func EncodeFFmpegMed(ctx context.Context, input, output string, opts Options) error {
	timeArgs, err := opts.timeArgs()
	if err != nil {
		return err
	}

	opts.progress("Rendering GIF…")
	args := append([]string{"-y"}, timeArgs...)
	args = append(args,
		"-i", input,
		"-vf", opts.filter(),
		"-loop", strconv.Itoa(opts.Loop),
		output,
	)
	return runFFmpeg(ctx, renderTimeout, "GIF conversion", args)
}
