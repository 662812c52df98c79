package encoder

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/davidbyttow/govips/v2/vips"
)

// EncodeVips extracts the filtered frames with ffmpeg, then assembles them
// into a single multi-page image with libvips and saves that as the GIF.
//
// The frames are joined along one axis with explicit page metadata instead
// of being fed to a direct multi-frame save: stacking N frames of height H
// as a plain image hits the GIF canvas-height ceiling once N×H gets large,
// while a join plus a page-height marker is reinterpreted as independent
// frames and avoids the limit.
func EncodeVips(ctx context.Context, input, output string, opts Options) error {
	timeArgs, err := opts.timeArgs()
	if err != nil {
		return err
	}

	framesDir, err := os.MkdirTemp("", "gifmaker-frames-")
	if err != nil {
		return fmt.Errorf("failed to create frames directory: %w", err)
	}
	defer os.RemoveAll(framesDir)

	opts.progress("Extracting frames…")
	args := append([]string{"-y"}, timeArgs...)
	args = append(args,
		"-i", input,
		"-vf", opts.filter(),
		filepath.Join(framesDir, "frame%05d.png"),
	)
	if err := runFFmpeg(ctx, extractTimeout, "Frame extraction", args); err != nil {
		return err
	}

	return encodeFrameDir(framesDir, output, opts)
}

// encodeFrameDir assembles whatever frames the extraction left in dir. An
// empty directory is a hard failure rather than an empty GIF.
func encodeFrameDir(dir, output string, opts Options) error {
	frames, err := filepath.Glob(filepath.Join(dir, "frame*.png"))
	if err != nil {
		return fmt.Errorf("failed to list frames: %w", err)
	}
	sort.Strings(frames)
	if len(frames) == 0 {
		return fmt.Errorf("no frames extracted from video")
	}

	opts.progress(fmt.Sprintf("Encoding %d frames with libvips…", len(frames)))
	return assembleGIF(frames, output, opts)
}

// assembleGIF joins the frame images vertically and saves them as an
// animated GIF with per-frame delay and loop metadata.
func assembleGIF(frames []string, output string, opts Options) error {
	images := make([]*vips.ImageRef, 0, len(frames))
	defer func() {
		for _, img := range images {
			img.Close()
		}
	}()

	for _, f := range frames {
		img, err := vips.NewImageFromFile(f)
		if err != nil {
			return fmt.Errorf("failed to load frame %s: %w", filepath.Base(f), err)
		}
		images = append(images, img)
	}

	frameHeight := images[0].Height()

	joined := images[0]
	if len(images) > 1 {
		if err := joined.ArrayJoin(images[1:], 1); err != nil {
			return fmt.Errorf("failed to join frames: %w", err)
		}
	}

	delay := int(math.Round(1000 / float64(opts.FPS)))
	if delay < 10 {
		delay = 10
	}
	delays := make([]int, len(images))
	for i := range delays {
		delays[i] = delay
	}

	// page-height is what tells gifsave the stacked image is N independent
	// frames rather than one tall canvas.
	if err := joined.SetPageHeight(frameHeight); err != nil {
		return fmt.Errorf("failed to set page height: %w", err)
	}
	if err := joined.SetPageDelay(delays); err != nil {
		return fmt.Errorf("failed to set frame delays: %w", err)
	}
	joined.SetInt("loop", opts.Loop)

	params := vips.NewGifExportParams()
	params.Effort = 7
	params.Dither = 1.0
	buf, _, err := joined.ExportGIF(params)
	if err != nil {
		return fmt.Errorf("gifsave failed: %w", err)
	}
	return os.WriteFile(output, buf, 0644)
}
