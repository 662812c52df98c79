// Package sweeper enforces retention: aged GIFs are deleted from the output
// directory and finished job records are pruned from the registry. The two
// prunes are independent: a job record may briefly outlive its artifact and
// vice versa, which the request surface treats as a plain 404.
package sweeper

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/btangonan/gif-maker/history"
	"github.com/btangonan/gif-maker/logger"
	"github.com/btangonan/gif-maker/registry"
)

// historyMaxAge bounds the durable record store independently of the
// short-lived artifact window.
const historyMaxAge = 30 * 24 * time.Hour

type Sweeper struct {
	reg          *registry.Store
	hist         *history.Store
	outputDir    string
	retention    time.Duration
	keepTerminal int
}

func New(reg *registry.Store, hist *history.Store, outputDir string, retention time.Duration, keepTerminal int) *Sweeper {
	return &Sweeper{
		reg:          reg,
		hist:         hist,
		outputDir:    outputDir,
		retention:    retention,
		keepTerminal: keepTerminal,
	}
}

// Run sweeps on the given interval until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context, interval time.Duration) {
	logger.Infof("Retention sweeper started (interval %s, artifact retention %s)", interval, s.retention)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Retention sweeper stopped")
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Sweep performs one retention pass. Individual deletion failures are
// logged and skipped, never fatal.
func (s *Sweeper) Sweep() {
	removed := s.sweepArtifacts()
	pruned := s.reg.PruneTerminal(s.keepTerminal)
	if removed > 0 || pruned > 0 {
		logger.Infof("Sweep removed %d artifacts, pruned %d job records", removed, pruned)
	}

	if s.hist != nil {
		if err := s.hist.CleanupOldRecords(historyMaxAge); err != nil {
			logger.Errorf("Failed to clean up old history records: %v", err)
		}
	}
}

func (s *Sweeper) sweepArtifacts() int {
	cutoff := time.Now().Add(-s.retention)

	entries, err := os.ReadDir(s.outputDir)
	if err != nil {
		logger.Errorf("Failed to scan output directory: %v", err)
		return 0
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".gif") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(s.outputDir, entry.Name())); err != nil {
				logger.Debugf("Failed to remove aged artifact %s: %v", entry.Name(), err)
				continue
			}
			removed++
		}
	}
	return removed
}
