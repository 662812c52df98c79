package sweeper

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/btangonan/gif-maker/registry"
)

func writeArtifact(t *testing.T, dir, name string, age time.Duration) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("GIF89a"), 0644); err != nil {
		t.Fatal(err)
	}
	mtime := time.Now().Add(-age)
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSweepDeletesOnlyAgedGIFs(t *testing.T) {
	dir := t.TempDir()
	old := writeArtifact(t, dir, "old.gif", 2*time.Hour)
	fresh := writeArtifact(t, dir, "fresh.gif", time.Minute)
	other := writeArtifact(t, dir, "notes.txt", 5*time.Hour)

	s := New(registry.NewStore(10, 2), nil, dir, time.Hour, 100)
	s.Sweep()

	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Error("aged gif should have been deleted")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Error("fresh gif should have survived")
	}
	// Non-gif files are never the sweeper's business.
	if _, err := os.Stat(other); err != nil {
		t.Error("non-gif file should have survived")
	}
}

func TestSweepPrunesTerminalRecords(t *testing.T) {
	reg := registry.NewStore(100, 10)
	for i := 0; i < 8; i++ {
		reg.Create(fmt.Sprintf("t%d", i), registry.Job{Status: registry.StatusDone})
	}
	reg.Create("live", registry.Job{Status: registry.StatusRunning})

	s := New(reg, nil, t.TempDir(), time.Hour, 3)
	s.Sweep()

	count := 0
	for i := 0; i < 8; i++ {
		if _, ok := reg.Get(fmt.Sprintf("t%d", i)); ok {
			count++
		}
	}
	if count != 3 {
		t.Errorf("terminal records kept = %d, want 3", count)
	}
	if _, ok := reg.Get("live"); !ok {
		t.Error("running job must not be pruned")
	}
}

func TestSweepToleratesMissingOutputDir(t *testing.T) {
	s := New(registry.NewStore(10, 2), nil, filepath.Join(t.TempDir(), "gone"), time.Hour, 100)
	// Must not panic; errors are swallowed.
	s.Sweep()
}
