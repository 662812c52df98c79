package history

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndGet(t *testing.T) {
	s := openTestStore(t)

	rec := Record{
		JobID:    "abc12345",
		Status:   "done",
		Filename: "abc12345.gif",
		Encoder:  "ffmpeg-high",
	}
	if err := s.Record(rec); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	got, err := s.Get("abc12345")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got == nil {
		t.Fatal("record missing")
	}
	if got.Filename != "abc12345.gif" || got.Encoder != "ffmpeg-high" {
		t.Errorf("record mismatch: %+v", got)
	}
	if got.Timestamp.IsZero() {
		t.Error("timestamp should have been defaulted")
	}
}

func TestGetMissing(t *testing.T) {
	s := openTestStore(t)
	got, err := s.Get("nope")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing id, got %+v", got)
	}
}

func TestListAndCleanup(t *testing.T) {
	s := openTestStore(t)

	old := Record{JobID: "old1", Status: "error", Error: "boom", Timestamp: time.Now().Add(-48 * time.Hour)}
	fresh := Record{JobID: "new1", Status: "done", Timestamp: time.Now()}
	if err := s.Record(old); err != nil {
		t.Fatal(err)
	}
	if err := s.Record(fresh); err != nil {
		t.Fatal(err)
	}

	records, err := s.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	if err := s.CleanupOldRecords(24 * time.Hour); err != nil {
		t.Fatalf("CleanupOldRecords failed: %v", err)
	}

	if got, _ := s.Get("old1"); got != nil {
		t.Error("old record should have been removed")
	}
	if got, _ := s.Get("new1"); got == nil {
		t.Error("fresh record should have survived")
	}
}
