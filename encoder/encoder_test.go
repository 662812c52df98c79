package encoder

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFilterOriginalWidth(t *testing.T) {
	o := Options{FPS: 15, Width: "original"}
	if got := o.filter(); got != "fps=15,scale=iw:ih" {
		t.Errorf("filter = %q", got)
	}
}

func TestFilterScaledWidth(t *testing.T) {
	o := Options{FPS: 10, Width: "320"}
	want := "fps=10,scale=320:-2:flags=lanczos"
	if got := o.filter(); got != want {
		t.Errorf("filter = %q, want %q", got, want)
	}
}

func TestTimeArgsEmpty(t *testing.T) {
	args, err := Options{}.timeArgs()
	if err != nil {
		t.Fatalf("timeArgs failed: %v", err)
	}
	if len(args) != 0 {
		t.Errorf("expected no trim args, got %v", args)
	}
}

func TestTimeArgsStartOnly(t *testing.T) {
	args, err := Options{Start: "5"}.timeArgs()
	if err != nil {
		t.Fatalf("timeArgs failed: %v", err)
	}
	if strings.Join(args, " ") != "-ss 5" {
		t.Errorf("args = %v", args)
	}
}

func TestTimeArgsEndOnly(t *testing.T) {
	args, err := Options{End: "2.5"}.timeArgs()
	if err != nil {
		t.Fatalf("timeArgs failed: %v", err)
	}
	if strings.Join(args, " ") != "-to 2.5" {
		t.Errorf("args = %v", args)
	}
}

func TestTimeArgsBothBecomeRelativeDuration(t *testing.T) {
	args, err := Options{Start: "1.5", End: "4"}.timeArgs()
	if err != nil {
		t.Fatalf("timeArgs failed: %v", err)
	}
	if strings.Join(args, " ") != "-ss 1.5 -t 2.5" {
		t.Errorf("args = %v", args)
	}
}

func TestTimeArgsEndBeforeStartPassesNegativeDuration(t *testing.T) {
	// The negative span goes to the tool verbatim, which rejects it with a
	// deterministic failure the orchestrator surfaces as the job error.
	args, err := Options{Start: "5", End: "2"}.timeArgs()
	if err != nil {
		t.Fatalf("timeArgs failed: %v", err)
	}
	if strings.Join(args, " ") != "-ss 5 -t -3" {
		t.Errorf("args = %v", args)
	}
}

func TestTimeArgsRejectsGarbage(t *testing.T) {
	if _, err := (Options{Start: "abc"}).timeArgs(); err == nil {
		t.Error("expected error for unparseable start")
	}
	if _, err := (Options{End: "1..2"}).timeArgs(); err == nil {
		t.Error("expected error for unparseable end")
	}
}

func TestEncodeFrameDirEmptyIsError(t *testing.T) {
	// Extraction that produces no frames must fail the job, not write an
	// empty GIF.
	out := filepath.Join(t.TempDir(), "out.gif")
	err := encodeFrameDir(t.TempDir(), out, Options{FPS: 15})
	if err == nil {
		t.Fatal("expected error for empty frame directory")
	}
	if !strings.Contains(err.Error(), "no frames extracted") {
		t.Errorf("error = %v", err)
	}
	if _, statErr := os.Stat(out); statErr == nil {
		t.Error("no output artifact should exist")
	}
}

func TestRegisterSkipsMissingCommand(t *testing.T) {
	name := "test-strategy-missing-tool"
	Register(name, "gifmaker-no-such-command", func(ctx context.Context, in, out string, o Options) error {
		return nil
	})
	if _, ok := Get(name); ok {
		t.Error("strategy with missing command should not register")
	}
}

func TestGetUnknownStrategy(t *testing.T) {
	if _, ok := Get("definitely-not-registered"); ok {
		t.Error("unknown strategy should miss")
	}
}

func TestTail(t *testing.T) {
	if got := tail("short", 800); got != "short" {
		t.Errorf("tail = %q", got)
	}
	long := strings.Repeat("x", 1000) + "END"
	got := tail(long, 10)
	if got != "xxxxxxxEND" {
		t.Errorf("tail = %q", got)
	}
}

func TestProgressNilSafe(t *testing.T) {
	// Must not panic without a callback.
	Options{}.progress("step")

	var seen []string
	o := Options{Progress: func(s string) { seen = append(seen, s) }}
	o.progress("one")
	o.progress("two")
	if len(seen) != 2 || seen[0] != "one" {
		t.Errorf("progress callbacks = %v", seen)
	}
}
