package form

import (
	"bytes"
	"testing"
)

const testBoundary = "----testboundary42"

func buildBody(fields map[string]string, files map[string][2]string) []byte {
	var buf bytes.Buffer
	for name, value := range fields {
		buf.WriteString("--" + testBoundary + "\r\n")
		buf.WriteString(`Content-Disposition: form-data; name="` + name + `"` + "\r\n\r\n")
		buf.WriteString(value + "\r\n")
	}
	for name, fv := range files {
		buf.WriteString("--" + testBoundary + "\r\n")
		buf.WriteString(`Content-Disposition: form-data; name="` + name + `"; filename="` + fv[0] + `"` + "\r\n")
		buf.WriteString("Content-Type: application/octet-stream\r\n\r\n")
		buf.WriteString(fv[1] + "\r\n")
	}
	buf.WriteString("--" + testBoundary + "--\r\n")
	return buf.Bytes()
}

func TestParseTextAndFileFields(t *testing.T) {
	body := buildBody(
		map[string]string{"fps": "10", "width": "320"},
		map[string][2]string{"video": {"clip.mp4", "\x00\x01binary\r\npayload"}},
	)

	f, err := Parse(body, "multipart/form-data; boundary="+testBoundary)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if got := f.Value("fps", ""); got != "10" {
		t.Errorf("fps = %q, want 10", got)
	}
	if got := f.Value("width", ""); got != "320" {
		t.Errorf("width = %q, want 320", got)
	}

	video, ok := f["video"]
	if !ok {
		t.Fatal("video part missing")
	}
	if !video.IsFile() {
		t.Error("video part should be a file")
	}
	if video.Filename != "clip.mp4" {
		t.Errorf("filename = %q, want clip.mp4", video.Filename)
	}
	if string(video.Data) != "\x00\x01binary\r\npayload" {
		t.Errorf("binary payload corrupted: %q", video.Data)
	}
}

func TestParseStripsExactlyOneTrailingCRLF(t *testing.T) {
	// Payload ends in its own CRLF; only the delimiter CRLF may be removed.
	var buf bytes.Buffer
	buf.WriteString("--" + testBoundary + "\r\n")
	buf.WriteString(`Content-Disposition: form-data; name="blob"; filename="a.bin"` + "\r\n\r\n")
	buf.WriteString("data\r\n")   // application data
	buf.WriteString("\r\n")       // delimiter CRLF
	buf.WriteString("--" + testBoundary + "--\r\n")

	f, err := Parse(buf.Bytes(), "multipart/form-data; boundary="+testBoundary)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got := string(f["blob"].Data); got != "data\r\n" {
		t.Errorf("payload = %q, want %q", got, "data\r\n")
	}
}

func TestParseMissingBoundary(t *testing.T) {
	if _, err := Parse([]byte("whatever"), "multipart/form-data"); err == nil {
		t.Fatal("expected error for missing boundary")
	}
	if _, err := Parse([]byte("whatever"), "text/plain"); err == nil {
		t.Fatal("expected error for non-multipart content type")
	}
}

func TestParseQuotedBoundary(t *testing.T) {
	body := buildBody(map[string]string{"loop": "0"}, nil)
	f, err := Parse(body, `multipart/form-data; boundary="`+testBoundary+`"`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got := f.Value("loop", ""); got != "0" {
		t.Errorf("loop = %q, want 0", got)
	}
}

func TestParseIgnoresNamelessParts(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("--" + testBoundary + "\r\n")
	buf.WriteString("Content-Disposition: form-data\r\n\r\n")
	buf.WriteString("orphan\r\n")
	buf.WriteString("--" + testBoundary + "\r\n")
	buf.WriteString(`Content-Disposition: form-data; name="kept"` + "\r\n\r\n")
	buf.WriteString("  value  \r\n")
	buf.WriteString("--" + testBoundary + "--\r\n")

	f, err := Parse(buf.Bytes(), "multipart/form-data; boundary="+testBoundary)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(f) != 1 {
		t.Errorf("expected 1 field, got %d", len(f))
	}
	// Text values are whitespace-trimmed.
	if got := f.Value("kept", ""); got != "value" {
		t.Errorf("kept = %q, want value", got)
	}
}

func TestValueFallbacks(t *testing.T) {
	body := buildBody(nil, map[string][2]string{"video": {"a.mp4", "x"}})
	f, err := Parse(body, "multipart/form-data; boundary="+testBoundary)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got := f.Value("missing", "15"); got != "15" {
		t.Errorf("missing field fallback = %q, want 15", got)
	}
	// A file part never doubles as a text value.
	if got := f.Value("video", "fallback"); got != "fallback" {
		t.Errorf("file part as value = %q, want fallback", got)
	}
}

func TestParseEmptyBody(t *testing.T) {
	f, err := Parse(nil, "multipart/form-data; boundary="+testBoundary)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(f) != 0 {
		t.Errorf("expected empty form, got %d fields", len(f))
	}
}
