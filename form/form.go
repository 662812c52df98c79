// Package form decodes a buffered multipart/form-data request body into
// named fields. The whole body is already in memory by the time the server
// has enforced the upload cap, so this works on byte slices rather than the
// streaming reader stdlib mime/multipart is built around.
package form

import (
	"bytes"
	"fmt"
	"mime"
	"strings"
)

// Part is one decoded form field. File parts carry a Filename and raw Data;
// text parts carry a trimmed Value and an empty Filename.
type Part struct {
	Filename string
	Data     []byte
	Value    string
}

// IsFile reports whether the part arrived with a filename attribute.
func (p Part) IsFile() bool {
	return p.Filename != ""
}

// Form maps field name to its decoded part. A name that appears more than
// once keeps the last occurrence.
type Form map[string]Part

// Value returns the text value for name, or fallback when the field is
// missing or was a file part.
func (f Form) Value(name, fallback string) string {
	p, ok := f[name]
	if !ok || p.IsFile() {
		return fallback
	}
	return p.Value
}

// Parse splits body into the parts declared by the boundary parameter of
// contentType. A missing boundary is the caller's 400, not a panic.
func Parse(body []byte, contentType string) (Form, error) {
	boundary, err := extractBoundary(contentType)
	if err != nil {
		return nil, err
	}

	result := make(Form)
	delim := []byte("--" + boundary)
	parts := bytes.Split(body, delim)
	if len(parts) < 2 {
		return result, nil
	}

	for _, part := range parts[1:] {
		trimmed := bytes.TrimSpace(part)
		// The terminal sentinel after the last boundary is "--".
		if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("--")) {
			continue
		}
		part = bytes.TrimLeft(part, "\r\n")

		idx := bytes.Index(part, []byte("\r\n\r\n"))
		if idx < 0 {
			continue
		}
		headerBlock := part[:idx]
		content := part[idx+4:]
		// Exactly one trailing CRLF belongs to the next boundary delimiter,
		// anything before it is payload.
		content = bytes.TrimSuffix(content, []byte("\r\n"))

		name, filename := parseDisposition(string(headerBlock))
		if name == "" {
			continue
		}
		if filename != "" {
			result[name] = Part{Filename: filename, Data: content}
		} else {
			result[name] = Part{Value: strings.TrimSpace(string(content))}
		}
	}

	return result, nil
}

func extractBoundary(contentType string) (string, error) {
	_, params, err := mime.ParseMediaType(contentType)
	if err == nil {
		if b, ok := params["boundary"]; ok && b != "" {
			return b, nil
		}
	}
	// Fall back to a manual scan so a slightly malformed header with a
	// usable boundary parameter still decodes.
	for _, seg := range strings.Split(contentType, ";") {
		seg = strings.TrimSpace(seg)
		if strings.HasPrefix(seg, "boundary=") {
			if b := strings.Trim(seg[len("boundary="):], `"`); b != "" {
				return b, nil
			}
		}
	}
	return "", fmt.Errorf("no boundary found in content type %q", contentType)
}

// parseDisposition pulls name and filename out of the part's
// Content-Disposition header line.
func parseDisposition(headerBlock string) (name, filename string) {
	for _, line := range strings.Split(headerBlock, "\r\n") {
		if !strings.Contains(line, "Content-Disposition") {
			continue
		}
		for _, seg := range strings.Split(line, ";") {
			seg = strings.TrimSpace(seg)
			if strings.HasPrefix(seg, "name=") {
				name = strings.Trim(seg[len("name="):], `"`)
			} else if strings.HasPrefix(seg, "filename=") {
				filename = strings.Trim(seg[len("filename="):], `"`)
			}
		}
	}
	return name, filename
}
