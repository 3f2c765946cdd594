// Package mimetypes picks the Content-Type for served files.
package mimetypes

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const (
	// DefaultType is used when nothing else identifies the content.
	DefaultType = "application/octet-stream"

	// SniffLen is how much of a file is read for content detection.
	SniffLen = 3072
)

var errSeek = errors.New("failed to rewind file after sniffing")

var builtin = map[string]string{
	".html":        "text/html; charset=utf-8",
	".htm":         "text/html; charset=utf-8",
	".css":         "text/css; charset=utf-8",
	".js":          "text/javascript; charset=utf-8",
	".mjs":         "text/javascript; charset=utf-8",
	".json":        "application/json",
	".map":         "application/json",
	".webmanifest": "application/manifest+json",
	".xml":         "application/xml",
	".svg":         "image/svg+xml",
	".wasm":        "application/wasm",
	".md":          "text/markdown; charset=utf-8",
	".txt":         "text/plain; charset=utf-8",
	".csv":         "text/csv; charset=utf-8",
	".png":         "image/png",
	".jpg":         "image/jpeg",
	".jpeg":        "image/jpeg",
	".gif":         "image/gif",
	".webp":        "image/webp",
	".avif":        "image/avif",
	".ico":         "image/x-icon",
	".woff":        "font/woff",
	".woff2":       "font/woff2",
	".ttf":         "font/ttf",
	".otf":         "font/otf",
	".pdf":         "application/pdf",
	".mp4":         "video/mp4",
	".webm":        "video/webm",
	".mp3":         "audio/mpeg",
}

// Mapper resolves content types from file names, falling back to sniffing.
type Mapper struct {
	overrides map[string]string
}

// NewMapper creates a Mapper. Override keys are extensions with or without
// the leading dot and are matched case-insensitively.
func NewMapper(overrides map[string]string) *Mapper {
	m := &Mapper{overrides: make(map[string]string, len(overrides))}

	for ext, ctype := range overrides {
		ext = strings.ToLower(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}

		m.overrides[ext] = withCharset(ctype)
	}

	return m
}

// ByExtension returns the content type implied by name's extension.
func (m *Mapper) ByExtension(name string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return "", false
	}

	if ctype, ok := m.overrides[ext]; ok {
		return ctype, true
	}

	if ctype, ok := builtin[ext]; ok {
		return ctype, true
	}

	if ctype := mime.TypeByExtension(ext); ctype != "" {
		return withCharset(ctype), true
	}

	return "", false
}

// TypeFor returns the content type for a file called name whose first bytes
// are head.
func (m *Mapper) TypeFor(name string, head []byte) string {
	if ctype, ok := m.ByExtension(name); ok {
		return ctype
	}

	if len(head) == 0 {
		return DefaultType
	}

	return withCharset(mimetype.Detect(head).String())
}

// TypeForFile is TypeFor reading the head from rs when the extension is not
// enough. rs is rewound to the start before returning.
func (m *Mapper) TypeForFile(name string, rs io.ReadSeeker) (string, error) {
	if ctype, ok := m.ByExtension(name); ok {
		return ctype, nil
	}

	head := make([]byte, SniffLen)

	n, err := io.ReadFull(rs, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read %s: %w", name, err)
	}

	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("%w: %w", errSeek, err)
	}

	return m.TypeFor(name, head[:n]), nil
}

func withCharset(ctype string) string {
	if strings.HasPrefix(ctype, "text/") && !strings.Contains(ctype, "charset=") {
		return ctype + "; charset=utf-8"
	}

	return ctype
}
