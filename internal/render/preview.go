package render

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"sync"

	"github.com/aymanbagabas/go-udiff"

	"github.com/snowfallorg/icicle/internal/messages"
)

// DefaultDiffMaxLines is the default maximum number of diff lines shown per file.
const DefaultDiffMaxLines = 40

// File is one rendered file.
type File struct {
	Path     string
	Contents []byte
}

// MemorySink is a FileWriter that keeps rendered files in memory.
type MemorySink struct {
	mu    sync.Mutex
	files map[string][]byte
}

// WriteFile implements FileWriter.
func (m *MemorySink) WriteFile(_ context.Context, path string, contents []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.files == nil {
		m.files = make(map[string][]byte)
	}
	m.files[path] = append([]byte(nil), contents...)
	return nil
}

// Files returns the collected files sorted by path.
func (m *MemorySink) Files() []File {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]File, 0, len(m.files))
	for p, c := range m.files {
		out = append(out, File{Path: p, Contents: c})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// DiffPreview is a per-file unified diff of a rendered file against the file
// currently at the same path.
type DiffPreview struct {
	Path        string
	New         bool
	UnifiedDiff string
	Truncated   bool
}

// Preview diffs every file against its counterpart in current, which is
// addressed by the file path without its leading slash. A missing
// counterpart diffs against empty content.
func Preview(files []File, current fs.FS, maxLines int) ([]DiffPreview, error) {
	out := make([]DiffPreview, 0, len(files))
	for _, f := range files {
		name := strings.TrimPrefix(f.Path, "/")
		existing, err := fs.ReadFile(current, name)
		isNew := errors.Is(err, fs.ErrNotExist)
		if err != nil && !isNew {
			return nil, fmt.Errorf(messages.RenderPreviewReadFmt, f.Path, err)
		}
		diff, truncated := renderTruncatedUnifiedDiff(f.Path+" (current)", f.Path+" (rendered)", string(existing), string(f.Contents), maxLines)
		out = append(out, DiffPreview{Path: f.Path, New: isNew, UnifiedDiff: diff, Truncated: truncated})
	}
	return out, nil
}

func renderTruncatedUnifiedDiff(fromName string, toName string, fromContent string, toContent string, maxLines int) (string, bool) {
	limit := maxLines
	if limit <= 0 {
		limit = DefaultDiffMaxLines
	}
	lines := splitDiffLines(udiff.Unified(fromName, toName, fromContent, toContent))
	if len(lines) <= limit {
		return ensureTrailingNewline(strings.Join(lines, "\n")), false
	}
	truncated := append(lines[:limit:limit], fmt.Sprintf(messages.RenderDiffTruncatedFmt, limit))
	return ensureTrailingNewline(strings.Join(truncated, "\n")), true
}

func splitDiffLines(content string) []string {
	trimmed := strings.TrimRight(content, "\n")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "\n")
}

func ensureTrailingNewline(content string) string {
	if content == "" || strings.HasSuffix(content, "\n") {
		return content
	}
	return content + "\n"
}
