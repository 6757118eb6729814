package helper

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/renameio"

	"github.com/snowfallorg/icicle/internal/messages"
)

// WriteFile creates the parent directories of path and replaces path with
// contents atomically, so a reader never sees a partially written file.
func WriteFile(path string, contents []byte) error {
	if !filepath.IsAbs(path) {
		return fmt.Errorf(messages.HelperPathNotAbsFmt, path)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf(messages.HelperMkdirFmt, dir, err)
	}
	if err := renameio.WriteFile(path, contents, 0o644); err != nil {
		return fmt.Errorf(messages.HelperWriteFileFmt, path, err)
	}
	return nil
}
