package helper

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/snowfallorg/icicle/internal/messages"
)

// CommandRunner runs partitioning tools.
type CommandRunner interface {
	// Run executes name with args and returns its stdout.
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// Mounter attaches filesystems to the target tree.
type Mounter interface {
	Mount(source string, target string, fstype string) error
}

// ExecRunner runs tools from PATH.
type ExecRunner struct{}

// Run executes name and folds its stderr into the error on failure.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return stdout.Bytes(), fmt.Errorf(messages.HelperCommandFailedFmt, strings.Join(cmd.Args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

// UnixMounter mounts with mount(2).
type UnixMounter struct{}

// Mount mounts source at target, which must exist.
func (UnixMounter) Mount(source string, target string, fstype string) error {
	return unix.Mount(source, target, fstype, 0, "")
}
