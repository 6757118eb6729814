package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteStubCreatesExecutableThatSucceeds(t *testing.T) {
	dir := t.TempDir()
	stubPath := WriteStub(t, dir, "ok-stub")

	info, err := os.Stat(stubPath)
	if err != nil {
		t.Fatalf("stat stub: %v", err)
	}
	if info.Mode().Perm() != 0o755 {
		t.Fatalf("expected mode 0755, got %#o", info.Mode().Perm())
	}

	cmd := exec.Command(stubPath)
	if err := cmd.Run(); err != nil {
		t.Fatalf("expected success exit, got %v", err)
	}
}

func TestWriteStubWithExitCreatesExecutableWithRequestedExitCode(t *testing.T) {
	dir := t.TempDir()
	stubPath := WriteStubWithExit(t, dir, "exit-stub", 7)

	cmd := exec.Command(stubPath)
	err := cmd.Run()
	if err == nil {
		t.Fatal("expected non-zero exit status")
	}
	exitErr, ok := err.(*exec.ExitError)
	if !ok {
		t.Fatalf("expected *exec.ExitError, got %T", err)
	}
	if exitErr.ExitCode() != 7 {
		t.Fatalf("expected exit code 7, got %d", exitErr.ExitCode())
	}
}

func TestWriteRecordingStubAppendsArguments(t *testing.T) {
	dir := t.TempDir()
	log := filepath.Join(dir, "calls.log")
	stubPath := WriteRecordingStub(t, dir, "parted", log, 0)

	for _, arg := range []string{"-s", "--version"} {
		if err := exec.Command(stubPath, arg).Run(); err != nil {
			t.Fatalf("run stub: %v", err)
		}
	}
	data, err := os.ReadFile(log)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if got := strings.TrimSpace(string(data)); got != "parted -s\nparted --version" {
		t.Fatalf("unexpected log %q", got)
	}
}

func TestPrependPathFindsStub(t *testing.T) {
	dir := t.TempDir()
	WriteStub(t, dir, "icicle-test-stub")
	PrependPath(t, dir)

	found, err := exec.LookPath("icicle-test-stub")
	if err != nil {
		t.Fatalf("lookpath: %v", err)
	}
	if filepath.Dir(found) != dir {
		t.Fatalf("expected stub in %s, got %s", dir, found)
	}
}
