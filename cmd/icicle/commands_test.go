//go:build !windows

package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/require"

	"github.com/snowfallorg/icicle/internal/testutil"
	"github.com/snowfallorg/icicle/internal/wizard"
)

const testRequest = `
template_set = "gnome"
keyboard = "us"

[partitions]
full_disk = "/dev/vda"

[user]
username = "alice"
hostname = "icicle-test"
password = "hunter2"
`

const testTemplate = "{\n@BOOTLOADER@\n@NETWORK@\n@STATEVERSION@\n}\n"

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// fixture is a fake live system: stub tools on PATH that append their
// invocation to a log, a settings file and a template tree.
type fixture struct {
	dir     string
	log     string
	config  string
	request string
	scratch string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	noColor := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = noColor })

	dir := t.TempDir()
	f := &fixture{
		dir:     dir,
		log:     filepath.Join(dir, "calls.log"),
		config:  filepath.Join(dir, "config.toml"),
		request: filepath.Join(dir, "request.toml"),
		scratch: filepath.Join(dir, "scratch"),
	}
	bin := filepath.Join(dir, "bin")
	libexec := filepath.Join(dir, "libexec")
	templates := filepath.Join(dir, "etc", "icicle", "gnome")
	for _, d := range []string{bin, libexec, templates} {
		require.NoError(t, os.MkdirAll(d, 0o755))
	}

	elevate := testutil.WriteScript(t, bin, "elevate", `exec "$@"`)
	testutil.WriteScript(t, bin, "uname", "echo x86_64")
	testutil.WriteScript(t, bin, "nixos-version", "echo '24.05.20240601.abcdef (Uakari)'")
	testutil.WriteRecordingStub(t, bin, "umount", f.log, 32)
	testutil.WriteRecordingStub(t, bin, "rm", f.log, 0)
	testutil.WriteRecordingStub(t, bin, "nixos-generate-config", f.log, 0)
	testutil.WriteRecordingStub(t, bin, "nixos-enter", f.log, 0)
	testutil.WriteScript(t, bin, "nixos-install", fmt.Sprintf("echo \"nixos-install $*\" >> %q\necho 'installation finished!'", f.log))
	testutil.WriteScript(t, libexec, "icicle-helper", fmt.Sprintf("echo \"icicle-helper $1 $2 $3\" >> %q\nif [ \"$1\" = partition ]; then echo 'Partitions ready'; fi", f.log))
	testutil.PrependPath(t, bin)

	settings := fmt.Sprintf(`
[paths]
sysconfdir = %q
libexecdir = %q
scratch_root = %q

[elevation]
command = %q

[log]
level = "debug"
`, filepath.Join(dir, "etc"), libexec, f.scratch, elevate)
	require.NoError(t, os.WriteFile(f.config, []byte(settings), 0o644))
	require.NoError(t, os.WriteFile(f.request, []byte(testRequest), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(templates, "configuration.nix"), []byte(testTemplate), 0o644))
	return f
}

func (f *fixture) calls(t *testing.T) []string {
	t.Helper()
	data, err := os.ReadFile(f.log)
	require.NoError(t, err)
	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func TestInstallCommand(t *testing.T) {
	f := newFixture(t)
	stdout := &syncBuffer{}
	stderr := &syncBuffer{}

	err := execute([]string{"icicle", "install", "--config", f.config, "--request", f.request}, stdout, stderr)
	require.NoError(t, err, stderr.String())

	require.Contains(t, stdout.String(), "Partitions ready\n")
	require.Contains(t, stdout.String(), "installation finished!")
	require.True(t, strings.HasSuffix(stdout.String(), "Installation finished.\n"), stdout.String())
	require.NotContains(t, stderr.String(), "hunter2")

	calls := f.calls(t)
	want := []string{
		"umount -R " + f.scratch,
		"rm -rf " + f.scratch,
		"icicle-helper partition --root " + f.scratch,
		"nixos-generate-config --root " + f.scratch,
		"icicle-helper write-file --path " + filepath.Join(f.scratch, "etc", "nixos", "configuration.nix"),
		"nixos-install --root " + f.scratch + " --no-root-passwd --no-channel-copy --flake " + f.scratch + "/etc/nixos#icicle-test",
		"nixos-enter --root " + f.scratch + " -c chpasswd",
	}
	require.Equal(t, want, calls)
}

func TestInstallCommandFailure(t *testing.T) {
	f := newFixture(t)
	testutil.WriteRecordingStub(t, filepath.Join(f.dir, "bin"), "nixos-generate-config", f.log, 1)
	stdout := &syncBuffer{}
	stderr := &syncBuffer{}

	err := execute([]string{"icicle", "install", "--config", f.config, "--request", f.request}, stdout, stderr)
	var silent *SilentExitError
	require.ErrorAs(t, err, &silent)
	require.Equal(t, 1, silent.Code)
	require.Contains(t, stdout.String(), "Installation failed")
	require.Contains(t, stderr.String(), "step=generate-base-config")

	for _, call := range f.calls(t) {
		require.False(t, strings.HasPrefix(call, "nixos-install"), "installer must not run after a failed step")
	}
}

func TestInstallRequiresRequest(t *testing.T) {
	var out bytes.Buffer
	err := execute([]string{"icicle", "install"}, &out, &out)
	require.EqualError(t, err, "--request is required")
}

func TestRenderCommand(t *testing.T) {
	f := newFixture(t)
	var stdout, stderr bytes.Buffer

	err := execute([]string{"icicle", "render", "--config", f.config, "--request", f.request}, &stdout, &stderr)
	require.NoError(t, err, stderr.String())
	out := stdout.String()
	require.True(t, strings.HasPrefix(out, "==> /etc/nixos/configuration.nix\n"), out)
	require.Contains(t, out, `networking.hostName = "icicle-test";`)
	require.Contains(t, out, `system.stateVersion = "24.05";`)
	require.NoFileExists(t, f.log, "render must not run privileged commands")
}

func TestRenderCommandDiff(t *testing.T) {
	f := newFixture(t)
	root := filepath.Join(f.dir, "live")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "etc", "nixos"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "etc", "nixos", "configuration.nix"), []byte("{\n}\n"), 0o644))
	var stdout, stderr bytes.Buffer

	err := execute([]string{"icicle", "render", "--config", f.config, "--request", f.request, "--diff", "--root", root}, &stdout, &stderr)
	require.NoError(t, err, stderr.String())
	require.Contains(t, stdout.String(), "==> /etc/nixos/configuration.nix\n")
	require.Contains(t, stdout.String(), `+  networking.hostName = "icicle-test";`)
}

func TestWizardCommandWritesRequest(t *testing.T) {
	f := newFixture(t)
	orig := newWizardUI
	newWizardUI = func() wizard.UI { return scriptedUI{} }
	t.Cleanup(func() { newWizardUI = orig })
	out := filepath.Join(f.dir, "wizard.toml")
	var stdout, stderr bytes.Buffer

	err := execute([]string{"icicle", "wizard", "--config", f.config, "--out", out}, &stdout, &stderr)
	require.NoError(t, err, stderr.String())
	require.Contains(t, stderr.String(), "Wrote install request to "+out)

	info, err := os.Stat(out)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	var rendered bytes.Buffer
	err = execute([]string{"icicle", "render", "--config", f.config, "--request", out}, &rendered, &stderr)
	require.NoError(t, err, stderr.String())
	require.Contains(t, rendered.String(), `networking.hostName = "wizardhost";`)
}

func TestWizardCommandNeedsTerminal(t *testing.T) {
	f := newFixture(t)
	var stdout, stderr bytes.Buffer
	err := execute([]string{"icicle", "wizard", "--config", f.config}, &stdout, &stderr)
	require.EqualError(t, err, "the wizard requires an interactive terminal")
}

// scriptedUI accepts every default and fills the required fields.
type scriptedUI struct{}

func (scriptedUI) Select(string, []string, *string) error        { return nil }
func (scriptedUI) MultiSelect(string, []string, *[]string) error { return nil }
func (scriptedUI) Note(string, string) error                     { return nil }

func (scriptedUI) Confirm(_ string, value *bool) error {
	*value = true
	return nil
}

func (scriptedUI) Input(title string, value *string) error {
	switch {
	case strings.HasPrefix(title, "Target disk"):
		*value = "/dev/vda"
	case title == "Username":
		*value = "bob"
	case title == "Hostname":
		*value = "wizardhost"
	}
	return nil
}

func (scriptedUI) SecretInput(title string, value *string) error {
	if strings.HasPrefix(title, "Root") {
		return nil
	}
	*value = "pw"
	return nil
}
