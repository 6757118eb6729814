package render

import (
	"context"
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/snowfallorg/icicle/internal/request"
	"github.com/snowfallorg/icicle/internal/sysinfo"
)

const configurationTemplate = `{ config, pkgs, ... }:
{
@NVIDIAOFFLOAD@
@BOOTLOADER@

@NETWORK@

@TIMEZONE@

@LOCALE@

@KEYBOARD@

@DESKTOP@

  users.users.@USERNAME@ = {
    isNormalUser = true;
    description = "@FULLNAME@";
  };
  # host @HOSTNAME@

@AUTOLOGIN@
@BROWSERS@
@PACKAGES@

@STATEVERSION@
}
`

var efiFacts = sysinfo.Facts{Arch: "x86_64", StateVersion: "24.05", UEFI: true}

type recordingWriter struct {
	paths []string
	files map[string]string
	fail  map[string]error
}

func (w *recordingWriter) WriteFile(_ context.Context, path string, contents []byte) error {
	if err := w.fail[path]; err != nil {
		return err
	}
	if w.files == nil {
		w.files = make(map[string]string)
	}
	w.paths = append(w.paths, path)
	w.files[path] = string(contents)
	return nil
}

func newRenderer(files fstest.MapFS, w FileWriter) *Renderer {
	return &Renderer{Templates: files, Writer: w, DestRoot: "/tmp/icicle/etc/nixos"}
}

func renderOne(t *testing.T, req *request.InstallRequest, facts sysinfo.Facts, bootDevice string) string {
	t.Helper()
	req.TemplateSet = "gnome"
	w := &recordingWriter{}
	r := newRenderer(fstest.MapFS{"gnome/configuration.nix": {Data: []byte(configurationTemplate)}}, w)
	require.NoError(t, r.Render(context.Background(), req, facts, bootDevice))
	out, ok := w.files["/tmp/icicle/etc/nixos/configuration.nix"]
	require.True(t, ok, "configuration.nix not written: %v", w.paths)
	return out
}

func TestRenderWithoutUser(t *testing.T) {
	out := renderOne(t, &request.InstallRequest{}, efiFacts, "")

	require.Contains(t, out, "users.users.@USERNAME@ = {")
	require.Contains(t, out, `description = "@FULLNAME@";`)
	require.Contains(t, out, "# host @HOSTNAME@")
	require.NotContains(t, out, "@AUTOLOGIN@")
	require.NotContains(t, out, "autoLogin")
	require.Contains(t, out, `networking.hostName = "nixos";`)
	require.Contains(t, out, "@TIMEZONE@")
	require.Contains(t, out, "@LOCALE@")
	require.Contains(t, out, "@KEYBOARD@")
	require.NotContains(t, out, "@NVIDIAOFFLOAD@")
	require.Contains(t, out, "boot.loader.systemd-boot.enable = true;")
	require.Contains(t, out, `  system.stateVersion = "24.05"; # Did you read the comment?`)
}

func TestRenderWithUser(t *testing.T) {
	req := &request.InstallRequest{
		Language: "en_US.UTF-8",
		Timezone: "Europe/Berlin",
		User: &request.UserConfig{
			Username:  "alice",
			FullName:  "Alice Example",
			Hostname:  "icicle-test",
			Autologin: true,
		},
	}
	out := renderOne(t, req, efiFacts, "")

	require.Contains(t, out, "users.users.alice = {")
	require.Contains(t, out, `description = "Alice Example";`)
	require.Contains(t, out, "# host icicle-test")
	require.Contains(t, out, `networking.hostName = "icicle-test";`)
	require.Contains(t, out, "  # Set your time zone.\n  time.timeZone = \"Europe/Berlin\";")
	require.Contains(t, out, "  # Select internationalisation properties.\n  i18n.defaultLocale = \"en_US.UTF-8\";")
	require.Contains(t, out, "  # Enable automatic login for the user.\n"+
		"  services.xserver.displayManager.autoLogin.enable = true;\n"+
		"  services.xserver.displayManager.autoLogin.user = \"alice\";\n"+
		"  # Workaround for GNOME autologin: https://github.com/NixOS/nixpkgs/issues/103746#issuecomment-945091229\n"+
		"  systemd.services.\"getty@tty1\".enable = false;\n"+
		"  systemd.services.\"autovt@tty1\".enable = false;\n")
}

func TestRenderAutologinOffIsEmpty(t *testing.T) {
	req := &request.InstallRequest{User: &request.UserConfig{Username: "bob", Hostname: "h"}}
	out := renderOne(t, req, efiFacts, "")
	require.Contains(t, out, "  # host h\n\n\n")
	require.NotContains(t, out, "autoLogin")
}

func TestKeyboardStanzas(t *testing.T) {
	out := renderOne(t, &request.InstallRequest{Keyboard: "us+intl"}, efiFacts, "")
	require.Contains(t, out, "  # Set the keyboard layout.\n  services.xserver = {\n    layout = \"us\";\n    xkbVariant = \"intl\";\n  };\n  console.useXkbConfig = true;")

	out = renderOne(t, &request.InstallRequest{Keyboard: "us"}, efiFacts, "")
	require.Contains(t, out, "  # Set the keyboard layout.\n  services.xserver.layout = \"us\";\n  console.useXkbConfig = true;")
	require.NotContains(t, out, "xkbVariant")
}

func TestFeaturePackagesKeepSelectionOrder(t *testing.T) {
	req := &request.InstallRequest{
		Features: []request.FeatureGroup{{
			ID: "BROWSERS",
			Options: []request.Option{
				{ID: "a", Choice: request.Choice{Packages: []string{"pkgA"}, Config: "programs.a.enable = true;"}},
				{ID: "b", Choice: request.Choice{Packages: []string{"pkgB", "pkgC"}, Config: "programs.b.enable = true;\nprograms.b.extra = 1;\n"}},
			},
		}},
	}
	out := renderOne(t, req, efiFacts, "")

	require.Contains(t, out, "  # List packages installed in system profile.\n"+
		"  environment.systemPackages = with pkgs; [\n"+
		"    firefox\n"+
		"    pkgA\n"+
		"    pkgB\n"+
		"    pkgC\n"+
		"  ];")
	require.Contains(t, out, "  programs.a.enable = true;\n  programs.b.enable = true;\n  programs.b.extra = 1;\n")
}

func TestPackagesBaselineOnly(t *testing.T) {
	out := renderOne(t, &request.InstallRequest{}, efiFacts, "")
	require.Contains(t, out, "  environment.systemPackages = with pkgs; [\n    firefox\n  ];")
}

func TestLegacyBootloader(t *testing.T) {
	facts := efiFacts
	facts.UEFI = false
	out := renderOne(t, &request.InstallRequest{}, facts, "/dev/sda")
	require.Contains(t, out, "  # Bootloader.\n  boot.loader.grub.enable = true;\n  boot.loader.grub.device = \"/dev/sda\";\n  boot.loader.grub.useOSProber = true;")
}

func TestLegacyBootWithoutDeviceWritesNothing(t *testing.T) {
	facts := efiFacts
	facts.UEFI = false
	w := &recordingWriter{}
	r := newRenderer(fstest.MapFS{
		"gnome/configuration.nix": {Data: []byte(configurationTemplate)},
		"gnome/flake.nix":         {Data: []byte("{}")},
	}, w)

	err := r.Render(context.Background(), &request.InstallRequest{TemplateSet: "gnome"}, facts, "")
	require.ErrorIs(t, err, ErrNoBootDevice)
	require.Contains(t, err.Error(), "boot device")
	require.Empty(t, w.paths)
}

func TestShortStateVersion(t *testing.T) {
	facts := efiFacts
	facts.StateVersion = "24"
	w := &recordingWriter{}
	r := newRenderer(fstest.MapFS{"gnome/flake.nix": {Data: []byte("{}")}}, w)

	err := r.Render(context.Background(), &request.InstallRequest{TemplateSet: "gnome"}, facts, "")
	require.ErrorIs(t, err, sysinfo.ErrShortVersion)
	require.Empty(t, w.paths)
}

func TestWalkOrderAndDestinations(t *testing.T) {
	files := fstest.MapFS{
		"gnome/flake.nix":                               {Data: []byte("arch = \"@ARCH@\"; other = \"@ARCH@\";")},
		"gnome/configuration.nix":                       {Data: []byte("@HOSTNAME@")},
		"gnome/catalog.toml":                            {Data: []byte("")},
		"gnome/README.md":                               {Data: []byte("@ARCH@")},
		"gnome/modules/desktop.nix":                     {Data: []byte("@DESKTOP@")},
		"gnome/systems/ARCH/HOSTNAME/default.nix":       {Data: []byte("{ }")},
		"gnome/systems/ARCH/HOSTNAME/extra/network.nix": {Data: []byte("@NETWORK@")},
		"other/configuration.nix":                       {Data: []byte("x")},
	}
	w := &recordingWriter{}
	r := newRenderer(files, w)
	req := &request.InstallRequest{TemplateSet: "gnome", User: &request.UserConfig{Username: "a", Hostname: "icicle-test"}}

	require.NoError(t, r.Render(context.Background(), req, efiFacts, ""))

	want := []string{
		"/tmp/icicle/etc/nixos/configuration.nix",
		"/tmp/icicle/etc/nixos/flake.nix",
		"/tmp/icicle/etc/nixos/modules/desktop.nix",
		"/tmp/icicle/etc/nixos/systems/x86_64-linux/icicle-test/default.nix",
		"/tmp/icicle/etc/nixos/systems/x86_64-linux/icicle-test/extra/network.nix",
	}
	if diff := cmp.Diff(want, w.paths); diff != "" {
		t.Fatalf("rendered paths mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, `arch = "x86_64-linux"; other = "@ARCH@";`, w.files["/tmp/icicle/etc/nixos/flake.nix"])
	require.Equal(t, "icicle-test", w.files["/tmp/icicle/etc/nixos/configuration.nix"])
}

func TestWriteFailureStopsWalk(t *testing.T) {
	boom := errors.New("helper exited 1")
	w := &recordingWriter{fail: map[string]error{"/tmp/icicle/etc/nixos/a.nix": boom}}
	r := newRenderer(fstest.MapFS{
		"gnome/a.nix": {Data: []byte("a")},
		"gnome/b.nix": {Data: []byte("b")},
	}, w)

	err := r.Render(context.Background(), &request.InstallRequest{TemplateSet: "gnome"}, efiFacts, "")
	require.ErrorIs(t, err, boom)
	require.True(t, strings.HasPrefix(err.Error(), "write rendered /tmp/icicle/etc/nixos/a.nix"))
	require.Empty(t, w.paths)
}

func TestMissingTemplateSet(t *testing.T) {
	r := newRenderer(fstest.MapFS{"gnome/a.nix": {Data: []byte("a")}}, &recordingWriter{})
	err := r.Render(context.Background(), &request.InstallRequest{TemplateSet: "kde"}, efiFacts, "")
	require.Error(t, err)
	require.Contains(t, err.Error(), "read template directory kde")
}

func TestRenderStringReplacesFirstOccurrence(t *testing.T) {
	got := RenderString("@A@ @B@ @A@", []Substitution{{Token: "@A@", Value: "1"}, {Token: "@B@", Value: "@A@"}})
	require.Equal(t, "1 @A@ @A@", got)
}

func TestDestPath(t *testing.T) {
	require.Equal(t, "/mnt/etc/nixos/systems/aarch64-linux/box/hardware.nix",
		DestPath("/mnt/etc/nixos", "systems/ARCH/HOSTNAME", "hardware.nix", "aarch64", "box"))
	require.Equal(t, "/mnt/etc/nixos/flake.nix", DestPath("/mnt/etc/nixos", ".", "flake.nix", "aarch64", "box"))
}
