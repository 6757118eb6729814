package render

import (
	"fmt"
	"strings"

	"github.com/snowfallorg/icicle/internal/request"
)

// Placeholder tokens recognized in template files. Template sets in the wild
// depend on these names.
const (
	TokenNvidiaOffload = "@NVIDIAOFFLOAD@"
	TokenArch          = "@ARCH@"
	TokenBootloader    = "@BOOTLOADER@"
	TokenNetwork       = "@NETWORK@"
	TokenTimezone      = "@TIMEZONE@"
	TokenLocale        = "@LOCALE@"
	TokenKeyboard      = "@KEYBOARD@"
	TokenDesktop       = "@DESKTOP@"
	TokenUsername      = "@USERNAME@"
	TokenFullName      = "@FULLNAME@"
	TokenHostname      = "@HOSTNAME@"
	TokenAutologin     = "@AUTOLOGIN@"
	TokenPackages      = "@PACKAGES@"
	TokenStateVersion  = "@STATEVERSION@"
)

// Path segments replaced in template directory names.
const (
	pathArch     = "ARCH"
	pathHostname = "HOSTNAME"
)

const efiBootloader = `  # Bootloader.
  boot.loader.systemd-boot.enable = true;
  boot.loader.efi.canTouchEfiVariables = true;
  boot.loader.efi.efiSysMountPoint = "/boot/efi";`

const grubBootloaderFmt = `  # Bootloader.
  boot.loader.grub.enable = true;
  boot.loader.grub.device = "%s";
  boot.loader.grub.useOSProber = true;`

const networkFmt = `  # Define your hostname.
  networking.hostName = "%s";

  # Enable networking
  networking.networkmanager.enable = true;`

const timezoneFmt = `  # Set your time zone.
  time.timeZone = "%s";`

const localeFmt = `  # Select internationalisation properties.
  i18n.defaultLocale = "%s";`

const keyboardVariantFmt = `  # Set the keyboard layout.
  services.xserver = {
    layout = "%s";
    xkbVariant = "%s";
  };
  console.useXkbConfig = true;`

const keyboardLayoutFmt = `  # Set the keyboard layout.
  services.xserver.layout = "%s";
  console.useXkbConfig = true;`

const desktop = `  # Enable the X11 windowing system.
  services.xserver.enable = true;
  # Enable the GNOME Desktop Environment.
  services.xserver.displayManager.gdm.enable = true;
  services.xserver.desktopManager.gnome.enable = true;`

const autologinFmt = `  # Enable automatic login for the user.
  services.xserver.displayManager.autoLogin.enable = true;
  services.xserver.displayManager.autoLogin.user = "%s";
`

const autologinWorkaround = `  # Workaround for GNOME autologin: https://github.com/NixOS/nixpkgs/issues/103746#issuecomment-945091229
  systemd.services."getty@tty1".enable = false;
  systemd.services."autovt@tty1".enable = false;
`

const packagesFmt = `  # List packages installed in system profile.
  environment.systemPackages = with pkgs; [
    %s
  ];`

const stateVersionFmt = `  system.stateVersion = "%s"; # Did you read the comment?`

func bootloaderStanza(uefi bool, bootDevice string) (string, error) {
	if uefi {
		return efiBootloader, nil
	}
	if bootDevice == "" {
		return "", ErrNoBootDevice
	}
	return fmt.Sprintf(grubBootloaderFmt, bootDevice), nil
}

// keyboardStanza splits "layout+variant"; anything after a second '+' is ignored.
func keyboardStanza(keyboard string) string {
	if layout, rest, ok := strings.Cut(keyboard, "+"); ok {
		variant, _, _ := strings.Cut(rest, "+")
		return fmt.Sprintf(keyboardVariantFmt, layout, variant)
	}
	return fmt.Sprintf(keyboardLayoutFmt, keyboard)
}

func autologinStanza(user *request.UserConfig) string {
	if user == nil || !user.Autologin {
		return ""
	}
	return fmt.Sprintf(autologinFmt, user.Username) + autologinWorkaround
}

// featureStanza indents every config line of the group's options and
// returns the packages they contribute, both in selection order.
func featureStanza(group request.FeatureGroup) (string, []string) {
	var b strings.Builder
	var packages []string
	for _, opt := range group.Options {
		packages = append(packages, opt.Packages...)
		if opt.Config == "" {
			continue
		}
		for _, line := range strings.Split(strings.TrimSuffix(opt.Config, "\n"), "\n") {
			b.WriteString("  " + line + "\n")
		}
	}
	return b.String(), packages
}

func packagesStanza(baseline []string, extra []string) string {
	all := append(append([]string(nil), baseline...), extra...)
	return fmt.Sprintf(packagesFmt, strings.Join(all, "\n    "))
}
