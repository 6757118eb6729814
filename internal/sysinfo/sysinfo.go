// Package sysinfo detects the facts about the running machine that the
// generated configuration depends on.
package sysinfo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/snowfallorg/icicle/internal/gateway"
	"github.com/snowfallorg/icicle/internal/messages"
)

// DefaultEFIDir exists only when the machine booted through UEFI firmware.
const DefaultEFIDir = "/sys/firmware/efi"

// versionLen is the length of a release number such as "24.05".
const versionLen = 5

// ErrShortVersion is returned when nixos-version prints less than a release number.
var ErrShortVersion = errors.New(messages.SysinfoShortVersion)

// Facts are the detected properties of the live system.
type Facts struct {
	Arch         string
	StateVersion string
	UEFI         bool
}

// Detector queries the live system through a Gateway.
type Detector struct {
	Gateway gateway.Gateway
	// EFIDir overrides DefaultEFIDir.
	EFIDir string
}

// Arch returns the machine hardware name reported by uname -m.
func (d *Detector) Arch(ctx context.Context) (string, error) {
	out, err := d.Gateway.Output(ctx, gateway.Cmd("uname", "-m"))
	if err != nil {
		return "", fmt.Errorf(messages.SysinfoArchFmt, err)
	}
	arch := strings.TrimSpace(string(out))
	if arch == "" {
		return "", errors.New(messages.SysinfoArchEmpty)
	}
	return arch, nil
}

// StateVersion returns the release number of the running system, the first
// five characters of nixos-version.
func (d *Detector) StateVersion(ctx context.Context) (string, error) {
	out, err := d.Gateway.Output(ctx, gateway.Cmd("nixos-version"))
	if err != nil {
		return "", fmt.Errorf(messages.SysinfoVersionFmt, err)
	}
	version := strings.TrimSpace(string(out))
	if len(version) < versionLen {
		return "", fmt.Errorf(messages.SysinfoShortVersionFmt, ErrShortVersion, version)
	}
	return version[:versionLen], nil
}

// UEFI reports whether the machine booted through UEFI firmware.
func (d *Detector) UEFI() bool {
	dir := d.EFIDir
	if dir == "" {
		dir = DefaultEFIDir
	}
	_, err := os.Stat(dir)
	return err == nil
}

// Facts detects everything at once.
func (d *Detector) Facts(ctx context.Context) (Facts, error) {
	arch, err := d.Arch(ctx)
	if err != nil {
		return Facts{}, err
	}
	version, err := d.StateVersion(ctx)
	if err != nil {
		return Facts{}, err
	}
	return Facts{Arch: arch, StateVersion: version, UEFI: d.UEFI()}, nil
}
