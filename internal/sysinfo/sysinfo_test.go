package sysinfo

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/snowfallorg/icicle/internal/gateway/gatewaytest"
)

func TestFacts(t *testing.T) {
	rec := gatewaytest.New().
		On("uname -m", gatewaytest.Response{Output: []byte("x86_64\n")}).
		On("nixos-version", gatewaytest.Response{Output: []byte("24.05.20240601.abcdef (Uakari)\n")})
	d := &Detector{Gateway: rec, EFIDir: t.TempDir()}

	facts, err := d.Facts(context.Background())
	require.NoError(t, err)
	require.Equal(t, Facts{Arch: "x86_64", StateVersion: "24.05", UEFI: true}, facts)
}

func TestUEFIMissingDir(t *testing.T) {
	d := &Detector{EFIDir: filepath.Join(t.TempDir(), "efi")}
	require.False(t, d.UEFI())
}

func TestStateVersionShort(t *testing.T) {
	rec := gatewaytest.New().On("nixos-version", gatewaytest.Response{Output: []byte("24\n")})
	d := &Detector{Gateway: rec}

	_, err := d.StateVersion(context.Background())
	require.ErrorIs(t, err, ErrShortVersion)
}

func TestArchFailures(t *testing.T) {
	boom := errors.New("boom")
	d := &Detector{Gateway: gatewaytest.New().On("uname", gatewaytest.Response{Err: boom})}
	_, err := d.Arch(context.Background())
	require.ErrorIs(t, err, boom)
	require.EqualError(t, err, "detect architecture: boom")

	d = &Detector{Gateway: gatewaytest.New()}
	_, err = d.Arch(context.Background())
	require.EqualError(t, err, "detect architecture: uname printed nothing")
}
