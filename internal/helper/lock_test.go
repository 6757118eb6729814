package helper

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestWithLockRunsFn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "helper.lock")
	ran := false
	require.NoError(t, WithLock(path, func() error {
		ran = true
		return nil
	}))
	require.True(t, ran)
	require.FileExists(t, path)

	boom := errors.New("boom")
	require.ErrorIs(t, WithLock(path, func() error { return boom }), boom)
}

func TestWithLockTimesOutWhileHeld(t *testing.T) {
	origTimeout, origSleep := lockWaitTimeout, lockSleep
	lockWaitTimeout = 20 * time.Millisecond
	lockSleep = func(time.Duration) { time.Sleep(5 * time.Millisecond) }
	t.Cleanup(func() { lockWaitTimeout, lockSleep = origTimeout, origSleep })

	path := filepath.Join(t.TempDir(), "helper.lock")
	err := WithLock(path, func() error {
		return WithLock(path, func() error {
			t.Fatal("nested lock must not be granted")
			return nil
		})
	})
	require.ErrorContains(t, err, "another icicle-helper is partitioning")
}

func TestWithLockReportsFlockErrors(t *testing.T) {
	orig := flockFn
	flockFn = func(int, int) error { return unix.EBADF }
	t.Cleanup(func() { flockFn = orig })

	err := WithLock(filepath.Join(t.TempDir(), "helper.lock"), func() error { return nil })
	require.ErrorIs(t, err, unix.EBADF)
}
