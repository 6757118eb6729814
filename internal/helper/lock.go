package helper

import (
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"github.com/snowfallorg/icicle/internal/messages"
)

// DefaultLockPath serializes partitioning across helper processes.
const DefaultLockPath = "/run/icicle-helper.lock"

var flockFn = unix.Flock
var lockSleep = time.Sleep

var (
	lockWaitTimeout = 10 * time.Second
	lockPollEvery   = 100 * time.Millisecond
)

// WithLock holds an exclusive advisory lock on path while fn runs.
func WithLock(path string, fn func() error) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return fmt.Errorf(messages.HelperOpenLockFmt, path, err)
	}
	defer func() { _ = file.Close() }()
	if err := lockFile(file); err != nil {
		return fmt.Errorf(messages.HelperLockFmt, path, err)
	}
	defer func() { _ = flockFn(int(file.Fd()), unix.LOCK_UN) }()
	return fn()
}

func lockFile(file *os.File) error {
	deadline := time.Now().Add(lockWaitTimeout)
	for {
		err := flockFn(int(file.Fd()), unix.LOCK_EX|unix.LOCK_NB)
		if err == nil {
			return nil
		}
		if !errors.Is(err, unix.EWOULDBLOCK) && !errors.Is(err, unix.EAGAIN) {
			return err
		}
		if time.Now().After(deadline) {
			return fmt.Errorf(messages.HelperLockTimeoutFmt, lockWaitTimeout)
		}
		lockSleep(lockPollEvery)
	}
}
