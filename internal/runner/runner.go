// Package runner runs the system installer in a pseudo-terminal and reports
// its completion asynchronously.
package runner

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"syscall"

	"github.com/creack/pty"
	"github.com/sirupsen/logrus"

	"github.com/snowfallorg/icicle/internal/messages"
	"github.com/snowfallorg/icicle/internal/terminal"
)

// Runner starts one command at a time. The installer prompts and prints
// progress bars, so it gets a terminal rather than pipes.
type Runner struct {
	// Output receives the command's terminal output line by line.
	Output io.Writer
	Logger logrus.FieldLogger
	// OnDone is called from a separate goroutine once the command exits,
	// with nil on success.
	OnDone func(error)
	// Env is appended to the current environment.
	Env []string

	wg sync.WaitGroup
}

func (r *Runner) logger() logrus.FieldLogger {
	if r.Logger == nil {
		return logrus.StandardLogger()
	}
	return r.Logger
}

// Dispatch starts args and returns once the process is running. Spawn errors
// are returned directly and OnDone is not called for them.
func (r *Runner) Dispatch(args []string) error {
	if len(args) == 0 {
		return errors.New(messages.RunnerEmptyCommand)
	}
	cmd := exec.Command(args[0], args[1:]...)
	if len(r.Env) > 0 {
		cmd.Env = append(os.Environ(), r.Env...)
	}
	tty, err := pty.Start(cmd)
	if err != nil {
		return fmt.Errorf(messages.RunnerStartFmt, args[0], err)
	}
	log := r.logger().WithFields(logrus.Fields{"command": strings.Join(args, " "), "pid": cmd.Process.Pid})
	log.Info(messages.RunnerStarted)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.wait(cmd, tty, log)
	}()
	return nil
}

// Wait blocks until every dispatched command has exited and OnDone returned.
func (r *Runner) Wait() {
	r.wg.Wait()
}

func (r *Runner) wait(cmd *exec.Cmd, tty *os.File, log logrus.FieldLogger) {
	// Reading the pty master fails with EIO once the child side closes; that
	// is the normal end of output.
	scanner := terminal.NewLineScanner(tty)
	for scanner.Scan() {
		line := scanner.Text()
		log.Debug(line)
		if r.Output != nil {
			_, _ = fmt.Fprintln(r.Output, line)
		}
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, syscall.EIO) {
		// The child blocks on a full pty until its output is read.
		log.WithError(err).Warn(messages.RunnerReadOutput)
		_, _ = io.Copy(io.Discard, tty)
	}
	err := cmd.Wait()
	_ = tty.Close()
	if err != nil {
		err = fmt.Errorf(messages.RunnerExitFmt, cmd.Args[0], err)
		log.WithError(err).Warn(messages.RunnerExited)
	} else {
		log.Info(messages.RunnerExited)
	}
	if r.OnDone != nil {
		r.OnDone(err)
	}
}
