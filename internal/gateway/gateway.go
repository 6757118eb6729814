// Package gateway runs the external commands of an install. Privileged
// commands are prefixed with an elevation command (pkexec by default), and
// files under the install target are written through the privileged helper.
package gateway

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/snowfallorg/icicle/internal/logging"
	"github.com/snowfallorg/icicle/internal/messages"
	"github.com/snowfallorg/icicle/internal/terminal"
)

// Command is one external program invocation.
type Command struct {
	Args       []string
	Privileged bool
}

// Cmd returns an unprivileged command.
func Cmd(args ...string) Command {
	return Command{Args: args}
}

// Privileged returns a command that runs through the elevation command.
func Privileged(args ...string) Command {
	return Command{Args: args, Privileged: true}
}

// HelperCommand returns the privileged invocation of a helper subcommand.
func HelperCommand(helper string, sub string, args ...string) Command {
	return Privileged(append([]string{helper, sub}, args...)...)
}

func (c Command) String() string {
	return strings.Join(c.Args, " ")
}

// Gateway is the capability every install step uses to touch the system.
type Gateway interface {
	// Output runs c to completion and returns its stdout.
	Output(ctx context.Context, c Command) ([]byte, error)
	// Stream writes stdin to c, reports each stdout line to progress, and waits.
	Stream(ctx context.Context, c Command, stdin []byte, progress func(string)) error
	// WriteFile creates or replaces path with contents using elevated rights.
	WriteFile(ctx context.Context, path string, contents []byte) error
}

// CommandError reports a command that could not be run or exited non-zero.
// ExitCode is -1 when the process did not produce an exit status.
type CommandError struct {
	Args     []string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *CommandError) Error() string {
	name := strings.Join(e.Args, " ")
	if e.ExitCode < 0 {
		return fmt.Sprintf(messages.GatewaySpawnFmt, name, e.Err)
	}
	if detail := strings.TrimSpace(e.Stderr); detail != "" {
		return fmt.Sprintf(messages.GatewayExitStderrFmt, name, e.ExitCode, detail)
	}
	return fmt.Sprintf(messages.GatewayExitFmt, name, e.ExitCode)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// Exec implements Gateway with os/exec.
type Exec struct {
	// Elevate is prefixed to privileged commands; empty runs them directly.
	Elevate string
	// Helper is the path of the privileged helper executable.
	Helper string
	Logger logrus.FieldLogger
}

var _ Gateway = (*Exec)(nil)

func (e *Exec) logger(ctx context.Context) logrus.FieldLogger {
	return logging.FromContext(ctx, e.Logger)
}

func (e *Exec) argv(c Command) ([]string, error) {
	if len(c.Args) == 0 {
		return nil, errors.New(messages.GatewayEmptyCommand)
	}
	if c.Privileged && e.Elevate != "" {
		return append([]string{e.Elevate}, c.Args...), nil
	}
	return c.Args, nil
}

// Output runs c and returns its stdout. A non-zero exit yields a
// *CommandError carrying stderr.
func (e *Exec) Output(ctx context.Context, c Command) ([]byte, error) {
	argv, err := e.argv(c)
	if err != nil {
		return nil, err
	}
	e.logger(ctx).WithField("command", strings.Join(argv, " ")).Debug("run")

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return stdout.Bytes(), commandError(argv, stderr.String(), err)
	}
	return stdout.Bytes(), nil
}

// Stream runs c with stdin as its input, which is closed once written.
// Stdout is consumed line by line; stderr is kept for the error report.
func (e *Exec) Stream(ctx context.Context, c Command, stdin []byte, progress func(string)) error {
	argv, err := e.argv(c)
	if err != nil {
		return err
	}
	log := e.logger(ctx).WithField("command", strings.Join(argv, " "))
	log.Debug("stream")

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = bytes.NewReader(stdin)
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return &CommandError{Args: argv, ExitCode: -1, Err: err}
	}
	if err := cmd.Start(); err != nil {
		return &CommandError{Args: argv, ExitCode: -1, Err: err}
	}

	scanner := terminal.NewLineScanner(stdout)
	for scanner.Scan() {
		line := scanner.Text()
		log.Debug(line)
		if progress != nil {
			progress(line)
		}
	}
	scanErr := scanner.Err()
	if scanErr != nil {
		// Wait closes the pipe, so the child must not be left blocked on it.
		_, _ = io.Copy(io.Discard, stdout)
	}

	if err := cmd.Wait(); err != nil {
		return commandError(argv, stderr.String(), err)
	}
	if scanErr != nil {
		return &CommandError{Args: argv, ExitCode: -1, Stderr: stderr.String(),
			Err: fmt.Errorf(messages.GatewayReadOutputFmt, argv[0], scanErr)}
	}
	return nil
}

// WriteFile runs the helper's write-file subcommand.
func (e *Exec) WriteFile(ctx context.Context, path string, contents []byte) error {
	c := HelperCommand(e.Helper, "write-file", "--path", path, "--contents", string(contents))
	if _, err := e.Output(ctx, c); err != nil {
		return fmt.Errorf(messages.GatewayWriteFileFmt, path, err)
	}
	e.logger(ctx).WithField("path", path).Debug("wrote file")
	return nil
}

func commandError(argv []string, stderr string, err error) *CommandError {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() >= 0 {
		return &CommandError{Args: argv, ExitCode: exitErr.ExitCode(), Stderr: stderr, Err: err}
	}
	return &CommandError{Args: argv, ExitCode: -1, Stderr: stderr, Err: err}
}
