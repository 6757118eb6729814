// Package gatewaytest provides a recording gateway.Gateway for tests.
package gatewaytest

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/snowfallorg/icicle/internal/gateway"
)

// Call kinds recorded by Recorder.
const (
	KindOutput = "output"
	KindStream = "stream"
	KindWrite  = "write"
)

// Call is one recorded gateway invocation.
type Call struct {
	Kind     string
	Command  gateway.Command
	Stdin    []byte
	Path     string
	Contents []byte
}

// Response scripts the result of matching commands.
type Response struct {
	Output   []byte
	Progress []string
	Err      error
}

// Recorder records every call and answers from scripted responses. Commands
// without a script succeed with empty output.
type Recorder struct {
	mu        sync.Mutex
	calls     []Call
	responses map[string]Response
	files     map[string][]byte
	writeErrs map[string]error
}

var _ gateway.Gateway = (*Recorder)(nil)

// New returns an empty Recorder.
func New() *Recorder {
	return &Recorder{
		responses: make(map[string]Response),
		files:     make(map[string][]byte),
		writeErrs: make(map[string]error),
	}
}

// On scripts the response for commands whose space-joined argv starts with
// prefix. The longest matching prefix wins.
func (r *Recorder) On(prefix string, resp Response) *Recorder {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.responses[prefix] = resp
	return r
}

// FailWrite makes WriteFile of path return err.
func (r *Recorder) FailWrite(path string, err error) *Recorder {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writeErrs[path] = err
	return r
}

func (r *Recorder) lookup(c gateway.Command) Response {
	line := c.String()
	best := -1
	var resp Response
	for prefix, candidate := range r.responses {
		if strings.HasPrefix(line, prefix) && len(prefix) > best {
			best = len(prefix)
			resp = candidate
		}
	}
	return resp
}

// Output implements gateway.Gateway.
func (r *Recorder) Output(_ context.Context, c gateway.Command) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Call{Kind: KindOutput, Command: c})
	resp := r.lookup(c)
	return resp.Output, resp.Err
}

// Stream implements gateway.Gateway. Scripted progress lines are delivered
// before the scripted error.
func (r *Recorder) Stream(_ context.Context, c gateway.Command, stdin []byte, progress func(string)) error {
	r.mu.Lock()
	r.calls = append(r.calls, Call{Kind: KindStream, Command: c, Stdin: append([]byte(nil), stdin...)})
	resp := r.lookup(c)
	r.mu.Unlock()
	for _, line := range resp.Progress {
		if progress != nil {
			progress(line)
		}
	}
	return resp.Err
}

// WriteFile implements gateway.Gateway.
func (r *Recorder) WriteFile(_ context.Context, path string, contents []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Call{Kind: KindWrite, Path: path, Contents: append([]byte(nil), contents...)})
	if err := r.writeErrs[path]; err != nil {
		return err
	}
	r.files[path] = append([]byte(nil), contents...)
	return nil
}

// Calls returns a copy of every recorded call in order.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Commands returns the argv of every Output and Stream call, privileged
// commands marked with a leading "# ".
func (r *Recorder) Commands() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, c := range r.calls {
		if c.Kind == KindWrite {
			continue
		}
		line := c.Command.String()
		if c.Command.Privileged {
			line = "# " + line
		}
		out = append(out, line)
	}
	return out
}

// Ran reports whether any command starting with prefix was run.
func (r *Recorder) Ran(prefix string) bool {
	for _, line := range r.Commands() {
		if strings.HasPrefix(strings.TrimPrefix(line, "# "), prefix) {
			return true
		}
	}
	return false
}

// File returns the contents written to path.
func (r *Recorder) File(path string) ([]byte, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	data, ok := r.files[path]
	return data, ok
}

// Paths returns the written paths in sorted order.
func (r *Recorder) Paths() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	paths := make([]string, 0, len(r.files))
	for p := range r.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
