package runner

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"
)

// Fake is a recording Runner for tests. Commands succeed unless an error is
// registered for their command line (or a prefix of it).
type Fake struct {
	mu      sync.Mutex
	tools   map[string]bool
	errs    map[string]error
	outputs map[string]string
	hooks   map[string]func(args []string) error
	calls   []string
	lookups []string
}

// NewFake creates a fake whose PATH contains tools.
func NewFake(tools ...string) *Fake {
	f := &Fake{
		tools:   make(map[string]bool),
		errs:    make(map[string]error),
		outputs: make(map[string]string),
		hooks:   make(map[string]func(args []string) error),
	}
	for _, t := range tools {
		f.tools[t] = true
	}
	return f
}

// FailOn makes any command line starting with prefix return err.
func (f *Fake) FailOn(prefix string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[prefix] = err
}

// SetOutput sets the stdout returned by Output for an exact command line.
func (f *Fake) SetOutput(cmdline, out string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.outputs[cmdline] = out
}

// OnRun registers a side effect for commands named name.
func (f *Fake) OnRun(name string, hook func(args []string) error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hooks[name] = hook
}

// Calls returns the recorded command lines in order.
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// Lookups returns the names passed to LookPath in order.
func (f *Fake) Lookups() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.lookups...)
}

// Ran reports whether a command line starting with prefix was executed.
func (f *Fake) Ran(prefix string) bool {
	for _, c := range f.Calls() {
		if strings.HasPrefix(c, prefix) {
			return true
		}
	}
	return false
}

func (f *Fake) record(name string, args []string) error {
	line := CommandLine(name, args...)

	f.mu.Lock()
	f.calls = append(f.calls, line)
	hook := f.hooks[name]
	var err error
	for prefix, e := range f.errs {
		if strings.HasPrefix(line, prefix) {
			err = e
			break
		}
	}
	f.mu.Unlock()

	if err != nil {
		return &CommandError{Command: line, Err: err}
	}
	if hook != nil {
		if herr := hook(args); herr != nil {
			return &CommandError{Command: line, Err: herr}
		}
	}
	return nil
}

// Run records the command.
func (f *Fake) Run(ctx context.Context, name string, args ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return f.record(name, args)
}

// Output records the command and returns the registered output.
func (f *Fake) Output(ctx context.Context, name string, args ...string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := f.record(name, args); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.outputs[CommandLine(name, args...)], nil
}

// LookPath succeeds for the tools the fake was created with.
func (f *Fake) LookPath(name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups = append(f.lookups, name)
	if f.tools[name] {
		return "/usr/bin/" + name, nil
	}
	return "", &exec.Error{Name: name, Err: exec.ErrNotFound}
}

// String is handy in test failure messages.
func (f *Fake) String() string {
	return fmt.Sprintf("calls=%q", f.Calls())
}
