// Package runner isolates subprocess execution behind an interface so the
// package-manager, download and signing commands can be replaced in tests.
package runner

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"go.uber.org/zap"

	"github.com/ZebulonRouseFrantzich/zerb-installer/internal/logger"
)

// Runner executes host commands.
type Runner interface {
	// Run executes a command, streaming its output to the user.
	Run(ctx context.Context, name string, args ...string) error
	// Output executes a command and returns its trimmed stdout.
	Output(ctx context.Context, name string, args ...string) (string, error)
	// LookPath reports where an executable is on PATH.
	LookPath(name string) (string, error)
}

// Exec runs commands with os/exec.
type Exec struct {
	Stdout io.Writer
	Stderr io.Writer
	Log    *zap.SugaredLogger
}

// NewExec creates a runner that streams command output to the process stdio.
func NewExec(log *zap.SugaredLogger) *Exec {
	return &Exec{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Log:    logger.OrNop(log),
	}
}

// Run executes name with args and waits for it to finish.
func (e *Exec) Run(ctx context.Context, name string, args ...string) error {
	e.Log.Debugw("exec", "cmd", CommandLine(name, args...))

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr
	if err := cmd.Run(); err != nil {
		return &CommandError{Command: CommandLine(name, args...), Err: err}
	}
	return nil
}

// Output executes name with args and returns its stdout without surrounding whitespace.
func (e *Exec) Output(ctx context.Context, name string, args ...string) (string, error) {
	e.Log.Debugw("exec", "cmd", CommandLine(name, args...))

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return "", &CommandError{
			Command: CommandLine(name, args...),
			Stderr:  strings.TrimSpace(stderr.String()),
			Err:     err,
		}
	}
	return strings.TrimSpace(string(out)), nil
}

// LookPath wraps exec.LookPath.
func (e *Exec) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// CommandError reports a failed command.
type CommandError struct {
	Command string
	Stderr  string
	Err     error
}

func (e *CommandError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s: %v: %s", e.Command, e.Err, e.Stderr)
	}
	return fmt.Sprintf("%s: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// CommandLine renders a command for logs and error messages.
func CommandLine(name string, args ...string) string {
	if len(args) == 0 {
		return name
	}
	return name + " " + strings.Join(args, " ")
}

// Has reports whether name is on PATH according to r.
func Has(r Runner, name string) bool {
	_, err := r.LookPath(name)
	return err == nil
}
