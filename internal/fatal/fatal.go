// Package fatal defines the errors that abort an installer run.
//
// Every condition that must stop the installer is reported as an *Error
// carrying a Kind and the step that failed. Conditions that only lower
// confidence (a skipped signature check, an install directory missing from
// PATH) are never errors; they are logged and the run continues.
package fatal

import (
	"errors"
	"fmt"
)

// Kind classifies a fatal condition.
type Kind string

const (
	// UnsupportedArchitecture means the host machine is neither x86_64 nor aarch64.
	UnsupportedArchitecture Kind = "unsupported architecture"
	// MissingDependency means a required host tool is not on PATH.
	MissingDependency Kind = "missing dependency"
	// ReleaseNotFound means the latest release tag could not be determined.
	ReleaseNotFound Kind = "release not found"
	// DownloadFailed means an artifact or key download did not succeed.
	DownloadFailed Kind = "download failed"
	// UnknownFlag means the command line could not be parsed.
	UnknownFlag Kind = "unknown flag"
	// NoAURHelper means pacman is present but neither yay nor paru is.
	NoAURHelper Kind = "no AUR helper"
	// PermissionDenied means the operation needs root.
	PermissionDenied Kind = "permission denied"
	// InstallFailed means the package manager command returned an error.
	InstallFailed Kind = "install failed"
	// InvalidConfig means the installer settings file was rejected.
	InvalidConfig Kind = "invalid config"
)

// Error is a fatal installer error.
type Error struct {
	Kind Kind
	Step string
	Err  error
}

// New creates a fatal error of the given kind for a step.
func New(kind Kind, step string, err error) *Error {
	return &Error{Kind: kind, Step: step, Err: err}
}

// Newf creates a fatal error with a formatted cause.
func Newf(kind Kind, step, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Step: step, Err: fmt.Errorf(format, args...)}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Step, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Step, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error with the same Kind, so callers can write
// errors.Is(err, &fatal.Error{Kind: fatal.DownloadFailed}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind, true
	}
	return "", false
}

// IsKind reports whether err carries the given Kind.
func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// ExitCode maps a run result to the process exit status.
// Every failure exits 1; there is no finer-grained code.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return 1
}
