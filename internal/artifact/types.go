package artifact

import (
	"os"
)

// Kind is a release package format.
type Kind string

const (
	KindDeb      Kind = "deb"
	KindRPM      Kind = "rpm"
	KindAppImage Kind = "AppImage"
)

// String returns the string representation of the kind
func (k Kind) String() string {
	return string(k)
}

// Artifact is one downloadable release file.
type Artifact struct {
	Kind         Kind
	Product      string
	Version      string
	Name         string
	DownloadURL  string
	SignatureURL string
	// LocalPath is set once the file has been fetched.
	LocalPath string
}

// Remove deletes the downloaded file, if any. It is safe to call twice.
func (a *Artifact) Remove() error {
	if a.LocalPath == "" {
		return nil
	}
	if err := os.Remove(a.LocalPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Outcome is the result of a best-effort signature check.
type Outcome int

const (
	// Verified means the signature matched the publisher key.
	Verified Outcome = iota
	// SkippedByFlag means the user asked not to verify.
	SkippedByFlag
	// SkippedNoTool means the verification tool is not installed.
	SkippedNoTool
	// SkippedNoSignature means no signature was published (or it could not be fetched).
	SkippedNoSignature
	// FailedSoft means verification ran and did not succeed.
	FailedSoft
)

// String returns the string representation of the outcome
func (o Outcome) String() string {
	switch o {
	case Verified:
		return "verified"
	case SkippedByFlag:
		return "skipped (--skip-verify)"
	case SkippedNoTool:
		return "skipped (gpg not found)"
	case SkippedNoSignature:
		return "skipped (no signature)"
	case FailedSoft:
		return "failed"
	default:
		return "unknown"
	}
}
