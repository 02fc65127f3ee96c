package strategy

import (
	"fmt"

	"github.com/ZebulonRouseFrantzich/zerb-installer/internal/platform"
)

// RequestParams are the inputs to NewRequest.
type RequestParams struct {
	Version    string
	Arch       string
	SkipVerify bool
	// WorkDir holds downloads for this run only.
	WorkDir string
	RunID   string
}

// Request is the immutable description of one install.
type Request struct {
	version    string
	arch       string
	skipVerify bool
	workDir    string
	runID      string
}

// NewRequest validates p and freezes it into a Request.
func NewRequest(p RequestParams) (*Request, error) {
	if p.Version == "" {
		return nil, fmt.Errorf("version is required")
	}
	if p.Arch != platform.ArchAMD64 && p.Arch != platform.ArchARM64 {
		return nil, fmt.Errorf("unsupported architecture: %q", p.Arch)
	}
	if p.WorkDir == "" {
		return nil, fmt.Errorf("work dir is required")
	}
	return &Request{
		version:    p.Version,
		arch:       p.Arch,
		skipVerify: p.SkipVerify,
		workDir:    p.WorkDir,
		runID:      p.RunID,
	}, nil
}

// Version is the release version without a leading "v".
func (r *Request) Version() string { return r.version }

// Arch is the release architecture, amd64 or arm64.
func (r *Request) Arch() string { return r.arch }

// SkipVerify reports whether --skip-verify was given.
func (r *Request) SkipVerify() bool { return r.skipVerify }

// WorkDir is the per-run directory downloads land in.
func (r *Request) WorkDir() string { return r.workDir }

// RunID identifies the run in log output.
func (r *Request) RunID() string { return r.runID }
