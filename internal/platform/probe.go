package platform

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/ZebulonRouseFrantzich/zerb-installer/internal/fatal"
	"github.com/ZebulonRouseFrantzich/zerb-installer/internal/logger"
	"github.com/ZebulonRouseFrantzich/zerb-installer/internal/runner"
)

// Executables probed on PATH.
const (
	ToolAptGet = "apt-get"
	ToolDnf    = "dnf"
	ToolPacman = "pacman"
	ToolYay    = "yay"
	ToolParu   = "paru"
)

// ProberConfig configures a Prober.
type ProberConfig struct {
	Detector Detector
	Runner   runner.Runner
	// SourceListPath is the managed apt source entry; its presence sets
	// Capabilities.AptRepoConfigured.
	SourceListPath string
	// DownloadTool must be on PATH when non-empty (curl or wget).
	DownloadTool string
	Log          *zap.SugaredLogger
}

// Prober gathers everything the dispatcher needs to pick a strategy.
type Prober struct {
	detector       Detector
	runner         runner.Runner
	sourceListPath string
	downloadTool   string
	log            *zap.SugaredLogger
}

// NewProber creates a prober.
func NewProber(cfg ProberConfig) (*Prober, error) {
	if cfg.Detector == nil {
		return nil, fmt.Errorf("detector is required")
	}
	if cfg.Runner == nil {
		return nil, fmt.Errorf("runner is required")
	}
	return &Prober{
		detector:       cfg.Detector,
		runner:         cfg.Runner,
		sourceListPath: cfg.SourceListPath,
		downloadTool:   cfg.DownloadTool,
		log:            logger.OrNop(cfg.Log),
	}, nil
}

// Probe detects the architecture, checks the download prerequisite, and
// records which package managers exist. The order matters: an unsupported
// architecture or a missing download tool stops the run before anything
// else is looked at.
func (p *Prober) Probe(ctx context.Context) (*Probe, error) {
	info, err := p.detector.Detect(ctx)
	if err != nil {
		return nil, err
	}

	if p.downloadTool != "" && !runner.Has(p.runner, p.downloadTool) {
		return nil, fatal.Newf(fatal.MissingDependency, "check prerequisites",
			"%s is required to download release artifacts but was not found on PATH", p.downloadTool)
	}

	caps := Capabilities{
		AptRepoConfigured: fileExists(p.sourceListPath),
		AptGet:            runner.Has(p.runner, ToolAptGet),
		Dnf:               runner.Has(p.runner, ToolDnf),
		Pacman:            runner.Has(p.runner, ToolPacman),
		Yay:               runner.Has(p.runner, ToolYay),
		Paru:              runner.Has(p.runner, ToolParu),
	}

	p.log.Debugw("probed host",
		"arch", info.Arch,
		"machine", info.ArchRaw,
		"distro", info.Platform,
		"family", info.Family,
		"apt_repo", caps.AptRepoConfigured,
		"apt-get", caps.AptGet,
		"dnf", caps.Dnf,
		"pacman", caps.Pacman,
		"yay", caps.Yay,
		"paru", caps.Paru,
	)

	return &Probe{Info: info, Capabilities: caps}, nil
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
