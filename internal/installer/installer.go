// Package installer runs one install of zerb: probe the host, resolve the
// version, pick a strategy and carry it out.
package installer

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ZebulonRouseFrantzich/zerb-installer/internal/logger"
	"github.com/ZebulonRouseFrantzich/zerb-installer/internal/platform"
	"github.com/ZebulonRouseFrantzich/zerb-installer/internal/strategy"
)

// Prober reports the host's architecture and package managers.
type Prober interface {
	Probe(ctx context.Context) (*platform.Probe, error)
}

// Resolver turns an optional requested version into a concrete one.
type Resolver interface {
	Resolve(ctx context.Context, explicit string) (string, error)
}

// Dispatcher selects and runs one install strategy.
type Dispatcher interface {
	Dispatch(ctx context.Context, caps platform.Capabilities, req *strategy.Request) (strategy.Strategy, error)
}

// Config wires an Installer.
type Config struct {
	Prober     Prober
	Resolver   Resolver
	Dispatcher Dispatcher
	// TempDir is the parent of the per-run work directory. Empty means
	// os.TempDir().
	TempDir string
	Log     *zap.SugaredLogger
}

// Options are the user's choices for one run.
type Options struct {
	// Version pins a release; empty means the latest.
	Version    string
	SkipVerify bool
}

// Result describes a successful run.
type Result struct {
	Strategy strategy.Strategy
	Version  string
	RunID    string
}

// Installer runs installs.
type Installer struct {
	prober     Prober
	resolver   Resolver
	dispatcher Dispatcher
	tempDir    string
	log        *zap.SugaredLogger
}

// New creates an installer.
func New(cfg Config) (*Installer, error) {
	if cfg.Prober == nil {
		return nil, fmt.Errorf("prober is required")
	}
	if cfg.Resolver == nil {
		return nil, fmt.Errorf("resolver is required")
	}
	if cfg.Dispatcher == nil {
		return nil, fmt.Errorf("dispatcher is required")
	}
	return &Installer{
		prober:     cfg.Prober,
		resolver:   cfg.Resolver,
		dispatcher: cfg.Dispatcher,
		tempDir:    cfg.TempDir,
		log:        logger.OrNop(cfg.Log),
	}, nil
}

// Run installs zerb once. Every download lands in a work directory private
// to this run, which is removed before Run returns whatever the outcome.
func (i *Installer) Run(ctx context.Context, opts Options) (*Result, error) {
	probe, err := i.prober.Probe(ctx)
	if err != nil {
		return nil, err
	}

	version, err := i.resolver.Resolve(ctx, opts.Version)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	workDir, err := os.MkdirTemp(i.tempDir, "zerb-install-"+runID+"-")
	if err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			i.log.Warnf("could not remove %s: %v", workDir, err)
		}
	}()
	i.log.Debugw("run", "id", runID, "work_dir", workDir)

	req, err := strategy.NewRequest(strategy.RequestParams{
		Version:    version,
		Arch:       probe.Info.Arch,
		SkipVerify: opts.SkipVerify,
		WorkDir:    workDir,
		RunID:      runID,
	})
	if err != nil {
		return nil, fmt.Errorf("build install request: %w", err)
	}

	s, err := i.dispatcher.Dispatch(ctx, probe.Capabilities, req)
	if err != nil {
		return nil, err
	}
	return &Result{Strategy: s, Version: version, RunID: runID}, nil
}
