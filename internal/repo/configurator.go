// Package repo configures the managed zerb apt repository so that later
// updates arrive through apt.
//
// Configure imports the publisher's signing key into a dedicated keyring
// and writes a source entry that trusts only that keyring:
//
//	deb [arch=amd64 signed-by=/usr/share/keyrings/zerb-archive-keyring.gpg] https://.../apt stable main
//
// Running it again rewrites both files with identical bytes.
package repo

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/ZebulonRouseFrantzich/zerb-installer/internal/artifact"
	"github.com/ZebulonRouseFrantzich/zerb-installer/internal/config"
	"github.com/ZebulonRouseFrantzich/zerb-installer/internal/fatal"
	"github.com/ZebulonRouseFrantzich/zerb-installer/internal/keyring"
	"github.com/ZebulonRouseFrantzich/zerb-installer/internal/logger"
	"github.com/ZebulonRouseFrantzich/zerb-installer/internal/runner"
)

const (
	toolDpkg   = "dpkg"
	toolAptGet = "apt-get"
)

// Config wires a Configurator.
type Config struct {
	Settings *config.Settings
	// Fetcher downloads the signing key.
	Fetcher *artifact.Fetcher
	Runner  runner.Runner
	// LockDir defaults to DefaultLockDir.
	LockDir string
	// Euid defaults to os.Geteuid.
	Euid func() int
	Log  *zap.SugaredLogger
}

// Configurator writes the apt keyring and source entry.
type Configurator struct {
	settings *config.Settings
	fetcher  *artifact.Fetcher
	runner   runner.Runner
	lockDir  string
	euid     func() int
	log      *zap.SugaredLogger
}

// New creates a configurator.
func New(cfg Config) *Configurator {
	c := &Configurator{
		settings: cfg.Settings,
		fetcher:  cfg.Fetcher,
		runner:   cfg.Runner,
		lockDir:  cfg.LockDir,
		euid:     cfg.Euid,
		log:      logger.OrNop(cfg.Log),
	}
	if c.lockDir == "" {
		c.lockDir = DefaultLockDir
	}
	if c.euid == nil {
		c.euid = os.Geteuid
	}
	return c
}

// RequireRoot fails with fatal.PermissionDenied unless euid is 0.
func RequireRoot(euid int) error {
	if euid != 0 {
		return fatal.Newf(fatal.PermissionDenied, "configure repository",
			"must be run as root (try: sudo zerb-repo)")
	}
	return nil
}

// SourceLine renders the apt source entry.
func SourceLine(arch, keyringPath, repoURL, suite, component string) string {
	return fmt.Sprintf("deb [arch=%s signed-by=%s] %s %s %s\n", arch, keyringPath, repoURL, suite, component)
}

// Configure installs the signing key and source entry, then installs zerb
// from the repository.
func (c *Configurator) Configure(ctx context.Context) error {
	if err := RequireRoot(c.euid()); err != nil {
		return err
	}

	for _, tool := range []string{toolDpkg, toolAptGet} {
		if !runner.Has(c.runner, tool) {
			return fatal.Newf(fatal.MissingDependency, "configure repository", "%s not found on PATH", tool)
		}
	}

	lock, err := AcquireLock(ctx, c.lockDir)
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	defer lock.Release()

	if err := c.installKey(ctx); err != nil {
		return err
	}

	arch, err := c.runner.Output(ctx, toolDpkg, "--print-architecture")
	if err != nil {
		return fatal.New(fatal.InstallFailed, "detect package architecture", err)
	}
	if arch == "" {
		return fatal.Newf(fatal.InstallFailed, "detect package architecture", "dpkg reported no architecture")
	}

	s := c.settings
	line := SourceLine(arch, s.KeyringPath, s.RepoURL, s.RepoSuite, s.RepoComponent)
	if err := writeFileAtomic(s.SourceListPath, []byte(line), 0o644); err != nil {
		return fatal.New(fatal.InstallFailed, "write source entry", err)
	}
	c.log.Infof("Wrote %s", s.SourceListPath)

	if err := c.runner.Run(ctx, toolAptGet, "update"); err != nil {
		return fatal.New(fatal.InstallFailed, "apt-get update", err)
	}
	if err := c.runner.Run(ctx, toolAptGet, "install", "-y", s.Product); err != nil {
		return fatal.New(fatal.InstallFailed, "apt-get install", err)
	}
	c.log.Infof("%s installed from %s", s.Product, s.RepoURL)
	return nil
}

// installKey downloads the signing key, stores it in binary form and
// checks it parses before apt ever sees it.
func (c *Configurator) installKey(ctx context.Context) error {
	const step = "import signing key"

	tmpDir, err := os.MkdirTemp("", "zerb-repo-")
	if err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	keyPath := filepath.Join(tmpDir, "KEY.asc")
	if err := c.fetcher.Download(ctx, c.settings.KeyURL, keyPath); err != nil {
		return fatal.New(fatal.DownloadFailed, step, err)
	}
	data, err := os.ReadFile(keyPath)
	if err != nil {
		return fmt.Errorf("read signing key: %w", err)
	}

	bin, err := keyring.Dearmor(data)
	if err != nil {
		return fatal.New(fatal.DownloadFailed, step, fmt.Errorf("%s is not an OpenPGP public key: %w", c.settings.KeyURL, err))
	}
	if err := writeFileAtomic(c.settings.KeyringPath, bin, 0o644); err != nil {
		return fatal.New(fatal.InstallFailed, step, err)
	}
	c.log.Infof("Wrote %s", c.settings.KeyringPath)
	return nil
}
