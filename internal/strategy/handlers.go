package strategy

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/ZebulonRouseFrantzich/zerb-installer/internal/artifact"
	"github.com/ZebulonRouseFrantzich/zerb-installer/internal/fatal"
	"github.com/ZebulonRouseFrantzich/zerb-installer/internal/runner"
	"github.com/ZebulonRouseFrantzich/zerb-installer/internal/shell"
)

// Handler carries out one strategy.
type Handler interface {
	Install(ctx context.Context, req *Request) error
}

// Env is what the handlers share.
type Env struct {
	Runner   runner.Runner
	Fetcher  *artifact.Fetcher
	Verifier *artifact.Verifier

	Product      string
	DownloadBase string
	AURPackage   string
	// InstallDir receives the AppImage. Empty means ~/.local/bin.
	InstallDir string
	// PathList is the search path checked after an AppImage install.
	PathList string

	// Stderr receives remediation text for fatal conditions.
	Stderr io.Writer
	Log    *zap.SugaredLogger
}

func (e *Env) install(ctx context.Context, step, name string, args ...string) error {
	if err := e.Runner.Run(ctx, name, args...); err != nil {
		return fatal.New(fatal.InstallFailed, step, err)
	}
	return nil
}

// fetchVerified downloads the artifact for kind and checks its signature.
// The caller must Remove the returned artifact.
func (e *Env) fetchVerified(ctx context.Context, kind artifact.Kind, req *Request) (*artifact.Artifact, error) {
	art, err := artifact.Describe(kind, e.Product, req.Version(), req.Arch(), e.DownloadBase)
	if err != nil {
		return nil, fatal.New(fatal.DownloadFailed, "describe package", err)
	}
	if err := e.Fetcher.Fetch(ctx, art, req.WorkDir()); err != nil {
		return nil, err
	}

	if kind == artifact.KindRPM {
		if err := artifact.CheckRPMHeader(art.LocalPath, e.Product, req.Version()); err != nil {
			e.Log.Warnf("rpm header check: %v", err)
		}
	}

	outcome := e.Verifier.Verify(ctx, art, req.SkipVerify())
	e.Log.Debugw("verification", "run", req.RunID(), "artifact", art.Name, "outcome", outcome.String())
	return art, nil
}

// managedRepoHandler installs by name from the already configured apt
// repository. The repository's own signing covers verification.
type managedRepoHandler struct{ env *Env }

func (h *managedRepoHandler) Install(ctx context.Context, req *Request) error {
	const step = "install from managed repository"
	if err := h.env.install(ctx, step, "apt-get", "update"); err != nil {
		return err
	}
	return h.env.install(ctx, step, "apt-get", "install", "-y", h.env.Product)
}

// packageFileHandler installs a downloaded deb or rpm with the native manager.
type packageFileHandler struct {
	env     *Env
	kind    artifact.Kind
	manager string
}

func (h *packageFileHandler) Install(ctx context.Context, req *Request) error {
	art, err := h.env.fetchVerified(ctx, h.kind, req)
	if err != nil {
		return err
	}
	defer art.Remove()

	return h.env.install(ctx, "install via "+h.manager, h.manager, "install", "-y", art.LocalPath)
}

// aurHandler installs the binary AUR package through yay or paru. Nothing
// goes through the Fetcher or Verifier: the helper downloads the sources
// listed in the PKGBUILD and makepkg rejects any whose sha256sums do not
// match, which stands in for the detached signature check.
type aurHandler struct {
	env    *Env
	helper Helper
}

func (h *aurHandler) Install(ctx context.Context, req *Request) error {
	if h.helper == HelperNone {
		fmt.Fprint(h.env.Stderr, aurRemediation(h.env.AURPackage))
		return fatal.Newf(fatal.NoAURHelper, "install via pacman",
			"pacman found but neither yay nor paru is installed")
	}
	return h.env.install(ctx, "install via "+string(h.helper), string(h.helper), "-S", "--noconfirm", h.env.AURPackage)
}

func aurRemediation(pkg string) string {
	return fmt.Sprintf(`No AUR helper found. Install yay or paru, then run:

  yay -S %[1]s

or build the package by hand:

  git clone https://aur.archlinux.org/%[1]s.git
  cd %[1]s && makepkg -si

`, pkg)
}

// appImageHandler drops the self-contained AppImage into a user directory.
type appImageHandler struct{ env *Env }

func (h *appImageHandler) Install(ctx context.Context, req *Request) error {
	const step = "install AppImage"

	dir, err := h.installDir()
	if err != nil {
		return fatal.New(fatal.InstallFailed, step, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fatal.New(fatal.InstallFailed, step, fmt.Errorf("create install dir: %w", err))
	}

	art, err := h.env.fetchVerified(ctx, artifact.KindAppImage, req)
	if err != nil {
		return err
	}
	defer art.Remove()

	dest := filepath.Join(dir, h.env.Product)
	if err := moveFile(art.LocalPath, dest); err != nil {
		return fatal.New(fatal.InstallFailed, step, err)
	}
	if err := os.Chmod(dest, 0o755); err != nil {
		return fatal.New(fatal.InstallFailed, step, fmt.Errorf("make executable: %w", err))
	}
	h.env.Log.Infof("Installed %s to %s", h.env.Product, dest)

	if !shell.InPath(dir, h.env.PathList) {
		h.env.Log.Warnf("%s is not in your PATH. %s", dir, shell.PathHint(dir))
	}
	return nil
}

func (h *appImageHandler) installDir() (string, error) {
	if h.env.InstallDir != "" {
		return h.env.InstallDir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, ".local", "bin"), nil
}

// moveFile renames src to dst, copying when they are on different
// filesystems. dst is replaced atomically either way.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open download: %w", err)
	}
	defer in.Close()

	tmp := dst + ".tmp"
	out, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o755)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(tmp)
		return fmt.Errorf("copy download: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return os.Remove(src)
}
