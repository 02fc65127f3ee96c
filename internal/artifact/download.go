package artifact

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/ZebulonRouseFrantzich/zerb-installer/internal/config"
	"github.com/ZebulonRouseFrantzich/zerb-installer/internal/fatal"
	"github.com/ZebulonRouseFrantzich/zerb-installer/internal/logger"
	"github.com/ZebulonRouseFrantzich/zerb-installer/internal/runner"
)

const stepFetch = "fetch package"

// StatusError is returned for a non-200 HTTP response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d for %s", e.StatusCode, e.URL)
}

// IsNotFound reports whether err is an HTTP 404.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}

// FetcherConfig configures a Fetcher.
type FetcherConfig struct {
	// Backend is config.DownloaderNative, DownloaderCurl or DownloaderWget.
	Backend string
	Client  *http.Client
	// Runner executes curl or wget. Unused by the native backend.
	Runner runner.Runner
	// Progress receives a progress bar for package downloads. Nil disables it.
	Progress io.Writer
	Log      *zap.SugaredLogger
}

// Fetcher downloads release files. Each download is attempted once.
type Fetcher struct {
	backend  string
	client   *http.Client
	runner   runner.Runner
	progress io.Writer
	log      *zap.SugaredLogger
}

// NewFetcher creates a fetcher.
func NewFetcher(cfg FetcherConfig) *Fetcher {
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: config.DefaultHTTPTimeout}
	}
	backend := cfg.Backend
	if backend == "" {
		backend = config.DownloaderNative
	}
	return &Fetcher{
		backend:  backend,
		client:   client,
		runner:   cfg.Runner,
		progress: cfg.Progress,
		log:      logger.OrNop(cfg.Log),
	}
}

// TerminalOutput returns f when it is a terminal and nil otherwise, for use
// as FetcherConfig.Progress.
func TerminalOutput(f *os.File) io.Writer {
	if f != nil && term.IsTerminal(int(f.Fd())) {
		return f
	}
	return nil
}

// Fetch downloads art into dir and records the local path. Any failure is
// fatal.DownloadFailed and leaves nothing behind in dir.
func (f *Fetcher) Fetch(ctx context.Context, art *Artifact, dir string) error {
	dest := filepath.Join(dir, art.Name)
	f.log.Infof("Downloading %s", art.Name)
	f.log.Debugw("download", "url", art.DownloadURL, "dest", dest, "backend", f.backend)

	if err := f.download(ctx, art.DownloadURL, dest, art.Name); err != nil {
		return fatal.New(fatal.DownloadFailed, stepFetch, fmt.Errorf("%s: %w", art.Name, err))
	}
	art.LocalPath = dest
	return nil
}

// Download fetches url to dest without a progress bar. Errors are returned
// as is so callers can decide whether they matter.
func (f *Fetcher) Download(ctx context.Context, url, dest string) error {
	return f.download(ctx, url, dest, "")
}

func (f *Fetcher) download(ctx context.Context, url, dest, label string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create dest dir: %w", err)
	}

	tmpPath := dest + ".tmp"
	defer os.Remove(tmpPath)

	var err error
	switch f.backend {
	case config.DownloaderNative:
		err = f.downloadHTTP(ctx, url, tmpPath, label)
	case config.DownloaderCurl:
		err = f.runTool(ctx, config.DownloaderCurl, "-fsSL", "-A", config.UserAgent, "-o", tmpPath, url)
	case config.DownloaderWget:
		err = f.runTool(ctx, config.DownloaderWget, "-q", "-U", config.UserAgent, "-O", tmpPath, url)
	default:
		err = fmt.Errorf("unknown download backend: %s", f.backend)
	}
	if err != nil {
		return err
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

func (f *Fetcher) runTool(ctx context.Context, name string, args ...string) error {
	if f.runner == nil {
		return fmt.Errorf("%s backend needs a command runner", name)
	}
	if err := f.runner.Run(ctx, name, args...); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func (f *Fetcher) downloadHTTP(ctx context.Context, url, tmpPath, label string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", config.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	out, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer out.Close()

	var dst io.Writer = out
	var bar *progressbar.ProgressBar
	if label != "" && f.progress != nil {
		bar = progressbar.NewOptions64(resp.ContentLength,
			progressbar.OptionSetWriter(f.progress),
			progressbar.OptionSetDescription(label),
			progressbar.OptionShowBytes(true),
			progressbar.OptionThrottle(65*time.Millisecond),
			progressbar.OptionClearOnFinish(),
		)
		dst = io.MultiWriter(out, bar)
	}

	if _, err := io.Copy(dst, resp.Body); err != nil {
		return fmt.Errorf("copy response body: %w", err)
	}
	if bar != nil {
		_ = bar.Finish()
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	return nil
}
