package installer

import (
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/ZebulonRouseFrantzich/zerb-installer/internal/artifact"
	"github.com/ZebulonRouseFrantzich/zerb-installer/internal/config"
	"github.com/ZebulonRouseFrantzich/zerb-installer/internal/platform"
	"github.com/ZebulonRouseFrantzich/zerb-installer/internal/release"
	"github.com/ZebulonRouseFrantzich/zerb-installer/internal/runner"
	"github.com/ZebulonRouseFrantzich/zerb-installer/internal/strategy"
)

// Deps are the host-facing pieces FromSettings assembles an Installer from.
type Deps struct {
	Settings *config.Settings
	Detector platform.Detector
	Runner   runner.Runner
	// Progress receives download progress bars; nil disables them.
	Progress io.Writer
	// Stderr receives remediation text.
	Stderr io.Writer
	// PathList is the user's search path, normally $PATH.
	PathList string
	TempDir  string
	Log      *zap.SugaredLogger
}

// FromSettings builds the production installer.
func FromSettings(d Deps) (*Installer, error) {
	s := d.Settings
	client := &http.Client{Timeout: s.HTTPTimeout}

	downloadTool := ""
	if s.Downloader != config.DownloaderNative {
		downloadTool = s.Downloader
	}
	prober, err := platform.NewProber(platform.ProberConfig{
		Detector:       d.Detector,
		Runner:         d.Runner,
		SourceListPath: s.SourceListPath,
		DownloadTool:   downloadTool,
		Log:            d.Log,
	})
	if err != nil {
		return nil, err
	}

	fetcher := artifact.NewFetcher(artifact.FetcherConfig{
		Backend:  s.Downloader,
		Client:   client,
		Runner:   d.Runner,
		Progress: d.Progress,
		Log:      d.Log,
	})
	verifier := artifact.NewVerifier(artifact.VerifierConfig{
		Backend: s.Verifier,
		Fetcher: fetcher,
		Runner:  d.Runner,
		KeyURL:  s.KeyURL,
		Log:     d.Log,
	})

	dispatcher := strategy.NewDispatcher(strategy.Env{
		Runner:       d.Runner,
		Fetcher:      fetcher,
		Verifier:     verifier,
		Product:      s.Product,
		DownloadBase: s.DownloadBase,
		AURPackage:   s.AURPackage,
		InstallDir:   s.InstallDir,
		PathList:     d.PathList,
		Stderr:       d.Stderr,
		Log:          d.Log,
	})

	return New(Config{
		Prober:     prober,
		Resolver:   release.NewResolver(release.Config{Endpoint: s.ReleaseAPI, Client: client, Log: d.Log}),
		Dispatcher: dispatcher,
		TempDir:    d.TempDir,
		Log:        d.Log,
	})
}
