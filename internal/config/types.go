package config

import (
	"fmt"
	"net/url"
	"regexp"
	"time"
)

// Download backends.
const (
	DownloaderNative = "native"
	DownloaderCurl   = "curl"
	DownloaderWget   = "wget"
)

// Signature verification backends.
const (
	VerifierGPG    = "gpg"
	VerifierNative = "native"
)

// Settings holds everything the installer and repository configurator need
// to know about where zerb is published.
type Settings struct {
	// Product is the package name in every channel (deb, rpm, apt repository).
	Product string

	// ReleaseAPI returns JSON with a tag_name for the latest release.
	ReleaseAPI string
	// DownloadBase is the prefix for release assets; assets live at
	// {DownloadBase}/v{version}/{file}.
	DownloadBase string
	// KeyURL serves the publisher's OpenPGP public key.
	KeyURL string

	// Managed apt repository.
	RepoURL       string
	RepoSuite     string
	RepoComponent string

	// AURPackage is the AUR package installed through yay or paru.
	AURPackage string

	// HTTPTimeout bounds each HTTP request.
	HTTPTimeout time.Duration

	// Downloader selects the download backend (native, curl, wget).
	Downloader string
	// Verifier selects the signature backend (gpg, native).
	Verifier string

	// InstallDir is where the AppImage lands. Empty means ~/.local/bin.
	InstallDir string

	// System paths written by the repository configurator. These are not
	// settable from Lua.
	KeyringPath    string
	SourceListPath string
}

// DefaultSettings returns the published zerb locations.
func DefaultSettings() *Settings {
	return &Settings{
		Product:        DefaultProduct,
		ReleaseAPI:     "https://api.github.com/repos/ZebulonRouseFrantzich/zerb/releases/latest",
		DownloadBase:   "https://github.com/ZebulonRouseFrantzich/zerb/releases/download",
		KeyURL:         "https://zebulonrousefrantzich.github.io/zerb/KEY.asc",
		RepoURL:        "https://zebulonrousefrantzich.github.io/zerb/apt",
		RepoSuite:      "stable",
		RepoComponent:  "main",
		AURPackage:     DefaultProduct + "-bin",
		HTTPTimeout:    DefaultHTTPTimeout,
		Downloader:     DownloaderNative,
		Verifier:       VerifierGPG,
		KeyringPath:    "/usr/share/keyrings/" + DefaultProduct + "-archive-keyring.gpg",
		SourceListPath: "/etc/apt/sources.list.d/" + DefaultProduct + ".list",
	}
}

var productPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9+.-]*$`)

// Validate checks that the settings are usable.
func (s *Settings) Validate() error {
	if !productPattern.MatchString(s.Product) {
		return &ValidationError{Field: luaFieldProduct, Message: fmt.Sprintf("invalid package name %q", s.Product)}
	}
	if s.AURPackage != "" && !productPattern.MatchString(s.AURPackage) {
		return &ValidationError{Field: luaFieldAURPackage, Message: fmt.Sprintf("invalid package name %q", s.AURPackage)}
	}

	urls := []struct {
		field string
		value string
	}{
		{luaFieldReleaseAPI, s.ReleaseAPI},
		{luaFieldDownloadBase, s.DownloadBase},
		{luaFieldKeyURL, s.KeyURL},
		{luaFieldRepoURL, s.RepoURL},
	}
	for _, u := range urls {
		if err := validateURL(u.value); err != nil {
			return &ValidationError{Field: u.field, Message: err.Error()}
		}
	}

	if s.RepoSuite == "" {
		return &ValidationError{Field: luaFieldRepoSuite, Message: "must not be empty"}
	}
	if s.RepoComponent == "" {
		return &ValidationError{Field: luaFieldRepoComponent, Message: "must not be empty"}
	}

	if s.HTTPTimeout <= 0 {
		return &ValidationError{Field: luaFieldHTTPTimeout, Message: "must be positive"}
	}

	switch s.Downloader {
	case DownloaderNative, DownloaderCurl, DownloaderWget:
	default:
		return &ValidationError{Field: luaFieldDownloader, Message: fmt.Sprintf("unknown backend %q (want native, curl or wget)", s.Downloader)}
	}

	switch s.Verifier {
	case VerifierGPG, VerifierNative:
	default:
		return &ValidationError{Field: luaFieldVerifier, Message: fmt.Sprintf("unknown backend %q (want gpg or native)", s.Verifier)}
	}

	return nil
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return fmt.Errorf("URL must use http or https: %q", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("URL has no host: %q", raw)
	}
	return nil
}

// ValidationError reports an invalid setting.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("installer.%s: %s", e.Field, e.Message)
}

// ParseError represents a settings file that could not be evaluated.
type ParseError struct {
	Message string // User-friendly message
	Detail  string // Raw Lua error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Message, e.Detail)
}
