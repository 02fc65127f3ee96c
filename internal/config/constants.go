package config

import "time"

const (
	// DefaultProduct is the package being installed.
	DefaultProduct = "zerb"

	// DefaultHTTPTimeout bounds every HTTP request.
	DefaultHTTPTimeout = 5 * time.Minute

	// DefaultPath is read when neither --config nor ZERB_INSTALLER_CONFIG is set.
	DefaultPath = "/etc/zerb/installer.lua"

	// EnvConfigPath overrides DefaultPath.
	EnvConfigPath = "ZERB_INSTALLER_CONFIG"

	// MaxFileSize caps the settings file.
	MaxFileSize = 1 << 20

	// DefaultParseTimeout applies when the caller's context has no deadline.
	DefaultParseTimeout = 5 * time.Second
)

// Lua schema field names and globals
const (
	luaGlobalInstaller    = "installer"
	luaFieldProduct       = "product"
	luaFieldReleaseAPI    = "release_api"
	luaFieldDownloadBase  = "download_base"
	luaFieldKeyURL        = "key_url"
	luaFieldRepoURL       = "repo_url"
	luaFieldRepoSuite     = "repo_suite"
	luaFieldRepoComponent = "repo_component"
	luaFieldAURPackage    = "aur_package"
	luaFieldHTTPTimeout   = "http_timeout"
	luaFieldDownloader    = "downloader"
	luaFieldVerifier      = "verifier"
	luaFieldInstallDir    = "install_dir"
)

// UserAgent is sent with every HTTP request the installer makes.
const UserAgent = "zerb-installer/1.0"
