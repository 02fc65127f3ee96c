// Package config loads the installer's settings from an optional Lua file.
//
// The file is evaluated in a sandboxed gopher-lua VM (no os, io, require or
// debug) with the detected platform exposed as the read-only global
// "platform". It must define a global "installer" table; keys it leaves out
// keep their defaults:
//
//	installer = {
//	  release_api   = "https://mirror.example/zerb/latest.json",
//	  download_base = "https://mirror.example/zerb/releases",
//	  key_url       = "https://mirror.example/zerb/KEY.asc",
//	  http_timeout  = 120,                 -- seconds
//	  downloader    = "native",            -- native, curl or wget
//	  verifier      = platform.is_arm64 and "native" or "gpg",
//	  install_dir   = "~/.local/bin",
//	}
//
// The file is looked up at --config, then $ZERB_INSTALLER_CONFIG, then
// /etc/zerb/installer.lua. Only the default location may be absent.
package config
