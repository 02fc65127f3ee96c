package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ZebulonRouseFrantzich/zerb-installer/internal/platform"
	"github.com/ZebulonRouseFrantzich/zerb-installer/internal/testutil"
)

type stubDetector struct {
	info *platform.Info
	err  error
}

func (d stubDetector) Detect(context.Context) (*platform.Info, error) {
	return d.info, d.err
}

func TestParseString_EmptyTableKeepsDefaults(t *testing.T) {
	got, err := NewParser(nil).ParseString(context.Background(), `installer = {}`)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}
	if *got != *DefaultSettings() {
		t.Errorf("ParseString() = %+v, want defaults %+v", got, DefaultSettings())
	}
}

func TestParseString_Overrides(t *testing.T) {
	code := `
		installer = {
			release_api   = "https://mirror.example/zerb/latest.json",
			download_base = "https://mirror.example/zerb/releases",
			key_url       = "https://mirror.example/zerb/KEY.asc",
			repo_url      = "https://mirror.example/zerb/apt",
			repo_suite    = "testing",
			repo_component = "contrib",
			http_timeout  = 30,
			downloader    = "curl",
			verifier      = "native",
		}
	`
	got, err := NewParser(nil).ParseString(context.Background(), code)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}

	want := DefaultSettings()
	want.ReleaseAPI = "https://mirror.example/zerb/latest.json"
	want.DownloadBase = "https://mirror.example/zerb/releases"
	want.KeyURL = "https://mirror.example/zerb/KEY.asc"
	want.RepoURL = "https://mirror.example/zerb/apt"
	want.RepoSuite = "testing"
	want.RepoComponent = "contrib"
	want.HTTPTimeout = 30 * time.Second
	want.Downloader = DownloaderCurl
	want.Verifier = VerifierNative

	if *got != *want {
		t.Errorf("ParseString() = %+v\nwant %+v", got, want)
	}
}

func TestParseString_AURPackageFollowsProduct(t *testing.T) {
	tests := []struct {
		name string
		code string
		want string
	}{
		{"default", `installer = {}`, "zerb-bin"},
		{"renamed product", `installer = { product = "zerb-nightly" }`, "zerb-nightly-bin"},
		{"explicit aur package", `installer = { product = "zerb-nightly", aur_package = "zerb-git" }`, "zerb-git"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewParser(nil).ParseString(context.Background(), tt.code)
			if err != nil {
				t.Fatalf("ParseString() error = %v", err)
			}
			if got.AURPackage != tt.want {
				t.Errorf("AURPackage = %q, want %q", got.AURPackage, tt.want)
			}
		})
	}
}

func TestParseString_FractionalTimeout(t *testing.T) {
	got, err := NewParser(nil).ParseString(context.Background(), `installer = { http_timeout = 0.5 }`)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}
	if got.HTTPTimeout != 500*time.Millisecond {
		t.Errorf("HTTPTimeout = %v, want 500ms", got.HTTPTimeout)
	}
}

func TestParseString_InstallDir(t *testing.T) {
	env := testutil.SetupTestEnv(t)

	got, err := NewParser(nil).ParseString(context.Background(), `installer = { install_dir = "~/bin/" }`)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}
	if want := filepath.Join(env.Home, "bin"); got.InstallDir != want {
		t.Errorf("InstallDir = %q, want %q", got.InstallDir, want)
	}

	_, err = NewParser(nil).ParseString(context.Background(), `installer = { install_dir = "relative/bin" }`)
	var vErr *ValidationError
	if !errors.As(err, &vErr) || vErr.Field != luaFieldInstallDir {
		t.Errorf("relative install_dir error = %v, want ValidationError on %s", err, luaFieldInstallDir)
	}
}

func TestParseString_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		code      string
		wantField string
	}{
		{"unknown downloader", `installer = { downloader = "aria2" }`, luaFieldDownloader},
		{"unknown verifier", `installer = { verifier = "cosign" }`, luaFieldVerifier},
		{"downloader not a string", `installer = { downloader = 5 }`, luaFieldDownloader},
		{"timeout not a number", `installer = { http_timeout = "30s" }`, luaFieldHTTPTimeout},
		{"zero timeout", `installer = { http_timeout = 0 }`, luaFieldHTTPTimeout},
		{"ftp url", `installer = { key_url = "ftp://example.com/KEY.asc" }`, luaFieldKeyURL},
		{"url without host", `installer = { download_base = "https:///releases" }`, luaFieldDownloadBase},
		{"bad product name", `installer = { product = "Zerb Beta" }`, luaFieldProduct},
		{"empty suite", `installer = { repo_suite = "" }`, luaFieldRepoSuite},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewParser(nil).ParseString(context.Background(), tt.code)
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("ParseString() error = %v, want *ValidationError", err)
			}
			if vErr.Field != tt.wantField {
				t.Errorf("ValidationError.Field = %q, want %q", vErr.Field, tt.wantField)
			}
			if !strings.HasPrefix(err.Error(), "installer."+tt.wantField+":") {
				t.Errorf("Error() = %q, want installer.%s prefix", err.Error(), tt.wantField)
			}
		})
	}
}

func TestParseString_ParseErrors(t *testing.T) {
	tests := []struct {
		name        string
		code        string
		wantMessage string
	}{
		{"no installer table", `x = 1`, "missing or invalid 'installer' table"},
		{"installer not a table", `installer = "zerb"`, "missing or invalid 'installer' table"},
		{"syntax error", `installer = {`, "Lua syntax error"},
		{"runtime error", `installer = { downloader = nil .. "x" }`, "Lua syntax error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewParser(nil).ParseString(context.Background(), tt.code)
			var pErr *ParseError
			if !errors.As(err, &pErr) {
				t.Fatalf("ParseString() error = %v, want *ParseError", err)
			}
			if pErr.Message != tt.wantMessage {
				t.Errorf("ParseError.Message = %q, want %q", pErr.Message, tt.wantMessage)
			}
		})
	}
}

func TestParseString_PlatformTable(t *testing.T) {
	detector := stubDetector{info: &platform.Info{
		OS:       "linux",
		Arch:     platform.ArchARM64,
		ArchRaw:  "aarch64",
		Platform: "ubuntu",
		Family:   platform.FamilyDebian,
		Version:  "24.04",
	}}

	code := `
		installer = {
			verifier   = platform.is_arm64 and "native" or "gpg",
			downloader = platform.when(platform.is_debian_family, "wget"),
		}
	`
	got, err := NewParser(detector).ParseString(context.Background(), code)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}
	if got.Verifier != VerifierNative {
		t.Errorf("Verifier = %q, want %q", got.Verifier, VerifierNative)
	}
	if got.Downloader != DownloaderWget {
		t.Errorf("Downloader = %q, want %q", got.Downloader, DownloaderWget)
	}
}

func TestParseString_NoDetectorMeansNoPlatform(t *testing.T) {
	_, err := NewParser(nil).ParseString(context.Background(), `installer = { verifier = platform.is_arm64 and "native" or "gpg" }`)
	if err == nil {
		t.Fatal("ParseString() should fail when platform is not injected")
	}
}

func TestParseString_DetectorError(t *testing.T) {
	detectErr := errors.New("uname failed")
	_, err := NewParser(stubDetector{err: detectErr}).ParseString(context.Background(), `installer = {}`)
	if !errors.Is(err, detectErr) {
		t.Errorf("ParseString() error = %v, want wrapped %v", err, detectErr)
	}
}

func TestParseString_Timeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewParser(nil).ParseString(ctx, `while true do end`)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("ParseString() error = %v, want context.DeadlineExceeded", err)
	}
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("reads file", func(t *testing.T) {
		path := testutil.WriteFile(t, dir, "installer.lua", `installer = { downloader = "wget" }`)
		got, err := NewParser(nil).ParseFile(context.Background(), path)
		if err != nil {
			t.Fatalf("ParseFile() error = %v", err)
		}
		if got.Downloader != DownloaderWget {
			t.Errorf("Downloader = %q, want wget", got.Downloader)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := NewParser(nil).ParseFile(context.Background(), filepath.Join(dir, "nope.lua"))
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("ParseFile() error = %v, want os.ErrNotExist", err)
		}
	})

	t.Run("too large", func(t *testing.T) {
		big := "installer = {}\n-- " + strings.Repeat("x", MaxFileSize)
		path := testutil.WriteFile(t, dir, "big.lua", big)
		_, err := NewParser(nil).ParseFile(context.Background(), path)
		var pErr *ParseError
		if !errors.As(err, &pErr) || pErr.Message != "settings file too large" {
			t.Errorf("ParseFile() error = %v, want size ParseError", err)
		}
	})
}

func TestLoad_Resolution(t *testing.T) {
	env := testutil.SetupTestEnv(t)
	explicit := testutil.WriteFile(t, env.TmpDir, "explicit.lua", `installer = { downloader = "curl" }`)
	fromEnv := testutil.WriteFile(t, env.TmpDir, "env.lua", `installer = { downloader = "wget" }`)

	t.Run("explicit path", func(t *testing.T) {
		got, err := NewParser(nil).Load(context.Background(), explicit)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if got.Downloader != DownloaderCurl {
			t.Errorf("Downloader = %q, want curl", got.Downloader)
		}
	})

	t.Run("environment variable", func(t *testing.T) {
		t.Setenv(EnvConfigPath, fromEnv)
		got, err := NewParser(nil).Load(context.Background(), "")
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if got.Downloader != DownloaderWget {
			t.Errorf("Downloader = %q, want wget", got.Downloader)
		}
	})

	t.Run("explicit wins over environment", func(t *testing.T) {
		t.Setenv(EnvConfigPath, fromEnv)
		got, err := NewParser(nil).Load(context.Background(), explicit)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if got.Downloader != DownloaderCurl {
			t.Errorf("Downloader = %q, want curl", got.Downloader)
		}
	})

	t.Run("missing explicit path is an error", func(t *testing.T) {
		if _, err := NewParser(nil).Load(context.Background(), filepath.Join(env.TmpDir, "missing.lua")); err == nil {
			t.Error("Load() should fail for a missing explicit path")
		}
	})

	t.Run("missing environment path is an error", func(t *testing.T) {
		t.Setenv(EnvConfigPath, filepath.Join(env.TmpDir, "missing.lua"))
		if _, err := NewParser(nil).Load(context.Background(), ""); err == nil {
			t.Error("Load() should fail for a missing $" + EnvConfigPath)
		}
	})

	t.Run("missing default path uses defaults", func(t *testing.T) {
		if _, err := os.Stat(DefaultPath); err == nil {
			t.Skipf("%s exists on this machine", DefaultPath)
		}
		got, err := NewParser(nil).Load(context.Background(), "")
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if *got != *DefaultSettings() {
			t.Errorf("Load() = %+v, want defaults", got)
		}
	})
}

func TestFormatError(t *testing.T) {
	err := &ParseError{
		Message: "Lua syntax error",
		Detail:  "<string>:1: unexpected EOF\nstack traceback:\n\t[G]: ?",
	}

	short := FormatError(err, false)
	if short != "Lua syntax error: <string>:1: unexpected EOF" {
		t.Errorf("FormatError(verbose=false) = %q", short)
	}

	verbose := FormatError(err, true)
	if !strings.Contains(verbose, "stack traceback") || !strings.HasPrefix(verbose, "Lua syntax error\n\nDetails:\n") {
		t.Errorf("FormatError(verbose=true) = %q", verbose)
	}

	plain := errors.New("boom")
	if got := FormatError(plain, false); got != "boom" {
		t.Errorf("FormatError(plain) = %q, want boom", got)
	}
}
