package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/ZebulonRouseFrantzich/zerb-installer/internal/logger"
	"github.com/ZebulonRouseFrantzich/zerb-installer/internal/platform"
)

// Parser evaluates installer settings files.
type Parser struct {
	detector platform.Detector
	log      *zap.SugaredLogger
}

// NewParser creates a parser. When detector is non-nil its result is exposed
// to the file as the read-only global "platform".
func NewParser(detector platform.Detector) *Parser {
	return &Parser{detector: detector, log: logger.OrNop(nil)}
}

// WithLogger sets the parser's logger.
func (p *Parser) WithLogger(log *zap.SugaredLogger) *Parser {
	p.log = logger.OrNop(log)
	return p
}

// Load resolves the settings file and parses it. Resolution order is the
// explicit path, then $ZERB_INSTALLER_CONFIG, then DefaultPath. Only a
// missing DefaultPath is tolerated; it yields DefaultSettings.
func (p *Parser) Load(ctx context.Context, explicit string) (*Settings, error) {
	path := explicit
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path == "" {
		if _, err := os.Stat(DefaultPath); errors.Is(err, os.ErrNotExist) {
			p.log.Debugw("no settings file, using defaults", "path", DefaultPath)
			return DefaultSettings(), nil
		}
		path = DefaultPath
	}
	return p.ParseFile(ctx, path)
}

// ParseFile reads and evaluates a settings file.
func (p *Parser) ParseFile(ctx context.Context, path string) (*Settings, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open settings file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("read settings file: %w", err)
	}
	if len(data) > MaxFileSize {
		return nil, &ParseError{
			Message: "settings file too large",
			Detail:  fmt.Sprintf("%s exceeds %d bytes", path, MaxFileSize),
		}
	}

	p.log.Debugw("loading settings", "path", path)
	return p.ParseString(ctx, string(data))
}

// ParseString evaluates settings from Lua source. Keys that are absent keep
// their DefaultSettings value.
func (p *Parser) ParseString(ctx context.Context, luaCode string) (*Settings, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultParseTimeout)
		defer cancel()
	}

	L := newSandboxedVM()
	defer L.Close()
	L.SetContext(ctx)

	if p.detector != nil {
		info, err := p.detector.Detect(ctx)
		if err != nil {
			return nil, fmt.Errorf("platform detection failed: %w", err)
		}
		platform.ExposeToLua(L, info)
	}

	if err := L.DoString(luaCode); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("evaluate settings: %w", ctx.Err())
		}
		return nil, &ParseError{
			Message: "Lua syntax error",
			Detail:  err.Error(),
		}
	}

	settings, err := extractSettings(L)
	if err != nil {
		return nil, err
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// extractSettings reads the global "installer" table over the defaults.
func extractSettings(L *lua.LState) (*Settings, error) {
	global := L.GetGlobal(luaGlobalInstaller)
	if global.Type() != lua.LTTable {
		return nil, &ParseError{
			Message: "missing or invalid 'installer' table",
			Detail:  fmt.Sprintf("expected table, got %s", global.Type()),
		}
	}
	table := global.(*lua.LTable)
	s := DefaultSettings()

	strs := []struct {
		field string
		dst   *string
	}{
		{luaFieldProduct, &s.Product},
		{luaFieldReleaseAPI, &s.ReleaseAPI},
		{luaFieldDownloadBase, &s.DownloadBase},
		{luaFieldKeyURL, &s.KeyURL},
		{luaFieldRepoURL, &s.RepoURL},
		{luaFieldRepoSuite, &s.RepoSuite},
		{luaFieldRepoComponent, &s.RepoComponent},
		{luaFieldAURPackage, &s.AURPackage},
		{luaFieldDownloader, &s.Downloader},
		{luaFieldVerifier, &s.Verifier},
		{luaFieldInstallDir, &s.InstallDir},
	}

	productSet := false
	aurSet := false
	for _, f := range strs {
		v := table.RawGetString(f.field)
		switch v.Type() {
		case lua.LTNil:
			continue
		case lua.LTString:
			*f.dst = strings.TrimSpace(v.String())
			switch f.field {
			case luaFieldProduct:
				productSet = true
			case luaFieldAURPackage:
				aurSet = true
			}
		default:
			return nil, &ValidationError{Field: f.field, Message: fmt.Sprintf("expected string, got %s", v.Type())}
		}
	}

	// A renamed product carries its AUR package name along unless set explicitly.
	if productSet && !aurSet {
		s.AURPackage = s.Product + "-bin"
	}

	if v := table.RawGetString(luaFieldHTTPTimeout); v.Type() != lua.LTNil {
		if v.Type() != lua.LTNumber {
			return nil, &ValidationError{Field: luaFieldHTTPTimeout, Message: fmt.Sprintf("expected number of seconds, got %s", v.Type())}
		}
		s.HTTPTimeout = time.Duration(float64(lua.LVAsNumber(v)) * float64(time.Second))
	}

	if s.InstallDir != "" {
		dir, err := expandHome(s.InstallDir)
		if err != nil {
			return nil, &ValidationError{Field: luaFieldInstallDir, Message: err.Error()}
		}
		s.InstallDir = dir
	}

	return s, nil
}

// expandHome expands a leading ~/ and requires the result to be absolute.
func expandHome(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("get home directory: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	if !filepath.IsAbs(path) {
		return "", fmt.Errorf("path must be absolute or start with ~/: %q", path)
	}
	return filepath.Clean(path), nil
}

// FormatError formats a ParseError for user display.
// In verbose mode, show the raw Lua error. Otherwise, show friendly message.
func FormatError(err error, verbose bool) string {
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		if verbose {
			return fmt.Sprintf("%s\n\nDetails:\n%s", parseErr.Message, parseErr.Detail)
		}
		detail := parseErr.Detail
		if idx := strings.Index(detail, "stack traceback"); idx > 0 {
			detail = strings.TrimSpace(detail[:idx])
		}
		return fmt.Sprintf("%s: %s", parseErr.Message, detail)
	}
	return err.Error()
}
