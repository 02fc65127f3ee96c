// Package release resolves which zerb version to install.
package release

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Masterminds/semver/v3"
	"go.uber.org/zap"

	"github.com/ZebulonRouseFrantzich/zerb-installer/internal/config"
	"github.com/ZebulonRouseFrantzich/zerb-installer/internal/fatal"
	"github.com/ZebulonRouseFrantzich/zerb-installer/internal/logger"
)

const stepResolve = "resolve version"

// maxMetadataSize caps the release metadata body.
const maxMetadataSize = 1 << 20

// Config configures a Resolver.
type Config struct {
	// Endpoint returns JSON with a tag_name field for the latest release.
	Endpoint string
	Client   *http.Client
	Log      *zap.SugaredLogger
}

// Resolver turns an optional user-supplied version into a concrete one.
type Resolver struct {
	endpoint string
	client   *http.Client
	log      *zap.SugaredLogger
}

// NewResolver creates a resolver. A nil client gets the default timeout.
func NewResolver(cfg Config) *Resolver {
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: config.DefaultHTTPTimeout}
	}
	return &Resolver{
		endpoint: cfg.Endpoint,
		client:   client,
		log:      logger.OrNop(cfg.Log),
	}
}

type latestRelease struct {
	TagName string `json:"tag_name"`
}

// Resolve returns explicit unchanged when it is non-empty, without touching
// the network. Otherwise it asks the release endpoint for the latest tag and
// strips one leading "v".
func (r *Resolver) Resolve(ctx context.Context, explicit string) (string, error) {
	if explicit != "" {
		r.log.Debugw("using requested version", "version", explicit)
		return explicit, nil
	}

	tag, err := r.latestTag(ctx)
	if err != nil {
		return "", fatal.New(fatal.ReleaseNotFound, stepResolve, err)
	}

	version := strings.TrimPrefix(tag, "v")
	if version == "" {
		return "", fatal.Newf(fatal.ReleaseNotFound, stepResolve, "release tag %q has no version", tag)
	}

	if _, err := semver.StrictNewVersion(version); err != nil {
		r.log.Warnf("release tag %q is not a semantic version; installing it anyway", tag)
	}

	r.log.Debugw("resolved latest release", "tag", tag, "version", version)
	return version, nil
}

func (r *Resolver) latestTag(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", config.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("query latest release: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("query latest release: unexpected status code: %d", resp.StatusCode)
	}

	var rel latestRelease
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxMetadataSize)).Decode(&rel); err != nil {
		return "", fmt.Errorf("decode release metadata: %w", err)
	}

	tag := strings.TrimSpace(rel.TagName)
	if tag == "" {
		return "", fmt.Errorf("release metadata has no tag_name")
	}
	return tag, nil
}
