package artifact

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/ZebulonRouseFrantzich/zerb-installer/internal/config"
	"github.com/ZebulonRouseFrantzich/zerb-installer/internal/fatal"
	"github.com/ZebulonRouseFrantzich/zerb-installer/internal/runner"
)

func testArtifact(t *testing.T, baseURL string) *Artifact {
	t.Helper()
	art, err := Describe(KindDeb, "zerb", "1.2.3", "amd64", baseURL)
	if err != nil {
		t.Fatalf("Describe() error = %v", err)
	}
	return art
}

func TestFetch_Native(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != config.UserAgent {
			t.Errorf("unexpected User-Agent: %s", r.Header.Get("User-Agent"))
		}
		if r.URL.Path != "/v1.2.3/zerb_1.2.3_amd64.deb" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte("deb payload"))
	}))
	defer server.Close()

	dir := t.TempDir()
	art := testArtifact(t, server.URL)
	f := NewFetcher(FetcherConfig{})

	if err := f.Fetch(context.Background(), art, dir); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	wantPath := filepath.Join(dir, "zerb_1.2.3_amd64.deb")
	if art.LocalPath != wantPath {
		t.Errorf("LocalPath = %q, want %q", art.LocalPath, wantPath)
	}
	content, err := os.ReadFile(wantPath)
	if err != nil {
		t.Fatalf("read downloaded file: %v", err)
	}
	if string(content) != "deb payload" {
		t.Errorf("content = %q", content)
	}

	if err := art.Remove(); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, err := os.Stat(wantPath); !os.IsNotExist(err) {
		t.Error("file still present after Remove()")
	}
	if err := art.Remove(); err != nil {
		t.Errorf("second Remove() error = %v", err)
	}
}

func TestFetch_AttemptedOnce(t *testing.T) {
	for _, status := range []int{http.StatusNotFound, http.StatusInternalServerError, http.StatusBadGateway} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			var hits int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&hits, 1)
				w.WriteHeader(status)
			}))
			defer server.Close()

			dir := t.TempDir()
			art := testArtifact(t, server.URL)
			err := NewFetcher(FetcherConfig{}).Fetch(context.Background(), art, dir)

			if !fatal.IsKind(err, fatal.DownloadFailed) {
				t.Fatalf("Fetch() error = %v, want download failed", err)
			}
			if got := atomic.LoadInt32(&hits); got != 1 {
				t.Errorf("server hit %d times, want exactly 1", got)
			}
			if art.LocalPath != "" {
				t.Errorf("LocalPath = %q, want empty after failure", art.LocalPath)
			}
			entries, _ := os.ReadDir(dir)
			if len(entries) != 0 {
				t.Errorf("work dir not empty after failure: %v", entries)
			}
		})
	}
}

func TestFetch_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	err := NewFetcher(FetcherConfig{}).Fetch(context.Background(), testArtifact(t, url), t.TempDir())
	if !fatal.IsKind(err, fatal.DownloadFailed) {
		t.Errorf("Fetch() error = %v, want download failed", err)
	}
}

func TestFetch_WithProgress(t *testing.T) {
	payload := bytes.Repeat([]byte("z"), 64*1024)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer server.Close()

	var progress bytes.Buffer
	art := testArtifact(t, server.URL)
	f := NewFetcher(FetcherConfig{Progress: &progress})

	if err := f.Fetch(context.Background(), art, t.TempDir()); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	content, err := os.ReadFile(art.LocalPath)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(content, payload) {
		t.Errorf("downloaded %d bytes, want %d", len(content), len(payload))
	}
}

func TestFetch_CurlBackend(t *testing.T) {
	fake := runner.NewFake("curl")
	fake.OnRun("curl", func(args []string) error {
		for i, a := range args {
			if a == "-o" && i+1 < len(args) {
				return os.WriteFile(args[i+1], []byte("from curl"), 0o644)
			}
		}
		return errors.New("no -o flag")
	})

	art := testArtifact(t, "https://example.com/dl")
	f := NewFetcher(FetcherConfig{Backend: config.DownloaderCurl, Runner: fake})

	if err := f.Fetch(context.Background(), art, t.TempDir()); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if !fake.Ran("curl -fsSL -A " + config.UserAgent) {
		t.Errorf("curl not invoked as expected: %v", fake.Calls())
	}
	content, _ := os.ReadFile(art.LocalPath)
	if string(content) != "from curl" {
		t.Errorf("content = %q", content)
	}
}

func TestFetch_WgetFailure(t *testing.T) {
	fake := runner.NewFake("wget")
	fake.FailOn("wget", errors.New("exit status 8"))

	art := testArtifact(t, "https://example.com/dl")
	err := NewFetcher(FetcherConfig{Backend: config.DownloaderWget, Runner: fake}).Fetch(context.Background(), art, t.TempDir())

	if !fatal.IsKind(err, fatal.DownloadFailed) {
		t.Fatalf("Fetch() error = %v, want download failed", err)
	}
	if n := len(fake.Calls()); n != 1 {
		t.Errorf("wget ran %d times, want 1", n)
	}
}

func TestDownload_NotFound(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	err := NewFetcher(FetcherConfig{}).Download(context.Background(), server.URL+"/x.asc", filepath.Join(t.TempDir(), "x.asc"))
	if !IsNotFound(err) {
		t.Errorf("IsNotFound(%v) = false", err)
	}
	if IsNotFound(errors.New("other")) {
		t.Error("IsNotFound(plain error) = true")
	}
}

func TestTerminalOutput_NotATerminal(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "out")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if TerminalOutput(f) != nil {
		t.Error("regular file reported as terminal")
	}
	if TerminalOutput(nil) != nil {
		t.Error("nil file reported as terminal")
	}
}

func TestNewFetcher_DefaultClient(t *testing.T) {
	f := NewFetcher(FetcherConfig{})
	if f.client.Timeout != config.DefaultHTTPTimeout {
		t.Errorf("client timeout = %v, want %v", f.client.Timeout, config.DefaultHTTPTimeout)
	}
	if f.client.CheckRedirect != nil {
		t.Error("default client should keep net/http's redirect policy")
	}
}
