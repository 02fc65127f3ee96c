package platform

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ZebulonRouseFrantzich/zerb-installer/internal/fatal"
	"github.com/ZebulonRouseFrantzich/zerb-installer/internal/runner"
)

var amd64Info = &Info{OS: "linux", Arch: ArchAMD64, ArchRaw: "x86_64"}

func newTestProber(t *testing.T, d Detector, r runner.Runner, cfg ProberConfig) *Prober {
	t.Helper()
	cfg.Detector = d
	cfg.Runner = r
	p, err := NewProber(cfg)
	if err != nil {
		t.Fatalf("NewProber() error = %v", err)
	}
	return p
}

func TestNewProber_RequiresDependencies(t *testing.T) {
	if _, err := NewProber(ProberConfig{Runner: runner.NewFake()}); err == nil {
		t.Error("expected error without detector")
	}
	if _, err := NewProber(ProberConfig{Detector: NewMockDetector(amd64Info, nil)}); err == nil {
		t.Error("expected error without runner")
	}
}

func TestProbe_Capabilities(t *testing.T) {
	dir := t.TempDir()
	sourceList := filepath.Join(dir, "zerb.list")
	if err := os.WriteFile(sourceList, []byte("deb x\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	fake := runner.NewFake(ToolAptGet, ToolDnf, ToolParu)
	p := newTestProber(t, NewMockDetector(amd64Info, nil), fake, ProberConfig{SourceListPath: sourceList})

	probe, err := p.Probe(context.Background())
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}

	want := Capabilities{AptRepoConfigured: true, AptGet: true, Dnf: true, Paru: true}
	if probe.Capabilities != want {
		t.Errorf("Capabilities = %+v, want %+v", probe.Capabilities, want)
	}
	if probe.Info != amd64Info {
		t.Errorf("Info = %+v, want %+v", probe.Info, amd64Info)
	}
}

func TestProbe_SourceListMissingOrDirectory(t *testing.T) {
	dir := t.TempDir()

	for name, path := range map[string]string{
		"missing":   filepath.Join(dir, "absent.list"),
		"directory": dir,
		"unset":     "",
	} {
		t.Run(name, func(t *testing.T) {
			p := newTestProber(t, NewMockDetector(amd64Info, nil), runner.NewFake(), ProberConfig{SourceListPath: path})
			probe, err := p.Probe(context.Background())
			if err != nil {
				t.Fatalf("Probe() error = %v", err)
			}
			if probe.Capabilities.AptRepoConfigured {
				t.Error("AptRepoConfigured = true, want false")
			}
		})
	}
}

func TestProbe_UnsupportedArchitectureFirst(t *testing.T) {
	archErr := fatal.Newf(fatal.UnsupportedArchitecture, "detect architecture", "armv7l")
	fake := runner.NewFake()
	p := newTestProber(t, NewMockDetector(nil, archErr), fake, ProberConfig{DownloadTool: "curl"})

	_, err := p.Probe(context.Background())
	if !fatal.IsKind(err, fatal.UnsupportedArchitecture) {
		t.Fatalf("Probe() error = %v, want unsupported architecture", err)
	}
	if len(fake.Lookups()) != 0 {
		t.Errorf("no PATH lookups expected after architecture failure, got %v", fake.Lookups())
	}
}

func TestProbe_MissingDownloadTool(t *testing.T) {
	fake := runner.NewFake(ToolAptGet)
	p := newTestProber(t, NewMockDetector(amd64Info, nil), fake, ProberConfig{DownloadTool: "curl"})

	_, err := p.Probe(context.Background())
	if !fatal.IsKind(err, fatal.MissingDependency) {
		t.Fatalf("Probe() error = %v, want missing dependency", err)
	}
}

func TestProbe_DownloadToolPresent(t *testing.T) {
	fake := runner.NewFake("wget")
	p := newTestProber(t, NewMockDetector(amd64Info, nil), fake, ProberConfig{DownloadTool: "wget"})

	if _, err := p.Probe(context.Background()); err != nil {
		t.Fatalf("Probe() error = %v", err)
	}
}

func TestProbe_DetectorError(t *testing.T) {
	want := errors.New("boom")
	p := newTestProber(t, NewMockDetector(nil, want), runner.NewFake(), ProberConfig{})

	if _, err := p.Probe(context.Background()); !errors.Is(err, want) {
		t.Errorf("Probe() error = %v, want %v", err, want)
	}
}
