// Package testutil isolates installer tests from the machine running them.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// Env is the isolated environment created by SetupTestEnv.
type Env struct {
	Home   string
	TmpDir string
	// BinDir is the default AppImage install directory under Home.
	BinDir string
}

// SetupTestEnv points HOME and TMPDIR at fresh temporary directories, sets a
// minimal PATH and a known SHELL, and clears the installer's own variables
// so no test reads /etc/zerb or the developer's settings.
//
// The directories are removed by t.TempDir, so callers don't need to clean up.
func SetupTestEnv(t *testing.T) *Env {
	t.Helper()

	root := t.TempDir()
	env := &Env{
		Home:   filepath.Join(root, "home"),
		TmpDir: filepath.Join(root, "tmp"),
	}
	env.BinDir = filepath.Join(env.Home, ".local", "bin")

	for _, dir := range []string{env.Home, env.TmpDir} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			t.Fatalf("failed to create test directory %s: %v", dir, err)
		}
	}

	t.Setenv("HOME", env.Home)
	t.Setenv("TMPDIR", env.TmpDir)
	t.Setenv("PATH", "/usr/bin:/bin")
	t.Setenv("SHELL", "/bin/bash")
	t.Setenv("ZERB_DEBUG", "")
	t.Setenv("ZERB_INSTALLER_CONFIG", "")

	return env
}

// WriteFile writes content under dir, creating parents.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("create %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
