package shell

import (
	"os"
	"path/filepath"
	"strings"
)

// Kind is a login shell family.
type Kind string

const (
	Bash Kind = "bash"
	Zsh  Kind = "zsh"
	Fish Kind = "fish"
	// POSIX covers sh, dash, ksh and anything unrecognized.
	POSIX Kind = "sh"
)

// Detect maps a shell binary path such as /usr/bin/zsh to its Kind.
func Detect(shellPath string) Kind {
	switch strings.ToLower(filepath.Base(shellPath)) {
	case "bash":
		return Bash
	case "zsh":
		return Zsh
	case "fish":
		return Fish
	default:
		return POSIX
	}
}

// Current returns the Kind of the shell named by $SHELL.
func Current() Kind {
	return Detect(os.Getenv("SHELL"))
}

// StartupFile is the file under home that an interactive shell of this
// kind reads on start.
func (k Kind) StartupFile(home string) string {
	switch k {
	case Bash:
		return filepath.Join(home, ".bashrc")
	case Zsh:
		return filepath.Join(home, ".zshrc")
	case Fish:
		return filepath.Join(home, ".config", "fish", "config.fish")
	default:
		return filepath.Join(home, ".profile")
	}
}

// ExportLine is the startup-file line that puts dir in front of PATH.
func (k Kind) ExportLine(dir string) string {
	if k == Fish {
		return "fish_add_path " + dir
	}
	return `export PATH="` + dir + `:$PATH"`
}
