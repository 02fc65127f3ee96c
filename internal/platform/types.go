// Package platform probes the host: CPU architecture, Linux distribution,
// and which package managers and helpers are installed.
//
// Architecture comes from the kernel's machine identifier (uname -m) via
// gopsutil. Only x86_64 and aarch64 are supported; anything else is a fatal
// error raised before the installer touches the network. Distribution
// details are best effort and fall back to empty fields.
package platform

import "context"

// Architectures the installer publishes artifacts for.
const (
	ArchAMD64 = "amd64"
	ArchARM64 = "arm64"
)

// Linux distribution family constants.
// These represent canonical family names for grouping related distributions.
const (
	FamilyDebian  = "debian"  // Debian, Ubuntu, Linux Mint
	FamilyRHEL    = "rhel"    // RHEL, CentOS, Rocky Linux, AlmaLinux
	FamilyFedora  = "fedora"  // Fedora
	FamilySUSE    = "suse"    // openSUSE, SLES
	FamilyArch    = "arch"    // Arch Linux, Manjaro
	FamilyAlpine  = "alpine"  // Alpine Linux
	FamilyGentoo  = "gentoo"  // Gentoo
	FamilyUnknown = "unknown" // Unrecognized distributions
)

// Info contains platform detection information.
type Info struct {
	OS       string // "linux"
	Arch     string // "amd64" or "arm64"
	ArchRaw  string // kernel machine identifier, e.g. "x86_64", "aarch64"
	Platform string // distro ID, e.g. "ubuntu", "arch"
	Family   string // canonical family, e.g. "debian", "rhel", "arch"
	Version  string // distro version, e.g. "22.04"
}

// Distro contains Linux distribution information.
type Distro struct {
	ID      string
	Family  string
	Version string
}

// GetDistro returns distro information, or nil if detection failed.
func (i *Info) GetDistro() *Distro {
	if i.OS != "linux" || i.Platform == "" {
		return nil
	}
	return &Distro{
		ID:      i.Platform,
		Family:  i.Family,
		Version: i.Version,
	}
}

// IsLinux returns true if the platform is Linux.
func (i *Info) IsLinux() bool {
	return i.OS == "linux"
}

// IsAMD64 returns true if the architecture is amd64.
func (i *Info) IsAMD64() bool {
	return i.Arch == ArchAMD64
}

// IsARM64 returns true if the architecture is arm64.
func (i *Info) IsARM64() bool {
	return i.Arch == ArchARM64
}

// IsDebianFamily returns true if the Linux distribution is Debian-based.
func (i *Info) IsDebianFamily() bool {
	return i.OS == "linux" && i.Family == FamilyDebian
}

// IsRHELFamily returns true if the Linux distribution is RHEL-based.
func (i *Info) IsRHELFamily() bool {
	return i.OS == "linux" && i.Family == FamilyRHEL
}

// IsFedoraFamily returns true if the Linux distribution is Fedora-based.
func (i *Info) IsFedoraFamily() bool {
	return i.OS == "linux" && i.Family == FamilyFedora
}

// IsArchFamily returns true if the Linux distribution is Arch-based.
func (i *Info) IsArchFamily() bool {
	return i.OS == "linux" && i.Family == FamilyArch
}

// Detector is the interface for platform detection.
type Detector interface {
	Detect(ctx context.Context) (*Info, error)
}

// Capabilities records which package managers and helpers are on the host.
// Each flag is probed independently, so several can be true at once.
type Capabilities struct {
	// AptRepoConfigured is true when the managed apt source entry exists.
	AptRepoConfigured bool
	AptGet            bool
	Dnf               bool
	Pacman            bool
	Yay               bool
	Paru              bool
}

// Probe is the result of probing the host.
type Probe struct {
	Info         *Info
	Capabilities Capabilities
}
