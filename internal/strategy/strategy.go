// Package strategy picks how zerb gets installed on this host and carries
// the install out.
//
// Selection is a pure function of the probed capabilities, evaluated in a
// fixed order:
//
//	ManagedRepo       the managed apt source entry exists
//	AptGet            apt-get is on PATH
//	Dnf               dnf is on PATH
//	PacmanAUR         pacman is on PATH (helper: yay, else paru)
//	AppImageFallback  none of the above
//
// Once a strategy is chosen the run never falls back to a later one. In
// particular pacman without yay or paru is fatal rather than an AppImage
// install.
package strategy

import (
	"github.com/ZebulonRouseFrantzich/zerb-installer/internal/platform"
)

// Strategy is one way of installing zerb.
type Strategy int

const (
	ManagedRepo Strategy = iota
	AptGet
	Dnf
	PacmanAUR
	AppImageFallback
)

// String returns the string representation of the strategy
func (s Strategy) String() string {
	switch s {
	case ManagedRepo:
		return "managed apt repository"
	case AptGet:
		return "apt-get"
	case Dnf:
		return "dnf"
	case PacmanAUR:
		return "pacman (AUR)"
	case AppImageFallback:
		return "AppImage"
	default:
		return "unknown"
	}
}

// Helper is the AUR helper used by PacmanAUR.
type Helper string

const (
	HelperNone Helper = ""
	HelperYay  Helper = platform.ToolYay
	HelperParu Helper = platform.ToolParu
)

// Select returns the first strategy whose precondition holds, along with
// the AUR helper to use should that strategy be PacmanAUR.
func Select(caps platform.Capabilities) (Strategy, Helper) {
	helper := HelperNone
	switch {
	case caps.Yay:
		helper = HelperYay
	case caps.Paru:
		helper = HelperParu
	}

	switch {
	case caps.AptRepoConfigured:
		return ManagedRepo, helper
	case caps.AptGet:
		return AptGet, helper
	case caps.Dnf:
		return Dnf, helper
	case caps.Pacman:
		return PacmanAUR, helper
	default:
		return AppImageFallback, helper
	}
}
