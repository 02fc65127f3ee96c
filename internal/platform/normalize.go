package platform

import (
	"strings"

	"github.com/ZebulonRouseFrantzich/zerb-installer/internal/fatal"
)

// machineArch lists the kernel machine identifiers zerb is published for.
var machineArch = map[string]string{
	"x86_64":  ArchAMD64,
	"aarch64": ArchARM64,
}

// normalizeArch maps a kernel machine identifier to a release architecture.
func normalizeArch(machine string) (string, error) {
	if arch, ok := machineArch[strings.TrimSpace(machine)]; ok {
		return arch, nil
	}
	return "", fatal.Newf(fatal.UnsupportedArchitecture, "detect architecture",
		"machine %q is not supported (x86_64 and aarch64 only)", machine)
}

func clean(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// resolveFamily picks the canonical family for a distribution. gopsutil's
// family string wins; when it is empty or unrecognized the distribution ID
// itself is tried, since derivatives such as ubuntu or manjaro are also
// listed by name.
func resolveFamily(id, family string) string {
	for _, candidate := range []string{clean(family), clean(id)} {
		switch candidate {
		case "debian", "ubuntu", "linuxmint", "pop", "raspbian":
			return FamilyDebian
		case "rhel", "centos", "rocky", "almalinux", "ol":
			return FamilyRHEL
		case "fedora":
			return FamilyFedora
		case "suse", "opensuse", "opensuse-leap", "opensuse-tumbleweed", "sles":
			return FamilySUSE
		case "arch", "manjaro", "endeavouros":
			return FamilyArch
		case "alpine":
			return FamilyAlpine
		case "gentoo":
			return FamilyGentoo
		}
	}
	return FamilyUnknown
}
