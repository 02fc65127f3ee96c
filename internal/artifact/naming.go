package artifact

import (
	"fmt"
	"strings"

	"github.com/ZebulonRouseFrantzich/zerb-installer/internal/platform"
)

// SignatureSuffix is appended to an asset URL to get its detached signature.
const SignatureSuffix = ".asc"

// Describe builds the artifact for a package kind, version and architecture.
// arch is the normalized architecture (amd64 or arm64).
func Describe(kind Kind, product, version, arch, downloadBase string) (*Artifact, error) {
	if version == "" {
		return nil, fmt.Errorf("version is required")
	}
	if product == "" {
		return nil, fmt.Errorf("product is required")
	}

	var name string
	switch kind {
	case KindDeb:
		debArch, err := mapDebArch(arch)
		if err != nil {
			return nil, err
		}
		name = fmt.Sprintf("%s_%s_%s.deb", product, version, debArch)
	case KindRPM:
		machine, err := mapMachine(arch)
		if err != nil {
			return nil, err
		}
		name = fmt.Sprintf("%s-%s-1.%s.rpm", product, version, machine)
	case KindAppImage:
		machine, err := mapMachine(arch)
		if err != nil {
			return nil, err
		}
		name = fmt.Sprintf("%s-%s-%s.AppImage", product, version, machine)
	default:
		return nil, fmt.Errorf("unknown artifact kind: %s", kind)
	}

	url := fmt.Sprintf("%s/v%s/%s", strings.TrimRight(downloadBase, "/"), version, name)
	return &Artifact{
		Kind:         kind,
		Product:      product,
		Version:      version,
		Name:         name,
		DownloadURL:  url,
		SignatureURL: url + SignatureSuffix,
	}, nil
}

// mapDebArch maps an architecture to Debian naming
func mapDebArch(arch string) (string, error) {
	switch arch {
	case platform.ArchAMD64, platform.ArchARM64:
		return arch, nil
	default:
		return "", fmt.Errorf("unsupported architecture: %s", arch)
	}
}

// mapMachine maps an architecture to the kernel machine name used by rpm and AppImage
func mapMachine(arch string) (string, error) {
	switch arch {
	case platform.ArchAMD64:
		return "x86_64", nil
	case platform.ArchARM64:
		return "aarch64", nil
	default:
		return "", fmt.Errorf("unsupported architecture: %s", arch)
	}
}
