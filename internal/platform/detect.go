package platform

import (
	"context"
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v4/host"
)

// RealDetector implements Detector using the running kernel.
type RealDetector struct {
	machine      func() (string, error)
	platformInfo func(ctx context.Context) (string, string, string, error)
}

// NewDetector creates a new platform detector.
func NewDetector() Detector {
	return &RealDetector{
		machine:      host.KernelArch,
		platformInfo: host.PlatformInformationWithContext,
	}
}

// NewDetectorWithMachine creates a detector that reports machine as the
// kernel identifier instead of asking uname.
func NewDetectorWithMachine(machine string) Detector {
	return &RealDetector{
		machine:      func() (string, error) { return machine, nil },
		platformInfo: host.PlatformInformationWithContext,
	}
}

// Detect reads the kernel machine identifier and maps it to amd64 or arm64.
// Any other identifier fails with fatal.UnsupportedArchitecture.
//
// If gopsutil cannot read the distribution, the distro fields stay empty and
// detection still succeeds; nothing in the install path depends on them.
func (d *RealDetector) Detect(ctx context.Context) (*Info, error) {
	machine, err := d.machine()
	if err != nil {
		return nil, fmt.Errorf("read machine identifier: %w", err)
	}

	arch, err := normalizeArch(machine)
	if err != nil {
		return nil, err
	}

	info := &Info{
		OS:      runtime.GOOS,
		Arch:    arch,
		ArchRaw: machine,
	}

	if runtime.GOOS == "linux" && d.platformInfo != nil {
		platform, family, version, err := d.platformInfo(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("platform detection cancelled: %w", ctx.Err())
			}
			return info, nil
		}

		if id := clean(platform); id != "" {
			info.Platform = id
			info.Family = resolveFamily(id, family)
			info.Version = clean(version)
		}
	}

	return info, nil
}
