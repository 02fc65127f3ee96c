package artifact

import (
	"fmt"
	"os"

	rpmutils "github.com/sassoftware/go-rpmutils"
)

// CheckRPMHeader reads the header of a downloaded rpm and confirms that it
// describes product at version. It returns an error describing the first
// mismatch; callers treat that as a warning.
func CheckRPMHeader(path, product, version string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open rpm: %w", err)
	}
	defer f.Close()

	hdr, err := rpmutils.ReadHeader(f)
	if err != nil {
		return fmt.Errorf("read rpm header: %w", err)
	}
	nevra, err := hdr.GetNEVRA()
	if err != nil {
		return fmt.Errorf("read rpm NEVRA: %w", err)
	}

	if nevra.Name != product {
		return fmt.Errorf("rpm name is %q, expected %q", nevra.Name, product)
	}
	if nevra.Version != version {
		return fmt.Errorf("rpm version is %q, expected %q", nevra.Version, version)
	}
	return nil
}
