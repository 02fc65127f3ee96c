// Package keyring reads and writes the OpenPGP public key that zerb
// releases are signed with.
//
// Keys arrive either ASCII-armored (KEY.asc) or as binary packets. apt's
// signed-by option wants the binary form, so Dearmor normalizes to that and
// refuses anything that does not parse as a key ring.
package keyring

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ProtonMail/go-crypto/openpgp" //nolint:staticcheck // Using ProtonMail's maintained fork
	"github.com/ProtonMail/go-crypto/openpgp/armor"
)

// ErrEmpty is returned when the input holds no keys.
var ErrEmpty = errors.New("keyring is empty")

var armorHeader = []byte("-----BEGIN PGP")

// IsArmored reports whether data starts with (or contains) an armor header.
func IsArmored(data []byte) bool {
	return bytes.Contains(data, armorHeader)
}

// Dearmor returns the binary encoding of an OpenPGP public key ring.
// Binary input is returned unchanged once it has been validated.
func Dearmor(data []byte) ([]byte, error) {
	bin := data
	if IsArmored(data) {
		block, err := armor.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decode armor: %w", err)
		}
		if block.Type != openpgp.PublicKeyType {
			return nil, fmt.Errorf("unexpected armor type %q", block.Type)
		}
		bin, err = io.ReadAll(block.Body)
		if err != nil {
			return nil, fmt.Errorf("read armored key: %w", err)
		}
	}

	if _, err := parseBinary(bin); err != nil {
		return nil, err
	}
	return bin, nil
}

// Parse reads an armored or binary key ring.
func Parse(data []byte) (openpgp.EntityList, error) {
	if IsArmored(data) {
		keys, err := openpgp.ReadArmoredKeyRing(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("read armored keyring: %w", err)
		}
		if len(keys) == 0 {
			return nil, ErrEmpty
		}
		return keys, nil
	}
	return parseBinary(data)
}

func parseBinary(data []byte) (openpgp.EntityList, error) {
	keys, err := openpgp.ReadKeyRing(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("read keyring: %w", err)
	}
	if len(keys) == 0 {
		return nil, ErrEmpty
	}
	return keys, nil
}

// Load reads a key ring file.
func Load(path string) (openpgp.EntityList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open keyring: %w", err)
	}
	return Parse(data)
}
