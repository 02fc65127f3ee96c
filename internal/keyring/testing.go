package keyring

import (
	"bytes"
	"fmt"

	"github.com/ProtonMail/go-crypto/openpgp" //nolint:staticcheck // Using ProtonMail's maintained fork
	"github.com/ProtonMail/go-crypto/openpgp/armor"
)

// TestKey is a throwaway signing identity for tests in this and other
// packages. It is generated on demand and never written to disk.
type TestKey struct {
	Entity *openpgp.Entity
}

// NewTestKey generates a fresh signing key.
func NewTestKey(name string) (*TestKey, error) {
	e, err := openpgp.NewEntity(name, "test", name+"@example.invalid", nil)
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	return &TestKey{Entity: e}, nil
}

// PublicBinary returns the public key in binary packet form.
func (k *TestKey) PublicBinary() ([]byte, error) {
	var buf bytes.Buffer
	if err := k.Entity.Serialize(&buf); err != nil {
		return nil, fmt.Errorf("serialize key: %w", err)
	}
	return buf.Bytes(), nil
}

// PublicArmored returns the public key ASCII-armored.
func (k *TestKey) PublicArmored() ([]byte, error) {
	bin, err := k.PublicBinary()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	w, err := armor.Encode(&buf, openpgp.PublicKeyType, nil)
	if err != nil {
		return nil, fmt.Errorf("armor key: %w", err)
	}
	if _, err := w.Write(bin); err != nil {
		return nil, fmt.Errorf("armor key: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("armor key: %w", err)
	}
	return buf.Bytes(), nil
}

// SignArmored returns an armored detached signature over data.
func (k *TestKey) SignArmored(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := openpgp.ArmoredDetachSign(&buf, k.Entity, bytes.NewReader(data), nil); err != nil {
		return nil, fmt.Errorf("sign: %w", err)
	}
	return buf.Bytes(), nil
}
