package account

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"

	"github.com/asabya/fdp-storage/internal/cryptox"
)

// AddressSize is the length in bytes of a pod owner address.
const AddressSize = 20

// Address identifies a pod owner on the network. It is the trailing 20 bytes
// of the Keccak-256 digest of the owner's public key, hex in text form.
type Address [AddressSize]byte

// NewAddress derives the address for a public key.
func NewAddress(pub ed25519.PublicKey) Address {
	var a Address
	digest := cryptox.Keccak256(pub)
	copy(a[:], digest[len(digest)-AddressSize:])
	return a
}

// ParseAddress parses the hex text form of an address.
func ParseAddress(s string) (Address, error) {
	var a Address
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != AddressSize {
		return a, fmt.Errorf("invalid address: %q", s)
	}
	copy(a[:], b)
	return a, nil
}

func (a Address) String() string { return hex.EncodeToString(a[:]) }

// IsZero reports whether the address is unset.
func (a Address) IsZero() bool { return a == Address{} }

// MarshalText implements encoding.TextMarshaler.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
