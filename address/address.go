// Package address identifies ledger participants by a 20-byte public key hash.
package address

import (
	"encoding/hex"
	"errors"
	"fmt"

	bsvhash "github.com/bsv-blockchain/go-sdk/primitives/hash"
	"github.com/bsv-blockchain/go-sdk/script"
)

// Size is the byte length of an Address.
const Size = 20

var (
	// ErrInvalidAddress indicates the input is neither a base58 address nor 40 hex characters.
	ErrInvalidAddress = errors.New("address: invalid address")
)

// Address is the public key hash of a participant. The zero value is the
// null address and is never a valid recipient.
type Address [Size]byte

// Zero is the null address.
var Zero Address

// FromPublicKeyHash copies a 20-byte public key hash into an Address.
func FromPublicKeyHash(pkh []byte) (Address, error) {
	var a Address
	if len(pkh) != Size {
		return a, fmt.Errorf("%w: public key hash must be %d bytes, got %d", ErrInvalidAddress, Size, len(pkh))
	}
	copy(a[:], pkh)
	return a, nil
}

// Derive returns a deterministic address for a label, for contract-style
// participants that hold no key (the token itself, the desk).
func Derive(label string) Address {
	var a Address
	copy(a[:], bsvhash.Hash160([]byte(label)))
	return a
}

// Parse accepts a base58check P2PKH address or a 40-character hex public key hash.
func Parse(s string) (Address, error) {
	if len(s) == Size*2 {
		if b, err := hex.DecodeString(s); err == nil {
			return FromPublicKeyHash(b)
		}
	}
	addr, err := script.NewAddressFromString(s)
	if err != nil {
		return Zero, fmt.Errorf("%w: %q: %w", ErrInvalidAddress, s, err)
	}
	return FromPublicKeyHash([]byte(addr.PublicKeyHash))
}

// IsZero reports whether a is the null address.
func (a Address) IsZero() bool { return a == Zero }

// Hex returns the lowercase hex public key hash.
func (a Address) Hex() string { return hex.EncodeToString(a[:]) }

// Encode returns the base58check P2PKH form for mainnet or testnet.
func (a Address) Encode(mainnet bool) (string, error) {
	addr, err := script.NewAddressFromPublicKeyHash(a[:], mainnet)
	if err != nil {
		return "", fmt.Errorf("address: encode: %w", err)
	}
	return addr.AddressString, nil
}

// String returns the mainnet base58 form, or hex if encoding fails.
func (a Address) String() string {
	s, err := a.Encode(true)
	if err != nil {
		return a.Hex()
	}
	return s
}

// MarshalText encodes the address as hex so it can key JSON maps.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.Hex()), nil
}

// UnmarshalText decodes the hex or base58 form.
func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
