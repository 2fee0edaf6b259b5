package domain

import (
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"
)

// Address is the base58 text form of a provider's ed25519 public key.
type Address string

func AddressFromPublicKey(pub ed25519.PublicKey) Address {
	return Address(base58.Encode(pub))
}

func ParseAddress(s string) (Address, error) {
	if _, err := decodeAddress(s); err != nil {
		return "", err
	}
	return Address(s), nil
}

func (a Address) PublicKey() (ed25519.PublicKey, error) {
	return decodeAddress(string(a))
}

func (a Address) String() string { return string(a) }

func decodeAddress(s string) (ed25519.PublicKey, error) {
	if s == "" {
		return nil, ErrInvalidAddress
	}
	raw, err := base58.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("%w: want %d bytes, got %d", ErrInvalidAddress, ed25519.PublicKeySize, len(raw))
	}
	return ed25519.PublicKey(raw), nil
}
