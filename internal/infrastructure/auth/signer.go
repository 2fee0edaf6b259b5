package auth

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"time"

	"price-registry/internal/domain"

	"github.com/google/uuid"
)

// Signer produces proofs for a single provider key.
type Signer struct {
	key  ed25519.PrivateKey
	addr domain.Address
}

func NewSigner(key ed25519.PrivateKey) *Signer {
	return &Signer{key: key, addr: domain.AddressFromPublicKey(key.Public().(ed25519.PublicKey))}
}

// NewSignerFromSeedHex accepts the 32-byte ed25519 seed encoded as hex.
func NewSignerFromSeedHex(seedHex string) (*Signer, error) {
	seed, err := hex.DecodeString(seedHex)
	if err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	return NewSigner(ed25519.NewKeyFromSeed(seed)), nil
}

func (s *Signer) Address() domain.Address { return s.addr }

func (s *Signer) SeedHex() string { return hex.EncodeToString(s.key.Seed()) }

// Sign returns a proof over payload bound to a fresh nonce and the current time.
func (s *Signer) Sign(payload []byte) Proof {
	return s.SignAt(payload, uuid.NewString(), uint64(time.Now().Unix()))
}

func (s *Signer) SignAt(payload []byte, nonce string, issuedAt uint64) Proof {
	return Proof{
		Nonce:     nonce,
		IssuedAt:  issuedAt,
		Signature: ed25519.Sign(s.key, SignedMessage(payload, nonce, issuedAt)),
	}
}
