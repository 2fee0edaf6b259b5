package auth

import (
	"context"
	"encoding/hex"
	"fmt"
	"strconv"
)

// Proof is what a provider attaches to a write to show it controls its key.
// IssuedAt is in Unix seconds and bounds how long the proof can be presented.
type Proof struct {
	Nonce     string
	IssuedAt  uint64
	Signature []byte
}

type proofKey struct{}

func WithProof(ctx context.Context, p Proof) context.Context {
	return context.WithValue(ctx, proofKey{}, p)
}

func ProofFromContext(ctx context.Context) (Proof, bool) {
	p, ok := ctx.Value(proofKey{}).(Proof)
	return p, ok
}

// ParseProof builds a Proof from its wire form (signature as hex).
func ParseProof(nonce string, issuedAt uint64, signatureHex string) (Proof, error) {
	sig, err := hex.DecodeString(signatureHex)
	if err != nil {
		return Proof{}, fmt.Errorf("decode signature: %w", err)
	}
	return Proof{Nonce: nonce, IssuedAt: issuedAt, Signature: sig}, nil
}

// SignedMessage is the exact byte string covered by a provider signature:
// payload, nonce and issue time separated by newlines.
func SignedMessage(payload []byte, nonce string, issuedAt uint64) []byte {
	ts := strconv.FormatUint(issuedAt, 10)
	msg := make([]byte, 0, len(payload)+len(nonce)+len(ts)+2)
	msg = append(msg, payload...)
	msg = append(msg, '\n')
	msg = append(msg, nonce...)
	msg = append(msg, '\n')
	msg = append(msg, ts...)
	return msg
}
