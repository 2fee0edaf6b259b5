// Command keygen prints a new publisher seed and the provider address it signs as.
package main

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"

	"price-registry/internal/infrastructure/auth"
	"price-registry/internal/infrastructure/logx"

	"go.uber.org/zap"
)

func main() {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		logx.L().Fatal("generate key", zap.Error(err))
	}
	s := auth.NewSigner(priv)
	fmt.Printf("PUBLISHER_SEED=%s\n", s.SeedHex())
	fmt.Printf("PROVIDER_ADDRESS=%s\n", s.Address())
}
