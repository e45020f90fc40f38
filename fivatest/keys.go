package fivatest

import (
	"crypto/rand"
	"testing"

	"golang.org/x/crypto/ed25519"
)

// NewKey returns a fresh ed25519 key pair.
func NewKey(t testing.TB) (ed25519.PublicKey, ed25519.PrivateKey) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("cannot generate key: %s", err)
	}
	return pub, priv
}
