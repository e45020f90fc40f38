package fivatest

import (
	"crypto/rand"
	"encoding/hex"
	"testing"

	"github.com/iov-one/fiva"
)

// ParseAddress takes an address in a human readable format and returns its
// binary representation.
func ParseAddress(t testing.TB, encodedAddress string) fiva.Address {
	t.Helper()

	addr, err := fiva.ParseAddress(encodedAddress)
	if err != nil {
		t.Fatalf("cannot parse %q address: %s", encodedAddress, err)
	}
	return addr
}

// RandomAddr returns a valid random address generated on the fly.
func RandomAddr(t testing.TB) fiva.Address {
	raw := make([]byte, fiva.AddressLength)
	if _, err := rand.Read(raw); err != nil {
		t.Fatalf("cannot generate a random address: %s", err)
	}
	return fiva.Address(raw)
}

// DecodeAddr takes a hex encoded address string and returns its raw
// representation. This function ensures that returned value is a valid
// address.
func DecodeAddr(t testing.TB, encoded string) fiva.Address {
	t.Helper()
	raw, err := hex.DecodeString(encoded)
	if err != nil {
		t.Fatalf("cannot decode hex string: %s", err)
	}
	a := fiva.Address(raw)
	if err := a.Validate(); err != nil {
		t.Fatalf("decoded string is not a valid address: %s", err)
	}
	return a
}

// NamedAddr returns the address derived from a readable name, so that
// fixtures are stable between runs.
func NamedAddr(name string) fiva.Address {
	return fiva.NewCondition("test", "name", []byte(name)).Address()
}
