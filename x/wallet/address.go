package wallet

import (
	"github.com/iov-one/fiva"
	"github.com/iov-one/fiva/cell"
	"golang.org/x/crypto/ed25519"
)

// Init returns the StateInit of the wallet controlled by pub. Distinct
// subwallet ids give distinct wallets for the same key.
func Init(pub ed25519.PublicKey, subwallet uint32) fiva.StateInit {
	data := cell.NewBuilder().Fixed(pub).Uint32(subwallet).Bytes()
	return fiva.StateInit{Code: Code, Data: data}
}

// Address returns the address of the wallet controlled by pub.
func Address(pub ed25519.PublicKey, subwallet uint32) fiva.Address {
	return Init(pub, subwallet).Address()
}
