package wallet

import "github.com/iov-one/fiva/chain"

// Register adds the wallet contract to the registry.
func Register(reg *chain.Registry) {
	reg.Register(Code, Contract{})
}
