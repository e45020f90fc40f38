package jetton

import "github.com/iov-one/fiva/chain"

// Register adds the minter and wallet contracts to the registry.
func Register(reg *chain.Registry) {
	reg.Register(MinterCode, Minter{})
	reg.Register(WalletCode, Wallet{})
}
