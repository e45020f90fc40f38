package wallet

import (
	"encoding/hex"

	"github.com/iov-one/fiva"
	"github.com/iov-one/fiva/chain"
	"github.com/iov-one/fiva/errors"
	"golang.org/x/crypto/ed25519"
)

const optKey = "wallets"

// GenesisWallet describes a funded wallet deployed at genesis.
type GenesisWallet struct {
	// PubKey is hex encoded.
	PubKey    string     `json:"pub_key"`
	Subwallet uint32     `json:"subwallet"`
	Balance   fiva.Coins `json:"balance"`
}

// Initializer deploys the wallets listed in the genesis file.
type Initializer struct {
	Deployer chain.Deployer
}

var _ fiva.Initializer = Initializer{}

// FromGenesis deploys every wallet of opts["wallets"].
func (i Initializer) FromGenesis(ctx fiva.Context, opts fiva.Options, db fiva.KVStore) error {
	var wallets []GenesisWallet
	if err := opts.ReadOptions(optKey, &wallets); err != nil {
		return err
	}
	for _, w := range wallets {
		pub, err := hex.DecodeString(w.PubKey)
		if err != nil || len(pub) != ed25519.PublicKeySize {
			return errors.Field("PubKey", errors.ErrInput, "wallet key %q", w.PubKey)
		}
		addr, err := i.Deployer.Deploy(ctx, db, Init(pub, w.Subwallet), w.Balance)
		if err != nil {
			return err
		}
		fiva.GetLogger(ctx).Info("genesis wallet", "addr", addr, "balance", w.Balance)
	}
	return nil
}
