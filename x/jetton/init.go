package jetton

import (
	"github.com/iov-one/fiva"
	"github.com/iov-one/fiva/chain"
	"github.com/iov-one/fiva/errors"
)

const optKey = "minters"

// GenesisMinter describes a minter deployed at genesis.
type GenesisMinter struct {
	Admin   fiva.Address `json:"admin"`
	Content string       `json:"content"`
	Balance fiva.Coins   `json:"balance"`
}

// Initializer deploys the minters listed in the genesis file.
type Initializer struct {
	Deployer chain.Deployer
}

var _ fiva.Initializer = Initializer{}

// FromGenesis deploys every minter of opts["minters"].
func (i Initializer) FromGenesis(ctx fiva.Context, opts fiva.Options, db fiva.KVStore) error {
	var minters []GenesisMinter
	if err := opts.ReadOptions(optKey, &minters); err != nil {
		return err
	}
	for _, m := range minters {
		if err := m.Admin.Validate(); err != nil {
			return errors.Field("Admin", err, "minter %q", m.Content)
		}
		addr, err := i.Deployer.Deploy(ctx, db, MinterInit(m.Admin, m.Content), m.Balance)
		if err != nil {
			return errors.Wrapf(err, "minter %q", m.Content)
		}
		fiva.GetLogger(ctx).Info("genesis minter", "content", m.Content, "addr", addr)
	}
	return nil
}
