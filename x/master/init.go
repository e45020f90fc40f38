package master

import (
	"github.com/iov-one/fiva"
	"github.com/iov-one/fiva/chain"
	"github.com/iov-one/fiva/errors"
)

const optKey = "markets"

// GenesisMarket is a market deployed at genesis together with the
// operating balance paying its outgoing messages.
type GenesisMarket struct {
	Config
	Balance fiva.Coins `json:"balance"`
}

// Initializer deploys the markets listed in the genesis file. Minters are
// set later with admin commands, since their address depends on the
// address of the market.
type Initializer struct {
	Deployer chain.Deployer
}

var _ fiva.Initializer = Initializer{}

// FromGenesis deploys every market of opts["markets"].
func (i Initializer) FromGenesis(ctx fiva.Context, opts fiva.Options, db fiva.KVStore) error {
	var markets []GenesisMarket
	if err := opts.ReadOptions(optKey, &markets); err != nil {
		return err
	}
	for n, m := range markets {
		init, err := m.StateInit()
		if err != nil {
			return errors.Wrapf(err, "market %d", n)
		}
		addr, err := i.Deployer.Deploy(ctx, db, init, m.Balance)
		if err != nil {
			return errors.Wrapf(err, "market %d", n)
		}
		fiva.GetLogger(ctx).Info("genesis market", "addr", addr, "maturity", m.Maturity)
	}
	return nil
}
