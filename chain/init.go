package chain

import (
	"github.com/iov-one/fiva"
	"github.com/iov-one/fiva/errors"
	"github.com/iov-one/fiva/gconf"
)

const optKey = "accounts"

// Deployer creates contracts from the genesis file. Runtime implements it.
type Deployer interface {
	Deploy(ctx fiva.Context, db fiva.KVStore, init fiva.StateInit, balance fiva.Coins) (fiva.Address, error)
}

var _ Deployer = (*Runtime)(nil)

// GenesisAccount is a plain account funded at genesis.
type GenesisAccount struct {
	Address fiva.Address `json:"address"`
	Balance fiva.Coins   `json:"balance"`
}

// Initializer loads the runtime configuration and funds plain accounts.
// The configuration is optional, DefaultConfiguration is used without it.
type Initializer struct{}

var _ fiva.Initializer = Initializer{}

// FromGenesis reads conf.chain and accounts.
func (Initializer) FromGenesis(ctx fiva.Context, opts fiva.Options, db fiva.KVStore) error {
	conf := gconf.Initializer{
		Package: ConfigurationKey,
		New:     func() gconf.Configuration { return &Configuration{} },
	}
	err := conf.FromGenesis(ctx, opts, db)
	if err != nil && !errors.ErrNotFound.Is(err) {
		return err
	}

	var accts []GenesisAccount
	if err := opts.ReadOptions(optKey, &accts); err != nil {
		return err
	}
	for _, a := range accts {
		if err := a.Address.Validate(); err != nil {
			return errors.Field("Address", err, "genesis account")
		}
		acc, err := loadAccount(db, a.Address)
		if err != nil {
			return err
		}
		if acc.Balance, err = acc.Balance.Add(a.Balance); err != nil {
			return err
		}
		if err := accounts.Put(db, a.Address, acc); err != nil {
			return err
		}
	}
	return nil
}
