/*
Package fivad wires the contracts of this module into an ABCI
application: the code registry, the genesis initializers and the
persistent store.
*/
package fivad

import (
	"context"
	"path/filepath"

	"github.com/iov-one/fiva"
	"github.com/iov-one/fiva/app"
	"github.com/iov-one/fiva/chain"
	"github.com/iov-one/fiva/store/iavl"
	"github.com/iov-one/fiva/x/jetton"
	"github.com/iov-one/fiva/x/master"
	"github.com/iov-one/fiva/x/user"
	"github.com/iov-one/fiva/x/wallet"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

// Registry returns every contract the node can run.
func Registry() *chain.Registry {
	reg := chain.NewRegistry()
	jetton.Register(reg)
	user.Register(reg)
	master.Register(reg)
	wallet.Register(reg)
	return reg
}

// Initializers returns the genesis initializers, in the order they run.
func Initializers(rt *chain.Runtime) fiva.Initializer {
	return fiva.ChainInitializers(
		chain.Initializer{},
		wallet.Initializer{Deployer: rt},
		jetton.Initializer{Deployer: rt},
		master.Initializer{Deployer: rt},
	)
}

// Application constructs the application with a store in dbPath. An empty
// path keeps the state in memory.
func Application(name string, dbPath string, debug bool) (app.BaseApp, error) {
	kv, err := CommitKVStore(dbPath)
	if err != nil {
		return app.BaseApp{}, err
	}
	rt := chain.NewRuntime(Registry())
	store := app.NewStoreApp(name, kv, app.RuntimeQueries{Runtime: rt}, context.Background())
	store.WithInit(Initializers(rt))
	return app.NewBaseApp(store, rt, debug), nil
}

// CommitKVStore returns an initialized KVStore that persists
// the data to the named path.
func CommitKVStore(dbPath string) (fiva.CommitKVStore, error) {
	dir, name := "", "fiva"
	if dbPath != "" {
		dir, name = filepath.Dir(dbPath), filepath.Base(dbPath)
	}
	kv, err := iavl.NewCommitStore(dir, name)
	if err != nil {
		return nil, err
	}
	return kv, nil
}

// GenerateApp is used to create a stub for server/start.go command
func GenerateApp(home string, logger log.Logger, debug bool) (abci.Application, error) {
	// db goes in a subdir, but "" -> "" for memdb
	var dbPath string
	if home != "" {
		dbPath = filepath.Join(home, "fiva.db")
	}
	application, err := Application("fivad", dbPath, debug)
	if err != nil {
		return nil, err
	}
	application.WithLogger(logger)
	return application, nil
}
