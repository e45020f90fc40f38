package app

import (
	"github.com/iov-one/fiva"
	"github.com/iov-one/fiva/chain"
	"github.com/iov-one/fiva/errors"
	"github.com/iov-one/fiva/protocol"
	abci "github.com/tendermint/tendermint/abci/types"
)

// BaseApp adds DeliverTx and CheckTx to the storage and query
// functionality of StoreApp. Every transaction is an external message that
// the runtime delivers to its contract.
type BaseApp struct {
	*StoreApp
	runtime *chain.Runtime
	debug   bool
}

var _ abci.Application = BaseApp{}

// NewBaseApp constructs a basic abci application
func NewBaseApp(store *StoreApp, runtime *chain.Runtime, debug bool) BaseApp {
	return BaseApp{
		StoreApp: store,
		runtime:  runtime,
		debug:    debug,
	}
}

// DeliverTx - ABCI - executes the external message and every message it
// causes. A transaction that is refused leaves no trace in the state.
func (b BaseApp) DeliverTx(txBytes []byte) abci.ResponseDeliverTx {
	ext, traces, err := b.execute(b.BlockContext(), "deliver_tx", b.DeliverStore(), txBytes)
	if err != nil {
		code, log := errors.ABCIInfo(err, b.debug)
		return abci.ResponseDeliverTx{Code: code, Log: log}
	}
	res := NewTxResult(ext, traces, b.debug)
	return abci.ResponseDeliverTx{
		Data: res.Data,
		Log:  res.Log,
		Tags: res.Tags,
	}
}

// CheckTx - ABCI - runs the transaction against the check state, so that
// wallet sequence numbers advance between blocks.
func (b BaseApp) CheckTx(txBytes []byte) abci.ResponseCheckTx {
	ext, traces, err := b.execute(b.BlockContext(), "check_tx", b.CheckStore(), txBytes)
	if err != nil {
		code, log := errors.ABCIInfo(err, b.debug)
		return abci.ResponseCheckTx{Code: code, Log: log}
	}
	res := NewTxResult(ext, traces, b.debug)
	return abci.ResponseCheckTx{Data: res.Data, Log: res.Log}
}

func (b BaseApp) execute(ctx fiva.Context, call string, db fiva.CacheableKVStore, txBytes []byte) (ext protocol.External, traces []chain.Trace, err error) {
	defer errors.Recover(&err)

	ext, err = protocol.DecodeExternal(txBytes)
	if err != nil {
		return ext, nil, err
	}
	ctx = fiva.WithLogInfo(ctx, "call", call, "to", ext.To)

	cache := db.CacheWrap()
	traces, err = b.runtime.External(ctx, cache, ext)
	if err != nil {
		cache.Discard()
		return ext, traces, err
	}
	return ext, traces, cache.Write()
}
