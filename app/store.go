package app

import (
	"encoding/json"
	"fmt"

	"github.com/iov-one/fiva"
	"github.com/iov-one/fiva/errors"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

// StoreApp contains a data store and all info needed
// to perform queries and handshakes.
//
// It should be embedded in another struct for CheckTx,
// DeliverTx and initializing state from the genesis.
// Errors on ABCI steps that take no user input are handled as panics,
// there is no way to recover from them gracefully.
type StoreApp struct {
	logger log.Logger

	// name is what is returned from abci.Info
	name string

	// Database state (committed, check, deliver....)
	store *CommitStore

	// Code to initialize from a genesis file
	initializer fiva.Initializer

	// How to handle queries
	queries QueryHandler

	// chainID is loaded from db in initialization
	// saved once in parseGenesis
	chainID string

	// baseContext contains context info that is valid for
	// lifetime of this app (eg. chainID)
	baseContext fiva.Context

	// blockContext contains context info that is valid for the
	// current block (eg. height, time), reset on BeginBlock
	blockContext fiva.Context
}

// QueryHandler answers a query path against a read view of the state.
type QueryHandler interface {
	Query(ctx fiva.Context, db fiva.CacheableKVStore, path string, data []byte) ([]byte, error)
}

// NewStoreApp initializes this app into a ready state with some defaults
//
// panics if unable to properly load the state from the given store
func NewStoreApp(name string, store fiva.CommitKVStore, queries QueryHandler, baseContext fiva.Context) *StoreApp {
	cs, err := NewCommitStore(store)
	if err != nil {
		panic(err)
	}
	s := &StoreApp{
		name:        name,
		store:       cs,
		queries:     queries,
		baseContext: baseContext,
	}
	s = s.WithLogger(log.NewNopLogger())

	if s.chainID, err = loadChainID(s.DeliverStore()); err != nil {
		panic(err)
	}
	if s.chainID != "" {
		s.baseContext = fiva.WithChainID(s.baseContext, s.chainID)
	}

	info, err := s.store.LastCommit()
	if err != nil {
		panic(err)
	}
	s.blockContext = fiva.WithHeight(s.baseContext, info.Version)
	return s
}

// GetChainID returns the current chainID
func (s *StoreApp) GetChainID() string {
	return s.chainID
}

// WithInit is used to set the init function we call
func (s *StoreApp) WithInit(init fiva.Initializer) *StoreApp {
	s.initializer = init
	return s
}

// parseAppState is called from InitChain, the first time the chain
// starts, and not on restarts.
func (s *StoreApp) parseAppState(ctx fiva.Context, data []byte, chainID string) error {
	if s.chainID != "" {
		return errors.Wrapf(errors.ErrState, "appState previously loaded for chain: %s", s.chainID)
	}
	if len(data) == 0 {
		return errors.Wrap(errors.ErrEmpty, "app_state not set in genesis.json, please initialize application before launching the blockchain")
	}

	var appState fiva.Options
	if err := json.Unmarshal(data, &appState); err != nil {
		return errors.Wrapf(errors.ErrInput, "app_state: %s", err)
	}
	if err := s.storeChainID(chainID); err != nil {
		return err
	}
	if s.initializer == nil {
		return nil
	}
	ctx = fiva.WithChainID(ctx, chainID)
	return s.initializer.FromGenesis(ctx, appState, s.DeliverStore())
}

// store chainID and update context
func (s *StoreApp) storeChainID(chainID string) error {
	s.chainID = chainID
	if err := saveChainID(s.DeliverStore(), s.chainID); err != nil {
		return err
	}
	s.baseContext = fiva.WithChainID(s.baseContext, s.chainID)
	return nil
}

// WithLogger sets the logger on the StoreApp and returns it,
// to make it easy to chain in initialization
//
// also sets baseContext logger
func (s *StoreApp) WithLogger(logger log.Logger) *StoreApp {
	s.baseContext = fiva.WithLogger(s.baseContext, logger)
	if s.blockContext != nil {
		s.blockContext = fiva.WithLogger(s.blockContext, logger)
	}
	s.logger = logger
	return s
}

// Logger returns the application base logger
func (s *StoreApp) Logger() log.Logger {
	return s.logger
}

// BlockContext returns the block context for public use
func (s *StoreApp) BlockContext() fiva.Context {
	return s.blockContext
}

// DeliverStore returns the current DeliverTx cache for methods
func (s *StoreApp) DeliverStore() fiva.CacheableKVStore {
	return s.store.DeliverStore()
}

// CheckStore returns the current CheckTx cache for methods
func (s *StoreApp) CheckStore() fiva.CacheableKVStore {
	return s.store.CheckStore()
}

//----------------------- ABCI ---------------------

// Info implements abci.Application. It returns the height and hash,
// as well as the abci name and version.
//
// The height is the block that holds the transactions, not the apphash itself.
func (s *StoreApp) Info(req abci.RequestInfo) abci.ResponseInfo {
	info, err := s.store.LastCommit()
	if err != nil {
		panic(err)
	}
	s.logger.Info("Info synced",
		"height", info.Version,
		"hash", fmt.Sprintf("%X", info.Hash))

	return abci.ResponseInfo{
		Data:             s.name,
		Version:          fiva.Version,
		LastBlockHeight:  info.Version,
		LastBlockAppHash: info.Hash,
	}
}

// SetOption - ABCI
func (s *StoreApp) SetOption(res abci.RequestSetOption) abci.ResponseSetOption {
	return abci.ResponseSetOption{Log: "Not Implemented"}
}

/*
Query reads the last committed state.

Path selects the query:

	/get/<address>/<method>   runs a getter, Data holds its arguments
	/account/<address>        returns the runtime account record

Historical queries are not supported, Height is always the last commit.
*/
func (s *StoreApp) Query(req abci.RequestQuery) abci.ResponseQuery {
	info, err := s.store.LastCommit()
	if err != nil {
		return queryError(err)
	}
	if s.queries == nil {
		return queryError(errors.Wrapf(errors.ErrNotFound, "path %q", req.Path))
	}
	ctx := fiva.WithLogInfo(s.blockContext, "call", "query", "path", req.Path)
	value, err := s.queries.Query(ctx, s.store.Snapshot(), req.Path, req.Data)
	if err != nil {
		return queryError(err)
	}
	return abci.ResponseQuery{
		Height: info.Version,
		Value:  value,
	}
}

func queryError(err error) abci.ResponseQuery {
	code, log := errors.ABCIInfo(err, false)
	return abci.ResponseQuery{Code: code, Log: log}
}

// Commit implements abci.Application
func (s *StoreApp) Commit() abci.ResponseCommit {
	commitID, err := s.store.Commit()
	if err != nil {
		panic(err)
	}

	s.logger.Debug("Commit synced",
		"height", commitID.Version,
		"hash", fmt.Sprintf("%X", commitID.Hash),
	)
	return abci.ResponseCommit{Data: commitID.Hash}
}

// InitChain implements ABCI. The genesis app_state is loaded here.
func (s *StoreApp) InitChain(req abci.RequestInitChain) abci.ResponseInitChain {
	ctx := fiva.WithBlockTime(s.baseContext, req.Time)
	ctx = fiva.WithLogInfo(ctx, "call", "init_chain")
	if err := s.parseAppState(ctx, req.AppStateBytes, req.ChainId); err != nil {
		// Read comment on type header
		panic(err)
	}
	s.blockContext = fiva.WithBlockTime(fiva.WithHeight(s.baseContext, 0), req.Time)
	return abci.ResponseInitChain{}
}

// BeginBlock implements ABCI
// Sets up blockContext with the height and the consensus time of the block.
func (s *StoreApp) BeginBlock(req abci.RequestBeginBlock) abci.ResponseBeginBlock {
	ctx := fiva.WithHeight(s.baseContext, req.Header.GetHeight())
	s.blockContext = fiva.WithBlockTime(ctx, req.Header.GetTime())
	return abci.ResponseBeginBlock{}
}

// EndBlock - ABCI. The validator set never changes.
func (s *StoreApp) EndBlock(_ abci.RequestEndBlock) abci.ResponseEndBlock {
	return abci.ResponseEndBlock{}
}
