package app

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/fiva"
	"github.com/iov-one/fiva/errors"
	"github.com/iov-one/fiva/orm"
)

// CommitStore is the node state between two commits: the last committed
// version and the caches the current block writes to. Writes of DeliverTx
// become the next version on Commit, writes of CheckTx are dropped.
type CommitStore struct {
	db      fiva.CommitKVStore
	deliver fiva.KVCacheWrap
	check   fiva.KVCacheWrap
}

// NewCommitStore loads the latest version of db.
func NewCommitStore(db fiva.CommitKVStore) (*CommitStore, error) {
	if err := db.LoadLatestVersion(); err != nil {
		return nil, errors.Wrapf(errors.ErrDatabase, "load latest version: %s", err)
	}
	cs := &CommitStore{db: db}
	cs.reset()
	return cs, nil
}

func (cs *CommitStore) reset() {
	cs.deliver = cs.db.CacheWrap()
	cs.check = cs.db.CacheWrap()
}

// LastCommit returns the version and hash of the committed state.
func (cs *CommitStore) LastCommit() (fiva.CommitID, error) {
	return cs.db.LatestVersion()
}

// Commit persists the deliver cache as a new version.
func (cs *CommitStore) Commit() (fiva.CommitID, error) {
	if err := cs.deliver.Write(); err != nil {
		return fiva.CommitID{}, err
	}
	cs.check.Discard()
	id, err := cs.db.Commit()
	if err != nil {
		return id, err
	}
	cs.reset()
	return id, nil
}

// CheckStore is written by CheckTx.
func (cs *CommitStore) CheckStore() fiva.CacheableKVStore {
	return cs.check
}

// DeliverStore is written by InitChain and DeliverTx.
func (cs *CommitStore) DeliverStore() fiva.CacheableKVStore {
	return cs.deliver
}

// Snapshot returns a throwaway view of the committed state. Getters may
// write to it, nothing reaches the store.
func (cs *CommitStore) Snapshot() fiva.CacheableKVStore {
	return cs.db.CacheWrap()
}

// ChainMeta is written once by InitChain.
type ChainMeta struct {
	ChainID string `protobuf:"bytes,1,opt,name=chain_id,json=chainId,proto3" json:"chain_id"`
}

func (m *ChainMeta) Reset()         { *m = ChainMeta{} }
func (m *ChainMeta) String() string { return proto.CompactTextString(m) }
func (*ChainMeta) ProtoMessage()    {}

// Validate checks the chain id format.
func (m *ChainMeta) Validate() error {
	if !fiva.IsValidChainID(m.ChainID) {
		return errors.Wrapf(errors.ErrInput, "chain id %q", m.ChainID)
	}
	return nil
}

var chainMeta = orm.NewSingleton("chain_meta")

// loadChainID returns the chain id set at genesis, or an empty string
// before InitChain.
func loadChainID(db fiva.ReadOnlyKVStore) (string, error) {
	var meta ChainMeta
	switch err := chainMeta.Load(db, &meta); {
	case err == nil:
		return meta.ChainID, nil
	case errors.ErrNotFound.Is(err):
		return "", nil
	default:
		return "", err
	}
}

// saveChainID sets the chain id. It cannot change once set.
func saveChainID(db fiva.KVStore, chainID string) error {
	meta := ChainMeta{ChainID: chainID}
	if err := meta.Validate(); err != nil {
		return err
	}
	switch exists, err := chainMeta.Exists(db); {
	case err != nil:
		return errors.Wrap(err, "chain meta")
	case exists:
		return errors.Wrap(errors.ErrUnauthorized, "chain id is only set at genesis")
	}
	return chainMeta.Save(db, &meta)
}
