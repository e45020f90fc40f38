package store

import "github.com/iov-one/fiva"

// Move references for all storage types into this package
// for shorter names everywhere

type (
	ReadOnlyKVStore  = fiva.ReadOnlyKVStore
	SetDeleter       = fiva.SetDeleter
	KVStore          = fiva.KVStore
	Batch            = fiva.Batch
	Iterator         = fiva.Iterator
	CacheableKVStore = fiva.CacheableKVStore
	KVCacheWrap      = fiva.KVCacheWrap
	CommitKVStore    = fiva.CommitKVStore
	CommitID         = fiva.CommitID
)

// Model groups together key and value to return
type Model struct {
	Key   []byte
	Value []byte
}

// Pair constructs a model from a key-value pair
func Pair(key, value []byte) Model {
	return Model{
		Key:   key,
		Value: value,
	}
}
