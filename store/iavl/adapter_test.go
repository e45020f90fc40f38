package iavl

import (
	"io/ioutil"
	"os"
	"testing"

	"github.com/iov-one/fiva/fivatest/assert"
	"github.com/iov-one/fiva/store"
)

func makeBase() (store.CacheableKVStore, func()) {
	commit, err := NewCommitStore("", "base")
	if err != nil {
		panic(err)
	}
	return commit.Adapter(), func() {}
}

func TestAdapterSuite(t *testing.T) {
	suite := store.NewTestSuite(makeBase)
	t.Run("get set", suite.GetSet)
	t.Run("cache conflicts", suite.CacheConflicts)
	t.Run("iterators", suite.Iterators)
}

func TestCommitAndReload(t *testing.T) {
	dir, err := ioutil.TempDir("", "iavl-commit-")
	assert.Nil(t, err)
	defer os.RemoveAll(dir)

	cs, err := NewCommitStore(dir, "state")
	assert.Nil(t, err)
	assert.Nil(t, cs.LoadLatestVersion())

	cache := cs.CacheWrap()
	assert.Nil(t, cache.Set([]byte("market"), []byte("index=1000")))
	assert.Nil(t, cache.Write())

	// not committed yet
	got, err := cs.Get([]byte("market"))
	assert.Nil(t, err)
	assert.Nil(t, got)

	id, err := cs.Commit()
	assert.Nil(t, err)
	assert.Equal(t, int64(1), id.Version)
	if len(id.Hash) == 0 {
		t.Fatal("empty commit hash")
	}

	cache = cs.CacheWrap()
	assert.Nil(t, cache.Set([]byte("market"), []byte("index=1100")))
	assert.Nil(t, cache.Write())
	second, err := cs.Commit()
	assert.Nil(t, err)
	assert.Equal(t, int64(2), second.Version)
	cs.Close()

	reopened, err := NewCommitStore(dir, "state")
	assert.Nil(t, err)
	defer reopened.Close()
	assert.Nil(t, reopened.LoadLatestVersion())

	latest, err := reopened.LatestVersion()
	assert.Nil(t, err)
	assert.Equal(t, second, latest)

	got, err = reopened.Get([]byte("market"))
	assert.Nil(t, err)
	assert.Equal(t, []byte("index=1100"), got)
}
