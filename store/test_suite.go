package store

import (
	"bytes"
	"fmt"
	"sort"
	"testing"

	"github.com/iov-one/fiva/fivatest/assert"
)

// TestSuite runs the same storage checks against any CacheableKVStore
// implementation. The in-memory btree store and the iavl backed store both
// use it, so that caching and iteration behave identically on both.
type TestSuite struct {
	makeBase TestStoreConstructor
}

// TestStoreConstructor creates a fresh, empty store and a cleanup function.
type TestStoreConstructor func() (base CacheableKVStore, cleanup func())

// NewTestSuite returns a suite using constructor to create every store.
func NewTestSuite(constructor TestStoreConstructor) *TestSuite {
	return &TestSuite{makeBase: constructor}
}

// GetSet checks that writes in a cache are isolated until Write and
// dropped on Discard.
func (s *TestSuite) GetSet(t *testing.T) {
	base, cleanup := s.makeBase()
	defer cleanup()

	k, v := []byte("french"), []byte("fry")
	s.AssertGetHas(t, base, k, nil, false)
	assert.Nil(t, base.Set(k, v))
	s.AssertGetHas(t, base, k, v, true)

	cache := base.CacheWrap()
	s.AssertGetHas(t, cache, k, v, true)

	k2, v2 := []byte("LA"), []byte("Dodgers")
	assert.Nil(t, cache.Set(k2, v2))
	s.AssertGetHas(t, cache, k2, v2, true)
	s.AssertGetHas(t, base, k2, nil, false)

	assert.Nil(t, cache.Write())
	s.AssertGetHas(t, base, k, v, true)
	s.AssertGetHas(t, base, k2, v2, true)

	k3, v3 := []byte("Bayern"), []byte("Munich")
	c2 := base.CacheWrap()
	assert.Nil(t, c2.Set(k3, v3))
	c2.Discard()
	s.AssertGetHas(t, base, k3, nil, false)

	c3 := base.CacheWrap()
	assert.Nil(t, c3.Delete(k))
	assert.Nil(t, c3.Write())
	s.AssertGetHas(t, base, k, nil, false)
	s.AssertGetHas(t, base, k2, v2, true)
}

// CacheConflicts checks that a cache can overwrite and delete values of its
// parent without affecting it until written.
func (s *TestSuite) CacheConflicts(t *testing.T) {
	ks := seqModels("key", 4)
	cases := map[string]struct {
		parentOps     []Op
		childOps      []Op
		parentQueries []Model // Key is what we query, Value is what we expect
		childQueries  []Model
	}{
		"overwrite one, delete another, add a third": {
			parentOps:     []Op{SetOp(ks[1].Key, []byte("one")), SetOp(ks[2].Key, []byte("two"))},
			childOps:      []Op{SetOp(ks[1].Key, []byte("uno")), SetOp(ks[3].Key, []byte("tres")), DelOp(ks[2].Key)},
			parentQueries: []Model{Pair(ks[1].Key, []byte("one")), Pair(ks[2].Key, []byte("two")), Pair(ks[3].Key, nil)},
			childQueries:  []Model{Pair(ks[1].Key, []byte("uno")), Pair(ks[2].Key, nil), Pair(ks[3].Key, []byte("tres"))},
		},
		"delete then set again": {
			parentOps:     []Op{SetOp(ks[0].Key, []byte("zero"))},
			childOps:      []Op{DelOp(ks[0].Key), SetOp(ks[0].Key, []byte("cero"))},
			parentQueries: []Model{Pair(ks[0].Key, []byte("zero"))},
			childQueries:  []Model{Pair(ks[0].Key, []byte("cero"))},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			parent, cleanup := s.makeBase()
			defer cleanup()

			for _, op := range tc.parentOps {
				assert.Nil(t, op.Apply(parent))
			}
			child := parent.CacheWrap()
			for _, op := range tc.childOps {
				assert.Nil(t, op.Apply(child))
			}
			for _, q := range tc.parentQueries {
				s.AssertGetHas(t, parent, q.Key, q.Value, q.Value != nil)
			}
			for _, q := range tc.childQueries {
				s.AssertGetHas(t, child, q.Key, q.Value, q.Value != nil)
			}
			assert.Nil(t, child.Write())
			for _, q := range tc.childQueries {
				s.AssertGetHas(t, parent, q.Key, q.Value, q.Value != nil)
			}
		})
	}
}

// Iterators checks ranges in both directions over data split between a
// parent and a cache, including overwrites and deletes.
func (s *TestSuite) Iterators(t *testing.T) {
	ms := seqModels("item", 10)

	// parent holds even items and item 3, child overwrites 4, deletes 3 and
	// 6 and adds the remaining odd items.
	var parentOps, childOps []Op
	for i := 0; i < len(ms); i += 2 {
		parentOps = append(parentOps, SetOp(ms[i].Key, ms[i].Value))
	}
	parentOps = append(parentOps, SetOp(ms[3].Key, ms[3].Value))
	childOps = append(childOps, SetOp(ms[4].Key, []byte("changed")), DelOp(ms[3].Key), DelOp(ms[6].Key))
	for _, i := range []int{1, 5, 7, 9} {
		childOps = append(childOps, SetOp(ms[i].Key, ms[i].Value))
	}

	changed := Pair(ms[4].Key, []byte("changed"))
	all := []Model{ms[0], ms[1], ms[2], changed, ms[5], ms[7], ms[8], ms[9]}

	cases := map[string]struct {
		start, end []byte
		reverse    bool
		want       []Model
	}{
		"all":               {want: all},
		"from start":        {start: ms[2].Key, want: all[2:]},
		"until end":         {end: ms[5].Key, want: all[:4]},
		"range":             {start: ms[1].Key, end: ms[8].Key, want: all[1:6]},
		"deleted bound":     {start: ms[3].Key, end: ms[6].Key, want: all[3:5]},
		"reverse all":       {reverse: true, want: reversed(all)},
		"reverse range":     {start: ms[1].Key, end: ms[8].Key, reverse: true, want: reversed(all[1:6])},
		"reverse until end": {end: ms[3].Key, reverse: true, want: reversed(all[:3])},
		"empty range":       {start: ms[6].Key, end: ms[7].Key, want: nil},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			base, cleanup := s.makeBase()
			defer cleanup()
			for _, op := range parentOps {
				assert.Nil(t, op.Apply(base))
			}
			child := base.CacheWrap()
			for _, op := range childOps {
				assert.Nil(t, op.Apply(child))
			}

			var (
				it  Iterator
				err error
			)
			if tc.reverse {
				it, err = child.ReverseIterator(tc.start, tc.end)
			} else {
				it, err = child.Iterator(tc.start, tc.end)
			}
			assert.Nil(t, err)
			assert.Equal(t, tc.want, consume(t, it))

			// once written, the parent must iterate the same way
			assert.Nil(t, child.Write())
			if tc.reverse {
				it, err = base.ReverseIterator(tc.start, tc.end)
			} else {
				it, err = base.Iterator(tc.start, tc.end)
			}
			assert.Nil(t, err)
			assert.Equal(t, tc.want, consume(t, it))
		})
	}
}

// AssertGetHas checks both Get and Has for a single key.
func (s *TestSuite) AssertGetHas(t testing.TB, kv ReadOnlyKVStore, key, val []byte, has bool) {
	t.Helper()
	got, err := kv.Get(key)
	assert.Nil(t, err)
	if !bytes.Equal(val, got) {
		t.Fatalf("want %q under %q, got %q", val, key, got)
	}
	exists, err := kv.Has(key)
	assert.Nil(t, err)
	assert.Equal(t, has, exists)
}

func consume(t testing.TB, it Iterator) []Model {
	t.Helper()
	defer it.Close()
	var res []Model
	for it.Valid() {
		res = append(res, Pair(it.Key(), it.Value()))
		assert.Nil(t, it.Next())
	}
	return res
}

// seqModels returns count models with sortable keys.
func seqModels(prefix string, count int) []Model {
	res := make([]Model, count)
	for i := range res {
		res[i] = Pair([]byte(fmt.Sprintf("%s/%03d", prefix, i)), []byte(fmt.Sprintf("value %d", i)))
	}
	sort.Slice(res, func(i, j int) bool { return bytes.Compare(res[i].Key, res[j].Key) < 0 })
	return res
}

func reversed(models []Model) []Model {
	res := make([]Model, len(models))
	for i, m := range models {
		res[len(models)-1-i] = m
	}
	return res
}
