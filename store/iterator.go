package store

import (
	"bytes"

	"github.com/iov-one/fiva/errors"
)

// mergeIterator combines the cached items of a btree layer with the
// iterator of its parent store. Cached items shadow parent entries with the
// same key and tombstones hide them.
type mergeIterator struct {
	items     []cacheItem
	idx       int
	parent    Iterator
	ascending bool
}

var _ Iterator = (*mergeIterator)(nil)

func newMergeIterator(items []cacheItem, parent Iterator, ascending bool) (*mergeIterator, error) {
	it := &mergeIterator{
		items:     items,
		parent:    parent,
		ascending: ascending,
	}
	if err := it.skipDeleted(); err != nil {
		it.Close()
		return nil, err
	}
	return it, nil
}

// source marks where the current item comes from
type source int32

const (
	none source = iota
	us
	parent
	both
)

// current decides which side holds the next key in iteration order.
func (i *mergeIterator) current() source {
	ours := i.idx < len(i.items)
	theirs := i.parent != nil && i.parent.Valid()
	switch {
	case !ours && !theirs:
		return none
	case !theirs:
		return us
	case !ours:
		return parent
	}
	cmp := bytes.Compare(i.items[i.idx].key, i.parent.Key())
	if !i.ascending {
		cmp = -cmp
	}
	switch {
	case cmp < 0:
		return us
	case cmp > 0:
		return parent
	default:
		return both
	}
}

// skipDeleted moves past all tombstones at the head of the iteration,
// together with the parent entries they hide.
func (i *mergeIterator) skipDeleted() error {
	for {
		src := i.current()
		if src != us && src != both {
			return nil
		}
		if !i.items[i.idx].deleted {
			return nil
		}
		i.idx++
		if src == both {
			if err := i.parent.Next(); err != nil {
				return err
			}
		}
	}
}

// Valid implements Iterator and returns true iff it can be read
func (i *mergeIterator) Valid() bool {
	return i.current() != none
}

// Next moves the iterator to the next sequential key in the database, as
// defined by order of iteration.
func (i *mergeIterator) Next() error {
	switch i.current() {
	case us:
		i.idx++
	case both:
		i.idx++
		if err := i.parent.Next(); err != nil {
			return err
		}
	case parent:
		if err := i.parent.Next(); err != nil {
			return err
		}
	default:
		return errors.Wrap(errors.ErrDatabase, "advanced past the end")
	}
	return i.skipDeleted()
}

// Key returns the key of the cursor.
func (i *mergeIterator) Key() []byte {
	switch i.current() {
	case us, both:
		return i.items[i.idx].key
	case parent:
		return i.parent.Key()
	default:
		panic("advanced past the end")
	}
}

// Value returns the value of the cursor.
func (i *mergeIterator) Value() []byte {
	switch i.current() {
	case us, both:
		return i.items[i.idx].value
	case parent:
		return i.parent.Value()
	default:
		panic("advanced past the end")
	}
}

// Close releases the Iterator.
func (i *mergeIterator) Close() {
	if i.parent != nil {
		i.parent.Close()
	}
	i.items = nil
}
