package store

// PrefixStore gives a component a private key space within a shared store.
// All keys are transparently prefixed on write and stripped on iteration.
type PrefixStore struct {
	prefix []byte
	kv     KVStore
}

var _ KVStore = PrefixStore{}

// NewPrefixStore returns a view of kv limited to the keys starting with
// prefix.
func NewPrefixStore(kv KVStore, prefix []byte) PrefixStore {
	return PrefixStore{
		prefix: append([]byte(nil), prefix...),
		kv:     kv,
	}
}

func (p PrefixStore) key(k []byte) []byte {
	out := make([]byte, 0, len(p.prefix)+len(k))
	out = append(out, p.prefix...)
	return append(out, k...)
}

// bounds translates an iteration range into the prefixed key space. An
// open end becomes the first key after the prefix.
func (p PrefixStore) bounds(start, end []byte) ([]byte, []byte) {
	s := p.key(start)
	var e []byte
	if end == nil {
		e = PrefixEnd(p.prefix)
	} else {
		e = p.key(end)
	}
	return s, e
}

// Get returns the value stored under the prefixed key.
func (p PrefixStore) Get(key []byte) ([]byte, error) {
	return p.kv.Get(p.key(key))
}

// Has checks the prefixed key.
func (p PrefixStore) Has(key []byte) (bool, error) {
	return p.kv.Has(p.key(key))
}

// Set writes under the prefixed key.
func (p PrefixStore) Set(key, value []byte) error {
	return p.kv.Set(p.key(key), value)
}

// Delete removes the prefixed key.
func (p PrefixStore) Delete(key []byte) error {
	return p.kv.Delete(p.key(key))
}

// Iterator iterates over the keys of this view in ascending order.
func (p PrefixStore) Iterator(start, end []byte) (Iterator, error) {
	s, e := p.bounds(start, end)
	it, err := p.kv.Iterator(s, e)
	if err != nil {
		return nil, err
	}
	return prefixIterator{Iterator: it, strip: len(p.prefix)}, nil
}

// ReverseIterator iterates over the keys of this view in descending order.
func (p PrefixStore) ReverseIterator(start, end []byte) (Iterator, error) {
	s, e := p.bounds(start, end)
	it, err := p.kv.ReverseIterator(s, e)
	if err != nil {
		return nil, err
	}
	return prefixIterator{Iterator: it, strip: len(p.prefix)}, nil
}

// NewBatch returns a batch writing into this view.
func (p PrefixStore) NewBatch() Batch {
	return prefixBatch{Batch: p.kv.NewBatch(), p: p}
}

type prefixIterator struct {
	Iterator
	strip int
}

func (i prefixIterator) Key() []byte {
	return i.Iterator.Key()[i.strip:]
}

type prefixBatch struct {
	Batch
	p PrefixStore
}

func (b prefixBatch) Set(key, value []byte) error {
	return b.Batch.Set(b.p.key(key), value)
}

func (b prefixBatch) Delete(key []byte) error {
	return b.Batch.Delete(b.p.key(key))
}

// PrefixEnd returns the smallest key greater than every key starting with
// prefix, or nil if there is none.
func PrefixEnd(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] != 0xFF {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}
