package orm

import (
	"reflect"
	"regexp"

	"github.com/iov-one/fiva"
	"github.com/iov-one/fiva/errors"
	"github.com/iov-one/fiva/store"
)

var isBucketName = regexp.MustCompile(`^[a-z_]{3,10}$`).MatchString

// ModelBucket stores models of a single type. Each entity is stored under
// the key "<name>:<key>".
type ModelBucket struct {
	name   string
	prefix []byte
	model  reflect.Type
}

// NewModelBucket returns a bucket storing models of the same type as
// example. Bucket name must be 3 to 10 lower case characters.
func NewModelBucket(name string, example Model) ModelBucket {
	if !isBucketName(name) {
		panic("invalid bucket name: " + name)
	}
	return ModelBucket{
		name:   name,
		prefix: []byte(name + ":"),
		model:  reflect.TypeOf(example),
	}
}

// Name returns the bucket name.
func (b ModelBucket) Name() string {
	return b.name
}

// DBKey is the full key used in the store for the given entity key.
func (b ModelBucket) DBKey(key []byte) []byte {
	return append(append([]byte(nil), b.prefix...), key...)
}

func (b ModelBucket) checkType(m Model) error {
	if reflect.TypeOf(m) != b.model {
		return errors.Wrapf(errors.ErrType, "%T cannot be stored in %q bucket of %s", m, b.name, b.model)
	}
	return nil
}

// One loads the entity stored under key into dest. It returns ErrNotFound
// if the entity does not exist.
func (b ModelBucket) One(db fiva.ReadOnlyKVStore, key []byte, dest Model) error {
	if err := b.checkType(dest); err != nil {
		return err
	}
	raw, err := db.Get(b.DBKey(key))
	if err != nil {
		return errors.Wrap(err, "cannot load from the database")
	}
	if raw == nil {
		return errors.Wrapf(errors.ErrNotFound, "%s %X", b.name, key)
	}
	return Unmarshal(raw, dest)
}

// Has returns true if an entity is stored under key.
func (b ModelBucket) Has(db fiva.ReadOnlyKVStore, key []byte) (bool, error) {
	return db.Has(b.DBKey(key))
}

// Put validates and saves the model.
func (b ModelBucket) Put(db fiva.KVStore, key []byte, m Model) error {
	if err := b.checkType(m); err != nil {
		return err
	}
	if err := m.Validate(); err != nil {
		return errors.Wrap(err, "invalid model")
	}
	raw, err := Marshal(m)
	if err != nil {
		return err
	}
	if err := db.Set(b.DBKey(key), raw); err != nil {
		return errors.Wrap(err, "cannot store in the database")
	}
	return nil
}

// Delete removes an entity. It returns ErrNotFound if nothing is stored
// under the key.
func (b ModelBucket) Delete(db fiva.KVStore, key []byte) error {
	k := b.DBKey(key)
	ok, err := db.Has(k)
	if err != nil {
		return err
	}
	if !ok {
		return errors.Wrapf(errors.ErrNotFound, "%s %X", b.name, key)
	}
	return db.Delete(k)
}

// Each loads every entity of the bucket into dest in ascending key order
// and calls fn. Returning an error from fn stops the iteration. fn must not
// modify the bucket.
func (b ModelBucket) Each(db fiva.ReadOnlyKVStore, dest Model, fn func(key []byte) error) error {
	if err := b.checkType(dest); err != nil {
		return err
	}
	it, err := db.Iterator(b.prefix, store.PrefixEnd(b.prefix))
	if err != nil {
		return errors.Wrap(err, "iterator")
	}
	defer it.Close()

	for it.Valid() {
		if err := Unmarshal(it.Value(), dest); err != nil {
			return err
		}
		key := append([]byte(nil), it.Key()[len(b.prefix):]...)
		if err := fn(key); err != nil {
			return err
		}
		if err := it.Next(); err != nil {
			return err
		}
	}
	return nil
}

// Keys returns the keys of all stored entities in ascending order.
func (b ModelBucket) Keys(db fiva.ReadOnlyKVStore) ([][]byte, error) {
	it, err := db.Iterator(b.prefix, store.PrefixEnd(b.prefix))
	if err != nil {
		return nil, errors.Wrap(err, "iterator")
	}
	defer it.Close()

	var keys [][]byte
	for it.Valid() {
		keys = append(keys, append([]byte(nil), it.Key()[len(b.prefix):]...))
		if err := it.Next(); err != nil {
			return nil, err
		}
	}
	return keys, nil
}

// Singleton stores exactly one model of a type under a fixed key, such as
// the state of a contract.
type Singleton struct {
	key []byte
}

// NewSingleton returns a singleton stored under "_o:<name>".
func NewSingleton(name string) Singleton {
	return Singleton{key: []byte("_o:" + name)}
}

// Load reads the model. ErrNotFound is returned if it was never saved.
func (s Singleton) Load(db fiva.ReadOnlyKVStore, dest Model) error {
	raw, err := db.Get(s.key)
	if err != nil {
		return errors.Wrap(err, "cannot load from the database")
	}
	if raw == nil {
		return errors.Wrapf(errors.ErrNotFound, "key %q", s.key)
	}
	return Unmarshal(raw, dest)
}

// Exists returns true if the model was saved.
func (s Singleton) Exists(db fiva.ReadOnlyKVStore) (bool, error) {
	return db.Has(s.key)
}

// Save validates and writes the model.
func (s Singleton) Save(db fiva.KVStore, m Model) error {
	if err := m.Validate(); err != nil {
		return errors.Wrap(err, "invalid model")
	}
	raw, err := Marshal(m)
	if err != nil {
		return err
	}
	return db.Set(s.key, raw)
}
