package fiva

import (
	"encoding/json"

	"github.com/iov-one/fiva/errors"
)

// Options are the app options
// Each extension can look up it's key and parse the json as desired
type Options map[string]json.RawMessage

// ReadOptions reads the values stored under a given key,
// and parses the json into the given obj.
// Returns an error if it cannot parse.
// Noop and no error if key is missing
func (o Options) ReadOptions(key string, obj interface{}) error {
	msg := o[key]
	if len(msg) == 0 {
		return nil
	}
	if err := json.Unmarshal([]byte(msg), obj); err != nil {
		return errors.Wrapf(errors.ErrInput, "cannot parse %q: %s", key, err)
	}
	return nil
}

// Initializer implementations actually handle the parsing of the
// genesis data of a given extension.
type Initializer interface {
	FromGenesis(ctx Context, opts Options, db KVStore) error
}

// ChainInitializers lets you initialize many extensions with one function
func ChainInitializers(inits ...Initializer) Initializer {
	return chainInitializer(inits)
}

type chainInitializer []Initializer

// FromGenesis passes the options to every initializer in order.
func (c chainInitializer) FromGenesis(ctx Context, opts Options, db KVStore) error {
	for _, init := range c {
		if err := init.FromGenesis(ctx, opts, db); err != nil {
			return err
		}
	}
	return nil
}

// Marshaller is anything that can be represented in binary
type Marshaller interface {
	Marshal() ([]byte, error)
}

// Persistent supports Marshal and Unmarshal
//
// This is separated from Marshal, as this almost always requires
// a pointer, and functions that only need to marshal bytes can
// use the Marshaller interface to access non-pointers.
type Persistent interface {
	Marshaller
	Unmarshal([]byte) error
}
