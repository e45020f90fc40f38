package gconf

import (
	"github.com/iov-one/fiva"
)

// Initializer loads the configuration of a single package from the
// genesis file.
type Initializer struct {
	Package string
	// New returns an empty configuration of the package type.
	New func() Configuration
}

var _ fiva.Initializer = Initializer{}

// FromGenesis parses opts["conf"][Package], validates it and stores it.
func (i Initializer) FromGenesis(ctx fiva.Context, opts fiva.Options, db fiva.KVStore) error {
	return InitConfig(db, opts, i.Package, i.New())
}
