package app

import (
	"strings"

	"github.com/iov-one/fiva"
	"github.com/iov-one/fiva/chain"
	"github.com/iov-one/fiva/errors"
	"github.com/iov-one/fiva/orm"
)

// RuntimeQueries serves getter and account queries of a runtime.
type RuntimeQueries struct {
	Runtime *chain.Runtime
}

var _ QueryHandler = RuntimeQueries{}

// Query dispatches /get/<address>/<method> and /account/<address>.
func (q RuntimeQueries) Query(ctx fiva.Context, db fiva.CacheableKVStore, path string, data []byte) ([]byte, error) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	switch {
	case len(parts) == 3 && parts[0] == "get":
		addr, err := fiva.ParseAddress(parts[1])
		if err != nil {
			return nil, err
		}
		return q.Runtime.Get(ctx, db, addr, parts[2], data)
	case len(parts) == 2 && parts[0] == "account":
		addr, err := fiva.ParseAddress(parts[1])
		if err != nil {
			return nil, err
		}
		acc, err := q.Runtime.Account(db, addr)
		if err != nil {
			return nil, err
		}
		return orm.Marshal(acc)
	}
	return nil, errors.Wrapf(errors.ErrNotFound, "query path %q", path)
}

// DecodeAccount parses the result of an /account query.
func DecodeAccount(raw []byte) (*chain.Account, error) {
	var acc chain.Account
	if err := orm.Unmarshal(raw, &acc); err != nil {
		return nil, err
	}
	return &acc, nil
}
