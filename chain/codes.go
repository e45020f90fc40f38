package chain

import (
	"sort"

	"github.com/iov-one/fiva"
	"github.com/iov-one/fiva/errors"
)

// Registry maps code references to contract implementations.
type Registry struct {
	codes map[string]fiva.Contract
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{codes: make(map[string]fiva.Contract)}
}

// Register adds a contract implementation. It panics if the code reference
// is already used or is not a valid condition type.
func (r *Registry) Register(code string, c fiva.Contract) {
	if _, ok := r.codes[code]; ok {
		panic("code already registered: " + code)
	}
	if err := fiva.NewCondition("init", code, []byte{0}).Validate(); err != nil {
		panic("invalid code reference: " + code)
	}
	r.codes[code] = c
}

// Contract returns the implementation registered for code.
func (r *Registry) Contract(code string) (fiva.Contract, error) {
	c, ok := r.codes[code]
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "code %q", code)
	}
	return c, nil
}

// Codes returns all registered code references, sorted.
func (r *Registry) Codes() []string {
	res := make([]string, 0, len(r.codes))
	for code := range r.codes {
		res = append(res, code)
	}
	sort.Strings(res)
	return res
}
