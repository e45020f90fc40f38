package fivatest

import (
	"context"
	"testing"
	"time"

	"github.com/iov-one/fiva"
	"github.com/iov-one/fiva/chain"
	"github.com/iov-one/fiva/protocol"
	"github.com/iov-one/fiva/store"
)

// Chain runs contracts on an in memory store with a controllable block
// time. Every helper fails the test on database errors, contract failures
// are returned in the traces.
type Chain struct {
	t       testing.TB
	Runtime *chain.Runtime
	DB      fiva.CacheableKVStore
	Now     time.Time
}

// NewChain returns a chain running the contracts of reg.
func NewChain(t testing.TB, reg *chain.Registry) *Chain {
	return &Chain{
		t:       t,
		Runtime: chain.NewRuntime(reg),
		DB:      store.MemStore(),
		Now:     time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
}

// Context returns the execution context at the current block time.
func (c *Chain) Context() fiva.Context {
	ctx := fiva.WithBlockTime(context.Background(), c.Now)
	return fiva.WithChainID(ctx, "fiva-test")
}

// Advance moves the block time forward.
func (c *Chain) Advance(d time.Duration) {
	c.Now = c.Now.Add(d)
}

// Deploy creates a contract with the given balance.
func (c *Chain) Deploy(init fiva.StateInit, balance fiva.Coins) fiva.Address {
	c.t.Helper()
	addr, err := c.Runtime.Deploy(c.Context(), c.DB, init, balance)
	if err != nil {
		c.t.Fatalf("cannot deploy %s: %+v", init.Code, err)
	}
	return addr
}

// Send processes msg and everything it causes.
func (c *Chain) Send(msg fiva.Message) []chain.Trace {
	c.t.Helper()
	traces, err := c.Runtime.Send(c.Context(), c.DB, msg)
	if err != nil {
		c.t.Fatalf("cannot process message: %+v", err)
	}
	return traces
}

// External delivers an external message.
func (c *Chain) External(to fiva.Address, body []byte) ([]chain.Trace, error) {
	return c.Runtime.External(c.Context(), c.DB, protocol.External{To: to, Body: body})
}

// Get runs a getter and fails the test on error.
func (c *Chain) Get(addr fiva.Address, method string, args []byte) []byte {
	c.t.Helper()
	raw, err := c.Runtime.Get(c.Context(), c.DB.CacheWrap(), addr, method, args)
	if err != nil {
		c.t.Fatalf("getter %s on %s: %+v", method, addr, err)
	}
	return raw
}

// Balance returns the native balance of addr, zero for unknown addresses.
func (c *Chain) Balance(addr fiva.Address) fiva.Coins {
	acc, err := c.Runtime.Account(c.DB, addr)
	if err != nil {
		return 0
	}
	return acc.Balance
}

// Failed returns the traces of messages that failed.
func Failed(traces []chain.Trace) []chain.Trace {
	var res []chain.Trace
	for _, t := range traces {
		if t.Err != nil {
			res = append(res, t)
		}
	}
	return res
}

// Find returns the first trace of a message with the given opcode, or nil.
func Find(traces []chain.Trace, op protocol.Op) *chain.Trace {
	for i := range traces {
		if traces[i].Op == op && !traces[i].Bounced {
			return &traces[i]
		}
	}
	return nil
}
