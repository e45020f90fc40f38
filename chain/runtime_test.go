package chain

import (
	"context"
	"encoding/binary"
	"testing"

	"github.com/iov-one/fiva"
	"github.com/iov-one/fiva/errors"
	"github.com/iov-one/fiva/fivatest/assert"
	"github.com/iov-one/fiva/gconf"
	"github.com/iov-one/fiva/protocol"
	"github.com/iov-one/fiva/store"
)

// counter is a toy contract. The first body byte selects the action.
type counter struct{}

var counterKey = []byte("count")

func (counter) Init(ctx fiva.Context, db fiva.KVStore, data []byte) error {
	if len(data) == 0 {
		return errors.Wrap(errors.ErrEmpty, "init data")
	}
	return db.Set(counterKey, make([]byte, 8))
}

func (c counter) Receive(ctx fiva.Context, db fiva.KVStore, msg fiva.Message) (*fiva.Result, error) {
	if msg.Bounced || len(msg.Body) == 0 {
		return nil, nil
	}
	if err := c.increment(db); err != nil {
		return nil, err
	}
	switch msg.Body[0] {
	case 'i':
		return &fiva.Result{Log: "incremented"}, nil
	case 'f':
		return nil, errors.Wrap(errors.ErrState, "requested failure")
	case 'p':
		panic("requested panic")
	case 's':
		return &fiva.Result{Messages: []fiva.Message{
			{To: fiva.Address(msg.Body[1:]), Value: 100 * fiva.Coins(DefaultConfiguration().ComputeFee)},
		}}, nil
	case 'c':
		return &fiva.Result{Messages: []fiva.Message{
			{To: msg.From, CarryValue: true, Body: []byte{'x'}},
		}}, nil
	case 'l':
		return &fiva.Result{Messages: []fiva.Message{
			{To: fiva.Self(ctx), CarryValue: true, Body: []byte{'l'}},
		}}, nil
	}
	return nil, errors.Wrap(errors.ErrUnknownOp, "counter")
}

func (c counter) ReceiveExternal(ctx fiva.Context, db fiva.KVStore, body []byte) (*fiva.Result, error) {
	if err := c.increment(db); err != nil {
		return nil, err
	}
	if string(body) == "fail" {
		return nil, errors.ErrUnauthorized
	}
	return &fiva.Result{Messages: []fiva.Message{
		{To: fiva.Self(ctx), Value: 2 * DefaultConfiguration().ComputeFee, Body: []byte{'i'}},
	}}, nil
}

func (counter) increment(db fiva.KVStore) error {
	raw, err := db.Get(counterKey)
	if err != nil {
		return err
	}
	return db.Set(counterKey, encode(binary.BigEndian.Uint64(raw)+1))
}

func (counter) Get(ctx fiva.Context, db fiva.ReadOnlyKVStore, method string, args []byte) ([]byte, error) {
	if method != "count" {
		return nil, errors.Wrapf(errors.ErrUnknownOp, "getter %q", method)
	}
	return db.Get(counterKey)
}

func externalTo(addr fiva.Address, body string) protocol.External {
	return protocol.External{To: addr, Body: []byte(body)}
}

func encode(n uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, n)
	return b
}

func setup(t *testing.T) (*Runtime, fiva.CacheableKVStore, fiva.StateInit) {
	t.Helper()
	reg := NewRegistry()
	reg.Register("counter", counter{})
	return NewRuntime(reg), store.MemStore(), fiva.StateInit{Code: "counter", Data: []byte("one")}
}

func count(t *testing.T, rt *Runtime, db fiva.CacheableKVStore, addr fiva.Address) uint64 {
	t.Helper()
	raw, err := rt.Get(context.Background(), db.CacheWrap(), addr, "count", nil)
	assert.Nil(t, err)
	return binary.BigEndian.Uint64(raw)
}

func balance(t *testing.T, rt *Runtime, db fiva.ReadOnlyKVStore, addr fiva.Address) fiva.Coins {
	t.Helper()
	acc, err := rt.Account(db, addr)
	assert.Nil(t, err)
	return acc.Balance
}

const fee = fiva.Coins(1000000)

func TestDeployOnFirstMessage(t *testing.T) {
	rt, db, init := setup(t)
	ctx := context.Background()
	addr := init.Address()
	alice := fiva.NewCondition("sigs", "ed25519", []byte("alice")).Address()

	traces, err := rt.Send(ctx, db, fiva.Message{From: alice, To: addr, Value: 5 * fee, Body: []byte{'i'}, Init: &init})
	assert.Nil(t, err)
	assert.Equal(t, 1, len(traces))
	assert.Equal(t, true, traces[0].Deployed)
	assert.Equal(t, "incremented", traces[0].Log)
	assert.Nil(t, traces[0].Err)

	acc, err := rt.Account(db, addr)
	assert.Nil(t, err)
	assert.Equal(t, "counter", acc.Code)
	assert.Equal(t, 4*fee, acc.Balance)
	assert.Equal(t, uint64(1), count(t, rt, db, addr))

	// A second message does not deploy again.
	traces, err = rt.Send(ctx, db, fiva.Message{From: alice, To: addr, Value: 2 * fee, Body: []byte{'i'}, Init: &init})
	assert.Nil(t, err)
	assert.Equal(t, false, traces[0].Deployed)
	assert.Equal(t, uint64(2), count(t, rt, db, addr))
	assert.Equal(t, 5*fee, balance(t, rt, db, addr))

	// A state init that does not match the destination is rejected.
	other := fiva.StateInit{Code: "counter", Data: []byte("two")}
	traces, err = rt.Send(ctx, db, fiva.Message{To: addr.Clone(), Value: 2 * fee, Body: []byte{'i'}, Init: &other})
	assert.Nil(t, err)
	assert.Nil(t, traces[0].Err)
	traces, err = rt.Send(ctx, db, fiva.Message{To: alice, Value: 2 * fee, Body: []byte{'i'}, Init: &other, Bounce: true})
	assert.Nil(t, err)
	assert.IsErr(t, errors.ErrInput, traces[0].Err)
}

func TestFailureDiscardsAndBounces(t *testing.T) {
	rt, db, init := setup(t)
	ctx := context.Background()
	alice := fiva.NewCondition("sigs", "ed25519", []byte("alice")).Address()
	addr, err := rt.Deploy(ctx, db, init, 10*fee)
	assert.Nil(t, err)

	cases := map[string]struct {
		body    []byte
		value   fiva.Coins
		wantErr *errors.Error
		refund  fiva.Coins
	}{
		"contract error": {body: []byte{'f'}, value: 5 * fee, wantErr: errors.ErrState, refund: 4 * fee},
		"panic":          {body: []byte{'p'}, value: 5 * fee, wantErr: errors.ErrPanic, refund: 4 * fee},
		"below fee":      {body: []byte{'i'}, value: fee / 2, wantErr: errors.ErrInsufficientValue, refund: 0},
		"overspend":      {body: append([]byte{'s'}, alice...), value: 2 * fee, wantErr: errors.ErrInsufficientValue, refund: fee},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			before := count(t, rt, db, addr)
			var was fiva.Coins
			if acc, err := rt.Account(db, alice); err == nil {
				was = acc.Balance
			}

			traces, err := rt.Send(ctx, db, fiva.Message{From: alice, To: addr, Value: tc.value, Bounce: true, Body: tc.body})
			assert.Nil(t, err)
			assert.Equal(t, 2, len(traces))
			assert.IsErr(t, tc.wantErr, traces[0].Err)
			assert.Equal(t, true, traces[1].Bounced)
			assert.Equal(t, alice, traces[1].To)

			assert.Equal(t, before, count(t, rt, db, addr))
			assert.Equal(t, 10*fee, balance(t, rt, db, addr))
			assert.Equal(t, was+tc.refund, balance(t, rt, db, alice))
		})
	}
}

func TestNoBounceWithoutRequest(t *testing.T) {
	rt, db, init := setup(t)
	ctx := context.Background()
	alice := fiva.NewCondition("sigs", "ed25519", []byte("alice")).Address()
	addr, err := rt.Deploy(ctx, db, init, 0)
	assert.Nil(t, err)

	traces, err := rt.Send(ctx, db, fiva.Message{From: alice, To: addr, Value: 3 * fee, Body: []byte{'f'}})
	assert.Nil(t, err)
	assert.Equal(t, 1, len(traces))
	assert.IsErr(t, errors.ErrState, traces[0].Err)
	_, err = rt.Account(db, alice)
	assert.IsErr(t, errors.ErrNotFound, err)
	assert.Equal(t, uint64(0), count(t, rt, db, addr))
	assert.Equal(t, 3*fee, balance(t, rt, db, addr))
}

func TestMessageToEmptyAccount(t *testing.T) {
	rt, db, _ := setup(t)
	ctx := context.Background()
	alice := fiva.NewCondition("sigs", "ed25519", []byte("alice")).Address()
	bob := fiva.NewCondition("sigs", "ed25519", []byte("bob")).Address()

	// plain value transfer is credited in full
	_, err := rt.Send(ctx, db, fiva.Message{To: bob, Value: 7 * fee})
	assert.Nil(t, err)
	assert.Equal(t, 7*fee, balance(t, rt, db, bob))

	// bounceable message without code comes back
	traces, err := rt.Send(ctx, db, fiva.Message{From: alice, To: bob, Value: 3 * fee, Bounce: true, Body: []byte{'i'}})
	assert.Nil(t, err)
	assert.Equal(t, 2, len(traces))
	assert.IsErr(t, errors.ErrNotFound, traces[0].Err)
	assert.Equal(t, 7*fee, balance(t, rt, db, bob))
	assert.Equal(t, 2*fee, balance(t, rt, db, alice))
}

func TestCarryValue(t *testing.T) {
	rt, db, init := setup(t)
	ctx := context.Background()
	bob := fiva.NewCondition("sigs", "ed25519", []byte("bob")).Address()
	addr, err := rt.Deploy(ctx, db, init, 10*fee)
	assert.Nil(t, err)

	traces, err := rt.Send(ctx, db, fiva.Message{From: bob, To: addr, Value: 5 * fee, Body: []byte{'c'}})
	assert.Nil(t, err)
	assert.Equal(t, 2, len(traces))
	assert.Equal(t, 4*fee, traces[1].Value)
	assert.Equal(t, 4*fee, balance(t, rt, db, bob))
	assert.Equal(t, 10*fee, balance(t, rt, db, addr))
}

func TestMaxSteps(t *testing.T) {
	rt, db, init := setup(t)
	ctx := context.Background()
	conf := Configuration{ComputeFee: 1, MaxSteps: 5}
	assert.Nil(t, gconf.Save(db, ConfigurationKey, &conf))
	addr, err := rt.Deploy(ctx, db, init, 0)
	assert.Nil(t, err)

	traces, err := rt.Send(ctx, db, fiva.Message{To: addr, Value: 100, Body: []byte{'l'}})
	assert.IsErr(t, errors.ErrOverflow, err)
	assert.Equal(t, 5, len(traces))
}

func TestExternal(t *testing.T) {
	rt, db, init := setup(t)
	ctx := context.Background()
	addr, err := rt.Deploy(ctx, db, init, 10*fee)
	assert.Nil(t, err)

	traces, err := rt.External(ctx, db, externalTo(addr, "go"))
	assert.Nil(t, err)
	assert.Equal(t, 2, len(traces))
	assert.Equal(t, uint64(2), count(t, rt, db, addr))
	assert.Equal(t, 9*fee, balance(t, rt, db, addr))

	traces, err = rt.External(ctx, db, externalTo(addr, "fail"))
	assert.IsErr(t, errors.ErrUnauthorized, err)
	assert.Equal(t, 1, len(traces))
	assert.Equal(t, uint64(2), count(t, rt, db, addr))
	assert.Equal(t, 9*fee, balance(t, rt, db, addr))

	_, err = rt.External(ctx, db, externalTo(fiva.NewCondition("x", "y", []byte{1}).Address(), "go"))
	assert.IsErr(t, errors.ErrNotFound, err)
}

func TestDeployTwice(t *testing.T) {
	rt, db, init := setup(t)
	ctx := context.Background()
	_, err := rt.Deploy(ctx, db, init, 0)
	assert.Nil(t, err)
	_, err = rt.Deploy(ctx, db, init, 0)
	assert.IsErr(t, errors.ErrDuplicate, err)

	_, err = rt.Deploy(ctx, db, fiva.StateInit{Code: "counter"}, 0)
	assert.IsErr(t, errors.ErrEmpty, err)
	_, err = rt.Deploy(ctx, db, fiva.StateInit{Code: "missing", Data: []byte{1}}, 0)
	assert.IsErr(t, errors.ErrNotFound, err)
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	reg.Register("bbb", counter{})
	reg.Register("aaa", counter{})
	assert.Equal(t, []string{"aaa", "bbb"}, reg.Codes())
	assert.Panics(t, func() { reg.Register("aaa", counter{}) })
	assert.Panics(t, func() { reg.Register("no/slash", counter{}) })
	_, err := reg.Contract("ccc")
	assert.IsErr(t, errors.ErrNotFound, err)
}
