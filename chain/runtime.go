package chain

import (
	"github.com/iov-one/fiva"
	"github.com/iov-one/fiva/errors"
	"github.com/iov-one/fiva/gconf"
	"github.com/iov-one/fiva/metrics"
	"github.com/iov-one/fiva/protocol"
	"github.com/iov-one/fiva/store"
)

// ConfigurationKey is the gconf package name of the runtime configuration.
const ConfigurationKey = "chain"

// Trace describes the processing of a single message.
type Trace struct {
	From     fiva.Address
	To       fiva.Address
	Op       protocol.Op
	Value    fiva.Coins
	Bounced  bool
	Deployed bool
	Body     []byte
	Log      string
	// Err is set when the message failed and all its writes were
	// discarded.
	Err error
}

// Runtime delivers messages to contracts.
type Runtime struct {
	registry *Registry
}

// NewRuntime returns a runtime executing the contracts of registry.
func NewRuntime(registry *Registry) *Runtime {
	return &Runtime{registry: registry}
}

// Registry returns the code registry.
func (r *Runtime) Registry() *Registry {
	return r.registry
}

// loadConf returns the stored configuration or the default one.
func loadConf(db fiva.ReadOnlyKVStore) (Configuration, error) {
	var conf Configuration
	err := gconf.Load(db, ConfigurationKey, &conf)
	switch {
	case err == nil:
		return conf, nil
	case errors.ErrNotFound.Is(err):
		return DefaultConfiguration(), nil
	default:
		return conf, err
	}
}

// ContractStore returns the private key space of a contract.
func ContractStore(db fiva.KVStore, addr fiva.Address) fiva.KVStore {
	prefix := append([]byte("ct:"), addr...)
	return store.NewPrefixStore(db, append(prefix, ':'))
}

// Account returns the account of an address. ErrNotFound is returned for
// addresses that never received anything.
func (r *Runtime) Account(db fiva.ReadOnlyKVStore, addr fiva.Address) (*Account, error) {
	var acc Account
	if err := accounts.One(db, addr, &acc); err != nil {
		return nil, err
	}
	return &acc, nil
}

// loadAccount returns an empty account for unknown addresses.
func loadAccount(db fiva.ReadOnlyKVStore, addr fiva.Address) (*Account, error) {
	var acc Account
	err := accounts.One(db, addr, &acc)
	if errors.ErrNotFound.Is(err) {
		return &Account{}, nil
	}
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

// Deploy creates a contract outside of any message flow, as done from the
// genesis file. The new contract receives balance.
func (r *Runtime) Deploy(ctx fiva.Context, db fiva.KVStore, init fiva.StateInit, balance fiva.Coins) (fiva.Address, error) {
	addr := init.Address()
	acc, err := loadAccount(db, addr)
	if err != nil {
		return nil, err
	}
	if acc.Deployed() {
		return nil, errors.Wrapf(errors.ErrDuplicate, "contract %s", addr)
	}
	if err := r.deploy(ctx, db, addr, acc, init); err != nil {
		return nil, err
	}
	if acc.Balance, err = acc.Balance.Add(balance); err != nil {
		return nil, err
	}
	return addr, accounts.Put(db, addr, acc)
}

func (r *Runtime) deploy(ctx fiva.Context, db fiva.KVStore, addr fiva.Address, acc *Account, init fiva.StateInit) error {
	c, err := r.registry.Contract(init.Code)
	if err != nil {
		return err
	}
	ctx = fiva.WithSelf(ctx, addr)
	if err := c.Init(ctx, ContractStore(db, addr), init.Data); err != nil {
		return errors.Wrapf(err, "init %s", init.Code)
	}
	acc.Code = init.Code
	metrics.DeploysTotal.WithLabelValues(init.Code).Inc()
	fiva.GetLogger(ctx).Debug("contract deployed", "code", init.Code, "addr", addr)
	return nil
}

// Get runs a getter of the contract deployed at addr.
func (r *Runtime) Get(ctx fiva.Context, db fiva.KVStore, addr fiva.Address, method string, args []byte) ([]byte, error) {
	acc, err := r.Account(db, addr)
	if err != nil {
		return nil, err
	}
	if !acc.Deployed() {
		return nil, errors.Wrapf(errors.ErrNotFound, "no contract at %s", addr)
	}
	c, err := r.registry.Contract(acc.Code)
	if err != nil {
		return nil, err
	}
	ctx = fiva.WithSelf(ctx, addr)
	return c.Get(ctx, ContractStore(db, addr), method, args)
}

// Send injects an internal message and processes it together with every
// message it causes. The value of the injected message is created, so this
// is meant for genesis funding and tests.
func (r *Runtime) Send(ctx fiva.Context, db fiva.CacheableKVStore, msg fiva.Message) ([]Trace, error) {
	return r.run(ctx, db, []fiva.Message{msg})
}

// External delivers an inbound message from outside of the network. The
// receiving contract authenticates it. When it fails, nothing is written
// and no message is sent.
func (r *Runtime) External(ctx fiva.Context, db fiva.CacheableKVStore, ext protocol.External) ([]Trace, error) {
	acc, err := r.Account(db, ext.To)
	if err != nil {
		return nil, err
	}
	if !acc.Deployed() {
		return nil, errors.Wrapf(errors.ErrNotFound, "no contract at %s", ext.To)
	}
	c, err := r.registry.Contract(acc.Code)
	if err != nil {
		return nil, err
	}
	recv, ok := c.(fiva.ExternalReceiver)
	if !ok {
		return nil, errors.Wrapf(errors.ErrUnknownOp, "%s does not accept external messages", acc.Code)
	}

	cache := db.CacheWrap()
	op, _, _ := protocol.Header(ext.Body)
	trace := Trace{To: ext.To, Op: op, Body: ext.Body}
	out, err := r.receive(ctx, cache, ext.To, acc, 0, func(ctx fiva.Context, kv fiva.KVStore) (*fiva.Result, error) {
		return recv.ReceiveExternal(ctx, kv, ext.Body)
	})
	if err != nil {
		cache.Discard()
		trace.Err = err
		metrics.MessagesTotal.WithLabelValues(op.String(), metrics.OutcomeRejected).Inc()
		return []Trace{trace}, err
	}
	if err := cache.Write(); err != nil {
		return nil, err
	}
	metrics.MessagesTotal.WithLabelValues(op.String(), metrics.OutcomeOK).Inc()
	traces, err := r.run(ctx, db, out)
	return append([]Trace{trace}, traces...), err
}

// run processes a queue of messages until it is empty.
func (r *Runtime) run(ctx fiva.Context, db fiva.CacheableKVStore, queue []fiva.Message) ([]Trace, error) {
	conf, err := loadConf(db)
	if err != nil {
		return nil, err
	}

	var traces []Trace
	for len(queue) > 0 {
		if len(traces) >= int(conf.MaxSteps) {
			metrics.StepsPerTx.Observe(float64(len(traces)))
			return traces, errors.Wrapf(errors.ErrOverflow, "more than %d messages", conf.MaxSteps)
		}
		msg := queue[0]
		queue = queue[1:]

		out, trace, err := r.deliver(ctx, db, msg, conf)
		if err != nil {
			return traces, err
		}
		traces = append(traces, trace)
		queue = append(queue, out...)
	}
	metrics.StepsPerTx.Observe(float64(len(traces)))
	return traces, nil
}

// deliver processes a single message inside a cache wrap. A returned error
// is a database failure, contract failures are reported in the trace.
func (r *Runtime) deliver(ctx fiva.Context, db fiva.CacheableKVStore, msg fiva.Message, conf Configuration) ([]fiva.Message, Trace, error) {
	op, _, _ := protocol.Header(msg.Body)
	if raw, ok := protocol.Unbounce(msg.Body); msg.Bounced && ok {
		op, _, _ = protocol.Header(raw)
	}
	trace := Trace{From: msg.From, To: msg.To, Op: op, Value: msg.Value, Bounced: msg.Bounced, Body: msg.Body}
	logger := fiva.GetLogger(ctx).With("op", op.String(), "to", msg.To, "from", msg.From)

	cache := db.CacheWrap()
	out, deployed, log, err := r.execute(ctx, cache, msg, conf)
	trace.Deployed = deployed
	trace.Log = log
	if err == nil {
		if err := cache.Write(); err != nil {
			return nil, trace, err
		}
		logger.Debug("message processed", "value", msg.Value, "sent", len(out))
		metrics.MessagesTotal.WithLabelValues(op.String(), metrics.OutcomeOK).Inc()
		return out, trace, nil
	}

	cache.Discard()
	trace.Err = err
	metrics.MessagesTotal.WithLabelValues(op.String(), metrics.OutcomeFailed).Inc()
	if errors.ErrDatabase.Is(err) {
		return nil, trace, err
	}
	if !msg.Bounce || msg.Bounced || msg.From.Empty() {
		logger.Info("message failed", "err", err)
		// Value of a message that cannot bounce stays with its receiver.
		return nil, trace, r.credit(db, msg.To, msg.Value)
	}

	fee := conf.ComputeFee
	if fee > msg.Value {
		fee = msg.Value
	}
	metrics.ComputeFees.Add(float64(fee))
	metrics.BouncesTotal.Inc()
	logger.Info("message bounced", "err", err)
	bounce := fiva.Message{
		From:    msg.To,
		To:      msg.From,
		Value:   msg.Value - fee,
		Bounced: true,
		Body:    protocol.Bounce(msg.Body),
	}
	return []fiva.Message{bounce}, trace, nil
}

func (r *Runtime) credit(db fiva.KVStore, addr fiva.Address, value fiva.Coins) error {
	if value == 0 || addr.Validate() != nil {
		return nil
	}
	acc, err := loadAccount(db, addr)
	if err != nil {
		return err
	}
	if acc.Balance, err = acc.Balance.Add(value); err != nil {
		return err
	}
	return accounts.Put(db, addr, acc)
}

// execute runs the receiver of msg on db.
func (r *Runtime) execute(ctx fiva.Context, db fiva.KVStore, msg fiva.Message, conf Configuration) (out []fiva.Message, deployed bool, log string, err error) {
	if err := msg.To.Validate(); err != nil {
		return nil, false, "", errors.Field("To", err, "destination")
	}
	acc, err := loadAccount(db, msg.To)
	if err != nil {
		return nil, false, "", err
	}

	if !acc.Deployed() && msg.Init != nil {
		if !msg.Init.Address().Equals(msg.To) {
			return nil, false, "", errors.Wrap(errors.ErrInput, "state init does not match destination")
		}
		if err := r.deploy(ctx, db, msg.To, acc, *msg.Init); err != nil {
			return nil, false, "", err
		}
		deployed = true
	}

	if !acc.Deployed() {
		if msg.Bounce && !msg.Bounced {
			return nil, false, "", errors.Wrapf(errors.ErrNotFound, "no contract at %s", msg.To)
		}
		// plain value transfer to an address without code
		if acc.Balance, err = acc.Balance.Add(msg.Value); err != nil {
			return nil, false, "", err
		}
		return nil, false, "", accounts.Put(db, msg.To, acc)
	}

	fee := conf.ComputeFee
	if msg.Bounced && fee > msg.Value {
		fee = msg.Value
	}
	if msg.Value < fee {
		return nil, deployed, "", errors.Wrapf(errors.ErrInsufficientValue, "value %d below compute fee %d", msg.Value, fee)
	}
	c, err := r.registry.Contract(acc.Code)
	if err != nil {
		return nil, deployed, "", err
	}
	var res *fiva.Result
	out, err = r.receive(ctx, db, msg.To, acc, msg.Value-fee, func(ctx fiva.Context, kv fiva.KVStore) (*fiva.Result, error) {
		var err error
		res, err = c.Receive(ctx, kv, msg)
		return res, err
	})
	if err != nil {
		return nil, deployed, "", err
	}
	metrics.ComputeFees.Add(float64(fee))
	if res != nil {
		log = res.Log
	}
	return out, deployed, log, nil
}

type receiver func(ctx fiva.Context, kv fiva.KVStore) (*fiva.Result, error)

// receive credits the inbound value, runs the contract and debits the value
// of every outgoing message. CarryValue messages get what is left of the
// inbound value.
func (r *Runtime) receive(ctx fiva.Context, db fiva.KVStore, self fiva.Address, acc *Account, inbound fiva.Coins, fn receiver) (out []fiva.Message, err error) {
	defer errors.Recover(&err)

	if acc.Balance, err = acc.Balance.Add(inbound); err != nil {
		return nil, err
	}
	ctx = fiva.WithSelf(ctx, self)
	ctx = fiva.WithLogInfo(ctx, "contract", acc.Code, "self", self)

	res, err := fn(ctx, ContractStore(db, self))
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, accounts.Put(db, self, acc)
	}

	var (
		explicit fiva.Coins
		carry    = -1
	)
	out = make([]fiva.Message, len(res.Messages))
	for i, m := range res.Messages {
		m.From = self
		if m.CarryValue {
			if carry >= 0 {
				return nil, errors.Wrap(errors.ErrInput, "only one message may carry the remaining value")
			}
			carry = i
		} else if explicit, err = explicit.Add(m.Value); err != nil {
			return nil, err
		}
		out[i] = m
	}
	if carry >= 0 {
		rest := fiva.Coins(0)
		if inbound > explicit {
			rest = inbound - explicit
		}
		out[carry].Value = rest
		out[carry].CarryValue = false
		explicit += rest
	}
	if acc.Balance, err = acc.Balance.Sub(explicit); err != nil {
		return nil, errors.Wrapf(errors.ErrInsufficientValue, "balance %d cannot cover %d", acc.Balance, explicit)
	}
	return out, accounts.Put(db, self, acc)
}
