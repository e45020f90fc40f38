package wallet

import (
	"github.com/iov-one/fiva"
	"github.com/iov-one/fiva/cell"
	"github.com/iov-one/fiva/errors"
	"golang.org/x/crypto/ed25519"
)

// Contract is the wallet code.
type Contract struct{}

var (
	_ fiva.Contract         = Contract{}
	_ fiva.ExternalReceiver = Contract{}
)

// Init stores the public key carried by the StateInit data.
func (Contract) Init(ctx fiva.Context, db fiva.KVStore, data []byte) error {
	s := cell.NewSlice(data)
	acc := Account{
		PubKey:    s.Fixed(ed25519.PublicKeySize),
		Subwallet: s.Uint32(),
	}
	if err := s.End(); err != nil {
		return errors.Wrap(err, "wallet data")
	}
	return account.Save(db, &acc)
}

// Receive accepts the value of any internal message.
func (Contract) Receive(ctx fiva.Context, db fiva.KVStore, msg fiva.Message) (*fiva.Result, error) {
	return nil, nil
}

// ReceiveExternal executes a signed order.
func (Contract) ReceiveExternal(ctx fiva.Context, db fiva.KVStore, raw []byte) (*fiva.Result, error) {
	var acc Account
	if err := account.Load(db, &acc); err != nil {
		return nil, err
	}
	sig, body, err := open(raw)
	if err != nil {
		return nil, err
	}
	digest, err := SignBytes(fiva.GetChainID(ctx), body)
	if err != nil {
		return nil, err
	}
	if !ed25519.Verify(ed25519.PublicKey(acc.PubKey), digest, sig) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "invalid signature")
	}

	order, err := DecodeOrder(body)
	if err != nil {
		return nil, err
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}
	if order.Subwallet != acc.Subwallet {
		return nil, errors.Wrapf(errors.ErrUnauthorized, "order for subwallet %d", order.Subwallet)
	}
	if !order.ValidUntil.IsZero() && fiva.IsExpired(ctx, order.ValidUntil) {
		return nil, errors.Wrapf(errors.ErrExpired, "order valid until %s", order.ValidUntil)
	}
	if err := acc.CheckAndIncrementSequence(order.Seqno); err != nil {
		return nil, err
	}
	if err := account.Save(db, &acc); err != nil {
		return nil, err
	}

	res := &fiva.Result{Log: "order executed"}
	for _, m := range order.Messages {
		res.Messages = append(res.Messages, fiva.Message{
			To:     m.To,
			Value:  m.Value,
			Bounce: m.Bounce,
			Body:   m.Body,
			Init:   m.Init,
		})
	}
	fiva.GetLogger(ctx).Debug("order executed", "seqno", order.Seqno, "messages", len(order.Messages))
	return res, nil
}

// Get serves the seqno and get_public_key getters.
func (Contract) Get(ctx fiva.Context, db fiva.ReadOnlyKVStore, method string, args []byte) ([]byte, error) {
	var acc Account
	if err := account.Load(db, &acc); err != nil {
		return nil, err
	}
	switch method {
	case "seqno":
		return cell.NewBuilder().Uint64(acc.Seqno).Bytes(), nil
	case "get_public_key":
		return cell.NewBuilder().Fixed(acc.PubKey).Bytes(), nil
	}
	return nil, errors.Wrapf(errors.ErrUnknownOp, "getter %q", method)
}
