package wallet

import (
	"crypto/sha512"

	"github.com/iov-one/fiva"
	"github.com/iov-one/fiva/cell"
	"github.com/iov-one/fiva/errors"
	"github.com/iov-one/fiva/protocol"
	"golang.org/x/crypto/ed25519"
)

// MaxMessages is the largest number of messages a single order may send.
const MaxMessages = 4

// SignCodeV1 prefixes the bytes a wallet owner signs.
var SignCodeV1 = []byte{0, 0xF1, 0xFA, 0}

// Outgoing is a message the wallet is asked to send.
type Outgoing struct {
	To     fiva.Address
	Value  fiva.Coins
	Bounce bool
	Body   []byte
	// Init deploys the receiver, optional.
	Init *fiva.StateInit
}

// Order is the signed content of an external message to a wallet.
type Order struct {
	Subwallet uint32
	Seqno     uint64
	// ValidUntil rejects the order after the given time. Zero never
	// expires.
	ValidUntil fiva.UnixTime
	Messages   []Outgoing
}

// Validate checks the order is well formed.
func (o *Order) Validate() error {
	if len(o.Messages) > MaxMessages {
		return errors.Wrapf(errors.ErrInput, "%d messages, at most %d", len(o.Messages), MaxMessages)
	}
	var errs error
	for _, m := range o.Messages {
		errs = errors.AppendField(errs, "To", m.To.Validate())
	}
	return errs
}

// Encode serializes the order.
func (o *Order) Encode() []byte {
	b := cell.NewBuilder().
		Uint32(o.Subwallet).
		Uint64(o.Seqno).
		Uint64(uint64(o.ValidUntil)).
		Uint8(uint8(len(o.Messages)))
	for _, m := range o.Messages {
		b.Address(m.To).Coins(m.Value).Bool(m.Bounce).Ref(m.Body).Bool(m.Init != nil)
		if m.Init != nil {
			b.String(m.Init.Code).Ref(m.Init.Data)
		}
	}
	return b.Bytes()
}

// DecodeOrder parses a serialized order.
func DecodeOrder(raw []byte) (*Order, error) {
	s := cell.NewSlice(raw)
	o := &Order{
		Subwallet:  s.Uint32(),
		Seqno:      s.Uint64(),
		ValidUntil: fiva.UnixTime(s.Uint64()),
	}
	n := int(s.Uint8())
	if n > MaxMessages {
		return nil, errors.Wrapf(errors.ErrInput, "%d messages, at most %d", n, MaxMessages)
	}
	for i := 0; i < n && s.Err() == nil; i++ {
		m := Outgoing{To: s.Address(), Value: s.Coins(), Bounce: s.Bool(), Body: s.Ref()}
		if s.Bool() {
			m.Init = &fiva.StateInit{Code: s.String(), Data: s.Ref()}
		}
		o.Messages = append(o.Messages, m)
	}
	if err := s.End(); err != nil {
		return nil, errors.Wrap(err, "order")
	}
	return o, nil
}

/*
SignBytes returns the digest the owner signs.

	version | len(chainID) | chainID      | order
	4bytes  | uint8        | ascii string | serialized order

The result is prehashed with sha512.
*/
func SignBytes(chainID string, order []byte) ([]byte, error) {
	if !fiva.IsValidChainID(chainID) {
		return nil, errors.Wrapf(errors.ErrInput, "chain id: %v", chainID)
	}
	output := make([]byte, 0, len(SignCodeV1)+1+len(chainID)+len(order))
	output = append(output, SignCodeV1...)
	output = append(output, uint8(len(chainID)))
	output = append(output, chainID...)
	output = append(output, order...)
	h := sha512.Sum512(output)
	return h[:], nil
}

// Sign returns the external message body executing order.
func Sign(key ed25519.PrivateKey, chainID string, order *Order) ([]byte, error) {
	raw := order.Encode()
	digest, err := SignBytes(chainID, raw)
	if err != nil {
		return nil, err
	}
	sig := ed25519.Sign(key, digest)
	return cell.NewBuilder().Fixed(sig).Fixed(raw).Bytes(), nil
}

// open splits an external body into the signature and the signed order.
func open(raw []byte) ([]byte, []byte, error) {
	s := cell.NewSlice(raw)
	sig := s.Fixed(protocol.SignatureSize)
	if err := s.Err(); err != nil {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "missing signature")
	}
	return sig, s.Rest(), nil
}
