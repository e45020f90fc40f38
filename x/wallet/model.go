package wallet

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/fiva/errors"
	"github.com/iov-one/fiva/orm"
	"golang.org/x/crypto/ed25519"
)

// Code is the code reference of the wallet contract.
const Code = "wallet"

// Account is the state of a wallet.
type Account struct {
	PubKey    []byte `protobuf:"bytes,1,opt,name=pub_key,json=pubKey,proto3" json:"pub_key"`
	Subwallet uint32 `protobuf:"varint,2,opt,name=subwallet,proto3" json:"subwallet"`
	Seqno     uint64 `protobuf:"varint,3,opt,name=seqno,proto3" json:"seqno"`
}

func (m *Account) Reset()         { *m = Account{} }
func (m *Account) String() string { return proto.CompactTextString(m) }
func (*Account) ProtoMessage()    {}

func (m *Account) Validate() error {
	if len(m.PubKey) != ed25519.PublicKeySize {
		return errors.Field("PubKey", errors.ErrInput, "%d bytes", len(m.PubKey))
	}
	return nil
}

// CheckAndIncrementSequence increments the sequence if it matches expected.
func (m *Account) CheckAndIncrementSequence(expected uint64) error {
	if m.Seqno != expected {
		return errors.Wrapf(ErrInvalidSequence, "mismatch expected %d, got %d", m.Seqno, expected)
	}
	if m.Seqno+1 < m.Seqno {
		return errors.Wrap(errors.ErrOverflow, "sequence out of range")
	}
	m.Seqno++
	return nil
}

var (
	account = orm.NewSingleton("account")

	_ orm.Model = (*Account)(nil)
)
