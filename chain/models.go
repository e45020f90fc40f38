package chain

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/fiva"
	"github.com/iov-one/fiva/errors"
	"github.com/iov-one/fiva/orm"
)

// Account is the runtime record of an address. An account without code
// only holds value.
type Account struct {
	Code    string     `protobuf:"bytes,1,opt,name=code,proto3" json:"code,omitempty"`
	Balance fiva.Coins `protobuf:"varint,2,opt,name=balance,proto3" json:"balance"`
}

func (m *Account) Reset()         { *m = Account{} }
func (m *Account) String() string { return proto.CompactTextString(m) }
func (*Account) ProtoMessage()    {}

// Validate is a no-op, every combination is valid.
func (m *Account) Validate() error {
	return nil
}

// Deployed returns true if the account runs a contract.
func (m *Account) Deployed() bool {
	return m.Code != ""
}

// Configuration holds the runtime parameters.
type Configuration struct {
	// ComputeFee is charged for every processed message and deducted from
	// the value it carries.
	ComputeFee fiva.Coins `protobuf:"varint,1,opt,name=compute_fee,json=computeFee,proto3" json:"compute_fee"`
	// MaxSteps caps the number of messages processed for one inbound
	// message.
	MaxSteps uint32 `protobuf:"varint,2,opt,name=max_steps,json=maxSteps,proto3" json:"max_steps"`
}

func (m *Configuration) Reset()         { *m = Configuration{} }
func (m *Configuration) String() string { return proto.CompactTextString(m) }
func (*Configuration) ProtoMessage()    {}

// Validate requires a positive step limit.
func (m *Configuration) Validate() error {
	var errs error
	if m.MaxSteps == 0 {
		errs = errors.AppendField(errs, "MaxSteps", errors.ErrEmpty)
	}
	return errs
}

// DefaultConfiguration is used when none was stored at genesis.
func DefaultConfiguration() Configuration {
	return Configuration{
		ComputeFee: 1000000,
		MaxSteps:   256,
	}
}

var (
	accounts = orm.NewModelBucket("acct", &Account{})
	_        orm.Model = (*Configuration)(nil)
)
