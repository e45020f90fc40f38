package jetton

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/fiva"
	"github.com/iov-one/fiva/errors"
	"github.com/iov-one/fiva/orm"
)

const (
	// MinterCode is the code reference of the minter contract.
	MinterCode = "jminter"
	// WalletCode is the code reference of the wallet contract.
	WalletCode = "jwallet"
)

// MinterState is the persisted state of a minter.
type MinterState struct {
	Admin       fiva.Address `protobuf:"bytes,1,opt,name=admin,proto3" json:"admin"`
	TotalSupply fiva.Coins   `protobuf:"varint,2,opt,name=total_supply,json=totalSupply,proto3" json:"total_supply"`
	Content     string       `protobuf:"bytes,3,opt,name=content,proto3" json:"content,omitempty"`
}

func (m *MinterState) Reset()         { *m = MinterState{} }
func (m *MinterState) String() string { return proto.CompactTextString(m) }
func (*MinterState) ProtoMessage()    {}

// Validate requires an admin.
func (m *MinterState) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Admin", m.Admin.Validate())
	return errs
}

// WalletState is the persisted state of a wallet.
type WalletState struct {
	Balance fiva.Coins   `protobuf:"varint,1,opt,name=balance,proto3" json:"balance"`
	Owner   fiva.Address `protobuf:"bytes,2,opt,name=owner,proto3" json:"owner"`
	Minter  fiva.Address `protobuf:"bytes,3,opt,name=minter,proto3" json:"minter"`
}

func (m *WalletState) Reset()         { *m = WalletState{} }
func (m *WalletState) String() string { return proto.CompactTextString(m) }
func (*WalletState) ProtoMessage()    {}

// Validate requires both the owner and the minter.
func (m *WalletState) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Owner", m.Owner.Validate())
	errs = errors.AppendField(errs, "Minter", m.Minter.Validate())
	return errs
}

var (
	minterState = orm.NewSingleton("minter")
	walletState = orm.NewSingleton("wallet")

	_ orm.Model = (*MinterState)(nil)
	_ orm.Model = (*WalletState)(nil)
)
