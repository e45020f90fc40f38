package master

import (
	"encoding/hex"

	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/fiva"
	"github.com/iov-one/fiva/errors"
	"github.com/iov-one/fiva/orm"
	"github.com/iov-one/fiva/protocol"
	"github.com/iov-one/fiva/x/user"
	"golang.org/x/crypto/ed25519"
)

// Code is the code reference of the Master contract.
const Code = "master"

// Market is the state of a Master.
type Market struct {
	Admin            fiva.Address `protobuf:"bytes,1,opt,name=admin,proto3" json:"admin"`
	UserCode         string       `protobuf:"bytes,2,opt,name=user_code,json=userCode,proto3" json:"user_code"`
	UnderlyingMinter fiva.Address `protobuf:"bytes,3,opt,name=underlying_minter,json=underlyingMinter,proto3" json:"underlying_minter"`
	UnderlyingWallet fiva.Address `protobuf:"bytes,4,opt,name=underlying_wallet,json=underlyingWallet,proto3" json:"underlying_wallet,omitempty"`
	PTMinter         fiva.Address `protobuf:"bytes,5,opt,name=pt_minter,json=ptMinter,proto3" json:"pt_minter,omitempty"`
	YTMinter         fiva.Address `protobuf:"bytes,6,opt,name=yt_minter,json=ytMinter,proto3" json:"yt_minter,omitempty"`
	// Maturity never changes once the market is deployed.
	Maturity fiva.UnixTime `protobuf:"varint,7,opt,name=maturity,proto3" json:"maturity"`
	// Index never decreases.
	Index       fiva.Index `protobuf:"varint,8,opt,name=index,proto3" json:"index"`
	AdminPubKey []byte     `protobuf:"bytes,9,opt,name=admin_pub_key,json=adminPubKey,proto3" json:"admin_pub_key"`
	// AdminSeq is the query id of the last accepted admin command.
	AdminSeq uint64 `protobuf:"varint,10,opt,name=admin_seq,json=adminSeq,proto3" json:"admin_seq"`
	// ForwardValue is attached to every message the Master pays for.
	ForwardValue fiva.Coins `protobuf:"varint,11,opt,name=forward_value,json=forwardValue,proto3" json:"forward_value"`
	Policy       uint32     `protobuf:"varint,12,opt,name=policy,proto3" json:"policy"`
	// Supplied is the underlying held on behalf of depositors.
	Supplied fiva.Coins `protobuf:"varint,13,opt,name=supplied,proto3" json:"supplied"`
}

func (m *Market) Reset()         { *m = Market{} }
func (m *Market) String() string { return proto.CompactTextString(m) }
func (*Market) ProtoMessage()    {}

// Validate checks the market configuration.
func (m *Market) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Admin", m.Admin.Validate())
	if m.UserCode == "" {
		errs = errors.AppendField(errs, "UserCode", errors.ErrEmpty)
	}
	errs = errors.AppendField(errs, "UnderlyingMinter", m.UnderlyingMinter.Validate())
	if !m.UnderlyingWallet.Empty() {
		errs = errors.AppendField(errs, "UnderlyingWallet", m.UnderlyingWallet.Validate())
	}
	if !m.PTMinter.Empty() {
		errs = errors.AppendField(errs, "PTMinter", m.PTMinter.Validate())
	}
	if !m.YTMinter.Empty() {
		errs = errors.AppendField(errs, "YTMinter", m.YTMinter.Validate())
	}
	if m.Maturity.IsZero() {
		errs = errors.AppendField(errs, "Maturity", errors.ErrEmpty)
	}
	errs = errors.AppendField(errs, "Index", m.Index.Validate())
	if len(m.AdminPubKey) != ed25519.PublicKeySize {
		errs = errors.AppendField(errs, "AdminPubKey", errors.ErrInput)
	}
	errs = errors.AppendField(errs, "Policy", protocol.PairingPolicy(m.Policy).Validate())
	return errs
}

// AdminPolicy returns the policy verifying admin commands.
func (m *Market) AdminPolicy() AdminPolicy {
	return AdminPolicy{PubKey: ed25519.PublicKey(m.AdminPubKey), Seq: m.AdminSeq}
}

// UserInit returns the StateInit of the User of owner.
func (m *Market) UserInit(self, owner fiva.Address) fiva.StateInit {
	return user.InitWithCode(m.UserCode, self, owner)
}

var (
	market = orm.NewSingleton("market")
	orders = orm.NewSequence("market", "orders")

	_ orm.Model = (*Market)(nil)
)

// Config is the genesis description of a market.
type Config struct {
	Admin            fiva.Address  `json:"admin"`
	UnderlyingMinter fiva.Address  `json:"underlying_minter"`
	UnderlyingWallet fiva.Address  `json:"underlying_wallet,omitempty"`
	Maturity         fiva.UnixTime `json:"maturity"`
	Index            fiva.Index    `json:"index"`
	// AdminPubKey is the hex encoded ed25519 public key of the admin.
	AdminPubKey  string     `json:"admin_pub_key"`
	ForwardValue fiva.Coins `json:"forward_value"`
	Policy       string     `json:"policy,omitempty"`
	UserCode     string     `json:"user_code,omitempty"`
}

// Market returns the initial state described by the configuration.
func (c Config) Market() (*Market, error) {
	pub, err := hex.DecodeString(c.AdminPubKey)
	if err != nil {
		return nil, errors.Field("AdminPubKey", errors.ErrInput, "hex: %s", err)
	}
	policy, err := protocol.ParsePolicy(c.Policy)
	if err != nil {
		return nil, errors.Field("Policy", err, "pairing policy")
	}
	m := &Market{
		Admin:            c.Admin,
		UserCode:         c.UserCode,
		UnderlyingMinter: c.UnderlyingMinter,
		UnderlyingWallet: c.UnderlyingWallet,
		Maturity:         c.Maturity,
		Index:            c.Index,
		AdminPubKey:      pub,
		ForwardValue:     c.ForwardValue,
		Policy:           uint32(policy),
	}
	if m.UserCode == "" {
		m.UserCode = user.Code
	}
	return m, m.Validate()
}

// StateInit returns the StateInit deploying a Master with this
// configuration.
func (c Config) StateInit() (fiva.StateInit, error) {
	m, err := c.Market()
	if err != nil {
		return fiva.StateInit{}, err
	}
	data, err := orm.Marshal(m)
	if err != nil {
		return fiva.StateInit{}, err
	}
	return fiva.StateInit{Code: Code, Data: data}, nil
}
