package user

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/fiva"
	"github.com/iov-one/fiva/errors"
	"github.com/iov-one/fiva/orm"
	"github.com/iov-one/fiva/protocol"
)

// Position is the state of a User sub-ledger.
type Position struct {
	Owner  fiva.Address `protobuf:"bytes,1,opt,name=owner,proto3" json:"owner"`
	Master fiva.Address `protobuf:"bytes,2,opt,name=master,proto3" json:"master"`
	// Maturity and IndexSnapshot are taken at the first deposit since the
	// Position was last drained.
	Maturity      fiva.UnixTime `protobuf:"varint,3,opt,name=maturity,proto3" json:"maturity"`
	IndexSnapshot fiva.Index    `protobuf:"varint,4,opt,name=index_snapshot,json=indexSnapshot,proto3" json:"index_snapshot"`
	// Principal is the outstanding PT claim.
	Principal fiva.Coins `protobuf:"varint,5,opt,name=principal,proto3" json:"principal"`
	// YTBalance is the outstanding YT claim.
	YTBalance        fiva.Coins `protobuf:"varint,6,opt,name=yt_balance,json=ytBalance,proto3" json:"yt_balance"`
	PendingPrincipal fiva.Coins `protobuf:"varint,7,opt,name=pending_principal,json=pendingPrincipal,proto3" json:"pending_principal"`
	PendingYield     fiva.Coins `protobuf:"varint,8,opt,name=pending_yield,json=pendingYield,proto3" json:"pending_yield"`
	PrincipalPaid    fiva.Coins `protobuf:"varint,9,opt,name=principal_paid,json=principalPaid,proto3" json:"principal_paid"`
	InterestPaid     fiva.Coins `protobuf:"varint,10,opt,name=interest_paid,json=interestPaid,proto3" json:"interest_paid"`
	Policy           uint32     `protobuf:"varint,11,opt,name=policy,proto3" json:"policy"`
}

func (m *Position) Reset()         { *m = Position{} }
func (m *Position) String() string { return proto.CompactTextString(m) }
func (*Position) ProtoMessage()    {}

// Validate checks the pending legs never exceed their outstanding claim.
func (m *Position) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Owner", m.Owner.Validate())
	errs = errors.AppendField(errs, "Master", m.Master.Validate())
	if m.PendingPrincipal > m.Principal {
		errs = errors.AppendField(errs, "PendingPrincipal", errors.ErrInvariant)
	}
	if m.PendingYield > m.YTBalance {
		errs = errors.AppendField(errs, "PendingYield", errors.ErrInvariant)
	}
	errs = errors.AppendField(errs, "Policy", protocol.PairingPolicy(m.Policy).Validate())
	return errs
}

// Empty returns true if the Position holds no outstanding claim.
func (m *Position) Empty() bool {
	return m.Principal == 0 && m.YTBalance == 0
}

// outstanding returns the claim and the pending amount of a leg.
func (m *Position) outstanding(leg protocol.Leg) (fiva.Coins, fiva.Coins) {
	if leg == protocol.LegPrincipal {
		return m.Principal, m.PendingPrincipal
	}
	return m.YTBalance, m.PendingYield
}

// SupplyRecord is a single deposit batch.
type SupplyRecord struct {
	OrderID    uint64       `protobuf:"varint,1,opt,name=order_id,json=orderId,proto3" json:"order_id"`
	From       fiva.Address `protobuf:"bytes,2,opt,name=from,proto3" json:"from"`
	FromAmount fiva.Coins   `protobuf:"varint,3,opt,name=from_amount,json=fromAmount,proto3" json:"from_amount"`
	To         fiva.Address `protobuf:"bytes,4,opt,name=to,proto3" json:"to"`
	ToAmount   fiva.Coins   `protobuf:"varint,5,opt,name=to_amount,json=toAmount,proto3" json:"to_amount"`
	ToMaster   fiva.Address `protobuf:"bytes,6,opt,name=to_master,json=toMaster,proto3" json:"to_master"`
	// PrincipalOutstanding and YieldOutstanding are decremented by
	// redemptions. The record is removed once both reach zero.
	PrincipalOutstanding fiva.Coins `protobuf:"varint,7,opt,name=principal_outstanding,json=principalOutstanding,proto3" json:"principal_outstanding"`
	YieldOutstanding     fiva.Coins `protobuf:"varint,8,opt,name=yield_outstanding,json=yieldOutstanding,proto3" json:"yield_outstanding"`
}

func (m *SupplyRecord) Reset()         { *m = SupplyRecord{} }
func (m *SupplyRecord) String() string { return proto.CompactTextString(m) }
func (*SupplyRecord) ProtoMessage()    {}

// Validate requires a source and a positive minted amount.
func (m *SupplyRecord) Validate() error {
	var errs error
	if m.OrderID == 0 {
		errs = errors.AppendField(errs, "OrderID", errors.ErrEmpty)
	}
	errs = errors.AppendField(errs, "From", m.From.Validate())
	if m.ToAmount == 0 {
		errs = errors.AppendField(errs, "ToAmount", errors.ErrAmount)
	}
	if m.PrincipalOutstanding > m.ToAmount || m.YieldOutstanding > m.ToAmount {
		errs = errors.AppendField(errs, "Outstanding", errors.ErrInvariant)
	}
	return errs
}

var (
	position = orm.NewSingleton("position")
	supplies = orm.NewModelBucket("supply", &SupplyRecord{})

	_ orm.Model = (*Position)(nil)
	_ orm.Model = (*SupplyRecord)(nil)
)

// supplyKey orders records by order id.
func supplyKey(orderID uint64) []byte {
	return orm.EncodeSequence(orderID)
}
