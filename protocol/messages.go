package protocol

import (
	"github.com/iov-one/fiva"
	"github.com/iov-one/fiva/cell"
	"github.com/iov-one/fiva/errors"
)

// Body is implemented by every message body. The concrete type of a decoded
// body identifies the operation.
type Body interface {
	Op() Op
	Query() uint64
	Encode() []byte
}

type decoder func(q uint64, s *cell.Slice) Body

var decoders = map[Op]decoder{}

func register(op Op, d decoder) {
	if _, ok := decoders[op]; ok {
		panic("decoder already registered for " + op.String())
	}
	decoders[op] = d
}

func header(op Op, q uint64) *cell.Builder {
	return cell.NewBuilder().Uint32(uint32(op)).Uint64(q)
}

// Header reads the opcode and query id of a body without decoding the rest.
func Header(raw []byte) (Op, uint64, error) {
	s := cell.NewSlice(raw)
	op := Op(s.Uint32())
	q := s.Uint64()
	return op, q, s.Err()
}

// Decode parses a body into its message type. Unknown opcodes return
// ErrUnknownOp.
func Decode(raw []byte) (Body, error) {
	s := cell.NewSlice(raw)
	op := Op(s.Uint32())
	q := s.Uint64()
	if err := s.Err(); err != nil {
		return nil, errors.Wrap(err, "header")
	}
	dec, ok := decoders[op]
	if !ok {
		return nil, errors.Wrapf(errors.ErrUnknownOp, "%s", op)
	}
	body := dec(q, s)
	if err := s.End(); err != nil {
		return nil, errors.Wrapf(err, "decode %s", op)
	}
	return body, nil
}

// Bounce returns the body of a bounced message.
func Bounce(raw []byte) []byte {
	return cell.NewBuilder().Uint32(BounceTag).Fixed(raw).Bytes()
}

// Unbounce strips the bounce tag. It returns false if raw is not a bounced
// body.
func Unbounce(raw []byte) ([]byte, bool) {
	s := cell.NewSlice(raw)
	if s.Uint32() != BounceTag || s.Err() != nil {
		return nil, false
	}
	return s.Rest(), true
}

// Leg selects which side of a position is redeemed.
type Leg uint8

const (
	// LegPrincipal is redeemed by burning PT.
	LegPrincipal Leg = 0
	// LegYield is redeemed by burning YT.
	LegYield Leg = 1
)

// String returns the leg name.
func (l Leg) String() string {
	switch l {
	case LegPrincipal:
		return "principal"
	case LegYield:
		return "yield"
	}
	return "unknown"
}

// Validate rejects unknown discriminators.
func (l Leg) Validate() error {
	if l != LegPrincipal && l != LegYield {
		return errors.Wrapf(errors.ErrInput, "leg %d", l)
	}
	return nil
}

// PairingPolicy decides what a User does with a single leg redeemed before
// maturity.
type PairingPolicy uint8

const (
	// PolicyHold keeps a lone leg pending until the opposite leg arrives.
	PolicyHold PairingPolicy = 0
	// PolicyReject refuses every leg redeemed before maturity, so the
	// redeemed jettons are refunded.
	PolicyReject PairingPolicy = 1
)

// String returns the policy name.
func (p PairingPolicy) String() string {
	switch p {
	case PolicyHold:
		return "hold"
	case PolicyReject:
		return "reject"
	}
	return "unknown"
}

// Validate rejects unknown policies.
func (p PairingPolicy) Validate() error {
	if p != PolicyHold && p != PolicyReject {
		return errors.Wrapf(errors.ErrInput, "policy %d", p)
	}
	return nil
}

// ParsePolicy reads a policy name. An empty name is the default hold
// policy.
func ParsePolicy(name string) (PairingPolicy, error) {
	switch name {
	case "", "hold":
		return PolicyHold, nil
	case "reject":
		return PolicyReject, nil
	}
	return 0, errors.Wrapf(errors.ErrInput, "unknown policy %q", name)
}

//------------------ jetton ------------------

// Transfer is sent by a jetton holder to its own wallet.
type Transfer struct {
	QueryID             uint64
	Amount              fiva.Coins
	Destination         fiva.Address
	ResponseDestination fiva.Address
	ForwardValue        fiva.Coins
	ForwardPayload      []byte
}

func (m *Transfer) Op() Op        { return OpTransfer }
func (m *Transfer) Query() uint64 { return m.QueryID }
func (m *Transfer) Encode() []byte {
	return header(OpTransfer, m.QueryID).
		Coins(m.Amount).
		Address(m.Destination).
		Address(m.ResponseDestination).
		Coins(m.ForwardValue).
		Ref(m.ForwardPayload).
		Bytes()
}

// TransferNotification tells the owner of a wallet that jettons arrived.
type TransferNotification struct {
	QueryID        uint64
	Amount         fiva.Coins
	Sender         fiva.Address
	ForwardPayload []byte
}

func (m *TransferNotification) Op() Op        { return OpTransferNotification }
func (m *TransferNotification) Query() uint64 { return m.QueryID }
func (m *TransferNotification) Encode() []byte {
	return header(OpTransferNotification, m.QueryID).
		Coins(m.Amount).
		Address(m.Sender).
		Ref(m.ForwardPayload).
		Bytes()
}

// InternalTransfer moves jettons between wallets of the same minter, or
// from the minter to a wallet when minting.
type InternalTransfer struct {
	QueryID         uint64
	Amount          fiva.Coins
	From            fiva.Address
	ResponseAddress fiva.Address
	ForwardValue    fiva.Coins
	ForwardPayload  []byte
}

func (m *InternalTransfer) Op() Op        { return OpInternalTransfer }
func (m *InternalTransfer) Query() uint64 { return m.QueryID }
func (m *InternalTransfer) Encode() []byte {
	return header(OpInternalTransfer, m.QueryID).
		Coins(m.Amount).
		Address(m.From).
		Address(m.ResponseAddress).
		Coins(m.ForwardValue).
		Ref(m.ForwardPayload).
		Bytes()
}

// Excesses returns unused value.
type Excesses struct {
	QueryID uint64
}

func (m *Excesses) Op() Op         { return OpExcesses }
func (m *Excesses) Query() uint64  { return m.QueryID }
func (m *Excesses) Encode() []byte { return header(OpExcesses, m.QueryID).Bytes() }

// Burn destroys jettons held by a wallet.
type Burn struct {
	QueryID             uint64
	Amount              fiva.Coins
	ResponseDestination fiva.Address
}

func (m *Burn) Op() Op        { return OpBurn }
func (m *Burn) Query() uint64 { return m.QueryID }
func (m *Burn) Encode() []byte {
	return header(OpBurn, m.QueryID).
		Coins(m.Amount).
		Address(m.ResponseDestination).
		Bytes()
}

// BurnNotification informs the minter that its supply decreased.
type BurnNotification struct {
	QueryID             uint64
	Amount              fiva.Coins
	Sender              fiva.Address
	ResponseDestination fiva.Address
}

func (m *BurnNotification) Op() Op        { return OpBurnNotification }
func (m *BurnNotification) Query() uint64 { return m.QueryID }
func (m *BurnNotification) Encode() []byte {
	return header(OpBurnNotification, m.QueryID).
		Coins(m.Amount).
		Address(m.Sender).
		Address(m.ResponseDestination).
		Bytes()
}

// ProvideWalletAddress asks a minter for the wallet address of an owner.
type ProvideWalletAddress struct {
	QueryID        uint64
	Owner          fiva.Address
	IncludeAddress bool
}

func (m *ProvideWalletAddress) Op() Op        { return OpProvideWalletAddress }
func (m *ProvideWalletAddress) Query() uint64 { return m.QueryID }
func (m *ProvideWalletAddress) Encode() []byte {
	return header(OpProvideWalletAddress, m.QueryID).
		Address(m.Owner).
		Bool(m.IncludeAddress).
		Bytes()
}

// TakeWalletAddress is the minter reply to ProvideWalletAddress.
type TakeWalletAddress struct {
	QueryID uint64
	Wallet  fiva.Address
	Owner   fiva.Address
}

func (m *TakeWalletAddress) Op() Op        { return OpTakeWalletAddress }
func (m *TakeWalletAddress) Query() uint64 { return m.QueryID }
func (m *TakeWalletAddress) Encode() []byte {
	return header(OpTakeWalletAddress, m.QueryID).
		Address(m.Wallet).
		Address(m.Owner).
		Bytes()
}

// Mint asks a minter to issue new jettons. Only the minter admin may mint.
type Mint struct {
	QueryID             uint64
	To                  fiva.Address
	Amount              fiva.Coins
	ResponseDestination fiva.Address
}

func (m *Mint) Op() Op        { return OpMint }
func (m *Mint) Query() uint64 { return m.QueryID }
func (m *Mint) Encode() []byte {
	return header(OpMint, m.QueryID).
		Address(m.To).
		Coins(m.Amount).
		Address(m.ResponseDestination).
		Bytes()
}

//------------------ market ------------------

// Supply is the forward payload of an underlying transfer to the Master.
type Supply struct {
	QueryID  uint64
	PTMinter fiva.Address
	YTMinter fiva.Address
	// Recipient receives the minted PT and YT. Empty means the depositor.
	Recipient fiva.Address
}

func (m *Supply) Op() Op        { return OpSupply }
func (m *Supply) Query() uint64 { return m.QueryID }
func (m *Supply) Encode() []byte {
	return header(OpSupply, m.QueryID).
		Address(m.PTMinter).
		Address(m.YTMinter).
		Address(m.Recipient).
		Bytes()
}

// Deposit is sent by the Master to the User sub-ledger of a depositor.
type Deposit struct {
	QueryID      uint64
	OrderID      uint64
	Depositor    fiva.Address
	Amount       fiva.Coins
	Recipient    fiva.Address
	Minted       fiva.Coins
	MasterWallet fiva.Address
	PTMinter     fiva.Address
	YTMinter     fiva.Address
	Index        fiva.Index
	Maturity     fiva.UnixTime
	Policy       PairingPolicy
}

func (m *Deposit) Op() Op        { return OpDeposit }
func (m *Deposit) Query() uint64 { return m.QueryID }
func (m *Deposit) Encode() []byte {
	return header(OpDeposit, m.QueryID).
		Uint64(m.OrderID).
		Address(m.Depositor).
		Coins(m.Amount).
		Address(m.Recipient).
		Coins(m.Minted).
		Address(m.MasterWallet).
		Address(m.PTMinter).
		Address(m.YTMinter).
		Uint64(uint64(m.Index)).
		Uint64(uint64(m.Maturity)).
		Uint8(uint8(m.Policy)).
		Bytes()
}

// Redeem is the forward payload of a PT or YT transfer to the Master.
type Redeem struct {
	QueryID uint64
	// Destination receives the underlying. Empty means the holder.
	Destination fiva.Address
}

func (m *Redeem) Op() Op        { return OpRedeem }
func (m *Redeem) Query() uint64 { return m.QueryID }
func (m *Redeem) Encode() []byte {
	return header(OpRedeem, m.QueryID).
		Address(m.Destination).
		Bytes()
}

// RedeemNotification is sent by the Master to the User sub-ledger of the
// holder, carrying the index current at the Master.
type RedeemNotification struct {
	QueryID     uint64
	Leg         Leg
	Amount      fiva.Coins
	Holder      fiva.Address
	Destination fiva.Address
	Index       fiva.Index
}

func (m *RedeemNotification) Op() Op        { return OpRedeemNotification }
func (m *RedeemNotification) Query() uint64 { return m.QueryID }
func (m *RedeemNotification) Encode() []byte {
	return header(OpRedeemNotification, m.QueryID).
		Uint8(uint8(m.Leg)).
		Coins(m.Amount).
		Address(m.Holder).
		Address(m.Destination).
		Uint64(uint64(m.Index)).
		Bytes()
}

// RedeemSettlement instructs the Master to burn the redeemed jettons and
// release underlying.
type RedeemSettlement struct {
	QueryID     uint64
	Owner       fiva.Address
	Principal   fiva.Coins
	Yield       fiva.Coins
	Payout      fiva.Coins
	Destination fiva.Address
}

func (m *RedeemSettlement) Op() Op        { return OpRedeemSettlement }
func (m *RedeemSettlement) Query() uint64 { return m.QueryID }
func (m *RedeemSettlement) Encode() []byte {
	return header(OpRedeemSettlement, m.QueryID).
		Address(m.Owner).
		Coins(m.Principal).
		Coins(m.Yield).
		Coins(m.Payout).
		Address(m.Destination).
		Bytes()
}

// Dump asks a contract to send its serialized state back.
type Dump struct {
	QueryID uint64
}

func (m *Dump) Op() Op         { return OpDump }
func (m *Dump) Query() uint64  { return m.QueryID }
func (m *Dump) Encode() []byte { return header(OpDump, m.QueryID).Bytes() }

// DumpReply carries the serialized state.
type DumpReply struct {
	QueryID uint64
	Data    []byte
}

func (m *DumpReply) Op() Op        { return OpDumpReply }
func (m *DumpReply) Query() uint64 { return m.QueryID }
func (m *DumpReply) Encode() []byte {
	return header(OpDumpReply, m.QueryID).Ref(m.Data).Bytes()
}

//------------------ admin ------------------

// UpdateIndex sets a new interest index.
type UpdateIndex struct {
	QueryID uint64
	Index   fiva.Index
}

func (m *UpdateIndex) Op() Op        { return OpUpdateIndex }
func (m *UpdateIndex) Query() uint64 { return m.QueryID }
func (m *UpdateIndex) Encode() []byte {
	return header(OpUpdateIndex, m.QueryID).Uint64(uint64(m.Index)).Bytes()
}

// SetPTMinter sets the PT minter once.
type SetPTMinter struct {
	QueryID uint64
	Minter  fiva.Address
}

func (m *SetPTMinter) Op() Op        { return OpSetPTMinter }
func (m *SetPTMinter) Query() uint64 { return m.QueryID }
func (m *SetPTMinter) Encode() []byte {
	return header(OpSetPTMinter, m.QueryID).Address(m.Minter).Bytes()
}

// SetYTMinter sets the YT minter once.
type SetYTMinter struct {
	QueryID uint64
	Minter  fiva.Address
}

func (m *SetYTMinter) Op() Op        { return OpSetYTMinter }
func (m *SetYTMinter) Query() uint64 { return m.QueryID }
func (m *SetYTMinter) Encode() []byte {
	return header(OpSetYTMinter, m.QueryID).Address(m.Minter).Bytes()
}

// UpdateWalletAddr asks the Master to refresh its underlying wallet
// address from the underlying minter.
type UpdateWalletAddr struct {
	QueryID uint64
}

func (m *UpdateWalletAddr) Op() Op         { return OpUpdateWalletAddr }
func (m *UpdateWalletAddr) Query() uint64  { return m.QueryID }
func (m *UpdateWalletAddr) Encode() []byte { return header(OpUpdateWalletAddr, m.QueryID).Bytes() }

func init() {
	register(OpTransfer, func(q uint64, s *cell.Slice) Body {
		return &Transfer{QueryID: q, Amount: s.Coins(), Destination: s.Address(),
			ResponseDestination: s.Address(), ForwardValue: s.Coins(), ForwardPayload: s.Ref()}
	})
	register(OpTransferNotification, func(q uint64, s *cell.Slice) Body {
		return &TransferNotification{QueryID: q, Amount: s.Coins(), Sender: s.Address(), ForwardPayload: s.Ref()}
	})
	register(OpInternalTransfer, func(q uint64, s *cell.Slice) Body {
		return &InternalTransfer{QueryID: q, Amount: s.Coins(), From: s.Address(),
			ResponseAddress: s.Address(), ForwardValue: s.Coins(), ForwardPayload: s.Ref()}
	})
	register(OpExcesses, func(q uint64, s *cell.Slice) Body {
		return &Excesses{QueryID: q}
	})
	register(OpBurn, func(q uint64, s *cell.Slice) Body {
		return &Burn{QueryID: q, Amount: s.Coins(), ResponseDestination: s.Address()}
	})
	register(OpBurnNotification, func(q uint64, s *cell.Slice) Body {
		return &BurnNotification{QueryID: q, Amount: s.Coins(), Sender: s.Address(), ResponseDestination: s.Address()}
	})
	register(OpProvideWalletAddress, func(q uint64, s *cell.Slice) Body {
		return &ProvideWalletAddress{QueryID: q, Owner: s.Address(), IncludeAddress: s.Bool()}
	})
	register(OpTakeWalletAddress, func(q uint64, s *cell.Slice) Body {
		return &TakeWalletAddress{QueryID: q, Wallet: s.Address(), Owner: s.Address()}
	})
	register(OpMint, func(q uint64, s *cell.Slice) Body {
		return &Mint{QueryID: q, To: s.Address(), Amount: s.Coins(), ResponseDestination: s.Address()}
	})
	register(OpSupply, func(q uint64, s *cell.Slice) Body {
		return &Supply{QueryID: q, PTMinter: s.Address(), YTMinter: s.Address(), Recipient: s.Address()}
	})
	register(OpDeposit, func(q uint64, s *cell.Slice) Body {
		return &Deposit{
			QueryID:      q,
			OrderID:      s.Uint64(),
			Depositor:    s.Address(),
			Amount:       s.Coins(),
			Recipient:    s.Address(),
			Minted:       s.Coins(),
			MasterWallet: s.Address(),
			PTMinter:     s.Address(),
			YTMinter:     s.Address(),
			Index:        fiva.Index(s.Uint64()),
			Maturity:     fiva.UnixTime(s.Uint64()),
			Policy:       PairingPolicy(s.Uint8()),
		}
	})
	register(OpRedeem, func(q uint64, s *cell.Slice) Body {
		return &Redeem{QueryID: q, Destination: s.Address()}
	})
	register(OpRedeemNotification, func(q uint64, s *cell.Slice) Body {
		return &RedeemNotification{QueryID: q, Leg: Leg(s.Uint8()), Amount: s.Coins(),
			Holder: s.Address(), Destination: s.Address(), Index: fiva.Index(s.Uint64())}
	})
	register(OpRedeemSettlement, func(q uint64, s *cell.Slice) Body {
		return &RedeemSettlement{QueryID: q, Owner: s.Address(), Principal: s.Coins(),
			Yield: s.Coins(), Payout: s.Coins(), Destination: s.Address()}
	})
	register(OpDump, func(q uint64, s *cell.Slice) Body {
		return &Dump{QueryID: q}
	})
	register(OpDumpReply, func(q uint64, s *cell.Slice) Body {
		return &DumpReply{QueryID: q, Data: s.Ref()}
	})
	register(OpUpdateIndex, func(q uint64, s *cell.Slice) Body {
		return &UpdateIndex{QueryID: q, Index: fiva.Index(s.Uint64())}
	})
	register(OpSetPTMinter, func(q uint64, s *cell.Slice) Body {
		return &SetPTMinter{QueryID: q, Minter: s.Address()}
	})
	register(OpSetYTMinter, func(q uint64, s *cell.Slice) Body {
		return &SetYTMinter{QueryID: q, Minter: s.Address()}
	})
	register(OpUpdateWalletAddr, func(q uint64, s *cell.Slice) Body {
		return &UpdateWalletAddr{QueryID: q}
	})
}
