package master

import (
	"github.com/iov-one/fiva"
	"github.com/iov-one/fiva/errors"
	"github.com/iov-one/fiva/metrics"
	"github.com/iov-one/fiva/orm"
	"github.com/iov-one/fiva/protocol"
	"github.com/iov-one/fiva/x/jetton"
	"github.com/iov-one/fiva/x/user"
)

// Contract is the Master ledger code.
type Contract struct{}

var (
	_ fiva.Contract         = Contract{}
	_ fiva.ExternalReceiver = Contract{}
)

// Init stores the Market carried by the StateInit data.
func (Contract) Init(ctx fiva.Context, db fiva.KVStore, data []byte) error {
	var m Market
	if err := orm.Unmarshal(data, &m); err != nil {
		return err
	}
	m.AdminSeq = 0
	m.Supplied = 0
	if err := market.Save(db, &m); err != nil {
		return err
	}
	metrics.MarketIndex.WithLabelValues(fiva.Self(ctx).String()).Set(float64(m.Index))
	return nil
}

// Receive dispatches internal messages.
func (c Contract) Receive(ctx fiva.Context, db fiva.KVStore, msg fiva.Message) (*fiva.Result, error) {
	var m Market
	if err := market.Load(db, &m); err != nil {
		return nil, err
	}
	if msg.Bounced {
		return c.bounced(ctx, &m, msg)
	}

	body, err := protocol.Decode(msg.Body)
	if err != nil {
		return nil, err
	}
	self := fiva.Self(ctx)

	switch b := body.(type) {
	case *protocol.TransferNotification:
		switch {
		case !m.UnderlyingWallet.Empty() && msg.From.Equals(m.UnderlyingWallet):
			return c.supply(ctx, db, &m, b)
		case !m.PTMinter.Empty() && msg.From.Equals(jetton.WalletAddress(self, m.PTMinter)):
			return c.redeem(ctx, &m, protocol.LegPrincipal, b)
		case !m.YTMinter.Empty() && msg.From.Equals(jetton.WalletAddress(self, m.YTMinter)):
			return c.redeem(ctx, &m, protocol.LegYield, b)
		}
		return nil, errors.Wrap(errors.ErrUnknownCaller, "transfer notification from a foreign wallet")

	case *protocol.RedeemSettlement:
		if !msg.From.Equals(user.InitWithCode(m.UserCode, self, b.Owner).Address()) {
			return nil, errors.Wrap(errors.ErrUnknownCaller, "settlement not from the owner's user")
		}
		return c.settle(ctx, db, &m, b)

	case *protocol.TakeWalletAddress:
		if !msg.From.Equals(m.UnderlyingMinter) {
			return nil, errors.Wrap(errors.ErrUnknownCaller, "wallet address not from the underlying minter")
		}
		if err := b.Wallet.Validate(); err != nil {
			return nil, errors.Field("Wallet", err, "underlying wallet")
		}
		m.UnderlyingWallet = b.Wallet
		if err := market.Save(db, &m); err != nil {
			return nil, err
		}
		return &fiva.Result{Log: "underlying wallet updated"}, nil

	case *protocol.Excesses:
		return nil, nil

	case *protocol.Dump:
		raw, err := orm.Marshal(&m)
		if err != nil {
			return nil, err
		}
		return &fiva.Result{Messages: []fiva.Message{{
			To:         msg.From,
			CarryValue: true,
			Body:       (&protocol.DumpReply{QueryID: b.QueryID, Data: raw}).Encode(),
		}}}, nil
	}
	return nil, errors.Wrapf(errors.ErrUnknownOp, "master: %s", body.Op())
}

// supply handles underlying arriving at the Master wallet. A rejected
// supply succeeds with a refund, so that the underlying returns to the
// depositor.
func (c Contract) supply(ctx fiva.Context, db fiva.KVStore, m *Market, n *protocol.TransferNotification) (*fiva.Result, error) {
	self := fiva.Self(ctx)
	label := self.String()
	s, reason := c.checkSupply(ctx, m, n)
	if reason != nil {
		metrics.MessagesTotal.WithLabelValues(protocol.OpSupply.String(), metrics.OutcomeRejected).Inc()
		fiva.GetLogger(ctx).Info("supply rejected", "from", n.Sender, "amount", n.Amount, "reason", reason)
		return refund(m.UnderlyingWallet, n.QueryID, n.Amount, n.Sender, reason), nil
	}

	orderID, err := orders.NextInt(db)
	if err != nil {
		return nil, err
	}
	if m.Supplied, err = m.Supplied.Add(n.Amount); err != nil {
		return nil, err
	}
	if err := market.Save(db, m); err != nil {
		return nil, err
	}

	holder := n.Sender
	if !s.Recipient.Empty() {
		holder = s.Recipient
	}
	init := m.UserInit(self, holder)
	deposit := &protocol.Deposit{
		QueryID:      n.QueryID,
		OrderID:      orderID,
		Depositor:    n.Sender,
		Amount:       n.Amount,
		Recipient:    holder,
		Minted:       n.Amount,
		MasterWallet: m.UnderlyingWallet,
		PTMinter:     m.PTMinter,
		YTMinter:     m.YTMinter,
		Index:        m.Index,
		Maturity:     m.Maturity,
		Policy:       protocol.PairingPolicy(m.Policy),
	}
	mint := func(minter fiva.Address) fiva.Message {
		body := &protocol.Mint{QueryID: n.QueryID, To: holder, Amount: n.Amount, ResponseDestination: n.Sender}
		return fiva.Message{To: minter, Value: m.ForwardValue, Bounce: true, Body: body.Encode()}
	}

	metrics.SuppliedTotal.WithLabelValues(label).Add(float64(n.Amount))
	fiva.GetLogger(ctx).Debug("supply accepted", "order", orderID, "holder", holder, "amount", n.Amount)
	return &fiva.Result{
		Log: "supply accepted",
		Messages: []fiva.Message{
			{To: init.Address(), Init: &init, Value: m.ForwardValue, Bounce: true, Body: deposit.Encode()},
			mint(m.PTMinter),
			mint(m.YTMinter),
		},
	}, nil
}

// checkSupply decodes the supply payload, or returns the reason the
// supply cannot be accepted.
func (Contract) checkSupply(ctx fiva.Context, m *Market, n *protocol.TransferNotification) (*protocol.Supply, error) {
	if n.Amount == 0 {
		return nil, errors.Wrap(errors.ErrAmount, "zero supply")
	}
	if m.PTMinter.Empty() || m.YTMinter.Empty() {
		return nil, errors.Wrap(errors.ErrState, "minters not configured")
	}
	if fiva.IsExpired(ctx, m.Maturity) {
		return nil, errors.Wrap(errors.ErrExpired, "market matured")
	}
	payload, err := protocol.Decode(n.ForwardPayload)
	if err != nil {
		return nil, errors.Wrap(err, "supply payload")
	}
	s, ok := payload.(*protocol.Supply)
	if !ok {
		return nil, errors.Wrapf(errors.ErrUnknownOp, "payload %s is not a supply", payload.Op())
	}
	if !s.PTMinter.Equals(m.PTMinter) || !s.YTMinter.Equals(m.YTMinter) {
		return nil, errors.Wrap(errors.ErrInput, "supply names foreign minters")
	}
	return s, nil
}

// redeem forwards a PT or YT redemption to the User of the holder together
// with the current index.
func (Contract) redeem(ctx fiva.Context, m *Market, leg protocol.Leg, n *protocol.TransferNotification) (*fiva.Result, error) {
	self := fiva.Self(ctx)
	minter := m.PTMinter
	if leg == protocol.LegYield {
		minter = m.YTMinter
	}
	wallet := jetton.WalletAddress(self, minter)

	payload, err := protocol.Decode(n.ForwardPayload)
	if err != nil {
		return refund(wallet, n.QueryID, n.Amount, n.Sender, err), nil
	}
	r, ok := payload.(*protocol.Redeem)
	// A zero amount is forwarded, after maturity it claims held legs.
	if !ok {
		return refund(wallet, n.QueryID, n.Amount, n.Sender, errors.Wrap(errors.ErrInput, "not a redemption")), nil
	}
	dest := r.Destination
	if dest.Empty() {
		dest = n.Sender
	}
	note := &protocol.RedeemNotification{
		QueryID:     n.QueryID,
		Leg:         leg,
		Amount:      n.Amount,
		Holder:      n.Sender,
		Destination: dest,
		Index:       m.Index,
	}
	return &fiva.Result{Messages: []fiva.Message{{
		To:         m.UserInit(self, n.Sender).Address(),
		Bounce:     true,
		CarryValue: true,
		Body:       note.Encode(),
	}}}, nil
}

// settle burns the redeemed jettons and releases the payout.
func (Contract) settle(ctx fiva.Context, db fiva.KVStore, m *Market, s *protocol.RedeemSettlement) (*fiva.Result, error) {
	self := fiva.Self(ctx)
	var err error
	if m.Supplied, err = m.Supplied.Sub(s.Principal); err != nil {
		return nil, errors.Wrap(errors.ErrInvariant, "settlement exceeds supplied underlying")
	}
	if err := market.Save(db, m); err != nil {
		return nil, err
	}

	var out []fiva.Message
	burn := func(minter fiva.Address, amount fiva.Coins) {
		if amount == 0 {
			return
		}
		body := &protocol.Burn{QueryID: s.QueryID, Amount: amount}
		out = append(out, fiva.Message{
			To:     jetton.WalletAddress(self, minter),
			Value:  m.ForwardValue,
			Bounce: true,
			Body:   body.Encode(),
		})
	}
	burn(m.PTMinter, s.Principal)
	burn(m.YTMinter, s.Yield)
	if s.Payout > 0 {
		transfer := &protocol.Transfer{
			QueryID:             s.QueryID,
			Amount:              s.Payout,
			Destination:         s.Destination,
			ResponseDestination: s.Destination,
		}
		out = append(out, fiva.Message{
			To:     m.UnderlyingWallet,
			Value:  m.ForwardValue,
			Bounce: true,
			Body:   transfer.Encode(),
		})
	}
	metrics.RedeemedTotal.WithLabelValues(self.String()).Add(float64(s.Payout))
	fiva.GetLogger(ctx).Debug("redemption settled", "owner", s.Owner, "payout", s.Payout)
	return &fiva.Result{Messages: out, Log: "redemption settled"}, nil
}

// bounced refunds jettons of redemptions the User refused. Other bounces
// are left for reconciliation by the operator.
func (Contract) bounced(ctx fiva.Context, m *Market, msg fiva.Message) (*fiva.Result, error) {
	logger := fiva.GetLogger(ctx)
	raw, ok := protocol.Unbounce(msg.Body)
	if !ok {
		return nil, nil
	}
	body, err := protocol.Decode(raw)
	if err != nil {
		logger.Error("undecodable bounce", "from", msg.From, "err", err)
		return nil, nil
	}
	switch b := body.(type) {
	case *protocol.RedeemNotification:
		minter := m.PTMinter
		if b.Leg == protocol.LegYield {
			minter = m.YTMinter
		}
		wallet := jetton.WalletAddress(fiva.Self(ctx), minter)
		logger.Info("redemption refused, refunding", "holder", b.Holder, "leg", b.Leg, "amount", b.Amount)
		return refund(wallet, b.QueryID, b.Amount, b.Holder, errors.ErrInvariant), nil
	default:
		logger.Error("message bounced, reconciliation required", "op", body.Op(), "to", msg.From, "value", msg.Value)
	}
	return nil, nil
}

// refund returns jettons held in one of the Master wallets to their owner,
// paid with the value that came with the message being refused.
func refund(wallet fiva.Address, queryID uint64, amount fiva.Coins, to fiva.Address, reason error) *fiva.Result {
	transfer := &protocol.Transfer{
		QueryID:             queryID,
		Amount:              amount,
		Destination:         to,
		ResponseDestination: to,
	}
	return &fiva.Result{
		Log: "refund: " + reason.Error(),
		Messages: []fiva.Message{{
			To:         wallet,
			CarryValue: true,
			Body:       transfer.Encode(),
		}},
	}
}
