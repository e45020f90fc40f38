package user

import (
	"github.com/iov-one/fiva"
	"github.com/iov-one/fiva/cell"
	"github.com/iov-one/fiva/errors"
	"github.com/iov-one/fiva/orm"
	"github.com/iov-one/fiva/protocol"
)

// Contract is the User sub-ledger code.
type Contract struct{}

var _ fiva.Contract = Contract{}

// Init stores the owner and the Master of the Position.
func (Contract) Init(ctx fiva.Context, db fiva.KVStore, data []byte) error {
	s := cell.NewSlice(data)
	pos := Position{Owner: s.Address(), Master: s.Address()}
	if err := s.End(); err != nil {
		return errors.Wrap(err, "user data")
	}
	return position.Save(db, &pos)
}

// Receive handles deposit, redeem_notification and dump.
func (c Contract) Receive(ctx fiva.Context, db fiva.KVStore, msg fiva.Message) (*fiva.Result, error) {
	var pos Position
	if err := position.Load(db, &pos); err != nil {
		return nil, err
	}
	if msg.Bounced {
		// Settlements are not bounceable. Only a dump reply can come back.
		return nil, nil
	}
	body, err := protocol.Decode(msg.Body)
	if err != nil {
		return nil, err
	}

	switch b := body.(type) {
	case *protocol.Deposit:
		if !msg.From.Equals(pos.Master) {
			return nil, errors.Wrap(errors.ErrUnknownCaller, "deposit not from master")
		}
		return c.deposit(ctx, db, &pos, b)
	case *protocol.RedeemNotification:
		if !msg.From.Equals(pos.Master) {
			return nil, errors.Wrap(errors.ErrUnknownCaller, "redeem notification not from master")
		}
		return c.redeem(ctx, db, &pos, b)
	case *protocol.Dump:
		raw, err := orm.Marshal(&pos)
		if err != nil {
			return nil, err
		}
		return &fiva.Result{Messages: []fiva.Message{{
			To:         msg.From,
			CarryValue: true,
			Body:       (&protocol.DumpReply{QueryID: b.QueryID, Data: raw}).Encode(),
		}}}, nil
	}
	return nil, errors.Wrapf(errors.ErrUnknownOp, "user: %s", body.Op())
}

func (Contract) deposit(ctx fiva.Context, db fiva.KVStore, pos *Position, d *protocol.Deposit) (*fiva.Result, error) {
	if d.Minted == 0 {
		return nil, errors.Wrap(errors.ErrAmount, "nothing minted")
	}
	if err := d.Index.Validate(); err != nil {
		return nil, errors.Field("Index", err, "deposit index")
	}
	if err := d.Policy.Validate(); err != nil {
		return nil, err
	}
	key := supplyKey(d.OrderID)
	switch has, err := supplies.Has(db, key); {
	case err != nil:
		return nil, err
	case has:
		return nil, errors.Wrapf(errors.ErrDuplicate, "order %d", d.OrderID)
	}

	if pos.Empty() {
		pos.IndexSnapshot = d.Index
		pos.Maturity = d.Maturity
		pos.Policy = uint32(d.Policy)
	}
	var err error
	if pos.Principal, err = pos.Principal.Add(d.Minted); err != nil {
		return nil, err
	}
	if pos.YTBalance, err = pos.YTBalance.Add(d.Minted); err != nil {
		return nil, err
	}

	rec := SupplyRecord{
		OrderID:              d.OrderID,
		From:                 d.Depositor,
		FromAmount:           d.Amount,
		To:                   d.Recipient,
		ToAmount:             d.Minted,
		ToMaster:             d.MasterWallet,
		PrincipalOutstanding: d.Minted,
		YieldOutstanding:     d.Minted,
	}
	if err := supplies.Put(db, key, &rec); err != nil {
		return nil, err
	}
	if err := position.Save(db, pos); err != nil {
		return nil, err
	}
	fiva.GetLogger(ctx).Debug("deposit recorded", "order", d.OrderID, "amount", d.Minted, "snapshot", pos.IndexSnapshot)
	return &fiva.Result{Log: "deposit recorded"}, nil
}

func (Contract) redeem(ctx fiva.Context, db fiva.KVStore, pos *Position, n *protocol.RedeemNotification) (*fiva.Result, error) {
	if err := n.Leg.Validate(); err != nil {
		return nil, err
	}
	matured := fiva.IsExpired(ctx, pos.Maturity)
	// After maturity a zero amount claims the legs held before it.
	if n.Amount == 0 && (!matured || pos.PendingPrincipal+pos.PendingYield == 0) {
		return nil, errors.Wrap(errors.ErrAmount, "zero redemption")
	}
	if err := n.Index.Validate(); err != nil {
		return nil, errors.Field("Index", err, "redeem index")
	}
	if !n.Holder.Equals(pos.Owner) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "holder does not own this position")
	}
	outstanding, pending := pos.outstanding(n.Leg)
	if n.Amount > outstanding-pending {
		return nil, errors.Wrapf(errors.ErrInvariant, "%s redemption of %d exceeds outstanding %d", n.Leg, n.Amount, outstanding-pending)
	}

	var principal, yield, payout fiva.Coins
	if matured {
		// Legs are independent, held legs are released with any
		// redemption of either leg.
		principal, yield = pos.PendingPrincipal, pos.PendingYield
		pos.PendingPrincipal, pos.PendingYield = 0, 0
		if n.Leg == protocol.LegPrincipal {
			principal += n.Amount
		} else {
			yield += n.Amount
		}
		interest, err := Interest(yield, n.Index, pos.IndexSnapshot)
		if err != nil {
			return nil, err
		}
		payout = principal + interest
		pos.PrincipalPaid += principal
		pos.InterestPaid += interest
	} else {
		if protocol.PairingPolicy(pos.Policy) == protocol.PolicyReject {
			return nil, errors.Wrapf(errors.ErrInvariant, "lone %s leg before maturity", n.Leg)
		}
		if n.Leg == protocol.LegPrincipal {
			pos.PendingPrincipal += n.Amount
		} else {
			pos.PendingYield += n.Amount
		}
		matched := pos.PendingPrincipal
		if pos.PendingYield < matched {
			matched = pos.PendingYield
		}
		if matched == 0 {
			if err := position.Save(db, pos); err != nil {
				return nil, err
			}
			return &fiva.Result{Log: "leg held until its pair arrives"}, nil
		}
		pos.PendingPrincipal -= matched
		pos.PendingYield -= matched
		principal, yield = matched, matched
		// A matched pair is worth b * snapshot / snapshot.
		payout = matched
		pos.PrincipalPaid += payout
	}

	if err := drain(db, principal, yield); err != nil {
		return nil, err
	}
	pos.Principal -= principal
	pos.YTBalance -= yield
	if err := position.Save(db, pos); err != nil {
		return nil, err
	}

	dest := n.Destination
	if dest.Empty() {
		dest = pos.Owner
	}
	settlement := &protocol.RedeemSettlement{
		QueryID:     n.QueryID,
		Owner:       pos.Owner,
		Principal:   principal,
		Yield:       yield,
		Payout:      payout,
		Destination: dest,
	}
	fiva.GetLogger(ctx).Debug("redemption settled",
		"principal", principal, "yield", yield, "payout", payout, "index", n.Index)
	return &fiva.Result{Messages: []fiva.Message{{
		To:         pos.Master,
		CarryValue: true,
		Body:       settlement.Encode(),
	}}}, nil
}

// drain decrements the outstanding legs of supply records in order id
// order and removes the records that reach zero on both legs.
func drain(db fiva.KVStore, principal, yield fiva.Coins) error {
	type entry struct {
		key []byte
		rec SupplyRecord
	}
	var (
		entries []entry
		rec     SupplyRecord
	)
	err := supplies.Each(db, &rec, func(key []byte) error {
		entries = append(entries, entry{key: key, rec: rec})
		return nil
	})
	if err != nil {
		return err
	}

	for _, e := range entries {
		if principal == 0 && yield == 0 {
			break
		}
		p := minCoins(principal, e.rec.PrincipalOutstanding)
		y := minCoins(yield, e.rec.YieldOutstanding)
		if p == 0 && y == 0 {
			continue
		}
		principal -= p
		yield -= y
		e.rec.PrincipalOutstanding -= p
		e.rec.YieldOutstanding -= y
		if e.rec.PrincipalOutstanding == 0 && e.rec.YieldOutstanding == 0 {
			err = supplies.Delete(db, e.key)
		} else {
			err = supplies.Put(db, e.key, &e.rec)
		}
		if err != nil {
			return err
		}
	}
	if principal != 0 || yield != 0 {
		return errors.Wrap(errors.ErrInvariant, "supply records do not cover the redemption")
	}
	return nil
}

func minCoins(a, b fiva.Coins) fiva.Coins {
	if a < b {
		return a
	}
	return b
}

// Get serves the User getters.
func (Contract) Get(ctx fiva.Context, db fiva.ReadOnlyKVStore, method string, args []byte) ([]byte, error) {
	var pos Position
	if err := position.Load(db, &pos); err != nil {
		return nil, err
	}
	switch method {
	case "get_maturity":
		return cell.NewBuilder().Uint64(uint64(pos.Maturity)).Bytes(), nil
	case "get_index":
		return cell.NewBuilder().Uint64(uint64(pos.IndexSnapshot)).Bytes(), nil
	case "get_master_addr":
		return cell.NewBuilder().Address(pos.Master).Bytes(), nil
	case "get_interest":
		s := cell.NewSlice(args)
		index := fiva.Index(s.Uint64())
		if err := s.End(); err != nil {
			return nil, errors.Wrap(err, "index argument")
		}
		var interest fiva.Coins
		if !pos.Empty() {
			var err error
			if interest, err = Interest(pos.YTBalance, index, pos.IndexSnapshot); err != nil {
				return nil, err
			}
		}
		return cell.NewBuilder().Coins(interest).Bytes(), nil
	case "get_position":
		return orm.Marshal(&pos)
	case "get_supply":
		s := cell.NewSlice(args)
		orderID := s.Uint64()
		if err := s.End(); err != nil {
			return nil, errors.Wrap(err, "order argument")
		}
		var rec SupplyRecord
		if err := supplies.One(db, supplyKey(orderID), &rec); err != nil {
			return nil, err
		}
		return orm.Marshal(&rec)
	}
	return nil, errors.Wrapf(errors.ErrUnknownOp, "getter %q", method)
}

// DecodePosition parses the get_position getter result.
func DecodePosition(raw []byte) (*Position, error) {
	var pos Position
	if err := orm.Unmarshal(raw, &pos); err != nil {
		return nil, err
	}
	return &pos, nil
}

// DecodeSupply parses the get_supply getter result.
func DecodeSupply(raw []byte) (*SupplyRecord, error) {
	var rec SupplyRecord
	if err := orm.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}
