package jetton

import (
	"github.com/iov-one/fiva"
	"github.com/iov-one/fiva/cell"
	"github.com/iov-one/fiva/errors"
	"github.com/iov-one/fiva/protocol"
)

// Minter is the contract issuing a token.
type Minter struct{}

var _ fiva.Contract = Minter{}

// Init stores the admin and content from MinterInit data.
func (Minter) Init(ctx fiva.Context, db fiva.KVStore, data []byte) error {
	s := cell.NewSlice(data)
	state := MinterState{Admin: s.Address(), Content: s.String()}
	if err := s.End(); err != nil {
		return errors.Wrap(err, "minter data")
	}
	return minterState.Save(db, &state)
}

// Receive handles mint, burn_notification and provide_wallet_address.
func (m Minter) Receive(ctx fiva.Context, db fiva.KVStore, msg fiva.Message) (*fiva.Result, error) {
	var state MinterState
	if err := minterState.Load(db, &state); err != nil {
		return nil, err
	}
	self := fiva.Self(ctx)

	if msg.Bounced {
		return m.bounced(ctx, db, &state, msg)
	}

	body, err := protocol.Decode(msg.Body)
	if err != nil {
		return nil, err
	}
	switch b := body.(type) {
	case *protocol.Mint:
		if !msg.From.Equals(state.Admin) {
			return nil, errors.Wrap(errors.ErrUnauthorized, "only admin can mint")
		}
		if err := b.To.Validate(); err != nil {
			return nil, errors.Field("To", err, "mint recipient")
		}
		if state.TotalSupply, err = state.TotalSupply.Add(b.Amount); err != nil {
			return nil, err
		}
		init := WalletInit(b.To, self)
		transfer := &protocol.InternalTransfer{
			QueryID:         b.QueryID,
			Amount:          b.Amount,
			From:            self,
			ResponseAddress: b.ResponseDestination,
		}
		if err := minterState.Save(db, &state); err != nil {
			return nil, err
		}
		return &fiva.Result{Messages: []fiva.Message{{
			To:         init.Address(),
			Init:       &init,
			Bounce:     true,
			CarryValue: true,
			Body:       transfer.Encode(),
		}}}, nil

	case *protocol.BurnNotification:
		if !msg.From.Equals(WalletAddress(b.Sender, self)) {
			return nil, errors.Wrap(errors.ErrUnknownCaller, "burn notification not from a wallet")
		}
		if state.TotalSupply, err = state.TotalSupply.Sub(b.Amount); err != nil {
			return nil, errors.Wrap(errors.ErrInvariant, "burn exceeds total supply")
		}
		if err := minterState.Save(db, &state); err != nil {
			return nil, err
		}
		if b.ResponseDestination.Empty() {
			return nil, nil
		}
		return &fiva.Result{Messages: []fiva.Message{{
			To:         b.ResponseDestination,
			CarryValue: true,
			Body:       (&protocol.Excesses{QueryID: b.QueryID}).Encode(),
		}}}, nil

	case *protocol.ProvideWalletAddress:
		reply := &protocol.TakeWalletAddress{QueryID: b.QueryID, Wallet: WalletAddress(b.Owner, self)}
		if b.IncludeAddress {
			reply.Owner = b.Owner
		}
		return &fiva.Result{Messages: []fiva.Message{{
			To:         msg.From,
			CarryValue: true,
			Body:       reply.Encode(),
		}}}, nil
	}
	return nil, errors.Wrapf(errors.ErrUnknownOp, "minter: %s", body.Op())
}

// bounced reverts the supply increase of a mint that did not reach its
// wallet.
func (Minter) bounced(ctx fiva.Context, db fiva.KVStore, state *MinterState, msg fiva.Message) (*fiva.Result, error) {
	raw, ok := protocol.Unbounce(msg.Body)
	if !ok {
		return nil, nil
	}
	body, err := protocol.Decode(raw)
	if err != nil {
		return nil, nil
	}
	if t, ok := body.(*protocol.InternalTransfer); ok {
		if state.TotalSupply, err = state.TotalSupply.Sub(t.Amount); err != nil {
			return nil, errors.Wrap(errors.ErrInvariant, "bounced mint exceeds total supply")
		}
		fiva.GetLogger(ctx).Info("mint bounced", "amount", t.Amount)
		return nil, minterState.Save(db, state)
	}
	return nil, nil
}

// Get serves get_jetton_data and get_wallet_address.
func (Minter) Get(ctx fiva.Context, db fiva.ReadOnlyKVStore, method string, args []byte) ([]byte, error) {
	var state MinterState
	if err := minterState.Load(db, &state); err != nil {
		return nil, err
	}
	switch method {
	case "get_jetton_data":
		return cell.NewBuilder().
			Coins(state.TotalSupply).
			Address(state.Admin).
			String(state.Content).
			Bytes(), nil
	case "get_wallet_address":
		s := cell.NewSlice(args)
		owner := s.Address()
		if err := s.End(); err != nil {
			return nil, errors.Wrap(err, "owner")
		}
		return cell.NewBuilder().Address(WalletAddress(owner, fiva.Self(ctx))).Bytes(), nil
	}
	return nil, errors.Wrapf(errors.ErrUnknownOp, "getter %q", method)
}
