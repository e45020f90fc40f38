package jetton

import (
	"github.com/iov-one/fiva"
	"github.com/iov-one/fiva/cell"
	"github.com/iov-one/fiva/errors"
	"github.com/iov-one/fiva/protocol"
)

// Wallet is the contract holding the balance of one owner.
type Wallet struct{}

var _ fiva.Contract = Wallet{}

// Init stores the owner and minter from WalletInit data.
func (Wallet) Init(ctx fiva.Context, db fiva.KVStore, data []byte) error {
	s := cell.NewSlice(data)
	state := WalletState{Owner: s.Address(), Minter: s.Address()}
	if err := s.End(); err != nil {
		return errors.Wrap(err, "wallet data")
	}
	return walletState.Save(db, &state)
}

// Receive handles transfer, internal_transfer and burn together with the
// bounces of the messages the wallet sent.
func (w Wallet) Receive(ctx fiva.Context, db fiva.KVStore, msg fiva.Message) (*fiva.Result, error) {
	var state WalletState
	if err := walletState.Load(db, &state); err != nil {
		return nil, err
	}
	if msg.Bounced {
		return nil, w.bounced(ctx, db, &state, msg)
	}

	body, err := protocol.Decode(msg.Body)
	if err != nil {
		return nil, err
	}
	switch b := body.(type) {
	case *protocol.Transfer:
		if !msg.From.Equals(state.Owner) {
			return nil, errors.Wrap(errors.ErrUnauthorized, "only owner can transfer")
		}
		if err := b.Destination.Validate(); err != nil {
			return nil, errors.Field("Destination", err, "transfer destination")
		}
		if msg.Value < b.ForwardValue {
			return nil, errors.Wrapf(errors.ErrInsufficientValue, "forward value %d", b.ForwardValue)
		}
		if state.Balance, err = state.Balance.Sub(b.Amount); err != nil {
			return nil, err
		}
		if err := walletState.Save(db, &state); err != nil {
			return nil, err
		}
		init := WalletInit(b.Destination, state.Minter)
		transfer := &protocol.InternalTransfer{
			QueryID:         b.QueryID,
			Amount:          b.Amount,
			From:            state.Owner,
			ResponseAddress: b.ResponseDestination,
			ForwardValue:    b.ForwardValue,
			ForwardPayload:  b.ForwardPayload,
		}
		return &fiva.Result{Messages: []fiva.Message{{
			To:         init.Address(),
			Init:       &init,
			Bounce:     true,
			CarryValue: true,
			Body:       transfer.Encode(),
		}}}, nil

	case *protocol.InternalTransfer:
		if !msg.From.Equals(state.Minter) && !msg.From.Equals(WalletAddress(b.From, state.Minter)) {
			return nil, errors.Wrap(errors.ErrUnknownCaller, "internal transfer not from minter or wallet")
		}
		if state.Balance, err = state.Balance.Add(b.Amount); err != nil {
			return nil, err
		}
		if err := walletState.Save(db, &state); err != nil {
			return nil, err
		}
		var out []fiva.Message
		if b.ForwardValue > 0 {
			note := &protocol.TransferNotification{
				QueryID:        b.QueryID,
				Amount:         b.Amount,
				Sender:         b.From,
				ForwardPayload: b.ForwardPayload,
			}
			out = append(out, fiva.Message{To: state.Owner, Value: b.ForwardValue, Body: note.Encode()})
		}
		if !b.ResponseAddress.Empty() {
			out = append(out, fiva.Message{
				To:         b.ResponseAddress,
				CarryValue: true,
				Body:       (&protocol.Excesses{QueryID: b.QueryID}).Encode(),
			})
		}
		return &fiva.Result{Messages: out}, nil

	case *protocol.Burn:
		if !msg.From.Equals(state.Owner) {
			return nil, errors.Wrap(errors.ErrUnauthorized, "only owner can burn")
		}
		if state.Balance, err = state.Balance.Sub(b.Amount); err != nil {
			return nil, err
		}
		if err := walletState.Save(db, &state); err != nil {
			return nil, err
		}
		note := &protocol.BurnNotification{
			QueryID:             b.QueryID,
			Amount:              b.Amount,
			Sender:              state.Owner,
			ResponseDestination: b.ResponseDestination,
		}
		return &fiva.Result{Messages: []fiva.Message{{
			To:         state.Minter,
			Bounce:     true,
			CarryValue: true,
			Body:       note.Encode(),
		}}}, nil
	}
	return nil, errors.Wrapf(errors.ErrUnknownOp, "wallet: %s", body.Op())
}

// bounced restores the balance of a transfer or burn that failed.
func (Wallet) bounced(ctx fiva.Context, db fiva.KVStore, state *WalletState, msg fiva.Message) error {
	raw, ok := protocol.Unbounce(msg.Body)
	if !ok {
		return nil
	}
	body, err := protocol.Decode(raw)
	if err != nil {
		return nil
	}
	var amount fiva.Coins
	switch b := body.(type) {
	case *protocol.InternalTransfer:
		amount = b.Amount
	case *protocol.BurnNotification:
		amount = b.Amount
	default:
		return nil
	}
	if state.Balance, err = state.Balance.Add(amount); err != nil {
		return err
	}
	fiva.GetLogger(ctx).Debug("jettons restored", "op", body.Op(), "amount", amount)
	return walletState.Save(db, state)
}

// Get serves get_wallet_data.
func (Wallet) Get(ctx fiva.Context, db fiva.ReadOnlyKVStore, method string, args []byte) ([]byte, error) {
	if method != "get_wallet_data" {
		return nil, errors.Wrapf(errors.ErrUnknownOp, "getter %q", method)
	}
	var state WalletState
	if err := walletState.Load(db, &state); err != nil {
		return nil, err
	}
	return cell.NewBuilder().
		Coins(state.Balance).
		Address(state.Owner).
		Address(state.Minter).
		Bytes(), nil
}
