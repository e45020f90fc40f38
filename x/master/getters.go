package master

import (
	"github.com/iov-one/fiva"
	"github.com/iov-one/fiva/cell"
	"github.com/iov-one/fiva/errors"
	"github.com/iov-one/fiva/orm"
)

// Get serves the Master getters.
func (Contract) Get(ctx fiva.Context, db fiva.ReadOnlyKVStore, method string, args []byte) ([]byte, error) {
	var m Market
	if err := market.Load(db, &m); err != nil {
		return nil, err
	}
	b := cell.NewBuilder()
	switch method {
	case "get_index":
		b.Uint64(uint64(m.Index))
	case "get_maturity":
		b.Uint64(uint64(m.Maturity))
	case "get_wallet_address":
		s := cell.NewSlice(args)
		owner := s.Address()
		if err := s.End(); err != nil {
			return nil, errors.Wrap(err, "owner argument")
		}
		if err := owner.Validate(); err != nil {
			return nil, errors.Field("Owner", err, "owner argument")
		}
		b.Address(m.UserInit(fiva.Self(ctx), owner).Address())
	case "get_underlying_asset_minter_addr":
		b.Address(m.UnderlyingMinter)
	case "get_underlying_asset_wallet_addr":
		b.Address(m.UnderlyingWallet)
	case "get_admin_addr":
		b.Address(m.Admin)
	case "get_minter_addrs":
		b.Address(m.PTMinter).Address(m.YTMinter)
	case "get_admin_seq":
		b.Uint64(m.AdminSeq)
	case "get_market":
		return orm.Marshal(&m)
	default:
		return nil, errors.Wrapf(errors.ErrUnknownOp, "getter %q", method)
	}
	return b.Bytes(), nil
}

// DecodeMarket parses the get_market getter result.
func DecodeMarket(raw []byte) (*Market, error) {
	var m Market
	if err := orm.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
