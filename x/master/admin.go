package master

import (
	"github.com/iov-one/fiva"
	"github.com/iov-one/fiva/errors"
	"github.com/iov-one/fiva/metrics"
	"github.com/iov-one/fiva/protocol"
)

// ReceiveExternal applies a signed admin command. Commands failing
// verification have no effect.
func (c Contract) ReceiveExternal(ctx fiva.Context, db fiva.KVStore, raw []byte) (*fiva.Result, error) {
	var m Market
	if err := market.Load(db, &m); err != nil {
		return nil, err
	}
	cmd, err := m.AdminPolicy().Verify(raw)
	if err != nil {
		metrics.AdminCommandsTotal.WithLabelValues("unverified", metrics.OutcomeRejected).Inc()
		return nil, err
	}
	res, err := c.apply(ctx, &m, cmd)
	if err != nil {
		metrics.AdminCommandsTotal.WithLabelValues(cmd.Op().String(), metrics.OutcomeRejected).Inc()
		return nil, err
	}
	m.AdminSeq = cmd.Query()
	if err := market.Save(db, &m); err != nil {
		return nil, err
	}
	metrics.AdminCommandsTotal.WithLabelValues(cmd.Op().String(), metrics.OutcomeOK).Inc()
	fiva.GetLogger(ctx).Info("admin command applied", "op", cmd.Op(), "query", cmd.Query())
	return res, nil
}

func (Contract) apply(ctx fiva.Context, m *Market, cmd protocol.Body) (*fiva.Result, error) {
	switch b := cmd.(type) {
	case *protocol.UpdateIndex:
		if err := b.Index.Validate(); err != nil {
			return nil, errors.Field("Index", err, "new index")
		}
		if b.Index < m.Index {
			return nil, errors.Wrapf(errors.ErrInvariant, "index cannot decrease from %s to %s", m.Index, b.Index)
		}
		m.Index = b.Index
		metrics.MarketIndex.WithLabelValues(fiva.Self(ctx).String()).Set(float64(m.Index))
		return &fiva.Result{Log: "index updated"}, nil

	case *protocol.SetPTMinter:
		if !m.PTMinter.Empty() {
			return nil, errors.Wrap(errors.ErrInvariant, "PT minter already set")
		}
		if err := b.Minter.Validate(); err != nil {
			return nil, errors.Field("Minter", err, "PT minter")
		}
		m.PTMinter = b.Minter
		return &fiva.Result{Log: "PT minter set"}, nil

	case *protocol.SetYTMinter:
		if !m.YTMinter.Empty() {
			return nil, errors.Wrap(errors.ErrInvariant, "YT minter already set")
		}
		if err := b.Minter.Validate(); err != nil {
			return nil, errors.Field("Minter", err, "YT minter")
		}
		m.YTMinter = b.Minter
		return &fiva.Result{Log: "YT minter set"}, nil

	case *protocol.UpdateWalletAddr:
		req := &protocol.ProvideWalletAddress{QueryID: b.QueryID, Owner: fiva.Self(ctx)}
		return &fiva.Result{Messages: []fiva.Message{{
			To:     m.UnderlyingMinter,
			Value:  m.ForwardValue,
			Bounce: true,
			Body:   req.Encode(),
		}}}, nil
	}
	return nil, errors.Wrapf(errors.ErrUnknownOp, "admin command %s", cmd.Op())
}
