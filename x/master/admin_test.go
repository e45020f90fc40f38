package master

import (
	"encoding/hex"
	"testing"

	"github.com/iov-one/fiva"
	"github.com/iov-one/fiva/cell"
	"github.com/iov-one/fiva/errors"
	"github.com/iov-one/fiva/fivatest"
	"github.com/iov-one/fiva/fivatest/assert"
	"github.com/iov-one/fiva/protocol"
)

func TestAdminPolicy(t *testing.T) {
	pub, priv := fivatest.NewKey(t)
	_, other := fivatest.NewKey(t)
	policy := AdminPolicy{PubKey: pub, Seq: 7}

	cases := map[string]struct {
		raw     []byte
		wantErr *errors.Error
	}{
		"next query id": {
			raw: protocol.SignAdmin(priv, &protocol.UpdateIndex{QueryID: 8, Index: 1000}),
		},
		"query id gap": {
			raw: protocol.SignAdmin(priv, &protocol.UpdateIndex{QueryID: 100, Index: 1000}),
		},
		"replayed query id": {
			raw:     protocol.SignAdmin(priv, &protocol.UpdateIndex{QueryID: 7, Index: 1000}),
			wantErr: errors.ErrReplay,
		},
		"foreign key": {
			raw:     protocol.SignAdmin(other, &protocol.UpdateIndex{QueryID: 8, Index: 1000}),
			wantErr: errors.ErrUnauthorized,
		},
		"tampered body": {
			raw: func() []byte {
				raw := protocol.SignAdmin(priv, &protocol.UpdateIndex{QueryID: 8, Index: 1000})
				raw[len(raw)-1] ^= 0x01
				return raw
			}(),
			wantErr: errors.ErrUnauthorized,
		},
		"no signature": {
			raw:     []byte{1, 2, 3},
			wantErr: errors.ErrUnauthorized,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			cmd, err := policy.Verify(tc.raw)
			if tc.wantErr != nil {
				assert.IsErr(t, tc.wantErr, err)
				return
			}
			assert.Nil(t, err)
			assert.Equal(t, protocol.OpUpdateIndex, cmd.Op())
		})
	}
}

func TestUpdateIndex(t *testing.T) {
	e := newEnv(t, "")

	e.mustAdmin(&protocol.UpdateIndex{Index: 1100})
	assert.Equal(t, fiva.Index(1100), e.market().Index)

	// equal values are accepted
	e.mustAdmin(&protocol.UpdateIndex{Index: 1100})
	assert.Equal(t, uint64(5), e.market().AdminSeq)

	err := e.admin(&protocol.UpdateIndex{QueryID: 6, Index: 1099})
	assert.IsErr(t, errors.ErrInvariant, err)
	m := e.market()
	assert.Equal(t, fiva.Index(1100), m.Index)
	// rejected commands do not consume the query id
	assert.Equal(t, uint64(5), m.AdminSeq)

	err = e.admin(&protocol.UpdateIndex{QueryID: 6, Index: 0})
	assert.IsErr(t, errors.ErrInput, err)

	raw := e.Get(e.master, "get_index", nil)
	assert.Equal(t, cell.NewBuilder().Uint64(1100).Bytes(), raw)
}

func TestAdminGating(t *testing.T) {
	e := newEnv(t, "")
	_, stranger := fivatest.NewKey(t)

	_, err := e.External(e.master, protocol.SignAdmin(stranger, &protocol.UpdateIndex{QueryID: 10, Index: 2000}))
	assert.IsErr(t, errors.ErrUnauthorized, err)

	// replay of the command that configured the PT minter
	err = e.admin(&protocol.SetPTMinter{QueryID: 1, Minter: e.pt})
	assert.IsErr(t, errors.ErrReplay, err)

	// minters are set once
	err = e.admin(&protocol.SetPTMinter{QueryID: 4, Minter: fivatest.NamedAddr("rogue")})
	assert.IsErr(t, errors.ErrInvariant, err)
	err = e.admin(&protocol.SetYTMinter{QueryID: 4, Minter: fivatest.NamedAddr("rogue")})
	assert.IsErr(t, errors.ErrInvariant, err)

	m := e.market()
	assert.Equal(t, fiva.Index(1000), m.Index)
	assert.Equal(t, e.pt, m.PTMinter)
	assert.Equal(t, e.yt, m.YTMinter)
	assert.Equal(t, uint64(3), m.AdminSeq)
}

func TestSupplyBeforeMinters(t *testing.T) {
	e := newEnv(t, "")
	alice := fivatest.NamedAddr("alice")

	// a second market over the same underlying, never configured
	pub, _ := fivatest.NewKey(t)
	conf := Config{
		Admin:            fivatest.NamedAddr("operator"),
		UnderlyingMinter: e.underlying,
		UnderlyingWallet: fivatest.NamedAddr("unset"),
		Maturity:         e.maturity,
		Index:            1000,
		AdminPubKey:      hex.EncodeToString(pub),
		ForwardValue:     ton / 10,
	}
	m, err := conf.Market()
	assert.Nil(t, err)
	c := Contract{}
	n := &protocol.TransferNotification{QueryID: 1, Amount: 100, Sender: alice,
		ForwardPayload: (&protocol.Supply{PTMinter: e.pt, YTMinter: e.yt}).Encode()}
	_, reason := c.checkSupply(e.Context(), m, n)
	assert.IsErr(t, errors.ErrState, reason)

	m.PTMinter, m.YTMinter = e.pt, e.yt
	s, reason := c.checkSupply(e.Context(), m, n)
	assert.Nil(t, reason)
	assert.Equal(t, e.pt, s.PTMinter)
	assert.Equal(t, e.yt, s.YTMinter)

	n.Amount = 0
	s, reason = c.checkSupply(e.Context(), m, n)
	assert.IsErr(t, errors.ErrAmount, reason)
	assert.Nil(t, s)

	// the payload is decoded once, a foreign one is the reason
	n.Amount = 100
	n.ForwardPayload = (&protocol.Redeem{}).Encode()
	_, reason = c.checkSupply(e.Context(), m, n)
	assert.IsErr(t, errors.ErrUnknownOp, reason)
}
