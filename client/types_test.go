package client

import (
	"testing"

	"github.com/iov-one/fiva/app"
	"github.com/iov-one/fiva/chain"
	"github.com/iov-one/fiva/errors"
	"github.com/iov-one/fiva/fivatest"
	"github.com/iov-one/fiva/fivatest/assert"
	"github.com/iov-one/fiva/protocol"
	abci "github.com/tendermint/tendermint/abci/types"
)

func TestParseDeliver(t *testing.T) {
	wallet := fivatest.NamedAddr("wallet")
	minter := fivatest.NamedAddr("minter")
	traces := []chain.Trace{
		{To: wallet},
		{From: wallet, To: minter, Op: protocol.OpMint, Err: errors.ErrUnauthorized},
	}
	data := app.NewTxResult(protocol.External{To: wallet}, traces, false).Data

	res := parseDeliver([]byte{1}, 7, abci.ResponseDeliverTx{Data: data})
	assert.Nil(t, res.Err)
	assert.Equal(t, int64(7), res.Height)
	assert.Equal(t, 2, len(res.Messages))
	failed := res.Failed()
	assert.Equal(t, 1, len(failed))
	assert.Equal(t, errors.ErrUnauthorized.ABCICode(), failed[0].Code)

	res = parseDeliver([]byte{1}, 7, abci.ResponseDeliverTx{
		Code: errors.ErrExpired.ABCICode(),
		Log:  "order expired",
	})
	assert.IsErr(t, errors.ErrExpired, res.Err)
	assert.Equal(t, 0, len(res.Messages))

	res = parseDeliver([]byte{1}, 7, abci.ResponseDeliverTx{Data: []byte{0, 0}})
	assert.IsErr(t, errors.ErrInput, res.Err)
}
