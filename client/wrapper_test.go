package client

import (
	"context"
	"testing"
	"time"

	"github.com/iov-one/fiva/errors"
	"github.com/iov-one/fiva/fivatest/assert"
	cmn "github.com/tendermint/tendermint/libs/common"
)

func TestWaitForNextBlock(t *testing.T) {
	c := NewClient(NewLocalConnection(node))
	ctx, cancel := timeoutCtx()
	defer cancel()

	status, err := c.Status(ctx)
	assert.Nil(t, err)

	header, err := c.WaitForNextBlock(ctx)
	assert.Nil(t, err)
	if header.Height <= status.Height {
		t.Fatalf("want a block after %d, got %d", status.Height, header.Height)
	}
}

func TestWaitForHeight(t *testing.T) {
	c := NewClient(NewLocalConnection(node))

	cases := map[string]struct {
		diff int64
	}{
		"next block":   {diff: 1},
		"old block":    {diff: -2},
		"future block": {diff: 3},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			ctx, cancel := timeoutCtx()
			defer cancel()

			status, err := c.Status(ctx)
			assert.Nil(t, err)
			desired := status.Height + tc.diff

			header, err := c.WaitForHeight(ctx, desired)
			assert.Nil(t, err)
			if header.Height < desired {
				t.Fatalf("want height at least %d, got %d", desired, header.Height)
			}
			if header.Height <= status.Height {
				t.Fatalf("want a new block after %d, got %d", status.Height, header.Height)
			}
		})
	}
}

func TestCommitTxs(t *testing.T) {
	c := NewClient(NewLocalConnection(node))
	ctx, cancel := timeoutCtx()
	defer cancel()

	txs := [][]byte{
		[]byte(cmn.RandStr(8) + "=one"),
		[]byte(cmn.RandStr(8) + "=two"),
	}
	res, err := c.CommitTxs(ctx, txs)
	assert.Nil(t, err)
	assert.Equal(t, 2, len(res))
	for _, r := range res {
		assert.Nil(t, r.Err)
		if r.Height < 1 {
			t.Fatalf("unexpected height %d", r.Height)
		}
	}
}

func TestWatchTxTimeout(t *testing.T) {
	c := NewClient(NewLocalConnection(node))
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	_, err := c.WatchTx(ctx, cmn.RandBytes(32))
	assert.IsErr(t, errors.ErrTimeout, err)
}
