package client

import (
	"context"
	"sync"
	"time"

	"github.com/iov-one/fiva/errors"
	"github.com/iov-one/fiva/protocol"
)

// indexDelay is the time tendermint needs after a block header event
// before the transactions of that block can be searched.
const indexDelay = 100 * time.Millisecond

// WatchTx blocks until the transaction is included in a block. A
// transaction committed before the call is returned immediately. Use ctx
// to bound the wait.
func (c *Client) WatchTx(ctx context.Context, id TransactionID) (*CommitResult, error) {
	subctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Subscribe first so a commit between the search and the subscription
	// cannot be missed.
	txs := make(chan CommitResult, 1)
	if err := c.SubscribeTx(subctx, QueryTxByID(id), txs); err != nil {
		return nil, err
	}
	if found, err := c.GetTxByID(ctx, id); err == nil && found != nil {
		return found, nil
	}

	select {
	case res, ok := <-txs:
		if !ok {
			return nil, errors.Wrap(errors.ErrTimeout, "unsubscribed before result")
		}
		return &res, nil
	case <-ctx.Done():
		return nil, errors.Wrapf(errors.ErrTimeout, "watch tx %X: %s", id, ctx.Err())
	}
}

// CommitTx submits a transaction and waits until it is delivered in a
// block. A transaction refused by CheckTx returns that error, a delivered
// one returns its result even when the contract failed.
func (c *Client) CommitTx(ctx context.Context, tx []byte) (*CommitResult, error) {
	id, err := c.SubmitTx(ctx, tx)
	if err != nil {
		return nil, err
	}
	res, err := c.WatchTx(ctx, id)
	if err != nil {
		return nil, err
	}
	time.Sleep(indexDelay)
	return res, nil
}

// CommitExternal encodes an external message and commits it.
func (c *Client) CommitExternal(ctx context.Context, ext protocol.External) (*CommitResult, error) {
	return c.CommitTx(ctx, ext.Encode())
}

// CommitTxs submits all transactions in order and waits for every one of
// them to be delivered. Submission stops at the first refused transaction.
func (c *Client) CommitTxs(ctx context.Context, txs [][]byte) ([]*CommitResult, error) {
	ids := make([]TransactionID, len(txs))
	for i, tx := range txs {
		id, err := c.SubmitTx(ctx, tx)
		if err != nil {
			return nil, errors.Wrapf(err, "tx %d", i)
		}
		ids[i] = id
	}
	return c.WatchTxs(ctx, ids)
}

// WatchTxs watches all transactions in parallel. Results keep the order
// of ids, nil ids are skipped.
func (c *Client) WatchTxs(ctx context.Context, ids []TransactionID) ([]*CommitResult, error) {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs error
	)
	res := make([]*CommitResult, len(ids))
	for i, id := range ids {
		if id == nil {
			continue
		}
		wg.Add(1)
		go func(i int, id TransactionID) {
			defer wg.Done()
			r, err := c.WatchTx(ctx, id)
			mu.Lock()
			defer mu.Unlock()
			res[i] = r
			errs = errors.Append(errs, err)
		}(i, id)
	}
	wg.Wait()
	if errs != nil {
		return nil, errs
	}
	return res, nil
}

// WaitForHeight returns the first header at or above height. A height in
// the past returns the next block.
func (c *Client) WaitForHeight(ctx context.Context, height int64) (*Header, error) {
	subctx, cancel := context.WithCancel(ctx)
	defer cancel()

	headers := make(chan Header, 2)
	if err := c.SubscribeHeaders(subctx, headers); err != nil {
		return nil, err
	}
	for h := range headers {
		if h.Height >= height {
			time.Sleep(indexDelay)
			return &h, nil
		}
	}
	return nil, errors.Wrapf(errors.ErrNetwork, "subscription closed before height %d", height)
}

// WaitForNextBlock returns the header of the next block.
func (c *Client) WaitForNextBlock(ctx context.Context) (*Header, error) {
	return c.WaitForHeight(ctx, 0)
}
