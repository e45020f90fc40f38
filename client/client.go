package client

import (
	"context"
	"fmt"

	"github.com/iov-one/fiva"
	"github.com/iov-one/fiva/app"
	"github.com/iov-one/fiva/chain"
	"github.com/iov-one/fiva/errors"
	"github.com/iov-one/fiva/protocol"
	cmn "github.com/tendermint/tendermint/libs/common"
	tmquery "github.com/tendermint/tendermint/libs/pubsub/query"
	nm "github.com/tendermint/tendermint/node"
	rpcclient "github.com/tendermint/tendermint/rpc/client"
	ctypes "github.com/tendermint/tendermint/rpc/core/types"
	tmtypes "github.com/tendermint/tendermint/types"
)

const txPerPage = 50

// Client is a tendermint client wrapped to provide simple access to a
// fiva node.
//
// Accessors map one to one on tendermint rpc calls. The blocking helpers
// built on top of them live in wrapper.go.
type Client struct {
	conn rpcclient.Client
}

// NewClient wraps a client around an existing tendermint client connection.
func NewClient(conn rpcclient.Client) *Client {
	return &Client{conn: conn}
}

// NewLocalClient is simply a shorthand for a client
// with local connection
func NewLocalClient(node *nm.Node) *Client {
	return NewClient(NewLocalConnection(node))
}

// Status returns current height and other (subjective) status info from this node
func (c *Client) Status(ctx context.Context) (*Status, error) {
	status, err := c.conn.Status()
	if err != nil {
		return nil, errors.Wrapf(errors.ErrNetwork, "status: %s", err)
	}
	return &Status{
		Height:     status.SyncInfo.LatestBlockHeight,
		CatchingUp: status.SyncInfo.CatchingUp,
	}, nil
}

// ChainID returns the chain id of the node, needed to sign wallet orders.
func (c *Client) ChainID(ctx context.Context) (string, error) {
	gen, err := c.conn.Genesis()
	if err != nil {
		return "", errors.Wrapf(errors.ErrNetwork, "genesis: %s", err)
	}
	return gen.Genesis.ChainID, nil
}

// Header returns the block header at the given height.
// Returns an error if no header exists yet for that height
func (c *Client) Header(ctx context.Context, height int64) (*Header, error) {
	info, err := c.conn.BlockchainInfo(height, height)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrNetwork, "blockchain info: %s", err)
	}
	if len(info.BlockMetas) == 0 {
		return nil, errors.Wrapf(errors.ErrInput, "no headers for height %d", height)
	}
	return &info.BlockMetas[0].Header, nil
}

// SubmitTx will submit the tx to the mempool and then return with success or error
// You will need to use WatchTx (easily parallelizable) to get the result.
// CommitTx provides a helper for the common use case.
func (c *Client) SubmitTx(ctx context.Context, tx []byte) (TransactionID, error) {
	res, err := c.conn.BroadcastTxSync(tx)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrNetwork, "submit tx: %s", err)
	}
	// refused by CheckTx, it will never make it into a block
	if res.Code != 0 {
		return nil, errors.ABCIError(res.Code, res.Log)
	}
	return res.Hash, nil
}

// SubmitExternal encodes and submits an external message.
func (c *Client) SubmitExternal(ctx context.Context, ext protocol.External) (TransactionID, error) {
	return c.SubmitTx(ctx, ext.Encode())
}

// Query is meant to mirror the abci query interface exactly.
func (c *Client) Query(query RequestQuery) ResponseQuery {
	res, err := c.conn.ABCIQueryWithOptions(query.Path, query.Data, rpcclient.ABCIQueryOptions{Height: query.Height, Prove: query.Prove})
	// network error reported as special error code
	if err != nil {
		code, log := errors.ABCIInfo(errors.Wrap(errors.ErrNetwork, err.Error()), false)
		return ResponseQuery{
			Code: code,
			Log:  log,
		}
	}
	return res.Response
}

// Get runs a getter of the contract deployed at addr.
func (c *Client) Get(addr fiva.Address, method string, args []byte) ([]byte, error) {
	res := c.Query(RequestQuery{
		Path: fmt.Sprintf("/get/%s/%s", addr, method),
		Data: args,
	})
	if err := errors.ABCIError(res.Code, res.Log); err != nil {
		return nil, err
	}
	return res.Value, nil
}

// Account returns the balance and code of an address.
func (c *Client) Account(addr fiva.Address) (*chain.Account, error) {
	res := c.Query(RequestQuery{Path: fmt.Sprintf("/account/%s", addr)})
	if err := errors.ABCIError(res.Code, res.Log); err != nil {
		return nil, err
	}
	return app.DecodeAccount(res.Value)
}

// GetTxByID will return 0 or 1 results (nil or result value)
func (c *Client) GetTxByID(ctx context.Context, id TransactionID) (*CommitResult, error) {
	tx, err := c.conn.Tx(id, false)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrNetwork, "get tx: %s", err)
	}
	res := parseDeliver(tx.Hash, tx.Height, tx.TxResult)
	return &res, nil
}

// SearchTx will search for all committed transactions that match a query,
// returning them as one large array.
// It returns an error if the subscription request failed.
func (c *Client) SearchTx(ctx context.Context, query TxQuery) ([]*CommitResult, error) {
	search, err := c.conn.TxSearch(query, false, 1, txPerPage)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrNetwork, "search tx: %s", err)
	}

	results := make([]*CommitResult, len(search.Txs))
	for i, tx := range search.Txs {
		res := parseDeliver(tx.Hash, tx.Height, tx.TxResult)
		results[i] = &res
	}
	return results, nil
}

// SubscribeHeaders will fills the channel with all new headers
// Stops when the context is cancelled
func (c *Client) SubscribeHeaders(ctx context.Context, results chan<- Header, options ...Option) error {
	data, err := c.subscribe(ctx, QueryForHeader(), options...)
	if err != nil {
		return err
	}

	go func(in <-chan ctypes.ResultEvent) {
		defer close(results)
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-in:
				if !ok {
					return
				}
				val, ok := msg.Data.(tmtypes.EventDataNewBlockHeader)
				if !ok {
					continue
				}
				select {
				case results <- val.Header:
				case <-ctx.Done():
					return
				}
			}
		}
	}(data)

	return nil
}

// SubscribeTx will subscribe to all transactions that match a query, writing them to the
// results channel as they arrive. It returns an error if the subscription request failed.
// Once subscriptions start, the continue until the context is closed (or network error)
func (c *Client) SubscribeTx(ctx context.Context, query TxQuery, results chan<- CommitResult, options ...Option) error {
	q := fmt.Sprintf("%s='%s' AND %s", tmtypes.EventTypeKey, tmtypes.EventTx, query)

	data, err := c.subscribe(ctx, q, options...)
	if err != nil {
		return err
	}

	go func(in <-chan ctypes.ResultEvent) {
		defer close(results)
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-in:
				if !ok {
					return
				}
				val, ok := msg.Data.(tmtypes.EventDataTx)
				if !ok {
					continue
				}
				select {
				case results <- parseDeliver(val.Tx.Hash(), val.Height, val.Result):
				case <-ctx.Done():
					return
				}
			}
		}
	}(data)

	return nil
}

// subscribe wraps conn.Subscribe and uses ctx.Done() to trigger Unsubscription
func (c *Client) subscribe(ctx context.Context, query string, options ...Option) (<-chan ctypes.ResultEvent, error) {
	var outCapacity []int
	for _, option := range options {
		switch o := option.(type) {
		case OptionCapacity:
			outCapacity = []int{o.Capacity}
		}
	}
	q, err := tmquery.New(query)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "query %q: %s", query, err)
	}

	subscriber := cmn.RandStr(16)
	out, err := c.conn.Subscribe(ctx, subscriber, q.String(), outCapacity...)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrNetwork, "subscribe to %q: %s", query, err)
	}
	// put all variables in local scope to prevent long-lived references
	go func(stop <-chan struct{}, sub string, q *tmquery.Query) {
		<-stop
		_ = c.conn.Unsubscribe(context.Background(), sub, q.String())
	}(ctx.Done(), subscriber, q)

	return out, nil
}
