package client

import (
	"fmt"

	"github.com/iov-one/fiva/app"
	"github.com/iov-one/fiva/errors"
	abci "github.com/tendermint/tendermint/abci/types"
	cmn "github.com/tendermint/tendermint/libs/common"
	tmtypes "github.com/tendermint/tendermint/types"
)

// TransactionID is the hash used to identify the transaction
type TransactionID = cmn.HexBytes

// RequestQuery is used for the query interface to mirror the abci query interface
type RequestQuery = abci.RequestQuery

// ResponseQuery is used for the query interface to mirror the abci query interface
type ResponseQuery = abci.ResponseQuery

// TxQuery is some query to find transactions
type TxQuery = string

// CommitResult is returned from the block (DeliverTx).
// Messages is only set on success codes, Err is set if the external
// message was refused.
type CommitResult struct {
	ID     TransactionID
	Height int64
	// Messages lists every internal message the transaction caused.
	Messages []app.MessageResult
	Log      string
	Err      error
}

// Failed returns the messages that did not execute.
func (r CommitResult) Failed() []app.MessageResult {
	var failed []app.MessageResult
	for _, m := range r.Messages {
		if m.Code != 0 {
			failed = append(failed, m)
		}
	}
	return failed
}

// Status is the current status of the node we connect to.
// Latest block height is a useful info
type Status struct {
	Height     int64
	CatchingUp bool
}

// Header is a tendermint block header
type Header = tmtypes.Header

// Option represents an option supplied to subscription
type Option interface {
	isOption()
}

// OptionCapacity is used for setting channel outCapacity for
// subscriptions
type OptionCapacity struct {
	Capacity int
}

func (OptionCapacity) isOption() {}

// QueryTxByID makes a subscription string based on the transaction id
func QueryTxByID(id TransactionID) TxQuery {
	return fmt.Sprintf("%s='%X'", tmtypes.TxHashKey, id)
}

// QueryTxByTo finds the transactions sent to a contract.
func QueryTxByTo(addr fmt.Stringer) TxQuery {
	return fmt.Sprintf("to='%s'", addr)
}

// QueryForHeader is a subscription query for all new headers
func QueryForHeader() string {
	return queryForEvent(tmtypes.EventNewBlockHeader)
}

func queryForEvent(eventType string) string {
	return fmt.Sprintf("%s='%s'", tmtypes.EventTypeKey, eventType)
}

func parseDeliver(id TransactionID, height int64, res abci.ResponseDeliverTx) CommitResult {
	out := CommitResult{ID: id, Height: height, Log: res.Log}
	if res.Code != abci.CodeTypeOK {
		out.Err = errors.ABCIError(res.Code, res.Log)
		return out
	}
	if len(res.Data) == 0 {
		return out
	}
	msgs, err := app.DecodeTxData(res.Data)
	if err != nil {
		out.Err = errors.Wrap(err, "result data")
		return out
	}
	out.Messages = msgs
	return out
}
