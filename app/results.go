package app

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/iov-one/fiva"
	"github.com/iov-one/fiva/cell"
	"github.com/iov-one/fiva/chain"
	"github.com/iov-one/fiva/errors"
	"github.com/iov-one/fiva/protocol"
	cmn "github.com/tendermint/tendermint/libs/common"
)

// TxResult summarizes the messages processed for one transaction.
type TxResult struct {
	// Data lists every processed message as (to, op, bounced, code).
	Data []byte
	// Log has one line per message.
	Log  string
	Tags []cmn.KVPair
}

// NewTxResult builds the result of an executed transaction.
func NewTxResult(ext protocol.External, traces []chain.Trace, debug bool) TxResult {
	data := cell.NewBuilder().Uint32(uint32(len(traces)))
	lines := make([]string, 0, len(traces))
	failed := 0
	for _, t := range traces {
		code, log := errors.ABCIInfo(t.Err, debug)
		data.Address(t.To).Uint32(uint32(t.Op)).Bool(t.Bounced).Uint32(code)
		if t.Err != nil {
			failed++
			lines = append(lines, fmt.Sprintf("%s %s: failed: %s", t.Op, t.To, log))
			continue
		}
		lines = append(lines, fmt.Sprintf("%s %s: %s", t.Op, t.To, t.Log))
	}
	return TxResult{
		Data: data.Bytes(),
		Log:  strings.Join(lines, "\n"),
		Tags: []cmn.KVPair{
			{Key: []byte("to"), Value: []byte(ext.To.String())},
			{Key: []byte("messages"), Value: []byte(strconv.Itoa(len(traces)))},
			{Key: []byte("failed"), Value: []byte(strconv.Itoa(failed))},
		},
	}
}

// MessageResult is a single entry of TxResult.Data.
type MessageResult struct {
	To      fiva.Address
	Op      protocol.Op
	Bounced bool
	Code    uint32
}

// DecodeTxData parses TxResult.Data.
func DecodeTxData(raw []byte) ([]MessageResult, error) {
	s := cell.NewSlice(raw)
	n := s.Uint32()
	var res []MessageResult
	for i := uint32(0); i < n && s.Err() == nil; i++ {
		res = append(res, MessageResult{
			To:      s.Address(),
			Op:      protocol.Op(s.Uint32()),
			Bounced: s.Bool(),
			Code:    s.Uint32(),
		})
	}
	return res, s.End()
}
