package app

import (
	"strings"
	"testing"

	"github.com/iov-one/fiva/chain"
	"github.com/iov-one/fiva/errors"
	"github.com/iov-one/fiva/fivatest"
	"github.com/iov-one/fiva/protocol"
	. "github.com/smartystreets/goconvey/convey"
)

func TestTxResult(t *testing.T) {
	Convey("Given the traces of an executed transaction", t, func() {
		wallet := fivatest.NamedAddr("wallet")
		minter := fivatest.NamedAddr("minter")
		ext := protocol.External{To: wallet, Body: []byte{1}}
		traces := []chain.Trace{
			{To: wallet, Log: "order executed"},
			{From: wallet, To: minter, Op: protocol.OpMint, Err: errors.Wrap(errors.ErrUnauthorized, "not the admin")},
			{From: minter, To: wallet, Op: protocol.OpMint, Bounced: true},
		}
		res := NewTxResult(ext, traces, false)

		Convey("Data lists every message with its code", func() {
			data, err := DecodeTxData(res.Data)
			So(err, ShouldBeNil)
			So(data, ShouldHaveLength, 3)
			So(data[0].Code, ShouldEqual, uint32(0))
			So(data[1].To, ShouldResemble, minter)
			So(data[1].Op, ShouldEqual, protocol.OpMint)
			So(data[1].Code, ShouldEqual, errors.ErrUnauthorized.ABCICode())
			So(data[2].Bounced, ShouldBeTrue)
		})

		Convey("Log has one line per message", func() {
			lines := strings.Split(res.Log, "\n")
			So(lines, ShouldHaveLength, 3)
			So(lines[1], ShouldContainSubstring, "failed")
			So(lines[1], ShouldContainSubstring, "not the admin")
		})

		Convey("Tags count the failures", func() {
			So(res.Tags, ShouldHaveLength, 3)
			So(string(res.Tags[0].Value), ShouldEqual, wallet.String())
			So(string(res.Tags[1].Value), ShouldEqual, "3")
			So(string(res.Tags[2].Value), ShouldEqual, "1")
		})
	})

	Convey("Truncated data is rejected", t, func() {
		_, err := DecodeTxData([]byte{0, 0, 0, 2})
		So(errors.ErrInput.Is(err), ShouldBeTrue)
	})
}
