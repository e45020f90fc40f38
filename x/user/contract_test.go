package user

import (
	"testing"
	"time"

	"github.com/iov-one/fiva"
	"github.com/iov-one/fiva/cell"
	"github.com/iov-one/fiva/chain"
	"github.com/iov-one/fiva/errors"
	"github.com/iov-one/fiva/fivatest"
	"github.com/iov-one/fiva/fivatest/assert"
	"github.com/iov-one/fiva/protocol"
)

const ton = fiva.Coins(1000000000)

type fixture struct {
	*fivatest.Chain
	t        *testing.T
	master   fiva.Address
	owner    fiva.Address
	maturity fiva.UnixTime
	policy   protocol.PairingPolicy
	order    uint64
}

func newFixture(t *testing.T, policy protocol.PairingPolicy) *fixture {
	reg := chain.NewRegistry()
	Register(reg)
	c := fivatest.NewChain(t, reg)
	return &fixture{
		Chain:    c,
		t:        t,
		master:   fivatest.NamedAddr("master"),
		owner:    fivatest.NamedAddr("alice"),
		maturity: fiva.AsUnixTime(c.Now.Add(30 * 24 * time.Hour)),
		policy:   policy,
	}
}

func (f *fixture) user() fiva.Address {
	return DeriveAddress(f.master, f.owner)
}

func (f *fixture) deposit(amount fiva.Coins, index fiva.Index) []chain.Trace {
	f.order++
	init := Init(f.master, f.owner)
	d := &protocol.Deposit{
		QueryID:   f.order,
		OrderID:   f.order,
		Depositor: f.owner,
		Amount:    amount,
		Recipient: f.owner,
		Minted:    amount,
		Index:     index,
		Maturity:  f.maturity,
		Policy:    f.policy,
	}
	return f.Send(fiva.Message{From: f.master, To: init.Address(), Init: &init, Value: ton, Bounce: true, Body: d.Encode()})
}

func (f *fixture) redeem(leg protocol.Leg, amount fiva.Coins, index fiva.Index) []chain.Trace {
	n := &protocol.RedeemNotification{QueryID: 1, Leg: leg, Amount: amount, Holder: f.owner, Index: index}
	return f.Send(fiva.Message{From: f.master, To: f.user(), Value: ton, Bounce: true, Body: n.Encode()})
}

func (f *fixture) position() *Position {
	f.t.Helper()
	pos, err := DecodePosition(f.Get(f.user(), "get_position", nil))
	assert.Nil(f.t, err)
	return pos
}

func settlement(t *testing.T, traces []chain.Trace) *protocol.RedeemSettlement {
	t.Helper()
	tr := fivatest.Find(traces, protocol.OpRedeemSettlement)
	if tr == nil {
		return nil
	}
	body, err := protocol.Decode(tr.Body)
	assert.Nil(t, err)
	return body.(*protocol.RedeemSettlement)
}

func TestDepositSnapshotStability(t *testing.T) {
	f := newFixture(t, protocol.PolicyHold)

	traces := f.deposit(100, 1000)
	assert.Equal(t, 0, len(fivatest.Failed(traces)))
	assert.Equal(t, true, traces[0].Deployed)

	traces = f.deposit(50, 1100)
	assert.Equal(t, 0, len(fivatest.Failed(traces)))

	pos := f.position()
	assert.Equal(t, fiva.Index(1000), pos.IndexSnapshot)
	assert.Equal(t, f.maturity, pos.Maturity)
	assert.Equal(t, fiva.Coins(150), pos.Principal)
	assert.Equal(t, fiva.Coins(150), pos.YTBalance)

	raw := f.Get(f.user(), "get_index", nil)
	assert.Equal(t, cell.NewBuilder().Uint64(1000).Bytes(), raw)
	raw = f.Get(f.user(), "get_maturity", nil)
	assert.Equal(t, cell.NewBuilder().Uint64(uint64(f.maturity)).Bytes(), raw)
	raw = f.Get(f.user(), "get_master_addr", nil)
	assert.Equal(t, cell.NewBuilder().Address(f.master).Bytes(), raw)

	// 150 at 1000 is worth 195 at 1300
	raw = f.Get(f.user(), "get_interest", cell.NewBuilder().Uint64(1300).Bytes())
	assert.Equal(t, cell.NewBuilder().Coins(45).Bytes(), raw)

	rec, err := DecodeSupply(f.Get(f.user(), "get_supply", cell.NewBuilder().Uint64(2).Bytes()))
	assert.Nil(t, err)
	assert.Equal(t, fiva.Coins(50), rec.ToAmount)
	assert.Equal(t, fiva.Coins(50), rec.PrincipalOutstanding)
}

func TestDepositRejections(t *testing.T) {
	f := newFixture(t, protocol.PolicyHold)
	f.deposit(100, 1000)

	// the same order id twice
	f.order--
	traces := f.deposit(100, 1000)
	assert.IsErr(t, errors.ErrDuplicate, traces[0].Err)

	// a deposit not coming from the master
	d := &protocol.Deposit{OrderID: 99, Depositor: f.owner, Amount: 1, Minted: 1, Index: 1000}
	traces = f.Send(fiva.Message{From: f.owner, To: f.user(), Value: ton, Bounce: true, Body: d.Encode()})
	assert.IsErr(t, errors.ErrUnknownCaller, traces[0].Err)

	assert.Equal(t, fiva.Coins(100), f.position().Principal)
}

func TestPreMaturityPairHold(t *testing.T) {
	f := newFixture(t, protocol.PolicyHold)
	f.deposit(100, 1000)

	// lone principal leg is held
	traces := f.redeem(protocol.LegPrincipal, 100, 1100)
	assert.Equal(t, 0, len(fivatest.Failed(traces)))
	assert.Equal(t, (*protocol.RedeemSettlement)(nil), settlement(t, traces))
	assert.Equal(t, fiva.Coins(100), f.position().PendingPrincipal)

	// the held leg cannot be redeemed again
	traces = f.redeem(protocol.LegPrincipal, 1, 1100)
	assert.IsErr(t, errors.ErrInvariant, traces[0].Err)

	// the yield leg completes the pair, locked at the snapshot
	traces = f.redeem(protocol.LegYield, 100, 1100)
	s := settlement(t, traces)
	if s == nil {
		t.Fatal("no settlement")
	}
	assert.Equal(t, fiva.Coins(100), s.Payout)
	assert.Equal(t, fiva.Coins(100), s.Principal)
	assert.Equal(t, fiva.Coins(100), s.Yield)
	assert.Equal(t, f.owner, s.Destination)
	assert.Equal(t, f.master, fivatest.Find(traces, protocol.OpRedeemSettlement).To)

	pos := f.position()
	assert.Equal(t, true, pos.Empty())
	assert.Equal(t, fiva.Coins(0), pos.PendingPrincipal)
	assert.Equal(t, fiva.Coins(0), pos.PendingYield)
	assert.Equal(t, fiva.Coins(100), pos.PrincipalPaid)
	_, err := f.Runtime.Get(f.Context(), f.DB.CacheWrap(), f.user(), "get_supply", cell.NewBuilder().Uint64(1).Bytes())
	assert.IsErr(t, errors.ErrNotFound, err)
}

func TestPreMaturityPartialPairs(t *testing.T) {
	f := newFixture(t, protocol.PolicyHold)
	f.deposit(100, 1000)

	f.redeem(protocol.LegYield, 30, 1000)
	s := settlement(t, f.redeem(protocol.LegPrincipal, 50, 1000))
	assert.Equal(t, fiva.Coins(30), s.Payout)

	pos := f.position()
	assert.Equal(t, fiva.Coins(20), pos.PendingPrincipal)
	assert.Equal(t, fiva.Coins(0), pos.PendingYield)
	assert.Equal(t, fiva.Coins(70), pos.Principal)
	assert.Equal(t, fiva.Coins(70), pos.YTBalance)
}

func TestPreMaturityReject(t *testing.T) {
	f := newFixture(t, protocol.PolicyReject)
	f.deposit(100, 1000)

	for _, leg := range []protocol.Leg{protocol.LegPrincipal, protocol.LegYield} {
		traces := f.redeem(leg, 100, 1100)
		assert.IsErr(t, errors.ErrInvariant, traces[0].Err)
		// bounced back to the master
		assert.Equal(t, true, traces[1].Bounced)
		assert.Equal(t, f.master, traces[1].To)
	}
	pos := f.position()
	assert.Equal(t, fiva.Coins(100), pos.Principal)
	assert.Equal(t, fiva.Coins(0), pos.PendingPrincipal)
}

func TestPostMaturityRedemption(t *testing.T) {
	f := newFixture(t, protocol.PolicyHold)
	f.deposit(100, 1000)
	f.Advance(31 * 24 * time.Hour)

	s := settlement(t, f.redeem(protocol.LegPrincipal, 100, 1300))
	assert.Equal(t, fiva.Coins(100), s.Payout)
	assert.Equal(t, fiva.Coins(100), s.Principal)
	assert.Equal(t, fiva.Coins(0), s.Yield)

	s = settlement(t, f.redeem(protocol.LegYield, 100, 1300))
	assert.Equal(t, fiva.Coins(30), s.Payout)
	assert.Equal(t, fiva.Coins(0), s.Principal)
	assert.Equal(t, fiva.Coins(100), s.Yield)

	pos := f.position()
	assert.Equal(t, true, pos.Empty())
	assert.Equal(t, fiva.Coins(100), pos.PrincipalPaid)
	assert.Equal(t, fiva.Coins(30), pos.InterestPaid)
}

func TestPostMaturityConservation(t *testing.T) {
	f := newFixture(t, protocol.PolicyReject)
	f.deposit(60, 1000)
	f.deposit(40, 1000)
	f.Advance(31 * 24 * time.Hour)

	var paid fiva.Coins
	for _, amount := range []fiva.Coins{70, 20, 10} {
		s := settlement(t, f.redeem(protocol.LegPrincipal, amount, 1200))
		paid += s.Payout
	}
	assert.Equal(t, fiva.Coins(100), paid)

	// principal drained FIFO, yields untouched
	first, err := DecodeSupply(f.Get(f.user(), "get_supply", cell.NewBuilder().Uint64(1).Bytes()))
	assert.Nil(t, err)
	assert.Equal(t, fiva.Coins(0), first.PrincipalOutstanding)
	assert.Equal(t, fiva.Coins(60), first.YieldOutstanding)

	traces := f.redeem(protocol.LegPrincipal, 1, 1200)
	assert.IsErr(t, errors.ErrInvariant, traces[0].Err)

	s := settlement(t, f.redeem(protocol.LegYield, 100, 1200))
	assert.Equal(t, fiva.Coins(20), s.Payout)
	assert.Equal(t, true, f.position().Empty())
}

func TestHeldLegAcrossMaturity(t *testing.T) {
	cases := map[string]struct {
		held, other protocol.Leg
	}{
		"principal held": {held: protocol.LegPrincipal, other: protocol.LegYield},
		"yield held":     {held: protocol.LegYield, other: protocol.LegPrincipal},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, protocol.PolicyHold)
			f.deposit(100, 1000)
			traces := f.redeem(tc.held, 100, 1100)
			assert.Equal(t, (*protocol.RedeemSettlement)(nil), settlement(t, traces))

			f.Advance(31 * 24 * time.Hour)
			s := settlement(t, f.redeem(tc.other, 100, 1300))
			if s == nil {
				t.Fatal("no settlement")
			}
			assert.Equal(t, fiva.Coins(100), s.Principal)
			assert.Equal(t, fiva.Coins(100), s.Yield)
			assert.Equal(t, fiva.Coins(130), s.Payout)

			pos := f.position()
			assert.Equal(t, true, pos.Empty())
			assert.Equal(t, fiva.Coins(0), pos.PendingPrincipal)
			assert.Equal(t, fiva.Coins(0), pos.PendingYield)
			assert.Equal(t, fiva.Coins(100), pos.PrincipalPaid)
			assert.Equal(t, fiva.Coins(30), pos.InterestPaid)

			// drained, the next deposit takes a new snapshot
			f.deposit(10, 1300)
			assert.Equal(t, fiva.Index(1300), f.position().IndexSnapshot)
		})
	}
}

func TestClaimHeldLeg(t *testing.T) {
	f := newFixture(t, protocol.PolicyHold)
	f.deposit(100, 1000)
	f.redeem(protocol.LegPrincipal, 60, 1100)

	// nothing to claim before maturity
	traces := f.redeem(protocol.LegPrincipal, 0, 1100)
	assert.IsErr(t, errors.ErrAmount, traces[0].Err)

	f.Advance(31 * 24 * time.Hour)
	s := settlement(t, f.redeem(protocol.LegYield, 0, 1300))
	if s == nil {
		t.Fatal("no settlement")
	}
	assert.Equal(t, fiva.Coins(60), s.Principal)
	assert.Equal(t, fiva.Coins(0), s.Yield)
	assert.Equal(t, fiva.Coins(60), s.Payout)

	pos := f.position()
	assert.Equal(t, fiva.Coins(0), pos.PendingPrincipal)
	assert.Equal(t, fiva.Coins(40), pos.Principal)
	assert.Equal(t, fiva.Coins(100), pos.YTBalance)

	// the held legs were released, a second claim has nothing to take
	traces = f.redeem(protocol.LegPrincipal, 0, 1300)
	assert.IsErr(t, errors.ErrAmount, traces[0].Err)
}

func TestResnapshotAfterDrain(t *testing.T) {
	f := newFixture(t, protocol.PolicyHold)
	f.deposit(100, 1000)
	f.redeem(protocol.LegPrincipal, 100, 1000)
	f.redeem(protocol.LegYield, 100, 1000)
	assert.Equal(t, true, f.position().Empty())

	f.deposit(10, 1200)
	assert.Equal(t, fiva.Index(1200), f.position().IndexSnapshot)
}

func TestRedeemFromForeignCaller(t *testing.T) {
	f := newFixture(t, protocol.PolicyHold)
	f.deposit(100, 1000)
	f.Advance(31 * 24 * time.Hour)

	n := &protocol.RedeemNotification{QueryID: 1, Leg: protocol.LegPrincipal, Amount: 100, Holder: f.owner, Index: 1000}
	traces := f.Send(fiva.Message{From: f.owner, To: f.user(), Value: ton, Bounce: true, Body: n.Encode()})
	assert.IsErr(t, errors.ErrUnknownCaller, traces[0].Err)

	// the master cannot redeem on behalf of another holder
	n.Holder = fivatest.NamedAddr("mallory")
	traces = f.Send(fiva.Message{From: f.master, To: f.user(), Value: ton, Bounce: true, Body: n.Encode()})
	assert.IsErr(t, errors.ErrUnauthorized, traces[0].Err)

	assert.Equal(t, fiva.Coins(100), f.position().Principal)
}

func TestDump(t *testing.T) {
	f := newFixture(t, protocol.PolicyHold)
	f.deposit(100, 1000)

	traces := f.Send(fiva.Message{From: f.owner, To: f.user(), Value: ton, Body: (&protocol.Dump{QueryID: 5}).Encode()})
	reply := fivatest.Find(traces, protocol.OpDumpReply)
	if reply == nil {
		t.Fatal("no dump reply")
	}
	body, err := protocol.Decode(reply.Body)
	assert.Nil(t, err)
	pos, err := DecodePosition(body.(*protocol.DumpReply).Data)
	assert.Nil(t, err)
	assert.Equal(t, fiva.Coins(100), pos.Principal)
	assert.Equal(t, f.owner, pos.Owner)
}
