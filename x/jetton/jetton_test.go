package jetton

import (
	"testing"

	"github.com/iov-one/fiva"
	"github.com/iov-one/fiva/chain"
	"github.com/iov-one/fiva/cell"
	"github.com/iov-one/fiva/errors"
	"github.com/iov-one/fiva/fivatest"
	"github.com/iov-one/fiva/fivatest/assert"
	"github.com/iov-one/fiva/protocol"
)

const ton = fiva.Coins(1000000000)

func newChain(t *testing.T) *fivatest.Chain {
	reg := chain.NewRegistry()
	Register(reg)
	return fivatest.NewChain(t, reg)
}

func walletData(t *testing.T, c *fivatest.Chain, owner, minter fiva.Address) WalletData {
	t.Helper()
	d, err := DecodeWalletData(c.Get(WalletAddress(owner, minter), "get_wallet_data", nil))
	assert.Nil(t, err)
	return d
}

func totalSupply(t *testing.T, c *fivatest.Chain, minter fiva.Address) fiva.Coins {
	t.Helper()
	d, err := DecodeJettonData(c.Get(minter, "get_jetton_data", nil))
	assert.Nil(t, err)
	return d.TotalSupply
}

func mint(c *fivatest.Chain, admin, minter, to fiva.Address, amount fiva.Coins) []chain.Trace {
	return c.Send(fiva.Message{
		From:   admin,
		To:     minter,
		Value:  ton,
		Bounce: true,
		Body:   (&protocol.Mint{QueryID: 1, To: to, Amount: amount, ResponseDestination: admin}).Encode(),
	})
}

func TestMint(t *testing.T) {
	c := newChain(t)
	admin := fivatest.NamedAddr("admin")
	alice := fivatest.NamedAddr("alice")
	minter := c.Deploy(MinterInit(admin, "usd"), 0)

	traces := mint(c, admin, minter, alice, 500)
	assert.Equal(t, 0, len(fivatest.Failed(traces)))
	assert.Equal(t, fiva.Coins(500), walletData(t, c, alice, minter).Balance)
	assert.Equal(t, fiva.Coins(500), totalSupply(t, c, minter))
	if fivatest.Find(traces, protocol.OpExcesses) == nil {
		t.Fatal("excesses not returned to the response destination")
	}

	// only the admin mints
	traces = mint(c, alice, minter, alice, 500)
	assert.IsErr(t, errors.ErrUnauthorized, traces[0].Err)
	assert.Equal(t, fiva.Coins(500), totalSupply(t, c, minter))

	addr := c.Get(minter, "get_wallet_address", cell.NewBuilder().Address(alice).Bytes())
	got, err := DecodeAddress(addr)
	assert.Nil(t, err)
	assert.Equal(t, WalletAddress(alice, minter), got)
}

func TestTransferWithNotification(t *testing.T) {
	c := newChain(t)
	admin := fivatest.NamedAddr("admin")
	alice := fivatest.NamedAddr("alice")
	bob := fivatest.NamedAddr("bob")
	minter := c.Deploy(MinterInit(admin, "usd"), 0)
	mint(c, admin, minter, alice, 500)

	transfer := &protocol.Transfer{
		QueryID:             7,
		Amount:              200,
		Destination:         bob,
		ResponseDestination: alice,
		ForwardValue:        ton / 10,
		ForwardPayload:      []byte("hello"),
	}
	traces := c.Send(fiva.Message{From: alice, To: WalletAddress(alice, minter), Value: ton, Body: transfer.Encode()})
	assert.Equal(t, 0, len(fivatest.Failed(traces)))
	assert.Equal(t, fiva.Coins(300), walletData(t, c, alice, minter).Balance)
	assert.Equal(t, fiva.Coins(200), walletData(t, c, bob, minter).Balance)
	assert.Equal(t, fiva.Coins(500), totalSupply(t, c, minter))

	note := fivatest.Find(traces, protocol.OpTransferNotification)
	if note == nil {
		t.Fatal("no transfer notification")
	}
	assert.Equal(t, bob, note.To)
	assert.Equal(t, ton/10, note.Value)

	// wallet only obeys its owner
	traces = c.Send(fiva.Message{From: bob, To: WalletAddress(alice, minter), Value: ton, Body: transfer.Encode()})
	assert.IsErr(t, errors.ErrUnauthorized, traces[0].Err)
	assert.Equal(t, fiva.Coins(300), walletData(t, c, alice, minter).Balance)
}

func TestTransferBounceRestoresBalance(t *testing.T) {
	c := newChain(t)
	admin := fivatest.NamedAddr("admin")
	alice := fivatest.NamedAddr("alice")
	bob := fivatest.NamedAddr("bob")
	minter := c.Deploy(MinterInit(admin, "usd"), 0)
	mint(c, admin, minter, alice, 500)

	// The receiving wallet cannot pay a forward value larger than what
	// reaches it, so the internal transfer fails and bounces.
	transfer := &protocol.Transfer{
		QueryID:        1,
		Amount:         100,
		Destination:    bob,
		ForwardValue:   ton,
		ForwardPayload: []byte{1},
	}
	traces := c.Send(fiva.Message{From: alice, To: WalletAddress(alice, minter), Value: ton, Body: transfer.Encode()})
	failed := fivatest.Failed(traces)
	assert.Equal(t, 1, len(failed))
	assert.IsErr(t, errors.ErrInsufficientValue, failed[0].Err)
	assert.Equal(t, fiva.Coins(500), walletData(t, c, alice, minter).Balance)
}

func TestBurn(t *testing.T) {
	c := newChain(t)
	admin := fivatest.NamedAddr("admin")
	alice := fivatest.NamedAddr("alice")
	minter := c.Deploy(MinterInit(admin, "usd"), 0)
	mint(c, admin, minter, alice, 500)

	burn := &protocol.Burn{QueryID: 3, Amount: 120, ResponseDestination: alice}
	traces := c.Send(fiva.Message{From: alice, To: WalletAddress(alice, minter), Value: ton, Body: burn.Encode()})
	assert.Equal(t, 0, len(fivatest.Failed(traces)))
	assert.Equal(t, fiva.Coins(380), walletData(t, c, alice, minter).Balance)
	assert.Equal(t, fiva.Coins(380), totalSupply(t, c, minter))

	// burning more than the balance fails before anything is sent
	burn.Amount = 1000
	traces = c.Send(fiva.Message{From: alice, To: WalletAddress(alice, minter), Value: ton, Body: burn.Encode()})
	assert.Equal(t, 1, len(traces))
	assert.IsErr(t, errors.ErrAmount, traces[0].Err)

	// a forged burn notification is refused by the minter
	forged := &protocol.BurnNotification{QueryID: 4, Amount: 380, Sender: alice}
	traces = c.Send(fiva.Message{From: alice, To: minter, Value: ton, Body: forged.Encode()})
	assert.IsErr(t, errors.ErrUnknownCaller, traces[0].Err)
	assert.Equal(t, fiva.Coins(380), totalSupply(t, c, minter))
}

func TestForgedInternalTransfer(t *testing.T) {
	c := newChain(t)
	admin := fivatest.NamedAddr("admin")
	alice := fivatest.NamedAddr("alice")
	mallory := fivatest.NamedAddr("mallory")
	minter := c.Deploy(MinterInit(admin, "usd"), 0)
	mint(c, admin, minter, alice, 10)

	forged := &protocol.InternalTransfer{QueryID: 1, Amount: 1000, From: alice}
	traces := c.Send(fiva.Message{From: mallory, To: WalletAddress(alice, minter), Value: ton, Body: forged.Encode()})
	assert.IsErr(t, errors.ErrUnknownCaller, traces[0].Err)
	assert.Equal(t, fiva.Coins(10), walletData(t, c, alice, minter).Balance)
}

func TestProvideWalletAddress(t *testing.T) {
	c := newChain(t)
	admin := fivatest.NamedAddr("admin")
	alice := fivatest.NamedAddr("alice")
	minter := c.Deploy(MinterInit(admin, "usd"), 0)

	req := &protocol.ProvideWalletAddress{QueryID: 9, Owner: alice, IncludeAddress: true}
	traces := c.Send(fiva.Message{From: admin, To: minter, Value: ton, Body: req.Encode()})
	assert.Equal(t, 2, len(traces))
	assert.Equal(t, protocol.OpTakeWalletAddress, traces[1].Op)
	assert.Equal(t, admin, traces[1].To)
}
