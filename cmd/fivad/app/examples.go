package fivad

import (
	"time"

	"github.com/iov-one/fiva"
	"github.com/iov-one/fiva/chain"
	"github.com/iov-one/fiva/commands"
	"github.com/iov-one/fiva/orm"
	"github.com/iov-one/fiva/protocol"
	"github.com/iov-one/fiva/x/jetton"
	"github.com/iov-one/fiva/x/master"
	"github.com/iov-one/fiva/x/user"
	"github.com/iov-one/fiva/x/wallet"
	"golang.org/x/crypto/ed25519"
)

// Examples returns fixtures of the persisted models, written by the
// testgen command.
func Examples() []commands.Example {
	pub := ed25519.NewKeyFromSeed(make([]byte, ed25519.SeedSize)).Public().(ed25519.PublicKey)
	operator := wallet.Address(pub, 0)
	underlying := jetton.MinterInit(operator, "usd").Address()
	maturity := fiva.AsUnixTime(time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC))

	market := &master.Market{
		Admin:            operator,
		UserCode:         user.Code,
		UnderlyingMinter: underlying,
		Maturity:         maturity,
		Index:            fiva.IndexScale,
		AdminPubKey:      pub,
		ForwardValue:     fiva.Coins(100000000),
		Policy:           uint32(protocol.PolicyHold),
	}
	data, err := orm.Marshal(market)
	if err != nil {
		panic(err)
	}
	masterAddr := fiva.StateInit{Code: master.Code, Data: data}.Address()

	return []commands.Example{
		{Filename: "account", Obj: &chain.Account{Code: wallet.Code, Balance: 5000000000}},
		{Filename: "configuration", Obj: &chain.Configuration{ComputeFee: 1000, MaxSteps: 64}},
		{Filename: "wallet_account", Obj: &wallet.Account{PubKey: pub, Seqno: 3}},
		{Filename: "minter_state", Obj: &jetton.MinterState{Admin: operator, TotalSupply: 1000, Content: "usd"}},
		{Filename: "wallet_state", Obj: &jetton.WalletState{Balance: 250, Owner: operator, Minter: underlying}},
		{Filename: "market", Obj: market},
		{Filename: "position", Obj: &user.Position{
			Owner:         operator,
			Master:        masterAddr,
			Maturity:      maturity,
			IndexSnapshot: fiva.IndexScale,
			Principal:     100,
			YTBalance:     100,
		}},
	}
}
