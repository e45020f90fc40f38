package fivad

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/iov-one/fiva"
	"github.com/iov-one/fiva/chain"
	"github.com/iov-one/fiva/errors"
	"github.com/iov-one/fiva/x/wallet"
	"golang.org/x/crypto/ed25519"
)

// GenesisState is the app_state of the genesis file.
type GenesisState struct {
	Conf     map[string]interface{} `json:"conf"`
	Accounts []chain.GenesisAccount `json:"accounts"`
	Wallets  []wallet.GenesisWallet `json:"wallets"`
	Minters  []json.RawMessage      `json:"minters"`
	Markets  []json.RawMessage      `json:"markets"`
}

// GenInitOptions will produce the options for one rich operator wallet, to
// use for dev mode. The optional argument is the wallet balance in whole
// coins.
func GenInitOptions(args []string) (json.RawMessage, error) {
	balance := fiva.Coins(1000000) * fiva.Coins(1000000000)
	if len(args) > 0 {
		b, err := fiva.ParseCoins(args[0])
		if err != nil {
			return nil, errors.Wrapf(err, "balance %q", args[0])
		}
		balance = b
	}

	pub, keys, err := GenerateWalletKey()
	if err != nil {
		return nil, err
	}
	fmt.Println(keys)

	state := GenesisState{
		Conf: map[string]interface{}{
			chain.ConfigurationKey: chain.DefaultConfiguration(),
		},
		Accounts: []chain.GenesisAccount{},
		Wallets: []wallet.GenesisWallet{
			{PubKey: hex.EncodeToString(pub), Balance: balance},
		},
		Minters: []json.RawMessage{},
		Markets: []json.RawMessage{},
	}
	return json.MarshalIndent(state, "", "  ")
}

type output struct {
	PubKey  string       `json:"pub_key"`
	Secret  string       `json:"secret"`
	Address fiva.Address `json:"address"`
}

// GenerateWalletKey returns the public key of a new operator wallet, along
// with a json representation of the keys.
func GenerateWalletKey() (ed25519.PublicKey, string, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, "", errors.Wrap(errors.ErrInput, err.Error())
	}
	out := output{
		PubKey:  hex.EncodeToString(pub),
		Secret:  hex.EncodeToString(priv.Seed()),
		Address: wallet.Address(pub, 0),
	}
	keys, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, "", err
	}
	return pub, string(keys), nil
}
