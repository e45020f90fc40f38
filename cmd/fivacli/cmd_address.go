package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"io"

	"github.com/iov-one/fiva"
	"github.com/iov-one/fiva/x/jetton"
	"github.com/iov-one/fiva/x/user"
	"github.com/iov-one/fiva/x/wallet"
	"golang.org/x/crypto/ed25519"
)

func cmdAddress(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Compute the address of a contract. Addresses do not depend on the chain state,
so this command works offline.

Kinds:
	wallet         -pub [-subwallet]
	minter         -admin -content
	jetton-wallet  -owner -minter
	user           -master -owner
`)
		fl.PrintDefaults()
	}
	var (
		kindFl      = fl.String("kind", "wallet", "Kind of the contract.")
		pubFl       = flHex(fl, "pub", "", "Hex encoded public key of a wallet.")
		subwalletFl = fl.Uint("subwallet", 0, "Subwallet id of a wallet.")
		adminFl     = flAddress(fl, "admin", "", "Admin of a minter.")
		contentFl   = fl.String("content", "", "Content of a minter.")
		ownerFl     = flAddress(fl, "owner", "", "Owner of a jetton wallet or a User position.")
		minterFl    = flAddress(fl, "minter", "", "Minter of a jetton wallet.")
		masterFl    = flAddress(fl, "master", "", "Master of a User position.")
	)
	fl.Parse(args)

	var addr fiva.Address
	switch *kindFl {
	case "wallet":
		if len(*pubFl) != ed25519.PublicKeySize {
			return fmt.Errorf("-pub must be a %d bytes public key", ed25519.PublicKeySize)
		}
		addr = wallet.Address(ed25519.PublicKey(*pubFl), uint32(*subwalletFl))
	case "minter":
		if err := adminFl.Validate(); err != nil {
			return fmt.Errorf("-admin: %s", err)
		}
		addr = jetton.MinterInit(*adminFl, *contentFl).Address()
	case "jetton-wallet":
		if err := ownerFl.Validate(); err != nil {
			return fmt.Errorf("-owner: %s", err)
		}
		if err := minterFl.Validate(); err != nil {
			return fmt.Errorf("-minter: %s", err)
		}
		addr = jetton.WalletAddress(*ownerFl, *minterFl)
	case "user":
		if err := masterFl.Validate(); err != nil {
			return fmt.Errorf("-master: %s", err)
		}
		if err := ownerFl.Validate(); err != nil {
			return fmt.Errorf("-owner: %s", err)
		}
		addr = user.Init(*masterFl, *ownerFl).Address()
	default:
		return fmt.Errorf("unknown kind %q", *kindFl)
	}
	return printAddress(output, *kindFl, addr)
}

func printAddress(w io.Writer, label string, addr fiva.Address) error {
	b32, err := addr.Bech32()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s: %s\n%s (hex): %s\n", label, b32, label, hex.EncodeToString(addr))
	return err
}
