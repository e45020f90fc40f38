package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/iov-one/fiva"
	"github.com/iov-one/fiva/protocol"
)

func cmdAdmin(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a signed admin command for a Master. Exactly one of -set-pt, -set-yt,
-update-wallet and -index must be given.

Query ids must increase by one with every accepted command, read the last one
with the get_admin_seq getter.
`)
		fl.PrintDefaults()
	}
	var (
		keyPathFl = fl.String("key", defaultKeyPath(),
			"Path to the admin private key file. You can use FIVACLI_PRIV_KEY environment variable to set it.")
		masterFl       = flAddress(fl, "master", "", "Master receiving the command.")
		queryFl        = fl.Uint64("query", 0, "Query id of the command.")
		setPTFl        = flAddress(fl, "set-pt", "", "Set the PT minter.")
		setYTFl        = flAddress(fl, "set-yt", "", "Set the YT minter.")
		updateWalletFl = fl.Bool("update-wallet", false, "Refresh the underlying wallet address of the Master.")
		indexFl        = fl.String("index", "", "New interest index as a rate, for example 1.05.")
	)
	fl.Parse(args)

	if err := masterFl.Validate(); err != nil {
		return fmt.Errorf("-master: %s", err)
	}
	if *queryFl == 0 {
		return fmt.Errorf("-query is required")
	}

	var cmds []protocol.Body
	if len(*setPTFl) > 0 {
		cmds = append(cmds, &protocol.SetPTMinter{QueryID: *queryFl, Minter: *setPTFl})
	}
	if len(*setYTFl) > 0 {
		cmds = append(cmds, &protocol.SetYTMinter{QueryID: *queryFl, Minter: *setYTFl})
	}
	if *updateWalletFl {
		cmds = append(cmds, &protocol.UpdateWalletAddr{QueryID: *queryFl})
	}
	if *indexFl != "" {
		idx, err := fiva.ParseRate(*indexFl)
		if err != nil {
			return fmt.Errorf("-index: %s", err)
		}
		cmds = append(cmds, &protocol.UpdateIndex{QueryID: *queryFl, Index: idx})
	}
	if len(cmds) != 1 {
		return fmt.Errorf("exactly one command must be given, got %d", len(cmds))
	}

	key, err := loadKey(*keyPathFl)
	if err != nil {
		return err
	}
	return writeExternal(output, protocol.External{
		To:   *masterFl,
		Body: protocol.SignAdmin(key, cmds[0]),
	})
}
