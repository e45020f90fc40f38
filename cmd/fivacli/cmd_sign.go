package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/iov-one/fiva"
	"github.com/iov-one/fiva/client"
	"github.com/iov-one/fiva/protocol"
	"github.com/iov-one/fiva/x/wallet"
)

func cmdSign(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Read an unsigned order from the input, sign it with your private key and write
the external message executing it.

The wallet sequence is read from the node when -seqno is not given. The chain
id is read from the node when -chain-id is empty.
`)
		fl.PrintDefaults()
	}
	var (
		keyPathFl = fl.String("key", defaultKeyPath(),
			"Path to the private key file that the order should be signed with. You can use FIVACLI_PRIV_KEY environment variable to set it.")
		subwalletFl = fl.Uint("subwallet", 0, "Subwallet id of the wallet.")
		seqnoFl     = fl.Int64("seqno", -1, "Sequence of the wallet, read from the node when negative.")
		ttlFl       = fl.Duration("ttl", 5*time.Minute, "How long the order stays valid, zero never expires.")
		chainIDFl   = fl.String("chain-id", env("FIVACLI_CHAIN_ID", ""), "Chain id. You can use FIVACLI_CHAIN_ID environment variable to set it.")
		tmAddrFl    = fl.String("tm", env("FIVACLI_TM_ADDR", "http://localhost:26657"), "Tendermint node address. You can use FIVACLI_TM_ADDR environment variable to set it.")
	)
	fl.Parse(args)

	key, err := loadKey(*keyPathFl)
	if err != nil {
		return err
	}
	order, err := readOrder(input)
	if err != nil {
		return fmt.Errorf("cannot read order: %s", err)
	}
	if len(order.Messages) == 0 {
		return fmt.Errorf("the order has no message")
	}
	addr := walletAddress(key, *subwalletFl)

	chainID := *chainIDFl
	if chainID == "" || *seqnoFl < 0 {
		c := client.NewClient(client.NewHTTPConnection(*tmAddrFl))
		if chainID == "" {
			if chainID, err = c.ChainID(context.Background()); err != nil {
				return fmt.Errorf("cannot read chain id: %s", err)
			}
		}
		if *seqnoFl < 0 {
			seq, err := walletSeqno(c, addr)
			if err != nil {
				return fmt.Errorf("cannot read wallet sequence: %s", err)
			}
			*seqnoFl = int64(seq)
		}
	}

	order.Subwallet = uint32(*subwalletFl)
	order.Seqno = uint64(*seqnoFl)
	if *ttlFl > 0 {
		order.ValidUntil = fiva.AsUnixTime(time.Now().Add(*ttlFl))
	}
	body, err := wallet.Sign(key, chainID, order)
	if err != nil {
		return fmt.Errorf("cannot sign: %s", err)
	}
	return writeExternal(output, protocol.External{To: addr, Body: body})
}
