package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/iov-one/fiva/protocol"
	"github.com/iov-one/fiva/x/jetton"
	"github.com/iov-one/fiva/x/wallet"
)

func cmdSend(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Add a plain value transfer to the order read from the input. A new order is
created when nothing is piped in.
`)
		fl.PrintDefaults()
	}
	var (
		toFl     = flAddress(fl, "to", "", "Receiver of the message.")
		valueFl  = flCoins(fl, "value", "", "Value attached to the message.")
		bounceFl = fl.Bool("bounce", false, "Return the value if the receiver fails.")
		bodyFl   = flHex(fl, "body", "", "Optional hex encoded message body.")
	)
	fl.Parse(args)

	if err := toFl.Validate(); err != nil {
		return fmt.Errorf("-to: %s", err)
	}
	return appendMessage(input, output, wallet.Outgoing{
		To:     *toFl,
		Value:  *valueFl,
		Bounce: *bounceFl,
		Body:   *bodyFl,
	})
}

func cmdMint(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Add a mint request to the order read from the input. Only the admin of the
minter can mint.
`)
		fl.PrintDefaults()
	}
	var (
		minterFl   = flAddress(fl, "minter", "", "Minter of the jetton.")
		toFl       = flAddress(fl, "to", "", "Owner of the minted jettons.")
		amountFl   = flCoins(fl, "amount", "", "Amount of jettons to mint.")
		responseFl = flAddress(fl, "response", "", "Receiver of the excess value.")
		valueFl    = flCoins(fl, "value", "0.5", "Value attached to the message.")
		queryFl    = fl.Uint64("query", 0, "Query id of the request.")
	)
	fl.Parse(args)

	if err := minterFl.Validate(); err != nil {
		return fmt.Errorf("-minter: %s", err)
	}
	if err := toFl.Validate(); err != nil {
		return fmt.Errorf("-to: %s", err)
	}
	body := &protocol.Mint{
		QueryID:             *queryFl,
		To:                  *toFl,
		Amount:              *amountFl,
		ResponseDestination: *responseFl,
	}
	return appendMessage(input, output, wallet.Outgoing{
		To:     *minterFl,
		Value:  *valueFl,
		Bounce: true,
		Body:   body.Encode(),
	})
}

func cmdJettonTransfer(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Add a jetton transfer to the order read from the input. The message goes to
the jetton wallet of -owner.

Use -supply to deposit underlying into a Master and -redeem to return PT or
YT to it. Both need the Master as -to.
`)
		fl.PrintDefaults()
	}
	var (
		ownerFl     = flAddress(fl, "owner", "", "Owner of the jettons, usually your wallet.")
		minterFl    = flAddress(fl, "minter", "", "Minter of the jetton.")
		toFl        = flAddress(fl, "to", "", "Receiver of the jettons.")
		amountFl    = flCoins(fl, "amount", "", "Amount of jettons.")
		valueFl     = flCoins(fl, "value", "1", "Value attached to the message.")
		forwardFl   = flCoins(fl, "forward", "0.5", "Value forwarded to the receiver with the notification.")
		queryFl     = fl.Uint64("query", 0, "Query id of the transfer.")
		supplyFl    = fl.Bool("supply", false, "Forward a supply payload.")
		ptFl        = flAddress(fl, "pt", "", "PT minter expected by a supply.")
		ytFl        = flAddress(fl, "yt", "", "YT minter expected by a supply.")
		redeemFl    = fl.Bool("redeem", false, "Forward a redeem payload.")
		recipientFl = flAddress(fl, "recipient", "", "Receiver of the minted tokens or the redeemed underlying, the owner when empty.")
	)
	fl.Parse(args)

	if err := ownerFl.Validate(); err != nil {
		return fmt.Errorf("-owner: %s", err)
	}
	if err := minterFl.Validate(); err != nil {
		return fmt.Errorf("-minter: %s", err)
	}
	if err := toFl.Validate(); err != nil {
		return fmt.Errorf("-to: %s", err)
	}

	var payload []byte
	switch {
	case *supplyFl && *redeemFl:
		return fmt.Errorf("-supply and -redeem are exclusive")
	case *supplyFl:
		payload = (&protocol.Supply{
			QueryID:   *queryFl,
			PTMinter:  *ptFl,
			YTMinter:  *ytFl,
			Recipient: *recipientFl,
		}).Encode()
	case *redeemFl:
		payload = (&protocol.Redeem{QueryID: *queryFl, Destination: *recipientFl}).Encode()
	}

	body := &protocol.Transfer{
		QueryID:             *queryFl,
		Amount:              *amountFl,
		Destination:         *toFl,
		ResponseDestination: *ownerFl,
		ForwardValue:        *forwardFl,
		ForwardPayload:      payload,
	}
	return appendMessage(input, output, wallet.Outgoing{
		To:     jetton.WalletAddress(*ownerFl, *minterFl),
		Value:  *valueFl,
		Bounce: true,
		Body:   body.Encode(),
	})
}

func cmdDump(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Add a dump request to the order read from the input. The Master replies to
the sender with its full state.
`)
		fl.PrintDefaults()
	}
	var (
		masterFl = flAddress(fl, "master", "", "Master to dump.")
		valueFl  = flCoins(fl, "value", "0.1", "Value attached to the message.")
		queryFl  = fl.Uint64("query", 0, "Query id of the request.")
	)
	fl.Parse(args)

	if err := masterFl.Validate(); err != nil {
		return fmt.Errorf("-master: %s", err)
	}
	return appendMessage(input, output, wallet.Outgoing{
		To:     *masterFl,
		Value:  *valueFl,
		Bounce: true,
		Body:   (&protocol.Dump{QueryID: *queryFl}).Encode(),
	})
}
