package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/iov-one/fiva"
	"github.com/iov-one/fiva/cell"
	"github.com/iov-one/fiva/client"
	"github.com/iov-one/fiva/x/master"
)

func tmAddrFlag(fl *flag.FlagSet) *string {
	return fl.String("tm", env("FIVACLI_TM_ADDR", "http://localhost:26657"),
		"Tendermint node address. You can use FIVACLI_TM_ADDR environment variable to set it.")
}

func cmdSubmit(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Read a signed external message from the input and submit it. The command
waits until the transaction is in a block and prints every message it caused.
`)
		fl.PrintDefaults()
	}
	var (
		tmAddrFl  = tmAddrFlag(fl)
		timeoutFl = fl.Duration("timeout", 30*time.Second, "How long to wait for the transaction to be committed.")
	)
	fl.Parse(args)

	ext, err := readExternal(input)
	if err != nil {
		return fmt.Errorf("cannot read external message: %s", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeoutFl)
	defer cancel()
	c := client.NewClient(client.NewHTTPConnection(*tmAddrFl))
	res, err := c.CommitExternal(ctx, ext)
	if err != nil {
		return fmt.Errorf("cannot broadcast transaction: %s", err)
	}
	if res.Err != nil {
		return fmt.Errorf("transaction refused: %s", res.Err)
	}
	return printResult(output, res)
}

func printResult(w io.Writer, res *client.CommitResult) error {
	fmt.Fprintf(w, "tx %s at height %d\n", res.ID, res.Height)
	for _, m := range res.Messages {
		status := "ok"
		if m.Code != 0 {
			status = fmt.Sprintf("failed (code %d)", m.Code)
		}
		bounced := ""
		if m.Bounced {
			bounced = " bounced"
		}
		if _, err := fmt.Fprintf(w, "%s%s -> %s: %s\n", m.Op, bounced, m.To, status); err != nil {
			return err
		}
	}
	return nil
}

// getterFormats tells how to display the result of known getters.
var getterFormats = map[string]func([]byte) (string, error){
	"seqno":            formatUint,
	"get_index":        formatIndex,
	"get_maturity":     formatMaturity,
	"get_admin_seq":    formatUint,
	"get_admin_addr":   formatAddresses,
	"get_minter_addrs": formatAddresses,
	"get_market":       formatMarket,

	"get_wallet_address":               formatAddresses,
	"get_master_addr":                  formatAddresses,
	"get_underlying_asset_minter_addr": formatAddresses,
	"get_underlying_asset_wallet_addr": formatAddresses,
}

func cmdQuery(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Run a getter of a contract. Results of well known getters are decoded, other
results are printed hex encoded.
`)
		fl.PrintDefaults()
	}
	var (
		tmAddrFl = tmAddrFlag(fl)
		addrFl   = flAddress(fl, "addr", "", "Address of the contract.")
		methodFl = fl.String("method", "", "Getter name.")
		argsFl   = flHex(fl, "args", "", "Hex encoded getter arguments.")
		rawFl    = fl.Bool("raw", false, "Print the hex encoded result of any getter.")
	)
	fl.Parse(args)

	if err := addrFl.Validate(); err != nil {
		return fmt.Errorf("-addr: %s", err)
	}
	if *methodFl == "" {
		return fmt.Errorf("-method is required")
	}
	c := client.NewClient(client.NewHTTPConnection(*tmAddrFl))
	raw, err := c.Get(*addrFl, *methodFl, *argsFl)
	if err != nil {
		return err
	}
	out, err := formatGetter(*methodFl, raw, *rawFl)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(output, out)
	return err
}

func formatGetter(method string, raw []byte, forceRaw bool) (string, error) {
	format, ok := getterFormats[method]
	if !ok || forceRaw {
		return hex.EncodeToString(raw), nil
	}
	return format(raw)
}

func formatUint(raw []byte) (string, error) {
	s := cell.NewSlice(raw)
	n := s.Uint64()
	if err := s.End(); err != nil {
		return "", err
	}
	return fmt.Sprint(n), nil
}

func formatIndex(raw []byte) (string, error) {
	s := cell.NewSlice(raw)
	idx := fiva.Index(s.Uint64())
	if err := s.End(); err != nil {
		return "", err
	}
	return idx.String(), nil
}

func formatMaturity(raw []byte) (string, error) {
	s := cell.NewSlice(raw)
	t := fiva.UnixTime(s.Uint64())
	if err := s.End(); err != nil {
		return "", err
	}
	return t.String(), nil
}

func formatAddresses(raw []byte) (string, error) {
	s := cell.NewSlice(raw)
	var out string
	for s.Remaining() > 0 && s.Err() == nil {
		addr := s.Address()
		if out != "" {
			out += "\n"
		}
		if addr.Empty() {
			out += "(none)"
			continue
		}
		b32, err := addr.Bech32()
		if err != nil {
			return "", err
		}
		out += b32
	}
	return out, s.End()
}

func formatMarket(raw []byte) (string, error) {
	m, err := master.DecodeMarket(raw)
	if err != nil {
		return "", err
	}
	js, err := json.MarshalIndent(m, "", "\t")
	return string(js), err
}

func cmdAccount(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Print the balance and the contract code of an address.
`)
		fl.PrintDefaults()
	}
	var (
		tmAddrFl = tmAddrFlag(fl)
		addrFl   = flAddress(fl, "addr", "", "Address to look up.")
	)
	fl.Parse(args)

	if err := addrFl.Validate(); err != nil {
		return fmt.Errorf("-addr: %s", err)
	}
	c := client.NewClient(client.NewHTTPConnection(*tmAddrFl))
	acc, err := c.Account(*addrFl)
	if err != nil {
		return err
	}
	code := acc.Code
	if code == "" {
		code = "(none)"
	}
	_, err = fmt.Fprintf(output, "balance: %s\ncode: %s\n", acc.Balance, code)
	return err
}

func cmdSeqno(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Print the sequence the next order of your wallet must carry.
`)
		fl.PrintDefaults()
	}
	var (
		tmAddrFl  = tmAddrFlag(fl)
		keyPathFl = fl.String("key", defaultKeyPath(),
			"Path to the private key file. You can use FIVACLI_PRIV_KEY environment variable to set it.")
		subwalletFl = fl.Uint("subwallet", 0, "Subwallet id of the wallet.")
	)
	fl.Parse(args)

	key, err := loadKey(*keyPathFl)
	if err != nil {
		return err
	}
	c := client.NewClient(client.NewHTTPConnection(*tmAddrFl))
	seq, err := walletSeqno(c, walletAddress(key, *subwalletFl))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(output, seq)
	return err
}

func walletSeqno(c *client.Client, addr fiva.Address) (uint64, error) {
	raw, err := c.Get(addr, "seqno", nil)
	if err != nil {
		return 0, err
	}
	s := cell.NewSlice(raw)
	seq := s.Uint64()
	return seq, s.End()
}
