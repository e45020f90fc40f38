package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/iov-one/fiva"
)

// commands is a register of all availables commands that can be executed by
// this program. The name is used to match with the first argument given.
//
// A command function is an independent runable that is taking input and output
// being stdin and stdout. Given args are the command line arguments, without
// the program name, that should be parsed using the flag package.
//
// Keep each command small and use a unix pipe to combine them. Commands that
// build a message append it to the wallet order read from the input, so that
// several messages can be sent by one order:
//
//   $ fivacli mint -minter $USD -to $ALICE -amount 100 \
//       | fivacli send -to $BOB -value 1.5 \
//       | fivacli sign -seqno 4 \
//       | fivacli submit
//
var commands = map[string]func(input io.Reader, output io.Writer, args []string) error{
	"account":         cmdAccount,
	"address":         cmdAddress,
	"admin":           cmdAdmin,
	"dump":            cmdDump,
	"jetton-transfer": cmdJettonTransfer,
	"keyaddr":         cmdKeyaddr,
	"keygen":          cmdKeygen,
	"mint":            cmdMint,
	"query":           cmdQuery,
	"send":            cmdSend,
	"seqno":           cmdSeqno,
	"sign":            cmdSign,
	"submit":          cmdSubmit,
	"version":         cmdVersion,
	"view":            cmdView,
}

func main() {
	if len(os.Args) == 1 {
		fmt.Fprintf(os.Stderr, "%s is a command line client for the fiva node.\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Usage: %s <command> [<flags>]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nAvailable commands are:\n\t%s\n", strings.Join(availableCmds(), "\n\t"))
		fmt.Fprintf(os.Stderr, "Run '%s <command> -help' to learn more about each command.\n", os.Args[0])
		os.Exit(2)
	}
	run, ok := commands[os.Args[1]]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "\nAvailable commands are:\n\t%s\n", strings.Join(availableCmds(), "\n\t"))
		os.Exit(2)
	}

	// Skip two first arguments. Second argument is the command name that
	// we just consumed.
	if err := run(stdin(), os.Stdout, os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// stdin returns an empty reader when nothing is piped in, so that message
// commands start a new order instead of waiting for the terminal.
func stdin() io.Reader {
	if fi, err := os.Stdin.Stat(); err == nil && fi.Mode()&os.ModeCharDevice != 0 {
		return &bytes.Buffer{}
	}
	return os.Stdin
}

func availableCmds() []string {
	available := make([]string, 0, len(commands))
	for name := range commands {
		available = append(available, name)
	}
	sort.Strings(available)
	return available
}

func cmdVersion(in io.Reader, out io.Writer, args []string) error {
	_, err := fmt.Fprintln(out, fiva.Version)
	return err
}
