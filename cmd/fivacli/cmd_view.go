package main

import (
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"io"

	"github.com/iov-one/fiva"
	"github.com/iov-one/fiva/protocol"
	"github.com/iov-one/fiva/x/wallet"
)

func cmdView(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Decode and display an order or an external message read from the input. Before
signing you should check what kind of operation are you authorizing.
`)
		fl.PrintDefaults()
	}
	fl.Parse(args)

	kind, raw, err := readFrame(input)
	if err == io.EOF {
		return fmt.Errorf("no input data")
	}
	if err != nil {
		return fmt.Errorf("cannot read input: %s", err)
	}

	var summary interface{}
	switch kind {
	case frameOrder:
		order, err := wallet.DecodeOrder(raw)
		if err != nil {
			return fmt.Errorf("cannot deserialize order: %s", err)
		}
		summary = viewOrder(order, false)
	case frameExternal:
		ext, err := protocol.DecodeExternal(raw)
		if err != nil {
			return fmt.Errorf("cannot deserialize external message: %s", err)
		}
		summary = viewExternal(ext)
	default:
		return fmt.Errorf("unknown input kind %q", kind)
	}

	pretty, err := json.MarshalIndent(summary, "", "\t")
	if err != nil {
		return fmt.Errorf("cannot JSON serialize: %s", err)
	}
	_, err = fmt.Fprintln(output, string(pretty))
	return err
}

type orderView struct {
	Kind       string        `json:"kind"`
	Subwallet  uint32        `json:"subwallet"`
	Seqno      uint64        `json:"seqno"`
	ValidUntil string        `json:"valid_until,omitempty"`
	Messages   []messageView `json:"messages"`
}

type messageView struct {
	To     fiva.Address `json:"to"`
	Value  string       `json:"value"`
	Bounce bool         `json:"bounce"`
	Op     string       `json:"op,omitempty"`
	Body   interface{}  `json:"body,omitempty"`
	Deploy string       `json:"deploy,omitempty"`
}

type externalView struct {
	Kind    string       `json:"kind"`
	To      fiva.Address `json:"to"`
	Order   *orderView   `json:"order,omitempty"`
	Op      string       `json:"op,omitempty"`
	Command interface{}  `json:"command,omitempty"`
	Body    string       `json:"body,omitempty"`
}

func viewOrder(o *wallet.Order, signed bool) *orderView {
	v := &orderView{
		Kind:      "order",
		Subwallet: o.Subwallet,
		Seqno:     o.Seqno,
		Messages:  make([]messageView, 0, len(o.Messages)),
	}
	if signed {
		v.Kind = "signed order"
	}
	if !o.ValidUntil.IsZero() {
		v.ValidUntil = o.ValidUntil.String()
	}
	for _, m := range o.Messages {
		mv := messageView{To: m.To, Value: m.Value.String(), Bounce: m.Bounce}
		if len(m.Body) > 0 {
			mv.Op, mv.Body = viewBody(m.Body)
		}
		if m.Init != nil {
			mv.Deploy = m.Init.Code
		}
		v.Messages = append(v.Messages, mv)
	}
	return v
}

func viewBody(raw []byte) (string, interface{}) {
	body, err := protocol.Decode(raw)
	if err != nil {
		return "", hex.EncodeToString(raw)
	}
	return body.Op().String(), body
}

// viewExternal recognizes wallet orders and admin commands.
func viewExternal(ext protocol.External) *externalView {
	v := &externalView{Kind: "external", To: ext.To}
	sig, rest, err := protocol.OpenAdmin(ext.Body)
	if err != nil || len(sig) == 0 {
		v.Body = hex.EncodeToString(ext.Body)
		return v
	}
	if order, err := wallet.DecodeOrder(rest); err == nil {
		v.Order = viewOrder(order, true)
		return v
	}
	if cmd, err := protocol.Decode(rest); err == nil {
		v.Kind = "admin"
		v.Op = cmd.Op().String()
		v.Command = cmd
		return v
	}
	v.Body = hex.EncodeToString(ext.Body)
	return v
}
