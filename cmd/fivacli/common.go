package main

import (
	"encoding/binary"
	"fmt"
	"io"
	"io/ioutil"
	"os"

	"github.com/iov-one/fiva"
	"github.com/iov-one/fiva/protocol"
	"github.com/iov-one/fiva/x/wallet"
	"golang.org/x/crypto/ed25519"
)

// Frames passed between commands are a kind byte, a big endian uint32 size
// and the payload.
const (
	frameOrder    byte = 'o'
	frameExternal byte = 'x'

	frameHeaderSize = 5
)

func writeFrame(w io.Writer, kind byte, payload []byte) error {
	var header [frameHeaderSize]byte
	header[0] = kind
	binary.BigEndian.PutUint32(header[1:], uint32(len(payload)))
	if _, err := w.Write(header[:]); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

// readFrame returns io.EOF when the input is empty.
func readFrame(r io.Reader) (byte, []byte, error) {
	var header [frameHeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			return 0, nil, fmt.Errorf("truncated frame header")
		}
		return 0, nil, err
	}
	raw := make([]byte, binary.BigEndian.Uint32(header[1:]))
	if _, err := io.ReadFull(r, raw); err != nil {
		return 0, nil, fmt.Errorf("truncated frame: %s", err)
	}
	return header[0], raw, nil
}

// readOrder returns the unsigned order from the input or a new order when
// the input is empty.
func readOrder(r io.Reader) (*wallet.Order, error) {
	kind, raw, err := readFrame(r)
	switch {
	case err == io.EOF:
		return &wallet.Order{}, nil
	case err != nil:
		return nil, err
	case kind != frameOrder:
		return nil, fmt.Errorf("input is not an unsigned order")
	}
	return wallet.DecodeOrder(raw)
}

func writeOrder(w io.Writer, o *wallet.Order) error {
	return writeFrame(w, frameOrder, o.Encode())
}

// appendMessage adds a message to the order read from input and writes the
// order to output.
func appendMessage(input io.Reader, output io.Writer, msg wallet.Outgoing) error {
	order, err := readOrder(input)
	if err != nil {
		return fmt.Errorf("cannot read order: %s", err)
	}
	if len(order.Messages) >= wallet.MaxMessages {
		return fmt.Errorf("an order sends at most %d messages", wallet.MaxMessages)
	}
	order.Messages = append(order.Messages, msg)
	return writeOrder(output, order)
}

func readExternal(r io.Reader) (protocol.External, error) {
	kind, raw, err := readFrame(r)
	if err != nil {
		return protocol.External{}, err
	}
	if kind != frameExternal {
		return protocol.External{}, fmt.Errorf("input is not a signed external message, use sign first")
	}
	return protocol.DecodeExternal(raw)
}

func writeExternal(w io.Writer, ext protocol.External) error {
	return writeFrame(w, frameExternal, ext.Encode())
}

func defaultKeyPath() string {
	return env("FIVACLI_PRIV_KEY", os.Getenv("HOME")+"/.fiva.priv.key")
}

func loadKey(path string) (ed25519.PrivateKey, error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read private key file: %s", err)
	}
	if len(raw) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("invalid private key length: %d", len(raw))
	}
	return ed25519.PrivateKey(raw), nil
}

func publicKey(key ed25519.PrivateKey) ed25519.PublicKey {
	return key.Public().(ed25519.PublicKey)
}

func walletAddress(key ed25519.PrivateKey, subwallet uint) fiva.Address {
	return wallet.Address(publicKey(key), uint32(subwallet))
}
