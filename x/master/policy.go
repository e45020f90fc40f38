package master

import (
	"github.com/iov-one/fiva/errors"
	"github.com/iov-one/fiva/protocol"
	"golang.org/x/crypto/ed25519"
)

// AdminPolicy authenticates admin commands. A command is accepted when its
// body is signed by PubKey and its query id is greater than Seq.
type AdminPolicy struct {
	PubKey ed25519.PublicKey
	Seq    uint64
}

// Verify checks a signed command and returns its decoded body. Nothing is
// decoded before the signature is verified.
func (p AdminPolicy) Verify(raw []byte) (protocol.Body, error) {
	sig, body, err := protocol.OpenAdmin(raw)
	if err != nil {
		return nil, err
	}
	if len(p.PubKey) != ed25519.PublicKeySize {
		return nil, errors.Wrap(errors.ErrUnauthorized, "no admin key")
	}
	if !ed25519.Verify(p.PubKey, protocol.Digest(body), sig) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "invalid admin signature")
	}
	cmd, err := protocol.Decode(body)
	if err != nil {
		return nil, err
	}
	if cmd.Query() <= p.Seq {
		return nil, errors.Wrapf(errors.ErrReplay, "query id %d, last accepted %d", cmd.Query(), p.Seq)
	}
	return cmd, nil
}
